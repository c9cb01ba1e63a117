package telemetry

import (
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/vuey/pkg/store"
)

func newRecordedTracer(opts ...TracerOption) (*Tracer, *tracetest.SpanRecorder) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	return NewTracer(append([]TracerOption{WithTracerProvider(tp)}, opts...)...), sr
}

func attr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracer_PersistSpan(t *testing.T) {
	tr, sr := newRecordedTracer()

	tr.StorePersisted("cart", store.Durable, 20*time.Millisecond, nil)
	tr.StorePersisted("cart", store.Durable, time.Millisecond, errors.New("disk full"))

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}

	ok := spans[0]
	if ok.Name() != "store.persist" {
		t.Errorf("Name() = %q", ok.Name())
	}
	if d := ok.EndTime().Sub(ok.StartTime()); d != 20*time.Millisecond {
		t.Errorf("span duration = %v, want 20ms", d)
	}
	if v, found := attr(ok, "vuey.key"); !found || v.AsString() != "STORE/cart" {
		t.Errorf("vuey.key = %v", v)
	}
	if ok.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", ok.Status())
	}

	failed := spans[1]
	if failed.Status().Code != codes.Error || failed.Status().Description != "disk full" {
		t.Errorf("status = %+v", failed.Status())
	}
	if len(failed.Events()) == 0 {
		t.Error("error was not recorded as an event")
	}
}

func TestTracer_StoreLifecycle(t *testing.T) {
	tr, sr := newRecordedTracer(WithTracerName("test"))

	tr.StoreBound("cart", store.Session, true)
	tr.StoreWritten("cart", "set")
	tr.StoreRecovered("cart", errors.New("corrupt"))
	tr.ActionMissing("cart", "reset")

	spans := sr.Ended()
	names := make([]string, len(spans))
	for i, s := range spans {
		names[i] = s.Name()
	}
	want := []string{"store.bind", "store.recover", "store.skip"}
	if len(names) != len(want) {
		t.Fatalf("spans = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("span %d = %q, want %q", i, names[i], want[i])
		}
	}
	if v, _ := attr(spans[0], "vuey.restored"); !v.AsBool() {
		t.Error("vuey.restored = false")
	}
	if spans[0].InstrumentationScope().Name != "test" {
		t.Errorf("scope = %q", spans[0].InstrumentationScope().Name)
	}
}

func TestTracer_TraceWrites(t *testing.T) {
	tr, sr := newRecordedTracer(WithTraceWrites(true))
	tr.StoreWritten("cart", "clear")

	spans := sr.Ended()
	if len(spans) != 1 || spans[0].Name() != "store.write" {
		t.Fatalf("spans = %v", spans)
	}
	if v, _ := attr(spans[0], "vuey.op"); v.AsString() != "clear" {
		t.Errorf("vuey.op = %q", v.AsString())
	}
}
