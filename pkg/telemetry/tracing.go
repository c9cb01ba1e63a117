package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vuey/pkg/store"
)

// Default tracer name.
const defaultTracerName = "vuey"

var bg = context.Background()

// TracerConfig configures the OpenTelemetry observer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "vuey").
	TracerName string

	// Provider supplies the tracer. Default: the global provider.
	Provider trace.TracerProvider

	// TraceWrites emits a span for every mutation. Disabled by default;
	// persist spans already cover persisted stores.
	TraceWrites bool
}

// TracerOption configures the OpenTelemetry observer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the provider the tracer comes from.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = tp
	}
}

// WithTraceWrites enables spans for every mutation.
func WithTraceWrites(enabled bool) TracerOption {
	return func(c *TracerConfig) {
		c.TraceWrites = enabled
	}
}

// Tracer is a store.Observer that emits OpenTelemetry spans:
//   - store.bind when a store is registered
//   - store.persist for every backend write, backdated by its duration
//   - store.recover when a persisted record is discarded
//   - store.write per mutation, if enabled
//
// Observer callbacks carry no context, so each span is a root span.
type Tracer struct {
	tracer      trace.Tracer
	traceWrites bool
}

// NewTracer creates a tracing observer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.Provider != nil {
		tracer = config.Provider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}
	return &Tracer{tracer: tracer, traceWrites: config.TraceWrites}
}

// StoreBound implements store.Observer.
func (t *Tracer) StoreBound(name string, strategy store.SaveStrategy, restored bool) {
	_, span := t.tracer.Start(bg, "store.bind", trace.WithAttributes(
		attribute.String("vuey.store", name),
		attribute.String("vuey.strategy", strategy.String()),
		attribute.Bool("vuey.restored", restored),
	))
	span.End()
}

// StoreWritten implements store.Observer.
func (t *Tracer) StoreWritten(name, op string) {
	if !t.traceWrites {
		return
	}
	_, span := t.tracer.Start(bg, "store.write", trace.WithAttributes(
		attribute.String("vuey.store", name),
		attribute.String("vuey.op", op),
	))
	span.End()
}

// StorePersisted implements store.Observer.
func (t *Tracer) StorePersisted(name string, strategy store.SaveStrategy, elapsed time.Duration, err error) {
	end := time.Now()
	_, span := t.tracer.Start(bg, "store.persist",
		trace.WithTimestamp(end.Add(-elapsed)),
		trace.WithAttributes(
			attribute.String("vuey.store", name),
			attribute.String("vuey.strategy", strategy.String()),
			attribute.String("vuey.key", store.RecordKey(name)),
		),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(end))
}

// StoreRecovered implements store.Observer.
func (t *Tracer) StoreRecovered(name string, err error) {
	_, span := t.tracer.Start(bg, "store.recover", trace.WithAttributes(
		attribute.String("vuey.store", name),
	))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

// ActionMissing implements store.Observer.
func (t *Tracer) ActionMissing(name, action string) {
	_, span := t.tracer.Start(bg, "store.skip", trace.WithAttributes(
		attribute.String("vuey.store", name),
		attribute.String("vuey.action", action),
	))
	span.End()
}
