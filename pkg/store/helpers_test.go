package store

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type counter struct {
	Count int `json:"count" yaml:"count"`
}

type profile struct {
	Name   string            `json:"name"`
	Tags   []string          `json:"tags"`
	Prefs  map[string]string `json:"prefs"`
	Age    int
	Hidden string `json:"-"`
	secret string
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(opts ...RegistryOption) *Registry {
	return NewRegistry(append([]RegistryOption{WithLogger(quietLogger())}, opts...)...)
}

func mustRegister(t *testing.T, r *Registry, entries ...Entry) {
	t.Helper()
	for _, e := range entries {
		if err := r.Register(e); err != nil {
			t.Fatalf("Register(%s) error: %v", e.Name(), err)
		}
	}
}

func mustValue[V any](t *testing.T, s *Store[V]) V {
	t.Helper()
	v, err := s.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	return v
}

// recordingObserver keeps every event it sees.
type recordingObserver struct {
	mu        sync.Mutex
	bound     map[string]bool
	written   []string
	persisted []error
	recovered []error
	missing   []string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{bound: make(map[string]bool)}
}

func (o *recordingObserver) StoreBound(name string, _ SaveStrategy, restored bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.bound[name] = restored
}

func (o *recordingObserver) StoreWritten(name, op string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.written = append(o.written, name+":"+op)
}

func (o *recordingObserver) StorePersisted(_ string, _ SaveStrategy, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.persisted = append(o.persisted, err)
}

func (o *recordingObserver) StoreRecovered(_ string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recovered = append(o.recovered, err)
}

func (o *recordingObserver) ActionMissing(name, action string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.missing = append(o.missing, name+":"+action)
}

var errBoom = errors.New("boom")

// brokenBackend fails reads, writes or both.
type brokenBackend struct {
	failGet bool
	failSet bool
	data    map[string]string
}

func (b *brokenBackend) Get(key string) (string, bool, error) {
	if b.failGet {
		return "", false, errBoom
	}
	v, ok := b.data[key]
	return v, ok, nil
}

func (b *brokenBackend) Set(key, value string) error {
	if b.failSet {
		return errBoom
	}
	if b.data == nil {
		b.data = make(map[string]string)
	}
	b.data[key] = value
	return nil
}

// plainCell has no tracking, no peek and no batching.
type plainCell struct {
	mu   sync.Mutex
	v    any
	sets int
}

func (c *plainCell) Get() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *plainCell) Set(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v = v
	c.sets++
}
