package reactive

import (
	"sync"
	"sync/atomic"
)

// Effect runs a function immediately and again whenever a signal or memo it
// read during its last run changes. Re-runs happen synchronously on the
// goroutine that performed the write.
type Effect struct {
	id uint64
	fn func() Cleanup

	mu      sync.Mutex
	cleanup Cleanup
	sources []*signalBase

	pending  atomic.Bool
	running  atomic.Bool
	disposed atomic.Bool
}

// NewEffect creates an effect and runs it once.
func NewEffect(fn func() Cleanup) *Effect {
	e := &Effect{
		id: nextID(),
		fn: fn,
	}
	e.pending.Store(true)
	e.run()
	return e
}

// MarkDirty schedules a re-run. Writes made by the effect's own body are
// folded into one extra run instead of recursing.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() {
		return
	}
	if !e.pending.CompareAndSwap(false, true) {
		return
	}
	if e.running.Load() {
		return
	}
	e.run()
}

// ID implements Listener.
func (e *Effect) ID() uint64 {
	return e.id
}

// Dispose stops the effect and runs its last cleanup.
func (e *Effect) Dispose() {
	if !e.disposed.CompareAndSwap(false, true) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.dropSources()
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
}

// Disposed reports whether Dispose has been called.
func (e *Effect) Disposed() bool {
	return e.disposed.Load()
}

func (e *Effect) run() {
	for e.pending.Load() && !e.disposed.Load() {
		if !e.running.CompareAndSwap(false, true) {
			return
		}
		e.pending.Store(false)
		e.runOnce()
		e.running.Store(false)
	}
}

func (e *Effect) runOnce() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
	e.dropSources()

	WithListener(e, func() {
		e.cleanup = e.fn()
	})
}

// dropSources unsubscribes from everything read in the previous run.
// Callers hold e.mu.
func (e *Effect) dropSources() {
	for _, src := range e.sources {
		src.unsubscribe(e)
	}
	e.sources = e.sources[:0]
}

// addSource is called with e.mu held, from inside runOnce.
func (e *Effect) addSource(source *signalBase) {
	for _, s := range e.sources {
		if s == source {
			return
		}
	}
	e.sources = append(e.sources, source)
}
