package reactive

import (
	"sync"
	"sync/atomic"
)

// Memo is a lazily computed value derived from signals and other memos. It
// recomputes on the first Get after a dependency changed and can itself be
// depended on.
type Memo[T any] struct {
	base    signalBase
	compute func() T

	mu      sync.Mutex
	value   T
	sources []*signalBase

	valid atomic.Bool
}

// NewMemo creates a memo; compute runs on the first Get.
func NewMemo[T any](compute func() T) *Memo[T] {
	return &Memo[T]{
		base:    signalBase{id: nextID()},
		compute: compute,
	}
}

// Get returns the memo's value, recomputing if invalid, and subscribes the
// current listener.
func (m *Memo[T]) Get() T {
	m.base.track()
	return m.Peek()
}

// Peek returns the value without subscribing.
func (m *Memo[T]) Peek() T {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.valid.Load() {
		m.recompute()
	}
	return m.value
}

// MarkDirty implements Listener. Subscribers are only notified on the
// valid → invalid transition.
func (m *Memo[T]) MarkDirty() {
	if m.valid.CompareAndSwap(true, false) {
		m.base.notify()
	}
}

// ID implements Listener.
func (m *Memo[T]) ID() uint64 {
	return m.base.id
}

// recompute runs with m.mu held.
func (m *Memo[T]) recompute() {
	for _, src := range m.sources {
		src.unsubscribe(m)
	}
	m.sources = m.sources[:0]

	var next T
	WithListener(m, func() {
		next = m.compute()
	})
	m.value = next
	m.valid.Store(true)
}

// addSource is called from recompute, with m.mu held.
func (m *Memo[T]) addSource(source *signalBase) {
	for _, s := range m.sources {
		if s == source {
			return
		}
	}
	m.sources = append(m.sources, source)
}
