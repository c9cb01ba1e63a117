package reactive

import (
	"sync"
	"testing"
)

// testListener counts MarkDirty calls.
type testListener struct {
	id    uint64
	mu    sync.Mutex
	dirty int
}

func newTestListener() *testListener {
	return &testListener{id: nextID()}
}

func (l *testListener) MarkDirty() {
	l.mu.Lock()
	l.dirty++
	l.mu.Unlock()
}

func (l *testListener) ID() uint64 { return l.id }

func (l *testListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

func TestSignalBasic(t *testing.T) {
	count := NewSignal(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSignalSubscription(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
	})

	count.Set(1)
	if listener.count() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.count())
	}

	// Same value should not notify
	count.Set(1)
	if listener.count() != 1 {
		t.Errorf("same value should not notify, got %d", listener.count())
	}

	count.Set(2)
	if listener.count() != 2 {
		t.Errorf("expected 2 notifications, got %d", listener.count())
	}
}

func TestSignalPeekDoesNotSubscribe(t *testing.T) {
	count := NewSignal(42)
	listener := newTestListener()

	WithListener(listener, func() {
		if got := count.Peek(); got != 42 {
			t.Errorf("Peek() = %d, want 42", got)
		}
	})

	count.Set(100)
	if listener.count() != 0 {
		t.Errorf("Peek should not subscribe, got %d notifications", listener.count())
	}
}

func TestSignalUntracked(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		Untracked(func() {
			_ = count.Get()
		})
	})

	count.Set(1)
	if listener.count() != 0 {
		t.Errorf("Untracked read should not subscribe, got %d notifications", listener.count())
	}
}

func TestSignalDeepEquality(t *testing.T) {
	items := NewSignal(map[string]int{"a": 1})
	listener := newTestListener()

	WithListener(listener, func() {
		_ = items.Get()
	})

	items.Set(map[string]int{"a": 1})
	if listener.count() != 0 {
		t.Errorf("structurally equal write should not notify, got %d", listener.count())
	}

	items.Set(map[string]int{"a": 2})
	if listener.count() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.count())
	}
}

func TestSignalWithEquals(t *testing.T) {
	s := NewSignal(1).WithEquals(func(a, b int) bool { return a%2 == b%2 })
	listener := newTestListener()

	WithListener(listener, func() {
		_ = s.Get()
	})

	s.Set(3)
	if s.Peek() != 1 {
		t.Errorf("value should be unchanged under custom equality, got %d", s.Peek())
	}
	s.Set(4)
	if listener.count() != 1 || s.Peek() != 4 {
		t.Errorf("expected change to 4 with 1 notification, got %d (%d)", s.Peek(), listener.count())
	}
}

func TestSignalAnyValue(t *testing.T) {
	s := NewSignal[any](nil)
	s.Set("hello")
	if got, _ := s.Get().(string); got != "hello" {
		t.Errorf("Get() = %v, want hello", s.Get())
	}
	s.Set(3)
	if got, _ := s.Get().(int); got != 3 {
		t.Errorf("Get() = %v, want 3", s.Get())
	}
}

func TestSignalConcurrentSet(t *testing.T) {
	s := NewSignal(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(func(n int) int { return n + 1 })
		}()
	}
	wg.Wait()

	if s.Peek() != 50 {
		t.Errorf("expected 50 after concurrent updates, got %d", s.Peek())
	}
}
