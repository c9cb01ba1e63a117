package store

// State is the mutation handle passed to getter and action builders.
// Application code reaches state only through the getters and actions
// built on it.
type State[V any] struct {
	s *Store[V]
}

// Name returns the store name.
func (st *State[V]) Name() string {
	return st.s.name
}

// Initial returns a copy of the store's initial value.
func (st *State[V]) Initial() V {
	return st.s.clone(st.s.initial)
}

// Get returns a deep copy of the current state. Inside a reactive.Effect or
// reactive.Memo the read is tracked.
func (st *State[V]) Get() (V, error) {
	lv := st.s.live.Load()
	if lv == nil {
		var zero V
		return zero, &StoreError{Op: "get", Name: st.s.name, Err: ErrNotBound}
	}
	v, _ := lv.cell.Get().(V)
	return st.s.clone(v), nil
}

// Set replaces the state with v and persists it. v is stored as given;
// callers must not modify it afterwards.
func (st *State[V]) Set(v V) error {
	return st.write("set", func(V) (V, error) {
		return v, nil
	})
}

// Update replaces the state with fn applied to a copy of it.
func (st *State[V]) Update(fn func(V) V) error {
	return st.write("update", func(cur V) (V, error) {
		return fn(st.s.clone(cur)), nil
	})
}

// SetProperty assigns one field of a struct state, or one entry of a
// string-keyed map state. Keys match json tag names, or the Go name of an
// exported field without one.
func (st *State[V]) SetProperty(key string, value any) error {
	return st.write("setProperty", func(cur V) (V, error) {
		next := st.s.clone(cur)
		if err := setProperty(&next, key, value); err != nil {
			return cur, err
		}
		return next, nil
	})
}

// SetProperties assigns several properties at once. Either all of them are
// applied or, on the first error, none are.
func (st *State[V]) SetProperties(partial map[string]any) error {
	return st.write("setProperties", func(cur V) (V, error) {
		next := st.s.clone(cur)
		for _, key := range sortedKeys(partial) {
			if err := setProperty(&next, key, partial[key]); err != nil {
				return cur, err
			}
		}
		return next, nil
	})
}

// Reset restores the initial value.
func (st *State[V]) Reset() error {
	return st.write("reset", func(V) (V, error) {
		return st.s.clone(st.s.initial), nil
	})
}

// Clear stores the empty value: the zero value of V unless WithEmpty set
// one.
func (st *State[V]) Clear() error {
	return st.write("clear", func(V) (V, error) {
		return st.s.clone(st.s.empty), nil
	})
}

// write runs one read-modify-write. Writers are serialized per store and
// the cell is written inside the factory's batch, so dependents run after
// the write lock is released and observe the persisted value.
func (st *State[V]) write(op string, fn func(cur V) (V, error)) error {
	s := st.s
	lv := s.live.Load()
	if lv == nil {
		return &StoreError{Op: op, Name: s.name, Err: ErrNotBound}
	}

	var (
		err     error
		written bool
	)
	lv.batch(func() {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		next, ferr := fn(current[V](lv.cell))
		if ferr != nil {
			err = ferr
			return
		}
		lv.cell.Set(next)
		written = true
		err = s.save(lv, next)
	})

	if written {
		lv.observer.StoreWritten(s.name, op)
	}
	if err != nil {
		return &StoreError{Op: op, Name: s.name, Err: err}
	}
	return nil
}

// current reads the cell without registering a dependency when the cell
// allows it.
func current[V any](c Cell) V {
	var raw any
	if p, ok := c.(Peeker); ok {
		raw = p.Peek()
	} else {
		raw = c.Get()
	}
	v, _ := raw.(V)
	return v
}
