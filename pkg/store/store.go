package store

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vango-dev/vuey/internal/clone"
	"github.com/vango-dev/vuey/pkg/persist"
)

// Entry is a store as seen by a Registry or Group. It is implemented only
// by *Store.
type Entry interface {
	Name() string
	SaveStrategy() SaveStrategy
	Getters() Getters
	Actions() Actions
	Bound() bool

	bind(b *binding) error
}

// Option configures a Store.
type Option[V any] func(*storeConfig[V])

type storeConfig[V any] struct {
	codec    Codec[V]
	clone    func(V) V
	empty    V
	hasEmpty bool
}

// WithCodec sets the encoding of the persisted record. Default: JSONCodec.
func WithCodec[V any](c Codec[V]) Option[V] {
	return func(cfg *storeConfig[V]) {
		cfg.codec = c
	}
}

// WithClone replaces the reflection-based deep copy used for reads.
func WithClone[V any](fn func(V) V) Option[V] {
	return func(cfg *storeConfig[V]) {
		cfg.clone = fn
	}
}

// WithEmpty sets the value Clear stores. Default: the zero value of V.
func WithEmpty[V any](empty V) Option[V] {
	return func(cfg *storeConfig[V]) {
		cfg.empty = empty
		cfg.hasEmpty = true
	}
}

// Store is a named unit of state. It is constructed unbound; a Registry
// binds it to a cell and a backend, after which getters and actions work.
type Store[V any] struct {
	name     string
	strategy SaveStrategy
	initial  V
	empty    V
	codec    Codec[V]
	clone    func(V) V
	state    *State[V]

	// live is nil until bind succeeds.
	live    atomic.Pointer[live]
	bindMu  sync.Mutex
	writeMu sync.Mutex

	surfaceMu  sync.RWMutex
	getterExts []func(*State[V]) Getters
	actionExts []func(*State[V]) Actions
	defined    func(*State[V]) Actions
	getters    Getters
	actions    Actions
}

// live holds everything a bound store writes through.
type live struct {
	cell     Cell
	backend  persist.Backend
	batch    func(func())
	logger   *slog.Logger
	observer Observer
}

// New declares a store. Construction never fails; name uniqueness is checked
// when the store is registered.
func New[V any](name string, initial V, strategy SaveStrategy, opts ...Option[V]) *Store[V] {
	cfg := &storeConfig[V]{
		codec: JSONCodec[V]{},
		clone: clone.Of[V],
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Store[V]{
		name:     name,
		strategy: strategy,
		codec:    cfg.codec,
		clone:    cfg.clone,
	}
	s.initial = s.clone(initial)
	if cfg.hasEmpty {
		s.empty = s.clone(cfg.empty)
	}
	s.state = &State[V]{s: s}
	s.rebuild()
	return s
}

// Name returns the store name.
func (s *Store[V]) Name() string { return s.name }

// SaveStrategy returns where the store persists.
func (s *Store[V]) SaveStrategy() SaveStrategy { return s.strategy }

// Bound reports whether the store has been registered.
func (s *Store[V]) Bound() bool { return s.live.Load() != nil }

// Value returns a deep copy of the current state.
func (s *Store[V]) Value() (V, error) {
	return s.state.Get()
}

// Getters returns a copy of the store's getters.
func (s *Store[V]) Getters() Getters {
	s.surfaceMu.RLock()
	defer s.surfaceMu.RUnlock()
	out := make(Getters, len(s.getters))
	for k, v := range s.getters {
		out[k] = v
	}
	return out
}

// Actions returns a copy of the store's actions.
func (s *Store[V]) Actions() Actions {
	s.surfaceMu.RLock()
	defer s.surfaceMu.RUnlock()
	out := make(Actions, len(s.actions))
	for k, v := range s.actions {
		out[k] = v
	}
	return out
}

// ExtendGetters merges the getters returned by build over the current set.
// Later entries win on name collisions.
func (s *Store[V]) ExtendGetters(build func(st *State[V]) Getters) *Store[V] {
	s.surfaceMu.Lock()
	s.getterExts = append(s.getterExts, build)
	s.surfaceMu.Unlock()
	s.rebuild()
	return s
}

// ExtendActions merges the actions returned by build over the current set.
// Later entries win on name collisions, so an extension may replace "set".
func (s *Store[V]) ExtendActions(build func(st *State[V]) Actions) *Store[V] {
	s.surfaceMu.Lock()
	s.actionExts = append(s.actionExts, build)
	s.surfaceMu.Unlock()
	s.rebuild()
	return s
}

// DefineActions replaces the default actions with the ones build returns.
// The store then has no "set", "reset" or "clear" unless build supplies
// them. Later ExtendActions calls still merge over the defined set.
func (s *Store[V]) DefineActions(build func(st *State[V]) Actions) *Store[V] {
	s.surfaceMu.Lock()
	s.defined = build
	s.surfaceMu.Unlock()
	s.rebuild()
	return s
}

func (s *Store[V]) rebuild() {
	s.surfaceMu.Lock()
	defer s.surfaceMu.Unlock()

	st := s.state
	getters := Getters{
		"value": func() (any, error) {
			return st.Get()
		},
	}
	for _, ext := range s.getterExts {
		for name, fn := range ext(st) {
			getters[name] = fn
		}
	}

	var actions Actions
	if s.defined != nil {
		actions = Actions{}
		for name, fn := range s.defined(st) {
			actions[name] = fn
		}
	} else {
		actions = Actions{
			"set": func(args ...any) error {
				v, err := Arg[V](args, 0)
				if err != nil {
					return &StoreError{Op: "set", Name: s.name, Err: err}
				}
				return st.Set(v)
			},
			"reset": func(...any) error { return st.Reset() },
			"clear": func(...any) error { return st.Clear() },
		}
	}
	for _, ext := range s.actionExts {
		for name, fn := range ext(st) {
			actions[name] = fn
		}
	}

	s.getters = make(Getters, len(getters))
	for name, fn := range getters {
		s.getters[name] = s.guardGetter(name, fn)
	}
	s.actions = make(Actions, len(actions))
	for name, fn := range actions {
		s.actions[name] = s.guardAction(name, fn)
	}
}

// guardGetter makes every getter fail on an unbound store, including
// custom getters that never touch state.
func (s *Store[V]) guardGetter(name string, fn Getter) Getter {
	return func() (any, error) {
		if !s.Bound() {
			return nil, &StoreError{Op: "getter " + name, Name: s.name, Err: ErrNotBound}
		}
		return fn()
	}
}

func (s *Store[V]) guardAction(name string, fn Action) Action {
	return func(args ...any) error {
		if !s.Bound() {
			return &StoreError{Op: "action " + name, Name: s.name, Err: ErrNotBound}
		}
		return fn(args...)
	}
}

func (s *Store[V]) bind(b *binding) error {
	s.bindMu.Lock()
	defer s.bindMu.Unlock()

	if s.Bound() {
		return &StoreError{Op: "bind", Name: s.name, Err: ErrAlreadyBound}
	}

	lv := &live{
		backend:  b.backendFor(s.strategy),
		batch:    b.batch,
		logger:   b.logger.With("store", s.name, "strategy", s.strategy.String()),
		observer: b.observer,
	}

	seed := s.initial
	restored, ok, err := s.load(lv)
	switch {
	case err != nil:
		lv.logger.Warn("discarding persisted state", "error", err)
		lv.observer.StoreRecovered(s.name, err)
	case ok:
		seed = restored
	}

	lv.cell = b.cells.NewCell(seed)
	s.live.Store(lv)

	lv.logger.Debug("store bound", "restored", ok)
	lv.observer.StoreBound(s.name, s.strategy, ok)
	return nil
}

// load reads the persisted record. A missing record is not an error.
func (s *Store[V]) load(lv *live) (V, bool, error) {
	var zero V
	if lv.backend == nil {
		return zero, false, nil
	}
	key := RecordKey(s.name)
	data, ok, err := lv.backend.Get(key)
	if err != nil {
		return zero, false, &RecordError{Name: s.name, Key: key, Op: "read", Err: err}
	}
	if !ok {
		return zero, false, nil
	}
	v, err := s.codec.Decode(data)
	if err != nil {
		return zero, false, &RecordError{Name: s.name, Key: key, Op: "decode", Err: err}
	}
	return v, true, nil
}

func (s *Store[V]) save(lv *live, v V) error {
	if lv.backend == nil {
		return nil
	}

	start := time.Now()
	data, err := s.codec.Encode(v)
	if err == nil {
		err = lv.backend.Set(RecordKey(s.name), data)
	}
	elapsed := time.Since(start)
	lv.observer.StorePersisted(s.name, s.strategy, elapsed, err)

	if err != nil {
		lv.logger.Error("persist failed", "error", err)
		return fmt.Errorf("persist: %w", err)
	}
	lv.logger.Debug("persisted", "bytes", len(data), "elapsed", elapsed)
	return nil
}
