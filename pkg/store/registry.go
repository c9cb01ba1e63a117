package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vango-dev/vuey/pkg/persist"
)

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	logger   *slog.Logger
	cells    CellFactory
	session  persist.Backend
	durable  persist.Backend
	observer Observer
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) RegistryOption {
	return func(c *registryConfig) {
		c.logger = l
	}
}

// WithCells sets the factory stores are bound to. Default: SignalCells().
func WithCells(f CellFactory) RegistryOption {
	return func(c *registryConfig) {
		c.cells = f
	}
}

// WithSessionBackend sets the backend for Session stores.
// Default: a new persist.Memory, which lives as long as the registry.
func WithSessionBackend(b persist.Backend) RegistryOption {
	return func(c *registryConfig) {
		c.session = b
	}
}

// WithDurableBackend sets the backend for Durable stores.
// Default: a new persist.Memory.
func WithDurableBackend(b persist.Backend) RegistryOption {
	return func(c *registryConfig) {
		c.durable = b
	}
}

// WithObserver receives store lifecycle events.
func WithObserver(o Observer) RegistryOption {
	return func(c *registryConfig) {
		c.observer = o
	}
}

// binding is what a Registry hands to a store when it registers it.
type binding struct {
	cells    CellFactory
	batch    func(func())
	session  persist.Backend
	durable  persist.Backend
	logger   *slog.Logger
	observer Observer
}

func (b *binding) backendFor(s SaveStrategy) persist.Backend {
	switch s {
	case Session:
		return b.session
	case Durable:
		return b.durable
	default:
		return nil
	}
}

// Registry indexes stores by unique name and binds them on registration.
// Registries are independent: the same name may be registered in two
// registries, but a store can only ever be registered once.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	index   map[string]int

	binding *binding
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := &registryConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.cells == nil {
		cfg.cells = SignalCells()
	}
	if cfg.session == nil {
		cfg.session = persist.NewMemory()
	}
	if cfg.durable == nil {
		cfg.durable = persist.NewMemory()
	}
	if cfg.observer == nil {
		cfg.observer = NopObserver{}
	}

	b := &binding{
		cells:    cfg.cells,
		batch:    func(fn func()) { fn() },
		session:  cfg.session,
		durable:  cfg.durable,
		logger:   cfg.logger,
		observer: cfg.observer,
	}
	if batcher, ok := cfg.cells.(Batcher); ok {
		b.batch = batcher.Batch
	}

	return &Registry{
		index:   make(map[string]int),
		binding: b,
		logger:  cfg.logger,
	}
}

// Register binds entry and indexes it under its name. It fails with
// ErrDuplicateName if the name is taken and ErrAlreadyBound if entry was
// registered before; in both cases the registry is unchanged.
func (r *Registry) Register(entry Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: nil store", ErrArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := entry.Name()
	if _, dup := r.index[name]; dup {
		return &StoreError{Op: "register", Name: name, Err: ErrDuplicateName}
	}
	if err := entry.bind(r.binding); err != nil {
		return err
	}

	r.index[name] = len(r.entries)
	r.entries = append(r.entries, entry)
	r.logger.Info("store registered", "store", name, "strategy", entry.SaveStrategy().String())
	return nil
}

// RegisterAll registers entries in order and stops at the first failure.
func (r *Registry) RegisterAll(entries ...Entry) error {
	for _, e := range entries {
		if err := r.Register(e); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the store registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.entries[i], true
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name()
	}
	return names
}

// Len returns the number of registered stores.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Entries returns registered stores in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// ResetAll calls every store's "reset" action in registration order.
func (r *Registry) ResetAll() error {
	return r.each("reset")
}

// ClearAll calls every store's "clear" action in registration order.
func (r *Registry) ClearAll() error {
	return r.each("clear")
}

// each runs action on every store. Stores without the action are logged
// and skipped; action failures are collected and do not stop the loop.
func (r *Registry) each(action string) error {
	var errs []error
	for _, e := range r.Entries() {
		fn, ok := e.Actions()[action]
		if !ok {
			r.logger.Warn("store has no action, skipping", "store", e.Name(), "action", action)
			r.binding.observer.ActionMissing(e.Name(), action)
			continue
		}
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
