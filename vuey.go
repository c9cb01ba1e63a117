// Package vuey provides the public API for named reactive stores.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/vuey"
//
// Usage:
//
//	cart := vuey.New("cart", []Item{}, vuey.Durable)
//	theme := vuey.New("theme", "light", vuey.Session)
//	reg, err := vuey.Install([]vuey.Entry{cart, theme},
//	    store.WithDurableBackend(backend),
//	)
package vuey

import (
	"github.com/vango-dev/vuey/pkg/store"
)

// =============================================================================
// Stores
// =============================================================================

// Entry is a store as seen by a registry.
type Entry = store.Entry

// Registry is the manager that binds stores and indexes them by name.
type Registry = store.Registry

// Group is a labelled view over registered stores.
type Group = store.Group

// SaveStrategy selects where a store persists its value.
type SaveStrategy = store.SaveStrategy

// Save strategies.
const (
	None    = store.None
	Session = store.Session
	Durable = store.Durable
)

// New creates an unbound store. It is shorthand for store.New.
func New[V any](name string, initial V, strategy SaveStrategy, opts ...store.Option[V]) *store.Store[V] {
	return store.New(name, initial, strategy, opts...)
}

// NewGroup creates a group over registered stores.
func NewGroup(members map[string]Entry) (*Group, error) {
	return store.NewGroup(members)
}

// =============================================================================
// Installation
// =============================================================================

// Install creates a registry from opts and registers stores in order.
// Registration stops at the first failure, which is returned together with
// the registry holding the stores registered so far.
func Install(stores []Entry, opts ...store.RegistryOption) (*Registry, error) {
	reg := store.NewRegistry(opts...)
	return reg, reg.RegisterAll(stores...)
}
