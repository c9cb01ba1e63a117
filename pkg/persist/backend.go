package persist

import (
	"errors"
	"time"
)

// Backend is a key/value string store.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Get returns the value stored under key. ok is false when the key is
	// absent; err is reserved for backend failures.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
}

// Deleter is implemented by backends that can remove a key.
// Deleting an absent key is not an error.
type Deleter interface {
	Delete(key string) error
}

// Lister is implemented by backends that can enumerate their keys.
// Keys are returned in ascending order.
type Lister interface {
	Keys(prefix string) ([]string, error)
}

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("persist: backend is closed")

// DefaultTimeout bounds each call made by network-backed implementations.
const DefaultTimeout = 5 * time.Second
