package store

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateName is returned when registering a name already in use.
	ErrDuplicateName = errors.New("store: name already registered")

	// ErrNotBound is returned when a store is used before registration.
	ErrNotBound = errors.New("store: not registered")

	// ErrAlreadyBound is returned when a store is registered a second time,
	// with any registry.
	ErrAlreadyBound = errors.New("store: already registered")

	// ErrMissingAction is returned when calling an action a store lacks.
	ErrMissingAction = errors.New("store: no such action")

	// ErrMissingGetter is returned when reading a getter a store lacks.
	ErrMissingGetter = errors.New("store: no such getter")

	// ErrArgument is returned when an action receives an argument of the
	// wrong type or too few arguments.
	ErrArgument = errors.New("store: bad argument")

	// ErrUnknownProperty is returned by SetProperty for keys that do not name
	// an exported field or cannot be map keys.
	ErrUnknownProperty = errors.New("store: unknown property")
)

// StoreError records the store and operation an error came from.
type StoreError struct {
	Op   string
	Name string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %q: %s: %v", e.Name, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// RecordError describes a persisted record that could not be used. Stores
// recover from it by starting from their initial value.
type RecordError struct {
	Name string
	Key  string
	// Op is "read" for backend failures and "decode" for corrupt records.
	Op  string
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("store %q: %s record %s: %v", e.Name, e.Op, e.Key, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
