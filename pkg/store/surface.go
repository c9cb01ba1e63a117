package store

import (
	"fmt"
	"sort"
)

// Getter reads a value derived from a store's state.
type Getter func() (any, error)

// Action mutates a store's state.
type Action func(args ...any) error

// Getters is a store's read surface, keyed by getter name.
type Getters map[string]Getter

// Actions is a store's write surface, keyed by action name.
type Actions map[string]Action

// Read calls the named getter.
func (g Getters) Read(name string) (any, error) {
	fn, ok := g[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingGetter, name)
	}
	return fn()
}

// Names returns the getter names in sorted order.
func (g Getters) Names() []string {
	return sortedKeys(g)
}

// Call invokes the named action.
func (a Actions) Call(name string, args ...any) error {
	fn, ok := a[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingAction, name)
	}
	return fn(args...)
}

// Has reports whether the named action exists.
func (a Actions) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Names returns the action names in sorted order.
func (a Actions) Names() []string {
	return sortedKeys(a)
}

// Get calls the named getter and asserts its result to T.
func Get[T any](g Getters, name string) (T, error) {
	var zero T
	v, err := g.Read(name)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: getter %q returned %T", ErrArgument, name, v)
	}
	return out, nil
}

// Arg returns args[i] as T. Values that convert to T without loss, such as
// float64(3) to int, are accepted. nil is accepted for pointer, map, slice
// and interface types.
func Arg[T any](args []any, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(args) {
		return zero, fmt.Errorf("%w: missing argument %d", ErrArgument, i)
	}
	if v, ok := args[i].(T); ok {
		return v, nil
	}
	rv, err := convertTo(args[i], typeOf[T]())
	if err != nil {
		return zero, fmt.Errorf("argument %d: %w", i, err)
	}
	out, _ := rv.Interface().(T)
	return out, nil
}

func sortedKeys[M ~map[string]F, F any](m M) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
