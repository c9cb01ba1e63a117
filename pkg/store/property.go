package store

import (
	"fmt"
	"reflect"
	"strings"
)

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// setProperty assigns key on the value target points to.
func setProperty(target any, key string, value any) error {
	return assign(reflect.ValueOf(target).Elem(), key, value)
}

func assign(v reflect.Value, key string, value any) error {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return fmt.Errorf("%w: %q on nil %s", ErrUnknownProperty, key, v.Type())
		}
		return assign(v.Elem(), key, value)

	case reflect.Interface:
		if v.IsNil() {
			return fmt.Errorf("%w: %q on nil %s", ErrUnknownProperty, key, v.Type())
		}
		// Values held in an interface are not addressable; edit a copy and
		// store it back.
		inner := reflect.New(v.Elem().Type()).Elem()
		inner.Set(v.Elem())
		if err := assign(inner, key, value); err != nil {
			return err
		}
		v.Set(inner)
		return nil

	case reflect.Struct:
		idx, ok := fieldIndex(v.Type(), key)
		if !ok {
			return fmt.Errorf("%w: %q on %s", ErrUnknownProperty, key, v.Type())
		}
		f := v.Field(idx)
		rv, err := convertTo(value, f.Type())
		if err != nil {
			return fmt.Errorf("property %q: %w", key, err)
		}
		f.Set(rv)
		return nil

	case reflect.Map:
		kt := v.Type().Key()
		if kt.Kind() != reflect.String {
			return fmt.Errorf("%w: %q on %s", ErrUnknownProperty, key, v.Type())
		}
		rv, err := convertTo(value, v.Type().Elem())
		if err != nil {
			return fmt.Errorf("property %q: %w", key, err)
		}
		if v.IsNil() {
			if !v.CanSet() {
				return fmt.Errorf("%w: %q on nil %s", ErrUnknownProperty, key, v.Type())
			}
			v.Set(reflect.MakeMap(v.Type()))
		}
		v.SetMapIndex(reflect.ValueOf(key).Convert(kt), rv)
		return nil

	default:
		return fmt.Errorf("%w: %q on %s", ErrUnknownProperty, key, v.Type())
	}
}

// fieldIndex finds an exported top-level field by json tag name or Go name.
// Tag names take precedence.
func fieldIndex(t reflect.Type, key string) (int, bool) {
	byName := -1
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == "-" {
			continue
		}
		if tag == key {
			return i, true
		}
		if tag == "" && f.Name == key && byName < 0 {
			byName = i
		}
	}
	return byName, byName >= 0
}

// convertTo converts value to t when the conversion preserves it. Numbers
// convert between numeric kinds only if the round trip is exact; numbers
// never become strings.
func convertTo(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		if nilable(t.Kind()) {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: nil is not a %s", ErrArgument, t)
	}

	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if !rv.Type().ConvertibleTo(t) {
		return reflect.Value{}, fmt.Errorf("%w: %T is not a %s", ErrArgument, value, t)
	}
	if numeric(rv.Kind()) {
		if !numeric(t.Kind()) {
			return reflect.Value{}, fmt.Errorf("%w: %T is not a %s", ErrArgument, value, t)
		}
		out := rv.Convert(t)
		if out.Convert(rv.Type()).Interface() != rv.Interface() {
			return reflect.Value{}, fmt.Errorf("%w: %v does not fit %s", ErrArgument, value, t)
		}
		return out, nil
	}
	return rv.Convert(t), nil
}

func nilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
