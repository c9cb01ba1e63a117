// Package clone makes deep, independent copies of arbitrary Go values.
//
// Maps, slices, pointers, interfaces, arrays and structs (including their
// unexported fields) are copied recursively. Channels, functions and unsafe
// pointers are shared, since they have no meaningful copy. Pointer and map
// aliasing inside the value is preserved, so cyclic values terminate.
package clone

import (
	"reflect"
	"unsafe"
)

// Cloner is implemented by types that copy themselves. Of prefers it over
// reflection.
type Cloner[T any] interface {
	Clone() T
}

// Of returns a deep copy of v.
func Of[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}

	src := reflect.ValueOf(&v).Elem()
	dst := reflect.New(src.Type()).Elem()
	c := copier{seen: make(map[visit]reflect.Value)}
	c.copy(dst, src)

	out, _ := dst.Interface().(T)
	return out
}

type visit struct {
	ptr uintptr
	typ reflect.Type
}

type copier struct {
	seen map[visit]reflect.Value
}

// copy writes a deep copy of src into dst. dst is always settable and src is
// always addressable or a plain value that was never reached through an
// unexported field.
func (c *copier) copy(dst, src reflect.Value) {
	switch src.Kind() {
	case reflect.Pointer:
		if src.IsNil() {
			return
		}
		key := visit{src.Pointer(), src.Type()}
		if prev, ok := c.seen[key]; ok {
			dst.Set(prev)
			return
		}
		ptr := reflect.New(src.Type().Elem())
		c.seen[key] = ptr
		c.copy(ptr.Elem(), src.Elem())
		dst.Set(ptr)

	case reflect.Interface:
		if src.IsNil() {
			return
		}
		inner := addressable(src.Elem())
		cp := reflect.New(inner.Type()).Elem()
		c.copy(cp, inner)
		dst.Set(cp)

	case reflect.Map:
		if src.IsNil() {
			return
		}
		key := visit{src.Pointer(), src.Type()}
		if prev, ok := c.seen[key]; ok {
			dst.Set(prev)
			return
		}
		m := reflect.MakeMapWithSize(src.Type(), src.Len())
		c.seen[key] = m
		iter := src.MapRange()
		for iter.Next() {
			k := reflect.New(src.Type().Key()).Elem()
			c.copy(k, addressable(iter.Key()))
			v := reflect.New(src.Type().Elem()).Elem()
			c.copy(v, addressable(iter.Value()))
			m.SetMapIndex(k, v)
		}
		dst.Set(m)

	case reflect.Slice:
		if src.IsNil() {
			return
		}
		s := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
		for i := 0; i < src.Len(); i++ {
			c.copy(s.Index(i), src.Index(i))
		}
		dst.Set(s)

	case reflect.Array:
		for i := 0; i < src.Len(); i++ {
			c.copy(dst.Index(i), src.Index(i))
		}

	case reflect.Struct:
		t := src.Type()
		for i := 0; i < src.NumField(); i++ {
			df, sf := dst.Field(i), src.Field(i)
			if !t.Field(i).IsExported() {
				df, sf = unlocked(df), unlocked(sf)
			}
			c.copy(df, sf)
		}

	default:
		dst.Set(src)
	}
}

// addressable returns v itself when it is addressable, otherwise a copy that is.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	cp := reflect.New(v.Type()).Elem()
	cp.Set(v)
	return cp
}

// unlocked rebuilds an addressable value from its address, dropping the
// read-only flag reflect attaches to values reached through unexported fields.
func unlocked(v reflect.Value) reflect.Value {
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}
