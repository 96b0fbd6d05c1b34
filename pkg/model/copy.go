package model

import (
	"reflect"

	"github.com/mohae/deepcopy"
)

// CopyOption configures Copy.
type CopyOption func(*copyConfig)

type copyConfig struct {
	deep bool
}

// Shallow copies only the top-level containers; nested values are shared.
func Shallow() CopyOption {
	return func(cfg *copyConfig) {
		cfg.deep = false
	}
}

// Deep recursively duplicates nested values. This is the default.
func Deep() CopyOption {
	return func(cfg *copyConfig) {
		cfg.deep = true
	}
}

// Cloner is implemented by values that copy themselves. Generated types
// implement it so copies keep their concrete type.
type Cloner interface {
	CloneValue(deep bool) any
}

// Copy returns a new instance of the same type. The copy is deep unless
// Shallow is passed.
func (m *Model) Copy(options ...CopyOption) *Model {
	cfg := copyConfig{deep: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return m.clone(cfg.deep)
}

// CloneValue implements Cloner.
func (m *Model) CloneValue(deep bool) any {
	return m.clone(deep)
}

func (m *Model) clone(deep bool) *Model {
	out := &Model{
		typ:   m.typ,
		rt:    m.rt,
		names: m.PropertyNames(),
	}
	if m.fields != nil {
		out.fields = make(map[string]any, len(m.fields))
		for key, value := range m.fields {
			out.fields[key] = cloneValue(value, deep)
		}
	}
	switch value := m.value.(type) {
	case Positional:
		out.value = Positional{V: cloneValue(value.V, deep)}
	case Named:
		out.value = Named{Props: cloneProperties(value.Props, deep)}
	default:
		out.value = m.value
	}
	return out
}

func cloneProperties(props *Properties, deep bool) *Properties {
	if props == nil {
		return nil
	}
	out := props.Clone()
	if !deep {
		return out
	}
	for _, key := range out.keys {
		out.values[key] = cloneValue(out.values[key], true)
	}
	return out
}

// cloneValue copies value. Containers are walked here so models and bags
// held in typed slices, arrays or maps keep their contents; leaves are handed
// to deepcopy.
func cloneValue(value any, deep bool) any {
	if !deep {
		return value
	}
	switch typed := value.(type) {
	case nil:
		return nil
	case Cloner:
		return typed.CloneValue(true)
	case *Properties:
		return cloneProperties(typed, true)
	case Properties:
		return *cloneProperties(&typed, true)
	case Set:
		out := make(Set, len(typed))
		for item := range typed {
			out[item] = struct{}{}
		}
		return out
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		if holdsReferences(rv.Type().Elem()) {
			return cloneContainer(rv).Interface()
		}
	}
	return deepcopy.Copy(value)
}

// holdsReferences reports whether elements of type t may carry a model or
// bag that deepcopy would lose.
func holdsReferences(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		return true
	}
	return false
}

func cloneContainer(rv reflect.Value) reflect.Value {
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for idx := 0; idx < rv.Len(); idx++ {
			out.Index(idx).Set(cloneElement(rv.Index(idx)))
		}
		return out
	case reflect.Array:
		out := reflect.New(rv.Type()).Elem()
		for idx := 0; idx < rv.Len(); idx++ {
			out.Index(idx).Set(cloneElement(rv.Index(idx)))
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneElement(iter.Value()))
		}
		return out
	}
	return rv
}

// cloneElement copies one container element and converts the result back to
// the element type. Elements that come back in another shape are kept as is.
func cloneElement(elem reflect.Value) reflect.Value {
	switch elem.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map:
		if elem.IsNil() {
			return elem
		}
	}
	copied := cloneValue(elem.Interface(), true)
	if copied == nil {
		return reflect.Zero(elem.Type())
	}
	out := reflect.ValueOf(copied)
	switch {
	case out.Type().AssignableTo(elem.Type()):
		return out
	case out.Type().ConvertibleTo(elem.Type()):
		return out.Convert(elem.Type())
	default:
		return elem
	}
}
