package model

import (
	"encoding"
	"fmt"
	"reflect"
	"sort"

	json "github.com/goccy/go-json"
)

// Model is the runtime base for schema-backed objects. Generated types embed
// *Model and expose typed accessors that delegate to Get and Set.
type Model struct {
	typ    *Type
	rt     *Runtime
	names  []string
	value  Value
	fields map[string]any
}

// Type returns the descriptor the instance was constructed from.
func (m *Model) Type() *Type {
	return m.typ
}

// TypeName returns the concrete type name used in error messages.
func (m *Model) TypeName() string {
	return m.typ.TypeName()
}

// Schema returns the JSON Schema document the instance validates against.
func (m *Model) Schema() map[string]any {
	doc, _ := m.typ.SchemaDocument()
	return doc
}

// PropertyNames returns the declared (or derived) property names. Nil means
// the instance has no property list, as with positional or empty instances.
func (m *Model) PropertyNames() []string {
	if m.names == nil {
		return nil
	}
	return append(make([]string, 0, len(m.names)), m.names...)
}

// Value returns the data backing the instance: Positional, Named or nil.
func (m *Model) Value() Value {
	return m.value
}

// Get reads a property. Accessors defined on the type win, then fields set
// directly on the instance, then the property bag. The second result is
// false when the property is undefined.
func (m *Model) Get(name string) (any, bool) {
	if acc, ok := m.typ.accessor(name); ok && acc.Get != nil {
		return acc.Get(m), true
	}
	if value, ok := m.fields[name]; ok {
		return value, true
	}
	if named, ok := m.value.(Named); ok {
		return named.Props.Get(name)
	}
	return nil, false
}

// Set writes a property. Accessors and existing instance fields are written
// in place; otherwise named instances with a property list store the value in
// their bag, and every other instance gains a new field.
func (m *Model) Set(name string, value any) error {
	if acc, ok := m.typ.accessor(name); ok {
		if acc.Set == nil {
			return fmt.Errorf("model: %s.%s: %w", m.TypeName(), name, ErrReadOnlyProperty)
		}
		return acc.Set(m, value)
	}
	if _, ok := m.fields[name]; ok {
		m.fields[name] = value
		return nil
	}
	if named, ok := m.value.(Named); ok && m.names != nil {
		named.Props.Set(name, value)
		return nil
	}
	if m.fields == nil {
		m.fields = make(map[string]any)
	}
	m.fields[name] = value
	return nil
}

// Has reports whether Get would find name.
func (m *Model) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Delete removes an instance field or bag entry and reports whether one existed.
func (m *Model) Delete(name string) bool {
	if _, ok := m.fields[name]; ok {
		delete(m.fields, name)
		return true
	}
	if named, ok := m.value.(Named); ok {
		return named.Props.Delete(name)
	}
	return false
}

// Keys lists the bag entries in order followed by instance fields, sorted.
func (m *Model) Keys() []string {
	var keys []string
	if named, ok := m.value.(Named); ok {
		keys = named.Props.Keys()
	}
	extra := make([]string, 0, len(m.fields))
	for key := range m.fields {
		extra = append(extra, key)
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// Validate checks the instance against its schema, or data when supplied.
// Without data the instance is serialized first. The first violation is
// returned as a *ValidationError.
func (m *Model) Validate(data ...any) error {
	if len(data) == 0 || data[0] == nil {
		_, err := m.ToDict(WithValidate(true))
		return err
	}
	return m.validateData(data[0])
}

func (m *Model) validateData(data any) error {
	doc, err := m.typ.SchemaDocument()
	if err != nil {
		return fmt.Errorf("model: %s: %w", m.TypeName(), err)
	}
	return m.rt.validate(m.TypeName(), doc, data)
}

// ToDict returns the instance as plain data: map[string]any, []any and
// scalars. Validation is off unless WithValidate(true) is passed.
func (m *Model) ToDict(options ...SerializeOption) (any, error) {
	cfg := newSerializeConfig(false, options)
	return m.export(cfg)
}

// ToJSON encodes the plain-data form of the instance. Validation is on
// unless WithValidate(false) is passed. Property order is preserved.
func (m *Model) ToJSON(options ...SerializeOption) ([]byte, error) {
	cfg := newSerializeConfig(true, options)
	cfg.ordered = true
	data, err := m.export(cfg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(data)
}

// MarshalJSON encodes the instance without validation.
func (m *Model) MarshalJSON() ([]byte, error) {
	return m.ToJSON(WithValidate(false))
}

func (m *Model) export(cfg serializeConfig) (any, error) {
	var (
		result any
		err    error
	)
	s := serializer{cfg: cfg}
	switch value := m.value.(type) {
	case nil:
		result = nil
	case Positional:
		result, err = s.plain(value.V)
	case Named:
		result, err = s.properties(value.Props)
	default:
		return nil, fmt.Errorf("%s: cannot serialize: %w", m.TypeName(), ErrInvalidState)
	}
	if err != nil {
		return nil, err
	}
	if cfg.validate {
		if err := m.validateData(result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// String renders the instance as JSON without validation.
func (m *Model) String() string {
	raw, err := m.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%s<%v>", m.TypeName(), err)
	}
	return string(raw)
}

func classifyArgs(args []any) Value {
	switch len(args) {
	case 0:
		return nil
	case 1:
		if args[0] == nil {
			return nil
		}
		if props, ok := asProperties(args[0]); ok {
			return Named{Props: props}
		}
	}
	return Positional{V: args[0]}
}

// asProperties interprets object-like arguments as a property bag. The
// caller's *Properties is kept as is so later writes are visible to it.
func asProperties(arg any) (*Properties, bool) {
	switch typed := arg.(type) {
	case *Properties:
		if typed == nil {
			return NewProperties(), true
		}
		return typed, true
	case Properties:
		return typed.Clone(), true
	case map[string]any:
		return PropertiesFromMap(typed), true
	case json.Marshaler, encoding.TextMarshaler:
		return nil, false
	}

	rv := reflect.ValueOf(arg)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || isSetType(rv.Type()) {
			return nil, false
		}
		values := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			values[iter.Key().String()] = iter.Value().Interface()
		}
		return PropertiesFromMap(values), true
	case reflect.Struct:
		props := NewProperties()
		for _, field := range structFields(rv) {
			props.Set(field.name, field.value.Interface())
		}
		return props, true
	}
	return nil, false
}
