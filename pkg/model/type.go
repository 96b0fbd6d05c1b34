package model

import (
	"fmt"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
)

// Accessor defines a computed property. Reads and writes of the property name
// are routed to Get/Set before the instance's own fields or property bag are
// consulted. A nil Set makes the property read-only.
type Accessor struct {
	Get func(m *Model) any
	Set func(m *Model, value any) error
}

// Type describes a family of model instances: the schema they validate
// against, the properties they declare and their construction policy.
// Fields left empty are inherited from Parent. A Type must not be modified
// after the first instance is constructed.
type Type struct {
	// Name is used in error messages; defaults to "Model".
	Name string
	// Parent is the type this one extends.
	Parent *Type
	// Schema is the JSON Schema document. Takes precedence over SchemaJSON.
	Schema map[string]any
	// SchemaJSON is an embedded schema literal, parsed once on first use.
	SchemaJSON string
	// PropertyNames lists the declared properties in declaration order.
	PropertyNames []string
	// ValidAtInstantiation requests validation right after construction.
	// Nil inherits the parent's setting.
	ValidAtInstantiation *bool
	// Accessors maps property names to computed properties.
	Accessors map[string]Accessor

	once      sync.Once
	schema    map[string]any
	schemaErr error
}

// Bool returns a pointer to v, for ValidAtInstantiation literals.
func Bool(v bool) *bool {
	return &v
}

// TypeName returns the name used in error messages.
func (t *Type) TypeName() string {
	if t == nil {
		return "Model"
	}
	if name := strings.TrimSpace(t.Name); name != "" {
		return name
	}
	if t.Parent != nil {
		return t.Parent.TypeName()
	}
	return "Model"
}

// SchemaDocument returns the schema for t, walking up the parent chain. The
// parsed form of SchemaJSON is memoized.
func (t *Type) SchemaDocument() (map[string]any, error) {
	if t == nil {
		return nil, ErrSchemaUndefined
	}
	t.once.Do(func() {
		t.schema, t.schemaErr = t.loadSchema()
	})
	return t.schema, t.schemaErr
}

func (t *Type) loadSchema() (map[string]any, error) {
	if t.Schema != nil {
		return t.Schema, nil
	}
	if literal := strings.TrimSpace(t.SchemaJSON); literal != "" {
		var doc map[string]any
		if err := json.Unmarshal([]byte(literal), &doc); err != nil {
			return nil, fmt.Errorf("model: parse %s schema: %w", t.TypeName(), err)
		}
		if doc == nil {
			return nil, fmt.Errorf("model: %s schema literal is not an object", t.TypeName())
		}
		return doc, nil
	}
	if t.Parent != nil {
		return t.Parent.SchemaDocument()
	}
	return nil, ErrSchemaUndefined
}

// Properties returns the declared property names, or nil when neither t nor
// its parents declare any.
func (t *Type) Properties() []string {
	for current := t; current != nil; current = current.Parent {
		if current.PropertyNames != nil {
			return append(make([]string, 0, len(current.PropertyNames)), current.PropertyNames...)
		}
	}
	return nil
}

// ValidatesAtInstantiation reports the effective construction-time policy.
func (t *Type) ValidatesAtInstantiation() bool {
	for current := t; current != nil; current = current.Parent {
		if current.ValidAtInstantiation != nil {
			return *current.ValidAtInstantiation
		}
	}
	return false
}

// Defaults returns a property bag holding every declared property set to
// its schema default, or nil when the schema declares none.
func (t *Type) Defaults() (*Properties, error) {
	doc, err := t.SchemaDocument()
	if err != nil {
		return nil, err
	}
	props, _ := doc["properties"].(map[string]any)
	out := NewProperties()
	for _, name := range t.Properties() {
		var value any
		if sub, ok := props[name].(map[string]any); ok {
			value = cloneValue(sub["default"], true)
		}
		out.Set(name, value)
	}
	return out, nil
}

func (t *Type) accessor(name string) (Accessor, bool) {
	for current := t; current != nil; current = current.Parent {
		if acc, ok := current.Accessors[name]; ok {
			return acc, true
		}
	}
	return Accessor{}, false
}
