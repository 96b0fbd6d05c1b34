package codegen

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-schemamodel/pkg/schema"
)

// ErrNoType marks definitions without a "type" keyword. They are skipped.
var ErrNoType = errors.New("codegen: definition has no type")

// Class is the generator IR for one definition.
type Class struct {
	// GoName is the exported Go type name.
	GoName string
	// Name is the definition key in the source document.
	Name        string
	Title       string
	Description string
	// SchemaJSON is the dereferenced definition, embedded in the output.
	SchemaJSON string
	Properties []Property
}

// Property describes one declared property of a Class.
type Property struct {
	Name        string
	GoName      string
	TypeExpr    string
	Description string
	Default     any
	HasDefault  bool
}

// PropertyNames lists the declared property names in order.
func (c Class) PropertyNames() []string {
	names := make([]string, 0, len(c.Properties))
	for _, prop := range c.Properties {
		names = append(names, prop.Name)
	}
	return names
}

// TypeVar is the unexported package variable holding the model.Type.
func (c Class) TypeVar() string {
	return lowerFirst(c.GoName) + "Type"
}

// Identifiers lists the package-level names emitted for c.
func (c Class) Identifiers() []string {
	return []string{c.GoName, c.TypeVar(), c.GoName + "Type", "New" + c.GoName, "New" + c.GoName + "In", "Wrap" + c.GoName}
}

// BuildClass converts a definition into a Class. Definitions without a
// "type" keyword return ErrNoType.
func BuildClass(def schema.Definition) (Class, error) {
	if !def.HasType() {
		return Class{}, fmt.Errorf("%w: %s", ErrNoType, def.Name)
	}

	literal, err := json.Marshal(def.Schema)
	if err != nil {
		return Class{}, fmt.Errorf("codegen: encode %s schema: %w", def.Name, err)
	}

	class := Class{
		GoName:      GoName(def.Name),
		Name:        def.Name,
		Title:       def.Title(),
		Description: def.Description(),
		SchemaJSON:  string(literal),
	}

	accessors := make(uniqueNames)
	for _, name := range def.PropertyOrder {
		propSchema, _ := def.Property(name)
		prop := Property{
			Name:     name,
			GoName:   accessors.takeAccessor(accessorName(name)),
			TypeExpr: TypeExpr(propSchema),
		}
		if desc, ok := propSchema["description"].(string); ok {
			prop.Description = desc
		}
		if value, ok := propSchema["default"]; ok {
			prop.Default = value
			prop.HasDefault = true
		}
		class.Properties = append(class.Properties, prop)
	}
	return class, nil
}
