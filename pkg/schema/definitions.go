package schema

import "context"

// DefinitionsLocation records which container of the document held the
// named definitions.
type DefinitionsLocation string

const (
	LocationDefinitions DefinitionsLocation = "definitions"
	LocationDefs        DefinitionsLocation = "$defs"
	LocationComponents  DefinitionsLocation = "components.schemas"
)

// Definition is one named, dereferenced schema extracted from a document.
type Definition struct {
	// Name is the key the definition was declared under.
	Name string
	// Schema is the definition with every $ref inlined.
	Schema map[string]any
	// PropertyOrder lists the keys of Schema["properties"] in the order the
	// document declared them.
	PropertyOrder []string
}

// Type returns the definition's "type" keyword, which may be a string or a
// list of strings, or nil when absent.
func (d Definition) Type() any {
	if d.Schema == nil {
		return nil
	}
	return d.Schema["type"]
}

// HasType reports whether the definition carries a usable "type" keyword.
// A missing, null, false, zero or empty-string type counts as absent; lists
// and objects count as present even when empty.
func (d Definition) HasType() bool {
	switch typed := d.Schema["type"].(type) {
	case nil:
		return false
	case string:
		return typed != ""
	case bool:
		return typed
	case float64:
		return typed != 0
	case int:
		return typed != 0
	default:
		return true
	}
}

// Title returns the "title" keyword or an empty string.
func (d Definition) Title() string {
	title, _ := d.Schema["title"].(string)
	return title
}

// Description returns the "description" keyword or an empty string.
func (d Definition) Description() string {
	desc, _ := d.Schema["description"].(string)
	return desc
}

// Property returns the schema of a declared property.
func (d Definition) Property(name string) (map[string]any, bool) {
	props, _ := d.Schema["properties"].(map[string]any)
	prop, ok := props[name].(map[string]any)
	return prop, ok
}

// DefinitionSet is the ordered list of definitions found in one document.
type DefinitionSet struct {
	Source      Source
	Location    DefinitionsLocation
	Definitions []Definition
}

// Len returns the number of definitions.
func (s DefinitionSet) Len() int {
	return len(s.Definitions)
}

// Names lists the definition names in declaration order.
func (s DefinitionSet) Names() []string {
	names := make([]string, 0, len(s.Definitions))
	for _, def := range s.Definitions {
		names = append(names, def.Name)
	}
	return names
}

// Lookup returns the definition declared under name.
func (s DefinitionSet) Lookup(name string) (Definition, bool) {
	for _, def := range s.Definitions {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

// DefinitionsProvider turns a loaded document into its named definitions.
// pkg/jsonschema.Adapter is the default implementation.
type DefinitionsProvider interface {
	Load(ctx context.Context, src Source) (Document, error)
	Definitions(ctx context.Context, doc Document) (DefinitionSet, error)
}
