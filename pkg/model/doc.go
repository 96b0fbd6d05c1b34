// Package model is the runtime base for schema-backed objects.
//
// A Type carries the JSON Schema, the declared property names and the
// construction policy shared by all instances of a generated (or hand
// written) model. A Model instance holds either a positional value or an
// ordered property bag and routes every property access through Get and Set,
// so properties missing from the declared list behave like declared ones:
//
//	var personType = &model.Type{
//		Name:          "Person",
//		SchemaJSON:    `{"type":"object","properties":{"name":{"type":"string"}}}`,
//		PropertyNames: []string{"name"},
//	}
//
//	p, err := model.New(personType, model.NewProperties(model.Prop("name", "Ada")))
//	name, _ := p.Get("name")
//	_ = p.Set("nickname", "ada")
//	data, err := p.ToDict(model.WithValidate(true))
//
// Validation is delegated to a validation.Validator held by the Runtime that
// constructed the instance. Construction-time validation runs when the Type
// sets ValidAtInstantiation (inherited through Parent) and the runtime's
// switch is on; bulk loaders can turn the switch off with
// Runtime.SetValidAtInstantiation(false) and validate explicitly later.
package model
