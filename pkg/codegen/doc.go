// Package codegen turns the named definitions of a JSON Schema document into
// Go model types built on package model.
//
// Definitions are read through a schema.DefinitionsProvider (normally the
// jsonschema adapter, which also inlines $refs), converted into Class values
// and rendered with jennifer. Each generated type embeds *model.Model, carries
// its definition as a schema literal and gets a constructor that fills in
// schema defaults, plus Get/Set backed accessors per declared property.
// Definitions without a "type" keyword are skipped.
package codegen
