package schemamodel

import (
	"context"

	"github.com/goliatone/go-schemamodel/pkg/codegen"
	pkgjsonschema "github.com/goliatone/go-schemamodel/pkg/jsonschema"
	"github.com/goliatone/go-schemamodel/pkg/model"
	"github.com/goliatone/go-schemamodel/pkg/schema"
)

// Model is the runtime base type embedded by generated models.
type Model = model.Model

// Type describes a model type: its schema, declared properties and
// construction policy.
type Type = model.Type

// Properties is the ordered property bag models are built from.
type Properties = model.Properties

// Result aliases codegen.Result for callers of the helpers below.
type Result = codegen.Result

// NewGenerator exposes the generator constructor from the top-level module,
// wired to the default loader and adapter. HTTP sources stay disabled unless
// loaderOptions enable them.
func NewGenerator(loaderOptions []pkgjsonschema.LoaderOption, options ...codegen.Option) *codegen.Generator {
	adapter := NewAdapter(NewLoader(loaderOptions...))
	return codegen.NewGenerator(adapter, options...)
}

// GenerateFile loads the schema at source, generates models for its typed
// definitions and writes them into outdir. It is the simplest entry point for
// callers that just want files on disk.
func GenerateFile(ctx context.Context, source schema.Source, outdir string, options ...codegen.Option) (Result, error) {
	return NewGenerator(nil, options...).GenerateFile(ctx, source, outdir)
}

// GenerateFromDocument generates models from a pre-loaded document, bypassing
// the loader stage. Relative $refs cannot be followed for in-memory
// documents.
func GenerateFromDocument(ctx context.Context, doc schema.Document, options ...codegen.Option) (Result, error) {
	return NewGenerator(nil, options...).Generate(ctx, doc)
}
