package schemamodel

import (
	internalLoader "github.com/goliatone/go-schemamodel/internal/jsonschema/loader"
	internalOpenAPI "github.com/goliatone/go-schemamodel/internal/openapi"
	pkgjsonschema "github.com/goliatone/go-schemamodel/pkg/jsonschema"
)

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...pkgjsonschema.LoaderOption) pkgjsonschema.Loader {
	cfg := pkgjsonschema.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// NewAdapter constructs the definitions adapter over loader. OpenAPI input is
// checked with the internal kin-openapi validator unless options supply
// another one.
func NewAdapter(loader pkgjsonschema.Loader, options ...pkgjsonschema.AdapterOption) *pkgjsonschema.Adapter {
	validator := internalOpenAPI.New(internalOpenAPI.Options{})
	opts := make([]pkgjsonschema.AdapterOption, 0, len(options)+1)
	opts = append(opts, pkgjsonschema.WithOpenAPIValidator(validator.Validate))
	opts = append(opts, options...)
	return pkgjsonschema.NewAdapter(loader, opts...)
}
