// Package openapi checks OpenAPI 3 documents with kin-openapi before their
// component schemas are turned into definitions.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-schemamodel/pkg/schema"
)

// Options configures the Validator.
type Options struct {
	// AllowExternalRefs lets kin-openapi follow refs to other documents.
	AllowExternalRefs bool
	// ValidateExamples checks example payloads against their schemas.
	ValidateExamples bool
}

// Validator loads and validates an OpenAPI document.
type Validator struct {
	options Options
}

// New constructs a Validator with the given options.
func New(options Options) *Validator {
	return &Validator{options: options}
}

// Validate loads doc with kin-openapi and runs its structural validation.
// Documents without components.schemas are rejected because they carry no
// definitions to generate from.
func (v *Validator) Validate(ctx context.Context, doc schema.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return errors.New("openapi validator: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: v.options.AllowExternalRefs,
	}

	var (
		api *openapi3.T
		err error
	)
	if src := doc.Source(); v.options.AllowExternalRefs && src != nil && src.Kind() == schema.SourceKindFile {
		api, err = loader.LoadFromDataWithPath(raw, &url.URL{Path: src.Location()})
	} else {
		api, err = loader.LoadFromData(raw)
	}
	if err != nil {
		return fmt.Errorf("openapi validator: load document: %w", err)
	}

	var opts []openapi3.ValidationOption
	if !v.options.ValidateExamples {
		opts = append(opts, openapi3.DisableExamplesValidation())
	}
	if err := api.Validate(ctx, opts...); err != nil {
		return fmt.Errorf("openapi validator: validate: %w", err)
	}

	if api.Components == nil || len(api.Components.Schemas) == 0 {
		return errors.New("openapi validator: document has no components.schemas")
	}
	return nil
}
