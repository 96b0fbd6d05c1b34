package jsonschema

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-schemamodel/pkg/schema"
)

const DefaultAdapterName = "jsonschema"

// DocumentValidator checks a whole document before definitions are
// extracted. The OpenAPI validator in internal/openapi is one.
type DocumentValidator func(ctx context.Context, doc schema.Document) error

// Adapter loads schema documents and extracts their named definitions with
// every $ref inlined.
type Adapter struct {
	loader   Loader
	resolver *Resolver
	openapi  DocumentValidator
}

var _ schema.DefinitionsProvider = (*Adapter)(nil)

// AdapterOption configures a JSON Schema adapter.
type AdapterOption func(*adapterOptions)

type adapterOptions struct {
	resolver       *Resolver
	resolverConfig ResolveOptions
	openapi        DocumentValidator
}

// WithResolver injects a custom resolver implementation.
func WithResolver(resolver *Resolver) AdapterOption {
	return func(opts *adapterOptions) {
		opts.resolver = resolver
	}
}

// WithResolverOptions supplies options to the default resolver.
func WithResolverOptions(options ResolveOptions) AdapterOption {
	return func(opts *adapterOptions) {
		opts.resolverConfig = options
	}
}

// WithOpenAPIValidator checks OpenAPI documents before their
// components.schemas are read.
func WithOpenAPIValidator(fn DocumentValidator) AdapterOption {
	return func(opts *adapterOptions) {
		opts.openapi = fn
	}
}

// NewAdapter constructs a JSON Schema adapter with the supplied loader.
func NewAdapter(loader Loader, options ...AdapterOption) *Adapter {
	opts := adapterOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	resolver := opts.resolver
	if resolver == nil {
		resolver = NewResolver(loader, opts.resolverConfig)
	}

	return &Adapter{
		loader:   loader,
		resolver: resolver,
		openapi:  opts.openapi,
	}
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect reports whether the raw JSON payload looks like a JSON Schema or an
// OpenAPI 3 document carrying component schemas.
func (a *Adapter) Detect(_ schema.Source, raw []byte) bool {
	return detectJSONSchema(raw)
}

// Load fetches the raw schema document.
func (a *Adapter) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if a == nil || a.loader == nil {
		return schema.Document{}, errors.New("jsonschema adapter: loader is nil")
	}
	return a.loader.Load(ctx, src)
}

// Definitions parses doc, inlines its $refs and returns the named definitions
// in declaration order. They are read from "definitions", else "$defs", else
// (for OpenAPI documents) "components.schemas". A document without any of
// them yields an empty set.
func (a *Adapter) Definitions(ctx context.Context, doc schema.Document) (schema.DefinitionSet, error) {
	if a == nil || a.resolver == nil {
		return schema.DefinitionSet{}, errors.New("jsonschema adapter: resolver is nil")
	}
	if doc.Size() == 0 {
		return schema.DefinitionSet{}, errors.New("jsonschema adapter: empty document")
	}

	parsed, err := parseDocument(doc)
	if err != nil {
		return schema.DefinitionSet{}, err
	}
	if isOpenAPI(parsed.payload) && a.openapi != nil {
		if err := a.openapi(ctx, parsed.doc); err != nil {
			return schema.DefinitionSet{}, fmt.Errorf("jsonschema adapter: %w", err)
		}
	}

	resolved, err := a.resolver.Resolve(ctx, parsed.doc, parsed.payload)
	if err != nil {
		return schema.DefinitionSet{}, err
	}

	set := schema.DefinitionSet{Source: doc.Source()}
	location, pointer, container := locateDefinitions(resolved)
	if container == nil {
		return set, nil
	}
	set.Location = location

	for _, name := range orderedKeys(container, parsed.order[pointer]) {
		def := schema.Definition{Name: name}
		if body, ok := container[name].(map[string]any); ok {
			def.Schema = body
			props, _ := body["properties"].(map[string]any)
			propsPointer := pointer + "/" + escapeJSONPointer(name) + "/properties"
			def.PropertyOrder = orderedKeys(props, parsed.order[propsPointer])
		}
		set.Definitions = append(set.Definitions, def)
	}
	return set, nil
}

func locateDefinitions(payload map[string]any) (schema.DefinitionsLocation, string, map[string]any) {
	if defs, ok := payload["definitions"].(map[string]any); ok {
		return schema.LocationDefinitions, "/definitions", defs
	}
	if defs, ok := payload["$defs"].(map[string]any); ok {
		return schema.LocationDefs, "/$defs", defs
	}
	if isOpenAPI(payload) {
		components, _ := payload["components"].(map[string]any)
		if schemas, ok := components["schemas"].(map[string]any); ok {
			return schema.LocationComponents, "/components/schemas", schemas
		}
	}
	return "", "", nil
}

func isOpenAPI(payload map[string]any) bool {
	_, ok := payload["openapi"]
	return ok
}

func detectJSONSchema(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var payload map[string]any
	if err := json.Unmarshal(trimmed, &payload); err != nil || payload == nil {
		return false
	}
	if _, ok := payload["swagger"]; ok {
		return false
	}
	if isOpenAPI(payload) {
		components, _ := payload["components"].(map[string]any)
		_, ok := components["schemas"]
		return ok
	}
	for _, key := range []string{"$schema", "$id", "definitions", "$defs", "properties", "type", "items"} {
		if _, ok := payload[key]; ok {
			return true
		}
	}
	return false
}
