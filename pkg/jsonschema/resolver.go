package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-schemamodel/pkg/schema"
)

const (
	defaultMaxDocumentBytes = int64(5 << 20)
	defaultMaxDocuments     = 128
	defaultMaxRefDepth      = 64
)

// ErrRefCycle is returned when a $ref chain leads back to itself. Inlining
// cannot represent recursive schemas.
var ErrRefCycle = errors.New("jsonschema resolver: ref cycle detected")

// ResolveOptions configures JSON Schema ref resolution.
type ResolveOptions struct {
	// AllowHTTPRefs toggles HTTP/HTTPS ref resolution.
	AllowHTTPRefs bool
	// AllowPathTraversal permits refs to escape the root directory.
	AllowPathTraversal bool
	// MaxDocumentBytes caps the size of any single referenced document.
	MaxDocumentBytes int64
	// MaxDocuments caps the number of unique documents loaded during resolution.
	MaxDocuments int
	// MaxRefDepth caps the depth of $ref resolution chains.
	MaxRefDepth int
}

func (o ResolveOptions) withDefaults() ResolveOptions {
	if o.MaxDocumentBytes <= 0 {
		o.MaxDocumentBytes = defaultMaxDocumentBytes
	}
	if o.MaxDocuments <= 0 {
		o.MaxDocuments = defaultMaxDocuments
	}
	if o.MaxRefDepth <= 0 {
		o.MaxRefDepth = defaultMaxRefDepth
	}
	return o
}

// Resolver inlines JSON Schema $ref references. Every call to Resolve works
// on its own document cache so resolvers are safe to share.
type Resolver struct {
	loader Loader
	opts   ResolveOptions
}

// NewResolver constructs a resolver with the supplied loader and options.
// A nil loader limits resolution to refs inside the root document.
func NewResolver(loader Loader, opts ResolveOptions) *Resolver {
	return &Resolver{loader: loader, opts: opts.withDefaults()}
}

// Resolve returns a copy of payload with every $ref inlined. Refs may point
// into the same document (JSON pointers or $anchor names), to relative files
// or fs entries, or to URLs when AllowHTTPRefs is set.
func (r *Resolver) Resolve(ctx context.Context, doc schema.Document, payload map[string]any) (map[string]any, error) {
	if r == nil {
		return nil, errors.New("jsonschema resolver: resolver is nil")
	}
	if doc.Source() == nil {
		return nil, errors.New("jsonschema resolver: source is nil")
	}
	if payload == nil {
		return nil, errors.New("jsonschema resolver: payload is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store := newDocStore(r.loader, r.opts)
	root, err := store.addRoot(doc, payload)
	if err != nil {
		return nil, err
	}

	w := &walker{ctx: ctx, store: store, maxDepth: r.opts.MaxRefDepth}
	out, err := w.schema(root, root.data, nil)
	if err != nil {
		return nil, err
	}
	resolved, ok := out.(map[string]any)
	if !ok {
		return nil, errors.New("jsonschema resolver: resolved root is not an object")
	}
	return resolved, nil
}

type keywordShape int

const (
	shapeData keywordShape = iota
	shapeSchema
	shapeSchemaMap
	shapeComponents
)

// keywordShapes lists the keywords whose values hold subschemas. Anything
// else is data, so a "default" that happens to carry a "$ref" key stays put.
var keywordShapes = map[string]keywordShape{
	"definitions":           shapeSchemaMap,
	"$defs":                 shapeSchemaMap,
	"properties":            shapeSchemaMap,
	"patternProperties":     shapeSchemaMap,
	"dependentSchemas":      shapeSchemaMap,
	"items":                 shapeSchema,
	"additionalItems":       shapeSchema,
	"additionalProperties":  shapeSchema,
	"unevaluatedItems":      shapeSchema,
	"unevaluatedProperties": shapeSchema,
	"contains":              shapeSchema,
	"propertyNames":         shapeSchema,
	"not":                   shapeSchema,
	"if":                    shapeSchema,
	"then":                  shapeSchema,
	"else":                  shapeSchema,
	"oneOf":                 shapeSchema,
	"anyOf":                 shapeSchema,
	"allOf":                 shapeSchema,
	"prefixItems":           shapeSchema,
	"components":            shapeComponents,
}

// refChain holds the canonical keys of the refs currently being expanded.
type refChain []string

func (c refChain) has(key string) bool {
	for _, entry := range c {
		if entry == key {
			return true
		}
	}
	return false
}

func (c refChain) with(key string) refChain {
	next := make(refChain, len(c), len(c)+1)
	copy(next, c)
	return append(next, key)
}

type walker struct {
	ctx      context.Context
	store    *docStore
	maxDepth int
}

// schema expands one schema position. Arrays are walked element by element
// so tuple forms of items and the combinator lists share this path.
func (w *walker) schema(doc *storedDoc, node any, chain refChain) (any, error) {
	switch typed := node.(type) {
	case []any:
		out := make([]any, len(typed))
		for idx, entry := range typed {
			value, err := w.schema(doc, entry, chain)
			if err != nil {
				return nil, err
			}
			out[idx] = value
		}
		return out, nil
	case map[string]any:
		if ref := strings.TrimSpace(readString(typed, "$ref")); ref != "" {
			return w.follow(doc, ref, typed, chain)
		}
		return w.object(doc, typed, chain)
	default:
		return node, nil
	}
}

func (w *walker) follow(doc *storedDoc, ref string, holder map[string]any, chain refChain) (any, error) {
	target, err := w.store.lookup(w.ctx, doc, ref)
	if err != nil {
		return nil, err
	}
	if len(chain) >= w.maxDepth {
		return nil, fmt.Errorf("jsonschema resolver: ref depth exceeds %d", w.maxDepth)
	}
	if chain.has(target.key) {
		return nil, fmt.Errorf("%w at %s", ErrRefCycle, ref)
	}
	merged, err := overlaySiblings(target.value, holder)
	if err != nil {
		return nil, err
	}
	return w.schema(target.doc, merged, chain.with(target.key))
}

func (w *walker) object(doc *storedDoc, node map[string]any, chain refChain) (map[string]any, error) {
	out := make(map[string]any, len(node))
	for key, value := range node {
		var err error
		switch keywordShapes[key] {
		case shapeSchema:
			value, err = w.schema(doc, value, chain)
		case shapeSchemaMap:
			value, err = w.schemaMap(doc, value, chain)
		case shapeComponents:
			value, err = w.components(doc, value, chain)
		}
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}

func (w *walker) schemaMap(doc *storedDoc, value any, chain refChain) (any, error) {
	entries, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}
	out := make(map[string]any, len(entries))
	for name, entry := range entries {
		resolved, err := w.schema(doc, entry, chain)
		if err != nil {
			return nil, err
		}
		out[name] = resolved
	}
	return out, nil
}

// components walks an OpenAPI components object; only its schemas section
// holds JSON Schema.
func (w *walker) components(doc *storedDoc, value any, chain refChain) (any, error) {
	sections, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}
	out := make(map[string]any, len(sections))
	for name, section := range sections {
		if name == "schemas" {
			resolved, err := w.schemaMap(doc, section, chain)
			if err != nil {
				return nil, err
			}
			section = resolved
		}
		out[name] = section
	}
	return out, nil
}

// overlaySiblings copies the $ref target and lays the sibling keywords of the
// referencing object over it, so local title, description or default win.
func overlaySiblings(target any, holder map[string]any) (any, error) {
	copied := cloneAny(target)
	object, ok := copied.(map[string]any)
	if !ok {
		if len(holder) > 1 {
			return nil, errors.New("jsonschema resolver: $ref target is not an object")
		}
		return copied, nil
	}
	for key, value := range holder {
		if key != "$ref" {
			object[key] = value
		}
	}
	return object, nil
}
