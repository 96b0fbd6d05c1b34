package model

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/goliatone/go-schemamodel/pkg/validation"
)

// Runtime constructs model instances. It owns the validator and the switch
// controlling construction-time validation, so callers that bulk-load data
// can disable the per-instance check and validate later.
type Runtime struct {
	validator           validation.Validator
	validateOnConstruct atomic.Bool
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithValidator replaces the default JSON Schema validator.
func WithValidator(v validation.Validator) RuntimeOption {
	return func(r *Runtime) {
		if v != nil {
			r.validator = v
		}
	}
}

// WithValidationAtInstantiation sets the initial state of the construction-time switch.
func WithValidationAtInstantiation(enabled bool) RuntimeOption {
	return func(r *Runtime) {
		r.validateOnConstruct.Store(enabled)
	}
}

// NewRuntime returns a Runtime with construction-time validation enabled.
func NewRuntime(options ...RuntimeOption) *Runtime {
	r := &Runtime{}
	r.validateOnConstruct.Store(true)
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.validator == nil {
		r.validator = validation.NewJSONSchemaValidator()
	}
	return r
}

var defaultRuntime = NewRuntime()

// Default returns the process-wide runtime used by New and FromJSON.
func Default() *Runtime {
	return defaultRuntime
}

// SetValidAtInstantiation toggles construction-time validation on the
// default runtime. Explicit Validate/ToDict/ToJSON calls are not affected.
func SetValidAtInstantiation(enabled bool) {
	defaultRuntime.SetValidAtInstantiation(enabled)
}

// SetValidAtInstantiation toggles construction-time validation for r.
func (r *Runtime) SetValidAtInstantiation(enabled bool) {
	r.validateOnConstruct.Store(enabled)
}

// ValidAtInstantiation reports whether construction-time validation is on.
func (r *Runtime) ValidAtInstantiation() bool {
	return r.validateOnConstruct.Load()
}

// Validator returns the validator used by instances of r.
func (r *Runtime) Validator() validation.Validator {
	return r.validator
}

// New constructs an instance of t with the default runtime.
func New(t *Type, args ...any) (*Model, error) {
	return defaultRuntime.New(t, args...)
}

// FromJSON decodes a JSON object into a named instance of t with the default runtime.
func FromJSON(t *Type, data []byte) (*Model, error) {
	return defaultRuntime.FromJSON(t, data)
}

// New constructs an instance of t. No arguments (or a single nil) yields an
// empty instance; a single object (property bag, string-keyed map or struct)
// yields named properties; anything else yields a positional value holding
// the first argument.
func (r *Runtime) New(t *Type, args ...any) (*Model, error) {
	if t == nil {
		return nil, fmt.Errorf("model: cannot instantiate Model: %w", ErrSchemaUndefined)
	}
	if _, err := t.SchemaDocument(); err != nil {
		return nil, fmt.Errorf("model: cannot instantiate %s: %w", t.TypeName(), err)
	}

	m := &Model{typ: t, rt: r, value: classifyArgs(args)}
	m.names = t.Properties()
	if m.names == nil {
		if named, ok := m.value.(Named); ok {
			keys := named.Props.Keys()
			m.names = append(make([]string, 0, len(keys)), keys...)
		}
	}

	if r.ValidAtInstantiation() && t.ValidatesAtInstantiation() {
		if _, err := m.ToDict(WithValidate(true)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FromJSON decodes a JSON object, keeping key order, and constructs a named
// instance of t from it.
func (r *Runtime) FromJSON(t *Type, data []byte) (*Model, error) {
	props, err := ParseProperties(data)
	if err != nil {
		return nil, err
	}
	return r.New(t, props)
}

func (r *Runtime) validate(typeName string, schemaDoc map[string]any, data any) error {
	if err := r.validator.Validate(context.Background(), schemaDoc, data); err != nil {
		return newValidationError(typeName, err)
	}
	return nil
}
