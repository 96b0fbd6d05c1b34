package validation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const schemaResourceURL = "schemamodel://schema.json"

// SchemaIssue represents a validation error with optional location metadata.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Keyword string `json:"keyword,omitempty"`
	Message string `json:"message"`
}

// SchemaValidationResult captures the outcome of checking a schema document.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// Error is returned by validators for the first violation found in a value.
type Error struct {
	Issue SchemaIssue
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Issue.Path != "" {
		return fmt.Sprintf("%s at %s", e.Issue.Message, e.Issue.Path)
	}
	return e.Issue.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Validator checks a plain data value against a JSON Schema document. The
// model runtime treats implementations as a black box: nil means valid, any
// error is the first violation.
type Validator interface {
	Validate(ctx context.Context, schema map[string]any, data any) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, schema map[string]any, data any) error

func (fn ValidatorFunc) Validate(ctx context.Context, schema map[string]any, data any) error {
	return fn(ctx, schema, data)
}

// Option configures a JSONSchemaValidator.
type Option func(*JSONSchemaValidator)

// WithDefaultDraft sets the draft used for schemas without a $schema keyword.
func WithDefaultDraft(draft *jsonschema.Draft) Option {
	return func(v *JSONSchemaValidator) {
		if draft != nil {
			v.draft = draft
		}
	}
}

// WithFormatAssertions enables "format" keyword assertions.
func WithFormatAssertions() Option {
	return func(v *JSONSchemaValidator) {
		v.assertFormat = true
	}
}

// JSONSchemaValidator implements Validator with santhosh-tekuri/jsonschema.
// Compiled schemas are cached by their canonical JSON encoding.
type JSONSchemaValidator struct {
	draft        *jsonschema.Draft
	assertFormat bool

	mu    sync.Mutex
	cache map[string]*jsonschema.Schema
}

var _ Validator = (*JSONSchemaValidator)(nil)

// NewJSONSchemaValidator constructs a caching validator.
func NewJSONSchemaValidator(options ...Option) *JSONSchemaValidator {
	v := &JSONSchemaValidator{
		draft: jsonschema.Draft2020,
		cache: make(map[string]*jsonschema.Schema),
	}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Validate reports the first violation of data against schemaDoc.
func (v *JSONSchemaValidator) Validate(ctx context.Context, schemaDoc map[string]any, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	compiled, err := v.Compile(schemaDoc)
	if err != nil {
		return err
	}
	instance, err := toJSONValue(data)
	if err != nil {
		return fmt.Errorf("validation: encode instance: %w", err)
	}
	if err := compiled.Validate(instance); err != nil {
		return issueError(err)
	}
	return nil
}

// Compile returns the compiled form of schemaDoc, reusing earlier results.
func (v *JSONSchemaValidator) Compile(schemaDoc map[string]any) (*jsonschema.Schema, error) {
	if schemaDoc == nil {
		return nil, errors.New("validation: schema is nil")
	}
	raw, err := json.Marshal(schemaDoc)
	if err != nil {
		return nil, fmt.Errorf("validation: encode schema: %w", err)
	}
	key := string(raw)

	v.mu.Lock()
	defer v.mu.Unlock()
	if compiled, ok := v.cache[key]; ok {
		return compiled, nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("validation: decode schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(v.draft)
	if v.assertFormat {
		compiler.AssertFormat()
	}
	if err := compiler.AddResource(schemaResourceURL, doc); err != nil {
		return nil, fmt.Errorf("validation: add schema: %w", err)
	}
	compiled, err := compiler.Compile(schemaResourceURL)
	if err != nil {
		return nil, fmt.Errorf("validation: compile schema: %w", err)
	}
	v.cache[key] = compiled
	return compiled, nil
}

// CheckSchema reports whether schemaDoc compiles. Generators use it to reject
// definitions the runtime could never validate against.
func (v *JSONSchemaValidator) CheckSchema(schemaDoc map[string]any) SchemaValidationResult {
	if _, err := v.Compile(schemaDoc); err != nil {
		return SchemaValidationResult{Valid: false, Issues: []SchemaIssue{issueFromError(err)}}
	}
	return SchemaValidationResult{Valid: true}
}

func toJSONValue(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}

var englishPrinter = message.NewPrinter(language.English)

func issueError(err error) error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &Error{Issue: issueFromError(err), Cause: err}
	}
	leaf := firstLeaf(verr)
	path := instancePointer(leaf.InstanceLocation)
	issue := SchemaIssue{
		Path:    path,
		Field:   fieldPathFromInstance(leaf.InstanceLocation),
		Message: strings.TrimSpace(err.Error()),
	}
	if leaf.ErrorKind != nil {
		issue.Keyword = "/" + strings.Join(leaf.ErrorKind.KeywordPath(), "/")
		issue.Message = strings.TrimSpace(leaf.ErrorKind.LocalizedString(englishPrinter))
	}
	return &Error{Issue: issue, Cause: err}
}

// firstLeaf follows the first cause chain down to the innermost violation.
func firstLeaf(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	current := err
	for len(current.Causes) > 0 {
		current = current.Causes[0]
	}
	return current
}

func instancePointer(location []string) string {
	if len(location) == 0 {
		return ""
	}
	parts := make([]string, 0, len(location))
	for _, segment := range location {
		segment = strings.ReplaceAll(segment, "~", "~0")
		segment = strings.ReplaceAll(segment, "/", "~1")
		parts = append(parts, segment)
	}
	return "/" + strings.Join(parts, "/")
}

func fieldPathFromInstance(location []string) string {
	if len(location) == 0 {
		return ""
	}
	out := make([]string, 0, len(location))
	for _, segment := range location {
		if isNumeric(segment) && len(out) > 0 {
			out[len(out)-1] += "[" + segment + "]"
			continue
		}
		out = append(out, segment)
	}
	return strings.Join(out, ".")
}

func issueFromError(err error) SchemaIssue {
	if err == nil {
		return SchemaIssue{Message: "unknown error"}
	}

	msg := strings.TrimSpace(err.Error())
	path := extractJSONPointer(msg)
	if path != "" {
		msg = strings.Replace(msg, " at "+path, "", 1)
	}
	msg = strings.TrimPrefix(msg, "validation: ")
	msg = strings.TrimPrefix(msg, "jsonschema: ")
	msg = strings.TrimSpace(msg)

	return SchemaIssue{
		Path:    path,
		Field:   fieldPathFromPointer(path),
		Message: msg,
	}
}

func extractJSONPointer(message string) string {
	if message == "" {
		return ""
	}
	if idx := strings.LastIndex(message, "#/"); idx >= 0 {
		candidate := strings.TrimSpace(message[idx:])
		if end := strings.IndexAny(candidate, " \n'\""); end >= 0 {
			candidate = candidate[:end]
		}
		return trimPointer(candidate)
	}
	return ""
}

func trimPointer(pointer string) string {
	if pointer == "" {
		return ""
	}
	trimmed := strings.TrimRight(pointer, ".)];,:")
	return strings.TrimSpace(trimmed)
}

// fieldPathFromPointer turns a schema pointer into the dotted property path it
// describes, skipping keyword segments.
func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimSpace(pointer)
	if trimmed == "" {
		return ""
	}
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for idx := 0; idx < len(parts); idx++ {
		segment := unescapePointer(parts[idx])
		switch segment {
		case "properties":
			if idx+1 < len(parts) {
				out = append(out, unescapePointer(parts[idx+1]))
				idx++
			}
		case "items":
			out = append(out, "items")
		case "oneOf", "anyOf", "allOf":
			if idx+1 < len(parts) && isNumeric(parts[idx+1]) {
				idx++
			}
		case "$defs", "definitions":
			if idx+1 < len(parts) {
				idx++
			}
		default:
			if segment == "" {
				continue
			}
			out = append(out, segment)
		}
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, ".")
}

func unescapePointer(segment string) string {
	segment = strings.ReplaceAll(segment, "~1", "/")
	return strings.ReplaceAll(segment, "~0", "~")
}

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	_, err := strconv.ParseUint(value, 10, 64)
	return err == nil
}
