package model

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-schemamodel/pkg/validation"
)

var (
	// ErrSchemaUndefined is returned when a Type (and its parents) carry no schema.
	ErrSchemaUndefined = errors.New("model: schema is not defined")
	// ErrInvalidState reports an instance whose value is neither positional nor named.
	ErrInvalidState = errors.New("model: instance has both a value and properties")
	// ErrReadOnlyProperty is returned when writing through an accessor without a setter.
	ErrReadOnlyProperty = errors.New("model: property is read-only")
	// ErrUncomparableSet is returned when a set mixes element kinds that have no common ordering.
	ErrUncomparableSet = errors.New("model: set elements are not comparable")
)

// ValidationError wraps the first violation reported by the validator with
// the name of the model type that failed.
type ValidationError struct {
	TypeName string
	Issue    validation.SchemaIssue
	Cause    error
}

func newValidationError(typeName string, cause error) *ValidationError {
	verr := &ValidationError{TypeName: typeName, Cause: cause}
	var issueErr *validation.Error
	if errors.As(cause, &issueErr) {
		verr.Issue = issueErr.Issue
	} else if cause != nil {
		verr.Issue = validation.SchemaIssue{Message: cause.Error()}
	}
	return verr
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause == nil {
		return fmt.Sprintf("failed to validate %s instance", e.TypeName)
	}
	return fmt.Sprintf("failed to validate %s instance: %v", e.TypeName, e.Cause)
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
