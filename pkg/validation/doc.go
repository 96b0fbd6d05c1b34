// Package validation is the validator boundary used by the model runtime and
// the generator. JSONSchemaValidator wraps santhosh-tekuri/jsonschema and
// reports the first violation found as an *Error carrying a SchemaIssue.
package validation
