package jsonschema

import "github.com/goliatone/go-schemamodel/pkg/schema"

// The adapter shares its document and source model with pkg/schema; these
// aliases let callers stay on a single import.
type (
	Document   = schema.Document
	Source     = schema.Source
	SourceKind = schema.SourceKind
)

const (
	SourceKindFile   = schema.SourceKindFile
	SourceKindFS     = schema.SourceKindFS
	SourceKindURL    = schema.SourceKindURL
	SourceKindMemory = schema.SourceKindMemory
)

var (
	NewDocument      = schema.NewDocument
	MustNewDocument  = schema.MustNewDocument
	SourceFromFile   = schema.SourceFromFile
	SourceFromFS     = schema.SourceFromFS
	SourceFromURL    = schema.SourceFromURL
	SourceFromMemory = schema.SourceFromMemory
)
