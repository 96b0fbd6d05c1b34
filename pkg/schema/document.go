package schema

import (
	"bytes"
	"errors"
)

// Document is a schema payload together with where it came from and whether
// it is JSON or YAML. The payload is never shared with callers.
type Document struct {
	source Source
	raw    []byte
	format Format
}

// NewDocument copies raw and detects its format from src and the payload.
func NewDocument(src Source, raw []byte) (Document, error) {
	switch {
	case src == nil:
		return Document{}, errors.New("schema: source is required")
	case len(raw) == 0:
		return Document{}, errors.New("schema: raw document is empty")
	}
	owned := bytes.Clone(raw)
	return Document{source: src, raw: owned, format: DetectFormat(src, owned)}, nil
}

// MustNewDocument is NewDocument for fixtures; it panics on error.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// WithRaw swaps the payload, keeping the source. Adapters use it after
// converting YAML to JSON.
func (d Document) WithRaw(raw []byte, format Format) Document {
	d.raw = bytes.Clone(raw)
	d.format = format
	return d
}

func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return bytes.Clone(d.raw)
}

func (d Document) Size() int {
	return len(d.raw)
}

// Format defaults to JSON for zero Documents.
func (d Document) Format() Format {
	if d.format == "" {
		return FormatJSON
	}
	return d.format
}

func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}
