package main

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-schemamodel"
	pkgjsonschema "github.com/goliatone/go-schemamodel/pkg/jsonschema"
	"github.com/goliatone/go-schemamodel/pkg/validation"
)

func newLinter(strict bool) linter {
	return linter{
		adapter:   schemamodel.NewAdapter(nil),
		validator: validation.NewJSONSchemaValidator(),
		strict:    strict,
	}
}

func lintRaw(t *testing.T, l linter, raw string) []violation {
	t.Helper()
	doc := pkgjsonschema.MustNewDocument(pkgjsonschema.SourceFromMemory("s.json"), []byte(raw))
	result, err := l.lintDocument(context.Background(), "s.json", doc)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	sortViolations(result)
	return result
}

func TestLint_CleanDocument(t *testing.T) {
	raw := `{"definitions": {"Foo": {"type": "object", "properties": {"b": {"type": "integer", "default": 1}}}, "Bar": {}}}`
	if got := lintRaw(t, newLinter(false), raw); len(got) != 0 {
		t.Fatalf("expected no violations, got %#v", got)
	}
}

func TestLint_Violations(t *testing.T) {
	raw := `{"definitions": {
  "Foo": {"type": "object", "properties": {"b": {"type": "integer", "default": "one"}}},
  "Broken": {"type": "object", "minProperties": "three"},
  "Bar": {"description": "abstract"}
}}`
	got := lintRaw(t, newLinter(true), raw)
	if len(got) != 3 {
		t.Fatalf("expected 3 violations, got %#v", got)
	}
	if got[0].location != "definitions > Bar" || !strings.Contains(got[0].message, "no type") {
		t.Fatalf("unexpected first violation %#v", got[0])
	}
	if got[1].location != "definitions > Broken" {
		t.Fatalf("unexpected second violation %#v", got[1])
	}
	if got[2].location != "definitions > Foo > properties.b" || !strings.Contains(got[2].message, "default") {
		t.Fatalf("unexpected third violation %#v", got[2])
	}
}

func TestLint_NameCollision(t *testing.T) {
	raw := `{"definitions": {"pet-store": {"type": "object"}, "pet_store": {"type": "object"}}}`
	got := lintRaw(t, newLinter(false), raw)
	if len(got) != 1 || !strings.Contains(got[0].message, "collision") {
		t.Fatalf("expected a collision violation, got %#v", got)
	}
}

func TestLint_NoDefinitions(t *testing.T) {
	got := lintRaw(t, newLinter(false), `{"type": "object"}`)
	if len(got) != 1 || got[0].location != "document" {
		t.Fatalf("expected a document violation, got %#v", got)
	}
}
