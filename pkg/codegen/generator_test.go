package codegen

import (
	"bytes"
	"context"
	"errors"
	"go/parser"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemamodel/internal/jsonschema/loader"
	pkgjsonschema "github.com/goliatone/go-schemamodel/pkg/jsonschema"
	"github.com/goliatone/go-schemamodel/pkg/schema"
	"github.com/goliatone/go-schemamodel/pkg/validation"
)

const fooBarSchema = `{
  "definitions": {
    "Foo": {
      "type": "object",
      "title": "A foo",
      "description": "Holds <b>bars</b> &amp; bazzes.",
      "properties": {
        "b": {"type": "string", "default": "x", "description": "the b"},
        "c": {"type": "integer"},
        "tags": {"type": "array", "items": {"type": "string"}},
        "ref": {"$ref": "#/definitions/Bar"}
      }
    },
    "Bar": {"description": "no type here", "properties": {"z": {"type": "string"}}}
  }
}`

func memoryDoc(t *testing.T, name, raw string) schema.Document {
	t.Helper()
	return pkgjsonschema.MustNewDocument(pkgjsonschema.SourceFromMemory(name), []byte(raw))
}

func fileContent(t *testing.T, result Result, name string) string {
	t.Helper()
	for _, file := range result.Files {
		if file.Name == name {
			return string(file.Content)
		}
	}
	t.Fatalf("file %s not generated; got %v", name, fileNames(result))
	return ""
}

func fileNames(result Result) []string {
	names := make([]string, 0, len(result.Files))
	for _, file := range result.Files {
		names = append(names, file.Name)
	}
	return names
}

func assertParses(t *testing.T, name, src string) {
	t.Helper()
	if _, err := parser.ParseFile(token.NewFileSet(), name, src, parser.ParseComments); err != nil {
		t.Fatalf("generated %s does not parse: %v\n%s", name, err, src)
	}
}

func TestGenerate_SkipsDefinitionsWithoutType(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	gen := NewGenerator(pkgjsonschema.NewAdapter(nil), WithLogger(logger))

	result, err := gen.Generate(context.Background(), memoryDoc(t, "foo.schema.json", fooBarSchema))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(result.Classes) != 1 || result.Classes[0].GoName != "Foo" {
		t.Fatalf("expected only Foo, got %#v", result.Classes)
	}
	if diff := cmp.Diff([]string{"Bar"}, result.Skipped); diff != "" {
		t.Fatalf("skipped mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "definition=Bar") {
		t.Fatalf("expected debug log for skipped definition, got %q", logs.String())
	}
	if diff := cmp.Diff([]string{"foo_models.go", "doc.go"}, fileNames(result)); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}

	src := fileContent(t, result, "foo_models.go")
	assertParses(t, "foo_models.go", src)
	for _, want := range []string{
		"// Code generated by schemamodel. DO NOT EDIT.",
		"package models",
		`"github.com/goliatone/go-schemamodel/pkg/model"`,
		"type Foo struct {",
		"*model.Model",
		"var fooType = &model.Type{",
		"func FooType() *model.Type {",
		"func NewFoo(props *model.Properties) (*Foo, error) {",
		"func NewFooIn(rt *model.Runtime, props *model.Properties) (*Foo, error) {",
		"return NewFooIn(model.Default(), props)",
		"m, err := rt.New(fooType, values)",
		"func WrapFoo(m *model.Model) *Foo {",
		"func (x *Foo) CloneValue(deep bool) any {",
		"func (x *Foo) B() any {",
		"func (x *Foo) SetB(value any) error {",
		"func (x *Foo) Tags() any {",
		"func (x *Foo) Ref() any {",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q", want)
		}
	}
	if strings.Contains(src, "type Bar struct") {
		t.Fatalf("Bar should not be emitted")
	}

	doc := fileContent(t, result, "doc.go")
	assertParses(t, "doc.go", doc)
	if !strings.Contains(doc, "Foo: A foo") || !strings.Contains(doc, "package models") {
		t.Fatalf("unexpected package doc:\n%s", doc)
	}
}

func TestGenerate_DocComment(t *testing.T) {
	gen := NewGenerator(pkgjsonschema.NewAdapter(nil))
	result, err := gen.Generate(context.Background(), memoryDoc(t, "foo.json", fooBarSchema))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	src := fileContent(t, result, "foo_models.go")

	for _, want := range []string{
		"// Foo A foo",
		"// Holds bars & bazzes.",
		`- b (string): the b (default "x")`,
		"- c (integer)",
		"- tags ([]string)",
		"- ref (object)",
		`// B returns the "b" property (string).`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("doc comment missing %q in:\n%s", want, src)
		}
	}
	if strings.Contains(src, "<b>") {
		t.Fatalf("markup should be stripped from descriptions")
	}
}

func TestGenerate_Individual(t *testing.T) {
	raw := `{"definitions": {
  "PetOwner": {"type": "object", "properties": {"name": {"type": "string"}}},
  "Pet": {"type": "object", "properties": {"kind": {"type": "string", "default": "cat"}}},
  "Any": {"$comment": "skipped"}
}}`
	gen := NewGenerator(pkgjsonschema.NewAdapter(nil),
		WithIndividual(true),
		WithPackageName("pets"),
		WithLibPath("example.com/runtime/base"),
		WithPackageDoc(false),
	)
	result, err := gen.Generate(context.Background(), memoryDoc(t, "pets.json", raw))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if diff := cmp.Diff([]string{"pet_owner.go", "pet.go"}, fileNames(result)); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}

	src := fileContent(t, result, "pet.go")
	assertParses(t, "pet.go", src)
	if !strings.Contains(src, "package pets") {
		t.Fatalf("expected package clause, got:\n%s", src)
	}
	if !strings.Contains(src, `model "example.com/runtime/base"`) {
		t.Fatalf("expected aliased runtime import, got:\n%s", src)
	}
	if strings.Contains(src, "PetOwner") {
		t.Fatalf("individual file should only hold its own type")
	}
}

func TestGenerate_NameCollision(t *testing.T) {
	raw := `{"definitions": {
  "Foo": {"type": "object"},
  "FooType": {"type": "object"}
}}`
	gen := NewGenerator(pkgjsonschema.NewAdapter(nil))
	_, err := gen.Generate(context.Background(), memoryDoc(t, "c.json", raw))
	if !errors.Is(err, ErrNameCollision) {
		t.Fatalf("expected ErrNameCollision, got %v", err)
	}

	raw = `{"definitions": {"pet-store": {"type": "object"}, "pet_store": {"type": "object"}}}`
	_, err = gen.Generate(context.Background(), memoryDoc(t, "c.json", raw))
	if !errors.Is(err, ErrNameCollision) {
		t.Fatalf("expected ErrNameCollision for equal Go names, got %v", err)
	}
}

func TestGenerate_NoDefinitions(t *testing.T) {
	gen := NewGenerator(pkgjsonschema.NewAdapter(nil))
	_, err := gen.Generate(context.Background(), memoryDoc(t, "plain.json", `{"type": "object"}`))
	if !errors.Is(err, ErrNoDefinitions) {
		t.Fatalf("expected ErrNoDefinitions, got %v", err)
	}
}

func TestGenerate_SchemaCheck(t *testing.T) {
	raw := `{"definitions": {"Broken": {"type": "object", "minProperties": "three"}}}`

	unchecked := NewGenerator(pkgjsonschema.NewAdapter(nil))
	if _, err := unchecked.Generate(context.Background(), memoryDoc(t, "b.json", raw)); err != nil {
		t.Fatalf("unchecked generate: %v", err)
	}

	checked := NewGenerator(pkgjsonschema.NewAdapter(nil), WithSchemaCheck(nil))
	_, err := checked.Generate(context.Background(), memoryDoc(t, "b.json", raw))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Definition != "Broken" {
		t.Fatalf("unexpected definition %q", schemaErr.Definition)
	}
}

func TestGenerate_CustomChecker(t *testing.T) {
	calls := 0
	checker := checkerFunc(func(map[string]any) validation.SchemaValidationResult {
		calls++
		return validation.SchemaValidationResult{Valid: true}
	})
	gen := NewGenerator(pkgjsonschema.NewAdapter(nil), WithSchemaCheck(checker))
	if _, err := gen.Generate(context.Background(), memoryDoc(t, "foo.json", fooBarSchema)); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected the checker to run for the typed definition only, got %d calls", calls)
	}
}

type checkerFunc func(map[string]any) validation.SchemaValidationResult

func (fn checkerFunc) CheckSchema(doc map[string]any) validation.SchemaValidationResult {
	return fn(doc)
}

func TestGenerate_StableOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"definitions": {`)
	names := []string{"Zulu", "Alpha", "Mike", "Bravo", "Yankee", "Charlie", "Xray", "Delta"}
	for idx, name := range names {
		if idx > 0 {
			b.WriteString(",")
		}
		b.WriteString(`"` + name + `": {"type": "object"}`)
	}
	b.WriteString(`}}`)

	gen := NewGenerator(pkgjsonschema.NewAdapter(nil))
	for range 5 {
		result, err := gen.Generate(context.Background(), memoryDoc(t, "order.json", b.String()))
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		got := make([]string, 0, len(result.Classes))
		for _, class := range result.Classes {
			got = append(got, class.GoName)
		}
		if diff := cmp.Diff(names, got); diff != "" {
			t.Fatalf("class order mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestGenerateFile_WritesOutput(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "Pet Store.yaml")
	yamlSchema := `definitions:
  Pet:
    type: object
    properties:
      name:
        type: string
      age:
        type: integer
        default: 1
`
	if err := os.WriteFile(schemaPath, []byte(yamlSchema), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}

	adapter := pkgjsonschema.NewAdapter(loader.New(pkgjsonschema.NewLoaderOptions()))
	outdir := filepath.Join(dir, "out")
	result, err := NewGenerator(adapter).GenerateFile(context.Background(), pkgjsonschema.SourceFromFile(schemaPath), outdir)
	if err != nil {
		t.Fatalf("generate file: %v", err)
	}
	if diff := cmp.Diff([]string{"name", "age"}, result.Classes[0].PropertyNames()); diff != "" {
		t.Fatalf("yaml property order mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(filepath.Join(outdir, "pet_store_models.go"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	assertParses(t, "pet_store_models.go", string(data))
	if !strings.Contains(string(data), "- age (integer) (default 1)") {
		t.Fatalf("expected default annotation, got:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(outdir, "doc.go")); err != nil {
		t.Fatalf("expected doc.go: %v", err)
	}
}

func TestGenerateFile_LoadError(t *testing.T) {
	adapter := pkgjsonschema.NewAdapter(loader.New(pkgjsonschema.NewLoaderOptions()))
	_, err := NewGenerator(adapter).GenerateFile(context.Background(), pkgjsonschema.SourceFromFile(filepath.Join(t.TempDir(), "missing.json")), t.TempDir())
	if err == nil {
		t.Fatalf("expected load error")
	}
}

func TestGenerate_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := NewGenerator(pkgjsonschema.NewAdapter(nil))
	if _, err := gen.Generate(ctx, memoryDoc(t, "foo.json", fooBarSchema)); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestGenerate_SkipsNullAndEmptyTypes(t *testing.T) {
	raw := `{
  "definitions": {
    "Kept": {"type": "object", "properties": {"a": {"type": "string"}}},
    "Null": {"type": null, "properties": {"a": {"type": "string"}}},
    "Blank": {"type": "", "properties": {"a": {"type": "string"}}}
  }
}`
	result, err := NewGenerator(pkgjsonschema.NewAdapter(nil)).Generate(context.Background(), memoryDoc(t, "types.json", raw))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	got := make([]string, 0, len(result.Classes))
	for _, class := range result.Classes {
		got = append(got, class.GoName)
	}
	if diff := cmp.Diff([]string{"Kept"}, got); diff != "" {
		t.Fatalf("classes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Null", "Blank"}, result.Skipped); diff != "" {
		t.Fatalf("skipped mismatch (-want +got):\n%s", diff)
	}
}
