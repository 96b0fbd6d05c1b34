package codegen

import (
	"strings"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	cases := map[string]string{
		"":                                     "",
		"  plain  ":                            "plain",
		"<script>alert(1)</script>Safe":        "Safe",
		"Tom &amp; Jerry <i>forever</i>":       "Tom & Jerry forever",
		"line one\r\nline two":                 "line one\nline two",
		`<a href="http://x">link</a> &lt;3`:    "link <3",
	}
	for in, want := range cases {
		if got := sanitizeText(in); got != want {
			t.Errorf("sanitizeText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClassComment(t *testing.T) {
	class := Class{
		GoName:      "Point",
		Name:        "point",
		Description: "A 2D point.\n\nUsed by shapes.",
		Properties: []Property{
			{Name: "x", TypeExpr: "number", Default: 0.0, HasDefault: true},
			{Name: "label", TypeExpr: "string|null", Description: "Optional\n  label"},
		},
	}
	want := strings.Join([]string{
		`// Point is generated from the "point" definition.`,
		"//",
		"// A 2D point.",
		"//",
		"// Used by shapes.",
		"//",
		"// Properties:",
		"//   - x (number) (default 0)",
		"//   - label (string|null): Optional label",
	}, "\n")
	if got := classComment(class); got != want {
		t.Fatalf("classComment mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func TestEmitterRender_NoProperties(t *testing.T) {
	src, err := Emitter{}.Render([]Class{{GoName: "Empty", Name: "Empty", SchemaJSON: `{"type":"object"}`}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(src)
	assertParses(t, "empty.go", out)
	if !strings.Contains(out, "PropertyNames: []string{}") {
		t.Fatalf("expected an empty property list, got:\n%s", out)
	}
	if !strings.Contains(out, "package models") {
		t.Fatalf("expected default package, got:\n%s", out)
	}
}

func TestRenderPackageDoc(t *testing.T) {
	out, err := RenderPackageDoc("shapes", "shapes.json", []Class{
		{GoName: "Circle", Title: "A <em>round</em> shape"},
		{GoName: "Square"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	src := string(out)
	assertParses(t, "doc.go", src)
	for _, want := range []string{
		"// Code generated by schemamodel. DO NOT EDIT.",
		"// Package shapes holds model types generated from shapes.json.",
		"Circle: A round shape",
		"Square",
		"package shapes",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("package doc missing %q in:\n%s", want, src)
		}
	}
}

func TestEmitterRender_RuntimeConstructor(t *testing.T) {
	src, err := Emitter{PackageName: "shapes"}.Render([]Class{{
		GoName:     "Point",
		Name:       "Point",
		SchemaJSON: `{"type":"object"}`,
		Properties: []Property{{Name: "x", GoName: "X", TypeExpr: "number"}},
	}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(src)
	assertParses(t, "point.go", out)
	for _, want := range []string{
		"func NewPoint(props *model.Properties) (*Point, error) {",
		"return NewPointIn(model.Default(), props)",
		"func NewPointIn(rt *model.Runtime, props *model.Properties) (*Point, error) {",
		"m, err := rt.New(pointType, values)",
		"// NewPointIn is NewPoint on the runtime rt.",
		"// A property with no schema default starts as nil and\n// serializes as null",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered source missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "model.New(") {
		t.Fatalf("constructors should go through a runtime, got:\n%s", out)
	}
}
