package openapi

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-schemamodel/pkg/schema"
)

const petsDocument = `{
  "openapi": "3.0.3",
  "info": {"title": "Pets", "version": "1.0.0"},
  "paths": {},
  "components": {
    "schemas": {
      "Pet": {
        "type": "object",
        "properties": {
          "owner": {"$ref": "#/components/schemas/Owner"}
        }
      },
      "Owner": {"type": "object", "properties": {"name": {"type": "string"}}}
    }
  }
}`

func TestValidator_AcceptsComponents(t *testing.T) {
	doc := schema.MustNewDocument(schema.SourceFromMemory("pets.json"), []byte(petsDocument))
	if err := New(Options{}).Validate(context.Background(), doc); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidator_Rejects(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want string
	}{
		"no components": {
			raw:  `{"openapi": "3.0.3", "info": {"title": "x", "version": "1"}, "paths": {}}`,
			want: "no components.schemas",
		},
		"missing info": {
			raw:  `{"openapi": "3.0.3", "paths": {}, "components": {"schemas": {"A": {"type": "string"}}}}`,
			want: "validate",
		},
		"broken ref": {
			raw:  `{"openapi": "3.0.3", "info": {"title": "x", "version": "1"}, "paths": {}, "components": {"schemas": {"A": {"$ref": "#/components/schemas/Missing"}}}}`,
			want: "openapi validator",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			doc := schema.MustNewDocument(schema.SourceFromMemory("api.json"), []byte(tc.raw))
			err := New(Options{}).Validate(context.Background(), doc)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestValidator_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := schema.MustNewDocument(schema.SourceFromMemory("pets.json"), []byte(petsDocument))
	if err := New(Options{}).Validate(ctx, doc); err == nil {
		t.Fatalf("expected context error")
	}
}
