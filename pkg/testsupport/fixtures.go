// Package testsupport holds fixture and golden-file helpers shared by the
// package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-schemamodel/pkg/schema"
)

// UpdateEnv names the environment variable that rewrites golden files.
const UpdateEnv = "UPDATE_GOLDENS"

// LoadDocument reads the fixture at path as a file-sourced document.
func LoadDocument(t *testing.T, path string) schema.Document {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	doc, err := schema.NewDocument(schema.SourceFromFile(path), data)
	if err != nil {
		t.Fatalf("fixture %s: %v", path, err)
	}
	return doc
}

// Golden decodes the golden JSON file at path into want. When UpdateEnv is
// set, got is written to path first so the comparison that follows passes.
func Golden(t *testing.T, path string, got, want any) {
	t.Helper()

	if os.Getenv(UpdateEnv) != "" {
		payload, err := json.MarshalIndent(got, "", "  ")
		if err != nil {
			t.Fatalf("marshal golden: %v", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("golden dir: %v", err)
		}
		if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	if err := json.Unmarshal(data, want); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
}
