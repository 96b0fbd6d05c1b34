package jsonschema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIndexKeyOrder(t *testing.T) {
	raw := `{"b": {"z": 1, "a/b": {"q": [ {"y": 0, "x": 0} ]}}, "a": []}`
	order, err := indexKeyOrder([]byte(raw))
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	want := keyOrder{
		"":            {"b", "a"},
		"/b":          {"z", "a/b"},
		"/b/a~1b":     {"q"},
		"/b/a~1b/q/0": {"y", "x"},
	}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestYAMLToJSON(t *testing.T) {
	raw := `
zeta: 1
alpha:
  list: [a, 2, true, null]
  anchor: &shared {k: v}
  alias: *shared
`
	out, err := yamlToJSON([]byte(raw))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := `{"zeta":1,"alpha":{"list":["a",2,true,null],"anchor":{"k":"v"},"alias":{"k":"v"}}}`
	if string(out) != want {
		t.Fatalf("unexpected json:\nwant %s\ngot  %s", want, out)
	}
}

func TestOrderedKeys(t *testing.T) {
	payload := map[string]any{"c": 1, "a": 2, "b": 3, "d": 4}
	got := orderedKeys(payload, []string{"c", "missing", "a", "c"})
	if diff := cmp.Diff([]string{"c", "a", "b", "d"}, got); diff != "" {
		t.Fatalf("ordered keys mismatch (-want +got):\n%s", diff)
	}
}
