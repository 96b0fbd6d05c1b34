package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCopy_DeepByDefault(t *testing.T) {
	rt := newTestRuntime()
	tags := []any{"a", "b"}
	m, err := rt.New(objectType("Doc"), NewProperties(
		Prop("tags", tags),
		Prop("meta", map[string]any{"owner": "x"}),
	))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	clone := m.Copy()
	if clone.Type() != m.Type() {
		t.Fatalf("expected copy to keep the type")
	}
	if err := clone.Set("extra", 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	cloneTags, _ := clone.Get("tags")
	cloneTags.([]any)[0] = "changed"
	cloneMeta, _ := clone.Get("meta")
	cloneMeta.(map[string]any)["owner"] = "y"

	if m.Has("extra") {
		t.Fatalf("top-level write leaked into the original")
	}
	if tags[0] != "a" {
		t.Fatalf("deep copy shared the tags slice")
	}
	original, _ := m.Get("meta")
	if original.(map[string]any)["owner"] != "x" {
		t.Fatalf("deep copy shared the meta map")
	}
}

func TestCopy_ShallowSharesNested(t *testing.T) {
	rt := newTestRuntime()
	tags := []any{"a"}
	m, err := rt.New(objectType("Doc"), NewProperties(Prop("tags", tags)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	clone := m.Copy(Shallow())
	if err := clone.Set("tags", []any{"replaced"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := m.Get("tags"); got.([]any)[0] != "a" {
		t.Fatalf("top-level replacement leaked into the original")
	}

	second := m.Copy(Shallow())
	shared, _ := second.Get("tags")
	shared.([]any)[0] = "mutated"
	if tags[0] != "mutated" {
		t.Fatalf("shallow copy should share nested values")
	}
}

func TestCopy_NestedModelsAndSets(t *testing.T) {
	rt := newTestRuntime()
	child, err := rt.New(objectType("Child"), NewProperties(Prop("id", 1)))
	if err != nil {
		t.Fatalf("child: %v", err)
	}
	members := NewSet("x")
	parent, err := rt.New(objectType("Parent"), NewProperties(Prop("child", child), Prop("members", members)))
	if err != nil {
		t.Fatalf("parent: %v", err)
	}

	clone := parent.Copy(Deep())
	nested, _ := clone.Get("child")
	nestedModel, ok := nested.(*Model)
	if !ok {
		t.Fatalf("expected nested *Model, got %T", nested)
	}
	if nestedModel == child {
		t.Fatalf("deep copy reused the nested model")
	}
	if err := nestedModel.Set("id", 2); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := child.Get("id"); got != 1 {
		t.Fatalf("nested write leaked into the original child")
	}

	clonedSet, _ := clone.Get("members")
	clonedSet.(Set).Add("y")
	if members.Contains("y") {
		t.Fatalf("deep copy shared the set")
	}
}

func TestCopy_PositionalAndFields(t *testing.T) {
	rt := newTestRuntime()
	m, err := rt.New(&Type{Schema: map[string]any{}}, []any{1, 2})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.Set("note", "n"); err != nil {
		t.Fatalf("set: %v", err)
	}

	clone := m.Copy()
	got, err := clone.ToDict()
	if err != nil {
		t.Fatalf("to dict: %v", err)
	}
	if diff := cmp.Diff([]any{1, 2}, got); diff != "" {
		t.Fatalf("positional mismatch (-want +got):\n%s", diff)
	}
	if note, _ := clone.Get("note"); note != "n" {
		t.Fatalf("expected own fields to be copied, got %v", note)
	}
}

func TestCopy_TypedContainers(t *testing.T) {
	rt := newTestRuntime()
	child, err := rt.New(objectType("Child"), NewProperties(Prop("id", 1)))
	if err != nil {
		t.Fatalf("child: %v", err)
	}
	bag := NewProperties(Prop("a", 1))
	parent, err := rt.New(objectType("Parent"), NewProperties(
		Prop("kids", []*Model{child}),
		Prop("bags", []*Properties{bag}),
		Prop("byName", map[string]*Model{"only": child}),
		Prop("pair", [2]*Model{child, child}),
		Prop("counts", []int{1, 2}),
	))
	if err != nil {
		t.Fatalf("parent: %v", err)
	}

	clone := parent.Copy()
	want, err := parent.ToDict()
	if err != nil {
		t.Fatalf("original to dict: %v", err)
	}
	got, err := clone.ToDict()
	if err != nil {
		t.Fatalf("copy to dict: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("copy lost nested data (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{
		"kids":   []any{map[string]any{"id": 1}},
		"bags":   []any{map[string]any{"a": 1}},
		"byName": map[string]any{"only": map[string]any{"id": 1}},
		"pair":   []any{map[string]any{"id": 1}, map[string]any{"id": 1}},
		"counts": []any{1, 2},
	}, got); diff != "" {
		t.Fatalf("copy mismatch (-want +got):\n%s", diff)
	}

	kids, _ := clone.Get("kids")
	copiedKid := kids.([]*Model)[0]
	if copiedKid == child {
		t.Fatalf("deep copy reused the model inside a typed slice")
	}
	if err := copiedKid.Set("id", 2); err != nil {
		t.Fatalf("set: %v", err)
	}
	bags, _ := clone.Get("bags")
	bags.([]*Properties)[0].Set("a", 2)
	byName, _ := clone.Get("byName")
	if byName.(map[string]*Model)["only"] == child {
		t.Fatalf("deep copy reused the model inside a typed map")
	}

	if got, _ := child.Get("id"); got != 1 {
		t.Fatalf("write through the copy reached the original child")
	}
	if got, _ := bag.Get("a"); got != 1 {
		t.Fatalf("write through the copy reached the original bag")
	}
}
