package domain

import "testing"

func TestRecordCloneIsDeep(t *testing.T) {
	rec := Record{
		"name":   "Backend",
		"tags":   []any{"a", "b"},
		"owner":  map[string]any{"name": "admin"},
		"list":   []string{"x"},
		"nested": Record{"k": "v"},
	}
	clone := rec.Clone()

	clone["name"] = "changed"
	clone["tags"].([]any)[0] = "mutated"
	clone["owner"].(map[string]any)["name"] = "mutated"
	clone["list"].([]string)[0] = "mutated"

	if rec["name"] != "Backend" {
		t.Fatalf("scalar aliased: %v", rec["name"])
	}
	if rec["tags"].([]any)[0] != "a" {
		t.Fatalf("list aliased: %v", rec["tags"])
	}
	if rec["owner"].(map[string]any)["name"] != "admin" {
		t.Fatalf("nested map aliased: %v", rec["owner"])
	}
	if rec["list"].([]string)[0] != "x" {
		t.Fatalf("string list aliased: %v", rec["list"])
	}
	if _, ok := clone["nested"].(map[string]any); !ok {
		t.Fatalf("nested Record should clone to map[string]any, got %T", clone["nested"])
	}
}

func TestRecordCloneNil(t *testing.T) {
	var rec Record
	if rec.Clone() != nil {
		t.Fatalf("nil record should clone to nil")
	}
}

func TestStateCloneIsDeep(t *testing.T) {
	state := State{
		"projects": {"TEST": Record{"name": "Test"}},
	}
	clone := state.Clone()
	clone["projects"]["TEST"]["name"] = "mutated"
	if state["projects"]["TEST"]["name"] != "Test" {
		t.Fatalf("state clone aliased record")
	}
	delete(clone, "projects")
	if _, ok := state["projects"]; !ok {
		t.Fatalf("state clone aliased collection map")
	}
}
