package domain

import (
	"errors"
	"sort"
	"testing"
)

// testView is a minimal MutableView over a bare state map.
type testView struct {
	state State
}

func newTestView() *testView { return &testView{state: make(State)} }

func (v *testView) Get(c Collection, id string) (Record, bool) {
	rec, ok := v.state[c][id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

func (v *testView) Exists(c Collection, id string) bool {
	_, ok := v.state[c][id]
	return ok
}

func (v *testView) List(c Collection) []Record {
	out := make([]Record, 0, len(v.state[c]))
	for _, id := range v.IDs(c) {
		out = append(out, v.state[c][id].Clone())
	}
	return out
}

func (v *testView) IDs(c Collection) []string {
	ids := make([]string, 0, len(v.state[c]))
	for id := range v.state[c] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (v *testView) Collections() []Collection {
	out := make([]Collection, 0, len(v.state))
	for name := range v.state {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (v *testView) Put(c Collection, id string, rec Record) {
	if v.state[c] == nil {
		v.state[c] = make(map[string]Record)
	}
	v.state[c][id] = rec.Clone()
}

func (v *testView) Remove(c Collection, id string) bool {
	if _, ok := v.state[c][id]; !ok {
		return false
	}
	delete(v.state[c], id)
	return true
}

func trackerEngine() *IntegrityEngine {
	engine := NewIntegrityEngine()
	engine.Register(
		Relationship{Parent: "projects", Child: "components", RefField: "project", Kind: CascadeDelete},
		Relationship{Parent: "projects", Child: "issues", RefField: "project", Kind: CascadeDelete},
		Relationship{Parent: "components", Child: "issues", RefField: "components", Kind: ReassignOrNull},
		Relationship{Parent: "issues", Child: "issue_links", RefField: "inward_issue", Kind: CascadeDelete},
		Relationship{Parent: "issues", Child: "issue_links", RefField: "outward_issue", Kind: CascadeDelete},
	)
	return engine
}

func TestCascadeDeleteDrainsOwnedChildren(t *testing.T) {
	view := newTestView()
	view.Put("projects", "TEST", Record{"key": "TEST"})
	view.Put("projects", "OTHER", Record{"key": "OTHER"})
	view.Put("components", "COMP-1", Record{"id": "COMP-1", "project": "TEST"})
	view.Put("components", "COMP-2", Record{"id": "COMP-2", "project": "OTHER"})
	view.Put("issues", "ISSUE-1", Record{"id": "ISSUE-1", "project": "TEST"})

	if err := trackerEngine().Delete(view, "projects", "TEST", nil); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if view.Exists("components", "COMP-1") {
		t.Fatalf("owned component survived cascade")
	}
	if view.Exists("issues", "ISSUE-1") {
		t.Fatalf("owned issue survived cascade")
	}
	if !view.Exists("components", "COMP-2") {
		t.Fatalf("unrelated component was deleted")
	}
}

func TestCascadeRecursionSpansCollections(t *testing.T) {
	view := newTestView()
	view.Put("projects", "P", Record{"key": "P"})
	view.Put("issues", "ISSUE-1", Record{"id": "ISSUE-1", "project": "P"})
	view.Put("issue_links", "LINK-1", Record{"id": "LINK-1", "inward_issue": "ISSUE-1", "outward_issue": "ISSUE-2"})

	if err := trackerEngine().Delete(view, "projects", "P", nil); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if view.Exists("issue_links", "LINK-1") {
		t.Fatalf("link of cascaded issue survived")
	}
}

func TestReassignRewritesListReferences(t *testing.T) {
	view := newTestView()
	view.Put("components", "C1", Record{"id": "C1", "project": "P"})
	view.Put("components", "C2", Record{"id": "C2", "project": "P"})
	view.Put("issues", "ISSUE-1", Record{"id": "ISSUE-1", "components": []any{"C1"}})
	view.Put("issues", "ISSUE-2", Record{"id": "ISSUE-2", "components": []any{"C1", "C2"}})

	replacement := "C2"
	if err := trackerEngine().Delete(view, "components", "C1", &replacement); err != nil {
		t.Fatalf("delete component: %v", err)
	}
	one, _ := view.Get("issues", "ISSUE-1")
	if got := one["components"].([]any); got[0] != "C2" {
		t.Fatalf("issue 1 not reassigned: %v", got)
	}
	two, _ := view.Get("issues", "ISSUE-2")
	if got := two["components"].([]any); got[0] != "C2" || got[1] != "C2" {
		t.Fatalf("issue 2 not reassigned: %v", got)
	}
}

func TestReassignWithoutReplacementLeavesDangling(t *testing.T) {
	view := newTestView()
	view.Put("components", "C1", Record{"id": "C1"})
	view.Put("issues", "ISSUE-1", Record{"id": "ISSUE-1", "components": []any{"C1"}})

	if err := trackerEngine().Delete(view, "components", "C1", nil); err != nil {
		t.Fatalf("delete component: %v", err)
	}
	rec, _ := view.Get("issues", "ISSUE-1")
	if got := rec["components"].([]any); got[0] != "C1" {
		t.Fatalf("dangling reference was rewritten: %v", got)
	}
}

func TestDeleteValidatesReplacementBeforeMutation(t *testing.T) {
	view := newTestView()
	view.Put("components", "C1", Record{"id": "C1"})
	view.Put("issues", "ISSUE-1", Record{"id": "ISSUE-1", "components": []any{"C1"}})

	missing := "C9"
	err := trackerEngine().Delete(view, "components", "C1", &missing)
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.ID != "C9" {
		t.Fatalf("expected NotFoundError for replacement, got %v", err)
	}
	if !view.Exists("components", "C1") {
		t.Fatalf("failed delete mutated the store")
	}

	same := "C1"
	err = trackerEngine().Delete(view, "components", "C1", &same)
	var conflict ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError for self replacement, got %v", err)
	}
}

func TestDeleteMissingParent(t *testing.T) {
	view := newTestView()
	err := trackerEngine().Delete(view, "projects", "NOPE", nil)
	var nf NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
