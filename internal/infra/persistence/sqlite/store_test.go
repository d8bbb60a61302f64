package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"simcore/pkg/domain"
)

func TestStatePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		tx.Put("projects", "TEST", domain.Record{"key": "TEST", "name": "Test"})
		id := tx.NextID("issues", "ISSUE")
		tx.Put("issues", id, domain.Record{"id": id, "project": "TEST"})
		return nil
	}); err != nil {
		t.Fatalf("tx: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	if err := reopened.View(ctx, func(view domain.ReadView) error {
		if !view.Exists("projects", "TEST") {
			t.Fatalf("project lost across reopen")
		}
		rec, ok := view.Get("issues", "ISSUE-1")
		if !ok {
			t.Fatalf("issue lost across reopen")
		}
		if rec["project"] != "TEST" {
			t.Fatalf("issue fields lost: %v", rec)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}

	// Id generation continues from the hydrated state.
	if err := reopened.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if id := tx.NextID("issues", "ISSUE"); id != "ISSUE-2" {
			t.Fatalf("expected ISSUE-2 after reopen, got %s", id)
		}
		return nil
	}); err != nil {
		t.Fatalf("tx: %v", err)
	}
}

func TestFailedTransactionIsNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	failure := errors.New("boom")
	if err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		tx.Put("projects", "GONE", domain.Record{"key": "GONE"})
		return failure
	}); !errors.Is(err, failure) {
		t.Fatalf("expected propagated error, got %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if err := reopened.View(ctx, func(view domain.ReadView) error {
		if view.Exists("projects", "GONE") {
			t.Fatalf("aborted write was persisted")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestReplaceStatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	store.ReplaceState(domain.State{
		"projects": {"RESTORED": domain.Record{"key": "RESTORED"}},
	})
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if err := reopened.View(ctx, func(view domain.ReadView) error {
		if !view.Exists("projects", "RESTORED") {
			t.Fatalf("replaced state not persisted")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}
