package search

import (
	"context"
	"errors"
	"testing"

	"simcore/internal/infra/persistence/memory"
	"simcore/pkg/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := memory.NewStore()
	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		tx.Put("issues", "ISSUE-1", domain.Record{"summary": "Fix login crash", "description": "The login page crashes"})
		tx.Put("issues", "ISSUE-2", domain.Record{"summary": "Add dark mode", "description": ""})
		tx.Put("links", "t3_1", domain.Record{"title": "Crash reports thread", "selftext": "post here"})
		tx.Put("links", "t3_2", domain.Record{"title": "Weekly discussion", "selftext": "anything goes"})
		return nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewService(store)
	svc.Register(
		Target{Collection: "issues", Fields: []string{"summary", "description"}},
		Target{Collection: "links", Fields: []string{"title", "selftext"}},
	)
	return svc
}

func TestSearchMatchesSubstringsCaseInsensitively(t *testing.T) {
	svc := newTestService(t)
	hits, err := svc.Search(context.Background(), "CRASH", domain.Page{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d: %v", len(hits), hits)
	}
	if hits[0].Collection != "issues" || hits[0].ID != "ISSUE-1" || hits[0].Field != "summary" {
		t.Fatalf("unexpected first hit: %+v", hits[0])
	}
	if hits[1].Collection != "links" || hits[1].ID != "t3_1" {
		t.Fatalf("unexpected second hit: %+v", hits[1])
	}
}

func TestSearchMatchesEachRecordOnce(t *testing.T) {
	svc := newTestService(t)
	// "login" appears in both summary and description of ISSUE-1.
	hits, err := svc.Search(context.Background(), "login", domain.Page{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("record matched more than once: %v", hits)
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Search(context.Background(), "   ", domain.Page{})
	var empty domain.EmptyOrMissingError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyOrMissingError, got %v", err)
	}
}

func TestSearchPagination(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Search(context.Background(), "a", domain.Page{Offset: -1})
	var re domain.RangeError
	if !errors.As(err, &re) {
		t.Fatalf("negative offset accepted: %v", err)
	}
	hits, err := svc.Search(context.Background(), "crash", domain.Page{Offset: 1, Limit: 5})
	if err != nil || len(hits) != 1 {
		t.Fatalf("paged search: %v %v", hits, err)
	}
}

func TestSearchNoMatches(t *testing.T) {
	svc := newTestService(t)
	hits, err := svc.Search(context.Background(), "zzzz", domain.Page{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("unexpected hits: %v", hits)
	}
}
