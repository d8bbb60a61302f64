package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTaxonomyBranching(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ShapeError{Name: "count", Want: "an integer", Got: "x"}, `argument "count" must be an integer, got string`},
		{EmptyOrMissingError{Name: "name"}, `argument "name" is required and must not be empty`},
		{NotFoundError{Collection: "projects", ID: "TEST"}, `projects "TEST" not found`},
		{AlreadyExistsError{Collection: "groups", Key: "Admins"}, `groups "Admins" already exists`},
		{ConflictError{Collection: "issues", ID: "ISSUE-1", Reason: "has sub-tasks"}, `issues "ISSUE-1": has sub-tasks`},
		{RangeError{Name: "offset", Value: -1, Bound: ">= 0"}, `argument "offset" must be >= 0, got -1`},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("message mismatch: got %q want %q", got, tc.want)
		}
	}
}

func TestErrorsAsDistinguishesKinds(t *testing.T) {
	wrapped := fmt.Errorf("operation failed: %w", NotFoundError{Collection: "issues", ID: "ISSUE-9"})
	var nf NotFoundError
	if !errors.As(wrapped, &nf) {
		t.Fatalf("expected NotFoundError through wrapping")
	}
	if nf.Collection != "issues" || nf.ID != "ISSUE-9" {
		t.Fatalf("context fields lost: %+v", nf)
	}
	var ae AlreadyExistsError
	if errors.As(wrapped, &ae) {
		t.Fatalf("NotFoundError must not match AlreadyExistsError")
	}
}
