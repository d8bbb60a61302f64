// Package social implements the social-platform operation family: subreddits,
// links, threaded comments, and votes over the shared entity store.
//
// Every social record is identified by a fullname, a compound identifier of
// the form t<kind>_<n> whose type prefix is part of the contract: t1 comments,
// t2 accounts, t3 links, t4 messages, t5 subreddits.
package social

import (
	"fmt"
	"strconv"
	"strings"

	"simcore/pkg/domain"
)

// Fullname type prefixes.
const (
	KindComment   = "t1"
	KindAccount   = "t2"
	KindLink      = "t3"
	KindMessage   = "t4"
	KindSubreddit = "t5"
)

// Fullname composes a compound identifier from its type prefix and local id.
func Fullname(kind string, n int) string {
	return fmt.Sprintf("%s_%d", kind, n)
}

// SplitFullname decomposes a fullname into its type prefix and local id. A
// malformed or wrong-prefix value fails with ShapeError.
func SplitFullname(name string) (kind string, n int, err error) {
	kind, local, ok := strings.Cut(name, "_")
	if !ok || !validKind(kind) {
		return "", 0, domain.ShapeError{Name: "fullname", Want: "a t<kind>_<n> fullname", Got: name}
	}
	n, convErr := strconv.Atoi(local)
	if convErr != nil || n < 0 {
		return "", 0, domain.ShapeError{Name: "fullname", Want: "a t<kind>_<n> fullname", Got: name}
	}
	return kind, n, nil
}

// RequireFullname checks that v is a fullname carrying the expected prefix.
func RequireFullname(name, kind string, v any) domain.CheckFunc {
	return func() error {
		s, ok := v.(string)
		if !ok {
			if v == nil {
				return domain.EmptyOrMissingError{Name: name}
			}
			return domain.ShapeError{Name: name, Want: "a string", Got: v}
		}
		got, _, err := SplitFullname(s)
		if err != nil {
			return domain.ShapeError{Name: name, Want: fmt.Sprintf("a %s_<n> fullname", kind), Got: v}
		}
		if got != kind {
			return domain.ShapeError{Name: name, Want: fmt.Sprintf("a %s_<n> fullname", kind), Got: v}
		}
		return nil
	}
}

func validKind(kind string) bool {
	switch kind {
	case KindComment, KindAccount, KindLink, KindMessage, KindSubreddit:
		return true
	}
	return false
}
