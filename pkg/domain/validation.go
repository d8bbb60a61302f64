package domain

import (
	"fmt"
	"strings"
)

// CheckFunc is a pure shape/presence/range check on operation inputs. It
// never touches the store.
type CheckFunc func() error

// StateCheckFunc validates a precondition against current store state.
type StateCheckFunc func(view ReadView) error

// Pipeline is an ordered validation sequence. All pure checks run before any
// store-dependent check, and all checks run before any mutation; the first
// failure aborts the operation with no partial effect.
type Pipeline struct {
	pure  []CheckFunc
	state []StateCheckFunc
}

// NewPipeline returns an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Require appends pure input checks.
func (p *Pipeline) Require(checks ...CheckFunc) *Pipeline {
	p.pure = append(p.pure, checks...)
	return p
}

// Precondition appends store-dependent checks.
func (p *Pipeline) Precondition(checks ...StateCheckFunc) *Pipeline {
	p.state = append(p.state, checks...)
	return p
}

// Run executes the pipeline: every pure check first, then every state check.
func (p *Pipeline) Run(view ReadView) error {
	for _, check := range p.pure {
		if err := check(); err != nil {
			return err
		}
	}
	for _, check := range p.state {
		if err := check(view); err != nil {
			return err
		}
	}
	return nil
}

// RequireString checks that v is a non-empty string. Emptiness is judged
// after trimming surrounding whitespace.
func RequireString(name string, v any) CheckFunc {
	return func() error {
		s, ok := v.(string)
		if !ok {
			if v == nil {
				return EmptyOrMissingError{Name: name}
			}
			return ShapeError{Name: name, Want: "a string", Got: v}
		}
		if strings.TrimSpace(s) == "" {
			return EmptyOrMissingError{Name: name}
		}
		return nil
	}
}

// OptionalString checks that v, when present, is a string. nil passes.
func OptionalString(name string, v any) CheckFunc {
	return func() error {
		if v == nil {
			return nil
		}
		if _, ok := v.(string); !ok {
			return ShapeError{Name: name, Want: "a string", Got: v}
		}
		return nil
	}
}

// RequireStringList checks that v is a list whose elements are all strings.
// nil passes; operations treat an absent list as empty.
func RequireStringList(name string, v any) CheckFunc {
	return func() error {
		if v == nil {
			return nil
		}
		switch lv := v.(type) {
		case []string:
			return nil
		case []any:
			for i, e := range lv {
				if _, ok := e.(string); !ok {
					return ShapeError{Name: fmt.Sprintf("%s[%d]", name, i), Want: "a string", Got: e}
				}
			}
			return nil
		default:
			return ShapeError{Name: name, Want: "a list of strings", Got: v}
		}
	}
}

// RequireInt checks that v coerces to an integer under CoerceInt.
func RequireInt(name string, v any) CheckFunc {
	return func() error {
		_, err := CoerceInt(name, v)
		return err
	}
}

// NonNegative checks an already-typed integer argument.
func NonNegative(name string, v int) CheckFunc {
	return func() error {
		if v < 0 {
			return RangeError{Name: name, Value: v, Bound: ">= 0"}
		}
		return nil
	}
}

// CoerceInt converts a loosely-typed numeric argument to int. Booleans are
// rejected: the source platform admitted them as integers, but that subtyping
// is not carried over here. Floats are accepted only when integral, since
// snapshot round-trips decode all numbers as float64.
func CoerceInt(name string, v any) (int, error) {
	switch n := v.(type) {
	case bool:
		return 0, ShapeError{Name: name, Want: "an integer", Got: v}
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, ShapeError{Name: name, Want: "an integer", Got: v}
		}
		return int(n), nil
	default:
		return 0, ShapeError{Name: name, Want: "an integer", Got: v}
	}
}

// CoerceString returns the trimmed string form of a validated argument.
// Values are stored trimmed; validation and storage agree on emptiness.
func CoerceString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// CoerceStringList normalizes a validated list argument to []string.
func CoerceStringList(v any) []string {
	switch lv := v.(type) {
	case nil:
		return []string{}
	case []string:
		return append([]string{}, lv...)
	case []any:
		out := make([]string, 0, len(lv))
		for _, e := range lv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

// MustExist fails with NotFoundError when id is absent from the collection.
func MustExist(c Collection, id string) StateCheckFunc {
	return func(view ReadView) error {
		if !view.Exists(c, id) {
			return NotFoundError{Collection: c, ID: id}
		}
		return nil
	}
}

// MustNotExist fails with AlreadyExistsError when key is present already.
func MustNotExist(c Collection, key string) StateCheckFunc {
	return func(view ReadView) error {
		if view.Exists(c, key) {
			return AlreadyExistsError{Collection: c, Key: key}
		}
		return nil
	}
}

// Page describes offset/limit pagination over a listed collection.
// Limit zero means no limit.
type Page struct {
	Offset int
	Limit  int
}

// Validate rejects negative bounds before any clamping occurs.
func (p Page) Validate() error {
	if p.Offset < 0 {
		return RangeError{Name: "offset", Value: p.Offset, Bound: ">= 0"}
	}
	if p.Limit < 0 {
		return RangeError{Name: "limit", Value: p.Limit, Bound: ">= 0"}
	}
	return nil
}

// Slice clamps the page to a sequence of length n and returns the half-open
// index range to take.
func (p Page) Slice(n int) (int, int) {
	lo := p.Offset
	if lo > n {
		lo = n
	}
	hi := n
	if p.Limit > 0 && lo+p.Limit < n {
		hi = lo + p.Limit
	}
	return lo, hi
}
