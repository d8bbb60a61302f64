// Package domain defines the generic collection/record model, the error
// taxonomy, the referential-integrity engine, and the validation and
// persistence contracts shared by every simcore operation family.
package domain

// Collection names a group of records of one entity family.
type Collection string

// Record is a single entity's field-value mapping. Values are restricted to
// the JSON value set: strings, numbers, booleans, nil, []any, and nested
// map[string]any.
type Record map[string]any

// Clone returns a deep copy of the record so callers can never mutate stored
// state through a returned reference.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[k] = cloneValue(e)
		}
		return out
	case Record:
		return map[string]any(tv.Clone())
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), tv...)
	default:
		return tv
	}
}

// State is the whole-world shape: collection name to records keyed by id.
// It is the unit of snapshot export and import.
type State map[Collection]map[string]Record

// Clone deep-copies every collection and record.
func (s State) Clone() State {
	out := make(State, len(s))
	for name, records := range s {
		cp := make(map[string]Record, len(records))
		for id, rec := range records {
			cp[id] = rec.Clone()
		}
		out[name] = cp
	}
	return out
}

// Action indicates the type of modification performed on a record.
type Action string

// Change actions captured in transaction audit trails.
const (
	// ActionCreate indicates a record was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates a record was updated in place.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Change describes one mutation applied during a transaction.
type Change struct {
	Collection Collection
	ID         string
	Action     Action
	Before     Record
	After      Record
}
