package domain

// CascadeKind selects the rule applied to dependent records when their parent
// is deleted.
type CascadeKind string

const (
	// CascadeDelete removes every child whose reference field equals the
	// deleted parent's identifier.
	CascadeDelete CascadeKind = "cascade-delete"
	// ReassignOrNull rewrites matching references to a caller-supplied
	// replacement identifier, or leaves them dangling when none is given.
	ReassignOrNull CascadeKind = "reassign-or-null"
)

// Relationship declares one parent/child dependency consulted on delete.
// RefField names the child field holding the parent identifier; the field may
// be a scalar identifier or a list of identifiers.
type Relationship struct {
	Parent   Collection
	Child    Collection
	RefField string
	Kind     CascadeKind
}

// IntegrityEngine applies declared relationships when a referenced record is
// deleted. Scans are linear over the child collection; no reverse index is
// maintained.
type IntegrityEngine struct {
	rels []Relationship
}

// NewIntegrityEngine constructs an engine with no relationships registered.
func NewIntegrityEngine() *IntegrityEngine {
	return &IntegrityEngine{}
}

// Register appends relationships to the engine's table.
func (e *IntegrityEngine) Register(rels ...Relationship) {
	e.rels = append(e.rels, rels...)
}

// Relationships returns the registered table in registration order.
func (e *IntegrityEngine) Relationships() []Relationship {
	return append([]Relationship(nil), e.rels...)
}

// Delete removes the record and fires every relationship declared for its
// collection. A non-nil replacement applies to reassign-or-null children and
// must exist in the same collection as the deleted record; it is validated
// before any mutation so failure leaves the store untouched. Cascaded child
// deletions recurse, so ownership chains spanning several collections drain
// completely.
func (e *IntegrityEngine) Delete(view MutableView, c Collection, id string, replacement *string) error {
	if !view.Exists(c, id) {
		return NotFoundError{Collection: c, ID: id}
	}
	if replacement != nil {
		if *replacement == id {
			return ConflictError{Collection: c, ID: id, Reason: "replacement must differ from the deleted record"}
		}
		if !view.Exists(c, *replacement) {
			return NotFoundError{Collection: c, ID: *replacement}
		}
	}
	view.Remove(c, id)
	for _, rel := range e.rels {
		if rel.Parent != c {
			continue
		}
		switch rel.Kind {
		case CascadeDelete:
			for _, childID := range view.IDs(rel.Child) {
				child, ok := view.Get(rel.Child, childID)
				if !ok || !references(child[rel.RefField], id) {
					continue
				}
				if err := e.Delete(view, rel.Child, childID, nil); err != nil {
					return err
				}
			}
		case ReassignOrNull:
			if replacement == nil {
				continue
			}
			for _, childID := range view.IDs(rel.Child) {
				child, ok := view.Get(rel.Child, childID)
				if !ok || !references(child[rel.RefField], id) {
					continue
				}
				child[rel.RefField] = reassign(child[rel.RefField], id, *replacement)
				view.Put(rel.Child, childID, child)
			}
		}
	}
	return nil
}

// references reports whether a reference field value points at id. Scalar
// fields compare directly; list fields match by membership.
func references(field any, id string) bool {
	switch fv := field.(type) {
	case string:
		return fv == id
	case []any:
		for _, e := range fv {
			if s, ok := e.(string); ok && s == id {
				return true
			}
		}
	case []string:
		for _, s := range fv {
			if s == id {
				return true
			}
		}
	}
	return false
}

// reassign rewrites every occurrence of id within the field value to
// replacement, preserving the field's shape.
func reassign(field any, id, replacement string) any {
	switch fv := field.(type) {
	case string:
		if fv == id {
			return replacement
		}
		return fv
	case []any:
		out := make([]any, len(fv))
		for i, e := range fv {
			if s, ok := e.(string); ok && s == id {
				out[i] = replacement
				continue
			}
			out[i] = e
		}
		return out
	case []string:
		out := make([]string, len(fv))
		for i, s := range fv {
			if s == id {
				out[i] = replacement
				continue
			}
			out[i] = s
		}
		return out
	}
	return field
}
