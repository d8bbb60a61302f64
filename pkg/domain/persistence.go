package domain

import "context"

// ReadView provides read-only access to committed or transactional state.
// Missing collections read as empty, never as an error.
type ReadView interface {
	// Get returns a deep copy of the record, or false when absent.
	Get(c Collection, id string) (Record, bool)
	// Exists reports whether the identifier is present in the collection.
	Exists(c Collection, id string) bool
	// List returns deep copies of every record, sorted by identifier.
	List(c Collection) []Record
	// IDs returns the sorted identifiers of the collection.
	IDs(c Collection) []string
	// Collections returns the sorted names of all non-empty collections.
	Collections() []Collection
}

// MutableView extends ReadView with raw mutation primitives. The integrity
// engine drives cascades through this interface; it never reaches into a
// concrete store.
type MutableView interface {
	ReadView
	// Put stores a deep copy of the record, lazily creating the collection.
	Put(c Collection, id string, rec Record)
	// Remove deletes the record if present and reports whether it existed.
	// No cascade fires; cascading deletion goes through the IntegrityEngine.
	Remove(c Collection, id string) bool
}

// Transaction is the mutable unit of work handed to operation bodies. All
// mutations become visible atomically when the enclosing function returns nil.
type Transaction interface {
	MutableView
	// NextID issues the next prefixed sequential identifier (<PREFIX>-<N>)
	// for the collection, scanning live records for the current maximum.
	NextID(c Collection, prefix string) string
	// NextFullname issues the next typed fullname (<kind>_<N>) for the
	// collection, e.g. t3_42.
	NextFullname(c Collection, kind string) string
	// NewToken issues a random lowercase-hex 8-4-4-4-12 token unique within
	// the collection, retrying on collision.
	NewToken(c Collection) string
	// Changes returns the mutations recorded so far, in application order.
	Changes() []Change
}

// Store is the process-wide entity store. One coarse lock guards all state;
// every transaction observes and produces a consistent whole-world view.
type Store interface {
	// RunInTransaction executes fn against a transactional clone of the
	// state and commits it atomically when fn returns nil.
	RunInTransaction(ctx context.Context, fn func(Transaction) error) error
	// View executes fn against a read-only snapshot of committed state.
	View(ctx context.Context, fn func(ReadView) error) error
	// ExportState returns a deep copy of the committed state.
	ExportState() State
	// ReplaceState clears and repopulates the store in place, so components
	// holding a reference to the store observe the restored data.
	ReplaceState(s State)
}
