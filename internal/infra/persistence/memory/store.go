// Package memory provides the in-memory implementation of the simcore entity
// store. It is the reference backend: the durable backends embed it and add
// snapshot persistence on top.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"simcore/pkg/domain"

	"github.com/google/uuid"
)

// Compile-time contract assertion.
var _ domain.Store = (*Store)(nil)

// Store holds the whole world state behind one coarse lock. Transactions
// clone the state, mutate the clone, and swap it in on success, so every
// operation is all-or-nothing and cross-collection invariants hold.
type Store struct {
	mu       sync.RWMutex
	state    domain.State
	newToken func() string
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		state:    make(domain.State),
		newToken: uuid.NewString,
	}
}

// stateView implements read and raw-write access over a state value. It backs
// both transactions and read-only views.
type stateView struct {
	state domain.State
}

func (v stateView) Get(c domain.Collection, id string) (domain.Record, bool) {
	rec, ok := v.state[c][id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

func (v stateView) Exists(c domain.Collection, id string) bool {
	_, ok := v.state[c][id]
	return ok
}

func (v stateView) List(c domain.Collection) []domain.Record {
	ids := v.IDs(c)
	out := make([]domain.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, v.state[c][id].Clone())
	}
	return out
}

func (v stateView) IDs(c domain.Collection) []string {
	records := v.state[c]
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (v stateView) Collections() []domain.Collection {
	out := make([]domain.Collection, 0, len(v.state))
	for name, records := range v.state {
		if len(records) == 0 {
			continue
		}
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Compile-time contract assertion for the transactional surface.
var _ domain.Transaction = (*Transaction)(nil)

// Transaction is a mutable clone of the store state plus the change log
// accumulated while an operation runs.
type Transaction struct {
	stateView
	changes  []domain.Change
	newToken func() string
}

// Put stores a deep copy of the record, lazily creating the collection.
func (tx *Transaction) Put(c domain.Collection, id string, rec domain.Record) {
	collection, ok := tx.state[c]
	if !ok {
		collection = make(map[string]domain.Record)
		tx.state[c] = collection
	}
	action := domain.ActionCreate
	var before domain.Record
	if prev, exists := collection[id]; exists {
		action = domain.ActionUpdate
		before = prev
	}
	stored := rec.Clone()
	collection[id] = stored
	tx.changes = append(tx.changes, domain.Change{
		Collection: c,
		ID:         id,
		Action:     action,
		Before:     before,
		After:      stored.Clone(),
	})
}

// Remove deletes the record if present. It performs no cascade; operations
// needing cascade semantics go through the integrity engine.
func (tx *Transaction) Remove(c domain.Collection, id string) bool {
	prev, ok := tx.state[c][id]
	if !ok {
		return false
	}
	delete(tx.state[c], id)
	tx.changes = append(tx.changes, domain.Change{
		Collection: c,
		ID:         id,
		Action:     domain.ActionDelete,
		Before:     prev,
	})
	return true
}

// NextID returns <PREFIX>-<N> where N exceeds the highest suffix carried by
// any live identifier with that prefix. Gaps left by deletion are never
// refilled while a surviving record still holds the maximum; if the
// highest-numbered record itself was deleted the scan can reissue its number,
// matching the source behavior.
func (tx *Transaction) NextID(c domain.Collection, prefix string) string {
	return nextSequential(tx.state[c], prefix, "-")
}

// NextFullname returns <kind>_<N>, the typed compound identifier form used by
// the social collections (e.g. t3_42).
func (tx *Transaction) NextFullname(c domain.Collection, kind string) string {
	return nextSequential(tx.state[c], kind, "_")
}

func nextSequential(records map[string]domain.Record, prefix, sep string) string {
	max := 0
	lead := prefix + sep
	for id := range records {
		if !strings.HasPrefix(id, lead) {
			continue
		}
		n, err := strconv.Atoi(id[len(lead):])
		if err != nil || n <= 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%s%d", prefix, sep, max+1)
}

// NewToken returns a random 8-4-4-4-12 lowercase-hex token free in the
// collection, regenerating on collision.
func (tx *Transaction) NewToken(c domain.Collection) string {
	for {
		token := tx.newToken()
		if _, taken := tx.state[c][token]; !taken {
			return token
		}
	}
}

// Changes returns the mutations recorded so far, in application order.
func (tx *Transaction) Changes() []domain.Change {
	return append([]domain.Change(nil), tx.changes...)
}

// RunInTransaction executes fn within a transactional clone of the store
// state and commits atomically when fn returns nil.
func (s *Store) RunInTransaction(_ context.Context, fn func(domain.Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{
		stateView: stateView{state: s.state.Clone()},
		newToken:  s.newToken,
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// View executes fn against a read-only snapshot of committed state.
func (s *Store) View(_ context.Context, fn func(domain.ReadView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(stateView{state: s.state})
}

// ExportState returns a deep copy of the committed state.
func (s *Store) ExportState() domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// ReplaceState clears and repopulates the existing state maps rather than
// rebinding them, so every component holding the store observes the restored
// world without re-acquiring it.
func (s *Store) ReplaceState(st domain.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.state {
		delete(s.state, name)
	}
	for name, records := range st.Clone() {
		s.state[name] = records
	}
}
