// Package sqlite provides a SQLite-backed persistent store that mirrors the
// in-memory semantics and snapshots the full state after every successful
// transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"simcore/internal/infra/persistence/memory"
	"simcore/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Compile-time contract assertion.
var _ domain.Store = (*Store)(nil)

// Store embeds the in-memory store for transaction semantics and persists
// each collection as a JSON blob keyed by collection name.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens (or creates) the snapshot database at path and hydrates the
// in-memory state from any stored snapshot.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "simcore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		collection TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT collection, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	state := make(domain.State)
	for rows.Next() {
		var name string
		var payload []byte
		if err := rows.Scan(&name, &payload); err != nil {
			return fmt.Errorf("scan state: %w", err)
		}
		var records map[string]domain.Record
		if err := json.Unmarshal(payload, &records); err != nil {
			return fmt.Errorf("decode collection %s: %w", name, err)
		}
		state[domain.Collection(name)] = records
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if len(state) > 0 {
		s.Store.ReplaceState(state)
	}
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.Store.ExportState()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM state`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear state: %w", err)
	}
	for name, records := range state {
		payload, err := json.Marshal(records)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode collection %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO state (collection, payload) VALUES (?, ?)`,
			string(name), payload); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("store collection %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// RunInTransaction applies fn in memory, then snapshots to SQLite on success.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) error {
	if err := s.Store.RunInTransaction(ctx, fn); err != nil {
		return err
	}
	return s.persist(ctx)
}

// ReplaceState swaps the in-memory state and snapshots the result.
func (s *Store) ReplaceState(state domain.State) {
	s.Store.ReplaceState(state)
	_ = s.persist(context.Background())
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
