package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"simcore/pkg/domain"
)

// stubBackend records executed statements and keeps the state table contents,
// standing in for a real server.
type stubBackend struct {
	mu    sync.Mutex
	execs []string
	state map[string][]byte
}

func newStubBackend() *stubBackend {
	return &stubBackend{state: make(map[string][]byte)}
}

func (b *stubBackend) open() *sql.DB {
	return sql.OpenDB(stubConnector{backend: b})
}

type stubConnector struct{ backend *stubBackend }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) {
	return &stubConn{backend: c.backend}, nil
}

func (c stubConnector) Driver() driver.Driver { return stubDriver{backend: c.backend} }

type stubDriver struct{ backend *stubBackend }

func (d stubDriver) Open(string) (driver.Conn, error) {
	return &stubConn{backend: d.backend}, nil
}

type stubConn struct{ backend *stubBackend }

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported by stub")
}

func (c *stubConn) Close() error              { return nil }
func (c *stubConn) Begin() (driver.Tx, error) { return stubTx{}, nil }
func (c *stubConn) Ping(context.Context) error {
	return nil
}

func (c *stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return stubTx{}, nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	b := c.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	b.execs = append(b.execs, query)
	upper := strings.ToUpper(query)
	switch {
	case strings.Contains(upper, "DELETE FROM STATE"):
		b.state = make(map[string][]byte)
	case strings.Contains(upper, "INSERT INTO STATE"):
		name, _ := args[0].Value.(string)
		payload, _ := args[1].Value.([]byte)
		b.state[name] = append([]byte(nil), payload...)
	}
	return driver.RowsAffected(0), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if !strings.Contains(strings.ToUpper(query), "SELECT") {
		return nil, errors.New("unexpected query: " + query)
	}
	b := c.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	rows := &stubRows{}
	for name, payload := range b.state {
		rows.rows = append(rows.rows, [2]any{name, append([]byte(nil), payload...)})
	}
	return rows, nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubRows struct {
	rows [][2]any
	pos  int
}

func (r *stubRows) Columns() []string { return []string{"collection", "payload"} }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	dest[0] = r.rows[r.pos][0]
	dest[1] = r.rows[r.pos][1]
	r.pos++
	return nil
}

func overrideOpen(t *testing.T, backend *stubBackend) {
	t.Helper()
	openMu.Lock()
	prev := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return backend.open(), nil }
	openMu.Unlock()
	t.Cleanup(func() {
		openMu.Lock()
		sqlOpen = prev
		openMu.Unlock()
	})
}

func TestNewStoreCreatesTableAndHydrates(t *testing.T) {
	backend := newStubBackend()
	payload, _ := json.Marshal(map[string]domain.Record{
		"TEST": {"key": "TEST", "name": "Test"},
	})
	backend.state["projects"] = payload
	overrideOpen(t, backend)

	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer func() { _ = store.Close() }()

	sawDDL := false
	for _, stmt := range backend.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("state table DDL not applied: %v", backend.execs)
	}
	if err := store.View(context.Background(), func(view domain.ReadView) error {
		if !view.Exists("projects", "TEST") {
			t.Fatalf("snapshot not hydrated")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestRunInTransactionSnapshotsState(t *testing.T) {
	backend := newStubBackend()
	overrideOpen(t, backend)

	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		tx.Put("projects", "TEST", domain.Record{"key": "TEST"})
		return nil
	}); err != nil {
		t.Fatalf("tx: %v", err)
	}

	backend.mu.Lock()
	payload, ok := backend.state["projects"]
	backend.mu.Unlock()
	if !ok {
		t.Fatalf("projects collection not snapshotted")
	}
	var records map[string]domain.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if records["TEST"]["key"] != "TEST" {
		t.Fatalf("unexpected snapshot payload: %v", records)
	}
}

func TestFailedTransactionSkipsSnapshot(t *testing.T) {
	backend := newStubBackend()
	overrideOpen(t, backend)

	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer func() { _ = store.Close() }()

	failure := errors.New("boom")
	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		tx.Put("projects", "GONE", domain.Record{"key": "GONE"})
		return failure
	}); !errors.Is(err, failure) {
		t.Fatalf("expected propagated error, got %v", err)
	}
	backend.mu.Lock()
	_, ok := backend.state["projects"]
	backend.mu.Unlock()
	if ok {
		t.Fatalf("aborted transaction reached the database")
	}
}
