package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"fjacquet/doc-recognizer/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MockCatalogProvider is a CatalogProvider for tests.
type MockCatalogProvider struct {
	Catalog models.CategoryCatalog
	Err     error

	mu    sync.Mutex
	calls int
}

// ListCategories returns the configured catalog or error.
func (m *MockCatalogProvider) ListCategories(context.Context) (models.CategoryCatalog, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Catalog.Clone(), nil
}

// Calls returns how many times ListCategories was called.
func (m *MockCatalogProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ExecCall is one statement recorded by MockDB.
type ExecCall struct {
	SQL  string
	Args []any
}

// MockDB is a DB for tests. Query returns QueryRows; Exec records the call and
// returns ExecErr when ExecErrFor (if set) says so.
type MockDB struct {
	QueryRows [][]any
	QueryErr  error
	RowsErr   error

	ExecErr    error
	ExecErrFor func(call ExecCall) bool

	mu    sync.Mutex
	execs []ExecCall
}

// Query implements DB.
func (m *MockDB) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	return &mockRows{rows: m.QueryRows, idx: -1, err: m.RowsErr}, nil
}

// Exec implements DB.
func (m *MockDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	call := ExecCall{SQL: sql, Args: args}
	if m.ExecErr != nil && (m.ExecErrFor == nil || m.ExecErrFor(call)) {
		return pgconn.CommandTag{}, m.ExecErr
	}
	m.mu.Lock()
	m.execs = append(m.execs, call)
	m.mu.Unlock()
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

// Execs returns the successful Exec calls.
func (m *MockDB) Execs() []ExecCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecCall(nil), m.execs...)
}

type mockRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *mockRows) Close()                                       {}
func (r *mockRows) Err() error                                   { return r.err }
func (r *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) RawValues() [][]byte                          { return nil }
func (r *mockRows) Conn() *pgx.Conn                              { return nil }

func (r *mockRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *mockRows) Values() ([]any, error) {
	return r.rows[r.idx], nil
}

func (r *mockRows) Scan(dest ...any) error {
	row := r.rows[r.idx]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		value := reflect.ValueOf(row[i])
		if !value.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("scan: column %d is %s, destination is %s", i, value.Type(), target.Type())
		}
		target.Set(value)
	}
	return nil
}
