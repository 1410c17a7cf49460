// Package executor implements the builder's execution collaborator on top
// of database/sql, with a registry of named connections.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/girardinsamuel/quarry/internal/debug"
	"github.com/girardinsamuel/quarry/query/builder"

	// Database drivers, selected by dialect.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// driverNames maps a dialect to its database/sql driver.
var driverNames = map[string]string{
	"postgres":   "postgres",
	"postgresql": "postgres",
	"mysql":      "mysql",
	"mariadb":    "mysql",
	"sqlite":     "sqlite3",
	"sqlite3":    "sqlite3",
}

// Open opens a database handle for a dialect and DSN.
func Open(dialect, dsn string) (*sql.DB, error) {
	driver, ok := driverNames[dialect]
	if !ok {
		return nil, fmt.Errorf("no driver for dialect %q", dialect)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", dialect, err)
	}
	return db, nil
}

type connection struct {
	db      *sql.DB
	dialect string
}

// Manager resolves logical connection names to database handles and runs
// compiled statements against them. It implements builder.Executor.
type Manager struct {
	mu       sync.RWMutex
	conns    map[string]*connection
	fallback string
}

// NewManager creates an empty connection registry.
func NewManager() *Manager {
	return &Manager{conns: make(map[string]*connection)}
}

// Register adds a named connection. The first registered connection becomes
// the default; SetDefault overrides that.
func (m *Manager) Register(name string, db *sql.DB, dialect string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[name] = &connection{db: db, dialect: dialect}
	if m.fallback == "" {
		m.fallback = name
	}
}

// SetDefault picks the connection used when a query names none.
func (m *Manager) SetDefault(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = name
}

// Close closes every registered connection, keeping the first error.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var first error
	for _, c := range m.conns {
		if err := c.db.Close(); err != nil && first == nil {
			first = err
		}
	}
	m.conns = make(map[string]*connection)
	m.fallback = ""
	return first
}

func (m *Manager) resolve(name string) (*connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if name == "" {
		name = m.fallback
	}
	c, ok := m.conns[name]
	if !ok {
		return nil, fmt.Errorf("unknown connection %q", name)
	}
	return c, nil
}

// Dialect resolves the dialect of a connection.
func (m *Manager) Dialect(name string) (string, error) {
	c, err := m.resolve(name)
	if err != nil {
		return "", err
	}
	return c.dialect, nil
}

// Query runs a row-returning statement and scans the result into plain row
// mappings.
func (m *Manager) Query(ctx context.Context, name, sqlText string, bindings []interface{}) ([]builder.Row, error) {
	c, err := m.resolve(name)
	if err != nil {
		return nil, err
	}
	debug.Query(name, sqlText, len(bindings))

	rows, err := c.db.QueryContext(ctx, sqlText, bindings...)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Exec runs a mutation and returns the affected-row count.
func (m *Manager) Exec(ctx context.Context, name, sqlText string, bindings []interface{}) (int64, error) {
	c, err := m.resolve(name)
	if err != nil {
		return 0, err
	}
	debug.Query(name, sqlText, len(bindings))

	result, err := c.db.ExecContext(ctx, sqlText, bindings...)
	if err != nil {
		return 0, fmt.Errorf("statement execution failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// scanRows scans every row into a column-keyed map, normalizing []byte
// values to strings.
func scanRows(rows *sql.Rows) ([]builder.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var results []builder.Row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		row := make(builder.Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return results, nil
}

var _ builder.Executor = (*Manager)(nil)
