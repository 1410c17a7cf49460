package builder

import (
	"context"
	"errors"
)

// Row is one result row, keyed by column name. Rows pass through the core
// as plain mappings; hydration into domain structs is the caller's concern.
type Row map[string]interface{}

// Executor is the execution collaborator the builder delegates to. It owns
// connections, transport, timeouts and retries; the core only hands it
// qmark SQL with ordered bindings and a logical connection name (empty
// selects the default connection).
type Executor interface {
	// Dialect resolves the SQL dialect of a connection.
	Dialect(connection string) (string, error)

	// Query runs a statement that returns rows.
	Query(ctx context.Context, connection, sql string, bindings []interface{}) ([]Row, error)

	// Exec runs a statement that returns an affected-row count.
	Exec(ctx context.Context, connection, sql string, bindings []interface{}) (int64, error)
}

// ErrNoExecutor is returned when an execution method is called on a builder
// that was constructed without an executor.
var ErrNoExecutor = errors.New("no executor configured")
