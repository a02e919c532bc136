// internal/repository/db_executor.go
package repository

import (
	"context"
	"database/sql"
)

// DBExecutor defines the common database operations needed by repositories.
// Both *sqlx.DB and *sqlx.Tx implement these methods.
// This allows repositories to operate on either a direct DB connection or a
// transaction — the append path and the replay engine always pass a
// transaction so their read-then-write stays serialized.
type DBExecutor interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
