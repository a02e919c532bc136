// pkg/db/transaction_manager.go
package db

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// TxController defines methods for controlling a database transaction.
// *sqlx.Tx implicitly implements this interface.
type TxController interface {
	Commit() error
	Rollback() error
}

// DBTxBeginner defines the interface for beginning transactions.
// *sqlx.DB implements this.
type DBTxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// BeginTxFunc begins a transaction and returns its controller.
type BeginTxFunc func(ctx context.Context, dbConn DBTxBeginner) (TxController, error)

// CommitTxFunc commits the transaction.
type CommitTxFunc func(tx TxController) error

// RollbackTxFunc rolls back the transaction. Safe to defer after a commit.
type RollbackTxFunc func(tx TxController)

// BeginTx starts a new database transaction.
// It returns a TxController interface, which *sqlx.Tx implements.
func BeginTx(ctx context.Context, dbConn DBTxBeginner) (TxController, error) {
	tx, err := dbConn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return tx, nil // *sqlx.Tx implicitly implements TxController
}

// CommitTx commits the transaction.
func CommitTx(tx TxController) error {
	return tx.Commit()
}

// RollbackTx rolls back the transaction. It is typically deferred, so the
// error is logged rather than returned; sql.ErrTxDone after a successful
// commit is expected and ignored.
func RollbackTx(tx TxController) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		slog.Error("Failed to roll back transaction", "error", err)
	}
}
