// internal/repository/user_repo.go
package repository

import (
	"context"
	"time"

	"wallet-ledger/internal/domain"
)

// UserRepository defines the interface for user data operations. The wallet
// fields on the user row are a materialized projection: only the replay
// engine writes them, always through UpdateWalletFields inside a transaction.
type UserRepository interface {
	// CreateUser adds a new user to the database using the provided DBExecutor.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUserByID retrieves a user by their ID using the provided DBExecutor.
	GetUserByID(ctx context.Context, q DBExecutor, id int64) (*domain.User, error)
	// GetUserByUsername retrieves a user by their username using the provided DBExecutor.
	GetUserByUsername(ctx context.Context, q DBExecutor, username string) (*domain.User, error)
	// LockUser acquires a row lock on the user for the duration of the
	// surrounding transaction. Appends for the same user serialize on this
	// lock; appends for different users never contend.
	LockUser(ctx context.Context, q DBExecutor, id int64) error
	// UpdateWalletFields overwrites the materialized wallet fields with the
	// projector's output.
	UpdateWalletFields(ctx context.Context, q DBExecutor, userID int64, state domain.WalletState, lastUpdated time.Time) error
	// ListUserIDs returns user IDs after the given ID, ascending, for audit
	// sweeps to page through.
	ListUserIDs(ctx context.Context, q DBExecutor, afterID int64, limit int) ([]int64, error)
}
