// internal/repository/postgres/user_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/repository"
	"wallet-ledger/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const userColumns = `id, username, wallet_balance, wallet_on_hold, wallet_total_earned, wallet_total_spent, wallet_last_updated, created_at, updated_at`

// UserRepository implements repository.UserRepository for PostgreSQL.
type UserRepository struct {
	// Methods receive a DBExecutor directly; no connection is held here.
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &UserRepository{}
}

// CreateUser inserts a new user with zeroed wallet fields using the provided
// DBExecutor. A taken username surfaces as util.ErrDuplicateEntry.
func (r *UserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	query := `INSERT INTO users (username, wallet_balance, wallet_on_hold, wallet_total_earned, wallet_total_spent, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := q.GetContext(ctx, &user.ID, query,
		user.Username,
		user.WalletBalance,
		user.WalletOnHold,
		user.WalletTotalEarned,
		user.WalletTotalSpent,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("username %q: %w", user.Username, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID using the provided DBExecutor.
func (r *UserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	err := q.GetContext(ctx, &user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by their username using the provided DBExecutor.
func (r *UserRepository) GetUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	err := q.GetContext(ctx, &user, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by username '%s': %w", username, err)
	}
	return &user, nil
}

// LockUser takes the user's row lock for the rest of the transaction. Sequence
// assignment is a read-modify-write over "max sequence for this user"; holding
// this lock is what keeps concurrent appends for the same user gapless.
func (r *UserRepository) LockUser(ctx context.Context, q repository.DBExecutor, id int64) error {
	var locked int64
	query := `SELECT id FROM users WHERE id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &locked, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return util.ErrUserNotFound
		}
		return fmt.Errorf("failed to lock user %d: %w", id, err)
	}
	return nil
}

// UpdateWalletFields overwrites the materialized wallet fields with the
// projector's output. Only the replay engine calls this.
func (r *UserRepository) UpdateWalletFields(ctx context.Context, q repository.DBExecutor, userID int64, state domain.WalletState, lastUpdated time.Time) error {
	query := `UPDATE users
              SET wallet_balance = $1, wallet_on_hold = $2, wallet_total_earned = $3, wallet_total_spent = $4, wallet_last_updated = $5, updated_at = $5
              WHERE id = $6`
	result, err := q.ExecContext(ctx, query,
		state.Balance,
		state.OnHold,
		state.TotalEarned,
		state.TotalSpent,
		lastUpdated,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update wallet fields for user %d: %w", userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating wallet fields for user %d: %w", userID, err)
	}
	if rowsAffected == 0 {
		return util.ErrUserNotFound
	}
	return nil
}

// ListUserIDs pages through user IDs in ascending order for audit sweeps.
func (r *UserRepository) ListUserIDs(ctx context.Context, q repository.DBExecutor, afterID int64, limit int) ([]int64, error) {
	ids := []int64{}
	query := `SELECT id FROM users WHERE id > $1 ORDER BY id ASC LIMIT $2`
	err := q.SelectContext(ctx, &ids, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list user IDs after %d: %w", afterID, err)
	}
	return ids, nil
}
