// internal/repository/postgres/snapshot_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/repository"
	"wallet-ledger/internal/util"

	"github.com/jmoiron/sqlx"
)

// SnapshotRepository implements repository.SnapshotRepository for PostgreSQL.
type SnapshotRepository struct {
	// Methods receive a DBExecutor directly; no connection is held here.
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(db *sqlx.DB) repository.SnapshotRepository {
	return &SnapshotRepository{}
}

// SaveSnapshot upserts the user's snapshot row. One row per user: a newer
// snapshot replaces the previous one, since anything older is recomputable
// from the event log anyway.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, q repository.DBExecutor, snapshot *domain.WalletSnapshot) error {
	query := `INSERT INTO wallet_snapshots (user_id, balance, on_hold, total_earned, total_spent, last_event_sequence, snapshot_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              ON CONFLICT (user_id) DO UPDATE SET
                  balance = EXCLUDED.balance,
                  on_hold = EXCLUDED.on_hold,
                  total_earned = EXCLUDED.total_earned,
                  total_spent = EXCLUDED.total_spent,
                  last_event_sequence = EXCLUDED.last_event_sequence,
                  snapshot_at = EXCLUDED.snapshot_at`
	_, err := q.ExecContext(ctx, query,
		snapshot.UserID,
		snapshot.Balance,
		snapshot.OnHold,
		snapshot.TotalEarned,
		snapshot.TotalSpent,
		snapshot.LastEventSequence,
		snapshot.SnapshotAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot for user %d: %w", snapshot.UserID, err)
	}
	return nil
}

// GetLatestSnapshot returns the user's snapshot, or util.ErrNotFound.
func (r *SnapshotRepository) GetLatestSnapshot(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.WalletSnapshot, error) {
	var snapshot domain.WalletSnapshot
	query := `SELECT user_id, balance, on_hold, total_earned, total_spent, last_event_sequence, snapshot_at
              FROM wallet_snapshots WHERE user_id = $1`
	err := q.GetContext(ctx, &snapshot, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot for user %d: %w", userID, err)
	}
	return &snapshot, nil
}
