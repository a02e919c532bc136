// internal/repository/snapshot_repo.go
package repository

import (
	"context"

	"wallet-ledger/internal/domain"
)

// SnapshotRepository defines persistence for derived wallet snapshots.
// Snapshots are disposable read-side state; losing them only costs a longer
// fold on the next projection.
type SnapshotRepository interface {
	// SaveSnapshot upserts the user's snapshot row.
	SaveSnapshot(ctx context.Context, q DBExecutor, snapshot *domain.WalletSnapshot) error
	// GetLatestSnapshot returns the user's most recent snapshot, or
	// util.ErrNotFound when none has been taken.
	GetLatestSnapshot(ctx context.Context, q DBExecutor, userID int64) (*domain.WalletSnapshot, error)
}
