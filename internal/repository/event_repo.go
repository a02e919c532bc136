// internal/repository/event_repo.go
package repository

import (
	"context"
	"time"

	"wallet-ledger/internal/domain"
)

// WalletEventRepository defines the interface for the append-only event log.
// Events are immutable once written; the only permitted mutation is the
// replay bookkeeping flag set by MarkEventsReplayed.
type WalletEventRepository interface {
	// CreateEvent appends an event using the provided DBExecutor. The caller
	// assigns the sequence inside the same transaction; a unique-constraint
	// violation on (user_id, sequence) surfaces as util.ErrSequenceConflict.
	CreateEvent(ctx context.Context, q DBExecutor, event *domain.WalletEvent) error
	// GetUserEvents retrieves events with sequence >= fromSequence, ascending
	// by sequence, capped at limit.
	GetUserEvents(ctx context.Context, q DBExecutor, userID int64, fromSequence int64, limit int) ([]domain.WalletEvent, error)
	// LastSequence returns the highest sequence recorded for the user, 0 if
	// the user has no events.
	LastSequence(ctx context.Context, q DBExecutor, userID int64) (int64, error)
	// GetCorrelatedEvents returns all events sharing a correlation ID across
	// aggregates, ordered by timestamp ascending. This is the one query where
	// timestamp ordering is legitimate: correlated events may belong to
	// different users with independent sequence counters.
	GetCorrelatedEvents(ctx context.Context, q DBExecutor, correlationID string) ([]domain.WalletEvent, error)
	// MarkEventsReplayed flags all of the user's events as included in a
	// replay pass and returns the number of rows touched. Never alters
	// financial meaning.
	MarkEventsReplayed(ctx context.Context, q DBExecutor, userID int64, replayedAt time.Time) (int64, error)
}
