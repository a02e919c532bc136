// internal/repository/postgres/event_pg.go
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

// uniqueViolation is the PostgreSQL error code for unique-constraint breaks.
const uniqueViolation = "23505"

// WalletEventRepository implements repository.WalletEventRepository for PostgreSQL.
type WalletEventRepository struct {
	// Methods receive a DBExecutor directly; no connection is held here.
}

// NewWalletEventRepository creates a new WalletEventRepository.
func NewWalletEventRepository(db *sqlx.DB) repository.WalletEventRepository {
	return &WalletEventRepository{}
}

// CreateEvent inserts an immutable event row using the provided DBExecutor.
// A duplicate (user_id, sequence) or aggregate_id means two appends raced for
// the same user; that surfaces as util.ErrSequenceConflict so the caller can
// re-read the sequence and retry, never silently overwrite.
func (r *WalletEventRepository) CreateEvent(ctx context.Context, q repository.DBExecutor, event *domain.WalletEvent) error {
	query := `INSERT INTO wallet_events (id, user_id, event_type, amount, timestamp, metadata, aggregate_id, sequence, correlation_id, causation_id, is_replayed, replayed_at, version)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := q.ExecContext(ctx, query,
		event.ID,
		event.UserID,
		event.EventType,
		event.Amount,
		event.Timestamp,
		event.Metadata,
		event.AggregateID,
		event.Sequence,
		event.CorrelationID,
		event.CausationID,
		event.IsReplayed,
		event.ReplayedAt,
		event.Version,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("event %s: %w", event.AggregateID, util.ErrSequenceConflict)
		}
		return fmt.Errorf("failed to create wallet event: %w", err)
	}
	return nil
}

// GetUserEvents retrieves the user's events with sequence >= fromSequence,
// ascending by sequence, capped at limit.
func (r *WalletEventRepository) GetUserEvents(ctx context.Context, q repository.DBExecutor, userID int64, fromSequence int64, limit int) ([]domain.WalletEvent, error) {
	events := []domain.WalletEvent{}
	query := `
		SELECT id, user_id, event_type, amount, timestamp, metadata, aggregate_id, sequence, correlation_id, causation_id, is_replayed, replayed_at, version
		FROM wallet_events
		WHERE user_id = $1 AND sequence >= $2
		ORDER BY sequence ASC
		LIMIT $3`
	err := q.SelectContext(ctx, &events, query, userID, fromSequence, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events for user %d: %w", userID, err)
	}
	return events, nil
}

// LastSequence returns the highest sequence for the user, 0 if none. The
// caller must hold the user's row lock when assigning the next sequence.
func (r *WalletEventRepository) LastSequence(ctx context.Context, q repository.DBExecutor, userID int64) (int64, error) {
	var last sql.NullInt64
	query := `SELECT MAX(sequence) FROM wallet_events WHERE user_id = $1`
	err := q.GetContext(ctx, &last, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get last sequence for user %d: %w", userID, err)
	}
	if !last.Valid {
		return 0, nil
	}
	return last.Int64, nil
}

// GetCorrelatedEvents returns all events sharing a correlation ID, across
// aggregates, ordered by timestamp ascending.
func (r *WalletEventRepository) GetCorrelatedEvents(ctx context.Context, q repository.DBExecutor, correlationID string) ([]domain.WalletEvent, error) {
	events := []domain.WalletEvent{}
	query := `
		SELECT id, user_id, event_type, amount, timestamp, metadata, aggregate_id, sequence, correlation_id, causation_id, is_replayed, replayed_at, version
		FROM wallet_events
		WHERE correlation_id = $1
		ORDER BY timestamp ASC`
	err := q.SelectContext(ctx, &events, query, correlationID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch correlated events for %s: %w", correlationID, err)
	}
	return events, nil
}

// MarkEventsReplayed flags the user's events as covered by a replay pass.
func (r *WalletEventRepository) MarkEventsReplayed(ctx context.Context, q repository.DBExecutor, userID int64, replayedAt time.Time) (int64, error) {
	query := `UPDATE wallet_events SET is_replayed = true, replayed_at = $1 WHERE user_id = $2`
	result, err := q.ExecContext(ctx, query, replayedAt, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark events replayed for user %d: %w", userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected after marking events replayed for user %d: %w", userID, err)
	}
	return rowsAffected, nil
}
