// internal/service/ledger_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/repository"
	"wallet-ledger/internal/util"
	"wallet-ledger/pkg/db"

	"github.com/shopspring/decimal"
)

// DefaultEventPageSize caps a single event-log read. Projections page through
// the log in batches of this size.
const DefaultEventPageSize = 1000

// auditTolerance is the maximum absolute difference between the materialized
// and projected balance that still counts as consistent.
var auditTolerance = decimal.NewFromFloat(0.01)

// CreateEventInput carries the facts a caller supplies when appending to the
// ledger. Sequence, aggregate ID and timestamp are assigned at append time.
type CreateEventInput struct {
	UserID        int64
	EventType     domain.EventType
	Amount        decimal.Decimal
	Metadata      domain.Metadata
	CorrelationID *string
	CausationID   *string
}

// WalletEventService is the ledger's public contract: append-only event
// recording, deterministic projection, snapshotting, transactional replay,
// auditing and statistics. The returned event from CreateEvent is a receipt,
// not an updated balance; balances are read via the projector or the auditor.
type WalletEventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*domain.WalletEvent, error)
	GetUserEvents(ctx context.Context, userID int64, fromSequence int64, limit int) ([]domain.WalletEvent, error)
	CalculateStateFromEvents(ctx context.Context, userID int64) (*domain.WalletState, error)
	CalculateStateFromSnapshot(ctx context.Context, userID int64) (*domain.WalletState, error)
	CreateSnapshot(ctx context.Context, userID int64) (*domain.WalletSnapshot, error)
	SaveSnapshot(ctx context.Context, userID int64) (*domain.WalletSnapshot, error)
	ReplayEvents(ctx context.Context, userID int64) *domain.EventReplayResult
	AuditUserWallet(ctx context.Context, userID int64) (*domain.WalletAuditResult, error)
	GetEventStatistics(ctx context.Context, userID int64) (*domain.EventStatistics, error)
	GetCorrelatedEvents(ctx context.Context, correlationID string) ([]domain.WalletEvent, error)
}

// SnapshotCache is an optional read-side cache for the latest snapshot. A nil
// cache disables caching entirely.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, userID int64) (*domain.WalletSnapshot, error)
	SetSnapshot(ctx context.Context, snapshot *domain.WalletSnapshot) error
}

// walletEventService implements the WalletEventService interface.
type walletEventService struct {
	dbBeginner   db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor   repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	userRepo     repository.UserRepository
	eventRepo    repository.WalletEventRepository
	snapshotRepo repository.SnapshotRepository
	cache        SnapshotCache     // Optional, may be nil
	beginTx      db.BeginTxFunc    // Injected dependency for beginning transactions
	commitTx     db.CommitTxFunc   // Injected dependency for committing transactions
	rollbackTx   db.RollbackTxFunc // Injected dependency for rolling back transactions
}

// NewWalletEventService creates a new instance of WalletEventService.
func NewWalletEventService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	eventRepo repository.WalletEventRepository,
	snapshotRepo repository.SnapshotRepository,
	cache SnapshotCache,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) WalletEventService {
	return &walletEventService{
		dbBeginner:   dbBeginner,
		dbExecutor:   dbExecutor,
		userRepo:     userRepo,
		eventRepo:    eventRepo,
		snapshotRepo: snapshotRepo,
		cache:        cache,
		beginTx:      beginTx,
		commitTx:     commitTx,
		rollbackTx:   rollbackTx,
	}
}

// CreateEvent appends an immutable event to the user's log. The sequence is
// assigned as lastSequence+1 under the user's row lock, inside the same
// transaction as the insert, so concurrent appends for one user serialize
// while different users never contend. A lost race still hits the unique
// index and comes back as util.ErrSequenceConflict for the caller to retry.
func (s *walletEventService) CreateEvent(ctx context.Context, input CreateEventInput) (*domain.WalletEvent, error) {
	if input.UserID <= 0 {
		return nil, fmt.Errorf("create event: user id %d: %w", input.UserID, util.ErrInvalidInput)
	}
	if !input.EventType.Valid() {
		return nil, fmt.Errorf("create event: %q: %w", input.EventType, util.ErrInvalidEventType)
	}
	if input.Amount.IsNegative() {
		return nil, fmt.Errorf("create event: %s: %w", input.Amount, util.ErrNegativeAmount)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("create event: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("create event: transaction controller does not implement DBExecutor")
	}

	if err := s.userRepo.LockUser(ctx, txExecutor, input.UserID); err != nil {
		return nil, fmt.Errorf("create event: failed to lock user %d: %w", input.UserID, err)
	}

	lastSequence, err := s.eventRepo.LastSequence(ctx, txExecutor, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("create event: failed to read last sequence for user %d: %w", input.UserID, err)
	}

	event := domain.NewWalletEvent(
		input.UserID,
		input.EventType,
		input.Amount,
		lastSequence+1,
		input.Metadata,
		input.CorrelationID,
		input.CausationID,
	)
	if err := s.eventRepo.CreateEvent(ctx, txExecutor, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("create event: failed to commit transaction: %w", err)
	}

	return event, nil
}

// GetUserEvents returns the user's events with sequence >= fromSequence,
// ascending, capped at limit (DefaultEventPageSize when limit <= 0).
func (s *walletEventService) GetUserEvents(ctx context.Context, userID int64, fromSequence int64, limit int) ([]domain.WalletEvent, error) {
	if limit <= 0 {
		limit = DefaultEventPageSize
	}
	events, err := s.eventRepo.GetUserEvents(ctx, s.dbExecutor, userID, fromSequence, limit)
	if err != nil {
		return nil, fmt.Errorf("get user events: %w", err)
	}
	return events, nil
}

// foldEvents pages through the user's log starting at fromSequence and folds
// every event into seed. It returns the resulting state, the highest sequence
// seen and the number of events folded.
func (s *walletEventService) foldEvents(ctx context.Context, q repository.DBExecutor, userID, fromSequence int64, seed domain.WalletState) (domain.WalletState, int64, int, error) {
	state := seed
	lastSequence := fromSequence - 1
	if lastSequence < 0 {
		lastSequence = 0
	}
	count := 0
	from := fromSequence
	for {
		events, err := s.eventRepo.GetUserEvents(ctx, q, userID, from, DefaultEventPageSize)
		if err != nil {
			return domain.ZeroWalletState(), 0, 0, err
		}
		for _, event := range events {
			state = state.Apply(event)
			lastSequence = event.Sequence
			count++
		}
		if len(events) < DefaultEventPageSize {
			break
		}
		from = lastSequence + 1
	}
	return state, lastSequence, count, nil
}

// CalculateStateFromEvents re-folds the user's full event history from zero.
// Pure and deterministic: the same log always yields the same state.
func (s *walletEventService) CalculateStateFromEvents(ctx context.Context, userID int64) (*domain.WalletState, error) {
	state, _, _, err := s.foldEvents(ctx, s.dbExecutor, userID, 0, domain.ZeroWalletState())
	if err != nil {
		return nil, fmt.Errorf("calculate state: %w", err)
	}
	return &state, nil
}

// CalculateStateFromSnapshot folds only the events after the user's latest
// persisted snapshot, seeded with the snapshot's state. Falls back to a full
// fold when no snapshot exists. Read-side optimization only; replay and audit
// always re-fold the full log.
func (s *walletEventService) CalculateStateFromSnapshot(ctx context.Context, userID int64) (*domain.WalletState, error) {
	snapshot, err := s.latestSnapshot(ctx, userID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return s.CalculateStateFromEvents(ctx, userID)
		}
		return nil, fmt.Errorf("calculate state from snapshot: %w", err)
	}

	state, _, _, err := s.foldEvents(ctx, s.dbExecutor, userID, snapshot.LastEventSequence+1, snapshot.State())
	if err != nil {
		return nil, fmt.Errorf("calculate state from snapshot: %w", err)
	}
	return &state, nil
}

func (s *walletEventService) latestSnapshot(ctx context.Context, userID int64) (*domain.WalletSnapshot, error) {
	if s.cache != nil {
		if snapshot, err := s.cache.GetSnapshot(ctx, userID); err == nil && snapshot != nil {
			return snapshot, nil
		}
	}
	return s.snapshotRepo.GetLatestSnapshot(ctx, s.dbExecutor, userID)
}

// CreateSnapshot projects the user's current state and wraps it with the
// highest sequence seen (0 if the log is empty). It neither blocks writers
// nor mutates anything; persistence is the caller's choice via SaveSnapshot.
func (s *walletEventService) CreateSnapshot(ctx context.Context, userID int64) (*domain.WalletSnapshot, error) {
	state, lastSequence, _, err := s.foldEvents(ctx, s.dbExecutor, userID, 0, domain.ZeroWalletState())
	if err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	return domain.NewWalletSnapshot(userID, state, lastSequence), nil
}

// SaveSnapshot takes a fresh snapshot, persists it and writes through to the
// cache when one is configured. Cache failures are not fatal: the snapshot
// row is the durable copy and both are recomputable from the log.
func (s *walletEventService) SaveSnapshot(ctx context.Context, userID int64) (*domain.WalletSnapshot, error) {
	snapshot, err := s.CreateSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.snapshotRepo.SaveSnapshot(ctx, s.dbExecutor, snapshot); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, snapshot); err != nil {
			util.GetLogger().Warn("Failed to cache snapshot", "user_id", userID, "error", err)
		}
	}
	return snapshot, nil
}

// ReplayEvents transactionally recomputes the user's materialized wallet
// fields from the full immutable log: project, overwrite the wallet fields,
// flag the events as replayed, commit. Any failure rolls the whole
// transaction back and is returned as a failure-shaped result — no partial
// replay state is ever observable. Replaying twice yields identical numbers
// because the computation always starts from the full log, never increments.
func (s *walletEventService) ReplayEvents(ctx context.Context, userID int64) *domain.EventReplayResult {
	fail := func(err error) *domain.EventReplayResult {
		return &domain.EventReplayResult{
			Success:      false,
			FinalBalance: decimal.Zero,
			FinalOnHold:  decimal.Zero,
			Errors:       []string{err.Error()},
		}
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fail(fmt.Errorf("replay: failed to begin transaction: %w", err))
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fail(fmt.Errorf("replay: transaction controller does not implement DBExecutor"))
	}

	state, _, count, err := s.foldEvents(ctx, txExecutor, userID, 0, domain.ZeroWalletState())
	if err != nil {
		return fail(fmt.Errorf("replay: failed to project events for user %d: %w", userID, err))
	}

	now := time.Now().UTC()
	if err := s.userRepo.UpdateWalletFields(ctx, txExecutor, userID, state, now); err != nil {
		return fail(fmt.Errorf("replay: failed to update wallet fields for user %d: %w", userID, err))
	}

	if _, err := s.eventRepo.MarkEventsReplayed(ctx, txExecutor, userID, now); err != nil {
		return fail(fmt.Errorf("replay: failed to mark events replayed for user %d: %w", userID, err))
	}

	if err := s.commitTx(txController); err != nil {
		return fail(fmt.Errorf("replay: failed to commit transaction: %w", err))
	}

	return &domain.EventReplayResult{
		Success:        true,
		EventsReplayed: count,
		FinalBalance:   state.Balance,
		FinalOnHold:    state.OnHold,
	}
}

// AuditUserWallet compares the materialized balance against an independent
// projection. A discrepancy beyond the tolerance is an expected, reportable
// outcome (IsValid=false), not an error; a missing user aggregate is reported
// with UserFound=false so audit sweeps survive stale references.
func (s *walletEventService) AuditUserWallet(ctx context.Context, userID int64) (*domain.WalletAuditResult, error) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return &domain.WalletAuditResult{
				UserID:            userID,
				UserFound:         false,
				IsValid:           false,
				CurrentBalance:    decimal.Zero,
				CalculatedBalance: decimal.Zero,
				Difference:        decimal.Zero,
				Details:           fmt.Sprintf("user %d not found", userID),
			}, nil
		}
		return nil, fmt.Errorf("audit: failed to load user %d: %w", userID, err)
	}

	state, _, _, err := s.foldEvents(ctx, s.dbExecutor, userID, 0, domain.ZeroWalletState())
	if err != nil {
		return nil, fmt.Errorf("audit: failed to project events for user %d: %w", userID, err)
	}

	difference := user.WalletBalance.Sub(state.Balance)
	isValid := difference.Abs().LessThan(auditTolerance)

	details := "materialized balance matches event log"
	if !isValid {
		details = fmt.Sprintf("materialized balance %s diverges from calculated balance %s by %s",
			user.WalletBalance, state.Balance, difference)
	}

	return &domain.WalletAuditResult{
		UserID:            userID,
		UserFound:         true,
		IsValid:           isValid,
		CurrentBalance:    user.WalletBalance,
		CalculatedBalance: state.Balance,
		Difference:        difference,
		Details:           details,
	}, nil
}

// GetEventStatistics aggregates the user's full log in one pass: counts per
// event type and amount totals per direction bucket.
func (s *walletEventService) GetEventStatistics(ctx context.Context, userID int64) (*domain.EventStatistics, error) {
	stats := domain.NewEventStatistics(userID)
	from := int64(0)
	for {
		events, err := s.eventRepo.GetUserEvents(ctx, s.dbExecutor, userID, from, DefaultEventPageSize)
		if err != nil {
			return nil, fmt.Errorf("event statistics: %w", err)
		}
		for _, event := range events {
			stats.Observe(event)
			from = event.Sequence + 1
		}
		if len(events) < DefaultEventPageSize {
			break
		}
	}
	return stats, nil
}

// GetCorrelatedEvents returns every event sharing a correlation ID across
// aggregates, ordered by timestamp ascending. Best-effort ordering for humans
// tracing a business transaction; never an input to financial computation.
func (s *walletEventService) GetCorrelatedEvents(ctx context.Context, correlationID string) ([]domain.WalletEvent, error) {
	events, err := s.eventRepo.GetCorrelatedEvents(ctx, s.dbExecutor, correlationID)
	if err != nil {
		return nil, fmt.Errorf("correlated events: %w", err)
	}
	return events, nil
}
