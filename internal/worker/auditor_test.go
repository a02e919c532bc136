// internal/worker/auditor_test.go
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"wallet-ledger/internal/config"
	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/repository"
	"wallet-ledger/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedgerService implements service.WalletEventService with pluggable audit
// and replay behavior. The sweeper only exercises those two methods.
type fakeLedgerService struct {
	mu          sync.Mutex
	auditFn     func(userID int64) (*domain.WalletAuditResult, error)
	replayedIDs []int64
	replayFn    func(userID int64) *domain.EventReplayResult
}

func (f *fakeLedgerService) AuditUserWallet(ctx context.Context, userID int64) (*domain.WalletAuditResult, error) {
	return f.auditFn(userID)
}

func (f *fakeLedgerService) ReplayEvents(ctx context.Context, userID int64) *domain.EventReplayResult {
	f.mu.Lock()
	f.replayedIDs = append(f.replayedIDs, userID)
	f.mu.Unlock()
	if f.replayFn != nil {
		return f.replayFn(userID)
	}
	return &domain.EventReplayResult{Success: true, FinalBalance: decimal.Zero, FinalOnHold: decimal.Zero}
}

func (f *fakeLedgerService) CreateEvent(ctx context.Context, input service.CreateEventInput) (*domain.WalletEvent, error) {
	panic("not used by the sweeper")
}

func (f *fakeLedgerService) GetUserEvents(ctx context.Context, userID int64, fromSequence int64, limit int) ([]domain.WalletEvent, error) {
	panic("not used by the sweeper")
}

func (f *fakeLedgerService) CalculateStateFromEvents(ctx context.Context, userID int64) (*domain.WalletState, error) {
	panic("not used by the sweeper")
}

func (f *fakeLedgerService) CalculateStateFromSnapshot(ctx context.Context, userID int64) (*domain.WalletState, error) {
	panic("not used by the sweeper")
}

func (f *fakeLedgerService) CreateSnapshot(ctx context.Context, userID int64) (*domain.WalletSnapshot, error) {
	panic("not used by the sweeper")
}

func (f *fakeLedgerService) SaveSnapshot(ctx context.Context, userID int64) (*domain.WalletSnapshot, error) {
	panic("not used by the sweeper")
}

func (f *fakeLedgerService) GetEventStatistics(ctx context.Context, userID int64) (*domain.EventStatistics, error) {
	panic("not used by the sweeper")
}

func (f *fakeLedgerService) GetCorrelatedEvents(ctx context.Context, correlationID string) ([]domain.WalletEvent, error) {
	panic("not used by the sweeper")
}

// fakeUserDirectory serves user IDs in keyset pages, like the Postgres repo.
type fakeUserDirectory struct {
	ids       []int64
	listCalls int
}

func (f *fakeUserDirectory) ListUserIDs(ctx context.Context, q repository.DBExecutor, afterID int64, limit int) ([]int64, error) {
	f.listCalls++
	var page []int64
	for _, id := range f.ids {
		if id > afterID {
			page = append(page, id)
		}
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

func (f *fakeUserDirectory) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	return nil
}

func (f *fakeUserDirectory) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	return nil, nil
}

func (f *fakeUserDirectory) GetUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	return nil, nil
}

func (f *fakeUserDirectory) LockUser(ctx context.Context, q repository.DBExecutor, id int64) error {
	return nil
}

func (f *fakeUserDirectory) UpdateWalletFields(ctx context.Context, q repository.DBExecutor, userID int64, state domain.WalletState, lastUpdated time.Time) error {
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func auditResult(userID int64, found, valid bool) (*domain.WalletAuditResult, error) {
	return &domain.WalletAuditResult{
		UserID:            userID,
		UserFound:         found,
		IsValid:           valid,
		CurrentBalance:    decimal.Zero,
		CalculatedBalance: decimal.Zero,
		Difference:        decimal.Zero,
	}, nil
}

func TestSweepCountsOutcomes(t *testing.T) {
	svc := &fakeLedgerService{
		auditFn: func(userID int64) (*domain.WalletAuditResult, error) {
			switch userID {
			case 2:
				return auditResult(userID, true, false) // Mismatch
			case 3:
				return auditResult(userID, false, false) // Stale reference
			case 4:
				return nil, errors.New("connection refused")
			default:
				return auditResult(userID, true, true)
			}
		},
	}
	users := &fakeUserDirectory{ids: []int64{1, 2, 3, 4, 5}}

	sweeper := NewAuditSweeper(svc, users, nil, config.WorkerConfig{BatchSize: 2, Concurrency: 2}, discardLogger())

	summary, err := sweeper.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.UsersAudited, "the errored audit does not count as audited")
	assert.Equal(t, int64(1), summary.Mismatches)
	assert.Equal(t, int64(1), summary.Missing)
	assert.Equal(t, int64(1), summary.Errors)
	assert.Equal(t, int64(0), summary.Repaired, "repair is off by default")
	assert.Empty(t, svc.replayedIDs)
	assert.False(t, summary.FinishedAt.Before(summary.StartedAt))

	// 5 users with batch size 2: three pages plus the empty terminator.
	assert.Equal(t, 4, users.listCalls)
}

func TestSweepRepairsMismatches(t *testing.T) {
	svc := &fakeLedgerService{
		auditFn: func(userID int64) (*domain.WalletAuditResult, error) {
			return auditResult(userID, true, userID != 2)
		},
	}
	users := &fakeUserDirectory{ids: []int64{1, 2, 3}}

	sweeper := NewAuditSweeper(svc, users, nil, config.WorkerConfig{Repair: true}, discardLogger())

	summary, err := sweeper.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Mismatches)
	assert.Equal(t, int64(1), summary.Repaired)
	assert.Equal(t, []int64{2}, svc.replayedIDs, "only the mismatched wallet gets replayed")
}

func TestSweepCountsFailedRepairs(t *testing.T) {
	svc := &fakeLedgerService{
		auditFn: func(userID int64) (*domain.WalletAuditResult, error) {
			return auditResult(userID, true, false)
		},
		replayFn: func(userID int64) *domain.EventReplayResult {
			return &domain.EventReplayResult{Success: false, Errors: []string{"deadlock detected"}}
		},
	}
	users := &fakeUserDirectory{ids: []int64{1}}

	sweeper := NewAuditSweeper(svc, users, nil, config.WorkerConfig{Repair: true}, discardLogger())

	summary, err := sweeper.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Mismatches)
	assert.Equal(t, int64(0), summary.Repaired)
	assert.Equal(t, int64(1), summary.Errors)
}

func TestHandlerStatus(t *testing.T) {
	svc := &fakeLedgerService{
		auditFn: func(userID int64) (*domain.WalletAuditResult, error) {
			return auditResult(userID, true, true)
		},
	}
	users := &fakeUserDirectory{ids: []int64{1}}
	sweeper := NewAuditSweeper(svc, users, nil, config.WorkerConfig{}, discardLogger())
	handler := sweeper.Handler()

	t.Run("Health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("StatusBeforeFirstSweep", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "no sweep completed yet")
	})

	t.Run("StatusAfterSweep", func(t *testing.T) {
		_, err := sweeper.Sweep(context.Background())
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		var summary SweepSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, int64(1), summary.UsersAudited)
	})
}
