// internal/worker/auditor.go
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"wallet-ledger/internal/config"
	"wallet-ledger/internal/repository"
	"wallet-ledger/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-co-op/gocron/v2"
	"golang.org/x/sync/errgroup"
)

// SweepSummary reports the outcome of one audit pass over all users.
type SweepSummary struct {
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	UsersAudited int64     `json:"users_audited"`
	Mismatches   int64     `json:"mismatches"`
	Missing      int64     `json:"missing"`
	Repaired     int64     `json:"repaired"`
	Errors       int64     `json:"errors"`
}

// AuditSweeper periodically audits every user's materialized wallet against
// the event log. Mismatches are logged for operators; in repair mode the
// sweeper additionally replays the mismatched wallet, which is safe because
// replay is idempotent and fully transactional.
type AuditSweeper struct {
	svc        service.WalletEventService
	users      repository.UserRepository
	dbExecutor repository.DBExecutor
	cfg        config.WorkerConfig
	logger     *slog.Logger

	mu        sync.RWMutex
	lastSweep *SweepSummary
}

// NewAuditSweeper creates a new AuditSweeper.
func NewAuditSweeper(
	svc service.WalletEventService,
	users repository.UserRepository,
	dbExecutor repository.DBExecutor,
	cfg config.WorkerConfig,
	logger *slog.Logger,
) *AuditSweeper {
	return &AuditSweeper{
		svc:        svc,
		users:      users,
		dbExecutor: dbExecutor,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run schedules the sweep at the configured interval and blocks until ctx is
// cancelled.
func (s *AuditSweeper) Run(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("audit sweeper: failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.cfg.SweepInterval),
		gocron.NewTask(func() {
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("Audit sweep failed", "error", err)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("audit sweeper: failed to schedule job: %w", err)
	}

	s.logger.Info("Starting audit sweeper", "interval", s.cfg.SweepInterval, "repair", s.cfg.Repair)
	scheduler.Start()

	<-ctx.Done()
	return scheduler.Shutdown()
}

// Sweep audits all users once, paging through IDs and auditing with bounded
// concurrency. Audit mismatches and missing users are data, not failures:
// they are counted and logged, and the sweep keeps going.
func (s *AuditSweeper) Sweep(ctx context.Context) (*SweepSummary, error) {
	summary := &SweepSummary{StartedAt: time.Now().UTC()}
	var audited, mismatches, missing, repaired, errCount int64

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}
	concurrency := s.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	afterID := int64(0)
	for {
		ids, err := s.users.ListUserIDs(ctx, s.dbExecutor, afterID, batchSize)
		if err != nil {
			return nil, fmt.Errorf("audit sweep: failed to list users: %w", err)
		}
		if len(ids) == 0 {
			break
		}
		afterID = ids[len(ids)-1]

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for _, id := range ids {
			userID := id
			g.Go(func() error {
				result, err := s.svc.AuditUserWallet(gctx, userID)
				if err != nil {
					atomic.AddInt64(&errCount, 1)
					s.logger.Error("Audit failed", "user_id", userID, "error", err)
					return nil // Keep sweeping; infrastructure errors are counted, not fatal
				}
				atomic.AddInt64(&audited, 1)

				if !result.UserFound {
					atomic.AddInt64(&missing, 1)
					s.logger.Warn("Audit hit a stale user reference", "user_id", userID)
					return nil
				}
				if result.IsValid {
					return nil
				}

				atomic.AddInt64(&mismatches, 1)
				s.logger.Warn("Wallet audit mismatch",
					"user_id", userID,
					"current_balance", result.CurrentBalance,
					"calculated_balance", result.CalculatedBalance,
					"difference", result.Difference,
					"details", result.Details,
				)

				if s.cfg.Repair {
					replay := s.svc.ReplayEvents(gctx, userID)
					if replay.Success {
						atomic.AddInt64(&repaired, 1)
						s.logger.Info("Replayed wallet after audit mismatch",
							"user_id", userID,
							"events_replayed", replay.EventsReplayed,
							"final_balance", replay.FinalBalance,
						)
					} else {
						atomic.AddInt64(&errCount, 1)
						s.logger.Error("Replay after audit mismatch failed",
							"user_id", userID, "errors", replay.Errors)
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("audit sweep: %w", err)
		}
	}

	summary.FinishedAt = time.Now().UTC()
	summary.UsersAudited = audited
	summary.Mismatches = mismatches
	summary.Missing = missing
	summary.Repaired = repaired
	summary.Errors = errCount

	s.mu.Lock()
	s.lastSweep = summary
	s.mu.Unlock()

	s.logger.Info("Audit sweep finished",
		"users_audited", audited,
		"mismatches", mismatches,
		"missing", missing,
		"repaired", repaired,
		"errors", errCount,
		"duration", summary.FinishedAt.Sub(summary.StartedAt),
	)
	return summary, nil
}

// LastSweep returns the most recent sweep summary, nil before the first run.
func (s *AuditSweeper) LastSweep() *SweepSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSweep
}

// Handler exposes the sweeper's operational endpoints: /health and /status.
func (s *AuditSweeper) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		last := s.LastSweep()
		if last == nil {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"no sweep completed yet"}`))
			return
		}
		if err := json.NewEncoder(w).Encode(last); err != nil {
			s.logger.Error("Failed to encode sweep summary", "error", err)
		}
	})

	return r
}
