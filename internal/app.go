// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"wallet-ledger/internal/cache"
	"wallet-ledger/internal/config"
	"wallet-ledger/internal/repository"
	"wallet-ledger/internal/repository/postgres"
	"wallet-ledger/internal/service"
	"wallet-ledger/internal/util"
	"wallet-ledger/internal/worker"
	"wallet-ledger/pkg/db"
)

// Application holds all the initialized components of the ledger.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository     repository.UserRepository
	EventRepository    repository.WalletEventRepository
	SnapshotRepository repository.SnapshotRepository

	// Cache
	SnapshotCache *cache.RedisSnapshotCache

	// Services
	LedgerService service.WalletEventService

	// Background worker
	AuditSweeper *worker.AuditSweeper
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context, configPath string) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger(cfg.LogLevel)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.EventRepository = postgres.NewWalletEventRepository(app.DB)
	app.SnapshotRepository = postgres.NewSnapshotRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize Snapshot Cache
	snapshotCache, err := cache.NewRedisSnapshotCache(app.Config.Redis)
	if err != nil {
		// The cache is an optimization; the ledger works without it.
		app.Logger.Warn("Failed to initialize Redis snapshot cache, continuing without caching", "error", err)
		snapshotCache = nil
	}
	app.SnapshotCache = snapshotCache

	// 6. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	var cacheForService service.SnapshotCache
	if snapshotCache != nil {
		cacheForService = snapshotCache
	}
	app.LedgerService = service.NewWalletEventService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.UserRepository,
		app.EventRepository,
		app.SnapshotRepository,
		cacheForService,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	// 7. Initialize the audit sweep worker
	app.AuditSweeper = worker.NewAuditSweeper(
		app.LedgerService,
		app.UserRepository,
		app.DB,
		app.Config.Worker,
		app.Logger,
	)
	app.Logger.Info("Audit sweeper initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.SnapshotCache != nil {
		if err := app.SnapshotCache.Close(); err != nil {
			app.Logger.Error("Failed to close Redis connection", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
