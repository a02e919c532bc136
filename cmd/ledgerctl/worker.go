// cmd/ledgerctl/worker.go
package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	app "wallet-ledger/internal"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the scheduled audit sweep worker",
	Long: `The worker periodically audits every user's materialized wallet against the
event log, logging mismatches, and optionally repairing them by replay. It
serves /health and /status on the configured listen address.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, application *app.Application) error {
		server := &http.Server{
			Addr:         application.Config.Worker.ListenAddr,
			Handler:      application.AuditSweeper.Handler(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			application.Logger.Info("Starting worker status server", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			return application.AuditSweeper.Run(gctx)
		})

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		application.Logger.Info("Worker stopped.")
		return nil
	})
}
