// cmd/ledgerctl/stats.go
package main

import (
	"context"

	"github.com/spf13/cobra"

	app "wallet-ledger/internal"
)

var (
	statsUserID        int64
	statsCorrelationID string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show event statistics for a user",
	RunE:  runStats,
}

var correlatedCmd = &cobra.Command{
	Use:   "correlated",
	Short: "List all events sharing a correlation ID, across users",
	Long: `Correlated events belong to one business transaction, possibly spanning
several aggregates; they are ordered by timestamp, which is best-effort and
for human tracing only.`,
	RunE: runCorrelated,
}

func init() {
	statsCmd.Flags().Int64Var(&statsUserID, "user", 0, "user ID to summarize")
	_ = statsCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(statsCmd)

	correlatedCmd.Flags().StringVar(&statsCorrelationID, "correlation-id", "", "correlation ID to look up")
	_ = correlatedCmd.MarkFlagRequired("correlation-id")
	rootCmd.AddCommand(correlatedCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, application *app.Application) error {
		stats, err := application.LedgerService.GetEventStatistics(ctx, statsUserID)
		if err != nil {
			return err
		}
		return printJSON(cmd, stats)
	})
}

func runCorrelated(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, application *app.Application) error {
		events, err := application.LedgerService.GetCorrelatedEvents(ctx, statsCorrelationID)
		if err != nil {
			return err
		}
		return printJSON(cmd, events)
	})
}
