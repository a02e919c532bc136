// cmd/ledgerctl/replay.go
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	app "wallet-ledger/internal"
)

var replayUserID int64

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Recompute a user's materialized wallet from the event log",
	Long: `Replay projects the user's full immutable event history, overwrites the
materialized wallet fields and flags the events as replayed, all in one
transaction. Replaying is idempotent; running it twice yields the same numbers.`,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().Int64Var(&replayUserID, "user", 0, "user ID to replay")
	_ = replayCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, application *app.Application) error {
		result := application.LedgerService.ReplayEvents(ctx, replayUserID)
		if err := printJSON(cmd, result); err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("replay failed for user %d", replayUserID)
		}
		return nil
	})
}
