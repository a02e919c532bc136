// cmd/ledgerctl/snapshot.go
package main

import (
	"context"

	"github.com/spf13/cobra"

	app "wallet-ledger/internal"
)

var (
	snapshotUserID int64
	snapshotSave   bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Project a user's current wallet state into a snapshot",
	Long: `Snapshot folds the user's event history and reports the state together with
the last covered sequence. With --save the snapshot is also persisted (and
cached, when Redis is enabled) so later projections can resume from it.`,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().Int64Var(&snapshotUserID, "user", 0, "user ID to snapshot")
	snapshotCmd.Flags().BoolVar(&snapshotSave, "save", false, "persist the snapshot")
	_ = snapshotCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, application *app.Application) error {
		if snapshotSave {
			snapshot, err := application.LedgerService.SaveSnapshot(ctx, snapshotUserID)
			if err != nil {
				return err
			}
			return printJSON(cmd, snapshot)
		}
		snapshot, err := application.LedgerService.CreateSnapshot(ctx, snapshotUserID)
		if err != nil {
			return err
		}
		return printJSON(cmd, snapshot)
	})
}
