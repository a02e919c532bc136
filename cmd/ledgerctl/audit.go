// cmd/ledgerctl/audit.go
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	app "wallet-ledger/internal"
)

var (
	auditUserID int64
	auditStrict bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Compare a user's materialized balance against the event log",
	Long: `Audit independently projects the user's event history and compares the result
with the materialized wallet balance. A mismatch is reported as data; with
--strict the command additionally exits non-zero so schedulers can alert.`,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().Int64Var(&auditUserID, "user", 0, "user ID to audit")
	auditCmd.Flags().BoolVar(&auditStrict, "strict", false, "exit non-zero on mismatch or missing user")
	_ = auditCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, application *app.Application) error {
		result, err := application.LedgerService.AuditUserWallet(ctx, auditUserID)
		if err != nil {
			return err
		}
		if err := printJSON(cmd, result); err != nil {
			return err
		}
		if auditStrict && !result.IsValid {
			return fmt.Errorf("audit failed for user %d: %s", auditUserID, result.Details)
		}
		return nil
	})
}
