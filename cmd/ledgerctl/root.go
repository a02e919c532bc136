// cmd/ledgerctl/root.go
package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	app "wallet-ledger/internal"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "ledgerctl",
	Short:        "Operational tooling for the wallet event ledger",
	Long:         `ledgerctl appends events, replays and audits wallets, and runs the scheduled audit sweep worker against the wallet event ledger.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")
}

// withApp initializes the application, runs fn and shuts everything down.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, application *app.Application) error) error {
	ctx := cmd.Context()
	application := app.NewApplication()
	if err := application.Initialize(ctx, configPath); err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		_ = application.Shutdown(context.Background())
	}()
	return fn(ctx, application)
}

// printJSON renders a command result for operators.
func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
