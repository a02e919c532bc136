// cmd/ledgerctl/append.go
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	app "wallet-ledger/internal"
	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/service"
)

var (
	appendUserID        int64
	appendEventType     string
	appendAmount        string
	appendCorrelationID string
	appendCausationID   string
	appendDescription   string
	appendMeta          []string
)

var appendCmd = &cobra.Command{
	Use:   "append",
	Short: "Append a financial event to a user's ledger",
	Long: `Append an immutable event to a user's append-only log. The returned event is
a receipt: read balances through audit or replay, never from the append.`,
	RunE: runAppend,
}

func init() {
	appendCmd.Flags().Int64Var(&appendUserID, "user", 0, "user ID owning the aggregate")
	appendCmd.Flags().StringVar(&appendEventType, "type", "", "event type ("+eventTypeList()+")")
	appendCmd.Flags().StringVar(&appendAmount, "amount", "", "non-negative amount; direction is implied by the type")
	appendCmd.Flags().StringVar(&appendCorrelationID, "correlation-id", "", "links events of one business transaction across aggregates")
	appendCmd.Flags().StringVar(&appendCausationID, "causation-id", "", "aggregate ID of the event that caused this one")
	appendCmd.Flags().StringVar(&appendDescription, "description", "", "human-readable description stored in metadata")
	appendCmd.Flags().StringArrayVar(&appendMeta, "meta", nil, "additional metadata as key=value, repeatable")
	_ = appendCmd.MarkFlagRequired("user")
	_ = appendCmd.MarkFlagRequired("type")
	_ = appendCmd.MarkFlagRequired("amount")
	rootCmd.AddCommand(appendCmd)
}

func eventTypeList() string {
	names := make([]string, 0, len(domain.AllEventTypes))
	for _, t := range domain.AllEventTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func runAppend(cmd *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(appendAmount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", appendAmount, err)
	}

	metadata := domain.Metadata{
		"transaction_id": uuid.NewString(),
		"source":         "ledgerctl",
	}
	if appendDescription != "" {
		metadata["description"] = appendDescription
	}
	for _, kv := range appendMeta {
		key, value, found := strings.Cut(kv, "=")
		if !found || key == "" {
			return fmt.Errorf("invalid --meta entry %q, expected key=value", kv)
		}
		metadata[key] = value
	}

	input := service.CreateEventInput{
		UserID:    appendUserID,
		EventType: domain.EventType(strings.ToUpper(appendEventType)),
		Amount:    amount,
		Metadata:  metadata,
	}
	if appendCorrelationID != "" {
		input.CorrelationID = &appendCorrelationID
	}
	if appendCausationID != "" {
		input.CausationID = &appendCausationID
	}

	return withApp(cmd, func(ctx context.Context, application *app.Application) error {
		event, err := application.LedgerService.CreateEvent(ctx, input)
		if err != nil {
			return err
		}
		return printJSON(cmd, event)
	})
}
