// internal/domain/results.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventReplayResult reports the outcome of a transactional replay. On failure
// the numeric fields are zero and Errors carries the captured messages; no
// partial wallet state has been persisted either way.
type EventReplayResult struct {
	Success        bool            `json:"success"`
	EventsReplayed int             `json:"events_replayed"`
	FinalBalance   decimal.Decimal `json:"final_balance"`
	FinalOnHold    decimal.Decimal `json:"final_on_hold"`
	Errors         []string        `json:"errors,omitempty"`
}

// WalletAuditResult compares a user's materialized balance against an
// independent projection. A mismatch is data, not an error: IsValid flips to
// false and Details describes the discrepancy. A missing user aggregate is
// reported with UserFound=false rather than an error, so audit sweeps stay
// resilient to stale user references.
type WalletAuditResult struct {
	UserID            int64           `json:"user_id"`
	UserFound         bool            `json:"user_found"`
	IsValid           bool            `json:"is_valid"`
	CurrentBalance    decimal.Decimal `json:"current_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	Details           string          `json:"details"`
}

// AmountTotals groups event amounts by direction for reporting. COMMISSION and
// REFUND fall in no bucket; that mirrors the projector's historical reporting
// behavior and is asserted by tests rather than corrected here.
type AmountTotals struct {
	Deposited decimal.Decimal `json:"deposited"`
	Withdrawn decimal.Decimal `json:"withdrawn"`
	Held      decimal.Decimal `json:"held"`
	Released  decimal.Decimal `json:"released"`
}

// EventStatistics aggregates a user's event log for observability.
type EventStatistics struct {
	UserID      int64             `json:"user_id"`
	TotalEvents int               `json:"total_events"`
	ByType      map[EventType]int `json:"by_type"`
	TotalAmount AmountTotals      `json:"total_amount"`
	FirstEvent  *time.Time        `json:"first_event,omitempty"`
	LastEvent   *time.Time        `json:"last_event,omitempty"`
}

// NewEventStatistics returns an empty accumulator for the given user.
func NewEventStatistics(userID int64) *EventStatistics {
	return &EventStatistics{
		UserID: userID,
		ByType: make(map[EventType]int),
		TotalAmount: AmountTotals{
			Deposited: decimal.Zero,
			Withdrawn: decimal.Zero,
			Held:      decimal.Zero,
			Released:  decimal.Zero,
		},
	}
}

// Observe folds one event into the statistics. Events are expected in
// ascending sequence order so First/LastEvent track the log's endpoints.
func (s *EventStatistics) Observe(event WalletEvent) {
	s.TotalEvents++
	s.ByType[event.EventType]++

	switch event.EventType {
	case EventTypeDeposit, EventTypeTopup, EventTypeTransferIn:
		s.TotalAmount.Deposited = s.TotalAmount.Deposited.Add(event.Amount)
	case EventTypeWithdrawal, EventTypeBillPayment, EventTypeTransferOut:
		s.TotalAmount.Withdrawn = s.TotalAmount.Withdrawn.Add(event.Amount)
	case EventTypeHold:
		s.TotalAmount.Held = s.TotalAmount.Held.Add(event.Amount)
	case EventTypeRelease:
		s.TotalAmount.Released = s.TotalAmount.Released.Add(event.Amount)
	}

	ts := event.Timestamp
	if s.FirstEvent == nil {
		s.FirstEvent = &ts
	}
	s.LastEvent = &ts
}
