// internal/domain/state.go
package domain

import (
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// WalletState is the projected summary of a user's event log. It is derived
// state: always reconstructible by folding the ordered log from zero.
type WalletState struct {
	Balance     decimal.Decimal `json:"balance"`
	OnHold      decimal.Decimal `json:"on_hold"`
	TotalEarned decimal.Decimal `json:"total_earned"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
}

// ZeroWalletState returns the all-zero accumulator a projection starts from.
func ZeroWalletState() WalletState {
	return WalletState{
		Balance:     decimal.Zero,
		OnHold:      decimal.Zero,
		TotalEarned: decimal.Zero,
		TotalSpent:  decimal.Zero,
	}
}

// Apply folds one event into the state and returns the result. This is the
// ledger's transition table:
//
//	DEPOSIT, TOPUP, TRANSFER_IN, COMMISSION  balance += amount, totalEarned += amount
//	WITHDRAWAL, BILL_PAYMENT, TRANSFER_OUT   balance -= amount, totalSpent += amount
//	HOLD                                     onHold += amount
//	RELEASE                                  balance -= amount, onHold -= amount, totalSpent += amount
//	REFUND                                   onHold -= amount
//
// RELEASE settles held funds: it debits both the balance and the hold and
// counts as spend. REFUND only returns a hold; it credits neither balance nor
// totalEarned. Callers must feed events in ascending sequence order.
func (s WalletState) Apply(event WalletEvent) WalletState {
	switch event.EventType {
	case EventTypeDeposit, EventTypeTopup, EventTypeTransferIn, EventTypeCommission:
		s.Balance = s.Balance.Add(event.Amount)
		s.TotalEarned = s.TotalEarned.Add(event.Amount)
	case EventTypeWithdrawal, EventTypeBillPayment, EventTypeTransferOut:
		s.Balance = s.Balance.Sub(event.Amount)
		s.TotalSpent = s.TotalSpent.Add(event.Amount)
	case EventTypeHold:
		s.OnHold = s.OnHold.Add(event.Amount)
	case EventTypeRelease:
		s.Balance = s.Balance.Sub(event.Amount)
		s.OnHold = s.OnHold.Sub(event.Amount)
		s.TotalSpent = s.TotalSpent.Add(event.Amount)
	case EventTypeRefund:
		s.OnHold = s.OnHold.Sub(event.Amount)
	}
	return s
}

// Project folds an ordered event slice from the all-zero state.
func Project(events []WalletEvent) WalletState {
	return ProjectFrom(ZeroWalletState(), events)
}

// ProjectFrom folds an ordered event slice starting from a seed accumulator.
// Seeding with a snapshot's four numeric fields and the events after its
// LastEventSequence yields the same state as a full fold from zero.
func ProjectFrom(seed WalletState, events []WalletEvent) WalletState {
	state := seed
	for _, event := range events {
		state = state.Apply(event)
	}
	return state
}
