// internal/domain/snapshot.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletSnapshot freezes a projected state together with the last sequence it
// covers. Snapshots are disposable: never authoritative, always recomputable
// from the event log. A projection may resume from LastEventSequence+1 using
// the snapshot's numeric fields as the fold seed.
type WalletSnapshot struct {
	UserID            int64           `db:"user_id" json:"user_id"`
	Balance           decimal.Decimal `db:"balance" json:"balance"`
	OnHold            decimal.Decimal `db:"on_hold" json:"on_hold"`
	TotalEarned       decimal.Decimal `db:"total_earned" json:"total_earned"`
	TotalSpent        decimal.Decimal `db:"total_spent" json:"total_spent"`
	LastEventSequence int64           `db:"last_event_sequence" json:"last_event_sequence"`
	SnapshotAt        time.Time       `db:"snapshot_at" json:"snapshot_at"`
}

// NewWalletSnapshot wraps a projected state with its covered sequence.
func NewWalletSnapshot(userID int64, state WalletState, lastEventSequence int64) *WalletSnapshot {
	return &WalletSnapshot{
		UserID:            userID,
		Balance:           state.Balance,
		OnHold:            state.OnHold,
		TotalEarned:       state.TotalEarned,
		TotalSpent:        state.TotalSpent,
		LastEventSequence: lastEventSequence,
		SnapshotAt:        time.Now().UTC(),
	}
}

// State returns the snapshot's numeric fields as a fold seed.
func (s *WalletSnapshot) State() WalletState {
	return WalletState{
		Balance:     s.Balance,
		OnHold:      s.OnHold,
		TotalEarned: s.TotalEarned,
		TotalSpent:  s.TotalSpent,
	}
}
