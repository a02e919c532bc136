// internal/domain/state_test.go
package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(userID, sequence int64, eventType EventType, amount float64) WalletEvent {
	e := NewWalletEvent(userID, eventType, decimal.NewFromFloat(amount), sequence, nil, nil, nil)
	return *e
}

func TestApplyTransitionTable(t *testing.T) {
	amount := 50.0

	tests := []struct {
		eventType   EventType
		balance     float64
		onHold      float64
		totalEarned float64
		totalSpent  float64
	}{
		{EventTypeDeposit, 50, 0, 50, 0},
		{EventTypeTopup, 50, 0, 50, 0},
		{EventTypeTransferIn, 50, 0, 50, 0},
		{EventTypeCommission, 50, 0, 50, 0},
		{EventTypeWithdrawal, -50, 0, 0, 50},
		{EventTypeBillPayment, -50, 0, 0, 50},
		{EventTypeTransferOut, -50, 0, 0, 50},
		{EventTypeHold, 0, 50, 0, 0},
		// RELEASE settles held funds: balance and hold both drop, spend grows.
		{EventTypeRelease, -50, -50, 0, 50},
		// REFUND only returns a hold; balance and totalEarned stay untouched.
		{EventTypeRefund, 0, -50, 0, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			state := ZeroWalletState().Apply(testEvent(1, 1, tt.eventType, amount))
			assert.True(t, state.Balance.Equal(decimal.NewFromFloat(tt.balance)), "balance: got %s", state.Balance)
			assert.True(t, state.OnHold.Equal(decimal.NewFromFloat(tt.onHold)), "onHold: got %s", state.OnHold)
			assert.True(t, state.TotalEarned.Equal(decimal.NewFromFloat(tt.totalEarned)), "totalEarned: got %s", state.TotalEarned)
			assert.True(t, state.TotalSpent.Equal(decimal.NewFromFloat(tt.totalSpent)), "totalSpent: got %s", state.TotalSpent)
		})
	}
}

// TestProjectLiteralScenario pins the literal output of the transition table
// for DEPOSIT 100, HOLD 30, RELEASE 30, REFUND 10. The REFUND here has no
// matching HOLD, so the hold goes negative — the table is applied literally,
// it does not enforce business-level matching of holds and refunds.
func TestProjectLiteralScenario(t *testing.T) {
	events := []WalletEvent{
		testEvent(1, 1, EventTypeDeposit, 100),
		testEvent(1, 2, EventTypeHold, 30),
		testEvent(1, 3, EventTypeRelease, 30),
		testEvent(1, 4, EventTypeRefund, 10),
	}

	state := Project(events)

	assert.True(t, state.Balance.Equal(decimal.NewFromInt(70)), "balance: got %s", state.Balance)
	assert.True(t, state.OnHold.Equal(decimal.NewFromInt(-10)), "onHold: got %s", state.OnHold)
	assert.True(t, state.TotalEarned.Equal(decimal.NewFromInt(100)), "totalEarned: got %s", state.TotalEarned)
	assert.True(t, state.TotalSpent.Equal(decimal.NewFromInt(30)), "totalSpent: got %s", state.TotalSpent)
}

func TestProjectIsDeterministic(t *testing.T) {
	events := []WalletEvent{
		testEvent(1, 1, EventTypeTopup, 200),
		testEvent(1, 2, EventTypeHold, 80),
		testEvent(1, 3, EventTypeRelease, 80),
		testEvent(1, 4, EventTypeTransferOut, 40),
		testEvent(1, 5, EventTypeCommission, 12.5),
	}

	first := Project(events)
	second := Project(events)

	assert.True(t, first.Balance.Equal(second.Balance))
	assert.True(t, first.OnHold.Equal(second.OnHold))
	assert.True(t, first.TotalEarned.Equal(second.TotalEarned))
	assert.True(t, first.TotalSpent.Equal(second.TotalSpent))
}

func TestProjectEmptyLog(t *testing.T) {
	state := Project(nil)
	assert.True(t, state.Balance.IsZero())
	assert.True(t, state.OnHold.IsZero())
	assert.True(t, state.TotalEarned.IsZero())
	assert.True(t, state.TotalSpent.IsZero())
}

// TestProjectFromSnapshotSeed verifies that folding the tail of a log on top
// of a snapshot's state equals a full fold from zero.
func TestProjectFromSnapshotSeed(t *testing.T) {
	events := []WalletEvent{
		testEvent(1, 1, EventTypeDeposit, 100),
		testEvent(1, 2, EventTypeWithdrawal, 25),
		testEvent(1, 3, EventTypeHold, 10),
		testEvent(1, 4, EventTypeRelease, 10),
		testEvent(1, 5, EventTypeTopup, 5),
	}

	full := Project(events)

	snapshot := NewWalletSnapshot(1, Project(events[:3]), 3)
	resumed := ProjectFrom(snapshot.State(), events[3:])

	assert.True(t, full.Balance.Equal(resumed.Balance))
	assert.True(t, full.OnHold.Equal(resumed.OnHold))
	assert.True(t, full.TotalEarned.Equal(resumed.TotalEarned))
	assert.True(t, full.TotalSpent.Equal(resumed.TotalSpent))
}

func TestNewWalletSnapshot(t *testing.T) {
	state := WalletState{
		Balance:     decimal.NewFromInt(75),
		OnHold:      decimal.NewFromInt(5),
		TotalEarned: decimal.NewFromInt(100),
		TotalSpent:  decimal.NewFromInt(25),
	}

	before := time.Now().UTC()
	snapshot := NewWalletSnapshot(42, state, 9)

	require.NotNil(t, snapshot)
	assert.Equal(t, int64(42), snapshot.UserID)
	assert.Equal(t, int64(9), snapshot.LastEventSequence)
	assert.True(t, snapshot.Balance.Equal(state.Balance))
	assert.True(t, snapshot.OnHold.Equal(state.OnHold))
	assert.False(t, snapshot.SnapshotAt.Before(before))

	seed := snapshot.State()
	assert.True(t, seed.TotalEarned.Equal(state.TotalEarned))
	assert.True(t, seed.TotalSpent.Equal(state.TotalSpent))
}
