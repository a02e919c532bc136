// internal/domain/event.go
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// EventType defines the type of a wallet event. The set is closed: unknown
// values are rejected before anything is written.
type EventType string

const (
	EventTypeDeposit     EventType = "DEPOSIT"
	EventTypeWithdrawal  EventType = "WITHDRAWAL"
	EventTypeHold        EventType = "HOLD"
	EventTypeRelease     EventType = "RELEASE"
	EventTypeRefund      EventType = "REFUND"
	EventTypeTransferOut EventType = "TRANSFER_OUT"
	EventTypeTransferIn  EventType = "TRANSFER_IN"
	EventTypeTopup       EventType = "TOPUP"
	EventTypeBillPayment EventType = "BILL_PAYMENT"
	EventTypeCommission  EventType = "COMMISSION"
)

// AllEventTypes lists every member of the closed set, in declaration order.
var AllEventTypes = []EventType{
	EventTypeDeposit,
	EventTypeWithdrawal,
	EventTypeHold,
	EventTypeRelease,
	EventTypeRefund,
	EventTypeTransferOut,
	EventTypeTransferIn,
	EventTypeTopup,
	EventTypeBillPayment,
	EventTypeCommission,
}

// Valid reports whether t is a member of the closed event type set.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeDeposit, EventTypeWithdrawal, EventTypeHold, EventTypeRelease,
		EventTypeRefund, EventTypeTransferOut, EventTypeTransferIn,
		EventTypeTopup, EventTypeBillPayment, EventTypeCommission:
		return true
	}
	return false
}

// Metadata is an open key/value bag attached to an event (transaction ids,
// order ids, counterparties, human descriptions). It is stored as JSONB and
// never interpreted by the projector.
type Metadata map[string]interface{}

// Value implements driver.Valuer so Metadata can be written as JSONB.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for reading JSONB back into Metadata.
func (m *Metadata) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("metadata: cannot scan %T", src)
	}
	return json.Unmarshal(b, m)
}

// WalletEvent is an immutable financial fact in a user's append-only log.
// Events are never updated or deleted; corrections are new compensating events.
// Within one user's aggregate, Sequence is the sole ordering authority —
// Timestamp records wall-clock time only.
type WalletEvent struct {
	ID            uuid.UUID       `db:"id" json:"id"`                         // Surrogate primary key
	UserID        int64           `db:"user_id" json:"user_id"`               // Owning aggregate
	EventType     EventType       `db:"event_type" json:"event_type"`         // Closed set, see AllEventTypes
	Amount        decimal.Decimal `db:"amount" json:"amount"`                 // Always >= 0; direction implied by EventType
	Timestamp     time.Time       `db:"timestamp" json:"timestamp"`           // Recording time, not ordering authority
	Metadata      Metadata        `db:"metadata" json:"metadata"`             // Opaque bag, JSONB in DB
	AggregateID   string          `db:"aggregate_id" json:"aggregate_id"`     // "{userID}-{sequence}", unique
	Sequence      int64           `db:"sequence" json:"sequence"`             // Strictly increasing, gapless per user
	CorrelationID *string         `db:"correlation_id" json:"correlation_id"` // Links events of one business transaction
	CausationID   *string         `db:"causation_id" json:"causation_id"`     // Event that triggered this one
	IsReplayed    bool            `db:"is_replayed" json:"is_replayed"`       // Replay bookkeeping only
	ReplayedAt    *time.Time      `db:"replayed_at" json:"replayed_at"`
	Version       int             `db:"version" json:"version"` // Payload schema version
}

// CurrentEventVersion is the schema version stamped on newly created events.
const CurrentEventVersion = 1

// AggregateIDFor derives the stable identifier of the event at the given
// position in a user's log.
func AggregateIDFor(userID, sequence int64) string {
	return fmt.Sprintf("%d-%d", userID, sequence)
}

// NewWalletEvent builds an event at the given sequence position. The sequence
// must have been assigned under the same transaction that inserts the event.
func NewWalletEvent(userID int64, eventType EventType, amount decimal.Decimal, sequence int64, metadata Metadata, correlationID, causationID *string) *WalletEvent {
	return &WalletEvent{
		ID:            uuid.New(),
		UserID:        userID,
		EventType:     eventType,
		Amount:        amount,
		Timestamp:     time.Now().UTC(),
		Metadata:      metadata,
		AggregateID:   AggregateIDFor(userID, sequence),
		Sequence:      sequence,
		CorrelationID: correlationID,
		CausationID:   causationID,
		Version:       CurrentEventVersion,
	}
}
