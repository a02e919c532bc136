// internal/domain/user.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a user aggregate with its materialized wallet fields. The
// wallet fields are a cache of the projector's output: written only by the
// replay engine, never the source of truth.
type User struct {
	ID                int64           `db:"id" json:"id"`                                   // Primary key, BIGSERIAL in DB
	Username          string          `db:"username" json:"username"`                       // Unique username
	WalletBalance     decimal.Decimal `db:"wallet_balance" json:"wallet_balance"`           // Materialized, NUMERIC(20, 4) in DB
	WalletOnHold      decimal.Decimal `db:"wallet_on_hold" json:"wallet_on_hold"`           // Materialized
	WalletTotalEarned decimal.Decimal `db:"wallet_total_earned" json:"wallet_total_earned"` // Materialized
	WalletTotalSpent  decimal.Decimal `db:"wallet_total_spent" json:"wallet_total_spent"`   // Materialized
	WalletLastUpdated *time.Time      `db:"wallet_last_updated" json:"wallet_last_updated"` // Set on each replay
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// NewUser creates a new User with zeroed wallet fields.
func NewUser(username string) *User {
	now := time.Now().UTC()
	return &User{
		Username:          username,
		WalletBalance:     decimal.Zero,
		WalletOnHold:      decimal.Zero,
		WalletTotalEarned: decimal.Zero,
		WalletTotalSpent:  decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
