package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// ClientWallet is the per (clinic, client) cashback balance. The invariant
// balance_cents == total_earned_cents - total_spent_cents >= 0 holds after
// every ledger operation; rows are only ever mutated through the wallet
// service, never directly.
type ClientWallet struct {
	ID               snowflake.ID `json:"id" gorm:"primaryKey"`
	ClinicID         snowflake.ID `json:"clinic_id" gorm:"not null;uniqueIndex:idx_wallet_clinic_client"`
	ClientID         snowflake.ID `json:"client_id" gorm:"not null;uniqueIndex:idx_wallet_clinic_client"`
	BalanceCents     int64        `json:"balance_cents" gorm:"not null;default:0"`
	TotalEarnedCents int64        `json:"total_earned_cents" gorm:"not null;default:0"`
	TotalSpentCents  int64        `json:"total_spent_cents" gorm:"not null;default:0"`
	CreatedAt        time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt        time.Time    `json:"updated_at" gorm:"not null"`
}

func (ClientWallet) TableName() string { return "client_wallets" }

var (
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	// ErrRedemptionCapExceeded: the per-transaction ceiling (a share of the
	// checkout's service subtotal) was hit. Independent of balance.
	ErrRedemptionCapExceeded = errors.New("redemption_cap_exceeded")
	ErrWalletNotFound        = errors.New("wallet_not_found")
)

// RedemptionCap returns the hard ceiling for a single redemption given the
// service subtotal and the configured cap percent.
func RedemptionCap(serviceSubtotalCents int64, capPercent int) int64 {
	if serviceSubtotalCents <= 0 || capPercent <= 0 {
		return 0
	}
	return serviceSubtotalCents * int64(capPercent) / 100
}
