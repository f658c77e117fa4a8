package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type TransactionStatus string

const (
	StatusPending TransactionStatus = "pending"
	StatusBilled  TransactionStatus = "billed"
)

// FinancialTransaction is the immutable record of one confirmed checkout.
// PlatformFeePercent and PlatformFeeCents are snapshots taken at confirmation
// time; later changes to a clinic's fee never rewrite history. FeePending
// drives the settlement query and is cleared exactly once, when the clinic's
// batch is billed.
type FinancialTransaction struct {
	ID                    snowflake.ID      `json:"id" gorm:"primaryKey"`
	ClinicID              snowflake.ID      `json:"clinic_id" gorm:"not null;index:idx_fin_tx_clinic_pending"`
	ProfessionalID        snowflake.ID      `json:"professional_id" gorm:"not null"`
	ClientID              snowflake.ID      `json:"client_id" gorm:"not null"`
	AppointmentID         *snowflake.ID     `json:"appointment_id,omitempty"`
	PaymentMethod         string            `json:"payment_method" gorm:"not null"`
	AmountCents           int64             `json:"amount_cents" gorm:"not null"`
	PlatformFeePercent    float64           `json:"platform_fee_percent" gorm:"not null"`
	PlatformFeeCents      int64             `json:"platform_fee_cents" gorm:"not null"`
	CashbackRedeemedCents int64             `json:"cashback_redeemed_cents" gorm:"not null;default:0"`
	CashbackEarnedCents   int64             `json:"cashback_earned_cents" gorm:"not null;default:0"`
	Status                TransactionStatus `json:"status" gorm:"not null;default:pending"`
	FeePending            bool              `json:"fee_pending" gorm:"not null;default:false;index:idx_fin_tx_clinic_pending"`
	BillingKey            string            `json:"billing_key" gorm:"not null;default:''"`
	BillingReference      string            `json:"billing_reference" gorm:"not null;default:''"`
	BilledAt              *time.Time        `json:"billed_at,omitempty"`
	CreatedAt             time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt             time.Time         `json:"updated_at" gorm:"not null"`
}

func (FinancialTransaction) TableName() string { return "financial_transactions" }

var (
	ErrTransactionNotFound = errors.New("transaction_not_found")
	// ErrBatchIncomplete: marking a batch billed touched fewer rows than the
	// batch holds. Indicates a bug, never a normal runtime condition.
	ErrBatchIncomplete = errors.New("settlement_batch_incomplete")
)
