package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type ConfirmRequest struct {
	ClinicID       snowflake.ID  `json:"clinic_id"`
	ProfessionalID snowflake.ID  `json:"professional_id"`
	ClientID       snowflake.ID  `json:"client_id"`
	AppointmentID  *snowflake.ID `json:"appointment_id,omitempty"`
	PaymentMethod  string        `json:"payment_method"`
	Input
}

type ConfirmResult struct {
	TransactionID       snowflake.ID `json:"transaction_id"`
	Calculation         Calculation  `json:"calculation"`
	CashbackEarnedCents int64        `json:"cashback_earned_cents"`
	WalletBalanceCents  int64        `json:"wallet_balance_cents"`
}

type Service interface {
	// Preview computes the breakdown with the clinic's effective fee percent
	// without touching any state.
	Preview(ctx context.Context, clinicID snowflake.ID, in Input) (Calculation, error)
	// Confirm applies the checkout: cashback redemption, the financial
	// transaction record and cashback earning commit in one database
	// transaction or not at all.
	Confirm(ctx context.Context, req ConfirmRequest) (ConfirmResult, error)
}
