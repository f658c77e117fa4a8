package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type RedeemRequest struct {
	ClinicID             snowflake.ID
	ClientID             snowflake.ID
	AmountCents          int64
	ServiceSubtotalCents int64
}

type EarnRequest struct {
	ClinicID    snowflake.ID
	ClientID    snowflake.ID
	AmountCents int64
}

// Service is the only mutation path for client wallets. Redeem and Earn take
// the caller's transaction handle so checkout confirmation can make the
// wallet mutation and the financial-transaction write all-or-nothing.
type Service interface {
	Balance(ctx context.Context, clinicID, clientID snowflake.ID) (ClientWallet, error)
	Redeem(ctx context.Context, tx *gorm.DB, req RedeemRequest) error
	Earn(ctx context.Context, tx *gorm.DB, req EarnRequest) error
	// Cap exposes the redemption ceiling for a given service subtotal so the
	// UI can show the specific limit that was hit.
	Cap(serviceSubtotalCents int64) int64
}
