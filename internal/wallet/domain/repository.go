package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, wallet *ClientWallet) error
	FindByClinicAndClient(ctx context.Context, db *gorm.DB, clinicID, clientID snowflake.ID) (*ClientWallet, error)
	// ApplyRedeem is a conditional update guarded by balance_cents >= amount;
	// it reports whether a row was updated. The guard makes concurrent
	// redemptions against the same wallet safe without a separate lock.
	ApplyRedeem(ctx context.Context, db *gorm.DB, clinicID, clientID snowflake.ID, amountCents int64, now time.Time) (bool, error)
	// ApplyEarn is an additive update; it reports whether the wallet row
	// existed.
	ApplyEarn(ctx context.Context, db *gorm.DB, clinicID, clientID snowflake.ID, amountCents int64, now time.Time) (bool, error)
}
