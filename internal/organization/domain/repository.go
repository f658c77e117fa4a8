package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, org *Organization) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Organization, error)
	// FindByIDForUpdate takes a row lock so concurrent webhook deliveries for
	// the same organization serialize.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Organization, error)
	FindBySubscriptionIDForUpdate(ctx context.Context, db *gorm.DB, subscriptionID string) (*Organization, error)
	FindByWalletID(ctx context.Context, db *gorm.DB, walletID string) (*Organization, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, org *Organization) error
	UpdateSubscription(ctx context.Context, db *gorm.DB, org *Organization) error
	UpdateKYC(ctx context.Context, db *gorm.DB, org *Organization) error
	FindPlanByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SubscriptionPlan, error)
}
