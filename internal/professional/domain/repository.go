package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, prof *Professional) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Professional, error)
	FindByWalletID(ctx context.Context, db *gorm.DB, walletID string) (*Professional, error)
	UpdateKYC(ctx context.Context, db *gorm.DB, prof *Professional) error
	// ListRentalPayers returns every professional on a rental or hybrid model
	// with a configured rent amount.
	ListRentalPayers(ctx context.Context, db *gorm.DB) ([]Professional, error)

	InsertRentalBilling(ctx context.Context, db *gorm.DB, billing *RentalBilling) error
	// ListUnissuedRentalBillings returns billings for the due date that have no
	// gateway payment reference yet, so charge issuance can be retried.
	ListUnissuedRentalBillings(ctx context.Context, db *gorm.DB, dueDate time.Time) ([]RentalBilling, error)
	UpdateRentalBillingReference(ctx context.Context, db *gorm.DB, billing *RentalBilling) error
}
