package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, txn *FinancialTransaction) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*FinancialTransaction, error)
	// ListClinicsWithPendingFees returns the distinct clinics with at least one
	// fee-pending transaction; each becomes one settlement batch candidate.
	ListClinicsWithPendingFees(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error)
	// FindOpenBatchKey returns the billing key of a previously claimed but not
	// yet billed batch for the clinic, or "" when none exists.
	FindOpenBatchKey(ctx context.Context, db *gorm.DB, clinicID snowflake.ID) (string, error)
	// ClaimBatch stamps key onto the clinic's unclaimed fee-pending rows,
	// freezing the batch membership before the gateway is called.
	ClaimBatch(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, key string, now time.Time) (int64, error)
	ListBatch(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, key string) ([]FinancialTransaction, error)
	// MarkBatchBilled flips the whole batch to billed in one statement and
	// reports how many rows it touched.
	MarkBatchBilled(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, key, reference string, now time.Time) (int64, error)
}
