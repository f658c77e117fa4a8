package domain

import (
	"context"

	"gorm.io/gorm"
)

type Service interface {
	// Record persists a financial transaction inside the caller's transaction;
	// checkout confirmation uses this so the ledger write and the wallet
	// mutation commit together.
	Record(ctx context.Context, tx *gorm.DB, txn *FinancialTransaction) error
	// Settle bills each clinic's accumulated platform fees as one aggregate
	// gateway charge. Clinics are settled independently; one clinic's gateway
	// failure leaves only that clinic's batch pending.
	Settle(ctx context.Context) error
}
