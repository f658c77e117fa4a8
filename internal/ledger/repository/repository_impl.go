package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/vitalislabs/vitalis/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ledgerdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, txn *ledgerdomain.FinancialTransaction) error {
	return db.WithContext(ctx).Create(txn).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ledgerdomain.FinancialTransaction, error) {
	var txn ledgerdomain.FinancialTransaction
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM financial_transactions WHERE id = ? LIMIT 1`,
		id,
	).Scan(&txn).Error
	if err != nil {
		return nil, err
	}
	if txn.ID == 0 {
		return nil, nil
	}
	return &txn, nil
}

func (r *repo) ListClinicsWithPendingFees(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT clinic_id FROM financial_transactions WHERE fee_pending = ? ORDER BY clinic_id`,
		true,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) FindOpenBatchKey(ctx context.Context, db *gorm.DB, clinicID snowflake.ID) (string, error) {
	var key string
	err := db.WithContext(ctx).Raw(
		`SELECT billing_key FROM financial_transactions
		 WHERE clinic_id = ? AND fee_pending = ? AND billing_key <> ''
		 ORDER BY created_at LIMIT 1`,
		clinicID,
		true,
	).Scan(&key).Error
	if err != nil {
		return "", err
	}
	return key, nil
}

func (r *repo) ClaimBatch(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, key string, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE financial_transactions
		 SET billing_key = ?, updated_at = ?
		 WHERE clinic_id = ? AND fee_pending = ? AND billing_key = ''`,
		key,
		now,
		clinicID,
		true,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) ListBatch(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, key string) ([]ledgerdomain.FinancialTransaction, error) {
	var txns []ledgerdomain.FinancialTransaction
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM financial_transactions
		 WHERE clinic_id = ? AND billing_key = ? AND fee_pending = ?
		 ORDER BY created_at`,
		clinicID,
		key,
		true,
	).Scan(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repo) MarkBatchBilled(ctx context.Context, db *gorm.DB, clinicID snowflake.ID, key, reference string, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE financial_transactions
		 SET status = ?, fee_pending = ?, billing_reference = ?, billed_at = ?, updated_at = ?
		 WHERE clinic_id = ? AND billing_key = ? AND fee_pending = ?`,
		ledgerdomain.StatusBilled,
		false,
		reference,
		now,
		now,
		clinicID,
		key,
		true,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
