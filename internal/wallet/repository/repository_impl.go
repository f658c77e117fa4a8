package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	walletdomain "github.com/vitalislabs/vitalis/internal/wallet/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() walletdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, wallet *walletdomain.ClientWallet) error {
	return db.WithContext(ctx).Create(wallet).Error
}

func (r *repo) FindByClinicAndClient(ctx context.Context, db *gorm.DB, clinicID, clientID snowflake.ID) (*walletdomain.ClientWallet, error) {
	var wallet walletdomain.ClientWallet
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM client_wallets WHERE clinic_id = ? AND client_id = ? LIMIT 1`,
		clinicID,
		clientID,
	).Scan(&wallet).Error
	if err != nil {
		return nil, err
	}
	if wallet.ID == 0 {
		return nil, nil
	}
	return &wallet, nil
}

func (r *repo) ApplyRedeem(ctx context.Context, db *gorm.DB, clinicID, clientID snowflake.ID, amountCents int64, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE client_wallets
		 SET balance_cents = balance_cents - ?,
		     total_spent_cents = total_spent_cents + ?,
		     updated_at = ?
		 WHERE clinic_id = ? AND client_id = ? AND balance_cents >= ?`,
		amountCents,
		amountCents,
		now,
		clinicID,
		clientID,
		amountCents,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) ApplyEarn(ctx context.Context, db *gorm.DB, clinicID, clientID snowflake.ID, amountCents int64, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE client_wallets
		 SET balance_cents = balance_cents + ?,
		     total_earned_cents = total_earned_cents + ?,
		     updated_at = ?
		 WHERE clinic_id = ? AND client_id = ?`,
		amountCents,
		amountCents,
		now,
		clinicID,
		clientID,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
