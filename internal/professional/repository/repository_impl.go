package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	profdomain "github.com/vitalislabs/vitalis/internal/professional/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() profdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, prof *profdomain.Professional) error {
	return db.WithContext(ctx).Create(prof).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*profdomain.Professional, error) {
	var prof profdomain.Professional
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM professionals WHERE id = ? LIMIT 1`,
		id,
	).Scan(&prof).Error
	if err != nil {
		return nil, err
	}
	if prof.ID == 0 {
		return nil, nil
	}
	return &prof, nil
}

func (r *repo) FindByWalletID(ctx context.Context, db *gorm.DB, walletID string) (*profdomain.Professional, error) {
	if walletID == "" {
		return nil, nil
	}
	var prof profdomain.Professional
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM professionals WHERE gateway_wallet_id = ? LIMIT 1`,
		walletID,
	).Scan(&prof).Error
	if err != nil {
		return nil, err
	}
	if prof.ID == 0 {
		return nil, nil
	}
	return &prof, nil
}

func (r *repo) UpdateKYC(ctx context.Context, db *gorm.DB, prof *profdomain.Professional) error {
	return db.WithContext(ctx).Exec(
		`UPDATE professionals
		 SET kyc_status = ?, gateway_customer_id = ?, gateway_wallet_id = ?, updated_at = ?
		 WHERE id = ?`,
		prof.KYCStatus,
		prof.GatewayCustomerID,
		prof.GatewayWalletID,
		prof.UpdatedAt,
		prof.ID,
	).Error
}

func (r *repo) ListRentalPayers(ctx context.Context, db *gorm.DB) ([]profdomain.Professional, error) {
	var profs []profdomain.Professional
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM professionals
		 WHERE commission_model IN (?, ?) AND rental_amount_cents > 0
		 ORDER BY id`,
		profdomain.ModelRental,
		profdomain.ModelHybrid,
	).Scan(&profs).Error
	if err != nil {
		return nil, err
	}
	return profs, nil
}

func (r *repo) InsertRentalBilling(ctx context.Context, db *gorm.DB, billing *profdomain.RentalBilling) error {
	return db.WithContext(ctx).Create(billing).Error
}

func (r *repo) ListUnissuedRentalBillings(ctx context.Context, db *gorm.DB, dueDate time.Time) ([]profdomain.RentalBilling, error) {
	var billings []profdomain.RentalBilling
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM rental_billings
		 WHERE due_date = ? AND payment_reference = ''
		 ORDER BY id`,
		dueDate,
	).Scan(&billings).Error
	if err != nil {
		return nil, err
	}
	return billings, nil
}

func (r *repo) UpdateRentalBillingReference(ctx context.Context, db *gorm.DB, billing *profdomain.RentalBilling) error {
	return db.WithContext(ctx).Exec(
		`UPDATE rental_billings SET payment_reference = ?, updated_at = ? WHERE id = ?`,
		billing.PaymentReference,
		billing.UpdatedAt,
		billing.ID,
	).Error
}
