package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	orgdomain "github.com/vitalislabs/vitalis/internal/organization/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() orgdomain.Repository {
	return &repo{}
}

// forUpdate adds a row lock on dialects that support it. sqlite serializes
// writers on its own and rejects FOR UPDATE syntax.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, org *orgdomain.Organization) error {
	return db.WithContext(ctx).Create(org).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orgdomain.Organization, error) {
	var org orgdomain.Organization
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM organizations WHERE id = ?`,
		id,
	).Scan(&org).Error
	if err != nil {
		return nil, err
	}
	if org.ID == 0 {
		return nil, nil
	}
	return &org, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orgdomain.Organization, error) {
	var org orgdomain.Organization
	err := forUpdate(db.WithContext(ctx)).
		Where("id = ?", id).
		Limit(1).
		Find(&org).Error
	if err != nil {
		return nil, err
	}
	if org.ID == 0 {
		return nil, nil
	}
	return &org, nil
}

func (r *repo) FindBySubscriptionIDForUpdate(ctx context.Context, db *gorm.DB, subscriptionID string) (*orgdomain.Organization, error) {
	var org orgdomain.Organization
	err := forUpdate(db.WithContext(ctx)).
		Where("gateway_subscription_id = ?", subscriptionID).
		Limit(1).
		Find(&org).Error
	if err != nil {
		return nil, err
	}
	if org.ID == 0 {
		return nil, nil
	}
	return &org, nil
}

func (r *repo) FindByWalletID(ctx context.Context, db *gorm.DB, walletID string) (*orgdomain.Organization, error) {
	var org orgdomain.Organization
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM organizations WHERE gateway_wallet_id = ? LIMIT 1`,
		walletID,
	).Scan(&org).Error
	if err != nil {
		return nil, err
	}
	if org.ID == 0 {
		return nil, nil
	}
	return &org, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, org *orgdomain.Organization) error {
	return db.WithContext(ctx).Exec(
		`UPDATE organizations
		 SET status = ?, cancelled_at = ?, updated_at = ?
		 WHERE id = ?`,
		org.Status,
		org.CancelledAt,
		org.UpdatedAt,
		org.ID,
	).Error
}

func (r *repo) UpdateSubscription(ctx context.Context, db *gorm.DB, org *orgdomain.Organization) error {
	return db.WithContext(ctx).Exec(
		`UPDATE organizations
		 SET status = ?, gateway_subscription_id = ?, subscription_plan_id = ?, subscription_renewal_date = ?, updated_at = ?
		 WHERE id = ?`,
		org.Status,
		org.GatewaySubscriptionID,
		org.SubscriptionPlanID,
		org.SubscriptionRenewalDate,
		org.UpdatedAt,
		org.ID,
	).Error
}

func (r *repo) UpdateKYC(ctx context.Context, db *gorm.DB, org *orgdomain.Organization) error {
	return db.WithContext(ctx).Exec(
		`UPDATE organizations
		 SET kyc_status = ?, gateway_customer_id = ?, gateway_wallet_id = ?, updated_at = ?
		 WHERE id = ?`,
		org.KYCStatus,
		org.GatewayCustomerID,
		org.GatewayWalletID,
		org.UpdatedAt,
		org.ID,
	).Error
}

func (r *repo) FindPlanByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orgdomain.SubscriptionPlan, error) {
	var plan orgdomain.SubscriptionPlan
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM subscription_plans WHERE id = ?`,
		id,
	).Scan(&plan).Error
	if err != nil {
		return nil, err
	}
	if plan.ID == 0 {
		return nil, nil
	}
	return &plan, nil
}
