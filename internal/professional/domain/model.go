package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	kycdomain "github.com/vitalislabs/vitalis/internal/kyc/domain"
)

type CommissionModel string

const (
	ModelCommissioned CommissionModel = "commissioned"
	ModelRental       CommissionModel = "rental"
	ModelHybrid       CommissionModel = "hybrid"
)

type CashbackMode string

const (
	CashbackPercent CashbackMode = "percent"
	CashbackFixed   CashbackMode = "fixed"
)

// Professional is a practitioner attached to one clinic. GatewayWalletID is
// only ever set from a gateway subaccount response; the cashback fields are
// the professional's own policy applied to their checkouts.
type Professional struct {
	ID                snowflake.ID     `json:"id" gorm:"primaryKey"`
	ClinicID          snowflake.ID     `json:"clinic_id" gorm:"not null;index"`
	Name              string           `json:"name" gorm:"not null"`
	TaxID             string           `json:"tax_id"`
	Email             string           `json:"email"`
	AddressLine       string           `json:"address_line"`
	Postcode          string           `json:"postcode"`
	KYCStatus         kycdomain.Status `json:"kyc_status" gorm:"not null;default:pending"`
	GatewayCustomerID string           `json:"gateway_customer_id"`
	GatewayWalletID   string           `json:"gateway_wallet_id" gorm:"index"`
	CommissionModel   CommissionModel  `json:"commission_model" gorm:"not null;default:commissioned"`
	CommissionRate    float64          `json:"commission_rate" gorm:"not null;default:0"`
	RentalAmountCents int64            `json:"rental_amount_cents" gorm:"not null;default:0"`

	CashbackEnabled    bool         `json:"cashback_enabled" gorm:"not null;default:false"`
	CashbackMode       CashbackMode `json:"cashback_mode" gorm:"not null;default:percent"`
	CashbackPercent    float64      `json:"cashback_percent" gorm:"not null;default:0"`
	CashbackFixedCents int64        `json:"cashback_fixed_cents" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Professional) TableName() string { return "professionals" }

// PaysRental reports whether the professional owes a recurring room rental.
func (p Professional) PaysRental() bool {
	return (p.CommissionModel == ModelRental || p.CommissionModel == ModelHybrid) &&
		p.RentalAmountCents > 0
}

// CashbackFor returns the cashback a client earns on a checkout with the given
// service subtotal, per this professional's configuration.
func (p Professional) CashbackFor(serviceSubtotalCents int64) int64 {
	if !p.CashbackEnabled || serviceSubtotalCents <= 0 {
		return 0
	}
	switch p.CashbackMode {
	case CashbackFixed:
		return p.CashbackFixedCents
	default:
		return int64(float64(serviceSubtotalCents) * p.CashbackPercent / 100)
	}
}

type RentalBillingStatus string

const (
	RentalPending RentalBillingStatus = "pending"
	RentalPaid    RentalBillingStatus = "paid"
)

// RentalBilling is one rent installment. The unique index over
// (professional_id, due_date) is the duplication guard: the generation job may
// run any number of times for the same period and only ever create one row.
type RentalBilling struct {
	ID               snowflake.ID        `json:"id" gorm:"primaryKey"`
	ProfessionalID   snowflake.ID        `json:"professional_id" gorm:"not null;uniqueIndex:idx_rental_prof_due"`
	ClinicID         snowflake.ID        `json:"clinic_id" gorm:"not null;index"`
	AmountCents      int64               `json:"amount_cents" gorm:"not null"`
	DueDate          time.Time           `json:"due_date" gorm:"not null;uniqueIndex:idx_rental_prof_due"`
	Status           RentalBillingStatus `json:"status" gorm:"not null;default:pending"`
	PaymentReference string              `json:"payment_reference" gorm:"not null;default:''"`
	CreatedAt        time.Time           `json:"created_at" gorm:"not null"`
	UpdatedAt        time.Time           `json:"updated_at" gorm:"not null"`
}

func (RentalBilling) TableName() string { return "rental_billings" }

var (
	ErrProfessionalNotFound = errors.New("professional_not_found")
)
