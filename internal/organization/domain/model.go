package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	kycdomain "github.com/vitalislabs/vitalis/internal/kyc/domain"
)

type OrganizationStatus string

const (
	StatusPendingSetup OrganizationStatus = "pending_setup"
	StatusActive       OrganizationStatus = "active"
	StatusSuspended    OrganizationStatus = "suspended"
	// StatusCancelled is terminal. Organizations are never deleted.
	StatusCancelled OrganizationStatus = "cancelled"
)

// Gateway payment event tags that drive the lifecycle state machine.
const (
	EventPaymentConfirmed = "PAYMENT_CONFIRMED"
	EventPaymentReceived  = "PAYMENT_RECEIVED"
	EventPaymentOverdue   = "PAYMENT_OVERDUE"
	EventPaymentDeleted   = "PAYMENT_DELETED"
)

type Organization struct {
	ID        snowflake.ID       `json:"id" gorm:"primaryKey"`
	Name      string             `json:"name" gorm:"type:text;not null"`
	Status    OrganizationStatus `json:"status" gorm:"type:varchar(20);not null;default:pending_setup"`
	KYCStatus kycdomain.Status   `json:"kyc_status" gorm:"type:varchar(20);not null;default:pending"`

	TaxID       string `json:"tax_id" gorm:"type:varchar(20)"`
	Email       string `json:"email" gorm:"type:text"`
	AddressLine string `json:"address_line" gorm:"type:text"`
	Postcode    string `json:"postcode" gorm:"type:varchar(16)"`

	GatewayCustomerID     string `json:"gateway_customer_id" gorm:"type:varchar(64);index"`
	GatewayWalletID       string `json:"gateway_wallet_id" gorm:"type:varchar(64);index"`
	GatewaySubscriptionID string `json:"gateway_subscription_id" gorm:"type:varchar(64);index"`

	SubscriptionPlanID      *snowflake.ID `json:"subscription_plan_id"`
	SubscriptionRenewalDate *time.Time    `json:"subscription_renewal_date"`

	// PlatformFeeOverridePercent replaces the configured default fee when set.
	PlatformFeeOverridePercent *float64 `json:"platform_fee_override_percent"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"not null"`
}

func (Organization) TableName() string { return "organizations" }

// SubscriptionPlan is immutable reference data selected at subscription creation.
type SubscriptionPlan struct {
	ID                       snowflake.ID `json:"id" gorm:"primaryKey"`
	Name                     string       `json:"name" gorm:"type:text;not null"`
	BasePriceCents           int64        `json:"base_price_cents" gorm:"not null"`
	AdditionalUserPriceCents int64        `json:"additional_user_price_cents" gorm:"not null"`
	IncludedUsersCount       int          `json:"included_users_count" gorm:"not null"`
	TransactionFeePercent    float64      `json:"transaction_fee_percent" gorm:"not null"`
	IsActive                 bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt                time.Time    `json:"created_at" gorm:"not null"`
}

func (SubscriptionPlan) TableName() string { return "subscription_plans" }

type transitionKey struct {
	current OrganizationStatus
	event   string
}

var paymentTransitions = map[transitionKey]OrganizationStatus{
	{StatusPendingSetup, EventPaymentConfirmed}: StatusActive,
	{StatusPendingSetup, EventPaymentReceived}:  StatusActive,
	{StatusActive, EventPaymentOverdue}:         StatusSuspended,
	{StatusActive, EventPaymentDeleted}:         StatusSuspended,
	{StatusSuspended, EventPaymentConfirmed}:    StatusActive,
	{StatusSuspended, EventPaymentReceived}:     StatusActive,
}

// NextStatus resolves the transition table for a gateway payment event.
// Undefined (current, event) pairs are rejected outright; the service layer
// decides which rejections are logged no-ops (terminal status, duplicates).
func NextStatus(current OrganizationStatus, event string) (OrganizationStatus, error) {
	if current == StatusCancelled {
		return "", ErrTerminalStatus
	}
	if destination, ok := eventDestinations[event]; ok && destination == current {
		return "", ErrDuplicateEvent
	}
	next, ok := paymentTransitions[transitionKey{current, event}]
	if !ok {
		return "", ErrInvalidTransition
	}
	return next, nil
}

var eventDestinations = map[string]OrganizationStatus{
	EventPaymentConfirmed: StatusActive,
	EventPaymentReceived:  StatusActive,
	EventPaymentOverdue:   StatusSuspended,
	EventPaymentDeleted:   StatusSuspended,
}

// IsPaymentEvent reports whether the webhook event tag belongs to this
// state machine.
func IsPaymentEvent(event string) bool {
	_, ok := eventDestinations[event]
	return ok
}
