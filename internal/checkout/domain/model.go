package domain

import (
	"errors"
	"math"

	"github.com/bwmarrin/snowflake"
)

type ItemKind string

const (
	KindService ItemKind = "service"
	KindProduct ItemKind = "product"
)

type LineItem struct {
	ID         snowflake.ID `json:"id"`
	PriceCents int64        `json:"price_cents"`
	Quantity   int          `json:"quantity"`
	Kind       ItemKind     `json:"kind"`
}

type Input struct {
	Items               []LineItem `json:"items"`
	DiscountCents       int64      `json:"discount_cents"`
	CashbackRedeemCents int64      `json:"cashback_redeem_cents"`
}

// Calculation is the money breakdown of one checkout. All fields are integer
// cents; PlatformFeePercent is the snapshot the fee was computed with.
type Calculation struct {
	SubtotalGrossCents    int64   `json:"subtotal_gross_cents"`
	ServiceSubtotalCents  int64   `json:"service_subtotal_cents"`
	PlatformFeePercent    float64 `json:"platform_fee_percent"`
	PlatformFeeCents      int64   `json:"platform_fee_cents"`
	TotalToPayClinicCents int64   `json:"total_to_pay_clinic_cents"`
	SplitBaseValueCents   int64   `json:"split_base_value_cents"`
}

var (
	ErrNoItems          = errors.New("checkout_requires_items")
	ErrInvalidPrice     = errors.New("invalid_item_price")
	ErrInvalidQuantity  = errors.New("invalid_item_quantity")
	ErrInvalidItemKind  = errors.New("invalid_item_kind")
	ErrInvalidDiscount  = errors.New("invalid_discount")
	ErrInvalidCashback  = errors.New("invalid_cashback_amount")
	ErrProfessionalGone = errors.New("professional_not_in_clinic")
)

// ValidateInput rejects inputs the calculator must never see.
func ValidateInput(in Input) error {
	if len(in.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range in.Items {
		if item.PriceCents < 0 {
			return ErrInvalidPrice
		}
		if item.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if item.Kind != KindService && item.Kind != KindProduct {
			return ErrInvalidItemKind
		}
	}
	if in.DiscountCents < 0 {
		return ErrInvalidDiscount
	}
	if in.CashbackRedeemCents < 0 {
		return ErrInvalidCashback
	}
	return nil
}

// Compute derives the checkout breakdown. Pure: same input and fee percent,
// same result. Totals clamp at zero; the fee is rounded to the nearest cent.
func Compute(in Input, feePercent float64) Calculation {
	var subtotal, serviceSubtotal int64
	for _, item := range in.Items {
		line := item.PriceCents * int64(item.Quantity)
		subtotal += line
		if item.Kind == KindService {
			serviceSubtotal += line
		}
	}

	fee := int64(math.Round(float64(subtotal) * feePercent / 100))

	toPay := subtotal - in.DiscountCents - in.CashbackRedeemCents
	if toPay < 0 {
		toPay = 0
	}
	splitBase := subtotal - fee
	if splitBase < 0 {
		splitBase = 0
	}

	return Calculation{
		SubtotalGrossCents:    subtotal,
		ServiceSubtotalCents:  serviceSubtotal,
		PlatformFeePercent:    feePercent,
		PlatformFeeCents:      fee,
		TotalToPayClinicCents: toPay,
		SplitBaseValueCents:   splitBase,
	}
}
