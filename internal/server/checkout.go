package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/vitalislabs/vitalis/internal/checkout/domain"
)

type lineItemRequest struct {
	ID         string `json:"id"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
	Kind       string `json:"kind" binding:"required"`
}

type computeCheckoutRequest struct {
	Items               []lineItemRequest `json:"items" binding:"required,min=1,dive"`
	DiscountCents       int64             `json:"discount_cents"`
	CashbackRedeemCents int64             `json:"cashback_redeem_cents"`
}

type confirmCheckoutRequest struct {
	computeCheckoutRequest
	ProfessionalID string `json:"professional_id" binding:"required"`
	ClientID       string `json:"client_id" binding:"required"`
	AppointmentID  string `json:"appointment_id,omitempty"`
	PaymentMethod  string `json:"payment_method" binding:"required"`
}

func (r computeCheckoutRequest) toInput() (checkoutdomain.Input, error) {
	items := make([]checkoutdomain.LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		var id snowflake.ID
		if item.ID != "" {
			parsed, err := snowflake.ParseString(item.ID)
			if err != nil {
				return checkoutdomain.Input{}, errInvalidRequest
			}
			id = parsed
		}
		items = append(items, checkoutdomain.LineItem{
			ID:         id,
			PriceCents: item.PriceCents,
			Quantity:   item.Quantity,
			Kind:       checkoutdomain.ItemKind(item.Kind),
		})
	}
	return checkoutdomain.Input{
		Items:               items,
		DiscountCents:       r.DiscountCents,
		CashbackRedeemCents: r.CashbackRedeemCents,
	}, nil
}

// ComputeCheckout
// POST /api/clinics/:clinicID/checkout/compute
func (s *Server) ComputeCheckout(c *gin.Context) {
	clinicID, err := snowflake.ParseString(c.Param("clinicID"))
	if err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	var req computeCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}
	input, err := req.toInput()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	calc, err := s.checkoutSvc.Preview(c.Request.Context(), clinicID, input)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, calc)
}

// ConfirmCheckout
// POST /api/clinics/:clinicID/checkout/confirm
func (s *Server) ConfirmCheckout(c *gin.Context) {
	clinicID, err := snowflake.ParseString(c.Param("clinicID"))
	if err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	var req confirmCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}
	input, err := req.toInput()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	professionalID, err := snowflake.ParseString(req.ProfessionalID)
	if err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}
	clientID, err := snowflake.ParseString(req.ClientID)
	if err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}
	var appointmentID *snowflake.ID
	if req.AppointmentID != "" {
		parsed, err := snowflake.ParseString(req.AppointmentID)
		if err != nil {
			AbortWithError(c, errInvalidRequest)
			return
		}
		appointmentID = &parsed
	}

	result, err := s.checkoutSvc.Confirm(c.Request.Context(), checkoutdomain.ConfirmRequest{
		ClinicID:       clinicID,
		ProfessionalID: professionalID,
		ClientID:       clientID,
		AppointmentID:  appointmentID,
		PaymentMethod:  req.PaymentMethod,
		Input:          input,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, result)
}
