package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/vitalislabs/vitalis/internal/checkout/domain"
	"github.com/vitalislabs/vitalis/internal/gateway"
	kycdomain "github.com/vitalislabs/vitalis/internal/kyc/domain"
	orgdomain "github.com/vitalislabs/vitalis/internal/organization/domain"
	profdomain "github.com/vitalislabs/vitalis/internal/professional/domain"
	walletdomain "github.com/vitalislabs/vitalis/internal/wallet/domain"
	webhookdomain "github.com/vitalislabs/vitalis/internal/webhook/domain"
)

var errInvalidRequest = errors.New("invalid_request")

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// AbortWithError maps domain errors onto HTTP statuses. Unknown errors are a
// 500 with an opaque message; the underlying error is never leaked.
func AbortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, checkoutdomain.ErrNoItems),
		errors.Is(err, checkoutdomain.ErrInvalidPrice),
		errors.Is(err, checkoutdomain.ErrInvalidQuantity),
		errors.Is(err, checkoutdomain.ErrInvalidItemKind),
		errors.Is(err, checkoutdomain.ErrInvalidDiscount),
		errors.Is(err, checkoutdomain.ErrInvalidCashback),
		errors.Is(err, walletdomain.ErrInvalidAmount),
		errors.Is(err, kycdomain.ErrInvalidEntityType),
		errors.Is(err, webhookdomain.ErrMalformedPayload):
		status = http.StatusBadRequest
		message = err.Error()

	case errors.Is(err, webhookdomain.ErrInvalidSignature):
		status = http.StatusUnauthorized
		message = err.Error()

	case errors.Is(err, orgdomain.ErrOrganizationNotFound),
		errors.Is(err, orgdomain.ErrPlanNotFound),
		errors.Is(err, profdomain.ErrProfessionalNotFound),
		errors.Is(err, kycdomain.ErrEntityNotFound),
		errors.Is(err, walletdomain.ErrWalletNotFound):
		status = http.StatusNotFound
		message = err.Error()

	case errors.Is(err, orgdomain.ErrNotActive),
		errors.Is(err, orgdomain.ErrInvalidTransition),
		errors.Is(err, orgdomain.ErrTerminalStatus),
		errors.Is(err, orgdomain.ErrPlanInactive),
		errors.Is(err, kycdomain.ErrAlreadyApproved),
		errors.Is(err, checkoutdomain.ErrProfessionalGone):
		status = http.StatusConflict
		message = err.Error()

	case errors.Is(err, walletdomain.ErrInsufficientBalance),
		errors.Is(err, walletdomain.ErrRedemptionCapExceeded),
		errors.Is(err, orgdomain.ErrMissingExternalIdentity),
		errors.Is(err, kycdomain.ErrIncompleteIdentityData):
		status = http.StatusUnprocessableEntity
		message = err.Error()

	case errors.Is(err, gateway.ErrGatewayTimeout),
		errors.Is(err, gateway.ErrGatewayUnavailable),
		errors.Is(err, gateway.ErrInvalidRequest):
		status = http.StatusBadGateway
		message = err.Error()
	}

	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"message": message}})
}
