package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	orgdomain "github.com/vitalislabs/vitalis/internal/organization/domain"
)

// AccessGate blocks clinic-scoped routes based on the organization's
// subscription status. Suspended clinics get a payload routing the UI to
// reactivation; cancelled clinics are denied outright. pending_setup passes
// so onboarding flows keep working.
func (s *Server) AccessGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		clinicID, err := snowflake.ParseString(c.Param("clinicID"))
		if err != nil {
			AbortWithError(c, errInvalidRequest)
			return
		}

		status, err := s.orgSvc.AccessStatus(c.Request.Context(), clinicID)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		switch status {
		case orgdomain.StatusSuspended:
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error": gin.H{
					"message":  "subscription suspended",
					"redirect": "/billing/reactivate",
				},
			})
		case orgdomain.StatusCancelled:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"message": "subscription cancelled"},
			})
		default:
			c.Next()
		}
	}
}
