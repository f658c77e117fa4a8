package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	kycdomain "github.com/vitalislabs/vitalis/internal/kyc/domain"
)

type requestSubaccountRequest struct {
	EntityType string `json:"entity_type" binding:"required"`
	EntityID   string `json:"entity_id" binding:"required"`
}

// RequestSubaccount
// POST /api/kyc/subaccounts
func (s *Server) RequestSubaccount(c *gin.Context) {
	var req requestSubaccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}
	entityID, err := snowflake.ParseString(req.EntityID)
	if err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	walletID, err := s.kycSvc.RequestSubaccount(c.Request.Context(), kycdomain.EntityRef{
		Type: kycdomain.EntityType(req.EntityType),
		ID:   entityID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{
		"wallet_id":  walletID,
		"kyc_status": kycdomain.StatusInReview,
	})
}
