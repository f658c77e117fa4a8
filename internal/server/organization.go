package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	orgdomain "github.com/vitalislabs/vitalis/internal/organization/domain"
)

// GetAccessStatus
// GET /api/organizations/:id/access
func (s *Server) GetAccessStatus(c *gin.Context) {
	orgID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	status, err := s.orgSvc.AccessStatus(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payload := gin.H{"status": status}
	if status == orgdomain.StatusSuspended {
		payload["redirect"] = "/billing/reactivate"
	}
	respondData(c, payload)
}

type createSubscriptionRequest struct {
	PlanID    string `json:"plan_id" binding:"required"`
	TrialDays int    `json:"trial_days"`
}

// CreateSubscription
// POST /api/organizations/:id/subscription
func (s *Server) CreateSubscription(c *gin.Context) {
	orgID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	var req createSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}
	planID, err := snowflake.ParseString(req.PlanID)
	if err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	resp, err := s.orgSvc.CreateSubscription(c.Request.Context(), orgdomain.CreateSubscriptionRequest{
		OrganizationID: orgID,
		PlanID:         planID,
		TrialDays:      req.TrialDays,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// CancelSubscription
// DELETE /api/organizations/:id/subscription
func (s *Server) CancelSubscription(c *gin.Context) {
	orgID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	if err := s.orgSvc.CancelSubscription(c.Request.Context(), orgID); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"cancelled": true})
}
