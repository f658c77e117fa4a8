package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

// GetWalletBalance
// GET /api/clinics/:clinicID/wallets/:clientID/balance
func (s *Server) GetWalletBalance(c *gin.Context) {
	clinicID, err := snowflake.ParseString(c.Param("clinicID"))
	if err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}
	clientID, err := snowflake.ParseString(c.Param("clientID"))
	if err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	wallet, err := s.walletSvc.Balance(c.Request.Context(), clinicID, clientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{
		"clinic_id":          wallet.ClinicID.String(),
		"client_id":          wallet.ClientID.String(),
		"balance_cents":      wallet.BalanceCents,
		"total_earned_cents": wallet.TotalEarnedCents,
		"total_spent_cents":  wallet.TotalSpentCents,
	})
}
