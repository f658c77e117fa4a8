package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Webhook-Signature"

// HandleGatewayWebhook
// POST /webhooks/gateway
func (s *Server) HandleGatewayWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	if err := s.webhookSvc.Ingest(c.Request.Context(), body, c.GetHeader(SignatureHeader)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
