package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Gateway account verdict event tags.
const (
	EventAccountApproved = "ACCOUNT_APPROVED"
	EventAccountRejected = "ACCOUNT_REJECTED"
)

// Event is the inbound gateway notification. Exactly one of Payment and
// Account is set, depending on the event family.
type Event struct {
	ID      string          `json:"id"`
	Event   string          `json:"event"`
	Payment *PaymentPayload `json:"payment,omitempty"`
	Account *AccountPayload `json:"account,omitempty"`
}

type PaymentPayload struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	ValueCents     int64  `json:"value"`
	SubscriptionID string `json:"subscription"`
}

type AccountPayload struct {
	WalletID string `json:"walletId"`
	Status   string `json:"status"`
	TaxID    string `json:"cpfCnpj"`
}

// WebhookEvent is the processed-event record. The unique index on the
// provider's event id is the durable half of the idempotency layer; redis is
// the fast half and may be absent.
type WebhookEvent struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	ProviderEventID string         `json:"provider_event_id" gorm:"not null;uniqueIndex"`
	EventType       string         `json:"event_type" gorm:"not null"`
	Payload         datatypes.JSON `json:"payload"`
	ReceivedAt      time.Time      `json:"received_at" gorm:"not null"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }

var (
	ErrInvalidSignature = errors.New("invalid_webhook_signature")
	ErrMalformedPayload = errors.New("malformed_webhook_payload")
)
