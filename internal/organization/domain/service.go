package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateSubscriptionRequest struct {
	OrganizationID snowflake.ID
	PlanID         snowflake.ID
	TrialDays      int
}

type CreateSubscriptionResponse struct {
	SubscriptionID string
	RenewalDate    string
	Status         OrganizationStatus
}

// Service owns organization subscription status and renewal bookkeeping.
// Activation never happens synchronously: CreateSubscription leaves the
// organization in pending_setup and the webhook path moves it to active.
type Service interface {
	Get(ctx context.Context, id snowflake.ID) (Organization, error)
	CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (CreateSubscriptionResponse, error)
	CancelSubscription(ctx context.Context, organizationID snowflake.ID) error
	// ApplyPaymentEvent drives the status state machine from a gateway
	// webhook, matched by gateway subscription id.
	ApplyPaymentEvent(ctx context.Context, gatewaySubscriptionID, event string) error
	// AccessStatus is the access gate's read: the UI layer allows or denies
	// entry based on it.
	AccessStatus(ctx context.Context, organizationID snowflake.ID) (OrganizationStatus, error)
}
