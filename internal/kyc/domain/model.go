package domain

import (
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusInReview Status = "in_review"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// EntityType distinguishes the two kinds of payout sub-accounts.
type EntityType string

const (
	EntityOrganization EntityType = "organization"
	EntityProfessional EntityType = "professional"
)

var (
	ErrIncompleteIdentityData = errors.New("incomplete_identity_data")
	ErrEntityNotFound         = errors.New("entity_not_found")
	ErrInvalidEntityType      = errors.New("invalid_entity_type")
	ErrInvalidKYCTransition   = errors.New("invalid_kyc_transition")
	// ErrAlreadyApproved: approved is terminal for a given sub-account.
	ErrAlreadyApproved = errors.New("kyc_already_approved")
	// ErrOrphanEvent: the wallet id matches no local entity. Logged and
	// acknowledged, never retried.
	ErrOrphanEvent = errors.New("orphan_webhook_event")
)

// EntityRef is the result of resolving a gateway wallet id against the two
// disjoint lookup spaces.
type EntityRef struct {
	Type EntityType
	ID   snowflake.ID
}

// CanTransition encodes pending -> in_review -> {approved, rejected};
// rejected may go back to pending on a fresh sub-account request.
func CanTransition(current, next Status) bool {
	switch current {
	case StatusPending:
		return next == StatusInReview
	case StatusInReview:
		return next == StatusApproved || next == StatusRejected
	case StatusRejected:
		return next == StatusPending
	default:
		return false
	}
}
