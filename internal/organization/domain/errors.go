package domain

import "errors"

var (
	ErrOrganizationNotFound = errors.New("organization_not_found")
	ErrPlanNotFound         = errors.New("subscription_plan_not_found")
	ErrPlanInactive         = errors.New("subscription_plan_inactive")

	// ErrMissingExternalIdentity blocks subscription creation until the KYC
	// tracker has provisioned a gateway customer id. Surfaced to the caller,
	// never silently retried.
	ErrMissingExternalIdentity = errors.New("missing_external_identity")

	ErrInvalidTransition = errors.New("invalid_status_transition")
	// ErrTerminalStatus: cancelled accepts no further gateway-driven
	// transitions.
	ErrTerminalStatus = errors.New("organization_status_terminal")
	// ErrDuplicateEvent: the organization is already in the event's
	// destination state. An idempotency short-circuit, not a failure.
	ErrDuplicateEvent = errors.New("duplicate_event")

	// ErrNotActive: user-initiated cancel is only valid from active.
	ErrNotActive = errors.New("subscription_not_active")
)
