package domain

import "context"

type Service interface {
	// RequestSubaccount opens a payout sub-account for the entity at the
	// gateway and moves its KYC status to in_review. Identity data must be
	// complete before the gateway is contacted.
	RequestSubaccount(ctx context.Context, ref EntityRef) (string, error)
	// ResolveWallet maps a gateway wallet id to the owning entity. The two
	// lookup spaces are disjoint; organizations are checked first.
	ResolveWallet(ctx context.Context, walletID string) (EntityRef, error)
	// ApplyAccountEvent applies a gateway account verdict (approved or
	// rejected) to whichever entity owns the wallet id.
	ApplyAccountEvent(ctx context.Context, walletID string, verdict Status) error
}
