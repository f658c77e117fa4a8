package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/vitalislabs/vitalis/internal/clock"
	"github.com/vitalislabs/vitalis/internal/gateway"
	orgdomain "github.com/vitalislabs/vitalis/internal/organization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Repo    orgdomain.Repository
	Gateway gateway.Client
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    orgdomain.Repository
	gateway gateway.Client
}

func NewService(p Params) orgdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("organization.service"),
		clock:   p.Clock,
		repo:    p.Repo,
		gateway: p.Gateway,
	}
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (orgdomain.Organization, error) {
	org, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return orgdomain.Organization{}, err
	}
	if org == nil {
		return orgdomain.Organization{}, orgdomain.ErrOrganizationNotFound
	}
	return *org, nil
}

func (s *Service) AccessStatus(ctx context.Context, organizationID snowflake.ID) (orgdomain.OrganizationStatus, error) {
	org, err := s.repo.FindByID(ctx, s.db, organizationID)
	if err != nil {
		return "", err
	}
	if org == nil {
		return "", orgdomain.ErrOrganizationNotFound
	}
	return org.Status, nil
}

func (s *Service) CreateSubscription(ctx context.Context, req orgdomain.CreateSubscriptionRequest) (orgdomain.CreateSubscriptionResponse, error) {
	org, err := s.repo.FindByID(ctx, s.db, req.OrganizationID)
	if err != nil {
		return orgdomain.CreateSubscriptionResponse{}, err
	}
	if org == nil {
		return orgdomain.CreateSubscriptionResponse{}, orgdomain.ErrOrganizationNotFound
	}
	if org.GatewayCustomerID == "" {
		// Provisioning the customer id is the KYC tracker's job; this is a
		// blocking precondition, not something to retry here.
		return orgdomain.CreateSubscriptionResponse{}, orgdomain.ErrMissingExternalIdentity
	}

	plan, err := s.repo.FindPlanByID(ctx, s.db, req.PlanID)
	if err != nil {
		return orgdomain.CreateSubscriptionResponse{}, err
	}
	if plan == nil {
		return orgdomain.CreateSubscriptionResponse{}, orgdomain.ErrPlanNotFound
	}
	if !plan.IsActive {
		return orgdomain.CreateSubscriptionResponse{}, orgdomain.ErrPlanInactive
	}

	trialDays := req.TrialDays
	if trialDays < 0 {
		trialDays = 0
	}
	now := s.clock.Now(ctx)
	nextDue := now.AddDate(0, 0, trialDays)

	sub, err := s.gateway.CreateSubscription(ctx, gateway.CreateSubscriptionRequest{
		CustomerID:  org.GatewayCustomerID,
		ValueCents:  plan.BasePriceCents,
		NextDueDate: nextDue,
		Description: fmt.Sprintf("%s plan", plan.Name),
	})
	if err != nil {
		return orgdomain.CreateSubscriptionResponse{}, err
	}

	renewal := sub.NextDueDate
	if renewal.IsZero() {
		renewal = nextDue
	}

	planID := plan.ID
	org.Status = orgdomain.StatusPendingSetup
	org.GatewaySubscriptionID = sub.ID
	org.SubscriptionPlanID = &planID
	org.SubscriptionRenewalDate = &renewal
	org.UpdatedAt = now

	if err := s.repo.UpdateSubscription(ctx, s.db, org); err != nil {
		return orgdomain.CreateSubscriptionResponse{}, err
	}

	s.log.Info("subscription created",
		zap.String("organization_id", org.ID.String()),
		zap.String("gateway_subscription_id", sub.ID),
		zap.Int("trial_days", trialDays))

	return orgdomain.CreateSubscriptionResponse{
		SubscriptionID: sub.ID,
		RenewalDate:    renewal.Format("2006-01-02"),
		Status:         org.Status,
	}, nil
}

func (s *Service) CancelSubscription(ctx context.Context, organizationID snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := s.repo.FindByIDForUpdate(ctx, tx, organizationID)
		if err != nil {
			return err
		}
		if org == nil {
			return orgdomain.ErrOrganizationNotFound
		}
		if org.Status == orgdomain.StatusCancelled {
			// Idempotent: cancelling an already-cancelled subscription
			// succeeds without touching the gateway again.
			return nil
		}
		if org.Status != orgdomain.StatusActive {
			return orgdomain.ErrNotActive
		}

		if err := s.gateway.CancelSubscription(ctx, org.GatewaySubscriptionID); err != nil {
			return err
		}

		now := s.clock.Now(ctx)
		org.Status = orgdomain.StatusCancelled
		org.CancelledAt = &now
		org.UpdatedAt = now
		return s.repo.UpdateStatus(ctx, tx, org)
	})
}

func (s *Service) ApplyPaymentEvent(ctx context.Context, gatewaySubscriptionID, event string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := s.repo.FindBySubscriptionIDForUpdate(ctx, tx, gatewaySubscriptionID)
		if err != nil {
			return err
		}
		if org == nil {
			s.log.Warn("payment event for unknown subscription",
				zap.String("gateway_subscription_id", gatewaySubscriptionID),
				zap.String("event", event))
			return orgdomain.ErrOrganizationNotFound
		}

		next, err := orgdomain.NextStatus(org.Status, event)
		switch {
		case errors.Is(err, orgdomain.ErrTerminalStatus):
			s.log.Info("ignoring gateway event for cancelled organization",
				zap.String("organization_id", org.ID.String()),
				zap.String("event", event))
			return nil
		case errors.Is(err, orgdomain.ErrDuplicateEvent):
			s.log.Info("duplicate payment event, status already applied",
				zap.String("organization_id", org.ID.String()),
				zap.String("event", event),
				zap.String("status", string(org.Status)))
			return nil
		case err != nil:
			return err
		}

		now := s.clock.Now(ctx)
		org.Status = next
		org.UpdatedAt = now
		if err := s.repo.UpdateStatus(ctx, tx, org); err != nil {
			return err
		}

		s.log.Info("organization status transitioned",
			zap.String("organization_id", org.ID.String()),
			zap.String("event", event),
			zap.String("status", string(next)))
		return nil
	})
}
