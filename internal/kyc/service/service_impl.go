package service

import (
	"context"
	"strings"

	"github.com/vitalislabs/vitalis/internal/clock"
	"github.com/vitalislabs/vitalis/internal/gateway"
	kycdomain "github.com/vitalislabs/vitalis/internal/kyc/domain"
	orgdomain "github.com/vitalislabs/vitalis/internal/organization/domain"
	profdomain "github.com/vitalislabs/vitalis/internal/professional/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	OrgRepo  orgdomain.Repository
	ProfRepo profdomain.Repository
	Gateway  gateway.Client
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	orgRepo  orgdomain.Repository
	profRepo profdomain.Repository
	gateway  gateway.Client
}

func NewService(p Params) kycdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("kyc.service"),
		clock:    p.Clock,
		orgRepo:  p.OrgRepo,
		profRepo: p.ProfRepo,
		gateway:  p.Gateway,
	}
}

// identity is the slice of an entity the KYC flow cares about.
type identity struct {
	name     string
	taxID    string
	email    string
	address  string
	postcode string
	status   kycdomain.Status
}

func (i identity) complete() bool {
	return strings.TrimSpace(i.taxID) != "" && strings.TrimSpace(i.address) != ""
}

func (s *Service) RequestSubaccount(ctx context.Context, ref kycdomain.EntityRef) (string, error) {
	switch ref.Type {
	case kycdomain.EntityOrganization:
		return s.requestOrganizationSubaccount(ctx, ref)
	case kycdomain.EntityProfessional:
		return s.requestProfessionalSubaccount(ctx, ref)
	default:
		return "", kycdomain.ErrInvalidEntityType
	}
}

func (s *Service) requestOrganizationSubaccount(ctx context.Context, ref kycdomain.EntityRef) (string, error) {
	org, err := s.orgRepo.FindByID(ctx, s.db, ref.ID)
	if err != nil {
		return "", err
	}
	if org == nil {
		return "", kycdomain.ErrEntityNotFound
	}

	sub, err := s.openSubaccount(ctx, identity{
		name:     org.Name,
		taxID:    org.TaxID,
		email:    org.Email,
		address:  org.AddressLine,
		postcode: org.Postcode,
		status:   org.KYCStatus,
	})
	if err != nil {
		return "", err
	}

	org.KYCStatus = kycdomain.StatusInReview
	org.GatewayWalletID = sub.WalletID
	if org.GatewayCustomerID == "" {
		org.GatewayCustomerID = sub.CustomerID
	}
	org.UpdatedAt = s.clock.Now(ctx)
	if err := s.orgRepo.UpdateKYC(ctx, s.db, org); err != nil {
		return "", err
	}

	s.log.Info("subaccount requested",
		zap.String("entity_type", string(ref.Type)),
		zap.String("entity_id", ref.ID.String()),
		zap.String("wallet_id", sub.WalletID))
	return sub.WalletID, nil
}

func (s *Service) requestProfessionalSubaccount(ctx context.Context, ref kycdomain.EntityRef) (string, error) {
	prof, err := s.profRepo.FindByID(ctx, s.db, ref.ID)
	if err != nil {
		return "", err
	}
	if prof == nil {
		return "", kycdomain.ErrEntityNotFound
	}

	sub, err := s.openSubaccount(ctx, identity{
		name:     prof.Name,
		taxID:    prof.TaxID,
		email:    prof.Email,
		address:  prof.AddressLine,
		postcode: prof.Postcode,
		status:   prof.KYCStatus,
	})
	if err != nil {
		return "", err
	}

	prof.KYCStatus = kycdomain.StatusInReview
	prof.GatewayWalletID = sub.WalletID
	if prof.GatewayCustomerID == "" {
		prof.GatewayCustomerID = sub.CustomerID
	}
	prof.UpdatedAt = s.clock.Now(ctx)
	if err := s.profRepo.UpdateKYC(ctx, s.db, prof); err != nil {
		return "", err
	}

	s.log.Info("subaccount requested",
		zap.String("entity_type", string(ref.Type)),
		zap.String("entity_id", ref.ID.String()),
		zap.String("wallet_id", sub.WalletID))
	return sub.WalletID, nil
}

func (s *Service) openSubaccount(ctx context.Context, id identity) (gateway.Subaccount, error) {
	if id.status == kycdomain.StatusApproved {
		return gateway.Subaccount{}, kycdomain.ErrAlreadyApproved
	}
	// The gateway is never called with identity data it would bounce.
	if !id.complete() {
		return gateway.Subaccount{}, kycdomain.ErrIncompleteIdentityData
	}
	return s.gateway.CreateSubaccount(ctx, gateway.CreateSubaccountRequest{
		Name:     id.name,
		TaxID:    id.taxID,
		Email:    id.email,
		Address:  id.address,
		Postcode: id.postcode,
	})
}

func (s *Service) ResolveWallet(ctx context.Context, walletID string) (kycdomain.EntityRef, error) {
	org, err := s.orgRepo.FindByWalletID(ctx, s.db, walletID)
	if err != nil {
		return kycdomain.EntityRef{}, err
	}
	if org != nil {
		return kycdomain.EntityRef{Type: kycdomain.EntityOrganization, ID: org.ID}, nil
	}

	prof, err := s.profRepo.FindByWalletID(ctx, s.db, walletID)
	if err != nil {
		return kycdomain.EntityRef{}, err
	}
	if prof != nil {
		return kycdomain.EntityRef{Type: kycdomain.EntityProfessional, ID: prof.ID}, nil
	}

	return kycdomain.EntityRef{}, kycdomain.ErrEntityNotFound
}

func (s *Service) ApplyAccountEvent(ctx context.Context, walletID string, verdict kycdomain.Status) error {
	if verdict != kycdomain.StatusApproved && verdict != kycdomain.StatusRejected {
		return kycdomain.ErrInvalidKYCTransition
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		org, err := s.orgRepo.FindByWalletID(ctx, tx, walletID)
		if err != nil {
			return err
		}
		if org != nil {
			if !kycdomain.CanTransition(org.KYCStatus, verdict) {
				s.log.Info("kyc verdict ignored",
					zap.String("wallet_id", walletID),
					zap.String("current", string(org.KYCStatus)),
					zap.String("verdict", string(verdict)))
				return nil
			}
			org.KYCStatus = verdict
			org.UpdatedAt = s.clock.Now(ctx)
			return s.orgRepo.UpdateKYC(ctx, tx, org)
		}

		prof, err := s.profRepo.FindByWalletID(ctx, tx, walletID)
		if err != nil {
			return err
		}
		if prof != nil {
			if !kycdomain.CanTransition(prof.KYCStatus, verdict) {
				s.log.Info("kyc verdict ignored",
					zap.String("wallet_id", walletID),
					zap.String("current", string(prof.KYCStatus)),
					zap.String("verdict", string(verdict)))
				return nil
			}
			prof.KYCStatus = verdict
			prof.UpdatedAt = s.clock.Now(ctx)
			return s.profRepo.UpdateKYC(ctx, tx, prof)
		}

		return kycdomain.ErrOrphanEvent
	})
}
