package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/vitalislabs/vitalis/internal/clock"
	"github.com/vitalislabs/vitalis/internal/gateway"
	profdomain "github.com/vitalislabs/vitalis/internal/professional/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    profdomain.Repository
	Gateway gateway.Client
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    profdomain.Repository
	gateway gateway.Client
}

func NewService(p Params) profdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("professional.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		gateway: p.Gateway,
	}
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*profdomain.Professional, error) {
	prof, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if prof == nil {
		return nil, profdomain.ErrProfessionalNotFound
	}
	return prof, nil
}

// GenerateRentalBillings runs in two phases. Phase one materializes one
// billing row per rental payer; the unique index over (professional, due date)
// absorbs re-runs. Phase two issues gateway charges for billings that still
// lack a payment reference, so a charge that failed last run is retried with
// the same idempotency key.
func (s *Service) GenerateRentalBillings(ctx context.Context, dueDate time.Time) error {
	now := s.clock.Now(ctx)

	payers, err := s.repo.ListRentalPayers(ctx, s.db)
	if err != nil {
		return err
	}
	for _, prof := range payers {
		billing := &profdomain.RentalBilling{
			ID:             s.genID.Generate(),
			ProfessionalID: prof.ID,
			ClinicID:       prof.ClinicID,
			AmountCents:    prof.RentalAmountCents,
			DueDate:        dueDate,
			Status:         profdomain.RentalPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.repo.InsertRentalBilling(ctx, s.db, billing); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return err
		}
	}

	unissued, err := s.repo.ListUnissuedRentalBillings(ctx, s.db, dueDate)
	if err != nil {
		return err
	}
	for _, billing := range unissued {
		if err := s.issueRentalCharge(ctx, billing); err != nil {
			// Left unissued; the next run retries it.
			s.log.Warn("rental charge not issued",
				zap.String("billing_id", billing.ID.String()),
				zap.String("professional_id", billing.ProfessionalID.String()),
				zap.Error(err))
		}
	}
	return nil
}

func (s *Service) issueRentalCharge(ctx context.Context, billing profdomain.RentalBilling) error {
	prof, err := s.repo.FindByID(ctx, s.db, billing.ProfessionalID)
	if err != nil {
		return err
	}
	if prof == nil {
		return profdomain.ErrProfessionalNotFound
	}
	if prof.GatewayCustomerID == "" {
		return fmt.Errorf("professional %s has no gateway customer", prof.ID)
	}

	// The billing row exists before the first charge attempt, so its id is a
	// stable idempotency key across retries.
	charge, err := s.gateway.CreateCharge(ctx, gateway.CreateChargeRequest{
		CustomerID:  prof.GatewayCustomerID,
		ValueCents:  billing.AmountCents,
		DueDate:     billing.DueDate,
		Description: "Room rental",
	}, "rental-"+billing.ID.String())
	if err != nil {
		return err
	}

	billing.PaymentReference = charge.ID
	billing.UpdatedAt = s.clock.Now(ctx)
	return s.repo.UpdateRentalBillingReference(ctx, s.db, &billing)
}
