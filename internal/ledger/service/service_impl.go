package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/vitalislabs/vitalis/internal/clock"
	"github.com/vitalislabs/vitalis/internal/gateway"
	ledgerdomain "github.com/vitalislabs/vitalis/internal/ledger/domain"
	"github.com/vitalislabs/vitalis/internal/observability"
	orgdomain "github.com/vitalislabs/vitalis/internal/organization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// chargeDueInDays is how far ahead the aggregate fee charge is dated.
const chargeDueInDays = 7

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    ledgerdomain.Repository
	OrgRepo orgdomain.Repository
	Gateway gateway.Client
	Metrics *observability.Metrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    ledgerdomain.Repository
	orgRepo orgdomain.Repository
	gateway gateway.Client
	metrics *observability.Metrics
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("ledger.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		orgRepo: p.OrgRepo,
		gateway: p.Gateway,
		metrics: p.Metrics,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, txn *ledgerdomain.FinancialTransaction) error {
	now := s.clock.Now(ctx)
	if txn.ID == 0 {
		txn.ID = s.genID.Generate()
	}
	txn.Status = ledgerdomain.StatusPending
	// Zero-fee transactions enter the batch too; the settlement pass closes
	// them without a gateway call, so every transaction reaches billed.
	txn.FeePending = true
	txn.CreatedAt = now
	txn.UpdatedAt = now
	return s.repo.Insert(ctx, tx, txn)
}

// Settle runs one settlement pass. Each clinic with pending fees is settled in
// its own goroutine; a failed clinic logs, bumps the failure counter and stays
// pending for the next pass.
func (s *Service) Settle(ctx context.Context) error {
	clinics, err := s.repo.ListClinicsWithPendingFees(ctx, s.db)
	if err != nil {
		return err
	}
	if len(clinics) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	for _, clinicID := range clinics {
		wg.Add(1)
		go func(id snowflake.ID) {
			defer wg.Done()
			if err := s.settleClinic(ctx, id); err != nil {
				s.metrics.SettlementBatchesFailed.Inc()
				s.log.Warn("settlement batch left pending",
					zap.String("clinic_id", id.String()),
					zap.Error(err))
			}
		}(clinicID)
	}
	wg.Wait()
	return nil
}

func (s *Service) settleClinic(ctx context.Context, clinicID snowflake.ID) error {
	now := s.clock.Now(ctx)

	// Reuse the billing key of an earlier attempt whose gateway outcome is
	// unknown; the gateway dedupes on it. Fresh rows get a new key and form
	// the next batch once this one closes.
	key, err := s.repo.FindOpenBatchKey(ctx, s.db, clinicID)
	if err != nil {
		return err
	}
	if key == "" {
		key = uuid.NewString()
		claimed, err := s.repo.ClaimBatch(ctx, s.db, clinicID, key, now)
		if err != nil {
			return err
		}
		if claimed == 0 {
			return nil
		}
	}

	batch, err := s.repo.ListBatch(ctx, s.db, clinicID, key)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	var feeCents int64
	for _, txn := range batch {
		feeCents += txn.PlatformFeeCents
	}
	if feeCents == 0 {
		// Nothing owed; close the batch without touching the gateway.
		_, err := s.repo.MarkBatchBilled(ctx, s.db, clinicID, key, "", now)
		return err
	}

	org, err := s.orgRepo.FindByID(ctx, s.db, clinicID)
	if err != nil {
		return err
	}
	if org == nil {
		return orgdomain.ErrOrganizationNotFound
	}
	if org.GatewayCustomerID == "" {
		return orgdomain.ErrMissingExternalIdentity
	}

	charge, err := s.gateway.CreateCharge(ctx, gateway.CreateChargeRequest{
		CustomerID:  org.GatewayCustomerID,
		ValueCents:  feeCents,
		DueDate:     now.AddDate(0, 0, chargeDueInDays),
		Description: fmt.Sprintf("Platform fees for %d transactions", len(batch)),
	}, key)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updated, err := s.repo.MarkBatchBilled(ctx, tx, clinicID, key, charge.ID, now)
		if err != nil {
			return err
		}
		if updated != int64(len(batch)) {
			return ledgerdomain.ErrBatchIncomplete
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.SettlementBatchesBilled.Inc()
	s.metrics.SettlementFeeCents.Add(float64(feeCents))
	s.log.Info("settlement batch billed",
		zap.String("clinic_id", clinicID.String()),
		zap.String("billing_key", key),
		zap.String("billing_reference", charge.ID),
		zap.Int("transactions", len(batch)),
		zap.Int64("fee_cents", feeCents))
	return nil
}
