package scheduler

import (
	"context"
	"time"

	"github.com/vitalislabs/vitalis/internal/clock"
	"github.com/vitalislabs/vitalis/internal/config"
	ledgerdomain "github.com/vitalislabs/vitalis/internal/ledger/domain"
	profdomain "github.com/vitalislabs/vitalis/internal/professional/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("scheduler",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Log          *zap.Logger
	Cfg          config.Config
	Clock        clock.Clock
	Ledger       ledgerdomain.Service
	Professional profdomain.Service
}

// Scheduler drives the two recurring jobs: settlement batching and rental
// billing generation. Both jobs are idempotent, so overlapping or repeated
// runs are harmless.
type Scheduler struct {
	log                *zap.Logger
	clock              clock.Clock
	settlementInterval time.Duration
	rentalInterval     time.Duration
	ledger             ledgerdomain.Service
	professional       profdomain.Service
}

func New(p Params) *Scheduler {
	settlement := p.Cfg.Scheduler.SettlementInterval
	if settlement <= 0 {
		settlement = time.Hour
	}
	rental := p.Cfg.Scheduler.RentalInterval
	if rental <= 0 {
		rental = 24 * time.Hour
	}
	return &Scheduler{
		log:                p.Log.Named("scheduler"),
		clock:              p.Clock,
		settlementInterval: settlement,
		rentalInterval:     rental,
		ledger:             p.Ledger,
		professional:       p.Professional,
	}
}

// RunForever blocks until ctx is cancelled.
func (s *Scheduler) RunForever(ctx context.Context) {
	s.log.Info("scheduler started",
		zap.Duration("settlement_interval", s.settlementInterval),
		zap.Duration("rental_interval", s.rentalInterval))

	settlementTicker := time.NewTicker(s.settlementInterval)
	defer settlementTicker.Stop()
	rentalTicker := time.NewTicker(s.rentalInterval)
	defer rentalTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-settlementTicker.C:
			s.runSettlement(ctx)
		case <-rentalTicker.C:
			s.runRentalBilling(ctx)
		}
	}
}

func (s *Scheduler) runSettlement(ctx context.Context) {
	if err := s.ledger.Settle(ctx); err != nil {
		s.log.Error("settlement pass failed", zap.Error(err))
	}
}

func (s *Scheduler) runRentalBilling(ctx context.Context) {
	if err := s.professional.GenerateRentalBillings(ctx, s.nextRentalDueDate(ctx)); err != nil {
		s.log.Error("rental billing pass failed", zap.Error(err))
	}
}

// nextRentalDueDate is the first day of the next month. The job runs daily
// and keeps producing the same due date all month; the billing table's unique
// index turns the repeats into no-ops.
func (s *Scheduler) nextRentalDueDate(ctx context.Context) time.Time {
	now := s.clock.Now(ctx).UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
