package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/vitalislabs/vitalis/internal/clock"
	"github.com/vitalislabs/vitalis/internal/config"
	walletdomain "github.com/vitalislabs/vitalis/internal/wallet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Cfg   config.Config
	Repo  walletdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	capPercent int
	repo       walletdomain.Repository
}

func NewService(p Params) walletdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("wallet.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		capPercent: p.Cfg.Billing.CashbackRedeemCapPercent,
		repo:       p.Repo,
	}
}

func (s *Service) Balance(ctx context.Context, clinicID, clientID snowflake.ID) (walletdomain.ClientWallet, error) {
	wallet, err := s.repo.FindByClinicAndClient(ctx, s.db, clinicID, clientID)
	if err != nil {
		return walletdomain.ClientWallet{}, err
	}
	if wallet == nil {
		// A client with no wallet row simply has nothing to redeem yet.
		return walletdomain.ClientWallet{ClinicID: clinicID, ClientID: clientID}, nil
	}
	return *wallet, nil
}

func (s *Service) Cap(serviceSubtotalCents int64) int64 {
	return walletdomain.RedemptionCap(serviceSubtotalCents, s.capPercent)
}

func (s *Service) Redeem(ctx context.Context, tx *gorm.DB, req walletdomain.RedeemRequest) error {
	if req.AmountCents <= 0 {
		return walletdomain.ErrInvalidAmount
	}
	if req.AmountCents > s.Cap(req.ServiceSubtotalCents) {
		return walletdomain.ErrRedemptionCapExceeded
	}

	applied, err := s.repo.ApplyRedeem(ctx, tx, req.ClinicID, req.ClientID, req.AmountCents, s.clock.Now(ctx))
	if err != nil {
		return err
	}
	if !applied {
		// Covers both a missing wallet row and a balance below the requested
		// amount; no partial redemption either way.
		return walletdomain.ErrInsufficientBalance
	}

	s.log.Debug("cashback redeemed",
		zap.String("clinic_id", req.ClinicID.String()),
		zap.String("client_id", req.ClientID.String()),
		zap.Int64("amount_cents", req.AmountCents))
	return nil
}

func (s *Service) Earn(ctx context.Context, tx *gorm.DB, req walletdomain.EarnRequest) error {
	if req.AmountCents <= 0 {
		return walletdomain.ErrInvalidAmount
	}

	now := s.clock.Now(ctx)
	applied, err := s.repo.ApplyEarn(ctx, tx, req.ClinicID, req.ClientID, req.AmountCents, now)
	if err != nil {
		return err
	}
	if !applied {
		// First earn creates the wallet. A concurrent first earn loses the
		// insert race on the unique index and retries as an update.
		wallet := &walletdomain.ClientWallet{
			ID:               s.genID.Generate(),
			ClinicID:         req.ClinicID,
			ClientID:         req.ClientID,
			BalanceCents:     req.AmountCents,
			TotalEarnedCents: req.AmountCents,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.repo.Insert(ctx, tx, wallet); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				if _, retryErr := s.repo.ApplyEarn(ctx, tx, req.ClinicID, req.ClientID, req.AmountCents, now); retryErr != nil {
					return retryErr
				}
				return nil
			}
			return err
		}
	}

	s.log.Debug("cashback earned",
		zap.String("clinic_id", req.ClinicID.String()),
		zap.String("client_id", req.ClientID.String()),
		zap.Int64("amount_cents", req.AmountCents))
	return nil
}
