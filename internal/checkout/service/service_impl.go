package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	checkoutdomain "github.com/vitalislabs/vitalis/internal/checkout/domain"
	"github.com/vitalislabs/vitalis/internal/config"
	ledgerdomain "github.com/vitalislabs/vitalis/internal/ledger/domain"
	orgdomain "github.com/vitalislabs/vitalis/internal/organization/domain"
	profdomain "github.com/vitalislabs/vitalis/internal/professional/domain"
	walletdomain "github.com/vitalislabs/vitalis/internal/wallet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Cfg      config.Config
	OrgRepo  orgdomain.Repository
	ProfRepo profdomain.Repository
	Wallet   walletdomain.Service
	Ledger   ledgerdomain.Service
}

type Service struct {
	db                *gorm.DB
	log               *zap.Logger
	defaultFeePercent float64
	orgRepo           orgdomain.Repository
	profRepo          profdomain.Repository
	wallet            walletdomain.Service
	ledger            ledgerdomain.Service
}

func NewService(p Params) checkoutdomain.Service {
	return &Service{
		db:                p.DB,
		log:               p.Log.Named("checkout.service"),
		defaultFeePercent: p.Cfg.Billing.PlatformFeePercent,
		orgRepo:           p.OrgRepo,
		profRepo:          p.ProfRepo,
		wallet:            p.Wallet,
		ledger:            p.Ledger,
	}
}

// feePercentFor resolves the clinic's effective platform fee: the
// per-organization override when present, the configured default otherwise.
func (s *Service) feePercentFor(org *orgdomain.Organization) float64 {
	if org.PlatformFeeOverridePercent != nil {
		return *org.PlatformFeeOverridePercent
	}
	return s.defaultFeePercent
}

func (s *Service) Preview(ctx context.Context, clinicID snowflake.ID, in checkoutdomain.Input) (checkoutdomain.Calculation, error) {
	if err := checkoutdomain.ValidateInput(in); err != nil {
		return checkoutdomain.Calculation{}, err
	}
	org, err := s.orgRepo.FindByID(ctx, s.db, clinicID)
	if err != nil {
		return checkoutdomain.Calculation{}, err
	}
	if org == nil {
		return checkoutdomain.Calculation{}, orgdomain.ErrOrganizationNotFound
	}
	return checkoutdomain.Compute(in, s.feePercentFor(org)), nil
}

func (s *Service) Confirm(ctx context.Context, req checkoutdomain.ConfirmRequest) (checkoutdomain.ConfirmResult, error) {
	if err := checkoutdomain.ValidateInput(req.Input); err != nil {
		return checkoutdomain.ConfirmResult{}, err
	}

	org, err := s.orgRepo.FindByID(ctx, s.db, req.ClinicID)
	if err != nil {
		return checkoutdomain.ConfirmResult{}, err
	}
	if org == nil {
		return checkoutdomain.ConfirmResult{}, orgdomain.ErrOrganizationNotFound
	}

	prof, err := s.profRepo.FindByID(ctx, s.db, req.ProfessionalID)
	if err != nil {
		return checkoutdomain.ConfirmResult{}, err
	}
	if prof == nil {
		return checkoutdomain.ConfirmResult{}, profdomain.ErrProfessionalNotFound
	}
	if prof.ClinicID != req.ClinicID {
		return checkoutdomain.ConfirmResult{}, checkoutdomain.ErrProfessionalGone
	}

	calc := checkoutdomain.Compute(req.Input, s.feePercentFor(org))
	earned := prof.CashbackFor(calc.ServiceSubtotalCents)

	txn := &ledgerdomain.FinancialTransaction{
		ClinicID:              req.ClinicID,
		ProfessionalID:        req.ProfessionalID,
		ClientID:              req.ClientID,
		AppointmentID:         req.AppointmentID,
		PaymentMethod:         req.PaymentMethod,
		AmountCents:           calc.TotalToPayClinicCents,
		PlatformFeePercent:    calc.PlatformFeePercent,
		PlatformFeeCents:      calc.PlatformFeeCents,
		CashbackRedeemedCents: req.CashbackRedeemCents,
		CashbackEarnedCents:   earned,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.CashbackRedeemCents > 0 {
			if err := s.wallet.Redeem(ctx, tx, walletdomain.RedeemRequest{
				ClinicID:             req.ClinicID,
				ClientID:             req.ClientID,
				AmountCents:          req.CashbackRedeemCents,
				ServiceSubtotalCents: calc.ServiceSubtotalCents,
			}); err != nil {
				return err
			}
		}
		if err := s.ledger.Record(ctx, tx, txn); err != nil {
			return err
		}
		if earned > 0 {
			if err := s.wallet.Earn(ctx, tx, walletdomain.EarnRequest{
				ClinicID:    req.ClinicID,
				ClientID:    req.ClientID,
				AmountCents: earned,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return checkoutdomain.ConfirmResult{}, err
	}

	wallet, err := s.wallet.Balance(ctx, req.ClinicID, req.ClientID)
	if err != nil {
		return checkoutdomain.ConfirmResult{}, err
	}

	s.log.Info("checkout confirmed",
		zap.String("clinic_id", req.ClinicID.String()),
		zap.String("transaction_id", txn.ID.String()),
		zap.Int64("amount_cents", txn.AmountCents),
		zap.Int64("platform_fee_cents", txn.PlatformFeeCents))

	return checkoutdomain.ConfirmResult{
		TransactionID:       txn.ID,
		Calculation:         calc,
		CashbackEarnedCents: earned,
		WalletBalanceCents:  wallet.BalanceCents,
	}, nil
}
