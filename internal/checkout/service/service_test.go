package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	checkoutdomain "github.com/vitalislabs/vitalis/internal/checkout/domain"
	"github.com/vitalislabs/vitalis/internal/config"
	ledgerdomain "github.com/vitalislabs/vitalis/internal/ledger/domain"
	ledgerrepo "github.com/vitalislabs/vitalis/internal/ledger/repository"
	ledgerservice "github.com/vitalislabs/vitalis/internal/ledger/service"
	"github.com/vitalislabs/vitalis/internal/observability"
	orgdomain "github.com/vitalislabs/vitalis/internal/organization/domain"
	orgrepo "github.com/vitalislabs/vitalis/internal/organization/repository"
	profdomain "github.com/vitalislabs/vitalis/internal/professional/domain"
	profrepo "github.com/vitalislabs/vitalis/internal/professional/repository"
	walletdomain "github.com/vitalislabs/vitalis/internal/wallet/domain"
	walletrepo "github.com/vitalislabs/vitalis/internal/wallet/repository"
	walletservice "github.com/vitalislabs/vitalis/internal/wallet/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now(ctx context.Context) time.Time { return c.now }

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&orgdomain.Organization{},
		&profdomain.Professional{},
		&walletdomain.ClientWallet{},
		&ledgerdomain.FinancialTransaction{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := fixedClock{now: time.Date(2026, 7, 1, 14, 0, 0, 0, time.UTC)}
	cfg := config.Config{Billing: config.BillingConfig{
		PlatformFeePercent:       6,
		CashbackRedeemCapPercent: 33,
	}}

	wallet := walletservice.NewService(walletservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Cfg:   cfg,
		Repo:  walletrepo.Provide(),
	})
	ledger := ledgerservice.NewService(ledgerservice.Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Repo:    ledgerrepo.Provide(),
		OrgRepo: orgrepo.Provide(),
		Metrics: observability.NewMetrics(),
	})

	svc := &Service{
		db:                db,
		log:               zap.NewNop(),
		defaultFeePercent: cfg.Billing.PlatformFeePercent,
		orgRepo:           orgrepo.Provide(),
		profRepo:          profrepo.Provide(),
		wallet:            wallet,
		ledger:            ledger,
	}
	return &fixture{db: db, node: node, svc: svc}
}

func (f *fixture) seedClinic(t *testing.T, feeOverride *float64) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	org := &orgdomain.Organization{
		ID:                         f.node.Generate(),
		Name:                       "Clinica Vida",
		Status:                     orgdomain.StatusActive,
		PlatformFeeOverridePercent: feeOverride,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}
	require.NoError(t, f.db.Create(org).Error)
	return org.ID
}

func (f *fixture) seedProfessional(t *testing.T, clinicID snowflake.ID, mutate func(*profdomain.Professional)) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	prof := &profdomain.Professional{
		ID:              f.node.Generate(),
		ClinicID:        clinicID,
		Name:            "Dr. Souza",
		CommissionModel: profdomain.ModelCommissioned,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if mutate != nil {
		mutate(prof)
	}
	require.NoError(t, f.db.Create(prof).Error)
	return prof.ID
}

func (f *fixture) seedWallet(t *testing.T, clinicID, clientID snowflake.ID, balance int64) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&walletdomain.ClientWallet{
		ID:               f.node.Generate(),
		ClinicID:         clinicID,
		ClientID:         clientID,
		BalanceCents:     balance,
		TotalEarnedCents: balance,
		CreatedAt:        now,
		UpdatedAt:        now,
	}).Error)
}

func serviceItems(priceCents int64) checkoutdomain.Input {
	return checkoutdomain.Input{
		Items: []checkoutdomain.LineItem{
			{PriceCents: priceCents, Quantity: 1, Kind: checkoutdomain.KindService},
		},
	}
}

func TestConfirmRecordsTransactionWithFeeSnapshot(t *testing.T) {
	f := newFixture(t)
	clinicID := f.seedClinic(t, nil)
	profID := f.seedProfessional(t, clinicID, nil)
	clientID := f.node.Generate()

	result, err := f.svc.Confirm(context.Background(), checkoutdomain.ConfirmRequest{
		ClinicID:       clinicID,
		ProfessionalID: profID,
		ClientID:       clientID,
		PaymentMethod:  "pix",
		Input:          serviceItems(10000),
	})
	require.NoError(t, err)
	require.EqualValues(t, 600, result.Calculation.PlatformFeeCents)
	require.EqualValues(t, 9400, result.Calculation.SplitBaseValueCents)

	var txn ledgerdomain.FinancialTransaction
	require.NoError(t, f.db.First(&txn, "id = ?", result.TransactionID).Error)
	require.EqualValues(t, 10000, txn.AmountCents)
	require.EqualValues(t, 6, txn.PlatformFeePercent)
	require.EqualValues(t, 600, txn.PlatformFeeCents)
	require.True(t, txn.FeePending)
	require.Equal(t, ledgerdomain.StatusPending, txn.Status)
}

func TestConfirmUsesClinicFeeOverride(t *testing.T) {
	f := newFixture(t)
	override := 4.0
	clinicID := f.seedClinic(t, &override)
	profID := f.seedProfessional(t, clinicID, nil)

	result, err := f.svc.Confirm(context.Background(), checkoutdomain.ConfirmRequest{
		ClinicID:       clinicID,
		ProfessionalID: profID,
		ClientID:       f.node.Generate(),
		PaymentMethod:  "card",
		Input:          serviceItems(10000),
	})
	require.NoError(t, err)
	require.EqualValues(t, 400, result.Calculation.PlatformFeeCents)
	require.EqualValues(t, 4, result.Calculation.PlatformFeePercent)
}

func TestConfirmEarnsProfessionalCashback(t *testing.T) {
	f := newFixture(t)
	clinicID := f.seedClinic(t, nil)
	profID := f.seedProfessional(t, clinicID, func(p *profdomain.Professional) {
		p.CashbackEnabled = true
		p.CashbackMode = profdomain.CashbackPercent
		p.CashbackPercent = 10
	})
	clientID := f.node.Generate()

	result, err := f.svc.Confirm(context.Background(), checkoutdomain.ConfirmRequest{
		ClinicID:       clinicID,
		ProfessionalID: profID,
		ClientID:       clientID,
		PaymentMethod:  "pix",
		Input:          serviceItems(20000),
	})
	require.NoError(t, err)
	require.EqualValues(t, 2000, result.CashbackEarnedCents)
	require.EqualValues(t, 2000, result.WalletBalanceCents)

	var txn ledgerdomain.FinancialTransaction
	require.NoError(t, f.db.First(&txn, "id = ?", result.TransactionID).Error)
	require.EqualValues(t, 2000, txn.CashbackEarnedCents)
}

func TestConfirmRedeemsWithinCap(t *testing.T) {
	f := newFixture(t)
	clinicID := f.seedClinic(t, nil)
	profID := f.seedProfessional(t, clinicID, nil)
	clientID := f.node.Generate()
	f.seedWallet(t, clinicID, clientID, 5000)

	in := serviceItems(10000)
	in.CashbackRedeemCents = 3300

	result, err := f.svc.Confirm(context.Background(), checkoutdomain.ConfirmRequest{
		ClinicID:       clinicID,
		ProfessionalID: profID,
		ClientID:       clientID,
		PaymentMethod:  "pix",
		Input:          in,
	})
	require.NoError(t, err)
	require.EqualValues(t, 6700, result.Calculation.TotalToPayClinicCents)
	require.EqualValues(t, 1700, result.WalletBalanceCents)
}

func TestConfirmRollsBackWhenRedemptionFails(t *testing.T) {
	f := newFixture(t)
	clinicID := f.seedClinic(t, nil)
	profID := f.seedProfessional(t, clinicID, nil)
	clientID := f.node.Generate()
	f.seedWallet(t, clinicID, clientID, 5000)

	// 4000 > cap(10000 * 33%) = 3300: the whole confirmation fails and no
	// transaction row is written.
	in := serviceItems(10000)
	in.CashbackRedeemCents = 4000

	_, err := f.svc.Confirm(context.Background(), checkoutdomain.ConfirmRequest{
		ClinicID:       clinicID,
		ProfessionalID: profID,
		ClientID:       clientID,
		PaymentMethod:  "pix",
		Input:          in,
	})
	require.ErrorIs(t, err, walletdomain.ErrRedemptionCapExceeded)

	var count int64
	require.NoError(t, f.db.Model(&ledgerdomain.FinancialTransaction{}).Count(&count).Error)
	require.EqualValues(t, 0, count)

	var wallet walletdomain.ClientWallet
	require.NoError(t, f.db.First(&wallet, "clinic_id = ? AND client_id = ?", clinicID, clientID).Error)
	require.EqualValues(t, 5000, wallet.BalanceCents)
}

func TestConfirmRejectsForeignProfessional(t *testing.T) {
	f := newFixture(t)
	clinicID := f.seedClinic(t, nil)
	otherClinicID := f.seedClinic(t, nil)
	profID := f.seedProfessional(t, otherClinicID, nil)

	_, err := f.svc.Confirm(context.Background(), checkoutdomain.ConfirmRequest{
		ClinicID:       clinicID,
		ProfessionalID: profID,
		ClientID:       f.node.Generate(),
		PaymentMethod:  "pix",
		Input:          serviceItems(10000),
	})
	require.ErrorIs(t, err, checkoutdomain.ErrProfessionalGone)
}

func TestPreviewWritesNothing(t *testing.T) {
	f := newFixture(t)
	clinicID := f.seedClinic(t, nil)

	calc, err := f.svc.Preview(context.Background(), clinicID, serviceItems(10000))
	require.NoError(t, err)
	require.EqualValues(t, 600, calc.PlatformFeeCents)

	var count int64
	require.NoError(t, f.db.Model(&ledgerdomain.FinancialTransaction{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}
