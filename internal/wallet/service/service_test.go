package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/vitalislabs/vitalis/internal/clock"
	walletdomain "github.com/vitalislabs/vitalis/internal/wallet/domain"
	walletrepo "github.com/vitalislabs/vitalis/internal/wallet/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixedClock struct{ now time.Time }

func (f fixedClock) Now(ctx context.Context) time.Time { return f.now }

func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&walletdomain.ClientWallet{}))
	return db
}

func newService(t *testing.T, db *gorm.DB) (*Service, clock.Clock) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := fixedClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	svc := &Service{
		db:         db,
		log:        zap.NewNop(),
		genID:      node,
		clock:      clk,
		capPercent: 33,
		repo:       walletrepo.Provide(),
	}
	return svc, clk
}

func seedWallet(t *testing.T, db *gorm.DB, svc *Service, clinicID, clientID snowflake.ID, balance int64) {
	t.Helper()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&walletdomain.ClientWallet{
		ID:               svc.genID.Generate(),
		ClinicID:         clinicID,
		ClientID:         clientID,
		BalanceCents:     balance,
		TotalEarnedCents: balance,
		CreatedAt:        now,
		UpdatedAt:        now,
	}).Error)
}

func TestRedeemRespectsCapBeforeBalance(t *testing.T) {
	db := newTestDB(t, "wallet_cap")
	svc, _ := newService(t, db)
	ctx := context.Background()

	clinicID := svc.genID.Generate()
	clientID := svc.genID.Generate()
	seedWallet(t, db, svc, clinicID, clientID, 5000)

	// Subtotal 10000 at a 33% cap allows at most 3300, even though the
	// balance would cover 4000.
	err := svc.Redeem(ctx, db, walletdomain.RedeemRequest{
		ClinicID:             clinicID,
		ClientID:             clientID,
		AmountCents:          4000,
		ServiceSubtotalCents: 10000,
	})
	require.ErrorIs(t, err, walletdomain.ErrRedemptionCapExceeded)

	wallet, err := svc.Balance(ctx, clinicID, clientID)
	require.NoError(t, err)
	require.EqualValues(t, 5000, wallet.BalanceCents)

	require.NoError(t, svc.Redeem(ctx, db, walletdomain.RedeemRequest{
		ClinicID:             clinicID,
		ClientID:             clientID,
		AmountCents:          3300,
		ServiceSubtotalCents: 10000,
	}))

	wallet, err = svc.Balance(ctx, clinicID, clientID)
	require.NoError(t, err)
	require.EqualValues(t, 1700, wallet.BalanceCents)
	require.EqualValues(t, 3300, wallet.TotalSpentCents)
}

func TestRedeemInsufficientBalance(t *testing.T) {
	db := newTestDB(t, "wallet_insufficient")
	svc, _ := newService(t, db)
	ctx := context.Background()

	clinicID := svc.genID.Generate()
	clientID := svc.genID.Generate()
	seedWallet(t, db, svc, clinicID, clientID, 1000)

	err := svc.Redeem(ctx, db, walletdomain.RedeemRequest{
		ClinicID:             clinicID,
		ClientID:             clientID,
		AmountCents:          1500,
		ServiceSubtotalCents: 100000,
	})
	require.ErrorIs(t, err, walletdomain.ErrInsufficientBalance)

	wallet, err := svc.Balance(ctx, clinicID, clientID)
	require.NoError(t, err)
	require.EqualValues(t, 1000, wallet.BalanceCents)
}

func TestRedeemMissingWallet(t *testing.T) {
	db := newTestDB(t, "wallet_missing")
	svc, _ := newService(t, db)

	err := svc.Redeem(context.Background(), db, walletdomain.RedeemRequest{
		ClinicID:             svc.genID.Generate(),
		ClientID:             svc.genID.Generate(),
		AmountCents:          100,
		ServiceSubtotalCents: 10000,
	})
	require.ErrorIs(t, err, walletdomain.ErrInsufficientBalance)
}

func TestRedeemRejectsNonPositiveAmount(t *testing.T) {
	db := newTestDB(t, "wallet_amount")
	svc, _ := newService(t, db)

	err := svc.Redeem(context.Background(), db, walletdomain.RedeemRequest{
		ClinicID:             svc.genID.Generate(),
		ClientID:             svc.genID.Generate(),
		AmountCents:          0,
		ServiceSubtotalCents: 10000,
	})
	require.ErrorIs(t, err, walletdomain.ErrInvalidAmount)
}

func TestEarnCreatesWalletOnFirstCredit(t *testing.T) {
	db := newTestDB(t, "wallet_first_earn")
	svc, _ := newService(t, db)
	ctx := context.Background()

	clinicID := svc.genID.Generate()
	clientID := svc.genID.Generate()

	require.NoError(t, svc.Earn(ctx, db, walletdomain.EarnRequest{
		ClinicID:    clinicID,
		ClientID:    clientID,
		AmountCents: 2000,
	}))

	wallet, err := svc.Balance(ctx, clinicID, clientID)
	require.NoError(t, err)
	require.NotZero(t, wallet.ID)
	require.EqualValues(t, 2000, wallet.BalanceCents)
	require.EqualValues(t, 2000, wallet.TotalEarnedCents)
	require.EqualValues(t, 0, wallet.TotalSpentCents)
}

func TestEarnAccumulatesOnExistingWallet(t *testing.T) {
	db := newTestDB(t, "wallet_accumulate")
	svc, _ := newService(t, db)
	ctx := context.Background()

	clinicID := svc.genID.Generate()
	clientID := svc.genID.Generate()
	seedWallet(t, db, svc, clinicID, clientID, 500)

	require.NoError(t, svc.Earn(ctx, db, walletdomain.EarnRequest{
		ClinicID:    clinicID,
		ClientID:    clientID,
		AmountCents: 250,
	}))

	wallet, err := svc.Balance(ctx, clinicID, clientID)
	require.NoError(t, err)
	require.EqualValues(t, 750, wallet.BalanceCents)
	require.EqualValues(t, 750, wallet.TotalEarnedCents)
}

func TestBalanceWithoutWalletReturnsZero(t *testing.T) {
	db := newTestDB(t, "wallet_zero_balance")
	svc, _ := newService(t, db)

	wallet, err := svc.Balance(context.Background(), svc.genID.Generate(), svc.genID.Generate())
	require.NoError(t, err)
	require.Zero(t, wallet.ID)
	require.Zero(t, wallet.BalanceCents)
}

func TestBalanceEqualsEarnedMinusSpent(t *testing.T) {
	db := newTestDB(t, "wallet_invariant")
	svc, _ := newService(t, db)
	ctx := context.Background()

	clinicID := svc.genID.Generate()
	clientID := svc.genID.Generate()

	for _, amount := range []int64{1000, 2500, 400} {
		require.NoError(t, svc.Earn(ctx, db, walletdomain.EarnRequest{
			ClinicID:    clinicID,
			ClientID:    clientID,
			AmountCents: amount,
		}))
	}
	require.NoError(t, svc.Redeem(ctx, db, walletdomain.RedeemRequest{
		ClinicID:             clinicID,
		ClientID:             clientID,
		AmountCents:          1200,
		ServiceSubtotalCents: 10000,
	}))

	wallet, err := svc.Balance(ctx, clinicID, clientID)
	require.NoError(t, err)
	require.Equal(t, wallet.TotalEarnedCents-wallet.TotalSpentCents, wallet.BalanceCents)
	require.EqualValues(t, 2700, wallet.BalanceCents)
}

func TestBalanceInvariantUnderInterleavedOperations(t *testing.T) {
	db := newTestDB(t, "wallet_interleaved")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Serialize at the pool so sqlite never sees two writers; the goroutines
	// still interleave earns and redeems in arbitrary order.
	sqlDB.SetMaxOpenConns(1)

	svc, _ := newService(t, db)
	ctx := context.Background()

	clinicID := svc.genID.Generate()
	clientID := svc.genID.Generate()
	seedWallet(t, db, svc, clinicID, clientID, 1000)

	const workers = 8
	const opsPerWorker = 20

	var earned, spent int64
	errCh := make(chan error, workers*opsPerWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < opsPerWorker; i++ {
				if w%2 == 0 {
					if err := svc.Earn(ctx, db, walletdomain.EarnRequest{
						ClinicID:    clinicID,
						ClientID:    clientID,
						AmountCents: 40,
					}); err != nil {
						errCh <- err
						continue
					}
					atomic.AddInt64(&earned, 40)
					continue
				}
				err := svc.Redeem(ctx, db, walletdomain.RedeemRequest{
					ClinicID:             clinicID,
					ClientID:             clientID,
					AmountCents:          30,
					ServiceSubtotalCents: 1000000,
				})
				if errors.Is(err, walletdomain.ErrInsufficientBalance) {
					continue
				}
				if err != nil {
					errCh <- err
					continue
				}
				atomic.AddInt64(&spent, 30)
			}
		}(w)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	wallet, err := svc.Balance(ctx, clinicID, clientID)
	require.NoError(t, err)
	require.Equal(t, wallet.TotalEarnedCents-wallet.TotalSpentCents, wallet.BalanceCents)
	require.GreaterOrEqual(t, wallet.BalanceCents, int64(0))
	require.EqualValues(t, 1000+earned, wallet.TotalEarnedCents)
	require.EqualValues(t, spent, wallet.TotalSpentCents)
}
