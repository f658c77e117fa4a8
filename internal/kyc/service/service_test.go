package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vitalislabs/vitalis/internal/gateway"
	kycdomain "github.com/vitalislabs/vitalis/internal/kyc/domain"
	orgdomain "github.com/vitalislabs/vitalis/internal/organization/domain"
	orgrepo "github.com/vitalislabs/vitalis/internal/organization/repository"
	profdomain "github.com/vitalislabs/vitalis/internal/professional/domain"
	profrepo "github.com/vitalislabs/vitalis/internal/professional/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now(ctx context.Context) time.Time { return c.now }

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateCustomer(ctx context.Context, req gateway.CreateCustomerRequest) (gateway.Customer, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(gateway.Customer), args.Error(1)
}

func (m *mockGateway) CreateSubaccount(ctx context.Context, req gateway.CreateSubaccountRequest) (gateway.Subaccount, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(gateway.Subaccount), args.Error(1)
}

func (m *mockGateway) CreateSubscription(ctx context.Context, req gateway.CreateSubscriptionRequest) (gateway.Subscription, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(gateway.Subscription), args.Error(1)
}

func (m *mockGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	args := m.Called(ctx, subscriptionID)
	return args.Error(0)
}

func (m *mockGateway) CreateCharge(ctx context.Context, req gateway.CreateChargeRequest, idempotencyKey string) (gateway.Charge, error) {
	args := m.Called(ctx, req, idempotencyKey)
	return args.Get(0).(gateway.Charge), args.Error(1)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&orgdomain.Organization{}, &profdomain.Professional{}))
	return db
}

func newService(t *testing.T, db *gorm.DB, gw gateway.Client) *Service {
	t.Helper()
	return &Service{
		db:       db,
		log:      zap.NewNop(),
		clock:    fixedClock{now: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)},
		orgRepo:  orgrepo.Provide(),
		profRepo: profrepo.Provide(),
		gateway:  gw,
	}
}

func newNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func seedOrg(t *testing.T, db *gorm.DB, node *snowflake.Node, taxID, address, walletID string, status kycdomain.Status) *orgdomain.Organization {
	t.Helper()
	now := time.Now().UTC()
	org := &orgdomain.Organization{
		ID:              node.Generate(),
		Name:            "Clinica Vida",
		Status:          orgdomain.StatusActive,
		KYCStatus:       status,
		TaxID:           taxID,
		AddressLine:     address,
		GatewayWalletID: walletID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, db.Create(org).Error)
	return org
}

func seedProfessional(t *testing.T, db *gorm.DB, node *snowflake.Node, walletID string, status kycdomain.Status) *profdomain.Professional {
	t.Helper()
	now := time.Now().UTC()
	prof := &profdomain.Professional{
		ID:              node.Generate(),
		ClinicID:        node.Generate(),
		Name:            "Dr. Souza",
		TaxID:           "12345678900",
		AddressLine:     "Rua das Flores 10",
		KYCStatus:       status,
		GatewayWalletID: walletID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, db.Create(prof).Error)
	return prof
}

func TestRequestSubaccountRequiresCompleteIdentity(t *testing.T) {
	db := newTestDB(t)
	node := newNode(t)
	gw := &mockGateway{}
	svc := newService(t, db, gw)

	org := seedOrg(t, db, node, "", "", "", kycdomain.StatusPending)

	_, err := svc.RequestSubaccount(context.Background(), kycdomain.EntityRef{
		Type: kycdomain.EntityOrganization,
		ID:   org.ID,
	})
	require.ErrorIs(t, err, kycdomain.ErrIncompleteIdentityData)
	gw.AssertNotCalled(t, "CreateSubaccount", mock.Anything, mock.Anything)
}

func TestRequestSubaccountPersistsWalletAndMovesToReview(t *testing.T) {
	db := newTestDB(t)
	node := newNode(t)
	gw := &mockGateway{}
	svc := newService(t, db, gw)

	org := seedOrg(t, db, node, "11222333000144", "Av. Central 200", "", kycdomain.StatusPending)

	gw.On("CreateSubaccount", mock.Anything, mock.MatchedBy(func(req gateway.CreateSubaccountRequest) bool {
		return req.TaxID == "11222333000144" && req.Address == "Av. Central 200"
	})).Return(gateway.Subaccount{WalletID: "wal_1", CustomerID: "cus_sub_1"}, nil)

	walletID, err := svc.RequestSubaccount(context.Background(), kycdomain.EntityRef{
		Type: kycdomain.EntityOrganization,
		ID:   org.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "wal_1", walletID)

	var loaded orgdomain.Organization
	require.NoError(t, db.First(&loaded, "id = ?", org.ID).Error)
	require.Equal(t, kycdomain.StatusInReview, loaded.KYCStatus)
	require.Equal(t, "wal_1", loaded.GatewayWalletID)
	gw.AssertExpectations(t)
}

func TestRequestSubaccountRejectsApprovedEntity(t *testing.T) {
	db := newTestDB(t)
	node := newNode(t)
	gw := &mockGateway{}
	svc := newService(t, db, gw)

	org := seedOrg(t, db, node, "11222333000144", "Av. Central 200", "wal_ok", kycdomain.StatusApproved)

	_, err := svc.RequestSubaccount(context.Background(), kycdomain.EntityRef{
		Type: kycdomain.EntityOrganization,
		ID:   org.ID,
	})
	require.ErrorIs(t, err, kycdomain.ErrAlreadyApproved)
	gw.AssertNotCalled(t, "CreateSubaccount", mock.Anything, mock.Anything)
}

func TestResolveWalletIsPolymorphic(t *testing.T) {
	db := newTestDB(t)
	node := newNode(t)
	svc := newService(t, db, &mockGateway{})

	org := seedOrg(t, db, node, "11222333000144", "Av. Central 200", "wal_org", kycdomain.StatusInReview)
	prof := seedProfessional(t, db, node, "wal_prof", kycdomain.StatusInReview)

	ref, err := svc.ResolveWallet(context.Background(), "wal_org")
	require.NoError(t, err)
	require.Equal(t, kycdomain.EntityRef{Type: kycdomain.EntityOrganization, ID: org.ID}, ref)

	ref, err = svc.ResolveWallet(context.Background(), "wal_prof")
	require.NoError(t, err)
	require.Equal(t, kycdomain.EntityRef{Type: kycdomain.EntityProfessional, ID: prof.ID}, ref)

	_, err = svc.ResolveWallet(context.Background(), "wal_unknown")
	require.ErrorIs(t, err, kycdomain.ErrEntityNotFound)
}

func TestApplyAccountEventApprovesProfessional(t *testing.T) {
	db := newTestDB(t)
	node := newNode(t)
	svc := newService(t, db, &mockGateway{})

	prof := seedProfessional(t, db, node, "wal_1", kycdomain.StatusInReview)

	require.NoError(t, svc.ApplyAccountEvent(context.Background(), "wal_1", kycdomain.StatusApproved))

	var loaded profdomain.Professional
	require.NoError(t, db.First(&loaded, "id = ?", prof.ID).Error)
	require.Equal(t, kycdomain.StatusApproved, loaded.KYCStatus)
}

func TestApplyAccountEventIgnoresRepeatVerdict(t *testing.T) {
	db := newTestDB(t)
	node := newNode(t)
	svc := newService(t, db, &mockGateway{})

	prof := seedProfessional(t, db, node, "wal_1", kycdomain.StatusApproved)

	// Approved is terminal; the repeated verdict is acknowledged and dropped.
	require.NoError(t, svc.ApplyAccountEvent(context.Background(), "wal_1", kycdomain.StatusApproved))

	var loaded profdomain.Professional
	require.NoError(t, db.First(&loaded, "id = ?", prof.ID).Error)
	require.Equal(t, kycdomain.StatusApproved, loaded.KYCStatus)
}

func TestApplyAccountEventOrphanWallet(t *testing.T) {
	db := newTestDB(t)
	svc := newService(t, db, &mockGateway{})

	err := svc.ApplyAccountEvent(context.Background(), "wal_ghost", kycdomain.StatusApproved)
	require.ErrorIs(t, err, kycdomain.ErrOrphanEvent)
}
