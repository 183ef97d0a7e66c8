package subscription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/physoxy/internal/cache"
	"github.com/magabrotheeeer/physoxy/internal/config"
	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/lib/clock"
	"github.com/magabrotheeeer/physoxy/internal/models"
	"github.com/magabrotheeeer/physoxy/internal/paymentprovider"
	"github.com/magabrotheeeer/physoxy/internal/storage/repository"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) SetSubscription(ctx context.Context, userID string, sub models.Subscription) error {
	return m.Called(ctx, userID, sub).Error(0)
}

func (m *RepoMock) ClearSubscription(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *RepoMock) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Package), args.Error(1)
}

func (m *RepoMock) ListPackages(ctx context.Context) ([]models.Package, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Package), args.Error(1)
}

type GatewayMock struct {
	mock.Mock
}

func (m *GatewayMock) Charge(ctx context.Context, req paymentprovider.PaymentRequest) (*paymentprovider.PaymentResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.PaymentResponse), args.Error(1)
}

func (m *GatewayMock) Refund(ctx context.Context, req paymentprovider.PaymentRequest) (*paymentprovider.PaymentResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.PaymentResponse), args.Error(1)
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(repo *RepoMock, gw PaymentGateway, c Cache) *Service {
	return New(repo, repo, c, time.Hour, gw, &clock.Fixed{T: now}, nil, newNoopLogger())
}

func yearlyWithMonthsLeft(amount float64, months int, extra time.Duration) *models.Subscription {
	ends := now.Add(time.Duration(months)*models.BillingMonth + extra)
	return &models.Subscription{
		PlanID:   "old",
		Type:     models.Yearly,
		Amount:   amount,
		StartsAt: ends.Add(-models.BillingYear),
		EndsAt:   ends,
	}
}

func TestMoneyLeft(t *testing.T) {
	tests := []struct {
		name    string
		current *models.Subscription
		want    float64
	}{
		{name: "no subscription", want: 0},
		{name: "six full months of yearly", current: yearlyWithMonthsLeft(120, 6, 0), want: 60},
		{name: "partial month dropped", current: yearlyWithMonthsLeft(120, 6, 29*24*time.Hour), want: 60},
		{name: "less than a month left", current: yearlyWithMonthsLeft(120, 0, 10*24*time.Hour), want: 0},
		{
			name: "active monthly gives nothing",
			current: &models.Subscription{
				Type: models.Monthly, Amount: 50, StartsAt: now.Add(-time.Hour), EndsAt: now.Add(29 * 24 * time.Hour),
			},
			want: 0,
		},
		{
			name: "expired yearly gives nothing",
			current: &models.Subscription{
				Type: models.Yearly, Amount: 120, StartsAt: now.Add(-models.BillingYear - time.Hour), EndsAt: now.Add(-time.Hour),
			},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MoneyLeft(tt.current, now), 1e-9)
		})
	}
}

func TestChangePlan_RefundBranchCommits(t *testing.T) {
	repo := new(RepoMock)
	gw := new(GatewayMock)
	target := &models.Package{ID: "gold", Name: "Gold", Pricing: models.Pricing{Monthly: 50, Yearly: 500}}
	user := &models.User{ID: "u1", Subscription: yearlyWithMonthsLeft(120, 6, 0)}

	repo.On("GetPackage", mock.Anything, "gold").Return(target, nil).Once()
	gw.On("Refund", mock.Anything, paymentprovider.PaymentRequest{UserID: "u1", Amount: 10, Description: "Gold (monthly)"}).
		Return(&paymentprovider.PaymentResponse{ID: "p1", Operation: paymentprovider.OperationRefund, Amount: 10}, nil).Once()
	want := models.NewSubscription("gold", models.Monthly, 50, now)
	repo.On("SetSubscription", mock.Anything, "u1", want).Return(nil).Once()

	quote := Prorate(user.Subscription, target, models.Monthly, now)
	assert.InDelta(t, 60, quote.MoneyLeft, 1e-9)
	assert.InDelta(t, -10, quote.AmountDue, 1e-9)

	got, err := newService(repo, gw, nil).ChangePlan(context.Background(), user, "gold", models.Monthly)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
	assert.Equal(t, now.Add(30*24*time.Hour), got.EndsAt)
	assert.Equal(t, &want, user.Subscription)
	repo.AssertExpectations(t)
	gw.AssertExpectations(t)
	gw.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
}

func TestChangePlan_ChargeBranch(t *testing.T) {
	repo := new(RepoMock)
	gw := new(GatewayMock)
	target := &models.Package{ID: "gold", Name: "Gold", Pricing: models.Pricing{Monthly: 50, Yearly: 500}}
	user := &models.User{ID: "u1"}

	repo.On("GetPackage", mock.Anything, "gold").Return(target, nil).Once()
	gw.On("Charge", mock.Anything, mock.MatchedBy(func(r paymentprovider.PaymentRequest) bool { return r.Amount == 500 })).
		Return(&paymentprovider.PaymentResponse{ID: "p1", Operation: paymentprovider.OperationCharge, Amount: 500}, nil).Once()
	repo.On("SetSubscription", mock.Anything, "u1", mock.MatchedBy(func(s models.Subscription) bool {
		return s.Type == models.Yearly && s.Amount == 500 && s.EndsAt.Equal(now.Add(360*24*time.Hour))
	})).Return(nil).Once()

	got, err := newService(repo, gw, nil).ChangePlan(context.Background(), user, "gold", models.Yearly)
	require.NoError(t, err)
	assert.Equal(t, 500.0, got.Amount)
	repo.AssertExpectations(t)
}

func TestChangePlan_Rejections(t *testing.T) {
	target := &models.Package{ID: "gold", Name: "Gold", Pricing: models.Pricing{Monthly: 50, Yearly: 500}}
	active := models.NewSubscription("gold", models.Monthly, 50, now.Add(-time.Hour))
	expired := models.NewSubscription("gold", models.Monthly, 50, now.Add(-31*24*time.Hour))

	tests := []struct {
		name     string
		user     *models.User
		billing  models.BillingType
		pkgErr   error
		wantKind error
		wantMsg  string
		charges  bool
	}{
		{
			name:     "unknown package",
			user:     &models.User{ID: "u1"},
			billing:  models.Monthly,
			pkgErr:   fmt.Errorf("storage.GetPackage: %w", repository.ErrNotFound),
			wantKind: apperr.ErrNotFound,
			wantMsg:  "Package not found",
		},
		{
			name:     "same plan same billing still active",
			user:     &models.User{ID: "u1", Subscription: &active},
			billing:  models.Monthly,
			wantKind: apperr.ErrConflict,
			wantMsg:  "Already subscribed to this plan!",
		},
		{
			name:     "bad billing",
			user:     &models.User{ID: "u1"},
			billing:  "weekly",
			wantKind: apperr.ErrValidation,
		},
		{
			name:    "same plan different billing allowed",
			user:    &models.User{ID: "u1", Subscription: &active},
			billing: models.Yearly,
			charges: true,
		},
		{
			name:    "same plan expired allowed",
			user:    &models.User{ID: "u1", Subscription: &expired},
			billing: models.Monthly,
			charges: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			gw := new(GatewayMock)
			if tt.pkgErr != nil {
				repo.On("GetPackage", mock.Anything, "gold").Return(nil, tt.pkgErr)
			} else {
				repo.On("GetPackage", mock.Anything, "gold").Return(target, nil)
			}
			if tt.charges {
				gw.On("Charge", mock.Anything, mock.Anything).
					Return(&paymentprovider.PaymentResponse{Operation: paymentprovider.OperationCharge}, nil).Once()
				repo.On("SetSubscription", mock.Anything, "u1", mock.Anything).Return(nil).Once()
			}

			_, err := newService(repo, gw, nil).ChangePlan(context.Background(), tt.user, "gold", tt.billing)
			if tt.charges {
				require.NoError(t, err)
				gw.AssertExpectations(t)
				return
			}
			require.ErrorIs(t, err, tt.wantKind)
			if tt.wantMsg != "" {
				e, _ := apperr.As(err)
				assert.Equal(t, tt.wantMsg, e.Message)
			}
			gw.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "SetSubscription", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestChangePlan_PaymentFailureKeepsSubscription(t *testing.T) {
	repo := new(RepoMock)
	gw := new(GatewayMock)
	repo.On("GetPackage", mock.Anything, "gold").Return(&models.Package{ID: "gold", Pricing: models.Pricing{Monthly: 5}}, nil)
	gw.On("Charge", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	user := &models.User{ID: "u1"}
	_, err := newService(repo, gw, nil).ChangePlan(context.Background(), user, "gold", models.Monthly)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, user.Subscription)
	repo.AssertNotCalled(t, "SetSubscription", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePlan_CommitSurvivesCanceledRequest(t *testing.T) {
	repo := new(RepoMock)
	gw := new(GatewayMock)
	ctx, cancel := context.WithCancel(context.Background())

	repo.On("GetPackage", mock.Anything, "gold").Return(&models.Package{ID: "gold", Pricing: models.Pricing{Monthly: 5}}, nil)
	gw.On("Charge", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(&paymentprovider.PaymentResponse{Operation: paymentprovider.OperationCharge}, nil)
	repo.On("SetSubscription", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }), "u1", mock.Anything).
		Return(nil).Once()

	_, err := newService(repo, gw, nil).ChangePlan(ctx, &models.User{ID: "u1"}, "gold", models.Monthly)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCancelAndCurrent(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ClearSubscription", mock.Anything, "u1").Return(nil).Twice()
	svc := newService(repo, new(GatewayMock), nil)

	active := models.NewSubscription("gold", models.Monthly, 50, now)
	user := &models.User{ID: "u1", Subscription: &active}
	assert.Equal(t, &active, svc.Current(user))

	require.NoError(t, svc.Cancel(context.Background(), user))
	assert.Nil(t, user.Subscription)
	assert.Nil(t, svc.Current(user))
	require.NoError(t, svc.Cancel(context.Background(), user))

	expired := models.NewSubscription("gold", models.Monthly, 50, now.Add(-40*24*time.Hour))
	user.Subscription = &expired
	assert.Nil(t, svc.Current(user))
	assert.NotNil(t, user.Subscription, "read path must not clear the record")
}

func TestListPackages_Cached(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	c, err := cache.InitServer(context.Background(), config.RedisConnection{Addr: mr.Addr(), DialTimeout: time.Second, Timeout: time.Second})
	require.NoError(t, err)

	repo := new(RepoMock)
	pkgs := []models.Package{{ID: "1", Name: "Basic", Pricing: models.Pricing{Monthly: 10, Yearly: 100}}}
	repo.On("ListPackages", mock.Anything).Return(pkgs, nil).Twice()
	svc := newService(repo, new(GatewayMock), c)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := svc.ListPackages(ctx)
		require.NoError(t, err)
		assert.Equal(t, pkgs, got)
	}
	repo.AssertNumberOfCalls(t, "ListPackages", 1)

	svc.InvalidatePackages(ctx)
	_, err = svc.ListPackages(ctx)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "ListPackages", 2)
}

func TestListPackages_CacheDownFallsBack(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	c, err := cache.InitServer(context.Background(), config.RedisConnection{Addr: mr.Addr(), DialTimeout: time.Second, Timeout: time.Second})
	require.NoError(t, err)
	mr.Close()

	repo := new(RepoMock)
	repo.On("ListPackages", mock.Anything).Return([]models.Package{}, nil)
	got, err := newService(repo, new(GatewayMock), c).ListPackages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	repo2 := new(RepoMock)
	repo2.On("ListPackages", mock.Anything).Return(nil, errors.New("db down"))
	_, err = newService(repo2, new(GatewayMock), nil).ListPackages(context.Background())
	assert.Error(t, err)
}
