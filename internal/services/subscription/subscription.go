// Package subscription реализует смену и отмену тарифа пользователя
// и каталог тарифных пакетов с кешем в Redis.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/lib/clock"
	"github.com/magabrotheeeer/physoxy/internal/lib/sl"
	"github.com/magabrotheeeer/physoxy/internal/metrics"
	"github.com/magabrotheeeer/physoxy/internal/models"
	"github.com/magabrotheeeer/physoxy/internal/paymentprovider"
	"github.com/magabrotheeeer/physoxy/internal/storage/repository"
)

// PackagesCacheKey — ключ кеша со списком всех пакетов.
const PackagesCacheKey = "packages:all"

// UserRepository сохраняет подписку пользователя.
type UserRepository interface {
	SetSubscription(ctx context.Context, userID string, sub models.Subscription) error
	ClearSubscription(ctx context.Context, userID string) error
}

// PackageRepository читает тарифные пакеты.
type PackageRepository interface {
	GetPackage(ctx context.Context, id string) (*models.Package, error)
	ListPackages(ctx context.Context) ([]models.Package, error)
}

// Cache описывает методы для кеширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// PaymentGateway — внешний платежный шлюз.
type PaymentGateway interface {
	Charge(ctx context.Context, req paymentprovider.PaymentRequest) (*paymentprovider.PaymentResponse, error)
	Refund(ctx context.Context, req paymentprovider.PaymentRequest) (*paymentprovider.PaymentResponse, error)
}

// Service реализует бизнес-логику подписок.
type Service struct {
	users    UserRepository
	packages PackageRepository
	cache    Cache
	cacheTTL time.Duration
	payments PaymentGateway
	clock    clock.Clock
	metrics  metrics.Recorder
	log      *slog.Logger
}

// New создает Service. cache может быть nil, тогда каталог читается из базы напрямую.
func New(users UserRepository, packages PackageRepository, cache Cache, cacheTTL time.Duration,
	payments PaymentGateway, clk clock.Clock, rec metrics.Recorder, log *slog.Logger) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		users:    users,
		packages: packages,
		cache:    cache,
		cacheTTL: cacheTTL,
		payments: payments,
		clock:    clk,
		metrics:  rec,
		log:      log,
	}
}

// ChangePlan переводит пользователя на пакет packageID с оплатой billing.
//
// Текущая подписка полностью заменяется новой. Перед сохранением выполняется
// списание или возврат через платежный шлюз; после успешного платежа отмена
// запроса клиентом уже не прерывает сохранение.
func (s *Service) ChangePlan(ctx context.Context, user *models.User, packageID string, billing models.BillingType) (*models.Subscription, error) {
	const op = "subscription.ChangePlan"
	log := s.log.With(slog.String("op", op), slog.String("user_id", user.ID), slog.String("package_id", packageID))

	if !billing.Valid() {
		return nil, apperr.New(apperr.ErrValidation, "type must be either 'monthly' or 'yearly'", "invalid billing type")
	}

	pkg, err := s.packages.GetPackage(ctx, packageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "Package not found", "no package found with the given id")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.clock.Now()
	current := user.Subscription
	if current != nil && current.PlanID == pkg.ID && current.Active(now) && current.Type == billing {
		return nil, apperr.New(apperr.ErrConflict, "Already subscribed to this plan!", "user is already subscribed to this plan")
	}

	quote := Prorate(current, pkg, billing, now)
	req := paymentprovider.PaymentRequest{
		UserID:      user.ID,
		Amount:      math.Abs(quote.AmountDue),
		Description: fmt.Sprintf("%s (%s)", pkg.Name, billing),
	}

	var payment *paymentprovider.PaymentResponse
	if quote.Refund() {
		payment, err = s.payments.Refund(ctx, req)
	} else {
		payment, err = s.payments.Charge(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: payment: %w", op, err)
	}
	s.metrics.ObservePayment(string(payment.Operation), payment.Amount)

	sub := models.NewSubscription(pkg.ID, billing, quote.TargetPrice, now)
	if err = s.users.SetSubscription(context.WithoutCancel(ctx), user.ID, sub); err != nil {
		log.Error("payment done but subscription not saved", slog.String("payment_id", payment.ID), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.Subscription = &sub

	s.metrics.IncPlanChange(string(billing), string(payment.Operation))
	log.Info("plan changed",
		slog.String("billing", string(billing)),
		slog.Float64("money_left", quote.MoneyLeft),
		slog.Float64("amount_due", quote.AmountDue),
		slog.String("payment_id", payment.ID),
	)
	return &sub, nil
}

// Cancel удаляет подписку пользователя. Возврат за неиспользованный срок не выполняется.
func (s *Service) Cancel(ctx context.Context, user *models.User) error {
	const op = "subscription.Cancel"
	if err := s.users.ClearSubscription(ctx, user.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	user.Subscription = nil
	return nil
}

// Current возвращает действующую подписку пользователя или nil.
// Истекшая подписка не удаляется, а просто не возвращается.
func (s *Service) Current(user *models.User) *models.Subscription {
	return user.ActiveSubscription(s.clock.Now())
}

// ListPackages возвращает каталог пакетов, по возможности из кеша.
func (s *Service) ListPackages(ctx context.Context) ([]models.Package, error) {
	const op = "subscription.ListPackages"
	log := s.log.With(slog.String("op", op))

	if s.cache != nil {
		var cached []models.Package
		found, err := s.cache.Get(ctx, PackagesCacheKey, &cached)
		if err != nil {
			log.Warn("cache read failed", sl.Err(err))
		} else if found {
			return cached, nil
		}
	}

	list, err := s.packages.ListPackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err = s.cache.Set(ctx, PackagesCacheKey, list, s.cacheTTL); err != nil {
			log.Warn("cache write failed", sl.Err(err))
		}
	}
	return list, nil
}

// InvalidatePackages сбрасывает кеш каталога после изменений в пакетах.
func (s *Service) InvalidatePackages(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, PackagesCacheKey); err != nil {
		s.log.Warn("cache invalidate failed", slog.String("op", "subscription.InvalidatePackages"), sl.Err(err))
	}
}
