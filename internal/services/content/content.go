// Package content управляет закрытыми материалами и тарифными пакетами
// со стороны администратора, а также выдает материалы пользователям с учетом доступа.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/lib/clock"
	"github.com/magabrotheeeer/physoxy/internal/lib/validate"
	"github.com/magabrotheeeer/physoxy/internal/models"
	"github.com/magabrotheeeer/physoxy/internal/services/access"
	"github.com/magabrotheeeer/physoxy/internal/storage/repository"
)

// ResourceRepository хранит материалы.
type ResourceRepository interface {
	CreateResource(ctx context.Context, r models.Resource) (*models.Resource, error)
	GetResource(ctx context.Context, typ models.ResourceType, id string) (*models.Resource, error)
	ListResources(ctx context.Context, typ models.ResourceType) ([]models.Resource, error)
	DeleteResource(ctx context.Context, typ models.ResourceType, id string) error
}

// PackageRepository хранит тарифные пакеты.
type PackageRepository interface {
	CreatePackage(ctx context.Context, p models.Package) (*models.Package, error)
	GetPackage(ctx context.Context, id string) (*models.Package, error)
	UpdatePackage(ctx context.Context, p models.Package) (*models.Package, error)
	DeletePackage(ctx context.Context, id string) error
}

// SubscriberRepository читает действующие подписки.
type SubscriberRepository interface {
	ListActiveSubscribers(ctx context.Context, now time.Time) ([]models.Subscriber, error)
	CountActiveSubscribers(ctx context.Context, packageID string, now time.Time) (int, error)
}

// AccessChecker решает, открыт ли материал пользователю.
type AccessChecker interface {
	CanAccess(ctx context.Context, user *models.User, resource *models.Resource) (access.Decision, error)
}

// CatalogInvalidator сбрасывает кеш каталога пакетов.
type CatalogInvalidator interface {
	InvalidatePackages(ctx context.Context)
}

// Service — материалы и администрирование пакетов.
type Service struct {
	resources   ResourceRepository
	packages    PackageRepository
	subscribers SubscriberRepository
	access      AccessChecker
	catalog     CatalogInvalidator
	clock       clock.Clock
	validate    *validator.Validate
	log         *slog.Logger
}

// New создает Service.
func New(resources ResourceRepository, packages PackageRepository, subscribers SubscriberRepository,
	checker AccessChecker, catalog CatalogInvalidator, clk clock.Clock, log *slog.Logger) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		resources:   resources,
		packages:    packages,
		subscribers: subscribers,
		access:      checker,
		catalog:     catalog,
		clock:       clk,
		validate:    validate.New(),
		log:         log,
	}
}

// ResourceInput — новый материал.
type ResourceInput struct {
	Type    models.ResourceType
	Title   string `validate:"required,min=3,max=100"`
	Content string `validate:"required,min=10,max=5000"`
	PlanID  string
}

// Viewed — материал вместе с решением о доступе. При отказе Resource равен nil.
type Viewed struct {
	Resource *models.Resource
	Decision access.Decision
}

// ListResources возвращает материалы типа typ без содержимого.
func (s *Service) ListResources(ctx context.Context, typ models.ResourceType) ([]models.Resource, error) {
	const op = "content.ListResources"
	list, err := s.resources.ListResources(ctx, typ)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// GetResource возвращает материал, если он доступен пользователю.
func (s *Service) GetResource(ctx context.Context, user *models.User, typ models.ResourceType, id string) (Viewed, error) {
	const op = "content.GetResource"
	res, err := s.resources.GetResource(ctx, typ, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Viewed{}, notFound(typ)
		}
		return Viewed{}, fmt.Errorf("%s: %w", op, err)
	}

	dec, err := s.access.CanAccess(ctx, user, res)
	if err != nil {
		return Viewed{}, fmt.Errorf("%s: %w", op, err)
	}
	if !dec.Granted {
		return Viewed{Decision: dec}, nil
	}
	return Viewed{Resource: res, Decision: dec}, nil
}

// CreateResource сохраняет материал. Указанный план должен существовать.
func (s *Service) CreateResource(ctx context.Context, in ResourceInput) (*models.Resource, error) {
	const op = "content.CreateResource"
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.PlanID = strings.TrimSpace(in.PlanID)

	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.Wrap(apperr.ErrValidation, validate.Message(err),
			fmt.Sprintf("provided %s data is invalid", in.Type), err)
	}

	r := models.Resource{Type: in.Type, Title: in.Title, Content: in.Content}
	if in.PlanID != "" {
		if _, err := s.packages.GetPackage(ctx, in.PlanID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperr.New(apperr.ErrNotFound, "Package not found", "package id is not found")
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		r.PlanID = &in.PlanID
	}

	created, err := s.resources.CreateResource(ctx, r)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "Package not found", "package id is not found")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("resource created",
		slog.String("op", op),
		slog.String("type", string(created.Type)),
		slog.String("id", created.ID),
	)
	return created, nil
}

// DeleteResource удаляет материал.
func (s *Service) DeleteResource(ctx context.Context, typ models.ResourceType, id string) error {
	const op = "content.DeleteResource"
	if err := s.resources.DeleteResource(ctx, typ, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(typ)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Subscribers возвращает пользователей с действующей подпиской.
func (s *Service) Subscribers(ctx context.Context) ([]models.Subscriber, error) {
	const op = "content.Subscribers"
	list, err := s.subscribers.ListActiveSubscribers(ctx, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if list == nil {
		list = []models.Subscriber{}
	}
	return list, nil
}

func notFound(typ models.ResourceType) error {
	name := string(typ)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return apperr.New(apperr.ErrNotFound, name+" not found", fmt.Sprintf("%s id is not found", typ))
}
