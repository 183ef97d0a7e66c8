package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/lib/validate"
	"github.com/magabrotheeeer/physoxy/internal/models"
	"github.com/magabrotheeeer/physoxy/internal/storage/repository"
)

// PricingInput — цены пакета. Указатели отличают отсутствующую цену от нулевой.
type PricingInput struct {
	Monthly *float64 `json:"monthly" validate:"required,gte=0"`
	Yearly  *float64 `json:"yearly" validate:"required,gte=0"`
}

// PackageInput — поля пакета. При обновлении пустые поля берутся из текущего пакета.
type PackageInput struct {
	Name        string        `json:"name" validate:"required,letters"`
	Description string        `json:"description" validate:"required,min=10,max=200"`
	Pricing     *PricingInput `json:"pricing" validate:"required"`
}

func (in PackageInput) toModel(id string) models.Package {
	return models.Package{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Pricing:     models.Pricing{Monthly: *in.Pricing.Monthly, Yearly: *in.Pricing.Yearly},
	}
}

func (s *Service) checkPackage(in PackageInput) error {
	if err := s.validate.Struct(in); err != nil {
		return apperr.Wrap(apperr.ErrValidation, validate.Message(err), "provided package data is invalid", err)
	}
	return nil
}

func packageNotFound() error {
	return apperr.New(apperr.ErrNotFound, "Package not found", "package with this id does not exist")
}

// AddPackage создает пакет. Имя пакета уникально.
func (s *Service) AddPackage(ctx context.Context, in PackageInput) (*models.Package, error) {
	const op = "content.AddPackage"
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.checkPackage(in); err != nil {
		return nil, err
	}

	created, err := s.packages.CreatePackage(ctx, in.toModel(""))
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperr.New(apperr.ErrConflict, "Package already exists", "package with this name already exists")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.catalog.InvalidatePackages(ctx)
	s.log.Info("package created", slog.String("op", op), slog.String("id", created.ID), slog.String("name", created.Name))
	return created, nil
}

// UpdatePackage дополняет patch полями текущего пакета и сохраняет результат.
func (s *Service) UpdatePackage(ctx context.Context, id string, patch PackageInput) (*models.Package, error) {
	const op = "content.UpdatePackage"
	current, err := s.packages.GetPackage(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, packageNotFound()
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	merged := mergePackage(current, patch)
	if err = s.checkPackage(merged); err != nil {
		return nil, err
	}

	updated, err := s.packages.UpdatePackage(ctx, merged.toModel(id))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, packageNotFound()
		case errors.Is(err, repository.ErrAlreadyExists):
			return nil, apperr.New(apperr.ErrConflict, "Package already exists", "package with this name already exists")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.catalog.InvalidatePackages(ctx)
	return updated, nil
}

func mergePackage(current *models.Package, patch PackageInput) PackageInput {
	out := PackageInput{
		Name:        strings.TrimSpace(patch.Name),
		Description: strings.TrimSpace(patch.Description),
		Pricing:     &PricingInput{Monthly: &current.Pricing.Monthly, Yearly: &current.Pricing.Yearly},
	}
	if out.Name == "" {
		out.Name = current.Name
	}
	if out.Description == "" {
		out.Description = current.Description
	}
	if patch.Pricing != nil {
		if patch.Pricing.Monthly != nil {
			out.Pricing.Monthly = patch.Pricing.Monthly
		}
		if patch.Pricing.Yearly != nil {
			out.Pricing.Yearly = patch.Pricing.Yearly
		}
	}
	return out
}

// DeletePackage удаляет пакет, если на него нет действующих подписок.
func (s *Service) DeletePackage(ctx context.Context, id string) (*models.Package, error) {
	const op = "content.DeletePackage"
	pkg, err := s.packages.GetPackage(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, packageNotFound()
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	inUse, err := s.subscribers.CountActiveSubscribers(ctx, id, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if inUse > 0 {
		return nil, apperr.New(apperr.ErrForbidden, "Package is in use and cannot be deleted", "package is in use by some users")
	}

	if err = s.packages.DeletePackage(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, packageNotFound()
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.catalog.InvalidatePackages(ctx)
	s.log.Info("package deleted", slog.String("op", op), slog.String("id", id))
	return pkg, nil
}
