// Package access решает, открыт ли закрытый материал пользователю.
package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/physoxy/internal/lib/clock"
	"github.com/magabrotheeeer/physoxy/internal/models"
	"github.com/magabrotheeeer/physoxy/internal/storage/repository"
)

// Decision — результат проверки доступа.
type Decision struct {
	Granted bool
	// Required — пакет, нужный для доступа. Заполнен только при отказе.
	Required *models.Package
}

// Granted — доступ открыт.
var Granted = Decision{Granted: true}

// UpgradeRequired — доступ закрыт, нужен пакет required.
func UpgradeRequired(required *models.Package) Decision {
	return Decision{Required: required}
}

// Decide сравнивает месячные цены пакета пользователя и пакета материала.
// current равен nil, если действующей подписки нет или ее пакет удален.
func Decide(role models.Role, current, required *models.Package) Decision {
	if role.AtLeast(models.RoleAdmin) || required == nil {
		return Granted
	}
	if current == nil || current.Pricing.Monthly < required.Pricing.Monthly {
		return UpgradeRequired(required)
	}
	return Granted
}

// PackageRepository читает пакеты по id.
type PackageRepository interface {
	GetPackage(ctx context.Context, id string) (*models.Package, error)
}

// Policy проверяет доступ к материалам.
type Policy struct {
	packages PackageRepository
	clock    clock.Clock
}

// New создает Policy.
func New(packages PackageRepository, clk clock.Clock) *Policy {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Policy{packages: packages, clock: clk}
}

// CanAccess решает, может ли user читать resource.
// Материал, пакет которого удален, считается открытым.
func (p *Policy) CanAccess(ctx context.Context, user *models.User, resource *models.Resource) (Decision, error) {
	const op = "access.CanAccess"
	if user.Role.AtLeast(models.RoleAdmin) || !resource.Gated() {
		return Granted, nil
	}

	required, err := p.lookup(ctx, *resource.PlanID)
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	if required == nil {
		return Granted, nil
	}

	current, err := p.currentPackage(ctx, user, p.clock.Now())
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	return Decide(user.Role, current, required), nil
}

func (p *Policy) currentPackage(ctx context.Context, user *models.User, now time.Time) (*models.Package, error) {
	sub := user.ActiveSubscription(now)
	if sub == nil {
		return nil, nil
	}
	return p.lookup(ctx, sub.PlanID)
}

// lookup возвращает nil без ошибки для несуществующего пакета.
func (p *Policy) lookup(ctx context.Context, id string) (*models.Package, error) {
	pkg, err := p.packages.GetPackage(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return pkg, err
}
