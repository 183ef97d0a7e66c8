// Package throttle ограничивает частоту отправки magic-link на один email.
//
// Пока число попыток меньше MaxTries, между попытками должно пройти SmallCooldown.
// Исчерпав попытки, пользователь ждет BigCooldown, после чего счетчик сбрасывается в 1.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/physoxy/internal/config"
	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/models"
	"github.com/magabrotheeeer/physoxy/internal/storage/repository"
)

// Reason — причина отказа.
type Reason string

const (
	ReasonShortCooldown Reason = "short_cooldown"
	ReasonLongCooldown  Reason = "long_cooldown"
)

const (
	msgShortCooldown = "Please wait before trying again."
	msgLongCooldown  = "Too many attempts. Try again later."
)

// Limits — параметры ограничения.
type Limits struct {
	MaxTries      int
	SmallCooldown time.Duration
	BigCooldown   time.Duration
}

// DefaultLimits: 3 попытки, 2 минуты между ними, 30 минут после исчерпания.
var DefaultLimits = Limits{MaxTries: 3, SmallCooldown: 2 * time.Minute, BigCooldown: 30 * time.Minute}

// LimitsFromConfig строит Limits из секции throttle.
func LimitsFromConfig(cfg config.Throttle) Limits {
	return Limits{MaxTries: cfg.MaxTries, SmallCooldown: cfg.SmallCooldown, BigCooldown: cfg.BigCooldown}
}

// Decision — результат проверки одной попытки.
type Decision struct {
	Allowed    bool
	Reason     Reason
	RetryAfter time.Duration
	// Next — запись, которую нужно сохранить при Allowed.
	Next models.PendingRegistration
}

// Decide принимает решение по предыдущей записи prev (nil, если попыток не было).
func Decide(prev *models.PendingRegistration, email string, now time.Time, l Limits) Decision {
	if prev == nil {
		return Decision{Allowed: true, Next: models.PendingRegistration{Email: email, Attempts: 1, AttemptAt: now}}
	}

	elapsed := now.Sub(prev.AttemptAt)
	if prev.Attempts >= l.MaxTries {
		if elapsed < l.BigCooldown {
			return Decision{Reason: ReasonLongCooldown, RetryAfter: l.BigCooldown - elapsed}
		}
		return Decision{Allowed: true, Next: models.PendingRegistration{Email: email, Attempts: 1, AttemptAt: now}}
	}

	if elapsed < l.SmallCooldown {
		return Decision{Reason: ReasonShortCooldown, RetryAfter: l.SmallCooldown - elapsed}
	}
	return Decision{Allowed: true, Next: models.PendingRegistration{Email: email, Attempts: prev.Attempts + 1, AttemptAt: now}}
}

// Repository — хранилище незавершенных регистраций.
type Repository interface {
	GetPending(ctx context.Context, email string) (*models.PendingRegistration, error)
	SavePending(ctx context.Context, p models.PendingRegistration) error
}

// Guard применяет Decide к записям из хранилища.
type Guard struct {
	repo   Repository
	limits Limits
}

// New создает Guard.
func New(repo Repository, limits Limits) *Guard {
	return &Guard{repo: repo, limits: limits}
}

// RegisterAttempt фиксирует попытку для email в момент now. При отказе
// возвращает *apperr.Error класса ErrThrottled с RetryAfter.
func (g *Guard) RegisterAttempt(ctx context.Context, email string, now time.Time) error {
	const op = "throttle.RegisterAttempt"

	prev, err := g.repo.GetPending(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, err)
		}
		prev = nil
	}

	d := Decide(prev, email, now, g.limits)
	if !d.Allowed {
		return rejection(d, g.limits)
	}

	if err = g.repo.SavePending(ctx, d.Next); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func rejection(d Decision, l Limits) *apperr.Error {
	if d.Reason == ReasonLongCooldown {
		return apperr.Throttled(msgLongCooldown, waitDetails(l.BigCooldown), d.RetryAfter)
	}
	return apperr.Throttled(msgShortCooldown, waitDetails(l.SmallCooldown), d.RetryAfter)
}

func waitDetails(cooldown time.Duration) string {
	return fmt.Sprintf("wait %d mins before trying again", int(cooldown.Minutes()))
}
