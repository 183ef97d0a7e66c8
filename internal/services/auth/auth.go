// Package auth реализует регистрацию через magic-link и управление сессиями:
// вход, обновление access-токена, выход и проверку access-токена.
//
// У пользователя хранится ровно один refresh-токен. Новый вход перезаписывает его,
// выход стирает, поэтому все ранее выданные refresh-токены сразу перестают работать.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/lib/clock"
	"github.com/magabrotheeeer/physoxy/internal/lib/jwt"
	"github.com/magabrotheeeer/physoxy/internal/lib/password"
	"github.com/magabrotheeeer/physoxy/internal/lib/sl"
	"github.com/magabrotheeeer/physoxy/internal/metrics"
	"github.com/magabrotheeeer/physoxy/internal/models"
)

// UserRepository описывает хранилище пользователей и незавершенных регистраций.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetPending(ctx context.Context, email string) (*models.PendingRegistration, error)
	CreateUserFromPending(ctx context.Context, user models.User) (*models.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	ClearRefreshToken(ctx context.Context, userID string) error
}

// Throttler ограничивает частоту отправки magic-link.
type Throttler interface {
	RegisterAttempt(ctx context.Context, email string, now time.Time) error
}

// Mailer отправляет письмо со ссылкой подтверждения.
type Mailer interface {
	SendVerification(ctx context.Context, to, name, link string) error
}

// Deps — зависимости Service.
type Deps struct {
	Users     UserRepository
	Throttle  Throttler
	Mailer    Mailer
	Tokens    jwt.Maker
	Clock     clock.Clock
	Metrics   metrics.Recorder
	Log       *slog.Logger
	PublicURL string

	// Hash хеширует пароль; по умолчанию password.GetHash.
	Hash func(string) (string, error)
}

// Service — регистрация и сессии.
type Service struct {
	users     UserRepository
	throttle  Throttler
	mailer    Mailer
	tokens    jwt.Maker
	clock     clock.Clock
	metrics   metrics.Recorder
	log       *slog.Logger
	publicURL string
	hash      func(string) (string, error)
}

// New создает Service.
func New(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.Nop{}
	}
	if d.Hash == nil {
		d.Hash = password.GetHash
	}
	return &Service{
		users:     d.Users,
		throttle:  d.Throttle,
		mailer:    d.Mailer,
		tokens:    d.Tokens,
		clock:     d.Clock,
		metrics:   d.Metrics,
		log:       d.Log,
		publicURL: strings.TrimRight(d.PublicURL, "/"),
		hash:      d.Hash,
	}
}

const avatarURL = "https://api.dicebear.com/9.x/thumbs/svg?seed="

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// VerificationLink строит ссылку подтверждения для magic-токена.
func (s *Service) VerificationLink(token string) string {
	return s.publicURL + "/api/verify?token=" + url.QueryEscape(token)
}

// RegisterInput — данные формы регистрации.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register проверяет, что email свободен и не исчерпан лимит попыток, и отправляет
// письмо с magic-link. В токен кладется bcrypt-хеш пароля, а не сам пароль.
// Ошибка доставки письма только логируется.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	const op = "auth.Register"
	log := s.log.With(slog.String("op", op))
	email := NormalizeEmail(in.Email)

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		s.metrics.IncRegistration(metrics.OutcomeRejected)
		return apperr.New(apperr.ErrConflict, "This email is already in use.", "The provided email is already registered.")
	case !isNotFound(err):
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = s.throttle.RegisterAttempt(ctx, email, s.clock.Now()); err != nil {
		if errors.Is(err, apperr.ErrThrottled) {
			s.metrics.IncRegistration(metrics.OutcomeThrottled)
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	pwHash, err := s.hash(in.Password)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	token, err := s.tokens.Issue(jwt.KindMagic, jwt.Payload{Name: strings.TrimSpace(in.Name), Email: email, PasswordHash: pwHash})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = s.mailer.SendVerification(ctx, email, strings.TrimSpace(in.Name), s.VerificationLink(token)); err != nil {
		log.Error("failed to send verification mail", slog.String("email", email), sl.Err(err))
	}
	s.metrics.IncRegistration(metrics.OutcomeOK)
	return nil
}

// VerifyMagicLink завершает регистрацию по токену из письма.
//
// Если незавершенной регистрации уже нет, а пользователь существует, ссылка считается
// использованной повторно и возвращается существующий пользователь.
func (s *Service) VerifyMagicLink(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.VerifyMagicLink"
	if token == "" {
		s.metrics.IncVerification(metrics.OutcomeRejected)
		return nil, apperr.New(apperr.ErrValidation, "Invalid or missing token.", "verification token is missing")
	}

	payload, err := s.tokens.Verify(jwt.KindMagic, token)
	if err != nil {
		s.metrics.IncVerification(metrics.OutcomeRejected)
		return nil, magicTokenError(err)
	}

	email := NormalizeEmail(payload.Email)
	if _, err = s.users.GetPending(ctx, email); err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		existing, err := s.users.GetUserByEmail(ctx, email)
		if err == nil {
			s.metrics.IncVerification(metrics.OutcomeOK)
			return existing, nil
		}
		if isNotFound(err) {
			s.metrics.IncVerification(metrics.OutcomeRejected)
			return nil, apperr.New(apperr.ErrNotFound, "User not found for this token.", "no pending registration for this email")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.users.CreateUserFromPending(ctx, models.User{
		Name:         payload.Name,
		Email:        email,
		PasswordHash: payload.PasswordHash,
		Role:         models.RoleUser,
		Avatar:       avatarURL + uuid.NewString(),
	})
	if err != nil {
		if isAlreadyExists(err) {
			// ссылку открыли дважды одновременно
			existing, getErr := s.users.GetUserByEmail(ctx, email)
			if getErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.IncVerification(metrics.OutcomeOK)
	s.log.Info("user registered", slog.String("op", op), slog.String("user_id", created.ID))
	return created, nil
}

func magicTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperr.Wrap(apperr.ErrUnauthorized, "This link has expired. Please request a new one.", "magic link token expired", err)
	case errors.Is(err, jwt.ErrTokenNotYetValid):
		return apperr.Wrap(apperr.ErrUnauthorized, "This link is not active yet. Try again later.", "magic link token not active yet", err)
	default:
		return apperr.Wrap(apperr.ErrUnauthorized, "Invalid verification link.", "magic link token invalid", err)
	}
}
