package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/lib/jwt"
	"github.com/magabrotheeeer/physoxy/internal/lib/password"
	"github.com/magabrotheeeer/physoxy/internal/metrics"
	"github.com/magabrotheeeer/physoxy/internal/models"
)

// LoginResult — токены и публичные данные пользователя после входа.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         models.PublicUser
}

// Login проверяет пароль, выпускает пару токенов и перезаписывает сохраненный refresh-токен.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*LoginResult, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			s.metrics.IncLogin(metrics.OutcomeRejected)
			return nil, apperr.New(apperr.ErrNotFound, "User not found. Please register first.", "no user registered with this email")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			s.metrics.IncLogin(metrics.OutcomeRejected)
			return nil, apperr.New(apperr.ErrForbidden, "Incorrect password.", "entered password is incorrect")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	payload := jwt.Payload{Name: user.Name, Email: user.Email}
	access, err := s.tokens.Issue(jwt.KindAccess, payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	refresh, err := s.tokens.Issue(jwt.KindRefresh, payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = s.users.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.IncLogin(metrics.OutcomeOK)
	s.log.Info("user logged in", slog.String("op", op), slog.String("user_id", user.ID))
	return &LoginResult{AccessToken: access, RefreshToken: refresh, User: user.Public()}, nil
}

// Refresh выпускает новый access-токен, если refreshToken совпадает с сохраненным.
// Сам refresh-токен не меняется.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	const op = "auth.Refresh"

	if refreshToken == "" {
		s.metrics.IncRefresh(metrics.OutcomeRejected)
		return "", apperr.New(apperr.ErrUnauthorized, "Please login first.", "no refresh token is found in request cookies").WithRedirect()
	}

	payload, err := s.tokens.Verify(jwt.KindRefresh, refreshToken)
	if err != nil {
		s.metrics.IncRefresh(metrics.OutcomeRejected)
		return "", refreshTokenError(err)
	}

	user, err := s.users.GetUserByEmail(ctx, payload.Email)
	if err != nil && !isNotFound(err) {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if user == nil || user.RefreshToken == "" || user.RefreshToken != refreshToken {
		s.metrics.IncRefresh(metrics.OutcomeRejected)
		return "", apperr.New(apperr.ErrUnauthorized, "Invalid refresh token.", "user refresh token doesnt match any user").WithRedirect()
	}

	access, err := s.tokens.Issue(jwt.KindAccess, jwt.Payload{Name: user.Name, Email: user.Email})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.IncRefresh(metrics.OutcomeOK)
	return access, nil
}

// Logout стирает сохраненный refresh-токен. Повторный вызов безопасен.
func (s *Service) Logout(ctx context.Context, user *models.User) error {
	const op = "auth.Logout"
	if err := s.users.ClearRefreshToken(ctx, user.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	user.RefreshToken = ""
	return nil
}

// Authenticate проверяет access-токен и возвращает его владельца.
//
// Ошибки токена помечены подсказкой refresh: клиент может обновить сессию.
// Если пользователь из токена не найден, подсказки нет.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	const op = "auth.Authenticate"

	if accessToken == "" {
		return nil, apperr.New(apperr.ErrUnauthorized, "Please login first.", "no access token is provided with request headers").WithRefresh()
	}

	payload, err := s.tokens.Verify(jwt.KindAccess, accessToken)
	if err != nil {
		return nil, accessTokenError(err)
	}

	user, err := s.users.GetUserByEmail(ctx, payload.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.New(apperr.ErrUnauthorized, "User not found.", "no user found for the provided access token")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func refreshTokenError(err error) error {
	var e *apperr.Error
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		e = apperr.Wrap(apperr.ErrUnauthorized, "Session expired, Please login.", "refresh token has been expired", err)
	case errors.Is(err, jwt.ErrTokenNotYetValid):
		e = apperr.Wrap(apperr.ErrUnauthorized, "The session is not active yet Please wait.", "refresh token is not active yet", err)
	default:
		e = apperr.Wrap(apperr.ErrUnauthorized, "Invalid credentials, Please login.", "invalid refresh token is provided", err)
	}
	return e.WithRedirect()
}

func accessTokenError(err error) error {
	var e *apperr.Error
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		e = apperr.Wrap(apperr.ErrUnauthorized, "Refreshing session.", "the access token has been expired, refresh required", err)
	case errors.Is(err, jwt.ErrTokenNotYetValid):
		e = apperr.Wrap(apperr.ErrUnauthorized, "Please wait.", "access token is not active yet", err)
	default:
		e = apperr.Wrap(apperr.ErrUnauthorized, "Refreshing session.", "invalid access token provided, refresh required", err)
	}
	return e.WithRefresh()
}
