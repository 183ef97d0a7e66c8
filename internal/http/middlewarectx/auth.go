// Package middlewarectx содержит HTTP middleware сервиса.
//
// JWTMiddleware проверяет access-токен из заголовка Authorization и кладет
// пользователя в контекст запроса. AdminOnly пропускает только администраторов.
// RateLimitMiddleware ограничивает частоту запросов с одного IP.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/physoxy/internal/http/response"
	"github.com/magabrotheeeer/physoxy/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User — ключ для *models.User в контексте.
const User Key = "user"

// Authenticator проверяет access-токен и возвращает его владельца.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// WithUser возвращает контекст с пользователем.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, User, user)
}

// UserFrom извлекает пользователя, положенного JWTMiddleware.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(User).(*models.User)
	return user, ok && user != nil
}

// bearerToken извлекает токен из заголовка "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < len("Bearer") || !strings.EqualFold(h[:len("Bearer")], "Bearer") {
		return ""
	}
	return strings.TrimSpace(h[len("Bearer"):])
}

// JWTMiddleware возвращает middleware, который проверяет access-токен.
//
// Если токен отсутствует, истек или неверен, отвечает 401 с подсказкой refresh.
func JWTMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			user, err := auth.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				response.Error(w, r, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
