// Package logout реализует выход пользователя.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/physoxy/internal/http/cookie"
	"github.com/magabrotheeeer/physoxy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/physoxy/internal/http/response"
	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/models"
)

// Service стирает сохраненный refresh-токен.
type Service interface {
	Logout(ctx context.Context, user *models.User) error
}

// Handler обрабатывает POST /api/logout.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Выход
// @Description Стирает refresh-токен пользователя и cookie.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFrom(r.Context())
	if !ok {
		response.Error(w, r, log, apperr.New(apperr.ErrUnauthorized, "Please login first.", "no user in request context"))
		return
	}

	if err := h.service.Logout(r.Context(), user); err != nil {
		response.Error(w, r, log, err)
		return
	}

	cookie.ClearRefresh(w)
	log.Info("user logged out", slog.String("user_id", user.ID))
	render.JSON(w, r, response.Message("Logged out.", "refresh token cleared"))
}
