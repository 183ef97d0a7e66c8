// Package cancel отменяет подписку текущего пользователя.
package cancel

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/physoxy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/physoxy/internal/http/response"
	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/models"
)

// Service удаляет подписку.
type Service interface {
	Cancel(ctx context.Context, user *models.User) error
}

// Handler обрабатывает DELETE /api/package/cancel.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отмена подписки
// @Tags Packages
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router /package/cancel [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.packages.cancel"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFrom(r.Context())
	if !ok {
		response.Error(w, r, log, apperr.New(apperr.ErrUnauthorized, "Please login first.", "no user in request context"))
		return
	}
	if err := h.service.Cancel(r.Context(), user); err != nil {
		response.Error(w, r, log, err)
		return
	}

	log.Info("subscription cancelled", slog.String("user_id", user.ID))
	render.JSON(w, r, struct{}{})
}
