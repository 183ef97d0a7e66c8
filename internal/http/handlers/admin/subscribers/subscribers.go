// Package subscribers отдает администратору список действующих подписчиков.
package subscribers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/physoxy/internal/http/response"
	"github.com/magabrotheeeer/physoxy/internal/models"
)

// Service читает подписчиков.
type Service interface {
	Subscribers(ctx context.Context) ([]models.Subscriber, error)
}

// Handler обрабатывает GET /api/subscribers.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Действующие подписчики
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {array} models.Subscriber
// @Router /subscribers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.subscribers"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	list, err := h.service.Subscribers(r.Context())
	if err != nil {
		response.Error(w, r, log, err)
		return
	}
	render.JSON(w, r, list)
}
