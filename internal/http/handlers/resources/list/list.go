// Package list отдает материалы одного типа без содержимого.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/physoxy/internal/http/response"
	"github.com/magabrotheeeer/physoxy/internal/models"
)

// Service читает материалы.
type Service interface {
	ListResources(ctx context.Context, typ models.ResourceType) ([]models.Resource, error)
}

// Handler обрабатывает GET /api/{type}s.
type Handler struct {
	log     *slog.Logger
	service Service
	typ     models.ResourceType
}

// New создает Handler для материалов типа typ.
func New(log *slog.Logger, service Service, typ models.ResourceType) *Handler {
	return &Handler{log: log, service: service, typ: typ}
}

// ServeHTTP godoc
// @Summary Список материалов
// @Description Материалы типа blog, event или course без содержимого, с названием нужного пакета.
// @Tags Content
// @Produce  json
// @Success 200 {array} models.Resource
// @Router /blogs [get]
// @Router /events [get]
// @Router /courses [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.resources.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("type", string(h.typ)),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	list, err := h.service.ListResources(r.Context(), h.typ)
	if err != nil {
		response.Error(w, r, log, err)
		return
	}
	render.JSON(w, r, list)
}
