// Package remove удаляет материал. Доступен только администраторам.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/physoxy/internal/http/response"
	"github.com/magabrotheeeer/physoxy/internal/models"
)

// Service удаляет материал.
type Service interface {
	DeleteResource(ctx context.Context, typ models.ResourceType, id string) error
}

// Handler обрабатывает DELETE /api/{type}/{id}.
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
// @Summary Удаление материала
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID материала"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /blog/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.resources.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("type", string(h.typ)),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Message("Invalid "+string(h.typ)+" ID", "invalid "+string(h.typ)+" id"))
		return
	}

	if err := h.service.DeleteResource(r.Context(), h.typ, id); err != nil {
		response.Error(w, r, log, err)
		return
	}

	log.Info("resource deleted", slog.String("id", id))
	render.JSON(w, r, response.Message("Deleted.", string(h.typ)+" "+id+" deleted"))
}
