// Package packagedelete удаляет тарифный пакет без действующих подписчиков.
package packagedelete

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

// Service удаляет пакет.
type Service interface {
	DeletePackage(ctx context.Context, id string) (*models.Package, error)
}

// Handler обрабатывает DELETE /api/package/delete/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление пакета
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID пакета"
// @Success 200 {object} models.Package
// @Failure 403 {object} response.ErrorResponse "Пакет используется"
// @Failure 404 {object} response.ErrorResponse
// @Router /package/delete/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.packagedelete"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Message("Invalid package ID", "package id is not a valid id"))
		return
	}

	deleted, err := h.service.DeletePackage(r.Context(), id)
	if err != nil {
		response.Error(w, r, log, err)
		return
	}
	render.JSON(w, r, deleted)
}
