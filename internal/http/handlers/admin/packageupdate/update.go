// Package packageupdate обновляет тарифный пакет. Незаполненные поля сохраняют прежние значения.
package packageupdate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/physoxy/internal/http/response"
	"github.com/magabrotheeeer/physoxy/internal/lib/sl"
	"github.com/magabrotheeeer/physoxy/internal/models"
	"github.com/magabrotheeeer/physoxy/internal/services/content"
)

// Service обновляет пакет.
type Service interface {
	UpdatePackage(ctx context.Context, id string, patch content.PackageInput) (*models.Package, error)
}

// Handler обрабатывает PUT /api/package/update/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Обновление пакета
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID пакета"
// @Param request body content.PackageInput true "Новые поля"
// @Success 200 {object} models.Package
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /package/update/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.packageupdate"

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

	var req content.PackageInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.BadRequest())
		return
	}

	updated, err := h.service.UpdatePackage(r.Context(), id, req)
	if err != nil {
		response.Error(w, r, log, err)
		return
	}
	render.JSON(w, r, updated)
}
