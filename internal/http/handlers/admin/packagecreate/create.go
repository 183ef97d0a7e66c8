// Package packagecreate добавляет тарифный пакет.
package packagecreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/physoxy/internal/http/response"
	"github.com/magabrotheeeer/physoxy/internal/lib/sl"
	"github.com/magabrotheeeer/physoxy/internal/models"
	"github.com/magabrotheeeer/physoxy/internal/services/content"
)

// Service создает пакет.
type Service interface {
	AddPackage(ctx context.Context, in content.PackageInput) (*models.Package, error)
}

// Handler обрабатывает POST /api/package/new.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Новый пакет
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body content.PackageInput true "Пакет"
// @Success 201 {object} models.Package
// @Failure 400 {object} response.ErrorResponse "Некорректные данные или имя занято"
// @Router /package/new [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.packagecreate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req content.PackageInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.BadRequest())
		return
	}

	created, err := h.service.AddPackage(r.Context(), req)
	if err != nil {
		response.Error(w, r, log, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, created)
}
