// Package list отдает каталог тарифных пакетов.
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

// Service читает каталог.
type Service interface {
	ListPackages(ctx context.Context) ([]models.Package, error)
}

// Handler обрабатывает GET /api/packages.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каталог пакетов
// @Tags Packages
// @Produce  json
// @Success 200 {array} models.Package
// @Router /packages [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.packages.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	pkgs, err := h.service.ListPackages(r.Context())
	if err != nil {
		response.Error(w, r, log, err)
		return
	}
	render.JSON(w, r, pkgs)
}
