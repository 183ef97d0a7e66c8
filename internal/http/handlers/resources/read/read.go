// Package read отдает материал целиком, если тариф пользователя позволяет.
//
// При нехватке тарифа отвечает 403 и сообщает, какой пакет нужен.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/physoxy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/physoxy/internal/http/response"
	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/models"
	"github.com/magabrotheeeer/physoxy/internal/services/content"
)

// UpgradeResponse — отказ с пакетом, который нужно купить.
type UpgradeResponse struct {
	response.Response
	Package *models.Package `json:"package"`
}

// Service выдает материал с решением о доступе.
type Service interface {
	GetResource(ctx context.Context, user *models.User, typ models.ResourceType, id string) (content.Viewed, error)
}

// Handler обрабатывает GET /api/{type}s/{id}.
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
// @Summary Материал целиком
// @Tags Content
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID материала"
// @Success 200 {object} models.Resource
// @Failure 403 {object} UpgradeResponse "Нужен тариф выше"
// @Failure 404 {object} response.ErrorResponse
// @Router /blogs/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.resources.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("type", string(h.typ)),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFrom(r.Context())
	if !ok {
		response.Error(w, r, log, apperr.New(apperr.ErrUnauthorized, "Please login first.", "no user in request context"))
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Message("Invalid "+string(h.typ)+" ID", string(h.typ)+" id is not a valid id"))
		return
	}

	viewed, err := h.service.GetResource(r.Context(), user, h.typ, id)
	if err != nil {
		response.Error(w, r, log, err)
		return
	}
	if !viewed.Decision.Granted {
		log.Info("upgrade required", slog.String("user_id", user.ID), slog.String("package_id", viewed.Decision.Required.ID))
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, UpgradeResponse{
			Response: response.Message("Upgrade your plan to access this content.", "current plan does not include this "+string(h.typ)),
			Package:  viewed.Decision.Required,
		})
		return
	}
	render.JSON(w, r, viewed.Resource)
}
