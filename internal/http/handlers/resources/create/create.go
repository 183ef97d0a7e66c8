// Package create добавляет материал. Доступен только администраторам.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/physoxy/internal/http/response"
	"github.com/magabrotheeeer/physoxy/internal/lib/sl"
	"github.com/magabrotheeeer/physoxy/internal/models"
	"github.com/magabrotheeeer/physoxy/internal/services/content"
)

// Request — новый материал. Plan — id пакета, без него материал открыт всем.
type Request struct {
	Title   string `json:"title" example:"Getting started"`
	Content string `json:"content" example:"Long enough content body."`
	Plan    string `json:"plan,omitempty"`
}

// Service сохраняет материал.
type Service interface {
	CreateResource(ctx context.Context, in content.ResourceInput) (*models.Resource, error)
}

// Handler обрабатывает POST /api/{type}/new.
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
// @Summary Новый материал
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Материал"
// @Success 200 {object} models.Resource
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Пакет не найден"
// @Router /blog/new [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.resources.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("type", string(h.typ)),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.BadRequest())
		return
	}
	if req.Plan != "" {
		if _, err := uuid.Parse(req.Plan); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Message("Invalid package ID", "package id is not valid"))
			return
		}
	}

	created, err := h.service.CreateResource(r.Context(), content.ResourceInput{
		Type:    h.typ,
		Title:   req.Title,
		Content: req.Content,
		PlanID:  req.Plan,
	})
	if err != nil {
		response.Error(w, r, log, err)
		return
	}
	render.JSON(w, r, created)
}
