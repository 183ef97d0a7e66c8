// Package upgrade реализует смену тарифа текущего пользователя.
//
// Запрос ждет ответа платежного шлюза, поэтому может выполняться несколько секунд.
package upgrade

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/physoxy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/physoxy/internal/http/response"
	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/lib/sl"
	"github.com/magabrotheeeer/physoxy/internal/lib/validate"
	"github.com/magabrotheeeer/physoxy/internal/models"
)

// Request — тип оплаты нового тарифа.
type Request struct {
	Type string `json:"type" validate:"required,oneof=monthly yearly" example:"monthly"`
}

// Service меняет тариф.
type Service interface {
	ChangePlan(ctx context.Context, user *models.User, packageID string, billing models.BillingType) (*models.Subscription, error)
}

// Handler обрабатывает POST /api/package/upgrade/{id}.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validate.New()}
}

// ServeHTTP godoc
// @Summary Смена тарифа
// @Description Списывает доплату или возвращает разницу и заменяет подписку.
// @Tags Packages
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID пакета"
// @Param request body Request true "Тип оплаты"
// @Success 200 {object} models.Subscription
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse "Уже подписан"
// @Failure 404 {object} response.ErrorResponse
// @Router /package/upgrade/{id} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.packages.upgrade"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFrom(r.Context())
	if !ok {
		response.Error(w, r, log, apperr.New(apperr.ErrUnauthorized, "Please login first.", "no user in request context"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.BadRequest())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Message("Subscription type must be either monthly or yearly",
			"provided package data is invalid"))
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Message("Invalid package ID", "package id is not a valid id"))
		return
	}

	sub, err := h.service.ChangePlan(r.Context(), user, id, models.BillingType(req.Type))
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			response.ErrorWithStatus(w, r, log, err, http.StatusForbidden)
			return
		}
		response.Error(w, r, log, err)
		return
	}

	render.JSON(w, r, sub)
}
