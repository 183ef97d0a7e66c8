// Package register реализует HTTP-обработчик регистрации через magic-link.
package register

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/physoxy/internal/http/response"
	"github.com/magabrotheeeer/physoxy/internal/lib/sl"
	"github.com/magabrotheeeer/physoxy/internal/lib/validate"
	"github.com/magabrotheeeer/physoxy/internal/services/auth"
)

// Request — входные данные для регистрации.
type Request struct {
	Name     string `json:"name" validate:"required,min=3,max=50,personname" example:"Ada Lovelace"`
	Email    string `json:"email" validate:"required,email" example:"ada@example.com"`
	Password string `json:"password" validate:"required,min=6,max=64,password" example:"Secret1!"`
}

// Service описывает регистрацию.
type Service interface {
	Register(ctx context.Context, in auth.RegisterInput) error
}

// Handler обрабатывает POST /api/register.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Проверяет данные и отправляет письмо со ссылкой подтверждения.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные регистрации"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректные данные или email занят"
// @Failure 429 {object} response.ErrorResponse "Слишком частые попытки"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.BadRequest())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err))
		return
	}

	err := h.service.Register(r.Context(), auth.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		response.Error(w, r, log, err)
		return
	}

	log.Info("verification link sent", slog.String("email", auth.NormalizeEmail(req.Email)))
	render.JSON(w, r, response.Message(
		"Verification link has been sent to your email. Please check your inbox.",
		"magic link sent to the provided email",
	))
}
