// Package login реализует HTTP-обработчик входа по email и паролю.
//
// При успешном входе access-токен возвращается в теле ответа,
// а refresh-токен выставляется в httpOnly cookie.
package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/physoxy/internal/http/cookie"
	"github.com/magabrotheeeer/physoxy/internal/http/response"
	"github.com/magabrotheeeer/physoxy/internal/lib/sl"
	"github.com/magabrotheeeer/physoxy/internal/lib/validate"
	"github.com/magabrotheeeer/physoxy/internal/models"
	"github.com/magabrotheeeer/physoxy/internal/services/auth"
)

// Request — структура входных данных для входа.
type Request struct {
	Email    string `json:"email" validate:"required,email" example:"ada@example.com"`
	Password string `json:"password" validate:"required,min=6,max=64,password" example:"Secret1!"`
}

// Response — тело успешного ответа.
type Response struct {
	Message     string            `json:"message" example:"Logged in."`
	User        models.PublicUser `json:"user"`
	AccessToken string            `json:"accessToken"`
}

// Service описывает интерфейс входа.
type Service interface {
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
}

// Handler обрабатывает HTTP-запросы для входа.
type Handler struct {
	log        *slog.Logger        // Логгер для записи операций и ошибок
	service    Service             // Сервис сессий
	validate   *validator.Validate // Валидатор для проверки входных данных
	refreshTTL time.Duration       // Время жизни cookie с refresh-токеном
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, refreshTTL time.Duration) *Handler {
	if refreshTTL <= 0 {
		refreshTTL = cookie.RefreshMaxAge
	}
	return &Handler{
		log:        log,
		service:    service,
		validate:   validate.New(),
		refreshTTL: refreshTTL,
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет email и пароль. Возвращает access-токен и ставит cookie refreshToken.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} Response "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректные данные"
// @Failure 403 {object} response.ErrorResponse "Неверный пароль"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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
	req.Email = strings.TrimSpace(req.Email)

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err))
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, r, log, err)
		return
	}

	cookie.SetRefresh(w, res.RefreshToken, h.refreshTTL)
	log.Info("login success", slog.String("user_id", res.User.ID))
	render.JSON(w, r, Response{
		Message:     "Logged in.",
		User:        res.User,
		AccessToken: res.AccessToken,
	})
}
