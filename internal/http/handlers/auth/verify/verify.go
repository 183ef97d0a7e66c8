// Package verify реализует страницу подтверждения email по ссылке из письма.
package verify

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/physoxy/internal/http/response"
	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/lib/sl"
	"github.com/magabrotheeeer/physoxy/internal/models"
)

//go:embed templates/verify.html
var templates embed.FS

var page = template.Must(template.ParseFS(templates, "templates/verify.html"))

// Service завершает регистрацию по magic-токену.
type Service interface {
	VerifyMagicLink(ctx context.Context, token string) (*models.User, error)
}

type view struct {
	Brand    string
	Title    string
	Message  string
	Success  bool
	LoginURL string
}

// Handler обрабатывает GET /api/verify?token=.
type Handler struct {
	log       *slog.Logger
	service   Service
	brand     string
	clientURL string
}

// New создает Handler. clientURL — адрес фронтенда для ссылки на вход.
func New(log *slog.Logger, service Service, brand, clientURL string) *Handler {
	return &Handler{log: log, service: service, brand: brand, clientURL: clientURL}
}

// ServeHTTP godoc
// @Summary Подтверждение email
// @Description Создает пользователя по токену из письма и отдает HTML-страницу с результатом.
// @Tags Auth
// @Produce  html
// @Param token query string true "Magic-link токен"
// @Success 200 {string} string "Страница успеха"
// @Failure 400 {string} string "Нет токена"
// @Failure 401 {string} string "Токен истек или неверен"
// @Failure 404 {string} string "Регистрация не найдена"
// @Router /verify [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	v := view{Brand: h.brand, LoginURL: h.clientURL + "/login"}
	status := http.StatusOK

	user, err := h.service.VerifyMagicLink(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		status = response.StatusFor(err)
		v.Title = "Verification failed"
		if e, ok := apperr.As(err); ok && status != http.StatusInternalServerError {
			log.Info("verification rejected", slog.String("details", e.Details))
			v.Message = e.Message
		} else {
			log.Error("verification failed", sl.Err(err))
			v.Message = response.Internal.Message
		}
	} else {
		log.Info("email verified", slog.String("user_id", user.ID))
		v.Success = true
		v.Title = "Email verified"
		v.Message = "Your account is ready, " + user.Name + ". You can now log in."
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err = page.Execute(w, v); err != nil {
		log.Error("failed to render page", sl.Err(err))
	}
}
