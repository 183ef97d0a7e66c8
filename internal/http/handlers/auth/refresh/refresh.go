// Package refresh выдает новый access-токен по refresh-токену из cookie.
package refresh

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/physoxy/internal/http/cookie"
	"github.com/magabrotheeeer/physoxy/internal/http/response"
)

// Response — новый access-токен.
type Response struct {
	AccessToken string `json:"accessToken"`
}

// Service выпускает access-токен по refresh-токену.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// Handler обрабатывает POST /api/refresh.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Обновление access-токена
// @Description Проверяет cookie refreshToken и выдает новый access-токен. Ошибки содержат redirect=true.
// @Tags Auth
// @Produce  json
// @Success 200 {object} Response
// @Failure 401 {object} response.Response
// @Router /refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	access, err := h.service.Refresh(r.Context(), cookie.Refresh(r))
	if err != nil {
		response.Error(w, r, log, err)
		return
	}

	render.JSON(w, r, Response{AccessToken: access})
}
