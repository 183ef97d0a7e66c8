// Package me отдает действующую подписку текущего пользователя.
package me

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/physoxy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/physoxy/internal/models"
)

// Service возвращает действующую подписку или nil.
type Service interface {
	Current(user *models.User) *models.Subscription
}

// Handler обрабатывает GET /api/package/me.
type Handler struct {
	service Service
}

// New создает Handler.
func New(service Service) *Handler {
	return &Handler{service: service}
}

// ServeHTTP godoc
// @Summary Моя подписка
// @Description Возвращает подписку, если она не истекла, иначе пустой объект.
// @Tags Packages
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} models.Subscription
// @Router /package/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, _ := middlewarectx.UserFrom(r.Context())
	var sub *models.Subscription
	if user != nil {
		sub = h.service.Current(user)
	}
	if sub == nil {
		render.JSON(w, r, struct{}{})
		return
	}
	render.JSON(w, r, sub)
}
