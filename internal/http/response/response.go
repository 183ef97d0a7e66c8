// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков. Ошибки сервисов переводятся
// в HTTP-статус и тело {message, details, refresh?, redirect?}.
package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/lib/jwt"
	"github.com/magabrotheeeer/physoxy/internal/lib/sl"
	"github.com/magabrotheeeer/physoxy/internal/lib/validate"
)

// Response описывает тело ответа с сообщением.
// Refresh просит клиента обновить access-токен, Redirect — войти заново.
type Response struct {
	Message  string `json:"message,omitempty" example:"Logged out."`
	Details  string `json:"details,omitempty" example:"refresh token cleared"`
	Refresh  bool   `json:"refresh,omitempty"`
	Redirect bool   `json:"redirect,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Message string `json:"message" example:"Something went wrong!"`
	Details string `json:"details" example:"something went wrong, please checkout the error logs"`
}

// Internal — тело ответа на неклассифицированную ошибку.
var Internal = Response{
	Message: "Something went wrong!",
	Details: "something went wrong, please checkout the error logs",
}

// Message возвращает Response с сообщением и деталями.
func Message(message, details string) Response {
	return Response{Message: message, Details: details}
}

// BadRequest возвращает ответ на тело запроса, которое не удалось разобрать.
func BadRequest() Response {
	return Response{Message: "Invalid request body.", Details: "request body is not a valid json"}
}

// ValidationError формирует Response из ошибок валидатора: message — первая
// ошибка, details — все ошибки через запятую.
func ValidationError(err error) Response {
	msgs := validate.Messages(err)
	return Response{
		Message: msgs[0],
		Details: strings.Join(msgs, ", "),
	}
}

// StatusFor выбирает HTTP-статус по классу ошибки.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrUnauthorized),
		errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenInvalid),
		errors.Is(err, jwt.ErrTokenNotYetValid):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrThrottled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error пишет ответ на ошибку сервиса со статусом из StatusFor.
func Error(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	ErrorWithStatus(w, r, log, err, StatusFor(err))
}

// ErrorWithStatus пишет ответ на ошибку с явно заданным статусом.
// Внутренние ошибки логируются, клиенту уходит только общее сообщение.
func ErrorWithStatus(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, status int) {
	e, ok := apperr.As(err)
	if !ok || status == http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Internal)
		return
	}

	log.Info("request rejected", slog.Int("status", status), slog.String("details", e.Details))
	if e.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(e)))
	}
	render.Status(r, status)
	render.JSON(w, r, Response{
		Message:  e.Message,
		Details:  e.Details,
		Refresh:  e.Refresh,
		Redirect: e.Redirect,
	})
}

// retryAfterSeconds округляет паузу вверх до целых секунд.
func retryAfterSeconds(e *apperr.Error) int {
	secs := int(e.RetryAfter.Seconds())
	if float64(secs) < e.RetryAfter.Seconds() {
		secs++
	}
	return secs
}
