// Package apperr описывает классы доменных ошибок и ошибку с сообщением для клиента.
//
// Сервисы возвращают *Error с одним из Kind; HTTP-слой по Kind выбирает статус,
// а Message и Details отдает клиенту. Все прочие ошибки считаются внутренними.
package apperr

import (
	"errors"
	"fmt"
	"time"
)

// Классы ошибок. Используются как цели для errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrThrottled    = errors.New("throttled")
)

// Error — доменная ошибка с сообщением для пользователя.
type Error struct {
	Kind       error
	Message    string
	Details    string
	RetryAfter time.Duration
	Refresh    bool // клиенту стоит обновить access-токен и повторить запрос
	Redirect   bool // клиенту нужен повторный вход
	Err        error
}

// Error реализует интерфейс error.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Details)
}

// Is позволяет сравнивать ошибку с классом через errors.Is.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap возвращает исходную ошибку.
func (e *Error) Unwrap() error {
	return e.Err
}

// New создает доменную ошибку класса kind.
func New(kind error, message, details string) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

// Wrap создает доменную ошибку класса kind поверх err.
func Wrap(kind error, message, details string, err error) *Error {
	return &Error{Kind: kind, Message: message, Details: details, Err: err}
}

// Throttled создает ошибку превышения лимита с рекомендуемой паузой.
func Throttled(message, details string, retryAfter time.Duration) *Error {
	return &Error{Kind: ErrThrottled, Message: message, Details: details, RetryAfter: retryAfter}
}

// WithRefresh помечает ошибку подсказкой refresh.
func (e *Error) WithRefresh() *Error {
	e.Refresh = true
	return e
}

// WithRedirect помечает ошибку подсказкой redirect.
func (e *Error) WithRedirect() *Error {
	e.Redirect = true
	return e
}

// As извлекает *Error из цепочки ошибок.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
