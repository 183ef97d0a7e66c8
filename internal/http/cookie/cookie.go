// Package cookie выставляет и стирает cookie с refresh-токеном.
package cookie

import (
	"net/http"
	"time"
)

// RefreshName — имя cookie с refresh-токеном.
const RefreshName = "refreshToken"

// RefreshMaxAge — время жизни cookie, совпадает со сроком refresh-токена.
const RefreshMaxAge = 15 * 24 * time.Hour

func base(value string) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

// SetRefresh выставляет cookie с refresh-токеном.
func SetRefresh(w http.ResponseWriter, token string, maxAge time.Duration) {
	c := base(token)
	c.MaxAge = int(maxAge.Seconds())
	http.SetCookie(w, c)
}

// ClearRefresh стирает cookie. Атрибуты те же, что при установке, иначе браузер ее не удалит.
func ClearRefresh(w http.ResponseWriter) {
	c := base("")
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

// Refresh читает refresh-токен из запроса. Пустая строка означает, что cookie нет.
func Refresh(r *http.Request) string {
	c, err := r.Cookie(RefreshName)
	if err != nil {
		return ""
	}
	return c.Value
}
