package session

import (
	"net/http"
	"strings"
)

const (
	// CookieName - имя cookie, в которой хранится токен сессии бэкенда
	CookieName = "octavia_session"

	// LoginMaxAge - время жизни cookie после входа, 24 часа
	LoginMaxAge = 24 * 60 * 60
	// SignupMaxAge - время жизни cookie после регистрации, 7 дней
	SignupMaxAge = 7 * 24 * 60 * 60
)

// Token приводит оба представления cookie к одному значению:
// строку возвращает как есть, у структурированной cookie берет Value.
// Для nil и всего остального возвращает пустую строку.
func Token(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case *http.Cookie:
		if c == nil {
			return ""
		}
		return c.Value
	case http.Cookie:
		return c.Value
	default:
		return ""
	}
}

// FromRequest извлекает токен сессии из запроса
func FromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return Token(c)
}

// FromHeader извлекает токен из сырого значения заголовка Cookie
func FromHeader(raw string) string {
	if raw == "" {
		return ""
	}
	cookies, err := http.ParseCookie(raw)
	if err != nil {
		// битая пара не должна прятать валидную cookie сессии
		for _, part := range strings.Split(raw, ";") {
			name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
			if ok && name == CookieName {
				return value
			}
		}
		return ""
	}
	for _, c := range cookies {
		if c.Name == CookieName {
			return Token(c)
		}
	}
	return ""
}

// Header формирует значение заголовка Cookie для пересылки токена в бэкенд
func Header(token string) string {
	return CookieName + "=" + token
}

// Writer выставляет и очищает cookie сессии на ответе
type Writer struct {
	// Secure включается в боевом окружении
	Secure bool
}

// Set выставляет cookie сессии с заданным временем жизни в секундах
func (cw Writer) Set(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cw.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Clear удаляет cookie сессии (Max-Age=0)
func (cw Writer) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
