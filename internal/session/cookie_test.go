package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestToken(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "строка", in: "abc123", want: "abc123"},
		{name: "указатель на cookie", in: &http.Cookie{Name: CookieName, Value: "abc123"}, want: "abc123"},
		{name: "cookie по значению", in: http.Cookie{Name: CookieName, Value: "abc123"}, want: "abc123"},
		{name: "nil-указатель на cookie", in: (*http.Cookie)(nil), want: ""},
		{name: "пустое значение", in: nil, want: ""},
		{name: "другой тип", in: 42, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Token(tt.in); got != tt.want {
				t.Errorf("Token() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if got := FromRequest(req); got != "" {
		t.Errorf("FromRequest() without cookie = %q", got)
	}

	req.AddCookie(&http.Cookie{Name: "other", Value: "x"})
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "abc123"})
	if got := FromRequest(req); got != "abc123" {
		t.Errorf("FromRequest() = %q, want abc123", got)
	}
}

func TestFromHeader(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "", want: ""},
		{raw: "octavia_session=abc123", want: "abc123"},
		{raw: "theme=dark; octavia_session=abc123", want: "abc123"},
		{raw: "theme=dark", want: ""},
		{raw: "broken; octavia_session=abc123", want: "abc123"},
	}

	for _, tt := range tests {
		if got := FromHeader(tt.raw); got != tt.want {
			t.Errorf("FromHeader(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestRepresentationsAgree(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", Header("tok"))

	c, err := req.Cookie(CookieName)
	if err != nil {
		t.Fatal(err)
	}
	if Token(c) != Token(c.Value) || FromHeader(req.Header.Get("Cookie")) != FromRequest(req) {
		t.Error("string and structured representations produced different tokens")
	}
}

func TestWriterSet(t *testing.T) {
	tests := []struct {
		name   string
		secure bool
		maxAge int
	}{
		{name: "вход, разработка", secure: false, maxAge: LoginMaxAge},
		{name: "регистрация, продакшен", secure: true, maxAge: SignupMaxAge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Writer{Secure: tt.secure}.Set(rec, "abc123", tt.maxAge)

			cookies := rec.Result().Cookies()
			if len(cookies) != 1 {
				t.Fatalf("got %d cookies, want 1", len(cookies))
			}
			c := cookies[0]
			if c.Name != CookieName || c.Value != "abc123" {
				t.Errorf("cookie = %s=%s", c.Name, c.Value)
			}
			if c.MaxAge != tt.maxAge {
				t.Errorf("MaxAge = %d, want %d", c.MaxAge, tt.maxAge)
			}
			if !c.HttpOnly || c.Secure != tt.secure || c.SameSite != http.SameSiteStrictMode || c.Path != "/" {
				t.Errorf("unexpected attributes: %+v", c)
			}
		})
	}
}

func TestWriterClear(t *testing.T) {
	rec := httptest.NewRecorder()
	Writer{}.Clear(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || c.Value != "" || c.Path != "/" {
		t.Errorf("cookie = %+v", c)
	}
	// Max-Age=0 в заголовке разбирается net/http как MaxAge < 0
	if c.MaxAge >= 0 {
		t.Errorf("MaxAge = %d, want cleared", c.MaxAge)
	}
}
