package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"octavia/internal/models"
	"octavia/internal/session"
)

// Gateway вызывает обработчики /api/auth/* веб-шлюза так же, как это
// делает браузер: cookie сессии хранится в jar и уходит с последующими запросами
type Gateway struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewGateway создает клиент шлюза с собственным cookie jar
func NewGateway(baseURL string) (*Gateway, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Gateway{
		baseURL: u,
		httpClient: &http.Client{
			Jar: jar,
			// решение о переходе принимает вызывающий код
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// Login отправляет форму входа
func (g *Gateway) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	return g.post(ctx, "/api/auth/login", req, "Failed to sign in")
}

// Signup отправляет форму регистрации
func (g *Gateway) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	return g.post(ctx, "/api/auth/signup", req, "Failed to create account")
}

// Logout завершает сессию
func (g *Gateway) Logout(ctx context.Context) (*models.AuthResponse, error) {
	return g.post(ctx, "/api/auth/logout", nil, "Failed to logout")
}

// SessionToken возвращает токен сессии из jar, если он есть
func (g *Gateway) SessionToken() string {
	for _, c := range g.httpClient.Jar.Cookies(g.baseURL) {
		if c.Name == session.CookieName {
			return session.Token(c)
		}
	}
	return ""
}

// SetSessionToken кладет известный токен в jar, например для выхода из CLI
func (g *Gateway) SetSessionToken(token string) {
	g.httpClient.Jar.SetCookies(g.baseURL, []*http.Cookie{{
		Name:  session.CookieName,
		Value: token,
		Path:  "/",
	}})
}

func (g *Gateway) post(ctx context.Context, path string, body any, fallback string) (*models.AuthResponse, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL.String()+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		msg := errBody.Error
		if msg == "" {
			msg = fallback
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg, Fields: errBody.Errors}
	}

	var out models.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
