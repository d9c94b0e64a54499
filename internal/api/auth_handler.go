package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"octavia/internal/backend"
	"octavia/internal/metrics"
	"octavia/internal/models"
	"octavia/internal/session"
	"octavia/internal/validation"
)

const (
	DashboardRedirect = "/dashboard"
	HomeRedirect      = "/"

	maxRequestBody = 1 << 20
)

// AuthBackend - операции бэкенда, которые пересылают обработчики
type AuthBackend interface {
	Login(ctx context.Context, req models.LoginRequest) (*backend.Result, error)
	Signup(ctx context.Context, req models.SignupRequest) (*backend.Result, error)
	Logout(ctx context.Context, token string) (*backend.Result, error)
}

// AuthHandler обрабатывает /api/auth/login, /api/auth/signup и /api/auth/logout
type AuthHandler struct {
	backend AuthBackend
	cookies session.Writer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewAuthHandler(b AuthBackend, cookies session.Writer, logger *slog.Logger, m *metrics.Metrics) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		backend: b,
		cookies: cookies,
		logger:  logger,
		metrics: m,
	}
}

// Login проверяет форму входа и пересылает ее в бэкенд.
// Отказ из-за неверных данных маскируется общим сообщением.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badBody(w, r, "login", err)
		return
	}

	fields, err := validation.Login(req)
	if err != nil {
		h.unexpected(w, r, "login", err)
		return
	}
	if len(fields) > 0 {
		h.invalid(w, "login", fields)
		return
	}

	res, err := h.backend.Login(r.Context(), req)
	if err != nil {
		h.unexpected(w, r, "login", err)
		return
	}

	if !res.OK {
		if strings.Contains(res.Message, "Invalid credentials") {
			h.reject(w, "login", http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.reject(w, "login", relayStatus(res.Status), messageOr(res.Message, "Failed to sign in"))
		return
	}

	h.authenticated(w, "login", res, session.LoginMaxAge)
}

// Signup проверяет форму регистрации и пересылает ее в бэкенд.
// Отказ бэкенда передается клиенту как есть.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badBody(w, r, "signup", err)
		return
	}

	fields, err := validation.Signup(req)
	if err != nil {
		h.unexpected(w, r, "signup", err)
		return
	}
	if len(fields) > 0 {
		h.invalid(w, "signup", fields)
		return
	}

	res, err := h.backend.Signup(r.Context(), req)
	if err != nil {
		h.unexpected(w, r, "signup", err)
		return
	}

	if !res.OK {
		h.reject(w, "signup", relayStatus(res.Status), messageOr(res.Message, "Failed to create account"))
		return
	}

	h.authenticated(w, "signup", res, session.SignupMaxAge)
}

// Logout уведомляет бэкенд (ошибка не мешает выходу) и всегда очищает cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := session.FromRequest(r)

	if res, err := h.backend.Logout(r.Context(), token); err != nil {
		h.logger.WarnContext(r.Context(), "backend logout failed, continuing",
			slog.String("error", err.Error()),
		)
	} else if !res.OK {
		h.logger.WarnContext(r.Context(), "backend logout rejected, continuing",
			slog.Int("status", res.Status),
		)
	}

	h.cookies.Clear(w)
	h.metrics.AuthResponse("logout", http.StatusOK)
	SendJSON(w, http.StatusOK, models.AuthResponse{Success: true, Redirect: HomeRedirect})
}

// authenticated выставляет cookie сессии только после успешного ответа бэкенда
func (h *AuthHandler) authenticated(w http.ResponseWriter, handler string, res *backend.Result, maxAge int) {
	if res.SessionID != "" {
		h.cookies.Set(w, res.SessionID, maxAge)
	}
	h.metrics.AuthResponse(handler, http.StatusOK)
	SendJSON(w, http.StatusOK, models.AuthResponse{
		Success:  true,
		User:     res.User,
		Redirect: DashboardRedirect,
	})
}

func (h *AuthHandler) invalid(w http.ResponseWriter, handler string, fields []models.FieldError) {
	h.metrics.AuthResponse(handler, http.StatusBadRequest)
	SendValidationError(w, fields)
}

func (h *AuthHandler) reject(w http.ResponseWriter, handler string, status int, message string) {
	h.metrics.AuthResponse(handler, status)
	SendErrorResponse(w, status, message)
}

// unexpected логирует настоящую ошибку и отдает клиенту общее сообщение
func (h *AuthHandler) unexpected(w http.ResponseWriter, r *http.Request, handler string, err error) {
	h.logger.ErrorContext(r.Context(), handler+" error", slog.String("error", err.Error()))
	h.reject(w, handler, http.StatusInternalServerError, MsgUnexpected)
}

// badBody отвечает 400 на поле неверного типа, остальные ошибки разбора дают 500
func (h *AuthHandler) badBody(w http.ResponseWriter, r *http.Request, handler string, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		h.invalid(w, handler, []models.FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("Expected %s, received %s", typeErr.Type, typeErr.Value),
		}})
		return
	}
	h.unexpected(w, r, handler, err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// relayStatus передает код отказа бэкенда; не-ошибочные коды превращаются в 502
func relayStatus(status int) int {
	if status < http.StatusBadRequest || status > 599 {
		return http.StatusBadGateway
	}
	return status
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
