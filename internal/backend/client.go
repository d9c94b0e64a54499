package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"octavia/internal/metrics"
	"octavia/internal/models"
	"octavia/internal/session"
)

const (
	LoginPath  = "/api/v1/auth/login"
	SignupPath = "/api/v1/auth/signup"
	LogoutPath = "/api/v1/auth/logout"
	MePath     = "/api/v1/auth/me"

	// maxBodySize ограничивает чтение ответа бэкенда
	maxBodySize = 1 << 20
)

var ErrUnexpectedResponse = errors.New("unexpected backend response")

// Result - ответ бэкенда: либо успех с данными пользователя,
// либо отказ с кодом и сообщением
type Result struct {
	OK        bool
	Status    int
	Message   string
	User      models.User
	SessionID string
}

// Client - HTTP клиент к API бэкенда
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	metrics    *metrics.Metrics
}

// Option настраивает Client
type Option func(*Client)

// WithHTTPClient задает HTTP клиент
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics включает учет длительности вызовов
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracer задает трассировщик вместо глобального
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// New создает клиент для бэкенда по адресу baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tracer:     otel.Tracer("octavia/internal/backend"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call описывает один запрос к бэкенду
type call struct {
	op      string
	method  string
	path    string
	payload any
	cookie  string
	// withUser - успешный ответ содержит данные пользователя и session_id
	withUser bool
}

// Login отправляет учетные данные на /api/v1/auth/login
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*Result, error) {
	return c.do(ctx, call{op: "login", method: http.MethodPost, path: LoginPath, payload: req, withUser: true})
}

// Signup отправляет данные регистрации на /api/v1/auth/signup
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*Result, error) {
	return c.do(ctx, call{op: "signup", method: http.MethodPost, path: SignupPath, payload: req, withUser: true})
}

// Logout сообщает бэкенду о выходе, пересылая cookie сессии
func (c *Client) Logout(ctx context.Context, token string) (*Result, error) {
	return c.do(ctx, call{op: "logout", method: http.MethodPost, path: LogoutPath, cookie: session.Header(token)})
}

// VerifySession проверяет токен через /api/v1/auth/me.
// Решение принимается только по коду ответа: любой 2xx означает действующую сессию.
func (c *Client) VerifySession(ctx context.Context, token string) (bool, error) {
	res, err := c.do(ctx, call{op: "me", method: http.MethodGet, path: MePath, cookie: session.Header(token)})
	if err != nil {
		return false, err
	}
	return res.OK, nil
}

func (c *Client) do(ctx context.Context, cl call) (*Result, error) {
	op, method, path := cl.op, cl.method, cl.path
	ctx, span := c.tracer.Start(ctx, "backend."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", path),
	)

	start := time.Now()
	res, err := c.roundTrip(ctx, cl)

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !res.OK:
		outcome = "rejected"
		span.SetAttributes(attribute.Int("http.status_code", res.Status))
	default:
		span.SetAttributes(attribute.Int("http.status_code", res.Status))
	}
	c.metrics.ObserveBackend(op, outcome, time.Since(start))

	return res, err
}

func (c *Client) roundTrip(ctx context.Context, cl call) (*Result, error) {
	var body io.Reader
	if cl.payload != nil {
		data, err := json.Marshal(cl.payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("X-Request-ID", requestID(ctx))
	if cl.cookie != "" {
		req.Header.Set("Cookie", cl.cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	res := &Result{
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status: resp.StatusCode,
	}
	if !res.OK {
		res.Message = errorMessage(raw)
		return res, nil
	}

	// тело logout и me не используется
	if !cl.withUser || len(bytes.TrimSpace(raw)) == 0 {
		return res, nil
	}

	user, sessionID, err := decodeUser(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnexpectedResponse, cl.method, cl.path, err)
	}
	res.User = user
	res.SessionID = sessionID
	return res, nil
}

// decodeUser разбирает JSON-объект пользователя и отделяет от него session_id.
// Остальные поля остаются как есть, числа не теряют точность.
func decodeUser(raw []byte) (models.User, string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var user models.User
	if err := dec.Decode(&user); err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", errors.New("response body is null")
	}

	sessionID, _ := user["session_id"].(string)
	delete(user, "session_id")
	return user, sessionID, nil
}

// errorMessage достает сообщение об ошибке из тела ответа. Бэкенд отвечает
// либо JSON с полем message (или error), либо простым текстом.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		return body.Error
	}
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, "<") || strings.HasPrefix(text, "{") {
		return ""
	}
	return text
}

func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
