package gate

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"octavia/internal/metrics"
	"octavia/internal/routes"
	"octavia/internal/session"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"

	// DefaultTimeout ограничивает проверку сессии, если таймаут не задан
	DefaultTimeout = 10 * time.Second
)

// Verifier проверяет токен сессии во внешнем сервисе
type Verifier interface {
	VerifySession(ctx context.Context, token string) (bool, error)
}

// Action - что сделать с запросом
type Action int

const (
	Continue Action = iota
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "continue"
}

// Decision - решение гейта по одному запросу
type Decision struct {
	Action Action
	Target string
}

// Gate решает, пропустить запрос к странице или перенаправить его
type Gate struct {
	classifier *routes.Classifier
	verifier   Verifier
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option настраивает Gate
type Option func(*Gate)

// WithTimeout задает дедлайн проверки сессии
func WithTimeout(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLogger задает логгер
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = l
	}
}

// WithMetrics включает учет решений
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

// New создает гейт поверх классификатора и проверяющего сервиса
func New(c *routes.Classifier, v Verifier, opts ...Option) *Gate {
	g := &Gate{
		classifier: c,
		verifier:   v,
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Decide применяет правила по порядку:
//  1. защищенный путь без сессии - на /login;
//  2. страница входа/регистрации с действующей сессией - на /dashboard;
//  3. корень с действующей сессией - на /dashboard;
//  4. иначе пропускаем.
//
// Ошибка проверки сессии логируется, запрос пропускается.
func (g *Gate) Decide(ctx context.Context, path, token string) Decision {
	class := g.classifier.Classify(path)

	switch {
	case class.Protected && token == "":
		g.metrics.GateDecision("redirect_login")
		return Decision{Action: Redirect, Target: LoginPath}
	case (class.AuthRoute || class.Root) && token != "":
		if g.verify(ctx, token, class.Path) {
			g.metrics.GateDecision("redirect_dashboard")
			return Decision{Action: Redirect, Target: DashboardPath}
		}
	}

	g.metrics.GateDecision("continue")
	return Decision{Action: Continue}
}

func (g *Gate) verify(ctx context.Context, token, path string) bool {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	ok, err := g.verifier.VerifySession(ctx, token)
	if err != nil {
		g.logger.ErrorContext(ctx, "session verification failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		g.metrics.GateDecision("verify_error")
		return false
	}
	return ok
}

// Middleware пропускает через гейт все запросы, кроме исключенных путей
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if routes.Excluded(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		d := g.Decide(r.Context(), r.URL.Path, session.FromRequest(r))
		if d.Action == Redirect {
			http.Redirect(w, r, d.Target, http.StatusTemporaryRedirect)
			return
		}
		next.ServeHTTP(w, r)
	})
}
