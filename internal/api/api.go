package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"octavia/internal/gate"
)

// Deps - зависимости роутера шлюза
type Deps struct {
	Auth  *AuthHandler
	Gate  *gate.Gate
	Pages http.Handler
	// Metrics отдается на /metrics, если задан
	Metrics        http.Handler
	Logger         *slog.Logger
	AllowedOrigins []string
}

// SetupRouter настраивает маршруты шлюза
func SetupRouter(d Deps) *chi.Mux {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(Recover(logger))

	r.Route("/api", func(r chi.Router) {
		if len(d.AllowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   d.AllowedOrigins,
				AllowedMethods:   []string{"POST", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}

		r.Post("/auth/login", d.Auth.Login)
		r.Post("/auth/signup", d.Auth.Signup)
		r.Post("/auth/logout", d.Auth.Logout)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			SendErrorResponse(w, http.StatusNotFound, "Not found")
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		SendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	// Страницы проходят через гейт
	r.With(d.Gate.Middleware).Handle("/*", d.Pages)

	return r
}
