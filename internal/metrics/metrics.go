package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config настраивает метрики шлюза
type Config struct {
	// Namespace - префикс имен метрик (по умолчанию "octavia")
	Namespace string
	// Subsystem - подсистема (по умолчанию "web")
	Subsystem string
	// Registry - куда регистрируются метрики.
	// По умолчанию prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
	// Buckets - интервалы гистограммы длительности вызовов бэкенда
	Buckets []float64
}

// Option изменяет Config
type Option func(*Config)

// WithNamespace задает префикс имен метрик
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithRegistry задает реестр метрик
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithBuckets задает интервалы гистограммы
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "octavia",
		Subsystem: "web",
		Registry:  prometheus.DefaultRegisterer,
		Buckets:   prometheus.DefBuckets,
	}
}

// Metrics собирает метрики гейта, обработчиков и вызовов бэкенда.
// Методы безопасны для nil-получателя, тогда ничего не пишется.
type Metrics struct {
	gateDecisions   *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	authResponses   *prometheus.CounterVec
}

// New регистрирует метрики в реестре из конфигурации
func New(opts ...Option) *Metrics {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		gateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "gate_decisions_total",
			Help:      "Access gate decisions by outcome",
		}, []string{"decision"}),

		backendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "backend_request_duration_seconds",
			Help:      "Duration of calls to the backend API",
			Buckets:   cfg.Buckets,
		}, []string{"operation", "outcome"}),

		authResponses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "auth_responses_total",
			Help:      "Responses of the auth handlers by status code",
		}, []string{"handler", "status"}),
	}
}

// GateDecision учитывает решение гейта (continue, redirect_login, ...)
func (m *Metrics) GateDecision(decision string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(decision).Inc()
}

// ObserveBackend учитывает длительность вызова бэкенда.
// outcome - "ok", "rejected" или "error".
func (m *Metrics) ObserveBackend(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.backendDuration.WithLabelValues(operation, outcome).Observe(d.Seconds())
}

// AuthResponse учитывает код ответа обработчика авторизации
func (m *Metrics) AuthResponse(handler string, status int) {
	if m == nil {
		return
	}
	m.authResponses.WithLabelValues(handler, strconv.Itoa(status)).Inc()
}

// Handler отдает метрики из gatherer в формате Prometheus
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
