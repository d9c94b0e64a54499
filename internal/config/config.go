package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultRequestTimeout - таймаут запроса по умолчанию, он же дедлайн
// проверки сессии в гейте
const DefaultRequestTimeout = 10 * time.Second

var ErrMissingBackendURL = errors.New("BACKEND_URL is not set")

// envFiles - места поиска .env относительно рабочей директории
var envFiles = []string{".env", "../.env", "../../.env"}

// Config хранит настройки веб-шлюза
type Config struct {
	Port               string
	BackendURL         string
	PublicBackendURL   string
	Environment        string
	RequestTimeout     time.Duration
	StaticDir          string
	CORSAllowedOrigins []string
	GRPCHealthPort     string
	MetricsEnabled     bool
	LogLevel           string
}

// LoadEnvFiles загружает первый найденный .env файл и возвращает его имя.
// Уже выставленные переменные окружения не перезаписываются.
func LoadEnvFiles(files ...string) string {
	if len(files) == 0 {
		files = envFiles
	}
	for _, file := range files {
		if err := godotenv.Load(file); err == nil {
			return file
		}
	}
	return ""
}

// Load читает конфигурацию из окружения
func Load() (*Config, error) {
	LoadEnvFiles()
	return FromEnv()
}

// FromEnv читает конфигурацию только из текущего окружения, без .env
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "3000"),
		BackendURL:       strings.TrimRight(os.Getenv("BACKEND_URL"), "/"),
		PublicBackendURL: strings.TrimRight(os.Getenv("NEXT_PUBLIC_BACKEND_URL"), "/"),
		Environment:      getEnvOrDefault("NODE_ENV", "development"),
		StaticDir:        getEnvOrDefault("STATIC_DIR", "./web/static"),
		GRPCHealthPort:   os.Getenv("GRPC_HEALTH_PORT"),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
	}

	timeout, err := getEnvAsDuration("REQUEST_TIMEOUT", DefaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = timeout

	metricsEnabled, err := getEnvAsBool("METRICS_ENABLED", true)
	if err != nil {
		return nil, err
	}
	cfg.MetricsEnabled = metricsEnabled

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
			}
		}
	}

	return cfg, nil
}

// Validate проверяет настройки, без которых сервер не может работать
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return ErrMissingBackendURL
	}
	if _, err := url.ParseRequestURI(c.BackendURL); err != nil {
		return fmt.Errorf("invalid BACKEND_URL %q: %w", c.BackendURL, err)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// Production сообщает, запущен ли шлюз в боевом окружении.
// От этого зависит флаг Secure у сессионной cookie.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

func getEnvOrDefault(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func getEnvAsDuration(key string, def time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return def, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return d, nil
}

func getEnvAsBool(key string, def bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return b, nil
}
