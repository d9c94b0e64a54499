package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"octavia/internal/api"
	"octavia/internal/backend"
	"octavia/internal/config"
	"octavia/internal/gate"
	"octavia/internal/grpc"
	"octavia/internal/logger"
	"octavia/internal/metrics"
	"octavia/internal/routes"
	"octavia/internal/session"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger.Init(cfg.LogLevel))
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "HTTP port (overrides PORT)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(metrics.WithRegistry(reg))

	client := backend.New(cfg.BackendURL,
		backend.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		backend.WithMetrics(m),
	)

	g := gate.New(routes.NewClassifier(routes.DefaultTable()), client,
		gate.WithTimeout(cfg.RequestTimeout),
		gate.WithLogger(log),
		gate.WithMetrics(m),
	)

	deps := api.Deps{
		Auth:           api.NewAuthHandler(client, session.Writer{Secure: cfg.Production()}, log, m),
		Gate:           g,
		Pages:          api.PagesHandler(cfg.StaticDir),
		Logger:         log,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.MetricsEnabled {
		deps.Metrics = metrics.Handler(reg)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.SetupRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	httpLis, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}

	var (
		health  *grpc.HealthServer
		grpcLis net.Listener
	)
	if cfg.GRPCHealthPort != "" {
		grpcLis, err = net.Listen("tcp", ":"+cfg.GRPCHealthPort)
		if err != nil {
			httpLis.Close()
			return fmt.Errorf("grpc health listen: %w", err)
		}
		health = grpc.NewHealthServer(log)
	}

	errCh := make(chan error, 2)

	if health != nil {
		go func() {
			if err := health.Serve(grpcLis); err != nil {
				errCh <- fmt.Errorf("grpc health server: %w", err)
			}
		}()
	}

	go func() {
		if err := srv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// оба порта уже открыты
	if health != nil {
		health.SetServing(true)
	}
	log.Info("octavia gateway started",
		"addr", httpLis.Addr().String(),
		"backend", cfg.BackendURL,
		"env", cfg.Environment,
	)

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case runErr = <-errCh:
		log.Error("server failed", "error", runErr)
	}

	if health != nil {
		health.SetServing(false)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if health != nil {
		health.Stop()
	}

	log.Info("octavia gateway stopped")
	return runErr
}
