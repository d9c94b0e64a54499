package grpc

import (
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// ServiceName - имя сервиса в протоколе grpc.health.v1
const ServiceName = "octavia.web"

// HealthServer отдает состояние веб-шлюза по стандартному протоколу
// grpc.health.v1 для балансировщиков и оркестраторов
type HealthServer struct {
	srv    *grpc.Server
	health *health.Server
	logger *slog.Logger
}

// NewHealthServer создает сервер; до вызова SetServing(true) сервис
// отвечает NOT_SERVING
func NewHealthServer(logger *slog.Logger) *HealthServer {
	// Настройки keepalive
	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     time.Minute,
			MaxConnectionAge:      5 * time.Minute,
			MaxConnectionAgeGrace: 20 * time.Second,
			Time:                  20 * time.Second,
			Timeout:               10 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	s := grpc.NewServer(opts...)
	h := health.NewServer()
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s, h)

	return &HealthServer{srv: s, health: h, logger: logger}
}

// SetServing переключает статус сервиса и общий статус сервера
func (s *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
}

// Serve блокируется, пока сервер не остановлен
func (s *HealthServer) Serve(lis net.Listener) error {
	s.logger.Info("grpc health server started", "addr", lis.Addr().String())
	return s.srv.Serve(lis)
}

// Stop помечает сервис как недоступный и дожидается завершения активных вызовов
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
