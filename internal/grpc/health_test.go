package grpc

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"octavia/internal/logger"
)

const bufSize = 1024 * 1024

func setupHealthServer(t *testing.T) (*HealthServer, *bufconn.Listener) {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	srv := NewHealthServer(logger.Discard())

	go func() {
		if err := srv.Serve(lis); err != nil {
			t.Errorf("Ошибка запуска сервера: %v", err)
		}
	}()

	t.Cleanup(func() {
		srv.Stop()
		lis.Close()
	})
	return srv, lis
}

// bufDialer устанавливает соединение через bufconn
func bufDialer(lis *bufconn.Listener) grpc.DialOption {
	return grpc.WithContextDialer(func(ctx context.Context, s string) (net.Conn, error) {
		return lis.Dial()
	})
}

// TestHealthStatus проверяет переключение статуса сервиса
func TestHealthStatus(t *testing.T) {
	srv, lis := setupHealthServer(t)
	ctx := context.Background()

	got, err := CheckHealth(ctx, "bufnet", ServiceName, bufDialer(lis))
	if err != nil {
		t.Fatalf("Ошибка проверки: %v", err)
	}
	if got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("До запуска ожидался NOT_SERVING, получен %v", got)
	}

	srv.SetServing(true)
	for _, service := range []string{ServiceName, ""} {
		got, err := CheckHealth(ctx, "bufnet", service, bufDialer(lis))
		if err != nil {
			t.Fatalf("Ошибка проверки %q: %v", service, err)
		}
		if got != healthpb.HealthCheckResponse_SERVING {
			t.Errorf("Сервис %q: ожидался SERVING, получен %v", service, got)
		}
	}
}

// TestHealthUnknownService проверяет ответ для незарегистрированного сервиса
func TestHealthUnknownService(t *testing.T) {
	_, lis := setupHealthServer(t)

	_, err := CheckHealth(context.Background(), "bufnet", "unknown.service", bufDialer(lis))
	if status.Code(err) != codes.NotFound {
		t.Errorf("Ожидался NotFound, получена ошибка: %v", err)
	}
}
