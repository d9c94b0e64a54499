package main

import (
	"fmt"

	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"octavia/internal/config"
	"octavia/internal/grpc"
)

func healthCmd() *cobra.Command {
	var (
		addr    string
		service string
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Query the gateway's gRPC health service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				config.LoadEnvFiles()
				cfg, err := config.FromEnv()
				if err != nil {
					return err
				}
				if cfg.GRPCHealthPort == "" {
					return fmt.Errorf("GRPC_HEALTH_PORT is not set, pass --addr")
				}
				addr = "localhost:" + cfg.GRPCHealthPort
			}

			st, err := grpc.CheckHealth(cmd.Context(), addr, service)
			if err != nil {
				return err
			}
			fmt.Println(st)
			if st != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("service %q is %s", service, st)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "health service address (default localhost:$GRPC_HEALTH_PORT)")
	cmd.Flags().StringVar(&service, "service", grpc.ServiceName, "service name to check")

	return cmd
}
