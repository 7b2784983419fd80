package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthServer is a gRPC server carrying only the standard health service,
// for orchestrators that health-check over gRPC.
type HealthServer struct {
	grpc   *grpc.Server
	health *health.Server
	logger *slog.Logger
}

func NewHealthServer(logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(gs)
	return &HealthServer{grpc: gs, health: hs, logger: logger}
}

// Serve listens on addr until ctx ends, then reports NOT_SERVING and stops.
func (h *HealthServer) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc health listen: %w", err)
	}
	return h.ServeListener(ctx, lis)
}

func (h *HealthServer) ServeListener(ctx context.Context, lis net.Listener) error {
	h.logger.Info("gRPC health serving", "addr", lis.Addr().String())
	errCh := make(chan error, 1)
	go func() { errCh <- h.grpc.Serve(lis) }()

	select {
	case <-ctx.Done():
		h.health.Shutdown()
		h.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}
