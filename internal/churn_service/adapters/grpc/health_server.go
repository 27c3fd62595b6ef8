package grpc

import (
	"errors"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported alongside the overall ("") status.
const ServiceName = "churn.dashboard"

// HealthServer exposes the standard gRPC health protocol. It reports NOT_SERVING until
// MarkServing is called.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	logger *slog.Logger
}

// NewHealthServer registers the health and reflection services on a new gRPC server.
func NewHealthServer(logger *slog.Logger) *HealthServer {
	s := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	reflection.Register(s)

	h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{server: s, health: h, logger: logger.With("component", "grpc_health")}
}

// MarkServing flips both statuses to SERVING.
func (s *HealthServer) MarkServing() {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.logger.Info("gRPC health status set to SERVING")
}

// Serve blocks until the listener fails or the server is stopped.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.logger.Info("gRPC health server starting", "address", lis.Addr().String())
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc health server: %w", err)
	}
	return nil
}

// Shutdown reports NOT_SERVING to watchers and stops the server gracefully.
func (s *HealthServer) Shutdown() {
	s.health.Shutdown()
	s.server.GracefulStop()
	s.logger.Info("gRPC health server stopped")
}
