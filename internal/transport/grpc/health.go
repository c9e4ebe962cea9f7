// Package grpc exposes the service health over the standard gRPC health protocol.
package grpc

import (
	"context"

	"github.com/hackathonone/sentiment-backend/internal/service"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// HealthServer answers Check for the whole service ("") and for each dependency by name,
// e.g. "database" or "ds-service".
type HealthServer struct {
	healthpb.UnimplementedHealthServer
	health service.HealthService
}

func NewHealthServer(health service.HealthService) *HealthServer {
	return &HealthServer{health: health}
}

func (s *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	report := s.health.Check(ctx)

	state := report.Status
	if name := req.GetService(); name != "" {
		dep, ok := report.Dependencies[name]
		if !ok {
			return nil, status.Errorf(codes.NotFound, "unknown service %q", name)
		}
		state = dep
	}

	return &healthpb.HealthCheckResponse{Status: servingStatus(state)}, nil
}

func servingStatus(state string) healthpb.HealthCheckResponse_ServingStatus {
	if state == service.StatusUp {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}
