package handler

import (
	"context"
	"log"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server implements grpc.health.v1.Health on top of a Checker. Any service name, including
// the empty one, reports the overall readiness. Watch and List are not supported.
type Server struct {
	healthpb.UnimplementedHealthServer
	checker *Checker
}

// NewServer returns a gRPC health server backed by checker.
func NewServer(checker *Checker) *Server {
	if checker == nil {
		checker = NewChecker(nil, nil)
	}
	return &Server{checker: checker}
}

// Check reports SERVING or NOT_SERVING. Failed dependency checks are never returned as gRPC errors.
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if err := s.checker.Check(ctx); err != nil {
		log.Printf("health: %q not serving: %v", req.GetService(), err)
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
