package grpc

import (
	"context"

	"google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nischaysood/creator-connect/internal/application"
)

// VerificationInternalServer exposes the internal gRPC surface. Only the
// standard health protocol for now; sibling services check it before routing
// verification traffic.
type VerificationInternalServer struct {
	grpc_health_v1.UnimplementedHealthServer
	service *application.Service
}

func NewVerificationInternalServer(service *application.Service) *VerificationInternalServer {
	return &VerificationInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc *VerificationInternalServer) {
	grpc_health_v1.RegisterHealthServer(server, svc)
}

func (s *VerificationInternalServer) Check(_ context.Context, _ *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}, nil
}

func (s *VerificationInternalServer) Watch(_ *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	return stream.Send(&grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING})
}
