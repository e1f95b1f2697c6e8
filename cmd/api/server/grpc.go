package server

import (
	"go.uber.org/zap"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"user-auth-service/pkg/logger"
)

// SetupGRPC creates the operational gRPC server. It exposes the standard
// health service and reflection only; the user API is served over HTTP.
func SetupGRPC(l *zap.Logger) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			logger.LoggingInterceptor(l),
		),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	return grpcServer, healthServer
}
