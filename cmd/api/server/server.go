package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	ginrouter "user-auth-service/internal/adapter/gin/router"
	"user-auth-service/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	Gin    *http.Server
	GRPC   *grpc.Server
	Health *health.Server

	checker ginrouter.HealthChecker
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, deps ginrouter.Deps) *Server {
	grpcServer, healthServer := SetupGRPC(l)

	return &Server{
		Config:  cfg,
		Logger:  l,
		Gin:     SetupGinServer(deps, ginAddress(cfg), l),
		GRPC:    grpcServer,
		Health:  healthServer,
		checker: deps.Health,
	}
}

// Start runs the Gin and gRPC servers and the health probe. It blocks until
// one of the servers fails or ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}

	ginLis, err := lc.Listen(ctx, "tcp", s.Gin.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Gin.Addr, err)
	}

	grpcLis, err := lc.Listen(ctx, "tcp", grpcAddress(s.Config))
	if err != nil {
		_ = ginLis.Close()
		return fmt.Errorf("failed to listen on %s: %w", grpcAddress(s.Config), err)
	}

	errChan := make(chan error, 2)

	go func() {
		s.Logger.Info("Gin REST API running", zap.String("address", s.Gin.Addr))
		if err := s.Gin.Serve(ginLis); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("gin server: %w", err)
		}
	}()

	go func() {
		s.Logger.Info("gRPC server running", zap.String("address", grpcAddress(s.Config)))
		if err := s.GRPC.Serve(grpcLis); err != nil && err != grpc.ErrServerStopped {
			errChan <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	go s.probeHealth(ctx)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errChan:
		return err
	}
}

// probeHealth mirrors database reachability into the gRPC health service.
func (s *Server) probeHealth(ctx context.Context) {
	interval := time.Duration(s.Config.App.HealthProbeSeconds) * time.Second
	if interval <= 0 || s.checker == nil {
		s.Health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.Health.SetServingStatus("", s.checkOnce(ctx))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) checkOnce(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.checker.Ping(pingCtx); err != nil {
		s.Logger.Warn("health probe failed", zap.Error(err))
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}

// Shutdown marks the service as not serving and stops both servers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Health.Shutdown()

	var err error
	if s.Gin != nil {
		s.Logger.Info("shutting down Gin server...")
		if shutdownErr := s.Gin.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("gin shutdown: %w", shutdownErr)
		}
	}

	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.GRPC.Stop()
		}
	}

	return err
}

func ginAddress(cfg *config.Config) string {
	return ":" + cfg.App.GinPort
}

func grpcAddress(cfg *config.Config) string {
	return ":" + cfg.App.GRPCPort
}
