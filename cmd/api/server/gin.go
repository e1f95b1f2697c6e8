package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	ginrouter "user-auth-service/internal/adapter/gin/router"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(deps ginrouter.Deps, ginAddr string, l *zap.Logger) *http.Server {
	router := ginrouter.SetupRouter(deps)

	l.Info("Gin REST API configured", zap.String("address", ginAddr))
	l.Info("Swagger UI available at", zap.String("url", "http://localhost"+ginAddr+"/swagger/index.html"))

	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
