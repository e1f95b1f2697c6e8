package logger

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// RequestIDHeader is the HTTP header used to propagate request ids.
const RequestIDHeader = "X-Request-ID"

// RequestID is a Gin middleware that attaches a request id to the request context.
// An incoming X-Request-ID header is reused, otherwise a new uuid is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), requestID))
		c.Header(RequestIDHeader, requestID)
		c.Set(string(RequestIDKey), requestID)

		c.Next()
	}
}

// RequestIDInterceptor is a gRPC interceptor that adds a request ID to the context
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		requestID := uuid.New().String()
		ctx = WithRequestID(ctx, requestID)
		return handler(ctx, req)
	}
}

// LoggingInterceptor logs every unary gRPC call with its status code and latency.
func LoggingInterceptor(l *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		WithContext(ctx, l).Debug("grpc request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
		)

		return resp, err
	}
}
