package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestWithContext_AddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "42")
	WithContext(ctx, base).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "42", fields["user_id"])
}

func TestWithContext_NoFields(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, WithContext(context.Background(), base))
}

func TestGetters(t *testing.T) {
	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "7")
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "7", GetUserID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel("bogus"))
}

func TestNewWithConfig(t *testing.T) {
	l, err := NewWithConfig(Config{
		Level:          "info",
		Format:         "json",
		OutputPath:     "stderr",
		ServiceName:    "user-auth-service",
		ServiceVersion: "test",
		Environment:    "test",
	})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		seen = GetRequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	t.Run("Generates", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("Propagates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLoggerWithConfig(zap.New(core), 0.1, "info")

	fc := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(context.Background(), time.Now(), fc, nil)
	gl.Trace(context.Background(), time.Now(), fc, gorm.ErrRecordNotFound)
	gl.Trace(context.Background(), time.Now(), fc, errors.New("syntax error"))
	gl.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)

	require.Equal(t, 4, logs.Len())
	assert.Equal(t, "gorm query", logs.All()[0].Message)
	assert.Equal(t, "gorm query", logs.All()[1].Message)
	assert.Equal(t, "gorm query error", logs.All()[2].Message)
	assert.Equal(t, "gorm slow query", logs.All()[3].Message)
}

func TestGormLogger_Silent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLoggerWithConfig(zap.New(core), 0.1, "info").LogMode(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Equal(t, 0, logs.Len())
}
