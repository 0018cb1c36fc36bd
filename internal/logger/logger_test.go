package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/limaJavier/timetabling-engine/internal/config"
	"github.com/limaJavier/timetabling-engine/internal/middleware"
)

func TestNew(t *testing.T) {
	t.Run("Production", func(t *testing.T) {
		l, err := New(&config.Config{Env: config.EnvProduction, Log: config.LogConfig{Level: "warn", Format: "json"}})
		require.NoError(t, err)
		require.False(t, l.Core().Enabled(zapcore.InfoLevel))
		require.True(t, l.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("UnknownLevel", func(t *testing.T) {
		l, err := New(&config.Config{Env: config.EnvDevelopment, Log: config.LogConfig{Level: "chatty", Format: "console"}})
		require.NoError(t, err)
		require.True(t, l.Core().Enabled(zapcore.InfoLevel))
		require.False(t, l.Core().Enabled(zapcore.DebugLevel))
	})
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-1")
	router.ServeHTTP(w, req)

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "/health", fields["path"])
	require.Equal(t, int64(http.StatusOK), fields["status"])
	require.Equal(t, "req-1", fields["request_id"])
}
