package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/smk-cms-api/pkg/middleware/requestid"
)

func TestGinMiddlewareLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(requestid.Middleware(), GinMiddleware(zap.New(core)))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/menus/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/health", "/menus/7", "/boom"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "/menus/:id", entries[1].ContextMap()["route"])
	assert.NotEmpty(t, entries[1].ContextMap()["request_id"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestWithContextAddsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(requestid.Middleware())
	router.GET("/", func(c *gin.Context) {
		WithContext(c.Request.Context(), zap.New(core)).Info("inside")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-42", logs.All()[0].ContextMap()["request_id"])

	WithContext(context.Background(), nil).Info("nop logger tolerates nil")
}
