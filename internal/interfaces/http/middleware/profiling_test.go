package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dealer/reporting/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilingMiddleware(t *testing.T) {
	tests := []struct {
		name string
		cfg  ProfilingConfig
		path string
	}{
		{"disabled", ProfilingConfig{Enabled: false}, "/api/v1/reports/render"},
		{"enabled", DefaultProfilingConfig(), "/api/v1/reports/render"},
		{"skipped health", DefaultProfilingConfig(), "/api/v1/health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ProfilingWithConfig(tt.cfg))

			handlerCalled := false
			r.POST(tt.path, func(c *gin.Context) {
				handlerCalled = true
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, tt.path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, handlerCalled)
		})
	}
}

func TestExtractProfilingLabels(t *testing.T) {
	var labels map[string]string

	r := gin.New()
	r.Use(ClientMiddleware())
	r.POST("/api/v1/reports/render", func(c *gin.Context) {
		labels = extractProfilingLabels(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/render", nil)
	req.Header.Set(ClientHeaderKey, "12")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, labels)
	assert.Equal(t, "POST", labels[telemetry.ProfilingLabelMethod])
	assert.Equal(t, "/api/v1/reports/render", labels[telemetry.ProfilingLabelRoute])
	assert.Equal(t, "12", labels[telemetry.ProfilingLabelClientID])
}
