package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupTestMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
	})
	return mp, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetricByName(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func newMetricsRouter(t *testing.T, mp *sdkmetric.MeterProvider) *gin.Engine {
	t.Helper()

	mw, err := HTTPMetrics(mp.Meter("http.server"))
	require.NoError(t, err)

	router := gin.New()
	router.Use(ClientMiddlewareWithConfig(ClientConfig{}))
	router.Use(mw)
	router.GET("/api/v1/reports", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	router.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "missing"})
	})
	return router
}

func TestHTTPMetrics_NilMeter(t *testing.T) {
	mw, err := HTTPMetrics(nil)
	require.NoError(t, err)

	router := gin.New()
	router.Use(mw)
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetrics_RequestCounter(t *testing.T) {
	mp, reader := setupTestMeter(t)
	router := newMetricsRouter(t, mp)

	for range 3 {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports?subSectionId=2", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	rm := collectMetrics(t, reader)
	m := findMetricByName(rm, "http_server_request_total")
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 2)

	byStatus := map[int64]int64{}
	for _, dp := range sum.DataPoints {
		status, ok := dp.Attributes.Value(AttrHTTPStatusCode)
		require.True(t, ok)
		byStatus[status.AsInt64()] = dp.Value
	}
	assert.Equal(t, int64(3), byStatus[http.StatusOK])
	assert.Equal(t, int64(1), byStatus[http.StatusNotFound])
}

func TestHTTPMetrics_RouteAndClientAttributes(t *testing.T) {
	mp, reader := setupTestMeter(t)
	router := newMetricsRouter(t, mp)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports?subSectionId=2", nil)
	req.Header.Set(ClientHeaderKey, "7")
	router.ServeHTTP(httptest.NewRecorder(), req)

	rm := collectMetrics(t, reader)
	sum := findMetricByName(rm, "http_server_request_total").Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	attrs := sum.DataPoints[0].Attributes

	route, _ := attrs.Value(AttrHTTPRoute)
	assert.Equal(t, "/api/v1/reports", route.AsString())
	client, ok := attrs.Value(AttrClientID)
	require.True(t, ok)
	assert.Equal(t, int64(7), client.AsInt64())

	hist := findMetricByName(rm, "http_server_request_duration_seconds")
	require.NotNil(t, hist)
	data := hist.Data.(metricdata.Histogram[float64])
	require.Len(t, data.DataPoints, 1)
	assert.Equal(t, uint64(1), data.DataPoints[0].Count)
	_, hasClient := data.DataPoints[0].Attributes.Value(attribute.Key("client_id"))
	assert.False(t, hasClient)
}

func TestHTTPMetrics_ActiveRequestsSettle(t *testing.T) {
	mp, reader := setupTestMeter(t)
	router := newMetricsRouter(t, mp)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))

	rm := collectMetrics(t, reader)
	m := findMetricByName(rm, "http_server_active_requests")
	require.NotNil(t, m)
	sum := m.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(0), sum.DataPoints[0].Value)
}

func TestRoutePattern_Unmatched(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	assert.Equal(t, "unknown", routePattern(c))
}
