package router

import (
	"fmt"

	"github.com/dealer/reporting/internal/infrastructure/config"
	"github.com/dealer/reporting/internal/infrastructure/logger"
	"github.com/dealer/reporting/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig selects the middleware installed by NewEngine
type EngineConfig struct {
	Logger           *zap.Logger
	HTTP             config.HTTPConfig
	ServiceName      string
	TracingEnabled   bool
	Meter            metric.Meter // nil disables HTTP metrics
	ProfilingEnabled bool
	MaxBodyBytes     int64
}

// NewEngine builds a gin engine with the standard middleware chain:
// recovery, request ID, CORS, tracing, request logging, client
// identification, span enrichment, metrics, profiling labels and body limit.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = middleware.DefaultMaxBodyBytes
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	metricsMiddleware, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, err
	}

	clientCfg := middleware.DefaultClientConfig()
	clientCfg.Logger = log

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.CORS(cfg.HTTP),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.ServiceName,
			Enabled:     cfg.TracingEnabled,
		}),
		logger.GinMiddleware(log),
		middleware.ClientMiddlewareWithConfig(clientCfg),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		metricsMiddleware,
		middleware.ProfilingWithConfig(middleware.ProfilingConfig{
			Enabled:   cfg.ProfilingEnabled,
			SkipPaths: clientCfg.SkipPaths,
		}),
		middleware.BodyLimit(cfg.MaxBodyBytes),
	)

	return engine, nil
}
