package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	reportapp "github.com/dealer/reporting/internal/application/report"
	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/infrastructure/cache"
	"github.com/dealer/reporting/internal/infrastructure/config"
	"github.com/dealer/reporting/internal/infrastructure/logger"
	"github.com/dealer/reporting/internal/infrastructure/persistence"
	"github.com/dealer/reporting/internal/infrastructure/telemetry"
	"github.com/dealer/reporting/internal/interfaces/http/handler"
	"github.com/dealer/reporting/internal/interfaces/http/middleware"
	"github.com/dealer/reporting/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = lp.Bridge(log, logger.ParseLevel(cfg.Log.Level))
	zap.ReplaceGlobals(log)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServer,
		ApplicationName: cfg.Telemetry.ServiceName,
		ProfileTypes:    cfg.Telemetry.ProfileTypes,
	}, log)
	if err != nil {
		log.Warn("Continuous profiling disabled", zap.Error(err))
	}
	if profiler != nil && profiler.IsEnabled() {
		tp.EnableSpanProfiles()
	}

	log.Info("Starting report server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	var dbOpts []persistence.DatabaseOption
	if cfg.Telemetry.DBTraceEnabled {
		dbOpts = append(dbOpts, persistence.WithQueryHook(telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        dbSystem(cfg.Database.Driver),
		}, log)))
	}
	db, err := persistence.NewDatabase(&cfg.Database, log, dbOpts...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to create sqlite schema", zap.Error(err))
		}
	}

	health := handler.NewHealthHandler(telemetry.ServiceVersion).AddCheck("database", db)

	var configs report.ReportConfigRepository = persistence.NewGormReportConfigRepository(db.DB)
	var backend *cache.Backend
	if cfg.Cache.Enabled {
		backend, err = cache.NewBackendFactory(cfg.Redis,
			cache.WithFactoryLogger(log),
			cache.WithInMemoryFallback(cfg.App.Env != "production"),
		).CreateBackend(ctx)
		if err != nil {
			log.Fatal("Failed to create cache backend", zap.Error(err))
		}
		configs = cache.NewReportConfigCache(configs, backend.Store,
			cache.WithLogger(log),
			cache.WithTTL(cfg.Cache.TTL),
			cache.WithLockTTL(cfg.Cache.LockTTL),
			cache.WithKeyPrefix(cfg.Cache.KeyPrefix),
			cache.WithLocker(backend.Locker),
		)
		if backend.Shared() {
			health.AddCheck("redis", backend)
		}
	}

	engineOpts := []reportapp.Option{
		reportapp.WithLogger(log),
		reportapp.WithRandSource(rand.NewSource(cfg.Engine.RandomSeed)),
		reportapp.WithTrendMonths(cfg.Engine.TrendMonths),
		reportapp.WithDefaultLinesQty(cfg.Engine.DefaultLinesQty),
		reportapp.WithChargebackReport(cfg.Engine.ChargebackReportID),
	}
	var meter metric.Meter
	if mp.IsEnabled() {
		meter = mp.Meter("dealer-reporting")
		engineMetrics, err := telemetry.NewEngineMetrics(mp.Meter("report_engine"))
		if err != nil {
			log.Warn("Engine metrics disabled", zap.Error(err))
		} else {
			engineOpts = append(engineOpts, reportapp.WithRecorder(engineMetrics))
		}
	}
	engine := reportapp.NewEngine(
		configs,
		persistence.NewGormLineValueRepository(db.DB),
		persistence.NewGormStoreDirectory(db.DB),
		persistence.NewAnalyticQueryRepository(db.DB),
		engineOpts...,
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register request validators", zap.Error(err))
	}

	g, err := router.NewEngine(router.EngineConfig{
		Logger:           log,
		HTTP:             cfg.HTTP,
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   tp.IsEnabled(),
		Meter:            meter,
		ProfilingEnabled: profiler != nil && profiler.IsEnabled(),
		MaxBodyBytes:     middleware.DefaultMaxBodyBytes,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	router.RegisterHealth(g, health)
	router.NewRouter(g).
		Register(router.ReportRoutes(handler.NewReportHandler(engine))...).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        g,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if backend != nil {
		if err := backend.Close(); err != nil {
			log.Warn("Failed to close cache backend", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Warn("Failed to close database", zap.Error(err))
	}
	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			log.Warn("Failed to stop profiler", zap.Error(err))
		}
	}
	if err := lp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to shutdown logger provider", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to shutdown meter provider", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to shutdown tracer provider", zap.Error(err))
	}

	log.Info("Server exited")
}

func dbSystem(driver string) string {
	if driver == "sqlite" {
		return "sqlite"
	}
	return "postgresql"
}
