package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   int64
	Name string
}

func newTracedDB(t *testing.T, cfg DBTracingConfig) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func TestNewDBTracingPlugin_Defaults(t *testing.T) {
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())
	assert.Equal(t, 200*time.Millisecond, p.config.SlowQueryThresh)
	assert.Equal(t, "postgresql", p.config.DBSystem)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := newTracedDB(t, DBTracingConfig{})
	_, ok := db.Config.Plugins["otelgorm"]
	assert.False(t, ok)
}

func TestDBTracingPlugin_RecordsQuerySpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	}()

	db := newTracedDB(t, DBTracingConfig{Enabled: true, DBSystem: "sqlite", SlowQueryThresh: time.Nanosecond})

	ctx, span := tp.Tracer("test").Start(context.Background(), "parent")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{ID: 1, Name: "North"}).Error)
	var rows []tracedRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	span.End()

	assert.Len(t, rows, 1)
	assert.Greater(t, len(sr.Ended()), 1)
}

func TestDBTracingPlugin_MarksSlowQuery(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Millisecond}, zap.NewNop())

	ctx, span := tp.Tracer("test").Start(context.Background(), "select")
	ctx = context.WithValue(ctx, queryStartKey{}, time.Now().Add(-time.Second))
	tx := &gorm.DB{Config: &gorm.Config{}, Statement: &gorm.Statement{Context: ctx, Table: "report_line_values"}}
	p.afterQuery(tx)
	span.End()

	attrs := make(map[string]interface{})
	for _, attr := range sr.Ended()[0].Attributes() {
		attrs[string(attr.Key)] = attr.Value.AsInterface()
	}
	assert.Equal(t, true, attrs["db.slow_query"])
	assert.Equal(t, "report_line_values", attrs["db.sql.table"])
}
