package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys for engine metrics.
var (
	AttrOperation = attribute.Key("operation")
	AttrPath      = attribute.Key("report_path")
	AttrOutcome   = attribute.Key("outcome")
)

// Render outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// EngineMetrics records report engine activity: render counts by outcome
// and render latency by operation and path.
type EngineMetrics struct {
	renders  metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

// NewEngineMetrics registers the engine instruments on meter.
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	if meter == nil {
		return nil, errors.New("meter is required")
	}

	renders, err := meter.Int64Counter("report_engine.renders",
		metric.WithDescription("Report engine operations by outcome"),
		metric.WithUnit("{render}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create renders counter: %w", err)
	}
	failures, err := meter.Int64Counter("report_engine.failures",
		metric.WithDescription("Report engine operations that failed with an internal error"),
		metric.WithUnit("{render}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create failures counter: %w", err)
	}
	duration, err := meter.Float64Histogram("report_engine.render.duration",
		metric.WithDescription("Report engine operation latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(RenderDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &EngineMetrics{
		renders:  renders,
		failures: failures,
		duration: duration,
	}, nil
}

// RecordRender records one engine operation.
func (m *EngineMetrics) RecordRender(ctx context.Context, operation string, path report.Path, elapsed time.Duration, err error) {
	outcome := outcomeOf(err)
	attrs := metric.WithAttributes(
		AttrOperation.String(operation),
		AttrPath.String(string(path)),
		AttrOutcome.String(outcome),
	)
	m.renders.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
	if outcome == OutcomeError {
		m.failures.Add(ctx, 1, metric.WithAttributes(AttrOperation.String(operation)))
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		if de.Code == shared.CodeNotFound {
			return OutcomeNotFound
		}
		if de.IsValidation() {
			return OutcomeRejected
		}
	}
	return OutcomeError
}
