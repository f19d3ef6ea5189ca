package report

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/domain/shared"
	"github.com/dealer/reporting/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Recorder receives one observation per engine operation.
type Recorder interface {
	RecordRender(ctx context.Context, operation string, path report.Path, elapsed time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordRender(context.Context, string, report.Path, time.Duration, error) {}

// Engine renders report grids, aggregations, summaries and drilldowns.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	configs  report.ReportConfigRepository
	values   report.LineValueRepository
	stores   report.StoreDirectory
	analytic report.AnalyticQueries

	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand

	defaultLinesQty    int
	trendMonths        int
	chargebackReportID int64
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRandSource sets the source of the placeholder filler used by the
// product penetration summary.
func WithRandSource(src rand.Source) Option {
	return func(e *Engine) {
		if src != nil {
			e.rnd = rand.New(src)
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithDefaultLinesQty sets the line count of default summaries.
func WithDefaultLinesQty(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultLinesQty = n
		}
	}
}

// WithTrendMonths sets how many months a trend rendering covers.
func WithTrendMonths(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.trendMonths = n
		}
	}
}

// WithChargebackReport sets the report whose lines hold chargeback facts.
func WithChargebackReport(id int64) Option {
	return func(e *Engine) {
		e.chargebackReportID = id
	}
}

// NewEngine creates a new Engine
func NewEngine(
	configs report.ReportConfigRepository,
	values report.LineValueRepository,
	stores report.StoreDirectory,
	analytic report.AnalyticQueries,
	opts ...Option,
) *Engine {
	e := &Engine{
		configs:            configs,
		values:             values,
		stores:             stores,
		analytic:           analytic,
		logger:             zap.NewNop(),
		recorder:           nopRecorder{},
		now:                time.Now,
		rnd:                rand.New(rand.NewSource(1)),
		defaultLinesQty:    4,
		trendMonths:        report.TrendMonths,
		chargebackReportID: 5,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render normalizes the periods, selects the rendering path and renders.
func (e *Engine) Render(ctx context.Context, req ReportRequest) (*ReportDetailResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report_engine", "render")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrReportID, req.ReportID,
		telemetry.SpanAttrClientID, req.ClientID,
		"store_count", len(req.StoreIDs),
		"by_trend", req.ByTrend,
	)

	np, err := report.NormalizePeriods(req.Periods, req.ByTrend, e.now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	rep, err := e.findReport(ctx, req.ReportID, req.ClientID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	periodCount := len(np.Periods)
	if np.Granularity == report.GranularityYearlyExpanded {
		periodCount = np.Requested
	}
	path, err := report.SelectPath(report.PathInput{
		StoreCount:   len(req.StoreIDs),
		PeriodCount:  periodCount,
		Granularity:  np.Granularity,
		Trend:        req.ByTrend,
		SplitByStore: rep.SplitByStore,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrPath, string(path))

	dateRange := np.Granularity == report.GranularityDailyRange
	var detail *ReportDetailResponse
	switch path {
	case report.PathWhole:
		detail, err = e.RenderWholeReport(ctx, req.ReportID, req.ClientID, req.StoreIDs, np.Periods, req.Target, dateRange)
	case report.PathByStore:
		detail, err = e.RenderReportByStore(ctx, req.ReportID, req.ClientID, req.StoreIDs, np.Periods, dateRange)
	case report.PathByMonth:
		detail, err = e.RenderReportByMonthOrTrend(ctx, req.ReportID, req.ClientID, req.StoreIDs, np.Periods, req.ByTrend)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	detail.Path = path
	return detail, nil
}

func (e *Engine) findReport(ctx context.Context, reportID, clientID int64) (*report.Report, error) {
	rep, err := e.configs.FindReport(ctx, reportID, clientID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, reportNotFound(reportID)
	}
	if err != nil {
		return nil, err
	}
	if rep == nil || !rep.VisibleTo(clientID) {
		return nil, reportNotFound(reportID)
	}
	if err := rep.Validate(); err != nil {
		return nil, err
	}
	return rep, nil
}

func (e *Engine) findClientReport(ctx context.Context, reportID, clientID int64) (*report.Report, error) {
	rep, err := e.configs.FindClientReport(ctx, reportID, clientID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, reportNotFound(reportID)
	}
	if err != nil {
		return nil, err
	}
	if rep == nil || !rep.OwnedBy(clientID) {
		return nil, reportNotFound(reportID)
	}
	if err := rep.Validate(); err != nil {
		return nil, err
	}
	return rep, nil
}

func (e *Engine) observe(ctx context.Context, operation string, path report.Path, start time.Time, err error) {
	e.recorder.RecordRender(ctx, operation, path, time.Since(start), err)
}

func (e *Engine) randomBetween(lo, hi int) int {
	e.rndMu.Lock()
	defer e.rndMu.Unlock()
	return lo + e.rnd.Intn(hi-lo)
}

func reportNotFound(reportID int64) error {
	return shared.NewNotFoundError(fmt.Sprintf("Report %d not found", reportID))
}

// isRecoverableSummaryError tells whether a summary failure can be left
// out of a larger response instead of failing it.
func isRecoverableSummaryError(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de) && (de.IsValidation() || de.Code == shared.CodeNotFound)
}

func dateBounds(periods []string) (*report.DateBounds, error) {
	np := report.NormalizedPeriods{Periods: periods, Granularity: report.GranularityDailyRange}
	from, to, ok := np.DateRange()
	if !ok {
		return nil, shared.NewValidationError("a date range needs exactly two YYYY-MM-DD periods")
	}
	return &report.DateBounds{From: from, To: to}, nil
}
