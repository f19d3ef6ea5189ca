package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/domain/shared"
	"github.com/dealer/reporting/internal/infrastructure/telemetry"
)

// RenderSummary renders the main summary of a report, or a default one
// built from the report's summary style.
func (e *Engine) RenderSummary(ctx context.Context, req SummaryRequest) (resp *ReportSummaryResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report_engine", "render_summary")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrReportID, req.ReportID,
		telemetry.SpanAttrClientID, req.ClientID,
		"store_id", req.StoreID,
	)
	start := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		e.observe(ctx, "summary", "", start, err)
	}()

	period := req.Period
	if period == "" {
		period = report.CurrentPeriod(e.now())
	}
	if _, err := time.Parse(report.MonthLayout, period); err != nil {
		return nil, shared.NewValidationError(report.MsgMonthlyRequired)
	}
	target := req.Target
	if target == 0 {
		target = report.TargetPriorMonth
	}

	rep, err := e.findReport(ctx, req.ReportID, req.ClientID)
	if err != nil {
		return nil, err
	}
	summary, err := e.mainSummary(ctx, rep)
	if err != nil {
		return nil, err
	}
	return e.renderSummaryOf(ctx, rep, summary, req.ClientID, req.StoreID, period, target, req.SelectedOptions)
}

func (e *Engine) mainSummary(ctx context.Context, rep *report.Report) (*report.Summary, error) {
	summary, err := e.configs.MainSummary(ctx, rep.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load main summary: %w", err)
	}
	if summary == nil {
		summary = report.DefaultSummary(rep, e.defaultLinesQty)
	}
	return summary, nil
}

// summaryContext is what every summary style renders from.
type summaryContext struct {
	report   *report.Report
	summary  *report.Summary
	clientID int64
	storeID  int64
	period   string
	target   report.Target
	options  []int
	resp     *ReportSummaryResponse
}

// titles returns the configured column titles.
func (sc *summaryContext) titles() []string {
	return sc.summary.Titles()
}

// metricTitle returns the title picked by the last selected option (1-based,
// default 1).
func (sc *summaryContext) metricTitle() (string, error) {
	n := 1
	if len(sc.options) > 0 {
		n = sc.options[len(sc.options)-1]
	}
	titles := sc.titles()
	if n < 1 || n > len(titles) {
		return "", shared.NewValidationError(fmt.Sprintf("selected option %d has no matching column title", n))
	}
	return strings.TrimSpace(titles[n-1]), nil
}

// headerFromTitles applies the shared classic header rule: the first title,
// or every title when several are configured.
func (sc *summaryContext) headerFromTitles() {
	titles := sc.titles()
	if len(titles) > 1 {
		sc.resp.ReportConfig.Columns = titles
		return
	}
	sc.resp.ReportConfig.Columns = []string{titles[0]}
}

func (e *Engine) renderSummaryOf(
	ctx context.Context,
	rep *report.Report,
	summary *report.Summary,
	clientID, storeID int64,
	period string,
	target report.Target,
	selectedOptions []int,
) (*ReportSummaryResponse, error) {
	cfg := newConfigResponse(rep)
	cfg.SummaryStyle = string(summary.Style)
	if summary.Name != "" {
		cfg.Name = summary.Name
	}
	if summary.Position != "" {
		cfg.Style = "position:" + summary.Position
	}

	sc := &summaryContext{
		report:   rep,
		summary:  summary,
		clientID: clientID,
		storeID:  storeID,
		period:   period,
		target:   target,
		options:  selectedOptions,
		resp:     &ReportSummaryResponse{ReportConfig: cfg, ReportLines: []ReportLineResponse{}},
	}

	var err error
	switch summary.Style {
	case report.StyleBubble, report.StyleQuad:
		err = e.renderAging(ctx, sc)
	case report.StyleClassic, report.StyleDual:
		err = e.renderClassic(ctx, sc)
	case report.StyleClassicSelectable:
		err = e.renderSelectable(ctx, sc)
	case report.StylePersonsList:
		err = e.renderPersons(ctx, sc)
	case report.StyleCard, report.StyleTarget:
		sc.resp.ReportConfig.Columns = rep.HeaderColumns()
	case report.StyleGraphicSelectable:
		err = shared.NewNotImplementedError("graphic_selectable summaries are not supported yet")
	default:
		err = shared.NewValidationError(fmt.Sprintf("unknown summary style %q", summary.Style))
	}
	if err != nil {
		return nil, err
	}
	return sc.resp, nil
}

// initials abbreviates a person name. Placeholder names render as "-".
func initials(name string) string {
	if name == "" {
		return ""
	}
	if strings.Contains(name, "Not Available") {
		return "-"
	}
	var b strings.Builder
	for _, word := range strings.Split(name, " ") {
		if word == "" {
			continue
		}
		b.WriteString(string([]rune(word)[:1]))
	}
	return b.String()
}
