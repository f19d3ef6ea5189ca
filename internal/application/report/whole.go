package report

import (
	"context"
	"fmt"
	"time"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/domain/shared"
	"github.com/dealer/reporting/internal/infrastructure/logger"
	"github.com/dealer/reporting/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RenderWholeReport renders the full grid of one store. Store-split reports
// ignore storeIDs; accounting ones also expand every store blended into the
// stored rows.
func (e *Engine) RenderWholeReport(
	ctx context.Context,
	reportID, clientID int64,
	storeIDs []int64,
	periods []string,
	target report.Target,
	isDateRange bool,
) (detail *ReportDetailResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report_engine", "render_whole_report")
	defer span.End()
	start := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		e.observe(ctx, "whole_report", report.PathWhole, start, err)
	}()

	rep, err := e.findReport(ctx, reportID, clientID)
	if err != nil {
		return nil, err
	}
	if !rep.SplitByStore && len(storeIDs) != 1 {
		return nil, shared.NewValidationError("the whole report needs exactly one store")
	}
	if len(periods) == 0 {
		return nil, shared.NewValidationError(report.MsgPeriodRequired)
	}

	cfg := newConfigResponse(rep)
	cfg.Columns = rep.HeaderColumns()
	detail = &ReportDetailResponse{
		ReportConfig:    cfg,
		ReportLines:     []ReportLineResponse{},
		ReportSummaries: []ReportSummaryResponse{},
	}

	lines, err := e.configs.ListLines(ctx, rep.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list report lines: %w", err)
	}

	filter := report.ValueFilter{ReportID: rep.ID, ClientID: clientID}
	if isDateRange {
		bounds, err := dateBounds(periods)
		if err != nil {
			return nil, err
		}
		filter.CreatedOn = bounds
	} else {
		filter.Periods = periods
	}
	if !rep.SplitByStore {
		filter.StoreIDs = storeIDs
	}

	values, err := e.values.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load report values: %w", err)
	}
	if len(values) == 0 {
		logger.L(ctx).Debug("No values for report", zap.Int64("report_id", rep.ID))
		return detail, nil
	}

	var splitStores []report.Store
	if rep.SplitByStore && rep.Kind == report.KindAccounting {
		splitStores, err = e.splitStores(ctx, clientID, values)
		if err != nil {
			return nil, err
		}
		for _, st := range splitStores {
			for _, col := range rep.HeaderColumns() {
				detail.ReportConfig.Columns = append(detail.ReportConfig.Columns, fmt.Sprintf("%s - %s", col, st.AbbrName))
			}
		}
	}

	m := materializer{
		report: rep,
		slots:  rep.ColumnsUsed * (len(splitStores) + 1),
		today:  e.now(),
		pool:   newValuePool(values),
	}
	switch rep.Kind {
	case report.KindRepeat:
		detail.ReportLines, err = m.repeat(lines)
	default:
		detail.ReportLines = m.accounting(lines)
	}
	if err != nil {
		return nil, err
	}

	summaryStore := int64(0)
	if len(storeIDs) > 0 {
		summaryStore = storeIDs[0]
	} else if len(splitStores) > 0 {
		summaryStore = splitStores[0].ID
	}
	detail.ReportSummaries, err = e.auxiliarySummaries(ctx, rep, clientID, summaryStore, monthOf(periods[0]), target)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// splitStores recovers the stores blended into a store-split report from
// the first row that lists them.
func (e *Engine) splitStores(ctx context.Context, clientID int64, values []report.LineValue) ([]report.Store, error) {
	var ids []int64
	for i := range values {
		if ids = values[i].SplitStores(); len(ids) > 0 {
			break
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := e.stores.StoresByIDs(ctx, clientID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load split stores: %w", err)
	}
	return orderStores(ids, found), nil
}

func (e *Engine) auxiliarySummaries(
	ctx context.Context,
	rep *report.Report,
	clientID, storeID int64,
	period string,
	target report.Target,
) ([]ReportSummaryResponse, error) {
	summaries, err := e.configs.ListSummaries(ctx, rep.ID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	out := make([]ReportSummaryResponse, 0, len(summaries))
	for i := range summaries {
		s, err := e.renderSummaryOf(ctx, rep, &summaries[i], clientID, storeID, period, target, nil)
		if err != nil {
			if isRecoverableSummaryError(err) {
				logger.L(ctx).Warn("Skipping auxiliary summary",
					zap.Int64("report_id", rep.ID),
					zap.Int64("summary_id", summaries[i].ID),
					zap.Error(err),
				)
				continue
			}
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

// materializer binds stored rows to line templates for one whole report.
type materializer struct {
	report *report.Report
	slots  int
	today  time.Time
	pool   *valuePool
}

func (m *materializer) accounting(lines []report.ReportLine) []ReportLineResponse {
	out := make([]ReportLineResponse, 0, len(lines))
	for i := range lines {
		line := &lines[i]
		resp := newLineResponse(line)
		if line.IsTitle() {
			out = append(out, resp)
			continue
		}
		if v := m.pool.take(line.ID); v != nil {
			m.fill(&resp, line, v, nil)
		} else {
			m.fillEmpty(&resp, line)
		}
		out = append(out, resp)
	}
	return out
}

func (m *materializer) repeat(lines []report.ReportLine) ([]ReportLineResponse, error) {
	template := firstDataLine(lines)
	if template == nil {
		return []ReportLineResponse{}, nil
	}

	rows := report.RepeatRows(template, m.pool.len())
	total := report.NewTotalRow(template, m.slots)
	out := make([]ReportLineResponse, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		resp := newLineResponse(&row.Line)
		if row.Total {
			resp.Values = total.Values()
			resp.TypeFormats = m.formats(&row.Line)
			out = append(out, resp)
			continue
		}
		v := m.pool.take(template.ID)
		if v == nil {
			return nil, shared.WrapDomainError(shared.CodeDataShape,
				fmt.Sprintf("report %d: stored row %d has no value for line %d", m.report.ID, row.Index, template.ID),
				shared.ErrDataShape)
		}
		m.fill(&resp, &row.Line, v, total)
		out = append(out, resp)
	}
	return out, nil
}

func (m *materializer) fill(resp *ReportLineResponse, line *report.ReportLine, v *report.LineValue, total *report.TotalRow) {
	resp.StoreID = v.StoreID
	resp.Period = v.Period
	resp.Values = make([]string, m.slots)
	resp.TypeFormats = m.formats(line)
	for i := 0; i < m.slots; i++ {
		cell := v.Cell(i)
		if line.Format(i) == report.FormatDaysToCurrentDate {
			cell = report.DaysToCurrentDate(cell, m.today)
		}
		resp.Values[i] = cell
		if total != nil {
			total.Add(i, cell)
		}
	}
}

func (m *materializer) fillEmpty(resp *ReportLineResponse, line *report.ReportLine) {
	resp.Values = make([]string, m.slots)
	resp.TypeFormats = m.formats(line)
}

func (m *materializer) formats(line *report.ReportLine) []string {
	out := make([]string, m.slots)
	for i := range out {
		f := line.Format(i)
		if f == report.FormatDaysToCurrentDate {
			f = report.FormatText
		}
		out[i] = string(f)
	}
	return out
}

// valuePool hands out stored rows in fetch order, each at most once.
type valuePool struct {
	rows []report.LineValue
	used []bool
	left int
}

func newValuePool(rows []report.LineValue) *valuePool {
	return &valuePool{rows: rows, used: make([]bool, len(rows)), left: len(rows)}
}

func (p *valuePool) take(lineID int64) *report.LineValue {
	for i := range p.rows {
		if !p.used[i] && p.rows[i].ReportLineID == lineID {
			p.used[i] = true
			p.left--
			return &p.rows[i]
		}
	}
	return nil
}

func (p *valuePool) len() int {
	return p.left
}

func firstDataLine(lines []report.ReportLine) *report.ReportLine {
	for i := range lines {
		if !lines[i].IsTitle() {
			return &lines[i]
		}
	}
	return nil
}

func orderStores(ids []int64, found []report.Store) []report.Store {
	byID := make(map[int64]report.Store, len(found))
	for _, st := range found {
		byID[st.ID] = st
	}
	out := make([]report.Store, 0, len(ids))
	for _, id := range ids {
		st, ok := byID[id]
		if !ok {
			st = report.Store{ID: id, Name: fmt.Sprintf("Store %d", id), AbbrName: fmt.Sprintf("%d", id)}
		}
		out = append(out, st)
	}
	return out
}

// monthOf reduces a daily period to its month.
func monthOf(period string) string {
	if len(period) >= 7 {
		return period[:7]
	}
	return period
}
