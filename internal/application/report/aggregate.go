package report

import (
	"context"
	"fmt"
	"time"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/domain/shared"
	"github.com/dealer/reporting/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// PeriodMixed stamps aggregated lines whose cells span several periods.
const PeriodMixed = "Mixed"

// RenderReportByStore renders one column per store holding the sum of the
// report's aggregation slot over the requested periods.
func (e *Engine) RenderReportByStore(
	ctx context.Context,
	reportID, clientID int64,
	storeIDs []int64,
	periods []string,
	isDateRange bool,
) (detail *ReportDetailResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report_engine", "render_report_by_store")
	defer span.End()
	start := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		e.observe(ctx, "by_store", report.PathByStore, start, err)
	}()

	rep, err := e.findClientReport(ctx, reportID, clientID)
	if err != nil {
		return nil, err
	}
	slot, err := aggregationSlot(rep)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, shared.NewValidationError(report.MsgPeriodRequired)
	}

	stores, err := e.resolveStores(ctx, clientID, storeIDs)
	if err != nil {
		return nil, err
	}

	filter := report.ValueFilter{ReportID: rep.ID, ClientID: clientID, StoreIDs: storeKeys(stores)}
	if isDateRange {
		bounds, err := dateBounds(periods)
		if err != nil {
			return nil, err
		}
		filter.CreatedOn = bounds
	} else {
		filter.Periods = periods
	}

	lines, values, err := e.aggregationInputs(ctx, rep.ID, filter)
	if err != nil {
		return nil, err
	}

	sums := newCellSums(slot)
	for i := range values {
		v := &values[i]
		if v.StoreID == nil {
			continue
		}
		sums.add(v.ReportLineID, *v.StoreID, v)
	}

	cfg := newConfigResponse(rep)
	for _, st := range stores {
		cfg.Columns = append(cfg.Columns, st.Name)
	}
	detail = &ReportDetailResponse{ReportConfig: cfg, ReportSummaries: []ReportSummaryResponse{}}
	detail.ReportLines = make([]ReportLineResponse, 0, len(lines))
	for i := range lines {
		resp := newLineResponse(&lines[i])
		resp.Period = PeriodMixed
		resp.Values = make([]string, len(stores))
		for j, st := range stores {
			resp.Values[j] = sums.get(lines[i].ID, st.ID)
		}
		detail.ReportLines = append(detail.ReportLines, resp)
	}
	return detail, nil
}

// RenderReportByMonthOrTrend renders one column per month holding the sum of
// the report's aggregation slot over the requested stores.
func (e *Engine) RenderReportByMonthOrTrend(
	ctx context.Context,
	reportID, clientID int64,
	storeIDs []int64,
	periods []string,
	byTrend bool,
) (detail *ReportDetailResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report_engine", "render_report_by_month")
	defer span.End()
	telemetry.SetAttribute(span, "by_trend", byTrend)
	start := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		e.observe(ctx, "by_month", report.PathByMonth, start, err)
	}()

	if byTrend {
		periods = report.TrendPeriods(e.now(), e.trendMonths)
	}
	if len(periods) == 0 {
		return nil, shared.NewValidationError(report.MsgPeriodRequired)
	}
	if !byTrend {
		for _, p := range periods {
			if _, perr := time.Parse(report.MonthLayout, p); perr != nil {
				return nil, shared.NewValidationError(report.MsgMonthlyRequired)
			}
		}
	}

	rep, err := e.findClientReport(ctx, reportID, clientID)
	if err != nil {
		return nil, err
	}
	slot, err := aggregationSlot(rep)
	if err != nil {
		return nil, err
	}

	stores, err := e.resolveStores(ctx, clientID, storeIDs)
	if err != nil {
		return nil, err
	}

	filter := report.ValueFilter{
		ReportID: rep.ID,
		ClientID: clientID,
		StoreIDs: storeKeys(stores),
		Periods:  periods,
	}
	lines, values, err := e.aggregationInputs(ctx, rep.ID, filter)
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int64, len(periods))
	for i, p := range periods {
		columns[p] = int64(i)
	}
	sums := newCellSums(slot)
	for i := range values {
		v := &values[i]
		col, ok := columns[v.Period]
		if !ok {
			continue
		}
		sums.add(v.ReportLineID, col, v)
	}

	cfg := newConfigResponse(rep)
	for _, p := range periods {
		cfg.Columns = append(cfg.Columns, report.MonthLabel(p))
	}
	detail = &ReportDetailResponse{ReportConfig: cfg, ReportSummaries: []ReportSummaryResponse{}}
	detail.ReportLines = make([]ReportLineResponse, 0, len(lines))
	for i := range lines {
		resp := newLineResponse(&lines[i])
		resp.Period = PeriodMixed
		resp.Values = make([]string, len(periods))
		for j := range periods {
			resp.Values[j] = sums.get(lines[i].ID, int64(j))
		}
		detail.ReportLines = append(detail.ReportLines, resp)
	}
	return detail, nil
}

func (e *Engine) aggregationInputs(ctx context.Context, reportID int64, filter report.ValueFilter) ([]report.ReportLine, []report.LineValue, error) {
	lines, err := e.configs.ListLines(ctx, reportID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list report lines: %w", err)
	}
	values, err := e.values.Find(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load report values: %w", err)
	}
	return lines, values, nil
}

// resolveStores keeps the request order; an empty request means every
// active store of the client.
func (e *Engine) resolveStores(ctx context.Context, clientID int64, storeIDs []int64) ([]report.Store, error) {
	if len(storeIDs) == 0 {
		stores, err := e.stores.ActiveStores(ctx, clientID)
		if err != nil {
			return nil, fmt.Errorf("failed to list active stores: %w", err)
		}
		return stores, nil
	}
	found, err := e.stores.StoresByIDs(ctx, clientID, storeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load stores: %w", err)
	}
	return orderStores(storeIDs, found), nil
}

func aggregationSlot(rep *report.Report) (int, error) {
	if rep.AggrByColumnIdx < 1 || rep.AggrByColumnIdx > rep.ColumnsUsed {
		return 0, shared.NewValidationError(fmt.Sprintf(
			"report %d aggregates by column %d but only %d columns are used",
			rep.ID, rep.AggrByColumnIdx, rep.ColumnsUsed))
	}
	return rep.AggrByColumnIdx - 1, nil
}

func storeKeys(stores []report.Store) []int64 {
	ids := make([]int64, len(stores))
	for i, st := range stores {
		ids[i] = st.ID
	}
	return ids
}

type cellKey struct {
	line   int64
	column int64
}

// cellSums accumulates one slot per (line, column).
type cellSums struct {
	slot int
	sums map[cellKey]decimal.Decimal
}

func newCellSums(slot int) *cellSums {
	return &cellSums{slot: slot, sums: make(map[cellKey]decimal.Decimal)}
}

func (c *cellSums) add(lineID, column int64, v *report.LineValue) {
	d, _ := report.ParseNumber(v.Cell(c.slot))
	k := cellKey{line: lineID, column: column}
	c.sums[k] = c.sums[k].Add(d)
}

func (c *cellSums) get(lineID, column int64) string {
	d, ok := c.sums[cellKey{line: lineID, column: column}]
	if !ok {
		return "0"
	}
	return d.String()
}
