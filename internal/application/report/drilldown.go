package report

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/domain/shared"
	"github.com/dealer/reporting/internal/infrastructure/telemetry"
)

// Drilldown levels.
const (
	DrilldownLine    = 1
	DrilldownAccount = 2
)

const drilldownRows = 4

var (
	lineDrilldownColumns    = []string{"ACCT", "GL Desc", "ACC Type", "MTD", "YTD", "CNT MTD", "CNT YTD"}
	accountDrilldownColumns = []string{"Posting Description", "GL Date", "Control 1", "Reference ID", "Post Amount"}
)

// RenderLineDrilldown renders the drill-through grid of a report line
// (level 1) or of a ledger account (level 2). The grids carry sample data
// until the ledger detail feeds are normalized.
func (e *Engine) RenderLineDrilldown(ctx context.Context, req DrilldownRequest) (detail *ReportDetailResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report_engine", "render_line_drilldown")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrLevel, req.Level)
	start := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		e.observe(ctx, "drilldown", "", start, err)
	}()

	switch {
	case req.Level == DrilldownLine && req.ReportLineID != nil:
		line, err := e.configs.FindLine(ctx, *req.ReportLineID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError(fmt.Sprintf("Report line %d not found", *req.ReportLineID))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load report line: %w", err)
		}
		return lineDrilldown(line, req.StoreIDs), nil
	case req.Level == DrilldownAccount && req.AccountNo != "":
		return accountDrilldown(req.AccountNo), nil
	}
	return nil, shared.NewValidationError(
		"Invalid parameters. If level == 1, reportLineId shouldn't be null. If level == 2, accountNo shouldn't be null.")
}

func drilldownConfig(name, description string, columns []string) ReportConfigResponse {
	return ReportConfigResponse{
		Name:        name,
		Description: description,
		Visible:     true,
		Columns:     append([]string(nil), columns...),
	}
}

func lineDrilldown(line *report.ReportLine, storeIDs []int64) *ReportDetailResponse {
	var storeID *int64
	if len(storeIDs) > 0 {
		id := storeIDs[0]
		storeID = &id
	}
	detail := &ReportDetailResponse{
		ReportConfig: drilldownConfig(line.Name,
			fmt.Sprintf("Drilldown level 1 of %s report line", line.Name), lineDrilldownColumns),
		ReportLines:     make([]ReportLineResponse, 0, drilldownRows),
		ReportSummaries: []ReportSummaryResponse{},
	}
	for i := 0; i < drilldownRows; i++ {
		row := ReportLineResponse{
			Order:     10 + i*10,
			Name:      "Sample line level 1",
			StoreID:   storeID,
			Visible:   true,
			Drillable: true,
		}
		if i == drilldownRows-1 {
			row.Style = report.LineStyleFinal
			row.TypeFormats = []string{"string", "dollar", "string", "integer"}
			row.Values = []string{"Total Amount", "3153", "Total Count", "68"}
		} else {
			row.TypeFormats = []string{"string", "string", "string", "dollar", "dollar", "integer", "integer"}
			row.Values = []string{"43012", "Jag Xj USD RTL-non Certified", "S", "220000", "4250200", "5", strconv.Itoa(100 + i)}
		}
		detail.ReportLines = append(detail.ReportLines, row)
	}
	return detail
}

func accountDrilldown(accountNo string) *ReportDetailResponse {
	detail := &ReportDetailResponse{
		ReportConfig: drilldownConfig(accountNo,
			fmt.Sprintf("Drilldown level 2 of %s account", accountNo), accountDrilldownColumns),
		ReportLines:     make([]ReportLineResponse, 0, drilldownRows),
		ReportSummaries: []ReportSummaryResponse{},
	}
	for i := 0; i < drilldownRows; i++ {
		row := ReportLineResponse{
			Order:     10 + i*10,
			Name:      "Sample line level 2",
			Visible:   true,
			Drillable: true,
		}
		if i == drilldownRows-1 {
			row.Style = report.LineStyleFinal
			row.TypeFormats = []string{"string", "dollar", "string", "integer"}
			row.Values = []string{"Total Amount", "-218094", "Total Count", "6"}
		} else {
			row.TypeFormats = []string{"string", "string", "string", "string", "dollar"}
			row.Values = []string{"Sale Vehicle Invoice", fmt.Sprintf("11/%d/2022", 15+i), "855235", "152399", "25240"}
		}
		detail.ReportLines = append(detail.ReportLines, row)
	}
	return detail
}
