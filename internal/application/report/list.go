package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/domain/shared"
	"github.com/dealer/reporting/internal/infrastructure/logger"
	"github.com/dealer/reporting/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ListReports lists the reports of a subsection, each with its main summary
// rendered for the client's first active store and the current month.
func (e *Engine) ListReports(ctx context.Context, clientID, subSectionID int64) (items []ReportListItem, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report_engine", "list_reports")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrClientID, clientID,
		"sub_section_id", subSectionID,
	)
	start := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		e.observe(ctx, "list", "", start, err)
	}()

	reports, err := e.configs.ListBySubSection(ctx, clientID, subSectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	stores, err := e.stores.ActiveStores(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active stores: %w", err)
	}
	var storeID int64
	if len(stores) > 0 {
		storeID = stores[0].ID
	}
	period := report.CurrentPeriod(e.now())

	items = make([]ReportListItem, 0, len(reports))
	for i := range reports {
		rep := &reports[i]
		item := ReportListItem{ReportConfig: newConfigResponse(rep)}
		item.ReportConfig.Columns = rep.HeaderColumns()

		summary, err := e.listSummary(ctx, rep, clientID, storeID, period)
		if err != nil {
			logger.L(ctx).Warn("Failed to render report summary",
				zap.Int64("report_id", rep.ID),
				zap.Error(err),
			)
		} else {
			item.Summary = summary
		}
		items = append(items, item)
	}
	return items, nil
}

func (e *Engine) listSummary(ctx context.Context, rep *report.Report, clientID, storeID int64, period string) (*ReportSummaryResponse, error) {
	if err := rep.Validate(); err != nil {
		return nil, err
	}
	summary, err := e.mainSummary(ctx, rep)
	if err != nil {
		return nil, err
	}
	return e.renderSummaryOf(ctx, rep, summary, clientID, storeID, period, report.TargetPriorMonth, nil)
}

// SystemDate reports how fresh and how deep the client's data is.
func (e *Engine) SystemDate(ctx context.Context, clientID int64) (*SystemDateResponse, error) {
	client, err := e.stores.FindClient(ctx, clientID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewNotFoundError("Client not found for given id")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	return &SystemDateResponse{
		ClientID:       client.ID,
		LastUpdateDate: client.LastUpdateDate,
		YearsBackward:  client.YearsBackward,
	}, nil
}
