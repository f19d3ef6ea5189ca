package handler

import (
	"context"

	reportapp "github.com/dealer/reporting/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportEngine is the report engine as seen by the HTTP layer
type ReportEngine interface {
	Render(ctx context.Context, req reportapp.ReportRequest) (*reportapp.ReportDetailResponse, error)
	RenderSummary(ctx context.Context, req reportapp.SummaryRequest) (*reportapp.ReportSummaryResponse, error)
	RenderLineDrilldown(ctx context.Context, req reportapp.DrilldownRequest) (*reportapp.ReportDetailResponse, error)
	ListReports(ctx context.Context, clientID, subSectionID int64) ([]reportapp.ReportListItem, error)
	SystemDate(ctx context.Context, clientID int64) (*reportapp.SystemDateResponse, error)
}

// ReportHandler handles report rendering endpoints
type ReportHandler struct {
	BaseHandler
	engine ReportEngine
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(engine ReportEngine) *ReportHandler {
	return &ReportHandler{engine: engine}
}

// Render renders a report grid. The engine picks the whole-report,
// by-store or by-month/trend path from the request shape.
// POST /reports/render
func (h *ReportHandler) Render(c *gin.Context) {
	clientID, err := getClientID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req RenderReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	detail, err := h.engine.Render(c.Request.Context(), req.ToEngine(clientID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Summary renders a report's main KPI widget.
// POST /reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	clientID, err := getClientID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	summary, err := h.engine.RenderSummary(c.Request.Context(), req.ToEngine(clientID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Drilldown renders the drill-through grid of a line or account.
// POST /reports/drilldown
func (h *ReportHandler) Drilldown(c *gin.Context) {
	var req DrilldownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	detail, err := h.engine.RenderLineDrilldown(c.Request.Context(), req.ToEngine())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// List returns the reports of a subsection visible to the client.
// GET /reports?subSectionId=
func (h *ReportHandler) List(c *gin.Context) {
	clientID, err := getClientID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var query ListReportsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	items, err := h.engine.ListReports(c.Request.Context(), clientID, query.SubSectionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if items == nil {
		items = []reportapp.ReportListItem{}
	}
	h.Success(c, items)
}

// SystemDate returns the client's last data update and history depth.
// GET /system/date
func (h *ReportHandler) SystemDate(c *gin.Context) {
	clientID, err := getClientID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	date, err := h.engine.SystemDate(c.Request.Context(), clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, date)
}
