package report

import (
	"time"

	"github.com/dealer/reporting/internal/domain/report"
)

// ReportConfigResponse is the configuration projection shipped with every
// rendered report or summary.
type ReportConfigResponse struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Visible      bool     `json:"visible"`
	Style        string   `json:"style,omitempty"`
	ClientID     *int64   `json:"client_id,omitempty"`
	Kind         string   `json:"kind"`
	SummaryStyle string   `json:"summary_style,omitempty"`
	Order        int      `json:"order"`
	Columns      []string `json:"columns"`
	ViewID       string   `json:"view_id,omitempty"`
	Where        string   `json:"str_where,omitempty"`
	States       string   `json:"states,omitempty"`
	MessageBoard string   `json:"message_board,omitempty"`
}

// ReportLineResponse is one rendered row. Values and TypeFormats are
// parallel arrays.
type ReportLineResponse struct {
	ID          int64    `json:"id,omitempty"`
	Order       int      `json:"order"`
	Name        string   `json:"name,omitempty"`
	NameStyle   string   `json:"name_style,omitempty"`
	Style       string   `json:"style,omitempty"`
	Visible     bool     `json:"visible"`
	Drillable   bool     `json:"drillable"`
	StoreID     *int64   `json:"store_id,omitempty"`
	Period      string   `json:"period,omitempty"`
	TypeFormats []string `json:"type_formats"`
	Values      []string `json:"values"`
}

// ReportSummaryResponse is a rendered KPI widget.
type ReportSummaryResponse struct {
	ReportConfig ReportConfigResponse `json:"report_config"`
	ReportLines  []ReportLineResponse `json:"report_lines"`
}

// ReportDetailResponse is a rendered report grid with its auxiliary summaries.
type ReportDetailResponse struct {
	Path            report.Path             `json:"path,omitempty"`
	ReportConfig    ReportConfigResponse    `json:"report_config"`
	ReportLines     []ReportLineResponse    `json:"report_lines"`
	ReportSummaries []ReportSummaryResponse `json:"report_summaries"`
}

// ReportListItem is one entry of a subsection listing.
type ReportListItem struct {
	ReportConfig ReportConfigResponse   `json:"report_config"`
	Summary      *ReportSummaryResponse `json:"summary,omitempty"`
}

// SystemDateResponse tells the UI how far back data is available.
type SystemDateResponse struct {
	ClientID       int64      `json:"client_id"`
	LastUpdateDate *time.Time `json:"last_update_date,omitempty"`
	YearsBackward  int        `json:"years_backward"`
}

// ReportRequest is the combined grid request; Render picks the path.
type ReportRequest struct {
	ReportID int64
	ClientID int64
	StoreIDs []int64
	Periods  []string
	ByTrend  bool
	Target   report.Target
}

// SummaryRequest asks for one report's main summary.
type SummaryRequest struct {
	ReportID        int64
	ClientID        int64
	StoreID         int64
	Period          string
	Target          report.Target
	SelectedOptions []int
}

// DrilldownRequest asks for a drill-through level of a report line.
type DrilldownRequest struct {
	Level        int
	ReportLineID *int64
	AccountNo    string
	StoreIDs     []int64
	Periods      []string
}

func newConfigResponse(r *report.Report) ReportConfigResponse {
	cfg := ReportConfigResponse{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Visible:      r.Visible,
		Style:        r.Style,
		ClientID:     r.ClientID,
		Kind:         string(r.Kind),
		SummaryStyle: string(r.SummaryStyle),
		Order:        r.Order,
		Columns:      []string{},
	}
	if r.View != nil {
		cfg.ViewID = r.View.ViewID
		cfg.Where = r.View.Where
		cfg.States = r.View.States
		cfg.MessageBoard = r.View.MessageBoard
	}
	return cfg
}

func newLineResponse(l *report.ReportLine) ReportLineResponse {
	return ReportLineResponse{
		ID:          l.ID,
		Order:       l.Order,
		Name:        l.Name,
		NameStyle:   l.NameStyle,
		Style:       l.Style,
		Visible:     l.Visible,
		Drillable:   l.Drillable,
		TypeFormats: []string{},
		Values:      []string{},
	}
}

func valuesLine(values ...string) ReportLineResponse {
	return ReportLineResponse{Visible: true, TypeFormats: []string{}, Values: values}
}
