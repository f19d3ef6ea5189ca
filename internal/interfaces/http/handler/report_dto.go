package handler

import (
	"bytes"
	"encoding/json"
	"strconv"

	reportapp "github.com/dealer/reporting/internal/application/report"
	"github.com/dealer/reporting/internal/domain/report"
)

// TargetValue is a comparison target sent either as a number (1, 2, 3) or
// by name ("PriorMonth", "SameMonthLastYear", "ThreeMonthsAverage").
// Absent or null means PriorMonth.
type TargetValue struct {
	report.Target
}

// UnmarshalJSON implements json.Unmarshaler
func (t *TargetValue) UnmarshalJSON(data []byte) error {
	var raw string
	switch {
	case bytes.Equal(data, []byte("null")):
		raw = ""
	case len(data) > 0 && data[0] == '"':
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	default:
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		raw = strconv.Itoa(n)
	}

	target, err := report.ParseTarget(raw)
	if err != nil {
		return err
	}
	t.Target = target
	return nil
}

// Value returns the target, defaulting to PriorMonth
func (t TargetValue) Value() report.Target {
	if t.Target == 0 {
		return report.TargetPriorMonth
	}
	return t.Target
}

// RenderReportRequest is the body of POST /reports/render
type RenderReportRequest struct {
	ReportID int64       `json:"reportId" binding:"required,gt=0"`
	StoreIDs []int64     `json:"storeIds" binding:"omitempty,dive,gt=0"`
	Periods  []string    `json:"periods" binding:"required_unless=ByTrend true,omitempty,dive,period"`
	ByTrend  bool        `json:"byTrend"`
	Target   TargetValue `json:"target"`
}

// ToEngine converts the body into an engine request for clientID
func (r RenderReportRequest) ToEngine(clientID int64) reportapp.ReportRequest {
	return reportapp.ReportRequest{
		ReportID: r.ReportID,
		ClientID: clientID,
		StoreIDs: r.StoreIDs,
		Periods:  r.Periods,
		ByTrend:  r.ByTrend,
		Target:   r.Target.Value(),
	}
}

// SummaryRequest is the body of POST /reports/summary
type SummaryRequest struct {
	ReportID        int64       `json:"reportId" binding:"required,gt=0"`
	StoreID         int64       `json:"storeId" binding:"required,gt=0"`
	Period          string      `json:"period" binding:"required,period"`
	Target          TargetValue `json:"target"`
	SelectedOptions []int       `json:"selectedOptions"`
}

// ToEngine converts the body into an engine request for clientID
func (r SummaryRequest) ToEngine(clientID int64) reportapp.SummaryRequest {
	return reportapp.SummaryRequest{
		ReportID:        r.ReportID,
		ClientID:        clientID,
		StoreID:         r.StoreID,
		Period:          r.Period,
		Target:          r.Target.Value(),
		SelectedOptions: r.SelectedOptions,
	}
}

// DrilldownRequest is the body of POST /reports/drilldown
type DrilldownRequest struct {
	Level        int      `json:"level" binding:"required,gte=1"`
	ReportLineID *int64   `json:"reportLineId" binding:"omitempty,gt=0"`
	AccountNo    string   `json:"accountNo"`
	StoreIDs     []int64  `json:"storeIds" binding:"omitempty,dive,gt=0"`
	Periods      []string `json:"periods" binding:"omitempty,dive,period"`
}

// ToEngine converts the body into an engine request
func (r DrilldownRequest) ToEngine() reportapp.DrilldownRequest {
	return reportapp.DrilldownRequest{
		Level:        r.Level,
		ReportLineID: r.ReportLineID,
		AccountNo:    r.AccountNo,
		StoreIDs:     r.StoreIDs,
		Periods:      r.Periods,
	}
}

// ListReportsQuery is the query of GET /reports
type ListReportsQuery struct {
	SubSectionID int64 `form:"subSectionId" binding:"required,gt=0"`
}
