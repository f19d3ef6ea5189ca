package models

import (
	"encoding/json"
	"time"

	"github.com/dealer/reporting/internal/domain/report"
	"go.uber.org/zap"
)

// modelLogger reports conversion errors through the global logger.
func modelLogger() *zap.Logger {
	return zap.L().Named("report.models")
}

// ReportModel is the persistence model for a report definition.
// A NULL client_id marks a shared base template.
type ReportModel struct {
	ID              int64            `gorm:"primaryKey"`
	ClientID        *int64           `gorm:"index"`
	Name            string           `gorm:"type:varchar(200);not null"`
	Description     string           `gorm:"type:text"`
	Kind            string           `gorm:"type:varchar(20);not null"`
	Variant         string           `gorm:"type:varchar(40)"`
	SplitByStore    bool             `gorm:"not null"`
	ColumnsUsed     int              `gorm:"not null"`
	AggrByColumnIdx int              `gorm:"not null"`
	SummaryStyle    string           `gorm:"type:varchar(40)"`
	SubSectionID    int64            `gorm:"index"`
	SortOrder       int              `gorm:"column:sort_order;not null"`
	Style           string           `gorm:"type:varchar(100)"`
	Visible         bool             `gorm:"not null"`
	Active          bool             `gorm:"not null;index"`
	ColumnsJSON     string           `gorm:"column:columns"`
	View            *ReportViewModel `gorm:"foreignKey:ReportID"`
	Timestamps
}

// TableName returns the table name for GORM
func (ReportModel) TableName() string {
	return "reports"
}

// ToDomain converts the persistence model to a domain Report. The variant is
// resolved here so that legacy rows without a stored tag still dispatch.
func (m *ReportModel) ToDomain() *report.Report {
	r := &report.Report{
		ID:              m.ID,
		ClientID:        m.ClientID,
		Name:            m.Name,
		Description:     m.Description,
		Kind:            report.Kind(m.Kind),
		Variant:         report.ResolveVariant(m.Variant, m.Name),
		SplitByStore:    m.SplitByStore,
		ColumnsUsed:     m.ColumnsUsed,
		AggrByColumnIdx: m.AggrByColumnIdx,
		SummaryStyle:    report.SummaryStyle(m.SummaryStyle),
		SubSectionID:    m.SubSectionID,
		Order:           m.SortOrder,
		Style:           m.Style,
		Visible:         m.Visible,
		Active:          m.Active,
		Columns:         decodeStrings(m.ColumnsJSON, "columns", m.ID),
	}
	if m.View != nil {
		r.View = m.View.ToDomain()
	}
	return r
}

// ReportViewModel holds front-end metadata of a report.
type ReportViewModel struct {
	ID           int64  `gorm:"primaryKey"`
	ReportID     int64  `gorm:"uniqueIndex;not null"`
	ViewID       string `gorm:"type:varchar(100)"`
	WhereClause  string `gorm:"column:where_clause;type:text"`
	States       string `gorm:"type:text"`
	MessageBoard string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ReportViewModel) TableName() string {
	return "report_views"
}

// ToDomain converts the persistence model to a domain View
func (m *ReportViewModel) ToDomain() *report.View {
	return &report.View{
		ViewID:       m.ViewID,
		Where:        m.WhereClause,
		States:       m.States,
		MessageBoard: m.MessageBoard,
	}
}

// ReportLineModel is the persistence model for a row template.
type ReportLineModel struct {
	ID          int64  `gorm:"primaryKey"`
	ReportID    int64  `gorm:"not null;index"`
	SortOrder   int    `gorm:"column:sort_order;not null"`
	Name        string `gorm:"type:varchar(200);not null;index"`
	NameStyle   string `gorm:"type:varchar(100)"`
	Style       string `gorm:"type:varchar(100)"`
	FormatsJSON string `gorm:"column:formats"`
	KeyLine     bool   `gorm:"not null"`
	Visible     bool   `gorm:"not null"`
	Drillable   bool   `gorm:"not null"`
	Active      bool   `gorm:"not null"`
	Timestamps
}

// TableName returns the table name for GORM
func (ReportLineModel) TableName() string {
	return "report_lines"
}

// ToDomain converts the persistence model to a domain ReportLine
func (m *ReportLineModel) ToDomain() *report.ReportLine {
	raw := decodeStrings(m.FormatsJSON, "formats", m.ID)
	formats := make([]report.CellFormat, len(raw))
	for i, f := range raw {
		formats[i] = report.CellFormat(f)
	}
	return &report.ReportLine{
		ID:        m.ID,
		ReportID:  m.ReportID,
		Order:     m.SortOrder,
		Name:      m.Name,
		NameStyle: m.NameStyle,
		Style:     m.Style,
		Formats:   formats,
		KeyLine:   m.KeyLine,
		Visible:   m.Visible,
		Drillable: m.Drillable,
		Active:    m.Active,
	}
}

// ReportLineCellCalcModel stores per-cell calculation inputs of a line,
// such as the quoted model codes of a gross profit line.
type ReportLineCellCalcModel struct {
	ID           int64  `gorm:"primaryKey"`
	ReportLineID int64  `gorm:"not null;index"`
	ColumnIndex  int    `gorm:"not null"`
	Value        string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ReportLineCellCalcModel) TableName() string {
	return "report_line_cell_calcs"
}

// LineValueModel is the persistence model for a stored fact row.
type LineValueModel struct {
	ID              int64     `gorm:"primaryKey"`
	ReportLineID    int64     `gorm:"not null;index"`
	ReportID        int64     `gorm:"not null;index:idx_line_values_lookup,priority:1"`
	ClientID        int64     `gorm:"not null;index:idx_line_values_lookup,priority:2"`
	StoreID         *int64    `gorm:"index:idx_line_values_lookup,priority:3"`
	Period          string    `gorm:"type:varchar(10);not null;index:idx_line_values_lookup,priority:4"`
	CellsJSON       string    `gorm:"column:cells"`
	SplitByStoreIDs string    `gorm:"column:split_by_store_ids;type:varchar(500)"`
	CreatedOn       time.Time `gorm:"not null"`
	Active          bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LineValueModel) TableName() string {
	return "report_line_values"
}

// ToDomain converts the persistence model to a domain LineValue
func (m *LineValueModel) ToDomain() report.LineValue {
	return report.LineValue{
		ID:              m.ID,
		ReportLineID:    m.ReportLineID,
		ReportID:        m.ReportID,
		ClientID:        m.ClientID,
		StoreID:         m.StoreID,
		Period:          m.Period,
		Cells:           decodeStrings(m.CellsJSON, "cells", m.ID),
		SplitByStoreIDs: m.SplitByStoreIDs,
		CreatedOn:       m.CreatedOn,
		Active:          m.Active,
	}
}

// SummaryModel is the persistence model for a KPI widget.
type SummaryModel struct {
	ID            int64  `gorm:"primaryKey"`
	ReportID      int64  `gorm:"not null;index"`
	Name          string `gorm:"type:varchar(200)"`
	Style         string `gorm:"type:varchar(40)"`
	LinesQty      int    `gorm:"not null"`
	TargetColumns string `gorm:"type:varchar(100)"`
	ColumnTitles  string `gorm:"type:varchar(500)"`
	CalcMode      string `gorm:"type:varchar(40)"`
	Position      string `gorm:"type:varchar(40)"`
	SortOrder     int    `gorm:"column:sort_order;not null"`
	Main          bool   `gorm:"not null"`
	Active        bool   `gorm:"not null"`
	Timestamps
}

// TableName returns the table name for GORM
func (SummaryModel) TableName() string {
	return "report_summaries"
}

// ToDomain converts the persistence model to a domain Summary
func (m *SummaryModel) ToDomain() *report.Summary {
	return &report.Summary{
		ID:            m.ID,
		ReportID:      m.ReportID,
		Name:          m.Name,
		Style:         report.SummaryStyle(m.Style),
		LinesQty:      m.LinesQty,
		TargetColumns: m.TargetColumns,
		ColumnTitles:  m.ColumnTitles,
		CalcMode:      report.CalcMode(m.CalcMode),
		Position:      m.Position,
		Order:         m.SortOrder,
		Main:          m.Main,
		Active:        m.Active,
	}
}

// EncodeStrings renders a string slice in the JSON column layout.
func EncodeStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeStrings(raw, column string, id int64) []string {
	if raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		modelLogger().Warn("failed to parse JSON column",
			zap.String("column", column),
			zap.Int64("id", id),
			zap.String("raw_json", raw),
			zap.Error(err))
		return []string{}
	}
	return out
}
