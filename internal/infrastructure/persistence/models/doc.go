// Package models contains GORM persistence models for the report store.
// Every model converts itself with ToDomain.
//
// Structure:
//   - base.go: shared timestamp columns
//   - report.go: report configuration (reports, lines, summaries, views) and fact rows
//   - directory.go: clients and stores
//   - sources.go: normalized DMS extracts read by the analytic queries
package models

// All returns a zero value of every model, in dependency order.
func All() []any {
	return []any{
		&ClientModel{},
		&StoreModel{},
		&ReportModel{},
		&ReportViewModel{},
		&ReportLineModel{},
		&ReportLineCellCalcModel{},
		&LineValueModel{},
		&SummaryModel{},
		&GLDetailModel{},
		&GLHistoryModel{},
		&InventoryModel{},
		&SaleModel{},
		&CalendarDayModel{},
	}
}
