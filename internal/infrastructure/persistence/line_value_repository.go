package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const lineValuesTable = "report_line_values"

// GormLineValueRepository implements report.LineValueRepository using GORM
type GormLineValueRepository struct {
	db *gorm.DB
}

// NewGormLineValueRepository creates a new GormLineValueRepository
func NewGormLineValueRepository(db *gorm.DB) *GormLineValueRepository {
	return &GormLineValueRepository{db: db}
}

// WithTx returns a new repository instance that uses the given transaction
func (r *GormLineValueRepository) WithTx(tx *gorm.DB) *GormLineValueRepository {
	return &GormLineValueRepository{db: tx}
}

// Find returns the active fact rows matching the filter
func (r *GormLineValueRepository) Find(ctx context.Context, filter report.ValueFilter) ([]report.LineValue, error) {
	query := r.db.WithContext(ctx).
		Model(&models.LineValueModel{}).
		Scopes(valueFilterScope(filter))

	if filter.OrderByLine {
		query = query.
			Select(lineValuesTable+".*").
			Joins("JOIN report_lines ON report_lines.id = "+lineValuesTable+".report_line_id").
			Order("report_lines.sort_order ASC").
			Order(lineValuesTable + ".id ASC")
	} else {
		query = query.Order(lineValuesTable + ".id ASC")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []models.LineValueModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query line values: %w", err)
	}
	values := make([]report.LineValue, len(rows))
	for i := range rows {
		values[i] = rows[i].ToDomain()
	}
	return values, nil
}

// EarliestPeriod returns the smallest stored period of a report and store,
// or "" when there is none
func (r *GormLineValueRepository) EarliestPeriod(ctx context.Context, reportID, storeID int64) (string, error) {
	var earliest sql.NullString
	err := r.db.WithContext(ctx).
		Model(&models.LineValueModel{}).
		Select("MIN(period)").
		Where("report_id = ? AND store_id = ? AND active = ?", reportID, storeID, true).
		Row().
		Scan(&earliest)
	if err != nil {
		return "", fmt.Errorf("failed to query earliest period: %w", err)
	}
	return earliest.String, nil
}

// valueFilterScope applies the non-zero fields of a ValueFilter. Columns are
// qualified because the line-order join brings report_lines into scope.
func valueFilterScope(f report.ValueFilter) func(*gorm.DB) *gorm.DB {
	col := func(name string) string { return lineValuesTable + "." + name }
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where(col("active")+" = ?", true)
		if f.ReportID != 0 {
			db = db.Where(col("report_id")+" = ?", f.ReportID)
		}
		if f.ClientID != 0 {
			db = db.Where(col("client_id")+" = ?", f.ClientID)
		}
		if len(f.LineIDs) > 0 {
			db = db.Where(col("report_line_id")+" IN ?", f.LineIDs)
		}
		if len(f.StoreIDs) > 0 {
			db = db.Where(col("store_id")+" IN ?", f.StoreIDs)
		}
		if len(f.Periods) > 0 {
			db = db.Where(col("period")+" IN ?", f.Periods)
		}
		if f.CreatedOn != nil {
			db = db.Where(col("created_on")+" BETWEEN ? AND ?", f.CreatedOn.From, f.CreatedOn.To)
		}
		return db
	}
}

var _ report.LineValueRepository = (*GormLineValueRepository)(nil)
