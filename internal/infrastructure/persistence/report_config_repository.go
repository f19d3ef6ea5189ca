package persistence

import (
	"context"
	"errors"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/domain/shared"
	"github.com/dealer/reporting/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReportConfigRepository implements report.ReportConfigRepository using GORM
type GormReportConfigRepository struct {
	db *gorm.DB
}

// NewGormReportConfigRepository creates a new GormReportConfigRepository
func NewGormReportConfigRepository(db *gorm.DB) *GormReportConfigRepository {
	return &GormReportConfigRepository{db: db}
}

// WithTx returns a new repository instance that uses the given transaction
func (r *GormReportConfigRepository) WithTx(tx *gorm.DB) *GormReportConfigRepository {
	return &GormReportConfigRepository{db: tx}
}

// FindReport returns an active report owned by the client or shared by all clients
func (r *GormReportConfigRepository) FindReport(ctx context.Context, reportID, clientID int64) (*report.Report, error) {
	var model models.ReportModel
	err := r.db.WithContext(ctx).
		Preload("View").
		Where("id = ? AND active = ?", reportID, true).
		Where("client_id IS NULL OR client_id = ?", clientID).
		First(&model).Error
	if err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindClientReport returns an active report owned by the client
func (r *GormReportConfigRepository) FindClientReport(ctx context.Context, reportID, clientID int64) (*report.Report, error) {
	var model models.ReportModel
	err := r.db.WithContext(ctx).
		Preload("View").
		Where("id = ? AND client_id = ? AND active = ?", reportID, clientID, true).
		First(&model).Error
	if err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ListLines returns the active lines of a report in display order
func (r *GormReportConfigRepository) ListLines(ctx context.Context, reportID int64) ([]report.ReportLine, error) {
	return r.findLines(ctx, r.db.Where("report_id = ? AND active = ?", reportID, true))
}

// ListKeyLines returns the active key lines of a report in display order
func (r *GormReportConfigRepository) ListKeyLines(ctx context.Context, reportID int64) ([]report.ReportLine, error) {
	return r.findLines(ctx, r.db.Where("report_id = ? AND active = ? AND key_line = ?", reportID, true, true))
}

func (r *GormReportConfigRepository) findLines(ctx context.Context, query *gorm.DB) ([]report.ReportLine, error) {
	var rows []models.ReportLineModel
	if err := query.WithContext(ctx).Order("sort_order ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	lines := make([]report.ReportLine, len(rows))
	for i := range rows {
		lines[i] = *rows[i].ToDomain()
	}
	return lines, nil
}

// FirstLine returns the first active line of a report
func (r *GormReportConfigRepository) FirstLine(ctx context.Context, reportID int64) (*report.ReportLine, error) {
	var model models.ReportLineModel
	err := r.db.WithContext(ctx).
		Where("report_id = ? AND active = ?", reportID, true).
		Order("sort_order ASC, id ASC").
		First(&model).Error
	if err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindLine returns an active line by id
func (r *GormReportConfigRepository) FindLine(ctx context.Context, lineID int64) (*report.ReportLine, error) {
	var model models.ReportLineModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", lineID, true).
		First(&model).Error
	if err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindLineByName returns the lowest-id active line with exactly this name
func (r *GormReportConfigRepository) FindLineByName(ctx context.Context, name string) (*report.ReportLine, error) {
	var model models.ReportLineModel
	err := r.db.WithContext(ctx).
		Where("name = ? AND active = ?", name, true).
		Order("id ASC").
		First(&model).Error
	if err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ListSummaries returns the active main or auxiliary summaries of a report
func (r *GormReportConfigRepository) ListSummaries(ctx context.Context, reportID int64, main bool) ([]report.Summary, error) {
	var rows []models.SummaryModel
	err := r.db.WithContext(ctx).
		Where("report_id = ? AND main = ? AND active = ?", reportID, main, true).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	summaries := make([]report.Summary, len(rows))
	for i := range rows {
		summaries[i] = *rows[i].ToDomain()
	}
	return summaries, nil
}

// MainSummary returns the first main summary, or nil when none is configured
func (r *GormReportConfigRepository) MainSummary(ctx context.Context, reportID int64) (*report.Summary, error) {
	var model models.SummaryModel
	err := r.db.WithContext(ctx).
		Where("report_id = ? AND main = ? AND active = ?", reportID, true, true).
		Order("sort_order ASC, id ASC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListBySubSection returns the client's reports and the shared base reports
// of a subsection in display order
func (r *GormReportConfigRepository) ListBySubSection(ctx context.Context, clientID, subSectionID int64) ([]report.Report, error) {
	var rows []models.ReportModel
	err := r.db.WithContext(ctx).
		Preload("View").
		Where("sub_section_id = ? AND active = ?", subSectionID, true).
		Where("client_id IS NULL OR client_id = ?", clientID).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	reports := make([]report.Report, len(rows))
	for i := range rows {
		reports[i] = *rows[i].ToDomain()
	}
	return reports, nil
}

// notFound maps gorm's missing-row error to the domain sentinel
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

var _ report.ReportConfigRepository = (*GormReportConfigRepository)(nil)
