package report

import (
	"context"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/stretchr/testify/mock"
)

// MockReportConfigRepository is a mock implementation of ReportConfigRepository
type MockReportConfigRepository struct {
	mock.Mock
}

func (m *MockReportConfigRepository) FindReport(ctx context.Context, reportID, clientID int64) (*report.Report, error) {
	args := m.Called(ctx, reportID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

func (m *MockReportConfigRepository) FindClientReport(ctx context.Context, reportID, clientID int64) (*report.Report, error) {
	args := m.Called(ctx, reportID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

func (m *MockReportConfigRepository) ListLines(ctx context.Context, reportID int64) ([]report.ReportLine, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).([]report.ReportLine), args.Error(1)
}

func (m *MockReportConfigRepository) ListKeyLines(ctx context.Context, reportID int64) ([]report.ReportLine, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).([]report.ReportLine), args.Error(1)
}

func (m *MockReportConfigRepository) FirstLine(ctx context.Context, reportID int64) (*report.ReportLine, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.ReportLine), args.Error(1)
}

func (m *MockReportConfigRepository) FindLine(ctx context.Context, lineID int64) (*report.ReportLine, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.ReportLine), args.Error(1)
}

func (m *MockReportConfigRepository) FindLineByName(ctx context.Context, name string) (*report.ReportLine, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.ReportLine), args.Error(1)
}

func (m *MockReportConfigRepository) ListSummaries(ctx context.Context, reportID int64, main bool) ([]report.Summary, error) {
	args := m.Called(ctx, reportID, main)
	return args.Get(0).([]report.Summary), args.Error(1)
}

func (m *MockReportConfigRepository) MainSummary(ctx context.Context, reportID int64) (*report.Summary, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Summary), args.Error(1)
}

func (m *MockReportConfigRepository) ListBySubSection(ctx context.Context, clientID, subSectionID int64) ([]report.Report, error) {
	args := m.Called(ctx, clientID, subSectionID)
	return args.Get(0).([]report.Report), args.Error(1)
}

// MockLineValueRepository is a mock implementation of LineValueRepository
type MockLineValueRepository struct {
	mock.Mock
}

func (m *MockLineValueRepository) Find(ctx context.Context, filter report.ValueFilter) ([]report.LineValue, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]report.LineValue), args.Error(1)
}

func (m *MockLineValueRepository) EarliestPeriod(ctx context.Context, reportID, storeID int64) (string, error) {
	args := m.Called(ctx, reportID, storeID)
	return args.String(0), args.Error(1)
}

// MockStoreDirectory is a mock implementation of StoreDirectory
type MockStoreDirectory struct {
	mock.Mock
}

func (m *MockStoreDirectory) ActiveStores(ctx context.Context, clientID int64) ([]report.Store, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]report.Store), args.Error(1)
}

func (m *MockStoreDirectory) StoresByIDs(ctx context.Context, clientID int64, ids []int64) ([]report.Store, error) {
	args := m.Called(ctx, clientID, ids)
	return args.Get(0).([]report.Store), args.Error(1)
}

func (m *MockStoreDirectory) FindClient(ctx context.Context, clientID int64) (*report.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Client), args.Error(1)
}

// MockAnalyticQueries is a mock implementation of AnalyticQueries
type MockAnalyticQueries struct {
	mock.Mock
}

func (m *MockAnalyticQueries) ContractsInTransit(ctx context.Context, req report.ContractsInTransitRequest) ([]report.ContractsInTransitRow, error) {
	args := m.Called(ctx, req)
	return args.Get(0).([]report.ContractsInTransitRow), args.Error(1)
}

func (m *MockAnalyticQueries) ModelMix(ctx context.Context, req report.ModelMixRequest) ([]report.ModelMixRow, error) {
	args := m.Called(ctx, req)
	return args.Get(0).([]report.ModelMixRow), args.Error(1)
}

func (m *MockAnalyticQueries) ProductPenetration(ctx context.Context, req report.ProductPenetrationRequest) ([]report.ProductPenetrationRow, error) {
	args := m.Called(ctx, req)
	return args.Get(0).([]report.ProductPenetrationRow), args.Error(1)
}

func (m *MockAnalyticQueries) SalespersonRanking(ctx context.Context, req report.SalespersonRankingRequest) ([]report.SalespersonRow, error) {
	args := m.Called(ctx, req)
	return args.Get(0).([]report.SalespersonRow), args.Error(1)
}

type engineMocks struct {
	configs  *MockReportConfigRepository
	values   *MockLineValueRepository
	stores   *MockStoreDirectory
	analytic *MockAnalyticQueries
}

func (m *engineMocks) assertExpectations(t mock.TestingT) {
	m.configs.AssertExpectations(t)
	m.values.AssertExpectations(t)
	m.stores.AssertExpectations(t)
	m.analytic.AssertExpectations(t)
}
