package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	reportapp "github.com/dealer/reporting/internal/application/report"
	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/domain/shared"
	"github.com/dealer/reporting/internal/interfaces/http/dto"
	"github.com/dealer/reporting/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Render(ctx context.Context, req reportapp.ReportRequest) (*reportapp.ReportDetailResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reportapp.ReportDetailResponse), args.Error(1)
}

func (m *mockEngine) RenderSummary(ctx context.Context, req reportapp.SummaryRequest) (*reportapp.ReportSummaryResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reportapp.ReportSummaryResponse), args.Error(1)
}

func (m *mockEngine) RenderLineDrilldown(ctx context.Context, req reportapp.DrilldownRequest) (*reportapp.ReportDetailResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reportapp.ReportDetailResponse), args.Error(1)
}

func (m *mockEngine) ListReports(ctx context.Context, clientID, subSectionID int64) ([]reportapp.ReportListItem, error) {
	args := m.Called(ctx, clientID, subSectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reportapp.ReportListItem), args.Error(1)
}

func (m *mockEngine) SystemDate(ctx context.Context, clientID int64) (*reportapp.SystemDateResponse, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reportapp.SystemDateResponse), args.Error(1)
}

func newReportRouter(engine ReportEngine) *gin.Engine {
	h := NewReportHandler(engine)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ClientMiddleware())
	api := router.Group("/api/v1")
	api.POST("/reports/render", h.Render)
	api.POST("/reports/summary", h.Summary)
	api.POST("/reports/drilldown", h.Drilldown)
	api.GET("/reports", h.List)
	api.GET("/system/date", h.SystemDate)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set(middleware.ClientHeaderKey, "7")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sampleDetail() *reportapp.ReportDetailResponse {
	return &reportapp.ReportDetailResponse{
		Path:         report.PathWhole,
		ReportConfig: reportapp.ReportConfigResponse{ID: 12, Name: "Dealer P&L", Columns: []string{"MTD"}},
		ReportLines: []reportapp.ReportLineResponse{
			{Order: 1, Name: "Sales", Visible: true, TypeFormats: []string{"currency"}, Values: []string{"1200.50"}},
		},
		ReportSummaries: []reportapp.ReportSummaryResponse{},
	}
}

func TestReportHandler_Render(t *testing.T) {
	engine := new(mockEngine)
	expected := reportapp.ReportRequest{
		ReportID: 12,
		ClientID: 7,
		StoreIDs: []int64{3},
		Periods:  []string{"2024-01", "2024-02"},
		ByTrend:  true,
		Target:   report.TargetSameMonthLastYear,
	}
	engine.On("Render", mock.Anything, expected).Return(sampleDetail(), nil)

	w := doRequest(newReportRouter(engine), http.MethodPost, "/api/v1/reports/render",
		`{"reportId": 12, "storeIds": [3], "periods": ["2024-01", "2024-02"], "byTrend": true, "target": 2}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "Dealer P&L", data["report_config"].(map[string]any)["name"])
	assert.Len(t, data["report_lines"], 1)
	engine.AssertExpectations(t)
}

func TestReportHandler_Render_TrendWithoutPeriods(t *testing.T) {
	engine := new(mockEngine)
	engine.On("Render", mock.Anything, mock.MatchedBy(func(req reportapp.ReportRequest) bool {
		return req.ByTrend && len(req.Periods) == 0 && req.Target == report.TargetPriorMonth
	})).Return(sampleDetail(), nil)

	w := doRequest(newReportRouter(engine), http.MethodPost, "/api/v1/reports/render",
		`{"reportId": 12, "storeIds": [3], "periods": [], "byTrend": true}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	engine.AssertExpectations(t)
}

func TestReportHandler_Render_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		engineErr error
		status    int
		code      string
	}{
		{
			name:   "missing periods",
			body:   `{"reportId": 12}`,
			status: http.StatusBadRequest,
			code:   dto.ErrCodeValidation,
		},
		{
			name:      "empty periods without trend",
			body:      `{"reportId": 12, "storeIds": [3], "periods": []}`,
			engineErr: shared.NewValidationError(report.MsgPeriodRequired),
			status:    http.StatusBadRequest,
			code:      dto.ErrCodeValidation,
		},
		{
			name:   "invalid store id",
			body:   `{"reportId": 12, "storeIds": [0], "periods": ["2024-01"]}`,
			status: http.StatusBadRequest,
			code:   dto.ErrCodeValidation,
		},
		{
			name:      "report not found",
			body:      `{"reportId": 404, "periods": ["2024-01"]}`,
			engineErr: shared.NewNotFoundError("Report 404 not found"),
			status:    http.StatusNotFound,
			code:      dto.ErrCodeNotFound,
		},
		{
			name:      "ambiguous path",
			body:      `{"reportId": 12, "storeIds": [1, 2], "periods": ["2024-01", "2024-02"]}`,
			engineErr: shared.NewDomainError(shared.CodeAmbiguousPath, "Several stores and several periods"),
			status:    http.StatusBadRequest,
			code:      dto.ErrCodeAmbiguousPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := new(mockEngine)
			if tt.engineErr != nil {
				engine.On("Render", mock.Anything, mock.Anything).Return(nil, tt.engineErr)
			}

			w := doRequest(newReportRouter(engine), http.MethodPost, "/api/v1/reports/render", tt.body)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
			engine.AssertExpectations(t)
		})
	}
}

func TestReportHandler_Render_MissingClient(t *testing.T) {
	engine := new(mockEngine)
	router := newReportRouter(engine)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/render",
		strings.NewReader(`{"reportId": 12, "periods": ["2024-01"]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeMissingClient, decodeResponse(t, w).Error.Code)
	engine.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestReportHandler_Summary(t *testing.T) {
	engine := new(mockEngine)
	expected := reportapp.SummaryRequest{
		ReportID:        5,
		ClientID:        7,
		StoreID:         3,
		Period:          "2024-06",
		Target:          report.TargetPriorMonth,
		SelectedOptions: []int{2},
	}
	engine.On("RenderSummary", mock.Anything, expected).Return(&reportapp.ReportSummaryResponse{
		ReportConfig: reportapp.ReportConfigResponse{ID: 5, Name: "Units"},
		ReportLines:  []reportapp.ReportLineResponse{},
	}, nil)

	w := doRequest(newReportRouter(engine), http.MethodPost, "/api/v1/reports/summary",
		`{"reportId": 5, "storeId": 3, "period": "2024-06", "target": "PriorMonth", "selectedOptions": [2]}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	engine.AssertExpectations(t)
}

func TestReportHandler_Summary_NotImplementedTarget(t *testing.T) {
	engine := new(mockEngine)
	engine.On("RenderSummary", mock.Anything, mock.MatchedBy(func(req reportapp.SummaryRequest) bool {
		return req.Target == report.TargetThreeMonthsAverage
	})).Return(nil, shared.NewNotImplementedError("ThreeMonthsAverage comparison is not supported yet"))

	w := doRequest(newReportRouter(engine), http.MethodPost, "/api/v1/reports/summary",
		`{"reportId": 5, "storeId": 3, "period": "2024-06", "target": 3}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeNotImplemented, decodeResponse(t, w).Error.Code)
}

func TestReportHandler_Drilldown(t *testing.T) {
	engine := new(mockEngine)
	lineID := int64(31)
	engine.On("RenderLineDrilldown", mock.Anything, reportapp.DrilldownRequest{
		Level:        1,
		ReportLineID: &lineID,
		StoreIDs:     []int64{3},
		Periods:      []string{"2024-01"},
	}).Return(sampleDetail(), nil)

	w := doRequest(newReportRouter(engine), http.MethodPost, "/api/v1/reports/drilldown",
		`{"level": 1, "reportLineId": 31, "storeIds": [3], "periods": ["2024-01"]}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	engine.AssertExpectations(t)
}

func TestReportHandler_List(t *testing.T) {
	engine := new(mockEngine)
	engine.On("ListReports", mock.Anything, int64(7), int64(2)).Return(nil, nil).Once()

	router := newReportRouter(engine)
	w := doRequest(router, http.MethodGet, "/api/v1/reports?subSectionId=2", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, mustJSON(t, decodeResponse(t, w).Data))

	w = doRequest(router, http.MethodGet, "/api/v1/reports", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	engine.AssertExpectations(t)
}

func TestReportHandler_SystemDate(t *testing.T) {
	engine := new(mockEngine)
	engine.On("SystemDate", mock.Anything, int64(7)).Return(&reportapp.SystemDateResponse{ClientID: 7, YearsBackward: 3}, nil)

	w := doRequest(newReportRouter(engine), http.MethodGet, "/api/v1/system/date", "")

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, float64(3), data["years_backward"])
}
