package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dealer/reporting/internal/domain/shared"
	"github.com/dealer/reporting/internal/interfaces/http/dto"
	"github.com/dealer/reporting/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name: "from context",
			setup: func(c *gin.Context) {
				c.Set("request_id", "ctx-request-id")
			},
			expectedID: "ctx-request-id",
		},
		{
			name: "from header when context empty",
			setup: func(c *gin.Context) {
				c.Request.Header.Set(middleware.RequestIDHeader, "header-request-id")
			},
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "not found",
			err:     shared.NewNotFoundError("Report 9 not found"),
			status:  http.StatusNotFound,
			code:    dto.ErrCodeNotFound,
			message: "Report 9 not found",
		},
		{
			name:    "validation",
			err:     shared.NewValidationError("bad period"),
			status:  http.StatusBadRequest,
			code:    dto.ErrCodeValidation,
			message: "bad period",
		},
		{
			name:    "ambiguous path",
			err:     shared.NewDomainError(shared.CodeAmbiguousPath, "no rendering path"),
			status:  http.StatusBadRequest,
			code:    dto.ErrCodeAmbiguousPath,
			message: "no rendering path",
		},
		{
			name:    "not implemented",
			err:     shared.NewNotImplementedError("ThreeMonthsAverage comparison is not supported yet"),
			status:  http.StatusBadRequest,
			code:    dto.ErrCodeNotImplemented,
			message: "ThreeMonthsAverage comparison is not supported yet",
		},
		{
			name:    "wrapped domain error",
			err:     fmt.Errorf("render: %w", shared.NewNotFoundError("Report line 3 not found")),
			status:  http.StatusNotFound,
			code:    dto.ErrCodeNotFound,
			message: "Report line 3 not found",
		},
		{
			name:    "data shape",
			err:     shared.NewDomainError(shared.CodeDataShape, "missing row"),
			status:  http.StatusInternalServerError,
			code:    dto.ErrCodeDataShape,
			message: "missing row",
		},
		{
			name:    "plain error hides details",
			err:     errors.New("pq: connection refused"),
			status:  http.StatusInternalServerError,
			code:    dto.ErrCodeInternal,
			message: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set("request_id", "req-1")

			h := &BaseHandler{}
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	(&BaseHandler{}).HandleError(c, nil)
	assert.Zero(t, w.Body.Len())
}

func TestBaseHandler_BindError(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"reportId":`, http.StatusBadRequest, dto.ErrCodeInvalidJSON},
		{"wrong type", `{"reportId": "seven", "periods": ["2024-01"]}`, http.StatusBadRequest, dto.ErrCodeInvalidJSON},
		{"validation", `{"reportId": 7, "periods": ["2024-1"]}`, http.StatusBadRequest, dto.ErrCodeValidation},
		{"unknown target", `{"reportId": 7, "periods": ["2024-01"], "target": "Yesterday"}`, http.StatusBadRequest, dto.ErrCodeValidation},
		{"ok", `{"reportId": 7, "periods": ["2024-01"], "target": 2}`, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			h := &BaseHandler{}
			router.POST("/test", func(c *gin.Context) {
				var req RenderReportRequest
				if err := c.ShouldBindJSON(&req); err != nil {
					h.BindError(c, err)
					return
				}
				h.Success(c, req.ToEngine(1))
			})

			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code, w.Body.String())
			resp := decodeResponse(t, w)
			if tt.code == "" {
				assert.True(t, resp.Success)
				return
			}
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}
