package handler

import (
	"encoding/json"
	"testing"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected report.Target
		wantErr  bool
	}{
		{`1`, report.TargetPriorMonth, false},
		{`2`, report.TargetSameMonthLastYear, false},
		{`3`, report.TargetThreeMonthsAverage, false},
		{`"PriorMonth"`, report.TargetPriorMonth, false},
		{`"SameMonthLastYear"`, report.TargetSameMonthLastYear, false},
		{`"2"`, report.TargetSameMonthLastYear, false},
		{`""`, report.TargetPriorMonth, false},
		{`null`, report.TargetPriorMonth, false},
		{`4`, 0, true},
		{`"Yesterday"`, 0, true},
		{`1.5`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var v TargetValue
			err := json.Unmarshal([]byte(tt.input), &v)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v.Value())
		})
	}
}

func TestRenderReportRequest_ToEngine(t *testing.T) {
	var req RenderReportRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"reportId": 12,
		"storeIds": [3, 4],
		"periods": ["2024-01", "2024-02"],
		"byTrend": true
	}`), &req))

	got := req.ToEngine(99)
	assert.Equal(t, int64(12), got.ReportID)
	assert.Equal(t, int64(99), got.ClientID)
	assert.Equal(t, []int64{3, 4}, got.StoreIDs)
	assert.Equal(t, []string{"2024-01", "2024-02"}, got.Periods)
	assert.True(t, got.ByTrend)
	assert.Equal(t, report.TargetPriorMonth, got.Target)
}

func TestSummaryRequest_ToEngine(t *testing.T) {
	var req SummaryRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"reportId": 5,
		"storeId": 8,
		"period": "2024-06",
		"target": "SameMonthLastYear",
		"selectedOptions": [1, 3]
	}`), &req))

	got := req.ToEngine(2)
	assert.Equal(t, int64(8), got.StoreID)
	assert.Equal(t, "2024-06", got.Period)
	assert.Equal(t, report.TargetSameMonthLastYear, got.Target)
	assert.Equal(t, []int{1, 3}, got.SelectedOptions)
}
