package report

import (
	"errors"
	"testing"
	"time"

	"github.com/dealer/reporting/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

func TestNormalizePeriods(t *testing.T) {
	t.Run("expands a year into twelve months", func(t *testing.T) {
		got, err := NormalizePeriods([]string{"2023"}, false, fixedNow)
		require.NoError(t, err)

		assert.Equal(t, GranularityYearlyExpanded, got.Granularity)
		require.Len(t, got.Periods, 12)
		assert.Equal(t, "2023-01", got.Periods[0])
		assert.Equal(t, "2023-12", got.Periods[11])
		assert.Equal(t, 1, got.Requested)
	})

	t.Run("removes duplicates keeping order", func(t *testing.T) {
		got, err := NormalizePeriods([]string{"2024-02", "2024-01", "2024-02"}, false, fixedNow)
		require.NoError(t, err)

		assert.Equal(t, []string{"2024-02", "2024-01"}, got.Periods)
		assert.Equal(t, GranularityMonthly, got.Granularity)
	})

	t.Run("accepts a daily range", func(t *testing.T) {
		got, err := NormalizePeriods([]string{"2024-03-01", "2024-03-15"}, false, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, GranularityDailyRange, got.Granularity)

		from, to, ok := got.DateRange()
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), from)
		assert.Equal(t, 15, to.Day())
		assert.Equal(t, 23, to.Hour())
	})

	t.Run("rejects an empty list", func(t *testing.T) {
		_, err := NormalizePeriods(nil, false, fixedNow)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.Contains(t, err.Error(), MsgPeriodRequired)
	})

	mixed := [][]string{
		{"2023", "2023-05"},
		{"2023-05", "2023"},
		{"2023-05", "2023-05-01"},
		{"2023-05-01", "2023"},
	}
	for _, periods := range mixed {
		periods := periods
		t.Run("rejects mixed formats "+periods[0]+"/"+periods[1], func(t *testing.T) {
			_, err := NormalizePeriods(periods, false, fixedNow)
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrValidation))
		})
	}

	t.Run("rejects unknown formats and impossible months", func(t *testing.T) {
		for _, p := range []string{"24-03", "2024/03", "2024-13", "2024-02-30", "March"} {
			_, err := NormalizePeriods([]string{p}, false, fixedNow)
			assert.Error(t, err, p)
		}
	})

	t.Run("trend ignores the caller periods", func(t *testing.T) {
		got, err := NormalizePeriods([]string{"garbage"}, true, fixedNow)
		require.NoError(t, err)

		require.Len(t, got.Periods, TrendMonths)
		assert.Equal(t, "2024-03", got.Periods[0])
		assert.Equal(t, "2022-04", got.Periods[23])
		assert.Equal(t, GranularityMonthly, got.Granularity)
	})
}

func TestComparisonPeriod(t *testing.T) {
	tests := []struct {
		name   string
		period string
		target Target
		want   string
	}{
		{"prior month", "2024-05", TargetPriorMonth, "2024-04"},
		{"prior month wraps the year", "2024-01", TargetPriorMonth, "2023-12"},
		{"same month last year", "2024-05", TargetSameMonthLastYear, "2023-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComparisonPeriod(tt.period, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("three month average fails fast", func(t *testing.T) {
		_, err := ComparisonPeriod("2024-05", TargetThreeMonthsAverage)
		assert.True(t, errors.Is(err, shared.ErrNotImplemented))
	})
}

func TestParseTarget(t *testing.T) {
	got, err := ParseTarget("2")
	require.NoError(t, err)
	assert.Equal(t, TargetSameMonthLastYear, got)

	got, err = ParseTarget("")
	require.NoError(t, err)
	assert.Equal(t, TargetPriorMonth, got)

	_, err = ParseTarget("9")
	assert.Error(t, err)
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "March 24", MonthLabel("2024-03"))
	assert.Equal(t, "December 23", MonthLabel("2023-12"))
	assert.Equal(t, "bogus", MonthLabel("bogus"))
}

func TestIsPeriod(t *testing.T) {
	for _, p := range []string{"2024", "2024-03", "2024-02-29"} {
		assert.True(t, IsPeriod(p), p)
	}
	for _, p := range []string{"", "24", "2024-13", "2023-02-29", "2024/03", "March"} {
		assert.False(t, IsPeriod(p), p)
	}
}
