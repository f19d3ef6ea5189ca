package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestVariance(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		prior   int64
		want    string
	}{
		{"zero prior with current doubles", 100, 0, "200%"},
		{"zero prior and zero current", 0, 0, "0%"},
		{"growth", 150, 100, "150.00%"},
		{"decline", 50, 100, "50.00%"},
		{"negative prior uses its magnitude", -50, -100, "150.00%"},
		{"no change centres at one hundred", 42, 42, "100.00%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Variance(decimal.NewFromInt(tt.current), decimal.NewFromInt(tt.prior))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVarianceOf(t *testing.T) {
	assert.Equal(t, "150.00%", VarianceOf("$1,500", "1000"))
	assert.Equal(t, "200%", VarianceOf("12", ""))
	assert.Equal(t, "0%", VarianceOf("n/a", "10"))
	assert.Equal(t, "0%", VarianceOf("10", "n/a"))
	assert.Equal(t, "33.33%", VarianceOf("1", "3"))
}
