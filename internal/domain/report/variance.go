package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Variance compares current against prior with "no change" centred at
// 100%. A zero prior yields 200% for any non-zero current and 0% otherwise.
func Variance(current, prior decimal.Decimal) string {
	if prior.IsZero() {
		if current.IsZero() {
			return "0%"
		}
		return "200%"
	}
	pct := current.Sub(prior).Div(prior.Abs()).Mul(hundred).Add(hundred)
	return pct.StringFixed(2) + "%"
}

// VarianceOf parses both cells before comparing. A missing prior counts as
// zero; any other unreadable input yields "0%".
func VarianceOf(current, prior string) string {
	c, ok := ParseNumber(current)
	if !ok {
		return "0%"
	}
	p, ok := ParseNumber(prior)
	if !ok && strings.TrimSpace(prior) != "" {
		return "0%"
	}
	return Variance(c, p)
}
