package report

import (
	"fmt"

	"github.com/dealer/reporting/internal/domain/shared"
)

// Messages surfaced to callers.
const (
	MsgPeriodRequired  = "at least one period required"
	MsgMixedPeriods    = "all periods must share the same format (YYYY, YYYY-MM or YYYY-MM-DD)"
	MsgMonthlyRequired = "Invalid period format. It must be YYYY-MM when trying to get report By Month or By Trend."
	MsgAmbiguousPath   = "The data combination specified doesn't belong to any allowed form of the report: " +
		"Whole report (one store with one YYYY-MM period or a YYYY-MM-DD start/end pair), " +
		"By Store (zero or several stores with one YYYY-MM period or a YYYY-MM-DD start/end pair), " +
		"By Month/Trend (trend flag, or several YYYY-MM periods without exactly one store)"
)

func errColumnsUsed(n int) error {
	return shared.NewValidationError(fmt.Sprintf("columns used (%d) exceeds the available column slots", n))
}

func errPeriodFormat(period string) error {
	return shared.NewValidationError(fmt.Sprintf("invalid period %q: %s", period, MsgMixedPeriods))
}

func errAmbiguousPath() error {
	return shared.NewDomainError(shared.CodeAmbiguousPath, MsgAmbiguousPath)
}
