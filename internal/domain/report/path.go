package report

import "github.com/dealer/reporting/internal/domain/shared"

// Path is the rendering strategy chosen for a request.
type Path string

const (
	PathWhole   Path = "whole"
	PathByStore Path = "by_store"
	PathByMonth Path = "by_month"
)

// PathInput captures everything the selector looks at.
type PathInput struct {
	StoreCount   int
	PeriodCount  int
	Granularity  Granularity
	Trend        bool
	SplitByStore bool
}

// SelectPath picks the rendering path. Store-split reports are only ever
// rendered whole; the caller then expands the store list to every active
// store of the client.
func SelectPath(in PathInput) (Path, error) {
	periodOK := (in.Granularity.IsMonthly() && in.PeriodCount == 1) ||
		(in.Granularity == GranularityDailyRange && in.PeriodCount == 2)

	if in.SplitByStore {
		if !in.Trend && periodOK {
			return PathWhole, nil
		}
		return "", errAmbiguousPath()
	}

	switch {
	case !in.Trend && in.StoreCount == 1 && periodOK:
		return PathWhole, nil
	case !in.Trend && in.StoreCount != 1 && periodOK:
		return PathByStore, nil
	case in.Trend || (in.StoreCount != 1 && in.PeriodCount > 1):
		if !in.Trend && !in.Granularity.IsMonthly() {
			return "", shared.NewValidationError(MsgMonthlyRequired)
		}
		return PathByMonth, nil
	}
	return "", errAmbiguousPath()
}
