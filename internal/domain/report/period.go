package report

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/dealer/reporting/internal/domain/shared"
)

// Granularity is the canonical shape of a normalized period list.
type Granularity string

const (
	GranularityYearlyExpanded Granularity = "yearly-expanded"
	GranularityMonthly        Granularity = "monthly"
	GranularityDailyRange     Granularity = "daily-range"
)

// IsMonthly reports whether periods are YYYY-MM values.
func (g Granularity) IsMonthly() bool {
	return g == GranularityMonthly || g == GranularityYearlyExpanded
}

// TrendMonths is the size of the trend window.
const TrendMonths = 24

// MonthLayout is the canonical monthly period layout.
const MonthLayout = "2006-01"

// DayLayout is the layout of daily-range bounds.
const DayLayout = "2006-01-02"

var (
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
	monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
	dayPattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// NormalizedPeriods is the canonical output of NormalizePeriods.
type NormalizedPeriods struct {
	Periods     []string
	Granularity Granularity
	// Requested is the number of distinct periods the caller supplied,
	// before yearly expansion.
	Requested int
}

// DateRange returns the inclusive day bounds of a daily-range list.
func (n NormalizedPeriods) DateRange() (time.Time, time.Time, bool) {
	if n.Granularity != GranularityDailyRange || len(n.Periods) != 2 {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse(DayLayout, n.Periods[0])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(DayLayout, n.Periods[1])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		start, end = end, start
	}
	// inclusive end of day
	return start, end.Add(24*time.Hour - time.Nanosecond), true
}

// NormalizePeriods validates and canonicalizes caller supplied periods.
func NormalizePeriods(periods []string, byTrend bool, now time.Time) (NormalizedPeriods, error) {
	periods = dedupe(periods)

	if byTrend {
		return NormalizedPeriods{
			Periods:     TrendPeriods(now, TrendMonths),
			Granularity: GranularityMonthly,
			Requested:   TrendMonths,
		}, nil
	}
	if len(periods) == 0 {
		return NormalizedPeriods{}, shared.NewValidationError(MsgPeriodRequired)
	}

	pattern, granularity := detectFormat(periods[0])
	if pattern == nil {
		return NormalizedPeriods{}, errPeriodFormat(periods[0])
	}
	for _, p := range periods {
		if !pattern.MatchString(p) || !validPeriod(p, granularity) {
			return NormalizedPeriods{}, errPeriodFormat(p)
		}
	}

	out := NormalizedPeriods{Granularity: granularity, Requested: len(periods)}
	if granularity == GranularityYearlyExpanded {
		out.Periods = ExpandYears(periods)
		return out, nil
	}
	out.Periods = periods
	return out, nil
}

// ExpandYears turns YYYY periods into their twelve YYYY-MM months.
func ExpandYears(years []string) []string {
	out := make([]string, 0, len(years)*12)
	for _, y := range years {
		for m := 1; m <= 12; m++ {
			out = append(out, fmt.Sprintf("%s-%02d", y, m))
		}
	}
	return out
}

// TrendPeriods returns the n most recent months ending at now's month,
// most recent first.
func TrendPeriods(now time.Time, n int) []string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = first.AddDate(0, -i, 0).Format(MonthLayout)
	}
	return out
}

// CurrentPeriod returns now's month as YYYY-MM.
func CurrentPeriod(now time.Time) string {
	return now.Format(MonthLayout)
}

// MonthLabel renders a YYYY-MM period as "March 24".
func MonthLabel(period string) string {
	t, err := time.Parse(MonthLayout, period)
	if err != nil {
		return period
	}
	return fmt.Sprintf("%s %s", t.Month().String(), t.Format("06"))
}

// IsPeriod reports whether p is a well-formed YYYY, YYYY-MM or YYYY-MM-DD period.
func IsPeriod(p string) bool {
	re, g := detectFormat(p)
	return re != nil && validPeriod(p, g)
}

func detectFormat(p string) (*regexp.Regexp, Granularity) {
	switch {
	case yearPattern.MatchString(p):
		return yearPattern, GranularityYearlyExpanded
	case monthPattern.MatchString(p):
		return monthPattern, GranularityMonthly
	case dayPattern.MatchString(p):
		return dayPattern, GranularityDailyRange
	}
	return nil, ""
}

func validPeriod(p string, g Granularity) bool {
	switch g {
	case GranularityMonthly:
		m, _ := strconv.Atoi(p[5:7])
		return m >= 1 && m <= 12
	case GranularityDailyRange:
		_, err := time.Parse(DayLayout, p)
		return err == nil
	}
	return true
}

func dedupe(periods []string) []string {
	seen := make(map[string]struct{}, len(periods))
	out := make([]string, 0, len(periods))
	for _, p := range periods {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Target is the comparison period kind used by summaries.
type Target int

const (
	TargetPriorMonth Target = iota + 1
	TargetSameMonthLastYear
	TargetThreeMonthsAverage
)

// String implements fmt.Stringer
func (t Target) String() string {
	switch t {
	case TargetPriorMonth:
		return "PriorMonth"
	case TargetSameMonthLastYear:
		return "SameMonthLastYear"
	case TargetThreeMonthsAverage:
		return "ThreeMonthsAverage"
	}
	return "Unknown"
}

// ParseTarget accepts the numeric or named form of a target.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "", "1", "PriorMonth":
		return TargetPriorMonth, nil
	case "2", "SameMonthLastYear":
		return TargetSameMonthLastYear, nil
	case "3", "ThreeMonthsAverage":
		return TargetThreeMonthsAverage, nil
	}
	return 0, shared.NewValidationError(fmt.Sprintf("unknown target %q", s))
}

// ComparisonPeriod returns the YYYY-MM period a value is compared against.
// ThreeMonthsAverage is not supported yet and fails fast.
func ComparisonPeriod(period string, target Target) (string, error) {
	t, err := time.Parse(MonthLayout, period)
	if err != nil {
		return "", errPeriodFormat(period)
	}
	switch target {
	case TargetPriorMonth:
		return t.AddDate(0, -1, 0).Format(MonthLayout), nil
	case TargetSameMonthLastYear:
		return t.AddDate(-1, 0, 0).Format(MonthLayout), nil
	case TargetThreeMonthsAverage:
		return "", shared.NewNotImplementedError("ThreeMonthsAverage comparison is not supported yet")
	}
	return "", shared.NewValidationError(fmt.Sprintf("unknown target %d", target))
}
