package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CellFormat is the presentation tag of a cell slot.
type CellFormat string

const (
	FormatText              CellFormat = "text"
	FormatDollar            CellFormat = "dollar"
	FormatDollarV           CellFormat = "dollar_v"
	FormatDouble            CellFormat = "double"
	FormatDoubleV           CellFormat = "double_v"
	FormatIndentedNumber    CellFormat = "indented_number"
	FormatIndentedNumberV   CellFormat = "indented_number_v"
	FormatPercentage        CellFormat = "percentage"
	FormatPercentageV       CellFormat = "percentage_v"
	FormatInteger           CellFormat = "integer"
	FormatIntegerV          CellFormat = "integer_v"
	FormatIntegerDollar     CellFormat = "integer_dollar"
	FormatIntegerDollarV    CellFormat = "integer_dollar_v"
	FormatDaysToCurrentDate CellFormat = "daysToCurrentDate"
)

// totalKind classifies how a format accumulates into a Total row.
type totalKind int

const (
	totalNone totalKind = iota
	totalDecimal
	totalInteger
)

func (f CellFormat) totalKind() totalKind {
	switch f {
	case FormatDollar, FormatDollarV, FormatDouble, FormatDoubleV,
		FormatIndentedNumber, FormatIndentedNumberV, FormatPercentage, FormatPercentageV:
		return totalDecimal
	case FormatInteger, FormatIntegerV, FormatIntegerDollar, FormatIntegerDollarV:
		return totalInteger
	}
	return totalNone
}

// dateLayouts are tried in order when a daysToCurrentDate cell is read.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"01/02/2006",
	"1/2/2006 3:04:05 PM",
	"1/02/2006 03:04:05 PM",
}

// DaysToCurrentDate renders the whole days elapsed from the stored date to
// today, never less than 1. Empty, unparseable and zero dates give "".
func DaysToCurrentDate(value string, today time.Time) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	var parsed time.Time
	ok := false
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			parsed, ok = t, true
			break
		}
	}
	if !ok || parsed.IsZero() || parsed.Year() <= 1 {
		return ""
	}
	from := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	days := int(to.Sub(from).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return strconv.Itoa(days)
}

// TotalRow accumulates the synthetic Total line of a Repeat report.
// Slots become empty once any contributing cell is empty or the slot
// format does not support totals.
type TotalRow struct {
	formats  []CellFormat
	decimals []decimal.Decimal
	scales   []int32
	integers []int64
	blank    []bool
	seen     bool
}

// NewTotalRow prepares a total for slots formatted by the template line.
func NewTotalRow(template *ReportLine, slots int) *TotalRow {
	t := &TotalRow{
		formats:  make([]CellFormat, slots),
		decimals: make([]decimal.Decimal, slots),
		scales:   make([]int32, slots),
		integers: make([]int64, slots),
		blank:    make([]bool, slots),
	}
	for i := 0; i < slots; i++ {
		t.formats[i] = template.Format(i)
		if t.formats[i].totalKind() == totalNone {
			t.blank[i] = true
		}
	}
	return t
}

// Add folds one rendered data cell into slot i.
func (t *TotalRow) Add(i int, value string) {
	t.seen = true
	if t.blank[i] {
		return
	}
	value = strings.TrimSpace(value)
	if value == "" {
		t.blank[i] = true
		return
	}
	switch t.formats[i].totalKind() {
	case totalDecimal:
		d, err := decimal.NewFromString(cleanNumber(value))
		if err != nil {
			t.blank[i] = true
			return
		}
		t.decimals[i] = t.decimals[i].Add(d)
		if scale := -d.Exponent(); scale > t.scales[i] {
			t.scales[i] = scale
		}
	case totalInteger:
		n, err := strconv.ParseInt(cleanNumber(value), 10, 64)
		if err != nil {
			d, derr := decimal.NewFromString(cleanNumber(value))
			if derr != nil {
				t.blank[i] = true
				return
			}
			n = d.IntPart()
		}
		t.integers[i] += n
	}
}

// Values renders the accumulated slots. Decimal slots keep the widest
// scale among their inputs.
func (t *TotalRow) Values() []string {
	out := make([]string, len(t.formats))
	for i := range t.formats {
		if t.blank[i] || !t.seen {
			continue
		}
		switch t.formats[i].totalKind() {
		case totalDecimal:
			out[i] = t.decimals[i].StringFixed(t.scales[i])
		case totalInteger:
			out[i] = strconv.FormatInt(t.integers[i], 10)
		}
	}
	return out
}

// ParseNumber reads a stored numeric cell, tolerating currency symbols,
// thousands separators and percent signs.
func ParseNumber(value string) (decimal.Decimal, bool) {
	value = cleanNumber(value)
	if value == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func cleanNumber(value string) string {
	value = strings.TrimSpace(value)
	value = strings.NewReplacer("$", "", ",", "", "%", "").Replace(value)
	return strings.TrimSpace(value)
}
