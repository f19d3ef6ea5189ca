package report

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// optionLast selects the bottom of a ranking.
const optionLast = 2

// renderPersons renders persons_list summaries, ranked by the third value.
func (e *Engine) renderPersons(ctx context.Context, sc *summaryContext) error {
	sc.headerFromTitles()

	var err error
	switch sc.report.Variant {
	case report.VariantFIManager:
		err = e.renderFIManagers(ctx, sc)
	case report.VariantSalesperson:
		err = e.renderSalespeople(ctx, sc)
	}
	if err != nil {
		return err
	}

	sort.SliceStable(sc.resp.ReportLines, func(i, j int) bool {
		return rankValue(sc.resp.ReportLines[i]).GreaterThan(rankValue(sc.resp.ReportLines[j]))
	})
	return nil
}

func (e *Engine) renderFIManagers(ctx context.Context, sc *summaryContext) error {
	template, err := e.configs.FirstLine(ctx, sc.report.ID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load report line: %w", err)
	}
	values, err := e.values.Find(ctx, report.ValueFilter{
		ReportID: sc.report.ID,
		ClientID: sc.clientID,
		LineIDs:  []int64{template.ID},
		StoreIDs: []int64{sc.storeID},
		Periods:  []string{sc.period},
		Limit:    sc.summary.LinesQty,
	})
	if err != nil {
		return fmt.Errorf("failed to load values: %w", err)
	}
	sc.resp.ReportConfig.Columns = []string{}

	slots := sc.summary.TargetSlots()
	for i := range values {
		cells := make([]string, 0, len(slots)+1)
		for j, slot := range slots {
			cell := values[i].Cell(slot)
			if j == 0 {
				cells = append(cells, initials(cell))
			}
			cells = append(cells, cell)
		}
		sc.resp.ReportLines = append(sc.resp.ReportLines, valuesLine(cells...))
	}
	return nil
}

func (e *Engine) renderSalespeople(ctx context.Context, sc *summaryContext) error {
	if sc.target == report.TargetThreeMonthsAverage {
		return shared.NewNotImplementedError("ThreeMonthsAverage comparison is not supported yet")
	}
	priorMonth, err := report.ComparisonPeriod(sc.period, report.TargetPriorMonth)
	if err != nil {
		return err
	}
	priorYear, err := report.ComparisonPeriod(sc.period, report.TargetSameMonthLastYear)
	if err != nil {
		return err
	}

	condition := "New"
	if report.UsedCondition(sc.report.Description) {
		condition = "Used"
	}
	rows, err := e.analytic.SalespersonRanking(ctx, report.SalespersonRankingRequest{
		ClientID:   sc.clientID,
		StoreID:    sc.storeID,
		Period:     sc.period,
		PriorMonth: priorMonth,
		PriorYear:  priorYear,
		Condition:  condition,
		Descending: len(sc.options) > 0 && sc.options[0] == optionLast,
		Limit:      sc.summary.LinesQty,
	})
	if err != nil {
		return fmt.Errorf("failed to query salesperson ranking: %w", err)
	}

	if sc.summary.CalcMode != report.CalcModeTopBottom {
		return nil
	}
	n := sc.summary.LinesQty
	sc.resp.ReportConfig.Columns = []string{fmt.Sprintf("Top %d,Last %d", n, n), sc.summary.ColumnTitles}

	metric, err := sc.metricTitle()
	if err != nil {
		return err
	}
	priorYearTarget := sc.target == report.TargetSameMonthLastYear
	for i := range rows {
		row := &rows[i]
		var value decimal.Decimal
		var variance *decimal.Decimal
		switch metric {
		case "Units":
			value, variance = row.Deal, row.DealPmV
			if priorYearTarget {
				value, variance = row.PyDeal, row.DealPyV
			}
		case "Sales":
			value, variance = row.Sales, row.SalesPmV
			if priorYearTarget {
				value, variance = row.PySales, row.SalesPyV
			}
		case "Gross":
			value, variance = row.Gross, row.GrossPmV
			if priorYearTarget {
				value, variance = row.PyGross, row.GrossPyV
			}
		default:
			sc.resp.ReportLines = append(sc.resp.ReportLines, valuesLine(initials(row.Name), row.Name, "", ""))
			continue
		}
		pct := ""
		if variance != nil {
			pct = variance.Round(2).String()
		}
		sc.resp.ReportLines = append(sc.resp.ReportLines,
			valuesLine(initials(row.Name), row.Name, value.String(), pct))
	}
	return nil
}

// rankValue reads the ranking value of a persons row; anything unreadable
// ranks as zero.
func rankValue(line ReportLineResponse) decimal.Decimal {
	if len(line.Values) < 3 {
		return decimal.Zero
	}
	d, _ := report.ParseNumber(line.Values[2])
	return d
}
