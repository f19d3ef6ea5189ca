package report

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// agingDateLayout is how inventory exports store acquisition dates.
const agingDateLayout = "1/02/2006 03:04:05 PM"

type agingBin struct {
	lo, hi int
}

var agingBins = []agingBin{{0, 30}, {31, 90}, {91, 180}, {181, 365}}

// renderAging renders bubble and quad summaries: four age bins over the
// oldest stored snapshot, or contracts in transit for that variant.
func (e *Engine) renderAging(ctx context.Context, sc *summaryContext) error {
	today, err := e.clientToday(ctx, sc.clientID)
	if err != nil {
		return err
	}
	if sc.report.Variant == report.VariantContractsInTransit {
		return e.renderContractsInTransit(ctx, sc, today)
	}

	slots := sc.summary.TargetSlots()
	if len(slots) < 2 {
		return shared.NewValidationError("aging summaries need a date and a price column")
	}

	period, err := e.values.EarliestPeriod(ctx, sc.report.ID, sc.storeID)
	if err != nil {
		return fmt.Errorf("failed to find snapshot period: %w", err)
	}
	var values []report.LineValue
	if period != "" {
		values, err = e.values.Find(ctx, report.ValueFilter{
			ReportID: sc.report.ID,
			ClientID: sc.clientID,
			StoreIDs: []int64{sc.storeID},
			Periods:  []string{period},
		})
		if err != nil {
			return fmt.Errorf("failed to load snapshot values: %w", err)
		}
	}

	counts := make([]int, len(agingBins))
	amounts := make([]decimal.Decimal, len(agingBins))
	for i := range values {
		days := 0
		if t, err := time.Parse(agingDateLayout, values[i].Cell(slots[0])); err == nil {
			days = int(today.Sub(t).Hours() / 24)
		}
		price, _ := report.ParseNumber(values[i].Cell(slots[1]))
		for b, bin := range agingBins {
			if days >= bin.lo && days <= bin.hi {
				counts[b]++
			}
		}
		switch {
		case days <= 30:
			amounts[0] = amounts[0].Add(price)
		case days <= 90:
			amounts[1] = amounts[1].Add(price)
		case days <= 180:
			amounts[2] = amounts[2].Add(price)
		case days <= 365:
			amounts[3] = amounts[3].Add(price)
		}
	}

	label := sc.summary.ColumnTitles
	if sc.summary.Style == report.StyleBubble {
		sc.resp.ReportConfig.Columns = []string{"Range", "Count", "Amount"}
	} else {
		sc.resp.ReportConfig.Columns = []string{"Title", "Count"}
	}
	for b, bin := range agingBins {
		name := fmt.Sprintf("%d - %d %s", bin.lo, bin.hi, label)
		line := valuesLine(name, strconv.Itoa(counts[b]))
		if sc.summary.Style == report.StyleBubble {
			line.Values = append(line.Values, "$"+amounts[b].StringFixed(2))
		}
		sc.resp.ReportLines = append(sc.resp.ReportLines, line)
	}
	return nil
}

func (e *Engine) renderContractsInTransit(ctx context.Context, sc *summaryContext, today time.Time) error {
	rows, err := e.analytic.ContractsInTransit(ctx, report.ContractsInTransitRequest{
		ClientID: sc.clientID,
		StoreID:  sc.storeID,
		AsOf:     today,
	})
	if err != nil {
		return fmt.Errorf("failed to query contracts in transit: %w", err)
	}
	sc.resp.ReportConfig.Columns = []string{"Range", "Count", "Amount"}
	for _, row := range rows {
		sc.resp.ReportLines = append(sc.resp.ReportLines,
			valuesLine(row.Label, strconv.FormatInt(row.Count, 10), "$"+row.Amount.StringFixed(2)))
	}
	return nil
}

// clientToday is the client's last data refresh, or now when unknown.
func (e *Engine) clientToday(ctx context.Context, clientID int64) (time.Time, error) {
	client, err := e.stores.FindClient(ctx, clientID)
	if errors.Is(err, shared.ErrNotFound) {
		return e.now(), nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load client: %w", err)
	}
	if client.LastUpdateDate != nil {
		return *client.LastUpdateDate, nil
	}
	return e.now(), nil
}
