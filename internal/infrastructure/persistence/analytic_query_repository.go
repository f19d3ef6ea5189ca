package persistence

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/infrastructure/persistence/models"
	"github.com/dealer/reporting/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger accounts that hold contracts in transit.
var contractsInTransitAccounts = []string{"205", "20500", "20530", "20535", "20550", "20555"}

// unitCodePrefix marks model codes that carry unit counts.
const unitCodePrefix = "0004"

// chargebackLineMarker selects the chargeback lines of the chargeback report.
const chargebackLineMarker = "%Chargebacks%"

var hundred = decimal.NewFromInt(100)

// AnalyticQueryRepository implements report.AnalyticQueries. Statements are
// built with squirrel using '?' placeholders and executed through gorm, which
// rebinds them for the active dialect.
type AnalyticQueryRepository struct {
	db      *gorm.DB
	builder sq.StatementBuilderType
}

// NewAnalyticQueryRepository creates a new AnalyticQueryRepository
func NewAnalyticQueryRepository(db *gorm.DB) *AnalyticQueryRepository {
	return &AnalyticQueryRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

func (r *AnalyticQueryRepository) scan(ctx context.Context, name string, query sq.Sqlizer, dest any) error {
	ctx, span := telemetry.StartSpan(ctx, "analytic."+name,
		telemetry.WithAttribute(telemetry.SpanAttrQueryName, name))
	defer span.End()

	stmt, args, err := query.ToSql()
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to build %s query: %w", name, err)
	}
	if err := r.db.WithContext(ctx).Raw(stmt, args...).Scan(dest).Error; err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("%s query: %w", name, err)
	}
	return nil
}

type citEntry struct {
	Control1    string
	FirstPosted time.Time
	Amount      decimal.Decimal
}

// ContractsInTransit ages the open contracts-in-transit balances by the days
// since their first posting.
func (r *AnalyticQueryRepository) ContractsInTransit(ctx context.Context, req report.ContractsInTransitRequest) ([]report.ContractsInTransitRow, error) {
	query := r.builder.
		Select("d.control1", "MIN(d.gl_date) AS first_posted", "SUM(d.post_amount) AS amount").
		From(models.GLDetailModel{}.TableName() + " d").
		Where(sq.Eq{
			"d.client_id": req.ClientID,
			"d.store_id":  req.StoreID,
			"d.gl_acct":   contractsInTransitAccounts,
		}).
		GroupBy("d.control1").
		Having("SUM(d.post_amount) <> 0")

	var entries []citEntry
	if err := r.scan(ctx, "contracts_in_transit", query, &entries); err != nil {
		return nil, err
	}

	asOf := truncateDay(req.AsOf)
	byBand := map[int]*report.ContractsInTransitRow{}
	for _, e := range entries {
		days := int(asOf.Sub(truncateDay(e.FirstPosted)).Hours() / 24)
		band, label := transitBand(days)
		row, ok := byBand[band]
		if !ok {
			row = &report.ContractsInTransitRow{Band: band, Label: label}
			byBand[band] = row
		}
		row.Count++
		row.Amount = row.Amount.Add(e.Amount)
	}

	rows := make([]report.ContractsInTransitRow, 0, len(byBand))
	for _, row := range byBand {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Band < rows[j].Band })
	return rows, nil
}

func transitBand(days int) (int, string) {
	switch {
	case days < 5:
		return 1, "Less than 5"
	case days <= 10:
		return 2, "5 to 10"
	case days <= 20:
		return 3, "11 to 20"
	default:
		return 4, "21+"
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type modelPeriodTotals struct {
	FSDate     string `gorm:"column:fs_date"`
	UnitAmount decimal.Decimal
	UnitCount  decimal.Decimal
	Gross      decimal.Decimal
}

// ModelMix compares car and truck retail results of a month with the prior
// month and the same month of the prior year.
func (r *AnalyticQueryRepository) ModelMix(ctx context.Context, req report.ModelMixRequest) ([]report.ModelMixRow, error) {
	period, err := time.Parse(report.MonthLayout, req.Period)
	if err != nil {
		return nil, fmt.Errorf("invalid period %q: %w", req.Period, err)
	}
	workingDays, err := r.workingDays(ctx, period)
	if err != nil {
		return nil, err
	}

	categories := []struct {
		model  string
		lineID int64
	}{
		{"Cars", req.CarLineID},
		{"Trucks", req.TruckLineID},
	}

	rows := make([]report.ModelMixRow, 0, len(categories))
	for _, c := range categories {
		codes, err := r.modelCodes(ctx, c.lineID)
		if err != nil {
			return nil, err
		}
		if len(codes) == 0 {
			continue
		}
		row, ok, err := r.modelRow(ctx, req, c.model, codes, workingDays)
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (r *AnalyticQueryRepository) modelRow(ctx context.Context, req report.ModelMixRequest, model string, codes []string, workingDays int64) (report.ModelMixRow, bool, error) {
	unitCase := fmt.Sprintf("CASE WHEN substr(h.md_code, 1, 4) = '%s' THEN %%s ELSE 0 END", unitCodePrefix)
	query := r.builder.
		Select(
			"h.fs_date",
			"SUM("+fmt.Sprintf(unitCase, "h.amount_mtd")+") AS unit_amount",
			"SUM("+fmt.Sprintf(unitCase, "h.count_mtd")+") AS unit_count",
			"SUM(h.amount_mtd) AS gross",
		).
		From(models.GLHistoryModel{}.TableName() + " h").
		Where(sq.Eq{
			"h.client_id": req.ClientID,
			"h.store_id":  req.StoreID,
			"h.fs_date":   []string{req.Period, req.PriorMonth, req.SameMonthPrior},
			"h.md_code":   codes,
		}).
		GroupBy("h.fs_date")

	var totals []modelPeriodTotals
	if err := r.scan(ctx, "model_mix", query, &totals); err != nil {
		return report.ModelMixRow{}, false, err
	}
	if len(totals) == 0 {
		return report.ModelMixRow{}, false, nil
	}
	byPeriod := make(map[string]modelPeriodTotals, len(totals))
	for _, t := range totals {
		byPeriod[t.FSDate] = t
	}
	cur, pm, py := byPeriod[req.Period], byPeriod[req.PriorMonth], byPeriod[req.SameMonthPrior]

	invCnt, err := r.inventoryCount(ctx, req.ClientID, req.StoreID, codes)
	if err != nil {
		return report.ModelMixRow{}, false, err
	}

	row := report.ModelMixRow{
		Model:     model,
		Amountmtd: cur.UnitAmount,
		AmountPm:  pm.UnitAmount,
		AmountPy:  py.UnitAmount,
		Countmtd:  cur.UnitCount,
		CountPm:   pm.UnitCount,
		CountPy:   py.UnitCount,
		Grossmtd:  cur.Gross,
		GrossPm:   pm.Gross,
		GrossPy:   py.Gross,
		PVR:       ratio(cur.Gross, cur.UnitCount),
		PVRPm:     ratio(pm.Gross, pm.UnitCount),
		PVRPy:     ratio(py.Gross, py.UnitCount),
		CountPmT:  cur.UnitCount.Sub(pm.UnitCount),
		CountPyT:  cur.UnitCount.Sub(py.UnitCount),
		CountPmV:  ratio(cur.UnitCount, pm.UnitCount),
		CountPyV:  ratio(cur.UnitCount, py.UnitCount),
		InvCnt:    decimal.NewFromInt(invCnt),
	}
	row.AvgSalesRate = ratio(cur.UnitCount, decimal.NewFromInt(workingDays))
	row.DaysSupply = ratio(row.InvCnt, row.AvgSalesRate)
	return row, true, nil
}

// modelCodes reads the quoted, comma-separated model codes configured on the
// first cell of a gross profit line.
func (r *AnalyticQueryRepository) modelCodes(ctx context.Context, lineID int64) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).
		Model(&models.ReportLineCellCalcModel{}).
		Where("report_line_id = ? AND column_index = ?", lineID, 1).
		Pluck("value", &values).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load model codes: %w", err)
	}
	var codes []string
	for _, v := range values {
		codes = append(codes, parseCodeList(v)...)
	}
	return codes, nil
}

func parseCodeList(raw string) []string {
	var codes []string
	for _, part := range strings.Split(raw, ",") {
		code := strings.Trim(strings.TrimSpace(part), "'\"")
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

func (r *AnalyticQueryRepository) inventoryCount(ctx context.Context, clientID, storeID int64, codes []string) (int64, error) {
	accounts, accountArgs, err := sq.Select("DISTINCT h.gl_acct").
		From(models.GLHistoryModel{}.TableName() + " h").
		Where(sq.Eq{"h.client_id": clientID, "h.store_id": storeID, "h.md_code": codes}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build inventory accounts query: %w", err)
	}
	query := r.builder.
		Select("COUNT(i.stock_number) AS inv_cnt").
		From(models.InventoryModel{}.TableName() + " i").
		Where(sq.Eq{"i.client_id": clientID, "i.store_id": storeID}).
		Where(sq.Expr("TRIM(i.sale_acc) IN ("+accounts+")", accountArgs...))

	var result struct{ InvCnt int64 }
	if err := r.scan(ctx, "inventory_count", query, &result); err != nil {
		return 0, err
	}
	return result.InvCnt, nil
}

func (r *AnalyticQueryRepository) workingDays(ctx context.Context, period time.Time) (int64, error) {
	query := r.builder.
		Select("COUNT(*) AS days").
		From(models.CalendarDayModel{}.TableName()).
		Where(sq.Eq{"year": period.Year(), "month": int(period.Month()), "is_working_day": true})

	var result struct{ Days int64 }
	if err := r.scan(ctx, "working_days", query, &result); err != nil {
		return 0, err
	}
	return result.Days, nil
}

type productTotals struct {
	Deals            int64
	FinanceGross     decimal.Decimal
	FinanceCount     int64
	AftermarketGross decimal.Decimal
	AftermarketCount int64
}

// ProductPenetration reports finance reserve and aftermarket attachment on new
// vehicle deals of the month, plus the chargebacks stored on the chargeback
// report.
func (r *AnalyticQueryRepository) ProductPenetration(ctx context.Context, req report.ProductPenetrationRequest) ([]report.ProductPenetrationRow, error) {
	from, to, err := monthBounds(req.Period)
	if err != nil {
		return nil, err
	}
	query := r.builder.
		Select(
			"COUNT(s.stock_number) AS deals",
			"SUM(COALESCE(s.finance_reserve, 0)) AS finance_gross",
			"COUNT(CASE WHEN s.finance_reserve IS NOT NULL AND s.finance_reserve <> 0 THEN 1 END) AS finance_count",
			"SUM(COALESCE(s.aftermarket_income, 0)) AS aftermarket_gross",
			"COUNT(CASE WHEN s.aftermarket_income IS NOT NULL AND s.aftermarket_income <> 0 THEN 1 END) AS aftermarket_count",
		).
		From(models.SaleModel{}.TableName() + " s").
		Where(sq.Eq{"s.client_id": req.ClientID, "s.store_id": req.StoreID, "s.condition": "New"}).
		Where(sq.GtOrEq{"s.deal_date": from}).
		Where(sq.Lt{"s.deal_date": to})

	var totals productTotals
	if err := r.scan(ctx, "product_penetration", query, &totals); err != nil {
		return nil, err
	}

	chargebacks, err := r.chargebacks(ctx, req)
	if err != nil {
		return nil, err
	}

	deals := decimal.NewFromInt(totals.Deals)
	return []report.ProductPenetrationRow{
		{
			Item:        1,
			LineDesc:    "Finance Reserve",
			Gross:       totals.FinanceGross,
			Count:       decimal.NewFromInt(totals.FinanceCount),
			Penetration: ratio(decimal.NewFromInt(totals.FinanceCount).Mul(hundred), deals).Round(2),
		},
		{
			Item:        2,
			LineDesc:    "Aftermarket Products",
			Gross:       totals.AftermarketGross,
			Count:       decimal.NewFromInt(totals.AftermarketCount),
			Penetration: ratio(decimal.NewFromInt(totals.AftermarketCount).Mul(hundred), deals).Round(2),
		},
		chargebacks,
	}, nil
}

// chargebacks sums the gross (first cell) and count (third cell) of the
// chargeback lines stored for the month.
func (r *AnalyticQueryRepository) chargebacks(ctx context.Context, req report.ProductPenetrationRequest) (report.ProductPenetrationRow, error) {
	row := report.ProductPenetrationRow{Item: 3, LineDesc: "Chargebacks"}

	var lineIDs []int64
	err := r.db.WithContext(ctx).
		Model(&models.ReportLineModel{}).
		Where("report_id = ? AND name LIKE ?", req.ChargebackReportID, chargebackLineMarker).
		Pluck("id", &lineIDs).Error
	if err != nil {
		return row, fmt.Errorf("failed to load chargeback lines: %w", err)
	}
	if len(lineIDs) == 0 {
		return row, nil
	}

	values, err := NewGormLineValueRepository(r.db).Find(ctx, report.ValueFilter{
		ClientID: req.ClientID,
		LineIDs:  lineIDs,
		StoreIDs: []int64{req.StoreID},
		Periods:  []string{req.Period},
	})
	if err != nil {
		return row, err
	}
	for i := range values {
		if gross, ok := report.ParseNumber(values[i].Cell(0)); ok {
			row.Gross = row.Gross.Add(gross)
		}
		if count, ok := report.ParseNumber(values[i].Cell(2)); ok {
			row.Count = row.Count.Add(count)
		}
	}
	return row, nil
}

type salespersonTotals struct {
	EmpID   string
	Name    string
	Deal    int64
	PmDeal  int64
	PyDeal  int64
	Sales   decimal.Decimal
	PmSales decimal.Decimal
	PySales decimal.Decimal
	Gross   decimal.Decimal
	PmGross decimal.Decimal
	PyGross decimal.Decimal
}

// SalespersonRanking ranks salespeople of one store by units, sales and gross
// for the month and returns the first (or last) Limit by units.
func (r *AnalyticQueryRepository) SalespersonRanking(ctx context.Context, req report.SalespersonRankingRequest) ([]report.SalespersonRow, error) {
	type window struct{ from, to time.Time }
	windows := make([]window, 0, 3)
	for _, p := range []string{req.Period, req.PriorMonth, req.PriorYear} {
		from, to, err := monthBounds(p)
		if err != nil {
			return nil, err
		}
		windows = append(windows, window{from, to})
	}
	cur, pm, py := windows[0], windows[1], windows[2]

	count := func(w window, alias string) sq.Sqlizer {
		return sq.Expr("COUNT(CASE WHEN s.deal_date >= ? AND s.deal_date < ? THEN s.deal_no END) AS "+alias, w.from, w.to)
	}
	sum := func(w window, expr, alias string) sq.Sqlizer {
		return sq.Expr("SUM(CASE WHEN s.deal_date >= ? AND s.deal_date < ? THEN "+expr+" ELSE 0 END) AS "+alias, w.from, w.to)
	}
	const grossExpr = "s.house_gross + s.back_end_gross"

	query := r.builder.
		Select("s.salesman_no AS emp_id", "s.salesman_name AS name").
		Column(count(cur, "deal")).
		Column(count(pm, "pm_deal")).
		Column(count(py, "py_deal")).
		Column(sum(cur, "s.price", "sales")).
		Column(sum(pm, "s.price", "pm_sales")).
		Column(sum(py, "s.price", "py_sales")).
		Column(sum(cur, grossExpr, "gross")).
		Column(sum(pm, grossExpr, "pm_gross")).
		Column(sum(py, grossExpr, "py_gross")).
		From(models.SaleModel{}.TableName() + " s").
		Where(sq.Eq{"s.client_id": req.ClientID, "s.store_id": req.StoreID, "s.condition": req.Condition}).
		Where(sq.Or{
			sq.And{sq.GtOrEq{"s.deal_date": cur.from}, sq.Lt{"s.deal_date": cur.to}},
			sq.And{sq.GtOrEq{"s.deal_date": pm.from}, sq.Lt{"s.deal_date": pm.to}},
			sq.And{sq.GtOrEq{"s.deal_date": py.from}, sq.Lt{"s.deal_date": py.to}},
		}).
		GroupBy("s.salesman_no", "s.salesman_name")

	var totals []salespersonTotals
	if err := r.scan(ctx, "salesperson_ranking", query, &totals); err != nil {
		return nil, err
	}
	return rankSalespeople(totals, req.Descending, req.Limit), nil
}

// rankSalespeople assigns the units, sales and gross ranks, then orders by
// units rank and keeps limit rows.
func rankSalespeople(totals []salespersonTotals, descending bool, limit int) []report.SalespersonRow {
	rows := make([]report.SalespersonRow, len(totals))
	for i, t := range totals {
		name := t.Name
		if strings.TrimSpace(name) == "" {
			name = t.EmpID + " - Missing"
		}
		deal, pmDeal, pyDeal := decimal.NewFromInt(t.Deal), decimal.NewFromInt(t.PmDeal), decimal.NewFromInt(t.PyDeal)
		rows[i] = report.SalespersonRow{
			EmpID:    t.EmpID,
			Name:     name,
			Deal:     deal,
			PmDeal:   pmDeal,
			PyDeal:   pyDeal,
			DealPmV:  percentOf(deal, pmDeal),
			DealPyV:  percentOf(deal, pyDeal),
			Sales:    t.Sales,
			PmSales:  t.PmSales,
			PySales:  t.PySales,
			SalesPmV: percentOf(t.Sales, t.PmSales),
			SalesPyV: percentOf(t.Sales, t.PySales),
			Gross:    t.Gross,
			PmGross:  t.PmGross,
			PyGross:  t.PyGross,
			GrossPmV: percentOf(t.Gross, t.PmGross),
			GrossPyV: percentOf(t.Gross, t.PyGross),
		}
	}

	assignRank(rows, func(r *report.SalespersonRow) decimal.Decimal { return r.Deal },
		func(r *report.SalespersonRow, n int) { r.RankUnits = n })
	assignRank(rows, func(r *report.SalespersonRow) decimal.Decimal { return r.Sales },
		func(r *report.SalespersonRow, n int) { r.RankSales = n })
	assignRank(rows, func(r *report.SalespersonRow) decimal.Decimal { return r.Gross },
		func(r *report.SalespersonRow, n int) { r.RankGross = n })

	sort.SliceStable(rows, func(i, j int) bool {
		if descending {
			return rows[i].RankUnits > rows[j].RankUnits
		}
		return rows[i].RankUnits < rows[j].RankUnits
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// assignRank numbers rows 1..n by value descending; ties keep employee order.
func assignRank(rows []report.SalespersonRow, value func(*report.SalespersonRow) decimal.Decimal, set func(*report.SalespersonRow, int)) {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := value(&rows[idx[a]]), value(&rows[idx[b]])
		if !va.Equal(vb) {
			return va.GreaterThan(vb)
		}
		return rows[idx[a]].EmpID < rows[idx[b]].EmpID
	})
	for rank, i := range idx {
		set(&rows[i], rank+1)
	}
}

// monthBounds returns the half-open range [first day, first day of next month).
func monthBounds(period string) (time.Time, time.Time, error) {
	from, err := time.Parse(report.MonthLayout, period)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period %q: %w", period, err)
	}
	return from, from.AddDate(0, 1, 0), nil
}

// ratio divides, yielding zero for a zero denominator.
func ratio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}

// percentOf returns current as a percentage of prior, or nil when prior is zero.
func percentOf(current, prior decimal.Decimal) *decimal.Decimal {
	if prior.IsZero() {
		return nil
	}
	v := current.Div(prior).Mul(hundred)
	return &v
}

var _ report.AnalyticQueries = (*AnalyticQueryRepository)(nil)
