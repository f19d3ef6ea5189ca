package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AnalyticQueries runs the bespoke aggregate queries some summaries need.
// An empty result is a data absence, not an error.
type AnalyticQueries interface {
	ContractsInTransit(ctx context.Context, req ContractsInTransitRequest) ([]ContractsInTransitRow, error)
	ModelMix(ctx context.Context, req ModelMixRequest) ([]ModelMixRow, error)
	ProductPenetration(ctx context.Context, req ProductPenetrationRequest) ([]ProductPenetrationRow, error)
	SalespersonRanking(ctx context.Context, req SalespersonRankingRequest) ([]SalespersonRow, error)
}

// ContractsInTransitRequest ages open contracts-in-transit ledger entries.
type ContractsInTransitRequest struct {
	ClientID int64
	StoreID  int64
	AsOf     time.Time
}

// ContractsInTransitRow is one aging band. Band sorts the rows; Label is shown.
type ContractsInTransitRow struct {
	Band   int
	Label  string
	Count  int64
	Amount decimal.Decimal
}

// Lines whose cell calculations list the model codes of each category.
const (
	CarGrossLineName   = "Retail Car Gross Profit"
	TruckGrossLineName = "Retail Truck Gross Profit"
)

// ModelMixRequest compares car and truck retail results across periods.
type ModelMixRequest struct {
	ClientID       int64
	StoreID        int64
	Period         string
	PriorMonth     string
	SameMonthPrior string
	CarLineID      int64
	TruckLineID    int64
}

// ModelMixRow holds the current (mtd), prior month (Pm) and prior year (Py)
// figures of one vehicle category. The V fields are ratios, the T fields
// differences.
type ModelMixRow struct {
	Model        string
	Amountmtd    decimal.Decimal
	AmountPm     decimal.Decimal
	AmountPy     decimal.Decimal
	Countmtd     decimal.Decimal
	CountPm      decimal.Decimal
	CountPy      decimal.Decimal
	Grossmtd     decimal.Decimal
	GrossPm      decimal.Decimal
	GrossPy      decimal.Decimal
	PVR          decimal.Decimal
	PVRPm        decimal.Decimal
	PVRPy        decimal.Decimal
	CountPmT     decimal.Decimal
	CountPyT     decimal.Decimal
	CountPmV     decimal.Decimal
	CountPyV     decimal.Decimal
	InvCnt       decimal.Decimal
	AvgSalesRate decimal.Decimal
	DaysSupply   decimal.Decimal
}

// ProductPenetrationRequest measures F&I product attachment for a month.
type ProductPenetrationRequest struct {
	ClientID           int64
	StoreID            int64
	Period             string
	ChargebackReportID int64
}

// ProductPenetrationRow is one product line.
type ProductPenetrationRow struct {
	Item        int
	LineDesc    string
	Gross       decimal.Decimal
	Count       decimal.Decimal
	Penetration decimal.Decimal
}

// SalespersonRankingRequest ranks salespeople by deal count.
type SalespersonRankingRequest struct {
	ClientID   int64
	StoreID    int64
	Period     string
	PriorMonth string
	PriorYear  string
	Condition  string
	Descending bool
	Limit      int
}

// SalespersonRow carries one person's current, prior month and prior year
// figures. PmV/PyV are current as a percentage of the comparison figure and
// are nil when the comparison is zero.
type SalespersonRow struct {
	RankUnits int
	RankSales int
	RankGross int
	EmpID     string
	Name      string

	Deal    decimal.Decimal
	PmDeal  decimal.Decimal
	PyDeal  decimal.Decimal
	DealPmV *decimal.Decimal
	DealPyV *decimal.Decimal

	Sales    decimal.Decimal
	PmSales  decimal.Decimal
	PySales  decimal.Decimal
	SalesPmV *decimal.Decimal
	SalesPyV *decimal.Decimal

	Gross    decimal.Decimal
	PmGross  decimal.Decimal
	PyGross  decimal.Decimal
	GrossPmV *decimal.Decimal
	GrossPyV *decimal.Decimal
}
