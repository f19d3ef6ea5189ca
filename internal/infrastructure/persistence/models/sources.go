package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// The models below mirror the normalized DMS extracts loaded by the ingest
// pipeline. The report service only reads them.

// GLDetailModel is one general ledger posting.
type GLDetailModel struct {
	ID         int64           `gorm:"primaryKey"`
	ClientID   int64           `gorm:"not null;index:idx_gl_details_scope,priority:1"`
	StoreID    int64           `gorm:"not null;index:idx_gl_details_scope,priority:2"`
	GLAcct     string          `gorm:"column:gl_acct;type:varchar(20);not null"`
	Control1   string          `gorm:"column:control1;type:varchar(50)"`
	GLDate     time.Time       `gorm:"column:gl_date;not null"`
	PostAmount decimal.Decimal `gorm:"column:post_amount;type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (GLDetailModel) TableName() string {
	return "gl_details"
}

// GLHistoryModel is a monthly general ledger balance per account and model code.
type GLHistoryModel struct {
	ID        int64           `gorm:"primaryKey"`
	ClientID  int64           `gorm:"not null;index:idx_gl_histories_scope,priority:1"`
	StoreID   int64           `gorm:"not null;index:idx_gl_histories_scope,priority:2"`
	GLAcct    string          `gorm:"column:gl_acct;type:varchar(20);not null"`
	MDCode    string          `gorm:"column:md_code;type:varchar(20);not null"`
	FSDate    string          `gorm:"column:fs_date;type:varchar(7);not null;index:idx_gl_histories_scope,priority:3"`
	AmountMTD decimal.Decimal `gorm:"column:amount_mtd;type:decimal(18,2);not null"`
	CountMTD  decimal.Decimal `gorm:"column:count_mtd;type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (GLHistoryModel) TableName() string {
	return "gl_histories"
}

// InventoryModel is a vehicle in stock.
type InventoryModel struct {
	ID          int64  `gorm:"primaryKey"`
	ClientID    int64  `gorm:"not null;index:idx_inventories_scope,priority:1"`
	StoreID     int64  `gorm:"not null;index:idx_inventories_scope,priority:2"`
	StockNumber string `gorm:"type:varchar(50);not null"`
	SaleAcc     string `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (InventoryModel) TableName() string {
	return "inventories"
}

// SaleModel is one vehicle deal.
type SaleModel struct {
	ID                int64            `gorm:"primaryKey"`
	ClientID          int64            `gorm:"not null;index:idx_sales_scope,priority:1"`
	StoreID           int64            `gorm:"not null;index:idx_sales_scope,priority:2"`
	DealNo            string           `gorm:"type:varchar(50);not null"`
	StockNumber       string           `gorm:"type:varchar(50)"`
	DealDate          time.Time        `gorm:"not null;index:idx_sales_scope,priority:3"`
	Condition         string           `gorm:"type:varchar(10);not null"`
	SalesmanNo        string           `gorm:"type:varchar(50)"`
	SalesmanName      string           `gorm:"type:varchar(200)"`
	Price             decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Cost              decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	HouseGross        decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	BackEndGross      decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	FinanceReserve    *decimal.Decimal `gorm:"type:decimal(18,2)"`
	AftermarketIncome *decimal.Decimal `gorm:"type:decimal(18,2)"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// CalendarDayModel flags working days per month.
type CalendarDayModel struct {
	Date         time.Time `gorm:"primaryKey;type:date"`
	Year         int       `gorm:"not null;index:idx_calendar_days_month,priority:1"`
	Month        int       `gorm:"not null;index:idx_calendar_days_month,priority:2"`
	IsWorkingDay bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CalendarDayModel) TableName() string {
	return "calendar_days"
}
