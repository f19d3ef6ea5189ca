package models

import (
	"time"

	"github.com/dealer/reporting/internal/domain/report"
)

// ClientModel is the persistence model for a dealer group (tenant).
type ClientModel struct {
	ID             int64      `gorm:"primaryKey"`
	Name           string     `gorm:"type:varchar(200);not null"`
	LastUpdateDate *time.Time `gorm:"column:last_update_date"`
	YearsBackward  int        `gorm:"not null"`
	Timestamps
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client
func (m *ClientModel) ToDomain() *report.Client {
	return &report.Client{
		ID:             m.ID,
		Name:           m.Name,
		LastUpdateDate: m.LastUpdateDate,
		YearsBackward:  m.YearsBackward,
	}
}

// StoreModel is the persistence model for a dealership location.
type StoreModel struct {
	ID       int64  `gorm:"primaryKey"`
	ClientID int64  `gorm:"not null;index"`
	Name     string `gorm:"type:varchar(200);not null"`
	AbbrName string `gorm:"type:varchar(50)"`
	Active   bool   `gorm:"not null"`
	Timestamps
}

// TableName returns the table name for GORM
func (StoreModel) TableName() string {
	return "stores"
}

// ToDomain converts the persistence model to a domain Store
func (m *StoreModel) ToDomain() report.Store {
	return report.Store{
		ID:       m.ID,
		ClientID: m.ClientID,
		Name:     m.Name,
		AbbrName: m.AbbrName,
		Active:   m.Active,
	}
}
