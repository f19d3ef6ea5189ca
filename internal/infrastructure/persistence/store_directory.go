package persistence

import (
	"context"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStoreDirectory implements report.StoreDirectory using GORM
type GormStoreDirectory struct {
	db *gorm.DB
}

// NewGormStoreDirectory creates a new GormStoreDirectory
func NewGormStoreDirectory(db *gorm.DB) *GormStoreDirectory {
	return &GormStoreDirectory{db: db}
}

// ActiveStores returns the client's active stores ordered by id
func (d *GormStoreDirectory) ActiveStores(ctx context.Context, clientID int64) ([]report.Store, error) {
	var rows []models.StoreModel
	err := d.db.WithContext(ctx).
		Scopes(clientScope(clientID)).
		Where("active = ?", true).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toStores(rows), nil
}

// StoresByIDs returns the client's stores among ids; stores of other clients
// are never returned
func (d *GormStoreDirectory) StoresByIDs(ctx context.Context, clientID int64, ids []int64) ([]report.Store, error) {
	if len(ids) == 0 {
		return []report.Store{}, nil
	}
	var rows []models.StoreModel
	err := d.db.WithContext(ctx).
		Scopes(clientScope(clientID)).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toStores(rows), nil
}

// FindClient returns a client by id
func (d *GormStoreDirectory) FindClient(ctx context.Context, clientID int64) (*report.Client, error) {
	var model models.ClientModel
	if err := d.db.WithContext(ctx).Where("id = ?", clientID).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func toStores(rows []models.StoreModel) []report.Store {
	stores := make([]report.Store, len(rows))
	for i := range rows {
		stores[i] = rows[i].ToDomain()
	}
	return stores
}

var _ report.StoreDirectory = (*GormStoreDirectory)(nil)
