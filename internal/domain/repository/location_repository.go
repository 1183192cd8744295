package repository

import (
	"context"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para ubicaciones dentro de una bodega.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Location, error)
	ListByWarehouse(ctx context.Context, companyID, warehouseID string) ([]*entity.Location, error)
}
