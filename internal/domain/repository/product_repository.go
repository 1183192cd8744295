package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Todos los métodos exigen companyID: ninguna consulta cruza el tenant.
// Get* devuelve (nil, nil) cuando el producto no existe en la empresa.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, companyID, code string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error)
	// Update modifica los datos de catálogo; nunca toca TotalQuantity.
	Update(ctx context.Context, product *entity.Product) error
	UpdateTotalQuantity(ctx context.Context, companyID, id string, total int64) error
	UpdateCost(ctx context.Context, companyID, id string, cost decimal.Decimal) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error)
}
