package repository

import (
	"context"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para pedidos y sus ítems.
type OrderRepository interface {
	// Create persiste el pedido con sus ítems.
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Order, error)
	// GetForUpdate bloquea la fila del pedido hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Order, error)
	// UpdateStatus cambia el estado solo si la versión coincide; si no, domain.ErrConcurrencyConflict.
	// En éxito incrementa order.Version.
	UpdateStatus(ctx context.Context, order *entity.Order, expectedVersion int64) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Order, error)
}
