package repository

import (
	"context"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

// LocationStockRepository es el índice de stock por (producto, ubicación).
// Las escrituras solo ocurren desde el motor de movimientos, dentro de su transacción.
type LocationStockRepository interface {
	// Get devuelve la cantidad actual; si no hay fila devuelve cantidad 0 (nunca nil sin error).
	Get(ctx context.Context, companyID, productID, locationID string) (*entity.LocationStock, error)
	// Upsert guarda la cantidad; con cantidad 0 la fila se elimina.
	Upsert(ctx context.Context, stock *entity.LocationStock) error
	ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.LocationStock, error)
}
