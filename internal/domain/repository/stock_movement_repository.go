package repository

import (
	"context"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

// StockMovementRepository es el ledger: solo admite agregar y leer, nunca modificar ni borrar.
type StockMovementRepository interface {
	// Append persiste el movimiento y le asigna ID (si falta) y Seq.
	Append(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, companyID, id string) (*entity.StockMovement, error)
	// ListByProduct devuelve movimientos con Seq > afterSeq, del más antiguo al más reciente.
	// Se reanuda pasando el Seq del último elemento recibido.
	ListByProduct(ctx context.Context, companyID, productID string, afterSeq int64, limit int) ([]*entity.StockMovement, error)
	ListByOrder(ctx context.Context, companyID, orderID string) ([]*entity.StockMovement, error)
}
