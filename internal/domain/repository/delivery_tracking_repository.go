package repository

import (
	"context"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

// DeliveryTrackingRepository historial de entrega de pedidos (solo agregar).
type DeliveryTrackingRepository interface {
	Append(ctx context.Context, entry *entity.DeliveryTracking) error
	ListByOrder(ctx context.Context, companyID, orderID string) ([]*entity.DeliveryTracking, error)
	// Last devuelve la entrada más reciente o (nil, nil) si no hay.
	Last(ctx context.Context, companyID, orderID string) (*entity.DeliveryTracking, error)
}
