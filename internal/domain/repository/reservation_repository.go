package repository

import (
	"context"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

// ReservationRepository guarda las retenciones blandas de stock por pedido.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	ListActiveByOrder(ctx context.Context, companyID, orderID string) ([]*entity.Reservation, error)
	ListActiveByProduct(ctx context.Context, companyID, productID string) ([]*entity.Reservation, error)
	// CloseByOrder pasa todas las reservas activas del pedido al estado indicado (released/consumed).
	CloseByOrder(ctx context.Context, companyID, orderID, status string) error
}
