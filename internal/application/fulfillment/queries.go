package fulfillment

import (
	"context"
	"fmt"

	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/authz"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

// GetOrder devuelve el pedido con sus ítems.
func (c *Coordinator) GetOrder(ctx context.Context, s entity.Session, orderID string) (*entity.Order, error) {
	if err := c.authorize(s, authz.OpViewStock); err != nil {
		return nil, err
	}
	var out *entity.Order
	err := c.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		o, err := r.Orders.GetByID(ctx, s.CompanyID, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("pedido %s: %w", orderID, domain.ErrNotFound)
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return out, nil
}

// ListOrders lista los pedidos de la empresa, del más reciente al más antiguo.
func (c *Coordinator) ListOrders(ctx context.Context, s entity.Session, limit, offset int) ([]*entity.Order, error) {
	if err := c.authorize(s, authz.OpViewStock); err != nil {
		return nil, err
	}
	var out []*entity.Order
	err := c.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		out, err = r.Orders.ListByCompany(ctx, s.CompanyID, limit, offset)
		return err
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return out, nil
}

// ListTracking historial de entrega del pedido en orden cronológico.
func (c *Coordinator) ListTracking(ctx context.Context, s entity.Session, orderID string) ([]*entity.DeliveryTracking, error) {
	if err := c.authorize(s, authz.OpViewStock); err != nil {
		return nil, err
	}
	var out []*entity.DeliveryTracking
	err := c.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		out, err = r.Tracking.ListByOrder(ctx, s.CompanyID, orderID)
		return err
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return out, nil
}

// ListReservations reservas activas del pedido.
func (c *Coordinator) ListReservations(ctx context.Context, s entity.Session, orderID string) ([]*entity.Reservation, error) {
	if err := c.authorize(s, authz.OpViewStock); err != nil {
		return nil, err
	}
	var out []*entity.Reservation
	err := c.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		out, err = r.Reservations.ListActiveByOrder(ctx, s.CompanyID, orderID)
		return err
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return out, nil
}
