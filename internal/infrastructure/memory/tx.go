package memory

import (
	"context"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

type tx struct {
	s *Store

	products     overlay[entity.Product]
	warehouses   overlay[entity.Warehouse]
	locations    overlay[entity.Location]
	stock        overlay[entity.LocationStock]
	orders       overlay[entity.Order]
	reservations overlay[entity.Reservation]
	users        overlay[entity.User]
	movements    []*entity.StockMovement
	tracking     []*entity.DeliveryTracking

	held map[string]bool
}

func newTx(s *Store) *tx {
	return &tx{
		s:            s,
		products:     overlay[entity.Product]{},
		warehouses:   overlay[entity.Warehouse]{},
		locations:    overlay[entity.Location]{},
		stock:        overlay[entity.LocationStock]{},
		orders:       overlay[entity.Order]{},
		reservations: overlay[entity.Reservation]{},
		users:        overlay[entity.User]{},
		held:         make(map[string]bool),
	}
}

func (t *tx) repos() repository.Repos {
	return repository.Repos{
		Products:     &ProductRepo{t: t},
		Warehouses:   &WarehouseRepo{t: t},
		Locations:    &LocationRepo{t: t},
		Stock:        &LocationStockRepo{t: t},
		Movements:    &StockMovementRepo{t: t},
		Orders:       &OrderRepo{t: t},
		Reservations: &ReservationRepo{t: t},
		Tracking:     &DeliveryTrackingRepo{t: t},
		Users:        &UserRepo{t: t},
	}
}

// lockRow toma el bloqueo una sola vez por transacción.
func (t *tx) lockRow(ctx context.Context, k string) error {
	if t.held[k] {
		return nil
	}
	if err := t.s.lock(ctx, k); err != nil {
		return err
	}
	t.held[k] = true
	return nil
}

// commit aplica las escrituras pendientes. Requiere s.mu tomado en escritura.
func (t *tx) commit() {
	s := t.s
	s.products.apply(t.products)
	s.warehouses.apply(t.warehouses)
	s.locations.apply(t.locations)
	s.stock.apply(t.stock)
	s.orders.apply(t.orders)
	s.reservations.apply(t.reservations)
	s.users.apply(t.users)
	s.movements = append(s.movements, t.movements...)
	s.tracking = append(s.tracking, t.tracking...)
}

func (t *tx) release() {
	for k := range t.held {
		t.s.unlock(k)
	}
	t.held = nil
}

func (t *tx) rlock() func() {
	t.s.mu.RLock()
	return t.s.mu.RUnlock
}
