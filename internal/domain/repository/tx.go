package repository

import "context"

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Products     ProductRepository
	Warehouses   WarehouseRepository
	Locations    LocationRepository
	Stock        LocationStockRepository
	Movements    StockMovementRepository
	Orders       OrderRepository
	Reservations ReservationRepository
	Tracking     DeliveryTrackingRepository
	Users        UserRepository
}

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y nada de lo escrito es visible; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}
