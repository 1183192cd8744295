package entity

import "time"

// Estados de una reserva.
const (
	ReservationActive   = "active"
	ReservationReleased = "released" // pedido cancelado
	ReservationConsumed = "consumed" // pedido despachado
)

// Reservation es una retención blanda de stock en una ubicación para un ítem de pedido.
// No mueve cantidades; solo reduce lo disponible para otras reservas.
type Reservation struct {
	ID          string
	CompanyID   string
	OrderID     string
	OrderItemID string
	ProductID   string
	LocationID  string
	Quantity    int64
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
