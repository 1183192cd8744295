package entity

import "time"

// Estados habituales de rastreo de entrega.
const (
	TrackingDispatched = "dispatched"
	TrackingInTransit  = "in_transit"
	TrackingDelivered  = "delivered"
)

// DeliveryTracking entrada del historial de entrega de un pedido (solo se agrega).
type DeliveryTracking struct {
	ID         string
	CompanyID  string
	OrderID    string
	Status     string
	Location   string
	Notes      string
	UserID     string
	RecordedAt time.Time
}
