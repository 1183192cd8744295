package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest línea de un pedido.
type OrderItemRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  int64            `json:"quantity" validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"` // si falta se usa el precio de venta del producto
	Discount  decimal.Decimal  `json:"discount"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	Number           string             `json:"number" validate:"omitempty,max=50"`
	Type             string             `json:"type" validate:"omitempty,oneof=sale transfer sample"`
	CustomerRef      string             `json:"customer_ref" validate:"omitempty,max=200"`
	Notes            string             `json:"notes" validate:"omitempty,max=1000"`
	ExpectedDelivery *time.Time         `json:"expected_delivery,omitempty"`
	Items            []OrderItemRequest `json:"items" validate:"dive"`
}

// AddTrackingRequest body para POST /api/orders/:id/tracking.
type AddTrackingRequest struct {
	Status     string     `json:"status" validate:"required,max=50"`
	Location   string     `json:"location" validate:"omitempty,max=200"`
	Notes      string     `json:"notes" validate:"omitempty,max=1000"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// OrderItemResponse salida de una línea.
type OrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID               string              `json:"id"`
	CompanyID        string              `json:"company_id"`
	Number           string              `json:"number"`
	Type             string              `json:"type"`
	CustomerRef      string              `json:"customer_ref,omitempty"`
	Status           string              `json:"status"`
	Items            []OrderItemResponse `json:"items"`
	Total            decimal.Decimal     `json:"total"`
	Notes            string              `json:"notes,omitempty"`
	ExpectedDelivery *time.Time          `json:"expected_delivery,omitempty"`
	DeliveredAt      *time.Time          `json:"delivered_at,omitempty"`
	Version          int64               `json:"version"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// TrackingResponse entrada del historial de entrega.
type TrackingResponse struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	Location   string    `json:"location,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	UserID     string    `json:"user_id"`
	RecordedAt time.Time `json:"recorded_at"`
}

// DeliverRequest body opcional para POST /api/orders/:id/deliver.
type DeliverRequest struct {
	Location   string     `json:"location" validate:"omitempty,max=200"`
	Notes      string     `json:"notes" validate:"omitempty,max=1000"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// ReservationResponse reserva activa de un ítem en una ubicación.
type ReservationResponse struct {
	ID          string `json:"id"`
	OrderItemID string `json:"order_item_id"`
	ProductID   string `json:"product_id"`
	LocationID  string `json:"location_id"`
	Quantity    int64  `json:"quantity"`
	Status      string `json:"status"`
}
