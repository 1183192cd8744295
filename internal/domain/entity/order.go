package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado del pedido.
type OrderStatus string

// Estados del pedido. Delivered y Cancelled son terminales.
const (
	OrderDraft     OrderStatus = "draft"
	OrderConfirmed OrderStatus = "confirmed"
	OrderReserved  OrderStatus = "reserved"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Tipos de pedido.
const (
	OrderTypeSale     = "sale"
	OrderTypeTransfer = "transfer"
	OrderTypeSample   = "sample"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderDraft:     {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderReserved, OrderCancelled},
	OrderReserved:  {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered},
}

// CanTransition indica si la máquina de estados permite pasar de from a to.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal indica si el estado ya no admite transiciones.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// Order agrupa los ítems solicitados. Version se usa para control optimista de concurrencia.
type Order struct {
	ID               string
	CompanyID        string
	Number           string
	Type             string
	CustomerRef      string
	UserID           string
	Status           OrderStatus
	Items            []OrderItem
	Total            decimal.Decimal
	Notes            string
	ExpectedDelivery *time.Time
	DeliveredAt      *time.Time
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderItem línea del pedido.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal // valor absoluto descontado a la línea
	Subtotal  decimal.Decimal
}

// ComputeSubtotal calcula cantidad * precio - descuento (nunca negativo).
func (it *OrderItem) ComputeSubtotal() decimal.Decimal {
	sub := it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)).Sub(it.Discount)
	if sub.IsNegative() {
		return decimal.Zero
	}
	return sub
}

// Clone copia el pedido incluyendo sus ítems.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	return &c
}
