package ports

import (
	"context"
	"time"
)

// Tipos de eventos de dominio emitidos por el motor.
const (
	EventMovementRecorded   = "inventory.movement.recorded"
	EventStockBelowMinimum  = "inventory.stock.below_minimum"
	EventDriftDetected      = "inventory.reconciliation.drift_detected"
	EventOrderStatusChanged = "orders.status.changed"
)

// Event evento de dominio. AggregateID se usa como clave de partición (producto o pedido).
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	CompanyID   string    `json:"company_id"`
	AggregateID string    `json:"aggregate_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Data        any       `json:"data"`
}

// EventPublisher define el puerto de salida para eventos de dominio.
// Se invoca después del Commit: un fallo de publicación nunca deshace la operación ya confirmada.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NopPublisher descarta los eventos (publicación deshabilitada).
type NopPublisher struct{}

// Publish no hace nada.
func (NopPublisher) Publish(context.Context, ...Event) error { return nil }
