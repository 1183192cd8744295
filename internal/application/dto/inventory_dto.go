package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Inbound: destination_location_id. Outbound: source_location_id. Transfer: ambos.
// Adjustment: una sola ubicación; quantity negativa sobre destino descuenta.
type RegisterMovementRequest struct {
	Type                  string           `json:"type" validate:"required,oneof=inbound outbound adjustment transfer"`
	ProductID             string           `json:"product_id" validate:"required"`
	Quantity              int64            `json:"quantity" validate:"required,ne=0"`
	SourceLocationID      string           `json:"source_location_id,omitempty"`
	DestinationLocationID string           `json:"destination_location_id,omitempty"`
	Reason                string           `json:"reason" validate:"omitempty,max=500"`
	DocumentRef           string           `json:"document_ref" validate:"omitempty,max=100"`
	OrderID               string           `json:"order_id,omitempty"`
	UnitCost              *decimal.Decimal `json:"unit_cost,omitempty"`
}

// RecordCountRequest body para POST /api/inventory/counts (conteo físico).
type RecordCountRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	LocationID  string `json:"location_id" validate:"required"`
	Counted     int64  `json:"counted" validate:"min=0"`
	Reason      string `json:"reason" validate:"omitempty,max=500"`
	DocumentRef string `json:"document_ref" validate:"omitempty,max=100"`
}

// MovementResponse salida de una entrada del ledger.
type MovementResponse struct {
	ID                    string    `json:"id"`
	Seq                   int64     `json:"seq"`
	ProductID             string    `json:"product_id"`
	Type                  string    `json:"type"`
	Quantity              int64     `json:"quantity"`
	SourceLocationID      string    `json:"source_location_id,omitempty"`
	DestinationLocationID string    `json:"destination_location_id,omitempty"`
	Reason                string    `json:"reason,omitempty"`
	DocumentRef           string    `json:"document_ref,omitempty"`
	OrderID               string    `json:"order_id,omitempty"`
	UserID                string    `json:"user_id"`
	CreatedAt             time.Time `json:"created_at"`
}

// MovementListResponse página del ledger; NextAfterSeq reanuda la lectura.
type MovementListResponse struct {
	Items        []MovementResponse `json:"items"`
	NextAfterSeq int64              `json:"next_after_seq"`
}

// LocationStockResponse cantidad de un producto en una ubicación.
type LocationStockResponse struct {
	ProductID  string    `json:"product_id"`
	LocationID string    `json:"location_id"`
	Quantity   int64     `json:"quantity"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// ProductStockResponse stock total y desglose por ubicación.
type ProductStockResponse struct {
	ProductID     string                  `json:"product_id"`
	TotalQuantity int64                   `json:"total_quantity"`
	Locations     []LocationStockResponse `json:"locations"`
}

// LocationDriftResponse diferencia por ubicación detectada en la conciliación.
type LocationDriftResponse struct {
	LocationID string `json:"location_id"`
	Expected   int64  `json:"expected"`
	Actual     int64  `json:"actual"`
}

// ReconciliationResponse resultado de conciliar un producto contra su ledger.
type ReconciliationResponse struct {
	ProductID   string                  `json:"product_id"`
	Expected    int64                   `json:"expected"`
	Actual      int64                   `json:"actual"`
	LocationSum int64                   `json:"location_sum"`
	Drift       int64                   `json:"drift"`
	Locations   []LocationDriftResponse `json:"locations,omitempty"`
}
