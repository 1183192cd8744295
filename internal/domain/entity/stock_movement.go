package entity

import "time"

// MovementKind tipo de movimiento de inventario.
type MovementKind string

// Tipos de movimiento de inventario.
const (
	MovementInbound    MovementKind = "inbound"    // entrada
	MovementOutbound   MovementKind = "outbound"   // salida
	MovementAdjustment MovementKind = "adjustment" // ajuste tras conteo físico
	MovementTransfer   MovementKind = "transfer"   // traslado entre ubicaciones
)

// Valid indica si el tipo es uno de los reconocidos.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementInbound, MovementOutbound, MovementAdjustment, MovementTransfer:
		return true
	}
	return false
}

// StockMovement es una entrada inmutable del ledger. Nunca se actualiza ni se elimina.
// Quantity siempre es positiva; el sentido lo dan SourceLocationID (sale) y DestinationLocationID (entra).
type StockMovement struct {
	ID                    string
	Seq                   int64 // orden dentro del ledger, asignado al persistir
	CompanyID             string
	ProductID             string
	SourceLocationID      string // vacío = sin origen
	DestinationLocationID string // vacío = sin destino
	Kind                  MovementKind
	Quantity              int64
	Reason                string
	DocumentRef           string // factura, nota fiscal, acta de conteo
	OrderID               string // vacío si no viene de un pedido
	UserID                string
	CreatedAt             time.Time
}

// Delta devuelve el efecto neto del movimiento sobre el total del producto.
func (m *StockMovement) Delta() int64 {
	var d int64
	if m.DestinationLocationID != "" {
		d += m.Quantity
	}
	if m.SourceLocationID != "" {
		d -= m.Quantity
	}
	return d
}

// Apply acumula el efecto del movimiento en un mapa ubicación -> cantidad.
func (m *StockMovement) Apply(byLocation map[string]int64) {
	if m.SourceLocationID != "" {
		byLocation[m.SourceLocationID] -= m.Quantity
	}
	if m.DestinationLocationID != "" {
		byLocation[m.DestinationLocationID] += m.Quantity
	}
}
