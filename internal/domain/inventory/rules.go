package inventory

import (
	"sort"

	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

// Request forma cruda de un movimiento tal como llega al motor.
type Request struct {
	Kind          entity.MovementKind
	ProductID     string
	Quantity      int64
	SourceID      string
	DestinationID string
}

// Shape es la forma normalizada: cantidad positiva, origen/destino según el tipo.
type Shape struct {
	Kind          entity.MovementKind
	ProductID     string
	Quantity      int64
	SourceID      string
	DestinationID string
}

// Validate aplica las reglas de combinación tipo/ubicaciones y normaliza el ajuste negativo.
//   - inbound: destino obligatorio, origen prohibido.
//   - outbound: origen obligatorio, destino prohibido.
//   - adjustment: exactamente una ubicación; cantidad negativa sobre destino = decremento.
//   - transfer: origen y destino obligatorios y distintos.
func Validate(r Request) (Shape, error) {
	if r.ProductID == "" {
		return Shape{}, domain.InvalidMovement("producto requerido")
	}
	if !r.Kind.Valid() {
		return Shape{}, domain.InvalidMovement("tipo %q desconocido", r.Kind)
	}
	s := Shape{Kind: r.Kind, ProductID: r.ProductID, Quantity: r.Quantity, SourceID: r.SourceID, DestinationID: r.DestinationID}

	if s.Kind == entity.MovementAdjustment && s.Quantity < 0 && s.DestinationID != "" && s.SourceID == "" {
		s.SourceID, s.DestinationID = s.DestinationID, ""
		s.Quantity = -s.Quantity
	}
	if s.Quantity <= 0 {
		return Shape{}, domain.InvalidMovement("la cantidad debe ser positiva")
	}

	switch s.Kind {
	case entity.MovementInbound:
		if s.DestinationID == "" {
			return Shape{}, domain.InvalidMovement("inbound requiere destino")
		}
		if s.SourceID != "" {
			return Shape{}, domain.InvalidMovement("inbound no admite origen")
		}
	case entity.MovementOutbound:
		if s.SourceID == "" {
			return Shape{}, domain.InvalidMovement("outbound requiere origen")
		}
		if s.DestinationID != "" {
			return Shape{}, domain.InvalidMovement("outbound no admite destino")
		}
	case entity.MovementAdjustment:
		if (s.SourceID == "") == (s.DestinationID == "") {
			return Shape{}, domain.InvalidMovement("adjustment requiere exactamente una ubicación")
		}
	case entity.MovementTransfer:
		if s.SourceID == "" || s.DestinationID == "" {
			return Shape{}, domain.InvalidMovement("transfer requiere origen y destino")
		}
		if s.SourceID == s.DestinationID {
			return Shape{}, domain.InvalidMovement("origen y destino deben ser distintos")
		}
	}
	return s, nil
}

// Locations devuelve las ubicaciones que toca el movimiento, ordenadas.
func (s Shape) Locations() []string {
	var locs []string
	if s.SourceID != "" {
		locs = append(locs, s.SourceID)
	}
	if s.DestinationID != "" {
		locs = append(locs, s.DestinationID)
	}
	sort.Strings(locs)
	return locs
}

// Delta efecto neto sobre el total del producto.
func (s Shape) Delta() int64 {
	var d int64
	if s.DestinationID != "" {
		d += s.Quantity
	}
	if s.SourceID != "" {
		d -= s.Quantity
	}
	return d
}

// Change cambio calculado para una ubicación.
type Change struct {
	LocationID string
	Before     int64
	After      int64
}

// Plan calcula las cantidades resultantes a partir de las actuales (ubicación -> cantidad).
// Si algún resultado fuera negativo devuelve *domain.InsufficientStockError y ningún cambio.
func Plan(s Shape, current map[string]int64) ([]Change, error) {
	if s.SourceID != "" {
		have := current[s.SourceID]
		if have < s.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID:  s.ProductID,
				LocationID: s.SourceID,
				Requested:  s.Quantity,
				Available:  have,
			}
		}
	}
	changes := make([]Change, 0, 2)
	if s.SourceID != "" {
		before := current[s.SourceID]
		changes = append(changes, Change{LocationID: s.SourceID, Before: before, After: before - s.Quantity})
	}
	if s.DestinationID != "" {
		before := current[s.DestinationID]
		changes = append(changes, Change{LocationID: s.DestinationID, Before: before, After: before + s.Quantity})
	}
	return changes, nil
}
