package entity

import "time"

// Estados de bodega.
const (
	WarehouseStatusActive   = "active"
	WarehouseStatusInactive = "inactive"
)

// Warehouse representa una bodega o centro de distribución con capacidad declarada.
type Warehouse struct {
	ID         string
	CompanyID  string
	Name       string
	Type       string // propio, tercero, cross-docking, ...
	Address    string
	City       string
	State      string
	PostalCode string
	ManagerID  string // UserID responsable
	Capacity   int64
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Active indica si la bodega acepta entradas.
func (w *Warehouse) Active() bool { return w.Status == "" || w.Status == WarehouseStatusActive }
