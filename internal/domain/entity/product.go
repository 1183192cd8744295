package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario (multi-ubicación).
// TotalQuantity es la suma de LocationStock del producto y solo la modifica el motor de movimientos.
type Product struct {
	ID            string
	CompanyID     string
	Code          string // código único por empresa (normalizado)
	SKU           string
	Barcode       string
	Name          string
	Description   string
	Category      string
	Brand         string
	MinQuantity   int64 // punto de reorden
	TotalQuantity int64
	CostPrice     decimal.Decimal
	SalePrice     decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BelowMinimum indica si el stock total quedó por debajo del mínimo configurado.
func (p *Product) BelowMinimum() bool {
	return p.MinQuantity > 0 && p.TotalQuantity < p.MinQuantity
}
