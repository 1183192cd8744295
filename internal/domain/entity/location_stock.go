package entity

import "time"

// LocationStock es la cantidad actual de un producto en una ubicación.
// Estado derivado: siempre reconstruible desde el ledger de movimientos.
type LocationStock struct {
	CompanyID  string
	ProductID  string
	LocationID string
	Quantity   int64
	UpdatedAt  time.Time
}
