package entity

import (
	"strings"
	"time"
)

// Location es una dirección dentro de una bodega (pasillo/estante/nivel/posición).
type Location struct {
	ID          string
	CompanyID   string
	WarehouseID string
	Aisle       string
	Shelf       string
	Level       string
	Position    string
	CreatedAt   time.Time
}

// Code devuelve la dirección legible de la ubicación, p. ej. "A-03-2-10".
func (l *Location) Code() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{l.Aisle, l.Shelf, l.Level, l.Position} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}
