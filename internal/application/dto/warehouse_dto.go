package dto

import "time"

// CreateWarehouseRequest entrada para crear una bodega.
type CreateWarehouseRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	Type       string `json:"type" validate:"omitempty,max=50"`
	Address    string `json:"address"`
	City       string `json:"city" validate:"omitempty,max=100"`
	State      string `json:"state" validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code" validate:"omitempty,max=20"`
	ManagerID  string `json:"manager_id"`
	Capacity   int64  `json:"capacity" validate:"min=0"`
}

// UpdateWarehouseRequest entrada para actualizar una bodega.
type UpdateWarehouseRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address  *string `json:"address"`
	Capacity *int64  `json:"capacity" validate:"omitempty,min=0"`
	Status   *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"company_id"`
	Name       string    `json:"name"`
	Type       string    `json:"type,omitempty"`
	Address    string    `json:"address"`
	City       string    `json:"city,omitempty"`
	State      string    `json:"state,omitempty"`
	PostalCode string    `json:"postal_code,omitempty"`
	ManagerID  string    `json:"manager_id,omitempty"`
	Capacity   int64     `json:"capacity"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// WarehouseListResponse lista paginada de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// CreateLocationRequest entrada para crear una ubicación dentro de una bodega.
type CreateLocationRequest struct {
	Aisle    string `json:"aisle" validate:"required,max=20"`
	Shelf    string `json:"shelf" validate:"omitempty,max=20"`
	Level    string `json:"level" validate:"omitempty,max=20"`
	Position string `json:"position" validate:"omitempty,max=20"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID          string    `json:"id"`
	WarehouseID string    `json:"warehouse_id"`
	Code        string    `json:"code"`
	Aisle       string    `json:"aisle"`
	Shelf       string    `json:"shelf,omitempty"`
	Level       string    `json:"level,omitempty"`
	Position    string    `json:"position,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
