package dto

import "time"

// CreateUserRequest entrada para crear un usuario. Las credenciales se gestionan fuera del motor.
type CreateUserRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=50"`
	Name       string `json:"name" validate:"required,min=1,max=200"`
	Email      string `json:"email" validate:"omitempty,email"`
	Role       string `json:"role" validate:"required,oneof=CEO Admin Manager Operator"`
	Shift      string `json:"shift" validate:"omitempty,oneof=morning afternoon night"`
	Department string `json:"department" validate:"omitempty,max=100"`
	Supervisor string `json:"supervisor" validate:"omitempty,max=100"`
}

// ChangeRoleRequest body para PUT /api/users/:id/role.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=CEO Admin Manager Operator"`
}

// UserResponse salida de un usuario.
type UserResponse struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"company_id"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Role       string    `json:"role"`
	Shift      string    `json:"shift,omitempty"`
	Department string    `json:"department,omitempty"`
	Supervisor string    `json:"supervisor,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserListResponse lista paginada de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
