package entity

import "time"

// Roles válidos para User, de mayor a menor jerarquía.
const (
	RoleCEO      = "CEO"
	RoleAdmin    = "Admin"
	RoleManager  = "Manager"
	RoleOperator = "Operator"
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// Turnos de trabajo.
const (
	ShiftMorning   = "morning"
	ShiftAfternoon = "afternoon"
	ShiftNight     = "night"
)

// User representa un usuario del sistema (pertenece a una Company).
// Las credenciales viven fuera del motor; aquí solo interesa la identidad y el rol.
type User struct {
	ID         string
	CompanyID  string
	Username   string
	Name       string
	Email      string
	Role       string // CEO, Admin, Manager, Operator
	Shift      string
	Department string
	Supervisor string
	Status     string
	CreatedBy  string // UserID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RoleRank devuelve la jerarquía del rol (CEO=4 ... Operator=1); 0 si el rol no existe.
func RoleRank(role string) int {
	switch role {
	case RoleCEO:
		return 4
	case RoleAdmin:
		return 3
	case RoleManager:
		return 2
	case RoleOperator:
		return 1
	default:
		return 0
	}
}

// ValidRole indica si el rol es uno de los reconocidos.
func ValidRole(role string) bool { return RoleRank(role) > 0 }
