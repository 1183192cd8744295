package entity

// Session es el contexto que la capa de sesión entrega en cada llamada al motor.
// El motor confía en él, pero todas las consultas se acotan a CompanyID.
type Session struct {
	CompanyID string
	UserID    string
	Role      string
}

// Valid indica si la sesión trae los tres campos obligatorios.
func (s Session) Valid() bool {
	return s.CompanyID != "" && s.UserID != "" && s.Role != ""
}
