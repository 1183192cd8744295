// Package authz concentra la política de permisos por rol: una matriz estática que el motor
// consulta antes de tocar cualquier almacenamiento.
package authz

import (
	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

// Operation etiqueta gruesa de operación sujeta a permiso.
type Operation string

// Operaciones reconocidas.
const (
	OpCreateMovement    Operation = "create-movement"
	OpAdjustStock       Operation = "adjust-stock"
	OpViewStock         Operation = "view-stock"
	OpViewReport        Operation = "view-report"
	OpManageProducts    Operation = "manage-products"
	OpManageWarehouses  Operation = "manage-warehouses"
	OpManageOrders      Operation = "manage-orders"
	OpUpdateOrderStatus Operation = "update-order-status"
	OpManageUsers       Operation = "manage-users"
	OpConfigureSystem   Operation = "configure-system"
)

// AllOperations lista todas las operaciones (orden estable).
var AllOperations = []Operation{
	OpCreateMovement, OpAdjustStock, OpViewStock, OpViewReport,
	OpManageProducts, OpManageWarehouses, OpManageOrders, OpUpdateOrderStatus,
	OpManageUsers, OpConfigureSystem,
}

// Matrix rol -> operaciones permitidas.
type Matrix map[string]map[Operation]bool

// DefaultMatrix devuelve la matriz de permisos del sistema.
func DefaultMatrix() Matrix {
	m := Matrix{
		entity.RoleCEO:   set(AllOperations...),
		entity.RoleAdmin: set(AllOperations...),
		entity.RoleManager: set(
			OpManageProducts, OpManageWarehouses, OpManageOrders, OpUpdateOrderStatus,
			OpCreateMovement, OpAdjustStock, OpViewStock, OpViewReport,
		),
		entity.RoleOperator: set(OpCreateMovement, OpUpdateOrderStatus, OpViewStock),
	}
	delete(m[entity.RoleAdmin], OpConfigureSystem)
	return m
}

func set(ops ...Operation) map[Operation]bool {
	s := make(map[Operation]bool, len(ops))
	for _, op := range ops {
		s[op] = true
	}
	return s
}

// Context datos adicionales para decidir. TargetRole aplica a manage-users.
type Context struct {
	TargetRole string
}

// Decision resultado de la evaluación.
type Decision struct {
	Allowed bool
	Reason  string
}

// Gate evalúa (rol, operación). No tiene estado mutable: no requiere sincronización.
type Gate struct {
	matrix Matrix
}

// NewGate construye el gate; con matrix nil usa DefaultMatrix.
func NewGate(matrix Matrix) *Gate {
	if matrix == nil {
		matrix = DefaultMatrix()
	}
	return &Gate{matrix: matrix}
}

// Authorize decide si el rol puede ejecutar la operación.
func (g *Gate) Authorize(role string, op Operation, ctx Context) Decision {
	ops, ok := g.matrix[role]
	if !ok {
		return Decision{Reason: "rol desconocido"}
	}
	if !ops[op] {
		return Decision{Reason: "operación no permitida para el rol"}
	}
	if op == OpManageUsers && ctx.TargetRole != "" {
		if !entity.ValidRole(ctx.TargetRole) {
			return Decision{Reason: "rol destino desconocido"}
		}
		// Solo el CEO administra usuarios de nivel Admin o superior.
		if role != entity.RoleCEO && entity.RoleRank(ctx.TargetRole) >= entity.RoleRank(entity.RoleAdmin) {
			return Decision{Reason: "escalamiento de rol no permitido"}
		}
	}
	return Decision{Allowed: true}
}

// Check es Authorize expresado como error (*domain.UnauthorizedError) para el flujo normal del motor.
func (g *Gate) Check(role string, op Operation, ctx Context) error {
	d := g.Authorize(role, op, ctx)
	if d.Allowed {
		return nil
	}
	return &domain.UnauthorizedError{Role: role, Operation: string(op), Reason: d.Reason}
}
