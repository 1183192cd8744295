package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                 = errors.New("recurso no encontrado")
	ErrInvalidInput             = errors.New("entrada inválida")
	ErrDuplicate                = errors.New("recurso duplicado")
	ErrUnauthorized             = errors.New("no autorizado")
	ErrInsufficientStock        = errors.New("stock insuficiente")
	ErrInvalidMovement          = errors.New("movimiento inválido")
	ErrInvalidTransition        = errors.New("transición de estado inválida")
	ErrPartialFulfillmentDenied = errors.New("el pedido no puede reservarse completo")
	ErrConcurrencyConflict      = errors.New("conflicto de concurrencia, reintente la operación")
	ErrStorageFault             = errors.New("fallo de almacenamiento")
)

// Códigos estables de error para la capa que llama al motor.
const (
	KindUnauthorized             = "UNAUTHORIZED"
	KindInsufficientStock        = "INSUFFICIENT_STOCK"
	KindInvalidMovement          = "INVALID_MOVEMENT"
	KindPartialFulfillmentDenied = "PARTIAL_FULFILLMENT_DENIED"
	KindConcurrencyConflict      = "CONCURRENCY_CONFLICT"
	KindStorageFault             = "STORAGE_FAULT"
	KindNotFound                 = "NOT_FOUND"
	KindInvalidInput             = "VALIDATION"
	KindInvalidTransition        = "INVALID_TRANSITION"
	KindDuplicate                = "DUPLICATE"
	KindInternal                 = "INTERNAL"
)

// UnauthorizedError indica que el rol no tiene permiso para la operación.
type UnauthorizedError struct {
	Role      string
	Operation string
	Reason    string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("no autorizado: rol %q no puede ejecutar %q (%s)", e.Role, e.Operation, e.Reason)
	}
	return fmt.Sprintf("no autorizado: rol %q no puede ejecutar %q", e.Role, e.Operation)
}

func (e *UnauthorizedError) Unwrap() error { return ErrUnauthorized }

// InsufficientStockError describe un decremento que dejaría la ubicación en negativo.
type InsufficientStockError struct {
	ProductID  string
	LocationID string
	Requested  int64
	Available  int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: producto %s en ubicación %s, solicitado %d, disponible %d",
		e.ProductID, e.LocationID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// PartialFulfillmentError indica el primer ítem del pedido que no se pudo reservar.
type PartialFulfillmentError struct {
	OrderID   string
	ProductID string
	Requested int64
	Available int64
}

func (e *PartialFulfillmentError) Error() string {
	return fmt.Sprintf("reserva rechazada para pedido %s: producto %s, solicitado %d, disponible %d",
		e.OrderID, e.ProductID, e.Requested, e.Available)
}

func (e *PartialFulfillmentError) Unwrap() error { return ErrPartialFulfillmentDenied }

// InvalidMovement construye un error de movimiento mal formado con su motivo.
func InvalidMovement(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidMovement, fmt.Sprintf(format, args...))
}

// InvalidTransition construye un error de transición de pedido no permitida.
func InvalidTransition(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// StorageFault envuelve un error de persistencia desconocido. Los errores de dominio pasan sin cambios.
func StorageFault(err error) error {
	if err == nil || IsDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageFault, err)
}

// IsDomainError indica si err pertenece a alguno de los tipos de error del motor.
func IsDomainError(err error) bool {
	return Kind(err) != KindInternal
}

// Kind devuelve el código estable del error (KindInternal si no es de dominio).
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrInsufficientStock):
		return KindInsufficientStock
	case errors.Is(err, ErrInvalidMovement):
		return KindInvalidMovement
	case errors.Is(err, ErrPartialFulfillmentDenied):
		return KindPartialFulfillmentDenied
	case errors.Is(err, ErrConcurrencyConflict):
		return KindConcurrencyConflict
	case errors.Is(err, ErrStorageFault):
		return KindStorageFault
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	default:
		return KindInternal
	}
}
