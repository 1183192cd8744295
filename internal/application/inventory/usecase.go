package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/wms-ledger/internal/application/ports"
	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/authz"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/inventory"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
	"github.com/jhoicas/wms-ledger/pkg/logger"
)

// RegisterMovementUseCase es el motor de asignación: registra movimientos de inventario
// (inbound, outbound, adjustment, transfer) de forma transaccional. Bloquea la fila del producto
// (SELECT FOR UPDATE), valida, actualiza stock por ubicación y total del producto y agrega al ledger,
// todo en la misma transacción.
type RegisterMovementUseCase struct {
	txRunner  repository.TxRunner
	gate      *authz.Gate
	publisher ports.EventPublisher
	metrics   ports.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// Option configura dependencias opcionales del caso de uso.
type Option func(*RegisterMovementUseCase)

// WithPublisher publica eventos de dominio tras cada Commit.
func WithPublisher(p ports.EventPublisher) Option {
	return func(uc *RegisterMovementUseCase) {
		if p != nil {
			uc.publisher = p
		}
	}
}

// WithMetrics registra métricas de movimientos.
func WithMetrics(m ports.Metrics) Option {
	return func(uc *RegisterMovementUseCase) {
		if m != nil {
			uc.metrics = m
		}
	}
}

// WithLogger inyecta el logger.
func WithLogger(l *logger.Logger) Option {
	return func(uc *RegisterMovementUseCase) {
		if l != nil {
			uc.log = l
		}
	}
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *RegisterMovementUseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner repository.TxRunner, gate *authz.Gate, opts ...Option) *RegisterMovementUseCase {
	uc := &RegisterMovementUseCase{
		txRunner:  txRunner,
		gate:      gate,
		publisher: ports.NopPublisher{},
		metrics:   ports.NopMetrics{},
		log:       logger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// MovementInput entrada para registrar un movimiento.
// Inbound: DestinationLocationID. Outbound: SourceLocationID. Transfer: ambos.
// Adjustment: una sola ubicación (Quantity negativa sobre destino = decremento).
type MovementInput struct {
	Kind                  entity.MovementKind
	ProductID             string
	Quantity              int64
	SourceLocationID      string
	DestinationLocationID string
	Reason                string
	DocumentRef           string
	OrderID               string
	UnitCost              *decimal.Decimal // solo inbound: recalcula el costo promedio
	// Compensation marca la reversa de una salida ya registrada: devuelve el stock a su
	// ubicación de origen aunque la bodega se haya desactivado después.
	Compensation bool
}

// CountInput resultado de un conteo físico en una ubicación.
type CountInput struct {
	ProductID   string
	LocationID  string
	Counted     int64
	Reason      string
	DocumentRef string
}

// RecordMovement autoriza, valida y aplica un movimiento como una sola unidad atómica.
// Devuelve el movimiento creado o un error de dominio (Unauthorized, InvalidMovement,
// InsufficientStock, ConcurrencyConflict, StorageFault); ante error nada queda escrito.
func (uc *RegisterMovementUseCase) RecordMovement(ctx context.Context, s entity.Session, in MovementInput) (*entity.StockMovement, error) {
	start := uc.now()
	mov, product, err := uc.recordMovement(ctx, s, in)
	if err != nil {
		uc.reject(in.Kind, s, in.ProductID, err, start)
		return nil, err
	}
	uc.committed(ctx, mov, product, start)
	return mov, nil
}

func (uc *RegisterMovementUseCase) recordMovement(ctx context.Context, s entity.Session, in MovementInput) (*entity.StockMovement, *entity.Product, error) {
	op := authz.OpCreateMovement
	if in.Kind == entity.MovementAdjustment {
		op = authz.OpAdjustStock
	}
	if err := uc.authorize(s, op); err != nil {
		return nil, nil, err
	}
	shape, err := inventory.Validate(inventory.Request{
		Kind:          in.Kind,
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		SourceID:      in.SourceLocationID,
		DestinationID: in.DestinationLocationID,
	})
	if err != nil {
		return nil, nil, err
	}
	if in.UnitCost != nil && (in.Kind != entity.MovementInbound || in.UnitCost.IsNegative()) {
		return nil, nil, domain.InvalidMovement("unit_cost solo aplica a inbound y no puede ser negativo")
	}

	var (
		mov     *entity.StockMovement
		product *entity.Product
	)
	err = uc.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var txErr error
		mov, product, txErr = uc.apply(ctx, r, s, shape, in)
		return txErr
	})
	if err != nil {
		return nil, nil, domain.StorageFault(err)
	}
	return mov, product, nil
}

// RecordCount registra un conteo físico: calcula contado - actual bajo el mismo bloqueo y,
// si hay diferencia, la asienta como adjustment. Devuelve (nil, nil) si no hubo diferencia.
func (uc *RegisterMovementUseCase) RecordCount(ctx context.Context, s entity.Session, in CountInput) (*entity.StockMovement, error) {
	start := uc.now()
	if err := uc.authorize(s, authz.OpAdjustStock); err != nil {
		uc.reject(entity.MovementAdjustment, s, in.ProductID, err, start)
		return nil, err
	}
	if in.ProductID == "" || in.LocationID == "" || in.Counted < 0 {
		err := domain.InvalidMovement("conteo requiere producto, ubicación y cantidad no negativa")
		uc.reject(entity.MovementAdjustment, s, in.ProductID, err, start)
		return nil, err
	}

	var (
		mov     *entity.StockMovement
		product *entity.Product
	)
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		p, err := r.Products.GetForUpdate(ctx, s.CompanyID, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.InvalidMovement("producto %s desconocido", in.ProductID)
		}
		current, err := r.Stock.Get(ctx, s.CompanyID, in.ProductID, in.LocationID)
		if err != nil {
			return err
		}
		delta := in.Counted - current.Quantity
		if delta == 0 {
			return nil
		}
		shape, err := inventory.Validate(inventory.Request{
			Kind:          entity.MovementAdjustment,
			ProductID:     in.ProductID,
			Quantity:      delta,
			DestinationID: in.LocationID,
		})
		if err != nil {
			return err
		}
		reason := in.Reason
		if reason == "" {
			reason = "conteo físico"
		}
		mov, product, err = uc.apply(ctx, r, s, shape, MovementInput{
			Kind:        entity.MovementAdjustment,
			Reason:      reason,
			DocumentRef: in.DocumentRef,
		})
		return err
	})
	if err != nil {
		err = domain.StorageFault(err)
		uc.reject(entity.MovementAdjustment, s, in.ProductID, err, start)
		return nil, err
	}
	if mov == nil {
		return nil, nil
	}
	uc.committed(ctx, mov, product, start)
	return mov, nil
}

// apply ejecuta el protocolo dentro de la transacción del caller: bloqueo del producto,
// validación de pertenencia al tenant, cálculo de cantidades resultantes y, solo si todo es válido,
// escritura de stock, total del producto y ledger.
func (uc *RegisterMovementUseCase) apply(
	ctx context.Context,
	r repository.Repos,
	s entity.Session,
	shape inventory.Shape,
	in MovementInput,
) (*entity.StockMovement, *entity.Product, error) {
	// Bloquea la fila del producto: serializa movimientos del mismo producto
	product, err := r.Products.GetForUpdate(ctx, s.CompanyID, shape.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, domain.InvalidMovement("producto %s desconocido", shape.ProductID)
	}

	current := make(map[string]int64, 2)
	for _, locID := range shape.Locations() {
		loc, err := r.Locations.GetByID(ctx, s.CompanyID, locID)
		if err != nil {
			return nil, nil, err
		}
		if loc == nil {
			return nil, nil, domain.InvalidMovement("ubicación %s desconocida", locID)
		}
		if locID == shape.DestinationID && shape.Kind != entity.MovementAdjustment && !in.Compensation {
			wh, err := r.Warehouses.GetByID(ctx, s.CompanyID, loc.WarehouseID)
			if err != nil {
				return nil, nil, err
			}
			if wh == nil || !wh.Active() {
				return nil, nil, domain.InvalidMovement("la bodega de la ubicación %s no está activa", locID)
			}
		}
		st, err := r.Stock.Get(ctx, s.CompanyID, shape.ProductID, locID)
		if err != nil {
			return nil, nil, err
		}
		current[locID] = st.Quantity
	}
	if in.OrderID != "" {
		order, err := r.Orders.GetByID(ctx, s.CompanyID, in.OrderID)
		if err != nil {
			return nil, nil, err
		}
		if order == nil {
			return nil, nil, domain.InvalidMovement("pedido %s desconocido", in.OrderID)
		}
	}

	changes, err := inventory.Plan(shape, current)
	if err != nil {
		return nil, nil, err
	}
	newTotal := product.TotalQuantity + shape.Delta()
	if newTotal < 0 {
		return nil, nil, &domain.InsufficientStockError{
			ProductID: shape.ProductID,
			Requested: shape.Quantity,
			Available: product.TotalQuantity,
		}
	}

	now := uc.now()
	for _, c := range changes {
		if err := r.Stock.Upsert(ctx, &entity.LocationStock{
			CompanyID:  s.CompanyID,
			ProductID:  shape.ProductID,
			LocationID: c.LocationID,
			Quantity:   c.After,
			UpdatedAt:  now,
		}); err != nil {
			return nil, nil, err
		}
	}
	if shape.Delta() != 0 {
		if err := r.Products.UpdateTotalQuantity(ctx, s.CompanyID, product.ID, newTotal); err != nil {
			return nil, nil, err
		}
	}
	if in.UnitCost != nil {
		cost := inventory.CostCalculator(product.TotalQuantity, product.CostPrice, shape.Quantity, *in.UnitCost)
		if err := r.Products.UpdateCost(ctx, s.CompanyID, product.ID, cost); err != nil {
			return nil, nil, err
		}
		product.CostPrice = cost
	}
	product.TotalQuantity = newTotal

	mov := &entity.StockMovement{
		ID:                    uuid.New().String(),
		CompanyID:             s.CompanyID,
		ProductID:             shape.ProductID,
		SourceLocationID:      shape.SourceID,
		DestinationLocationID: shape.DestinationID,
		Kind:                  shape.Kind,
		Quantity:              shape.Quantity,
		Reason:                in.Reason,
		DocumentRef:           in.DocumentRef,
		OrderID:               in.OrderID,
		UserID:                s.UserID,
		CreatedAt:             now,
	}
	if err := r.Movements.Append(ctx, mov); err != nil {
		return nil, nil, err
	}
	return mov, product, nil
}

func (uc *RegisterMovementUseCase) authorize(s entity.Session, op authz.Operation) error {
	if !s.Valid() {
		return &domain.UnauthorizedError{Role: s.Role, Operation: string(op), Reason: "sesión incompleta"}
	}
	return uc.gate.Check(s.Role, op, authz.Context{})
}

func (uc *RegisterMovementUseCase) reject(kind entity.MovementKind, s entity.Session, productID string, err error, start time.Time) {
	result := ports.ResultRejected
	if errors.Is(err, domain.ErrStorageFault) {
		result = ports.ResultError
		uc.log.Error().Err(err).
			Str("company_id", s.CompanyID).
			Str("product_id", productID).
			Str("kind", string(kind)).
			Msg("fallo de almacenamiento registrando movimiento")
	} else {
		uc.log.Debug().Err(err).
			Str("company_id", s.CompanyID).
			Str("product_id", productID).
			Str("kind", string(kind)).
			Str("error_kind", domain.Kind(err)).
			Msg("movimiento rechazado")
	}
	uc.metrics.ObserveMovement(string(kind), result, uc.now().Sub(start))
}

func (uc *RegisterMovementUseCase) committed(ctx context.Context, mov *entity.StockMovement, product *entity.Product, start time.Time) {
	uc.metrics.ObserveMovement(string(mov.Kind), ports.ResultOK, uc.now().Sub(start))
	uc.log.Info().
		Str("company_id", mov.CompanyID).
		Str("movement_id", mov.ID).
		Str("product_id", mov.ProductID).
		Str("kind", string(mov.Kind)).
		Int64("quantity", mov.Quantity).
		Int64("total", product.TotalQuantity).
		Str("user_id", mov.UserID).
		Msg("movimiento registrado")

	events := []ports.Event{{
		ID:          uuid.New().String(),
		Type:        ports.EventMovementRecorded,
		CompanyID:   mov.CompanyID,
		AggregateID: mov.ProductID,
		OccurredAt:  mov.CreatedAt,
		Data:        mov,
	}}
	if mov.Delta() < 0 && product.BelowMinimum() {
		events = append(events, ports.Event{
			ID:          uuid.New().String(),
			Type:        ports.EventStockBelowMinimum,
			CompanyID:   mov.CompanyID,
			AggregateID: mov.ProductID,
			OccurredAt:  mov.CreatedAt,
			Data: map[string]any{
				"product_id":     product.ID,
				"code":           product.Code,
				"total_quantity": product.TotalQuantity,
				"min_quantity":   product.MinQuantity,
			},
		})
	}
	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.log.Warn().Err(err).Str("movement_id", mov.ID).Msg("no se pudieron publicar eventos del movimiento")
	}
}
