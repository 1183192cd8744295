// Package fulfillment coordina el ciclo de vida de los pedidos sobre el motor de movimientos:
// reserva todo-o-nada, despacho con compensación y rastreo de entrega.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/application/ports"
	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/authz"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
	"github.com/jhoicas/wms-ledger/pkg/logger"
)

// Coordinator maneja la máquina de estados del pedido. Toda salida de stock pasa por el motor.
type Coordinator struct {
	txRunner  repository.TxRunner
	engine    *inventory.RegisterMovementUseCase
	gate      *authz.Gate
	publisher ports.EventPublisher
	metrics   ports.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// Option configura dependencias opcionales del coordinador.
type Option func(*Coordinator)

func WithPublisher(p ports.EventPublisher) Option {
	return func(c *Coordinator) {
		if p != nil {
			c.publisher = p
		}
	}
}

func WithMetrics(m ports.Metrics) Option {
	return func(c *Coordinator) {
		if m != nil {
			c.metrics = m
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCoordinator construye el coordinador.
func NewCoordinator(txRunner repository.TxRunner, engine *inventory.RegisterMovementUseCase, gate *authz.Gate, opts ...Option) *Coordinator {
	c := &Coordinator{
		txRunner:  txRunner,
		engine:    engine,
		gate:      gate,
		publisher: ports.NopPublisher{},
		metrics:   ports.NopMetrics{},
		log:       logger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ItemInput línea solicitada. Sin UnitPrice se toma el precio de venta del producto.
type ItemInput struct {
	ProductID string
	Quantity  int64
	UnitPrice *decimal.Decimal
	Discount  decimal.Decimal
}

// OrderInput cabecera del pedido.
type OrderInput struct {
	Number           string
	Type             string
	CustomerRef      string
	Notes            string
	ExpectedDelivery *time.Time
	Items            []ItemInput
}

// TrackingInput entrada de rastreo. Sin RecordedAt se usa la hora actual.
type TrackingInput struct {
	Status     string
	Location   string
	Notes      string
	RecordedAt *time.Time
}

// CreateOrder crea el pedido en Draft con sus ítems valorizados.
func (c *Coordinator) CreateOrder(ctx context.Context, s entity.Session, in OrderInput) (*entity.Order, error) {
	if err := c.authorize(s, authz.OpManageOrders); err != nil {
		return nil, err
	}
	typ := in.Type
	if typ == "" {
		typ = entity.OrderTypeSale
	}
	switch typ {
	case entity.OrderTypeSale, entity.OrderTypeTransfer, entity.OrderTypeSample:
	default:
		return nil, fmt.Errorf("%w: tipo de pedido %q", domain.ErrInvalidInput, typ)
	}

	now := c.now()
	order := &entity.Order{
		ID:               uuid.New().String(),
		CompanyID:        s.CompanyID,
		Number:           in.Number,
		Type:             typ,
		CustomerRef:      in.CustomerRef,
		UserID:           s.UserID,
		Status:           entity.OrderDraft,
		Notes:            in.Notes,
		ExpectedDelivery: in.ExpectedDelivery,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if order.Number == "" {
		order.Number = "ORD-" + order.ID[:8]
	}

	err := c.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		total := decimal.Zero
		for _, in := range in.Items {
			item := entity.OrderItem{
				ID:        uuid.New().String(),
				OrderID:   order.ID,
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				Discount:  in.Discount,
			}
			if in.UnitPrice != nil {
				item.UnitPrice = *in.UnitPrice
			} else if in.ProductID != "" {
				p, err := r.Products.GetByID(ctx, s.CompanyID, in.ProductID)
				if err != nil {
					return err
				}
				if p != nil {
					item.UnitPrice = p.SalePrice
				}
			}
			item.Subtotal = item.ComputeSubtotal()
			total = total.Add(item.Subtotal)
			order.Items = append(order.Items, item)
		}
		order.Total = total
		return r.Orders.Create(ctx, order)
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	c.log.Info().Str("company_id", s.CompanyID).Str("order_id", order.ID).Str("number", order.Number).
		Int("items", len(order.Items)).Msg("pedido creado")
	return order, nil
}

// Confirm valida la estructura del pedido: ítems presentes, cantidades positivas y productos conocidos.
func (c *Coordinator) Confirm(ctx context.Context, s entity.Session, orderID string) (*entity.Order, error) {
	return c.transition(ctx, s, authz.OpManageOrders, orderID, entity.OrderConfirmed,
		func(ctx context.Context, r repository.Repos, o *entity.Order) error {
			if len(o.Items) == 0 {
				return fmt.Errorf("%w: el pedido no tiene ítems", domain.ErrInvalidInput)
			}
			for _, it := range o.Items {
				if it.Quantity <= 0 {
					return fmt.Errorf("%w: cantidad no positiva para %s", domain.ErrInvalidInput, it.ProductID)
				}
				p, err := r.Products.GetByID(ctx, s.CompanyID, it.ProductID)
				if err != nil {
					return err
				}
				if p == nil {
					return fmt.Errorf("%w: producto %s desconocido", domain.ErrInvalidInput, it.ProductID)
				}
			}
			return nil
		})
}

// Reserve retiene stock para todos los ítems o para ninguno. Disponible = stock - reservas activas.
// Cada ítem se reparte entre ubicaciones empezando por la de mayor disponibilidad.
func (c *Coordinator) Reserve(ctx context.Context, s entity.Session, orderID string) (*entity.Order, error) {
	return c.transition(ctx, s, authz.OpManageOrders, orderID, entity.OrderReserved,
		func(ctx context.Context, r repository.Repos, o *entity.Order) error {
			available, err := c.lockAvailability(ctx, r, s.CompanyID, o)
			if err != nil {
				return err
			}
			var planned []*entity.Reservation
			for _, it := range o.Items {
				avail := available[it.ProductID]
				var total int64
				for _, a := range avail {
					total += a.qty
				}
				if total < it.Quantity {
					return &domain.PartialFulfillmentError{
						OrderID:   o.ID,
						ProductID: it.ProductID,
						Requested: it.Quantity,
						Available: total,
					}
				}
				sort.SliceStable(avail, func(i, j int) bool {
					if avail[i].qty != avail[j].qty {
						return avail[i].qty > avail[j].qty
					}
					return avail[i].locationID < avail[j].locationID
				})
				need := it.Quantity
				for _, a := range avail {
					if need == 0 {
						break
					}
					take := min(a.qty, need)
					if take <= 0 {
						continue
					}
					a.qty -= take
					need -= take
					planned = append(planned, &entity.Reservation{
						ID:          uuid.New().String(),
						CompanyID:   s.CompanyID,
						OrderID:     o.ID,
						OrderItemID: it.ID,
						ProductID:   it.ProductID,
						LocationID:  a.locationID,
						Quantity:    take,
						Status:      entity.ReservationActive,
						CreatedAt:   c.now(),
						UpdatedAt:   c.now(),
					})
				}
			}
			for _, res := range planned {
				if err := r.Reservations.Create(ctx, res); err != nil {
					return err
				}
			}
			return nil
		})
}

type slot struct {
	locationID string
	qty        int64
}

// lockAvailability bloquea los productos del pedido en orden de id y calcula lo disponible por ubicación.
func (c *Coordinator) lockAvailability(ctx context.Context, r repository.Repos, companyID string, o *entity.Order) (map[string][]*slot, error) {
	ids := make([]string, 0, len(o.Items))
	seen := make(map[string]bool)
	for _, it := range o.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	sort.Strings(ids)

	out := make(map[string][]*slot, len(ids))
	for _, id := range ids {
		p, err := r.Products.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: producto %s desconocido", domain.ErrInvalidInput, id)
		}
		rows, err := r.Stock.ListByProduct(ctx, companyID, id)
		if err != nil {
			return nil, err
		}
		held, err := r.Reservations.ListActiveByProduct(ctx, companyID, id)
		if err != nil {
			return nil, err
		}
		reserved := make(map[string]int64, len(held))
		for _, h := range held {
			reserved[h.LocationID] += h.Quantity
		}
		for _, row := range rows {
			if q := row.Quantity - reserved[row.LocationID]; q > 0 {
				out[id] = append(out[id], &slot{locationID: row.LocationID, qty: q})
			}
		}
	}
	return out, nil
}

// Ship ejecuta una salida por cada línea reservada. Si una falla, las anteriores se revierten con
// entradas compensatorias en orden inverso y el pedido sigue en Reserved.
func (c *Coordinator) Ship(ctx context.Context, s entity.Session, orderID string) (*entity.Order, error) {
	if err := c.authorize(s, authz.OpUpdateOrderStatus); err != nil {
		c.metrics.ObserveOrderTransition(string(entity.OrderShipped), ports.ResultRejected)
		return nil, err
	}

	var (
		order *entity.Order
		lines []*entity.Reservation
	)
	err := c.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		order, err = r.Orders.GetByID(ctx, s.CompanyID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("pedido %s: %w", orderID, domain.ErrNotFound)
		}
		if !entity.CanTransition(order.Status, entity.OrderShipped) {
			return domain.InvalidTransition(string(order.Status), string(entity.OrderShipped))
		}
		lines, err = r.Reservations.ListActiveByOrder(ctx, s.CompanyID, orderID)
		return err
	})
	if err != nil {
		return nil, c.failed(entity.OrderShipped, err)
	}
	// Orden estable de despacho: por línea del pedido y luego por ubicación.
	line := make(map[string]int, len(order.Items))
	for i, it := range order.Items {
		line[it.ID] = i
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if li, lj := line[lines[i].OrderItemID], line[lines[j].OrderItemID]; li != lj {
			return li < lj
		}
		return lines[i].LocationID < lines[j].LocationID
	})
	version := order.Version

	done := make([]*entity.StockMovement, 0, len(lines))
	for _, res := range lines {
		mov, err := c.engine.RecordMovement(ctx, s, inventory.MovementInput{
			Kind:             entity.MovementOutbound,
			ProductID:        res.ProductID,
			Quantity:         res.Quantity,
			SourceLocationID: res.LocationID,
			Reason:           "despacho pedido " + order.Number,
			DocumentRef:      order.Number,
			OrderID:          order.ID,
		})
		if err != nil {
			c.log.Warn().Err(err).Str("order_id", order.ID).Str("product_id", res.ProductID).
				Int("compensations", len(done)).Msg("despacho fallido, compensando salidas previas")
			return nil, c.failed(entity.OrderShipped, errors.Join(err, c.compensate(ctx, s, order, done)))
		}
		done = append(done, mov)
	}

	now := c.now()
	err = c.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		cur, err := r.Orders.GetForUpdate(ctx, s.CompanyID, order.ID)
		if err != nil {
			return err
		}
		if cur == nil || cur.Version != version || cur.Status != entity.OrderReserved {
			return domain.ErrConcurrencyConflict
		}
		cur.Status = entity.OrderShipped
		cur.UpdatedAt = now
		if err := r.Orders.UpdateStatus(ctx, cur, version); err != nil {
			return err
		}
		if err := r.Reservations.CloseByOrder(ctx, s.CompanyID, order.ID, entity.ReservationConsumed); err != nil {
			return err
		}
		order = cur
		return r.Tracking.Append(ctx, &entity.DeliveryTracking{
			ID:         uuid.New().String(),
			CompanyID:  s.CompanyID,
			OrderID:    order.ID,
			Status:     entity.TrackingDispatched,
			UserID:     s.UserID,
			RecordedAt: now,
		})
	})
	if err != nil {
		c.log.Warn().Err(err).Str("order_id", order.ID).Msg("no se pudo cerrar el despacho, compensando")
		return nil, c.failed(entity.OrderShipped, errors.Join(domain.StorageFault(err), c.compensate(ctx, s, order, done)))
	}
	c.changed(ctx, s, order, entity.OrderReserved)
	return order, nil
}

// compensate revierte salidas ya registradas con entradas a la misma ubicación, en orden inverso.
func (c *Coordinator) compensate(ctx context.Context, s entity.Session, order *entity.Order, done []*entity.StockMovement) error {
	var errs []error
	for i := len(done) - 1; i >= 0; i-- {
		m := done[i]
		_, err := c.engine.RecordMovement(ctx, s, inventory.MovementInput{
			Kind:                  entity.MovementInbound,
			ProductID:             m.ProductID,
			Quantity:              m.Quantity,
			DestinationLocationID: m.SourceLocationID,
			Reason:                "compensación despacho pedido " + order.Number,
			DocumentRef:           m.ID,
			OrderID:               order.ID,
			Compensation:          true,
		})
		if err != nil {
			c.metrics.ObserveCompensation(ports.ResultError)
			c.log.Error().Err(err).Str("order_id", order.ID).Str("movement_id", m.ID).
				Msg("compensación fallida: el stock requiere ajuste manual")
			errs = append(errs, fmt.Errorf("compensar movimiento %s: %w", m.ID, err))
			continue
		}
		c.metrics.ObserveCompensation(ports.ResultOK)
	}
	return errors.Join(errs...)
}

// AddTracking agrega una entrada de rastreo a un pedido despachado. Las fechas no retroceden.
func (c *Coordinator) AddTracking(ctx context.Context, s entity.Session, orderID string, in TrackingInput) (*entity.DeliveryTracking, error) {
	if err := c.authorize(s, authz.OpUpdateOrderStatus); err != nil {
		return nil, err
	}
	if in.Status == "" || in.Status == entity.TrackingDelivered {
		return nil, fmt.Errorf("%w: estado de rastreo %q (la entrega se registra con Deliver)", domain.ErrInvalidInput, in.Status)
	}
	var entry *entity.DeliveryTracking
	err := c.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		o, err := r.Orders.GetForUpdate(ctx, s.CompanyID, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("pedido %s: %w", orderID, domain.ErrNotFound)
		}
		if o.Status != entity.OrderShipped {
			return domain.InvalidTransition(string(o.Status), "tracking")
		}
		entry, err = c.appendTracking(ctx, r, s, o.ID, in)
		return err
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return entry, nil
}

func (c *Coordinator) appendTracking(ctx context.Context, r repository.Repos, s entity.Session, orderID string, in TrackingInput) (*entity.DeliveryTracking, error) {
	at := c.now()
	if in.RecordedAt != nil {
		at = *in.RecordedAt
	}
	last, err := r.Tracking.Last(ctx, s.CompanyID, orderID)
	if err != nil {
		return nil, err
	}
	if last != nil && at.Before(last.RecordedAt) {
		return nil, fmt.Errorf("%w: la fecha de rastreo %s es anterior a la última (%s)",
			domain.ErrInvalidInput, at.Format(time.RFC3339), last.RecordedAt.Format(time.RFC3339))
	}
	entry := &entity.DeliveryTracking{
		ID:         uuid.New().String(),
		CompanyID:  s.CompanyID,
		OrderID:    orderID,
		Status:     in.Status,
		Location:   in.Location,
		Notes:      in.Notes,
		UserID:     s.UserID,
		RecordedAt: at,
	}
	if err := r.Tracking.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Deliver registra la entrega final y cierra el pedido.
func (c *Coordinator) Deliver(ctx context.Context, s entity.Session, orderID string, in TrackingInput) (*entity.Order, error) {
	in.Status = entity.TrackingDelivered
	return c.transition(ctx, s, authz.OpUpdateOrderStatus, orderID, entity.OrderDelivered,
		func(ctx context.Context, r repository.Repos, o *entity.Order) error {
			entry, err := c.appendTracking(ctx, r, s, o.ID, in)
			if err != nil {
				return err
			}
			at := entry.RecordedAt
			o.DeliveredAt = &at
			return nil
		})
}

// Cancel libera las reservas del pedido. No genera movimientos; un pedido despachado no se cancela.
func (c *Coordinator) Cancel(ctx context.Context, s entity.Session, orderID string) (*entity.Order, error) {
	return c.transition(ctx, s, authz.OpManageOrders, orderID, entity.OrderCancelled,
		func(ctx context.Context, r repository.Repos, o *entity.Order) error {
			return r.Reservations.CloseByOrder(ctx, s.CompanyID, o.ID, entity.ReservationReleased)
		})
}

// transition aplica un cambio de estado simple: bloquea el pedido, verifica la máquina de estados,
// ejecuta fn y guarda con compare-and-set de versión, todo en una transacción.
func (c *Coordinator) transition(
	ctx context.Context,
	s entity.Session,
	op authz.Operation,
	orderID string,
	to entity.OrderStatus,
	fn func(ctx context.Context, r repository.Repos, o *entity.Order) error,
) (*entity.Order, error) {
	if err := c.authorize(s, op); err != nil {
		c.metrics.ObserveOrderTransition(string(to), ports.ResultRejected)
		return nil, err
	}
	var (
		order *entity.Order
		from  entity.OrderStatus
	)
	err := c.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		o, err := r.Orders.GetForUpdate(ctx, s.CompanyID, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("pedido %s: %w", orderID, domain.ErrNotFound)
		}
		if !entity.CanTransition(o.Status, to) {
			return domain.InvalidTransition(string(o.Status), string(to))
		}
		from = o.Status
		if fn != nil {
			if err := fn(ctx, r, o); err != nil {
				return err
			}
		}
		o.Status = to
		o.UpdatedAt = c.now()
		if err := r.Orders.UpdateStatus(ctx, o, o.Version); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, c.failed(to, err)
	}
	c.changed(ctx, s, order, from)
	return order, nil
}

func (c *Coordinator) authorize(s entity.Session, op authz.Operation) error {
	if !s.Valid() {
		return &domain.UnauthorizedError{Role: s.Role, Operation: string(op), Reason: "sesión incompleta"}
	}
	return c.gate.Check(s.Role, op, authz.Context{})
}

func (c *Coordinator) failed(to entity.OrderStatus, err error) error {
	err = domain.StorageFault(err)
	result := ports.ResultRejected
	if errors.Is(err, domain.ErrStorageFault) {
		result = ports.ResultError
	}
	c.metrics.ObserveOrderTransition(string(to), result)
	return err
}

func (c *Coordinator) changed(ctx context.Context, s entity.Session, o *entity.Order, from entity.OrderStatus) {
	c.metrics.ObserveOrderTransition(string(o.Status), ports.ResultOK)
	c.log.Info().
		Str("company_id", o.CompanyID).
		Str("order_id", o.ID).
		Str("from", string(from)).
		Str("to", string(o.Status)).
		Int64("version", o.Version).
		Str("user_id", s.UserID).
		Msg("estado de pedido actualizado")
	err := c.publisher.Publish(ctx, ports.Event{
		ID:          uuid.New().String(),
		Type:        ports.EventOrderStatusChanged,
		CompanyID:   o.CompanyID,
		AggregateID: o.ID,
		OccurredAt:  o.UpdatedAt,
		Data: map[string]any{
			"order_id": o.ID,
			"number":   o.Number,
			"from":     string(from),
			"to":       string(o.Status),
			"version":  o.Version,
		},
	})
	if err != nil {
		c.log.Warn().Err(err).Str("order_id", o.ID).Msg("no se pudo publicar el cambio de estado")
	}
}
