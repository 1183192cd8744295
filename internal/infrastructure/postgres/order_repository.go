package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

var (
	_ repository.OrderRepository            = (*OrderRepo)(nil)
	_ repository.ReservationRepository      = (*ReservationRepo)(nil)
	_ repository.DeliveryTrackingRepository = (*DeliveryTrackingRepo)(nil)
)

const orderColumns = `id, company_id, number, type, customer_ref, user_id, status, total, notes,
	expected_delivery, delivered_at, version, created_at, updated_at`

// OrderRepo pedidos e ítems sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de pedidos. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste la cabecera y los ítems. Debe llamarse dentro de una transacción.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.CompanyID, o.Number, o.Type, o.CustomerRef, o.UserID, string(o.Status), o.Total, o.Notes,
		o.ExpectedDelivery, o.DeliveredAt, o.Version, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.OrderID = o.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO order_items (id, order_id, line, product_id, quantity, unit_price, discount, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.ID, o.ID, i+1, it.ProductID, it.Quantity, it.UnitPrice, it.Discount, it.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el pedido con sus ítems.
func (r *OrderRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE company_id = $1 AND id = $2`, companyID, id)
}

// GetForUpdate obtiene el pedido y bloquea su fila hasta el fin de la transacción.
func (r *OrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id)
}

func (r *OrderRepo) get(ctx context.Context, query, companyID, id string) (*entity.Order, error) {
	if !validIDs(companyID, id) {
		return nil, nil
	}
	o, err := scanOrder(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if o.Items, err = r.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) items(ctx context.Context, orderID string) ([]entity.OrderItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, discount, subtotal
		FROM order_items WHERE order_id = $1 ORDER BY line`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Discount, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateStatus compare-and-set por versión: si otra transacción cambió el pedido devuelve ErrConcurrencyConflict.
func (r *OrderRepo) UpdateStatus(ctx context.Context, o *entity.Order, expectedVersion int64) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE orders SET status = $3, delivered_at = $4, updated_at = $5, version = version + 1
		WHERE company_id = $1 AND id = $2 AND version = $6`,
		o.CompanyID, o.ID, string(o.Status), o.DeliveredAt, o.UpdatedAt, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	o.Version = expectedVersion + 1
	return nil
}

// ListByCompany lista pedidos (sin ítems) del más reciente al más antiguo.
func (r *OrderRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Order, error) {
	if !validIDs(companyID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE company_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var (
		o      entity.Order
		status string
	)
	if err := row.Scan(
		&o.ID, &o.CompanyID, &o.Number, &o.Type, &o.CustomerRef, &o.UserID, &status, &o.Total, &o.Notes,
		&o.ExpectedDelivery, &o.DeliveredAt, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	return &o, nil
}

// ReservationRepo retenciones de stock por pedido.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador de reservas.
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// Create persiste una reserva.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO reservations (id, company_id, order_id, order_item_id, product_id, location_id, quantity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		res.ID, res.CompanyID, res.OrderID, res.OrderItemID, res.ProductID, res.LocationID,
		res.Quantity, res.Status, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// ListActiveByOrder reservas activas del pedido.
func (r *ReservationRepo) ListActiveByOrder(ctx context.Context, companyID, orderID string) ([]*entity.Reservation, error) {
	if !validIDs(companyID, orderID) {
		return nil, nil
	}
	return r.list(ctx, `WHERE company_id = $1 AND order_id = $2 AND status = 'active'`, companyID, orderID)
}

// ListActiveByProduct reservas activas del producto (todas las ubicaciones).
func (r *ReservationRepo) ListActiveByProduct(ctx context.Context, companyID, productID string) ([]*entity.Reservation, error) {
	if !validIDs(companyID, productID) {
		return nil, nil
	}
	return r.list(ctx, `WHERE company_id = $1 AND product_id = $2 AND status = 'active'`, companyID, productID)
}

func (r *ReservationRepo) list(ctx context.Context, where string, args ...any) ([]*entity.Reservation, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, order_id, order_item_id, product_id, location_id, quantity, status, created_at, updated_at
		FROM reservations `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var list []*entity.Reservation
	for rows.Next() {
		var res entity.Reservation
		if err := rows.Scan(&res.ID, &res.CompanyID, &res.OrderID, &res.OrderItemID, &res.ProductID,
			&res.LocationID, &res.Quantity, &res.Status, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, &res)
	}
	return list, rows.Err()
}

// CloseByOrder pasa las reservas activas del pedido a released o consumed.
func (r *ReservationRepo) CloseByOrder(ctx context.Context, companyID, orderID, status string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE reservations SET status = $3, updated_at = now()
		WHERE company_id = $1 AND order_id = $2 AND status = 'active'`,
		companyID, orderID, status,
	)
	if err != nil {
		return fmt.Errorf("close reservations: %w", err)
	}
	return nil
}

// DeliveryTrackingRepo historial de entrega (solo INSERT).
type DeliveryTrackingRepo struct {
	q Querier
}

// NewDeliveryTrackingRepository construye el adaptador de rastreo.
func NewDeliveryTrackingRepository(q Querier) *DeliveryTrackingRepo {
	return &DeliveryTrackingRepo{q: q}
}

// Append agrega una entrada al historial.
func (r *DeliveryTrackingRepo) Append(ctx context.Context, e *entity.DeliveryTracking) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO delivery_tracking (id, company_id, order_id, status, location, notes, user_id, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.CompanyID, e.OrderID, e.Status, e.Location, e.Notes, e.UserID, e.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tracking: %w", err)
	}
	return nil
}

// ListByOrder historial del pedido en orden cronológico.
func (r *DeliveryTrackingRepo) ListByOrder(ctx context.Context, companyID, orderID string) ([]*entity.DeliveryTracking, error) {
	if !validIDs(companyID, orderID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, order_id, status, location, notes, user_id, recorded_at
		FROM delivery_tracking WHERE company_id = $1 AND order_id = $2
		ORDER BY recorded_at`, companyID, orderID)
	if err != nil {
		return nil, fmt.Errorf("list tracking: %w", err)
	}
	defer rows.Close()

	var list []*entity.DeliveryTracking
	for rows.Next() {
		var e entity.DeliveryTracking
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.OrderID, &e.Status, &e.Location, &e.Notes, &e.UserID, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan tracking: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// Last entrada más reciente o (nil, nil).
func (r *DeliveryTrackingRepo) Last(ctx context.Context, companyID, orderID string) (*entity.DeliveryTracking, error) {
	if !validIDs(companyID, orderID) {
		return nil, nil
	}
	var e entity.DeliveryTracking
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, order_id, status, location, notes, user_id, recorded_at
		FROM delivery_tracking WHERE company_id = $1 AND order_id = $2
		ORDER BY recorded_at DESC LIMIT 1`, companyID, orderID).Scan(
		&e.ID, &e.CompanyID, &e.OrderID, &e.Status, &e.Location, &e.Notes, &e.UserID, &e.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last tracking: %w", err)
	}
	return &e, nil
}
