package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

var (
	_ repository.LocationStockRepository = (*LocationStockRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
)

// LocationStockRepo índice de stock por (producto, ubicación) sobre PostgreSQL.
type LocationStockRepo struct {
	q Querier
}

// NewLocationStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewLocationStockRepository(q Querier) *LocationStockRepo {
	return &LocationStockRepo{q: q}
}

// Get obtiene el stock actual de un producto en una ubicación (0 si no hay fila).
func (r *LocationStockRepo) Get(ctx context.Context, companyID, productID, locationID string) (*entity.LocationStock, error) {
	if !validIDs(companyID, productID, locationID) {
		return &entity.LocationStock{CompanyID: companyID, ProductID: productID, LocationID: locationID}, nil
	}
	query := `
		SELECT company_id, product_id, location_id, quantity, updated_at
		FROM location_stock WHERE company_id = $1 AND product_id = $2 AND location_id = $3`
	var s entity.LocationStock
	err := r.q.QueryRow(ctx, query, companyID, productID, locationID).Scan(
		&s.CompanyID, &s.ProductID, &s.LocationID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.LocationStock{CompanyID: companyID, ProductID: productID, LocationID: locationID}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad; con cantidad 0 elimina la fila.
func (r *LocationStockRepo) Upsert(ctx context.Context, s *entity.LocationStock) error {
	if s.Quantity == 0 {
		_, err := r.q.Exec(ctx,
			`DELETE FROM location_stock WHERE company_id = $1 AND product_id = $2 AND location_id = $3`,
			s.CompanyID, s.ProductID, s.LocationID,
		)
		if err != nil {
			return fmt.Errorf("delete stock: %w", err)
		}
		return nil
	}
	query := `
		INSERT INTO location_stock (company_id, product_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, s.CompanyID, s.ProductID, s.LocationID, s.Quantity); err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// ListByProduct devuelve el desglose por ubicación del producto.
func (r *LocationStockRepo) ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.LocationStock, error) {
	if !validIDs(companyID, productID) {
		return nil, nil
	}
	query := `
		SELECT company_id, product_id, location_id, quantity, updated_at
		FROM location_stock WHERE company_id = $1 AND product_id = $2
		ORDER BY location_id`
	rows, err := r.q.Query(ctx, query, companyID, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	var list []*entity.LocationStock
	for rows.Next() {
		var s entity.LocationStock
		if err := rows.Scan(&s.CompanyID, &s.ProductID, &s.LocationID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

const movementColumns = `seq, id, company_id, product_id, source_location_id, destination_location_id, kind,
	quantity, reason, document_ref, order_id, user_id, created_at`

// StockMovementRepo ledger sobre PostgreSQL. No expone UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append persiste el movimiento; seq lo asigna la secuencia de la tabla.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, company_id, product_id, source_location_id, destination_location_id,
			kind, quantity, reason, document_ref, order_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.CompanyID, m.ProductID, nullable(m.SourceLocationID), nullable(m.DestinationLocationID),
		string(m.Kind), m.Quantity, m.Reason, m.DocumentRef, nullable(m.OrderID), m.UserID, m.CreatedAt,
	).Scan(&m.Seq)
	if err != nil {
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, companyID, id string) (*entity.StockMovement, error) {
	if !validIDs(companyID, id) {
		return nil, nil
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE company_id = $1 AND id = $2`
	m, err := scanMovement(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByProduct página del ledger del producto con seq > afterSeq, del más antiguo al más reciente.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, companyID, productID string, afterSeq int64, limit int) ([]*entity.StockMovement, error) {
	if !validIDs(companyID, productID) {
		return nil, nil
	}
	query := `
		SELECT ` + movementColumns + ` FROM stock_movements
		WHERE company_id = $1 AND product_id = $2 AND seq > $3
		ORDER BY seq LIMIT $4`
	return r.list(ctx, query, companyID, productID, afterSeq, limit)
}

// ListByOrder movimientos asociados a un pedido en orden del ledger.
func (r *StockMovementRepo) ListByOrder(ctx context.Context, companyID, orderID string) ([]*entity.StockMovement, error) {
	if !validIDs(companyID, orderID) {
		return nil, nil
	}
	query := `
		SELECT ` + movementColumns + ` FROM stock_movements
		WHERE company_id = $1 AND order_id = $2
		ORDER BY seq`
	return r.list(ctx, query, companyID, orderID)
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var (
		m                 entity.StockMovement
		kind              string
		src, dst, orderID *string
	)
	if err := row.Scan(
		&m.Seq, &m.ID, &m.CompanyID, &m.ProductID, &src, &dst, &kind,
		&m.Quantity, &m.Reason, &m.DocumentRef, &orderID, &m.UserID, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	m.Kind = entity.MovementKind(kind)
	m.SourceLocationID = deref(src)
	m.DestinationLocationID = deref(dst)
	m.OrderID = deref(orderID)
	return &m, nil
}
