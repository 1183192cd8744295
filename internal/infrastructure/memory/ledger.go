package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

// LocationStockRepo implementa repository.LocationStockRepository.
type LocationStockRepo struct{ t *tx }

var _ repository.LocationStockRepository = (*LocationStockRepo)(nil)

func (r *LocationStockRepo) Get(ctx context.Context, companyID, productID, locationID string) (*entity.LocationStock, error) {
	defer r.t.rlock()()
	if st := r.t.s.stock.read(r.t.stock, key(companyID, productID, locationID)); st != nil {
		return st, nil
	}
	return &entity.LocationStock{CompanyID: companyID, ProductID: productID, LocationID: locationID}, nil
}

func (r *LocationStockRepo) Upsert(ctx context.Context, st *entity.LocationStock) error {
	k := key(st.CompanyID, st.ProductID, st.LocationID)
	if st.Quantity == 0 {
		r.t.stock[k] = nil
		return nil
	}
	r.t.stock[k] = shallow(st)
	return nil
}

func (r *LocationStockRepo) ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.LocationStock, error) {
	defer r.t.rlock()()
	return r.t.s.stock.scan(r.t.stock, func(x *entity.LocationStock) bool {
		return x.CompanyID == companyID && x.ProductID == productID
	}), nil
}

// StockMovementRepo implementa el ledger: solo Append y lecturas.
type StockMovementRepo struct{ t *tx }

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.Seq = r.t.s.seq.Add(1)
	r.t.movements = append(r.t.movements, shallow(m))
	return nil
}

func (r *StockMovementRepo) GetByID(ctx context.Context, companyID, id string) (*entity.StockMovement, error) {
	rows := r.filter(func(m *entity.StockMovement) bool { return m.CompanyID == companyID && m.ID == id })
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *StockMovementRepo) ListByProduct(ctx context.Context, companyID, productID string, afterSeq int64, limit int) ([]*entity.StockMovement, error) {
	rows := r.filter(func(m *entity.StockMovement) bool {
		return m.CompanyID == companyID && m.ProductID == productID && m.Seq > afterSeq
	})
	return page(rows, limit, 0), nil
}

func (r *StockMovementRepo) ListByOrder(ctx context.Context, companyID, orderID string) ([]*entity.StockMovement, error) {
	return r.filter(func(m *entity.StockMovement) bool { return m.CompanyID == companyID && m.OrderID == orderID }), nil
}

// filter recorre lo confirmado más lo pendiente de la transacción, ordenado por Seq.
func (r *StockMovementRepo) filter(match func(*entity.StockMovement) bool) []*entity.StockMovement {
	defer r.t.rlock()()
	var out []*entity.StockMovement
	for _, src := range [][]*entity.StockMovement{r.t.s.movements, r.t.movements} {
		for _, m := range src {
			if match(m) {
				out = append(out, shallow(m))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}
