package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

// OrderRepo implementa repository.OrderRepository.
type OrderRepo struct{ t *tx }

var _ repository.OrderRepository = (*OrderRepo)(nil)

func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	defer r.t.rlock()()
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	for i := range o.Items {
		if o.Items[i].ID == "" {
			o.Items[i].ID = uuid.New().String()
		}
		o.Items[i].OrderID = o.ID
	}
	if r.t.s.orders.read(r.t.orders, key(o.CompanyID, o.ID)) != nil {
		return fmt.Errorf("create order: %w", domain.ErrDuplicate)
	}
	r.t.orders[key(o.CompanyID, o.ID)] = o.Clone()
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Order, error) {
	defer r.t.rlock()()
	return r.t.s.orders.read(r.t.orders, key(companyID, id)), nil
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Order, error) {
	if err := r.t.lockRow(ctx, key("order", companyID, id)); err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}
	return r.GetByID(ctx, companyID, id)
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, o *entity.Order, expectedVersion int64) error {
	defer r.t.rlock()()
	cur := r.t.s.orders.read(r.t.orders, key(o.CompanyID, o.ID))
	if cur == nil {
		return fmt.Errorf("update order status: %w", domain.ErrNotFound)
	}
	if cur.Version != expectedVersion {
		return domain.ErrConcurrencyConflict
	}
	cur.Status = o.Status
	cur.DeliveredAt = o.DeliveredAt
	cur.UpdatedAt = o.UpdatedAt
	cur.Version = expectedVersion + 1
	r.t.orders[key(o.CompanyID, o.ID)] = cur
	o.Version = cur.Version
	return nil
}

func (r *OrderRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Order, error) {
	defer r.t.rlock()()
	rows := r.t.s.orders.scan(r.t.orders, func(x *entity.Order) bool { return x.CompanyID == companyID })
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return page(rows, limit, offset), nil
}

// ReservationRepo implementa repository.ReservationRepository.
type ReservationRepo struct{ t *tx }

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	r.t.reservations[key(res.CompanyID, res.ID)] = shallow(res)
	return nil
}

func (r *ReservationRepo) ListActiveByOrder(ctx context.Context, companyID, orderID string) ([]*entity.Reservation, error) {
	defer r.t.rlock()()
	return r.t.s.reservations.scan(r.t.reservations, func(x *entity.Reservation) bool {
		return x.CompanyID == companyID && x.OrderID == orderID && x.Status == entity.ReservationActive
	}), nil
}

func (r *ReservationRepo) ListActiveByProduct(ctx context.Context, companyID, productID string) ([]*entity.Reservation, error) {
	defer r.t.rlock()()
	return r.t.s.reservations.scan(r.t.reservations, func(x *entity.Reservation) bool {
		return x.CompanyID == companyID && x.ProductID == productID && x.Status == entity.ReservationActive
	}), nil
}

func (r *ReservationRepo) CloseByOrder(ctx context.Context, companyID, orderID, status string) error {
	active, err := r.ListActiveByOrder(ctx, companyID, orderID)
	if err != nil {
		return err
	}
	for _, res := range active {
		res.Status = status
		r.t.reservations[key(res.CompanyID, res.ID)] = res
	}
	return nil
}

// DeliveryTrackingRepo implementa repository.DeliveryTrackingRepository.
type DeliveryTrackingRepo struct{ t *tx }

var _ repository.DeliveryTrackingRepository = (*DeliveryTrackingRepo)(nil)

func (r *DeliveryTrackingRepo) Append(ctx context.Context, e *entity.DeliveryTracking) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	r.t.tracking = append(r.t.tracking, shallow(e))
	return nil
}

func (r *DeliveryTrackingRepo) ListByOrder(ctx context.Context, companyID, orderID string) ([]*entity.DeliveryTracking, error) {
	defer r.t.rlock()()
	var out []*entity.DeliveryTracking
	for _, src := range [][]*entity.DeliveryTracking{r.t.s.tracking, r.t.tracking} {
		for _, e := range src {
			if e.CompanyID == companyID && e.OrderID == orderID {
				out = append(out, shallow(e))
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

func (r *DeliveryTrackingRepo) Last(ctx context.Context, companyID, orderID string) (*entity.DeliveryTracking, error) {
	rows, err := r.ListByOrder(ctx, companyID, orderID)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[len(rows)-1], nil
}
