package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

// ProductRepo implementa repository.ProductRepository.
type ProductRepo struct{ t *tx }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	defer r.t.rlock()()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if r.t.s.products.read(r.t.products, key(p.CompanyID, p.ID)) != nil {
		return fmt.Errorf("create product: %w", domain.ErrDuplicate)
	}
	dup := r.t.s.products.scan(r.t.products, func(x *entity.Product) bool {
		return x.CompanyID == p.CompanyID && x.Code == p.Code
	})
	if len(dup) > 0 {
		return fmt.Errorf("create product %s: %w", p.Code, domain.ErrDuplicate)
	}
	r.t.products[key(p.CompanyID, p.ID)] = shallow(p)
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Product, error) {
	defer r.t.rlock()()
	return r.t.s.products.read(r.t.products, key(companyID, id)), nil
}

func (r *ProductRepo) GetByCode(ctx context.Context, companyID, code string) (*entity.Product, error) {
	defer r.t.rlock()()
	rows := r.t.s.products.scan(r.t.products, func(x *entity.Product) bool {
		return x.CompanyID == companyID && x.Code == code
	})
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error) {
	if err := r.t.lockRow(ctx, key("product", companyID, id)); err != nil {
		return nil, fmt.Errorf("lock product: %w", err)
	}
	return r.GetByID(ctx, companyID, id)
}

func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	defer r.t.rlock()()
	cur := r.t.s.products.read(r.t.products, key(p.CompanyID, p.ID))
	if cur == nil {
		return fmt.Errorf("update product: %w", domain.ErrNotFound)
	}
	next := shallow(p)
	next.TotalQuantity = cur.TotalQuantity
	next.CostPrice = cur.CostPrice
	next.CreatedAt = cur.CreatedAt
	r.t.products[key(p.CompanyID, p.ID)] = next
	return nil
}

func (r *ProductRepo) UpdateTotalQuantity(ctx context.Context, companyID, id string, total int64) error {
	return r.mutate(companyID, id, func(p *entity.Product) { p.TotalQuantity = total })
}

func (r *ProductRepo) UpdateCost(ctx context.Context, companyID, id string, cost decimal.Decimal) error {
	return r.mutate(companyID, id, func(p *entity.Product) { p.CostPrice = cost })
}

func (r *ProductRepo) mutate(companyID, id string, fn func(*entity.Product)) error {
	defer r.t.rlock()()
	cur := r.t.s.products.read(r.t.products, key(companyID, id))
	if cur == nil {
		return fmt.Errorf("update product: %w", domain.ErrNotFound)
	}
	fn(cur)
	cur.UpdatedAt = time.Now()
	r.t.products[key(companyID, id)] = cur
	return nil
}

func (r *ProductRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	defer r.t.rlock()()
	rows := r.t.s.products.scan(r.t.products, func(x *entity.Product) bool { return x.CompanyID == companyID })
	return page(rows, limit, offset), nil
}

// WarehouseRepo implementa repository.WarehouseRepository.
type WarehouseRepo struct{ t *tx }

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	defer r.t.rlock()()
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if r.t.s.warehouses.read(r.t.warehouses, key(w.CompanyID, w.ID)) != nil {
		return fmt.Errorf("create warehouse: %w", domain.ErrDuplicate)
	}
	r.t.warehouses[key(w.CompanyID, w.ID)] = shallow(w)
	return nil
}

func (r *WarehouseRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Warehouse, error) {
	defer r.t.rlock()()
	return r.t.s.warehouses.read(r.t.warehouses, key(companyID, id)), nil
}

func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	defer r.t.rlock()()
	if r.t.s.warehouses.read(r.t.warehouses, key(w.CompanyID, w.ID)) == nil {
		return fmt.Errorf("update warehouse: %w", domain.ErrNotFound)
	}
	r.t.warehouses[key(w.CompanyID, w.ID)] = shallow(w)
	return nil
}

func (r *WarehouseRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	defer r.t.rlock()()
	rows := r.t.s.warehouses.scan(r.t.warehouses, func(x *entity.Warehouse) bool { return x.CompanyID == companyID })
	return page(rows, limit, offset), nil
}

// LocationRepo implementa repository.LocationRepository.
type LocationRepo struct{ t *tx }

var _ repository.LocationRepository = (*LocationRepo)(nil)

func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	defer r.t.rlock()()
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	dup := r.t.s.locations.scan(r.t.locations, func(x *entity.Location) bool {
		return x.CompanyID == l.CompanyID && x.WarehouseID == l.WarehouseID && x.Code() == l.Code()
	})
	if len(dup) > 0 {
		return fmt.Errorf("create location %s: %w", l.Code(), domain.ErrDuplicate)
	}
	r.t.locations[key(l.CompanyID, l.ID)] = shallow(l)
	return nil
}

func (r *LocationRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Location, error) {
	defer r.t.rlock()()
	return r.t.s.locations.read(r.t.locations, key(companyID, id)), nil
}

func (r *LocationRepo) ListByWarehouse(ctx context.Context, companyID, warehouseID string) ([]*entity.Location, error) {
	defer r.t.rlock()()
	return r.t.s.locations.scan(r.t.locations, func(x *entity.Location) bool {
		return x.CompanyID == companyID && x.WarehouseID == warehouseID
	}), nil
}

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ t *tx }

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	defer r.t.rlock()()
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	dup := r.t.s.users.scan(r.t.users, func(x *entity.User) bool {
		return x.CompanyID == u.CompanyID && (x.ID == u.ID || x.Username == u.Username)
	})
	if len(dup) > 0 {
		return fmt.Errorf("create user %s: %w", u.Username, domain.ErrDuplicate)
	}
	r.t.users[key(u.CompanyID, u.ID)] = shallow(u)
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, companyID, id string) (*entity.User, error) {
	defer r.t.rlock()()
	return r.t.s.users.read(r.t.users, key(companyID, id)), nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, companyID, username string) (*entity.User, error) {
	defer r.t.rlock()()
	rows := r.t.s.users.scan(r.t.users, func(x *entity.User) bool {
		return x.CompanyID == companyID && x.Username == username
	})
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	defer r.t.rlock()()
	if r.t.s.users.read(r.t.users, key(u.CompanyID, u.ID)) == nil {
		return fmt.Errorf("update user: %w", domain.ErrNotFound)
	}
	r.t.users[key(u.CompanyID, u.ID)] = shallow(u)
	return nil
}

func (r *UserRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.User, error) {
	defer r.t.rlock()()
	rows := r.t.s.users.scan(r.t.users, func(x *entity.User) bool { return x.CompanyID == companyID })
	return page(rows, limit, offset), nil
}
