package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/wms-ledger/internal/application/dto"
	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/authz"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

// WarehouseUseCase casos de uso para bodegas y sus ubicaciones.
type WarehouseUseCase struct {
	tx   repository.TxRunner
	gate *authz.Gate
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(tx repository.TxRunner, gate *authz.Gate) *WarehouseUseCase {
	return &WarehouseUseCase{tx: tx, gate: gate}
}

// Create crea una nueva bodega activa.
func (uc *WarehouseUseCase) Create(ctx context.Context, s entity.Session, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if err := authorize(uc.gate, s, authz.OpManageWarehouses, authz.Context{}); err != nil {
		return nil, err
	}
	now := time.Now()
	warehouse := &entity.Warehouse{
		ID:         uuid.New().String(),
		CompanyID:  s.CompanyID,
		Name:       in.Name,
		Type:       in.Type,
		Address:    in.Address,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		ManagerID:  in.ManagerID,
		Capacity:   in.Capacity,
		Status:     entity.WarehouseStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		return r.Warehouses.Create(ctx, warehouse)
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, s entity.Session, id string) (*dto.WarehouseResponse, error) {
	if err := authorize(uc.gate, s, authz.OpViewStock, authz.Context{}); err != nil {
		return nil, err
	}
	var warehouse *entity.Warehouse
	err := uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		warehouse, err = r.Warehouses.GetByID(ctx, s.CompanyID, id)
		return err
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	if warehouse == nil {
		return nil, fmt.Errorf("bodega %s: %w", id, domain.ErrNotFound)
	}
	return toWarehouseResponse(warehouse), nil
}

// Update actualiza una bodega. Una bodega inactiva deja de aceptar entradas y traslados.
func (uc *WarehouseUseCase) Update(ctx context.Context, s entity.Session, id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if err := authorize(uc.gate, s, authz.OpManageWarehouses, authz.Context{}); err != nil {
		return nil, err
	}
	var warehouse *entity.Warehouse
	err := uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		warehouse, err = r.Warehouses.GetByID(ctx, s.CompanyID, id)
		if err != nil {
			return err
		}
		if warehouse == nil {
			return fmt.Errorf("bodega %s: %w", id, domain.ErrNotFound)
		}
		if in.Name != nil {
			warehouse.Name = *in.Name
		}
		if in.Address != nil {
			warehouse.Address = *in.Address
		}
		if in.Capacity != nil {
			warehouse.Capacity = *in.Capacity
		}
		if in.Status != nil {
			warehouse.Status = *in.Status
		}
		warehouse.UpdatedAt = time.Now()
		return r.Warehouses.Update(ctx, warehouse)
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas por empresa con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, s entity.Session, limit, offset int) (*dto.WarehouseListResponse, error) {
	if err := authorize(uc.gate, s, authz.OpViewStock, authz.Context{}); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	var list []*entity.Warehouse
	err := uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		list, err = r.Warehouses.ListByCompany(ctx, s.CompanyID, limit, offset)
		return err
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// AddLocation crea una ubicación en la bodega. La dirección se normaliza (mayúsculas, NFC).
func (uc *WarehouseUseCase) AddLocation(ctx context.Context, s entity.Session, warehouseID string, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if err := authorize(uc.gate, s, authz.OpManageWarehouses, authz.Context{}); err != nil {
		return nil, err
	}
	loc := &entity.Location{
		ID:          uuid.New().String(),
		CompanyID:   s.CompanyID,
		WarehouseID: warehouseID,
		Aisle:       entity.NormalizeCode(in.Aisle),
		Shelf:       entity.NormalizeCode(in.Shelf),
		Level:       entity.NormalizeCode(in.Level),
		Position:    entity.NormalizeCode(in.Position),
		CreatedAt:   time.Now(),
	}
	if loc.Aisle == "" {
		return nil, fmt.Errorf("%w: el pasillo es obligatorio", domain.ErrInvalidInput)
	}
	err := uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		w, err := r.Warehouses.GetByID(ctx, s.CompanyID, warehouseID)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("bodega %s: %w", warehouseID, domain.ErrNotFound)
		}
		return r.Locations.Create(ctx, loc)
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return toLocationResponse(loc), nil
}

// ListLocations lista las ubicaciones de una bodega.
func (uc *WarehouseUseCase) ListLocations(ctx context.Context, s entity.Session, warehouseID string) ([]dto.LocationResponse, error) {
	if err := authorize(uc.gate, s, authz.OpViewStock, authz.Context{}); err != nil {
		return nil, err
	}
	var list []*entity.Location
	err := uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		list, err = r.Locations.ListByWarehouse(ctx, s.CompanyID, warehouseID)
		return err
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	out := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, *toLocationResponse(l))
	}
	return out, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:         w.ID,
		CompanyID:  w.CompanyID,
		Name:       w.Name,
		Type:       w.Type,
		Address:    w.Address,
		City:       w.City,
		State:      w.State,
		PostalCode: w.PostalCode,
		ManagerID:  w.ManagerID,
		Capacity:   w.Capacity,
		Status:     w.Status,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:          l.ID,
		WarehouseID: l.WarehouseID,
		Code:        l.Code(),
		Aisle:       l.Aisle,
		Shelf:       l.Shelf,
		Level:       l.Level,
		Position:    l.Position,
		CreatedAt:   l.CreatedAt,
	}
}
