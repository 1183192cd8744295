package inventory

import (
	"context"

	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/authz"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

const maxMovementPage = 500

// GetStock devuelve la cantidad de un producto en una ubicación (0 si no hay fila).
func (uc *RegisterMovementUseCase) GetStock(ctx context.Context, s entity.Session, productID, locationID string) (*entity.LocationStock, error) {
	if err := uc.authorize(s, authz.OpViewStock); err != nil {
		return nil, err
	}
	var out *entity.LocationStock
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		st, err := r.Stock.Get(ctx, s.CompanyID, productID, locationID)
		out = st
		return err
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return out, nil
}

// ListProductStock devuelve el producto y su desglose por ubicación.
func (uc *RegisterMovementUseCase) ListProductStock(ctx context.Context, s entity.Session, productID string) (*entity.Product, []*entity.LocationStock, error) {
	if err := uc.authorize(s, authz.OpViewStock); err != nil {
		return nil, nil, err
	}
	var (
		product *entity.Product
		rows    []*entity.LocationStock
	)
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		product, err = r.Products.GetByID(ctx, s.CompanyID, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		rows, err = r.Stock.ListByProduct(ctx, s.CompanyID, productID)
		return err
	})
	if err != nil {
		return nil, nil, domain.StorageFault(err)
	}
	return product, rows, nil
}

// ListProductMovements lee el ledger del producto a partir de afterSeq (exclusivo), del más antiguo al más reciente.
func (uc *RegisterMovementUseCase) ListProductMovements(ctx context.Context, s entity.Session, productID string, afterSeq int64, limit int) ([]*entity.StockMovement, error) {
	if err := uc.authorize(s, authz.OpViewReport); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxMovementPage {
		limit = maxMovementPage
	}
	var out []*entity.StockMovement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		out, err = r.Movements.ListByProduct(ctx, s.CompanyID, productID, afterSeq, limit)
		return err
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return out, nil
}

// ListOrderMovements devuelve los movimientos originados por un pedido (despachos y compensaciones).
func (uc *RegisterMovementUseCase) ListOrderMovements(ctx context.Context, s entity.Session, orderID string) ([]*entity.StockMovement, error) {
	if err := uc.authorize(s, authz.OpViewReport); err != nil {
		return nil, err
	}
	var out []*entity.StockMovement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		out, err = r.Movements.ListByOrder(ctx, s.CompanyID, orderID)
		return err
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return out, nil
}
