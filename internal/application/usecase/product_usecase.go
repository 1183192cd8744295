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

// ProductUseCase casos de uso del catálogo. El stock nace en cero y solo lo mueve el ledger.
type ProductUseCase struct {
	tx   repository.TxRunner
	gate *authz.Gate
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(tx repository.TxRunner, gate *authz.Gate) *ProductUseCase {
	return &ProductUseCase{tx: tx, gate: gate}
}

// Create crea un nuevo producto. El código se normaliza y es único por empresa.
func (uc *ProductUseCase) Create(ctx context.Context, s entity.Session, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := authorize(uc.gate, s, authz.OpManageProducts, authz.Context{}); err != nil {
		return nil, err
	}
	code := entity.NormalizeCode(in.Code)
	if code == "" {
		return nil, fmt.Errorf("%w: código requerido", domain.ErrInvalidInput)
	}
	if in.CostPrice.IsNegative() || in.SalePrice.IsNegative() || in.MinQuantity < 0 {
		return nil, fmt.Errorf("%w: precios y mínimo no pueden ser negativos", domain.ErrInvalidInput)
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		CompanyID:   s.CompanyID,
		Code:        code,
		SKU:         in.SKU,
		Barcode:     in.Barcode,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Brand:       in.Brand,
		MinQuantity: in.MinQuantity,
		CostPrice:   in.CostPrice,
		SalePrice:   in.SalePrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		existing, err := r.Products.GetByCode(ctx, s.CompanyID, code)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("producto %s: %w", code, domain.ErrDuplicate)
		}
		return r.Products.Create(ctx, product)
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, s entity.Session, id string) (*dto.ProductResponse, error) {
	if err := authorize(uc.gate, s, authz.OpViewStock, authz.Context{}); err != nil {
		return nil, err
	}
	var product *entity.Product
	err := uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		product, err = r.Products.GetByID(ctx, s.CompanyID, id)
		return err
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	return toProductResponse(product), nil
}

// Update actualiza datos de catálogo. No permite modificar costo ni cantidades (se manejan vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, s entity.Session, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := authorize(uc.gate, s, authz.OpManageProducts, authz.Context{}); err != nil {
		return nil, err
	}
	var product *entity.Product
	err := uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		product, err = r.Products.GetByID(ctx, s.CompanyID, id)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
		}
		if in.Name != nil {
			product.Name = *in.Name
		}
		if in.Description != nil {
			product.Description = *in.Description
		}
		if in.Category != nil {
			product.Category = *in.Category
		}
		if in.Brand != nil {
			product.Brand = *in.Brand
		}
		if in.Barcode != nil {
			product.Barcode = *in.Barcode
		}
		if in.MinQuantity != nil {
			if *in.MinQuantity < 0 {
				return fmt.Errorf("%w: mínimo negativo", domain.ErrInvalidInput)
			}
			product.MinQuantity = *in.MinQuantity
		}
		if in.SalePrice != nil {
			if in.SalePrice.IsNegative() {
				return fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
			}
			product.SalePrice = *in.SalePrice
		}
		product.UpdatedAt = time.Now()
		return r.Products.Update(ctx, product)
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return toProductResponse(product), nil
}

// List lista productos por empresa con paginación.
func (uc *ProductUseCase) List(ctx context.Context, s entity.Session, limit, offset int) (*dto.ProductListResponse, error) {
	if err := authorize(uc.gate, s, authz.OpViewStock, authz.Context{}); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	var list []*entity.Product
	err := uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		list, err = r.Products.ListByCompany(ctx, s.CompanyID, limit, offset)
		return err
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		CompanyID:     p.CompanyID,
		Code:          p.Code,
		SKU:           p.SKU,
		Barcode:       p.Barcode,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Brand:         p.Brand,
		MinQuantity:   p.MinQuantity,
		TotalQuantity: p.TotalQuantity,
		CostPrice:     p.CostPrice.Round(4),
		SalePrice:     p.SalePrice.Round(4),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
