package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-ledger/internal/application/dto"
	"github.com/jhoicas/wms-ledger/internal/application/usecase"
	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/authz"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/infrastructure/memory"
)

func as(role string) entity.Session {
	return entity.Session{CompanyID: "c1", UserID: "u-" + role, Role: role}
}

func TestProductUseCase_CodigoNormalizadoYUnico(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewStore(), authz.NewGate(nil))
	ctx := context.Background()

	p, err := uc.Create(ctx, as(entity.RoleManager), dto.CreateProductRequest{Code: "  piñón-7 ", Name: "Piñón", SalePrice: decimal.NewFromInt(5)})
	require.NoError(t, err)
	assert.Equal(t, "PIÑÓN-7", p.Code)
	assert.Zero(t, p.TotalQuantity)

	_, err = uc.Create(ctx, as(entity.RoleManager), dto.CreateProductRequest{Code: "PIÑÓN-7", Name: "Otro"})
	assert.Equal(t, domain.KindDuplicate, domain.Kind(err))

	_, err = uc.Create(ctx, as(entity.RoleManager), dto.CreateProductRequest{Code: "X", Name: "Negativo", SalePrice: decimal.NewFromInt(-1)})
	assert.Equal(t, domain.KindInvalidInput, domain.Kind(err))

	_, err = uc.Create(ctx, as(entity.RoleOperator), dto.CreateProductRequest{Code: "Y", Name: "Y"})
	assert.Equal(t, domain.KindUnauthorized, domain.Kind(err))

	got, err := uc.GetByID(ctx, as(entity.RoleOperator), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestProductUseCase_UpdateNoTocaStock(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewStore(), authz.NewGate(nil))
	ctx := context.Background()
	p, err := uc.Create(ctx, as(entity.RoleAdmin), dto.CreateProductRequest{Code: "A1", Name: "Uno"})
	require.NoError(t, err)

	name := "Uno bis"
	minQty := int64(4)
	got, err := uc.Update(ctx, as(entity.RoleManager), p.ID, dto.UpdateProductRequest{Name: &name, MinQuantity: &minQty})
	require.NoError(t, err)
	assert.Equal(t, "Uno bis", got.Name)
	assert.Equal(t, int64(4), got.MinQuantity)
	assert.Equal(t, "A1", got.Code)

	_, err = uc.Update(ctx, as(entity.RoleManager), "nope", dto.UpdateProductRequest{Name: &name})
	assert.Equal(t, domain.KindNotFound, domain.Kind(err))
}

func TestWarehouseUseCase_Ubicaciones(t *testing.T) {
	uc := usecase.NewWarehouseUseCase(memory.NewStore(), authz.NewGate(nil))
	ctx := context.Background()

	w, err := uc.Create(ctx, as(entity.RoleManager), dto.CreateWarehouseRequest{Name: "Central", Capacity: 1000})
	require.NoError(t, err)
	assert.Equal(t, entity.WarehouseStatusActive, w.Status)

	loc, err := uc.AddLocation(ctx, as(entity.RoleManager), w.ID, dto.CreateLocationRequest{Aisle: "a", Shelf: "03", Level: "2"})
	require.NoError(t, err)
	assert.Equal(t, "A-03-2", loc.Code)

	_, err = uc.AddLocation(ctx, as(entity.RoleManager), w.ID, dto.CreateLocationRequest{Aisle: " A", Shelf: "03", Level: "2"})
	assert.Equal(t, domain.KindDuplicate, domain.Kind(err))

	_, err = uc.AddLocation(ctx, as(entity.RoleManager), "nope", dto.CreateLocationRequest{Aisle: "B"})
	assert.Equal(t, domain.KindNotFound, domain.Kind(err))

	_, err = uc.AddLocation(ctx, as(entity.RoleOperator), w.ID, dto.CreateLocationRequest{Aisle: "C"})
	assert.Equal(t, domain.KindUnauthorized, domain.Kind(err))

	locs, err := uc.ListLocations(ctx, as(entity.RoleOperator), w.ID)
	require.NoError(t, err)
	assert.Len(t, locs, 1)
}

func TestUserUseCase_JerarquiaDeRoles(t *testing.T) {
	uc := usecase.NewUserUseCase(memory.NewStore(), authz.NewGate(nil))
	ctx := context.Background()

	admin, err := uc.Create(ctx, as(entity.RoleCEO), dto.CreateUserRequest{Username: "ana", Name: "Ana", Role: entity.RoleAdmin})
	require.NoError(t, err)

	// Un Admin no crea otro Admin ni un CEO.
	_, err = uc.Create(ctx, as(entity.RoleAdmin), dto.CreateUserRequest{Username: "beto", Name: "Beto", Role: entity.RoleAdmin})
	assert.Equal(t, domain.KindUnauthorized, domain.Kind(err))
	_, err = uc.Create(ctx, as(entity.RoleAdmin), dto.CreateUserRequest{Username: "beto", Name: "Beto", Role: entity.RoleCEO})
	assert.Equal(t, domain.KindUnauthorized, domain.Kind(err))

	op, err := uc.Create(ctx, as(entity.RoleAdmin), dto.CreateUserRequest{Username: "caro", Name: "Caro", Role: entity.RoleOperator})
	require.NoError(t, err)

	_, err = uc.Create(ctx, as(entity.RoleAdmin), dto.CreateUserRequest{Username: "caro", Name: "Caro 2", Role: entity.RoleOperator})
	assert.Equal(t, domain.KindDuplicate, domain.Kind(err))

	// Admin asciende a Manager, pero no degrada a otro Admin.
	got, err := uc.ChangeRole(ctx, as(entity.RoleAdmin), op.ID, entity.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleManager, got.Role)
	_, err = uc.ChangeRole(ctx, as(entity.RoleAdmin), admin.ID, entity.RoleOperator)
	assert.Equal(t, domain.KindUnauthorized, domain.Kind(err))

	// Manager y Operator no administran usuarios.
	_, err = uc.Create(ctx, as(entity.RoleManager), dto.CreateUserRequest{Username: "dani", Name: "Dani", Role: entity.RoleOperator})
	assert.Equal(t, domain.KindUnauthorized, domain.Kind(err))
	_, err = uc.List(ctx, as(entity.RoleOperator), 10, 0)
	assert.Equal(t, domain.KindUnauthorized, domain.Kind(err))

	list, err := uc.List(ctx, as(entity.RoleCEO), 10, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
}
