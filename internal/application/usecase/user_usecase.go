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

// UserUseCase administra usuarios respetando la jerarquía de roles:
// el CEO asigna cualquier rol; Admin solo Manager y Operator.
type UserUseCase struct {
	tx   repository.TxRunner
	gate *authz.Gate
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(tx repository.TxRunner, gate *authz.Gate) *UserUseCase {
	return &UserUseCase{tx: tx, gate: gate}
}

// Create da de alta un usuario en la empresa de la sesión.
func (uc *UserUseCase) Create(ctx context.Context, s entity.Session, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := authorize(uc.gate, s, authz.OpManageUsers, authz.Context{TargetRole: in.Role}); err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:         uuid.New().String(),
		CompanyID:  s.CompanyID,
		Username:   in.Username,
		Name:       in.Name,
		Email:      in.Email,
		Role:       in.Role,
		Shift:      in.Shift,
		Department: in.Department,
		Supervisor: in.Supervisor,
		Status:     entity.UserStatusActive,
		CreatedBy:  s.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		existing, err := r.Users.GetByUsername(ctx, s.CompanyID, in.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("usuario %s: %w", in.Username, domain.ErrDuplicate)
		}
		return r.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return entityToUserResponse(user), nil
}

// ChangeRole cambia el rol de un usuario. Se autoriza contra el mayor entre el rol actual y el nuevo,
// así un Admin no puede degradar a otro Admin ni ascender a nadie a Admin.
func (uc *UserUseCase) ChangeRole(ctx context.Context, s entity.Session, userID, role string) (*dto.UserResponse, error) {
	if err := authorize(uc.gate, s, authz.OpManageUsers, authz.Context{TargetRole: role}); err != nil {
		return nil, err
	}
	var user *entity.User
	err := uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		user, err = r.Users.GetByID(ctx, s.CompanyID, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("usuario %s: %w", userID, domain.ErrNotFound)
		}
		if err := uc.gate.Check(s.Role, authz.OpManageUsers, authz.Context{TargetRole: user.Role}); err != nil {
			return err
		}
		user.Role = role
		user.UpdatedAt = time.Now()
		return r.Users.Update(ctx, user)
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return entityToUserResponse(user), nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, s entity.Session, id string) (*dto.UserResponse, error) {
	if err := authorize(uc.gate, s, authz.OpManageUsers, authz.Context{}); err != nil {
		return nil, err
	}
	var user *entity.User
	err := uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		user, err = r.Users.GetByID(ctx, s.CompanyID, id)
		return err
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	if user == nil {
		return nil, fmt.Errorf("usuario %s: %w", id, domain.ErrNotFound)
	}
	return entityToUserResponse(user), nil
}

// List lista usuarios de la empresa.
func (uc *UserUseCase) List(ctx context.Context, s entity.Session, limit, offset int) (*dto.UserListResponse, error) {
	if err := authorize(uc.gate, s, authz.OpManageUsers, authz.Context{}); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)
	var list []*entity.User
	err := uc.tx.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		list, err = r.Users.ListByCompany(ctx, s.CompanyID, limit, offset)
		return err
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *entityToUserResponse(u))
	}
	return &dto.UserListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:         u.ID,
		CompanyID:  u.CompanyID,
		Username:   u.Username,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Shift:      u.Shift,
		Department: u.Department,
		Supervisor: u.Supervisor,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
