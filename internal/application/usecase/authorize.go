package usecase

import (
	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/authz"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

func authorize(gate *authz.Gate, s entity.Session, op authz.Operation, ctx authz.Context) error {
	if !s.Valid() {
		return &domain.UnauthorizedError{Role: s.Role, Operation: string(op), Reason: "sesión incompleta"}
	}
	return gate.Check(s.Role, op, ctx)
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
