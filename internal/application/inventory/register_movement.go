package inventory

import (
	"context"

	"github.com/jhoicas/wms-ledger/internal/application/dto"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

// RecordMovementFromRequest adapta el request HTTP al caso de uso RecordMovement.
// Usar desde handlers HTTP o desde otros casos de uso que tengan la sesión y un dto.RegisterMovementRequest.
func (uc *RegisterMovementUseCase) RecordMovementFromRequest(ctx context.Context, s entity.Session, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	mov, err := uc.RecordMovement(ctx, s, MovementInput{
		Kind:                  entity.MovementKind(in.Type),
		ProductID:             in.ProductID,
		Quantity:              in.Quantity,
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		Reason:                in.Reason,
		DocumentRef:           in.DocumentRef,
		OrderID:               in.OrderID,
		UnitCost:              in.UnitCost,
	})
	if err != nil {
		return nil, err
	}
	out := ToMovementResponse(mov)
	return &out, nil
}

// RecordCountFromRequest adapta el request de conteo físico. Sin diferencia devuelve (nil, nil).
func (uc *RegisterMovementUseCase) RecordCountFromRequest(ctx context.Context, s entity.Session, in dto.RecordCountRequest) (*dto.MovementResponse, error) {
	mov, err := uc.RecordCount(ctx, s, CountInput{
		ProductID:   in.ProductID,
		LocationID:  in.LocationID,
		Counted:     in.Counted,
		Reason:      in.Reason,
		DocumentRef: in.DocumentRef,
	})
	if err != nil || mov == nil {
		return nil, err
	}
	out := ToMovementResponse(mov)
	return &out, nil
}

// ToMovementResponse convierte una entrada del ledger a su DTO.
func ToMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:                    m.ID,
		Seq:                   m.Seq,
		ProductID:             m.ProductID,
		Type:                  string(m.Kind),
		Quantity:              m.Quantity,
		SourceLocationID:      m.SourceLocationID,
		DestinationLocationID: m.DestinationLocationID,
		Reason:                m.Reason,
		DocumentRef:           m.DocumentRef,
		OrderID:               m.OrderID,
		UserID:                m.UserID,
		CreatedAt:             m.CreatedAt,
	}
}
