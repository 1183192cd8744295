package fulfillment

import (
	"github.com/jhoicas/wms-ledger/internal/application/dto"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

// OrderInputFromRequest adapta el body HTTP de creación de pedido.
func OrderInputFromRequest(in dto.CreateOrderRequest) OrderInput {
	out := OrderInput{
		Number:           in.Number,
		Type:             in.Type,
		CustomerRef:      in.CustomerRef,
		Notes:            in.Notes,
		ExpectedDelivery: in.ExpectedDelivery,
		Items:            make([]ItemInput, 0, len(in.Items)),
	}
	for _, it := range in.Items {
		out.Items = append(out.Items, ItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
		})
	}
	return out
}

// ToOrderResponse convierte el pedido a su DTO.
func ToOrderResponse(o *entity.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
			Subtotal:  it.Subtotal,
		})
	}
	return dto.OrderResponse{
		ID:               o.ID,
		CompanyID:        o.CompanyID,
		Number:           o.Number,
		Type:             o.Type,
		CustomerRef:      o.CustomerRef,
		Status:           string(o.Status),
		Items:            items,
		Total:            o.Total,
		Notes:            o.Notes,
		ExpectedDelivery: o.ExpectedDelivery,
		DeliveredAt:      o.DeliveredAt,
		Version:          o.Version,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func ToTrackingResponse(e *entity.DeliveryTracking) dto.TrackingResponse {
	return dto.TrackingResponse{
		ID:         e.ID,
		Status:     e.Status,
		Location:   e.Location,
		Notes:      e.Notes,
		UserID:     e.UserID,
		RecordedAt: e.RecordedAt,
	}
}

func ToReservationResponse(r *entity.Reservation) dto.ReservationResponse {
	return dto.ReservationResponse{
		ID:          r.ID,
		OrderItemID: r.OrderItemID,
		ProductID:   r.ProductID,
		LocationID:  r.LocationID,
		Quantity:    r.Quantity,
		Status:      r.Status,
	}
}
