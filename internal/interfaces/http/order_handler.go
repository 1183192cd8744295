package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/wms-ledger/internal/application/dto"
	"github.com/jhoicas/wms-ledger/internal/application/fulfillment"
	"github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
)

// OrderHandler maneja el ciclo de vida de pedidos (protegido).
type OrderHandler struct {
	coord  *fulfillment.Coordinator
	engine *inventory.RegisterMovementUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(coord *fulfillment.Coordinator, engine *inventory.RegisterMovementUseCase) *OrderHandler {
	return &OrderHandler{coord: coord, engine: engine}
}

// Create godoc
// @Summary      Crear pedido (draft)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Cabecera e ítems"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	o, err := h.coord.CreateOrder(c.Context(), SessionFrom(c), fulfillment.OrderInputFromRequest(in))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fulfillment.ToOrderResponse(o))
}

// GetByID godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	o, err := h.coord.GetOrder(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fulfillment.ToOrderResponse(o))
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	orders, err := h.coord.ListOrders(c.Context(), SessionFrom(c), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.OrderListResponse{Items: make([]dto.OrderResponse, 0, len(orders)), Page: dto.PageResponse{Limit: limit, Offset: offset}}
	for _, o := range orders {
		out.Items = append(out.Items, fulfillment.ToOrderResponse(o))
	}
	return c.JSON(out)
}

// Transition godoc
// @Summary      Cambiar estado del pedido
// @Description  action: confirm | reserve | ship | cancel
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID del pedido"
// @Param        action  path  string  true  "confirm, reserve, ship o cancel"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/{action} [post]
func (h *OrderHandler) Transition(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			o   *entity.Order
			err error
		)
		s, id := SessionFrom(c), c.Params("id")
		switch action {
		case "confirm":
			o, err = h.coord.Confirm(c.Context(), s, id)
		case "reserve":
			o, err = h.coord.Reserve(c.Context(), s, id)
		case "ship":
			o, err = h.coord.Ship(c.Context(), s, id)
		case "cancel":
			o, err = h.coord.Cancel(c.Context(), s, id)
		default:
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "acción desconocida"})
		}
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fulfillment.ToOrderResponse(o))
	}
}

// Deliver godoc
// @Summary      Registrar entrega
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true   "ID del pedido"
// @Param        body  body  dto.DeliverRequest  false  "Ubicación, notas y hora de entrega"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/deliver [post]
func (h *OrderHandler) Deliver(c *fiber.Ctx) error {
	var in dto.DeliverRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &in); err != nil {
			return writeError(c, err)
		}
	}
	o, err := h.coord.Deliver(c.Context(), SessionFrom(c), c.Params("id"), fulfillment.TrackingInput{
		Location:   in.Location,
		Notes:      in.Notes,
		RecordedAt: in.RecordedAt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fulfillment.ToOrderResponse(o))
}

// AddTracking godoc
// @Summary      Agregar entrada de rastreo
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del pedido"
// @Param        body  body  dto.AddTrackingRequest  true  "Estado, ubicación, notas"
// @Success      201   {object}  dto.TrackingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/tracking [post]
func (h *OrderHandler) AddTracking(c *fiber.Ctx) error {
	var in dto.AddTrackingRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	e, err := h.coord.AddTracking(c.Context(), SessionFrom(c), c.Params("id"), fulfillment.TrackingInput{
		Status:     in.Status,
		Location:   in.Location,
		Notes:      in.Notes,
		RecordedAt: in.RecordedAt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fulfillment.ToTrackingResponse(e))
}

// Tracking godoc
// @Summary      Historial de entrega
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {array}  dto.TrackingResponse
// @Router       /api/orders/{id}/tracking [get]
func (h *OrderHandler) Tracking(c *fiber.Ctx) error {
	rows, err := h.coord.ListTracking(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.TrackingResponse, 0, len(rows))
	for _, e := range rows {
		out = append(out, fulfillment.ToTrackingResponse(e))
	}
	return c.JSON(out)
}

// Reservations godoc
// @Summary      Reservas activas del pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {array}  dto.ReservationResponse
// @Router       /api/orders/{id}/reservations [get]
func (h *OrderHandler) Reservations(c *fiber.Ctx) error {
	rows, err := h.coord.ListReservations(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ReservationResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, fulfillment.ToReservationResponse(r))
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Movimientos originados por el pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/orders/{id}/movements [get]
func (h *OrderHandler) Movements(c *fiber.Ctx) error {
	movs, err := h.engine.ListOrderMovements(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, inventory.ToMovementResponse(m))
	}
	return c.JSON(out)
}
