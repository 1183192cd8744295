package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/wms-ledger/internal/application/dto"
	"github.com/jhoicas/wms-ledger/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP de movimientos y stock (protegido).
type InventoryHandler struct {
	uc *inventory.RegisterMovementUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "type, product_id, quantity, source/destination según el tipo"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.RecordMovementFromRequest(c.Context(), SessionFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RecordCount godoc
// @Summary      Registrar conteo físico
// @Description  Asienta la diferencia entre lo contado y lo registrado como ajuste. 200 sin movimiento si no hay diferencia.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordCountRequest  true  "product_id, location_id, counted"
// @Success      201   {object}  dto.MovementResponse
// @Success      200   {object}  map[string]string
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/inventory/counts [post]
func (h *InventoryHandler) RecordCount(c *fiber.Ctx) error {
	var in dto.RecordCountRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.RecordCountFromRequest(c.Context(), SessionFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return c.JSON(fiber.Map{"message": "sin diferencia"})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ProductStock godoc
// @Summary      Stock de un producto por ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/stock [get]
func (h *InventoryHandler) ProductStock(c *fiber.Ctx) error {
	product, rows, err := h.uc.ListProductStock(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ProductStockResponse{
		ProductID:     product.ID,
		TotalQuantity: product.TotalQuantity,
		Locations:     make([]dto.LocationStockResponse, 0, len(rows)),
	}
	for _, r := range rows {
		out.Locations = append(out.Locations, dto.LocationStockResponse{
			ProductID:  r.ProductID,
			LocationID: r.LocationID,
			Quantity:   r.Quantity,
			UpdatedAt:  r.UpdatedAt,
		})
	}
	return c.JSON(out)
}

// ProductMovements godoc
// @Summary      Ledger de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id         path   string  true   "ID del producto"
// @Param        after_seq  query  int     false  "Continuar después de esta secuencia"
// @Param        limit      query  int     false  "Máximo 500"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/products/{id}/movements [get]
func (h *InventoryHandler) ProductMovements(c *fiber.Ctx) error {
	afterSeq, err := strconv.ParseInt(c.Query("after_seq", "0"), 10, 64)
	if err != nil || afterSeq < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "after_seq inválido"})
	}
	movs, err := h.uc.ListProductMovements(c.Context(), SessionFrom(c), c.Params("id"), afterSeq, c.QueryInt("limit", 100))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.MovementListResponse{Items: make([]dto.MovementResponse, 0, len(movs)), NextAfterSeq: afterSeq}
	for _, m := range movs {
		out.Items = append(out.Items, inventory.ToMovementResponse(m))
		out.NextAfterSeq = m.Seq
	}
	return c.JSON(out)
}
