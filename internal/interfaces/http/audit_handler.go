package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/wms-ledger/internal/application/audit"
	"github.com/jhoicas/wms-ledger/internal/application/dto"
)

// AuditHandler expone la conciliación ledger vs stock.
type AuditHandler struct {
	auditor *audit.Auditor
}

func NewAuditHandler(a *audit.Auditor) *AuditHandler {
	return &AuditHandler{auditor: a}
}

// Reconcile godoc
// @Summary      Conciliar un producto
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/audit/products/{id} [get]
func (h *AuditHandler) Reconcile(c *fiber.Ctx) error {
	rep, err := h.auditor.Reconcile(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReconciliationResponse(rep))
}

// ReconcileAll godoc
// @Summary      Conciliar todos los productos de la empresa
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "total, with_drift, reports"
// @Router       /api/audit/reconcile [post]
func (h *AuditHandler) ReconcileAll(c *fiber.Ctx) error {
	reps, err := h.auditor.ReconcileAll(c.Context(), SessionFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ReconciliationResponse, 0, len(reps))
	drift := 0
	for _, rep := range reps {
		if rep.HasDrift() {
			drift++
		}
		out = append(out, toReconciliationResponse(rep))
	}
	return c.JSON(fiber.Map{"total": len(out), "with_drift": drift, "reports": out})
}

func toReconciliationResponse(rep *audit.Report) dto.ReconciliationResponse {
	out := dto.ReconciliationResponse{
		ProductID:   rep.ProductID,
		Expected:    rep.Expected,
		Actual:      rep.Actual,
		LocationSum: rep.LocationSum,
		Drift:       rep.Drift,
	}
	for _, l := range rep.Locations {
		out.Locations = append(out.Locations, dto.LocationDriftResponse{LocationID: l.LocationID, Expected: l.Expected, Actual: l.Actual})
	}
	return out
}
