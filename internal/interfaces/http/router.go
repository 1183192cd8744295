package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/wms-ledger/internal/application/audit"
	"github.com/jhoicas/wms-ledger/internal/application/fulfillment"
	"github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC *usecase.WarehouseUseCase
	ProductUC   *usecase.ProductUseCase
	UserUC      *usecase.UserUseCase
	Engine      *inventory.RegisterMovementUseCase
	Coordinator *fulfillment.Coordinator
	Auditor     *audit.Auditor
	JWTSecret   string
	JWTIssuer   string
	// Metrics expone el registro de Prometheus; nil omite /metrics.
	Metrics http.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", warehouseHandler.Update)
	warehouses.Post("/:id/locations", warehouseHandler.AddLocation)
	warehouses.Get("/:id/locations", warehouseHandler.ListLocations)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)

	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id/role", userHandler.ChangeRole)

	// Ledger de inventario
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Engine)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Post("/counts", inventoryHandler.RecordCount)
	invGroup.Get("/products/:id/stock", inventoryHandler.ProductStock)
	invGroup.Get("/products/:id/movements", inventoryHandler.ProductMovements)

	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.Coordinator, deps.Engine)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	for _, action := range []string{"confirm", "reserve", "ship", "cancel"} {
		orders.Post("/:id/"+action, orderHandler.Transition(action))
	}
	orders.Post("/:id/deliver", orderHandler.Deliver)
	orders.Post("/:id/tracking", orderHandler.AddTracking)
	orders.Get("/:id/tracking", orderHandler.Tracking)
	orders.Get("/:id/reservations", orderHandler.Reservations)
	orders.Get("/:id/movements", orderHandler.Movements)

	auditGroup := protected.Group("/audit")
	auditHandler := NewAuditHandler(deps.Auditor)
	auditGroup.Get("/products/:id", auditHandler.Reconcile)
	auditGroup.Post("/reconcile", auditHandler.ReconcileAll)
}
