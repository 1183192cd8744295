package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-ledger/internal/application/audit"
	"github.com/jhoicas/wms-ledger/internal/application/dto"
	"github.com/jhoicas/wms-ledger/internal/application/fulfillment"
	"github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/application/usecase"
	"github.com/jhoicas/wms-ledger/internal/domain/authz"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
	"github.com/jhoicas/wms-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/wms-ledger/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/wms-ledger/internal/interfaces/http"
)

// newAPI arma la API completa sobre el store en memoria, con una bodega, una ubicación y un producto.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Run(context.Background(), func(ctx context.Context, r repository.Repos) error {
		if err := r.Warehouses.Create(ctx, &entity.Warehouse{ID: "w1", CompanyID: testCompanyID, Name: "Central", Status: entity.WarehouseStatusActive}); err != nil {
			return err
		}
		if err := r.Locations.Create(ctx, &entity.Location{ID: "loc-1", CompanyID: testCompanyID, WarehouseID: "w1", Aisle: "A"}); err != nil {
			return err
		}
		return r.Products.Create(ctx, &entity.Product{ID: "p1", CompanyID: testCompanyID, Code: "P1", Name: "Tornillo"})
	}))

	gate := authz.NewGate(nil)
	prom := metrics.New(false)
	engine := inventory.NewRegisterMovementUseCase(store, gate, inventory.WithMetrics(prom))
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		WarehouseUC: usecase.NewWarehouseUseCase(store, gate),
		ProductUC:   usecase.NewProductUseCase(store, gate),
		UserUC:      usecase.NewUserUseCase(store, gate),
		Engine:      engine,
		Coordinator: fulfillment.NewCoordinator(store, engine, gate, fulfillment.WithMetrics(prom)),
		Auditor:     audit.NewAuditor(store, gate, nil, prom, nil),
		JWTSecret:   testJWTSecret,
		JWTIssuer:   testIssuer,
		Metrics:     prom.Handler(),
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, out
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e.Code
}

func TestRouter_EntradaSalidaYStock(t *testing.T) {
	app := newAPI(t)

	resp, _ := call(t, app, http.MethodPost, "/api/inventory/movements", "Operator", dto.RegisterMovementRequest{
		Type: "inbound", ProductID: "p1", Quantity: 10, DestinationLocationID: "loc-1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := call(t, app, http.MethodPost, "/api/inventory/movements", "Operator", dto.RegisterMovementRequest{
		Type: "outbound", ProductID: "p1", Quantity: 15, SourceLocationID: "loc-1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, body))

	resp, body = call(t, app, http.MethodGet, "/api/inventory/products/p1/stock", "Operator", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stock dto.ProductStockResponse
	require.NoError(t, json.Unmarshal(body, &stock))
	assert.Equal(t, int64(10), stock.TotalQuantity)
	require.Len(t, stock.Locations, 1)
}

func TestRouter_AjusteDeOperadorProhibido(t *testing.T) {
	app := newAPI(t)
	resp, body := call(t, app, http.MethodPost, "/api/inventory/movements", "Operator", dto.RegisterMovementRequest{
		Type: "adjustment", ProductID: "p1", Quantity: 5, DestinationLocationID: "loc-1",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))
}

func TestRouter_ValidacionYCuerpoInvalido(t *testing.T) {
	app := newAPI(t)
	resp, body := call(t, app, http.MethodPost, "/api/inventory/movements", "Manager", dto.RegisterMovementRequest{
		Type: "teleport", ProductID: "p1", Quantity: 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString("{no es json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "Manager"))
	r, err := app.Test(req, -1)
	require.NoError(t, err)
	defer r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestRouter_SinTokenRetorna401(t *testing.T) {
	app := newAPI(t)
	resp, _ := call(t, app, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_CicloDePedido(t *testing.T) {
	app := newAPI(t)
	resp, _ := call(t, app, http.MethodPost, "/api/inventory/movements", "Manager", dto.RegisterMovementRequest{
		Type: "inbound", ProductID: "p1", Quantity: 5, DestinationLocationID: "loc-1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := call(t, app, http.MethodPost, "/api/orders", "Manager", dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: "p1", Quantity: 3}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &order))
	assert.Equal(t, "draft", order.Status)

	for _, step := range []struct{ action, role, status string }{
		{"confirm", "Manager", "confirmed"},
		{"reserve", "Manager", "reserved"},
		{"ship", "Operator", "shipped"},
		{"deliver", "Operator", "delivered"},
	} {
		resp, body = call(t, app, http.MethodPost, "/api/orders/"+order.ID+"/"+step.action, step.role, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, step.action+": "+string(body))
		require.NoError(t, json.Unmarshal(body, &order))
		assert.Equal(t, step.status, order.Status)
	}

	resp, body = call(t, app, http.MethodPost, "/api/orders/"+order.ID+"/cancel", "Manager", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, body))

	resp, body = call(t, app, http.MethodGet, "/api/orders/"+order.ID+"/movements", "Manager", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var movs []dto.MovementResponse
	require.NoError(t, json.Unmarshal(body, &movs))
	assert.Len(t, movs, 1)

	resp, body = call(t, app, http.MethodGet, "/api/audit/products/p1", "Manager", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec dto.ReconciliationResponse
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Equal(t, int64(2), rec.Expected)
}

func TestRouter_ReservaSinStockRetornaConflicto(t *testing.T) {
	app := newAPI(t)
	resp, body := call(t, app, http.MethodPost, "/api/orders", "Manager", dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: "p1", Quantity: 3}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &order))

	resp, _ = call(t, app, http.MethodPost, "/api/orders/"+order.ID+"/confirm", "Manager", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = call(t, app, http.MethodPost, "/api/orders/"+order.ID+"/reserve", "Manager", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "PARTIAL_FULFILLMENT_DENIED", errorCode(t, body))
}

func TestRouter_Metricas(t *testing.T) {
	app := newAPI(t)
	call(t, app, http.MethodPost, "/api/inventory/movements", "Manager", dto.RegisterMovementRequest{
		Type: "inbound", ProductID: "p1", Quantity: 1, DestinationLocationID: "loc-1",
	})
	resp, body := call(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "wms_ledger_inventory_movements_total")
}
