package fulfillment_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-ledger/internal/application/fulfillment"
	"github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/application/ports"
	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/authz"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
	"github.com/jhoicas/wms-ledger/internal/infrastructure/memory"
)

const company = "c1"

var (
	manager  = entity.Session{CompanyID: company, UserID: "m1", Role: entity.RoleManager}
	operator = entity.Session{CompanyID: company, UserID: "o1", Role: entity.RoleOperator}
	t0       = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
)

type recorder struct {
	mu     sync.Mutex
	events []ports.Event
}

func (r *recorder) Publish(_ context.Context, events ...ports.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

type fixture struct {
	store  *memory.Store
	engine *inventory.RegisterMovementUseCase
	coord  *fulfillment.Coordinator
	events *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		if err := r.Warehouses.Create(ctx, &entity.Warehouse{ID: "w1", CompanyID: company, Name: "Central", Status: entity.WarehouseStatusActive}); err != nil {
			return err
		}
		for _, aisle := range []string{"A", "B"} {
			if err := r.Locations.Create(ctx, &entity.Location{ID: "loc-" + aisle, CompanyID: company, WarehouseID: "w1", Aisle: aisle}); err != nil {
				return err
			}
		}
		for _, p := range []*entity.Product{
			{ID: "p1", CompanyID: company, Code: "P1", SalePrice: decimal.NewFromInt(10)},
			{ID: "p2", CompanyID: company, Code: "P2", SalePrice: decimal.NewFromInt(25)},
		} {
			if err := r.Products.Create(ctx, p); err != nil {
				return err
			}
		}
		return nil
	}))

	gate := authz.NewGate(nil)
	clock := func() time.Time { return t0 }
	engine := inventory.NewRegisterMovementUseCase(store, gate, inventory.WithClock(clock))
	events := &recorder{}
	coord := fulfillment.NewCoordinator(store, engine, gate, fulfillment.WithClock(clock), fulfillment.WithPublisher(events))
	return &fixture{store: store, engine: engine, coord: coord, events: events}
}

func (f *fixture) stock(t *testing.T, productID, loc string, qty int64) {
	t.Helper()
	_, err := f.engine.RecordMovement(context.Background(), manager, inventory.MovementInput{
		Kind: entity.MovementInbound, ProductID: productID, Quantity: qty, DestinationLocationID: loc,
	})
	require.NoError(t, err)
}

func (f *fixture) quantity(t *testing.T, productID, loc string) int64 {
	t.Helper()
	st, err := f.engine.GetStock(context.Background(), manager, productID, loc)
	require.NoError(t, err)
	return st.Quantity
}

// confirmed crea y confirma un pedido con los ítems dados (producto -> cantidad).
func (f *fixture) confirmed(t *testing.T, items ...fulfillment.ItemInput) *entity.Order {
	t.Helper()
	ctx := context.Background()
	o, err := f.coord.CreateOrder(ctx, manager, fulfillment.OrderInput{Items: items})
	require.NoError(t, err)
	o, err = f.coord.Confirm(ctx, manager, o.ID)
	require.NoError(t, err)
	return o
}

func item(productID string, qty int64) fulfillment.ItemInput {
	return fulfillment.ItemInput{ProductID: productID, Quantity: qty}
}

func TestCreateOrder_ValorizaConPrecioDeVenta(t *testing.T) {
	f := newFixture(t)
	price := decimal.NewFromInt(8)
	o, err := f.coord.CreateOrder(context.Background(), manager, fulfillment.OrderInput{
		Number: "PV-1",
		Items: []fulfillment.ItemInput{
			item("p1", 3),
			{ProductID: "p2", Quantity: 2, UnitPrice: &price, Discount: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderDraft, o.Status)
	assert.Equal(t, entity.OrderTypeSale, o.Type)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(45)), "total %s", o.Total)

	_, err = f.coord.CreateOrder(context.Background(), operator, fulfillment.OrderInput{Items: []fulfillment.ItemInput{item("p1", 1)}})
	assert.Equal(t, domain.KindUnauthorized, domain.Kind(err))
}

func TestConfirm_RechazaPedidoVacioOProductoDesconocido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.coord.CreateOrder(ctx, manager, fulfillment.OrderInput{})
	require.NoError(t, err)
	_, err = f.coord.Confirm(ctx, manager, empty.ID)
	assert.Equal(t, domain.KindInvalidInput, domain.Kind(err))

	ghost, err := f.coord.CreateOrder(ctx, manager, fulfillment.OrderInput{Items: []fulfillment.ItemInput{item("nope", 1)}})
	require.NoError(t, err)
	_, err = f.coord.Confirm(ctx, manager, ghost.ID)
	assert.Equal(t, domain.KindInvalidInput, domain.Kind(err))

	got, err := f.coord.GetOrder(ctx, operator, ghost.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderDraft, got.Status)
}

func TestCicloCompletoHastaEntrega(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p1", "loc-A", 10)
	f.stock(t, "p2", "loc-B", 5)

	o := f.confirmed(t, item("p1", 4), item("p2", 5))
	o, err := f.coord.Reserve(ctx, manager, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderReserved, o.Status)

	res, err := f.coord.ListReservations(ctx, operator, o.ID)
	require.NoError(t, err)
	assert.Len(t, res, 2)

	o, err = f.coord.Ship(ctx, operator, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderShipped, o.Status)
	assert.Equal(t, int64(6), f.quantity(t, "p1", "loc-A"))
	assert.Equal(t, int64(0), f.quantity(t, "p2", "loc-B"))

	res, err = f.coord.ListReservations(ctx, operator, o.ID)
	require.NoError(t, err)
	assert.Empty(t, res, "las reservas quedan consumidas")

	movs, err := f.engine.ListOrderMovements(ctx, manager, o.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 2)

	_, err = f.coord.AddTracking(ctx, operator, o.ID, fulfillment.TrackingInput{Status: entity.TrackingInTransit, Location: "Bogotá"})
	require.NoError(t, err)

	o, err = f.coord.Deliver(ctx, operator, o.ID, fulfillment.TrackingInput{Notes: "recibido"})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderDelivered, o.Status)
	require.NotNil(t, o.DeliveredAt)

	history, err := f.coord.ListTracking(ctx, operator, o.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, entity.TrackingDispatched, history[0].Status)
	assert.Equal(t, entity.TrackingDelivered, history[2].Status)

	var changes int
	for _, e := range f.events.events {
		if e.Type == ports.EventOrderStatusChanged {
			changes++
		}
	}
	assert.Equal(t, 4, changes, "confirmed, reserved, shipped, delivered")
}

func TestReserve_TodoONada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p1", "loc-A", 10)
	f.stock(t, "p2", "loc-A", 2)

	o := f.confirmed(t, item("p1", 3), item("p2", 5))
	_, err := f.coord.Reserve(ctx, manager, o.ID)
	require.Error(t, err)
	var partial *domain.PartialFulfillmentError
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, "p2", partial.ProductID)
	assert.Equal(t, int64(2), partial.Available)

	res, err := f.coord.ListReservations(ctx, manager, o.ID)
	require.NoError(t, err)
	assert.Empty(t, res)
	got, err := f.coord.GetOrder(ctx, manager, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderConfirmed, got.Status)
}

func TestReserve_DescuentaReservasDeOtrosPedidos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p1", "loc-A", 10)

	first := f.confirmed(t, item("p1", 7))
	_, err := f.coord.Reserve(ctx, manager, first.ID)
	require.NoError(t, err)

	second := f.confirmed(t, item("p1", 5))
	_, err = f.coord.Reserve(ctx, manager, second.ID)
	assert.Equal(t, domain.KindPartialFulfillmentDenied, domain.Kind(err))

	// Al cancelar el primero, su reserva se libera.
	_, err = f.coord.Cancel(ctx, manager, first.ID)
	require.NoError(t, err)
	_, err = f.coord.Reserve(ctx, manager, second.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), f.quantity(t, "p1", "loc-A"), "cancelar no mueve stock")
}

func TestReserve_RepartePorUbicaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p1", "loc-A", 6)
	f.stock(t, "p1", "loc-B", 4)

	o := f.confirmed(t, item("p1", 8))
	_, err := f.coord.Reserve(ctx, manager, o.ID)
	require.NoError(t, err)

	res, err := f.coord.ListReservations(ctx, manager, o.ID)
	require.NoError(t, err)
	got := map[string]int64{}
	for _, r := range res {
		got[r.LocationID] += r.Quantity
	}
	assert.Equal(t, map[string]int64{"loc-A": 6, "loc-B": 2}, got)
}

func TestShip_CompensaSiUnaLineaFalla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p1", "loc-A", 10)
	f.stock(t, "p2", "loc-B", 5)

	o := f.confirmed(t, item("p1", 4), item("p2", 5))
	_, err := f.coord.Reserve(ctx, manager, o.ID)
	require.NoError(t, err)

	// Una salida ajena al pedido deja sin stock la reserva de p2.
	_, err = f.engine.RecordMovement(ctx, manager, inventory.MovementInput{
		Kind: entity.MovementOutbound, ProductID: "p2", Quantity: 3, SourceLocationID: "loc-B",
	})
	require.NoError(t, err)

	_, err = f.coord.Ship(ctx, operator, o.ID)
	assert.Equal(t, domain.KindInsufficientStock, domain.Kind(err))

	assert.Equal(t, int64(10), f.quantity(t, "p1", "loc-A"))
	assert.Equal(t, int64(2), f.quantity(t, "p2", "loc-B"))

	movs, err := f.engine.ListOrderMovements(ctx, manager, o.ID)
	require.NoError(t, err)
	var net int64
	for _, m := range movs {
		net += m.Delta()
	}
	assert.Zero(t, net, "las salidas del pedido quedan compensadas")

	got, err := f.coord.GetOrder(ctx, manager, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderReserved, got.Status)
	res, err := f.coord.ListReservations(ctx, manager, o.ID)
	require.NoError(t, err)
	assert.Len(t, res, 2, "las reservas siguen activas")
}

func TestShip_CompensaAunqueLaBodegaSeDesactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p1", "loc-A", 10)
	f.stock(t, "p2", "loc-B", 5)

	o := f.confirmed(t, item("p1", 4), item("p2", 5))
	_, err := f.coord.Reserve(ctx, manager, o.ID)
	require.NoError(t, err)

	_, err = f.engine.RecordMovement(ctx, manager, inventory.MovementInput{
		Kind: entity.MovementOutbound, ProductID: "p2", Quantity: 3, SourceLocationID: "loc-B",
	})
	require.NoError(t, err)

	// La bodega se desactiva entre la reserva y el despacho.
	require.NoError(t, f.store.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		w, err := r.Warehouses.GetByID(ctx, company, "w1")
		if err != nil {
			return err
		}
		w.Status = entity.WarehouseStatusInactive
		return r.Warehouses.Update(ctx, w)
	}))

	_, err = f.coord.Ship(ctx, operator, o.ID)
	assert.Equal(t, domain.KindInsufficientStock, domain.Kind(err))

	assert.Equal(t, int64(10), f.quantity(t, "p1", "loc-A"), "la salida de p1 vuelve a su ubicación")
	assert.Equal(t, int64(2), f.quantity(t, "p2", "loc-B"))

	require.NoError(t, f.store.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		p, err := r.Products.GetByID(ctx, company, "p1")
		if err != nil {
			return err
		}
		assert.Equal(t, int64(10), p.TotalQuantity)
		return nil
	}))

	got, err := f.coord.GetOrder(ctx, manager, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderReserved, got.Status)

	// Un inbound normal a esa bodega sigue rechazado.
	_, err = f.engine.RecordMovement(ctx, manager, inventory.MovementInput{
		Kind: entity.MovementInbound, ProductID: "p1", Quantity: 1, DestinationLocationID: "loc-A",
	})
	assert.Equal(t, domain.KindInvalidMovement, domain.Kind(err))
}

func TestShip_DespachaEnOrdenDeLineas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p2", "loc-B", 5)
	f.stock(t, "p1", "loc-A", 2)
	f.stock(t, "p1", "loc-B", 2)

	o := f.confirmed(t, item("p2", 1), item("p1", 4))
	_, err := f.coord.Reserve(ctx, manager, o.ID)
	require.NoError(t, err)
	_, err = f.coord.Ship(ctx, operator, o.ID)
	require.NoError(t, err)

	movs, err := f.engine.ListOrderMovements(ctx, manager, o.ID)
	require.NoError(t, err)
	var got []string
	for _, m := range movs {
		got = append(got, m.ProductID+"@"+m.SourceLocationID)
	}
	assert.Equal(t, []string{"p2@loc-B", "p1@loc-A", "p1@loc-B"}, got)
}

func TestCancel_PedidoDespachadoNoSeCancela(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p1", "loc-A", 3)

	o := f.confirmed(t, item("p1", 3))
	_, err := f.coord.Reserve(ctx, manager, o.ID)
	require.NoError(t, err)
	_, err = f.coord.Ship(ctx, operator, o.ID)
	require.NoError(t, err)

	_, err = f.coord.Cancel(ctx, manager, o.ID)
	assert.Equal(t, domain.KindInvalidTransition, domain.Kind(err))
}

func TestTransicionesInvalidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p1", "loc-A", 3)

	o, err := f.coord.CreateOrder(ctx, manager, fulfillment.OrderInput{Items: []fulfillment.ItemInput{item("p1", 1)}})
	require.NoError(t, err)

	_, err = f.coord.Reserve(ctx, manager, o.ID)
	assert.Equal(t, domain.KindInvalidTransition, domain.Kind(err), "draft -> reserved")
	_, err = f.coord.Ship(ctx, operator, o.ID)
	assert.Equal(t, domain.KindInvalidTransition, domain.Kind(err), "draft -> shipped")
	_, err = f.coord.Deliver(ctx, operator, o.ID, fulfillment.TrackingInput{})
	assert.Equal(t, domain.KindInvalidTransition, domain.Kind(err), "draft -> delivered")

	_, err = f.coord.Cancel(ctx, manager, o.ID)
	require.NoError(t, err)
	_, err = f.coord.Confirm(ctx, manager, o.ID)
	assert.Equal(t, domain.KindInvalidTransition, domain.Kind(err), "cancelled es terminal")

	_, err = f.coord.Confirm(ctx, manager, "nope")
	assert.Equal(t, domain.KindNotFound, domain.Kind(err))
}

func TestAddTracking_FechasNoRetroceden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "p1", "loc-A", 3)

	o := f.confirmed(t, item("p1", 1))
	_, err := f.coord.AddTracking(ctx, operator, o.ID, fulfillment.TrackingInput{Status: entity.TrackingInTransit})
	assert.Equal(t, domain.KindInvalidTransition, domain.Kind(err), "sin despachar no hay rastreo")

	_, err = f.coord.Reserve(ctx, manager, o.ID)
	require.NoError(t, err)
	_, err = f.coord.Ship(ctx, operator, o.ID)
	require.NoError(t, err)

	before := t0.Add(-time.Hour)
	_, err = f.coord.AddTracking(ctx, operator, o.ID, fulfillment.TrackingInput{Status: entity.TrackingInTransit, RecordedAt: &before})
	assert.Equal(t, domain.KindInvalidInput, domain.Kind(err))

	same := t0
	_, err = f.coord.AddTracking(ctx, operator, o.ID, fulfillment.TrackingInput{Status: entity.TrackingInTransit, RecordedAt: &same})
	assert.NoError(t, err, "la misma hora se acepta")

	_, err = f.coord.AddTracking(ctx, operator, o.ID, fulfillment.TrackingInput{Status: entity.TrackingDelivered})
	assert.Equal(t, domain.KindInvalidInput, domain.Kind(err), "la entrega va por Deliver")

	_, err = f.coord.AddTracking(ctx, operator, o.ID, fulfillment.TrackingInput{})
	assert.Equal(t, domain.KindInvalidInput, domain.Kind(err))
}
