package audit_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-ledger/internal/application/audit"
	"github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/application/ports"
	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/authz"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
	"github.com/jhoicas/wms-ledger/internal/infrastructure/memory"
)

var manager = entity.Session{CompanyID: "c1", UserID: "m1", Role: entity.RoleManager}

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

type driftCounter struct {
	ports.NopMetrics
	drift, clean int
}

func (d *driftCounter) ObserveReconciliation(drift bool) {
	if drift {
		d.drift++
		return
	}
	d.clean++
}

func setup(t *testing.T) (*memory.Store, *inventory.RegisterMovementUseCase) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Run(context.Background(), func(ctx context.Context, r repository.Repos) error {
		if err := r.Warehouses.Create(ctx, &entity.Warehouse{ID: "w1", CompanyID: "c1", Status: entity.WarehouseStatusActive}); err != nil {
			return err
		}
		for _, id := range []string{"a", "b"} {
			if err := r.Locations.Create(ctx, &entity.Location{ID: id, CompanyID: "c1", WarehouseID: "w1", Aisle: id}); err != nil {
				return err
			}
		}
		for _, id := range []string{"p1", "p2"} {
			if err := r.Products.Create(ctx, &entity.Product{ID: id, CompanyID: "c1", Code: id}); err != nil {
				return err
			}
		}
		return nil
	}))
	return store, inventory.NewRegisterMovementUseCase(store, authz.NewGate(nil))
}

func move(t *testing.T, uc *inventory.RegisterMovementUseCase, in inventory.MovementInput) {
	t.Helper()
	_, err := uc.RecordMovement(context.Background(), manager, in)
	require.NoError(t, err)
}

func TestReconcile_SinDiferencias(t *testing.T) {
	store, uc := setup(t)
	move(t, uc, inventory.MovementInput{Kind: entity.MovementInbound, ProductID: "p1", Quantity: 100, DestinationLocationID: "a"})
	move(t, uc, inventory.MovementInput{Kind: entity.MovementOutbound, ProductID: "p1", Quantity: 30, SourceLocationID: "a"})
	move(t, uc, inventory.MovementInput{Kind: entity.MovementTransfer, ProductID: "p1", Quantity: 20, SourceLocationID: "a", DestinationLocationID: "b"})

	metrics := &driftCounter{}
	a := audit.NewAuditor(store, authz.NewGate(nil), nil, metrics, nil)
	rep, err := a.Reconcile(context.Background(), manager, "p1")
	require.NoError(t, err)

	assert.Equal(t, int64(70), rep.Expected)
	assert.Equal(t, int64(70), rep.Actual)
	assert.Equal(t, int64(70), rep.LocationSum)
	assert.Zero(t, rep.Drift)
	assert.False(t, rep.HasDrift())
	assert.Equal(t, 1, metrics.clean)
}

func TestReconcile_DetectaManipulacionDirecta(t *testing.T) {
	store, uc := setup(t)
	move(t, uc, inventory.MovementInput{Kind: entity.MovementInbound, ProductID: "p1", Quantity: 10, DestinationLocationID: "a"})

	// Escritura fuera del motor: el índice de stock ya no coincide con el ledger.
	require.NoError(t, store.Run(context.Background(), func(ctx context.Context, r repository.Repos) error {
		if err := r.Stock.Upsert(ctx, &entity.LocationStock{CompanyID: "c1", ProductID: "p1", LocationID: "a", Quantity: 7}); err != nil {
			return err
		}
		return r.Products.UpdateTotalQuantity(ctx, "c1", "p1", 12)
	}))

	events := &recorder{}
	a := audit.NewAuditor(store, authz.NewGate(nil), events, nil, nil)
	rep, err := a.Reconcile(context.Background(), manager, "p1")
	require.NoError(t, err)

	assert.True(t, rep.HasDrift())
	assert.Equal(t, int64(10), rep.Expected)
	assert.Equal(t, int64(12), rep.Actual)
	assert.Equal(t, int64(7), rep.LocationSum)
	assert.Equal(t, int64(2), rep.Drift)
	assert.Equal(t, []audit.LocationDrift{{LocationID: "a", Expected: 10, Actual: 7}}, rep.Locations)
	require.Len(t, events.events, 1)
	assert.Equal(t, ports.EventDriftDetected, events.events[0].Type)
}

func TestReconcileAll(t *testing.T) {
	store, uc := setup(t)
	move(t, uc, inventory.MovementInput{Kind: entity.MovementInbound, ProductID: "p1", Quantity: 4, DestinationLocationID: "a"})
	move(t, uc, inventory.MovementInput{Kind: entity.MovementInbound, ProductID: "p2", Quantity: 9, DestinationLocationID: "b"})

	a := audit.NewAuditor(store, authz.NewGate(nil), nil, nil, nil)
	reps, err := a.ReconcileAll(context.Background(), manager)
	require.NoError(t, err)
	require.Len(t, reps, 2)
	for _, rep := range reps {
		assert.False(t, rep.HasDrift(), rep.ProductID)
	}
}

func TestReconcile_Permisos(t *testing.T) {
	store, _ := setup(t)
	a := audit.NewAuditor(store, authz.NewGate(nil), nil, nil, nil)

	_, err := a.Reconcile(context.Background(), entity.Session{CompanyID: "c1", UserID: "o1", Role: entity.RoleOperator}, "p1")
	assert.Equal(t, domain.KindUnauthorized, domain.Kind(err))

	_, err = a.Reconcile(context.Background(), manager, "nope")
	assert.Equal(t, domain.KindNotFound, domain.Kind(err))
}
