package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-ledger/internal/application/audit"
	"github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/authz"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
	"github.com/jhoicas/wms-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/wms-ledger/pkg/config"
)

// Requiere una base real: TEST_DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres/
func newRunner(t *testing.T) *postgres.TxRunner {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 8})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	return postgres.NewTxRunner(pool, 3, nil)
}

type seeded struct {
	session  entity.Session
	product  string
	location string
}

func seed(t *testing.T, tx *postgres.TxRunner) seeded {
	t.Helper()
	companyID := uuid.New().String()
	s := seeded{
		session:  entity.Session{CompanyID: companyID, UserID: uuid.New().String(), Role: entity.RoleManager},
		product:  uuid.New().String(),
		location: uuid.New().String(),
	}
	warehouseID := uuid.New().String()
	require.NoError(t, tx.Run(context.Background(), func(ctx context.Context, r repository.Repos) error {
		if err := r.Warehouses.Create(ctx, &entity.Warehouse{ID: warehouseID, CompanyID: companyID, Name: "Central", Status: entity.WarehouseStatusActive}); err != nil {
			return err
		}
		if err := r.Locations.Create(ctx, &entity.Location{ID: s.location, CompanyID: companyID, WarehouseID: warehouseID, Aisle: "A"}); err != nil {
			return err
		}
		return r.Products.Create(ctx, &entity.Product{ID: s.product, CompanyID: companyID, Code: "P-" + s.product[:8], Name: "Prueba"})
	}))
	return s
}

func TestPostgres_EntradaSalidaYConciliacion(t *testing.T) {
	tx := newRunner(t)
	s := seed(t, tx)
	ctx := context.Background()
	gate := authz.NewGate(nil)
	uc := inventory.NewRegisterMovementUseCase(tx, gate)

	_, err := uc.RecordMovement(ctx, s.session, inventory.MovementInput{
		Kind: entity.MovementInbound, ProductID: s.product, Quantity: 100, DestinationLocationID: s.location,
	})
	require.NoError(t, err)
	_, err = uc.RecordMovement(ctx, s.session, inventory.MovementInput{
		Kind: entity.MovementOutbound, ProductID: s.product, Quantity: 30, SourceLocationID: s.location,
	})
	require.NoError(t, err)
	_, err = uc.RecordMovement(ctx, s.session, inventory.MovementInput{
		Kind: entity.MovementOutbound, ProductID: s.product, Quantity: 71, SourceLocationID: s.location,
	})
	assert.Equal(t, domain.KindInsufficientStock, domain.Kind(err))

	rep, err := audit.NewAuditor(tx, gate, nil, nil, nil).Reconcile(ctx, s.session, s.product)
	require.NoError(t, err)
	assert.Equal(t, int64(70), rep.Expected)
	assert.Equal(t, int64(70), rep.Actual)
	assert.False(t, rep.HasDrift())
}

func TestPostgres_SalidasConcurrentes(t *testing.T) {
	tx := newRunner(t)
	s := seed(t, tx)
	ctx := context.Background()
	uc := inventory.NewRegisterMovementUseCase(tx, authz.NewGate(nil))

	_, err := uc.RecordMovement(ctx, s.session, inventory.MovementInput{
		Kind: entity.MovementInbound, ProductID: s.product, Quantity: 10, DestinationLocationID: s.location,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.RecordMovement(ctx, s.session, inventory.MovementInput{
				Kind: entity.MovementOutbound, ProductID: s.product, Quantity: 6, SourceLocationID: s.location,
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, domain.KindInsufficientStock, domain.Kind(err))
	}
	assert.Equal(t, 1, ok)

	st, err := uc.GetStock(ctx, s.session, s.product, s.location)
	require.NoError(t, err)
	assert.Equal(t, int64(4), st.Quantity)
}

func TestPostgres_IdsMalformadosNoSonFallaDeAlmacenamiento(t *testing.T) {
	tx := newRunner(t)
	s := seed(t, tx)
	ctx := context.Background()
	uc := inventory.NewRegisterMovementUseCase(tx, authz.NewGate(nil))

	_, err := uc.RecordMovement(ctx, s.session, inventory.MovementInput{
		Kind: entity.MovementInbound, ProductID: "abc", Quantity: 1, DestinationLocationID: s.location,
	})
	assert.Equal(t, domain.KindInvalidMovement, domain.Kind(err))

	_, err = uc.RecordMovement(ctx, s.session, inventory.MovementInput{
		Kind: entity.MovementInbound, ProductID: s.product, Quantity: 1, DestinationLocationID: "abc",
	})
	assert.Equal(t, domain.KindInvalidMovement, domain.Kind(err))

	// La transacción siguiente no arrastra ningún error previo.
	_, err = uc.RecordMovement(ctx, s.session, inventory.MovementInput{
		Kind: entity.MovementInbound, ProductID: s.product, Quantity: 1, DestinationLocationID: s.location,
	})
	require.NoError(t, err)
}
