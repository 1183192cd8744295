package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
	"github.com/jhoicas/wms-ledger/internal/infrastructure/memory"
)

func seedProduct(t *testing.T, s *memory.Store) {
	t.Helper()
	require.NoError(t, s.Run(context.Background(), func(ctx context.Context, r repository.Repos) error {
		return r.Products.Create(ctx, &entity.Product{ID: "p1", CompanyID: "c1", Code: "P1"})
	}))
}

func TestRun_ErrorDescartaEscrituras(t *testing.T) {
	s := memory.NewStore()
	seedProduct(t, s)
	boom := errors.New("boom")

	err := s.Run(context.Background(), func(ctx context.Context, r repository.Repos) error {
		if err := r.Stock.Upsert(ctx, &entity.LocationStock{CompanyID: "c1", ProductID: "p1", LocationID: "a", Quantity: 5}); err != nil {
			return err
		}
		if err := r.Movements.Append(ctx, &entity.StockMovement{CompanyID: "c1", ProductID: "p1", DestinationLocationID: "a", Quantity: 5}); err != nil {
			return err
		}
		// Dentro de la transacción lo escrito es visible.
		st, err := r.Stock.Get(ctx, "c1", "p1", "a")
		require.NoError(t, err)
		assert.Equal(t, int64(5), st.Quantity)
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.Run(context.Background(), func(ctx context.Context, r repository.Repos) error {
		st, err := r.Stock.Get(ctx, "c1", "p1", "a")
		require.NoError(t, err)
		assert.Zero(t, st.Quantity)
		movs, err := r.Movements.ListByProduct(ctx, "c1", "p1", 0, 0)
		require.NoError(t, err)
		assert.Empty(t, movs)
		return nil
	}))
}

func TestGetForUpdate_SerializaTransacciones(t *testing.T) {
	s := memory.NewStore()
	seedProduct(t, s)

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.Run(context.Background(), func(ctx context.Context, r repository.Repos) error {
			if _, err := r.Products.GetForUpdate(ctx, "c1", "p1"); err != nil {
				return err
			}
			close(locked)
			<-release
			return r.Products.UpdateTotalQuantity(ctx, "c1", "p1", 9)
		})
	}()
	<-locked

	// Mientras la primera tx tenga el bloqueo, la segunda espera hasta que vence su contexto.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := s.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		_, err := r.Products.GetForUpdate(ctx, "c1", "p1")
		return err
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-done)

	require.NoError(t, s.Run(context.Background(), func(ctx context.Context, r repository.Repos) error {
		p, err := r.Products.GetForUpdate(ctx, "c1", "p1")
		require.NoError(t, err)
		assert.Equal(t, int64(9), p.TotalQuantity)
		return nil
	}))
}

func TestMovements_SeqCrecienteYFiltroPorEmpresa(t *testing.T) {
	s := memory.NewStore()
	require.NoError(t, s.Run(context.Background(), func(ctx context.Context, r repository.Repos) error {
		for _, c := range []string{"c1", "c2", "c1"} {
			if err := r.Movements.Append(ctx, &entity.StockMovement{CompanyID: c, ProductID: "p1", DestinationLocationID: "a", Quantity: 1, OrderID: "o1"}); err != nil {
				return err
			}
		}
		return nil
	}))
	require.NoError(t, s.Run(context.Background(), func(ctx context.Context, r repository.Repos) error {
		movs, err := r.Movements.ListByProduct(ctx, "c1", "p1", 0, 0)
		require.NoError(t, err)
		require.Len(t, movs, 2)
		assert.Less(t, movs[0].Seq, movs[1].Seq)

		byOrder, err := r.Movements.ListByOrder(ctx, "c2", "o1")
		require.NoError(t, err)
		assert.Len(t, byOrder, 1)

		got, err := r.Movements.GetByID(ctx, "c2", movs[0].ID)
		require.NoError(t, err)
		assert.Nil(t, got, "otra empresa no ve el movimiento")
		return nil
	}))
}

func TestOrders_UpdateStatusConVersion(t *testing.T) {
	s := memory.NewStore()
	o := &entity.Order{ID: "o1", CompanyID: "c1", Status: entity.OrderDraft, Items: []entity.OrderItem{{ProductID: "p1", Quantity: 2}}}
	require.NoError(t, s.Run(context.Background(), func(ctx context.Context, r repository.Repos) error {
		return r.Orders.Create(ctx, o)
	}))

	err := s.Run(context.Background(), func(ctx context.Context, r repository.Repos) error {
		cur, err := r.Orders.GetForUpdate(ctx, "c1", "o1")
		require.NoError(t, err)
		require.Len(t, cur.Items, 1)
		assert.NotEmpty(t, cur.Items[0].ID)
		cur.Status = entity.OrderConfirmed
		if err := r.Orders.UpdateStatus(ctx, cur, cur.Version); err != nil {
			return err
		}
		assert.Equal(t, int64(1), cur.Version)
		return nil
	})
	require.NoError(t, err)

	err = s.Run(context.Background(), func(ctx context.Context, r repository.Repos) error {
		stale := &entity.Order{ID: "o1", CompanyID: "c1", Status: entity.OrderCancelled}
		return r.Orders.UpdateStatus(ctx, stale, 0)
	})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}

func TestCatalogo_Duplicados(t *testing.T) {
	s := memory.NewStore()
	seedProduct(t, s)
	err := s.Run(context.Background(), func(ctx context.Context, r repository.Repos) error {
		return r.Products.Create(ctx, &entity.Product{CompanyID: "c1", Code: "P1"})
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// El mismo código en otra empresa es válido.
	err = s.Run(context.Background(), func(ctx context.Context, r repository.Repos) error {
		return r.Products.Create(ctx, &entity.Product{CompanyID: "c2", Code: "P1"})
	})
	assert.NoError(t, err)
}
