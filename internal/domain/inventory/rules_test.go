package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/inventory"
)

func TestValidate_CombinacionesPorTipo(t *testing.T) {
	cases := []struct {
		name string
		req  inventory.Request
		ok   bool
	}{
		{"inbound ok", inventory.Request{Kind: entity.MovementInbound, ProductID: "p", Quantity: 5, DestinationID: "l1"}, true},
		{"inbound sin destino", inventory.Request{Kind: entity.MovementInbound, ProductID: "p", Quantity: 5}, false},
		{"inbound con origen", inventory.Request{Kind: entity.MovementInbound, ProductID: "p", Quantity: 5, SourceID: "l0", DestinationID: "l1"}, false},
		{"outbound ok", inventory.Request{Kind: entity.MovementOutbound, ProductID: "p", Quantity: 5, SourceID: "l1"}, true},
		{"outbound con destino", inventory.Request{Kind: entity.MovementOutbound, ProductID: "p", Quantity: 5, SourceID: "l1", DestinationID: "l2"}, false},
		{"adjustment una ubicación", inventory.Request{Kind: entity.MovementAdjustment, ProductID: "p", Quantity: 2, SourceID: "l1"}, true},
		{"adjustment dos ubicaciones", inventory.Request{Kind: entity.MovementAdjustment, ProductID: "p", Quantity: 2, SourceID: "l1", DestinationID: "l2"}, false},
		{"adjustment sin ubicación", inventory.Request{Kind: entity.MovementAdjustment, ProductID: "p", Quantity: 2}, false},
		{"transfer ok", inventory.Request{Kind: entity.MovementTransfer, ProductID: "p", Quantity: 1, SourceID: "l1", DestinationID: "l2"}, true},
		{"transfer misma ubicación", inventory.Request{Kind: entity.MovementTransfer, ProductID: "p", Quantity: 1, SourceID: "l1", DestinationID: "l1"}, false},
		{"cantidad cero", inventory.Request{Kind: entity.MovementInbound, ProductID: "p", Quantity: 0, DestinationID: "l1"}, false},
		{"cantidad negativa", inventory.Request{Kind: entity.MovementOutbound, ProductID: "p", Quantity: -3, SourceID: "l1"}, false},
		{"tipo desconocido", inventory.Request{Kind: "gift", ProductID: "p", Quantity: 1, DestinationID: "l1"}, false},
		{"sin producto", inventory.Request{Kind: entity.MovementInbound, Quantity: 1, DestinationID: "l1"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := inventory.Validate(tc.req)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidMovement))
		})
	}
}

func TestValidate_AjusteNegativoSobreDestinoEsDecremento(t *testing.T) {
	s, err := inventory.Validate(inventory.Request{Kind: entity.MovementAdjustment, ProductID: "p", Quantity: -4, DestinationID: "l1"})
	require.NoError(t, err)
	assert.Equal(t, "l1", s.SourceID)
	assert.Empty(t, s.DestinationID)
	assert.Equal(t, int64(4), s.Quantity)
	assert.Equal(t, int64(-4), s.Delta())
}

func TestPlan_TransferenciaInsuficienteNoDevuelveCambios(t *testing.T) {
	s, err := inventory.Validate(inventory.Request{Kind: entity.MovementTransfer, ProductID: "p", Quantity: 8, SourceID: "a", DestinationID: "b"})
	require.NoError(t, err)

	changes, err := inventory.Plan(s, map[string]int64{"a": 5, "b": 1})
	require.Error(t, err)
	assert.Nil(t, changes)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "a", ise.LocationID)
	assert.Equal(t, int64(8), ise.Requested)
	assert.Equal(t, int64(5), ise.Available)
}

func TestPlan_TransferenciaConservaTotal(t *testing.T) {
	s, _ := inventory.Validate(inventory.Request{Kind: entity.MovementTransfer, ProductID: "p", Quantity: 3, SourceID: "a", DestinationID: "b"})
	changes, err := inventory.Plan(s, map[string]int64{"a": 5})
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, inventory.Change{LocationID: "a", Before: 5, After: 2}, changes[0])
	assert.Equal(t, inventory.Change{LocationID: "b", Before: 0, After: 3}, changes[1])
	assert.Equal(t, int64(0), s.Delta())
}

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	got := inventory.CostCalculator(10, decimal.NewFromInt(100), 10, decimal.NewFromInt(200))
	assert.True(t, got.Equal(decimal.NewFromInt(150)), "got %s", got)
	assert.True(t, inventory.CostCalculator(0, decimal.Zero, 0, decimal.NewFromInt(5)).IsZero())
}
