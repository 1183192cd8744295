// Package memory implementa los repositorios del motor en memoria.
// Cada transacción acumula sus escrituras y las aplica juntas en el Commit; los bloqueos de fila
// tomados con GetForUpdate se mantienen hasta el fin de la transacción.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
)

// Store guarda el estado confirmado de todos los tenants.
type Store struct {
	mu sync.RWMutex

	products     *table[entity.Product]
	warehouses   *table[entity.Warehouse]
	locations    *table[entity.Location]
	stock        *table[entity.LocationStock]
	orders       *table[entity.Order]
	reservations *table[entity.Reservation]
	users        *table[entity.User]
	movements    []*entity.StockMovement
	tracking     []*entity.DeliveryTracking

	seq atomic.Int64

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

var _ repository.TxRunner = (*Store)(nil)

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products:     newTable(shallow[entity.Product]),
		warehouses:   newTable(shallow[entity.Warehouse]),
		locations:    newTable(shallow[entity.Location]),
		stock:        newTable(shallow[entity.LocationStock]),
		orders:       newTable(func(o *entity.Order) *entity.Order { return o.Clone() }),
		reservations: newTable(shallow[entity.Reservation]),
		users:        newTable(shallow[entity.User]),
		locks:        make(map[string]chan struct{}),
	}
}

// Run ejecuta fn en una transacción. Si fn falla nada de lo escrito queda visible.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := newTx(s)
	defer t.release()

	if err := fn(ctx, t.repos()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	t.commit()
	s.mu.Unlock()
	return nil
}

// lock toma el bloqueo de la fila; respeta la cancelación del contexto.
func (s *Store) lock(ctx context.Context, key string) error {
	s.locksMu.Lock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	s.locksMu.Unlock()

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) unlock(key string) {
	s.locksMu.Lock()
	ch := s.locks[key]
	s.locksMu.Unlock()
	<-ch
}

// table es un mapa clave -> fila; las lecturas devuelven copias.
type table[T any] struct {
	rows  map[string]*T
	clone func(*T) *T
}

func newTable[T any](clone func(*T) *T) *table[T] {
	return &table[T]{rows: make(map[string]*T), clone: clone}
}

func shallow[T any](v *T) *T {
	c := *v
	return &c
}

// overlay escrituras pendientes de una transacción; valor nil = fila borrada.
type overlay[T any] map[string]*T

// read busca primero en las escrituras pendientes y luego en lo confirmado. Requiere s.mu tomado.
func (t *table[T]) read(ov overlay[T], key string) *T {
	if v, ok := ov[key]; ok {
		if v == nil {
			return nil
		}
		return t.clone(v)
	}
	if v, ok := t.rows[key]; ok {
		return t.clone(v)
	}
	return nil
}

// scan devuelve las filas visibles que cumplen match, ordenadas por clave. Requiere s.mu tomado.
func (t *table[T]) scan(ov overlay[T], match func(*T) bool) []*T {
	keys := make([]string, 0)
	seen := make(map[string]bool, len(ov))
	for k, v := range ov {
		seen[k] = true
		if v != nil && match(v) {
			keys = append(keys, k)
		}
	}
	for k, v := range t.rows {
		if !seen[k] && match(v) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]*T, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.read(ov, k))
	}
	return out
}

func (t *table[T]) apply(ov overlay[T]) {
	for k, v := range ov {
		if v == nil {
			delete(t.rows, k)
			continue
		}
		t.rows[k] = v
	}
}

func key(parts ...string) string {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	b := make([]byte, 0, n)
	for i, p := range parts {
		if i > 0 {
			b = append(b, '/')
		}
		b = append(b, p...)
	}
	return string(b)
}

func page[T any](rows []*T, limit, offset int) []*T {
	if offset >= len(rows) {
		return []*T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
