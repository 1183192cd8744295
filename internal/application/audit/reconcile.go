// Package audit reconstruye el stock a partir del ledger y lo compara con el estado actual.
// Solo reporta diferencias; nunca corrige.
package audit

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/wms-ledger/internal/application/ports"
	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/authz"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
	"github.com/jhoicas/wms-ledger/pkg/logger"
)

// pageSize tamaño de página al recorrer el ledger.
const pageSize = 500

// LocationDrift diferencia en una ubicación.
type LocationDrift struct {
	LocationID string `json:"location_id"`
	Expected   int64  `json:"expected"` // según el ledger
	Actual     int64  `json:"actual"`   // según el índice de stock
}

// Report resultado de conciliar un producto.
// Expected = suma firmada del ledger; Actual = Product.TotalQuantity; LocationSum = Σ LocationStock.
type Report struct {
	ProductID   string          `json:"product_id"`
	Expected    int64           `json:"expected"`
	Actual      int64           `json:"actual"`
	LocationSum int64           `json:"location_sum"`
	Drift       int64           `json:"drift"` // Actual - Expected
	Locations   []LocationDrift `json:"locations,omitempty"`
}

// HasDrift indica si algo no cuadra, ya sea el total o alguna ubicación.
func (r *Report) HasDrift() bool {
	return r.Drift != 0 || r.LocationSum != r.Expected || len(r.Locations) > 0
}

// Auditor concilia productos contra su ledger.
type Auditor struct {
	txRunner  repository.TxRunner
	gate      *authz.Gate
	publisher ports.EventPublisher
	metrics   ports.Metrics
	log       *logger.Logger
}

// NewAuditor construye el auditor. publisher, metrics y log pueden ser nil.
func NewAuditor(txRunner repository.TxRunner, gate *authz.Gate, publisher ports.EventPublisher, metrics ports.Metrics, log *logger.Logger) *Auditor {
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Auditor{txRunner: txRunner, gate: gate, publisher: publisher, metrics: metrics, log: log}
}

// Reconcile recorre el ledger del producto bajo el bloqueo de su fila, para que ningún movimiento
// concurrente quede a medias entre la lectura del ledger y la del stock.
func (a *Auditor) Reconcile(ctx context.Context, s entity.Session, productID string) (*Report, error) {
	if err := a.authorize(s); err != nil {
		return nil, err
	}
	var rep *Report
	err := a.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		rep, err = reconcile(ctx, r, s.CompanyID, productID)
		return err
	})
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	a.report(ctx, s, rep)
	return rep, nil
}

// ReconcileAll concilia todos los productos de la empresa, uno por transacción.
func (a *Auditor) ReconcileAll(ctx context.Context, s entity.Session) ([]*Report, error) {
	if err := a.authorize(s); err != nil {
		return nil, err
	}
	var ids []string
	for offset := 0; ; offset += pageSize {
		var batch []*entity.Product
		err := a.txRunner.Run(ctx, func(ctx context.Context, r repository.Repos) error {
			var err error
			batch, err = r.Products.ListByCompany(ctx, s.CompanyID, pageSize, offset)
			return err
		})
		if err != nil {
			return nil, domain.StorageFault(err)
		}
		for _, p := range batch {
			ids = append(ids, p.ID)
		}
		if len(batch) < pageSize {
			break
		}
	}

	reports := make([]*Report, 0, len(ids))
	for _, id := range ids {
		rep, err := a.Reconcile(ctx, s, id)
		if err != nil {
			return reports, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

func reconcile(ctx context.Context, r repository.Repos, companyID, productID string) (*Report, error) {
	p, err := r.Products.GetForUpdate(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}

	expected := make(map[string]int64)
	var after int64
	for {
		page, err := r.Movements.ListByProduct(ctx, companyID, productID, after, pageSize)
		if err != nil {
			return nil, err
		}
		for _, m := range page {
			m.Apply(expected)
			after = m.Seq
		}
		if len(page) < pageSize {
			break
		}
	}

	rows, err := r.Stock.ListByProduct(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	actual := make(map[string]int64, len(rows))
	rep := &Report{ProductID: productID, Actual: p.TotalQuantity}
	for _, row := range rows {
		actual[row.LocationID] = row.Quantity
		rep.LocationSum += row.Quantity
	}
	for _, q := range expected {
		rep.Expected += q
	}
	rep.Drift = rep.Actual - rep.Expected

	locs := make(map[string]bool, len(expected)+len(actual))
	for id := range expected {
		locs[id] = true
	}
	for id := range actual {
		locs[id] = true
	}
	for id := range locs {
		if expected[id] != actual[id] {
			rep.Locations = append(rep.Locations, LocationDrift{LocationID: id, Expected: expected[id], Actual: actual[id]})
		}
	}
	sort.Slice(rep.Locations, func(i, j int) bool { return rep.Locations[i].LocationID < rep.Locations[j].LocationID })
	return rep, nil
}

func (a *Auditor) authorize(s entity.Session) error {
	if !s.Valid() {
		return &domain.UnauthorizedError{Role: s.Role, Operation: string(authz.OpViewReport), Reason: "sesión incompleta"}
	}
	return a.gate.Check(s.Role, authz.OpViewReport, authz.Context{})
}

func (a *Auditor) report(ctx context.Context, s entity.Session, rep *Report) {
	drift := rep.HasDrift()
	a.metrics.ObserveReconciliation(drift)
	if !drift {
		return
	}
	a.log.Warn().
		Str("company_id", s.CompanyID).
		Str("product_id", rep.ProductID).
		Int64("expected", rep.Expected).
		Int64("actual", rep.Actual).
		Int64("location_sum", rep.LocationSum).
		Int("locations", len(rep.Locations)).
		Msg("diferencia entre ledger y stock")
	err := a.publisher.Publish(ctx, ports.Event{
		ID:          uuid.New().String(),
		Type:        ports.EventDriftDetected,
		CompanyID:   s.CompanyID,
		AggregateID: rep.ProductID,
		OccurredAt:  time.Now(),
		Data:        rep,
	})
	if err != nil {
		a.log.Warn().Err(err).Str("product_id", rep.ProductID).Msg("no se pudo publicar la diferencia")
	}
}
