// Package metrics implementa ports.Metrics con Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/wms-ledger/internal/application/ports"
)

const namespace = "wms_ledger"

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus agrupa los colectores del motor en un registro propio.
type Prometheus struct {
	registry *prometheus.Registry

	movements        *prometheus.CounterVec
	movementDuration *prometheus.HistogramVec
	transitions      *prometheus.CounterVec
	compensations    *prometheus.CounterVec
	reconciliations  *prometheus.CounterVec
}

// New registra los colectores. Con withRuntime se añaden los de proceso y runtime de Go.
func New(withRuntime bool) *Prometheus {
	reg := prometheus.NewRegistry()
	m := &Prometheus{
		registry: reg,
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "movements_total",
			Help:      "Movimientos procesados por tipo y resultado.",
		}, []string{"kind", "result"}),
		movementDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "movement_duration_seconds",
			Help:      "Duración del registro de un movimiento, incluida la transacción.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "transitions_total",
			Help:      "Transiciones de estado de pedidos por estado destino y resultado.",
		}, []string{"to", "result"}),
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "compensations_total",
			Help:      "Compensaciones de despachos fallidos.",
		}, []string{"result"}),
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "reconciliations_total",
			Help:      "Conciliaciones ejecutadas, separadas por si hubo diferencia.",
		}, []string{"drift"}),
	}
	reg.MustRegister(m.movements, m.movementDuration, m.transitions, m.compensations, m.reconciliations)
	if withRuntime {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return m
}

func (m *Prometheus) ObserveMovement(kind, result string, elapsed time.Duration) {
	m.movements.WithLabelValues(kind, result).Inc()
	if result == ports.ResultOK {
		m.movementDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	}
}

func (m *Prometheus) ObserveOrderTransition(to, result string) {
	m.transitions.WithLabelValues(to, result).Inc()
}

func (m *Prometheus) ObserveCompensation(result string) {
	m.compensations.WithLabelValues(result).Inc()
}

func (m *Prometheus) ObserveReconciliation(drift bool) {
	label := "false"
	if drift {
		label = "true"
	}
	m.reconciliations.WithLabelValues(label).Inc()
}

// Registry expone el registro, útil en tests.
func (m *Prometheus) Registry() *prometheus.Registry { return m.registry }

// Handler sirve el formato de exposición de Prometheus.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
