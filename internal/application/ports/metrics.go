package ports

import "time"

// Resultados usados como etiqueta en métricas.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics puerto de métricas del motor (Prometheus en infraestructura).
type Metrics interface {
	ObserveMovement(kind, result string, elapsed time.Duration)
	ObserveOrderTransition(to, result string)
	ObserveCompensation(result string)
	ObserveReconciliation(drift bool)
}

// NopMetrics implementación vacía para tests y arranques sin métricas.
type NopMetrics struct{}

func (NopMetrics) ObserveMovement(string, string, time.Duration) {}
func (NopMetrics) ObserveOrderTransition(string, string)         {}
func (NopMetrics) ObserveCompensation(string)                    {}
func (NopMetrics) ObserveReconciliation(bool)                    {}
