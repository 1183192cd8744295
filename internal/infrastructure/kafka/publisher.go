// Package kafka publica los eventos de dominio en un tópico de Kafka, protegido por un circuit breaker
// para que una caída del broker no frene el registro de movimientos.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"

	"github.com/jhoicas/wms-ledger/internal/application/ports"
	"github.com/jhoicas/wms-ledger/pkg/logger"
)

// ErrCircuitOpen el breaker está abierto; el evento se descarta sin intentar el envío.
var ErrCircuitOpen = errors.New("kafka: circuit breaker abierto")

var _ ports.EventPublisher = (*Publisher)(nil)

// messageWriter es la parte de *kafka.Writer que usa el publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config parámetros del publisher.
type Config struct {
	Brokers          []string
	Topic            string
	Source           string        // nombre de la aplicación, va en el header ce-source
	FailureThreshold uint32        // fallos consecutivos que abren el breaker
	OpenTimeout      time.Duration // tiempo abierto antes de probar de nuevo
}

// Publisher implementa ports.EventPublisher sobre kafka-go.
type Publisher struct {
	w      messageWriter
	cb     *gobreaker.CircuitBreaker
	source string
	log    *logger.Logger
}

// NewPublisher construye el writer síncrono (RequiredAcks=all) para el tópico configurado.
func NewPublisher(cfg Config, log *logger.Logger) *Publisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
	return newPublisher(w, cfg, log)
}

func newPublisher(w messageWriter, cfg Config, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	timeout := cfg.OpenTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        "kafka-publisher",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("cambio de estado del circuit breaker")
		},
	}
	return &Publisher{w: w, cb: gobreaker.NewCircuitBreaker(settings), source: cfg.Source, log: log}
}

// Publish serializa los eventos como JSON con clave = AggregateID, así los eventos de un mismo
// producto o pedido quedan en la misma partición y conservan su orden.
func (p *Publisher) Publish(ctx context.Context, events ...ports.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		body, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", e.Type, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.AggregateID),
			Value: body,
			Time:  e.OccurredAt,
			Headers: []kafka.Header{
				{Key: "ce-id", Value: []byte(e.ID)},
				{Key: "ce-type", Value: []byte(e.Type)},
				{Key: "ce-source", Value: []byte(p.source)},
				{Key: "ce-time", Value: []byte(e.OccurredAt.Format(time.RFC3339Nano))},
				{Key: "company-id", Value: []byte(e.CompanyID)},
				{Key: "content-type", Value: []byte("application/json")},
			},
		})
	}

	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.w.WriteMessages(ctx, msgs...)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	if err != nil {
		return fmt.Errorf("publish %d events: %w", len(msgs), err)
	}
	return nil
}

// Close libera el writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}
