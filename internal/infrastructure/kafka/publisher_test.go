package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-ledger/internal/application/ports"
)

type fakeWriter struct {
	mu    sync.Mutex
	msgs  []kafka.Message
	err   error
	calls int
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublish_ClaveEsElAgregadoYCuerpoJSON(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, Config{Source: "wms-ledger"}, nil)

	err := p.Publish(context.Background(), ports.Event{
		ID:          "e1",
		Type:        ports.EventMovementRecorded,
		CompanyID:   "c1",
		AggregateID: "p1",
		OccurredAt:  time.Now(),
		Data:        map[string]any{"quantity": 5},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "p1", string(w.msgs[0].Key))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &body))
	assert.Equal(t, ports.EventMovementRecorded, body["type"])
	assert.Equal(t, "c1", body["company_id"])
}

func TestPublish_SinEventosNoEscribe(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, Config{}, nil)

	require.NoError(t, p.Publish(context.Background()))
	assert.Equal(t, 0, w.calls)
}

func TestPublish_BreakerSeAbreTrasFallosConsecutivos(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	p := newPublisher(w, Config{FailureThreshold: 2, OpenTimeout: time.Minute}, nil)
	ev := ports.Event{ID: "e1", Type: ports.EventOrderStatusChanged, AggregateID: "o1"}

	assert.Error(t, p.Publish(context.Background(), ev))
	assert.Error(t, p.Publish(context.Background(), ev))

	err := p.Publish(context.Background(), ev)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, w.calls, "con el breaker abierto no se intenta escribir")
}
