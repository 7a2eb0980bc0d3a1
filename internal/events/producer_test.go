package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestProducer_PublishAndFlush(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 8, "storefront-api", zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	err := p.Publish(WithTraceID(context.Background(), "trace-1"), TopicPaymentVerified, "order-1",
		PaymentVerifiedPayload{OrderID: "order-1", Reference: "order-1.a", Amount: 3600000, Currency: "XOF"})
	require.NoError(t, err)

	cancel()
	p.WaitClosed()

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.msgs, 1)
	assert.True(t, w.closed)
	assert.Equal(t, "order-1", string(w.msgs[0].Key))

	var env Envelope
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &env))
	assert.Equal(t, TopicPaymentVerified, env.EventType)
	assert.Equal(t, "storefront-api", env.Producer)
	assert.Equal(t, "trace-1", env.TraceID)
	assert.Equal(t, 1, env.EventVersion)

	var payload PaymentVerifiedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, int64(3600000), payload.Amount)
}

func TestProducer_BufferFull(t *testing.T) {
	p := newProducer(&fakeWriter{}, 1, "svc", zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), TopicOrderPlaced, "o1", OrderPlacedPayload{OrderID: "o1"}))
	err := p.Publish(context.Background(), TopicOrderPlaced, "o2", OrderPlacedPayload{OrderID: "o2"})

	assert.ErrorIs(t, err, ErrBufferFull)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}

	require.NoError(t, r.Publish(context.Background(), TopicOrderPlaced, "o1", OrderPlacedPayload{OrderID: "o1"}))
	require.NoError(t, r.Publish(context.Background(), TopicReconciliationGap, "o1", ReconciliationGapPayload{OrderID: "o1"}))

	assert.Equal(t, []string{TopicOrderPlaced, TopicReconciliationGap}, r.Types())
}
