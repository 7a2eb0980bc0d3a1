// Package events publishes order and payment facts for downstream consumers
// (fulfilment, support tooling). Publishing never blocks a request path.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TopicOrderPlaced       = "order.placed"
	TopicPaymentVerified   = "payment.verified"
	TopicReconciliationGap = "payment.reconciliation_gap"
	envelopeVersion        = 1
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID       string `json:"order_id"`
	UserID        string `json:"user_id,omitempty"`
	PaymentMethod string `json:"payment_method"`
	TotalAmount   int64  `json:"total_amount"`
	ItemCount     int    `json:"item_count"`
}

type PaymentVerifiedPayload struct {
	OrderID   string `json:"order_id"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// ReconciliationGapPayload records money that moved without the order
// reflecting it. Support reconciles these by reference.
type ReconciliationGapPayload struct {
	OrderID     string `json:"order_id"`
	Reference   string `json:"reference"`
	Amount      int64  `json:"amount"`
	OrderStatus string `json:"order_status"`
	Reason      string `json:"reason"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, correlationID string, payload any) error
}

// NewEnvelope wraps payload; correlationID is the order id so every event of
// one order lands on the same partition.
func NewEnvelope(producer, eventType, correlationID string, payload any, now time.Time) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  envelopeVersion,
		OccurredAt:    now.UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

type traceKey struct{}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

func TraceID(ctx context.Context) string {
	s, _ := ctx.Value(traceKey{}).(string)
	return s
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }

// Recorder keeps published envelopes in memory.
type Recorder struct {
	Events []Envelope
	Err    error
}

func (r *Recorder) Publish(ctx context.Context, eventType string, correlationID string, payload any) error {
	if r.Err != nil {
		return r.Err
	}
	env, err := NewEnvelope("test", eventType, correlationID, payload, time.Now())
	if err != nil {
		return err
	}
	env.TraceID = TraceID(ctx)
	r.Events = append(r.Events, env)
	return nil
}

func (r *Recorder) Types() []string {
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.EventType
	}
	return out
}
