package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var ErrBufferFull = errors.New("event buffer full")

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer drains a buffered channel into Kafka from one goroutine.
type Producer struct {
	w       writer
	inbox   chan kafka.Message
	closeCh chan struct{}
	service string
	logger  *zap.Logger
	now     func() time.Time
}

func NewProducer(brokers []string, topic string, buf int, service string, logger *zap.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return newProducer(w, buf, service, logger)
}

func newProducer(w writer, buf int, service string, logger *zap.Logger) *Producer {
	if buf <= 0 {
		buf = 1
	}
	return &Producer{
		w:       w,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		service: service,
		logger:  logger,
		now:     time.Now,
	}
}

// Start runs the drain loop until ctx is cancelled, then flushes what is
// buffered and closes the writer.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.flush()
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) flush() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			if err := p.w.Close(); err != nil {
				p.logger.Warn("closing kafka writer", zap.Error(err))
			}
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("key", string(m.Key)),
			zap.ByteString("value", m.Value),
			zap.Error(err),
		)
	}
}

// Publish enqueues an event without blocking. A full buffer drops the event
// and reports ErrBufferFull.
func (p *Producer) Publish(ctx context.Context, eventType string, correlationID string, payload any) error {
	env, err := NewEnvelope(p.service, eventType, correlationID, payload, p.now())
	if err != nil {
		return err
	}
	env.TraceID = TraceID(ctx)

	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(correlationID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	select {
	case p.inbox <- msg:
		return nil
	default:
		p.logger.Error("event dropped", zap.String("event_type", eventType), zap.String("correlation_id", correlationID))
		return ErrBufferFull
	}
}

// WaitClosed blocks until the drain loop has exited.
func (p *Producer) WaitClosed() { <-p.closeCh }
