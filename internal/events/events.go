package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matthieukhl/commercial-manager/internal/config"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// Order event types
const (
	OrderCreated = "created"
	OrderUpdated = "updated"
	OrderDeleted = "deleted"
)

// OrderEvent is published after an order mutation commits.
type OrderEvent struct {
	Type       string          `json:"type"`
	OrderID    int64           `json:"order_id"`
	CustomerID int64           `json:"customer_id,omitempty"`
	Status     string          `json:"status,omitempty"`
	Lines      int             `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	Occurred   time.Time       `json:"occurred"`
}

// Publisher delivers order events somewhere outside the process.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// New returns a Kafka publisher when events are enabled, a no-op otherwise.
func New(cfg config.EventsConfig) Publisher {
	if !cfg.Enabled {
		return Nop{}
	}
	return NewKafkaPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{}, // keeps one order's events on one partition
		AllowAutoTopicCreation: true,
	})
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
func (Nop) Close() error                              { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one JSON message per event, keyed by order.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a publisher over a kafka writer.
func NewKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%d", event.OrderID)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
