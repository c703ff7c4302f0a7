package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/internity/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
)

// CheckoutCompleted is emitted after a simulated checkout finishes. Consumers
// (fulfillment, analytics) are external; delivery is fire-and-forget.
type CheckoutCompleted struct {
	OrderID     string    `json:"order_id"`
	SessionID   string    `json:"session_id"`
	TotalAmount float64   `json:"total_amount"`
	ItemCount   int       `json:"item_count"`
	CompletedAt time.Time `json:"completed_at"`
}

type Publisher interface {
	PublishCheckoutCompleted(ctx context.Context, order domain.Order) error
	Close() error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        "checkout-completed",
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) PublishCheckoutCompleted(ctx context.Context, order domain.Order) error {
	event := CheckoutCompleted{
		OrderID:     order.ID,
		SessionID:   order.SessionID,
		TotalAmount: order.Snapshot.Total,
		ItemCount:   len(order.Snapshot.Items),
		CompletedAt: order.PlacedAt,
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.SessionID),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish checkout event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishCheckoutCompleted(context.Context, domain.Order) error { return nil }

func (NoopPublisher) Close() error { return nil }
