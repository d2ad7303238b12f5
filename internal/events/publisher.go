package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/oficinapro/workshop-service/internal/config"
	"github.com/oficinapro/workshop-service/internal/models"
)

// OrderEventPublisher publishes order lifecycle events.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error
	PublishOrderCancelled(ctx context.Context, order *models.Order, reason string) error
	Close() error
}

var _ OrderEventPublisher = (*KafkaPublisher)(nil)

// EventType represents the type of order event.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderCancelled     EventType = "order.cancelled"
)

// OrderEvent is the envelope written to the orders topic, keyed by order id.
type OrderEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	OrderID   string          `json:"order_id"`
	ClientID  string          `json:"client_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// KafkaPublisher publishes order events to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger.With("component", "event-publisher"),
	}
}

// PublishOrderCreated publishes an order created event.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeOrderCreated, order, data))
}

// PublishOrderStatusChanged publishes an order status change event.
func (p *KafkaPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error {
	payload := struct {
		Order          *models.Order      `json:"order"`
		PreviousStatus models.OrderStatus `json:"previous_status"`
		NewStatus      models.OrderStatus `json:"new_status"`
	}{
		Order:          order,
		PreviousStatus: previousStatus,
		NewStatus:      order.Status,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeOrderStatusChanged, order, data))
}

// PublishOrderCancelled publishes an order cancellation event.
func (p *KafkaPublisher) PublishOrderCancelled(ctx context.Context, order *models.Order, reason string) error {
	payload := struct {
		Order  *models.Order `json:"order"`
		Reason string        `json:"reason"`
	}{
		Order:  order,
		Reason: reason,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeOrderCancelled, order, data))
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) publish(ctx context.Context, event OrderEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event",
			"event_type", event.Type,
			"order_id", event.OrderID,
			"error", err,
		)
		return err
	}

	p.logger.Debug("event published", "event_type", event.Type, "order_id", event.OrderID)
	return nil
}

func newEvent(eventType EventType, order *models.Order, data json.RawMessage) OrderEvent {
	return OrderEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		OrderID:   order.ID,
		ClientID:  order.ClientID,
		Data:      data,
		Timestamp: time.Now(),
	}
}
