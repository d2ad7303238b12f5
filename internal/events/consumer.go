package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/oficinapro/workshop-service/internal/config"
	"github.com/oficinapro/workshop-service/internal/models"
)

// PaymentEventType represents the type of payment event.
type PaymentEventType string

const (
	PaymentEventConfirmed PaymentEventType = "payment.confirmed"
	PaymentEventPartial   PaymentEventType = "payment.partial"
	PaymentEventFailed    PaymentEventType = "payment.failed"
)

// PaymentEvent is emitted by the payments system when a charge settles.
type PaymentEvent struct {
	ID        string           `json:"id"`
	Type      PaymentEventType `json:"type"`
	OrderID   string           `json:"order_id"`
	Timestamp time.Time        `json:"timestamp"`
}

// PaymentStatusUpdater applies a settled payment state to an order. The
// order service implements it; the narrow interface keeps the consumer
// decoupled from order business logic.
type PaymentStatusUpdater interface {
	SetOrderPaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus) error
}

// KafkaConsumer consumes payment events and updates order payment status.
type KafkaConsumer struct {
	reader  *kafka.Reader
	updater PaymentStatusUpdater
	logger  *slog.Logger
	stopCh  chan struct{}
}

// NewKafkaConsumer creates a new Kafka-based payment event consumer.
func NewKafkaConsumer(cfg config.KafkaConfig, updater PaymentStatusUpdater, logger *slog.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.PaymentsTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	return &KafkaConsumer{
		reader:  reader,
		updater: updater,
		logger:  logger.With("component", "event-consumer"),
		stopCh:  make(chan struct{}),
	}
}

// Start begins consuming events. It blocks until ctx is cancelled or Stop is
// called.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting payment event consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("payment event consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Error("failed to read message", "error", err)
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer and closes the reader.
func (c *KafkaConsumer) Stop() {
	close(c.stopCh)
	c.reader.Close()
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	var event PaymentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("failed to decode payment event", "error", err)
		return
	}

	var status models.PaymentStatus
	switch event.Type {
	case PaymentEventConfirmed:
		status = models.PaymentStatusPaid
	case PaymentEventPartial:
		status = models.PaymentStatusPartial
	case PaymentEventFailed:
		status = models.PaymentStatusPending
	default:
		c.logger.Debug("ignoring payment event", "event_type", event.Type)
		return
	}

	if err := c.updater.SetOrderPaymentStatus(ctx, event.OrderID, status); err != nil {
		c.logger.Error("failed to apply payment status",
			"order_id", event.OrderID,
			"payment_status", status,
			"error", err,
		)
		return
	}

	c.logger.Info("payment status applied", "order_id", event.OrderID, "payment_status", status)
}
