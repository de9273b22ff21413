package services

import (
	"time"

	"jammal/pkg/rabbitmq"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// EventPublisher publishes domain events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	PublishEvent(routingKey string, payload interface{}) error
}

// OrderEvent is the body of order.created and order.status_changed.
type OrderEvent struct {
	OrderID        string          `json:"orderId"`
	UserID         *string         `json:"userId"`
	Status         string          `json:"status"`
	PreviousStatus string          `json:"previousStatus,omitempty"`
	Total          decimal.Decimal `json:"total"`
	OccurredAt     time.Time       `json:"occurredAt"`
}

// PaymentEvent is the body of payment.verified.
type PaymentEvent struct {
	OrderID        string    `json:"orderId"`
	PaymentOrderID string    `json:"paymentOrderId"`
	PaymentID      string    `json:"paymentId"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// publish sends an event if a publisher is configured. Failures are logged and
// never returned: the database write has already happened.
func publish(events EventPublisher, logger zerolog.Logger, routingKey string, payload interface{}) {
	if events == nil {
		logger.Debug().Str("routing_key", routingKey).Msg("event publisher not configured, skipping")
		return
	}
	if err := events.PublishEvent(routingKey, payload); err != nil {
		logger.Warn().Err(err).Str("routing_key", routingKey).Msg("failed to publish event")
	}
}

var _ EventPublisher = (*rabbitmq.Client)(nil)
