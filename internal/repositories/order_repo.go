package repositories

import (
	"context"
	"time"

	"jammal/internal/models"
)

// OrderFilter narrows an order listing. A zero Page.Limit returns every match.
type OrderFilter struct {
	UserID string
	Status models.OrderStatus
	Page   Page
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create stores the order and its items together.
	Create(ctx context.Context, order *models.Order) error
	// GetByID returns the order with its items. Item products are not loaded.
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByPaymentOrderID(ctx context.Context, paymentOrderID string) (*models.Order, error)
	// List returns matching orders newest first, with items, plus the total match count.
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	// UpdateStatus overwrites the status and, when eta is non-nil, the estimated delivery date.
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, eta *time.Time) (*models.Order, error)
	// SetPaymentOrderID links the order to the processor order created for it.
	SetPaymentOrderID(ctx context.Context, id, paymentOrderID string) error
	RecordPayment(ctx context.Context, id, paymentID string, paidAt time.Time) error
}
