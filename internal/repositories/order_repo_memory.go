package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"jammal/internal/models"

	"github.com/google/uuid"
)

// MemoryOrderRepository is an in-memory implementation of OrderRepository.
type MemoryOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMemoryOrderRepository creates a new instance of MemoryOrderRepository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// Create adds a new order.
func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = copyOrder(*order)
	return nil
}

// GetByID returns an order by its ID.
func (r *MemoryOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, models.NotFound("Order not found")
	}
	out := copyOrder(order)
	return &out, nil
}

// GetByPaymentOrderID returns the order linked to a processor order.
func (r *MemoryOrderRepository) GetByPaymentOrderID(_ context.Context, paymentOrderID string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.PaymentOrderID != nil && *order.PaymentOrderID == paymentOrderID {
			out := copyOrder(order)
			return &out, nil
		}
	}
	return nil, models.NotFound("Order not found")
}

// List returns matching orders newest first.
func (r *MemoryOrderRepository) List(_ context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.UserID != "" && (order.UserID == nil || *order.UserID != filter.UserID) {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		matched = append(matched, copyOrder(order))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filter.Page.Limit > 0 {
		start := filter.Page.Offset()
		if start > len(matched) {
			start = len(matched)
		}
		end := start + filter.Page.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

// UpdateStatus updates the status of an order.
func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, id string, status models.OrderStatus, eta *time.Time) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, models.NotFound("Order not found")
	}
	order.Status = status
	if eta != nil {
		d := *eta
		order.EstimatedDeliveryDate = &d
	}
	order.UpdatedAt = time.Now()
	r.orders[id] = order

	out := copyOrder(order)
	return &out, nil
}

// SetPaymentOrderID links the order to a processor order.
func (r *MemoryOrderRepository) SetPaymentOrderID(_ context.Context, id, paymentOrderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return models.NotFound("Order not found")
	}
	order.PaymentOrderID = &paymentOrderID
	r.orders[id] = order
	return nil
}

// RecordPayment stores the payment reference on the order.
func (r *MemoryOrderRepository) RecordPayment(_ context.Context, id, paymentID string, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return models.NotFound("Order not found")
	}
	order.PaymentID = &paymentID
	order.PaidAt = &paidAt
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

func copyOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}
