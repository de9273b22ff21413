package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jammal/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create inserts the order and its items in one nested create.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves an order and its items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound("Order not found")
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByPaymentOrderID retrieves the order created for a processor order.
func (r *GORMOrderRepository) GetByPaymentOrderID(ctx context.Context, paymentOrderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "payment_order_id = ?", paymentOrderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound("Order not found")
		}
		return nil, fmt.Errorf("failed to get order by payment order %s: %w", paymentOrderID, err)
	}
	return &order, nil
}

// List returns orders matching filter, newest first.
func (r *GORMOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	q = q.Preload("Items").Order("created_at DESC")
	if filter.Page.Limit > 0 {
		q = q.Offset(filter.Page.Offset()).Limit(filter.Page.Limit)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus overwrites the status field. Concurrent updates are last-write-wins.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, eta *time.Time) (*models.Order, error) {
	updates := map[string]interface{}{"status": status}
	if eta != nil {
		updates["estimated_delivery_date"] = *eta
	}

	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NotFound("Order not found")
	}
	return r.GetByID(ctx, id)
}

// SetPaymentOrderID stores the processor order id on the order.
func (r *GORMOrderRepository) SetPaymentOrderID(ctx context.Context, id, paymentOrderID string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("payment_order_id", paymentOrderID)
	if res.Error != nil {
		return fmt.Errorf("failed to set payment order id: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("Order not found")
	}
	return nil
}

// RecordPayment stores the processor payment reference on the order.
func (r *GORMOrderRepository) RecordPayment(ctx context.Context, id, paymentID string, paidAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"payment_id": paymentID, "paid_at": paidAt})
	if res.Error != nil {
		return fmt.Errorf("failed to record payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("Order not found")
	}
	return nil
}
