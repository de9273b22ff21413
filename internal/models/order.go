package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the wire-level fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusOnTheWay   OrderStatus = "ON_THE_WAY"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lists every legal status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusOnTheWay,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// OrderTransitions maps a target status to the statuses it may be entered from.
// It is only consulted when transition enforcement is switched on; by default
// an administrator may overwrite the status with any legal value.
var OrderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {},
	OrderStatusConfirmed:  {OrderStatusPending},
	OrderStatusProcessing: {OrderStatusPending, OrderStatusConfirmed},
	OrderStatusOnTheWay:   {OrderStatusConfirmed, OrderStatusProcessing},
	OrderStatusDelivered:  {OrderStatusOnTheWay},
	OrderStatusCancelled:  {OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing},
}

// ParseOrderStatus returns the status named by s, or false if s is not one of OrderStatuses.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// CanTransitionTo reports whether OrderTransitions allows moving from s to next.
// Re-applying the current status is always allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, from := range OrderTransitions[next] {
		if from == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// OrderItem represents a single line within an order.
type OrderItem struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string          `json:"orderId" gorm:"type:varchar(36);index;not null"`
	ProductID string          `json:"productId" gorm:"type:varchar(36);index;not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"` // Price at the time of order
	Variant   string          `json:"variant,omitempty" gorm:"type:varchar(64)"`

	// Product is loaded separately; there is no foreign key so deleting a
	// product leaves historical lines pointing at a missing row.
	Product *Product `json:"product,omitempty" gorm:"-"`
}

// LineTotal returns price × quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a customer order.
type Order struct {
	ID                    string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID                *string         `json:"userId" gorm:"type:varchar(36);index"`
	Items                 []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Total                 decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Status                OrderStatus     `json:"status" gorm:"type:varchar(20);index;not null"`
	Address               string          `json:"-" gorm:"type:text;not null"`
	EstimatedDeliveryDate *time.Time      `json:"estimatedDeliveryDate"`
	PaymentOrderID        *string         `json:"paymentOrderId,omitempty" gorm:"type:varchar(64);index"`
	PaymentID             *string         `json:"paymentId,omitempty" gorm:"type:varchar(64)"`
	PaidAt                *time.Time      `json:"paidAt,omitempty"`
	CreatedAt             time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// ShippingAddress decodes the stored address, falling back to an empty one.
func (o *Order) ShippingAddress() ShippingAddress {
	return ParseShippingAddress(o.Address)
}

// ItemsTotal returns the sum of price × quantity over the order's lines.
func (o *Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// OrderView is the JSON shape returned to clients: the order with its address decoded.
type OrderView struct {
	*Order
	ShippingAddress ShippingAddress `json:"address"`
}

// NewOrderView wraps o for rendering.
func NewOrderView(o *Order) OrderView {
	return OrderView{Order: o, ShippingAddress: o.ShippingAddress()}
}
