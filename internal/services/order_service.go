package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jammal/internal/cart"
	"jammal/internal/metrics"
	"jammal/internal/models"
	"jammal/internal/payment"
	"jammal/internal/repositories"
	"jammal/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProcessorGateway creates payable orders at the payment processor.
type ProcessorGateway interface {
	CreateOrder(ctx context.Context, amount int64, receipt string) (*payment.ProcessorOrder, error)
}

// CheckoutRequest is the body of a checkout: the cart lines, the amount in
// minor units and where to ship.
type CheckoutRequest struct {
	Amount  int64                  `json:"amount" validate:"gt=0"`
	Items   []cart.Item            `json:"items" validate:"required,min=1,dive"`
	Address models.ShippingAddress `json:"address"`
}

// CheckoutResult is returned to the storefront after an order is placed.
// OrderID is the processor order id, nil in demo mode.
type CheckoutResult struct {
	OrderID   *string `json:"orderId"`
	DBOrderID string  `json:"dbOrderId"`
	Demo      bool    `json:"demo,omitempty"`
}

// OrderPolicy holds the order lifecycle switches.
type OrderPolicy struct {
	// EnforceTransitions rejects status moves not listed in models.OrderTransitions.
	EnforceTransitions bool
	// VerifyTotal requires the line sum to equal the submitted amount.
	VerifyTotal bool
}

// OrderPage is a page of orders.
type OrderPage struct {
	Orders     []models.OrderView `json:"orders"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"totalPages"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	guard       *AdminGuard
	gateway     ProcessorGateway
	events      EventPublisher
	policy      OrderPolicy
	logger      zerolog.Logger
}

// NewOrderService creates a new OrderService. gateway and events may be nil:
// without a gateway checkout runs in demo mode, without events nothing is published.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	gateway ProcessorGateway,
	events EventPublisher,
	policy OrderPolicy,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		guard:       NewAdminGuard(userRepo),
		gateway:     gateway,
		events:      events,
		policy:      policy,
		logger:      logger.With().Str("service", "orders").Logger(),
	}
}

// CreateOrder persists a PENDING order for the submitted cart lines and, when a
// processor is configured, registers it for payment. id is nil for guests.
func (s *OrderService) CreateOrder(ctx context.Context, id *Identity, req CheckoutRequest) (*CheckoutResult, error) {
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	total := decimal.New(req.Amount, -2)
	if s.policy.VerifyTotal {
		lines := cart.Cart{Items: req.Items}
		if sum := lines.Total(); !sum.Equal(total) {
			return nil, models.Validation("Order total %s does not match items total %s", total.StringFixed(2), sum.StringFixed(2))
		}
	}

	userID, err := s.resolveUserID(ctx, id)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, models.OrderItem{
			ProductID: line.ID,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Variant:   line.Variant,
		})
	}

	order := &models.Order{
		ID:      uuid.New().String(),
		UserID:  userID,
		Items:   items,
		Total:   total,
		Status:  models.OrderStatusPending,
		Address: req.Address.Encode(),
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}
	metrics.OrdersCreated.Inc()

	s.logger.Info().Str("order_id", order.ID).Str("total", total.StringFixed(2)).Int("items", len(items)).Msg("order created")
	publish(s.events, s.logger, rabbitmq.RoutingOrderCreated, OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     string(order.Status),
		Total:      order.Total,
		OccurredAt: time.Now().UTC(),
	})

	if s.gateway == nil {
		return &CheckoutResult{DBOrderID: order.ID, Demo: true}, nil
	}

	processorOrder, err := s.gateway.CreateOrder(ctx, req.Amount, order.ID)
	if err != nil {
		// the PENDING row stays behind for the admin to reconcile
		return nil, err
	}
	if err := s.orderRepo.SetPaymentOrderID(ctx, order.ID, processorOrder.ID); err != nil {
		return nil, fmt.Errorf("failed to link processor order: %w", err)
	}
	return &CheckoutResult{OrderID: &processorOrder.ID, DBOrderID: order.ID}, nil
}

func validateCheckout(req CheckoutRequest) error {
	if len(req.Items) == 0 {
		return models.Validation("Order must contain at least one item")
	}
	if req.Amount <= 0 {
		return models.Validation("Amount must be positive")
	}
	for _, line := range req.Items {
		if line.ID == "" {
			return models.Validation("Every item needs a product id")
		}
		if line.Quantity < 1 {
			return models.Validation("Quantity must be at least 1")
		}
		if line.Price.IsNegative() {
			return models.Validation("Price must not be negative")
		}
	}
	return nil
}

// resolveUserID maps the caller to a local user id. Callers without a user row
// check out as guests.
func (s *OrderService) resolveUserID(ctx context.Context, id *Identity) (*string, error) {
	if id == nil {
		return nil, nil
	}
	user, err := s.userRepo.GetByExternalID(ctx, id.ExternalID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}
	return &user.ID, nil
}

// GetOrder returns an order with its items and their products.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := attachProducts(ctx, s.productRepo, order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrderStatus sets an order's status. Only administrators may call it.
// eta accepts RFC 3339 or YYYY-MM-DD; empty leaves the date unchanged.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, caller *Identity, id, status, eta string) (*models.Order, error) {
	if _, err := s.guard.RequireAdmin(ctx, caller); err != nil {
		return nil, err
	}

	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, models.Validation("Invalid status: %s", status)
	}

	var etaTime *time.Time
	if eta != "" {
		t, err := parseDate(eta)
		if err != nil {
			return nil, models.Validation("Invalid estimatedDeliveryDate: %s", eta)
		}
		etaTime = &t
	}

	current, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.policy.EnforceTransitions && !current.Status.CanTransitionTo(next) {
		return nil, models.Validation("Cannot move order from %s to %s", current.Status, next)
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, id, next, etaTime)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	metrics.OrderStatusUpdates.WithLabelValues(string(next)).Inc()

	s.logger.Info().Str("order_id", id).Str("from", string(current.Status)).Str("to", string(next)).Msg("order status updated")
	publish(s.events, s.logger, rabbitmq.RoutingOrderStatusChanged, OrderEvent{
		OrderID:        updated.ID,
		UserID:         updated.UserID,
		Status:         string(updated.Status),
		PreviousStatus: string(current.Status),
		Total:          updated.Total,
		OccurredAt:     time.Now().UTC(),
	})

	if err := attachProducts(ctx, s.productRepo, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// ListMyOrders returns the caller's orders, newest first. A caller without a
// user record has no orders.
func (s *OrderService) ListMyOrders(ctx context.Context, id *Identity, page repositories.Page) (*OrderPage, error) {
	if id == nil {
		return nil, models.NewAppError(models.KindUnauthorized, "Unauthorized")
	}
	page = page.Normalize()

	user, err := s.userRepo.GetByExternalID(ctx, id.ExternalID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return &OrderPage{Orders: []models.OrderView{}, Page: page.Page, Limit: page.Limit}, nil
		}
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	return s.list(ctx, repositories.OrderFilter{UserID: user.ID, Page: page})
}

// ListAllOrders returns every order, optionally filtered by status. Admin only.
func (s *OrderService) ListAllOrders(ctx context.Context, caller *Identity, status string, page repositories.Page) (*OrderPage, error) {
	if _, err := s.guard.RequireAdmin(ctx, caller); err != nil {
		return nil, err
	}

	filter := repositories.OrderFilter{Page: page.Normalize()}
	if status != "" {
		st, ok := models.ParseOrderStatus(status)
		if !ok {
			return nil, models.Validation("Invalid status: %s", status)
		}
		filter.Status = st
	}
	return s.list(ctx, filter)
}

func (s *OrderService) list(ctx context.Context, filter repositories.OrderFilter) (*OrderPage, error) {
	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ptrs := make([]*models.Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	if err := attachProducts(ctx, s.productRepo, ptrs...); err != nil {
		return nil, err
	}

	views := make([]models.OrderView, len(orders))
	for i := range orders {
		views[i] = models.NewOrderView(&orders[i])
	}
	return &OrderPage{
		Orders:     views,
		Total:      total,
		Page:       filter.Page.Page,
		Limit:      filter.Page.Limit,
		TotalPages: filter.Page.TotalPages(total),
	}, nil
}

// attachProducts loads the product of every order line. Lines whose product
// has been deleted keep a nil Product.
func attachProducts(ctx context.Context, products repositories.ProductRepository, orders ...*models.Order) error {
	seen := make(map[string]bool)
	var ids []string
	for _, o := range orders {
		for _, item := range o.Items {
			if !seen[item.ProductID] {
				seen[item.ProductID] = true
				ids = append(ids, item.ProductID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	found, err := products.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load order products: %w", err)
	}
	byID := make(map[string]*models.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	for _, o := range orders {
		for i := range o.Items {
			o.Items[i].Product = byID[o.Items[i].ProductID]
		}
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}
