package services

import (
	"context"
	"fmt"

	"jammal/internal/models"
	"jammal/internal/repositories"

	"github.com/rs/zerolog"
)

// Pagination describes a page of an admin listing.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// CustomerPage is a page of customers with their order statistics.
type CustomerPage struct {
	Customers  []repositories.CustomerSummary `json:"customers"`
	Pagination Pagination                     `json:"pagination"`
}

// CustomerDetail is a customer with their orders, newest first.
type CustomerDetail struct {
	*models.User
	Orders []models.OrderView `json:"orders"`
}

// CustomerService backs the admin customer screens.
type CustomerService struct {
	users    repositories.UserRepository
	products repositories.ProductRepository
	logger   zerolog.Logger
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(users repositories.UserRepository, products repositories.ProductRepository, logger zerolog.Logger) *CustomerService {
	return &CustomerService{
		users:    users,
		products: products,
		logger:   logger.With().Str("service", "customers").Logger(),
	}
}

// ListCustomers pages through users matching search on name or email.
func (s *CustomerService) ListCustomers(ctx context.Context, search string, page repositories.Page) (*CustomerPage, error) {
	page = page.Normalize()
	customers, total, err := s.users.ListCustomers(ctx, repositories.CustomerFilter{Search: search, Page: page})
	if err != nil {
		return nil, err
	}
	return &CustomerPage{
		Customers: customers,
		Pagination: Pagination{
			Total: total,
			Page:  page.Page,
			Limit: page.Limit,
			Pages: page.TotalPages(total),
		},
	}, nil
}

// GetCustomer returns a customer with orders, order items and their products.
func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*CustomerDetail, error) {
	user, err := s.users.GetWithOrders(ctx, id)
	if err != nil {
		if models.KindOf(err) == models.KindNotFound {
			return nil, models.NotFound("Customer not found")
		}
		return nil, err
	}

	orders := user.Orders
	user.Orders = nil
	ptrs := make([]*models.Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	if err := attachProducts(ctx, s.products, ptrs...); err != nil {
		return nil, err
	}

	views := make([]models.OrderView, len(orders))
	for i := range orders {
		views[i] = models.NewOrderView(&orders[i])
	}
	return &CustomerDetail{User: user, Orders: views}, nil
}

// DeleteCustomer deletes a customer together with their orders.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer %s: %w", id, err)
	}
	s.logger.Info().Str("customer_id", id).Msg("customer deleted with their orders")
	return nil
}
