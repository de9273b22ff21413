package repositories

import (
	"context"
	"time"

	"jammal/internal/models"

	"github.com/shopspring/decimal"
)

// CustomerFilter narrows the admin customer listing.
type CustomerFilter struct {
	Search string // substring of name or email
	Page   Page
}

// CustomerSummary is a user row with aggregated order statistics.
type CustomerSummary struct {
	models.User
	OrderCount    int             `json:"orderCount"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
	LastOrderDate *time.Time      `json:"lastOrderDate"`
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	// Upsert creates the user for user.ExternalID or refreshes its name and email.
	Upsert(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id string, role models.Role) error
	UpdateWishlist(ctx context.Context, id string, wishlist models.Wishlist) error
	ListCustomers(ctx context.Context, filter CustomerFilter) ([]CustomerSummary, int64, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	// GetWithOrders loads the user with orders (newest first) and their items.
	GetWithOrders(ctx context.Context, id string) (*models.User, error)
	// Delete removes the user; the database cascades to orders and order items.
	Delete(ctx context.Context, id string) error
}
