package repositories

import (
	"context"

	"jammal/internal/models"

	"github.com/shopspring/decimal"
)

// ProductQuery describes a catalog search. Nil price bounds are open.
type ProductQuery struct {
	Text         string
	CategorySlug string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	SortBy       string // price, name or createdAt
	SortOrder    string // asc or desc
	Page         Page
}

// SalesStats aggregates order lines for one product.
type SalesStats struct {
	TotalSold    int64
	TotalRevenue decimal.Decimal
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	Search(ctx context.Context, q ProductQuery) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	// SlugExists reports whether another product (not excludeID) already uses slug.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	// SalesStats returns per-product totals over all order lines, keyed by product id.
	SalesStats(ctx context.Context) (map[string]SalesStats, error)
}
