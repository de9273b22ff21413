package services

import (
	"context"
	"time"

	"jammal/internal/models"
	"jammal/internal/repositories"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ExportStatistics summarises an export.
type ExportStatistics struct {
	TotalProducts   int             `json:"totalProducts"`
	TotalCategories int             `json:"totalCategories"`
	TotalOrders     int             `json:"totalOrders"`
	TotalOrderItems int             `json:"totalOrderItems"`
	TotalCustomers  int             `json:"totalCustomers"`
	TotalReviews    int             `json:"totalReviews"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
}

// ExportData holds every exported record set.
type ExportData struct {
	Products   []models.Product   `json:"products"`
	Categories []models.Category  `json:"categories"`
	Orders     []models.OrderView `json:"orders"`
	Customers  []models.User      `json:"customers"`
	Reviews    []models.Review    `json:"reviews"`
}

// Export is the admin data dump.
type Export struct {
	ExportDate time.Time        `json:"exportDate"`
	Statistics ExportStatistics `json:"statistics"`
	Data       ExportData       `json:"data"`
}

// Filename is the attachment name for the export, dated by its export day.
func (e *Export) Filename() string {
	return "jammal-perfume-data-" + e.ExportDate.Format("2006-01-02") + ".json"
}

// ExportService builds full data exports for administrators.
type ExportService struct {
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
	orders     repositories.OrderRepository
	users      repositories.UserRepository
	reviews    repositories.ReviewRepository
	now        func() time.Time
	logger     zerolog.Logger
}

// NewExportService creates a new ExportService.
func NewExportService(
	products repositories.ProductRepository,
	categories repositories.CategoryRepository,
	orders repositories.OrderRepository,
	users repositories.UserRepository,
	reviews repositories.ReviewRepository,
	logger zerolog.Logger,
) *ExportService {
	return &ExportService{
		products:   products,
		categories: categories,
		orders:     orders,
		users:      users,
		reviews:    reviews,
		now:        time.Now,
		logger:     logger.With().Str("service", "export").Logger(),
	}
}

// BuildExport loads products, categories, orders with items, customers
// (role USER) and reviews.
func (s *ExportService) BuildExport(ctx context.Context) (*Export, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	orders, _, err := s.orders.List(ctx, repositories.OrderFilter{})
	if err != nil {
		return nil, err
	}
	customers, err := s.users.ListByRole(ctx, models.RoleUser)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.List(ctx)
	if err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	itemCount := 0
	views := make([]models.OrderView, len(orders))
	for i := range orders {
		revenue = revenue.Add(orders[i].Total)
		itemCount += len(orders[i].Items)
		views[i] = models.NewOrderView(&orders[i])
	}

	export := &Export{
		ExportDate: s.now().UTC(),
		Statistics: ExportStatistics{
			TotalProducts:   len(products),
			TotalCategories: len(categories),
			TotalOrders:     len(orders),
			TotalOrderItems: itemCount,
			TotalCustomers:  len(customers),
			TotalReviews:    len(reviews),
			TotalRevenue:    revenue,
		},
		Data: ExportData{
			Products:   products,
			Categories: categories,
			Orders:     views,
			Customers:  customers,
			Reviews:    reviews,
		},
	}

	s.logger.Info().Int("orders", len(orders)).Int("products", len(products)).Msg("data export built")
	return export, nil
}
