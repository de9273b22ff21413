package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jammal/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

// List retrieves all products with their category, newest first.
func (r *GORMProductRepository) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Preload("Category").Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

var productSortColumns = map[string]string{
	"price":     "products.price",
	"name":      "products.name",
	"createdAt": "products.created_at",
}

// Search filters, sorts and paginates the catalog.
func (r *GORMProductRepository) Search(ctx context.Context, pq ProductQuery) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})

	if pq.Text != "" {
		like := "%" + pq.Text + "%"
		q = q.Where("products.name LIKE ? OR products.description LIKE ?", like, like)
	}
	if pq.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", pq.CategorySlug)
	}
	if pq.MinPrice != nil {
		q = q.Where("products.price >= ?", pq.MinPrice.InexactFloat64())
	}
	if pq.MaxPrice != nil {
		q = q.Where("products.price <= ?", pq.MaxPrice.InexactFloat64())
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	column, ok := productSortColumns[pq.SortBy]
	if !ok {
		column = productSortColumns["createdAt"]
	}
	direction := "DESC"
	if strings.EqualFold(pq.SortOrder, "asc") {
		direction = "ASC"
	}

	q = q.Preload("Category").Order(column + " " + direction)
	if pq.Page.Limit > 0 {
		q = q.Offset(pq.Page.Offset()).Limit(pq.Page.Limit)
	}

	var products []models.Product
	err := q.Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	return products, total, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return r.first(ctx, "id = ?", id)
}

// GetBySlug retrieves a single product by its slug.
func (r *GORMProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *GORMProductRepository) first(ctx context.Context, cond string, arg string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound("Product not found")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// GetByIDs retrieves the products that still exist among ids.
func (r *GORMProductRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products by IDs: %w", err)
	}
	return products, nil
}

// SlugExists reports whether slug is taken by a product other than excludeID.
func (r *GORMProductRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product slug: %w", err)
	}
	return count > 0, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Category").Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update saves every column of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", product.ID).
		Select("*").Omit("id", "created_at", "Category").Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("Product not found")
	}
	return nil
}

// Delete deletes a product by its ID. Order lines that reference it are left untouched.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("Product not found")
	}
	return nil
}

// SalesStats sums quantity and price × quantity per product over all order lines.
func (r *GORMProductRepository) SalesStats(ctx context.Context) (map[string]SalesStats, error) {
	var rows []struct {
		ProductID    string
		TotalSold    int64
		TotalRevenue float64
	}
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Select("product_id, SUM(quantity) AS total_sold, SUM(price * quantity) AS total_revenue").
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	stats := make(map[string]SalesStats, len(rows))
	for _, row := range rows {
		stats[row.ProductID] = SalesStats{
			TotalSold:    row.TotalSold,
			TotalRevenue: decimal.NewFromFloat(row.TotalRevenue).Round(2),
		}
	}
	return stats, nil
}
