package services

import (
	"context"
	"encoding/json"
	"errors"

	"jammal/internal/cache"
	"jammal/internal/models"
	"jammal/internal/repositories"
	"jammal/internal/storage"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultSearchLimit is the page size of catalog search.
const DefaultSearchLimit = 12

// SearchParams are the catalog search filters as received from the storefront.
type SearchParams struct {
	Query     string
	Category  string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// SearchResult is a page of matching products.
type SearchResult struct {
	Products   []models.Product `json:"products"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
	Query      string           `json:"query"`
}

// ProductAnalytics summarises sales of one product.
type ProductAnalytics struct {
	TotalSold    int64           `json:"totalSold"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// ProductWithAnalytics is a product row of the admin listing.
type ProductWithAnalytics struct {
	models.Product
	Analytics ProductAnalytics `json:"analytics"`
}

// MarshalJSON adds the analytics object to the product's own JSON.
func (p ProductWithAnalytics) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(p.Product)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	analytics, err := json.Marshal(p.Analytics)
	if err != nil {
		return nil, err
	}
	fields["analytics"] = analytics
	return json.Marshal(fields)
}

// ProductInput is an admin create or update of a product.
type ProductInput struct {
	Name           string
	Slug           string
	Description    string
	Price          *decimal.Decimal
	Discount       float64
	Stock          int
	CategoryID     string
	IsFeatured     bool
	IsBestSeller   bool
	Sizes          []string
	ExistingImages []string
	Uploads        []storage.Upload
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
	images     storage.ImageStore
	cache      cache.Cache
	logger     zerolog.Logger
}

// NewProductService creates a new ProductService. A nil cache disables caching.
func NewProductService(
	repo repositories.ProductRepository,
	categories repositories.CategoryRepository,
	images storage.ImageStore,
	c cache.Cache,
	logger zerolog.Logger,
) *ProductService {
	if c == nil {
		c = cache.Noop{}
	}
	if images == nil {
		images = storage.InlineStore{}
	}
	return &ProductService{
		repo:       repo,
		categories: categories,
		images:     images,
		cache:      c,
		logger:     logger.With().Str("service", "products").Logger(),
	}
}

// Search filters and pages the catalog.
func (s *ProductService) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	page := repositories.Page{Page: params.Page, Limit: params.Limit}
	if page.Limit < 1 {
		page.Limit = DefaultSearchLimit
	}
	page = page.Normalize()

	if params.MinPrice != nil && params.MaxPrice != nil && params.MinPrice.GreaterThan(*params.MaxPrice) {
		return nil, models.Validation("minPrice must not exceed maxPrice")
	}

	products, total, err := s.repo.Search(ctx, repositories.ProductQuery{
		Text:         params.Query,
		CategorySlug: params.Category,
		MinPrice:     params.MinPrice,
		MaxPrice:     params.MaxPrice,
		SortBy:       params.SortBy,
		SortOrder:    params.SortOrder,
		Page:         page,
	})
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Products:   products,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(total),
		Query:      params.Query,
	}, nil
}

// GetProductBySlug returns a product for the storefront, from cache when possible.
func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	key := cache.ProductSlugKey(slug)

	var cached models.Product
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn().Err(err).Str("slug", slug).Msg("product cache read failed")
	}

	product, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, product); err != nil {
		s.logger.Warn().Err(err).Str("slug", slug).Msg("product cache write failed")
	}
	return product, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListWithAnalytics returns every product, newest first, with sales totals.
func (s *ProductService) ListWithAnalytics(ctx context.Context) ([]ProductWithAnalytics, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.SalesStats(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ProductWithAnalytics, len(products))
	for i, p := range products {
		st := stats[p.ID]
		out[i] = ProductWithAnalytics{
			Product: p,
			Analytics: ProductAnalytics{
				TotalSold:    st.TotalSold,
				TotalRevenue: st.TotalRevenue.Round(2),
			},
		}
	}
	return out, nil
}

// CreateProduct validates input, stores uploaded images and creates the product.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := s.checkInput(ctx, in, ""); err != nil {
		return nil, err
	}

	images, err := s.storeImages(ctx, in)
	if err != nil {
		return nil, err
	}

	product := &models.Product{}
	applyInput(product, in, images)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().Str("product_id", product.ID).Str("slug", product.Slug).Msg("product created")
	return s.repo.GetByID(ctx, product.ID)
}

// UpdateProduct replaces the product's fields. The image list becomes
// ExistingImages followed by the newly uploaded images.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkInput(ctx, in, id); err != nil {
		return nil, err
	}

	images, err := s.storeImages(ctx, in)
	if err != nil {
		return nil, err
	}

	oldSlug := product.Slug
	applyInput(product, in, images)
	product.Category = nil
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, oldSlug, product.Slug)

	s.logger.Info().Str("product_id", id).Msg("product updated")
	return s.repo.GetByID(ctx, id)
}

// DeleteProduct deletes a product. Order lines referencing it are kept.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, product.Slug)

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

func (s *ProductService) checkInput(ctx context.Context, in ProductInput, excludeID string) error {
	if in.Name == "" || in.Slug == "" || in.CategoryID == "" || in.Price == nil {
		return models.Validation("Missing required fields")
	}
	if in.Price.IsNegative() {
		return models.Validation("Price must not be negative")
	}
	if in.Discount < 0 || in.Discount > 100 {
		return models.Validation("Discount must be between 0 and 100")
	}
	if in.Stock < 0 {
		return models.Validation("Stock must not be negative")
	}

	taken, err := s.repo.SlugExists(ctx, in.Slug, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return models.Validation("Slug already exists")
	}

	if _, err := s.categories.GetByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Validation("Category not found")
		}
		return err
	}
	return nil
}

// storeImages keeps ExistingImages and appends a URL per upload. Any failed
// upload aborts the whole request.
func (s *ProductService) storeImages(ctx context.Context, in ProductInput) (models.ImageList, error) {
	images := make(models.ImageList, 0, len(in.ExistingImages)+len(in.Uploads))
	images = append(images, in.ExistingImages...)

	for _, upload := range in.Uploads {
		if len(upload.Data) == 0 {
			continue
		}
		url, err := s.images.Store(ctx, upload)
		if err != nil {
			return nil, err
		}
		images = append(images, url)
	}
	return images, nil
}

func applyInput(p *models.Product, in ProductInput, images models.ImageList) {
	p.Name = in.Name
	p.Slug = in.Slug
	p.Description = in.Description
	p.Price = *in.Price
	p.Discount = in.Discount
	p.Stock = in.Stock
	p.CategoryID = in.CategoryID
	p.IsFeatured = in.IsFeatured
	p.IsBestSeller = in.IsBestSeller
	p.Images = images.Encode()
	if len(in.Sizes) > 0 {
		raw, _ := json.Marshal(models.ProductVariants{Sizes: in.Sizes})
		variants := string(raw)
		p.Variants = &variants
	} else {
		p.Variants = nil
	}
}

func (s *ProductService) invalidate(ctx context.Context, slugs ...string) {
	keys := make([]string, len(slugs))
	for i, slug := range slugs {
		keys[i] = cache.ProductSlugKey(slug)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate product cache")
	}
}
