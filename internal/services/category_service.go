package services

import (
	"context"
	"errors"

	"jammal/internal/cache"
	"jammal/internal/models"
	"jammal/internal/repositories"

	"github.com/rs/zerolog"
)

// CategoryInput is an admin create or update of a category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Slug        string `json:"slug" validate:"required,max=120"`
	Description string `json:"description" validate:"max=1000"`
}

// CategoryService handles business logic related to categories.
type CategoryService struct {
	repo   repositories.CategoryRepository
	cache  cache.Cache
	logger zerolog.Logger
}

// NewCategoryService creates a new CategoryService. A nil cache disables caching.
func NewCategoryService(repo repositories.CategoryRepository, c cache.Cache, logger zerolog.Logger) *CategoryService {
	if c == nil {
		c = cache.Noop{}
	}
	return &CategoryService{
		repo:   repo,
		cache:  c,
		logger: logger.With().Str("service", "categories").Logger(),
	}
}

// ListCategories returns all categories, from cache when possible.
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	err := s.cache.Get(ctx, cache.KeyCategories, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn().Err(err).Msg("category cache read failed")
	}

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cache.KeyCategories, categories); err != nil {
		s.logger.Warn().Err(err).Msg("category cache write failed")
	}
	return categories, nil
}

// GetCategory retrieves a category by ID.
func (s *CategoryService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateCategory creates a category with a unique slug.
func (s *CategoryService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := s.checkSlug(ctx, in, ""); err != nil {
		return nil, err
	}
	category := &models.Category{Name: in.Name, Slug: in.Slug, Description: in.Description}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info().Str("category_id", category.ID).Str("slug", category.Slug).Msg("category created")
	return category, nil
}

// UpdateCategory replaces a category's name, slug and description.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkSlug(ctx, in, id); err != nil {
		return nil, err
	}

	category.Name = in.Name
	category.Slug = in.Slug
	category.Description = in.Description
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.GetByID(ctx, id)
}

// DeleteCategory removes an empty category.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return models.Validation("Category still has %d products", n)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) checkSlug(ctx context.Context, in CategoryInput, excludeID string) error {
	if in.Name == "" || in.Slug == "" {
		return models.Validation("Name and slug are required")
	}
	taken, err := s.repo.SlugExists(ctx, in.Slug, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return models.Validation("Slug already exists")
	}
	return nil
}

// invalidate drops the cached category list and every cached product, which
// embed their category.
func (s *CategoryService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.KeyCategories); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate category cache")
	}
	if err := s.cache.DeletePrefix(ctx, cache.ProductSlugKey("")); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate product cache")
	}
}
