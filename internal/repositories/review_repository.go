package repositories

import (
	"context"
	"errors"
	"fmt"

	"jammal/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	ListByProduct(ctx context.Context, productID string) ([]models.Review, error)
	List(ctx context.Context) ([]models.Review, error)
	// Save creates the review, or updates rating and comment when the user already
	// reviewed the product.
	Save(ctx context.Context, review *models.Review) error
}

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

// ListByProduct returns a product's reviews with their authors, newest first.
func (r *GORMReviewRepository) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// List returns every review.
func (r *GORMReviewRepository) List(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// Save upserts review on (user, product) and reloads it with its author.
func (r *GORMReviewRepository) Save(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Review
		err := tx.First(&existing, "user_id = ? AND product_id = ?", review.UserID, review.ProductID).Error
		switch {
		case err == nil:
			err = tx.Model(&existing).Select("rating", "comment", "updated_at").
				Updates(models.Review{Rating: review.Rating, Comment: review.Comment}).Error
			if err != nil {
				return fmt.Errorf("failed to update review: %w", err)
			}
			review.ID = existing.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			if review.ID == "" {
				review.ID = uuid.New().String()
			}
			if err := tx.Omit("User", "Product").Create(review).Error; err != nil {
				return fmt.Errorf("failed to create review: %w", err)
			}
		default:
			return fmt.Errorf("failed to look up review: %w", err)
		}

		return tx.Preload("User").First(review, "id = ?", review.ID).Error
	})
}
