package services

import (
	"context"
	"math"

	"jammal/internal/models"
	"jammal/internal/repositories"

	"github.com/rs/zerolog"
)

// ReviewInput is a customer's rating of a product.
type ReviewInput struct {
	ProductID string  `json:"productId" validate:"required"`
	Rating    int     `json:"rating" validate:"required,min=1,max=5"`
	Comment   *string `json:"comment" validate:"omitempty,max=2000"`
}

// ProductReviews lists a product's reviews with their average.
type ProductReviews struct {
	Reviews       []models.Review `json:"reviews"`
	AverageRating float64         `json:"averageRating"`
	TotalReviews  int             `json:"totalReviews"`
}

// ReviewService handles product reviews.
type ReviewService struct {
	reviews  repositories.ReviewRepository
	users    repositories.UserRepository
	products repositories.ProductRepository
	logger   zerolog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews repositories.ReviewRepository, users repositories.UserRepository, products repositories.ProductRepository, logger zerolog.Logger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		users:    users,
		products: products,
		logger:   logger.With().Str("service", "reviews").Logger(),
	}
}

// ListReviews returns a product's reviews, newest first, and the average
// rating rounded to one decimal.
func (s *ReviewService) ListReviews(ctx context.Context, productID string) (*ProductReviews, error) {
	if productID == "" {
		return nil, models.Validation("Product ID is required")
	}
	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	avg := 0.0
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		avg = math.Round(float64(sum)/float64(len(reviews))*10) / 10
	}
	return &ProductReviews{Reviews: reviews, AverageRating: avg, TotalReviews: len(reviews)}, nil
}

// SaveReview creates the caller's review of a product or replaces it.
func (s *ReviewService) SaveReview(ctx context.Context, id *Identity, in ReviewInput) (*models.Review, error) {
	if id == nil {
		return nil, models.NewAppError(models.KindUnauthorized, "Unauthorized")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, models.Validation("Rating must be between 1 and 5")
	}
	if in.ProductID == "" {
		return nil, models.Validation("Product ID is required")
	}

	user, err := s.users.GetByExternalID(ctx, id.ExternalID)
	if err != nil {
		if models.KindOf(err) == models.KindNotFound {
			return nil, models.NotFound("User not found")
		}
		return nil, err
	}
	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		return nil, err
	}

	review := &models.Review{UserID: user.ID, ProductID: in.ProductID, Rating: in.Rating, Comment: in.Comment}
	if err := s.reviews.Save(ctx, review); err != nil {
		return nil, err
	}
	s.logger.Info().Str("product_id", in.ProductID).Int("rating", in.Rating).Msg("review saved")
	return review, nil
}
