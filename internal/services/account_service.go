package services

import (
	"context"
	"fmt"

	"jammal/internal/models"
	"jammal/internal/repositories"

	"github.com/rs/zerolog"
)

// Wishlist actions.
const (
	WishlistAdd    = "add"
	WishlistRemove = "remove"
)

// WishlistView is the caller's wishlist with full products.
type WishlistView struct {
	Wishlist []models.Product `json:"wishlist"`
	Count    int              `json:"count"`
}

// WishlistUpdate is the result of adding or removing a product.
type WishlistUpdate struct {
	Success     bool            `json:"success"`
	WishlistIDs models.Wishlist `json:"wishlistIds"`
}

// AccountService manages the caller's own user record.
type AccountService struct {
	users            repositories.UserRepository
	products         repositories.ProductRepository
	adminExternalIDs map[string]bool
	logger           zerolog.Logger
}

// NewAccountService creates a new AccountService. Identities listed in
// adminExternalIDs are promoted to ADMIN when their record is synced.
func NewAccountService(users repositories.UserRepository, products repositories.ProductRepository, adminExternalIDs []string, logger zerolog.Logger) *AccountService {
	admins := make(map[string]bool, len(adminExternalIDs))
	for _, id := range adminExternalIDs {
		admins[id] = true
	}
	return &AccountService{
		users:            users,
		products:         products,
		adminExternalIDs: admins,
		logger:           logger.With().Str("service", "accounts").Logger(),
	}
}

// SyncAccount creates or refreshes the caller's user record from their identity.
func (s *AccountService) SyncAccount(ctx context.Context, id *Identity) (*models.User, error) {
	if id == nil {
		return nil, models.NewAppError(models.KindUnauthorized, "Unauthorized")
	}

	user := &models.User{ExternalID: id.ExternalID, Name: id.Name, Email: id.Email, Role: models.RoleUser}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, err
	}

	if s.adminExternalIDs[id.ExternalID] && !user.IsAdmin() {
		if err := s.users.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
			return nil, fmt.Errorf("failed to promote administrator: %w", err)
		}
		user.Role = models.RoleAdmin
		s.logger.Info().Str("user_id", user.ID).Msg("user promoted to administrator")
	}
	return user, nil
}

func (s *AccountService) currentUser(ctx context.Context, id *Identity) (*models.User, error) {
	if id == nil {
		return nil, models.NewAppError(models.KindUnauthorized, "Unauthorized")
	}
	user, err := s.users.GetByExternalID(ctx, id.ExternalID)
	if err != nil {
		if models.KindOf(err) == models.KindNotFound {
			return nil, models.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// GetWishlist returns the products on the caller's wishlist. Ids of deleted
// products are skipped.
func (s *AccountService) GetWishlist(ctx context.Context, id *Identity) (*WishlistView, error) {
	user, err := s.currentUser(ctx, id)
	if err != nil {
		return nil, err
	}

	products, err := s.products.GetByIDs(ctx, models.ParseWishlist(user.Wishlist))
	if err != nil {
		return nil, err
	}
	return &WishlistView{Wishlist: products, Count: len(products)}, nil
}

// UpdateWishlist adds or removes productID. Adding twice keeps one entry.
func (s *AccountService) UpdateWishlist(ctx context.Context, id *Identity, productID, action string) (*WishlistUpdate, error) {
	if productID == "" {
		return nil, models.Validation("Product ID is required")
	}
	user, err := s.currentUser(ctx, id)
	if err != nil {
		return nil, err
	}

	wishlist := models.ParseWishlist(user.Wishlist)
	switch action {
	case WishlistAdd:
		wishlist = wishlist.Add(productID)
	case WishlistRemove:
		wishlist = wishlist.Remove(productID)
	default:
		return nil, models.Validation("Invalid action: %s", action)
	}

	if err := s.users.UpdateWishlist(ctx, user.ID, wishlist); err != nil {
		return nil, err
	}
	return &WishlistUpdate{Success: true, WishlistIDs: wishlist}, nil
}
