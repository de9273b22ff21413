package services

import (
	"context"
	"errors"
	"fmt"

	"jammal/internal/models"
	"jammal/internal/repositories"
)

// AdminGuard authorizes administrator operations against the role flag on the
// caller's user record.
type AdminGuard struct {
	users repositories.UserRepository
}

// NewAdminGuard creates a new AdminGuard.
func NewAdminGuard(users repositories.UserRepository) *AdminGuard {
	return &AdminGuard{users: users}
}

// RequireAdmin returns the caller's user record if it carries the ADMIN role.
// No identity is Unauthorized; a missing record or another role is Forbidden.
func (g *AdminGuard) RequireAdmin(ctx context.Context, id *Identity) (*models.User, error) {
	if id == nil {
		return nil, models.NewAppError(models.KindUnauthorized, "Unauthorized")
	}

	user, err := g.users.GetByExternalID(ctx, id.ExternalID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.Forbidden("Admin access required")
		}
		return nil, fmt.Errorf("failed to load caller: %w", err)
	}
	if !user.IsAdmin() {
		return nil, models.Forbidden("Admin access required")
	}
	return user, nil
}
