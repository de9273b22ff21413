package middleware

import (
	"context"
	"strings"

	"jammal/internal/models"
	"jammal/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const identityKey = "identity"

// TokenValidator verifies a bearer token. *services.IdentityService satisfies it.
type TokenValidator interface {
	ValidateToken(token string) (*services.Identity, error)
}

// AuthRequired is a Fiber middleware to check for a valid identity token.
func AuthRequired(validator TokenValidator, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header format must be 'Bearer <token>'",
			})
		}

		id, err := validator.ValidateToken(token)
		if err != nil {
			logger.Debug().Err(err).Str("path", c.Path()).Msg("token rejected")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		// Store the identity in Fiber context for subsequent handlers
		c.Locals(identityKey, id)
		return c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and lets
// guests through otherwise.
func OptionalAuth(validator TokenValidator, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Next()
		}
		id, err := validator.ValidateToken(token)
		if err != nil {
			logger.Debug().Err(err).Str("path", c.Path()).Msg("ignoring invalid token on guest route")
			return c.Next()
		}
		c.Locals(identityKey, id)
		return c.Next()
	}
}

// AdminChecker authorizes administrator calls. *services.AdminGuard satisfies it.
type AdminChecker interface {
	RequireAdmin(ctx context.Context, id *services.Identity) (*models.User, error)
}

// RequireAdmin rejects callers whose user record is not an administrator.
// It must run after AuthRequired.
func RequireAdmin(guard AdminChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := guard.RequireAdmin(c.UserContext(), Identity(c)); err != nil {
			return c.Status(StatusOf(err)).JSON(fiber.Map{"error": MessageOf(err)})
		}
		return c.Next()
	}
}

// Identity returns the caller attached by AuthRequired or OptionalAuth, or nil
// for guests.
func Identity(c *fiber.Ctx) *services.Identity {
	id, _ := c.Locals(identityKey).(*services.Identity)
	return id
}

// Expected format: "Bearer <token>"
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
