package services

import (
	"fmt"
	"time"

	"jammal/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"
)

// Identity is the caller as asserted by the identity provider's token.
type Identity struct {
	ExternalID string
	Name       string
	Email      string
}

// IdentityService verifies identity provider tokens.
type IdentityService struct {
	jwtSecret []byte
	logger    zerolog.Logger
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(jwtSecret string, logger zerolog.Logger) *IdentityService {
	return &IdentityService{
		jwtSecret: []byte(jwtSecret),
		logger:    logger.With().Str("service", "identity").Logger(),
	}
}

// ValidateToken parses and validates an HS256 token. The subject claim is the
// external user id.
func (s *IdentityService) ValidateToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Msg("token validation failed")
		return nil, models.NewAppError(models.KindUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, models.NewAppError(models.KindUnauthorized, "Invalid or expired token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, models.NewAppError(models.KindUnauthorized, "Token has no subject")
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)

	return &Identity{ExternalID: sub, Name: name, Email: email}, nil
}

// IssueToken signs a token for id valid for ttl. The identity provider issues
// tokens in production; this serves local tooling and tests.
func (s *IdentityService) IssueToken(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   id.ExternalID,
		"name":  id.Name,
		"email": id.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}
