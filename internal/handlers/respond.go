package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"jammal/internal/middleware"
	"jammal/internal/models"
	"jammal/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Guards are the auth middlewares routes are mounted behind.
type Guards struct {
	Required fiber.Handler
	Optional fiber.Handler
	// Admin runs after Required.
	Admin fiber.Handler
}

// fieldErrors is a request that failed struct validation.
type fieldErrors map[string]string

func (f fieldErrors) Error() string {
	return fmt.Sprintf("validation failed on %d fields", len(f))
}

// respondError renders err as {"error": message} with the status of its kind.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var fields fieldErrors
	if errors.As(err, &fields) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"errors": fields,
		})
	}

	status := middleware.StatusOf(err)
	if status >= fiber.StatusInternalServerError {
		logger.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	} else {
		logger.Debug().Err(err).Str("path", c.Path()).Int("status", status).Msg("request rejected")
	}
	return c.Status(status).JSON(fiber.Map{
		"error": middleware.MessageOf(err),
	})
}

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, validate *validator.Validate, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return models.Validation("Invalid request body")
	}
	return check(validate, dst)
}

func check(validate *validator.Validate, v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		fields := make(fieldErrors, len(validationErrors))
		for _, e := range validationErrors {
			fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return fields
	}
	return nil
}

// queryInt returns the integer query parameter name, or def when absent.
func queryInt(c *fiber.Ctx, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.Validation("Invalid %s: %s", name, raw)
	}
	return n, nil
}

// queryDecimal returns the decimal query parameter name, or nil when absent.
func queryDecimal(c *fiber.Ctx, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, models.Validation("Invalid %s: %s", name, raw)
	}
	return &d, nil
}

// queryPage reads page and limit.
func queryPage(c *fiber.Ctx, defLimit int) (repositories.Page, error) {
	page, err := queryInt(c, "page", repositories.DefaultPage)
	if err != nil {
		return repositories.Page{}, err
	}
	limit, err := queryInt(c, "limit", defLimit)
	if err != nil {
		return repositories.Page{}, err
	}
	return repositories.Page{Page: page, Limit: limit}, nil
}
