package handlers

import (
	"jammal/internal/middleware"
	"jammal/internal/models"
	"jammal/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// AccountHandler serves the signed-in customer's account, wishlist and reviews.
type AccountHandler struct {
	accounts *services.AccountService
	reviews  *services.ReviewService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts *services.AccountService, reviews *services.ReviewService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		reviews:  reviews,
		validate: validator.New(),
		logger:   logger.With().Str("handler", "account").Logger(),
	}
}

// RegisterRoutes registers the account routes.
func (h *AccountHandler) RegisterRoutes(router fiber.Router, g Guards) {
	router.Put("/account", g.Required, h.HandleSyncAccount)

	router.Get("/wishlist", g.Required, h.HandleGetWishlist)
	router.Post("/wishlist", g.Required, h.HandleUpdateWishlist)

	router.Get("/reviews", h.HandleListReviews)
	router.Post("/reviews", g.Required, h.HandleSaveReview)
}

// HandleSyncAccount creates or refreshes the caller's user record.
func (h *AccountHandler) HandleSyncAccount(c *fiber.Ctx) error {
	user, err := h.accounts.SyncAccount(c.UserContext(), middleware.Identity(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(user)
}

// HandleGetWishlist returns the caller's wishlist products.
func (h *AccountHandler) HandleGetWishlist(c *fiber.Ctx) error {
	view, err := h.accounts.GetWishlist(c.UserContext(), middleware.Identity(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(view)
}

type wishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Action    string `json:"action" validate:"required"`
}

// HandleUpdateWishlist adds a product to or removes it from the wishlist.
func (h *AccountHandler) HandleUpdateWishlist(c *fiber.Ctx) error {
	var req wishlistRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	res, err := h.accounts.UpdateWishlist(c.UserContext(), middleware.Identity(c), req.ProductID, req.Action)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(res)
}

// HandleListReviews returns a product's reviews and average rating.
func (h *AccountHandler) HandleListReviews(c *fiber.Ctx) error {
	productID := c.Query("productId")
	if productID == "" {
		return respondError(c, h.logger, models.Validation("Product ID is required"))
	}
	res, err := h.reviews.ListReviews(c.UserContext(), productID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(res)
}

// HandleSaveReview creates or replaces the caller's review of a product.
func (h *AccountHandler) HandleSaveReview(c *fiber.Ctx) error {
	var req services.ReviewInput
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	review, err := h.reviews.SaveReview(c.UserContext(), middleware.Identity(c), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}
