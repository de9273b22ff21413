package handlers

import (
	"jammal/internal/middleware"
	"jammal/internal/models"
	"jammal/internal/repositories"
	"jammal/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With().Str("handler", "orders").Logger(),
	}
}

// RegisterRoutes registers the checkout and order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, g Guards) {
	router.Post("/create-order", g.Optional, h.HandleCreateOrder)

	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", g.Required, h.HandleListMyOrders)
	orderRoutes.Get("/:orderId", h.HandleGetOrder)
	orderRoutes.Patch("/:orderId", g.Required, g.Admin, h.HandleUpdateOrderStatus)
}

// HandleCreateOrder places an order for the submitted cart. Guests may check out.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	res, err := h.service.CreateOrder(c.UserContext(), middleware.Identity(c), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(res)
}

// HandleGetOrder returns an order with its items and their products.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), c.Params("orderId"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.NewOrderView(order))
}

// HandleListMyOrders returns the caller's orders, newest first.
func (h *OrderHandler) HandleListMyOrders(c *fiber.Ctx) error {
	page, err := queryPage(c, repositories.DefaultLimit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	res, err := h.service.ListMyOrders(c.UserContext(), middleware.Identity(c), page)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(res)
}

type statusUpdateRequest struct {
	Status                string `json:"status" validate:"required"`
	EstimatedDeliveryDate string `json:"estimatedDeliveryDate"`
}

// HandleUpdateOrderStatus sets an order's status. Administrators only.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req statusUpdateRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), middleware.Identity(c), c.Params("orderId"), req.Status, req.EstimatedDeliveryDate)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.NewOrderView(order))
}
