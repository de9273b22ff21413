package handlers

import (
	"jammal/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// PaymentHandler receives the processor's checkout callback.
type PaymentHandler struct {
	service  *services.PaymentService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With().Str("handler", "payments").Logger(),
	}
}

// RegisterRoutes registers the payment routes.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/verify-payment", h.HandleVerifyPayment)
}

// HandleVerifyPayment checks a payment signature.
func (h *PaymentHandler) HandleVerifyPayment(c *fiber.Ctx) error {
	var req services.VerifyPaymentRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	res, err := h.service.VerifyPayment(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(res)
}
