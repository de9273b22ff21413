package services

import (
	"context"
	"errors"
	"time"

	"jammal/internal/metrics"
	"jammal/internal/models"
	"jammal/internal/payment"
	"jammal/internal/repositories"
	"jammal/pkg/rabbitmq"

	"github.com/rs/zerolog"
)

// VerifyPaymentRequest is the processor's checkout callback payload.
type VerifyPaymentRequest struct {
	OrderRef   string `json:"razorpay_order_id"`
	PaymentRef string `json:"razorpay_payment_id"`
	Signature  string `json:"razorpay_signature"`
}

// VerifyPaymentResult reports a successful verification.
type VerifyPaymentResult struct {
	Success bool `json:"success"`
	Demo    bool `json:"demo,omitempty"`
}

// PaymentService confirms payments reported by the storefront.
type PaymentService struct {
	verifier  *payment.Verifier
	orderRepo repositories.OrderRepository
	events    EventPublisher
	logger    zerolog.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(verifier *payment.Verifier, orderRepo repositories.OrderRepository, events EventPublisher, logger zerolog.Logger) *PaymentService {
	return &PaymentService{
		verifier:  verifier,
		orderRepo: orderRepo,
		events:    events,
		logger:    logger.With().Str("service", "payments").Logger(),
	}
}

// VerifyPayment checks the signature and, when it matches, records the payment
// on the order linked to OrderRef. The order status is left alone.
func (s *PaymentService) VerifyPayment(ctx context.Context, req VerifyPaymentRequest) (*VerifyPaymentResult, error) {
	if s.verifier.DemoMode() {
		metrics.PaymentVerifications.WithLabelValues("demo").Inc()
		return &VerifyPaymentResult{Success: true, Demo: true}, nil
	}

	if err := s.verifier.Verify(req.OrderRef, req.PaymentRef, req.Signature); err != nil {
		metrics.PaymentVerifications.WithLabelValues("mismatch").Inc()
		s.logger.Warn().Str("order_ref", req.OrderRef).Str("payment_ref", req.PaymentRef).Msg("payment signature mismatch")
		return nil, err
	}
	metrics.PaymentVerifications.WithLabelValues("verified").Inc()

	s.recordPayment(ctx, req)
	return &VerifyPaymentResult{Success: true}, nil
}

// recordPayment is best effort: a verified signature is success even if no
// local order carries the processor order id.
func (s *PaymentService) recordPayment(ctx context.Context, req VerifyPaymentRequest) {
	order, err := s.orderRepo.GetByPaymentOrderID(ctx, req.OrderRef)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Warn().Str("order_ref", req.OrderRef).Msg("verified payment has no matching order")
		} else {
			s.logger.Error().Err(err).Str("order_ref", req.OrderRef).Msg("failed to look up paid order")
		}
		return
	}

	now := time.Now().UTC()
	if err := s.orderRepo.RecordPayment(ctx, order.ID, req.PaymentRef, now); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to record payment")
		return
	}

	s.logger.Info().Str("order_id", order.ID).Str("payment_ref", req.PaymentRef).Msg("payment recorded")
	publish(s.events, s.logger, rabbitmq.RoutingPaymentVerified, PaymentEvent{
		OrderID:        order.ID,
		PaymentOrderID: req.OrderRef,
		PaymentID:      req.PaymentRef,
		OccurredAt:     now,
	})
}
