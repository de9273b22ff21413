package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"jammal/internal/metrics"
	"jammal/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// ProcessorOrder is the processor's view of a payable order.
type ProcessorOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// GatewayConfig holds the processor API credentials.
type GatewayConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Currency  string
	Timeout   time.Duration
}

// Gateway creates processor orders over the processor's REST API.
type Gateway struct {
	client   *resty.Client
	breaker  *gobreaker.CircuitBreaker
	currency string
	logger   zerolog.Logger
}

// NewGateway creates a Gateway. Requests are never retried; repeated failures
// open the circuit breaker.
func NewGateway(cfg GatewayConfig, logger zerolog.Logger) *Gateway {
	logger = logger.With().Str("component", "payment-gateway").Logger()

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			logger.Warn().Str("circuit", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
	metrics.CircuitBreakerState.WithLabelValues("payment-gateway").Set(0)

	currency := cfg.Currency
	if currency == "" {
		currency = "INR"
	}

	return &Gateway{
		client:   client,
		breaker:  breaker,
		currency: currency,
		logger:   logger,
	}
}

// CreateOrder registers amount (minor units) with the processor and returns
// the processor order. receipt is our own order id.
func (g *Gateway) CreateOrder(ctx context.Context, amount int64, receipt string) (*ProcessorOrder, error) {
	result, err := g.breaker.Execute(func() (interface{}, error) {
		var out ProcessorOrder
		resp, err := g.client.R().
			SetContext(ctx).
			SetBody(createOrderRequest{Amount: amount, Currency: g.currency, Receipt: receipt}).
			SetResult(&out).
			Post("/v1/orders")
		if err != nil {
			return nil, fmt.Errorf("HTTP error: %w", err)
		}
		if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
			return nil, fmt.Errorf("processor returned status %d: %s", resp.StatusCode(), resp.String())
		}
		if out.ID == "" {
			return nil, errors.New("processor response has no order id")
		}
		return &out, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("circuit breaker payment-gateway is open: %w", err)
		}
		g.logger.Error().Err(err).Str("receipt", receipt).Int64("amount", amount).Msg("failed to create processor order")
		return nil, models.Upstream(err, "Failed to create payment order")
	}

	order := result.(*ProcessorOrder)
	g.logger.Info().Str("processor_order_id", order.ID).Str("receipt", receipt).Msg("processor order created")
	return order, nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
