package payment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/JonasLeetTheWay/eventisense/internal/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("payment amount must be positive")

// Provider charges and refunds ticket purchases.
type Provider interface {
	CreatePaymentIntent(ctx context.Context, req *PaymentRequest) (*PaymentResponse, error)
	RefundPayment(ctx context.Context, paymentIntentID string, amount decimal.Decimal) (*PaymentResponse, error)
}

type PaymentIntent struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Status   string          `json:"status"`
}

type PaymentRequest struct {
	Amount   decimal.Decimal
	Currency string
	UserID   uint
	EventID  uint
}

type PaymentResponse struct {
	PaymentIntent *PaymentIntent `json:"paymentIntent"`
	Success       bool           `json:"success"`
	Error         string         `json:"error,omitempty"`
}

// MockStripeClient approves a configurable share of payments after a short
// simulated network delay.
type MockStripeClient struct {
	successRate float64
	maxDelay    time.Duration
	rand        func() float64
}

var _ Provider = (*MockStripeClient)(nil)

func NewMockStripeClient(cfg *config.Config) *MockStripeClient {
	return &MockStripeClient{
		successRate: cfg.MockPaymentSuccessRate,
		maxDelay:    cfg.MockPaymentMaxDelay,
		rand:        rand.Float64,
	}
}

// WithRand replaces the random source, used to make outcomes deterministic.
func (c *MockStripeClient) WithRand(fn func() float64) *MockStripeClient {
	c.rand = fn
	return c
}

func (c *MockStripeClient) delay(ctx context.Context) error {
	if c.maxDelay <= 0 {
		return ctx.Err()
	}
	d := time.Duration(c.rand() * float64(c.maxDelay))
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *MockStripeClient) CreatePaymentIntent(ctx context.Context, req *PaymentRequest) (*PaymentResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if err := c.delay(ctx); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "idr"
	}
	intent := &PaymentIntent{
		ID:       fmt.Sprintf("pi_mock_%d_%s", req.UserID, uuid.NewString()[:8]),
		Amount:   req.Amount,
		Currency: currency,
		Status:   "succeeded",
	}

	if c.rand() >= c.successRate {
		intent.Status = "failed"
		return &PaymentResponse{
			PaymentIntent: intent,
			Error:         "Mock payment failure - insufficient funds",
		}, nil
	}
	return &PaymentResponse{PaymentIntent: intent, Success: true}, nil
}

// RefundPayment always succeeds.
func (c *MockStripeClient) RefundPayment(ctx context.Context, paymentIntentID string, amount decimal.Decimal) (*PaymentResponse, error) {
	if err := c.delay(ctx); err != nil {
		return nil, err
	}

	return &PaymentResponse{
		PaymentIntent: &PaymentIntent{
			ID:       "re_mock_" + paymentIntentID,
			Amount:   amount,
			Currency: "idr",
			Status:   "succeeded",
		},
		Success: true,
	}, nil
}
