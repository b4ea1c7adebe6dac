package gateway

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/edustream/edustream-api/pkg/config"
)

// Order is the subset of the gateway order entity the service needs.
type Order struct {
	ID       string
	Amount   int
	Currency string
}

// OrderCreator mints orders on the payment gateway.
type OrderCreator interface {
	CreateOrder(ctx context.Context, amount int, currency string, notes map[string]interface{}) (*Order, error)
}

// RazorpayGateway wraps the Razorpay SDK. Amounts are converted to the
// gateway's minor unit (paise) at the boundary.
type RazorpayGateway struct {
	client   *razorpay.Client
	currency string
}

// NewRazorpayGateway builds a gateway client from configuration.
func NewRazorpayGateway(cfg config.RazorpayConfig) *RazorpayGateway {
	return &RazorpayGateway{
		client:   razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		currency: cfg.Currency,
	}
}

// CreateOrder mints a gateway order with auto-capture enabled. The SDK call
// carries its own HTTP timeout; ctx is accepted for interface symmetry.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int, currency string, notes map[string]interface{}) (*Order, error) {
	if currency == "" {
		currency = g.currency
	}

	data := map[string]interface{}{
		"amount":          amount * 100,
		"currency":        currency,
		"payment_capture": 1,
		"notes":           notes,
	}

	raw, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}

	id, ok := raw["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("razorpay order create: response missing order id")
	}

	return &Order{ID: id, Amount: amount, Currency: currency}, nil
}
