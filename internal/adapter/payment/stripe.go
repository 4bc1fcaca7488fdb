// internal/adapter/payment/stripe.go

package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"

	"neighborly/internal/domain/advert"
)

// StripeGateway implements advert.PaymentGateway with PaymentIntents
type StripeGateway struct{}

// NewStripeGateway sets the Stripe API key and returns a gateway
func NewStripeGateway(secretKey string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	stripe.Key = secretKey
	return &StripeGateway{}, nil
}

// CreateIntent opens a PaymentIntent with automatic payment methods
func (g *StripeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*advert.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: metadata,
	}
	params.Context = ctx
	if id := metadata["advertisement_id"]; id != "" {
		params.SetIdempotencyKey("advertisement-" + id + "-" + fmt.Sprint(amountMinor))
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return toIntent(pi), nil
}

// GetIntent fetches a PaymentIntent by ID
func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*advert.PaymentIntent, error) {
	if id == "" {
		return nil, fmt.Errorf("payment intent ID is required")
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}
	return toIntent(pi), nil
}

func toIntent(pi *stripe.PaymentIntent) *advert.PaymentIntent {
	return &advert.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
	}
}
