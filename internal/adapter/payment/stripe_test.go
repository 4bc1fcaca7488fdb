package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"neighborly/internal/domain/advert"
)

func TestNewStripeGateway_RequiresKey(t *testing.T) {
	_, err := NewStripeGateway("")
	assert.Error(t, err)
}

func TestToIntent(t *testing.T) {
	got := toIntent(&stripe.PaymentIntent{
		ID:           "pi_1",
		ClientSecret: "pi_1_secret",
		Status:       stripe.PaymentIntentStatusSucceeded,
		Amount:       25200,
	})
	require.NotNil(t, got)
	assert.Equal(t, advert.PaymentSucceeded, got.Status)
	assert.Equal(t, "pi_1_secret", got.ClientSecret)
	assert.Equal(t, int64(25200), got.Amount)
}
