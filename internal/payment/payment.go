// Package payment wraps the payment-gateway intent API. The backend only
// creates intents and records the returned identifier against a booking; it
// trusts the client-supplied success signal and does not verify gateway
// webhooks.
package payment

import (
	"context"
	"errors"
	"math"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"
)

var ErrGateway = errors.New("payment gateway error")

// Intent is the client-usable result of creating a payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       float64
}

type IntentClient interface {
	CreateIntent(ctx context.Context, amount float64, currency string) (Intent, error)
}

// StripeClient implements IntentClient against Stripe payment intents.
type StripeClient struct{}

func NewStripeClient(apiKey string) *StripeClient {
	stripe.Key = apiKey
	return &StripeClient{}
}

func (c *StripeClient) CreateIntent(ctx context.Context, amount float64, currency string) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		// Stripe amounts are in the currency's smallest unit.
		Amount:             stripe.Int64(int64(math.Round(amount * 100))),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return Intent{}, errors.Join(ErrGateway, err)
	}
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Amount: amount}, nil
}
