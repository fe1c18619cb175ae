package stripe

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	checkoutsession "github.com/stripe/stripe-go/v81/checkout/session"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Error = stripe.Error

type CheckoutParams struct {
	// Reference is the store-side id; it doubles as the idempotency key.
	Reference  string
	Amount     decimal.Decimal
	Currency   string
	SuccessURL string
	CancelURL  string
}

// defines the methods that any of payment client must implement.
type Client interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*stripe.CheckoutSession, error)
}

// Currencies Stripe prices without a minor unit, and those with three decimals.
var (
	zeroDecimal = map[string]struct{}{
		"bif": {}, "clp": {}, "djf": {}, "gnf": {}, "jpy": {}, "kmf": {}, "krw": {}, "mga": {},
		"pyg": {}, "rwf": {}, "ugx": {}, "vnd": {}, "vuv": {}, "xaf": {}, "xof": {}, "xpf": {},
	}
	threeDecimal = map[string]struct{}{
		"bhd": {}, "jod": {}, "kwd": {}, "omr": {}, "tnd": {},
	}
)

// MinorUnitAmount converts amount into the smallest unit of currency.
// Three-decimal amounts are rounded to a multiple of ten.
func MinorUnitAmount(amount decimal.Decimal, currency string) int64 {
	switch c := strings.ToLower(currency); {
	case has(zeroDecimal, c):
		return amount.Round(0).IntPart()
	case has(threeDecimal, c):
		return amount.Round(2).Shift(3).IntPart()
	default:
		return amount.Shift(2).Round(0).IntPart()
	}
}

func has(set map[string]struct{}, c string) bool {
	_, ok := set[c]
	return ok
}

type stripeClient struct{}

// NewStripeClient configures the global Stripe backend. An empty baseURL
// keeps the public API endpoint. Network retries are disabled so each
// request reaches Stripe at most once.
func NewStripeClient(apiKey string, timeout time.Duration, baseURL string) Client {
	stripe.Key = apiKey

	cfg := &stripe.BackendConfig{
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		MaxNetworkRetries: stripe.Int64(0),
	}
	if baseURL != "" {
		cfg.URL = stripe.String(baseURL)
	}

	stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, cfg))

	return &stripeClient{}
}

// CreateCheckoutSession opens a one-line hosted checkout for the amount.
func (s *stripeClient) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*stripe.CheckoutSession, error) {
	if p.Currency == "" {
		return nil, errors.New("stripe: currency is required")
	}

	unitAmount := MinorUnitAmount(p.Amount, p.Currency)

	params := &stripe.CheckoutSessionParams{
		Params:            stripe.Params{Context: ctx},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(p.Reference),
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.Currency),
					UnitAmount: stripe.Int64(unitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Order " + p.Reference),
					},
				},
			},
		},
	}
	params.SetIdempotencyKey(p.Reference)

	return checkoutsession.New(params)
}
