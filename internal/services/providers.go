package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/pkg/dvnet"
	stripeClient "github.com/aaravmahajanofficial/storefront/pkg/stripe"
	"github.com/shopspring/decimal"
)

type dvnetProvider struct {
	client dvnet.Client
}

func NewDVNetProvider(client dvnet.Client) PaymentURLProvider {
	return &dvnetProvider{client: client}
}

func (p *dvnetProvider) Name() string { return "dvnet" }

func (p *dvnetProvider) CreatePaymentURL(ctx context.Context, reference string, amount decimal.Decimal) (string, error) {
	wallet, err := p.client.GetExternalWallet(ctx, dvnet.ExternalWalletRequest{
		StoreExternalID: reference,
		Amount:          amount,
	})
	if err != nil {
		return "", err
	}

	return wallet.PayURL, nil
}

type StripeCheckoutOptions struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

type stripeProvider struct {
	client stripeClient.Client
	opts   StripeCheckoutOptions
}

func NewStripeProvider(client stripeClient.Client, opts StripeCheckoutOptions) PaymentURLProvider {
	return &stripeProvider{client: client, opts: opts}
}

func (p *stripeProvider) Name() string { return "stripe" }

func (p *stripeProvider) CreatePaymentURL(ctx context.Context, reference string, amount decimal.Decimal) (string, error) {
	sess, err := p.client.CreateCheckoutSession(ctx, stripeClient.CheckoutParams{
		Reference:  reference,
		Amount:     amount,
		Currency:   p.opts.Currency,
		SuccessURL: p.opts.SuccessURL,
		CancelURL:  p.opts.CancelURL,
	})
	if err != nil {
		return "", err
	}

	if sess.URL == "" {
		return "", fmt.Errorf("stripe: checkout session %s has no url", sess.ID)
	}

	return sess.URL, nil
}

// GatewayPayload extracts the remote error body from a provider error, or
// nil when the failure never produced one.
func GatewayPayload(err error) []byte {
	var dvErr *dvnet.APIError
	if errors.As(err, &dvErr) {
		return dvErr.Body
	}

	var stripeErr *stripeClient.Error
	if errors.As(err, &stripeErr) {
		payload, marshalErr := json.Marshal(stripeErr)
		if marshalErr != nil {
			return nil
		}
		return payload
	}

	return nil
}
