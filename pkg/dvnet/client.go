// Package dvnet is a minimal client for the DV.net merchant API.
package dvnet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const walletPath = "/api/v1/external/wallet"

// maxErrorBody bounds how much of a failed response is kept.
const maxErrorBody = 64 << 10

type ExternalWalletRequest struct {
	StoreExternalID string
	Amount          decimal.Decimal
}

// the amount always goes out as a JSON number
type walletPayload struct {
	StoreExternalID string      `json:"store_external_id"`
	Amount          json.Number `json:"amount"`
}

type ExternalWallet struct {
	ID              string `json:"id"`
	StoreExternalID string `json:"store_external_id"`
	PayURL          string `json:"pay_url"`
}

// APIError is returned for any non-2xx answer. Body holds the raw response.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dvnet: unexpected status %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

type Client interface {
	GetExternalWallet(ctx context.Context, req ExternalWalletRequest) (*ExternalWallet, error)
}

type client struct {
	host       string
	apiKey     string
	httpClient *http.Client
}

func NewClient(host, apiKey string, timeout time.Duration) Client {
	return &client{
		host:   strings.TrimRight(host, "/"),
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// GetExternalWallet creates (or returns) the external wallet for the given
// store reference and amount.
func (c *client) GetExternalWallet(ctx context.Context, req ExternalWalletRequest) (*ExternalWallet, error) {
	body, err := json.Marshal(walletPayload{
		StoreExternalID: req.StoreExternalID,
		Amount:          json.Number(req.Amount.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("dvnet: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+walletPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("dvnet: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("dvnet: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: raw}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dvnet: reading response: %w", err)
	}

	return decodeWallet(raw)
}

// decodeWallet accepts both the enveloped {"data": {...}} form and a bare
// wallet object.
func decodeWallet(raw []byte) (*ExternalWallet, error) {
	var envelope struct {
		Data *ExternalWallet `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("dvnet: decoding response: %w", err)
	}

	wallet := envelope.Data
	if wallet == nil {
		wallet = &ExternalWallet{}
		if err := json.Unmarshal(raw, wallet); err != nil {
			return nil, fmt.Errorf("dvnet: decoding response: %w", err)
		}
	}

	if wallet.PayURL == "" {
		return nil, errors.New("dvnet: response has no pay_url")
	}

	return wallet, nil
}
