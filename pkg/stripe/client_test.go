package stripe_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	stripeClient "github.com/aaravmahajanofficial/storefront/pkg/stripe"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCheckoutSession(t *testing.T) {
	params := stripeClient.CheckoutParams{
		Reference:  "ref-1",
		Amount:     decimal.RequireFromString("20.50"),
		Currency:   "usd",
		SuccessURL: "http://localhost:3000/?paid=1",
		CancelURL:  "http://localhost:3000/",
	}

	t.Run("Success - Session created", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
			assert.Equal(t, "ref-1", r.Header.Get("Idempotency-Key"))
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "payment", r.PostForm.Get("mode"))
			assert.Equal(t, "2050", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
			assert.Equal(t, "ref-1", r.PostForm.Get("client_reference_id"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
		}))
		defer server.Close()

		client := stripeClient.NewStripeClient("sk_test_123", time.Second, server.URL)

		// Act
		sess, err := client.CreateCheckoutSession(t.Context(), params)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "cs_test_1", sess.ID)
		assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", sess.URL)
	})

	t.Run("Success - Zero-decimal currency is not scaled", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "jpy", r.PostForm.Get("line_items[0][price_data][currency]"))
			assert.Equal(t, "1500", r.PostForm.Get("line_items[0][price_data][unit_amount]"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"cs_test_2","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_2"}`))
		}))
		defer server.Close()

		client := stripeClient.NewStripeClient("sk_test_123", time.Second, server.URL)
		p := params
		p.Amount = decimal.NewFromInt(1500)
		p.Currency = "jpy"

		// Act
		sess, err := client.CreateCheckoutSession(t.Context(), p)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "cs_test_2", sess.ID)
	})

	t.Run("Failure - API error", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Amount must be at least $0.50 usd"}}`))
		}))
		defer server.Close()

		client := stripeClient.NewStripeClient("sk_test_123", time.Second, server.URL)

		// Act
		sess, err := client.CreateCheckoutSession(t.Context(), params)

		// Assert
		assert.Nil(t, sess)
		var stripeErr *stripeClient.Error
		require.True(t, errors.As(err, &stripeErr))
		assert.Equal(t, http.StatusBadRequest, stripeErr.HTTPStatusCode)
		assert.Contains(t, stripeErr.Msg, "at least")
	})

	t.Run("Failure - Missing currency", func(t *testing.T) {
		client := stripeClient.NewStripeClient("sk_test_123", time.Second, "http://127.0.0.1:1")
		p := params
		p.Currency = ""

		_, err := client.CreateCheckoutSession(t.Context(), p)

		assert.Error(t, err)
	})
}

func TestMinorUnitAmount(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     int64
	}{
		{"20.50", "usd", 2050},
		{"20.505", "EUR", 2051},
		{"1500", "jpy", 1500},
		{"1500.4", "KRW", 1500},
		{"1.234", "kwd", 1230},
	}

	for _, tt := range tests {
		t.Run(tt.currency+" "+tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, stripeClient.MinorUnitAmount(decimal.RequireFromString(tt.amount), tt.currency))
		})
	}
}
