package dvnet_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/storefront/pkg/dvnet"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExternalWallet(t *testing.T) {
	ctx := t.Context()
	req := dvnet.ExternalWalletRequest{
		StoreExternalID: "0b6c7d0e-1111-4a2b-9c3d-222233334444",
		Amount:          decimal.RequireFromString("20.5"),
	}

	t.Run("Success - Enveloped response", func(t *testing.T) {
		// Arrange
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/external/wallet", r.URL.Path)
			assert.Equal(t, "key_123", r.Header.Get("X-Api-Key"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":{"id":"w1","store_external_id":"0b6c7d0e-1111-4a2b-9c3d-222233334444","pay_url":"https://pay.example/w1"}}`))
		}))
		defer server.Close()

		client := dvnet.NewClient(server.URL+"/", "key_123", time.Second)

		// Act
		wallet, err := client.GetExternalWallet(ctx, req)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "https://pay.example/w1", wallet.PayURL)
		assert.Equal(t, req.StoreExternalID, gotBody["store_external_id"])
		assert.Equal(t, 20.5, gotBody["amount"])
	})

	t.Run("Success - Bare response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"pay_url":"https://pay.example/w2"}`))
		}))
		defer server.Close()

		wallet, err := dvnet.NewClient(server.URL, "k", time.Second).GetExternalWallet(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "https://pay.example/w2", wallet.PayURL)
	})

	t.Run("Failure - Non-2xx keeps raw body", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"invalid api key"}`))
		}))
		defer server.Close()

		// Act
		wallet, err := dvnet.NewClient(server.URL, "bad", time.Second).GetExternalWallet(ctx, req)

		// Assert
		assert.Nil(t, wallet)
		var apiErr *dvnet.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.JSONEq(t, `{"message":"invalid api key"}`, string(apiErr.Body))
	})

	t.Run("Failure - Missing pay_url", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"id":"w1"}}`))
		}))
		defer server.Close()

		_, err := dvnet.NewClient(server.URL, "k", time.Second).GetExternalWallet(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no pay_url")
	})

	t.Run("Failure - Timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		_, err := dvnet.NewClient(server.URL, "k", 20*time.Millisecond).GetExternalWallet(ctx, req)

		require.Error(t, err)
		var apiErr *dvnet.APIError
		assert.False(t, errors.As(err, &apiErr))
	})
}
