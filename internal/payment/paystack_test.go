package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeSendsKoboAmount(t *testing.T) {
	var received initRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]string{
				"authorization_url": "https://checkout.example/abc",
				"access_code":       "AC_123",
				"reference":         "ref_123",
			},
		})
	}))
	defer server.Close()

	client := NewPaystackClient("sk_test_abc", server.URL)
	result, err := client.Initialize(context.Background(), 149.99, "shopper@example.com")
	require.NoError(t, err)

	assert.Equal(t, int64(14999), received.Amount)
	assert.Equal(t, "shopper@example.com", received.Email)
	assert.Equal(t, "https://checkout.example/abc", result.AuthorizationURL)
	assert.Equal(t, "ref_123", result.Reference)
}

func TestInitializeFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Invalid key",
		})
	}))
	defer server.Close()

	client := NewPaystackClient("sk_test_bad", server.URL)
	_, err := client.Initialize(context.Background(), 50, "shopper@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid key")
}

func TestVerifySuccessfulTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/verify/ref_123", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data":   map[string]string{"status": "success"},
		})
	}))
	defer server.Close()

	client := NewPaystackClient("sk_test_abc", server.URL)
	paid, err := client.Verify(context.Background(), "ref_123")
	require.NoError(t, err)
	assert.True(t, paid)
}

func TestVerifyPendingTransactionIsNotPaid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data":   map[string]string{"status": "pending"},
		})
	}))
	defer server.Close()

	client := NewPaystackClient("sk_test_abc", server.URL)
	paid, err := client.Verify(context.Background(), "ref_456")
	require.NoError(t, err)
	assert.False(t, paid)
}
