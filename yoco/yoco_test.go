package yoco

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCheckout(t *testing.T) {
	var received CheckoutRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkouts", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c_123","redirectUrl":"https://pay.example.com/c_123","status":"created","amount":24000,"currency":"ZAR"}`)
	}))
	defer server.Close()

	client := NewClient("sk_test_key")
	client.BaseURL = server.URL

	checkout, err := client.CreateCheckout(context.Background(), CheckoutRequest{
		Amount:   24000,
		Currency: "ZAR",
		Metadata: map[string]string{"orderNumber": "12345"},
	})
	require.NoError(t, err)

	assert.Equal(t, "c_123", checkout.ID)
	assert.Equal(t, "https://pay.example.com/c_123", checkout.RedirectURL)
	assert.Equal(t, int64(24000), received.Amount)
	assert.Equal(t, "12345", received.Metadata["orderNumber"])
}

func TestCreateCheckoutGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"amount below minimum"}`)
	}))
	defer server.Close()

	client := NewClient("sk_test_key")
	client.BaseURL = server.URL

	_, err := client.CreateCheckout(context.Background(), CheckoutRequest{Amount: 1, Currency: "ZAR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount below minimum")
}

func TestCreateCheckoutRejectsBadAPIKey(t *testing.T) {
	client := NewClient("pk_public_key")

	_, err := client.CreateCheckout(context.Background(), CheckoutRequest{Amount: 100, Currency: "ZAR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sk_")
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"type":"payment_notification","data":{}}`)
	secret := "whsec_secret"

	signature := Sign(body, secret)
	assert.True(t, VerifySignature(body, signature, secret))

	assert.False(t, VerifySignature(body, signature, "whsec_other"))
	assert.False(t, VerifySignature(body, "not-a-signature", secret))

	// A re-serialized body is not the raw body: even whitespace breaks it.
	assert.False(t, VerifySignature([]byte(`{"type": "payment_notification","data":{}}`), signature, secret))
}

func TestParseWebhook(t *testing.T) {
	body := []byte(`{
		"type": "payment_notification",
		"id": "evt_1",
		"data": {
			"checkout": {"id": "c_1", "amount": 24000, "metadata": {"orderNumber": "12345"}},
			"payment": {"id": "p_1", "status": "success", "amount": 24000}
		}
	}`)

	event, err := ParseWebhook(body)
	require.NoError(t, err)
	assert.Equal(t, EventPaymentNotification, event.Type)
	assert.Equal(t, "c_1", event.Data.Checkout.ID)
	assert.Equal(t, "12345", event.Data.Checkout.Metadata["orderNumber"])
	assert.Equal(t, PaymentSuccess, event.Data.Payment.Status)

	_, err = ParseWebhook([]byte("not json"))
	assert.Error(t, err)
}

func TestGenerateOrderNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{5}$`)
	for i := 0; i < 100; i++ {
		number := GenerateOrderNumber()
		assert.Regexp(t, pattern, number)
	}
}

func TestCentsConversion(t *testing.T) {
	assert.Equal(t, int64(2500), ToCents(25.00))
	assert.Equal(t, int64(1999), ToCents(19.99))
	assert.Equal(t, 25.00, FromCents(2500))
}
