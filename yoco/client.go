package yoco

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is Yoco's hosted Checkout API.
// https://developer.yoco.com/docs/checkout-api
const DefaultBaseURL = "https://payments.yoco.com/api"

// Client talks to the Yoco Checkout API. Always call it from the server,
// never from the browser: the secret key must not leak.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CheckoutRequest describes a hosted checkout session to create.
// Amount is always in cents (e.g. 2500 = R25.00).
type CheckoutRequest struct {
	Amount     int64             `json:"amount"`
	Currency   string            `json:"currency"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	SuccessURL string            `json:"successUrl,omitempty"`
	FailureURL string            `json:"failureUrl,omitempty"`
}

// Checkout is a created checkout session. RedirectURL is where the customer
// must be sent to pay. Success/failure URLs are advisory only; reaching the
// success URL is not proof of payment — only the webhook is.
type Checkout struct {
	ID          string            `json:"id"`
	RedirectURL string            `json:"redirectUrl"`
	Status      string            `json:"status"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   string            `json:"createdAt,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
}

// CreateCheckout creates a hosted checkout session.
func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	if !strings.HasPrefix(c.APIKey, "sk_") {
		return nil, errors.New("invalid Yoco API key (must start with sk_)")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/checkouts", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("yoco checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("yoco checkout creation failed: %s", apiErr.Message)
		}
		return nil, fmt.Errorf("yoco checkout creation failed: %s", resp.Status)
	}

	var checkout Checkout
	if err := json.Unmarshal(body, &checkout); err != nil {
		return nil, fmt.Errorf("yoco checkout response invalid: %w", err)
	}
	return &checkout, nil
}

// GenerateOrderNumber returns a customer-facing 5-digit order number.
func GenerateOrderNumber() string {
	return fmt.Sprintf("%d", 10000+rand.Intn(90000))
}

// ToCents converts a major-unit amount to cents for the Yoco API.
func ToCents(rands float64) int64 {
	return int64(rands*100 + 0.5)
}

// FromCents converts a Yoco cents amount to major units for display.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}
