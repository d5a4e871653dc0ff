package yoco

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Webhook event types delivered by Yoco.
// https://developer.yoco.com/guides/online-payments/webhooks/listen-for-events
const (
	EventPaymentNotification = "payment_notification"
	EventRefundNotification  = "refund_notification"
)

// Payment statuses carried in payment_notification events.
const (
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
	PaymentPending = "pending"
)

type PaymentData struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	FailureReason string `json:"failureReason,omitempty"`
}

type CheckoutData struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// WebhookEvent is the payload Yoco POSTs to the webhook endpoint.
type WebhookEvent struct {
	Type     string `json:"type"`
	Created  string `json:"created"`
	ID       string `json:"id"`
	Metadata struct {
		CheckoutID string `json:"checkoutId"`
	} `json:"metadata"`
	Data struct {
		Checkout CheckoutData `json:"checkout"`
		Payment  PaymentData  `json:"payment"`
	} `json:"data"`
}

// ParseWebhook decodes a verified webhook body.
func ParseWebhook(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// VerifySignature checks the x-yoco-signature header against an HMAC-SHA256
// of the raw request body. The raw bytes must be used as received;
// re-serializing parsed JSON breaks the match.
// https://developer.yoco.com/guides/online-payments/webhooks/verifying-the-events
func VerifySignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the signature Yoco would attach to body. Used by tests and
// local webhook replays.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
