package alerts

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookNotifier posts quota alerts as JSON to a generic HTTP endpoint.
type WebhookNotifier struct {
	url    string
	secret string
	client *http.Client
}

// NewWebhookNotifier creates a generic webhook notifier.
// If secret is non-empty, requests are signed with HMAC-SHA256.
func NewWebhookNotifier(url, secret string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		secret: secret,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

// Send posts the alert. The event name carries the level, e.g.
// "quota.critical", and X-Focusboard-Delivery identifies one threshold
// crossing so receivers can drop retries.
func (w *WebhookNotifier) Send(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(newWebhookPayload(alert, time.Now()))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "focusboard/1.0")
	req.Header.Set("X-Focusboard-Alert-Level", string(alert.Level))
	req.Header.Set("X-Focusboard-Delivery", DeliveryKey(alert))

	if w.secret != "" {
		sig := computeHMAC(body, []byte(w.secret))
		req.Header.Set("X-Signature-256", "sha256="+sig)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// DeliveryKey is stable for one (user, category, month, level) crossing.
func DeliveryKey(a Alert) string {
	return fmt.Sprintf("%s:%s:%s:%s", a.UserID, a.APIType, a.Month, a.Level)
}

type webhookPayload struct {
	Event     string       `json:"event"`
	Timestamp string       `json:"timestamp"`
	Level     AlertLevel   `json:"level"`
	UserID    string       `json:"user_id"`
	APIType   string       `json:"api_type"`
	Month     string       `json:"month"`
	Usage     webhookUsage `json:"usage"`
	Message   string       `json:"message,omitempty"`
}

type webhookUsage struct {
	Count        int64   `json:"count"`
	Limit        int64   `json:"limit"`
	Remaining    int64   `json:"remaining"`
	ThresholdPct float64 `json:"threshold_pct"`
}

func newWebhookPayload(a Alert, now time.Time) webhookPayload {
	return webhookPayload{
		Event:     "quota." + string(a.Level),
		Timestamp: now.UTC().Format(time.RFC3339),
		Level:     a.Level,
		UserID:    a.UserID,
		APIType:   a.APIType,
		Month:     a.Month,
		Usage: webhookUsage{
			Count:        a.Count,
			Limit:        a.Limit,
			Remaining:    max(0, a.Limit-a.Count),
			ThresholdPct: a.ThresholdPct,
		},
		Message: a.Message,
	}
}

func computeHMAC(message, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
