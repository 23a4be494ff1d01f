package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/use-agent/gpd-enhance/config"
)

// Event types.
const (
	EventInsightsSaved  = "listing.insights_saved"
	EventSourcesScraped = "listing.sources_scraped"
)

// SignatureHeader carries "sha256=<hex>" when a secret is configured.
const SignatureHeader = "X-GPD-Signature"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string `json:"type"`
	ListingID int64  `json:"listing_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// retryDelays is the wait before each delivery attempt.
var retryDelays = []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second}

// Notifier delivers events to the configured endpoint. The zero value and a
// Notifier without URL drop every event.
type Notifier struct {
	url    string
	secret string
}

// NewNotifier creates a Notifier from configuration.
func NewNotifier(cfg config.WebhookConfig) *Notifier {
	return &Notifier{url: cfg.URL, secret: cfg.Secret}
}

// Notify sends an event of the given type in the background.
func (n *Notifier) Notify(eventType string, listingID int64, data any) {
	if n == nil || n.url == "" {
		return
	}
	DeliverAsync(n.url, n.secret, &Event{
		Type:      eventType,
		ListingID: listingID,
		Timestamp: time.Now().Unix(),
		Data:      data,
	})
}

// Deliver sends a webhook event synchronously.
// The request body is signed with HMAC-SHA256 if secret is non-empty.
func Deliver(ctx context.Context, url, secret string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "GPD-Enhance-Webhook/"+config.Version)

	if secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+Sign(secret, body))
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// DeliverAsync sends a webhook event asynchronously with up to 3 retries.
// Retry intervals: 1s, 5s, 30s.
func DeliverAsync(url, secret string, event *Event) {
	go func() {
		for attempt, delay := range retryDelays {
			if delay > 0 {
				time.Sleep(delay)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := Deliver(ctx, url, secret, event)
			cancel()
			if err == nil {
				slog.Info("webhook delivered",
					"url", url,
					"event", event.Type,
					"listing_id", event.ListingID,
					"attempt", attempt+1,
				)
				return
			}
			slog.Warn("webhook delivery failed",
				"url", url,
				"event", event.Type,
				"listing_id", event.ListingID,
				"attempt", attempt+1,
				"error", err,
			)
		}
		slog.Error("webhook delivery exhausted all retries",
			"url", url,
			"event", event.Type,
			"listing_id", event.ListingID,
		)
	}()
}
