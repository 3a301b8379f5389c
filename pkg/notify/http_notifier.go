package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// httpNotifier implements the Notifier interface using HTTP calls to the
// configured channel endpoints.
type httpNotifier struct {
	client *http.Client
	config Config
}

// NewHTTPNotifier creates a new HTTP-based notifier with the given
// configuration.
func NewHTTPNotifier(config Config) Notifier {
	return &httpNotifier{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		config: config,
	}
}

// Send attempts delivery over every enabled channel.
func (n *httpNotifier) Send(ctx context.Context, notification Notification) ([]Delivery, error) {
	var deliveries []Delivery

	if n.config.Email.Enabled {
		d := Delivery{Method: MethodEmail, Recipient: n.config.Email.Recipient}
		if err := n.sendEmail(ctx, notification); err != nil {
			d.Error = err.Error()
		} else {
			d.Delivered = true
		}
		deliveries = append(deliveries, d)
	}

	if n.config.Webhook.Enabled {
		d := Delivery{Method: MethodWebhook, Recipient: n.config.Webhook.URL}
		if err := n.sendWebhook(ctx, notification); err != nil {
			d.Error = err.Error()
		} else {
			d.Delivered = true
		}
		deliveries = append(deliveries, d)
	}

	if len(deliveries) == 0 {
		return nil, fmt.Errorf("no notification channel is enabled")
	}
	return deliveries, nil
}

// sendEmail posts the notification to the configured email relay endpoint.
func (n *httpNotifier) sendEmail(ctx context.Context, notification Notification) error {
	endpoint := n.config.Email.Endpoint
	if endpoint == "" {
		return fmt.Errorf("email relay endpoint is not configured")
	}

	payload := map[string]interface{}{
		"to":       n.config.Email.Recipient,
		"from":     n.config.Email.FromHeader,
		"subject":  notification.Subject,
		"body":     notification.Message,
		"severity": notification.Severity,
		"details":  notification.Details,
	}
	return n.post(ctx, endpoint, payload, "email relay")
}

// sendWebhook posts the notification to the configured webhook URL.
func (n *httpNotifier) sendWebhook(ctx context.Context, notification Notification) error {
	url := n.config.Webhook.URL
	if url == "" {
		return fmt.Errorf("webhook URL is not configured")
	}
	return n.post(ctx, url, notification, "webhook")
}

func (n *httpNotifier) post(ctx context.Context, url string, payload interface{}, target string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", target, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", target, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send to %s: %w", target, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned status %d", target, resp.StatusCode)
	}

	return nil
}
