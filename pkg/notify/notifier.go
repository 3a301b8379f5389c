// Package notify delivers security notifications over the configured
// channels. Delivery is best-effort: the caller records per-channel outcomes
// and never blocks a response on a failed notification.
package notify

import (
	"context"
)

// Method identifies a delivery channel.
type Method string

const (
	MethodEmail   Method = "email"
	MethodWebhook Method = "webhook"
)

// Notification is one message to deliver.
type Notification struct {
	Subject  string                 `json:"subject"`
	Message  string                 `json:"message"`
	Severity string                 `json:"severity,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// Delivery is the outcome of one channel attempt.
type Delivery struct {
	Method    Method `json:"method"`
	Recipient string `json:"recipient"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

// Config holds per-channel notification settings.
type Config struct {
	Email   EmailConfig   `json:"email" yaml:"email"`
	Webhook WebhookConfig `json:"webhook" yaml:"webhook"`
}

// EmailConfig configures the email relay channel. Endpoint is an HTTP relay
// that accepts the JSON notification payload and handles SMTP delivery.
type EmailConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Endpoint   string `json:"endpoint" yaml:"endpoint"`
	Recipient  string `json:"recipient" yaml:"recipient"`
	FromHeader string `json:"from_header" yaml:"from_header"`
}

// WebhookConfig configures the generic webhook channel.
type WebhookConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	URL     string `json:"url" yaml:"url"`
}

// Notifier sends a notification over every enabled channel and reports each
// channel's outcome.
type Notifier interface {
	// Send attempts delivery over all enabled channels. It returns one
	// Delivery per attempted channel; a channel failure is reported in its
	// Delivery, not as the error. The error is non-nil only when no channel
	// is enabled.
	Send(ctx context.Context, notification Notification) ([]Delivery, error)
}
