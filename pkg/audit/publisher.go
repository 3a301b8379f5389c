// Package audit publishes security events to Kafka for downstream SIEM and
// compliance consumers.
package audit

import (
	"context"
	"time"

	"github.com/filesentry/filesentry/pkg/threat"
)

// EventKind classifies a security event.
type EventKind string

const (
	KindScan       EventKind = "scan"
	KindResponse   EventKind = "response"
	KindEscalation EventKind = "escalation"
	KindFailure    EventKind = "failure"
)

// SecurityEvent is one published security event.
type SecurityEvent struct {
	// Identifiers
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`

	// Classification
	Kind     EventKind       `json:"kind"`
	Severity threat.Severity `json:"severity"`

	// Subject
	FileID     string `json:"file_id"`
	FileName   string `json:"file_name,omitempty"`
	UploadedBy string `json:"uploaded_by,omitempty"`

	// Outcome
	Action      string                 `json:"action,omitempty"`
	Success     bool                   `json:"success"`
	RiskScore   float64                `json:"risk_score,omitempty"`
	Detections  int                    `json:"detections,omitempty"`
	PIIFindings int                    `json:"pii_findings,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// Publisher publishes security events.
type Publisher interface {
	// Publish sends events to their routed destinations.
	Publish(ctx context.Context, events []SecurityEvent) error

	// Close flushes pending messages and closes the connection.
	Close() error
}

// Topics defines the destinations for different event kinds.
type Topics struct {
	SecurityEvents string `json:"security_events"`
	Responses      string `json:"responses"`
	Critical       string `json:"critical"`
}

// PublisherConfig configures the publisher.
type PublisherConfig struct {
	// Kafka settings
	Brokers []string `json:"brokers"`
	Topics  Topics   `json:"topics"`

	// Producer settings
	BatchSize     int           `json:"batch_size"`
	FlushInterval time.Duration `json:"flush_interval"`
	Compression   string        `json:"compression"`   // "none", "gzip", "snappy", "lz4"
	RequiredAcks  string        `json:"required_acks"` // "none", "leader", "all"

	// Retry settings
	MaxRetries   int           `json:"max_retries"`
	RetryBackoff time.Duration `json:"retry_backoff"`
}

// DefaultPublisherConfig returns default publisher configuration.
func DefaultPublisherConfig() *PublisherConfig {
	return &PublisherConfig{
		Brokers: []string{"localhost:9092"},
		Topics: Topics{
			SecurityEvents: "filesentry.security.events",
			Responses:      "filesentry.security.responses",
			Critical:       "filesentry.security.critical",
		},
		BatchSize:     100,
		FlushInterval: time.Second,
		Compression:   "snappy",
		RequiredAcks:  "all",
		MaxRetries:    3,
		RetryBackoff:  100 * time.Millisecond,
	}
}
