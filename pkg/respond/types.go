// Package respond executes the actions the response policy decided on:
// quarantine, sanitize, block, delete, notify, escalate, log. Every executed
// action produces a response record in the audit store.
package respond

import (
	"time"

	"github.com/filesentry/filesentry/pkg/notify"
	"github.com/filesentry/filesentry/pkg/pii"
	"github.com/filesentry/filesentry/pkg/policy"
	"github.com/filesentry/filesentry/pkg/threat"
)

// Audit record kinds written by the executor.
const (
	RecordKindResponse   = "response"
	RecordKindQuarantine = "quarantine"
	RecordKindEscalation = "escalation"
)

// ThreatResponse records the outcome of one executed action. Failed actions
// produce a response with Success=false; they never abort the remaining
// actions.
type ThreatResponse struct {
	ID            string          `json:"id"`
	CorrelationID string          `json:"correlation_id"`
	FileID        string          `json:"file_id"`
	Action        policy.Action   `json:"action"`
	Automated     bool            `json:"automated"`
	Actor         string          `json:"actor"`
	Reason        string          `json:"reason,omitempty"`
	Success       bool            `json:"success"`
	Error         string          `json:"error,omitempty"`
	Details       ResponseDetails `json:"details,omitempty"`
	ExecutedAt    time.Time       `json:"executed_at"`
	Duration      time.Duration   `json:"duration"`
}

// ResponseDetails carries the action-specific outcome data.
type ResponseDetails struct {
	QuarantineID  string            `json:"quarantine_id,omitempty"`
	QuarantineKey string            `json:"quarantine_key,omitempty"`
	SanitizedKey  string            `json:"sanitized_key,omitempty"`
	DeletedKey    string            `json:"deleted_key,omitempty"`
	EscalationID  string            `json:"escalation_id,omitempty"`
	Deliveries    []notify.Delivery `json:"deliveries,omitempty"`
	Note          string            `json:"note,omitempty"`
}

// QuarantineRecord describes one quarantined file copy.
type QuarantineRecord struct {
	ID             string    `json:"id"`
	CorrelationID  string    `json:"correlation_id"`
	FileID         string    `json:"file_id"`
	FileName       string    `json:"file_name"`
	Key            string    `json:"key"`
	Reason         string    `json:"reason"`
	AccessLevel    string    `json:"access_level"`
	Compressed     bool      `json:"compressed"`
	OriginalSize   int       `json:"original_size"`
	StoredSize     int       `json:"stored_size"`
	QuarantinedAt  time.Time `json:"quarantined_at"`
	ReviewRequired bool      `json:"review_required"`
	ReviewBy       time.Time `json:"review_by,omitempty"`
	ExpiresAt      time.Time `json:"expires_at,omitempty"`
}

// EscalationTicket is the manual-review handoff produced by an escalate
// action.
type EscalationTicket struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	FileID        string    `json:"file_id"`
	Severity      string    `json:"severity"`
	Summary       string    `json:"summary"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// Request is everything the executor needs to carry out one decided action
// list against one file.
type Request struct {
	CorrelationID string
	Content       []byte
	Metadata      threat.FileMetadata
	// SourceKey is the blob key of the stored upload, when the caller has
	// already persisted it. Delete acts on this key.
	SourceKey    string
	ThreatResult *threat.Result
	PIIResult    *pii.Result
	Actions      []policy.Action
	ActorContext string
}

// QuarantineConfig controls quarantine copies.
type QuarantineConfig struct {
	KeyPrefix    string        `json:"key_prefix" yaml:"key_prefix"`
	Retention    time.Duration `json:"retention" yaml:"retention"`
	ReviewWithin time.Duration `json:"review_within" yaml:"review_within"`
	Compress     bool          `json:"compress" yaml:"compress"`
}

// SanitizeConfig controls sanitized copies.
type SanitizeConfig struct {
	KeyPrefix   string `json:"key_prefix" yaml:"key_prefix"`
	Placeholder string `json:"placeholder" yaml:"placeholder"`
}

// Config holds executor settings.
type Config struct {
	Quarantine QuarantineConfig `json:"quarantine" yaml:"quarantine"`
	Sanitize   SanitizeConfig   `json:"sanitize" yaml:"sanitize"`
}

// DefaultConfig returns the default executor configuration.
func DefaultConfig() *Config {
	return &Config{
		Quarantine: QuarantineConfig{
			KeyPrefix:    "quarantine",
			Retention:    90 * 24 * time.Hour,
			ReviewWithin: 72 * time.Hour,
			Compress:     true,
		},
		Sanitize: SanitizeConfig{
			KeyPrefix:   "sanitized",
			Placeholder: "[REMOVED]",
		},
	}
}
