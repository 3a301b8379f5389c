// Package config provides configuration loading and validation for the
// FileSentry security engine. It supports YAML configuration files with
// environment variable substitution.
package config

import "time"

// Config is the top-level configuration structure mirroring filesentry.yaml.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Threat        ThreatConfig        `yaml:"threat"`
	PII           PIIConfig           `yaml:"pii"`
	Policy        PolicyConfig        `yaml:"policy"`
	Intel         IntelConfig         `yaml:"intel"`
	Quarantine    QuarantineConfig    `yaml:"quarantine"`
	Sanitize      SanitizeConfig      `yaml:"sanitize"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Audit         AuditConfig         `yaml:"audit"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServiceConfig holds service identification metadata.
type ServiceConfig struct {
	ID          string `yaml:"id"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// ThreatConfig holds threat detection engine settings.
type ThreatConfig struct {
	Enabled          bool          `yaml:"enabled"`
	MaxFileSize      int64         `yaml:"max_file_size"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxSampleBytes   int           `yaml:"max_sample_bytes"`
	EntropyThreshold float64       `yaml:"entropy_threshold"`
	MaxURLCount      int           `yaml:"max_url_count"`
	ContextWindow    int           `yaml:"context_window"`
}

// PIIConfig holds PII matcher settings.
type PIIConfig struct {
	Enabled        bool `yaml:"enabled"`
	MaxSampleBytes int  `yaml:"max_sample_bytes"`
	ContextWindow  int  `yaml:"context_window"`
}

// PolicyConfig holds response policy thresholds.
type PolicyConfig struct {
	AutoQuarantineThreshold float64 `yaml:"auto_quarantine_threshold"`
	NotificationsEnabled    bool    `yaml:"notifications_enabled"`
}

// IntelConfig holds threat-intelligence reference data settings.
type IntelConfig struct {
	RulesDir   string        `yaml:"rules_dir"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
}

// QuarantineConfig holds quarantine storage settings.
type QuarantineConfig struct {
	KeyPrefix    string        `yaml:"key_prefix"`
	Retention    time.Duration `yaml:"retention"`
	ReviewWithin time.Duration `yaml:"review_within"`
	Compress     bool          `yaml:"compress"`
}

// SanitizeConfig holds sanitized-copy settings.
type SanitizeConfig struct {
	KeyPrefix   string `yaml:"key_prefix"`
	Placeholder string `yaml:"placeholder"`
}

// NotificationsConfig holds notification channel settings.
type NotificationsConfig struct {
	Email   EmailChannelConfig   `yaml:"email"`
	Webhook WebhookChannelConfig `yaml:"webhook"`
}

// EmailChannelConfig configures the email notification channel.
type EmailChannelConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	Recipient  string `yaml:"recipient"`
	FromHeader string `yaml:"from_header"`
}

// WebhookChannelConfig configures the webhook notification channel.
type WebhookChannelConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// AuditConfig holds audit event publishing settings.
type AuditConfig struct {
	Kafka KafkaConfig `yaml:"kafka"`
}

// KafkaConfig holds Kafka connection and producer settings.
type KafkaConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Brokers       []string      `yaml:"brokers"`
	Topics        TopicsConfig  `yaml:"topics"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	RequiredAcks  string        `yaml:"required_acks"`
	Compression   string        `yaml:"compression"`
}

// TopicsConfig maps event kinds to Kafka topic names.
type TopicsConfig struct {
	SecurityEvents string `yaml:"security_events"`
	Responses      string `yaml:"responses"`
	Critical       string `yaml:"critical"`
}

// LoggingConfig holds fallback logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
