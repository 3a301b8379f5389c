package main

import (
	"fmt"

	"github.com/filesentry/filesentry/pkg/audit"
	"github.com/filesentry/filesentry/pkg/config"
	"github.com/filesentry/filesentry/pkg/intel"
	"github.com/filesentry/filesentry/pkg/notify"
	"github.com/filesentry/filesentry/pkg/pii"
	"github.com/filesentry/filesentry/pkg/policy"
	"github.com/filesentry/filesentry/pkg/respond"
	"github.com/filesentry/filesentry/pkg/security"
	"github.com/filesentry/filesentry/pkg/storage"
	"github.com/filesentry/filesentry/pkg/threat"
)

// loadConfig reads the config file when one was given, otherwise returns the
// built-in defaults.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(cfgFile)
}

// buildOrchestrator wires an orchestrator with in-memory collaborators from
// the loaded configuration. The returned closer flushes the audit publisher.
func buildOrchestrator(cfg *config.Config) (*security.Orchestrator, func() error, error) {
	var source intel.Source = intel.StaticSource{}
	if cfg.Intel.RulesDir != "" {
		source = intel.FileSource{Dir: cfg.Intel.RulesDir}
	}
	provider := intel.NewProvider(source, storage.NewMemoryCache(), cfg.Intel.RefreshTTL)

	var notifier notify.Notifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.Webhook.Enabled {
		notifier = notify.NewHTTPNotifier(notify.Config{
			Email: notify.EmailConfig{
				Enabled:    cfg.Notifications.Email.Enabled,
				Endpoint:   cfg.Notifications.Email.Endpoint,
				Recipient:  cfg.Notifications.Email.Recipient,
				FromHeader: cfg.Notifications.Email.FromHeader,
			},
			Webhook: notify.WebhookConfig{
				Enabled: cfg.Notifications.Webhook.Enabled,
				URL:     cfg.Notifications.Webhook.URL,
			},
		})
	}

	executor := respond.NewExecutor(
		storage.NewMemoryBlobStore(),
		storage.NewMemoryAuditStore(),
		notifier,
		&respond.Config{
			Quarantine: respond.QuarantineConfig{
				KeyPrefix:    cfg.Quarantine.KeyPrefix,
				Retention:    cfg.Quarantine.Retention,
				ReviewWithin: cfg.Quarantine.ReviewWithin,
				Compress:     cfg.Quarantine.Compress,
			},
			Sanitize: respond.SanitizeConfig{
				KeyPrefix:   cfg.Sanitize.KeyPrefix,
				Placeholder: cfg.Sanitize.Placeholder,
			},
		},
	)

	var events audit.Publisher
	closer := func() error { return nil }
	if cfg.Audit.Kafka.Enabled {
		publisher, err := audit.NewKafkaPublisher(&audit.PublisherConfig{
			Brokers: cfg.Audit.Kafka.Brokers,
			Topics: audit.Topics{
				SecurityEvents: cfg.Audit.Kafka.Topics.SecurityEvents,
				Responses:      cfg.Audit.Kafka.Topics.Responses,
				Critical:       cfg.Audit.Kafka.Topics.Critical,
			},
			FlushInterval: cfg.Audit.Kafka.FlushInterval,
			Compression:   cfg.Audit.Kafka.Compression,
			RequiredAcks:  cfg.Audit.Kafka.RequiredAcks,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting audit publisher: %w", err)
		}
		events = publisher
		closer = publisher.Close
	}

	orchestrator := security.NewOrchestrator(provider, policy.NewEngine(&policy.Config{
		AutoQuarantineThreshold: cfg.Policy.AutoQuarantineThreshold,
		NotificationsEnabled:    cfg.Policy.NotificationsEnabled,
	}), executor, events, &security.Config{
		Threat: &threat.Config{
			Enabled:          cfg.Threat.Enabled,
			MaxFileSize:      cfg.Threat.MaxFileSize,
			Timeout:          cfg.Threat.Timeout,
			MaxSampleBytes:   cfg.Threat.MaxSampleBytes,
			EntropyThreshold: cfg.Threat.EntropyThreshold,
			MaxURLCount:      cfg.Threat.MaxURLCount,
			ContextWindow:    cfg.Threat.ContextWindow,
		},
		PII: &pii.Config{
			Enabled:        cfg.PII.Enabled,
			MaxSampleBytes: cfg.PII.MaxSampleBytes,
			ContextWindow:  cfg.PII.ContextWindow,
		},
	})

	return orchestrator, closer, nil
}
