package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR} and ${VAR:-default} expressions.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// Default returns a configuration with built-in defaults for every section.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			ID:          "filesentry",
			Version:     "1.0.0",
			Environment: "development",
		},
		Threat: ThreatConfig{
			Enabled:          true,
			MaxFileSize:      50 * 1024 * 1024,
			Timeout:          30 * time.Second,
			MaxSampleBytes:   1024 * 1024,
			EntropyThreshold: 7.5,
			MaxURLCount:      10,
			ContextWindow:    30,
		},
		PII: PIIConfig{
			Enabled:        true,
			MaxSampleBytes: 1024 * 1024,
			ContextWindow:  30,
		},
		Policy: PolicyConfig{
			AutoQuarantineThreshold: 70,
		},
		Intel: IntelConfig{
			RefreshTTL: 5 * time.Minute,
		},
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
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads a YAML config file, performs environment variable
// substitution on the raw bytes, then unmarshals into a Config struct.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	data = ExpandEnv(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// ExpandEnv replaces ${VAR} and ${VAR:-default} patterns in content with
// the corresponding environment variable values. If a variable is not set
// and no default is provided, the expression is replaced with an empty
// string.
func ExpandEnv(content []byte) []byte {
	return envVarPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		groups := envVarPattern.FindSubmatch(match)
		if groups == nil {
			return match
		}

		varName := string(groups[1])
		defaultVal := ""
		hasDefault := len(groups) > 2 && groups[2] != nil
		if hasDefault {
			defaultVal = string(groups[2])
		}

		val, ok := os.LookupEnv(varName)
		if !ok || val == "" {
			if hasDefault {
				return []byte(defaultVal)
			}
			return []byte("")
		}
		return []byte(val)
	})
}

// Validate performs basic validation on a loaded Config. It checks that
// required fields are set and that values are within expected ranges.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.Service.ID == "" {
		return fmt.Errorf("service.id is required")
	}

	if cfg.Threat.MaxFileSize < 0 {
		return fmt.Errorf("threat.max_file_size must be non-negative, got %d", cfg.Threat.MaxFileSize)
	}
	if cfg.Threat.Timeout < 0 {
		return fmt.Errorf("threat.timeout cannot be negative")
	}
	if cfg.Threat.EntropyThreshold < 0 || cfg.Threat.EntropyThreshold > 8 {
		return fmt.Errorf("threat.entropy_threshold must be between 0 and 8 bits, got %f", cfg.Threat.EntropyThreshold)
	}

	if cfg.Policy.AutoQuarantineThreshold < 0 || cfg.Policy.AutoQuarantineThreshold > 100 {
		return fmt.Errorf("policy.auto_quarantine_threshold must be between 0 and 100, got %f", cfg.Policy.AutoQuarantineThreshold)
	}

	if cfg.Audit.Kafka.Enabled && len(cfg.Audit.Kafka.Brokers) == 0 {
		return fmt.Errorf("audit.kafka.brokers is required when Kafka publishing is enabled")
	}

	acks := cfg.Audit.Kafka.RequiredAcks
	if acks != "" && acks != "none" && acks != "leader" && acks != "all" {
		return fmt.Errorf("audit.kafka.required_acks %q is not valid; must be one of: none, leader, all", acks)
	}

	level := cfg.Logging.Level
	if level != "" {
		validLevels := map[string]bool{
			"debug": true, "info": true, "warn": true, "error": true,
		}
		if !validLevels[level] {
			return fmt.Errorf("logging.level %q is not valid; must be one of: debug, info, warn, error", level)
		}
	}

	return nil
}
