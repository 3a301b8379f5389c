// Package threat provides file threat detection: signature scanning,
// known-malware hash lookup, behavioral heuristics, extension analysis,
// and structural analysis of uploaded file content.
package threat

import (
	"fmt"
	"time"
)

// Type categorizes detected threats
type Type string

const (
	TypeMalware            Type = "malware"
	TypeVirus              Type = "virus"
	TypeTrojan             Type = "trojan"
	TypeRansomware         Type = "ransomware"
	TypeSpyware            Type = "spyware"
	TypeBackdoor           Type = "backdoor"
	TypeObfuscatedCode     Type = "obfuscated_code"
	TypeEmbeddedExecutable Type = "embedded_executable"
	TypeSuspiciousScript   Type = "suspicious_script"
	TypeSuspiciousPattern  Type = "suspicious_pattern"
	TypePhishing           Type = "phishing"
	TypeUnknown            Type = "unknown"
)

// Severity represents the severity level of a detected threat
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Value returns numeric value for severity comparison
func (s Severity) Value() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityLow:
		return 2
	case SeverityMedium:
		return 3
	case SeverityHigh:
		return 4
	case SeverityCritical:
		return 5
	default:
		return 0
	}
}

// Recommendation is the suggested disposition for a scanned file
type Recommendation string

const (
	RecommendAllow        Recommendation = "allow"
	RecommendWarn         Recommendation = "warn"
	RecommendSanitize     Recommendation = "sanitize"
	RecommendQuarantine   Recommendation = "quarantine"
	RecommendBlock        Recommendation = "block"
	RecommendManualReview Recommendation = "manual_review"
)

// Signature is a named regex pattern with associated threat metadata.
// Signatures are immutable once loaded and versioned as a set.
type Signature struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Type       Type      `json:"type" yaml:"type"`
	Pattern    string    `json:"pattern" yaml:"pattern"`
	Severity   Severity  `json:"severity" yaml:"severity"`
	Confidence float64   `json:"confidence" yaml:"confidence"` // 0-100
	Source     string    `json:"source,omitempty" yaml:"source,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// HashRecord ties a known-malware content digest to threat metadata.
type HashRecord struct {
	Digest   string   `json:"digest" yaml:"digest"` // hex SHA-256 of full content
	Name     string   `json:"name" yaml:"name"`
	Type     Type     `json:"type" yaml:"type"`
	Severity Severity `json:"severity" yaml:"severity"`
	Source   string   `json:"source,omitempty" yaml:"source,omitempty"`
}

// SignatureSet is a versioned snapshot of threat intelligence reference data.
type SignatureSet struct {
	Version    string      `json:"version"`
	Signatures []Signature `json:"signatures"`
	Hashes     []HashRecord `json:"hashes"`
}

// Detection represents one detected threat within a scan.
// Detections are ephemeral: only the aggregate result is persisted.
type Detection struct {
	SignatureID string   `json:"signature_id"`
	Name        string   `json:"name"`
	Type        Type     `json:"type"`
	Severity    Severity `json:"severity"`
	Confidence  float64  `json:"confidence"` // 0-100, may differ per match
	// Conclusive marks a detection that is proof by itself, such as an
	// exact known-malware digest match. The engine forces the risk score
	// to 100 when any conclusive detection is present.
	Conclusive bool `json:"conclusive,omitempty"`
	Offset      int      `json:"offset"`
	Length      int      `json:"length"`
	Line        int      `json:"line,omitempty"`   // 1-based, textual matches only
	Column      int      `json:"column,omitempty"` // 1-based, textual matches only
	Context     string   `json:"context,omitempty"`
	Mitigation  string   `json:"mitigation,omitempty"`
}

// Result is the immutable outcome of one threat scan invocation.
type Result struct {
	ID              string        `json:"id"`
	FileID          string        `json:"file_id"`
	FileName        string        `json:"file_name"`
	Threats         []Detection   `json:"threats"`
	RiskScore       float64       `json:"risk_score"` // 0-100
	OverallSeverity Severity      `json:"overall_severity"`
	Recommendation  Recommendation `json:"recommendation"`
	ScannedAt       time.Time     `json:"scanned_at"`
	ScanDuration    time.Duration `json:"scan_duration"`
	EngineVersion   string        `json:"engine_version"`
	IntelVersion    string        `json:"intel_version"`
	Diagnostics     []string      `json:"diagnostics,omitempty"` // recovered analyzer failures
}

// FileMetadata describes the file being scanned.
type FileMetadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size"`
	UploadedBy  string `json:"uploaded_by,omitempty"`
}

// ErrorCode identifies the failure class of a ScanError.
type ErrorCode string

const (
	ErrCodeDisabled     ErrorCode = "scanning_disabled"
	ErrCodeSizeExceeded ErrorCode = "size_exceeded"
	ErrCodeTimeout      ErrorCode = "timeout"
	ErrCodeDecode       ErrorCode = "decode_failed"
)

// ScanError is returned when a scan invocation fails outright.
// Analyzer-level failures are recovered and never surface as ScanError.
type ScanError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan failed (%s): %s", e.Code, e.Message)
}

// Config controls engine-level limits and heuristic thresholds.
type Config struct {
	Enabled          bool          `json:"enabled" yaml:"enabled"`
	MaxFileSize      int64         `json:"max_file_size" yaml:"max_file_size"`
	Timeout          time.Duration `json:"timeout" yaml:"timeout"`
	MaxSampleBytes   int           `json:"max_sample_bytes" yaml:"max_sample_bytes"`
	EntropyThreshold float64       `json:"entropy_threshold" yaml:"entropy_threshold"`
	MaxURLCount      int           `json:"max_url_count" yaml:"max_url_count"`
	ContextWindow    int           `json:"context_window" yaml:"context_window"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:          true,
		MaxFileSize:      50 * 1024 * 1024, // 50MB
		Timeout:          30 * time.Second,
		MaxSampleBytes:   1024 * 1024, // bounded sample applied uniformly to text detectors
		EntropyThreshold: 7.5,
		MaxURLCount:      10,
		ContextWindow:    30,
	}
}
