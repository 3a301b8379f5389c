// Package pii provides detection, validation, masking, and sensitivity
// classification of personally identifiable information in file content.
package pii

import (
	"time"
)

// Type represents different kinds of personally identifiable information
type Type string

const (
	TypeSSN           Type = "ssn"
	TypeCreditCard    Type = "credit_card"
	TypePhoneNumber   Type = "phone_number"
	TypeEmail         Type = "email"
	TypeIPAddress     Type = "ip_address"
	TypeDriversLicense Type = "drivers_license"
	TypePassport      Type = "passport"
	TypeDateOfBirth   Type = "date_of_birth"
	TypeBankAccount   Type = "bank_account"
	TypeTaxID         Type = "tax_id"
	TypeMedicalRecord Type = "medical_record_number"
	TypeBiometric     Type = "biometric"
	TypeGovernmentID  Type = "government_id"
	TypeCustom        Type = "custom"
)

// Severity represents the severity level of a finding
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

// Classification is the data-sensitivity tier derived from findings.
type Classification string

const (
	ClassPublic       Classification = "public"
	ClassInternal     Classification = "internal"
	ClassConfidential Classification = "confidential"
	ClassRestricted   Classification = "restricted"
)

// Handling is the recommended treatment for content with PII.
type Handling string

const (
	HandleAllow         Handling = "allow"
	HandleRedact        Handling = "redact"
	HandleEncrypt       Handling = "encrypt"
	HandleReject        Handling = "reject"
	HandleSecureStorage Handling = "secure_storage"
)

// Pattern is immutable PII detection reference data.
type Pattern struct {
	ID             string   `json:"id" yaml:"id"`
	Type           Type     `json:"type" yaml:"type"`
	Pattern        string   `json:"pattern" yaml:"pattern"`
	Severity       Severity `json:"severity" yaml:"severity"`
	Confidence     float64  `json:"confidence" yaml:"confidence"` // 0-100 base confidence
	Locale         string   `json:"locale,omitempty" yaml:"locale,omitempty"`
	Examples       []string `json:"examples,omitempty" yaml:"examples,omitempty"`
	FalsePositives []string `json:"false_positives,omitempty" yaml:"false_positives,omitempty"`
}

// Finding is one accepted, masked PII match. The raw matched value never
// leaves the matcher: MaskedValue and Context are both mask-substituted.
type Finding struct {
	Type        Type     `json:"type"`
	PatternID   string   `json:"pattern_id"`
	MaskedValue string   `json:"masked_value"`
	Confidence  float64  `json:"confidence"`
	Severity    Severity `json:"severity"`
	Offset      int      `json:"offset"`
	Length      int      `json:"length"`
	Line        int      `json:"line,omitempty"`
	Column      int      `json:"column,omitempty"`
	Context     string   `json:"context,omitempty"`
}

// ComplianceFlag marks a regulation implicated by a finding. Requirement and
// remediation text come from a static lookup, not computed per scan.
type ComplianceFlag struct {
	Regulation  string   `json:"regulation"`
	Requirement string   `json:"requirement"`
	Violated    bool     `json:"violated"`
	Severity    Severity `json:"severity"`
	Remediation string   `json:"remediation"`
}

// Result is the immutable outcome of one PII scan invocation.
type Result struct {
	ID                  string           `json:"id"`
	FileID              string           `json:"file_id"`
	FileName            string           `json:"file_name"`
	Findings            []Finding        `json:"findings"`
	Classification      Classification   `json:"classification"`
	RecommendedHandling Handling         `json:"recommended_handling"`
	ComplianceFlags     []ComplianceFlag `json:"compliance_flags,omitempty"`
	ScannedAt           time.Time        `json:"scanned_at"`
	ScanDuration        time.Duration    `json:"scan_duration"`
}

// Config controls matcher limits.
type Config struct {
	Enabled        bool `json:"enabled" yaml:"enabled"`
	MaxSampleBytes int  `json:"max_sample_bytes" yaml:"max_sample_bytes"`
	ContextWindow  int  `json:"context_window" yaml:"context_window"`
}

// DefaultConfig returns the default matcher configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		MaxSampleBytes: 1024 * 1024,
		ContextWindow:  30,
	}
}
