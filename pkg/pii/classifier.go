package pii

// Classifier maps findings to a sensitivity classification, a recommended
// handling, and compliance-regulation flags. The regulation table is
// injected at construction so tests can substitute alternate policies.
type Classifier struct {
	regulations map[Type][]ComplianceFlag
}

// NewClassifier creates a classifier with the default regulation table.
func NewClassifier() *Classifier {
	return &Classifier{regulations: defaultRegulationTable()}
}

// NewClassifierWithTable creates a classifier with a custom regulation table.
func NewClassifierWithTable(table map[Type][]ComplianceFlag) *Classifier {
	return &Classifier{regulations: table}
}

// Classify derives the sensitivity tier from the most severe finding:
// critical -> restricted, high -> confidential, medium -> internal,
// otherwise public.
func (c *Classifier) Classify(findings []Finding) Classification {
	max := Severity("")
	for _, f := range findings {
		if f.Severity.Value() > max.Value() {
			max = f.Severity
		}
	}
	switch {
	case max == SeverityCritical:
		return ClassRestricted
	case max == SeverityHigh:
		return ClassConfidential
	case max == SeverityMedium:
		return ClassInternal
	default:
		return ClassPublic
	}
}

// Handling derives the recommended treatment. Critical findings of the
// highest-stakes identifier types force rejection outright; otherwise the
// handling follows the classification tier.
func (c *Classifier) Handling(classification Classification, findings []Finding) Handling {
	for _, f := range findings {
		if f.Severity != SeverityCritical {
			continue
		}
		switch f.Type {
		case TypeSSN, TypeCreditCard, TypeBankAccount:
			return HandleReject
		}
	}

	switch classification {
	case ClassRestricted:
		return HandleReject
	case ClassConfidential:
		return HandleEncrypt
	case ClassInternal:
		return HandleRedact
	default:
		return HandleAllow
	}
}

// Flags returns the compliance flags implicated by the findings, one per
// (type, regulation) pair. Requirement and remediation text come from the
// static table.
func (c *Classifier) Flags(findings []Finding) []ComplianceFlag {
	seen := make(map[string]struct{})
	var flags []ComplianceFlag
	for _, f := range findings {
		for _, flag := range c.regulations[f.Type] {
			key := string(f.Type) + ":" + flag.Regulation
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			flags = append(flags, flag)
		}
	}
	return flags
}

// defaultRegulationTable is the static type -> regulation lookup. Flags are
// emitted as violated because a finding of the type is, by definition,
// unprotected content in the scanned file.
func defaultRegulationTable() map[Type][]ComplianceFlag {
	return map[Type][]ComplianceFlag{
		TypeSSN: {
			{
				Regulation:  "GDPR",
				Requirement: "National identification numbers are personal data under Article 4(1) and require a lawful processing basis.",
				Violated:    true,
				Severity:    SeverityCritical,
				Remediation: "Remove or encrypt the SSN before storage; record the processing basis.",
			},
			{
				Regulation:  "SOX",
				Requirement: "Identity data in financial records must be access-controlled under section 404 controls.",
				Violated:    true,
				Severity:    SeverityHigh,
				Remediation: "Move the file to access-restricted storage and log access.",
			},
		},
		TypeCreditCard: {
			{
				Regulation:  "PCI-DSS",
				Requirement: "Primary account numbers must be rendered unreadable wherever stored (requirement 3.4).",
				Violated:    true,
				Severity:    SeverityCritical,
				Remediation: "Reject the upload or truncate/tokenize the card number before storage.",
			},
		},
		TypeBankAccount: {
			{
				Regulation:  "PCI-DSS",
				Requirement: "Account data must be protected in storage (requirement 3.2).",
				Violated:    true,
				Severity:    SeverityHigh,
				Remediation: "Encrypt the file at rest and restrict access.",
			},
			{
				Regulation:  "SOX",
				Requirement: "Financial account information must be protected per section 302 controls.",
				Violated:    true,
				Severity:    SeverityHigh,
				Remediation: "Move the file to access-restricted storage and log access.",
			},
		},
		TypeMedicalRecord: {
			{
				Regulation:  "HIPAA",
				Requirement: "Medical record numbers are protected health information under 164.514.",
				Violated:    true,
				Severity:    SeverityCritical,
				Remediation: "Encrypt the file and restrict access to authorized personnel.",
			},
		},
		TypeBiometric: {
			{
				Regulation:  "GDPR",
				Requirement: "Biometric data is a special category under Article 9 and requires explicit consent.",
				Violated:    true,
				Severity:    SeverityCritical,
				Remediation: "Reject the upload unless explicit consent is on record.",
			},
		},
		TypeEmail: {
			{
				Regulation:  "GDPR",
				Requirement: "Email addresses are personal data under Article 4(1).",
				Violated:    true,
				Severity:    SeverityMedium,
				Remediation: "Redact addresses or document the processing basis.",
			},
			{
				Regulation:  "CCPA",
				Requirement: "Email addresses are personal information under 1798.140.",
				Violated:    true,
				Severity:    SeverityMedium,
				Remediation: "Include the file in consumer data inventories.",
			},
		},
		TypePhoneNumber: {
			{
				Regulation:  "GDPR",
				Requirement: "Phone numbers are personal data under Article 4(1).",
				Violated:    true,
				Severity:    SeverityMedium,
				Remediation: "Redact numbers or document the processing basis.",
			},
		},
		TypeDriversLicense: {
			{
				Regulation:  "CCPA",
				Requirement: "Driver's license numbers are personal information under 1798.140.",
				Violated:    true,
				Severity:    SeverityHigh,
				Remediation: "Encrypt the file at rest and restrict access.",
			},
		},
		TypePassport: {
			{
				Regulation:  "GDPR",
				Requirement: "Passport numbers are identity document data requiring protection.",
				Violated:    true,
				Severity:    SeverityHigh,
				Remediation: "Encrypt the file at rest and restrict access.",
			},
		},
		TypeTaxID: {
			{
				Regulation:  "SOX",
				Requirement: "Tax identifiers in financial records require access controls.",
				Violated:    true,
				Severity:    SeverityHigh,
				Remediation: "Move the file to access-restricted storage.",
			},
		},
		TypeDateOfBirth: {
			{
				Regulation:  "GDPR",
				Requirement: "Dates of birth are personal data under Article 4(1).",
				Violated:    true,
				Severity:    SeverityMedium,
				Remediation: "Redact the date or document the processing basis.",
			},
		},
		TypeIPAddress: {
			{
				Regulation:  "GDPR",
				Requirement: "IP addresses may constitute personal data under Article 4(1).",
				Violated:    true,
				Severity:    SeverityLow,
				Remediation: "Review whether addresses identify natural persons.",
			},
		},
		TypeGovernmentID: {
			{
				Regulation:  "GDPR",
				Requirement: "Government identifiers are personal data requiring protection.",
				Violated:    true,
				Severity:    SeverityHigh,
				Remediation: "Encrypt the file at rest and restrict access.",
			},
		},
	}
}
