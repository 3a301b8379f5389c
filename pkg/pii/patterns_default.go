package pii

// DefaultPatterns returns the built-in PII pattern set. Patterns whose type
// has an algorithmic validator rely on it for false-positive suppression;
// the contextual patterns carry their context requirement in the regex.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			ID:         "pii-ssn",
			Type:       TypeSSN,
			Pattern:    `\b\d{3}[-\s]?\d{2}[-\s]?\d{4}\b`,
			Severity:   SeverityCritical,
			Confidence: 90,
			Locale:     "US",
			Examples:   []string{"123-45-6789"},
		},
		{
			ID:         "pii-credit-card",
			Type:       TypeCreditCard,
			Pattern:    `\b(?:\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}|\d{15,16})\b`,
			Severity:   SeverityCritical,
			Confidence: 90,
			Examples:   []string{"4111-1111-1111-1111"},
		},
		{
			ID:         "pii-phone",
			Type:       TypePhoneNumber,
			Pattern:    `(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`,
			Severity:   SeverityMedium,
			Confidence: 70,
			Locale:     "US",
			Examples:   []string{"(212) 555-0187"},
		},
		{
			ID:         "pii-email",
			Type:       TypeEmail,
			Pattern:    `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
			Severity:   SeverityMedium,
			Confidence: 85,
			Examples:   []string{"jane.doe@acme.io"},
		},
		{
			ID:   "pii-ip-address",
			Type: TypeIPAddress,
			Pattern: `\b(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.` +
				`(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.` +
				`(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.` +
				`(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`,
			Severity:   SeverityLow,
			Confidence: 70,
		},
		{
			ID:         "pii-drivers-license",
			Type:       TypeDriversLicense,
			Pattern:    `(?i)driver'?s?\s+licen[sc]e[\s#:no.]*[A-Z0-9]{5,13}\b`,
			Severity:   SeverityHigh,
			Confidence: 75,
			Locale:     "US",
		},
		{
			ID:         "pii-passport",
			Type:       TypePassport,
			Pattern:    `(?i)passport[\s#:no.]*[A-Z][0-9]{8}\b`,
			Severity:   SeverityHigh,
			Confidence: 80,
		},
		{
			ID:         "pii-dob",
			Type:       TypeDateOfBirth,
			Pattern:    `(?i)(?:dob|birth(?:day|date)?|born)[\s:]*(?:\d{1,2}[-/]\d{1,2}[-/]\d{2,4}|\d{4}[-/]\d{1,2}[-/]\d{1,2})`,
			Severity:   SeverityMedium,
			Confidence: 80,
		},
		{
			ID:         "pii-bank-account",
			Type:       TypeBankAccount,
			Pattern:    `(?i)(?:(?:account|acct|a/c)[\s#:]*\d{8,17}|(?:routing|aba|rtn)[\s#:]*\d{9}|\b[A-Z]{2}\d{2}[A-Z0-9]{11,27}\b)`,
			Severity:   SeverityHigh,
			Confidence: 80,
		},
		{
			ID:         "pii-tax-id",
			Type:       TypeTaxID,
			Pattern:    `(?i)(?:ein|tax\s*id)[\s#:]*\d{2}-?\d{7}\b`,
			Severity:   SeverityHigh,
			Confidence: 80,
			Locale:     "US",
		},
		{
			ID:         "pii-mrn",
			Type:       TypeMedicalRecord,
			Pattern:    `(?i)(?:mrn|medical\s+record(?:\s+number)?)[\s#:]*\d{6,10}\b`,
			Severity:   SeverityCritical,
			Confidence: 85,
		},
		{
			ID:         "pii-biometric",
			Type:       TypeBiometric,
			Pattern:    `(?i)(?:fingerprint|retina|iris|faceprint)\s+(?:id|template|hash)[\s#:]*\S{8,}`,
			Severity:   SeverityCritical,
			Confidence: 70,
		},
		{
			ID:         "pii-government-id",
			Type:       TypeGovernmentID,
			Pattern:    `(?i)(?:national\s+id|government\s+id)[\s#:no.]*[A-Z0-9-]{6,15}\b`,
			Severity:   SeverityHigh,
			Confidence: 70,
		},
	}
}
