package threat

import (
	"fmt"
	"regexp"
)

// compiledSignature pairs a signature with its compiled pattern.
type compiledSignature struct {
	Signature
	re *regexp.Regexp
}

// SignatureMatcher scans decoded file text against the loaded signature set.
type SignatureMatcher struct {
	signatures []compiledSignature
	window     int
}

// NewSignatureMatcher compiles the given signatures. A signature whose
// pattern fails to compile is rejected with an error rather than silently
// skipped; the intelligence set is reference data and must be well-formed.
func NewSignatureMatcher(signatures []Signature, contextWindow int) (*SignatureMatcher, error) {
	compiled := make([]compiledSignature, 0, len(signatures))
	for _, sig := range signatures {
		re, err := regexp.Compile(sig.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling signature %s: %w", sig.ID, err)
		}
		compiled = append(compiled, compiledSignature{Signature: sig, re: re})
	}
	return &SignatureMatcher{signatures: compiled, window: contextWindow}, nil
}

// Name identifies this analyzer.
func (m *SignatureMatcher) Name() string { return "signature" }

// Analyze runs every signature pattern over the decoded text sample. Each
// match becomes one detection carrying the signature's declared confidence
// and severity. Overlapping matches of different signatures are all retained;
// only exact duplicates of the same signature at the same offset are
// suppressed.
func (m *SignatureMatcher) Analyze(input *Input) ([]Detection, error) {
	var detections []Detection

	for _, sig := range m.signatures {
		seen := make(map[int]struct{})
		for _, idx := range sig.re.FindAllStringIndex(input.Text, -1) {
			start, end := idx[0], idx[1]
			if _, dup := seen[start]; dup {
				continue
			}
			seen[start] = struct{}{}

			line, col := lineColumn(input.Text, start)
			detections = append(detections, Detection{
				SignatureID: sig.ID,
				Name:        sig.Name,
				Type:        sig.Type,
				Severity:    sig.Severity,
				Confidence:  sig.Confidence,
				Offset:      start,
				Length:      end - start,
				Line:        line,
				Column:      col,
				Context:     extractContext(input.Text, start, end, m.window),
				Mitigation:  mitigationFor(sig.Type),
			})
		}
	}

	return detections, nil
}

// mitigationFor returns the suggested mitigation text for a threat type.
func mitigationFor(t Type) string {
	switch t {
	case TypeMalware, TypeVirus, TypeTrojan, TypeSpyware:
		return "Block the file and notify the uploader that malicious content was detected."
	case TypeRansomware, TypeBackdoor:
		return "Block and delete the file immediately; escalate to the security team."
	case TypeObfuscatedCode, TypeSuspiciousScript:
		return "Quarantine the file pending manual review of the embedded code."
	case TypeEmbeddedExecutable:
		return "Quarantine the file; embedded executable content is not permitted in uploads."
	case TypePhishing:
		return "Block the file and warn recipients that it contains phishing content."
	case TypeSuspiciousPattern:
		return "Flag the file for manual review."
	default:
		return "Review the file manually before releasing it."
	}
}
