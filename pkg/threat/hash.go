package threat

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashMatcher looks up the content digest in a known-malware hash set.
// Matching is exact: a hit yields confidence 100 with the severity recorded
// in the intelligence record.
type HashMatcher struct {
	records map[string]HashRecord // lowercase hex SHA-256 -> record
}

// NewHashMatcher builds a matcher over the given hash records.
func NewHashMatcher(records []HashRecord) *HashMatcher {
	m := &HashMatcher{records: make(map[string]HashRecord, len(records))}
	for _, r := range records {
		m.records[strings.ToLower(r.Digest)] = r
	}
	return m
}

// Name identifies this analyzer.
func (m *HashMatcher) Name() string { return "hash" }

// Analyze computes the SHA-256 digest of the full content and checks it
// against the known-malware set.
func (m *HashMatcher) Analyze(input *Input) ([]Detection, error) {
	digest := sha256.Sum256(input.Content)
	key := hex.EncodeToString(digest[:])

	record, ok := m.records[key]
	if !ok {
		return nil, nil
	}

	return []Detection{{
		SignatureID: "hash:" + key[:12],
		Name:        record.Name,
		Type:        record.Type,
		Severity:    record.Severity,
		Confidence:  100,
		Conclusive:  true,
		Offset:      0,
		Length:      len(input.Content),
		Context:     "content digest matches known malware " + record.Name,
		Mitigation:  mitigationFor(record.Type),
	}}, nil
}

// ContentDigest returns the lowercase hex SHA-256 digest of content. It is
// exposed so callers can correlate scan results with stored hash records.
func ContentDigest(content []byte) string {
	digest := sha256.Sum256(content)
	return hex.EncodeToString(digest[:])
}
