package intel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/filesentry/filesentry/pkg/threat"
)

func TestDefaultDatabase(t *testing.T) {
	db := DefaultDatabase()
	if len(db.Signatures) == 0 {
		t.Fatal("expected built-in signatures")
	}
	if len(db.PIIPatterns) == 0 {
		t.Fatal("expected built-in PII patterns")
	}
	if db.Version == "" {
		t.Error("expected a derived version")
	}
	if got := DefaultDatabase().Version; got != db.Version {
		t.Errorf("version not stable: %s vs %s", got, db.Version)
	}
}

func TestMerge(t *testing.T) {
	base := &Database{
		Signatures: []threat.Signature{
			{ID: "sig-a", Pattern: "a", Severity: threat.SeverityLow, Confidence: 50},
			{ID: "sig-b", Pattern: "b", Severity: threat.SeverityLow, Confidence: 50},
		},
	}
	extra := &Database{
		Signatures: []threat.Signature{
			{ID: "sig-b", Pattern: "b2", Severity: threat.SeverityHigh, Confidence: 90},
			{ID: "sig-c", Pattern: "c", Severity: threat.SeverityMedium, Confidence: 60},
		},
	}

	merged := Merge(base, extra)
	if len(merged.Signatures) != 3 {
		t.Fatalf("expected 3 signatures, got %d", len(merged.Signatures))
	}
	byID := make(map[string]threat.Signature)
	for _, s := range merged.Signatures {
		byID[s.ID] = s
	}
	if byID["sig-b"].Pattern != "b2" {
		t.Errorf("expected overlay to replace sig-b, got pattern %q", byID["sig-b"].Pattern)
	}
	if merged.Version == "" {
		t.Error("expected merged version to be derived")
	}
}

func TestLoadRulesDir(t *testing.T) {
	dir := t.TempDir()
	rules := `
version: test-rules
signatures:
  - id: sig-custom
    name: Custom marker
    type: malware
    pattern: 'CUSTOM-MARKER'
    severity: high
    confidence: 80
hashes:
  - digest: "AABB00112233445566778899aabbccddeeff00112233445566778899aabbccdd"
    name: known-bad
    type: malware
    severity: critical
pii_patterns:
  - id: pii-custom
    type: custom
    pattern: 'EMP-\d{6}'
    severity: medium
    confidence: 70
`
	if err := os.WriteFile(filepath.Join(dir, "10-custom.yaml"), []byte(rules), 0o600); err != nil {
		t.Fatal(err)
	}

	db, err := LoadRulesDir(dir)
	if err != nil {
		t.Fatalf("LoadRulesDir: %v", err)
	}

	builtin := DefaultDatabase()
	if len(db.Signatures) != len(builtin.Signatures)+1 {
		t.Errorf("expected builtins plus one signature, got %d", len(db.Signatures))
	}
	if len(db.Hashes) != 1 {
		t.Fatalf("expected 1 hash, got %d", len(db.Hashes))
	}
	if db.Hashes[0].Digest != "aabb00112233445566778899aabbccddeeff00112233445566778899aabbccdd" {
		t.Errorf("expected digest lowercased, got %s", db.Hashes[0].Digest)
	}
	if len(db.PIIPatterns) != len(builtin.PIIPatterns)+1 {
		t.Errorf("expected builtins plus one pattern, got %d", len(db.PIIPatterns))
	}
}

func TestLoadRulesDirRejectsBadRules(t *testing.T) {
	tests := []struct {
		name  string
		rules string
	}{
		{
			name: "invalid regex",
			rules: `signatures:
  - id: sig-bad
    pattern: '['
    severity: low
    confidence: 50`,
		},
		{
			name: "bad digest",
			rules: `hashes:
  - digest: "not-a-digest"
    severity: high`,
		},
		{
			name: "confidence out of range",
			rules: `signatures:
  - id: sig-bad
    pattern: 'x'
    severity: low
    confidence: 150`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(tt.rules), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadRulesDir(dir); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadRulesDirEnvSubstitution(t *testing.T) {
	t.Setenv("RULE_SEVERITY", "critical")
	dir := t.TempDir()
	rules := `signatures:
  - id: sig-env
    pattern: 'ENV-MARKER'
    severity: ${RULE_SEVERITY:-low}
    confidence: 90`
	if err := os.WriteFile(filepath.Join(dir, "env.yaml"), []byte(rules), 0o600); err != nil {
		t.Fatal(err)
	}

	db, err := LoadRulesDir(dir)
	if err != nil {
		t.Fatalf("LoadRulesDir: %v", err)
	}
	for _, s := range db.Signatures {
		if s.ID == "sig-env" {
			if s.Severity != threat.SeverityCritical {
				t.Errorf("expected critical severity from env, got %s", s.Severity)
			}
			return
		}
	}
	t.Fatal("sig-env not loaded")
}

type countingSource struct {
	calls int
	db    *Database
	err   error
}

func (c *countingSource) Fetch(_ context.Context) (*Database, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.db, nil
}

func TestProviderCachesWithinTTL(t *testing.T) {
	src := &countingSource{db: DefaultDatabase()}
	p := NewProvider(src, nil, time.Minute)

	for i := 0; i < 5; i++ {
		if _, err := p.Database(context.Background()); err != nil {
			t.Fatalf("Database: %v", err)
		}
	}
	if src.calls != 1 {
		t.Errorf("expected 1 fetch, got %d", src.calls)
	}
}

func TestProviderInvalidate(t *testing.T) {
	src := &countingSource{db: DefaultDatabase()}
	p := NewProvider(src, nil, time.Minute)

	if _, err := p.Database(context.Background()); err != nil {
		t.Fatal(err)
	}
	p.Invalidate()
	if _, err := p.Database(context.Background()); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Errorf("expected 2 fetches after invalidate, got %d", src.calls)
	}
}

func TestProviderPropagatesSourceError(t *testing.T) {
	src := &countingSource{err: errors.New("upstream down")}
	p := NewProvider(src, nil, time.Minute)

	if _, err := p.Database(context.Background()); err == nil {
		t.Error("expected error from failing source")
	}
}
