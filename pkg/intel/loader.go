package intel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/filesentry/filesentry/pkg/config"
	"github.com/filesentry/filesentry/pkg/pii"
	"github.com/filesentry/filesentry/pkg/threat"
)

// RuleFile is the on-disk YAML schema for operator-supplied reference data.
// Each file may carry any mix of signatures, hashes, and PII patterns.
type RuleFile struct {
	Version     string              `yaml:"version,omitempty"`
	Signatures  []threat.Signature  `yaml:"signatures,omitempty"`
	Hashes      []threat.HashRecord `yaml:"hashes,omitempty"`
	PIIPatterns []pii.Pattern       `yaml:"pii_patterns,omitempty"`
}

// LoadRulesDir reads every .yaml/.yml file under dir (non-recursive, sorted
// by name so later files win on ID collisions) and merges them over the
// built-in database. Environment references in the files are substituted
// with the ${VAR:-default} syntax. Files with invalid regex patterns are
// rejected whole.
func LoadRulesDir(dir string) (*Database, error) {
	db := DefaultDatabase()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading rules directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		extra, err := loadRuleFile(path)
		if err != nil {
			return nil, err
		}
		db = Merge(db, extra)
	}
	return db, nil
}

func loadRuleFile(path string) (*Database, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file %s: %w", path, err)
	}

	var rf RuleFile
	if err := yaml.Unmarshal(config.ExpandEnv(raw), &rf); err != nil {
		return nil, fmt.Errorf("parsing rule file %s: %w", path, err)
	}

	db := &Database{
		Version:     rf.Version,
		Signatures:  rf.Signatures,
		Hashes:      rf.Hashes,
		PIIPatterns: rf.PIIPatterns,
	}
	if err := validateDatabase(path, db); err != nil {
		return nil, err
	}

	for i := range db.Hashes {
		db.Hashes[i].Digest = strings.ToLower(db.Hashes[i].Digest)
	}
	return db, nil
}

var hexDigest = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

func validateDatabase(path string, db *Database) error {
	for _, s := range db.Signatures {
		if s.ID == "" {
			return fmt.Errorf("rule file %s: signature with empty id", path)
		}
		if _, err := regexp.Compile(s.Pattern); err != nil {
			return fmt.Errorf("rule file %s: signature %s: invalid pattern: %w", path, s.ID, err)
		}
		if s.Confidence < 0 || s.Confidence > 100 {
			return fmt.Errorf("rule file %s: signature %s: confidence must be 0-100", path, s.ID)
		}
	}
	for _, h := range db.Hashes {
		if !hexDigest.MatchString(h.Digest) {
			return fmt.Errorf("rule file %s: hash %q is not a hex SHA-256 digest", path, h.Digest)
		}
	}
	for _, p := range db.PIIPatterns {
		if p.ID == "" {
			return fmt.Errorf("rule file %s: pii pattern with empty id", path)
		}
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return fmt.Errorf("rule file %s: pii pattern %s: invalid pattern: %w", path, p.ID, err)
		}
	}
	return nil
}

// FileSource loads reference data from a rules directory on each refresh.
type FileSource struct {
	Dir string
}

// Fetch reloads the rules directory merged over the builtins.
func (s FileSource) Fetch(_ context.Context) (*Database, error) {
	return LoadRulesDir(s.Dir)
}
