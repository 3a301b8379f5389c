// Package intel manages the threat-intelligence reference data consumed by
// the detection engines: threat signatures, known-malware hashes, and PII
// patterns, versioned as one database and cached with a bounded TTL.
package intel

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/filesentry/filesentry/pkg/pii"
	"github.com/filesentry/filesentry/pkg/storage"
	"github.com/filesentry/filesentry/pkg/threat"
)

// Database is one versioned snapshot of reference data. Snapshots are
// immutable once built; a refresh produces a new snapshot.
type Database struct {
	Version     string
	Signatures  []threat.Signature
	Hashes      []threat.HashRecord
	PIIPatterns []pii.Pattern
}

// ThreatSet returns the threat-engine view of the database.
func (db *Database) ThreatSet() threat.SignatureSet {
	return threat.SignatureSet{
		Version:    db.Version,
		Signatures: db.Signatures,
		Hashes:     db.Hashes,
	}
}

// Fingerprint derives a stable version string from the database contents.
// Byte-identical reference data always fingerprints identically.
func (db *Database) Fingerprint() string {
	h := sha256.New()
	for _, s := range db.Signatures {
		fmt.Fprintf(h, "s:%s:%s:%s\n", s.ID, s.Pattern, s.Severity)
	}
	for _, r := range db.Hashes {
		fmt.Fprintf(h, "h:%s:%s\n", r.Digest, r.Severity)
	}
	for _, p := range db.PIIPatterns {
		fmt.Fprintf(h, "p:%s:%s:%s\n", p.ID, p.Pattern, p.Severity)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// DefaultDatabase returns the built-in reference data.
func DefaultDatabase() *Database {
	db := &Database{
		Signatures:  threat.DefaultSignatures(),
		PIIPatterns: pii.DefaultPatterns(),
	}
	db.Version = "builtin-" + db.Fingerprint()
	return db
}

// Merge overlays extra onto base: entries with the same ID replace the base
// entry, new entries append. The result is a new database with a derived
// version.
func Merge(base, extra *Database) *Database {
	out := &Database{}

	sigByID := make(map[string]int)
	for _, s := range base.Signatures {
		sigByID[s.ID] = len(out.Signatures)
		out.Signatures = append(out.Signatures, s)
	}
	for _, s := range extra.Signatures {
		if i, ok := sigByID[s.ID]; ok {
			out.Signatures[i] = s
			continue
		}
		sigByID[s.ID] = len(out.Signatures)
		out.Signatures = append(out.Signatures, s)
	}

	hashByDigest := make(map[string]int)
	for _, h := range base.Hashes {
		hashByDigest[h.Digest] = len(out.Hashes)
		out.Hashes = append(out.Hashes, h)
	}
	for _, h := range extra.Hashes {
		if i, ok := hashByDigest[h.Digest]; ok {
			out.Hashes[i] = h
			continue
		}
		hashByDigest[h.Digest] = len(out.Hashes)
		out.Hashes = append(out.Hashes, h)
	}

	patByID := make(map[string]int)
	for _, p := range base.PIIPatterns {
		patByID[p.ID] = len(out.PIIPatterns)
		out.PIIPatterns = append(out.PIIPatterns, p)
	}
	for _, p := range extra.PIIPatterns {
		if i, ok := patByID[p.ID]; ok {
			out.PIIPatterns[i] = p
			continue
		}
		patByID[p.ID] = len(out.PIIPatterns)
		out.PIIPatterns = append(out.PIIPatterns, p)
	}

	sort.SliceStable(out.Signatures, func(i, j int) bool { return out.Signatures[i].ID < out.Signatures[j].ID })
	sort.SliceStable(out.PIIPatterns, func(i, j int) bool { return out.PIIPatterns[i].ID < out.PIIPatterns[j].ID })

	out.Version = out.Fingerprint()
	return out
}

// Source supplies fresh reference data on refresh.
type Source interface {
	Fetch(ctx context.Context) (*Database, error)
}

// StaticSource always returns the same database.
type StaticSource struct {
	DB *Database
}

// Fetch returns the wrapped database.
func (s StaticSource) Fetch(_ context.Context) (*Database, error) {
	if s.DB == nil {
		return DefaultDatabase(), nil
	}
	return s.DB, nil
}

const cacheKey = "intel:database"

// Provider serves the current reference database through a read-mostly TTL
// cache with a single-writer refresh: concurrent readers hit the cache,
// and at most one caller at a time performs the refresh after expiry.
type Provider struct {
	source Source
	cache  storage.ReferenceCache
	ttl    time.Duration

	refreshMu sync.Mutex
}

// NewProvider creates a provider over the given source. A nil cache gets a
// fresh in-memory cache; a non-positive TTL defaults to five minutes.
func NewProvider(source Source, cache storage.ReferenceCache, ttl time.Duration) *Provider {
	if cache == nil {
		cache = storage.NewMemoryCache()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Provider{source: source, cache: cache, ttl: ttl}
}

// Database returns the current reference database, refreshing from the
// source when the cached snapshot has expired.
func (p *Provider) Database(ctx context.Context) (*Database, error) {
	if v, ok := p.cache.Get(cacheKey); ok {
		return v.(*Database), nil
	}

	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	// Another refresher may have won the race while we waited.
	if v, ok := p.cache.Get(cacheKey); ok {
		return v.(*Database), nil
	}

	db, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("refreshing threat intelligence: %w", err)
	}
	if db.Version == "" {
		db.Version = db.Fingerprint()
	}

	p.cache.Put(cacheKey, db, p.ttl)
	return db, nil
}

// Invalidate drops the cached snapshot so the next Database call refreshes.
func (p *Provider) Invalidate() {
	p.cache.Delete(cacheKey)
}
