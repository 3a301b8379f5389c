// Package storage defines the collaborator contracts the security engine
// consumes: a blob store for quarantine/sanitized copies, an append-only
// audit store for responses and reference data, and a read-mostly TTL cache.
// In-memory implementations are provided for tests and library use;
// production deployments supply their own backends.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested key or record does not exist.
var ErrNotFound = errors.New("storage: not found")

// BlobStore stores raw byte payloads under opaque keys.
type BlobStore interface {
	// Put writes data under key with associated metadata. Writes are
	// at-least-once: callers use unique generated keys so retries cannot
	// corrupt or duplicate content under the same key.
	Put(ctx context.Context, key string, data []byte, metadata map[string]string) error

	// Get retrieves the data and metadata stored under key.
	Get(ctx context.Context, key string) ([]byte, map[string]string, error)

	// Delete removes the blob stored under key.
	Delete(ctx context.Context, key string) error
}

// Record is one append-only audit/reference entry.
type Record struct {
	ID            string          `json:"id"`
	Kind          string          `json:"kind"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Data          json.RawMessage `json:"data"`
}

// NewRecord marshals v as the payload of a new record of the given kind.
func NewRecord(kind, correlationID string, v interface{}) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("marshaling %s record: %w", kind, err)
	}
	return Record{
		ID:            uuid.New().String(),
		Kind:          kind,
		CorrelationID: correlationID,
		CreatedAt:     time.Now().UTC(),
		Data:          data,
	}, nil
}

// Criteria filters audit store queries. Zero-valued fields match everything.
type Criteria struct {
	Kind          string
	CorrelationID string
	Since         time.Time
	Limit         int
}

// AuditStore is the append-only relational/audit collaborator.
type AuditStore interface {
	// Insert appends a record. Records are never updated or deleted.
	Insert(ctx context.Context, record Record) error

	// Query returns records matching the criteria in insertion order.
	Query(ctx context.Context, criteria Criteria) ([]Record, error)
}

// ReferenceCache is the read-mostly cache for threat-intelligence reference
// data. Implementations must be safe for concurrent readers with a
// single-writer refresh.
type ReferenceCache interface {
	// Get returns the cached value for key, or ok=false on miss or expiry.
	Get(key string) (interface{}, bool)

	// Put stores value under key for the given TTL.
	Put(key string, value interface{}, ttl time.Duration)

	// Delete removes key from the cache.
	Delete(key string)
}
