package storage

import (
	"context"
	"sync"
)

// blob holds one stored payload with its metadata.
type blob struct {
	data     []byte
	metadata map[string]string
}

// MemoryBlobStore is an in-memory BlobStore for tests and library use.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

var _ BlobStore = (*MemoryBlobStore)(nil)

// NewMemoryBlobStore creates an empty in-memory blob store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string]blob)}
}

// Put stores a copy of data and metadata under key.
func (s *MemoryBlobStore) Put(_ context.Context, key string, data []byte, metadata map[string]string) error {
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	metaCopy := make(map[string]string, len(metadata))
	for k, v := range metadata {
		metaCopy[k] = v
	}

	s.mu.Lock()
	s.blobs[key] = blob{data: dataCopy, metadata: metaCopy}
	s.mu.Unlock()
	return nil
}

// Get retrieves the blob stored under key.
func (s *MemoryBlobStore) Get(_ context.Context, key string) ([]byte, map[string]string, error) {
	s.mu.RLock()
	b, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, ErrNotFound
	}
	return b.data, b.metadata, nil
}

// Delete removes the blob stored under key.
func (s *MemoryBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return ErrNotFound
	}
	delete(s.blobs, key)
	return nil
}

// Len returns the number of stored blobs.
func (s *MemoryBlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// MemoryAuditStore is an in-memory append-only AuditStore.
type MemoryAuditStore struct {
	mu      sync.RWMutex
	records []Record
}

var _ AuditStore = (*MemoryAuditStore)(nil)

// NewMemoryAuditStore creates an empty in-memory audit store.
func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{}
}

// Insert appends a record.
func (s *MemoryAuditStore) Insert(_ context.Context, record Record) error {
	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()
	return nil
}

// Query returns records matching the criteria in insertion order.
func (s *MemoryAuditStore) Query(_ context.Context, criteria Criteria) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, r := range s.records {
		if criteria.Kind != "" && r.Kind != criteria.Kind {
			continue
		}
		if criteria.CorrelationID != "" && r.CorrelationID != criteria.CorrelationID {
			continue
		}
		if !criteria.Since.IsZero() && r.CreatedAt.Before(criteria.Since) {
			continue
		}
		out = append(out, r)
		if criteria.Limit > 0 && len(out) >= criteria.Limit {
			break
		}
	}
	return out, nil
}
