package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryBlobStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBlobStore()

	t.Run("put and get", func(t *testing.T) {
		if err := store.Put(ctx, "k1", []byte("payload"), map[string]string{"kind": "quarantine"}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		data, meta, err := store.Get(ctx, "k1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(data) != "payload" {
			t.Errorf("data = %q, want payload", data)
		}
		if meta["kind"] != "quarantine" {
			t.Errorf("metadata = %v, want kind=quarantine", meta)
		}
	})

	t.Run("put copies input", func(t *testing.T) {
		data := []byte("original")
		meta := map[string]string{"a": "1"}
		if err := store.Put(ctx, "k2", data, meta); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		data[0] = 'X'
		meta["a"] = "mutated"

		got, gotMeta, err := store.Get(ctx, "k2")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != "original" {
			t.Errorf("stored data mutated through caller slice: %q", got)
		}
		if gotMeta["a"] != "1" {
			t.Errorf("stored metadata mutated through caller map: %v", gotMeta)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		if _, _, err := store.Get(ctx, "absent"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(absent) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := store.Delete(ctx, "k1"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, _, err := store.Get(ctx, "k1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get after delete error = %v, want ErrNotFound", err)
		}
		if err := store.Delete(ctx, "k1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("second Delete error = %v, want ErrNotFound", err)
		}
	})
}

func TestMemoryAuditStoreQuery(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAuditStore()

	base := time.Now().UTC().Add(-time.Hour)
	records := []Record{
		{ID: "r1", Kind: "response", CorrelationID: "corr-a", CreatedAt: base},
		{ID: "r2", Kind: "quarantine", CorrelationID: "corr-a", CreatedAt: base.Add(10 * time.Minute)},
		{ID: "r3", Kind: "response", CorrelationID: "corr-b", CreatedAt: base.Add(20 * time.Minute)},
		{ID: "r4", Kind: "response", CorrelationID: "corr-a", CreatedAt: base.Add(30 * time.Minute)},
	}
	for _, r := range records {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	tests := []struct {
		name     string
		criteria Criteria
		wantIDs  []string
	}{
		{name: "all", wantIDs: []string{"r1", "r2", "r3", "r4"}},
		{name: "by kind", criteria: Criteria{Kind: "quarantine"}, wantIDs: []string{"r2"}},
		{name: "by correlation", criteria: Criteria{CorrelationID: "corr-a"}, wantIDs: []string{"r1", "r2", "r4"}},
		{
			name:     "kind and correlation",
			criteria: Criteria{Kind: "response", CorrelationID: "corr-a"},
			wantIDs:  []string{"r1", "r4"},
		},
		{name: "since", criteria: Criteria{Since: base.Add(15 * time.Minute)}, wantIDs: []string{"r3", "r4"}},
		{name: "limit", criteria: Criteria{Limit: 2}, wantIDs: []string{"r1", "r2"}},
		{name: "no match", criteria: Criteria{Kind: "escalation"}, wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.criteria)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d records, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("record[%d].ID = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestNewRecord(t *testing.T) {
	record, err := NewRecord("response", "corr-1", map[string]string{"action": "quarantine"})
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}
	if record.ID == "" {
		t.Error("record ID not generated")
	}
	if record.Kind != "response" || record.CorrelationID != "corr-1" {
		t.Errorf("kind/correlation = %s/%s", record.Kind, record.CorrelationID)
	}
	if record.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
	if string(record.Data) != `{"action":"quarantine"}` {
		t.Errorf("data = %s", record.Data)
	}

	if _, err := NewRecord("response", "corr-1", make(chan int)); err == nil {
		t.Error("expected marshal error for unmarshalable payload")
	}
}
