package audit

import (
	"context"
	"sync"
	"testing"

	"github.com/filesentry/filesentry/pkg/threat"
)

// testTopics returns a standard topic configuration for tests.
func testTopics() Topics {
	return Topics{
		SecurityEvents: "filesentry.security.events",
		Responses:      "filesentry.security.responses",
		Critical:       "filesentry.security.critical",
	}
}

// TestTopicRouter_AllEvents verifies that every event goes to the events topic.
func TestTopicRouter_AllEvents(t *testing.T) {
	router := NewTopicRouter(testTopics())

	tests := []struct {
		name  string
		event SecurityEvent
	}{
		{
			name:  "low severity scan",
			event: SecurityEvent{ID: "e-1", Kind: KindScan, Severity: threat.SeverityLow},
		},
		{
			name:  "medium severity scan",
			event: SecurityEvent{ID: "e-2", Kind: KindScan, Severity: threat.SeverityMedium},
		},
		{
			name:  "failure event",
			event: SecurityEvent{ID: "e-3", Kind: KindFailure, Severity: threat.SeverityHigh},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topics := router.Route(tt.event)
			if len(topics) == 0 {
				t.Fatal("expected at least one topic")
			}
			if topics[0] != testTopics().SecurityEvents {
				t.Errorf("first topic = %q, want %q", topics[0], testTopics().SecurityEvents)
			}
		})
	}
}

// TestTopicRouter_Responses verifies that response and escalation events also
// go to the responses topic.
func TestTopicRouter_Responses(t *testing.T) {
	router := NewTopicRouter(testTopics())

	for _, kind := range []EventKind{KindResponse, KindEscalation} {
		event := SecurityEvent{ID: "e-resp", Kind: kind, Severity: threat.SeverityMedium}
		topics := router.Route(event)
		if len(topics) != 2 {
			t.Fatalf("%s: expected 2 topics, got %d: %v", kind, len(topics), topics)
		}
		assertContains(t, topics, testTopics().Responses)
	}
}

// TestTopicRouter_Critical verifies that critical events also go to the
// critical topic.
func TestTopicRouter_Critical(t *testing.T) {
	router := NewTopicRouter(testTopics())

	event := SecurityEvent{ID: "e-crit", Kind: KindScan, Severity: threat.SeverityCritical}
	topics := router.Route(event)
	if len(topics) != 2 {
		t.Fatalf("expected 2 topics, got %d: %v", len(topics), topics)
	}
	assertContains(t, topics, testTopics().SecurityEvents)
	assertContains(t, topics, testTopics().Critical)
}

// TestTopicRouter_CriticalResponse verifies that a critical response event
// goes to all three topics.
func TestTopicRouter_CriticalResponse(t *testing.T) {
	router := NewTopicRouter(testTopics())

	event := SecurityEvent{ID: "e-all", Kind: KindResponse, Severity: threat.SeverityCritical}
	topics := router.Route(event)
	if len(topics) != 3 {
		t.Fatalf("expected 3 topics, got %d: %v", len(topics), topics)
	}
	assertContains(t, topics, testTopics().SecurityEvents)
	assertContains(t, topics, testTopics().Responses)
	assertContains(t, topics, testTopics().Critical)
}

// TestLocalPublisher_Publish verifies that events are published to the
// correct topics via callbacks.
func TestLocalPublisher_Publish(t *testing.T) {
	publisher := NewLocalPublisher(DefaultPublisherConfig())

	var mu sync.Mutex
	var results []published

	publisher.OnPublish(func(topic string, event SecurityEvent) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, published{topic: topic, event: event})
	})

	events := []SecurityEvent{
		{ID: "test-1", Kind: KindScan, Severity: threat.SeverityLow, CorrelationID: "corr-1"},
		{ID: "test-2", Kind: KindResponse, Severity: threat.SeverityCritical, CorrelationID: "corr-1"},
	}

	if err := publisher.Publish(context.Background(), events); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	// test-1 (scan, low) -> 1 topic; test-2 (response, critical) -> 3 topics.
	if len(results) != 4 {
		t.Fatalf("expected 4 publications, got %d", len(results))
	}
	if n := len(filterByID(results, "test-1")); n != 1 {
		t.Errorf("test-1: expected 1 publication, got %d", n)
	}
	if n := len(filterByID(results, "test-2")); n != 3 {
		t.Errorf("test-2: expected 3 publications, got %d", n)
	}
}

// TestLocalPublisher_Closed verifies that Publish returns ErrPublisherClosed
// after Close is called.
func TestLocalPublisher_Closed(t *testing.T) {
	publisher := NewLocalPublisher(nil)

	if err := publisher.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	events := []SecurityEvent{{ID: "test-closed", Kind: KindScan, Severity: threat.SeverityLow}}
	if err := publisher.Publish(context.Background(), events); err != ErrPublisherClosed {
		t.Errorf("Publish after close: got %v, want %v", err, ErrPublisherClosed)
	}
}

// TestLocalPublisher_MultipleCallbacks verifies that all registered callbacks
// are invoked for each published event.
func TestLocalPublisher_MultipleCallbacks(t *testing.T) {
	publisher := NewLocalPublisher(nil)

	var mu sync.Mutex
	counts := make([]int, 3)

	for i := 0; i < 3; i++ {
		idx := i
		publisher.OnPublish(func(topic string, event SecurityEvent) {
			mu.Lock()
			defer mu.Unlock()
			counts[idx]++
		})
	}

	events := []SecurityEvent{
		{ID: "multi-1", Kind: KindScan, Severity: threat.SeverityLow},
		{ID: "multi-2", Kind: KindScan, Severity: threat.SeverityHigh},
	}
	if err := publisher.Publish(context.Background(), events); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for i, count := range counts {
		if count != 2 {
			t.Errorf("callback %d: invoked %d times, want 2", i, count)
		}
	}
}

// TestLocalPublisher_ContextCancellation verifies that Publish respects
// context cancellation.
func TestLocalPublisher_ContextCancellation(t *testing.T) {
	publisher := NewLocalPublisher(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := []SecurityEvent{{ID: "ctx-1", Kind: KindScan, Severity: threat.SeverityLow}}
	if err := publisher.Publish(ctx, events); err == nil {
		t.Error("expected error from cancelled context, got nil")
	}
}

// TestLocalPublisher_CloseIdempotent verifies that Close can be called
// multiple times.
func TestLocalPublisher_CloseIdempotent(t *testing.T) {
	publisher := NewLocalPublisher(nil)

	if err := publisher.Close(); err != nil {
		t.Fatalf("first Close returned error: %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
}

// --- helpers ---

func assertContains(t *testing.T, slice []string, expected string) {
	t.Helper()
	for _, s := range slice {
		if s == expected {
			return
		}
	}
	t.Errorf("expected %v to contain %q", slice, expected)
}

type published struct {
	topic string
	event SecurityEvent
}

func filterByID(results []published, id string) []published {
	var filtered []published
	for _, r := range results {
		if r.event.ID == id {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
