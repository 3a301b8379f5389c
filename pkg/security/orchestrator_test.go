package security

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/filesentry/filesentry/pkg/audit"
	"github.com/filesentry/filesentry/pkg/intel"
	"github.com/filesentry/filesentry/pkg/pii"
	"github.com/filesentry/filesentry/pkg/policy"
	"github.com/filesentry/filesentry/pkg/respond"
	"github.com/filesentry/filesentry/pkg/storage"
	"github.com/filesentry/filesentry/pkg/threat"
)

func newTestOrchestrator() (*Orchestrator, *storage.MemoryAuditStore) {
	auditStore := storage.NewMemoryAuditStore()
	executor := respond.NewExecutor(storage.NewMemoryBlobStore(), auditStore, nil, nil)
	return NewOrchestrator(nil, nil, executor, nil, nil), auditStore
}

func meta(id, name string, size int64) threat.FileMetadata {
	return threat.FileMetadata{ID: id, Name: name, Size: size, UploadedBy: "tester"}
}

func TestScanAndRespondCleanFile(t *testing.T) {
	orch, _ := newTestOrchestrator()

	content := []byte("meeting notes for tuesday\nagenda item one\n")
	result := orch.ScanAndRespond(context.Background(), content, meta("f-clean", "notes.txt", int64(len(content))), "upload")

	if !result.Success {
		t.Errorf("expected success for clean file: %s", result.Error)
	}
	if result.ThreatResult == nil || result.ThreatResult.RiskScore != 0 {
		t.Errorf("expected zero risk score, got %+v", result.ThreatResult)
	}
	if result.ThreatResult.Recommendation != threat.RecommendAllow {
		t.Errorf("expected allow, got %s", result.ThreatResult.Recommendation)
	}
	if len(result.Actions) != 1 || result.Actions[0] != policy.ActionLog {
		t.Errorf("expected exactly [log], got %v", result.Actions)
	}
	if result.CorrelationID == "" {
		t.Error("expected a correlation id")
	}
}

func TestScanAndRespondObfuscatedScript(t *testing.T) {
	orch, _ := newTestOrchestrator()

	content := []byte(`eval(atob("ZG9Tb21ldGhpbmdFdmlsKCk7encoded")); setWindowsHook(keyboardProc);`)
	result := orch.ScanAndRespond(context.Background(), content, meta("f-script", "payload.txt", int64(len(content))), "upload")

	if result.ThreatResult == nil || len(result.ThreatResult.Threats) < 2 {
		t.Fatalf("expected at least two distinct threats, got %+v", result.ThreatResult)
	}
	if result.ThreatResult.OverallSeverity.Value() < threat.SeverityHigh.Value() {
		t.Errorf("expected severity >= high, got %s", result.ThreatResult.OverallSeverity)
	}
	rec := result.ThreatResult.Recommendation
	if rec != threat.RecommendQuarantine && rec != threat.RecommendBlock {
		t.Errorf("expected quarantine or block, got %s", rec)
	}
}

func TestScanAndRespondSSNFile(t *testing.T) {
	orch, _ := newTestOrchestrator()

	content := []byte("ssn: 123-45-6789")
	result := orch.ScanAndRespond(context.Background(), content, meta("f-ssn", "record.txt", int64(len(content))), "upload")

	if result.PIIResult == nil || len(result.PIIResult.Findings) != 1 {
		t.Fatalf("expected exactly one PII finding, got %+v", result.PIIResult)
	}
	f := result.PIIResult.Findings[0]
	if f.Type != pii.TypeSSN {
		t.Errorf("expected SSN finding, got %s", f.Type)
	}
	if result.PIIResult.Classification != pii.ClassRestricted {
		t.Errorf("expected restricted classification, got %s", result.PIIResult.Classification)
	}
	if result.PIIResult.RecommendedHandling != pii.HandleReject {
		t.Errorf("expected reject handling, got %s", result.PIIResult.RecommendedHandling)
	}

	want := []policy.Action{policy.ActionLog, policy.ActionBlock, policy.ActionSanitize, policy.ActionEscalate}
	if len(result.Actions) != len(want) {
		t.Fatalf("expected actions %v, got %v", want, result.Actions)
	}
	for i, a := range want {
		if result.Actions[i] != a {
			t.Errorf("action %d: expected %s, got %s", i, a, result.Actions[i])
		}
	}
	if result.Success {
		t.Error("blocked upload must not report success")
	}
}

func TestScanAndRespondPIIDisabled(t *testing.T) {
	executor := respond.NewExecutor(storage.NewMemoryBlobStore(), storage.NewMemoryAuditStore(), nil, nil)
	piiCfg := pii.DefaultConfig()
	piiCfg.Enabled = false
	orch := NewOrchestrator(nil, nil, executor, nil, &Config{PII: piiCfg})

	content := []byte("ssn: 123-45-6789")
	result := orch.ScanAndRespond(context.Background(), content, meta("f-nopii", "record.txt", int64(len(content))), "upload")

	if !result.Success {
		t.Errorf("disabled PII scanning must not block the upload: %s", result.Error)
	}
	if result.PIIResult != nil {
		t.Errorf("expected no PII result, got %+v", result.PIIResult)
	}
	if len(result.Actions) != 1 || result.Actions[0] != policy.ActionLog {
		t.Errorf("expected exactly [log], got %v", result.Actions)
	}
}

func TestScanAndRespondExecutesResponses(t *testing.T) {
	orch, auditStore := newTestOrchestrator()

	content := []byte("X5O!P%@AP[4\\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*")
	result := orch.ScanAndRespond(context.Background(), content, meta("f-eicar", "eicar.com.txt", int64(len(content))), "upload")

	if result.Success {
		t.Error("expected EICAR upload to be blocked")
	}
	if len(result.Responses) != len(result.Actions) {
		t.Errorf("expected one response per action: %d actions, %d responses",
			len(result.Actions), len(result.Responses))
	}

	records, err := auditStore.Query(context.Background(), storage.Criteria{
		Kind:          respond.RecordKindResponse,
		CorrelationID: result.CorrelationID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != len(result.Actions) {
		t.Errorf("expected %d response audit records, got %d", len(result.Actions), len(records))
	}
}

func TestScanAndRespondIdempotent(t *testing.T) {
	orch, _ := newTestOrchestrator()

	content := []byte("contact admin@internal.example.org and eval(atob(payload))")
	m := meta("f-idem", "repeat.txt", int64(len(content)))

	first := orch.ScanAndRespond(context.Background(), content, m, "upload")
	second := orch.ScanAndRespond(context.Background(), content, m, "upload")

	if len(first.ThreatResult.Threats) != len(second.ThreatResult.Threats) {
		t.Fatalf("threat counts differ: %d vs %d",
			len(first.ThreatResult.Threats), len(second.ThreatResult.Threats))
	}
	for i := range first.ThreatResult.Threats {
		a, b := first.ThreatResult.Threats[i], second.ThreatResult.Threats[i]
		if a.SignatureID != b.SignatureID || a.Offset != b.Offset || a.Confidence != b.Confidence {
			t.Errorf("threat %d differs: %+v vs %+v", i, a, b)
		}
	}
	if first.ThreatResult.RiskScore != second.ThreatResult.RiskScore {
		t.Errorf("risk scores differ: %v vs %v", first.ThreatResult.RiskScore, second.ThreatResult.RiskScore)
	}
	if len(first.PIIResult.Findings) != len(second.PIIResult.Findings) {
		t.Errorf("finding counts differ")
	}
}

type failingSource struct{}

func (failingSource) Fetch(context.Context) (*intel.Database, error) {
	return nil, errors.New("intel feed unreachable")
}

func TestScanAndRespondFailureYieldsManualReview(t *testing.T) {
	provider := intel.NewProvider(failingSource{}, nil, 0)
	orch := NewOrchestrator(provider, nil, nil, nil, nil)

	result := orch.ScanAndRespond(context.Background(), []byte("content"), meta("f-fail", "f.txt", 7), "upload")

	if result == nil {
		t.Fatal("expected a well-formed result")
	}
	if result.Success {
		t.Error("expected success=false on internal failure")
	}
	if result.ThreatResult == nil || result.ThreatResult.Recommendation != threat.RecommendManualReview {
		t.Errorf("expected manual review recommendation, got %+v", result.ThreatResult)
	}
	if result.Error == "" || !strings.Contains(result.Error, "intel feed unreachable") {
		t.Errorf("expected error to surface, got %q", result.Error)
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, []audit.SecurityEvent) error {
	return errors.New("kafka down")
}

func (failingPublisher) Close() error { return nil }

func TestPublisherFailureIsSwallowedAndCounted(t *testing.T) {
	executor := respond.NewExecutor(storage.NewMemoryBlobStore(), storage.NewMemoryAuditStore(), nil, nil)
	orch := NewOrchestrator(nil, nil, executor, failingPublisher{}, nil)

	content := []byte("plain content")
	result := orch.ScanAndRespond(context.Background(), content, meta("f-pub", "f.txt", int64(len(content))), "upload")

	if !result.Success {
		t.Errorf("publisher outage must not fail the scan: %s", result.Error)
	}
	if orch.SwallowedFailures() == 0 {
		t.Error("expected swallowed publish failures to be counted")
	}
}

func TestScanAndRespondPublishesScanEvent(t *testing.T) {
	publisher := audit.NewLocalPublisher(nil)
	var events []audit.SecurityEvent
	publisher.OnPublish(func(topic string, event audit.SecurityEvent) {
		if topic == audit.DefaultPublisherConfig().Topics.SecurityEvents {
			events = append(events, event)
		}
	})

	executor := respond.NewExecutor(storage.NewMemoryBlobStore(), storage.NewMemoryAuditStore(), nil, nil)
	orch := NewOrchestrator(nil, nil, executor, publisher, nil)

	content := []byte("plain content")
	result := orch.ScanAndRespond(context.Background(), content, meta("f-event", "f.txt", int64(len(content))), "upload")

	if len(events) != 1 {
		t.Fatalf("expected 1 scan event, got %d", len(events))
	}
	if events[0].Kind != audit.KindScan {
		t.Errorf("expected scan event kind, got %s", events[0].Kind)
	}
	if events[0].CorrelationID != result.CorrelationID {
		t.Error("event correlation id does not match result")
	}
}
