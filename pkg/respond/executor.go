package respond

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/filesentry/filesentry/pkg/notify"
	"github.com/filesentry/filesentry/pkg/pii"
	"github.com/filesentry/filesentry/pkg/policy"
	"github.com/filesentry/filesentry/pkg/storage"
	"github.com/filesentry/filesentry/pkg/threat"
)

// Executor carries out decided actions sequentially in list order. Actions
// fail independently: a quarantine failure does not stop the following
// notify, and every action's outcome is written to the audit store.
type Executor struct {
	blobs    storage.BlobStore
	audit    storage.AuditStore
	notifier notify.Notifier
	config   *Config

	// auditFailures counts audit writes that were swallowed because the
	// store was unavailable. Responses still complete; the count surfaces
	// the gap.
	auditFailures atomic.Uint64
}

// NewExecutor creates an executor over the given collaborators. The notifier
// may be nil when notifications are disabled; notify actions then record a
// skipped outcome.
func NewExecutor(blobs storage.BlobStore, audit storage.AuditStore, notifier notify.Notifier, config *Config) *Executor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Executor{
		blobs:    blobs,
		audit:    audit,
		notifier: notifier,
		config:   config,
	}
}

// AuditFailures returns the number of audit records dropped because the
// audit store was unavailable.
func (e *Executor) AuditFailures() uint64 {
	return e.auditFailures.Load()
}

// Execute runs every action in the request sequentially and returns one
// response per action in the same order.
func (e *Executor) Execute(ctx context.Context, req Request) []ThreatResponse {
	actor := req.ActorContext
	if actor == "" {
		actor = "system"
	}
	reason := summarize(req)

	responses := make([]ThreatResponse, 0, len(req.Actions))
	for _, action := range req.Actions {
		start := time.Now()
		details, err := e.execute(ctx, action, req)

		resp := ThreatResponse{
			ID:            uuid.New().String(),
			CorrelationID: req.CorrelationID,
			FileID:        req.Metadata.ID,
			Action:        action,
			Automated:     true,
			Actor:         actor,
			Reason:        reason,
			Success:       err == nil,
			Details:       details,
			ExecutedAt:    start.UTC(),
			Duration:      time.Since(start),
		}
		if err != nil {
			resp.Error = err.Error()
		}

		e.record(ctx, RecordKindResponse, req.CorrelationID, resp)
		responses = append(responses, resp)
	}
	return responses
}

func (e *Executor) execute(ctx context.Context, action policy.Action, req Request) (ResponseDetails, error) {
	switch action {
	case policy.ActionLog:
		return ResponseDetails{Note: "decision logged"}, nil
	case policy.ActionNotify:
		return e.notify(ctx, req)
	case policy.ActionSanitize:
		return e.sanitize(ctx, req)
	case policy.ActionQuarantine:
		return e.quarantine(ctx, req)
	case policy.ActionDelete:
		return e.delete(ctx, req)
	case policy.ActionBlock:
		// Blocking is enforced by the caller refusing the upload; the
		// executor records the decision.
		return ResponseDetails{Note: "upload blocked"}, nil
	case policy.ActionEscalate:
		return e.escalate(ctx, req)
	default:
		return ResponseDetails{}, fmt.Errorf("unknown action %q", action)
	}
}

func (e *Executor) notify(ctx context.Context, req Request) (ResponseDetails, error) {
	if e.notifier == nil {
		return ResponseDetails{Note: "notifications disabled"}, nil
	}

	deliveries, err := e.notifier.Send(ctx, notify.Notification{
		Subject:  fmt.Sprintf("Security findings in %s", req.Metadata.Name),
		Message:  summarize(req),
		Severity: overallSeverity(req),
		Details: map[string]interface{}{
			"correlation_id": req.CorrelationID,
			"file_id":        req.Metadata.ID,
			"uploaded_by":    req.Metadata.UploadedBy,
		},
	})
	if err != nil {
		return ResponseDetails{}, fmt.Errorf("sending notification: %w", err)
	}
	return ResponseDetails{Deliveries: deliveries}, nil
}

func (e *Executor) sanitize(ctx context.Context, req Request) (ResponseDetails, error) {
	if e.blobs == nil {
		return ResponseDetails{}, fmt.Errorf("no blob store configured for sanitized copies")
	}

	var threats []threat.Detection
	if req.ThreatResult != nil {
		threats = req.ThreatResult.Threats
	}
	var findings []pii.Finding
	if req.PIIResult != nil {
		findings = req.PIIResult.Findings
	}

	cleaned, err := Sanitize(req.Content, threats, findings, e.config.Sanitize.Placeholder)
	if err != nil {
		return ResponseDetails{}, fmt.Errorf("building sanitized copy: %w", err)
	}
	key := path.Join(e.config.Sanitize.KeyPrefix, req.Metadata.ID, uuid.New().String())

	metadata := map[string]string{
		"file_id":        req.Metadata.ID,
		"file_name":      req.Metadata.Name,
		"correlation_id": req.CorrelationID,
		"sanitized_at":   time.Now().UTC().Format(time.RFC3339),
	}
	if err := e.blobs.Put(ctx, key, cleaned, metadata); err != nil {
		return ResponseDetails{}, fmt.Errorf("storing sanitized copy: %w", err)
	}
	return ResponseDetails{SanitizedKey: key}, nil
}

func (e *Executor) quarantine(ctx context.Context, req Request) (ResponseDetails, error) {
	if e.blobs == nil {
		return ResponseDetails{}, fmt.Errorf("no blob store configured for quarantine")
	}

	record := QuarantineRecord{
		ID:             uuid.New().String(),
		CorrelationID:  req.CorrelationID,
		FileID:         req.Metadata.ID,
		FileName:       req.Metadata.Name,
		Reason:         summarize(req),
		AccessLevel:    "restricted",
		OriginalSize:   len(req.Content),
		QuarantinedAt:  time.Now().UTC(),
		ReviewRequired: true,
	}
	record.Key = path.Join(e.config.Quarantine.KeyPrefix, req.Metadata.ID, record.ID)
	if e.config.Quarantine.ReviewWithin > 0 {
		record.ReviewBy = record.QuarantinedAt.Add(e.config.Quarantine.ReviewWithin)
	}
	if e.config.Quarantine.Retention > 0 {
		record.ExpiresAt = record.QuarantinedAt.Add(e.config.Quarantine.Retention)
	}

	data := req.Content
	if e.config.Quarantine.Compress {
		compressed, err := gzipBytes(req.Content)
		if err != nil {
			return ResponseDetails{}, fmt.Errorf("compressing quarantine copy: %w", err)
		}
		data = compressed
		record.Compressed = true
	}
	record.StoredSize = len(data)

	metadata := map[string]string{
		"file_id":        req.Metadata.ID,
		"file_name":      req.Metadata.Name,
		"correlation_id": req.CorrelationID,
		"quarantine_id":  record.ID,
		"quarantined_at": record.QuarantinedAt.Format(time.RFC3339),
	}
	if record.Compressed {
		metadata["content_encoding"] = "gzip"
	}
	if err := e.blobs.Put(ctx, record.Key, data, metadata); err != nil {
		return ResponseDetails{}, fmt.Errorf("storing quarantine copy: %w", err)
	}

	e.record(ctx, RecordKindQuarantine, req.CorrelationID, record)
	return ResponseDetails{QuarantineID: record.ID, QuarantineKey: record.Key}, nil
}

func (e *Executor) delete(ctx context.Context, req Request) (ResponseDetails, error) {
	if req.SourceKey == "" {
		return ResponseDetails{Note: "no stored copy to delete"}, nil
	}
	if e.blobs == nil {
		return ResponseDetails{}, fmt.Errorf("no blob store configured for delete")
	}
	if err := e.blobs.Delete(ctx, req.SourceKey); err != nil {
		return ResponseDetails{}, fmt.Errorf("deleting stored upload: %w", err)
	}
	return ResponseDetails{DeletedKey: req.SourceKey}, nil
}

func (e *Executor) escalate(ctx context.Context, req Request) (ResponseDetails, error) {
	ticket := EscalationTicket{
		ID:            uuid.New().String(),
		CorrelationID: req.CorrelationID,
		FileID:        req.Metadata.ID,
		Severity:      overallSeverity(req),
		Summary:       summarize(req),
		Status:        "open",
		CreatedAt:     time.Now().UTC(),
	}

	rec, err := storage.NewRecord(RecordKindEscalation, req.CorrelationID, ticket)
	if err != nil {
		return ResponseDetails{}, err
	}
	if e.audit == nil {
		return ResponseDetails{}, fmt.Errorf("no audit store configured for escalation")
	}
	if err := e.audit.Insert(ctx, rec); err != nil {
		return ResponseDetails{}, fmt.Errorf("filing escalation ticket: %w", err)
	}
	return ResponseDetails{EscalationID: ticket.ID}, nil
}

// record writes an audit record, swallowing storage failures: responses run
// to completion even when the audit store is down.
func (e *Executor) record(ctx context.Context, kind, correlationID string, v interface{}) {
	if e.audit == nil {
		return
	}
	rec, err := storage.NewRecord(kind, correlationID, v)
	if err == nil {
		err = e.audit.Insert(ctx, rec)
	}
	if err != nil {
		e.auditFailures.Add(1)
		log.Printf("respond: dropping %s audit record for %s: %v", kind, correlationID, err)
	}
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func summarize(req Request) string {
	var parts []string
	if req.ThreatResult != nil && len(req.ThreatResult.Threats) > 0 {
		parts = append(parts, fmt.Sprintf("%d threat detection(s), risk score %.0f",
			len(req.ThreatResult.Threats), req.ThreatResult.RiskScore))
	}
	if req.PIIResult != nil && len(req.PIIResult.Findings) > 0 {
		parts = append(parts, fmt.Sprintf("%d PII finding(s), classified %s",
			len(req.PIIResult.Findings), req.PIIResult.Classification))
	}
	if len(parts) == 0 {
		return "no findings"
	}
	summary := parts[0]
	for _, p := range parts[1:] {
		summary += "; " + p
	}
	return summary
}

func overallSeverity(req Request) string {
	if req.ThreatResult != nil && len(req.ThreatResult.Threats) > 0 {
		return string(req.ThreatResult.OverallSeverity)
	}
	if req.PIIResult != nil {
		max := ""
		var maxVal int
		for _, f := range req.PIIResult.Findings {
			if f.Severity.Value() > maxVal {
				maxVal = f.Severity.Value()
				max = string(f.Severity)
			}
		}
		if max != "" {
			return max
		}
	}
	return "info"
}
