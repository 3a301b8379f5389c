// Package security is the single external entry point of the engine: one
// call scans a file for threats and PII, decides the response policy, and
// executes the decided actions.
package security

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/filesentry/filesentry/pkg/audit"
	"github.com/filesentry/filesentry/pkg/intel"
	"github.com/filesentry/filesentry/pkg/pii"
	"github.com/filesentry/filesentry/pkg/policy"
	"github.com/filesentry/filesentry/pkg/respond"
	"github.com/filesentry/filesentry/pkg/threat"
)

// UnifiedSecurityResult combines both detection results, the decided actions,
// and the executed responses for one file.
type UnifiedSecurityResult struct {
	CorrelationID string                   `json:"correlation_id"`
	FileID        string                   `json:"file_id"`
	FileName      string                   `json:"file_name"`
	ThreatResult  *threat.Result           `json:"threat_result,omitempty"`
	PIIResult     *pii.Result              `json:"pii_result,omitempty"`
	Actions       []policy.Action          `json:"actions"`
	Responses     []respond.ThreatResponse `json:"responses"`
	Success       bool                     `json:"success"`
	Summary       string                   `json:"summary"`
	Error         string                   `json:"error,omitempty"`
	CompletedAt   time.Time                `json:"completed_at"`
	Duration      time.Duration            `json:"duration"`
}

// Blocked reports whether the decided actions include a block.
func (r *UnifiedSecurityResult) Blocked() bool {
	for _, a := range r.Actions {
		if a == policy.ActionBlock {
			return true
		}
	}
	return false
}

// Config holds orchestrator settings.
type Config struct {
	Threat *threat.Config
	PII    *pii.Config
	Policy *policy.Config
}

// Orchestrator wires the detection engines, the response policy, and the
// executor behind one ScanAndRespond call. It is stateless across requests
// except for the read-mostly reference-data cache.
type Orchestrator struct {
	provider *intel.Provider
	policy   *policy.Engine
	executor *respond.Executor
	events   audit.Publisher
	config   *Config

	// engines compiled from the current reference database, rebuilt when
	// the database version changes.
	mu           sync.RWMutex
	intelVersion string
	engine       *threat.Engine
	matcher      *pii.Matcher

	// swallowedFailures counts event publishes that failed and were
	// swallowed so the security decision itself was not lost.
	swallowedFailures atomic.Uint64
}

// NewOrchestrator creates an orchestrator. The events publisher may be nil;
// security events are then only written through the executor's audit store.
func NewOrchestrator(provider *intel.Provider, policyEngine *policy.Engine, executor *respond.Executor, events audit.Publisher, cfg *Config) *Orchestrator {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Threat == nil {
		cfg.Threat = threat.DefaultConfig()
	}
	if cfg.PII == nil {
		cfg.PII = pii.DefaultConfig()
	}
	if policyEngine == nil {
		policyEngine = policy.NewEngine(cfg.Policy)
	}
	if provider == nil {
		provider = intel.NewProvider(intel.StaticSource{}, nil, 0)
	}
	return &Orchestrator{
		provider: provider,
		policy:   policyEngine,
		executor: executor,
		events:   events,
		config:   cfg,
	}
}

// SwallowedFailures returns the number of security-event publishes dropped
// because the publisher was unavailable.
func (o *Orchestrator) SwallowedFailures() uint64 {
	return o.swallowedFailures.Load()
}

// ScanAndRespond scans content for threats and PII, decides and executes the
// response actions, and returns the combined result. It never panics past
// its own boundary: any unexpected internal failure yields a well-formed
// result with success=false and a manual-review threat recommendation.
func (o *Orchestrator) ScanAndRespond(ctx context.Context, content []byte, metadata threat.FileMetadata, actorContext string) (result *UnifiedSecurityResult) {
	start := time.Now()
	correlationID := uuid.New().String()

	defer func() {
		if r := recover(); r != nil {
			result = o.failureResult(ctx, correlationID, metadata, start, fmt.Errorf("internal failure: %v", r))
		}
	}()

	engine, matcher, err := o.engines(ctx)
	if err != nil {
		return o.failureResult(ctx, correlationID, metadata, start, err)
	}

	threatResult, piiResult, scanErr := o.scan(ctx, engine, matcher, content, metadata)
	if scanErr != nil {
		return o.failureResult(ctx, correlationID, metadata, start, scanErr)
	}

	actions := o.policy.Decide(threatResult, piiResult)
	var responses []respond.ThreatResponse
	if o.executor != nil {
		responses = o.executor.Execute(ctx, respond.Request{
			CorrelationID: correlationID,
			Content:       content,
			Metadata:      metadata,
			ThreatResult:  threatResult,
			PIIResult:     piiResult,
			Actions:       actions,
			ActorContext:  actorContext,
		})
	}

	result = &UnifiedSecurityResult{
		CorrelationID: correlationID,
		FileID:        metadata.ID,
		FileName:      metadata.Name,
		ThreatResult:  threatResult,
		PIIResult:     piiResult,
		Actions:       actions,
		Responses:     responses,
		CompletedAt:   time.Now().UTC(),
		Duration:      time.Since(start),
	}
	result.Success = !result.Blocked()
	result.Summary = summarize(result)

	o.publishScanEvent(ctx, correlationID, metadata, result)
	return result
}

// scan runs the threat engine and the PII matcher concurrently and joins
// both results. When PII scanning is configured off the PII pass is skipped
// entirely and the result carries no PII findings.
func (o *Orchestrator) scan(ctx context.Context, engine *threat.Engine, matcher *pii.Matcher, content []byte, metadata threat.FileMetadata) (*threat.Result, *pii.Result, error) {
	var (
		wg           sync.WaitGroup
		threatResult *threat.Result
		threatErr    error
		piiResult    *pii.Result
		piiErr       error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		threatResult, threatErr = engine.Scan(ctx, content, metadata)
	}()
	if o.config.PII.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			piiResult, piiErr = matcher.Scan(ctx, content, metadata.ID, metadata.Name)
		}()
	}
	wg.Wait()

	if threatErr != nil {
		return nil, nil, fmt.Errorf("threat scan: %w", threatErr)
	}
	if piiErr != nil {
		return nil, nil, fmt.Errorf("pii scan: %w", piiErr)
	}
	return threatResult, piiResult, nil
}

// engines returns detection engines compiled from the current reference
// database, rebuilding them when the database version changed.
func (o *Orchestrator) engines(ctx context.Context) (*threat.Engine, *pii.Matcher, error) {
	db, err := o.provider.Database(ctx)
	if err != nil {
		return nil, nil, err
	}

	o.mu.RLock()
	if o.intelVersion == db.Version && o.engine != nil {
		engine, matcher := o.engine, o.matcher
		o.mu.RUnlock()
		return engine, matcher, nil
	}
	o.mu.RUnlock()

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.intelVersion == db.Version && o.engine != nil {
		return o.engine, o.matcher, nil
	}

	engine, err := threat.NewEngine(o.config.Threat, db.ThreatSet())
	if err != nil {
		return nil, nil, fmt.Errorf("building threat engine: %w", err)
	}
	matcher, err := pii.NewMatcher(db.PIIPatterns, o.config.PII, pii.NewClassifier())
	if err != nil {
		return nil, nil, fmt.Errorf("building pii matcher: %w", err)
	}

	o.intelVersion = db.Version
	o.engine = engine
	o.matcher = matcher
	return engine, matcher, nil
}

// failureResult builds the well-formed result returned when the scan itself
// failed: manual review, not success, failure logged as a security event.
func (o *Orchestrator) failureResult(ctx context.Context, correlationID string, metadata threat.FileMetadata, start time.Time, err error) *UnifiedSecurityResult {
	result := &UnifiedSecurityResult{
		CorrelationID: correlationID,
		FileID:        metadata.ID,
		FileName:      metadata.Name,
		ThreatResult: &threat.Result{
			ID:             uuid.New().String(),
			FileID:         metadata.ID,
			FileName:       metadata.Name,
			Recommendation: threat.RecommendManualReview,
			ScannedAt:      time.Now().UTC(),
			Diagnostics:    []string{err.Error()},
		},
		Actions:     []policy.Action{policy.ActionLog, policy.ActionEscalate},
		Success:     false,
		Error:       err.Error(),
		Summary:     "scan failed, manual review required",
		CompletedAt: time.Now().UTC(),
		Duration:    time.Since(start),
	}

	o.publishEvent(ctx, audit.SecurityEvent{
		ID:            uuid.New().String(),
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC(),
		Kind:          audit.KindFailure,
		Severity:      threat.SeverityHigh,
		FileID:        metadata.ID,
		FileName:      metadata.Name,
		UploadedBy:    metadata.UploadedBy,
		Success:       false,
		Details:       map[string]interface{}{"error": err.Error()},
	})
	return result
}

func (o *Orchestrator) publishScanEvent(ctx context.Context, correlationID string, metadata threat.FileMetadata, result *UnifiedSecurityResult) {
	event := audit.SecurityEvent{
		ID:            uuid.New().String(),
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC(),
		Kind:          audit.KindScan,
		FileID:        metadata.ID,
		FileName:      metadata.Name,
		UploadedBy:    metadata.UploadedBy,
		Success:       result.Success,
	}
	if result.ThreatResult != nil {
		event.Severity = result.ThreatResult.OverallSeverity
		event.RiskScore = result.ThreatResult.RiskScore
		event.Detections = len(result.ThreatResult.Threats)
	}
	if result.PIIResult != nil {
		event.PIIFindings = len(result.PIIResult.Findings)
	}
	if len(result.Actions) > 0 {
		event.Action = string(result.Actions[len(result.Actions)-1])
	}
	o.publishEvent(ctx, event)
}

// publishEvent publishes a security event, swallowing publisher failures so
// the security decision itself is never lost to an audit outage.
func (o *Orchestrator) publishEvent(ctx context.Context, event audit.SecurityEvent) {
	if o.events == nil {
		return
	}
	if err := o.events.Publish(ctx, []audit.SecurityEvent{event}); err != nil {
		o.swallowedFailures.Add(1)
		log.Printf("security: dropping %s event for %s: %v", event.Kind, event.CorrelationID, err)
	}
}

func summarize(result *UnifiedSecurityResult) string {
	threats := 0
	if result.ThreatResult != nil {
		threats = len(result.ThreatResult.Threats)
	}
	findings := 0
	if result.PIIResult != nil {
		findings = len(result.PIIResult.Findings)
	}

	switch {
	case result.Blocked():
		return fmt.Sprintf("upload blocked: %d threat(s), %d PII finding(s)", threats, findings)
	case threats > 0 || findings > 0:
		return fmt.Sprintf("upload accepted with findings: %d threat(s), %d PII finding(s)", threats, findings)
	default:
		return "upload clean"
	}
}
