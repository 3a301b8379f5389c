package threat

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// EngineVersion identifies the detection engine build in scan results.
const EngineVersion = "1.0.0"

// Engine orchestrates the analyzers over one file and aggregates their
// detections into a Result. It is stateless and request-scoped: every Scan
// call operates only on its own inputs.
type Engine struct {
	analyzers    []Analyzer
	scoring      ScoringTable
	config       *Config
	intelVersion string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithScoringTable substitutes the scoring table.
func WithScoringTable(t ScoringTable) EngineOption {
	return func(e *Engine) {
		e.scoring = t
	}
}

// WithAnalyzers replaces the analyzer set entirely.
func WithAnalyzers(analyzers ...Analyzer) EngineOption {
	return func(e *Engine) {
		e.analyzers = analyzers
	}
}

// NewEngine builds an engine over the given signature set. The five standard
// analyzers are installed unless WithAnalyzers overrides them.
func NewEngine(cfg *Config, set SignatureSet, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	sigMatcher, err := NewSignatureMatcher(set.Signatures, cfg.ContextWindow)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		analyzers: []Analyzer{
			NewHashMatcher(set.Hashes),
			sigMatcher,
			NewBehaviorAnalyzer(cfg),
			NewExtensionAnalyzer(),
			NewStructureAnalyzer(),
		},
		scoring:      DefaultScoringTable(),
		config:       cfg,
		intelVersion: set.Version,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// analyzerOutput carries one analyzer's detections back to the merge step.
type analyzerOutput struct {
	name       string
	detections []Detection
	err        error
}

// Scan runs all analyzers over the file and aggregates their detections.
// It fails outright only when scanning is disabled, the file exceeds the
// size ceiling, or the invocation deadline elapses. Individual analyzer
// failures are recovered and noted in the result diagnostics.
func (e *Engine) Scan(ctx context.Context, content []byte, meta FileMetadata) (*Result, error) {
	if !e.config.Enabled {
		return nil, &ScanError{Code: ErrCodeDisabled, Message: "threat scanning is disabled"}
	}
	if e.config.MaxFileSize > 0 && int64(len(content)) > e.config.MaxFileSize {
		return nil, &ScanError{
			Code:    ErrCodeSizeExceeded,
			Message: fmt.Sprintf("file size %d exceeds scan ceiling %d", len(content), e.config.MaxFileSize),
		}
	}

	start := time.Now()
	input := NewInput(content, meta, e.config.MaxSampleBytes)

	scanCtx := ctx
	var cancel context.CancelFunc
	if e.config.Timeout > 0 {
		scanCtx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	// Fan out: analyzers are independent and only read the input. Results
	// are merged after all complete or the deadline elapses.
	outputs := make(chan analyzerOutput, len(e.analyzers))
	for _, a := range e.analyzers {
		go func(a Analyzer) {
			out := analyzerOutput{name: a.Name()}
			defer func() {
				if r := recover(); r != nil {
					out.detections = nil
					out.err = fmt.Errorf("panic: %v", r)
				}
				outputs <- out
			}()
			out.detections, out.err = a.Analyze(input)
		}(a)
	}

	var detections []Detection
	var diagnostics []string
	conclusive := false

	for range e.analyzers {
		select {
		case out := <-outputs:
			if out.err != nil {
				diagnostics = append(diagnostics, out.name+": "+out.err.Error())
				continue
			}
			for _, d := range out.detections {
				if d.Conclusive {
					conclusive = true
				}
			}
			detections = append(detections, out.detections...)
		case <-scanCtx.Done():
			// Still-running analyzers are abandoned; their sends land in the
			// buffered channel and are garbage collected with it.
			return nil, &ScanError{
				Code:      ErrCodeTimeout,
				Message:   fmt.Sprintf("scan exceeded %s deadline", e.config.Timeout),
				Retryable: true,
			}
		}
	}

	// Deterministic ordering so byte-identical inputs always produce
	// identical results under an unchanged signature set.
	sort.SliceStable(detections, func(i, j int) bool {
		if detections[i].Offset != detections[j].Offset {
			return detections[i].Offset < detections[j].Offset
		}
		return detections[i].SignatureID < detections[j].SignatureID
	})
	sort.Strings(diagnostics)

	score := e.scoring.RiskScore(detections)
	if conclusive {
		// An exact known-malware hash match is proof regardless of the
		// weighting of other detections.
		score = 100
	}
	severity, recommendation := e.scoring.Assess(score, detections)

	return &Result{
		ID:              uuid.New().String(),
		FileID:          meta.ID,
		FileName:        meta.Name,
		Threats:         detections,
		RiskScore:       score,
		OverallSeverity: severity,
		Recommendation:  recommendation,
		ScannedAt:       start,
		ScanDuration:    time.Since(start),
		EngineVersion:   EngineVersion,
		IntelVersion:    e.intelVersion,
		Diagnostics:     diagnostics,
	}, nil
}
