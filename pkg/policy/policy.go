// Package policy maps detection results to an ordered list of response
// actions. The mapping is a single explicit decision table: the audit and
// compliance guarantees of the pipeline depend on it being deterministic
// and reviewable in one place.
package policy

import (
	"github.com/filesentry/filesentry/pkg/pii"
	"github.com/filesentry/filesentry/pkg/threat"
)

// Action is one automated response to a scanned file.
type Action string

const (
	ActionLog        Action = "log"
	ActionNotify     Action = "notify"
	ActionSanitize   Action = "sanitize"
	ActionQuarantine Action = "quarantine"
	ActionDelete     Action = "delete"
	ActionBlock      Action = "block"
	ActionEscalate   Action = "escalate"
)

// Config holds the policy thresholds and switches.
type Config struct {
	AutoQuarantineThreshold float64 `json:"auto_quarantine_threshold" yaml:"auto_quarantine_threshold"`
	NotificationsEnabled    bool    `json:"notifications_enabled" yaml:"notifications_enabled"`
}

// DefaultConfig returns the default policy configuration.
func DefaultConfig() *Config {
	return &Config{
		AutoQuarantineThreshold: 70,
		NotificationsEnabled:    false,
	}
}

// forcedBlockTypes are threat types whose presence always blocks and
// escalates regardless of aggregate score.
var forcedBlockTypes = map[threat.Type]struct{}{
	threat.TypeRansomware: {},
	threat.TypeMalware:    {},
	threat.TypeBackdoor:   {},
}

// Engine is the pure response-policy decision function.
type Engine struct {
	config *Config
}

// NewEngine creates a policy engine with the given configuration.
func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Engine{config: cfg}
}

// Decide evaluates the decision table over both result sets and returns the
// ordered, deduplicated action list. Either result may be nil. Rules are
// evaluated in fixed order and actions are cumulative.
func (e *Engine) Decide(threatResult *threat.Result, piiResult *pii.Result) []Action {
	list := newActionList()

	// Rule 1: every decision is logged.
	list.add(ActionLog)

	var threats []threat.Detection
	if threatResult != nil {
		threats = threatResult.Threats
	}
	var findings []pii.Finding
	if piiResult != nil {
		findings = piiResult.Findings
	}

	// Rule 2: score at or above the quarantine threshold triggers
	// containment scaled by overall severity. Rule 3: a medium-severity
	// result below the threshold only notifies.
	if threatResult != nil && threatResult.RiskScore >= e.config.AutoQuarantineThreshold {
		switch threatResult.OverallSeverity {
		case threat.SeverityCritical:
			list.add(ActionBlock, ActionDelete, ActionEscalate)
		case threat.SeverityHigh:
			list.add(ActionQuarantine, ActionEscalate)
		default:
			list.add(ActionQuarantine)
		}
	} else if threatResult != nil && threatResult.OverallSeverity == threat.SeverityMedium {
		list.add(ActionNotify)
	}

	// Rule 4: certain threat families always block, whatever the score.
	for _, d := range threats {
		if _, forced := forcedBlockTypes[d.Type]; forced {
			list.add(ActionBlock, ActionEscalate)
			break
		}
	}

	// Rules 5-7: PII disposition by classification tier.
	switch {
	case piiResult != nil && (piiResult.Classification == pii.ClassRestricted || hasCriticalFinding(findings)):
		list.add(ActionBlock, ActionSanitize, ActionEscalate)
	case piiResult != nil && piiResult.Classification == pii.ClassConfidential:
		list.add(ActionSanitize, ActionNotify)
	case len(findings) > 0:
		list.add(ActionNotify)
	}

	// Rule 8: when notifications are globally enabled and anything at all
	// was detected, make sure a notification goes out.
	if e.config.NotificationsEnabled && (len(threats) > 0 || len(findings) > 0) {
		list.add(ActionNotify)
	}

	return list.actions
}

func hasCriticalFinding(findings []pii.Finding) bool {
	for _, f := range findings {
		if f.Severity == pii.SeverityCritical {
			return true
		}
	}
	return false
}

// actionList accumulates actions preserving first-added order, ignoring
// duplicates.
type actionList struct {
	actions []Action
	present map[Action]struct{}
}

func newActionList() *actionList {
	return &actionList{present: make(map[Action]struct{})}
}

func (l *actionList) add(actions ...Action) {
	for _, a := range actions {
		if _, ok := l.present[a]; ok {
			continue
		}
		l.present[a] = struct{}{}
		l.actions = append(l.actions, a)
	}
}
