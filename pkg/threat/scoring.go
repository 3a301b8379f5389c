package threat

// ScoringTable holds the severity weights and threshold constants used to
// turn a set of detections into a risk score and disposition. It is injected
// into the engine at construction so tests can substitute alternate tables.
type ScoringTable struct {
	Weights map[Severity]float64

	// Recommendation thresholds on the 0-100 risk score.
	BlockScore      float64
	QuarantineScore float64
	ReviewScore     float64
	WarnScore       float64
}

// DefaultScoringTable returns the standard scoring table. Weights are
// strictly increasing by severity tier.
func DefaultScoringTable() ScoringTable {
	return ScoringTable{
		Weights: map[Severity]float64{
			SeverityInfo:     0.02,
			SeverityLow:      0.15,
			SeverityMedium:   0.40,
			SeverityHigh:     0.70,
			SeverityCritical: 1.00,
		},
		BlockScore:      90,
		QuarantineScore: 70,
		ReviewScore:     40,
		WarnScore:       10,
	}
}

// RiskScore computes the aggregate risk score for a set of detections:
// the sum of confidence x severity weight per detection, capped at 100.
// Adding a detection can never lower the score.
func (t ScoringTable) RiskScore(threats []Detection) float64 {
	score := 0.0
	for _, d := range threats {
		score += d.Confidence * t.Weights[d.Severity]
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Assess maps a risk score and the detections that produced it to an overall
// severity and recommendation. It is a pure function: the recommendation is
// never set independently of the score and severities.
func (t ScoringTable) Assess(score float64, threats []Detection) (Severity, Recommendation) {
	overall := SeverityInfo
	hasCritical := false
	for _, d := range threats {
		if d.Severity.Value() > overall.Value() {
			overall = d.Severity
		}
		if d.Severity == SeverityCritical {
			hasCritical = true
		}
	}

	// A single critical detection or a near-maximal score forces critical.
	if hasCritical || score >= t.BlockScore {
		overall = SeverityCritical
	}

	switch {
	case overall == SeverityCritical || score >= t.BlockScore:
		return overall, RecommendBlock
	case overall == SeverityHigh || score >= t.QuarantineScore:
		return overall, RecommendQuarantine
	case score >= t.ReviewScore:
		return overall, RecommendManualReview
	case score >= t.WarnScore:
		return overall, RecommendWarn
	default:
		return overall, RecommendAllow
	}
}
