package threat

import (
	"math"
	"regexp"
	"strings"
)

// urlPattern matches http/https URLs for the URL-density heuristic.
var urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)

// injectionAPINames are API call names associated with process injection.
// Matching is case-insensitive substring search over the decoded sample.
var injectionAPINames = []string{
	"createremotethread",
	"virtualallocex",
	"writeprocessmemory",
	"ntmapviewofsection",
	"setwindowshook",
	"queueuserapc",
	"rtlcreateuserthread",
	"loadlibrarya",
	"getprocaddress",
}

// networkAPINames are raw socket / listener call names.
var networkAPINames = []string{
	"socket(",
	"listen(",
	"accept(",
	"bind(",
	"wsastartup",
	"connectex",
}

// BehaviorAnalyzer applies independent boolean heuristics over the decoded
// sample. Each triggered heuristic contributes one synthetic detection with a
// fixed confidence.
type BehaviorAnalyzer struct {
	entropyThreshold float64
	maxURLCount      int
}

// NewBehaviorAnalyzer creates a behavior analyzer with the given thresholds.
func NewBehaviorAnalyzer(cfg *Config) *BehaviorAnalyzer {
	return &BehaviorAnalyzer{
		entropyThreshold: cfg.EntropyThreshold,
		maxURLCount:      cfg.MaxURLCount,
	}
}

// Name identifies this analyzer.
func (a *BehaviorAnalyzer) Name() string { return "behavior" }

// Analyze runs all heuristic checks. Checks are independent: one firing does
// not suppress another.
func (a *BehaviorAnalyzer) Analyze(input *Input) ([]Detection, error) {
	var detections []Detection

	if entropy := shannonEntropy(input.Content); entropy > a.entropyThreshold {
		detections = append(detections, Detection{
			SignatureID: "behavior-entropy",
			Name:        "High Entropy Content",
			Type:        TypeObfuscatedCode,
			Severity:    SeverityMedium,
			Confidence:  65,
			Length:      len(input.Content),
			Context:     "content entropy exceeds threshold, possible packed or encrypted payload",
			Mitigation:  mitigationFor(TypeObfuscatedCode),
		})
	}

	if urls := urlPattern.FindAllStringIndex(input.Text, -1); len(urls) > a.maxURLCount {
		first := urls[0]
		detections = append(detections, Detection{
			SignatureID: "behavior-url-density",
			Name:        "Excessive URL Count",
			Type:        TypeSuspiciousPattern,
			Severity:    SeverityLow,
			Confidence:  50,
			Offset:      first[0],
			Length:      first[1] - first[0],
			Context:     "file contains an unusually high number of URLs",
			Mitigation:  mitigationFor(TypeSuspiciousPattern),
		})
	}

	lower := strings.ToLower(input.Text)

	if name, off := firstOccurrence(lower, injectionAPINames); off >= 0 {
		line, col := lineColumn(input.Text, off)
		detections = append(detections, Detection{
			SignatureID: "behavior-injection-api",
			Name:        "Process Injection API Call",
			Type:        TypeSuspiciousScript,
			Severity:    SeverityHigh,
			Confidence:  70,
			Offset:      off,
			Length:      len(name),
			Line:        line,
			Column:      col,
			Context:     extractContext(input.Text, off, off+len(name), 30),
			Mitigation:  mitigationFor(TypeSuspiciousScript),
		})
	}

	if name, off := firstOccurrence(lower, networkAPINames); off >= 0 {
		line, col := lineColumn(input.Text, off)
		detections = append(detections, Detection{
			SignatureID: "behavior-network-api",
			Name:        "Raw Network API Call",
			Type:        TypeSuspiciousScript,
			Severity:    SeverityMedium,
			Confidence:  55,
			Offset:      off,
			Length:      len(name),
			Line:        line,
			Column:      col,
			Context:     extractContext(input.Text, off, off+len(name), 30),
			Mitigation:  mitigationFor(TypeSuspiciousScript),
		})
	}

	return detections, nil
}

// firstOccurrence returns the first needle found in haystack and its offset,
// or ("", -1) when none are present.
func firstOccurrence(haystack string, needles []string) (string, int) {
	best := -1
	found := ""
	for _, n := range needles {
		if off := strings.Index(haystack, n); off >= 0 && (best < 0 || off < best) {
			best = off
			found = n
		}
	}
	return found, best
}

// shannonEntropy computes byte-level Shannon entropy in bits per byte.
func shannonEntropy(content []byte) float64 {
	if len(content) == 0 {
		return 0
	}
	var counts [256]int
	for _, b := range content {
		counts[b]++
	}
	entropy := 0.0
	total := float64(len(content))
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}
