package pii

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ErrDisabled is returned by Scan when PII scanning is configured off.
var ErrDisabled = errors.New("pii scanning is disabled")

// compiledPattern pairs a pattern with its compiled regex.
type compiledPattern struct {
	Pattern
	re *regexp.Regexp
}

// Matcher runs the PII pattern set with type-specific validation, masking,
// and deduplication, then classifies the accepted findings.
type Matcher struct {
	patterns   []compiledPattern
	classifier *Classifier
	config     *Config
}

// NewMatcher compiles the given patterns. A pattern that fails to compile is
// rejected with an error; patterns are reference data and must be well-formed.
func NewMatcher(patterns []Pattern, cfg *Config, classifier *Classifier) (*Matcher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if classifier == nil {
		classifier = NewClassifier()
	}

	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling PII pattern %s: %w", p.ID, err)
		}
		compiled = append(compiled, compiledPattern{Pattern: p, re: re})
	}

	return &Matcher{patterns: compiled, classifier: classifier, config: cfg}, nil
}

// NewDefaultMatcher builds a matcher over the built-in pattern set.
func NewDefaultMatcher() *Matcher {
	m, err := NewMatcher(DefaultPatterns(), nil, nil)
	if err != nil {
		// The built-in patterns are compile-checked by tests; reaching this
		// indicates a programming error.
		panic(err)
	}
	return m
}

// maskedSpan records one accepted match for context rendering.
type maskedSpan struct {
	start  int
	end    int
	masked string
}

// Scan detects PII in the file content and returns masked findings with a
// sensitivity classification. The raw matched values never appear in the
// result: masked forms are substituted in finding values, and every accepted
// span inside a finding's context window is mask-substituted too. Finding
// offsets index the raw content bytes.
func (m *Matcher) Scan(ctx context.Context, content []byte, fileID, fileName string) (*Result, error) {
	start := time.Now()

	if !m.config.Enabled {
		return nil, ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := decodeSample(content, m.config.MaxSampleBytes)

	seen := make(map[string]struct{})
	var findings []Finding
	var spans []maskedSpan

	for _, p := range m.patterns {
		for _, idx := range p.re.FindAllStringIndex(text, -1) {
			matchStart, matchEnd := idx[0], idx[1]
			value := text[matchStart:matchEnd]

			if !validate(p.Type, value) {
				continue
			}
			if isListedFalsePositive(p.FalsePositives, value) {
				continue
			}

			masked := Mask(p.Type, value)
			key := string(p.Type) + ":" + fmt.Sprint(matchStart) + ":" + masked
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			line, col := lineColumn(text, matchStart)
			findings = append(findings, Finding{
				Type:        p.Type,
				PatternID:   p.ID,
				MaskedValue: masked,
				Confidence:  p.Confidence,
				Severity:    p.Severity,
				Offset:      matchStart,
				Length:      matchEnd - matchStart,
				Line:        line,
				Column:      col,
			})
			spans = append(spans, maskedSpan{start: matchStart, end: matchEnd, masked: masked})
		}
	}

	// Contexts are rendered only after all matches are collected so that a
	// neighboring finding's raw value never leaks through another finding's
	// context window.
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})
	for i := range findings {
		f := &findings[i]
		f.Context = renderContext(text, f.Offset, f.Offset+f.Length, m.config.ContextWindow, spans)
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Offset != findings[j].Offset {
			return findings[i].Offset < findings[j].Offset
		}
		return findings[i].PatternID < findings[j].PatternID
	})

	classification := m.classifier.Classify(findings)

	return &Result{
		ID:                  uuid.New().String(),
		FileID:              fileID,
		FileName:            fileName,
		Findings:            findings,
		Classification:      classification,
		RecommendedHandling: m.classifier.Handling(classification, findings),
		ComplianceFlags:     m.classifier.Flags(findings),
		ScannedAt:           start,
		ScanDuration:        time.Since(start),
	}, nil
}

// isListedFalsePositive checks a match against the pattern's known
// false-positive list.
func isListedFalsePositive(list []string, value string) bool {
	for _, fp := range list {
		if strings.EqualFold(fp, value) {
			return true
		}
	}
	return false
}

// renderContext returns the window around one match with every accepted span
// inside the window replaced by its masked form. Spans must be sorted by
// start offset.
func renderContext(text string, start, end, window int, spans []maskedSpan) string {
	cs := start - window
	if cs < 0 {
		cs = 0
	}
	ce := end + window
	if ce > len(text) {
		ce = len(text)
	}

	var b strings.Builder
	pos := cs
	for _, s := range spans {
		if s.end <= pos || s.start >= ce {
			continue
		}
		from := s.start
		if from < pos {
			from = pos
		}
		to := s.end
		if to > ce {
			to = ce
		}
		b.WriteString(text[pos:from])
		b.WriteString(clipMask(s.masked, from-s.start, to-s.start))
		pos = to
	}
	b.WriteString(text[pos:ce])
	return b.String()
}

// clipMask returns the [from,to) slice of a masked value, bounded by the
// mask's length for masks that do not preserve byte length exactly.
func clipMask(masked string, from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(masked) {
		to = len(masked)
	}
	if from >= to {
		return ""
	}
	return masked[from:to]
}

// decodeSample decodes at most maxSample bytes of content as text, replacing
// each invalid UTF-8 byte with a single '?'. The replacement is one-for-one
// so offsets into the decoded text index the raw content bytes; sanitization
// applies finding spans to the raw buffer and depends on this.
func decodeSample(content []byte, maxSample int) string {
	sample := content
	if maxSample > 0 && len(sample) > maxSample {
		sample = sample[:maxSample]
	}
	if utf8.Valid(sample) {
		return string(sample)
	}
	out := make([]byte, len(sample))
	copy(out, sample)
	for i := 0; i < len(out); {
		r, size := utf8.DecodeRune(out[i:])
		if r == utf8.RuneError && size == 1 {
			out[i] = '?'
			i++
			continue
		}
		i += size
	}
	return string(out)
}

// lineColumn computes the 1-based line and column of a byte offset.
func lineColumn(text string, offset int) (int, int) {
	if offset > len(text) {
		offset = len(text)
	}
	line, col := 1, 1
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
