package respond

import (
	"fmt"
	"sort"

	"github.com/filesentry/filesentry/pkg/pii"
	"github.com/filesentry/filesentry/pkg/threat"
)

type span struct {
	offset      int
	length      int
	replacement string
}

// Sanitize builds a cleaned copy of content: threat match spans are replaced
// with the placeholder, PII spans with their masked values. Detection offsets
// index the raw content bytes (the decoders are offset-preserving), so a span
// that falls outside the buffer indicates corrupted coordinates and fails the
// whole sanitize rather than silently leaving the raw value in the copy.
// Replacements are applied back to front so earlier offsets stay valid, and
// overlapping spans are collapsed into the earliest one. Detections without a
// span (length zero, e.g. filename-level findings) contribute nothing.
func Sanitize(content []byte, threats []threat.Detection, findings []pii.Finding, placeholder string) ([]byte, error) {
	if placeholder == "" {
		placeholder = "[REMOVED]"
	}

	spans := make([]span, 0, len(threats)+len(findings))
	for _, d := range threats {
		if d.Length <= 0 {
			continue
		}
		if d.Offset < 0 || d.Offset+d.Length > len(content) {
			return nil, fmt.Errorf("threat span %d+%d exceeds content size %d", d.Offset, d.Length, len(content))
		}
		spans = append(spans, span{offset: d.Offset, length: d.Length, replacement: placeholder})
	}
	for _, f := range findings {
		if f.Length <= 0 {
			continue
		}
		if f.Offset < 0 || f.Offset+f.Length > len(content) {
			return nil, fmt.Errorf("pii span %d+%d exceeds content size %d", f.Offset, f.Length, len(content))
		}
		spans = append(spans, span{offset: f.Offset, length: f.Length, replacement: f.MaskedValue})
	}
	if len(spans) == 0 {
		out := make([]byte, len(content))
		copy(out, content)
		return out, nil
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].offset != spans[j].offset {
			return spans[i].offset < spans[j].offset
		}
		return spans[i].length > spans[j].length
	})

	// Drop spans swallowed by an earlier, longer one.
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := merged[len(merged)-1]
		if s.offset < last.offset+last.length {
			continue
		}
		merged = append(merged, s)
	}

	out := make([]byte, len(content))
	copy(out, content)
	for i := len(merged) - 1; i >= 0; i-- {
		s := merged[i]
		var next []byte
		next = append(next, out[:s.offset]...)
		next = append(next, s.replacement...)
		next = append(next, out[s.offset+s.length:]...)
		out = next
	}
	return out, nil
}
