package threat

import (
	"unicode/utf8"
)

// Analyzer is one independent detection pass over file content. Analyzers
// only read the input and write to their own accumulator, so the engine may
// run them concurrently.
type Analyzer interface {
	// Name identifies the analyzer in diagnostics.
	Name() string

	// Analyze inspects the input and returns zero or more detections.
	// A returned error is recovered by the engine: the analyzer contributes
	// no detections and the scan continues.
	Analyze(input *Input) ([]Detection, error)
}

// Input is the read-only view of a file shared by all analyzers.
type Input struct {
	Content  []byte
	Text     string // bounded, best-effort decoded sample of Content
	Metadata FileMetadata
}

// NewInput builds an analyzer input, decoding at most maxSample bytes of
// content as text. Decoding is lossy but offset-preserving: every byte
// offset into Text is a valid offset into Content, so match spans can be
// applied to the raw buffer (sanitization depends on this).
func NewInput(content []byte, meta FileMetadata, maxSample int) *Input {
	sample := content
	if maxSample > 0 && len(sample) > maxSample {
		sample = sample[:maxSample]
	}
	return &Input{
		Content:  content,
		Text:     decodeText(sample),
		Metadata: meta,
	}
}

// decodeText decodes bytes as UTF-8, replacing each invalid byte with a
// single '?'. The replacement is one-for-one so the decoded string has the
// same length as the input and offsets into it index the raw bytes.
func decodeText(sample []byte) string {
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

// extractContext returns the content surrounding a match, bounded by the
// window size on each side.
func extractContext(text string, start, end, window int) string {
	cs := start - window
	if cs < 0 {
		cs = 0
	}
	ce := end + window
	if ce > len(text) {
		ce = len(text)
	}
	return text[cs:ce]
}

// lineColumn computes the 1-based line and column of a byte offset.
func lineColumn(text string, offset int) (int, int) {
	if offset > len(text) {
		offset = len(text)
	}
	line := 1
	col := 1
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
