package respond

import (
	"bytes"
	"context"
	"testing"

	"github.com/filesentry/filesentry/pkg/pii"
	"github.com/filesentry/filesentry/pkg/threat"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		threats  []threat.Detection
		findings []pii.Finding
		want     string
		wantErr  bool
	}{
		{
			name:    "no spans returns copy",
			content: "clean content",
			want:    "clean content",
		},
		{
			name:    "threat span replaced with placeholder",
			content: "before eval(atob(x)) after",
			threats: []threat.Detection{{Offset: 7, Length: 10}},
			want:    "before [REMOVED]x)) after",
		},
		{
			name:    "pii span replaced with mask",
			content: "ssn 123-45-6789 end",
			findings: []pii.Finding{
				{Offset: 4, Length: 11, MaskedValue: "***-**-6789"},
			},
			want: "ssn ***-**-6789 end",
		},
		{
			name:    "multiple spans applied back to front",
			content: "aaa BAD bbb 123-45-6789 ccc",
			threats: []threat.Detection{{Offset: 4, Length: 3}},
			findings: []pii.Finding{
				{Offset: 12, Length: 11, MaskedValue: "***-**-6789"},
			},
			want: "aaa [REMOVED] bbb ***-**-6789 ccc",
		},
		{
			name:    "overlapping spans collapse into first",
			content: "xx SECRET-DATA yy",
			threats: []threat.Detection{
				{Offset: 3, Length: 11},
				{Offset: 10, Length: 4},
			},
			want: "xx [REMOVED] yy",
		},
		{
			name:    "zero length spans skipped",
			content: "payload",
			threats: []threat.Detection{{Offset: 0, Length: 0}},
			want:    "payload",
		},
		{
			name:    "out of range threat span errors",
			content: "short",
			threats: []threat.Detection{{Offset: 3, Length: 100}},
			wantErr: true,
		},
		{
			name:    "out of range pii span errors",
			content: "short",
			findings: []pii.Finding{
				{Offset: 20, Length: 5, MaskedValue: "*****"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize([]byte(tt.content), tt.threats, tt.findings, "")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Sanitize() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Sanitize() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Sanitize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeDoesNotMutateInput(t *testing.T) {
	content := []byte("keep BAD intact")
	if _, err := Sanitize(content, []threat.Detection{{Offset: 5, Length: 3}}, nil, ""); err != nil {
		t.Fatalf("Sanitize() error = %v", err)
	}
	if string(content) != "keep BAD intact" {
		t.Errorf("input mutated: %q", content)
	}
}

// Finding offsets produced by the PII matcher must land on the raw content
// bytes even when the file starts with bytes that are not valid UTF-8, so
// the sanitized copy carries no trace of the matched value.
func TestSanitizeAppliesMatcherOffsetsToRawBytes(t *testing.T) {
	content := append([]byte{0xFF, 0xFF}, []byte("ssn: 123-45-6789 end")...)

	matcher := pii.NewDefaultMatcher()
	result, err := matcher.Scan(context.Background(), content, "file-1", "dump.bin")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(result.Findings))
	}

	cleaned, err := Sanitize(content, nil, result.Findings, "")
	if err != nil {
		t.Fatalf("Sanitize() error = %v", err)
	}
	if bytes.Contains(cleaned, []byte("123-45-6789")) {
		t.Errorf("sanitized copy still holds the matched value: %q", cleaned)
	}
	if !bytes.Contains(cleaned, []byte("***-**-6789")) {
		t.Errorf("sanitized copy missing masked form: %q", cleaned)
	}
}
