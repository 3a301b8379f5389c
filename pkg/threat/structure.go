package threat

import (
	"bytes"
)

// magicSignature is a binary file signature to look for inside content.
type magicSignature struct {
	name     string
	magic    []byte
	threat   Type
	severity Severity
}

// embeddedSignatures are binary signatures whose presence beyond the header
// tolerance indicates a file embedded inside another file.
var embeddedSignatures = []magicSignature{
	{name: "Windows Executable (PE)", magic: []byte{0x4D, 0x5A}, threat: TypeEmbeddedExecutable, severity: SeverityHigh},
	{name: "ELF Executable", magic: []byte{0x7F, 0x45, 0x4C, 0x46}, threat: TypeEmbeddedExecutable, severity: SeverityHigh},
	{name: "Mach-O Executable", magic: []byte{0xFE, 0xED, 0xFA, 0xCE}, threat: TypeEmbeddedExecutable, severity: SeverityHigh},
	{name: "Java Class File", magic: []byte{0xCA, 0xFE, 0xBA, 0xBE}, threat: TypeEmbeddedExecutable, severity: SeverityHigh},
	{name: "ZIP Archive", magic: []byte{0x50, 0x4B, 0x03, 0x04}, threat: TypeSuspiciousPattern, severity: SeverityMedium},
	{name: "RAR Archive", magic: []byte{0x52, 0x61, 0x72, 0x21}, threat: TypeSuspiciousPattern, severity: SeverityMedium},
	{name: "GZIP Archive", magic: []byte{0x1F, 0x8B, 0x08}, threat: TypeSuspiciousPattern, severity: SeverityMedium},
	{name: "7-Zip Archive", magic: []byte{0x37, 0x7A, 0xBC, 0xAF}, threat: TypeSuspiciousPattern, severity: SeverityMedium},
}

// headerTolerance is the number of leading bytes in which a magic signature
// describes the file itself rather than embedded content.
const headerTolerance = 8

// StructureAnalyzer searches the raw byte buffer for embedded-file magic
// signatures at any offset beyond the header tolerance.
type StructureAnalyzer struct{}

// NewStructureAnalyzer creates a structure analyzer.
func NewStructureAnalyzer() *StructureAnalyzer {
	return &StructureAnalyzer{}
}

// Name identifies this analyzer.
func (a *StructureAnalyzer) Name() string { return "structure" }

// Analyze scans the full buffer. One detection is reported per signature at
// its first embedded occurrence; repeated occurrences of the same signature
// add no information.
func (a *StructureAnalyzer) Analyze(input *Input) ([]Detection, error) {
	var detections []Detection

	for _, sig := range embeddedSignatures {
		off := indexFrom(input.Content, sig.magic, headerTolerance)
		if off < 0 {
			continue
		}
		detections = append(detections, Detection{
			SignatureID: "structure-" + sanitizeID(sig.name),
			Name:        "Embedded " + sig.name,
			Type:        sig.threat,
			Severity:    sig.severity,
			Confidence:  75,
			Offset:      off,
			Length:      len(sig.magic),
			Context:     sig.name + " signature found inside file content",
			Mitigation:  mitigationFor(sig.threat),
		})
	}

	return detections, nil
}

// indexFrom returns the first index of pattern in content at or after the
// given offset, or -1.
func indexFrom(content, pattern []byte, from int) int {
	if from >= len(content) {
		return -1
	}
	idx := bytes.Index(content[from:], pattern)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// sanitizeID lowercases a signature name into an id fragment.
func sanitizeID(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			out = append(out, c)
		case c == ' ' || c == '-':
			if len(out) > 0 && out[len(out)-1] != '-' {
				out = append(out, '-')
			}
		}
	}
	return string(bytes.TrimRight(out, "-"))
}
