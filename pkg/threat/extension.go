package threat

import (
	"path"
	"strings"
)

// executableExtensions are extensions whose presence alone marks an uploaded
// file as risky, keyed by extension with the severity to report.
var executableExtensions = map[string]Severity{
	".exe": SeverityHigh,
	".scr": SeverityHigh,
	".com": SeverityHigh,
	".pif": SeverityHigh,
	".msi": SeverityMedium,
	".dll": SeverityMedium,
	".bat": SeverityMedium,
	".cmd": SeverityMedium,
	".vbs": SeverityHigh,
	".vbe": SeverityHigh,
	".jse": SeverityHigh,
	".wsf": SeverityHigh,
	".ps1": SeverityMedium,
	".jar": SeverityMedium,
	".hta": SeverityHigh,
	".cpl": SeverityHigh,
}

// documentExtensions are benign-looking extensions commonly used as the
// decoy part of a double-extension filename.
var documentExtensions = map[string]struct{}{
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {},
	".ppt": {}, ".pptx": {}, ".txt": {}, ".csv": {}, ".jpg": {},
	".jpeg": {}, ".png": {}, ".gif": {}, ".zip": {},
}

// ExtensionAnalyzer classifies filename risk independent of content:
// executable-class extensions and double-extension names.
type ExtensionAnalyzer struct{}

// NewExtensionAnalyzer creates an extension analyzer.
func NewExtensionAnalyzer() *ExtensionAnalyzer {
	return &ExtensionAnalyzer{}
}

// Name identifies this analyzer.
func (a *ExtensionAnalyzer) Name() string { return "extension" }

// Analyze inspects the file name only.
func (a *ExtensionAnalyzer) Analyze(input *Input) ([]Detection, error) {
	name := strings.ToLower(input.Metadata.Name)
	if name == "" {
		return nil, nil
	}

	var detections []Detection

	ext := path.Ext(name)
	if severity, risky := executableExtensions[ext]; risky {
		detections = append(detections, Detection{
			SignatureID: "extension-executable",
			Name:        "Executable File Extension",
			Type:        TypeSuspiciousPattern,
			Severity:    severity,
			Confidence:  60,
			Context:     "file name " + input.Metadata.Name + " carries executable extension " + ext,
			Mitigation:  "Reject executable uploads or quarantine for administrator review.",
		})
	}

	// Double extension: a document-looking extension immediately followed by
	// an executable one, e.g. invoice.pdf.exe.
	trimmed := strings.TrimSuffix(name, ext)
	if inner := path.Ext(trimmed); inner != "" {
		_, innerIsDoc := documentExtensions[inner]
		_, outerIsExec := executableExtensions[ext]
		if innerIsDoc && outerIsExec {
			detections = append(detections, Detection{
				SignatureID: "extension-double",
				Name:        "Double Extension Filename",
				Type:        TypeSuspiciousPattern,
				Severity:    SeverityHigh,
				Confidence:  80,
				Context:     "file name " + input.Metadata.Name + " disguises " + ext + " as " + inner,
				Mitigation:  "Block the file; double extensions are a common malware delivery disguise.",
			})
		}
	}

	return detections, nil
}
