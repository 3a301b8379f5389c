package threat

// DefaultSignatures returns the built-in signature set. Deployments extend
// or replace this set through the intel loader; the built-ins cover the
// common script-borne threats seen in upload pipelines.
func DefaultSignatures() []Signature {
	return []Signature{
		{
			ID:         "sig-eicar",
			Name:       "EICAR Test String",
			Type:       TypeMalware,
			Pattern:    `EICAR-STANDARD-ANTIVIRUS-TEST-FILE`,
			Severity:   SeverityCritical,
			Confidence: 100,
			Source:     "builtin",
		},
		{
			ID:         "sig-eval-atob",
			Name:       "Obfuscated JavaScript Eval",
			Type:       TypeObfuscatedCode,
			Pattern:    `(?i)eval\s*\(\s*atob\s*\(`,
			Severity:   SeverityHigh,
			Confidence: 85,
			Source:     "builtin",
		},
		{
			ID:         "sig-eval-fromcharcode",
			Name:       "Character Code Obfuscation",
			Type:       TypeObfuscatedCode,
			Pattern:    `(?i)(?:eval|document\.write)\s*\(\s*(?:unescape|String\.fromCharCode)`,
			Severity:   SeverityHigh,
			Confidence: 80,
			Source:     "builtin",
		},
		{
			ID:         "sig-base64-blob",
			Name:       "Long Base64 Payload",
			Type:       TypeObfuscatedCode,
			Pattern:    `[A-Za-z0-9+/]{20,}={0,2}`,
			Severity:   SeverityMedium,
			Confidence: 55,
			Source:     "builtin",
		},
		{
			ID:         "sig-powershell-encoded",
			Name:       "Encoded PowerShell Command",
			Type:       TypeSuspiciousScript,
			Pattern:    `(?i)powershell(?:\.exe)?\s+(?:-\w+\s+)*-e(?:nc(?:odedcommand)?)?\s+[A-Za-z0-9+/=]+`,
			Severity:   SeverityHigh,
			Confidence: 90,
			Source:     "builtin",
		},
		{
			ID:         "sig-shell-download",
			Name:       "Download-and-Execute Pipeline",
			Type:       TypeSuspiciousScript,
			Pattern:    `(?i)(?:curl|wget)\s+[^\n|;]{0,200}\|\s*(?:ba)?sh`,
			Severity:   SeverityHigh,
			Confidence: 85,
			Source:     "builtin",
		},
		{
			ID:         "sig-php-exec",
			Name:       "PHP Remote Execution",
			Type:       TypeSuspiciousScript,
			Pattern:    `(?i)(?:shell_exec|passthru|system|proc_open)\s*\(\s*\$_(?:GET|POST|REQUEST)`,
			Severity:   SeverityCritical,
			Confidence: 90,
			Source:     "builtin",
		},
		{
			ID:         "sig-reverse-shell",
			Name:       "Reverse Shell Invocation",
			Type:       TypeBackdoor,
			Pattern:    `(?i)(?:nc\s+-[a-z]*l[a-z]*\s+-p\s+\d+|/bin/(?:ba)?sh\s+-i\s+>&|reverse\s+shell)`,
			Severity:   SeverityCritical,
			Confidence: 90,
			Source:     "builtin",
		},
		{
			ID:         "sig-ransom-note",
			Name:       "Ransom Note Content",
			Type:       TypeRansomware,
			Pattern:    `(?i)(?:your\s+files\s+have\s+been\s+encrypted|pay\s+.{0,30}bitcoin.{0,30}decrypt|decryption\s+key\s+will\s+be\s+deleted)`,
			Severity:   SeverityCritical,
			Confidence: 95,
			Source:     "builtin",
		},
		{
			ID:         "sig-keylogger",
			Name:       "Keystroke Capture",
			Type:       TypeSpyware,
			Pattern:    `(?i)(?:GetAsyncKeyState|keylog|RegisterRawInputDevices)`,
			Severity:   SeverityHigh,
			Confidence: 75,
			Source:     "builtin",
		},
		{
			ID:         "sig-phishing-lure",
			Name:       "Account Verification Lure",
			Type:       TypePhishing,
			Pattern:    `(?i)(?:urgent|immediately|within\s+24\s+hours).{0,60}(?:verify|confirm|suspend).{0,40}(?:account|password|identity)`,
			Severity:   SeverityMedium,
			Confidence: 65,
			Source:     "builtin",
		},
		{
			ID:         "sig-autoopen-macro",
			Name:       "Auto-Executing Office Macro",
			Type:       TypeTrojan,
			Pattern:    `(?i)(?:Auto_?Open|Workbook_Open|Document_Open)\b[\s\S]{0,200}?(?:Shell|CreateObject)`,
			Severity:   SeverityHigh,
			Confidence: 80,
			Source:     "builtin",
		},
	}
}
