package policy

import (
	"reflect"
	"testing"

	"github.com/filesentry/filesentry/pkg/pii"
	"github.com/filesentry/filesentry/pkg/threat"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name         string
		config       *Config
		threatResult *threat.Result
		piiResult    *pii.Result
		want         []Action
	}{
		{
			name: "nil results log only",
			want: []Action{ActionLog},
		},
		{
			name:         "clean scans log only",
			threatResult: &threat.Result{},
			piiResult:    &pii.Result{Classification: pii.ClassPublic},
			want:         []Action{ActionLog},
		},
		{
			name: "critical score blocks deletes escalates",
			threatResult: &threat.Result{
				RiskScore:       95,
				OverallSeverity: threat.SeverityCritical,
				Threats:         []threat.Detection{{Type: threat.TypeObfuscatedCode}},
			},
			want: []Action{ActionLog, ActionBlock, ActionDelete, ActionEscalate},
		},
		{
			name: "high score quarantines and escalates",
			threatResult: &threat.Result{
				RiskScore:       75,
				OverallSeverity: threat.SeverityHigh,
				Threats:         []threat.Detection{{Type: threat.TypeSuspiciousScript}},
			},
			want: []Action{ActionLog, ActionQuarantine, ActionEscalate},
		},
		{
			name: "medium score over threshold quarantines",
			threatResult: &threat.Result{
				RiskScore:       72,
				OverallSeverity: threat.SeverityMedium,
				Threats:         []threat.Detection{{Type: threat.TypeSuspiciousPattern}},
			},
			want: []Action{ActionLog, ActionQuarantine},
		},
		{
			name: "medium severity below threshold notifies",
			threatResult: &threat.Result{
				RiskScore:       45,
				OverallSeverity: threat.SeverityMedium,
				Threats:         []threat.Detection{{Type: threat.TypeSuspiciousPattern}},
			},
			want: []Action{ActionLog, ActionNotify},
		},
		{
			name: "malware type forces block at any score",
			threatResult: &threat.Result{
				RiskScore:       20,
				OverallSeverity: threat.SeverityLow,
				Threats:         []threat.Detection{{Type: threat.TypeMalware}},
			},
			want: []Action{ActionLog, ActionBlock, ActionEscalate},
		},
		{
			name: "ransomware type forces block at any score",
			threatResult: &threat.Result{
				RiskScore:       10,
				OverallSeverity: threat.SeverityLow,
				Threats:         []threat.Detection{{Type: threat.TypeRansomware}},
			},
			want: []Action{ActionLog, ActionBlock, ActionEscalate},
		},
		{
			name: "restricted pii blocks sanitizes escalates",
			piiResult: &pii.Result{
				Classification: pii.ClassRestricted,
				Findings:       []pii.Finding{{Type: pii.TypeSSN, Severity: pii.SeverityCritical}},
			},
			want: []Action{ActionLog, ActionBlock, ActionSanitize, ActionEscalate},
		},
		{
			name: "critical finding treated as restricted",
			piiResult: &pii.Result{
				Classification: pii.ClassConfidential,
				Findings:       []pii.Finding{{Type: pii.TypeCreditCard, Severity: pii.SeverityCritical}},
			},
			want: []Action{ActionLog, ActionBlock, ActionSanitize, ActionEscalate},
		},
		{
			name: "confidential pii sanitizes and notifies",
			piiResult: &pii.Result{
				Classification: pii.ClassConfidential,
				Findings:       []pii.Finding{{Type: pii.TypePassport, Severity: pii.SeverityHigh}},
			},
			want: []Action{ActionLog, ActionSanitize, ActionNotify},
		},
		{
			name: "low-tier pii notifies only",
			piiResult: &pii.Result{
				Classification: pii.ClassInternal,
				Findings:       []pii.Finding{{Type: pii.TypeEmail, Severity: pii.SeverityMedium}},
			},
			want: []Action{ActionLog, ActionNotify},
		},
		{
			name: "combined threat and pii cumulative without duplicates",
			threatResult: &threat.Result{
				RiskScore:       95,
				OverallSeverity: threat.SeverityCritical,
				Threats:         []threat.Detection{{Type: threat.TypeMalware}},
			},
			piiResult: &pii.Result{
				Classification: pii.ClassRestricted,
				Findings:       []pii.Finding{{Type: pii.TypeSSN, Severity: pii.SeverityCritical}},
			},
			want: []Action{ActionLog, ActionBlock, ActionDelete, ActionEscalate, ActionSanitize},
		},
		{
			name:   "notifications enabled appends notify on any detection",
			config: &Config{AutoQuarantineThreshold: 70, NotificationsEnabled: true},
			threatResult: &threat.Result{
				RiskScore:       75,
				OverallSeverity: threat.SeverityHigh,
				Threats:         []threat.Detection{{Type: threat.TypeSuspiciousScript}},
			},
			want: []Action{ActionLog, ActionQuarantine, ActionEscalate, ActionNotify},
		},
		{
			name:   "notifications enabled but clean stays silent",
			config: &Config{AutoQuarantineThreshold: 70, NotificationsEnabled: true},
			want:   []Action{ActionLog},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(tt.config)
			got := engine.Decide(tt.threatResult, tt.piiResult)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decide() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecideDeterministic(t *testing.T) {
	engine := NewEngine(nil)
	threatResult := &threat.Result{
		RiskScore:       80,
		OverallSeverity: threat.SeverityHigh,
		Threats:         []threat.Detection{{Type: threat.TypeSuspiciousScript}},
	}
	piiResult := &pii.Result{
		Classification: pii.ClassConfidential,
		Findings:       []pii.Finding{{Type: pii.TypePassport, Severity: pii.SeverityHigh}},
	}

	first := engine.Decide(threatResult, piiResult)
	for i := 0; i < 10; i++ {
		if got := engine.Decide(threatResult, piiResult); !reflect.DeepEqual(got, first) {
			t.Fatalf("Decide() not stable: %v vs %v", got, first)
		}
	}
}

func TestCustomQuarantineThreshold(t *testing.T) {
	engine := NewEngine(&Config{AutoQuarantineThreshold: 40})
	result := &threat.Result{
		RiskScore:       45,
		OverallSeverity: threat.SeverityMedium,
		Threats:         []threat.Detection{{Type: threat.TypeSuspiciousPattern}},
	}

	got := engine.Decide(result, nil)
	want := []Action{ActionLog, ActionQuarantine}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decide() = %v, want %v", got, want)
	}
}
