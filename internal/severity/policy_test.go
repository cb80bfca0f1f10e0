package severity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabeebchat/triage/internal/model"
)

func TestDerive(t *testing.T) {
	table := &Table{
		Version:             1,
		Default:             model.SeverityMedium,
		ConfidenceThreshold: 0.5,
		Categories: map[string]model.Severity{
			"cardiology":  model.SeverityHigh,
			"dermatology": model.SeverityLow,
		},
	}

	tests := []struct {
		name         string
		label        string
		confidence   float64
		wantSeverity model.Severity
		wantUrgent   bool
	}{
		{
			name:         "high severity with confident prediction is urgent",
			label:        "cardiology",
			confidence:   0.9,
			wantSeverity: model.SeverityHigh,
			wantUrgent:   true,
		},
		{
			name:         "high severity below threshold downgrades and clears urgency",
			label:        "cardiology",
			confidence:   0.3,
			wantSeverity: model.SeverityMedium,
			wantUrgent:   false,
		},
		{
			name:         "confidence exactly at threshold keeps base severity",
			label:        "cardiology",
			confidence:   0.5,
			wantSeverity: model.SeverityHigh,
			wantUrgent:   true,
		},
		{
			name:         "low base severity is never urgent",
			label:        "dermatology",
			confidence:   0.99,
			wantSeverity: model.SeverityLow,
			wantUrgent:   false,
		},
		{
			name:         "low base severity below threshold stays low",
			label:        "dermatology",
			confidence:   0.1,
			wantSeverity: model.SeverityLow,
			wantUrgent:   false,
		},
		{
			name:         "unlisted category takes the default",
			label:        "ophthalmology",
			confidence:   0.8,
			wantSeverity: model.SeverityMedium,
			wantUrgent:   false,
		},
		{
			name:         "unlisted category below threshold downgrades the default",
			label:        "ophthalmology",
			confidence:   0.2,
			wantSeverity: model.SeverityLow,
			wantUrgent:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := model.Category{ID: 0, InternalLabel: tt.label, DisplayName: tt.label}
			severity, urgent := table.Derive(cat, tt.confidence)
			assert.Equal(t, tt.wantSeverity, severity)
			assert.Equal(t, tt.wantUrgent, urgent)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "severity.yaml")

	content := `version: 2
default: medium
confidence_threshold: 0.6
categories:
  cardiology: high
  nutrition: low
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Version)
	assert.Equal(t, 0.6, table.ConfidenceThreshold)
	assert.Equal(t, model.SeverityHigh, table.Categories["cardiology"])

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsBadTable(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown severity level",
			content: "version: 1\ndefault: medium\nconfidence_threshold: 0.5\ncategories:\n  cardiology: critical\n",
		},
		{
			name:    "threshold out of range",
			content: "version: 1\ndefault: medium\nconfidence_threshold: 1.5\n",
		},
		{
			name:    "missing version",
			content: "default: medium\nconfidence_threshold: 0.5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	require.NoError(t, table.Validate())

	cat := model.Category{ID: 0, InternalLabel: "cardiology", DisplayName: "أمراض القلب"}
	severity, urgent := table.Derive(cat, 0.95)
	assert.Equal(t, model.SeverityHigh, severity)
	assert.True(t, urgent)
}
