// Package severity derives the severity level and urgency flag from a
// predicted specialty and the classifier's confidence in it.
package severity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tabeebchat/triage/internal/model"
)

// Table maps category internal labels to base severity levels. It is
// versioned data, loaded from YAML, so acuity policy can be revised without
// touching the inference path.
type Table struct {
	Categories          map[string]model.Severity `yaml:"categories"`
	Default             model.Severity            `yaml:"default"`
	ConfidenceThreshold float64                   `yaml:"confidence_threshold"`
	Version             int                       `yaml:"version"`
}

// Load reads a severity table from a YAML file and validates it.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read severity table: %w", err)
	}

	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse severity table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	return &t, nil
}

// Validate checks levels and threshold range.
func (t *Table) Validate() error {
	if t.Version <= 0 {
		return fmt.Errorf("severity table version must be positive, got %d", t.Version)
	}
	if err := t.Default.Validate(); err != nil {
		return fmt.Errorf("default severity: %w", err)
	}
	if t.ConfidenceThreshold < 0 || t.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be in [0, 1], got %f", t.ConfidenceThreshold)
	}
	for label, level := range t.Categories {
		if err := level.Validate(); err != nil {
			return fmt.Errorf("category %q: %w", label, err)
		}
	}
	return nil
}

// Derive maps a predicted category and its confidence to a severity level
// and urgency flag. Pure and total: every category resolves (unlisted ones
// take the table default), and no input errors.
//
// Low-confidence predictions are damped: when the classifier's confidence
// is below the threshold, the evidence for the specialty itself is weak, so
// severity drops one level and urgency is forced off.
func (t *Table) Derive(category model.Category, confidence float64) (model.Severity, bool) {
	base, ok := t.Categories[category.InternalLabel]
	if !ok {
		base = t.Default
	}

	if confidence < t.ConfidenceThreshold {
		return base.Downgrade(), false
	}

	return base, base == model.SeverityHigh
}

// DefaultTable returns the built-in policy used when no table file is
// configured: acute-leaning specialties are high, everything else medium.
func DefaultTable() *Table {
	return &Table{
		Version:             1,
		Default:             model.SeverityMedium,
		ConfidenceThreshold: 0.5,
		Categories: map[string]model.Severity{
			"cardiology":          model.SeverityHigh,
			"emergency-medicine":  model.SeverityHigh,
			"neurology":           model.SeverityHigh,
			"pulmonology":         model.SeverityHigh,
			"vascular-surgery":    model.SeverityHigh,
			"general-wellness":    model.SeverityLow,
			"nutrition":           model.SeverityLow,
			"dermatology":         model.SeverityLow,
			"endocrine-disorders": model.SeverityMedium,
		},
	}
}
