package model

import "fmt"

// Severity is the acuity level attached to a triage prediction.
type Severity string

const (
	// SeverityLow indicates routine, non-acute complaints.
	SeverityLow Severity = "low"
	// SeverityMedium indicates complaints that warrant a specialist visit.
	SeverityMedium Severity = "medium"
	// SeverityHigh indicates potentially acute complaints.
	SeverityHigh Severity = "high"
)

// Downgrade returns the severity one level lower. Low stays low.
func (s Severity) Downgrade() Severity {
	switch s {
	case SeverityHigh:
		return SeverityMedium
	case SeverityMedium:
		return SeverityLow
	default:
		return SeverityLow
	}
}

// Validate checks the severity is one of the three known levels.
func (s Severity) Validate() error {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return nil
	}
	return fmt.Errorf("unknown severity %q", string(s))
}

// ReferenceRecord is one previously answered question from the corpus,
// row-aligned with the retrieval index. Immutable after load.
type ReferenceRecord struct {
	Question string
	Answer   string
	Category string // internal label, resolved against the category set
	Vector   SparseVector
}

// PredictionResult is the classifier-side output for one request.
type PredictionResult struct {
	Category   Category
	Severity   Severity
	Confidence float64
	Urgent     bool
}

// RetrievalResult is the retrieval-side output for one request. A
// Similarity of 0 means no reliable match was found; the answer is then a
// fixed fallback, never empty.
type RetrievalResult struct {
	Answer         string
	SourceQuestion string
	Similarity     float64
}

// TriageResult merges both engine paths into the payload the chat layer
// persists as an assistant message.
type TriageResult struct {
	Specialty        string  `json:"specialty"`
	ModelLabel       string  `json:"model_label"`
	SeverityLevel    string  `json:"severity_level"`
	Explanation      string  `json:"explanation"`
	Answer           string  `json:"answer"`
	Confidence       float64 `json:"confidence"`
	AnswerConfidence float64 `json:"answer_confidence"`
	Urgent           bool    `json:"urgent"`
}
