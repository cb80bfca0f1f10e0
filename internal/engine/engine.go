// Package engine composes the vectorizer, classifier, severity policy, and
// retrieval index behind the two inference operations the chat layer calls.
package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/tabeebchat/triage/internal/artifact"
	"github.com/tabeebchat/triage/internal/common"
	"github.com/tabeebchat/triage/internal/index"
	"github.com/tabeebchat/triage/internal/model"
	"github.com/tabeebchat/triage/internal/severity"
)

// Config holds tunables for the inference facade.
type Config struct {
	// FallbackAnswer is returned when no reference question clears
	// MinSimilarity. Never empty: the chat layer must always have a
	// displayable answer.
	FallbackAnswer string
	// MinSimilarity is the floor below which a retrieval hit is considered
	// noise and replaced by the fallback answer.
	MinSimilarity float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MinSimilarity:  0.1,
		FallbackAnswer: "عذراً، لم أتمكن من إيجاد إجابة مناسبة. يرجى استشارة طبيب متخصص.",
	}
}

// Engine is the triage inference facade. It holds no per-request mutable
// state; all operations are pure reads over the active snapshot, so any
// number of requests may run concurrently. The snapshot reference is
// swapped atomically on reload and in-flight requests finish against the
// snapshot they started with.
type Engine struct {
	snap   atomic.Pointer[artifact.Snapshot]
	policy *severity.Table
	config Config
}

// New creates an engine serving the given snapshot under the given
// severity policy.
func New(snap *artifact.Snapshot, policy *severity.Table) *Engine {
	return NewWithConfig(snap, policy, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(snap *artifact.Snapshot, policy *severity.Table, config Config) *Engine {
	e := &Engine{policy: policy, config: config}
	if snap != nil {
		e.snap.Store(snap)
	}
	return e
}

// Swap atomically replaces the active snapshot. Readers in flight continue
// against the old snapshot until their own call completes.
func (e *Engine) Swap(snap *artifact.Snapshot) {
	e.snap.Store(snap)
}

// Snapshot returns the active snapshot, or a contract error if none has
// been loaded yet.
func (e *Engine) Snapshot() (*artifact.Snapshot, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, common.ErrSnapshotNotReady
	}
	return snap, nil
}

// PredictSpecialtyAndMeta classifies the text into a specialty and derives
// severity and urgency. Soft conditions (empty or fully out-of-vocabulary
// input) never error: the classifier falls back to its prior-dominant
// category with honestly low confidence, and the severity policy damps the
// result accordingly.
func (e *Engine) PredictSpecialtyAndMeta(text string) (model.PredictionResult, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return model.PredictionResult{}, err
	}

	return e.predict(snap, text), nil
}

func (e *Engine) predict(snap *artifact.Snapshot, text string) model.PredictionResult {
	vec := snap.Vectorizer.Vectorize(text)
	category, confidence := snap.Classifier.Predict(vec)
	level, urgent := e.policy.Derive(category, confidence)

	return model.PredictionResult{
		Category:   category,
		Confidence: confidence,
		Severity:   level,
		Urgent:     urgent,
	}
}

// RetrieveBestAnswer returns the answer of the most similar reference
// question. When nothing clears the similarity floor (including the zero
// query vector, which has similarity 0 against every record), the fixed
// fallback answer is returned with similarity 0 so callers can surface a
// low-confidence disclaimer instead of failing the message.
func (e *Engine) RetrieveBestAnswer(text string) (model.RetrievalResult, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return model.RetrievalResult{}, err
	}

	vec := snap.Vectorizer.Vectorize(text)
	hits, err := snap.Index.TopK(vec, 1)
	if err != nil {
		return model.RetrievalResult{}, fmt.Errorf("retrieval failed: %w", err)
	}

	return e.toRetrievalResult(hits), nil
}

// retrieveForCategory retrieves the best answer among records of the
// predicted category, over-fetching before filtering so a dominant
// off-category neighborhood does not starve the result.
func (e *Engine) retrieveForCategory(snap *artifact.Snapshot, text, label string) (model.RetrievalResult, error) {
	vec := snap.Vectorizer.Vectorize(text)
	hits, err := snap.Index.TopKFiltered(vec, 1, label)
	if err != nil {
		return model.RetrievalResult{}, fmt.Errorf("retrieval failed: %w", err)
	}

	return e.toRetrievalResult(hits), nil
}

func (e *Engine) toRetrievalResult(hits []index.Hit) model.RetrievalResult {
	if len(hits) == 0 || hits[0].Similarity < e.config.MinSimilarity {
		return model.RetrievalResult{
			Answer:     e.config.FallbackAnswer,
			Similarity: 0,
		}
	}

	best := hits[0]
	return model.RetrievalResult{
		Answer:         best.Record.Answer,
		SourceQuestion: best.Record.Question,
		Similarity:     best.Similarity,
	}
}

// Triage runs both inference paths and merges them into the payload the
// chat layer persists. Retrieval is filtered to the predicted specialty,
// matching how the reference corpus is meant to be consulted. The snapshot
// is resolved once, so a concurrent reload can never split prediction and
// retrieval across two artifact generations.
func (e *Engine) Triage(text string) (model.TriageResult, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return model.TriageResult{}, err
	}

	prediction := e.predict(snap, text)

	retrieval, err := e.retrieveForCategory(snap, text, prediction.Category.InternalLabel)
	if err != nil {
		return model.TriageResult{}, err
	}

	result := model.TriageResult{
		Specialty:        prediction.Category.DisplayName,
		ModelLabel:       prediction.Category.InternalLabel,
		SeverityLevel:    string(prediction.Severity),
		Urgent:           prediction.Urgent,
		Confidence:       prediction.Confidence,
		Answer:           retrieval.Answer,
		AnswerConfidence: retrieval.Similarity,
	}
	result.Explanation = buildExplanation(result)

	return result, nil
}
