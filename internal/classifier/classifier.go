// Package classifier implements the linear multi-class specialty model.
package classifier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/tabeebchat/triage/internal/model"
)

// Classifier is a frozen linear multinomial model: one dense weight row and
// one bias per category, scores converted to probabilities with softmax.
// Immutable after construction and safe for concurrent use.
type Classifier struct {
	categories []model.Category
	weights    [][]float64 // one row per category, len(row) == dim
	intercepts []float64
	dim        int
}

// New builds a Classifier and validates its shape. Categories must be
// ordered by ID with dense IDs in [0, len(categories)).
func New(categories []model.Category, weights [][]float64, intercepts []float64, dim int) (*Classifier, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories")
	}
	if len(weights) != len(categories) {
		return nil, fmt.Errorf("weight rows %d do not match category count %d", len(weights), len(categories))
	}
	if len(intercepts) != len(categories) {
		return nil, fmt.Errorf("intercepts %d do not match category count %d", len(intercepts), len(categories))
	}
	for i, cat := range categories {
		if err := cat.Validate(); err != nil {
			return nil, fmt.Errorf("category %d: %w", i, err)
		}
		if cat.ID != i {
			return nil, fmt.Errorf("category IDs must be dense and ordered: position %d has id %d", i, cat.ID)
		}
		if len(weights[i]) != dim {
			return nil, fmt.Errorf("category %q: weight row has %d features, want %d", cat.InternalLabel, len(weights[i]), dim)
		}
	}

	return &Classifier{
		categories: categories,
		weights:    weights,
		intercepts: intercepts,
		dim:        dim,
	}, nil
}

// Categories returns the ordered category set.
func (c *Classifier) Categories() []model.Category {
	return c.categories
}

// Dim returns the expected input dimensionality.
func (c *Classifier) Dim() int {
	return c.dim
}

// Classify returns the full probability distribution over all categories,
// index-aligned with Categories(). Probabilities are non-negative and sum
// to 1 within floating-point tolerance.
//
// A zero vector is not an error: scores collapse to the intercepts, so the
// distribution is the model's class prior and the argmax is the
// prior-dominant category with genuinely low confidence.
func (c *Classifier) Classify(vec model.SparseVector) []float64 {
	scores := make([]float64, len(c.categories))
	for i := range c.categories {
		scores[i] = vec.DotDense(c.weights[i]) + c.intercepts[i]
	}
	return softmax(scores)
}

// Predict returns the argmax category and its probability mass. Ties are
// broken by lowest category ID.
func (c *Classifier) Predict(vec model.SparseVector) (model.Category, float64) {
	probs := c.Classify(vec)

	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return c.categories[best], probs[best]
}

// softmax computes a numerically stable softmax.
func softmax(x []float64) []float64 {
	if len(x) == 0 {
		return x
	}

	maxVal := floats.Max(x)

	result := make([]float64, len(x))
	var sum float64
	for i, v := range x {
		result[i] = math.Exp(v - maxVal)
		sum += result[i]
	}

	if sum > 0 {
		floats.Scale(1/sum, result)
	}

	return result
}
