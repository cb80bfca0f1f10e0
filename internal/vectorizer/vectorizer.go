package vectorizer

import (
	"fmt"

	"github.com/tabeebchat/triage/internal/model"
)

// Vectorizer maps text to sparse TF-IDF vectors. The vocabulary and IDF
// weights are frozen artifacts; unknown terms are dropped, never added.
// A Vectorizer is immutable after construction and safe for concurrent use.
type Vectorizer struct {
	vocabulary map[string]int32
	idf        []float64
}

// New builds a Vectorizer from a frozen vocabulary and IDF table. The IDF
// slice must cover every feature index the vocabulary maps to.
func New(vocabulary map[string]int32, idf []float64) (*Vectorizer, error) {
	if len(vocabulary) == 0 {
		return nil, fmt.Errorf("vocabulary is empty")
	}
	if len(idf) != len(vocabulary) {
		return nil, fmt.Errorf("idf length %d does not match vocabulary size %d", len(idf), len(vocabulary))
	}
	for term, idx := range vocabulary {
		if idx < 0 || int(idx) >= len(idf) {
			return nil, fmt.Errorf("term %q maps to feature index %d outside [0, %d)", term, idx, len(idf))
		}
	}

	return &Vectorizer{vocabulary: vocabulary, idf: idf}, nil
}

// Dim returns the dimensionality of the feature space.
func (v *Vectorizer) Dim() int {
	return len(v.idf)
}

// Vectorize converts text into an L2-normalized TF-IDF vector. Empty input
// or input with no in-vocabulary terms yields the zero vector; callers must
// treat that as a valid, low-signal vector rather than an error.
func (v *Vectorizer) Vectorize(text string) model.SparseVector {
	terms := Tokenize(Normalize(text))
	if len(terms) == 0 {
		return model.SparseVector{}
	}

	counts := make(map[int32]float64)
	for _, term := range terms {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return model.SparseVector{}
	}

	for idx := range counts {
		counts[idx] *= v.idf[idx]
	}

	vec := model.NewSparseVector(counts)

	// L2-normalize so cosine similarity reduces to a dot product of unit
	// vectors for same-length inputs.
	norm := vec.Norm()
	if norm > 0 {
		for i := range vec.Weights {
			vec.Weights[i] /= norm
		}
	}

	return vec
}
