package model

import (
	"fmt"
	"math"
	"sort"
)

// SparseVector is a fixed-dimension sparse vector in the TF-IDF feature
// space. Indices are strictly increasing; absent indices are implicit zeros.
// Weights are non-negative. The zero value is the zero vector.
type SparseVector struct {
	Indices []int32
	Weights []float64
}

// NewSparseVector builds a vector from an index->weight map, dropping zero
// weights and sorting indices.
func NewSparseVector(entries map[int32]float64) SparseVector {
	if len(entries) == 0 {
		return SparseVector{}
	}

	indices := make([]int32, 0, len(entries))
	for idx, w := range entries {
		if w != 0 {
			indices = append(indices, idx)
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	weights := make([]float64, len(indices))
	for i, idx := range indices {
		weights[i] = entries[idx]
	}

	return SparseVector{Indices: indices, Weights: weights}
}

// IsZero reports whether the vector has no non-zero entries.
func (v SparseVector) IsZero() bool {
	return len(v.Indices) == 0
}

// NNZ returns the number of non-zero entries.
func (v SparseVector) NNZ() int {
	return len(v.Indices)
}

// Norm returns the L2 norm of the vector.
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, w := range v.Weights {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Dot computes the dot product with another sparse vector by merging the
// two sorted index lists.
func (v SparseVector) Dot(other SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(other.Indices) {
		switch {
		case v.Indices[i] == other.Indices[j]:
			sum += v.Weights[i] * other.Weights[j]
			i++
			j++
		case v.Indices[i] < other.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// DotDense computes the dot product with a dense weight row. Entries whose
// index falls outside the row are ignored; the artifact loader guarantees
// dimensions line up, so this only matters for hand-built test vectors.
func (v SparseVector) DotDense(row []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		if int(idx) < len(row) {
			sum += v.Weights[i] * row[idx]
		}
	}
	return sum
}

// CosineSimilarity computes the cosine similarity between two vectors given
// their precomputed norms. Similarity against a zero vector is defined as 0.
func CosineSimilarity(a, b SparseVector, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	return a.Dot(b) / (normA * normB)
}

// Validate checks index ordering and weight signs.
func (v SparseVector) Validate(dim int) error {
	if len(v.Indices) != len(v.Weights) {
		return fmt.Errorf("index/weight length mismatch: %d vs %d", len(v.Indices), len(v.Weights))
	}
	for i, idx := range v.Indices {
		if idx < 0 || int(idx) >= dim {
			return fmt.Errorf("index %d out of range [0, %d)", idx, dim)
		}
		if i > 0 && v.Indices[i-1] >= idx {
			return fmt.Errorf("indices not strictly increasing at position %d", i)
		}
		if v.Weights[i] < 0 {
			return fmt.Errorf("negative weight %f at index %d", v.Weights[i], idx)
		}
	}
	return nil
}
