package model

import (
	"math"
	"testing"
)

func TestNewSparseVector(t *testing.T) {
	tests := []struct {
		name        string
		entries     map[int32]float64
		wantIndices []int32
		wantWeights []float64
	}{
		{
			name:        "sorted output from unordered map",
			entries:     map[int32]float64{7: 0.5, 2: 1.0, 19: 0.25},
			wantIndices: []int32{2, 7, 19},
			wantWeights: []float64{1.0, 0.5, 0.25},
		},
		{
			name:        "zero weights dropped",
			entries:     map[int32]float64{1: 0, 3: 0.5},
			wantIndices: []int32{3},
			wantWeights: []float64{0.5},
		},
		{
			name:        "empty map yields zero vector",
			entries:     map[int32]float64{},
			wantIndices: nil,
			wantWeights: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewSparseVector(tt.entries)
			if len(v.Indices) != len(tt.wantIndices) {
				t.Fatalf("got %d indices, want %d", len(v.Indices), len(tt.wantIndices))
			}
			for i := range v.Indices {
				if v.Indices[i] != tt.wantIndices[i] {
					t.Errorf("index[%d] = %d, want %d", i, v.Indices[i], tt.wantIndices[i])
				}
				if v.Weights[i] != tt.wantWeights[i] {
					t.Errorf("weight[%d] = %f, want %f", i, v.Weights[i], tt.wantWeights[i])
				}
			}
		})
	}
}

func TestSparseVector_Dot(t *testing.T) {
	a := NewSparseVector(map[int32]float64{0: 1, 2: 2, 5: 3})
	b := NewSparseVector(map[int32]float64{2: 4, 5: 1, 9: 7})

	got := a.Dot(b)
	want := 2.0*4 + 3.0*1
	if got != want {
		t.Errorf("Dot = %f, want %f", got, want)
	}

	// Dot with the zero vector is 0.
	if a.Dot(SparseVector{}) != 0 {
		t.Error("dot with zero vector should be 0")
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := NewSparseVector(map[int32]float64{0: 3, 1: 4})
	b := NewSparseVector(map[int32]float64{0: 3, 1: 4})
	c := NewSparseVector(map[int32]float64{2: 1})

	if sim := CosineSimilarity(a, b, a.Norm(), b.Norm()); math.Abs(sim-1.0) > 1e-12 {
		t.Errorf("self similarity = %f, want 1.0", sim)
	}
	if sim := CosineSimilarity(a, c, a.Norm(), c.Norm()); sim != 0 {
		t.Errorf("orthogonal similarity = %f, want 0", sim)
	}

	// Defined as 0 against the zero vector, never NaN.
	zero := SparseVector{}
	if sim := CosineSimilarity(a, zero, a.Norm(), zero.Norm()); sim != 0 {
		t.Errorf("zero-vector similarity = %f, want 0", sim)
	}
}

func TestSparseVector_Validate(t *testing.T) {
	valid := NewSparseVector(map[int32]float64{1: 0.5, 3: 0.5})
	if err := valid.Validate(10); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	outOfRange := NewSparseVector(map[int32]float64{11: 0.5})
	if err := outOfRange.Validate(10); err == nil {
		t.Error("expected out-of-range error")
	}

	negative := SparseVector{Indices: []int32{1}, Weights: []float64{-0.5}}
	if err := negative.Validate(10); err == nil {
		t.Error("expected negative-weight error")
	}

	unsorted := SparseVector{Indices: []int32{3, 1}, Weights: []float64{0.5, 0.5}}
	if err := unsorted.Validate(10); err == nil {
		t.Error("expected ordering error")
	}
}

func TestSeverity_Downgrade(t *testing.T) {
	if got := SeverityHigh.Downgrade(); got != SeverityMedium {
		t.Errorf("high downgrades to %s, want medium", got)
	}
	if got := SeverityMedium.Downgrade(); got != SeverityLow {
		t.Errorf("medium downgrades to %s, want low", got)
	}
	if got := SeverityLow.Downgrade(); got != SeverityLow {
		t.Errorf("low downgrades to %s, want low", got)
	}
}
