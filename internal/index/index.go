// Package index implements nearest-neighbor retrieval over the reference
// corpus by cosine similarity.
package index

import (
	"fmt"
	"sort"

	"github.com/tabeebchat/triage/internal/common"
	"github.com/tabeebchat/triage/internal/model"
)

// Index holds every reference record with its vector and a precomputed L2
// norm. Recomputing norms per query over 800K records would dominate query
// cost, so they are cached once at build time. Immutable after New.
type Index struct {
	records []model.ReferenceRecord
	norms   []float64
	dim     int
}

// Hit is one retrieval result: the matched record, its row index, and the
// cosine similarity to the query.
type Hit struct {
	Record     *model.ReferenceRecord
	Index      int
	Similarity float64
}

// New builds an index over the given records. Vectors are validated against
// the feature-space dimensionality and norms are precomputed.
func New(records []model.ReferenceRecord, dim int) (*Index, error) {
	norms := make([]float64, len(records))
	for i := range records {
		if err := records[i].Vector.Validate(dim); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		norms[i] = records[i].Vector.Norm()
	}

	return &Index{records: records, norms: norms, dim: dim}, nil
}

// Size returns the number of indexed records.
func (ix *Index) Size() int {
	return len(ix.records)
}

// Dim returns the feature-space dimensionality.
func (ix *Index) Dim() int {
	return ix.dim
}

// Record returns the record at the given row index.
func (ix *Index) Record(i int) *model.ReferenceRecord {
	return &ix.records[i]
}

// TopK returns up to k records ordered by descending cosine similarity to
// the query, ties broken by lowest row index. A zero query vector yields
// similarity 0 against every record; the returned hits then carry
// similarity 0 and callers must treat them as unreliable.
//
// k <= 0 is a contract violation, not a soft condition.
func (ix *Index) TopK(query model.SparseVector, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", common.ErrInvalidK, k)
	}

	queryNorm := query.Norm()

	hits := make([]Hit, 0, k)
	for i := range ix.records {
		sim := model.CosineSimilarity(query, ix.records[i].Vector, queryNorm, ix.norms[i])

		if len(hits) == k && sim <= hits[len(hits)-1].Similarity {
			continue
		}

		// Insert after any existing hit with similarity >= sim: the scan
		// runs in ascending row order, so equal similarities keep the
		// lowest index first.
		pos := sort.Search(len(hits), func(j int) bool { return hits[j].Similarity < sim })
		hits = append(hits, Hit{})
		copy(hits[pos+1:], hits[pos:])
		hits[pos] = Hit{Record: &ix.records[i], Index: i, Similarity: sim}
		if len(hits) > k {
			hits = hits[:k]
		}
	}

	return hits, nil
}

// TopKFiltered retrieves like TopK but keeps only records whose category
// matches the given internal label, over-fetching 3x candidates before
// filtering so a dominant off-category neighborhood does not starve the
// result. An empty label disables filtering.
func (ix *Index) TopKFiltered(query model.SparseVector, k int, label string) ([]Hit, error) {
	if label == "" {
		return ix.TopK(query, k)
	}

	candidates, err := ix.TopK(query, k*3)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, k)
	for _, h := range candidates {
		if h.Record.Category != label {
			continue
		}
		hits = append(hits, h)
		if len(hits) == k {
			break
		}
	}

	return hits, nil
}
