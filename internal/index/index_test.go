package index

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabeebchat/triage/internal/common"
	"github.com/tabeebchat/triage/internal/model"
)

func testRecords() []model.ReferenceRecord {
	return []model.ReferenceRecord{
		{
			Question: "ما علاج الصداع النصفي؟",
			Answer:   "يُنصح بمراجعة طبيب الأعصاب.",
			Category: "neurology",
			Vector:   model.NewSparseVector(map[int32]float64{0: 1.0}),
		},
		{
			Question: "أعاني من خمول الغدة الدرقية",
			Answer:   "يلزم تحليل هرمونات الغدة.",
			Category: "endocrine-disorders",
			Vector:   model.NewSparseVector(map[int32]float64{1: 0.8, 2: 0.6}),
		},
		{
			Question: "ألم في الصدر عند المجهود",
			Answer:   "يجب إجراء تخطيط قلب فوراً.",
			Category: "cardiology",
			Vector:   model.NewSparseVector(map[int32]float64{3: 1.0}),
		},
		{
			Question: "سؤال آخر عن الغدة الدرقية",
			Answer:   "نفس التوصية بتحليل الهرمونات.",
			Category: "endocrine-disorders",
			Vector:   model.NewSparseVector(map[int32]float64{1: 0.6, 2: 0.8}),
		},
	}
}

func testIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := New(testRecords(), 4)
	require.NoError(t, err)
	return ix
}

func TestNew_RejectsBadVectors(t *testing.T) {
	records := []model.ReferenceRecord{
		{Question: "q", Answer: "a", Category: "c", Vector: model.NewSparseVector(map[int32]float64{9: 1.0})},
	}
	_, err := New(records, 4)
	assert.Error(t, err, "vector outside the feature space must be rejected")
}

func TestTopK_SelfMatch(t *testing.T) {
	ix := testIndex(t)

	query := model.NewSparseVector(map[int32]float64{1: 0.8, 2: 0.6})
	hits, err := ix.TopK(query, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	assert.Equal(t, 1, hits[0].Index)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9, "self-match similarity must be ~1.0")
}

func TestTopK_OrderingNonIncreasing(t *testing.T) {
	ix := testIndex(t)

	query := model.NewSparseVector(map[int32]float64{0: 0.2, 1: 0.7, 2: 0.7})
	hits, err := ix.TopK(query, 4)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Similarity, hits[i].Similarity,
			"similarities must be non-increasing")
	}
}

func TestTopK_TiesBrokenByLowestIndex(t *testing.T) {
	records := []model.ReferenceRecord{
		{Question: "a", Answer: "a", Category: "c", Vector: model.NewSparseVector(map[int32]float64{0: 1.0})},
		{Question: "b", Answer: "b", Category: "c", Vector: model.NewSparseVector(map[int32]float64{0: 2.0})},
		{Question: "c", Answer: "c", Category: "c", Vector: model.NewSparseVector(map[int32]float64{1: 1.0})},
	}
	ix, err := New(records, 2)
	require.NoError(t, err)

	// Records 0 and 1 are colinear with the query, both similarity 1.
	query := model.NewSparseVector(map[int32]float64{0: 3.0})
	hits, err := ix.TopK(query, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, 0, hits[0].Index, "tie must resolve to the lowest row index")
	assert.Equal(t, 1, hits[1].Index)
	assert.InDelta(t, hits[0].Similarity, hits[1].Similarity, 1e-12)
}

func TestTopK_ZeroQueryVector(t *testing.T) {
	ix := testIndex(t)

	hits, err := ix.TopK(model.SparseVector{}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	for _, h := range hits {
		assert.Zero(t, h.Similarity, "zero query must report similarity 0, never NaN")
		assert.False(t, math.IsNaN(h.Similarity))
	}
}

func TestTopK_InvalidK(t *testing.T) {
	ix := testIndex(t)

	_, err := ix.TopK(model.NewSparseVector(map[int32]float64{0: 1.0}), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidK))

	_, err = ix.TopK(model.NewSparseVector(map[int32]float64{0: 1.0}), -3)
	assert.Error(t, err)
}

func TestTopK_KLargerThanCorpus(t *testing.T) {
	ix := testIndex(t)

	hits, err := ix.TopK(model.NewSparseVector(map[int32]float64{1: 1.0}), 100)
	require.NoError(t, err)
	assert.Len(t, hits, ix.Size(), "result length is capped at corpus size")
}

func TestTopKFiltered(t *testing.T) {
	ix := testIndex(t)

	query := model.NewSparseVector(map[int32]float64{1: 0.7, 2: 0.7})
	hits, err := ix.TopKFiltered(query, 2, "endocrine-disorders")
	require.NoError(t, err)
	require.Len(t, hits, 2)

	for _, h := range hits {
		assert.Equal(t, "endocrine-disorders", h.Record.Category)
	}

	// Empty label falls back to unfiltered retrieval.
	unfiltered, err := ix.TopKFiltered(query, 4, "")
	require.NoError(t, err)
	assert.Len(t, unfiltered, 4)
}
