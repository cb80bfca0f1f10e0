package vectorizer

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVectorizer(t *testing.T) *Vectorizer {
	t.Helper()

	vocab := map[string]int32{
		"الم":   0,
		"راس":   1,
		"صداع":  2,
		"حراره": 3,
		"بطن":   4,
	}
	idf := []float64{1.2, 2.0, 1.5, 1.8, 2.5}

	v, err := New(vocab, idf)
	require.NoError(t, err)
	return v
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err, "empty vocabulary must be rejected")

	_, err = New(map[string]int32{"a": 0}, []float64{1.0, 2.0})
	assert.Error(t, err, "idf/vocabulary size mismatch must be rejected")

	_, err = New(map[string]int32{"a": 5}, []float64{1.0})
	assert.Error(t, err, "out-of-range feature index must be rejected")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "harakat stripped",
			input: "أَلَمٌ",
			want:  "الم",
		},
		{
			name:  "alef variants folded",
			input: "إصابة آلام",
			want:  "اصابه الام",
		},
		{
			name:  "tatweel removed",
			input: "صـــداع",
			want:  "صداع",
		},
		{
			name:  "alef maqsura and teh marbuta folded",
			input: "مستشفى حرارة",
			want:  "مستشفي حراره",
		},
		{
			name:  "latin lowercased",
			input: "MRI Scan",
			want:  "mri scan",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestTokenize(t *testing.T) {
	terms := Tokenize("الم في الراس، صداع 101 x")
	assert.Equal(t, []string{"الم", "في", "الراس", "صداع", "101"}, terms,
		"punctuation split, single-rune terms dropped")

	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("! ، ؟"))
}

func TestVectorize_Deterministic(t *testing.T) {
	v := testVectorizer(t)

	text := "صداع شديد مع حرارة والم في الراس"
	first := v.Vectorize(text)
	for i := 0; i < 10; i++ {
		assert.True(t, reflect.DeepEqual(first, v.Vectorize(text)),
			"same input must always produce the identical vector")
	}
}

func TestVectorize_ZeroVector(t *testing.T) {
	v := testVectorizer(t)

	assert.True(t, v.Vectorize("").IsZero(), "empty input yields the zero vector")
	assert.True(t, v.Vectorize("xyzzy qwerty").IsZero(), "fully out-of-vocabulary input yields the zero vector")
}

func TestVectorize_UnitNorm(t *testing.T) {
	v := testVectorizer(t)

	vec := v.Vectorize("صداع والم بطن")
	require.False(t, vec.IsZero())
	assert.InDelta(t, 1.0, vec.Norm(), 1e-9, "non-zero vectors are L2-normalized")
}

func TestVectorize_TermFrequencyWeighting(t *testing.T) {
	v := testVectorizer(t)

	once := v.Vectorize("صداع بطن")
	twice := v.Vectorize("صداع صداع بطن")

	// Both vectors hit features 2 and 4; repeating a term shifts weight
	// toward it after normalization.
	var wOnce, wTwice float64
	for i, fi := range once.Indices {
		if fi == 2 {
			wOnce = once.Weights[i]
		}
	}
	for i, fi := range twice.Indices {
		if fi == 2 {
			wTwice = twice.Weights[i]
		}
	}
	require.False(t, math.IsNaN(wOnce) || math.IsNaN(wTwice))
	assert.Greater(t, wTwice, wOnce, "repeated term must carry more normalized weight")
}
