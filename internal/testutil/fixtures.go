// Package testutil builds small but complete artifact fixtures for tests:
// a toy vocabulary, a hand-tuned linear model, and a miniature reference
// corpus, either in memory or written to disk in the real artifact formats.
package testutil

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/tabeebchat/triage/internal/artifact"
	"github.com/tabeebchat/triage/internal/model"
	"github.com/tabeebchat/triage/internal/storage"
	"github.com/tabeebchat/triage/internal/vectorizer"
)

// FixtureCategories is the toy label space used across engine tests.
var FixtureCategories = []string{"cardiology", "dermatology", "endocrine-disorders"}

// FixtureLabelMap maps the toy labels to Arabic display names.
var FixtureLabelMap = map[string]string{
	"cardiology":          "أمراض القلب",
	"dermatology":         "الأمراض الجلدية",
	"endocrine-disorders": "أمراض الغدد الصماء",
}

// FixtureBundle returns a classifier bundle over an 8-term vocabulary whose
// terms are the normalized surface forms of the fixture questions, so each
// category has strongly indicative in-vocabulary terms.
func FixtureBundle() *artifact.ClassifierBundle {
	return &artifact.ClassifierBundle{
		Vocabulary: map[string]int32{
			"القلب":   0,
			"الصدر":   1,
			"الجلد":   2,
			"حكه":     3,
			"الغده":   4,
			"الدرقيه": 5,
			"خفقان":   6,
			"خمول":    7,
		},
		IDF:     []float64{1.5, 1.5, 1.5, 1.5, 1.5, 1.5, 1.5, 1.5},
		Classes: FixtureCategories,
		Coefficients: [][]float64{
			{6.0, 6.0, 0.0, 0.0, 0.0, 0.0, 6.0, 0.0},
			{0.0, 0.0, 6.0, 6.0, 0.0, 0.0, 0.0, 0.0},
			{0.0, 0.0, 0.0, 0.0, 6.0, 6.0, 0.0, 6.0},
		},
		Intercepts: []float64{0.1, 0.3, 0.2},
	}
}

// FixtureQuestions holds the miniature corpus, one question per category
// plus a second endocrine entry so filtered retrieval has competition.
var FixtureQuestions = []model.ReferenceRecord{
	{
		Question: "ألم في الصدر مع خفقان في القلب",
		Answer:   "يجب مراجعة طبيب القلب في أقرب وقت.",
		Category: "cardiology",
	},
	{
		Question: "حكة شديدة في الجلد مع احمرار",
		Answer:   "يُنصح باستخدام مرطب ومراجعة طبيب الجلدية.",
		Category: "dermatology",
	},
	{
		Question: "أعاني من خمول الغدة الدرقية وزيادة الوزن",
		Answer:   "يلزم تحليل هرمونات الغدة الدرقية ومراجعة أخصائي الغدد الصماء.",
		Category: "endocrine-disorders",
	},
	{
		Question: "هل تضخم الغدة الدرقية خطير؟",
		Answer:   "غالباً لا، لكن يلزم فحص سريري وتحاليل.",
		Category: "endocrine-disorders",
	},
}

// WriteArtifacts writes the standard fixture artifact set into dir and
// returns the paths. Vectors are computed with the same vectorizer the
// engine will use, so self-match retrieval is exact.
func WriteArtifacts(t *testing.T, dir string) artifact.Paths {
	t.Helper()
	return WriteArtifactSet(t, dir, FixtureBundle(), FixtureLabelMap, FixtureQuestions)
}

// WriteArtifactSet writes a complete, mutually consistent artifact set built
// from the given bundle, label map, and corpus records. Tests use it to
// fabricate alternative artifact generations, e.g. for reload scenarios.
func WriteArtifactSet(t *testing.T, dir string, bundle *artifact.ClassifierBundle, labels map[string]string, questions []model.ReferenceRecord) artifact.Paths {
	t.Helper()
	ctx := context.Background()
	paths := artifact.Paths{
		ClassifierBundle: filepath.Join(dir, "classifier_bundle.json.gz"),
		LabelMap:         filepath.Join(dir, "label_to_specialty.json"),
		Vectors:          filepath.Join(dir, "retrieval_index.db"),
		Corpus:           filepath.Join(dir, "qa_corpus.db"),
	}

	WriteBundle(t, paths.ClassifierBundle, bundle)
	WriteLabelMap(t, paths.LabelMap, labels)

	vec, err := vectorizer.New(bundle.Vocabulary, bundle.IDF)
	if err != nil {
		t.Fatalf("failed to build fixture vectorizer: %v", err)
	}

	records := make([]model.ReferenceRecord, len(questions))
	vectors := make([]model.SparseVector, len(questions))
	copy(records, questions)
	for i := range records {
		vectors[i] = vec.Vectorize(records[i].Question)
	}

	corpus, err := storage.Open(paths.Corpus)
	if err != nil {
		t.Fatalf("failed to open corpus fixture: %v", err)
	}
	defer func() { _ = corpus.Close() }()
	if err := corpus.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate corpus fixture: %v", err)
	}
	if err := corpus.SaveQARecords(ctx, 0, records); err != nil {
		t.Fatalf("failed to save corpus fixture: %v", err)
	}

	vecStore, err := storage.Open(paths.Vectors)
	if err != nil {
		t.Fatalf("failed to open vector fixture: %v", err)
	}
	defer func() { _ = vecStore.Close() }()
	if err := vecStore.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate vector fixture: %v", err)
	}
	if err := vecStore.SaveVectors(ctx, 0, vectors); err != nil {
		t.Fatalf("failed to save vector fixture: %v", err)
	}

	return paths
}

// WriteBundle writes a classifier bundle to path, gzip-compressed when the
// path ends in .gz.
func WriteBundle(t *testing.T, path string, bundle *artifact.ClassifierBundle) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create bundle file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if filepath.Ext(path) == ".gz" {
		gz := gzip.NewWriter(f)
		if err := json.NewEncoder(gz).Encode(bundle); err != nil {
			t.Fatalf("failed to encode bundle: %v", err)
		}
		if err := gz.Close(); err != nil {
			t.Fatalf("failed to close gzip writer: %v", err)
		}
		return
	}

	if err := json.NewEncoder(f).Encode(bundle); err != nil {
		t.Fatalf("failed to encode bundle: %v", err)
	}
}

// WriteLabelMap writes a label map to path.
func WriteLabelMap(t *testing.T, path string, labels map[string]string) {
	t.Helper()

	data, err := json.Marshal(artifact.LabelMap{LabelToSpecialty: labels})
	if err != nil {
		t.Fatalf("failed to marshal label map: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write label map: %v", err)
	}
}

// LoadSnapshot writes fixture artifacts into a temp dir and loads them.
func LoadSnapshot(t *testing.T) *artifact.Snapshot {
	t.Helper()

	paths := WriteArtifacts(t, t.TempDir())
	snap, err := artifact.Loader{}.Load(context.Background(), paths)
	if err != nil {
		t.Fatalf("failed to load fixture snapshot: %v", err)
	}
	return snap
}
