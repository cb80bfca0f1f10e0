package artifact

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/tabeebchat/triage/internal/classifier"
	"github.com/tabeebchat/triage/internal/common"
	"github.com/tabeebchat/triage/internal/index"
	"github.com/tabeebchat/triage/internal/model"
	"github.com/tabeebchat/triage/internal/storage"
	"github.com/tabeebchat/triage/internal/vectorizer"
)

// Paths names the four artifact files the loader needs.
type Paths struct {
	ClassifierBundle string
	LabelMap         string
	Vectors          string
	Corpus           string
}

// normTolerance bounds the allowed drift between a stored norm and the norm
// recomputed from the decoded vector. Both are derived from the same
// float32 weights, so any real drift means the artifact is corrupt.
const normTolerance = 1e-6

// Loader loads a snapshot from disk. Progress, when set, receives a
// progress bar during the corpus scan; it is meant for interactive
// commands, not the serving path.
type Loader struct {
	Progress io.Writer
}

// Load reads all four artifacts, verifies them against each other, and
// returns an immutable snapshot. Any failure aborts the load; the engine
// must never serve from a partially loaded snapshot.
func (l Loader) Load(ctx context.Context, paths Paths) (*Snapshot, error) {
	start := time.Now()

	bundle, err := ReadClassifierBundle(paths.ClassifierBundle)
	if err != nil {
		return nil, err
	}

	labels, err := ReadLabelMap(paths.LabelMap)
	if err != nil {
		return nil, err
	}

	categories, err := resolveCategories(bundle.Classes, labels)
	if err != nil {
		return nil, err
	}

	vec, err := vectorizer.New(bundle.Vocabulary, bundle.IDF)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrArtifactCorrupt, err)
	}

	clf, err := classifier.New(categories, bundle.Coefficients, bundle.Intercepts, vec.Dim())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrArtifactCorrupt, err)
	}

	byLabel := make(map[string]model.Category, len(categories))
	for _, cat := range categories {
		byLabel[cat.InternalLabel] = cat
	}

	records, err := l.loadCorpus(ctx, paths, byLabel, vec.Dim())
	if err != nil {
		return nil, err
	}

	ix, err := index.New(records, vec.Dim())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrArtifactCorrupt, err)
	}

	slog.Info("Artifacts loaded",
		"categories", len(categories),
		"vocabulary", vec.Dim(),
		"records", ix.Size(),
		"duration", time.Since(start))

	return &Snapshot{
		Vectorizer: vec,
		Classifier: clf,
		Index:      ix,
		byLabel:    byLabel,
	}, nil
}

// resolveCategories joins the ordered class list with the label map. Every
// class must resolve to exactly one display name, and the map must not name
// labels the classifier does not know.
func resolveCategories(classes []string, labels *LabelMap) ([]model.Category, error) {
	if len(labels.LabelToSpecialty) != len(classes) {
		return nil, fmt.Errorf("%w: label map has %d entries, classifier has %d classes",
			common.ErrArtifactMismatch, len(labels.LabelToSpecialty), len(classes))
	}

	categories := make([]model.Category, len(classes))
	for i, label := range classes {
		display, ok := labels.LabelToSpecialty[label]
		if !ok {
			return nil, fmt.Errorf("%w: classifier label %q has no display name", common.ErrArtifactMismatch, label)
		}
		categories[i] = model.Category{ID: i, InternalLabel: label, DisplayName: display}
	}

	return categories, nil
}

// loadCorpus reads the Q&A corpus and vector artifacts in lockstep and
// verifies row alignment, category resolution, dimensionality, and stored
// norms.
func (l Loader) loadCorpus(ctx context.Context, paths Paths, byLabel map[string]model.Category, dim int) ([]model.ReferenceRecord, error) {
	corpus, err := storage.OpenReadOnly(paths.Corpus)
	if err != nil {
		return nil, fmt.Errorf("%w: corpus: %v", common.ErrArtifactMissing, err)
	}
	defer func() { _ = corpus.Close() }()

	vectors, err := storage.OpenReadOnly(paths.Vectors)
	if err != nil {
		return nil, fmt.Errorf("%w: vectors: %v", common.ErrArtifactMissing, err)
	}
	defer func() { _ = vectors.Close() }()

	nRecords, err := corpus.CountQARecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: corpus: %v", common.ErrArtifactCorrupt, err)
	}
	nVectors, err := vectors.CountVectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: vectors: %v", common.ErrArtifactCorrupt, err)
	}
	if nRecords != nVectors {
		return nil, fmt.Errorf("%w: corpus has %d rows, vector index has %d",
			common.ErrArtifactMismatch, nRecords, nVectors)
	}

	var bar *progressbar.ProgressBar
	if l.Progress != nil {
		bar = progressbar.NewOptions(nRecords,
			progressbar.OptionSetWriter(l.Progress),
			progressbar.OptionSetDescription("loading corpus"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	records := make([]model.ReferenceRecord, 0, nRecords)
	err = corpus.LoadQARecords(ctx, func(r storage.QARow) error {
		if _, ok := byLabel[r.Category]; !ok {
			return fmt.Errorf("%w: corpus row %d has unknown category label %q",
				common.ErrArtifactMismatch, r.RowID, r.Category)
		}
		records = append(records, model.ReferenceRecord{
			Question: r.Question,
			Answer:   r.Answer,
			Category: r.Category,
		})
		if bar != nil {
			_ = bar.Add(1)
		}
		return nil
	})
	if err != nil {
		if common.IsLoadFatal(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: corpus: %v", common.ErrArtifactCorrupt, err)
	}

	err = vectors.LoadVectors(ctx, func(row storage.VectorRow) error {
		if err := row.Vector.Validate(dim); err != nil {
			return fmt.Errorf("%w: vector row %d: %v", common.ErrArtifactMismatch, row.RowID, err)
		}
		if math.Abs(row.Vector.Norm()-row.Norm) > normTolerance {
			return fmt.Errorf("%w: vector row %d: stored norm %f does not match recomputed %f",
				common.ErrArtifactCorrupt, row.RowID, row.Norm, row.Vector.Norm())
		}
		records[row.RowID].Vector = row.Vector
		return nil
	})
	if err != nil {
		if common.IsLoadFatal(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: vectors: %v", common.ErrArtifactCorrupt, err)
	}

	if bar != nil {
		_ = bar.Finish()
	}

	return records, nil
}
