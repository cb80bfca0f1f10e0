// Package artifact loads the frozen model artifacts into an immutable
// engine snapshot, failing fast on any missing, corrupt, or mutually
// inconsistent file.
package artifact

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tabeebchat/triage/internal/common"
)

// ClassifierBundle is the on-disk classifier artifact: the vocabulary and
// IDF table the vectorizer needs, plus the linear model weights. Produced
// by the offline training job; bit-compatible across versions.
type ClassifierBundle struct {
	Vocabulary   map[string]int32 `json:"vocabulary"`
	IDF          []float64        `json:"idf"`
	Classes      []string         `json:"classes"`
	Coefficients [][]float64      `json:"coefficients"`
	Intercepts   []float64        `json:"intercepts"`
}

// ReadClassifierBundle reads the bundle from a JSON file, transparently
// handling gzip (.gz) compression.
func ReadClassifierBundle(path string) (*ClassifierBundle, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: classifier bundle %s", common.ErrArtifactMissing, path)
		}
		return nil, fmt.Errorf("failed to open classifier bundle: %w", err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, gzErr := gzip.NewReader(f)
		if gzErr != nil {
			return nil, fmt.Errorf("%w: classifier bundle %s: %v", common.ErrArtifactCorrupt, path, gzErr)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	var bundle ClassifierBundle
	if err := json.NewDecoder(r).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("%w: classifier bundle %s: %v", common.ErrArtifactCorrupt, path, err)
	}

	if err := bundle.validate(); err != nil {
		return nil, fmt.Errorf("%w: classifier bundle %s: %v", common.ErrArtifactCorrupt, path, err)
	}

	return &bundle, nil
}

func (b *ClassifierBundle) validate() error {
	if len(b.Vocabulary) == 0 {
		return fmt.Errorf("empty vocabulary")
	}
	if len(b.IDF) != len(b.Vocabulary) {
		return fmt.Errorf("idf length %d does not match vocabulary size %d", len(b.IDF), len(b.Vocabulary))
	}
	if len(b.Classes) == 0 {
		return fmt.Errorf("empty class list")
	}
	if len(b.Coefficients) != len(b.Classes) {
		return fmt.Errorf("coefficient rows %d do not match class count %d", len(b.Coefficients), len(b.Classes))
	}
	if len(b.Intercepts) != len(b.Classes) {
		return fmt.Errorf("intercepts %d do not match class count %d", len(b.Intercepts), len(b.Classes))
	}

	seen := make(map[string]struct{}, len(b.Classes))
	for _, label := range b.Classes {
		if label == "" {
			return fmt.Errorf("empty class label")
		}
		if _, dup := seen[label]; dup {
			return fmt.Errorf("duplicate class label %q", label)
		}
		seen[label] = struct{}{}
	}

	for i, row := range b.Coefficients {
		if len(row) != len(b.Vocabulary) {
			return fmt.Errorf("class %q: coefficient row has %d features, want %d", b.Classes[i], len(row), len(b.Vocabulary))
		}
	}

	return nil
}
