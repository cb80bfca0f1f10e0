package artifact

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tabeebchat/triage/internal/common"
)

// LabelMap maps category internal labels to human-readable display names.
// It must cover the classifier's class list exactly.
type LabelMap struct {
	LabelToSpecialty map[string]string `json:"label_to_specialty"`
}

// ReadLabelMap reads the label map from a JSON file.
func ReadLabelMap(path string) (*LabelMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: label map %s", common.ErrArtifactMissing, path)
		}
		return nil, fmt.Errorf("failed to read label map: %w", err)
	}

	var m LabelMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: label map %s: %v", common.ErrArtifactCorrupt, path, err)
	}
	if len(m.LabelToSpecialty) == 0 {
		return nil, fmt.Errorf("%w: label map %s is empty", common.ErrArtifactCorrupt, path)
	}

	return &m, nil
}
