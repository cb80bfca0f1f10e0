package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/tabeebchat/triage/internal/artifact"
	"github.com/tabeebchat/triage/internal/common"
)

// ArtifactPaths resolves the four artifact locations from viper. All four
// must be configured; a missing path is a configuration error before it
// would ever become a load error.
func ArtifactPaths() (artifact.Paths, error) {
	paths := artifact.Paths{
		ClassifierBundle: ExpandPath(viper.GetString("artifacts.classifier_bundle")),
		LabelMap:         ExpandPath(viper.GetString("artifacts.label_map")),
		Vectors:          ExpandPath(viper.GetString("artifacts.vectors")),
		Corpus:           ExpandPath(viper.GetString("artifacts.corpus")),
	}

	missing := ""
	switch {
	case paths.ClassifierBundle == "":
		missing = "artifacts.classifier_bundle"
	case paths.LabelMap == "":
		missing = "artifacts.label_map"
	case paths.Vectors == "":
		missing = "artifacts.vectors"
	case paths.Corpus == "":
		missing = "artifacts.corpus"
	}
	if missing != "" {
		return artifact.Paths{}, fmt.Errorf("%w: %s", common.ErrMissingConfig, missing)
	}

	return paths, nil
}
