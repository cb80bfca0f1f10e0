package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/tabeebchat/triage/internal/artifact"
	"github.com/tabeebchat/triage/internal/common"
	"github.com/tabeebchat/triage/internal/config"
	"github.com/tabeebchat/triage/internal/engine"
	"github.com/tabeebchat/triage/internal/severity"
)

// loadSeverityTable reads the configured severity table, falling back to
// the built-in policy when none is configured.
func loadSeverityTable() (*severity.Table, error) {
	path := config.ExpandPath(viper.GetString("severity.table"))
	if path == "" {
		return severity.DefaultTable(), nil
	}

	table, err := severity.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load severity table %s: %w", path, err)
	}
	return table, nil
}

// loadEngine loads the artifact snapshot and severity policy and wires
// them into an engine. progress, when non-nil, shows a bar during the
// corpus load.
func loadEngine(ctx context.Context, progress io.Writer) (*engine.Engine, error) {
	paths, err := config.ArtifactPaths()
	if err != nil {
		return nil, err
	}

	snap, err := artifact.Loader{Progress: progress}.Load(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}

	table, err := loadSeverityTable()
	if err != nil {
		return nil, err
	}

	cfg, err := engineConfig()
	if err != nil {
		return nil, err
	}

	return engine.NewWithConfig(snap, table, cfg), nil
}

// engineConfig resolves retrieval tunables from the configuration,
// rejecting values outside their documented ranges.
func engineConfig() (engine.Config, error) {
	cfg := engine.DefaultConfig()

	if viper.IsSet("retrieval.min_similarity") {
		v := viper.GetFloat64("retrieval.min_similarity")
		if v < 0 || v >= 1 {
			return engine.Config{}, fmt.Errorf("%w: retrieval.min_similarity must be in [0, 1), got %v", common.ErrInvalidConfig, v)
		}
		cfg.MinSimilarity = v
	}
	if v := viper.GetString("retrieval.fallback_answer"); v != "" {
		cfg.FallbackAnswer = v
	}

	return cfg, nil
}
