package testsupport

import (
	"path/filepath"
	"testing"

	"voxver/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// Thresholds default low enough that small fixtures pass validation.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutDir = filepath.Join(base, "datasets")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.RegistryDir = filepath.Join(base, "registry")
	cfg.Thresholds.MinTrainSamples = 1
	cfg.Thresholds.MinTrainDurationSec = 0
	cfg.Thresholds.MinValTestSamples = 0
	cfg.Thresholds.MinValTestDurationSec = 0
	cfg.Hashing.Workers = 2

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithProductionThresholds restores the real split size minimums.
func WithProductionThresholds() ConfigOption {
	return func(cfg *config.Config) {
		defaults := config.Default()
		cfg.Thresholds = defaults.Thresholds
	}
}

// WithRatios overrides the split ratios on the test config.
func WithRatios(train, val, test float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Split.TrainRatio = train
		cfg.Split.ValRatio = val
		cfg.Split.TestRatio = test
	}
}

// WithSkipTemporal disables the temporal audit by default.
func WithSkipTemporal() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Temporal.SkipByDefault = true
	}
}
