package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutDir      string `toml:"out_dir"`
	LogDir      string `toml:"log_dir"`
	RegistryDir string `toml:"registry_dir"`
}

// Dataset contains constant metadata stamped into every manifest row.
type Dataset struct {
	Source          string `toml:"source"`
	RecordingDevice string `toml:"recording_device"`
}

// Split contains defaults for split ratios and duration bin edges.
type Split struct {
	TrainRatio float64 `toml:"train_ratio"`
	ValRatio   float64 `toml:"val_ratio"`
	TestRatio  float64 `toml:"test_ratio"`
	// DurationBins holds the interior bin edges in seconds; 0 and +inf are
	// implicit outer edges.
	DurationBins []float64 `toml:"duration_bins"`
	Seed         int64     `toml:"seed"`
}

// Thresholds contains minimum split sizes and the balance check bound.
type Thresholds struct {
	MinTrainSamples       int     `toml:"min_train_samples"`
	MinTrainDurationSec   float64 `toml:"min_train_duration_sec"`
	MinValTestSamples     int     `toml:"min_val_test_samples"`
	MinValTestDurationSec float64 `toml:"min_val_test_duration_sec"`
	BalanceThresholdPct   float64 `toml:"balance_threshold_pct"`
}

// Temporal contains configuration for the session-leakage audit.
type Temporal struct {
	SessionGapMs  int64   `toml:"session_gap_ms"`
	MinCoverage   float64 `toml:"min_coverage"`
	SkipByDefault bool    `toml:"skip_by_default"`
}

// Hashing contains configuration for parallel identity hashing.
type Hashing struct {
	Workers int `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for voxver.
//
// Configuration sections by subsystem:
//   - Paths: output, log, and version registry directories
//   - Dataset: constant source/device metadata columns
//   - Split: default ratios, duration bin edges, and seed
//   - Thresholds: split validator minimums and balance bound
//   - Temporal: session-leakage audit settings
//   - Hashing: identity hasher parallelism
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Dataset    Dataset    `toml:"dataset"`
	Split      Split      `toml:"split"`
	Thresholds Thresholds `toml:"thresholds"`
	Temporal   Temporal   `toml:"temporal"`
	Hashing    Hashing    `toml:"hashing"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/voxver/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("voxver.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for a version build.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutDir, c.Paths.LogDir, c.Paths.RegistryDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RegistryPath returns the path of the SQLite version registry database.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.Paths.RegistryDir, "versions.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
