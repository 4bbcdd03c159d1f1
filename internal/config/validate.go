package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSplit(); err != nil {
		return err
	}
	if err := c.validateThresholds(); err != nil {
		return err
	}
	if err := c.validateTemporal(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSplit() error {
	for name, ratio := range map[string]float64{
		"split.train_ratio": c.Split.TrainRatio,
		"split.val_ratio":   c.Split.ValRatio,
		"split.test_ratio":  c.Split.TestRatio,
	} {
		if ratio < 0 || ratio > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, ratio)
		}
	}
	total := c.Split.TrainRatio + c.Split.ValRatio + c.Split.TestRatio
	if math.Abs(total-1.0) > 1e-3 {
		return fmt.Errorf("split ratios must sum to 1.0, got %v", total)
	}

	bins := c.Split.DurationBins
	if len(bins) < 1 {
		return errors.New("split.duration_bins must contain at least one edge")
	}
	prev := 0.0
	for _, edge := range bins {
		if edge <= prev {
			return fmt.Errorf("split.duration_bins must be strictly increasing positive values, got %v", bins)
		}
		prev = edge
	}
	return nil
}

func (c *Config) validateThresholds() error {
	if c.Thresholds.MinTrainSamples < 0 || c.Thresholds.MinValTestSamples < 0 {
		return errors.New("thresholds minimum sample counts must not be negative")
	}
	if c.Thresholds.MinTrainDurationSec < 0 || c.Thresholds.MinValTestDurationSec < 0 {
		return errors.New("thresholds minimum durations must not be negative")
	}
	if c.Thresholds.BalanceThresholdPct <= 0 {
		return errors.New("thresholds.balance_threshold_pct must be positive")
	}
	return nil
}

func (c *Config) validateTemporal() error {
	if c.Temporal.SessionGapMs <= 0 {
		return errors.New("temporal.session_gap_ms must be positive")
	}
	if c.Temporal.MinCoverage < 0 || c.Temporal.MinCoverage > 1 {
		return errors.New("temporal.min_coverage must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
