package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDataset()
	c.normalizeSplit()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutDir) == "" {
		c.Paths.OutDir = defaultOutDir
	}
	if c.Paths.OutDir, err = expandPath(c.Paths.OutDir); err != nil {
		return fmt.Errorf("paths.out_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.RegistryDir) == "" {
		c.Paths.RegistryDir = defaultRegistryDir
	}
	if c.Paths.RegistryDir, err = expandPath(c.Paths.RegistryDir); err != nil {
		return fmt.Errorf("paths.registry_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDataset() {
	c.Dataset.Source = strings.TrimSpace(c.Dataset.Source)
	if c.Dataset.Source == "" {
		c.Dataset.Source = defaultSource
	}
	c.Dataset.RecordingDevice = strings.TrimSpace(c.Dataset.RecordingDevice)
	if c.Dataset.RecordingDevice == "" {
		c.Dataset.RecordingDevice = defaultRecordingDevice
	}
}

func (c *Config) normalizeSplit() {
	if len(c.Split.DurationBins) == 0 {
		c.Split.DurationBins = defaultDurationBins()
	}
	if c.Split.TrainRatio == 0 && c.Split.ValRatio == 0 && c.Split.TestRatio == 0 {
		c.Split.TrainRatio = defaultTrainRatio
		c.Split.ValRatio = defaultValRatio
		c.Split.TestRatio = defaultTestRatio
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
