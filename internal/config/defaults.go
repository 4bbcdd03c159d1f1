package config

const (
	defaultOutDir      = "~/.local/share/voxver/datasets"
	defaultLogDir      = "~/.local/share/voxver/logs"
	defaultRegistryDir = "~/.local/share/voxver/registry"

	defaultSource          = "euphonia"
	defaultRecordingDevice = "macbook_pro"

	defaultTrainRatio = 0.8
	defaultValRatio   = 0.1
	defaultTestRatio  = 0.1
	defaultSeed       = 42

	defaultMinTrainSamples       = 100
	defaultMinTrainDurationSec   = 600
	defaultMinValTestSamples     = 20
	defaultMinValTestDurationSec = 120
	defaultBalanceThresholdPct   = 20.0

	defaultSessionGapMs         = 60_000
	defaultTimestampMinCoverage = 0.5

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

func defaultDurationBins() []float64 {
	return []float64{1, 3, 10, 30}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutDir:      defaultOutDir,
			LogDir:      defaultLogDir,
			RegistryDir: defaultRegistryDir,
		},
		Dataset: Dataset{
			Source:          defaultSource,
			RecordingDevice: defaultRecordingDevice,
		},
		Split: Split{
			TrainRatio:   defaultTrainRatio,
			ValRatio:     defaultValRatio,
			TestRatio:    defaultTestRatio,
			DurationBins: defaultDurationBins(),
			Seed:         defaultSeed,
		},
		Thresholds: Thresholds{
			MinTrainSamples:       defaultMinTrainSamples,
			MinTrainDurationSec:   defaultMinTrainDurationSec,
			MinValTestSamples:     defaultMinValTestSamples,
			MinValTestDurationSec: defaultMinValTestDurationSec,
			BalanceThresholdPct:   defaultBalanceThresholdPct,
		},
		Temporal: Temporal{
			SessionGapMs: defaultSessionGapMs,
			MinCoverage:  defaultTimestampMinCoverage,
		},
		Hashing: Hashing{
			Workers: 0, // 0 means runtime.NumCPU at hash time
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
