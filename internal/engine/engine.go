package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"voxver/internal/config"
	"voxver/internal/dataset"
	"voxver/internal/exclusion"
	"voxver/internal/identity"
	"voxver/internal/inventory"
	"voxver/internal/lineage"
	"voxver/internal/logging"
	"voxver/internal/manifest"
	"voxver/internal/split"
	"voxver/internal/splitcheck"
	"voxver/internal/temporal"
)

// lockFileName guards a version output directory against concurrent builds.
const lockFileName = ".voxver.lock"

// Options selects what one build run does. Zero values fall back to the
// loaded configuration.
type Options struct {
	InventoryDir string
	OutDir       string
	Version      int

	// Overrides; nil/zero means "use config".
	Seed         *int64
	TrainRatio   *float64
	ValRatio     *float64
	TestRatio    *float64
	DurationBins []float64

	AllowSmallSplits  bool
	SkipTemporalCheck bool
	ShowProgress      bool
	ToolVersion       string
}

// VersionContext is the immutable identity of one build run. It is fixed
// before any pipeline stage executes and threaded through unchanged.
type VersionContext struct {
	Version   int
	RunID     string
	Seed      int64
	Ratios    split.Ratios
	Bins      split.Bins
	CreatedAt time.Time
}

// Result is the outcome of a successful build.
type Result struct {
	VersionContext VersionContext
	OutDir         string
	Paths          manifest.ArtifactPaths
	Summary        manifest.Summary
	Warnings       []string
}

// Build runs the full versioning pipeline: inventory, hashing, exclusion,
// stratified split, temporal audit, validation, lineage check, artifacts,
// registry finalization. Artifacts appear only after every check passes.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	vc, err := newVersionContext(cfg, opts)
	if err != nil {
		return nil, err
	}
	log := logging.WithComponent(logger, "engine").With(slog.Int(logging.FieldVersion, vc.Version), slog.String(logging.FieldRunID, vc.RunID))

	outDir := opts.OutDir
	if outDir == "" {
		outDir = filepath.Join(cfg.Paths.OutDir, fmt.Sprintf("v%d", vc.Version))
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create output directory: %v", ErrFatalInput, err)
	}

	lock := flock.New(filepath.Join(outDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: acquire build lock: %v", ErrFatalInput, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: another build holds the lock for %s", ErrFatalInput, outDir)
	}
	defer func() { _ = lock.Unlock() }()

	store, err := lineage.Open(cfg.RegistryPath())
	if err != nil {
		return nil, fmt.Errorf("open version registry: %w", err)
	}
	defer store.Close()

	if _, err := store.BeginVersion(ctx, vc.Version, vc.RunID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFatalInput, err)
	}

	log.Info("build started",
		slog.String("inventory_dir", opts.InventoryDir),
		slog.String("out_dir", outDir),
		slog.Int64("seed", vc.Seed))

	samples, err := loadInventory(log, opts.InventoryDir)
	if err != nil {
		return nil, err
	}

	rows, err := hashIdentities(ctx, log, cfg, samples, opts.ShowProgress)
	if err != nil {
		return nil, err
	}

	filtered := exclusion.Apply(rows)
	log.Info("exclusion filter applied",
		slog.Int("kept", len(filtered.Kept)),
		slog.Int("excluded", len(filtered.Excluded)))
	if len(filtered.Kept) == 0 {
		return nil, fmt.Errorf("%w: every sample was excluded", ErrFatalInput)
	}
	duplicateAudio := exclusion.FlagDuplicateAudio(filtered.Kept)

	lineageManager := lineage.NewManager(store, log)
	var prior []lineage.FrozenIdentity
	if vc.Version > 1 {
		prior, err = lineageManager.LoadPriorTestIdentities(ctx, vc.Version)
		if err != nil {
			return nil, fmt.Errorf("load prior test identities: %w", err)
		}
	}

	pinned := make(map[string]struct{}, len(prior))
	for _, id := range prior {
		pinned[id.PairSHA256] = struct{}{}
	}
	assigned, err := split.AssignWithPins(filtered.Kept, vc.Bins, vc.Ratios, pinned)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	temporalReport := auditTemporal(log, cfg, assigned, opts.SkipTemporalCheck)

	validation := splitcheck.Validate(assigned, splitThresholds(cfg), opts.AllowSmallSplits)
	for _, warning := range validation.Warnings {
		log.Warn("split quality warning", slog.String("detail", warning))
	}
	if !validation.Passed {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(validation.Errors, "; "))
	}

	if vc.Version > 1 {
		if err := lineageManager.Validate(vc.Version, assigned, prior); err != nil {
			return nil, err
		}
		log.Info("lineage check passed", slog.Int("prior_identities", len(prior)))
	}

	summary := manifest.NewSummary(manifest.SummaryInputs{
		Version:        vc.Version,
		RunID:          vc.RunID,
		Seed:           vc.Seed,
		ToolVersion:    opts.ToolVersion,
		Ratios:         vc.Ratios,
		Bins:           vc.Bins,
		Rows:           assigned,
		Excluded:       filtered.Excluded,
		DuplicateAudio: duplicateAudio,
		Temporal:       temporalReport,
		Validation:     validation,
		CreatedAt:      vc.CreatedAt,
	})

	paths, err := writeArtifacts(log, outDir, vc.Version, cfg.Dataset, assigned, filtered.Excluded, summary)
	if err != nil {
		return nil, err
	}

	if err := finalize(ctx, store, vc.Version, paths, assigned, summary); err != nil {
		return nil, err
	}

	log.Info("build complete",
		slog.Int("included", summary.IncludedCount),
		slog.Int("excluded", summary.ExcludedCount),
		slog.String("manifest", paths.Manifest))

	return &Result{
		VersionContext: vc,
		OutDir:         outDir,
		Paths:          paths,
		Summary:        summary,
		Warnings:       validation.Warnings,
	}, nil
}

func newVersionContext(cfg *config.Config, opts Options) (VersionContext, error) {
	if opts.Version < 1 {
		return VersionContext{}, fmt.Errorf("%w: dataset version must be >= 1, got %d", ErrConfig, opts.Version)
	}
	if opts.InventoryDir == "" {
		return VersionContext{}, fmt.Errorf("%w: inventory directory is required", ErrConfig)
	}

	seed := cfg.Split.Seed
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	ratios := split.Ratios{
		Train: cfg.Split.TrainRatio,
		Val:   cfg.Split.ValRatio,
		Test:  cfg.Split.TestRatio,
	}
	if opts.TrainRatio != nil {
		ratios.Train = *opts.TrainRatio
	}
	if opts.ValRatio != nil {
		ratios.Val = *opts.ValRatio
	}
	if opts.TestRatio != nil {
		ratios.Test = *opts.TestRatio
	}
	if err := ratios.Validate(); err != nil {
		return VersionContext{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	edges := cfg.Split.DurationBins
	if len(opts.DurationBins) > 0 {
		edges = opts.DurationBins
	}
	bins, err := split.NewBins(edges)
	if err != nil {
		return VersionContext{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	return VersionContext{
		Version:   opts.Version,
		RunID:     uuid.NewString(),
		Seed:      seed,
		Ratios:    ratios,
		Bins:      bins,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func loadInventory(log *slog.Logger, dir string) ([]inventory.Sample, error) {
	samples, err := inventory.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFatalInput, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: inventory %s contains no samples", ErrFatalInput, dir)
	}
	log.Info("inventory loaded", slog.Int("samples", len(samples)))
	return samples, nil
}

func hashIdentities(ctx context.Context, log *slog.Logger, cfg *config.Config, samples []inventory.Sample, showProgress bool) ([]dataset.Row, error) {
	hashOpts := identity.Options{Workers: cfg.Hashing.Workers}
	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(int64(len(samples)), "hashing")
		hashOpts.OnProgress = func(completed int) { _ = bar.Set(completed) }
	}

	start := time.Now()
	identities, err := identity.ComputeAll(ctx, samples, hashOpts)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: hash identities: %v", ErrFatalInput, err)
	}
	log.Info("identities hashed",
		slog.Int("samples", len(samples)),
		slog.Duration("elapsed", time.Since(start)))

	rows := make([]dataset.Row, len(samples))
	for i := range samples {
		rows[i] = dataset.Row{Sample: samples[i], Identity: identities[i]}
	}
	return rows, nil
}

func auditTemporal(log *slog.Logger, cfg *config.Config, rows []dataset.Row, skip bool) temporal.Report {
	if skip || cfg.Temporal.SkipByDefault {
		log.Info("temporal audit skipped by request")
		return temporal.Skipped()
	}
	report := temporal.Audit(rows, temporal.Options{
		SessionGapMs: cfg.Temporal.SessionGapMs,
		MinCoverage:  cfg.Temporal.MinCoverage,
	})
	log.Info("temporal audit finished",
		slog.String("status", string(report.Status)),
		slog.Int("clusters_crossing", report.CrossingClusters()),
		slog.Float64("coverage_pct", report.TimestampCoveragePct))
	return report
}

func writeArtifacts(log *slog.Logger, outDir string, version int, meta config.Dataset, rows []dataset.Row, excluded []dataset.Exclusion, summary manifest.Summary) (manifest.ArtifactPaths, error) {
	paths := manifest.Paths(outDir, version)

	if err := manifest.WriteManifest(paths.Manifest, version, meta.Source, meta.RecordingDevice, rows); err != nil {
		return paths, err
	}
	if err := manifest.WriteExcluded(paths.Excluded, excluded); err != nil {
		return paths, err
	}
	frozen := lineage.FrozenFromRows(version, rows)
	if err := lineage.WriteFrozenCSV(paths.Frozen, frozen); err != nil {
		return paths, err
	}
	if err := manifest.WriteSummary(paths.Summary, summary); err != nil {
		return paths, err
	}
	if err := manifest.WriteReport(paths.Report, summary); err != nil {
		return paths, err
	}

	log.Info("artifacts written", slog.String("out_dir", outDir))
	return paths, nil
}

func finalize(ctx context.Context, store *lineage.Store, version int, paths manifest.ArtifactPaths, rows []dataset.Row, summary manifest.Summary) error {
	summaryJSON, err := summaryJSONString(summary)
	if err != nil {
		return err
	}
	if err := store.MarkValidated(ctx, version, summaryJSON); err != nil {
		return err
	}
	frozen := lineage.FrozenFromRows(version, rows)
	if err := store.Finalize(ctx, version, paths.Manifest, paths.Frozen, frozen); err != nil {
		return err
	}
	return nil
}

func summaryJSONString(summary manifest.Summary) (string, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("encode summary for registry: %w", err)
	}
	return string(data), nil
}

func splitThresholds(cfg *config.Config) splitcheck.Thresholds {
	return splitcheck.Thresholds{
		MinTrainSamples:       cfg.Thresholds.MinTrainSamples,
		MinTrainDurationSec:   cfg.Thresholds.MinTrainDurationSec,
		MinValTestSamples:     cfg.Thresholds.MinValTestSamples,
		MinValTestDurationSec: cfg.Thresholds.MinValTestDurationSec,
		BalanceThresholdPct:   cfg.Thresholds.BalanceThresholdPct,
	}
}
