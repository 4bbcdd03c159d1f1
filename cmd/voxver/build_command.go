package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"voxver/internal/engine"
	"voxver/internal/logging"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var (
		inventoryDir string
		outDir       string
		version      int
		seed         int64
		trainRatio   float64
		valRatio     float64
		testRatio    float64
		durationBins []float64
		allowSmall   bool
		skipTemporal bool
		jsonOut      bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build one dataset version from an inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			opts := engine.Options{
				InventoryDir:      inventoryDir,
				OutDir:            outDir,
				Version:           version,
				AllowSmallSplits:  allowSmall,
				SkipTemporalCheck: skipTemporal,
				ShowProgress:      !jsonOut && isatty.IsTerminal(os.Stderr.Fd()),
				ToolVersion:       toolVersion,
			}
			flags := cmd.Flags()
			if flags.Changed("seed") {
				opts.Seed = &seed
			}
			if flags.Changed("train-ratio") {
				opts.TrainRatio = &trainRatio
			}
			if flags.Changed("val-ratio") {
				opts.ValRatio = &valRatio
			}
			if flags.Changed("test-ratio") {
				opts.TestRatio = &testRatio
			}
			if flags.Changed("duration-bins") {
				opts.DurationBins = durationBins
			}

			result, err := engine.Build(cmd.Context(), cfg, logger, opts)
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(cmd.OutOrStdout(), result.Summary)
			}
			printBuildResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&inventoryDir, "inventory-dir", "", "Directory containing the inventory table and audio files")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Output directory for version artifacts (default <paths.out_dir>/v<N>)")
	cmd.Flags().IntVar(&version, "dataset-version", 0, "Dataset version number to build")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed recorded in the version metadata")
	cmd.Flags().Float64Var(&trainRatio, "train-ratio", 0, "Train split ratio override")
	cmd.Flags().Float64Var(&valRatio, "val-ratio", 0, "Val split ratio override")
	cmd.Flags().Float64Var(&testRatio, "test-ratio", 0, "Test split ratio override")
	cmd.Flags().Float64SliceVar(&durationBins, "duration-bins", nil, "Interior duration bin edges in seconds")
	cmd.Flags().BoolVar(&allowSmall, "allow-small-splits", false, "Downgrade split size failures to warnings")
	cmd.Flags().BoolVar(&skipTemporal, "skip-temporal-check", false, "Skip the temporal leakage audit")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the build summary as JSON")
	_ = cmd.MarkFlagRequired("inventory-dir")
	_ = cmd.MarkFlagRequired("dataset-version")

	return cmd
}

func printBuildResult(cmd *cobra.Command, result *engine.Result) {
	out := cmd.OutOrStdout()
	summary := result.Summary

	fmt.Fprintf(out, "Dataset %s built (run %s)\n\n", summary.DatasetVersion, summary.RunID)
	fmt.Fprintln(out, renderSplitTable(summary))

	fmt.Fprintf(out, "\nIncluded %d of %d samples (%d excluded)\n",
		summary.IncludedCount, summary.InputManifestRows, summary.ExcludedCount)
	if summary.DuplicateAudioDifferentTranscriptCount > 0 {
		fmt.Fprintf(out, "Flagged %d samples with duplicate audio under different transcripts\n",
			summary.DuplicateAudioDifferentTranscriptCount)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", warning)
	}
	fmt.Fprintf(out, "Artifacts in %s\n", result.OutDir)
}
