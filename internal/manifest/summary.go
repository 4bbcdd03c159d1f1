package manifest

import (
	"fmt"
	"time"

	"voxver/internal/dataset"
	"voxver/internal/split"
	"voxver/internal/splitcheck"
	"voxver/internal/temporal"
)

// Summary is the machine-readable record of one version build. It is stored
// both as the summary JSON artifact and in the version registry.
type Summary struct {
	DatasetVersion   string             `json:"dataset_version"`
	RunID            string             `json:"run_id"`
	CreatedTimestamp string             `json:"created_timestamp"`
	ToolVersion      string             `json:"tool_version"`
	Seed             int64              `json:"seed"`
	SplitRatios      map[string]float64 `json:"split_ratios"`
	DurationBinEdges []float64          `json:"duration_bin_edges"`

	InputManifestRows int            `json:"input_manifest_rows"`
	ExcludedCount     int            `json:"excluded_count"`
	ExcludedBreakdown map[string]int `json:"excluded_breakdown"`
	IncludedCount     int            `json:"included_count"`

	SplitCounts                map[string]int            `json:"split_counts"`
	SplitDurationsSec          map[string]float64        `json:"split_durations_sec"`
	SplitDurationsHours        map[string]float64        `json:"split_durations_hours"`
	SplitDurationDistributions map[string]map[string]int `json:"split_duration_distributions"`

	DuplicateAudioDifferentTranscriptCount int `json:"duplicate_audio_different_transcript_count"`

	temporal.Report

	MinSampleValidationPassed   bool     `json:"min_sample_validation_passed"`
	MinDurationValidationPassed bool     `json:"min_duration_validation_passed"`
	ValidationOverridden        bool     `json:"validation_overridden"`
	SplitQualityWarnings        []string `json:"split_quality_warnings"`
}

// SummaryInputs carries everything the summary aggregates.
type SummaryInputs struct {
	Version        int
	RunID          string
	Seed           int64
	ToolVersion    string
	Ratios         split.Ratios
	Bins           split.Bins
	Rows           []dataset.Row
	Excluded       []dataset.Exclusion
	DuplicateAudio int
	Temporal       temporal.Report
	Validation     splitcheck.Result
	CreatedAt      time.Time
}

// NewSummary aggregates a finished build into its summary record.
func NewSummary(in SummaryInputs) Summary {
	stats := splitcheck.Stats(in.Rows)

	counts := make(map[string]int, len(stats))
	durationsSec := make(map[string]float64, len(stats))
	durationsHours := make(map[string]float64, len(stats))
	distributions := make(map[string]map[string]int, len(stats))
	for _, s := range dataset.Splits() {
		stat, ok := stats[s]
		if !ok {
			continue
		}
		counts[string(s)] = stat.Count
		durationsSec[string(s)] = stat.DurationSec
		durationsHours[string(s)] = stat.DurationSec / 3600
		if len(stat.BinCounts) > 0 {
			bins := make(map[string]int, len(stat.BinCounts))
			for label, n := range stat.BinCounts {
				bins[label] = n
			}
			distributions[string(s)] = bins
		}
	}

	breakdown := make(map[string]int)
	for _, ex := range in.Excluded {
		breakdown[string(ex.Reason)]++
	}

	warnings := in.Validation.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return Summary{
		DatasetVersion:   fmt.Sprintf("v%d", in.Version),
		RunID:            in.RunID,
		CreatedTimestamp: in.CreatedAt.UTC().Format(time.RFC3339),
		ToolVersion:      in.ToolVersion,
		Seed:             in.Seed,
		SplitRatios: map[string]float64{
			string(dataset.SplitTrain): in.Ratios.Train,
			string(dataset.SplitVal):   in.Ratios.Val,
			string(dataset.SplitTest):  in.Ratios.Test,
		},
		DurationBinEdges: in.Bins.Edges(),

		InputManifestRows: len(in.Rows) + len(in.Excluded),
		ExcludedCount:     len(in.Excluded),
		ExcludedBreakdown: breakdown,
		IncludedCount:     len(in.Rows),

		SplitCounts:                counts,
		SplitDurationsSec:          durationsSec,
		SplitDurationsHours:        durationsHours,
		SplitDurationDistributions: distributions,

		DuplicateAudioDifferentTranscriptCount: in.DuplicateAudio,

		Report: in.Temporal,

		MinSampleValidationPassed:   in.Validation.SampleCheckPassed,
		MinDurationValidationPassed: in.Validation.DurationCheckPassed,
		ValidationOverridden:        in.Validation.Overridden,
		SplitQualityWarnings:        warnings,
	}
}

// TotalDurationHours sums split durations.
func (s Summary) TotalDurationHours() float64 {
	var total float64
	for _, hours := range s.SplitDurationsHours {
		total += hours
	}
	return total
}
