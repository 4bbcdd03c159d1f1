package splitcheck

import (
	"fmt"
	"sort"

	"voxver/internal/dataset"
)

// Thresholds holds the minimum split sizes and the balance bound.
type Thresholds struct {
	MinTrainSamples       int
	MinTrainDurationSec   float64
	MinValTestSamples     int
	MinValTestDurationSec float64
	BalanceThresholdPct   float64
}

// SplitStats aggregates one split.
type SplitStats struct {
	Count       int
	DurationSec float64
	BinCounts   map[string]int
}

// Result is the structured outcome of validation. When Overridden is set the
// size failures were downgraded to warnings and Passed stays true.
type Result struct {
	Passed              bool
	SampleCheckPassed   bool
	DurationCheckPassed bool
	Overridden          bool
	Errors              []string
	Warnings            []string
}

// Stats computes per-split counts, durations, and bin distributions.
func Stats(rows []dataset.Row) map[dataset.Split]SplitStats {
	stats := make(map[dataset.Split]SplitStats, 3)
	for _, split := range dataset.Splits() {
		stats[split] = SplitStats{BinCounts: map[string]int{}}
	}
	for _, row := range rows {
		s := stats[row.Split]
		if s.BinCounts == nil {
			s.BinCounts = map[string]int{}
		}
		s.Count++
		s.DurationSec += row.DurationSec
		s.BinCounts[row.DurationBin]++
		stats[row.Split] = s
	}
	return stats
}

// Validate checks minimum sizes and cross-split distribution balance.
// Size failures are fatal unless allowSmall downgrades them to warnings.
// Balance deviations are always warnings.
func Validate(rows []dataset.Row, thresholds Thresholds, allowSmall bool) Result {
	stats := Stats(rows)
	result := Result{Passed: true, SampleCheckPassed: true, DurationCheckPassed: true}

	var sampleIssues, durationIssues []string

	check := func(split dataset.Split, minSamples int, minDuration float64) {
		s := stats[split]
		if s.Count < minSamples {
			sampleIssues = append(sampleIssues,
				fmt.Sprintf("%s split has %d samples, minimum is %d", split, s.Count, minSamples))
		}
		if s.DurationSec < minDuration {
			durationIssues = append(durationIssues,
				fmt.Sprintf("%s split has %.1f min of audio, minimum is %.1f min", split, s.DurationSec/60, minDuration/60))
		}
	}
	check(dataset.SplitTrain, thresholds.MinTrainSamples, thresholds.MinTrainDurationSec)
	check(dataset.SplitVal, thresholds.MinValTestSamples, thresholds.MinValTestDurationSec)
	check(dataset.SplitTest, thresholds.MinValTestSamples, thresholds.MinValTestDurationSec)

	if len(sampleIssues) > 0 {
		result.SampleCheckPassed = false
	}
	if len(durationIssues) > 0 {
		result.DurationCheckPassed = false
	}

	issues := append(sampleIssues, durationIssues...)
	switch {
	case len(issues) == 0:
	case allowSmall:
		result.Overridden = true
		result.Warnings = append(result.Warnings, issues...)
	default:
		result.Passed = false
		result.Errors = append(result.Errors, issues...)
	}

	result.Warnings = append(result.Warnings, balanceWarnings(stats, thresholds.BalanceThresholdPct)...)
	return result
}

// balanceWarnings compares duration-bin proportions in val and test against
// train as the reference distribution.
func balanceWarnings(stats map[dataset.Split]SplitStats, thresholdPct float64) []string {
	var warnings []string

	train := stats[dataset.SplitTrain]
	if train.Count == 0 {
		return []string{"train split is empty, cannot check distribution balance"}
	}

	for _, split := range []dataset.Split{dataset.SplitVal, dataset.SplitTest} {
		s := stats[split]
		if s.Count == 0 {
			warnings = append(warnings, fmt.Sprintf("%s split is empty", split))
			continue
		}

		for _, bin := range sortedBins(train.BinCounts) {
			trainProp := float64(train.BinCounts[bin]) / float64(train.Count)
			splitProp := float64(s.BinCounts[bin]) / float64(s.Count)
			diffPct := (splitProp - trainProp) / trainProp * 100
			if diffPct < 0 {
				diffPct = -diffPct
			}
			if diffPct > thresholdPct {
				warnings = append(warnings, fmt.Sprintf(
					"duration bin %q differs by %.1f%% between train (%.1f%%) and %s (%.1f%%)",
					bin, diffPct, trainProp*100, split, splitProp*100))
			}
		}

		for _, bin := range sortedBins(s.BinCounts) {
			if _, ok := train.BinCounts[bin]; !ok && s.BinCounts[bin] > 0 {
				splitProp := float64(s.BinCounts[bin]) / float64(s.Count)
				warnings = append(warnings, fmt.Sprintf(
					"duration bin %q exists in %s (%.1f%%) but not in train", bin, split, splitProp*100))
			}
		}
	}

	return warnings
}

func sortedBins(counts map[string]int) []string {
	bins := make([]string, 0, len(counts))
	for bin := range counts {
		bins = append(bins, bin)
	}
	sort.Strings(bins)
	return bins
}
