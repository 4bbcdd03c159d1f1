package manifest

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"voxver/internal/dataset"
	"voxver/internal/split"
	"voxver/internal/temporal"
)

// RenderReport renders the human-readable markdown report for a summary.
func RenderReport(s Summary) []byte {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	fmt.Fprintf(&b, "# Dataset %s Report\n\n", s.DatasetVersion)

	b.WriteString("## 1. Overview\n\n")
	fmt.Fprintf(&b, "- **Dataset version:** %s\n", s.DatasetVersion)
	fmt.Fprintf(&b, "- **Run ID:** %s\n", s.RunID)
	fmt.Fprintf(&b, "- **Created:** %s\n", s.CreatedTimestamp)
	fmt.Fprintf(&b, "- **Seed:** %d\n\n", s.Seed)

	b.WriteString("## 2. Cleaning Summary\n\n")
	p.Fprintf(&b, "- **Input samples:** %d\n", s.InputManifestRows)
	excludedPct := 0.0
	if s.InputManifestRows > 0 {
		excludedPct = float64(s.ExcludedCount) / float64(s.InputManifestRows) * 100
	}
	p.Fprintf(&b, "- **Excluded samples:** %d (%.1f%%)\n\n", s.ExcludedCount, excludedPct)

	if len(s.ExcludedBreakdown) > 0 {
		b.WriteString("| Exclusion Reason | Count |\n")
		b.WriteString("|-----------------|-------|\n")
		reasons := make([]string, 0, len(s.ExcludedBreakdown))
		for reason := range s.ExcludedBreakdown {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			p.Fprintf(&b, "| %s | %d |\n", reason, s.ExcludedBreakdown[reason])
		}
		b.WriteString("\n")
	}

	p.Fprintf(&b, "- **Final dataset size:** %d\n", s.IncludedCount)
	fmt.Fprintf(&b, "- **Total duration:** %.2f hours\n\n", s.TotalDurationHours())

	b.WriteString("## 3. Split Summary\n\n")
	b.WriteString("| Split | Count | Duration (hours) | Percentage |\n")
	b.WriteString("|-------|-------|------------------|------------|\n")
	for _, sp := range dataset.Splits() {
		count := s.SplitCounts[string(sp)]
		hours := s.SplitDurationsHours[string(sp)]
		pct := 0.0
		if s.IncludedCount > 0 {
			pct = float64(count) / float64(s.IncludedCount) * 100
		}
		p.Fprintf(&b, "| %s | %d | %.2f | %.1f%% |\n", sp, count, hours, pct)
	}
	b.WriteString("\n")

	if len(s.SplitDurationDistributions) > 0 {
		b.WriteString("## 4. Duration Distribution\n\n")
		b.WriteString("| Duration Bin | Train | Val | Test |\n")
		b.WriteString("|--------------|-------|-----|------|\n")
		for _, label := range reportBinLabels(s) {
			p.Fprintf(&b, "| %s | %d | %d | %d |\n", label,
				s.SplitDurationDistributions[string(dataset.SplitTrain)][label],
				s.SplitDurationDistributions[string(dataset.SplitVal)][label],
				s.SplitDurationDistributions[string(dataset.SplitTest)][label])
		}
		b.WriteString("\n")
	}

	b.WriteString("## 5. Quality Checks\n\n")
	fmt.Fprintf(&b, "- **Duplicate audio with different transcripts:** %d\n",
		s.DuplicateAudioDifferentTranscriptCount)
	if s.Status == temporal.StatusCompleted {
		fmt.Fprintf(&b, "- **Temporal session leakage:** %d clusters crossing splits (coverage %.1f%%)\n",
			s.CrossingClusters(), s.TimestampCoveragePct)
	} else {
		fmt.Fprintf(&b, "- **Temporal session leakage:** check skipped (%s)\n", s.Status)
	}
	fmt.Fprintf(&b, "- **Minimum sample validation:** %s\n", passFail(s.MinSampleValidationPassed))
	fmt.Fprintf(&b, "- **Minimum duration validation:** %s\n\n", passFail(s.MinDurationValidationPassed))

	b.WriteString("## 6. Split Quality Assessment\n\n")
	if len(s.SplitQualityWarnings) > 0 {
		b.WriteString("**Warnings:**\n\n")
		for _, warning := range s.SplitQualityWarnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("Duration distributions are balanced across splits.\n\n")
	}
	if s.ValidationOverridden {
		b.WriteString("Size minimums were overridden for this build.\n\n")
	}
	if s.validationHealthy() && len(s.SplitQualityWarnings) == 0 {
		b.WriteString("**Recommendation:** READY FOR TRAINING\n\n")
	} else {
		b.WriteString("**Recommendation:** NEEDS REVIEW\n\n")
	}

	b.WriteString("## 7. Test Set Lock\n\n")
	fmt.Fprintf(&b, "- **Test set frozen:** `test_set_%s_frozen.csv`\n", s.DatasetVersion)
	p.Fprintf(&b, "- **Test samples count:** %d\n\n", s.SplitCounts[string(dataset.SplitTest)])
	b.WriteString("**Instructions for future dataset versions:**\n\n")
	fmt.Fprintf(&b, "1. Load `test_set_%s_frozen.csv`\n", s.DatasetVersion)
	fmt.Fprintf(&b, "2. Preserve all %s test samples in the test split (match by `pair_sha256`)\n", s.DatasetVersion)
	b.WriteString("3. MAY add new samples to test\n")
	fmt.Fprintf(&b, "4. MUST NOT move %s test samples to train/val\n", s.DatasetVersion)

	return []byte(b.String())
}

func (s Summary) validationHealthy() bool {
	return s.MinSampleValidationPassed && s.MinDurationValidationPassed
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

// reportBinLabels orders bin labels by duration. The configured edges
// reproduce the canonical order; labels outside them sort lexically at the
// end.
func reportBinLabels(s Summary) []string {
	present := make(map[string]bool)
	for _, dist := range s.SplitDurationDistributions {
		for label := range dist {
			present[label] = true
		}
	}

	var labels []string
	if bins, err := split.NewBins(s.DurationBinEdges); err == nil {
		for _, label := range bins.Labels() {
			if present[label] {
				labels = append(labels, label)
				delete(present, label)
			}
		}
	}
	var rest []string
	for label := range present {
		rest = append(rest, label)
	}
	sort.Strings(rest)
	return append(labels, rest...)
}
