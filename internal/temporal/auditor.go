package temporal

import (
	"sort"

	"voxver/internal/dataset"
)

// Status describes the outcome of the leakage audit.
type Status string

const (
	StatusCompleted           Status = "completed"
	StatusSkippedByUser       Status = "skipped_by_user"
	StatusSkippedNoTimestamps Status = "skipped_insufficient_timestamps"
)

// Options tunes session clustering.
type Options struct {
	// SessionGapMs ends a session when consecutive timestamps differ by more.
	SessionGapMs int64
	// MinCoverage is the minimum fraction of samples that must carry a
	// timestamp; below it the audit is skipped rather than reporting a
	// misleading zero.
	MinCoverage float64
}

// Report is the advisory result of the audit. It never alters splits. The
// cluster counts are nil when the audit did not run, so a skipped audit
// serializes as null rather than a zero that reads like a clean result.
type Report struct {
	Status                 Status  `json:"temporal_check_status"`
	TotalClusters          *int    `json:"total_clusters"`
	ClustersCrossingSplits *int    `json:"temporal_clusters_crossing_splits"`
	TimestampCoveragePct   float64 `json:"timestamp_coverage_pct"`
}

// Clusters returns the session cluster count, zero when the audit was skipped.
func (r Report) Clusters() int {
	if r.TotalClusters == nil {
		return 0
	}
	return *r.TotalClusters
}

// CrossingClusters returns the count of clusters spanning train and test,
// zero when the audit was skipped.
func (r Report) CrossingClusters() int {
	if r.ClustersCrossingSplits == nil {
		return 0
	}
	return *r.ClustersCrossingSplits
}

// Skipped returns the report for an audit the operator disabled.
func Skipped() Report {
	return Report{Status: StatusSkippedByUser}
}

// Audit groups timestamped samples into session clusters and counts clusters
// whose members span both the train and test splits — a signal of possible
// session-level memorization leakage. Read-only: split assignments are inputs.
func Audit(rows []dataset.Row, opts Options) Report {
	report := Report{Status: StatusSkippedNoTimestamps}
	if len(rows) == 0 {
		return report
	}

	stamped := make([]dataset.Row, 0, len(rows))
	for _, row := range rows {
		if row.HasTimestamp {
			stamped = append(stamped, row)
		}
	}

	coverage := float64(len(stamped)) / float64(len(rows))
	report.TimestampCoveragePct = coverage * 100

	if coverage < opts.MinCoverage || len(stamped) == 0 {
		return report
	}

	sort.Slice(stamped, func(i, j int) bool {
		if stamped[i].TimestampMs != stamped[j].TimestampMs {
			return stamped[i].TimestampMs < stamped[j].TimestampMs
		}
		return stamped[i].ManifestRowIndex < stamped[j].ManifestRowIndex
	})

	report.Status = StatusCompleted

	var total, crossing int
	clusterSplits := make(map[dataset.Split]bool)
	flush := func() {
		total++
		if clusterSplits[dataset.SplitTrain] && clusterSplits[dataset.SplitTest] {
			crossing++
		}
		clusterSplits = make(map[dataset.Split]bool)
	}

	var prev int64
	for i, row := range stamped {
		if i > 0 && row.TimestampMs-prev > opts.SessionGapMs {
			flush()
		}
		clusterSplits[row.Split] = true
		prev = row.TimestampMs
	}
	flush()

	report.TotalClusters = &total
	report.ClustersCrossingSplits = &crossing
	return report
}
