package manifest_test

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voxver/internal/dataset"
	"voxver/internal/identity"
	"voxver/internal/inventory"
	"voxver/internal/manifest"
	"voxver/internal/split"
	"voxver/internal/splitcheck"
	"voxver/internal/temporal"
)

func sampleRows(outDir string) []dataset.Row {
	return []dataset.Row{
		{
			Sample: inventory.Sample{
				ManifestRowIndex:   0,
				FileName:           "a.wav",
				AudioPathResolved:  filepath.Join(outDir, "audio", "a.wav"),
				DurationSec:        2.5,
				TranscriptRaw:      "hello there",
				TranscriptLenChars: 11,
				TranscriptLenWords: 2,
				TimestampMs:        1700000000000,
				HasTimestamp:       true,
				RecordingDevice:    "macbook_pro",
			},
			Identity:    identity.Identity{AudioSHA256: "a1", TranscriptSHA256: "t1", PairSHA256: "p1"},
			DurationBin: "(1, 3]",
			Split:       dataset.SplitTrain,
		},
		{
			Sample: inventory.Sample{
				ManifestRowIndex:  1,
				FileName:          "b.wav",
				AudioPathResolved: filepath.Join(outDir, "audio", "b.wav"),
				DurationSec:       5,
				TranscriptRaw:     "general kenobi",
			},
			Identity:           identity.Identity{AudioSHA256: "a2", TranscriptSHA256: "t2", PairSHA256: "p2"},
			DurationBin:        "(3, 10]",
			Split:              dataset.SplitTest,
			DuplicateAudioFlag: true,
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return records
}

func TestPathsLayout(t *testing.T) {
	paths := manifest.Paths("/data/v3", 3)
	if paths.Manifest != "/data/v3/dataset_v3_manifest.csv" {
		t.Fatalf("unexpected manifest path: %s", paths.Manifest)
	}
	if paths.Frozen != "/data/v3/test_set_v3_frozen.csv" {
		t.Fatalf("unexpected frozen path: %s", paths.Frozen)
	}
	if paths.Report != "/data/v3/dataset_v3_report.md" {
		t.Fatalf("unexpected report path: %s", paths.Report)
	}
}

func TestWriteManifestColumnsAndRelativePaths(t *testing.T) {
	outDir := t.TempDir()
	path := manifest.Paths(outDir, 1).Manifest

	if err := manifest.WriteManifest(path, 1, "euphonia", "macbook_pro", sampleRows(outDir)); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}

	header := records[0]
	want := []string{
		"dataset_version", "file_name", "source", "manifest_row_index",
		"audio_path_resolved", "duration_sec", "duration_bin", "transcript_raw",
		"transcript_len_chars", "transcript_len_words", "timestamp_ms",
		"recording_device", "audio_sha256", "transcript_sha256", "pair_sha256",
		"split", "duplicate_audio_flag",
	}
	if len(header) != len(want) {
		t.Fatalf("header length mismatch: %v", header)
	}
	for i, col := range want {
		if header[i] != col {
			t.Fatalf("column %d: got %q, want %q", i, header[i], col)
		}
	}

	first := records[1]
	if first[0] != "v1" || first[2] != "euphonia" {
		t.Fatalf("version/source columns wrong: %v", first)
	}
	if first[4] != filepath.Join("audio", "a.wav") {
		t.Fatalf("audio path should be relative to the manifest dir, got %q", first[4])
	}
	if first[10] != "1700000000000" {
		t.Fatalf("timestamp column wrong: %q", first[10])
	}

	second := records[2]
	if second[10] != "" {
		t.Fatalf("missing timestamp must serialize empty, got %q", second[10])
	}
	if second[16] != "true" {
		t.Fatalf("duplicate flag wrong: %q", second[16])
	}
}

func TestWriteManifestStampsConfiguredRecordingDevice(t *testing.T) {
	outDir := t.TempDir()
	path := manifest.Paths(outDir, 1).Manifest

	// First row names its own device; the second carries none.
	if err := manifest.WriteManifest(path, 1, "euphonia", "field_recorder", sampleRows(outDir)); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	records := readCSV(t, path)
	if records[1][11] != "macbook_pro" {
		t.Fatalf("row device must win over the configured constant, got %q", records[1][11])
	}
	if records[2][11] != "field_recorder" {
		t.Fatalf("missing row device must fall back to the configured constant, got %q", records[2][11])
	}
}

func TestWriteExcludedEmptyStillHasHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.csv")
	if err := manifest.WriteExcluded(path, nil); err != nil {
		t.Fatalf("write excluded: %v", err)
	}
	records := readCSV(t, path)
	if len(records) != 1 {
		t.Fatalf("expected header only, got %d records", len(records))
	}
	if records[0][2] != "excluded_reason" {
		t.Fatalf("unexpected header: %v", records[0])
	}
}

func TestWriteExcludedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.csv")
	excluded := []dataset.Exclusion{
		{FileName: "bad.wav", ManifestRowIndex: 7, Reason: dataset.ReasonBlankTranscript, AudioSHA256: "aa"},
	}
	if err := manifest.WriteExcluded(path, excluded); err != nil {
		t.Fatalf("write excluded: %v", err)
	}
	records := readCSV(t, path)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1][2] != "blank_transcript" {
		t.Fatalf("unexpected reason: %v", records[1])
	}
}

func testSummary(outDir string) manifest.Summary {
	rows := sampleRows(outDir)
	bins, _ := split.NewBins([]float64{1, 3, 10, 30})
	return manifest.NewSummary(manifest.SummaryInputs{
		Version:     1,
		RunID:       "run-123",
		Seed:        42,
		ToolVersion: "0.1.0",
		Ratios:      split.Ratios{Train: 0.8, Val: 0.1, Test: 0.1},
		Bins:        bins,
		Rows:        rows,
		Excluded: []dataset.Exclusion{
			{FileName: "bad.wav", ManifestRowIndex: 5, Reason: dataset.ReasonBlankTranscript},
		},
		DuplicateAudio: 1,
		Temporal:       temporal.Report{Status: temporal.StatusCompleted, TimestampCoveragePct: 50},
		Validation:     splitcheck.Result{Passed: true, SampleCheckPassed: true, DurationCheckPassed: true},
		CreatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
}

func TestSummaryAggregates(t *testing.T) {
	s := testSummary(t.TempDir())

	if s.DatasetVersion != "v1" {
		t.Fatalf("unexpected version label: %s", s.DatasetVersion)
	}
	if s.InputManifestRows != 3 || s.ExcludedCount != 1 || s.IncludedCount != 2 {
		t.Fatalf("count aggregation wrong: %+v", s)
	}
	if s.ExcludedBreakdown["blank_transcript"] != 1 {
		t.Fatalf("breakdown wrong: %v", s.ExcludedBreakdown)
	}
	if s.SplitCounts["train"] != 1 || s.SplitCounts["test"] != 1 {
		t.Fatalf("split counts wrong: %v", s.SplitCounts)
	}
	if s.SplitDurationsSec["test"] != 5 {
		t.Fatalf("split durations wrong: %v", s.SplitDurationsSec)
	}
	if s.SplitDurationDistributions["train"]["(1, 3]"] != 1 {
		t.Fatalf("distributions wrong: %v", s.SplitDurationDistributions)
	}
}

func TestWriteSummaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	s := testSummary(t.TempDir())
	if err := manifest.WriteSummary(path, s); err != nil {
		t.Fatalf("write summary: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var loaded manifest.Summary
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if loaded.DatasetVersion != "v1" || loaded.Seed != 42 {
		t.Fatalf("round trip lost fields: %+v", loaded)
	}
	if loaded.Status != temporal.StatusCompleted {
		t.Fatalf("temporal status lost: %+v", loaded)
	}
}

func TestRenderReportSections(t *testing.T) {
	report := string(manifest.RenderReport(testSummary(t.TempDir())))

	for _, want := range []string{
		"# Dataset v1 Report",
		"## 2. Cleaning Summary",
		"| blank_transcript | 1 |",
		"| train | 1 |",
		"## 7. Test Set Lock",
		"test_set_v1_frozen.csv",
		"READY FOR TRAINING",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}

func TestRenderReportNeedsReviewOnFailure(t *testing.T) {
	s := testSummary(t.TempDir())
	s.MinSampleValidationPassed = false
	report := string(manifest.RenderReport(s))
	if !strings.Contains(report, "NEEDS REVIEW") {
		t.Fatalf("failed validation should flag review:\n%s", report)
	}
	if !strings.Contains(report, "**Minimum sample validation:** FAIL") {
		t.Fatalf("report should show FAIL:\n%s", report)
	}
}

