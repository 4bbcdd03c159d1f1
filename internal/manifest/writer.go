package manifest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/google/renameio/v2"

	"voxver/internal/dataset"
)

// ArtifactPaths names every file a version build produces under its output
// directory.
type ArtifactPaths struct {
	Manifest string
	Excluded string
	Frozen   string
	Summary  string
	Report   string
}

// Paths returns the artifact layout for one dataset version.
func Paths(outDir string, version int) ArtifactPaths {
	prefix := fmt.Sprintf("dataset_v%d", version)
	return ArtifactPaths{
		Manifest: filepath.Join(outDir, prefix+"_manifest.csv"),
		Excluded: filepath.Join(outDir, prefix+"_excluded.csv"),
		Frozen:   filepath.Join(outDir, fmt.Sprintf("test_set_v%d_frozen.csv", version)),
		Summary:  filepath.Join(outDir, prefix+"_summary.json"),
		Report:   filepath.Join(outDir, prefix+"_report.md"),
	}
}

// WriteManifest writes the dataset manifest CSV atomically. Audio paths are
// rewritten relative to the manifest's directory where possible so the
// artifact stays portable across machines. Rows that carry no recording
// device take the configured constant instead of leaving the cell empty.
func WriteManifest(path string, version int, source, recordingDevice string, rows []dataset.Row) error {
	baseDir := filepath.Dir(path)
	versionLabel := fmt.Sprintf("v%d", version)

	pending, err := renameio.TempFile("", path)
	if err != nil {
		return fmt.Errorf("stage manifest: %w", err)
	}
	defer pending.Cleanup()

	writer := csv.NewWriter(pending)
	if err := writer.Write(manifestColumns); err != nil {
		return fmt.Errorf("write manifest header: %w", err)
	}
	for _, row := range rows {
		device := row.RecordingDevice
		if device == "" {
			device = recordingDevice
		}
		record := []string{
			versionLabel,
			row.FileName,
			source,
			strconv.FormatInt(row.ManifestRowIndex, 10),
			relativeAudioPath(row.AudioPathResolved, baseDir),
			formatFloat(row.DurationSec),
			row.DurationBin,
			row.TranscriptRaw,
			strconv.Itoa(row.TranscriptLenChars),
			strconv.Itoa(row.TranscriptLenWords),
			formatTimestamp(row.TimestampMs, row.HasTimestamp),
			device,
			row.AudioSHA256,
			row.TranscriptSHA256,
			row.PairSHA256,
			string(row.Split),
			strconv.FormatBool(row.DuplicateAudioFlag),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write manifest row %d: %w", row.ManifestRowIndex, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush manifest: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("commit manifest: %w", err)
	}
	return nil
}

// WriteExcluded writes the exclusion CSV atomically. An empty exclusion list
// still produces a header-only file.
func WriteExcluded(path string, excluded []dataset.Exclusion) error {
	pending, err := renameio.TempFile("", path)
	if err != nil {
		return fmt.Errorf("stage excluded csv: %w", err)
	}
	defer pending.Cleanup()

	writer := csv.NewWriter(pending)
	if err := writer.Write(excludedColumns); err != nil {
		return fmt.Errorf("write excluded header: %w", err)
	}
	for _, ex := range excluded {
		record := []string{
			ex.FileName,
			strconv.FormatInt(ex.ManifestRowIndex, 10),
			string(ex.Reason),
			ex.AudioSHA256,
			ex.TranscriptSHA256,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write excluded row %d: %w", ex.ManifestRowIndex, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush excluded csv: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("commit excluded csv: %w", err)
	}
	return nil
}

// WriteSummary writes the summary JSON atomically.
func WriteSummary(path string, summary Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	data = append(data, '\n')
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// WriteReport renders the summary as markdown and writes it atomically.
func WriteReport(path string, summary Summary) error {
	if err := renameio.WriteFile(path, RenderReport(summary), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func relativeAudioPath(audioPath, baseDir string) string {
	rel, err := filepath.Rel(baseDir, audioPath)
	if err != nil {
		return audioPath
	}
	return rel
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTimestamp(ms int64, present bool) string {
	if !present {
		return ""
	}
	return strconv.FormatInt(ms, 10)
}
