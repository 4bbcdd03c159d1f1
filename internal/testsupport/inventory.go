package testsupport

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"voxver/internal/inventory"
)

// InventorySample describes one fixture row for WriteInventory. Audio content
// defaults to bytes derived from the file name so distinct names hash to
// distinct audio identities.
type InventorySample struct {
	FileName    string
	Transcript  string
	DurationSec float64
	TimestampMs int64

	// AudioContent overrides the generated audio bytes; use identical
	// content across rows to simulate duplicate audio.
	AudioContent []byte

	// AudioMissing leaves the audio file unwritten and marks the row
	// unreadable.
	AudioMissing bool
}

// WriteInventory lays out an inventory directory: the inventory CSV plus one
// small audio file per sample, and returns the directory path.
func WriteInventory(t testing.TB, samples []InventorySample) string {
	t.Helper()

	dir := t.TempDir()
	audioDir := filepath.Join(dir, "audio")
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		t.Fatalf("create audio dir: %v", err)
	}

	file, err := os.Create(filepath.Join(dir, inventory.FileName))
	if err != nil {
		t.Fatalf("create inventory csv: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{
		"manifest_row_index", "file_name", "audio_path_resolved", "duration_sec",
		"transcript_raw", "audio_read_ok", "transcript_is_blank", "timestamp_ms",
		"recording_device",
	}
	if err := writer.Write(header); err != nil {
		t.Fatalf("write inventory header: %v", err)
	}

	for i, sample := range samples {
		relPath := filepath.Join("audio", sample.FileName)
		if !sample.AudioMissing {
			content := sample.AudioContent
			if content == nil {
				content = []byte("audio:" + sample.FileName)
			}
			if err := os.WriteFile(filepath.Join(dir, relPath), content, 0o644); err != nil {
				t.Fatalf("write audio fixture %s: %v", sample.FileName, err)
			}
		}

		duration := ""
		if sample.DurationSec != 0 {
			duration = strconv.FormatFloat(sample.DurationSec, 'f', -1, 64)
		}
		timestamp := ""
		if sample.TimestampMs != 0 {
			timestamp = strconv.FormatInt(sample.TimestampMs, 10)
		}
		record := []string{
			strconv.Itoa(i),
			sample.FileName,
			relPath,
			duration,
			sample.Transcript,
			strconv.FormatBool(!sample.AudioMissing),
			strconv.FormatBool(sample.Transcript == ""),
			timestamp,
			"macbook_pro",
		}
		if err := writer.Write(record); err != nil {
			t.Fatalf("write inventory row %d: %v", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		t.Fatalf("flush inventory csv: %v", err)
	}
	return dir
}

// CleanSamples generates n well-formed samples with distinct audio and
// transcripts, durations cycling through the default bins.
func CleanSamples(n int) []InventorySample {
	durations := []float64{0.8, 2, 5, 20, 45}
	samples := make([]InventorySample, n)
	for i := range samples {
		samples[i] = InventorySample{
			FileName:    fmt.Sprintf("utt_%04d.wav", i),
			Transcript:  fmt.Sprintf("utterance number %d", i),
			DurationSec: durations[i%len(durations)],
		}
	}
	return samples
}
