package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FileName is the inventory table file produced by the data inventory step.
const FileName = "inventory_files.csv"

// Sample is one row of the input inventory. Immutable once read.
type Sample struct {
	ManifestRowIndex   int64
	FileName           string
	AudioPathResolved  string
	AudioExists        bool
	AudioReadOK        bool
	DurationSec        float64
	DurationValid      bool
	TranscriptRaw      string
	TranscriptIsBlank  bool
	TranscriptLenChars int
	TranscriptLenWords int
	TimestampMs        int64
	HasTimestamp       bool
	RecordingDevice    string
}

var requiredColumns = []string{
	"manifest_row_index",
	"file_name",
	"audio_path_resolved",
	"duration_sec",
	"transcript_raw",
	"audio_read_ok",
	"transcript_is_blank",
}

// LoadDir reads the inventory table from dir. Relative audio paths are
// resolved against dir so downstream hashing can open them directly.
func LoadDir(dir string) ([]Sample, error) {
	path := filepath.Join(dir, FileName)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open inventory %s: %w", path, err)
	}
	defer file.Close()

	samples, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("read inventory %s: %w", path, err)
	}

	for i := range samples {
		if samples[i].AudioPathResolved != "" && !filepath.IsAbs(samples[i].AudioPathResolved) {
			samples[i].AudioPathResolved = filepath.Join(dir, samples[i].AudioPathResolved)
		}
	}
	return samples, nil
}

// Read parses inventory rows from CSV data.
func Read(r io.Reader) ([]Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var samples []Sample
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++

		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		sample, err := parseSample(field)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

func parseSample(field func(string) string) (Sample, error) {
	rowIndex, err := strconv.ParseInt(strings.TrimSpace(field("manifest_row_index")), 10, 64)
	if err != nil {
		return Sample{}, fmt.Errorf("manifest_row_index: %w", err)
	}

	sample := Sample{
		ManifestRowIndex:  rowIndex,
		FileName:          field("file_name"),
		AudioPathResolved: strings.TrimSpace(field("audio_path_resolved")),
		TranscriptRaw:     field("transcript_raw"),
		RecordingDevice:   strings.TrimSpace(field("recording_device")),
	}

	sample.AudioReadOK = parseBool(field("audio_read_ok"))
	sample.TranscriptIsBlank = parseBool(field("transcript_is_blank"))
	if raw := strings.TrimSpace(field("audio_exists")); raw != "" {
		sample.AudioExists = parseBool(raw)
	} else {
		sample.AudioExists = sample.AudioReadOK
	}

	if raw := strings.TrimSpace(field("duration_sec")); raw != "" {
		duration, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Sample{}, fmt.Errorf("duration_sec %q: %w", raw, err)
		}
		sample.DurationSec = duration
		sample.DurationValid = true
	}

	if raw := strings.TrimSpace(field("timestamp_ms")); raw != "" {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Sample{}, fmt.Errorf("timestamp_ms %q: %w", raw, err)
		}
		sample.TimestampMs = ts
		sample.HasTimestamp = true
	}

	sample.TranscriptLenChars = parseLenOr(field("transcript_len_chars"), utf8.RuneCountInString(sample.TranscriptRaw))
	sample.TranscriptLenWords = parseLenOr(field("transcript_len_words"), len(strings.Fields(sample.TranscriptRaw)))

	return sample, nil
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func parseLenOr(raw string, fallback int) int {
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		if v, err := strconv.Atoi(trimmed); err == nil {
			return v
		}
	}
	return fallback
}
