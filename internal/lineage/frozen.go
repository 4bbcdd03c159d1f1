package lineage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/renameio/v2"

	"voxver/internal/dataset"
)

// FrozenIdentity is one test-split identity recorded by a frozen version.
type FrozenIdentity struct {
	Version          int
	FileName         string
	PairSHA256       string
	AudioSHA256      string
	TranscriptSHA256 string
}

var frozenHeader = []string{"file_name", "pair_sha256", "audio_sha256", "transcript_sha256"}

// FrozenFromRows extracts the frozen identity list from a version's test
// split, sorted by pair hash for stable artifact bytes.
func FrozenFromRows(version int, rows []dataset.Row) []FrozenIdentity {
	var identities []FrozenIdentity
	for _, row := range rows {
		if row.Split != dataset.SplitTest {
			continue
		}
		identities = append(identities, FrozenIdentity{
			Version:          version,
			FileName:         row.FileName,
			PairSHA256:       row.PairSHA256,
			AudioSHA256:      row.AudioSHA256,
			TranscriptSHA256: row.TranscriptSHA256,
		})
	}
	sort.Slice(identities, func(i, j int) bool {
		return identities[i].PairSHA256 < identities[j].PairSHA256
	})
	return identities
}

// WriteFrozenCSV writes the frozen test-set artifact atomically: the file
// appears complete or not at all.
func WriteFrozenCSV(path string, identities []FrozenIdentity) error {
	pending, err := renameio.TempFile("", path)
	if err != nil {
		return fmt.Errorf("stage frozen test set: %w", err)
	}
	defer pending.Cleanup()

	writer := csv.NewWriter(pending)
	if err := writer.Write(frozenHeader); err != nil {
		return fmt.Errorf("write frozen header: %w", err)
	}
	for _, id := range identities {
		record := []string{id.FileName, id.PairSHA256, id.AudioSHA256, id.TranscriptSHA256}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write frozen row %s: %w", id.PairSHA256, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush frozen test set: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("commit frozen test set: %w", err)
	}
	return nil
}

// ReadFrozenCSV loads a frozen test-set artifact.
func ReadFrozenCSV(path string, version int) ([]FrozenIdentity, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frozen test set %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read frozen header %s: %w", path, err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, col := range frozenHeader {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("frozen test set %s missing column %q", path, col)
		}
	}

	var identities []FrozenIdentity
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frozen test set %s: %w", path, err)
		}
		identities = append(identities, FrozenIdentity{
			Version:          version,
			FileName:         record[index["file_name"]],
			PairSHA256:       record[index["pair_sha256"]],
			AudioSHA256:      record[index["audio_sha256"]],
			TranscriptSHA256: record[index["transcript_sha256"]],
		})
	}
	return identities, nil
}
