package exclusion

import (
	"sort"
	"strings"

	"voxver/internal/dataset"
)

// rule pairs an exclusion reason with its predicate. Rules are evaluated
// top-to-bottom and the first match wins, so precedence lives in this one
// ordered list rather than scattered conditionals.
type rule struct {
	reason dataset.Reason
	match  func(dataset.Row) bool
}

var orderedRules = []rule{
	{dataset.ReasonAudioUnreadable, func(r dataset.Row) bool {
		return !r.AudioReadOK || !r.Readable()
	}},
	{dataset.ReasonZeroOrNullDuration, func(r dataset.Row) bool {
		return !r.DurationValid || r.DurationSec <= 0
	}},
	{dataset.ReasonBlankTranscript, func(r dataset.Row) bool {
		return r.TranscriptIsBlank || strings.TrimSpace(r.TranscriptRaw) == ""
	}},
	// duplicate_audio_transcript needs set context and is handled separately.
}

// Result carries the outcome of the exclusion filter.
type Result struct {
	Kept     []dataset.Row
	Excluded []dataset.Exclusion
}

// Apply partitions rows into kept and excluded sets. The per-row rules run in
// documented precedence order; among exact audio+transcript duplicates the
// lowest manifest_row_index survives, independent of input iteration order.
// Kept rows come back sorted by manifest_row_index.
func Apply(rows []dataset.Row) Result {
	ordered := make([]dataset.Row, len(rows))
	copy(ordered, rows)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ManifestRowIndex < ordered[j].ManifestRowIndex
	})

	var result Result
	seenPairs := make(map[string]struct{}, len(ordered))

next:
	for _, row := range ordered {
		for _, rule := range orderedRules {
			if rule.match(row) {
				result.Excluded = append(result.Excluded, exclude(row, rule.reason))
				continue next
			}
		}
		if _, dup := seenPairs[row.PairSHA256]; dup {
			result.Excluded = append(result.Excluded, exclude(row, dataset.ReasonDuplicatePair))
			continue
		}
		seenPairs[row.PairSHA256] = struct{}{}
		result.Kept = append(result.Kept, row)
	}

	return result
}

// FlagDuplicateAudio marks kept rows whose audio hash co-occurs with more
// than one distinct transcript hash. These rows stay in the dataset and are
// surfaced for manual review.
func FlagDuplicateAudio(rows []dataset.Row) int {
	transcriptsByAudio := make(map[string]map[string]struct{})
	for _, row := range rows {
		set, ok := transcriptsByAudio[row.AudioSHA256]
		if !ok {
			set = make(map[string]struct{}, 1)
			transcriptsByAudio[row.AudioSHA256] = set
		}
		set[row.TranscriptSHA256] = struct{}{}
	}

	flagged := 0
	for i := range rows {
		if len(transcriptsByAudio[rows[i].AudioSHA256]) > 1 {
			rows[i].DuplicateAudioFlag = true
			flagged++
		} else {
			rows[i].DuplicateAudioFlag = false
		}
	}
	return flagged
}

func exclude(row dataset.Row, reason dataset.Reason) dataset.Exclusion {
	return dataset.Exclusion{
		FileName:         row.FileName,
		ManifestRowIndex: row.ManifestRowIndex,
		Reason:           reason,
		AudioSHA256:      row.AudioSHA256,
		TranscriptSHA256: row.TranscriptSHA256,
	}
}
