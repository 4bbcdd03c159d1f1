package exclusion_test

import (
	"testing"

	"voxver/internal/dataset"
	"voxver/internal/exclusion"
	"voxver/internal/identity"
	"voxver/internal/inventory"
)

func row(index int64, opts func(*dataset.Row)) dataset.Row {
	r := dataset.Row{
		Sample: inventory.Sample{
			ManifestRowIndex: index,
			FileName:         "sample.wav",
			AudioReadOK:      true,
			DurationSec:      2.0,
			DurationValid:    true,
			TranscriptRaw:    "text",
		},
		Identity: identity.Identity{
			AudioSHA256:      "audio",
			TranscriptSHA256: "transcript",
			PairSHA256:       "pair",
		},
	}
	if opts != nil {
		opts(&r)
	}
	return r
}

func uniqueRow(index int64, pair string) dataset.Row {
	return row(index, func(r *dataset.Row) {
		r.AudioSHA256 = "audio-" + pair
		r.PairSHA256 = pair
	})
}

func TestApplyPrecedenceFirstMatchWins(t *testing.T) {
	// Row violates every rule at once; only the first reason may be recorded.
	bad := row(0, func(r *dataset.Row) {
		r.AudioReadOK = false
		r.AudioSHA256 = ""
		r.PairSHA256 = ""
		r.DurationValid = false
		r.TranscriptRaw = ""
		r.TranscriptIsBlank = true
	})

	result := exclusion.Apply([]dataset.Row{bad})
	if len(result.Kept) != 0 || len(result.Excluded) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Excluded[0].Reason != dataset.ReasonAudioUnreadable {
		t.Fatalf("expected first-matching rule, got %s", result.Excluded[0].Reason)
	}
}

func TestApplyReasonPerRule(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*dataset.Row)
		want   dataset.Reason
	}{
		{"unreadable", func(r *dataset.Row) { r.AudioReadOK = false }, dataset.ReasonAudioUnreadable},
		{"null duration", func(r *dataset.Row) { r.DurationValid = false }, dataset.ReasonZeroOrNullDuration},
		{"zero duration", func(r *dataset.Row) { r.DurationSec = 0 }, dataset.ReasonZeroOrNullDuration},
		{"negative duration", func(r *dataset.Row) { r.DurationSec = -1 }, dataset.ReasonZeroOrNullDuration},
		{"blank transcript", func(r *dataset.Row) { r.TranscriptIsBlank = true }, dataset.ReasonBlankTranscript},
		{"whitespace transcript", func(r *dataset.Row) { r.TranscriptRaw = "  \t" }, dataset.ReasonBlankTranscript},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := exclusion.Apply([]dataset.Row{row(0, tc.mutate)})
			if len(result.Excluded) != 1 {
				t.Fatalf("expected exclusion, got %+v", result)
			}
			if result.Excluded[0].Reason != tc.want {
				t.Fatalf("got reason %s want %s", result.Excluded[0].Reason, tc.want)
			}
		})
	}
}

func TestApplyDuplicatesKeepLowestRowIndex(t *testing.T) {
	// Present out of order on purpose: tie-break must use row index, not input order.
	rows := []dataset.Row{
		row(7, nil),
		row(3, nil),
		row(5, nil),
	}

	result := exclusion.Apply(rows)
	if len(result.Kept) != 1 {
		t.Fatalf("expected 1 kept, got %d", len(result.Kept))
	}
	if result.Kept[0].ManifestRowIndex != 3 {
		t.Fatalf("expected lowest row index kept, got %d", result.Kept[0].ManifestRowIndex)
	}
	for _, ex := range result.Excluded {
		if ex.Reason != dataset.ReasonDuplicatePair {
			t.Fatalf("unexpected reason %s", ex.Reason)
		}
	}
}

func TestApplyScenarioTenSamplesFiveDuplicates(t *testing.T) {
	var rows []dataset.Row
	for i := int64(0); i < 5; i++ {
		rows = append(rows, uniqueRow(i, string(rune('a'+i))))
	}
	// Five exact duplicates of the first five.
	for i := int64(5); i < 10; i++ {
		rows = append(rows, uniqueRow(i, string(rune('a'+i-5))))
	}

	result := exclusion.Apply(rows)
	if len(result.Kept) != 5 {
		t.Fatalf("expected 5 kept, got %d", len(result.Kept))
	}
	if len(result.Excluded) != 5 {
		t.Fatalf("expected 5 excluded, got %d", len(result.Excluded))
	}
	for _, ex := range result.Excluded {
		if ex.Reason != dataset.ReasonDuplicatePair {
			t.Fatalf("expected duplicate_audio_transcript, got %s", ex.Reason)
		}
		if ex.ManifestRowIndex < 5 {
			t.Fatalf("originals must be kept, excluded row %d", ex.ManifestRowIndex)
		}
	}
}

func TestApplyOrderIndependentMembership(t *testing.T) {
	build := func() []dataset.Row {
		return []dataset.Row{
			uniqueRow(0, "x"),
			uniqueRow(1, "y"),
			uniqueRow(2, "x"),
			row(3, func(r *dataset.Row) { r.AudioReadOK = false }),
		}
	}

	forward := exclusion.Apply(build())

	reversed := build()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	backward := exclusion.Apply(reversed)

	if len(forward.Kept) != len(backward.Kept) {
		t.Fatalf("kept counts differ: %d vs %d", len(forward.Kept), len(backward.Kept))
	}
	for i := range forward.Kept {
		if forward.Kept[i].ManifestRowIndex != backward.Kept[i].ManifestRowIndex {
			t.Fatalf("kept membership depends on input order")
		}
	}
}

func TestFlagDuplicateAudioKeepsRows(t *testing.T) {
	rows := []dataset.Row{
		row(0, func(r *dataset.Row) { r.AudioSHA256 = "same"; r.TranscriptSHA256 = "t1"; r.PairSHA256 = "p1" }),
		row(1, func(r *dataset.Row) { r.AudioSHA256 = "same"; r.TranscriptSHA256 = "t2"; r.PairSHA256 = "p2" }),
		row(2, func(r *dataset.Row) { r.AudioSHA256 = "other"; r.TranscriptSHA256 = "t3"; r.PairSHA256 = "p3" }),
	}

	result := exclusion.Apply(rows)
	if len(result.Kept) != 3 {
		t.Fatalf("duplicate audio with different transcript must not be excluded, kept=%d", len(result.Kept))
	}

	flagged := exclusion.FlagDuplicateAudio(result.Kept)
	if flagged != 2 {
		t.Fatalf("expected 2 flagged rows, got %d", flagged)
	}
	if !result.Kept[0].DuplicateAudioFlag || !result.Kept[1].DuplicateAudioFlag {
		t.Fatal("rows sharing audio should be flagged")
	}
	if result.Kept[2].DuplicateAudioFlag {
		t.Fatal("unique audio should not be flagged")
	}
}
