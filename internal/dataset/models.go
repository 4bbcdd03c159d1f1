package dataset

import (
	"voxver/internal/identity"
	"voxver/internal/inventory"
)

// Split identifies the partition a kept sample belongs to.
type Split string

const (
	SplitTrain Split = "train"
	SplitVal   Split = "val"
	SplitTest  Split = "test"
)

// Splits lists the partitions in canonical order.
func Splits() []Split {
	return []Split{SplitTrain, SplitVal, SplitTest}
}

// Reason is a single exclusion cause. Each excluded sample records exactly one.
type Reason string

const (
	ReasonAudioUnreadable    Reason = "audio_unreadable"
	ReasonZeroOrNullDuration Reason = "zero_or_null_duration"
	ReasonBlankTranscript    Reason = "blank_transcript"
	ReasonDuplicatePair      Reason = "duplicate_audio_transcript"
)

// Row couples an inventory sample with its computed identity and the labels
// the pipeline attaches on the way to the manifest.
type Row struct {
	inventory.Sample
	identity.Identity

	DurationBin        string
	Split              Split
	DuplicateAudioFlag bool
}

// Exclusion records one sample removed by the exclusion filter.
type Exclusion struct {
	FileName         string
	ManifestRowIndex int64
	Reason           Reason
	AudioSHA256      string
	TranscriptSHA256 string
}
