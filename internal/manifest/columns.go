package manifest

// manifestColumns is the published manifest column order. Downstream training
// tooling indexes by name, but the order is part of the artifact contract.
var manifestColumns = []string{
	"dataset_version",
	"file_name",
	"source",
	"manifest_row_index",
	"audio_path_resolved",
	"duration_sec",
	"duration_bin",
	"transcript_raw",
	"transcript_len_chars",
	"transcript_len_words",
	"timestamp_ms",
	"recording_device",
	"audio_sha256",
	"transcript_sha256",
	"pair_sha256",
	"split",
	"duplicate_audio_flag",
}

var excludedColumns = []string{
	"file_name",
	"manifest_row_index",
	"excluded_reason",
	"audio_sha256",
	"transcript_sha256",
}
