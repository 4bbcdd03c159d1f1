// Package inventory reads the per-file metadata table produced by the data
// inventory step.
//
// The table arrives as inventory_files.csv keyed by manifest_row_index. This
// package only parses and resolves it; audio probing, VAD, and transcript
// normalization belong to the upstream inventory tool. Samples are immutable
// once read.
package inventory
