// Package identity computes content-addressable identities for audio and
// transcript pairs.
//
// Identity is a pure function of content: audio bytes are streamed through
// SHA-256, transcripts hash their UTF-8 encoding, and the pair identity hashes
// the concatenation of the two lowercase hex digests with the audio digest
// first. Re-running over unchanged bytes reproduces identical hashes.
package identity
