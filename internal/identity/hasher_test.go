package identity_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"voxver/internal/identity"
	"voxver/internal/inventory"
)

func writeAudio(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestHashTranscriptMatchesSHA256(t *testing.T) {
	want := sha256.Sum256([]byte("hello"))
	if got := identity.HashTranscript("hello"); got != hex.EncodeToString(want[:]) {
		t.Fatalf("unexpected transcript hash: %s", got)
	}
}

func TestPairHashPurity(t *testing.T) {
	dir := t.TempDir()
	path := writeAudio(t, dir, "a.wav", []byte{0x01, 0x02, 0x03})

	audioSHA, err := identity.HashAudioFile(path)
	if err != nil {
		t.Fatalf("HashAudioFile: %v", err)
	}
	transcriptSHA := identity.HashTranscript("hi")

	combined := sha256.Sum256([]byte(audioSHA + transcriptSHA))
	if got := identity.PairHash(audioSHA, transcriptSHA); got != hex.EncodeToString(combined[:]) {
		t.Fatalf("pair hash is not H(audio_hex ++ transcript_hex): %s", got)
	}

	// Changing one audio byte changes audio and pair hashes, not the transcript hash.
	path2 := writeAudio(t, dir, "b.wav", []byte{0x01, 0x02, 0x04})
	audioSHA2, err := identity.HashAudioFile(path2)
	if err != nil {
		t.Fatalf("HashAudioFile: %v", err)
	}
	if audioSHA2 == audioSHA {
		t.Fatal("audio hash should change with content")
	}
	if identity.PairHash(audioSHA2, transcriptSHA) == identity.PairHash(audioSHA, transcriptSHA) {
		t.Fatal("pair hash should change with audio content")
	}
	if identity.HashTranscript("hi") != transcriptSHA {
		t.Fatal("transcript hash must not depend on audio")
	}
}

func TestComputeAllAlignsResultsAndReportsProgress(t *testing.T) {
	dir := t.TempDir()
	samples := []inventory.Sample{
		{ManifestRowIndex: 0, FileName: "a.wav", AudioPathResolved: writeAudio(t, dir, "a.wav", []byte("aaa")), AudioReadOK: true, TranscriptRaw: "one"},
		{ManifestRowIndex: 1, FileName: "b.wav", AudioPathResolved: writeAudio(t, dir, "b.wav", []byte("bbb")), AudioReadOK: true, TranscriptRaw: "two"},
		{ManifestRowIndex: 2, FileName: "c.wav", AudioPathResolved: filepath.Join(dir, "missing.wav"), AudioReadOK: true, TranscriptRaw: "three"},
	}

	var ticks atomic.Int64
	identities, err := identity.ComputeAll(context.Background(), samples, identity.Options{
		Workers:    2,
		OnProgress: func(int) { ticks.Add(1) },
	})
	if err != nil {
		t.Fatalf("ComputeAll: %v", err)
	}
	if len(identities) != 3 {
		t.Fatalf("expected 3 identities, got %d", len(identities))
	}
	if ticks.Load() != 3 {
		t.Fatalf("expected 3 progress ticks, got %d", ticks.Load())
	}

	for i := range samples[:2] {
		if !identities[i].Readable() {
			t.Fatalf("sample %d should be readable: %+v", i, identities[i])
		}
		wantAudio, err := identity.HashAudioFile(samples[i].AudioPathResolved)
		if err != nil {
			t.Fatalf("rehash: %v", err)
		}
		if identities[i].AudioSHA256 != wantAudio {
			t.Fatalf("identity %d misaligned with sample order", i)
		}
	}

	missing := identities[2]
	if missing.Readable() {
		t.Fatal("missing audio should not be readable")
	}
	if !errors.Is(missing.AudioErr, identity.ErrHashInputUnreadable) {
		t.Fatalf("expected ErrHashInputUnreadable, got %v", missing.AudioErr)
	}
	if missing.TranscriptSHA256 == "" {
		t.Fatal("transcript hash must still be computed for unreadable audio")
	}
	if missing.PairSHA256 != "" {
		t.Fatal("pair hash must be empty when audio is unreadable")
	}
}

func TestComputeAllMarksInventoryUnreadable(t *testing.T) {
	samples := []inventory.Sample{{ManifestRowIndex: 0, FileName: "a.wav", AudioReadOK: false}}
	identities, err := identity.ComputeAll(context.Background(), samples, identity.Options{})
	if err != nil {
		t.Fatalf("ComputeAll: %v", err)
	}
	if identities[0].Readable() {
		t.Fatal("inventory-flagged unreadable audio must stay unreadable")
	}
}

func TestComputeAllDeterministic(t *testing.T) {
	dir := t.TempDir()
	var samples []inventory.Sample
	for _, name := range []string{"a", "b", "c", "d"} {
		samples = append(samples, inventory.Sample{
			FileName:          name + ".wav",
			AudioPathResolved: writeAudio(t, dir, name+".wav", []byte(name+name)),
			AudioReadOK:       true,
			TranscriptRaw:     name,
		})
	}

	first, err := identity.ComputeAll(context.Background(), samples, identity.Options{Workers: 4})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := identity.ComputeAll(context.Background(), samples, identity.Options{Workers: 1})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for i := range first {
		if first[i].PairSHA256 != second[i].PairSHA256 {
			t.Fatalf("identity %d differs across runs", i)
		}
	}
}
