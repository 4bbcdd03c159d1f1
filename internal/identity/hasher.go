package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"voxver/internal/inventory"
)

// ErrHashInputUnreadable marks audio bytes that could not be obtained. The
// failure propagates as a per-sample condition, not a batch abort.
var ErrHashInputUnreadable = errors.New("hash input unreadable")

// Identity holds the content-addressable identity of one audio/transcript pair.
// AudioSHA256 and PairSHA256 are empty when the audio bytes were unreadable.
type Identity struct {
	AudioSHA256      string
	TranscriptSHA256 string
	PairSHA256       string
	AudioErr         error
}

// Readable reports whether the audio half of the identity was computed.
func (id Identity) Readable() bool {
	return id.AudioErr == nil && id.AudioSHA256 != ""
}

// HashTranscript returns the SHA-256 digest of the UTF-8 transcript bytes.
func HashTranscript(transcript string) string {
	sum := sha256.Sum256([]byte(transcript))
	return hex.EncodeToString(sum[:])
}

// HashAudioFile streams the file through SHA-256 without buffering it whole.
func HashAudioFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrHashInputUnreadable, path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrHashInputUnreadable, path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// PairHash combines the two lowercase hex digests, audio first, and hashes the
// concatenation. Both inputs must already be lowercase hex.
func PairHash(audioSHA256, transcriptSHA256 string) string {
	sum := sha256.Sum256([]byte(audioSHA256 + transcriptSHA256))
	return hex.EncodeToString(sum[:])
}

// Options tunes parallel hashing.
type Options struct {
	// Workers bounds hashing concurrency; <=0 selects one worker per CPU.
	Workers int
	// OnProgress, when set, is invoked once per completed sample.
	OnProgress func(completed int)
}

// ComputeAll hashes every sample and returns identities positionally aligned
// with the input slice. Hashing is I/O bound and runs across a bounded worker
// pool; the results table is write-once per index so completion order is
// irrelevant. Unreadable audio yields an Identity with AudioErr set.
func ComputeAll(ctx context.Context, samples []inventory.Sample, opts Options) ([]Identity, error) {
	identities := make([]Identity, len(samples))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var completed atomic.Int64
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i := range samples {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			identities[i] = compute(samples[i])
			if opts.OnProgress != nil {
				opts.OnProgress(int(completed.Add(1)))
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return identities, nil
}

func compute(sample inventory.Sample) Identity {
	id := Identity{TranscriptSHA256: HashTranscript(sample.TranscriptRaw)}

	if !sample.AudioReadOK || sample.AudioPathResolved == "" {
		id.AudioErr = fmt.Errorf("%w: %s: marked unreadable by inventory", ErrHashInputUnreadable, sample.FileName)
		return id
	}

	audioSHA, err := HashAudioFile(sample.AudioPathResolved)
	if err != nil {
		id.AudioErr = err
		return id
	}

	id.AudioSHA256 = audioSHA
	id.PairSHA256 = PairHash(audioSHA, id.TranscriptSHA256)
	return id
}
