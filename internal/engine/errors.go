package engine

import (
	"errors"

	"voxver/internal/lineage"
)

// Sentinel errors for the three failure classes a build distinguishes.
// Everything else (I/O faults, registry corruption) reports as fatal.
var (
	// ErrConfig marks invalid configuration or options, detected before any
	// computation starts.
	ErrConfig = errors.New("invalid configuration")

	// ErrFatalInput marks unusable input: a missing or empty inventory, an
	// unreadable output directory, a frozen version being rebuilt.
	ErrFatalInput = errors.New("fatal input error")

	// ErrValidationFailed marks a build whose splits missed the size
	// minimums without an override. The registry entry stays in the
	// building state and no artifacts are written.
	ErrValidationFailed = errors.New("split validation failed")
)

// ExitCode maps a build error to the process exit status: 0 success,
// 2 validation failure, 1 everything else (fatal input, lineage violation,
// configuration).
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrValidationFailed):
		return 2
	default:
		return 1
	}
}

// IsLineageViolation reports whether the build failed because a frozen test
// identity went missing.
func IsLineageViolation(err error) bool {
	return errors.Is(err, lineage.ErrLineageViolation)
}
