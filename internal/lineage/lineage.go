package lineage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"voxver/internal/dataset"
	"voxver/internal/logging"
)

// ErrLineageViolation marks a build that would remove or relocate a frozen
// test identity.
var ErrLineageViolation = errors.New("lineage violation")

// Violation details which frozen identities a candidate test split fails to
// retain. It unwraps to ErrLineageViolation.
type Violation struct {
	Version int
	Missing []FrozenIdentity
}

func (v *Violation) Error() string {
	names := make([]string, 0, len(v.Missing))
	for i, id := range v.Missing {
		if i == 3 {
			names = append(names, fmt.Sprintf("and %d more", len(v.Missing)-3))
			break
		}
		names = append(names, fmt.Sprintf("%s (frozen in v%d)", shortHash(id.PairSHA256), id.Version))
	}
	return fmt.Sprintf("lineage violation: version %d test split is missing %d frozen identities: %s",
		v.Version, len(v.Missing), strings.Join(names, ", "))
}

func (v *Violation) Unwrap() error {
	return ErrLineageViolation
}

// Manager enforces cross-version test-set immutability, independent of the
// storage backend behind the registry.
type Manager struct {
	store  *Store
	logger *slog.Logger
}

// NewManager wires a lineage manager over the version registry.
func NewManager(store *Store, logger *slog.Logger) *Manager {
	return &Manager{store: store, logger: logging.WithComponent(logger, "lineage")}
}

// LoadPriorTestIdentities returns the union of every frozen version's test
// identities below the given version.
func (m *Manager) LoadPriorTestIdentities(ctx context.Context, version int) ([]FrozenIdentity, error) {
	identities, err := m.store.FrozenIdentitiesBefore(ctx, version)
	if err != nil {
		return nil, err
	}
	if m.logger != nil {
		m.logger.Debug("loaded prior frozen identities",
			slog.Int(logging.FieldVersion, version),
			slog.Int("prior_identities", len(identities)))
	}
	return identities, nil
}

// Validate asserts every prior frozen identity appears in the candidate test
// split. New identities may join freely; a missing or moved identity fails
// the build.
func (m *Manager) Validate(version int, candidateTest []dataset.Row, prior []FrozenIdentity) error {
	present := make(map[string]struct{}, len(candidateTest))
	for _, row := range candidateTest {
		if row.Split == dataset.SplitTest {
			present[row.PairSHA256] = struct{}{}
		}
	}

	var missing []FrozenIdentity
	seen := make(map[string]struct{}, len(prior))
	for _, id := range prior {
		if _, dup := seen[id.PairSHA256]; dup {
			continue
		}
		seen[id.PairSHA256] = struct{}{}
		if _, ok := present[id.PairSHA256]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		return &Violation{Version: version, Missing: missing}
	}
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
