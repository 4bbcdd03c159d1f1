package lineage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current registry schema version. Bump when the schema
// changes; the registry refuses to open databases written by other versions.
const schemaVersion = 1

// ErrSchemaMismatch indicates the registry database schema version doesn't
// match the expected version.
var ErrSchemaMismatch = errors.New("registry schema version mismatch")

// State is the lifecycle state of one dataset version.
type State string

const (
	StateBuilding  State = "building"
	StateValidated State = "validated"
	StateFrozen    State = "frozen"
)

// ErrIllegalTransition indicates a version state change that the lifecycle
// does not permit.
var ErrIllegalTransition = errors.New("illegal version state transition")

// VersionRecord is one row of the dataset_versions table.
type VersionRecord struct {
	Version      int
	State        State
	RunID        string
	ManifestPath string
	FrozenPath   string
	SummaryJSON  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store persists dataset version lifecycle state and frozen test identities
// in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the version registry database.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure registry directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open registry db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the registry database location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create registry schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read registry schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

// BeginVersion records a version entering the building state. Rebuilding a
// non-frozen version is allowed and resets its record; a frozen version is
// immutable and may never be rebuilt.
func (s *Store) BeginVersion(ctx context.Context, version int, runID string) (*VersionRecord, error) {
	existing, err := s.GetVersion(ctx, version)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.State == StateFrozen {
		return nil, fmt.Errorf("%w: version %d is frozen and immutable", ErrIllegalTransition, version)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if existing == nil {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO dataset_versions (version, state, run_id, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?)`,
			version, StateBuilding, runID, now, now,
		)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE dataset_versions
             SET state = ?, run_id = ?, manifest_path = NULL, frozen_path = NULL,
                 summary_json = NULL, updated_at = ?
             WHERE version = ?`,
			StateBuilding, runID, now, version,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("begin version %d: %w", version, err)
	}
	return s.GetVersion(ctx, version)
}

// MarkValidated advances a building version to validated.
func (s *Store) MarkValidated(ctx context.Context, version int, summaryJSON string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE dataset_versions SET state = ?, summary_json = ?, updated_at = ?
         WHERE version = ? AND state = ?`,
		StateValidated, summaryJSON, time.Now().UTC().Format(time.RFC3339Nano),
		version, StateBuilding,
	)
	if err != nil {
		return fmt.Errorf("mark version %d validated: %w", version, err)
	}
	return s.requireTransition(res, version, StateValidated)
}

// Finalize freezes a validated version: the frozen test identities are
// persisted in the same transaction that flips the state, so a frozen record
// always carries its complete identity set.
func (s *Store) Finalize(ctx context.Context, version int, manifestPath, frozenPath string, identities []FrozenIdentity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin finalize tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE dataset_versions SET state = ?, manifest_path = ?, frozen_path = ?, updated_at = ?
         WHERE version = ? AND state = ?`,
		StateFrozen, manifestPath, frozenPath, time.Now().UTC().Format(time.RFC3339Nano),
		version, StateValidated,
	)
	if err != nil {
		return fmt.Errorf("freeze version %d: %w", version, err)
	}
	if err := s.requireTransition(res, version, StateFrozen); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM frozen_test_identities WHERE version = ?`, version); err != nil {
		return fmt.Errorf("clear stale identities for version %d: %w", version, err)
	}
	for _, id := range identities {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO frozen_test_identities (version, pair_sha256, audio_sha256, transcript_sha256, file_name)
             VALUES (?, ?, ?, ?, ?)`,
			version, id.PairSHA256, id.AudioSHA256, id.TranscriptSHA256, id.FileName,
		); err != nil {
			return fmt.Errorf("insert frozen identity %s: %w", id.PairSHA256, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit finalize: %w", err)
	}
	return nil
}

func (s *Store) requireTransition(res sql.Result, version int, target State) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: version %d cannot move to %s from its current state", ErrIllegalTransition, version, target)
	}
	return nil
}

// GetVersion fetches one version record, or nil when absent.
func (s *Store) GetVersion(ctx context.Context, version int) (*VersionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT version, state, run_id, manifest_path, frozen_path, summary_json, created_at, updated_at
         FROM dataset_versions WHERE version = ?`, version)
	record, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get version %d: %w", version, err)
	}
	return record, nil
}

// ListVersions returns all version records ordered by version number.
func (s *Store) ListVersions(ctx context.Context) ([]*VersionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT version, state, run_id, manifest_path, frozen_path, summary_json, created_at, updated_at
         FROM dataset_versions ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var records []*VersionRecord
	for rows.Next() {
		record, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// FrozenIdentitiesBefore returns the union of frozen test identities across
// every frozen version strictly below the given version, ordered by version
// then pair hash.
func (s *Store) FrozenIdentitiesBefore(ctx context.Context, version int) ([]FrozenIdentity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.version, f.pair_sha256, f.audio_sha256, f.transcript_sha256, f.file_name
         FROM frozen_test_identities f
         JOIN dataset_versions v ON v.version = f.version
         WHERE f.version < ? AND v.state = ?
         ORDER BY f.version, f.pair_sha256`,
		version, StateFrozen)
	if err != nil {
		return nil, fmt.Errorf("load frozen identities before v%d: %w", version, err)
	}
	defer rows.Close()

	var identities []FrozenIdentity
	for rows.Next() {
		var id FrozenIdentity
		if err := rows.Scan(&id.Version, &id.PairSHA256, &id.AudioSHA256, &id.TranscriptSHA256, &id.FileName); err != nil {
			return nil, err
		}
		identities = append(identities, id)
	}
	return identities, rows.Err()
}

func scanVersion(scanner interface{ Scan(dest ...any) error }) (*VersionRecord, error) {
	var (
		version      int
		state        string
		runID        sql.NullString
		manifestPath sql.NullString
		frozenPath   sql.NullString
		summaryJSON  sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(&version, &state, &runID, &manifestPath, &frozenPath, &summaryJSON, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	record := &VersionRecord{
		Version:      version,
		State:        State(state),
		RunID:        runID.String,
		ManifestPath: manifestPath.String,
		FrozenPath:   frozenPath.String,
		SummaryJSON:  summaryJSON.String,
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		record.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}
