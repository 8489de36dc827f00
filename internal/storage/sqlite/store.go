// Package sqlite implements campaign persistence over SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbranch/worldkeeper/internal/planning"
	"github.com/louisbranch/worldkeeper/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/worldkeeper/internal/registry"
	"github.com/louisbranch/worldkeeper/internal/storage"
	"github.com/louisbranch/worldkeeper/internal/storage/sqlite/migrations"
	"github.com/louisbranch/worldkeeper/internal/world"
)

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store implements storage.Store over a single SQLite file. One file backs
// the whole campaign so snapshots, journal, and registry share visibility
// boundaries.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

// Open opens a campaign SQLite store and applies bundled migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutSnapshot persists one world-state version. Re-persisting the same
// version overwrites it, which keeps restarts after partial writes safe.
func (s *Store) PutSnapshot(ctx context.Context, snapshot storage.Snapshot) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO snapshots (version, document, created_at)
VALUES (?, ?, ?)
ON CONFLICT(version) DO UPDATE SET document = excluded.document, created_at = excluded.created_at
`,
		snapshot.Version,
		string(snapshot.Document),
		toMillis(snapshot.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// GetSnapshot loads the snapshot stored at the given version.
func (s *Store) GetSnapshot(ctx context.Context, version uint64) (storage.Snapshot, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT version, document, created_at FROM snapshots WHERE version = ?
`, version)
	return scanSnapshot(row)
}

// LatestSnapshot loads the highest persisted version.
func (s *Store) LatestSnapshot(ctx context.Context) (storage.Snapshot, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT version, document, created_at FROM snapshots ORDER BY version DESC LIMIT 1
`)
	return scanSnapshot(row)
}

func scanSnapshot(row *sql.Row) (storage.Snapshot, error) {
	var snapshot storage.Snapshot
	var document string
	var createdAt int64
	if err := row.Scan(&snapshot.Version, &document, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Snapshot{}, storage.ErrNotFound
		}
		return storage.Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}
	snapshot.Document = []byte(document)
	snapshot.CreatedAt = fromMillis(createdAt)
	return snapshot, nil
}

// AppendChange persists one journal entry.
func (s *Store) AppendChange(ctx context.Context, entry world.ChangeEntry) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO changelog (seq, id, author, request_id, base_version, new_version, patch_json, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		entry.Seq,
		entry.ID,
		string(entry.Author),
		entry.RequestID,
		entry.BaseVersion,
		entry.NewVersion,
		string(entry.PatchJSON),
		toMillis(entry.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("append change: %w", err)
	}
	return nil
}

// ListChanges returns up to limit most recent entries, oldest first. A
// non-positive limit returns everything.
func (s *Store) ListChanges(ctx context.Context, limit int) ([]world.ChangeEntry, error) {
	query := `
SELECT seq, id, author, request_id, base_version, new_version, patch_json, created_at
FROM (
    SELECT * FROM changelog ORDER BY seq DESC LIMIT ?
) ORDER BY seq ASC
`
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.sqlDB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	defer rows.Close()

	var entries []world.ChangeEntry
	for rows.Next() {
		var entry world.ChangeEntry
		var author string
		var patchJSON string
		var createdAt int64
		if err := rows.Scan(&entry.Seq, &entry.ID, &author, &entry.RequestID,
			&entry.BaseVersion, &entry.NewVersion, &patchJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		entry.Author = world.AuthorKind(author)
		entry.PatchJSON = []byte(patchJSON)
		entry.Timestamp = fromMillis(createdAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ArchiveSession persists a terminal combat session.
func (s *Store) ArchiveSession(ctx context.Context, session storage.ArchivedSession) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO combat_archive (session_id, location_id, phase, outcome, rounds, xp_awarded, started_at, archived_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO NOTHING
`,
		session.SessionID,
		session.LocationID,
		session.Phase,
		session.Outcome,
		session.Rounds,
		session.XPAwarded,
		toMillis(session.StartedAt),
		toMillis(session.ArchivedAt),
	)
	if err != nil {
		return fmt.Errorf("archive session: %w", err)
	}
	return nil
}

// ListArchivedSessions returns archived sessions, newest first. An empty
// locationID returns all locations.
func (s *Store) ListArchivedSessions(ctx context.Context, locationID string) ([]storage.ArchivedSession, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT session_id, location_id, phase, outcome, rounds, xp_awarded, started_at, archived_at
FROM combat_archive
WHERE (?1 = '' OR location_id = ?1)
ORDER BY archived_at DESC
`, locationID)
	if err != nil {
		return nil, fmt.Errorf("list archived sessions: %w", err)
	}
	defer rows.Close()

	var sessions []storage.ArchivedSession
	for rows.Next() {
		var session storage.ArchivedSession
		var startedAt, archivedAt int64
		if err := rows.Scan(&session.SessionID, &session.LocationID, &session.Phase,
			&session.Outcome, &session.Rounds, &session.XPAwarded, &startedAt, &archivedAt); err != nil {
			return nil, fmt.Errorf("scan archived session: %w", err)
		}
		session.StartedAt = fromMillis(startedAt)
		session.ArchivedAt = fromMillis(archivedAt)
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// PutEntity persists an issued identifier. Soft-delete flips are updates on
// the same row; identifiers themselves never change.
func (s *Store) PutEntity(ctx context.Context, entry registry.Entry) error {
	deleted := 0
	if entry.Deleted {
		deleted = 1
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO registry_entities (id, prefix, display_name, slug, seq, deleted, issued_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name, deleted = excluded.deleted
`,
		entry.ID,
		entry.Kind.Prefix(),
		entry.DisplayName,
		entry.Slug,
		entry.Seq,
		deleted,
		toMillis(entry.IssuedAt),
	)
	if err != nil {
		return fmt.Errorf("put entity: %w", err)
	}
	return nil
}

// ListEntities returns every issued identifier, including soft-deleted ones.
func (s *Store) ListEntities(ctx context.Context) ([]registry.Entry, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, prefix, display_name, slug, seq, deleted, issued_at FROM registry_entities ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	var entries []registry.Entry
	for rows.Next() {
		var entry registry.Entry
		var prefix string
		var deleted int
		var issuedAt int64
		if err := rows.Scan(&entry.ID, &prefix, &entry.DisplayName, &entry.Slug,
			&entry.Seq, &deleted, &issuedAt); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		entry.Kind = registry.KindFromPrefix(prefix)
		entry.Deleted = deleted != 0
		entry.IssuedAt = fromMillis(issuedAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// PutPlan persists an active planning freeze.
func (s *Store) PutPlan(ctx context.Context, plan planning.FrozenPlan) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO frozen_plans (topic_key, failed_at, freeze_until, original_difficulty)
VALUES (?, ?, ?, ?)
ON CONFLICT(topic_key) DO UPDATE SET
    failed_at = excluded.failed_at,
    freeze_until = excluded.freeze_until,
    original_difficulty = excluded.original_difficulty
`,
		plan.TopicKey,
		toMillis(plan.FailedAt),
		toMillis(plan.FreezeUntil),
		plan.OriginalDifficulty,
	)
	if err != nil {
		return fmt.Errorf("put plan: %w", err)
	}
	return nil
}

// DeletePlan removes a freeze that expired or was broken early.
func (s *Store) DeletePlan(ctx context.Context, topicKey string) error {
	_, err := s.sqlDB.ExecContext(ctx, `DELETE FROM frozen_plans WHERE topic_key = ?`, topicKey)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

// ListPlans returns the persisted freezes.
func (s *Store) ListPlans(ctx context.Context) ([]planning.FrozenPlan, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT topic_key, failed_at, freeze_until, original_difficulty FROM frozen_plans ORDER BY topic_key
`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []planning.FrozenPlan
	for rows.Next() {
		var plan planning.FrozenPlan
		var failedAt, freezeUntil int64
		if err := rows.Scan(&plan.TopicKey, &failedAt, &freezeUntil, &plan.OriginalDifficulty); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plan.FailedAt = fromMillis(failedAt)
		plan.FreezeUntil = fromMillis(freezeUntil)
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}
