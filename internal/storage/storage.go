// Package storage defines the persistence contracts for campaign state.
package storage

import (
	"context"
	"time"

	"github.com/louisbranch/worldkeeper/internal/planning"
	apperrors "github.com/louisbranch/worldkeeper/internal/platform/errors"
	"github.com/louisbranch/worldkeeper/internal/registry"
	"github.com/louisbranch/worldkeeper/internal/world"
)

// ErrNotFound reports a missing record.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// Snapshot is one persisted world-state version.
type Snapshot struct {
	Version   uint64
	Document  []byte
	CreatedAt time.Time
}

// ArchivedSession records a combat session that reached a terminal phase.
type ArchivedSession struct {
	SessionID  string
	LocationID string
	Phase      string
	Outcome    string
	Rounds     int
	XPAwarded  int
	StartedAt  time.Time
	ArchivedAt time.Time
}

// SnapshotStore persists world-state snapshots by version.
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, snapshot Snapshot) error
	GetSnapshot(ctx context.Context, version uint64) (Snapshot, error)
	LatestSnapshot(ctx context.Context) (Snapshot, error)
}

// ChangelogStore persists the append-only change journal.
type ChangelogStore interface {
	AppendChange(ctx context.Context, entry world.ChangeEntry) error
	ListChanges(ctx context.Context, limit int) ([]world.ChangeEntry, error)
}

// CombatArchiveStore persists terminal combat sessions.
type CombatArchiveStore interface {
	ArchiveSession(ctx context.Context, session ArchivedSession) error
	ListArchivedSessions(ctx context.Context, locationID string) ([]ArchivedSession, error)
}

// RegistryStore persists issued entity identifiers.
type RegistryStore interface {
	PutEntity(ctx context.Context, entry registry.Entry) error
	ListEntities(ctx context.Context) ([]registry.Entry, error)
}

// PlanStore persists active planning freezes.
type PlanStore interface {
	PutPlan(ctx context.Context, plan planning.FrozenPlan) error
	DeletePlan(ctx context.Context, topicKey string) error
	ListPlans(ctx context.Context) ([]planning.FrozenPlan, error)
}

// Store is the full persistence surface the keeper service requires.
type Store interface {
	SnapshotStore
	ChangelogStore
	CombatArchiveStore
	RegistryStore
	PlanStore
	Close() error
}
