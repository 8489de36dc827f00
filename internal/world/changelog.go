package world

import "time"

// AuthorKind identifies who produced a change.
type AuthorKind string

const (
	// AuthorExternal marks patches proposed by the external author (the LLM).
	AuthorExternal AuthorKind = "external"
	// AuthorSystem marks deterministic consequence patches the engine applies
	// itself (reward accounting, clock advances, decay ticks).
	AuthorSystem AuthorKind = "system"
	// AuthorRecovery marks out-of-band corrective scripts.
	AuthorRecovery AuthorKind = "recovery"
)

// ChangeEntry is one record in the append-only changelog. Together with the
// retained snapshots it makes every committed version auditable.
type ChangeEntry struct {
	// ID is a random identifier for the entry.
	ID string
	// Seq is the entry sequence within the campaign (starts at 1).
	Seq uint64
	// Author identifies who produced the change.
	Author AuthorKind
	// RequestID correlates the change with the external request that caused it.
	RequestID string
	// BaseVersion is the version the change was applied against.
	BaseVersion uint64
	// NewVersion is the version after the change.
	NewVersion uint64
	// PatchJSON is the applied patch document (or recovery script payload).
	PatchJSON []byte
	// Timestamp is when the change was committed (wall clock, audit only).
	Timestamp time.Time
}
