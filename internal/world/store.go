package world

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	apperrors "github.com/louisbranch/worldkeeper/internal/platform/errors"
	"github.com/louisbranch/worldkeeper/internal/platform/id"
)

// Store holds the authoritative state for one campaign. Mutation is
// synchronous and single-writer: a patch is fully applied or fully rejected
// before the next is accepted. Callers serialize access.
type Store struct {
	schema  *Schema
	current State
	history map[uint64]State
	log     []ChangeEntry
}

// NewStore creates a store with an empty state at version zero.
func NewStore(schema *Schema) *Store {
	if schema == nil {
		schema = DefaultSchema()
	}
	initial := NewState()
	return &Store{
		schema:  schema,
		current: initial,
		history: map[uint64]State{0: initial},
	}
}

// Current returns the latest committed snapshot.
func (s *Store) Current() State {
	return s.current
}

// At returns the snapshot committed at the given version.
func (s *Store) At(version uint64) (State, error) {
	state, ok := s.history[version]
	if !ok {
		return State{}, apperrors.WithMetadata(apperrors.CodeNotFound,
			fmt.Sprintf("no snapshot at version %d", version),
			map[string]string{"version": strconv.FormatUint(version, 10)})
	}
	return state, nil
}

// Changelog returns up to limit most recent change entries, oldest first.
// A non-positive limit returns the full log.
func (s *Store) Changelog(limit int) []ChangeEntry {
	entries := s.log
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]ChangeEntry, len(entries))
	copy(out, entries)
	return out
}

// Apply merges a patch into the current state. On success the version
// increments by exactly one, the previous snapshot remains reachable, and a
// changelog entry records the change. On failure nothing is committed.
func (s *Store) Apply(patch Patch, author AuthorKind, requestID string, now time.Time) (State, ChangeEntry, error) {
	if len(patch.Document) == 0 {
		return State{}, ChangeEntry{}, ErrEmptyPatch
	}
	if patch.BaseVersion != s.current.Version {
		return State{}, ChangeEntry{}, apperrors.WithMetadata(apperrors.CodeStaleVersion,
			"patch submitted against a stale game state version",
			map[string]string{
				"submitted_version": strconv.FormatUint(patch.BaseVersion, 10),
				"current_version":   strconv.FormatUint(s.current.Version, 10),
			})
	}

	next := s.current.Clone()
	for domain, value := range patch.Document {
		if !isKnownDomain(domain) {
			return State{}, ChangeEntry{}, apperrors.WithMetadata(apperrors.CodeUnknownDomain,
				fmt.Sprintf("unrecognized top-level domain %q", domain),
				map[string]string{"domain": domain})
		}
		doc, ok := value.(map[string]any)
		if !ok {
			// Top-level domains may never be replaced or deleted wholesale.
			return State{}, ChangeEntry{}, schemaViolation([]string{domain},
				fmt.Sprintf("domain %s must be patched with an object, got %T", domain, value))
		}
		if err := applyDocument(s.schema, next.Tree[domain], doc, []string{domain}); err != nil {
			return State{}, ChangeEntry{}, err
		}
	}

	patchJSON, err := json.Marshal(patch.Document)
	if err != nil {
		return State{}, ChangeEntry{}, fmt.Errorf("marshal patch document: %w", err)
	}
	entry, err := s.commit(next, patchJSON, author, requestID, now)
	if err != nil {
		return State{}, ChangeEntry{}, err
	}
	return s.current, entry, nil
}

// ReplaceDocument swaps the full tree for a recovery-corrected document. It
// shares commit semantics with Apply: version bump, snapshot retention, and
// a changelog entry attributed to the recovery author.
func (s *Store) ReplaceDocument(doc []byte, requestID string, now time.Time) (State, ChangeEntry, error) {
	var tree map[string]map[string]any
	if err := json.Unmarshal(doc, &tree); err != nil {
		return State{}, ChangeEntry{}, apperrors.Wrap(apperrors.CodeRecoveryMalformedScript,
			"recovery document is not a valid state tree", err)
	}
	for domain := range tree {
		if !isKnownDomain(domain) {
			return State{}, ChangeEntry{}, apperrors.WithMetadata(apperrors.CodeUnknownDomain,
				fmt.Sprintf("unrecognized top-level domain %q", domain),
				map[string]string{"domain": domain})
		}
	}

	next := NewState()
	next.Version = s.current.Version
	for domain, value := range tree {
		next.Tree[domain] = value
	}

	entry, err := s.commit(next, append([]byte(nil), doc...), AuthorRecovery, requestID, now)
	if err != nil {
		return State{}, ChangeEntry{}, err
	}
	return s.current, entry, nil
}

// Restore seeds the store from a persisted snapshot, e.g. at service start.
func (s *Store) Restore(state State) {
	s.current = state.Clone()
	s.history[state.Version] = s.current
}

func (s *Store) commit(next State, patchJSON []byte, author AuthorKind, requestID string, now time.Time) (ChangeEntry, error) {
	entryID, err := id.NewID()
	if err != nil {
		return ChangeEntry{}, fmt.Errorf("generate change id: %w", err)
	}

	next.Version = s.current.Version + 1
	entry := ChangeEntry{
		ID:          entryID,
		Seq:         uint64(len(s.log)) + 1,
		Author:      author,
		RequestID:   requestID,
		BaseVersion: s.current.Version,
		NewVersion:  next.Version,
		PatchJSON:   patchJSON,
		Timestamp:   now.UTC(),
	}

	s.current = next
	s.history[next.Version] = next
	s.log = append(s.log, entry)
	return entry, nil
}

// Get resolves a dot-path across domains against the current snapshot.
func (s *Store) Get(path string) (gjson.Result, error) {
	doc, err := s.SnapshotJSON()
	if err != nil {
		return gjson.Result{}, err
	}
	result := gjson.GetBytes(doc, path)
	if !result.Exists() {
		return gjson.Result{}, apperrors.WithMetadata(apperrors.CodePathNotFound,
			fmt.Sprintf("path %s not found", path),
			map[string]string{"path": path})
	}
	return result, nil
}

// SnapshotJSON serializes the current snapshot tree. Deleted keys are absent
// from the output, not null.
func (s *Store) SnapshotJSON() ([]byte, error) {
	doc, err := json.Marshal(s.current.Tree)
	if err != nil {
		return nil, fmt.Errorf("marshal state tree: %w", err)
	}
	return doc, nil
}
