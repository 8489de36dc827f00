// Package keeper orchestrates campaign turns. It owns the authoritative
// world store and applies the deterministic consequences of external
// decisions: patches, combat resolution, rewards, freezes, and recovery.
package keeper

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/worldkeeper/internal/combat"
	"github.com/louisbranch/worldkeeper/internal/planning"
	apperrors "github.com/louisbranch/worldkeeper/internal/platform/errors"
	"github.com/louisbranch/worldkeeper/internal/platform/id"
	"github.com/louisbranch/worldkeeper/internal/recovery"
	"github.com/louisbranch/worldkeeper/internal/registry"
	"github.com/louisbranch/worldkeeper/internal/reputation"
	"github.com/louisbranch/worldkeeper/internal/storage"
	"github.com/louisbranch/worldkeeper/internal/world"
)

const tracerName = "github.com/louisbranch/worldkeeper/internal/keeper"

// Service is the single writer for one campaign. Every mutation runs under
// its mutex, so a turn is fully applied or fully rejected before the next
// request is admitted.
type Service struct {
	mu       sync.Mutex
	world    *world.Store
	registry *registry.Registry
	planner  *planning.Tracker
	resolver *reputation.Resolver
	session  *combat.Session
	// persist is optional; a nil store keeps the campaign in memory only.
	persist storage.Store
	tracer  trace.Tracer
}

// New creates a campaign service. Pass a nil store for ephemeral campaigns.
func New(persist storage.Store) *Service {
	return &Service{
		world:    world.NewStore(nil),
		registry: registry.New(),
		planner:  planning.NewTracker(),
		resolver: &reputation.Resolver{},
		persist:  persist,
		tracer:   otel.Tracer(tracerName),
	}
}

// Load restores the campaign from persistence. A store with no snapshot
// yet leaves the fresh in-memory state in place.
func (s *Service) Load(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.persist.LatestSnapshot(ctx)
	switch {
	case err == nil:
		state, err := stateFromSnapshot(snapshot)
		if err != nil {
			return err
		}
		s.world.Restore(state)
	case apperrors.Is(err, apperrors.CodeNotFound):
		// First boot for this campaign.
	default:
		return fmt.Errorf("load latest snapshot: %w", err)
	}

	entities, err := s.persist.ListEntities(ctx)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	s.registry.Restore(entities)

	plans, err := s.persist.ListPlans(ctx)
	if err != nil {
		return fmt.Errorf("load frozen plans: %w", err)
	}
	s.planner.Restore(plans)
	return nil
}

// ApplyPatch applies an external patch as one atomic turn: referenced entity
// identifiers are adopted into the registry, the patch is merged, and the new
// snapshot plus journal entry are persisted.
func (s *Service) ApplyPatch(ctx context.Context, patch world.Patch) (world.State, world.ChangeEntry, error) {
	ctx, span := s.tracer.Start(ctx, "keeper.ApplyPatch",
		trace.WithAttributes(attribute.Int64("base_version", int64(patch.BaseVersion))))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.adoptEntities(ctx, patch.Document); err != nil {
		return world.State{}, world.ChangeEntry{}, err
	}

	requestID, err := id.NewID()
	if err != nil {
		return world.State{}, world.ChangeEntry{}, fmt.Errorf("generate request id: %w", err)
	}
	state, entry, err := s.world.Apply(patch, world.AuthorExternal, requestID, time.Now())
	if err != nil {
		return world.State{}, world.ChangeEntry{}, err
	}
	if err := s.persistChange(ctx, state, entry); err != nil {
		return world.State{}, world.ChangeEntry{}, err
	}
	span.SetAttributes(attribute.Int64("new_version", int64(state.Version)))
	return state, entry, nil
}

// Get resolves a dot-path against the current snapshot.
func (s *Service) Get(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := s.world.Get(path)
	if err != nil {
		return "", err
	}
	return result.Raw, nil
}

// Snapshot returns the current snapshot document and its version.
func (s *Service) Snapshot() (uint64, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.world.SnapshotJSON()
	if err != nil {
		return 0, nil, err
	}
	return s.world.Current().Version, doc, nil
}

// SnapshotAt returns the snapshot document stored at a prior version.
func (s *Service) SnapshotAt(version uint64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.world.At(version)
	if err != nil {
		return nil, err
	}
	return marshalState(state)
}

// Changelog returns up to limit most recent journal entries, oldest first.
func (s *Service) Changelog(limit int) []world.ChangeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Changelog(limit)
}

// RegisterEntity issues an identifier for a new game object.
func (s *Service) RegisterEntity(ctx context.Context, kind registry.Kind, displayName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entityID, err := s.registry.Register(kind, displayName, time.Now())
	if err != nil {
		return "", err
	}
	s.persistEntities(ctx)
	return entityID, nil
}

// ValidateReference reports whether an identifier is known to the registry.
func (s *Service) ValidateReference(entityID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.ValidateReference(entityID)
}

// ApplyRecovery applies a GOD_MODE_SET correction script to the current
// snapshot and commits the corrected document as a new version.
func (s *Service) ApplyRecovery(ctx context.Context, script string) (world.State, error) {
	ctx, span := s.tracer.Start(ctx, "keeper.ApplyRecovery")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	ops, err := recovery.ParseScript(script)
	if err != nil {
		return world.State{}, err
	}
	snapshot, err := s.world.SnapshotJSON()
	if err != nil {
		return world.State{}, err
	}
	corrected, err := recovery.ApplyScript(snapshot, ops)
	if err != nil {
		return world.State{}, err
	}

	requestID, err := id.NewID()
	if err != nil {
		return world.State{}, fmt.Errorf("generate request id: %w", err)
	}
	state, entry, err := s.world.ReplaceDocument(corrected, requestID, time.Now())
	if err != nil {
		return world.State{}, err
	}
	if err := s.persistChange(ctx, state, entry); err != nil {
		return world.State{}, err
	}
	return state, nil
}

// ResolveReputation evaluates the disposition precedence chain. Pure with
// respect to campaign state; the caller supplies the record.
func (s *Service) ResolveReputation(record reputation.Record, directTrust *int, targetFaction string) int {
	return s.resolver.Resolve(record, directTrust, targetFaction)
}

// DecayReputation advances rumor and score decay between two world-clock
// points.
func (s *Service) DecayReputation(record reputation.Record, from, to time.Time) reputation.Record {
	return s.resolver.Decay(record, from, to)
}

// Clock returns the current in-game time.
func (s *Service) Clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return world.ClockFrom(s.world.Current())
}

// adoptEntities records identifiers referenced by a patch so later
// registrations never collide with them. Keys that are not entity ids pass
// through untouched; malformed ids surface as registration errors.
func (s *Service) adoptEntities(ctx context.Context, doc map[string]any) error {
	adopted := false
	for _, domain := range []string{world.DomainPlayerCharacter, world.DomainNPC, world.DomainFaction} {
		entities, ok := doc[domain].(map[string]any)
		if !ok {
			continue
		}
		for key := range entities {
			if !registry.IDPattern.MatchString(key) {
				continue
			}
			if err := s.registry.Adopt(key, time.Now()); err != nil {
				return err
			}
			adopted = true
		}
	}
	if adopted {
		s.persistEntities(ctx)
	}
	return nil
}

// applySystem commits an engine-authored consequence patch at the current
// version.
func (s *Service) applySystem(ctx context.Context, doc map[string]any) error {
	requestID, err := id.NewID()
	if err != nil {
		return fmt.Errorf("generate request id: %w", err)
	}
	patch := world.Patch{BaseVersion: s.world.Current().Version, Document: doc}
	state, entry, err := s.world.Apply(patch, world.AuthorSystem, requestID, time.Now())
	if err != nil {
		return err
	}
	return s.persistChange(ctx, state, entry)
}

// advanceClock moves the in-game clock forward by d.
func (s *Service) advanceClock(ctx context.Context, d time.Duration) error {
	now := world.ClockFrom(s.world.Current())
	return s.applySystem(ctx, world.ClockPatch(now.Add(d)))
}

func (s *Service) persistChange(ctx context.Context, state world.State, entry world.ChangeEntry) error {
	if s.persist == nil {
		return nil
	}
	doc, err := marshalState(state)
	if err != nil {
		return err
	}
	if err := s.persist.PutSnapshot(ctx, storage.Snapshot{
		Version:   state.Version,
		Document:  doc,
		CreatedAt: entry.Timestamp,
	}); err != nil {
		return err
	}
	return s.persist.AppendChange(ctx, entry)
}

// persistEntities mirrors the registry into storage. Failures are logged,
// not fatal: identifiers are recoverable from snapshots on the next adopt.
func (s *Service) persistEntities(ctx context.Context) {
	if s.persist == nil {
		return
	}
	for _, entry := range s.registry.Entries() {
		if err := s.persist.PutEntity(ctx, entry); err != nil {
			log.Printf("persist entity %s: %v", entry.ID, err)
		}
	}
}
