package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/worldkeeper/internal/planning"
	"github.com/louisbranch/worldkeeper/internal/registry"
	"github.com/louisbranch/worldkeeper/internal/storage"
	"github.com/louisbranch/worldkeeper/internal/world"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "campaign.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if err := store.PutSnapshot(ctx, storage.Snapshot{
		Version:   1,
		Document:  []byte(`{"world_data":{}}`),
		CreatedAt: createdAt,
	}); err != nil {
		t.Fatalf("put snapshot: %v", err)
	}
	if err := store.PutSnapshot(ctx, storage.Snapshot{
		Version:   2,
		Document:  []byte(`{"world_data":{"mood":"grim"}}`),
		CreatedAt: createdAt.Add(time.Minute),
	}); err != nil {
		t.Fatalf("put snapshot: %v", err)
	}

	got, err := store.GetSnapshot(ctx, 1)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if string(got.Document) != `{"world_data":{}}` {
		t.Fatalf("unexpected document: %s", got.Document)
	}
	if !got.CreatedAt.Equal(createdAt) {
		t.Fatalf("expected created_at %v, got %v", createdAt, got.CreatedAt)
	}

	latest, err := store.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("latest snapshot: %v", err)
	}
	if latest.Version != 2 {
		t.Fatalf("expected latest version 2, got %d", latest.Version)
	}
}

func TestSnapshotNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetSnapshot(context.Background(), 99); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.LatestSnapshot(context.Background()); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound for empty store, got %v", err)
	}
}

func TestChangelogRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for seq := uint64(1); seq <= 3; seq++ {
		entry := world.ChangeEntry{
			ID:          string(rune('a' + seq)),
			Seq:         seq,
			Author:      world.AuthorExternal,
			RequestID:   "req-1",
			BaseVersion: seq - 1,
			NewVersion:  seq,
			PatchJSON:   []byte(`{"world_data":{}}`),
			Timestamp:   at,
		}
		if err := store.AppendChange(ctx, entry); err != nil {
			t.Fatalf("append change %d: %v", seq, err)
		}
	}

	entries, err := store.ListChanges(ctx, 2)
	if err != nil {
		t.Fatalf("list changes: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Seq != 2 || entries[1].Seq != 3 {
		t.Fatalf("expected oldest-first tail [2 3], got [%d %d]", entries[0].Seq, entries[1].Seq)
	}
	if entries[0].Author != world.AuthorExternal {
		t.Fatalf("expected author preserved, got %q", entries[0].Author)
	}

	all, err := store.ListChanges(ctx, 0)
	if err != nil {
		t.Fatalf("list all changes: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
}

func TestCombatArchive(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	session := storage.ArchivedSession{
		SessionID:  "combat_1700000000_a1b2",
		LocationID: "loc_millbrook_001",
		Phase:      "ended",
		Outcome:    "bandits routed",
		Rounds:     4,
		XPAwarded:  250,
		StartedAt:  at,
		ArchivedAt: at.Add(24 * time.Second),
	}
	if err := store.ArchiveSession(ctx, session); err != nil {
		t.Fatalf("archive session: %v", err)
	}
	// Re-archiving the same terminal session is a no-op.
	if err := store.ArchiveSession(ctx, session); err != nil {
		t.Fatalf("re-archive session: %v", err)
	}

	sessions, err := store.ListArchivedSessions(ctx, "loc_millbrook_001")
	if err != nil {
		t.Fatalf("list archived: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 archived session, got %d", len(sessions))
	}
	if sessions[0].XPAwarded != 250 {
		t.Fatalf("expected xp 250, got %d", sessions[0].XPAwarded)
	}

	other, err := store.ListArchivedSessions(ctx, "loc_elsewhere_001")
	if err != nil {
		t.Fatalf("list archived: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no sessions at other location, got %d", len(other))
	}
}

func TestRegistryEntities(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	entry := registry.Entry{
		ID:          "npc_grom_001",
		Kind:        registry.KindNPC,
		DisplayName: "Grom",
		Slug:        "grom",
		Seq:         1,
		IssuedAt:    at,
	}
	if err := store.PutEntity(ctx, entry); err != nil {
		t.Fatalf("put entity: %v", err)
	}

	entry.Deleted = true
	if err := store.PutEntity(ctx, entry); err != nil {
		t.Fatalf("update entity: %v", err)
	}

	entries, err := store.ListEntities(ctx)
	if err != nil {
		t.Fatalf("list entities: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(entries))
	}
	if entries[0].Kind != registry.KindNPC || !entries[0].Deleted {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestFrozenPlans(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	plan := planning.FrozenPlan{
		TopicKey:           "pick_the_vault_lock",
		FailedAt:           at,
		FreezeUntil:        at.Add(4 * time.Hour),
		OriginalDifficulty: 12,
	}
	if err := store.PutPlan(ctx, plan); err != nil {
		t.Fatalf("put plan: %v", err)
	}

	plans, err := store.ListPlans(ctx)
	if err != nil {
		t.Fatalf("list plans: %v", err)
	}
	if len(plans) != 1 || plans[0].OriginalDifficulty != 12 {
		t.Fatalf("unexpected plans: %+v", plans)
	}

	if err := store.DeletePlan(ctx, "pick_the_vault_lock"); err != nil {
		t.Fatalf("delete plan: %v", err)
	}
	plans, err = store.ListPlans(ctx)
	if err != nil {
		t.Fatalf("list plans: %v", err)
	}
	if len(plans) != 0 {
		t.Fatalf("expected no plans after delete, got %d", len(plans))
	}
}
