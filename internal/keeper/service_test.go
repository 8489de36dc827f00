package keeper

import (
	"context"
	"testing"
	"time"

	"github.com/louisbranch/worldkeeper/internal/combat"
	"github.com/louisbranch/worldkeeper/internal/decision"
	"github.com/louisbranch/worldkeeper/internal/planning"
	apperrors "github.com/louisbranch/worldkeeper/internal/platform/errors"
	"github.com/louisbranch/worldkeeper/internal/world"
)

const campaignEpoch = int64(1700000000)

// seedCampaign applies an opening patch with one character, one npc, and the
// in-game clock.
func seedCampaign(t *testing.T, service *Service) {
	t.Helper()
	_, _, err := service.ApplyPatch(context.Background(), world.Patch{
		BaseVersion: 0,
		Document: map[string]any{
			"player_character_data": map[string]any{
				"pc_aldric_001": map[string]any{
					"name": "Aldric", "level": 1, "xp_current": 0,
					"hp_max": 10, "hit_die": 8, "constitution_modifier": 1,
				},
			},
			"npc_data": map[string]any{
				"npc_grom_001": map[string]any{"name": "Grom", "status": "wary"},
			},
			"world_data": map[string]any{
				"time": map[string]any{"unix": campaignEpoch},
			},
		},
	})
	if err != nil {
		t.Fatalf("seed campaign: %v", err)
	}
}

func TestApplyPatchAdoptsReferencedEntities(t *testing.T) {
	service := New(nil)
	seedCampaign(t, service)

	if !service.ValidateReference("pc_aldric_001") {
		t.Fatal("expected character id adopted into registry")
	}
	if !service.ValidateReference("npc_grom_001") {
		t.Fatal("expected npc id adopted into registry")
	}
	if service.ValidateReference("npc_never_seen_001") {
		t.Fatal("expected unknown id rejected")
	}

	version, _, err := service.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected version 1 after opening patch, got %d", version)
	}
}

func TestGetDotPath(t *testing.T) {
	service := New(nil)
	seedCampaign(t, service)

	raw, err := service.Get("npc_data.npc_grom_001.status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if raw != `"wary"` {
		t.Fatalf("expected \"wary\", got %s", raw)
	}
	if _, err := service.Get("npc_data.npc_missing_001"); !apperrors.Is(err, apperrors.CodePathNotFound) {
		t.Fatalf("expected path not found, got %v", err)
	}
}

func TestCombatLifecycle(t *testing.T) {
	service := New(nil)
	seedCampaign(t, service)
	ctx := context.Background()

	sessionID, err := service.StartCombat(ctx, "loc_millbrook_001")
	if err != nil {
		t.Fatalf("start combat: %v", err)
	}
	if sessionID == "" {
		t.Fatal("expected session id")
	}
	if _, err := service.StartCombat(ctx, "loc_millbrook_001"); !apperrors.Is(err, apperrors.CodeCombatSessionExists) {
		t.Fatalf("expected session exists error, got %v", err)
	}

	combatants := []combat.Combatant{
		{ActorID: "pc_aldric_001", Type: combat.ActorPC, HPCurrent: 10, HPMax: 10},
		{ActorID: "npc_wolf_001", Type: combat.ActorEnemy, HPCurrent: 6, HPMax: 6, CR: "1/4"},
		{ActorID: "npc_wolf_002", Type: combat.ActorEnemy, HPCurrent: 6, HPMax: 6, CR: "1/4"},
	}
	for _, c := range combatants {
		if err := service.AddCombatant(c); err != nil {
			t.Fatalf("add combatant %s: %v", c.ActorID, err)
		}
	}
	for actorID, score := range map[string]int{"pc_aldric_001": 18, "npc_wolf_001": 12, "npc_wolf_002": 9} {
		if err := service.SetInitiative(actorID, score); err != nil {
			t.Fatalf("set initiative %s: %v", actorID, err)
		}
	}
	if err := service.BeginCombat(); err != nil {
		t.Fatalf("begin combat: %v", err)
	}

	if _, err := service.ApplyDamage("npc_wolf_001", 6, "slashing"); err != nil {
		t.Fatalf("apply damage: %v", err)
	}
	if _, err := service.ApplyDamage("npc_wolf_002", 6, "slashing"); err != nil {
		t.Fatalf("apply damage: %v", err)
	}

	// With both wolves down the advance skips them, wraps to the top, and
	// the completed round moves the in-game clock.
	before := service.Clock()
	actorID, wrapped, err := service.AdvanceTurn(ctx)
	if err != nil {
		t.Fatalf("advance turn: %v", err)
	}
	if actorID != "pc_aldric_001" || !wrapped {
		t.Fatalf("expected wrap back to pc_aldric_001, got %s wrapped=%v", actorID, wrapped)
	}
	if got := service.Clock().Sub(before); got != combat.RoundDuration {
		t.Fatalf("expected clock advanced by %v, got %v", combat.RoundDuration, got)
	}

	xp, err := service.EndCombat(ctx, "wolves slain", []string{"pc_aldric_001"})
	if err != nil {
		t.Fatalf("end combat: %v", err)
	}
	if xp != 100 {
		t.Fatalf("expected 100 xp for two CR 1/4 wolves, got %d", xp)
	}

	raw, err := service.Get("player_character_data.pc_aldric_001.xp_current")
	if err != nil {
		t.Fatalf("get xp: %v", err)
	}
	if raw != "100" {
		t.Fatalf("expected xp_current 100 recorded, got %s", raw)
	}

	// A retried end is absorbed by the reward idempotency gate.
	xp, err = service.EndCombat(ctx, "wolves slain", []string{"pc_aldric_001"})
	if err != nil {
		t.Fatalf("retried end combat: %v", err)
	}
	if xp != 0 {
		t.Fatalf("expected retried end to award 0, got %d", xp)
	}

	// A terminal session no longer blocks a new encounter.
	if _, err := service.StartCombat(ctx, "loc_millbrook_001"); err != nil {
		t.Fatalf("start combat after terminal session: %v", err)
	}
}

// startWolfSkirmish opens a session with the seeded character against one
// wolf and leaves the wolf defeated, ready for EndCombat.
func startWolfSkirmish(t *testing.T, service *Service) {
	t.Helper()
	ctx := context.Background()
	if _, err := service.StartCombat(ctx, "loc_millbrook_001"); err != nil {
		t.Fatalf("start combat: %v", err)
	}
	for _, c := range []combat.Combatant{
		{ActorID: "pc_aldric_001", Type: combat.ActorPC, HPCurrent: 10, HPMax: 10},
		{ActorID: "npc_wolf_001", Type: combat.ActorEnemy, HPCurrent: 6, HPMax: 6, CR: "1/4"},
	} {
		if err := service.AddCombatant(c); err != nil {
			t.Fatalf("add combatant: %v", err)
		}
	}
	for actorID, score := range map[string]int{"pc_aldric_001": 15, "npc_wolf_001": 10} {
		if err := service.SetInitiative(actorID, score); err != nil {
			t.Fatalf("set initiative: %v", err)
		}
	}
	if err := service.BeginCombat(); err != nil {
		t.Fatalf("begin combat: %v", err)
	}
	if _, err := service.ApplyDamage("npc_wolf_001", 6, "slashing"); err != nil {
		t.Fatalf("apply damage: %v", err)
	}
}

func TestEndCombatDefaultsToParty(t *testing.T) {
	service := New(nil)
	seedCampaign(t, service)
	ctx := context.Background()
	startWolfSkirmish(t, service)

	xp, err := service.EndCombat(ctx, "wolf slain", nil)
	if err != nil {
		t.Fatalf("end combat: %v", err)
	}
	if xp != 50 {
		t.Fatalf("expected 50 xp for one CR 1/4 wolf, got %d", xp)
	}

	// With no party named, the award lands on every player character.
	raw, err := service.Get("player_character_data.pc_aldric_001.xp_current")
	if err != nil {
		t.Fatalf("get xp: %v", err)
	}
	if raw != "50" {
		t.Fatalf("expected xp_current 50 recorded, got %s", raw)
	}
}

func TestEndCombatRetriesAfterAwardFailure(t *testing.T) {
	service := New(nil)
	seedCampaign(t, service)
	ctx := context.Background()
	startWolfSkirmish(t, service)

	// A party member absent from the state fails the award and must leave
	// the reward claimable.
	if _, err := service.EndCombat(ctx, "wolf slain", []string{"pc_ghost_001"}); !apperrors.Is(err, apperrors.CodeEntityUnknownRef) {
		t.Fatalf("expected unknown reference error, got %v", err)
	}

	xp, err := service.EndCombat(ctx, "wolf slain", []string{"pc_aldric_001"})
	if err != nil {
		t.Fatalf("retried end combat: %v", err)
	}
	if xp != 50 {
		t.Fatalf("expected the retry to recover the 50 xp, got %d", xp)
	}
	raw, err := service.Get("player_character_data.pc_aldric_001.xp_current")
	if err != nil {
		t.Fatalf("get xp: %v", err)
	}
	if raw != "50" {
		t.Fatalf("expected xp_current 50 recorded, got %s", raw)
	}
}

func TestApplyDecisionRejectsMissingPayload(t *testing.T) {
	service := New(nil)
	seedCampaign(t, service)

	for _, kind := range []decision.Kind{
		decision.KindCombatStart,
		decision.KindCombatEnd,
		decision.KindCombatFlee,
		decision.KindXPAward,
		decision.KindPlanFailure,
		decision.KindFreezeBreak,
	} {
		if _, err := service.ApplyDecision(context.Background(), decision.Decision{Kind: kind}); err == nil {
			t.Fatalf("expected %s decision without payload rejected", kind)
		}
	}
}

func TestFleeCombatAwardsNothing(t *testing.T) {
	service := New(nil)
	seedCampaign(t, service)
	ctx := context.Background()

	if _, err := service.StartCombat(ctx, "loc_millbrook_001"); err != nil {
		t.Fatalf("start combat: %v", err)
	}
	for _, c := range []combat.Combatant{
		{ActorID: "pc_aldric_001", Type: combat.ActorPC, HPCurrent: 10, HPMax: 10},
		{ActorID: "npc_wolf_001", Type: combat.ActorEnemy, HPCurrent: 6, HPMax: 6, CR: "1/4"},
	} {
		if err := service.AddCombatant(c); err != nil {
			t.Fatalf("add combatant: %v", err)
		}
	}
	for actorID, score := range map[string]int{"pc_aldric_001": 15, "npc_wolf_001": 10} {
		if err := service.SetInitiative(actorID, score); err != nil {
			t.Fatalf("set initiative: %v", err)
		}
	}
	if err := service.BeginCombat(); err != nil {
		t.Fatalf("begin combat: %v", err)
	}
	if _, err := service.ApplyDamage("npc_wolf_001", 6, "slashing"); err != nil {
		t.Fatalf("apply damage: %v", err)
	}

	if err := service.FleeCombat(ctx, "party withdrew"); err != nil {
		t.Fatalf("flee: %v", err)
	}
	raw, err := service.Get("player_character_data.pc_aldric_001.xp_current")
	if err != nil {
		t.Fatalf("get xp: %v", err)
	}
	if raw != "0" {
		t.Fatalf("expected no xp after fleeing, got %s", raw)
	}
}

func TestAwardXPAndLevelUp(t *testing.T) {
	service := New(nil)
	seedCampaign(t, service)
	ctx := context.Background()

	record, err := service.AwardXP(ctx, "pc_aldric_001", 300)
	if err != nil {
		t.Fatalf("award xp: %v", err)
	}
	if record.XPCurrent != 300 {
		t.Fatalf("expected xp 300, got %d", record.XPCurrent)
	}

	eligible, err := service.CheckLevelUp("pc_aldric_001")
	if err != nil {
		t.Fatalf("check level up: %v", err)
	}
	if !eligible {
		t.Fatal("expected character eligible at 300 xp")
	}

	grants, leveled, err := service.ApplyLevelUp(ctx, "pc_aldric_001")
	if err != nil {
		t.Fatalf("apply level up: %v", err)
	}
	if !leveled || grants.Level != 2 {
		t.Fatalf("expected level 2 grants, got %+v leveled=%v", grants, leveled)
	}

	raw, err := service.Get("player_character_data.pc_aldric_001.hp_max")
	if err != nil {
		t.Fatalf("get hp_max: %v", err)
	}
	// d8 average 5 plus con modifier 1 on top of the base 10.
	if raw != "16" {
		t.Fatalf("expected hp_max 16, got %s", raw)
	}

	// Not eligible again until more XP accrues.
	_, leveled, err = service.ApplyLevelUp(ctx, "pc_aldric_001")
	if err != nil {
		t.Fatalf("second apply level up: %v", err)
	}
	if leveled {
		t.Fatal("expected second level up to be a no-op")
	}
}

func TestAwardXPUnknownCharacter(t *testing.T) {
	service := New(nil)
	seedCampaign(t, service)
	if _, err := service.AwardXP(context.Background(), "pc_ghost_001", 50); !apperrors.Is(err, apperrors.CodeEntityUnknownRef) {
		t.Fatalf("expected unknown reference error, got %v", err)
	}
}

func TestPlanFreezeOnGameClock(t *testing.T) {
	service := New(nil)
	seedCampaign(t, service)
	ctx := context.Background()

	plan, err := service.RegisterPlanFailure(ctx, "pick_the_vault_lock", 12)
	if err != nil {
		t.Fatalf("register plan failure: %v", err)
	}
	wantUntil := time.Unix(campaignEpoch, 0).UTC().Add(4 * time.Hour)
	if !plan.FreezeUntil.Equal(wantUntil) {
		t.Fatalf("expected freeze until %v, got %v", wantUntil, plan.FreezeUntil)
	}
	if !service.IsPlanFrozen(ctx, "pick_the_vault_lock") {
		t.Fatal("expected topic frozen")
	}

	// Advancing the world clock past the cooldown unfreezes lazily.
	_, _, err = service.ApplyPatch(ctx, world.Patch{
		BaseVersion: service.mustVersion(t),
		Document:    world.ClockPatch(time.Unix(campaignEpoch, 0).Add(5 * time.Hour)),
	})
	if err != nil {
		t.Fatalf("advance clock: %v", err)
	}
	if service.IsPlanFrozen(ctx, "pick_the_vault_lock") {
		t.Fatal("expected freeze expired on the in-game clock")
	}
}

func TestBreakFreezeThroughDecision(t *testing.T) {
	service := New(nil)
	seedCampaign(t, service)
	ctx := context.Background()

	if _, err := service.RegisterPlanFailure(ctx, "pick_the_vault_lock", 12); err != nil {
		t.Fatalf("register plan failure: %v", err)
	}
	_, err := service.ApplyDecision(ctx, decision.Decision{
		Kind:        decision.KindFreezeBreak,
		FreezeBreak: &decision.FreezeBreak{TopicKey: "pick_the_vault_lock", Reason: planning.BreakNewInformation},
	})
	if err != nil {
		t.Fatalf("apply decision: %v", err)
	}
	if service.IsPlanFrozen(ctx, "pick_the_vault_lock") {
		t.Fatal("expected freeze broken")
	}
}

func TestApplyRecoveryScript(t *testing.T) {
	service := New(nil)
	seedCampaign(t, service)

	state, err := service.ApplyRecovery(context.Background(), `GOD_MODE_SET:
player_character_data.pc_aldric_001.hp_max = 14
npc_data.npc_grom_001 = __DELETE__
`)
	if err != nil {
		t.Fatalf("apply recovery: %v", err)
	}
	if state.Version != 2 {
		t.Fatalf("expected version 2 after recovery, got %d", state.Version)
	}
	raw, err := service.Get("player_character_data.pc_aldric_001.hp_max")
	if err != nil {
		t.Fatalf("get hp_max: %v", err)
	}
	if raw != "14" {
		t.Fatalf("expected corrected hp_max 14, got %s", raw)
	}
	if _, err := service.Get("npc_data.npc_grom_001"); !apperrors.Is(err, apperrors.CodePathNotFound) {
		t.Fatalf("expected npc removed, got %v", err)
	}
}

func TestChangelogAuthors(t *testing.T) {
	service := New(nil)
	seedCampaign(t, service)
	ctx := context.Background()

	if _, err := service.AwardXP(ctx, "pc_aldric_001", 50); err != nil {
		t.Fatalf("award xp: %v", err)
	}
	entries := service.Changelog(0)
	if len(entries) != 2 {
		t.Fatalf("expected 2 changelog entries, got %d", len(entries))
	}
	if entries[0].Author != world.AuthorExternal || entries[1].Author != world.AuthorSystem {
		t.Fatalf("unexpected authors: %q, %q", entries[0].Author, entries[1].Author)
	}
}

func (s *Service) mustVersion(t *testing.T) uint64 {
	t.Helper()
	version, _, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return version
}
