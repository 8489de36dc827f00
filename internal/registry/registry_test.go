package registry

import (
	"testing"
	"time"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestRegisterFormat(t *testing.T) {
	r := New()
	id, err := r.Register(KindNPC, "Elara Moonwhisper", testNow)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id != "npc_elara_moonwhisper_001" {
		t.Fatalf("expected npc_elara_moonwhisper_001, got %s", id)
	}
	if !IDPattern.MatchString(id) {
		t.Fatalf("id %s does not match the canonical pattern", id)
	}
}

func TestRegisterSequencePerKind(t *testing.T) {
	r := New()
	first, err := r.Register(KindNPC, "Elara", testNow)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	second, err := r.Register(KindNPC, "Grom", testNow)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	location, err := r.Register(KindLocation, "Rusty Flagon", testNow)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if first != "npc_elara_001" {
		t.Fatalf("expected npc_elara_001, got %s", first)
	}
	if second != "npc_grom_002" {
		t.Fatalf("expected npc_grom_002, got %s", second)
	}
	if location != "loc_rusty_flagon_001" {
		t.Fatalf("expected location sequence to start at 001, got %s", location)
	}
}

func TestRegisterIdempotent(t *testing.T) {
	r := New()
	first, err := r.Register(KindNPC, "Elara", testNow)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	again, err := r.Register(KindNPC, "Elara", testNow)
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if first != again {
		t.Fatalf("expected idempotent registration, got %s then %s", first, again)
	}
}

func TestIDNeverReassignedAfterDelete(t *testing.T) {
	r := New()
	id, err := r.Register(KindNPC, "Elara", testNow)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.MarkDeleted(id); err != nil {
		t.Fatalf("mark deleted: %v", err)
	}

	recreated, err := r.Register(KindNPC, "Elara", testNow)
	if err != nil {
		t.Fatalf("re-register after delete: %v", err)
	}
	if recreated != id {
		t.Fatalf("expected original id %s retained, got %s", id, recreated)
	}
	if !r.ValidateReference(id) {
		t.Fatal("expected soft-deleted id to stay registered")
	}
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	r := New()
	if _, err := r.Register(KindNPC, "   ", testNow); err == nil {
		t.Fatal("expected error for empty display name")
	}
}

func TestRegisterRejectsInvalidKind(t *testing.T) {
	r := New()
	if _, err := r.Register(KindUnspecified, "Elara", testNow); err == nil {
		t.Fatal("expected error for unspecified kind")
	}
}

func TestValidateReference(t *testing.T) {
	r := New()
	id, err := r.Register(KindFaction, "Iron Ring", testNow)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !r.ValidateReference(id) {
		t.Fatalf("expected %s to validate", id)
	}
	if r.ValidateReference("faction_shadow_court_001") {
		t.Fatal("expected unknown reference to fail validation")
	}
}

func TestAdoptAdvancesSequence(t *testing.T) {
	r := New()
	if err := r.Adopt("npc_grom_007", testNow); err != nil {
		t.Fatalf("adopt: %v", err)
	}
	if !r.ValidateReference("npc_grom_007") {
		t.Fatal("expected adopted id to validate")
	}

	next, err := r.Register(KindNPC, "Elara", testNow)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if next != "npc_elara_008" {
		t.Fatalf("expected sequence to continue past adopted id, got %s", next)
	}
}

func TestAdoptRejectsMalformedID(t *testing.T) {
	r := New()
	for _, bad := range []string{"npc_grom", "dragon_smaug_001", "npc_Grom_001", "npc_grom_1"} {
		if err := r.Adopt(bad, testNow); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	r := New()
	id, err := r.Register(KindItem, "Sunblade", testNow)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	restored := New()
	restored.Restore(r.Entries())
	if !restored.ValidateReference(id) {
		t.Fatal("expected restored registry to know the id")
	}
	next, err := restored.Register(KindItem, "Moonblade", testNow)
	if err != nil {
		t.Fatalf("register after restore: %v", err)
	}
	if next != "item_moonblade_002" {
		t.Fatalf("expected sequence continuity after restore, got %s", next)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Elara Moonwhisper", "elara_moonwhisper"},
		{"  The  Rusty   Flagon ", "the_rusty_flagon"},
		{"Aldric von Königsberg", "aldric_von_konigsberg"},
		{"Séraphine d'Été", "seraphine_d_ete"},
		{"Watchtower #3", "watchtower_3"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.name); got != tt.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
