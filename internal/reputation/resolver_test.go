package reputation

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestResolvePrecedence(t *testing.T) {
	record := Record{
		Public: PublicReputation{Score: 60},
		Factions: map[string]FactionReputation{
			"faction_iron_ring_001": {Score: 6, TrustOverride: intPtr(-10)},
			"faction_guild_001":     {Score: 6},
		},
	}
	resolver := &Resolver{}

	tests := []struct {
		name        string
		directTrust *int
		faction     string
		want        int
	}{
		{"override beats direct trust", intPtr(5), "faction_iron_ring_001", -10},
		{"direct trust beats faction score", intPtr(5), "faction_guild_001", 5},
		{"faction score beats public score", nil, "faction_guild_001", 5},
		{"public score when faction unknown", nil, "faction_shadow_court_001", 4},
	}
	for _, tt := range tests {
		if got := resolver.Resolve(record, tt.directTrust, tt.faction); got != tt.want {
			t.Fatalf("%s: resolve = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestResolveNeutralDefault(t *testing.T) {
	resolver := &Resolver{}
	if got := resolver.Resolve(Record{}, nil, "faction_unknown_001"); got != 0 {
		t.Fatalf("expected neutral default 0, got %d", got)
	}
}

func TestStandingTableCoversRange(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{-10, "Enemy"},
		{-6, "Hostile"},
		{-3, "Unfriendly"},
		{0, "Neutral"},
		{3, "Cordial"},
		{6, "Friendly"},
		{9, "Honored"},
		{10, "Champion"},
	}
	for _, tt := range tests {
		if got := StandingFor(tt.score); got.Name != tt.want {
			t.Fatalf("standing for %d = %s, want %s", tt.score, got.Name, tt.want)
		}
	}
}

func TestNotorietyTableCoversRange(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{-100, "Infamous"},
		{-60, "Feared"},
		{-30, "Disliked"},
		{0, "Unknown"},
		{40, "Recognized"},
		{60, "Respected"},
		{90, "Renowned"},
		{100, "Legendary"},
	}
	for _, tt := range tests {
		if got := NotorietyFor(tt.score); got.Name != tt.want {
			t.Fatalf("notoriety for %d = %s, want %s", tt.score, got.Name, tt.want)
		}
	}
}

func TestDecayDropsExpiredRumorsOnWeekBoundary(t *testing.T) {
	start := time.Date(1247, 3, 1, 0, 0, 0, 0, time.UTC)
	record := Record{
		Public: PublicReputation{
			Rumors: []Rumor{
				{Text: "stole from the guild", HeardAt: start.Add(-6 * 7 * 24 * time.Hour)},
				{Text: "saved a caravan", HeardAt: start.Add(-24 * time.Hour)},
			},
			KnownDeeds: []string{"slew the wyrm of Caldmoor"},
		},
	}
	resolver := &Resolver{}

	record = resolver.Decay(record, start, start.Add(8*24*time.Hour))

	if len(record.Public.Rumors) != 1 {
		t.Fatalf("expected 1 rumor after decay, got %d", len(record.Public.Rumors))
	}
	if record.Public.Rumors[0].Text != "saved a caravan" {
		t.Fatalf("expected oldest rumor dropped first, kept %q", record.Public.Rumors[0].Text)
	}
	if len(record.Public.KnownDeeds) != 1 {
		t.Fatal("known deeds must never decay")
	}
}

func TestDecayKeepsRumorsWithinWeek(t *testing.T) {
	start := time.Date(1247, 3, 1, 0, 0, 0, 0, time.UTC)
	record := Record{
		Public: PublicReputation{
			Rumors: []Rumor{{Text: "old tale", HeardAt: start.Add(-6 * 7 * 24 * time.Hour)}},
		},
	}
	resolver := &Resolver{}

	// No week boundary crossed, so even expired rumors survive until the
	// next boundary tick.
	record = resolver.Decay(record, start, start.Add(time.Hour))
	if len(record.Public.Rumors) != 1 {
		t.Fatalf("expected rumor kept before week boundary, got %d", len(record.Public.Rumors))
	}
}

func TestDecayDriftsExtremePublicScores(t *testing.T) {
	start := time.Date(1247, 3, 1, 0, 0, 0, 0, time.UTC)
	resolver := &Resolver{}

	record := Record{Public: PublicReputation{Score: 80}}
	record = resolver.Decay(record, start, start.Add(61*24*time.Hour))
	if record.Public.Score != 78 {
		t.Fatalf("expected score 78 after two monthly drifts, got %d", record.Public.Score)
	}

	record = Record{Public: PublicReputation{Score: -60}}
	record = resolver.Decay(record, start, start.Add(31*24*time.Hour))
	if record.Public.Score != -59 {
		t.Fatalf("expected score -59 after one monthly drift, got %d", record.Public.Score)
	}

	record = Record{Public: PublicReputation{Score: 40}}
	record = resolver.Decay(record, start, start.Add(31*24*time.Hour))
	if record.Public.Score != 40 {
		t.Fatalf("expected moderate score untouched, got %d", record.Public.Score)
	}
}
