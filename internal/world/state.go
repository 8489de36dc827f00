package world

import (
	"time"
)

// Top-level state domains. Patches must be rooted at one of these keys.
const (
	DomainPlayerCharacter = "player_character_data"
	DomainNPC             = "npc_data"
	DomainWorld           = "world_data"
	DomainCombat          = "combat_state"
	DomainCustomCampaign  = "custom_campaign_state"
	DomainFaction         = "faction_data"
)

// Domains lists every recognized top-level domain.
var Domains = []string{
	DomainPlayerCharacter,
	DomainNPC,
	DomainWorld,
	DomainCombat,
	DomainCustomCampaign,
	DomainFaction,
}

// State is an immutable snapshot of the campaign world tree.
type State struct {
	// Version is the monotonically increasing game state version.
	Version uint64
	// Tree holds one nested document per domain.
	Tree map[string]map[string]any
}

// NewState returns an empty state at version zero with every domain seeded.
func NewState() State {
	tree := make(map[string]map[string]any, len(Domains))
	for _, domain := range Domains {
		tree[domain] = map[string]any{}
	}
	return State{Version: 0, Tree: tree}
}

// Clone returns a deep copy of the state. Patch application always works on
// a clone so a failed patch never leaves a partially mutated snapshot.
func (s State) Clone() State {
	tree := make(map[string]map[string]any, len(s.Tree))
	for domain, doc := range s.Tree {
		cloned := cloneValue(doc)
		m, ok := cloned.(map[string]any)
		if !ok {
			m = map[string]any{}
		}
		tree[domain] = m
	}
	return State{Version: s.Version, Tree: tree}
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func isKnownDomain(name string) bool {
	for _, domain := range Domains {
		if domain == name {
			return true
		}
	}
	return false
}

// ClockFrom reads the in-game clock from world_data.time.unix. The engine
// never consults wall-clock time for gameplay decisions; cooldowns and decay
// are evaluated against this value.
func ClockFrom(s State) time.Time {
	worldData, ok := s.Tree[DomainWorld]
	if !ok {
		return time.Unix(0, 0).UTC()
	}
	timeDoc, ok := worldData["time"].(map[string]any)
	if !ok {
		return time.Unix(0, 0).UTC()
	}
	switch unix := timeDoc["unix"].(type) {
	case float64:
		return time.Unix(int64(unix), 0).UTC()
	case int64:
		return time.Unix(unix, 0).UTC()
	case int:
		return time.Unix(int64(unix), 0).UTC()
	default:
		return time.Unix(0, 0).UTC()
	}
}

// ClockPatch returns a patch document that moves the in-game clock to t.
func ClockPatch(t time.Time) map[string]any {
	return map[string]any{
		DomainWorld: map[string]any{
			"time": map[string]any{"unix": t.Unix()},
		},
	}
}
