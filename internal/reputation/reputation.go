// Package reputation resolves an NPC's effective disposition toward an
// actor through a layered precedence chain: faction-sanctioned knowledge
// beats personal history, which beats general rumor, which beats nothing.
package reputation

import "time"

// Score bounds for the two reputation layers.
const (
	PublicScoreMin  = -100
	PublicScoreMax  = 100
	FactionScoreMin = -10
	FactionScoreMax = 10
)

// Rumor is a piece of hearsay attached to a public reputation. Rumors decay;
// known deeds never do.
type Rumor struct {
	Text    string
	HeardAt time.Time
}

// PublicReputation is the world-visible reputation layer.
type PublicReputation struct {
	Score      int
	Titles     []string
	KnownDeeds []string
	Rumors     []Rumor
}

// FactionReputation is one faction's private book on an actor.
type FactionReputation struct {
	Score      int
	Standing   string
	KnownDeeds []string
	// TrustOverride, when present, is authoritative for members of the
	// faction and supersedes any relationship-level trust value.
	TrustOverride *int
}

// Record is an actor's full reputation state.
type Record struct {
	Public   PublicReputation
	Factions map[string]FactionReputation
}

// Tier is one band in a standing or notoriety table.
type Tier struct {
	Name string
	Min  int
	Max  int
	// Disposition is the effective disposition value for scores in the band.
	Disposition int
}

// StandingTiers maps faction scores [-10, 10] to the 8-tier standing table.
var StandingTiers = []Tier{
	{Name: "Enemy", Min: -10, Max: -8, Disposition: -10},
	{Name: "Hostile", Min: -7, Max: -5, Disposition: -7},
	{Name: "Unfriendly", Min: -4, Max: -2, Disposition: -4},
	{Name: "Neutral", Min: -1, Max: 1, Disposition: 0},
	{Name: "Cordial", Min: 2, Max: 4, Disposition: 3},
	{Name: "Friendly", Min: 5, Max: 7, Disposition: 5},
	{Name: "Honored", Min: 8, Max: 9, Disposition: 8},
	{Name: "Champion", Min: 10, Max: 10, Disposition: 10},
}

// NotorietyTiers maps public scores [-100, 100] to the 8-tier notoriety table.
var NotorietyTiers = []Tier{
	{Name: "Infamous", Min: -100, Max: -76, Disposition: -9},
	{Name: "Feared", Min: -75, Max: -51, Disposition: -6},
	{Name: "Disliked", Min: -50, Max: -26, Disposition: -3},
	{Name: "Unknown", Min: -25, Max: 25, Disposition: 0},
	{Name: "Recognized", Min: 26, Max: 50, Disposition: 2},
	{Name: "Respected", Min: 51, Max: 75, Disposition: 4},
	{Name: "Renowned", Min: 76, Max: 99, Disposition: 7},
	{Name: "Legendary", Min: 100, Max: 100, Disposition: 9},
}

// StandingFor returns the standing tier for a faction score.
func StandingFor(score int) Tier {
	return tierFor(StandingTiers, clamp(score, FactionScoreMin, FactionScoreMax))
}

// NotorietyFor returns the notoriety tier for a public score.
func NotorietyFor(score int) Tier {
	return tierFor(NotorietyTiers, clamp(score, PublicScoreMin, PublicScoreMax))
}

func tierFor(tiers []Tier, score int) Tier {
	for _, tier := range tiers {
		if score >= tier.Min && score <= tier.Max {
			return tier
		}
	}
	return tiers[len(tiers)/2]
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
