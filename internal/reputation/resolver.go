package reputation

import "time"

// DefaultRumorHorizon is how long a rumor circulates before weekly decay
// drops it, measured on the in-game clock.
const DefaultRumorHorizon = 4 * 7 * 24 * time.Hour

// driftThreshold is the public score magnitude beyond which monthly decay
// pulls the score one point toward neutral.
const driftThreshold = 50

// Resolver computes effective dispositions and applies time decay.
type Resolver struct {
	// RumorHorizon overrides DefaultRumorHorizon when positive.
	RumorHorizon time.Duration
}

// Resolve evaluates the precedence chain for the actor's disposition in the
// eyes of a member of targetFaction, stopping at the first applicable
// source:
//
//  1. the faction's trust override
//  2. the direct relationship trust between the actor and the specific NPC
//  3. the faction score, mapped through the standing table
//  4. the public score, mapped through the notoriety table
//  5. the neutral default
func (r *Resolver) Resolve(record Record, directTrust *int, targetFaction string) int {
	if faction, ok := record.Factions[targetFaction]; ok {
		if faction.TrustOverride != nil {
			return *faction.TrustOverride
		}
	}
	if directTrust != nil {
		return *directTrust
	}
	if faction, ok := record.Factions[targetFaction]; ok {
		return StandingFor(faction.Score).Disposition
	}
	if record.Public.Score != 0 || len(record.Public.Rumors) > 0 || len(record.Public.KnownDeeds) > 0 {
		return NotorietyFor(record.Public.Score).Disposition
	}
	return 0
}

// Decay advances reputation decay between two points on the world clock.
// Once a full week has elapsed, rumors older than the horizon are dropped
// oldest-first. For each full month elapsed, public scores beyond the drift
// threshold move one point toward neutral. Known deeds never decay.
func (r *Resolver) Decay(record Record, from, to time.Time) Record {
	horizon := r.RumorHorizon
	if horizon <= 0 {
		horizon = DefaultRumorHorizon
	}

	weeks := periodsElapsed(from, to, 7*24*time.Hour)
	if weeks > 0 {
		kept := record.Rumors(to, horizon)
		record.Public.Rumors = kept
	}

	months := periodsElapsed(from, to, 30*24*time.Hour)
	for i := 0; i < months; i++ {
		score := record.Public.Score
		if score > driftThreshold {
			record.Public.Score = score - 1
		} else if score < -driftThreshold {
			record.Public.Score = score + 1
		}
	}
	return record
}

// Rumors returns the rumors still inside the horizon at the given time,
// dropping expired ones oldest-first.
func (record Record) Rumors(now time.Time, horizon time.Duration) []Rumor {
	kept := make([]Rumor, 0, len(record.Public.Rumors))
	for _, rumor := range record.Public.Rumors {
		if now.Sub(rumor.HeardAt) < horizon {
			kept = append(kept, rumor)
		}
	}
	return kept
}

// periodsElapsed counts how many full fixed-width periods fit between two
// points on the world clock.
func periodsElapsed(from, to time.Time, period time.Duration) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from) / period)
}
