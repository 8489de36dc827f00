// Package combat implements the turn-based combat state machine.
//
// A session moves through initiating, active, and one of the terminal
// phases ended or fled. The engine never decides when combat starts or
// stops; those are external decisions it records and enforces consistent
// consequences for.
package combat

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Phase is the combat session lifecycle phase.
type Phase string

const (
	// PhaseInitiating collects combatants and initiative scores.
	PhaseInitiating Phase = "initiating"
	// PhaseActive runs rounds and turns.
	PhaseActive Phase = "active"
	// PhaseEnded is terminal; rewards are computed on entry.
	PhaseEnded Phase = "ended"
	// PhaseFled is terminal with no rewards.
	PhaseFled Phase = "fled"
)

// ActorType classifies a combatant for initiative tie-breaking.
type ActorType string

const (
	ActorPC      ActorType = "pc"
	ActorAlly    ActorType = "ally"
	ActorEnemy   ActorType = "enemy"
	ActorNeutral ActorType = "neutral"
)

// typePriority orders actor types for initiative ties: pc > ally > enemy >
// neutral, lower value first.
var typePriority = map[ActorType]int{
	ActorPC:      0,
	ActorAlly:    1,
	ActorEnemy:   2,
	ActorNeutral: 3,
}

// Combatant statuses.
const (
	StatusDefeated    = "defeated"
	StatusSurrendered = "surrendered"
)

// RoundDuration is the in-game time one full round represents.
const RoundDuration = 6 * time.Second

// DamageType names a damage category in a combatant's damage table.
type DamageType string

// Response is how a combatant reacts to a damage type.
type Response int

const (
	// ResponseNormal applies full damage.
	ResponseNormal Response = iota
	// ResponseResistant applies half damage, rounded down.
	ResponseResistant
	// ResponseVulnerable applies double damage.
	ResponseVulnerable
	// ResponseImmune applies no damage.
	ResponseImmune
)

// InitiativeEntry is one slot in the initiative order. Score is nil until
// the actor has rolled.
type InitiativeEntry struct {
	ActorID string
	Score   *int
	Type    ActorType
}

// Combatant tracks one actor's combat-relevant state.
type Combatant struct {
	ActorID    string
	Type       ActorType
	HPCurrent  int
	HPMax      int
	ArmorClass int
	// CR is the challenge rating used for reward computation, empty for
	// actors that never award XP (party members, neutrals).
	CR string
	// Responses is the actor's declared damage-type table.
	Responses map[DamageType]Response
	Status    []string
}

// HasStatus reports whether the combatant carries the given status.
func (c Combatant) HasStatus(status string) bool {
	for _, s := range c.Status {
		if s == status {
			return true
		}
	}
	return false
}

// Defeated reports whether the combatant has been reduced to zero hp.
func (c Combatant) Defeated() bool {
	return c.HasStatus(StatusDefeated)
}

// OutOfFight reports whether the combatant no longer takes turns.
func (c Combatant) OutOfFight() bool {
	return c.Defeated() || c.HasStatus(StatusSurrendered)
}

// SessionID builds the canonical combat session identifier:
// combat_<unix_timestamp>_<4-char-location-hash>.
func SessionID(locationID string, startedAt time.Time) string {
	sum := sha256.Sum256([]byte(locationID))
	return fmt.Sprintf("combat_%d_%s", startedAt.Unix(), hex.EncodeToString(sum[:2]))
}
