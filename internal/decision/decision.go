// Package decision defines the structured verdicts the external author hands
// to the keeper alongside a narrative turn. A decision declares intent; the
// keeper derives and applies the mechanical consequences itself.
package decision

import "github.com/louisbranch/worldkeeper/internal/planning"

// Kind discriminates the decision union.
type Kind string

const (
	// KindCombatStart opens a combat session at a location.
	KindCombatStart Kind = "combat_start"
	// KindCombatEnd closes the active session and triggers rewards.
	KindCombatEnd Kind = "combat_end"
	// KindCombatFlee closes the active session with no rewards.
	KindCombatFlee Kind = "combat_flee"
	// KindXPAward grants narrative XP outside combat.
	KindXPAward Kind = "xp_award"
	// KindPlanFailure registers a failed planning-quality check.
	KindPlanFailure Kind = "plan_failure"
	// KindFreezeBreak lifts a planning freeze before expiry.
	KindFreezeBreak Kind = "freeze_break"
)

// CombatStart opens a session. Combatants are added separately before the
// session begins.
type CombatStart struct {
	LocationID string
}

// CombatEnd resolves the active session with a narrative outcome.
type CombatEnd struct {
	Outcome string
}

// CombatFlee abandons the active session.
type CombatFlee struct {
	Outcome string
}

// XPAward grants XP to a player character for non-combat achievement.
type XPAward struct {
	CharacterID string
	Amount      int
	Reason      string
}

// PlanFailure freezes a planning topic after a failed quality check.
type PlanFailure struct {
	TopicKey   string
	Difficulty int
}

// FreezeBreak lifts a freeze early for an accepted reason.
type FreezeBreak struct {
	TopicKey string
	Reason   planning.BreakReason
}

// Decision is a tagged union; exactly one payload field matching Kind is set.
type Decision struct {
	Kind        Kind
	CombatStart *CombatStart
	CombatEnd   *CombatEnd
	CombatFlee  *CombatFlee
	XPAward     *XPAward
	PlanFailure *PlanFailure
	FreezeBreak *FreezeBreak
}
