package combat

import (
	"fmt"
	"sort"
	"time"

	apperrors "github.com/louisbranch/worldkeeper/internal/platform/errors"
)

// Session is a combat encounter. It is created when an external decision
// starts combat and archived once a terminal phase has processed rewards.
type Session struct {
	ID         string
	LocationID string
	Phase      Phase
	Round      int
	TurnCursor int
	Initiative []InitiativeEntry
	Combatants map[string]Combatant
	// RewardsProcessed gates reward computation; a second terminal call
	// against a processed session is absorbed as a no-op.
	RewardsProcessed bool
	XPAwarded        int
	// Outcome carries free-form metadata about how the encounter ended,
	// kept for later narrative reference.
	Outcome string
	// StartedAt is the in-game clock when the session was created.
	StartedAt time.Time
}

// NewSession creates a session in the initiating phase.
func NewSession(locationID string, startedAt time.Time) *Session {
	return &Session{
		ID:         SessionID(locationID, startedAt),
		LocationID: locationID,
		Phase:      PhaseInitiating,
		Combatants: map[string]Combatant{},
		StartedAt:  startedAt.UTC(),
	}
}

// AddCombatant registers an actor during the initiating phase.
func (s *Session) AddCombatant(c Combatant) error {
	if s.Phase != PhaseInitiating {
		return s.transitionError("combatants can only be added while initiating")
	}
	if c.ActorID == "" {
		return apperrors.New(apperrors.CodeCombatUnknownActor, "combatant actor id is required")
	}
	if c.HPMax <= 0 {
		return apperrors.WithMetadata(apperrors.CodeInvalidCombatState,
			fmt.Sprintf("combatant %s has non-positive hp max", c.ActorID),
			map[string]string{"actor_id": c.ActorID})
	}
	if c.HPCurrent < 0 || c.HPCurrent > c.HPMax {
		return apperrors.WithMetadata(apperrors.CodeInvalidCombatState,
			fmt.Sprintf("combatant %s hp %d outside [0, %d]", c.ActorID, c.HPCurrent, c.HPMax),
			map[string]string{"actor_id": c.ActorID})
	}
	s.Combatants[c.ActorID] = c
	s.Initiative = append(s.Initiative, InitiativeEntry{ActorID: c.ActorID, Type: c.Type})
	return nil
}

// SetInitiative records an actor's initiative score during initiating.
func (s *Session) SetInitiative(actorID string, score int) error {
	if s.Phase != PhaseInitiating {
		return s.transitionError("initiative can only be set while initiating")
	}
	for i := range s.Initiative {
		if s.Initiative[i].ActorID == actorID {
			value := score
			s.Initiative[i].Score = &value
			return nil
		}
	}
	return apperrors.WithMetadata(apperrors.CodeCombatUnknownActor,
		fmt.Sprintf("actor %s is not part of this session", actorID),
		map[string]string{"actor_id": actorID})
}

// Begin transitions initiating -> active once every actor has an initiative
// score. The order is sorted descending by score; ties break by actor type
// (pc > ally > enemy > neutral) and then by actor id for determinism.
func (s *Session) Begin() error {
	if s.Phase != PhaseInitiating {
		return s.transitionError("session is not initiating")
	}
	if len(s.Initiative) == 0 {
		return apperrors.New(apperrors.CodeInvalidCombatState, "session has no combatants")
	}
	for _, entry := range s.Initiative {
		if _, ok := s.Combatants[entry.ActorID]; !ok {
			return apperrors.WithMetadata(apperrors.CodeInvalidCombatState,
				fmt.Sprintf("initiative order references %s which is absent from combatants", entry.ActorID),
				map[string]string{"actor_id": entry.ActorID})
		}
		if entry.Score == nil {
			return apperrors.WithMetadata(apperrors.CodeCombatInitiativeMissing,
				fmt.Sprintf("actor %s has no initiative score", entry.ActorID),
				map[string]string{"actor_id": entry.ActorID})
		}
	}

	sort.SliceStable(s.Initiative, func(i, j int) bool {
		a, b := s.Initiative[i], s.Initiative[j]
		if *a.Score != *b.Score {
			return *a.Score > *b.Score
		}
		if typePriority[a.Type] != typePriority[b.Type] {
			return typePriority[a.Type] < typePriority[b.Type]
		}
		return a.ActorID < b.ActorID
	})

	s.Phase = PhaseActive
	s.Round = 1
	s.TurnCursor = 0
	return nil
}

// CurrentActor returns the actor whose turn it is.
func (s *Session) CurrentActor() (string, error) {
	if s.Phase != PhaseActive {
		return "", s.transitionError("session is not active")
	}
	return s.Initiative[s.TurnCursor].ActorID, nil
}

// ApplyDamage deals typed damage to an actor, honoring its declared damage
// table and clamping hp at zero. Reaching zero marks the actor defeated; it
// stays in the combatant map for audit until the session ends.
func (s *Session) ApplyDamage(actorID string, amount int, damageType DamageType) (int, error) {
	if s.Phase != PhaseActive {
		return 0, s.transitionError("damage can only be applied while active")
	}
	combatant, ok := s.Combatants[actorID]
	if !ok {
		return 0, apperrors.WithMetadata(apperrors.CodeCombatUnknownActor,
			fmt.Sprintf("actor %s is not part of this session", actorID),
			map[string]string{"actor_id": actorID})
	}
	if amount < 0 {
		return 0, apperrors.New(apperrors.CodeInvalidCombatState, "damage amount must be non-negative")
	}

	effective := amount
	switch combatant.Responses[damageType] {
	case ResponseResistant:
		effective = amount / 2
	case ResponseVulnerable:
		effective = amount * 2
	case ResponseImmune:
		effective = 0
	}

	combatant.HPCurrent -= effective
	if combatant.HPCurrent < 0 {
		combatant.HPCurrent = 0
	}
	if combatant.HPCurrent == 0 && !combatant.Defeated() {
		combatant.Status = append(combatant.Status, StatusDefeated)
	}
	s.Combatants[actorID] = combatant
	return effective, nil
}

// Surrender marks an actor as surrendered and removes it from turn advances.
func (s *Session) Surrender(actorID string) error {
	if s.Phase != PhaseActive {
		return s.transitionError("surrender can only happen while active")
	}
	combatant, ok := s.Combatants[actorID]
	if !ok {
		return apperrors.WithMetadata(apperrors.CodeCombatUnknownActor,
			fmt.Sprintf("actor %s is not part of this session", actorID),
			map[string]string{"actor_id": actorID})
	}
	if !combatant.HasStatus(StatusSurrendered) {
		combatant.Status = append(combatant.Status, StatusSurrendered)
	}
	s.Combatants[actorID] = combatant
	return nil
}

// AdvanceTurn moves the cursor to the next non-defeated actor, wrapping to
// the top and incrementing the round when a full pass completes. A round is
// one full pass through every still-living combatant in initiative order.
// The second result reports whether a new round began.
func (s *Session) AdvanceTurn() (string, bool, error) {
	if s.Phase != PhaseActive {
		return "", false, s.transitionError("turns only advance while active")
	}

	alive := 0
	for _, combatant := range s.Combatants {
		if !combatant.OutOfFight() {
			alive++
		}
	}
	if alive == 0 {
		return "", false, apperrors.New(apperrors.CodeInvalidCombatState, "no living combatants to advance to")
	}

	wrapped := false
	for range s.Initiative {
		s.TurnCursor++
		if s.TurnCursor >= len(s.Initiative) {
			s.TurnCursor = 0
			s.Round++
			wrapped = true
		}
		actorID := s.Initiative[s.TurnCursor].ActorID
		if !s.Combatants[actorID].OutOfFight() {
			return actorID, wrapped, nil
		}
	}
	return "", false, apperrors.New(apperrors.CodeInvalidCombatState, "no living combatants to advance to")
}

// End transitions active -> ended and computes the XP award: the sum over
// defeated or surrendered enemies of their CR reward. A surrendered enemy
// awards identical XP to a killed one. Calling End on a session whose
// rewards were already processed is a no-op returning zero. An ended
// session whose reward gate was reopened recomputes the award so a retry
// can complete the accounting.
func (s *Session) End(outcome string) (int, error) {
	if s.Phase == PhaseEnded && s.RewardsProcessed {
		// Expected under retry; absorbed silently per the reward
		// idempotency contract.
		return 0, nil
	}
	if s.Phase != PhaseActive && s.Phase != PhaseEnded {
		return 0, s.transitionError("session is not active")
	}

	total := 0
	for _, combatant := range s.Combatants {
		if combatant.Type != ActorEnemy || combatant.CR == "" {
			continue
		}
		if !combatant.Defeated() && !combatant.HasStatus(StatusSurrendered) {
			continue
		}
		xp, err := XPForCR(combatant.CR)
		if err != nil {
			return 0, err
		}
		total += xp
	}

	s.Phase = PhaseEnded
	s.Outcome = outcome
	s.XPAwarded = total
	s.RewardsProcessed = true
	return total, nil
}

// Flee transitions active -> fled. No rewards are granted; the session is
// archived with outcome metadata for later narrative reference.
func (s *Session) Flee(outcome string) error {
	if s.Phase == PhaseFled {
		return nil
	}
	if s.Phase != PhaseActive {
		return s.transitionError("session is not active")
	}
	s.Phase = PhaseFled
	s.Outcome = outcome
	s.XPAwarded = 0
	s.RewardsProcessed = true
	return nil
}

// Terminal reports whether the session reached a terminal phase.
func (s *Session) Terminal() bool {
	return s.Phase == PhaseEnded || s.Phase == PhaseFled
}

// Elapsed returns the in-game time consumed so far: six seconds per
// completed round.
func (s *Session) Elapsed() time.Duration {
	if s.Round <= 1 {
		return 0
	}
	return time.Duration(s.Round-1) * RoundDuration
}

func (s *Session) transitionError(message string) error {
	return apperrors.WithMetadata(apperrors.CodeCombatInvalidTransition, message,
		map[string]string{"phase": string(s.Phase)})
}
