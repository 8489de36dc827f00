package keeper

import (
	"context"
	"log"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/louisbranch/worldkeeper/internal/combat"
	apperrors "github.com/louisbranch/worldkeeper/internal/platform/errors"
	"github.com/louisbranch/worldkeeper/internal/storage"
	"github.com/louisbranch/worldkeeper/internal/world"
)

// StartCombat opens a combat session at a location on the in-game clock.
// Only one session runs at a time.
func (s *Service) StartCombat(ctx context.Context, locationID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil && !s.session.Terminal() {
		return "", apperrors.WithMetadata(apperrors.CodeCombatSessionExists,
			"a combat session is already in progress",
			map[string]string{"session_id": s.session.ID})
	}
	s.session = combat.NewSession(locationID, world.ClockFrom(s.world.Current()))
	return s.session.ID, nil
}

// AddCombatant registers an actor with the initiating session.
func (s *Service) AddCombatant(c combat.Combatant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.activeSession()
	if err != nil {
		return err
	}
	return session.AddCombatant(c)
}

// SetInitiative records an initiative score for an actor.
func (s *Service) SetInitiative(actorID string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.activeSession()
	if err != nil {
		return err
	}
	return session.SetInitiative(actorID, score)
}

// BeginCombat transitions the session to active and fixes the turn order.
func (s *Service) BeginCombat() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.activeSession()
	if err != nil {
		return err
	}
	return session.Begin()
}

// CombatSession returns the session in progress.
func (s *Service) CombatSession() (*combat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeSession()
}

// ApplyDamage deals typed damage to an actor and returns the effective
// amount after its damage table.
func (s *Service) ApplyDamage(actorID string, amount int, damageType combat.DamageType) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.activeSession()
	if err != nil {
		return 0, err
	}
	return session.ApplyDamage(actorID, amount, damageType)
}

// Surrender marks an actor as surrendered.
func (s *Service) Surrender(actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.activeSession()
	if err != nil {
		return err
	}
	return session.Surrender(actorID)
}

// AdvanceTurn moves to the next living actor. A completed round advances the
// in-game clock by the round duration.
func (s *Service) AdvanceTurn(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.activeSession()
	if err != nil {
		return "", false, err
	}
	actorID, wrapped, err := session.AdvanceTurn()
	if err != nil {
		return "", false, err
	}
	if wrapped {
		if err := s.advanceClock(ctx, combat.RoundDuration); err != nil {
			return "", false, err
		}
	}
	return actorID, wrapped, nil
}

// EndCombat resolves the session, splits the XP award evenly across the
// party, records it on each character, and archives the session. An empty
// party defaults to every player character in the current state. A second
// call against a resolved session returns zero without error.
func (s *Service) EndCombat(ctx context.Context, outcome string, partyIDs []string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "keeper.EndCombat")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.activeSession()
	if err != nil {
		return 0, err
	}

	if session.Phase == combat.PhaseEnded && session.RewardsProcessed {
		log.Printf("combat session %s: duplicate end absorbed (%s)",
			session.ID, apperrors.CodeDuplicateReward)
		return 0, nil
	}

	total, err := session.End(outcome)
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.Int("xp_awarded", total))

	if len(partyIDs) == 0 {
		partyIDs = s.partyMembersLocked()
	}
	if total > 0 && len(partyIDs) > 0 {
		share := total / len(partyIDs)
		if err := s.awardXPLocked(ctx, partyIDs, share); err != nil {
			// Reopen the reward gate so a retried end can re-run the award
			// instead of losing it behind the idempotency check.
			session.RewardsProcessed = false
			return 0, err
		}
	}
	// The terminal session stays loaded so a retried end is absorbed by the
	// reward idempotency gate instead of failing with no-active-session.
	s.archiveSession(ctx, session)
	return total, nil
}

// FleeCombat abandons the session with no rewards and archives it.
func (s *Service) FleeCombat(ctx context.Context, outcome string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.activeSession()
	if err != nil {
		return err
	}
	if err := session.Flee(outcome); err != nil {
		return err
	}
	s.archiveSession(ctx, session)
	return nil
}

// partyMembersLocked lists the player characters present in the current
// state. The caller holds the service mutex.
func (s *Service) partyMembersLocked() []string {
	characters := s.world.Current().Tree[world.DomainPlayerCharacter]
	out := make([]string, 0, len(characters))
	for characterID := range characters {
		out = append(out, characterID)
	}
	sort.Strings(out)
	return out
}

func (s *Service) activeSession() (*combat.Session, error) {
	if s.session == nil {
		return nil, apperrors.New(apperrors.CodeCombatNoActiveSession, "no combat session in progress")
	}
	return s.session, nil
}

// archiveSession persists a terminal session. Failure is logged, not fatal:
// the reward accounting already committed.
func (s *Service) archiveSession(ctx context.Context, session *combat.Session) {
	if s.persist == nil {
		return
	}
	err := s.persist.ArchiveSession(ctx, storage.ArchivedSession{
		SessionID:  session.ID,
		LocationID: session.LocationID,
		Phase:      string(session.Phase),
		Outcome:    session.Outcome,
		Rounds:     session.Round,
		XPAwarded:  session.XPAwarded,
		StartedAt:  session.StartedAt,
		ArchivedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("archive combat session %s: %v", session.ID, err)
	}
}
