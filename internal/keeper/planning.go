package keeper

import (
	"context"
	"log"

	"github.com/louisbranch/worldkeeper/internal/planning"
	"github.com/louisbranch/worldkeeper/internal/world"
)

// RegisterPlanFailure freezes a planning topic after a failed quality check.
// The cooldown runs on the in-game clock.
func (s *Service) RegisterPlanFailure(ctx context.Context, topicKey string, difficulty int) (planning.FrozenPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := world.ClockFrom(s.world.Current())
	plan := s.planner.RegisterFailure(topicKey, difficulty, now)
	if s.persist != nil {
		if err := s.persist.PutPlan(ctx, plan); err != nil {
			return planning.FrozenPlan{}, err
		}
	}
	return plan, nil
}

// IsPlanFrozen reports whether a topic is still cooling down.
func (s *Service) IsPlanFrozen(ctx context.Context, topicKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := world.ClockFrom(s.world.Current())
	frozen := s.planner.IsFrozen(topicKey, now)
	if !frozen && s.persist != nil {
		// Lazy expiry; drop the persisted row alongside the in-memory one.
		if err := s.persist.DeletePlan(ctx, topicKey); err != nil {
			log.Printf("delete expired plan %s: %v", topicKey, err)
		}
	}
	return frozen
}

// BreakFreeze lifts a freeze before expiry for an accepted reason.
func (s *Service) BreakFreeze(ctx context.Context, topicKey string, reason planning.BreakReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.planner.BreakEarly(topicKey, reason); err != nil {
		return err
	}
	if s.persist != nil {
		if err := s.persist.DeletePlan(ctx, topicKey); err != nil {
			return err
		}
	}
	return nil
}

// FrozenPlans returns the freezes active on the in-game clock.
func (s *Service) FrozenPlans() []planning.FrozenPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.planner.Active(world.ClockFrom(s.world.Current()))
}
