package keeper

import (
	"context"

	"github.com/louisbranch/worldkeeper/internal/progression"
	"github.com/louisbranch/worldkeeper/internal/world"
)

// AwardXP grants narrative XP to a character and records the new total.
func (s *Service) AwardXP(ctx context.Context, characterID string, amount int) (progression.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.progressionRecord(characterID)
	if err != nil {
		return progression.Record{}, err
	}
	record, err = progression.AwardXP(record, amount)
	if err != nil {
		return progression.Record{}, err
	}
	if err := s.applySystem(ctx, map[string]any{
		world.DomainPlayerCharacter: map[string]any{
			characterID: map[string]any{"xp_current": record.XPCurrent},
		},
	}); err != nil {
		return progression.Record{}, err
	}
	return record, nil
}

// CheckLevelUp reports whether a character qualifies for the next level.
func (s *Service) CheckLevelUp(characterID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.progressionRecord(characterID)
	if err != nil {
		return false, err
	}
	return progression.CheckLevelUp(record), nil
}

// ApplyLevelUp raises a qualifying character by exactly one level and writes
// the recomputed grants back into the world state. An ineligible character
// is a no-op with a false second result.
func (s *Service) ApplyLevelUp(ctx context.Context, characterID string) (progression.Grants, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.progressionRecord(characterID)
	if err != nil {
		return progression.Grants{}, false, err
	}
	record, grants, leveled := progression.ApplyLevelUp(record)
	if !leveled {
		return progression.Grants{}, false, nil
	}
	if err := s.applySystem(ctx, map[string]any{
		world.DomainPlayerCharacter: map[string]any{
			characterID: map[string]any{
				"level":             record.Level,
				"hp_max":            record.HPMax,
				"proficiency_bonus": grants.ProficiencyBonus,
			},
		},
	}); err != nil {
		return progression.Grants{}, false, err
	}
	return grants, true, nil
}

// awardXPLocked adds an equal XP share to each party member in one
// consequence patch. Caller holds the mutex.
func (s *Service) awardXPLocked(ctx context.Context, characterIDs []string, share int) error {
	characters := map[string]any{}
	for _, characterID := range characterIDs {
		record, err := s.progressionRecord(characterID)
		if err != nil {
			return err
		}
		record, err = progression.AwardXP(record, share)
		if err != nil {
			return err
		}
		characters[characterID] = map[string]any{"xp_current": record.XPCurrent}
	}
	return s.applySystem(ctx, map[string]any{world.DomainPlayerCharacter: characters})
}

func (s *Service) progressionRecord(characterID string) (progression.Record, error) {
	doc, err := characterDoc(s.world.Current(), characterID)
	if err != nil {
		return progression.Record{}, err
	}
	return progression.Record{
		Level:                intField(doc, "level"),
		XPCurrent:            intField(doc, "xp_current"),
		HPMax:                intField(doc, "hp_max"),
		HitDie:               intField(doc, "hit_die"),
		ConstitutionModifier: intField(doc, "constitution_modifier"),
	}, nil
}
