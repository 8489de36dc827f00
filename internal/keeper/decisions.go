package keeper

import (
	"context"
	"fmt"

	"github.com/louisbranch/worldkeeper/internal/decision"
	apperrors "github.com/louisbranch/worldkeeper/internal/platform/errors"
)

// DecisionResult reports the mechanical consequence of a decision.
type DecisionResult struct {
	// SessionID is set for combat_start.
	SessionID string
	// XPAwarded is set for combat_end and xp_award.
	XPAwarded int
	// FreezeUntil is set for plan_failure, as an in-game unix timestamp.
	FreezeUntil int64
}

// ApplyDecision executes one external-author decision and returns its
// consequence.
func (s *Service) ApplyDecision(ctx context.Context, d decision.Decision) (DecisionResult, error) {
	switch d.Kind {
	case decision.KindCombatStart:
		if d.CombatStart == nil {
			return DecisionResult{}, missingPayload(d.Kind)
		}
		sessionID, err := s.StartCombat(ctx, d.CombatStart.LocationID)
		if err != nil {
			return DecisionResult{}, err
		}
		return DecisionResult{SessionID: sessionID}, nil

	case decision.KindCombatEnd:
		if d.CombatEnd == nil {
			return DecisionResult{}, missingPayload(d.Kind)
		}
		xp, err := s.EndCombat(ctx, d.CombatEnd.Outcome, nil)
		if err != nil {
			return DecisionResult{}, err
		}
		return DecisionResult{XPAwarded: xp}, nil

	case decision.KindCombatFlee:
		if d.CombatFlee == nil {
			return DecisionResult{}, missingPayload(d.Kind)
		}
		return DecisionResult{}, s.FleeCombat(ctx, d.CombatFlee.Outcome)

	case decision.KindXPAward:
		if d.XPAward == nil {
			return DecisionResult{}, missingPayload(d.Kind)
		}
		record, err := s.AwardXP(ctx, d.XPAward.CharacterID, d.XPAward.Amount)
		if err != nil {
			return DecisionResult{}, err
		}
		return DecisionResult{XPAwarded: record.XPCurrent}, nil

	case decision.KindPlanFailure:
		if d.PlanFailure == nil {
			return DecisionResult{}, missingPayload(d.Kind)
		}
		plan, err := s.RegisterPlanFailure(ctx, d.PlanFailure.TopicKey, d.PlanFailure.Difficulty)
		if err != nil {
			return DecisionResult{}, err
		}
		return DecisionResult{FreezeUntil: plan.FreezeUntil.Unix()}, nil

	case decision.KindFreezeBreak:
		if d.FreezeBreak == nil {
			return DecisionResult{}, missingPayload(d.Kind)
		}
		return DecisionResult{}, s.BreakFreeze(ctx, d.FreezeBreak.TopicKey, d.FreezeBreak.Reason)

	default:
		return DecisionResult{}, apperrors.WithMetadata(apperrors.CodeUnknown,
			fmt.Sprintf("unrecognized decision kind %q", d.Kind),
			map[string]string{"kind": string(d.Kind)})
	}
}

// missingPayload rejects a decision whose payload field for its kind is nil.
func missingPayload(kind decision.Kind) error {
	return apperrors.WithMetadata(apperrors.CodeUnknown,
		fmt.Sprintf("decision %q carries no payload", kind),
		map[string]string{"kind": string(kind)})
}
