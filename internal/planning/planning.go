// Package planning tracks cooldowns on re-attempting a planning topic after
// a failed quality check.
//
// A freeze is scoped strictly to its topic key. A different topic key is
// never blocked by an existing freeze, even when it serves the same
// narrative goal. Expiry is evaluated lazily against the world clock on the
// next query; nothing expires asynchronously.
package planning

import (
	"fmt"
	"time"

	apperrors "github.com/louisbranch/worldkeeper/internal/platform/errors"
)

// FrozenPlan is one active cooldown.
type FrozenPlan struct {
	TopicKey           string
	FailedAt           time.Time
	FreezeUntil        time.Time
	OriginalDifficulty int
}

// BreakReason is an accepted early-break condition.
type BreakReason string

const (
	// BreakNewInformation covers materially new relevant information.
	BreakNewInformation BreakReason = "new_information"
	// BreakDifferentMethod covers a distinct approach toward the same goal.
	BreakDifferentMethod BreakReason = "different_method"
	// BreakQualifiedAssistance covers help from a qualified third party.
	BreakQualifiedAssistance BreakReason = "qualified_assistance"
	// BreakAdminOverride covers an explicit administrative override.
	BreakAdminOverride BreakReason = "admin_override"
)

var breakReasons = map[BreakReason]bool{
	BreakNewInformation:      true,
	BreakDifferentMethod:     true,
	BreakQualifiedAssistance: true,
	BreakAdminOverride:       true,
}

// freezeBands maps difficulty ceilings to freeze durations, monotonically
// increasing with difficulty.
var freezeBands = []struct {
	maxDifficulty int
	duration      time.Duration
}{
	{5, 1 * time.Hour},
	{10, 2 * time.Hour},
	{14, 4 * time.Hour},
	{17, 8 * time.Hour},
	{20, 12 * time.Hour},
}

// maxFreezeDuration applies above the highest band ceiling.
const maxFreezeDuration = 24 * time.Hour

// FreezeDuration returns the cooldown for a failed check of the given
// difficulty.
func FreezeDuration(difficulty int) time.Duration {
	for _, band := range freezeBands {
		if difficulty <= band.maxDifficulty {
			return band.duration
		}
	}
	return maxFreezeDuration
}

// Tracker holds the active freezes for one campaign.
type Tracker struct {
	plans map[string]FrozenPlan
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{plans: map[string]FrozenPlan{}}
}

// RegisterFailure freezes a topic after a failed planning-quality check.
// Re-registering an already frozen topic restarts the cooldown.
func (t *Tracker) RegisterFailure(topicKey string, difficulty int, now time.Time) FrozenPlan {
	plan := FrozenPlan{
		TopicKey:           topicKey,
		FailedAt:           now.UTC(),
		FreezeUntil:        now.UTC().Add(FreezeDuration(difficulty)),
		OriginalDifficulty: difficulty,
	}
	t.plans[topicKey] = plan
	return plan
}

// IsFrozen reports whether the topic is still cooling down at the given
// world time. Expired entries are removed on query.
func (t *Tracker) IsFrozen(topicKey string, now time.Time) bool {
	plan, ok := t.plans[topicKey]
	if !ok {
		return false
	}
	if !now.Before(plan.FreezeUntil) {
		delete(t.plans, topicKey)
		return false
	}
	return true
}

// BreakEarly removes a freeze before its expiry for an accepted reason.
func (t *Tracker) BreakEarly(topicKey string, reason BreakReason) error {
	if !breakReasons[reason] {
		return apperrors.WithMetadata(apperrors.CodeFreezeUnknownReason,
			fmt.Sprintf("break reason %q is not recognized", reason),
			map[string]string{"reason": string(reason)})
	}
	if _, ok := t.plans[topicKey]; !ok {
		return apperrors.WithMetadata(apperrors.CodeFreezeUnknownTopic,
			fmt.Sprintf("no freeze registered for topic %q", topicKey),
			map[string]string{"topic_key": topicKey})
	}
	delete(t.plans, topicKey)
	return nil
}

// Active returns the freezes still in effect at the given time.
func (t *Tracker) Active(now time.Time) []FrozenPlan {
	out := make([]FrozenPlan, 0, len(t.plans))
	for topicKey := range t.plans {
		if t.IsFrozen(topicKey, now) {
			out = append(out, t.plans[topicKey])
		}
	}
	return out
}

// Restore seeds the tracker from persisted plans.
func (t *Tracker) Restore(plans []FrozenPlan) {
	for _, plan := range plans {
		t.plans[plan.TopicKey] = plan
	}
}
