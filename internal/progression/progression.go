// Package progression is the XP and leveling authority.
//
// Level is never derived from accumulated XP. It changes only through an
// explicit level-up application, one level per call, so the external author
// can narrate each level gained.
package progression

import (
	"fmt"

	apperrors "github.com/louisbranch/worldkeeper/internal/platform/errors"
)

// MaxLevel is the highest attainable character level.
const MaxLevel = 20

// xpThresholds[n] is the total XP required to reach level n+1.
var xpThresholds = [MaxLevel]int{
	0, 300, 900, 2700, 6500,
	14000, 23000, 34000, 48000, 64000,
	85000, 100000, 120000, 140000, 165000,
	195000, 225000, 265000, 305000, 355000,
}

// defaultHitDie is used when a record does not declare one.
const defaultHitDie = 8

// Record tracks a character's level and experience.
type Record struct {
	Level     int
	XPCurrent int
	// HPMax is recomputed on level-up from the hit die average.
	HPMax int
	// HitDie is the character's hit die size (d6..d12).
	HitDie int
	// ConstitutionModifier adjusts per-level HP gain.
	ConstitutionModifier int
}

// Grants describes the derived values recomputed on a level-up.
type Grants struct {
	Level            int
	ProficiencyBonus int
	HPGain           int
}

// XPThresholdFor returns the total XP required to reach the given level.
func XPThresholdFor(level int) (int, error) {
	if level < 1 || level > MaxLevel {
		return 0, apperrors.WithMetadata(apperrors.CodeProgressionLevelOutOfRange,
			fmt.Sprintf("level %d is outside 1..%d", level, MaxLevel),
			map[string]string{"level": fmt.Sprintf("%d", level)})
	}
	return xpThresholds[level-1], nil
}

// CheckLevelUp reports whether the record has enough XP for the next level.
func CheckLevelUp(r Record) bool {
	if r.Level >= MaxLevel {
		return false
	}
	threshold, err := XPThresholdFor(r.Level + 1)
	if err != nil {
		return false
	}
	return r.XPCurrent >= threshold
}

// AwardXP adds experience to the record. XP is monotonically non-decreasing;
// administrative corrections go through AdjustXP instead.
func AwardXP(r Record, amount int) (Record, error) {
	if amount < 0 {
		return r, apperrors.New(apperrors.CodeProgressionNegativeAward,
			"xp awards must be non-negative; use an administrative adjustment")
	}
	r.XPCurrent += amount
	return r, nil
}

// AdjustXP applies an explicit administrative correction, which may reduce XP.
func AdjustXP(r Record, delta int) Record {
	r.XPCurrent += delta
	if r.XPCurrent < 0 {
		r.XPCurrent = 0
	}
	return r
}

// ApplyLevelUp increments the level by exactly one and recomputes derived
// grants. It is idempotent per level: when the record is not eligible the
// call is a no-op and the second result is false. Multi-level jumps require
// repeated calls.
func ApplyLevelUp(r Record) (Record, Grants, bool) {
	if !CheckLevelUp(r) {
		return r, Grants{}, false
	}
	r.Level++
	grants := GrantsFor(r.Level, r.HitDie, r.ConstitutionModifier)
	r.HPMax += grants.HPGain
	return r, grants, true
}

// GrantsFor computes the derived values for a freshly attained level.
func GrantsFor(level, hitDie, conMod int) Grants {
	if hitDie <= 0 {
		hitDie = defaultHitDie
	}
	gain := hitDie/2 + 1 + conMod
	if gain < 1 {
		gain = 1
	}
	return Grants{
		Level:            level,
		ProficiencyBonus: 2 + (level-1)/4,
		HPGain:           gain,
	}
}
