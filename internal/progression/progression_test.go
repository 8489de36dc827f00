package progression

import "testing"

func TestXPThresholdTable(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{1, 0},
		{2, 300},
		{3, 900},
		{5, 6500},
		{10, 64000},
		{20, 355000},
	}
	for _, tt := range tests {
		got, err := XPThresholdFor(tt.level)
		if err != nil {
			t.Fatalf("threshold for level %d: %v", tt.level, err)
		}
		if got != tt.want {
			t.Fatalf("threshold for level %d = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestXPThresholdForRejectsOutOfRange(t *testing.T) {
	for _, level := range []int{0, -1, 21} {
		if _, err := XPThresholdFor(level); err == nil {
			t.Fatalf("expected error for level %d", level)
		}
	}
}

func TestCheckLevelUp(t *testing.T) {
	if CheckLevelUp(Record{Level: 1, XPCurrent: 299}) {
		t.Fatal("expected 299 xp to be short of level 2")
	}
	if !CheckLevelUp(Record{Level: 1, XPCurrent: 300}) {
		t.Fatal("expected 300 xp to qualify for level 2")
	}
	if CheckLevelUp(Record{Level: 20, XPCurrent: 1000000}) {
		t.Fatal("expected no level-up past max level")
	}
}

func TestApplyLevelUpSingleStep(t *testing.T) {
	record := Record{Level: 1, XPCurrent: 900, HPMax: 10, HitDie: 8, ConstitutionModifier: 1}

	record, grants, applied := ApplyLevelUp(record)
	if !applied {
		t.Fatal("expected level-up to apply")
	}
	if record.Level != 2 {
		t.Fatalf("expected level 2, got %d", record.Level)
	}
	if grants.ProficiencyBonus != 2 {
		t.Fatalf("expected proficiency bonus 2, got %d", grants.ProficiencyBonus)
	}
	if record.HPMax != 16 {
		t.Fatalf("expected hp max 16 after d8+1 gain, got %d", record.HPMax)
	}

	// 900 XP also covers level 3; the jump still takes a second call.
	record, _, applied = ApplyLevelUp(record)
	if !applied {
		t.Fatal("expected second level-up to apply")
	}
	if record.Level != 3 {
		t.Fatalf("expected level 3, got %d", record.Level)
	}
}

func TestApplyLevelUpIdempotentWhenNotEligible(t *testing.T) {
	record := Record{Level: 2, XPCurrent: 300}
	record, _, applied := ApplyLevelUp(record)
	if applied {
		t.Fatal("expected no-op for ineligible record")
	}
	if record.Level != 2 {
		t.Fatalf("expected level unchanged, got %d", record.Level)
	}
}

func TestCheckLevelUpFalseAfterApply(t *testing.T) {
	record := Record{Level: 1, XPCurrent: 300}
	record, _, applied := ApplyLevelUp(record)
	if !applied {
		t.Fatal("expected level-up to apply")
	}
	if CheckLevelUp(record) {
		t.Fatal("expected no further eligibility at 300 xp and level 2")
	}
}

func TestAwardXPRejectsNegative(t *testing.T) {
	if _, err := AwardXP(Record{Level: 1}, -50); err == nil {
		t.Fatal("expected error for negative award")
	}
}

func TestAdjustXPClampsAtZero(t *testing.T) {
	record := AdjustXP(Record{Level: 1, XPCurrent: 30}, -100)
	if record.XPCurrent != 0 {
		t.Fatalf("expected xp clamped to 0, got %d", record.XPCurrent)
	}
}

func TestProgressionScenario(t *testing.T) {
	// Level-1 character defeats one CR-1 enemy (200 XP) and one surrendered
	// CR-1/4 enemy (50 XP), then earns a 50 XP narrative award.
	record := Record{Level: 1, XPCurrent: 0}

	record, err := AwardXP(record, 250)
	if err != nil {
		t.Fatalf("award combat xp: %v", err)
	}
	if record.XPCurrent != 250 {
		t.Fatalf("expected 250 xp, got %d", record.XPCurrent)
	}
	if CheckLevelUp(record) {
		t.Fatal("expected 250 xp to be short of level 2")
	}

	record, err = AwardXP(record, 50)
	if err != nil {
		t.Fatalf("award narrative xp: %v", err)
	}
	if !CheckLevelUp(record) {
		t.Fatal("expected 300 xp to qualify for level 2")
	}

	record, _, applied := ApplyLevelUp(record)
	if !applied {
		t.Fatal("expected level-up to apply")
	}
	if record.Level != 2 {
		t.Fatalf("expected level 2, got %d", record.Level)
	}
}
