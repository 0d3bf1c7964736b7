package leveling

import (
	"testing"

	"github.com/greyhaven/greyhavenmud/server/internal/config"
)

func progression() config.ProgressionConfig {
	return config.ProgressionConfig{
		BaseXPPerLevel:  100,
		XPMultiplier:    1.5,
		HealthPerLevel:  10,
		ManaPerLevel:    5,
		DamagePerLevel:  2,
		DefensePerLevel: 1,
		MaxLevel:        20,
	}
}

func TestXPForLevelStep(t *testing.T) {
	cfg := progression()
	cases := []struct {
		level int
		want  int
	}{
		{1, 100},
		{2, 150},
		{3, 225},
		{4, 337},
	}
	for _, tc := range cases {
		if got := XPForLevelStep(cfg, tc.level); got != tc.want {
			t.Errorf("XPForLevelStep(%d) = %d, want %d", tc.level, got, tc.want)
		}
	}
}

func TestTotalXPForLevel(t *testing.T) {
	cfg := progression()
	if got := TotalXPForLevel(cfg, 1); got != 0 {
		t.Errorf("TotalXPForLevel(1) = %d, want 0", got)
	}
	if got := TotalXPForLevel(cfg, 2); got != 100 {
		t.Errorf("TotalXPForLevel(2) = %d, want 100", got)
	}
	if got := TotalXPForLevel(cfg, 3); got != 250 {
		t.Errorf("TotalXPForLevel(3) = %d, want 250", got)
	}
}

func TestLevelsGainedMultiple(t *testing.T) {
	cfg := progression()
	gains := LevelsGained(cfg, 1, 250)
	if len(gains) != 2 {
		t.Fatalf("expected 2 levels gained, got %d", len(gains))
	}
	if gains[0].NewLevel != 2 || gains[1].NewLevel != 3 {
		t.Errorf("unexpected levels: %+v", gains)
	}
	if gains[0].HealthGain != 10 || gains[0].DamageGain != 2 {
		t.Errorf("unexpected per-level gains: %+v", gains[0])
	}
}

func TestLevelsGainedIdempotent(t *testing.T) {
	cfg := progression()
	gains := LevelsGained(cfg, 1, 250)
	level := 1
	for _, g := range gains {
		level = g.NewLevel
	}
	if again := LevelsGained(cfg, level, 250); len(again) != 0 {
		t.Errorf("re-running the check gained %d more levels", len(again))
	}
}

func TestLevelsGainedCapsAtMaxLevel(t *testing.T) {
	cfg := progression()
	cfg.MaxLevel = 3
	gains := LevelsGained(cfg, 1, 1_000_000)
	if len(gains) != 2 {
		t.Fatalf("expected to stop at max level, got %d gains", len(gains))
	}
	if gains[len(gains)-1].NewLevel != 3 {
		t.Errorf("final level = %d, want 3", gains[len(gains)-1].NewLevel)
	}
}
