package leveling

import (
	"math"

	"github.com/greyhaven/greyhavenmud/server/internal/config"
)

// XPForLevelStep returns the XP a single level step costs:
// floor(base * mult^(level-1)) for the step from `level` to `level+1`.
func XPForLevelStep(cfg config.ProgressionConfig, level int) int {
	return int(math.Floor(float64(cfg.BaseXPPerLevel) * math.Pow(cfg.XPMultiplier, float64(level-1))))
}

// TotalXPForLevel returns the cumulative XP required to reach a level
// from level 1.
func TotalXPForLevel(cfg config.ProgressionConfig, level int) int {
	total := 0
	for i := 1; i < level; i++ {
		total += XPForLevelStep(cfg, i)
	}
	return total
}

// LevelUpInfo contains information about a level-up event
type LevelUpInfo struct {
	NewLevel    int
	HealthGain  int
	ManaGain    int
	DamageGain  int
	DefenseGain int
}

// LevelsGained walks the cumulative thresholds and returns one
// LevelUpInfo per level gained from the given level and XP total.
// Re-running it after the gains are applied yields nothing, so the
// check is idempotent per XP credit.
func LevelsGained(cfg config.ProgressionConfig, currentLevel, totalXP int) []LevelUpInfo {
	var gains []LevelUpInfo
	level := currentLevel
	for level < cfg.MaxLevel && totalXP >= TotalXPForLevel(cfg, level+1) {
		level++
		gains = append(gains, LevelUpInfo{
			NewLevel:    level,
			HealthGain:  cfg.HealthPerLevel,
			ManaGain:    cfg.ManaPerLevel,
			DamageGain:  cfg.DamagePerLevel,
			DefenseGain: cfg.DefensePerLevel,
		})
	}
	return gains
}
