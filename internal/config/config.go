package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// GameConfig holds every tunable the game engine reads at runtime.
// Loaded once from data/config.json; absent fields fall back to defaults.
type GameConfig struct {
	Player      PlayerConfig      `json:"player"`
	Gameplay    GameplayConfig    `json:"gameplay"`
	Progression ProgressionConfig `json:"progression"`
	Economy     EconomyConfig     `json:"economy"`
	RateLimit   RateLimitConfig   `json:"rateLimit"`
}

// PlayerConfig holds the starting values for a freshly registered player.
type PlayerConfig struct {
	StartingLocation string `json:"startingLocation"`
	BaseHealth       int    `json:"baseHealth"`
	BaseMana         int    `json:"baseMana"`
	BaseDamage       int    `json:"baseDamage"`
	BaseDefense      int    `json:"baseDefense"`
	StartingGold     int    `json:"startingGold"`
}

// GameplayConfig holds combat, inventory and item-lifecycle tunables.
type GameplayConfig struct {
	MaxInventorySlots          int     `json:"maxInventorySlots"`
	FleeSuccessChance          float64 `json:"fleeSuccessChance"`
	EnemyRespawnTimeMs         int64   `json:"enemyRespawnTime"`
	DeathGoldLossPct           float64 `json:"deathGoldLossPct"`
	DeathRespawnLocation       string  `json:"deathRespawnLocation"`
	DamageVariance             float64 `json:"damageVariance"`
	EnemyCounterAttackDelayMs  int64   `json:"enemyCounterAttackDelayMs"`
	CombatRoundDelayMs         int64   `json:"combatRoundDelayMs"`
	PvPGoldLootPercentage      float64 `json:"pvpGoldLootPercentage"`
	DroppedItemLifetimeMs      int64   `json:"droppedItemLifetime"`
	MaxDroppedItemsPerLocation int     `json:"maxDroppedItemsPerLocation"`
	ItemUseCooldownMs          int64   `json:"itemUseCooldown"`
}

// ProgressionConfig holds the leveling curve.
type ProgressionConfig struct {
	BaseXPPerLevel  int     `json:"baseXpPerLevel"`
	XPMultiplier    float64 `json:"xpMultiplier"`
	HealthPerLevel  int     `json:"healthPerLevel"`
	ManaPerLevel    int     `json:"manaPerLevel"`
	DamagePerLevel  int     `json:"damagePerLevel"`
	DefensePerLevel int     `json:"defensePerLevel"`
	MaxLevel        int     `json:"maxLevel"`
	HealOnLevelUp   bool    `json:"healOnLevelUp"`
}

// EconomyConfig holds shop and healer pricing.
type EconomyConfig struct {
	ShopBuyMultiplier  float64 `json:"shopBuyMultiplier"`
	ShopSellMultiplier float64 `json:"shopSellMultiplier"`
	HealerCostFactor   float64 `json:"healerCostFactor"`
}

// RateLimitConfig holds per-IP registration and login limits.
type RateLimitConfig struct {
	Enabled                  bool  `json:"enabled"`
	MaxAccountsPerIP         int   `json:"maxAccountsPerIP"`
	AccountCreationCooldownS int64 `json:"accountCreationCooldown"`
	LoginAttemptWindowS      int64 `json:"loginAttemptWindow"`
	MaxLoginAttempts         int   `json:"maxLoginAttempts"`
}

// DefaultConfig returns a GameConfig with playable defaults.
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Player: PlayerConfig{
			StartingLocation: "town_square",
			BaseHealth:       100,
			BaseMana:         50,
			BaseDamage:       5,
			BaseDefense:      0,
			StartingGold:     20,
		},
		Gameplay: GameplayConfig{
			MaxInventorySlots:          16,
			FleeSuccessChance:          0.6,
			EnemyRespawnTimeMs:         30000,
			DeathGoldLossPct:           0.1,
			DeathRespawnLocation:       "town_square",
			DamageVariance:             0.1,
			EnemyCounterAttackDelayMs:  800,
			CombatRoundDelayMs:         2000,
			PvPGoldLootPercentage:      0.1,
			DroppedItemLifetimeMs:      300000,
			MaxDroppedItemsPerLocation: 10,
			ItemUseCooldownMs:          1000,
		},
		Progression: ProgressionConfig{
			BaseXPPerLevel:  100,
			XPMultiplier:    1.5,
			HealthPerLevel:  10,
			ManaPerLevel:    5,
			DamagePerLevel:  2,
			DefensePerLevel: 1,
			MaxLevel:        20,
			HealOnLevelUp:   true,
		},
		Economy: EconomyConfig{
			ShopBuyMultiplier:  1.25,
			ShopSellMultiplier: 0.5,
			HealerCostFactor:   50,
		},
		RateLimit: RateLimitConfig{
			Enabled:                  true,
			MaxAccountsPerIP:         5,
			AccountCreationCooldownS: 60,
			LoginAttemptWindowS:      300,
			MaxLoginAttempts:         5,
		},
	}
}

// LoadConfig reads the game config from a JSON file, applying defaults
// for any field the file omits.
func LoadConfig(path string) (*GameConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if cfg.Gameplay.MaxInventorySlots <= 0 {
		cfg.Gameplay.MaxInventorySlots = 16
	}
	if cfg.Progression.MaxLevel <= 0 {
		cfg.Progression.MaxLevel = 20
	}

	return cfg, nil
}
