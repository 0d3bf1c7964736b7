package enemy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/greyhaven/greyhavenmud/server/internal/stats"
)

// MaterialDrop is a chance-gated material reward with an amount range.
type MaterialDrop struct {
	Chance float64 `json:"chance"`
	Amount string  `json:"amount"`
}

// ItemDrop is a chance-gated item reward.
type ItemDrop struct {
	Chance float64 `json:"chance"`
}

// Enemy is an immutable enemy template. Room-scoped instances carry the
// mutable combat state; see the world package.
type Enemy struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Description   string                  `json:"description"`
	Health        int                     `json:"health"`
	MaxHealth     int                     `json:"maxHealth"`
	Damage        int                     `json:"damage"`
	Defense       int                     `json:"defense"`
	Gold          int                     `json:"gold"`
	XP            int                     `json:"xp"`
	MaterialDrops map[string]MaterialDrop `json:"materialDrops,omitempty"`
	ItemDrops     map[string]ItemDrop     `json:"itemDrops,omitempty"`
	RespawnTimeMs int64                   `json:"respawnTime,omitempty"`

	// Optional gating, overridable per room-scoped declaration
	PrerequisiteActiveQuests    []string `json:"prerequisiteActiveQuests,omitempty"`
	PrerequisiteCompletedQuests []string `json:"prerequisiteCompletedQuests,omitempty"`
	OneTime                     bool     `json:"oneTime,omitempty"`
}

// Registry indexes enemy templates by ID.
type Registry struct {
	enemies map[string]*Enemy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{enemies: make(map[string]*Enemy)}
}

// Add inserts an enemy template.
func (r *Registry) Add(e *Enemy) {
	r.enemies[e.ID] = e
}

// Get returns the template for an ID.
func (r *Registry) Get(id string) (*Enemy, bool) {
	e, ok := r.enemies[id]
	return e, ok
}

// Count returns the number of loaded templates.
func (r *Registry) Count() int {
	return len(r.enemies)
}

// IDs returns every template ID.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.enemies))
	for id := range r.enemies {
		ids = append(ids, id)
	}
	return ids
}

// LoadEnemiesFromDir loads every enemy file in a directory.
func LoadEnemiesFromDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read enemies directory: %w", err)
	}

	registry := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read enemy file %s: %w", path, err)
		}

		var e Enemy
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("failed to parse enemy file %s: %w", path, err)
		}

		stem := strings.TrimSuffix(entry.Name(), ".json")
		if e.ID != stem {
			return nil, fmt.Errorf("enemy file %s declares id %q, want %q", path, e.ID, stem)
		}
		if e.MaxHealth <= 0 {
			e.MaxHealth = e.Health
		}
		if e.MaxHealth <= 0 {
			return nil, fmt.Errorf("enemy %q has no health", e.ID)
		}
		for materialID, drop := range e.MaterialDrops {
			if _, _, err := stats.ParseRange(drop.Amount); err != nil {
				return nil, fmt.Errorf("enemy %q material drop %q: %w", e.ID, materialID, err)
			}
		}
		registry.Add(&e)
	}

	return registry, nil
}
