package crafting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Material is a stackable crafting resource. Rarity is a cosmetic tag
// only; it never affects game rules.
type Material struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rarity      string `json:"rarity,omitempty"`
}

// MaterialRegistry indexes material templates by ID.
type MaterialRegistry struct {
	materials map[string]*Material
}

// NewMaterialRegistry creates an empty registry.
func NewMaterialRegistry() *MaterialRegistry {
	return &MaterialRegistry{materials: make(map[string]*Material)}
}

// Add inserts a material.
func (r *MaterialRegistry) Add(m *Material) {
	r.materials[m.ID] = m
}

// Get returns the material for an ID.
func (r *MaterialRegistry) Get(id string) (*Material, bool) {
	m, ok := r.materials[id]
	return m, ok
}

// Count returns the number of loaded materials.
func (r *MaterialRegistry) Count() int {
	return len(r.materials)
}

// LoadMaterialsFromDir loads every material file in a directory.
func LoadMaterialsFromDir(dir string) (*MaterialRegistry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read materials directory: %w", err)
	}

	registry := NewMaterialRegistry()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read material file %s: %w", path, err)
		}

		var m Material
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse material file %s: %w", path, err)
		}

		stem := strings.TrimSuffix(entry.Name(), ".json")
		if m.ID != stem {
			return nil, fmt.Errorf("material file %s declares id %q, want %q", path, m.ID, stem)
		}
		registry.Add(&m)
	}

	return registry, nil
}
