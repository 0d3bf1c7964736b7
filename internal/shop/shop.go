package shop

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Shop is an immutable shop template: a named list of item IDs. Prices
// are derived from item value and the economy multipliers.
type Shop struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// Stocks reports whether the shop sells the given item.
func (s *Shop) Stocks(itemID string) bool {
	for _, id := range s.Items {
		if id == itemID {
			return true
		}
	}
	return false
}

// BuyPrice derives what a shop charges for an item.
func BuyPrice(value int, buyMultiplier float64) int {
	return int(math.Ceil(float64(value) * buyMultiplier))
}

// SellPrice derives what a shop pays for an item.
func SellPrice(value int, sellMultiplier float64) int {
	return int(math.Floor(float64(value) * sellMultiplier))
}

// Registry indexes shop templates by ID.
type Registry struct {
	shops map[string]*Shop
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{shops: make(map[string]*Shop)}
}

// Add inserts a shop template.
func (r *Registry) Add(s *Shop) {
	r.shops[s.ID] = s
}

// Get returns the shop for an ID.
func (r *Registry) Get(id string) (*Shop, bool) {
	s, ok := r.shops[id]
	return s, ok
}

// Count returns the number of loaded shops.
func (r *Registry) Count() int {
	return len(r.shops)
}

// IDs returns every shop ID.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.shops))
	for id := range r.shops {
		ids = append(ids, id)
	}
	return ids
}

// LoadShopsFromDir loads every shop file in a directory.
func LoadShopsFromDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read shops directory: %w", err)
	}

	registry := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read shop file %s: %w", path, err)
		}

		var s Shop
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse shop file %s: %w", path, err)
		}

		stem := strings.TrimSuffix(entry.Name(), ".json")
		if s.ID != stem {
			return nil, fmt.Errorf("shop file %s declares id %q, want %q", path, s.ID, stem)
		}
		registry.Add(&s)
	}

	return registry, nil
}
