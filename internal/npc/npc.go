package npc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Portal is a keyword-activated paid teleport offered by a portal NPC.
type Portal struct {
	Keyword    string `json:"keyword"`
	LocationID string `json:"location"`
	Cost       int    `json:"cost"`
}

// NPC is an immutable NPC template.
type NPC struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Dialogue      string   `json:"dialogue"`
	QuestDialogue string   `json:"questDialogue,omitempty"`
	QuestID       string   `json:"quest,omitempty"`
	Healer        bool     `json:"healer,omitempty"`
	Portals       []Portal `json:"portals,omitempty"`
	ShopID        string   `json:"shop,omitempty"`
}

// IsQuestGiver reports whether the NPC offers a quest.
func (n *NPC) IsQuestGiver() bool {
	return n.QuestID != ""
}

// FindPortal returns the portal matching a spoken keyword.
func (n *NPC) FindPortal(keyword string) (*Portal, bool) {
	for i := range n.Portals {
		if strings.EqualFold(n.Portals[i].Keyword, keyword) {
			return &n.Portals[i], true
		}
	}
	return nil, false
}

// Registry indexes NPC templates by ID.
type Registry struct {
	npcs map[string]*NPC
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{npcs: make(map[string]*NPC)}
}

// Add inserts an NPC template.
func (r *Registry) Add(n *NPC) {
	r.npcs[n.ID] = n
}

// Get returns the template for an ID.
func (r *Registry) Get(id string) (*NPC, bool) {
	n, ok := r.npcs[id]
	return n, ok
}

// Count returns the number of loaded templates.
func (r *Registry) Count() int {
	return len(r.npcs)
}

// All returns every NPC template.
func (r *Registry) All() []*NPC {
	npcs := make([]*NPC, 0, len(r.npcs))
	for _, n := range r.npcs {
		npcs = append(npcs, n)
	}
	return npcs
}

// LoadNPCsFromDir loads every NPC file in a directory.
func LoadNPCsFromDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read npcs directory: %w", err)
	}

	registry := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read npc file %s: %w", path, err)
		}

		var n NPC
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, fmt.Errorf("failed to parse npc file %s: %w", path, err)
		}

		stem := strings.TrimSuffix(entry.Name(), ".json")
		if n.ID != stem {
			return nil, fmt.Errorf("npc file %s declares id %q, want %q", path, n.ID, stem)
		}
		registry.Add(&n)
	}

	return registry, nil
}
