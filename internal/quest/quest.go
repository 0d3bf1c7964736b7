package quest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/greyhaven/greyhavenmud/server/internal/logger"
	"github.com/greyhaven/greyhavenmud/server/internal/npc"
)

// QuestType defines the kind of objective
type QuestType string

const (
	TypeKill    QuestType = "kill"
	TypeCollect QuestType = "collect"
	TypeVisit   QuestType = "visit"
)

// Reward defines what the player receives on completion
type Reward struct {
	Gold   int    `json:"gold"`
	XP     int    `json:"xp"`
	ItemID string `json:"item,omitempty"`
}

// Quest is an immutable quest template. NPCID is filled by the
// back-link pass, never by the quest file itself.
type Quest struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Type               QuestType `json:"type"`
	Target             string    `json:"target"`
	Count              int       `json:"count"`
	MaterialDrop       string    `json:"materialDrop,omitempty"`
	Dialogue           string    `json:"dialogue"`
	CompletionDialogue string    `json:"completionDialogue"`
	Reward             Reward    `json:"reward"`
	RequiredLevel      int       `json:"requiredLevel,omitempty"`
	PrerequisiteQuest  string    `json:"prerequisiteQuest,omitempty"`

	NPCID string `json:"-"`
}

// HasItemReward reports whether completion grants an item.
func (q *Quest) HasItemReward() bool {
	return q.Reward.ItemID != ""
}

// Registry holds all loaded quest definitions
type Registry struct {
	quests map[string]*Quest
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{quests: make(map[string]*Quest)}
}

// Add inserts a quest template.
func (r *Registry) Add(q *Quest) {
	r.quests[q.ID] = q
}

// Get returns the quest for an ID.
func (r *Registry) Get(id string) (*Quest, bool) {
	q, ok := r.quests[id]
	return q, ok
}

// Count returns the number of loaded quests.
func (r *Registry) Count() int {
	return len(r.quests)
}

// All returns every quest template.
func (r *Registry) All() []*Quest {
	quests := make([]*Quest, 0, len(r.quests))
	for _, q := range r.quests {
		quests = append(quests, q)
	}
	return quests
}

// LoadQuestsFromDir loads every quest file in a directory.
func LoadQuestsFromDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read quests directory: %w", err)
	}

	registry := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read quest file %s: %w", path, err)
		}

		var q Quest
		if err := json.Unmarshal(data, &q); err != nil {
			return nil, fmt.Errorf("failed to parse quest file %s: %w", path, err)
		}

		stem := strings.TrimSuffix(entry.Name(), ".json")
		if q.ID != stem {
			return nil, fmt.Errorf("quest file %s declares id %q, want %q", path, q.ID, stem)
		}
		switch q.Type {
		case TypeKill, TypeCollect, TypeVisit:
		default:
			return nil, fmt.Errorf("quest %q has invalid type %q", q.ID, q.Type)
		}
		if q.Count <= 0 {
			q.Count = 1
		}
		registry.Add(&q)
	}

	return registry, nil
}

// LinkNPCs attaches each quest's offering NPC by scanning the NPC
// registry. A quest with no offering NPC is a warning; more than one is
// a data error.
func (r *Registry) LinkNPCs(npcs *npc.Registry) error {
	for _, q := range r.quests {
		var offeredBy []string
		for _, n := range npcs.All() {
			if n.QuestID == q.ID {
				offeredBy = append(offeredBy, n.ID)
			}
		}
		switch len(offeredBy) {
		case 0:
			logger.Warning("Quest has no offering NPC", "quest", q.ID)
		case 1:
			q.NPCID = offeredBy[0]
		default:
			return fmt.Errorf("quest %q offered by multiple NPCs: %s", q.ID, strings.Join(offeredBy, ", "))
		}
	}
	return nil
}
