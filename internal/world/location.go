package world

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/greyhaven/greyhavenmud/server/internal/items"
	"github.com/greyhaven/greyhavenmud/server/internal/npc"
	"github.com/greyhaven/greyhavenmud/server/internal/shop"
)

// EnemyDeclaration is a room-scoped enemy reference. The JSON form is
// either a plain id string or an object carrying gating overrides.
type EnemyDeclaration struct {
	EnemyID                     string   `json:"enemyId"`
	PrerequisiteActiveQuests    []string `json:"prerequisiteActiveQuests,omitempty"`
	PrerequisiteCompletedQuests []string `json:"prerequisiteCompletedQuests,omitempty"`
	OneTime                     bool     `json:"oneTime,omitempty"`
}

// UnmarshalJSON accepts "wolf" and {"enemyId": "wolf", ...} forms.
func (d *EnemyDeclaration) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		d.EnemyID = id
		return nil
	}
	type plain EnemyDeclaration
	return json.Unmarshal(data, (*plain)(d))
}

// GroundItemDeclaration is a room-scoped preset item. The JSON form is
// either a plain id string or an object.
type GroundItemDeclaration struct {
	ItemID                      string   `json:"itemId"`
	RespawnTimeMs               int64    `json:"respawnTime,omitempty"`
	OneTime                     bool     `json:"oneTime,omitempty"`
	PrerequisiteActiveQuests    []string `json:"prerequisiteActiveQuests,omitempty"`
	PrerequisiteCompletedQuests []string `json:"prerequisiteCompletedQuests,omitempty"`
}

// UnmarshalJSON accepts "rusty_key" and {"itemId": "rusty_key", ...} forms.
func (d *GroundItemDeclaration) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		d.ItemID = id
		return nil
	}
	type plain GroundItemDeclaration
	return json.Unmarshal(data, (*plain)(d))
}

// ResourceNode is a per-location harvestable declaration.
type ResourceNode struct {
	MaterialID string  `json:"materialId"`
	Amount     string  `json:"amount"`
	CooldownMs int64   `json:"cooldown"`
	Chance     float64 `json:"chance"`
}

// LocationTags mark special room properties.
type LocationTags struct {
	Homestone  bool `json:"homestone,omitempty"`
	PvPAllowed bool `json:"pvpAllowed,omitempty"`
}

// LocationDefinition is the on-disk JSON shape of a location file.
type LocationDefinition struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Exits       map[string]string       `json:"exits,omitempty"`
	NPCs        []string                `json:"npcs,omitempty"`
	Enemies     []EnemyDeclaration      `json:"enemies,omitempty"`
	GroundItems []GroundItemDeclaration `json:"groundItems,omitempty"`
	ShopID      string                  `json:"shop,omitempty"`
	Resources   []ResourceNode          `json:"resources,omitempty"`
	Tags        LocationTags            `json:"tags,omitempty"`
}

// Location is a fully enriched room: template data plus the runtime
// enemy instances and ground item lists mutated during play.
type Location struct {
	ID          string
	Name        string
	Description string
	Exits       map[string]string
	NPCs        []*npc.NPC
	Shop        *shop.Shop
	Resources   []ResourceNode
	Tags        LocationTags

	Enemies []*EnemyInstance
	Ground  []*GroundItem
	Dropped []*DroppedItem
}

// FindNPC returns the room NPC with the given ID.
func (l *Location) FindNPC(id string) (*npc.NPC, bool) {
	for _, n := range l.NPCs {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// FindResource returns the resource node for a material ID.
func (l *Location) FindResource(materialID string) (*ResourceNode, bool) {
	for i := range l.Resources {
		if l.Resources[i].MaterialID == materialID {
			return &l.Resources[i], true
		}
	}
	return nil, false
}

// AddDropped appends a runtime-dropped item. When the per-location cap
// is exceeded the oldest drop is evicted and returned.
func (l *Location) AddDropped(item *items.Item, now int64, cap int) *DroppedItem {
	l.Dropped = append(l.Dropped, &DroppedItem{Item: item, DroppedAt: now})
	if cap > 0 && len(l.Dropped) > cap {
		evicted := l.Dropped[0]
		l.Dropped = l.Dropped[1:]
		return evicted
	}
	return nil
}

// RemoveDropped removes and returns the first dropped item with the
// given item ID.
func (l *Location) RemoveDropped(itemID string) (*DroppedItem, bool) {
	for i, d := range l.Dropped {
		if d.Item.ID == itemID {
			l.Dropped = append(l.Dropped[:i], l.Dropped[i+1:]...)
			return d, true
		}
	}
	return nil, false
}

// LoadLocationsFromDir loads every location file in a directory.
func LoadLocationsFromDir(dir string) (map[string]*LocationDefinition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read locations directory: %w", err)
	}

	defs := make(map[string]*LocationDefinition)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read location file %s: %w", path, err)
		}

		var def LocationDefinition
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("failed to parse location file %s: %w", path, err)
		}

		stem := strings.TrimSuffix(entry.Name(), ".json")
		if def.ID != stem {
			return nil, fmt.Errorf("location file %s declares id %q, want %q", path, def.ID, stem)
		}
		for dir := range def.Exits {
			if !IsDirection(dir) {
				return nil, fmt.Errorf("location %q has invalid exit direction %q", def.ID, dir)
			}
		}
		defs[def.ID] = &def
	}

	return defs, nil
}
