package items

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ItemDefinition is the on-disk JSON shape of an item file.
type ItemDefinition struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Value         int    `json:"value"`
	Type          string `json:"type"`
	Slot          string `json:"slot,omitempty"`
	Stats         Stats  `json:"stats,omitempty"`
	HealAmount    int    `json:"healAmount,omitempty"`
	ManaAmount    int    `json:"manaAmount,omitempty"`
	ManaCost      int    `json:"manaCost,omitempty"`
	Damage        int    `json:"damage,omitempty"`
	TeleportTo    string `json:"teleportTo,omitempty"`
	UsableIn      string `json:"usableIn,omitempty"`
	TeachesRecipe string `json:"teachesRecipe,omitempty"`
}

// Collection indexes item templates by ID.
type Collection struct {
	items map[string]*Item
}

// NewCollection creates an empty item collection.
func NewCollection() *Collection {
	return &Collection{items: make(map[string]*Item)}
}

// Add inserts a template, replacing any previous one with the same ID.
func (c *Collection) Add(item *Item) {
	c.items[item.ID] = item
}

// Get returns the template for an ID.
func (c *Collection) Get(id string) (*Item, bool) {
	item, ok := c.items[id]
	return item, ok
}

// Count returns the number of loaded templates.
func (c *Collection) Count() int {
	return len(c.items)
}

// IDs returns every template ID.
func (c *Collection) IDs() []string {
	ids := make([]string, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	return ids
}

// StringToItemType converts a string to an ItemType
func StringToItemType(typeStr string) (ItemType, error) {
	switch typeStr {
	case "equipment":
		return TypeEquipment, nil
	case "consumable":
		return TypeConsumable, nil
	case "recipe":
		return TypeRecipe, nil
	case "quest":
		return TypeQuest, nil
	case "material":
		return TypeMaterial, nil
	default:
		return TypeEquipment, fmt.Errorf("unknown item type %q", typeStr)
	}
}

// CreateItemFromDefinition builds a template from its JSON definition.
func CreateItemFromDefinition(def *ItemDefinition) (*Item, error) {
	itemType, err := StringToItemType(def.Type)
	if err != nil {
		return nil, err
	}
	if itemType == TypeEquipment && !IsValidSlot(def.Slot) {
		return nil, fmt.Errorf("equipment item %q has invalid slot %q", def.ID, def.Slot)
	}

	useCtx := UseContext(def.UsableIn)
	if useCtx == "" {
		useCtx = UseAnywhere
	}

	return &Item{
		ID:            def.ID,
		Name:          def.Name,
		Description:   def.Description,
		Value:         def.Value,
		Type:          itemType,
		Slot:          EquipmentSlot(def.Slot),
		Stats:         def.Stats,
		HealAmount:    def.HealAmount,
		ManaAmount:    def.ManaAmount,
		ManaCost:      def.ManaCost,
		Damage:        def.Damage,
		TeleportTo:    def.TeleportTo,
		UsableIn:      useCtx,
		TeachesRecipe: def.TeachesRecipe,
	}, nil
}

// LoadItemsFromDir loads every item file in a directory. The file stem
// must match the id declared inside the file.
func LoadItemsFromDir(dir string) (*Collection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read items directory: %w", err)
	}

	collection := NewCollection()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read item file %s: %w", path, err)
		}

		var def ItemDefinition
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("failed to parse item file %s: %w", path, err)
		}

		stem := strings.TrimSuffix(entry.Name(), ".json")
		if def.ID != stem {
			return nil, fmt.Errorf("item file %s declares id %q, want %q", path, def.ID, stem)
		}

		item, err := CreateItemFromDefinition(&def)
		if err != nil {
			return nil, fmt.Errorf("item file %s: %w", path, err)
		}
		collection.Add(item)
	}

	return collection, nil
}
