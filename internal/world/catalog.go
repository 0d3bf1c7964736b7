package world

import (
	"fmt"
	"path/filepath"

	"github.com/greyhaven/greyhavenmud/server/internal/crafting"
	"github.com/greyhaven/greyhavenmud/server/internal/enemy"
	"github.com/greyhaven/greyhavenmud/server/internal/items"
	"github.com/greyhaven/greyhavenmud/server/internal/logger"
	"github.com/greyhaven/greyhavenmud/server/internal/npc"
	"github.com/greyhaven/greyhavenmud/server/internal/quest"
	"github.com/greyhaven/greyhavenmud/server/internal/shop"
)

// Catalog is the immutable template catalog assembled at startup. The
// Location values inside carry the mutable runtime lists, but the
// template data and the index itself never change after load.
type Catalog struct {
	Items     *items.Collection
	Enemies   *enemy.Registry
	NPCs      *npc.Registry
	Quests    *quest.Registry
	Shops     *shop.Registry
	Recipes   *crafting.RecipeRegistry
	Materials *crafting.MaterialRegistry
	Locations map[string]*Location
}

// LoadCatalog reads the whole data directory, resolves every
// cross-reference, and fails fast on the first unknown ID.
func LoadCatalog(dataDir string) (*Catalog, error) {
	itemCollection, err := items.LoadItemsFromDir(filepath.Join(dataDir, "items"))
	if err != nil {
		return nil, err
	}
	enemyRegistry, err := enemy.LoadEnemiesFromDir(filepath.Join(dataDir, "enemies"))
	if err != nil {
		return nil, err
	}
	npcRegistry, err := npc.LoadNPCsFromDir(filepath.Join(dataDir, "npcs"))
	if err != nil {
		return nil, err
	}
	questRegistry, err := quest.LoadQuestsFromDir(filepath.Join(dataDir, "quests"))
	if err != nil {
		return nil, err
	}
	shopRegistry, err := shop.LoadShopsFromDir(filepath.Join(dataDir, "shops"))
	if err != nil {
		return nil, err
	}
	recipeRegistry, err := crafting.LoadRecipesFromDir(filepath.Join(dataDir, "recipes"))
	if err != nil {
		return nil, err
	}
	materialRegistry, err := crafting.LoadMaterialsFromDir(filepath.Join(dataDir, "materials"))
	if err != nil {
		return nil, err
	}
	locationDefs, err := LoadLocationsFromDir(filepath.Join(dataDir, "locations"))
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{
		Items:     itemCollection,
		Enemies:   enemyRegistry,
		NPCs:      npcRegistry,
		Quests:    questRegistry,
		Shops:     shopRegistry,
		Recipes:   recipeRegistry,
		Materials: materialRegistry,
		Locations: make(map[string]*Location, len(locationDefs)),
	}

	if err := catalog.enrichLocations(locationDefs); err != nil {
		return nil, err
	}
	if err := catalog.validateReferences(); err != nil {
		return nil, err
	}
	if err := questRegistry.LinkNPCs(npcRegistry); err != nil {
		return nil, err
	}

	logger.Info("Content catalog loaded",
		"locations", len(catalog.Locations),
		"items", itemCollection.Count(),
		"enemies", enemyRegistry.Count(),
		"npcs", npcRegistry.Count(),
		"quests", questRegistry.Count(),
		"shops", shopRegistry.Count(),
		"recipes", recipeRegistry.Count(),
		"materials", materialRegistry.Count())

	return catalog, nil
}

// enrichLocations rewrites the ID references inside each location
// definition into template pointers and builds the runtime enemy and
// ground-item lists.
func (c *Catalog) enrichLocations(defs map[string]*LocationDefinition) error {
	for id, def := range defs {
		loc := &Location{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Exits:       def.Exits,
			Resources:   def.Resources,
			Tags:        def.Tags,
		}
		if loc.Exits == nil {
			loc.Exits = make(map[string]string)
		}

		for _, npcID := range def.NPCs {
			n, ok := c.NPCs.Get(npcID)
			if !ok {
				return fmt.Errorf("npc %q referenced from location %q does not exist", npcID, id)
			}
			loc.NPCs = append(loc.NPCs, n)
		}

		for _, decl := range def.Enemies {
			template, ok := c.Enemies.Get(decl.EnemyID)
			if !ok {
				return fmt.Errorf("enemy %q referenced from location %q does not exist", decl.EnemyID, id)
			}
			loc.Enemies = append(loc.Enemies, NewEnemyInstance(template, id, decl))
		}

		for _, decl := range def.GroundItems {
			template, ok := c.Items.Get(decl.ItemID)
			if !ok {
				return fmt.Errorf("item %q referenced from location %q does not exist", decl.ItemID, id)
			}
			loc.Ground = append(loc.Ground, &GroundItem{
				Item:                        template,
				LocationID:                  id,
				RespawnTimeMs:               decl.RespawnTimeMs,
				OneTime:                     decl.OneTime,
				PrerequisiteActiveQuests:    decl.PrerequisiteActiveQuests,
				PrerequisiteCompletedQuests: decl.PrerequisiteCompletedQuests,
			})
		}

		if def.ShopID != "" {
			s, ok := c.Shops.Get(def.ShopID)
			if !ok {
				return fmt.Errorf("shop %q referenced from location %q does not exist", def.ShopID, id)
			}
			loc.Shop = s
		}

		for _, node := range def.Resources {
			if _, ok := c.Materials.Get(node.MaterialID); !ok {
				return fmt.Errorf("material %q referenced from location %q does not exist", node.MaterialID, id)
			}
		}

		c.Locations[id] = loc
	}
	return nil
}

// validateReferences walks every remaining cross-reference in the
// catalog: exits, shop stock, quest targets and rewards, recipe inputs
// and outputs.
func (c *Catalog) validateReferences() error {
	for id, loc := range c.Locations {
		for dir, destID := range loc.Exits {
			if _, ok := c.Locations[destID]; !ok {
				return fmt.Errorf("location %q referenced from exit %s of %q does not exist", destID, dir, id)
			}
		}
	}

	for _, q := range c.Quests.All() {
		switch q.Type {
		case quest.TypeKill:
			if _, ok := c.Enemies.Get(q.Target); !ok {
				return fmt.Errorf("enemy %q referenced from quest %q does not exist", q.Target, q.ID)
			}
		case quest.TypeCollect:
			_, isMaterial := c.Materials.Get(q.Target)
			_, isItem := c.Items.Get(q.Target)
			if !isMaterial && !isItem {
				return fmt.Errorf("collect target %q referenced from quest %q does not exist", q.Target, q.ID)
			}
		case quest.TypeVisit:
			if _, ok := c.NPCs.Get(q.Target); !ok {
				return fmt.Errorf("npc %q referenced from quest %q does not exist", q.Target, q.ID)
			}
		}
		if q.HasItemReward() {
			if _, ok := c.Items.Get(q.Reward.ItemID); !ok {
				return fmt.Errorf("item %q referenced from quest %q reward does not exist", q.Reward.ItemID, q.ID)
			}
		}
		if q.PrerequisiteQuest != "" {
			if _, ok := c.Quests.Get(q.PrerequisiteQuest); !ok {
				return fmt.Errorf("quest %q referenced from quest %q prerequisite does not exist", q.PrerequisiteQuest, q.ID)
			}
		}
	}

	for _, n := range c.NPCs.All() {
		if n.QuestID != "" {
			if _, ok := c.Quests.Get(n.QuestID); !ok {
				return fmt.Errorf("quest %q referenced from npc %q does not exist", n.QuestID, n.ID)
			}
		}
		if n.ShopID != "" {
			if _, ok := c.Shops.Get(n.ShopID); !ok {
				return fmt.Errorf("shop %q referenced from npc %q does not exist", n.ShopID, n.ID)
			}
		}
		for _, portal := range n.Portals {
			if _, ok := c.Locations[portal.LocationID]; !ok {
				return fmt.Errorf("location %q referenced from npc %q portal does not exist", portal.LocationID, n.ID)
			}
		}
	}

	for _, e := range enemiesOf(c.Enemies) {
		for materialID := range e.MaterialDrops {
			if _, ok := c.Materials.Get(materialID); !ok {
				return fmt.Errorf("material %q referenced from enemy %q drops does not exist", materialID, e.ID)
			}
		}
		for itemID := range e.ItemDrops {
			if _, ok := c.Items.Get(itemID); !ok {
				return fmt.Errorf("item %q referenced from enemy %q drops does not exist", itemID, e.ID)
			}
		}
	}

	for _, shopID := range shopIDs(c.Shops) {
		s, _ := c.Shops.Get(shopID)
		for _, itemID := range s.Items {
			if _, ok := c.Items.Get(itemID); !ok {
				return fmt.Errorf("item %q referenced from shop %q does not exist", itemID, shopID)
			}
		}
	}

	for _, r := range c.Recipes.All() {
		switch r.ResultType {
		case crafting.ResultItem:
			if _, ok := c.Items.Get(r.ResultID); !ok {
				return fmt.Errorf("item %q referenced from recipe %q result does not exist", r.ResultID, r.ID)
			}
		case crafting.ResultMaterial:
			if _, ok := c.Materials.Get(r.ResultID); !ok {
				return fmt.Errorf("material %q referenced from recipe %q result does not exist", r.ResultID, r.ID)
			}
		}
		for materialID := range r.Materials {
			if _, ok := c.Materials.Get(materialID); !ok {
				return fmt.Errorf("material %q referenced from recipe %q does not exist", materialID, r.ID)
			}
		}
	}

	for _, item := range allItems(c.Items) {
		if item.TeachesRecipe != "" {
			if _, ok := c.Recipes.GetRecipe(item.TeachesRecipe); !ok {
				return fmt.Errorf("recipe %q referenced from item %q does not exist", item.TeachesRecipe, item.ID)
			}
		}
	}

	return nil
}

func enemiesOf(r *enemy.Registry) []*enemy.Enemy {
	var out []*enemy.Enemy
	for _, id := range r.IDs() {
		if e, ok := r.Get(id); ok {
			out = append(out, e)
		}
	}
	return out
}

func shopIDs(r *shop.Registry) []string {
	return r.IDs()
}

func allItems(c *items.Collection) []*items.Item {
	var out []*items.Item
	for _, id := range c.IDs() {
		if item, ok := c.Get(id); ok {
			out = append(out, item)
		}
	}
	return out
}
