package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/greyhaven/greyhavenmud/server/internal/crafting"
	"github.com/greyhaven/greyhavenmud/server/internal/player"
	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
	"github.com/greyhaven/greyhavenmud/server/internal/stats"
)

// executeRecipes lists the recipes the player has learned.
func (d *Dispatcher) executeRecipes(p *player.Player) {
	if len(p.KnownRecipes) == 0 {
		d.sendInfo(p, "You do not know any recipes.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Known recipes:\n")
	for _, recipe := range d.world.Catalog().Recipes.All() {
		if !p.KnownRecipes[recipe.ID] {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s (level %d)\n", recipe.Name, recipe.RequiredLevel))
	}
	d.sendInfo(p, strings.TrimRight(sb.String(), "\n"))
}

// executeCraft crafts a known recipe. Material consumption is
// all-or-nothing; an item result needs a free slot before anything is
// consumed.
func (d *Dispatcher) executeCraft(p *player.Player, recipeID string) {
	if recipeID == "" {
		d.sendError(p, "Craft what?")
		return
	}
	recipe, ok := d.world.Catalog().Recipes.GetRecipe(recipeID)
	if !ok || !p.KnownRecipes[recipeID] {
		d.sendError(p, "You do not know that recipe.")
		return
	}
	if p.Level < recipe.RequiredLevel {
		d.sendError(p, fmt.Sprintf("You need to be level %d to craft %s.", recipe.RequiredLevel, recipe.Name))
		return
	}
	if recipe.ResultType == crafting.ResultItem && !p.HasFreeSlots(1) {
		d.sendError(p, "Your inventory is full.")
		return
	}

	if !p.RemoveMaterials(recipe.Materials) {
		var missing []string
		ids := make([]string, 0, len(recipe.Materials))
		for matID := range recipe.Materials {
			ids = append(ids, matID)
		}
		sort.Strings(ids)
		for _, matID := range ids {
			need := recipe.Materials[matID]
			if p.Materials[matID] < need {
				name := matID
				if mat, ok := d.world.Catalog().Materials.Get(matID); ok {
					name = mat.Name
				}
				missing = append(missing, fmt.Sprintf("%s %d/%d", name, p.Materials[matID], need))
			}
		}
		d.sendError(p, "You are missing materials: "+strings.Join(missing, ", ")+".")
		return
	}

	var resultName string
	switch recipe.ResultType {
	case crafting.ResultItem:
		template, ok := d.world.Catalog().Items.Get(recipe.ResultID)
		if !ok {
			d.sendError(p, "The recipe produces nothing recognizable.")
			return
		}
		p.Inventory = append(p.Inventory, template.NewInstance())
		resultName = template.Name
	case crafting.ResultMaterial:
		p.AddMaterial(recipe.ResultID, 1)
		resultName = recipe.ResultID
		if mat, ok := d.world.Catalog().Materials.Get(recipe.ResultID); ok {
			resultName = mat.Name
		}
	}

	var consumed []string
	ids := make([]string, 0, len(recipe.Materials))
	for matID := range recipe.Materials {
		ids = append(ids, matID)
	}
	sort.Strings(ids)
	for _, matID := range ids {
		name := matID
		if mat, ok := d.world.Catalog().Materials.Get(matID); ok {
			name = mat.Name
		}
		consumed = append(consumed, fmt.Sprintf("%d x %s", recipe.Materials[matID], name))
	}

	d.sendSuccess(p, fmt.Sprintf("You craft %s using %s.", resultName, strings.Join(consumed, ", ")))
	d.srv.SavePlayer(p)
}

// executeHarvest gathers from a room resource node. The per-player
// cooldown only advances on a successful roll.
func (d *Dispatcher) executeHarvest(p *player.Player, materialID string) {
	if materialID == "" {
		d.sendError(p, "Harvest what?")
		return
	}
	loc, ok := d.world.GetLocation(p.Location)
	if !ok {
		d.sendError(p, "You are nowhere. This should not happen.")
		return
	}
	node, ok := loc.FindResource(materialID)
	if !ok {
		d.sendError(p, "There is nothing like that to harvest here.")
		return
	}

	name := materialID
	if mat, ok := d.world.Catalog().Materials.Get(materialID); ok {
		name = mat.Name
	}

	now := nowMs()
	key := fmt.Sprintf("%s_%s", loc.ID, materialID)
	if last := p.LastHarvest[key]; last > 0 && now-last < node.CooldownMs {
		remaining := node.CooldownMs - (now - last)
		minutes := (remaining + 59999) / 60000
		d.sendError(p, fmt.Sprintf("You can harvest %s again in %d minutes.", name, minutes))
		return
	}

	if !stats.RollChance(d.rng, node.Chance) {
		d.sendInfo(p, fmt.Sprintf("You failed to harvest %s.", name))
		return
	}

	amount := stats.RollRange(d.rng, node.Amount)
	if amount < 1 {
		amount = 1
	}
	p.AddMaterial(materialID, amount)
	p.LastHarvest[key] = now

	d.sendSuccess(p, fmt.Sprintf("You harvest %d x %s.", amount, name))
	d.srv.Broadcast(loc.ID, fmt.Sprintf("%s gathers %s.", p.Username, name), protocol.MsgSystem, p.Username)
	d.srv.SavePlayer(p)
}

// executeMaterials shows the material pouch.
func (d *Dispatcher) executeMaterials(p *player.Player) {
	if len(p.Materials) == 0 {
		d.sendInfo(p, "You have no materials.")
		return
	}

	ids := make([]string, 0, len(p.Materials))
	for id := range p.Materials {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	sb.WriteString("Materials:\n")
	for _, id := range ids {
		name := id
		if mat, ok := d.world.Catalog().Materials.Get(id); ok {
			name = mat.Name
		}
		sb.WriteString(fmt.Sprintf("  %s x%d\n", name, p.Materials[id]))
	}
	d.sendInfo(p, strings.TrimRight(sb.String(), "\n"))
}
