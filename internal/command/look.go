package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/greyhaven/greyhavenmud/server/internal/player"
	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
	"github.com/greyhaven/greyhavenmud/server/internal/world"
)

// executeLook renders the player's current room.
func (d *Dispatcher) executeLook(p *player.Player) {
	loc, ok := d.world.GetLocation(p.Location)
	if !ok {
		d.sendError(p, "You are nowhere. This should not happen.")
		return
	}

	var sb strings.Builder

	header := loc.Name
	var tags []string
	if loc.Tags.Homestone {
		tags = append(tags, "Home")
	}
	if loc.Shop != nil {
		tags = append(tags, "Shop")
	}
	if loc.Tags.PvPAllowed {
		tags = append(tags, "PvP")
	}
	if len(tags) > 0 {
		header += " [" + strings.Join(tags, ", ") + "]"
	}
	sb.WriteString(header + "\n")
	sb.WriteString(loc.Description + "\n")

	if len(loc.Exits) > 0 {
		sb.WriteString("\nExits:\n")
		for _, dir := range world.Directions {
			destID, ok := loc.Exits[dir]
			if !ok {
				continue
			}
			name := destID
			if dest, ok := d.world.GetLocation(destID); ok {
				name = dest.Name
			}
			sb.WriteString(fmt.Sprintf("  %s: %s\n", dir, name))
		}
	}

	var people []string
	for _, n := range loc.NPCs {
		people = append(people, n.Name)
	}
	for _, other := range d.world.PlayersIn(loc.ID) {
		if other.Username != p.Username {
			people = append(people, other.Username)
		}
	}
	if len(people) > 0 {
		sb.WriteString("\nPeople:\n")
		for _, name := range people {
			sb.WriteString("  " + name + "\n")
		}
	}

	enemies := d.world.VisibleEnemies(p, loc.ID)
	if len(enemies) > 0 {
		sb.WriteString("\nEnemies:\n")
		for _, e := range enemies {
			line := "  " + e.Template.Name
			if wound := e.WoundDescriptor(); wound != "" {
				line += " (" + wound + ")"
			}
			sb.WriteString(line + "\n")
		}
	}

	now := nowMs()
	var itemNames []string
	for _, g := range d.world.VisibleGroundItems(p, loc.ID, now) {
		itemNames = append(itemNames, g.Item.Name)
	}
	for _, dropped := range loc.Dropped {
		itemNames = append(itemNames, dropped.Item.Name)
	}
	if len(itemNames) > 0 {
		sb.WriteString("\nItems:\n")
		for _, name := range itemNames {
			sb.WriteString("  " + name + "\n")
		}
	}

	if len(loc.Resources) > 0 {
		sb.WriteString("\nResources:\n")
		for i := range loc.Resources {
			node := &loc.Resources[i]
			name := node.MaterialID
			if mat, ok := d.world.Catalog().Materials.Get(node.MaterialID); ok {
				name = mat.Name
			}
			key := fmt.Sprintf("%s_%s", loc.ID, node.MaterialID)
			last := p.LastHarvest[key]
			if last > 0 && now-last < node.CooldownMs {
				remaining := node.CooldownMs - (now - last)
				minutes := remaining/60000 + 1
				sb.WriteString(fmt.Sprintf("  %s (available in %d minutes)\n", name, minutes))
			} else {
				sb.WriteString(fmt.Sprintf("  %s (ready)\n", name))
			}
		}
	}

	d.sendInfo(p, strings.TrimRight(sb.String(), "\n"))
	d.sendRoomExits(p, loc)
}

// sendRoomExits emits the structured exits sideband used by clients.
func (d *Dispatcher) sendRoomExits(p *player.Player, loc *world.Location) {
	exits := make(map[string]string, len(loc.Exits))
	for dir, destID := range loc.Exits {
		name := destID
		if dest, ok := d.world.GetLocation(destID); ok {
			name = dest.Name
		}
		exits[dir] = name
	}
	d.srv.SendFrame(p, protocol.ServerFrame{
		Type: protocol.FrameRoomExits,
		Data: protocol.RoomExits{Exits: exits},
	})
}

// executeExamine describes an entity reachable from the player's
// position: an inventory item, a visible room item, a visible enemy, or
// a known recipe.
func (d *Dispatcher) executeExamine(p *player.Player, id string) {
	if id == "" {
		d.sendError(p, "Examine what?")
		return
	}

	if item, ok := p.FindItem(id); ok {
		d.sendInfo(p, d.describeItem(item.ID))
		return
	}
	for slot, item := range p.Equipped {
		if item != nil && item.ID == id {
			d.sendInfo(p, d.describeItem(item.ID)+fmt.Sprintf("\nEquipped in your %s slot.", slot))
			return
		}
	}

	loc, _ := d.world.GetLocation(p.Location)
	if loc != nil {
		for _, g := range d.world.VisibleGroundItems(p, loc.ID, nowMs()) {
			if g.Item.ID == id {
				d.sendInfo(p, d.describeItem(id))
				return
			}
		}
		for _, dropped := range loc.Dropped {
			if dropped.Item.ID == id {
				d.sendInfo(p, d.describeItem(id))
				return
			}
		}
	}

	if e, ok := d.world.FindVisibleEnemy(p, id); ok {
		t := e.Template
		d.sendInfo(p, fmt.Sprintf("%s\n%s\nHealth: %d/%d  Damage: %d  Defense: %d",
			t.Name, t.Description, e.CurrentHealth, t.MaxHealth, t.Damage, t.Defense))
		return
	}

	if recipe, ok := d.world.Catalog().Recipes.GetRecipe(id); ok && p.KnownRecipes[id] {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%s (requires level %d)\nMaterials:\n", recipe.Name, recipe.RequiredLevel))
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
			sb.WriteString(fmt.Sprintf("  %s x%d (you have: %d)\n", name, recipe.Materials[matID], p.Materials[matID]))
		}
		d.sendInfo(p, strings.TrimRight(sb.String(), "\n"))
		return
	}

	d.sendError(p, "You see nothing like that here.")
}

// describeItem renders an item template's full description.
func (d *Dispatcher) describeItem(itemID string) string {
	item, ok := d.world.Catalog().Items.Get(itemID)
	if !ok {
		return "A nondescript object."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s (%s)\n%s", item.Name, item.Type, item.Description))
	if item.Value > 0 {
		sb.WriteString(fmt.Sprintf("\nValue: %d gold", item.Value))
	}
	if item.IsEquippable() {
		sb.WriteString(fmt.Sprintf("\nSlot: %s", item.Slot))
		var stats []string
		if item.Stats.Damage != 0 {
			stats = append(stats, fmt.Sprintf("damage +%d", item.Stats.Damage))
		}
		if item.Stats.Defense != 0 {
			stats = append(stats, fmt.Sprintf("defense +%d", item.Stats.Defense))
		}
		if item.Stats.Health != 0 {
			stats = append(stats, fmt.Sprintf("health +%d", item.Stats.Health))
		}
		if item.Stats.Mana != 0 {
			stats = append(stats, fmt.Sprintf("mana +%d", item.Stats.Mana))
		}
		if len(stats) > 0 {
			sb.WriteString("\nStats: " + strings.Join(stats, ", "))
		}
	}
	if item.IsHealing() {
		sb.WriteString(fmt.Sprintf("\nRestores %d health.", item.HealAmount))
	}
	if item.IsManaRestore() {
		sb.WriteString(fmt.Sprintf("\nRestores %d mana.", item.ManaAmount))
	}
	if item.IsDamageScroll() {
		sb.WriteString(fmt.Sprintf("\nDeals %d damage (costs %d mana).", item.Damage, item.ManaCost))
	}
	if item.IsTeleport() {
		sb.WriteString(fmt.Sprintf("\nTeleports you elsewhere (costs %d mana).", item.ManaCost))
	}
	if item.TeachesARecipe() {
		sb.WriteString("\nTeaches a crafting recipe.")
	}
	return sb.String()
}
