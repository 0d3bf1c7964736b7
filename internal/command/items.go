package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/greyhaven/greyhavenmud/server/internal/items"
	"github.com/greyhaven/greyhavenmud/server/internal/player"
	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
	"github.com/greyhaven/greyhavenmud/server/internal/quest"
)

// executeInventory shows composite stats, gold and the carried items.
func (d *Dispatcher) executeInventory(p *player.Player) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Health %d/%d  Mana %d/%d  Damage %d  Defense %d\n",
		p.CurrentHealth, p.MaxHealth(), p.CurrentMana, p.MaxMana(), p.TotalDamage(), p.TotalDefense()))
	sb.WriteString(fmt.Sprintf("Gold: %d\n", p.Gold))
	sb.WriteString(fmt.Sprintf("Slots: %d/%d\n", len(p.Inventory), p.MaxInventorySlots()))
	if len(p.Inventory) == 0 {
		sb.WriteString("You are carrying nothing.")
	} else {
		sb.WriteString("Carrying:\n")
		for _, item := range p.Inventory {
			sb.WriteString("  " + item.Name + "\n")
		}
	}
	d.sendInfo(p, strings.TrimRight(sb.String(), "\n"))
}

// executeEquipment shows the four equipment slots.
func (d *Dispatcher) executeEquipment(p *player.Player) {
	var sb strings.Builder
	sb.WriteString("Equipment:\n")
	for _, slot := range items.Slots {
		name := "(empty)"
		if item := p.Equipped[slot]; item != nil {
			name = item.Name
		}
		sb.WriteString(fmt.Sprintf("  %-9s %s\n", slot, name))
	}
	d.sendInfo(p, strings.TrimRight(sb.String(), "\n"))
}

// executeEquip puts an inventory item into its slot, swapping out any
// previous occupant.
func (d *Dispatcher) executeEquip(p *player.Player, itemID string) {
	if itemID == "" {
		d.sendError(p, "Equip what?")
		return
	}
	equipped, previous, err := p.Equip(itemID)
	if err != nil {
		d.sendError(p, capitalize(err.Error())+".")
		return
	}
	if previous != nil {
		d.sendSuccess(p, fmt.Sprintf("You swap %s for %s.", previous.Name, equipped.Name))
	} else {
		d.sendSuccess(p, fmt.Sprintf("You equip %s.", equipped.Name))
	}
	d.srv.SendGameState(p)
	d.srv.SavePlayer(p)
}

// executeUnequip moves a slot's item back to the inventory.
func (d *Dispatcher) executeUnequip(p *player.Player, slotName string) {
	if !items.IsValidSlot(slotName) {
		d.sendError(p, "Unequip which slot? (weapon, armor, shield, accessory)")
		return
	}
	item, err := p.Unequip(items.EquipmentSlot(slotName))
	if err != nil {
		d.sendError(p, capitalize(err.Error())+".")
		return
	}
	d.sendSuccess(p, fmt.Sprintf("You unequip %s.", item.Name))
	d.srv.SendGameState(p)
	d.srv.SavePlayer(p)
}

// executeUse consumes an item: heal, mana, damage scroll, teleport, or
// recipe learning. The item is consumed only when its effect applied.
func (d *Dispatcher) executeUse(p *player.Player, itemID string) {
	if itemID == "" {
		d.sendError(p, "Use what?")
		return
	}
	item, ok := p.FindItem(itemID)
	if !ok {
		d.sendError(p, "You are not carrying that.")
		return
	}
	if !item.IsConsumable() {
		d.sendError(p, fmt.Sprintf("You cannot use %s.", item.Name))
		return
	}

	now := nowMs()
	if cooldown := d.cfg.Gameplay.ItemUseCooldownMs; cooldown > 0 && p.LastItemUseAt > 0 {
		if elapsed := now - p.LastItemUseAt; elapsed < cooldown {
			remaining := time.Duration(cooldown-elapsed) * time.Millisecond
			d.sendError(p, fmt.Sprintf("You must wait %.1f seconds before using another item.", remaining.Seconds()))
			return
		}
	}

	inCombat := d.world.IsInCombat(p)
	switch item.UsableIn {
	case items.UseCombat:
		if !inCombat {
			d.sendError(p, fmt.Sprintf("%s can only be used in combat.", item.Name))
			return
		}
	case items.UsePeaceful:
		if inCombat {
			d.sendError(p, fmt.Sprintf("%s cannot be used while fighting.", item.Name))
			return
		}
	}

	switch {
	case item.IsHealing():
		if p.CurrentHealth >= p.MaxHealth() {
			d.sendError(p, "You are already at full health.")
			return
		}
		healed := p.Heal(item.HealAmount)
		p.RemoveItem(item.ID)
		p.LastItemUseAt = now
		d.sendSuccess(p, fmt.Sprintf("You use %s and recover %d health (%d/%d).", item.Name, healed, p.CurrentHealth, p.MaxHealth()))

	case item.IsManaRestore():
		if p.CurrentMana >= p.MaxMana() {
			d.sendError(p, "Your mana is already full.")
			return
		}
		restored := p.RestoreMana(item.ManaAmount)
		p.RemoveItem(item.ID)
		p.LastItemUseAt = now
		d.sendSuccess(p, fmt.Sprintf("You use %s and recover %d mana (%d/%d).", item.Name, restored, p.CurrentMana, p.MaxMana()))

	case item.IsDamageScroll():
		e, ok := d.world.EngagedEnemy(p)
		if !ok {
			d.sendError(p, "There is no enemy to unleash that on.")
			return
		}
		if !p.SpendMana(item.ManaCost) {
			d.sendError(p, fmt.Sprintf("You need %d mana to use %s.", item.ManaCost, item.Name))
			return
		}
		p.RemoveItem(item.ID)
		p.LastItemUseAt = now
		// Scroll damage lands as written: no variance, no defense.
		e.CurrentHealth -= item.Damage
		if e.CurrentHealth < 0 {
			e.CurrentHealth = 0
		}
		d.srv.Broadcast(e.LocationID,
			fmt.Sprintf("%s unleashes %s on %s for %d (%d/%d)", p.Username, item.Name, e.Template.Name, item.Damage, e.CurrentHealth, e.Template.MaxHealth),
			protocol.MsgCombat, "")
		if !e.IsAlive() {
			d.handleEnemyDeath(e)
		}

	case item.IsTeleport():
		if _, ok := d.world.GetLocation(item.TeleportTo); !ok {
			d.sendError(p, fmt.Sprintf("%s fizzles; its destination is gone.", item.Name))
			return
		}
		if !p.SpendMana(item.ManaCost) {
			d.sendError(p, fmt.Sprintf("You need %d mana to use %s.", item.ManaCost, item.Name))
			return
		}
		p.RemoveItem(item.ID)
		p.LastItemUseAt = now
		d.CancelTradeFor(p, "trade cancelled: you left the room")
		d.sendSuccess(p, fmt.Sprintf("You use %s and the world shifts around you.", item.Name))
		d.movePlayer(p, item.TeleportTo, "")

	case item.TeachesARecipe():
		recipe, ok := d.world.Catalog().Recipes.GetRecipe(item.TeachesRecipe)
		if !ok {
			d.sendError(p, "The writing is indecipherable.")
			return
		}
		if p.Level < recipe.RequiredLevel {
			d.sendError(p, fmt.Sprintf("You need to be level %d to understand %s.", recipe.RequiredLevel, item.Name))
			return
		}
		if p.KnownRecipes[recipe.ID] {
			d.sendError(p, fmt.Sprintf("You already know how to craft %s.", recipe.Name))
			return
		}
		p.KnownRecipes[recipe.ID] = true
		p.RemoveItem(item.ID)
		p.LastItemUseAt = now
		d.sendSuccess(p, fmt.Sprintf("You study %s and learn to craft %s!", item.Name, recipe.Name))

	default:
		d.sendError(p, fmt.Sprintf("Nothing happens when you use %s.", item.Name))
		return
	}

	d.srv.SendGameState(p)
	d.srv.SavePlayer(p)
}

// executeGet picks up a visible room item: a preset ground item or a
// runtime drop.
func (d *Dispatcher) executeGet(p *player.Player, itemID string) {
	if itemID == "" {
		d.sendError(p, "Get what?")
		return
	}
	loc, ok := d.world.GetLocation(p.Location)
	if !ok {
		d.sendError(p, "You are nowhere. This should not happen.")
		return
	}
	if !p.HasFreeSlots(1) {
		d.sendError(p, "Your inventory is full.")
		return
	}

	now := nowMs()

	for _, g := range d.world.VisibleGroundItems(p, loc.ID, now) {
		if g.Item.ID != itemID {
			continue
		}
		instance := g.Item.NewInstance()
		if err := p.AddItem(instance); err != nil {
			d.sendError(p, "Your inventory is full.")
			return
		}
		if g.RespawnTimeMs > 0 {
			g.LastPickedUpAt = now
		} else {
			// No respawn timer: the preset stays gone for this player.
			p.OneTimeItemsPickedUp[g.Key()] = true
		}
		if g.OneTime {
			p.OneTimeItemsPickedUp[g.Key()] = true
		}
		d.sendSuccess(p, fmt.Sprintf("You pick up %s.", instance.Name))
		d.srv.Broadcast(loc.ID, fmt.Sprintf("%s picks up %s.", p.Username, instance.Name), protocol.MsgSystem, p.Username)
		d.advanceCollectQuests(p, instance.ID)
		d.srv.SavePlayer(p)
		return
	}

	if dropped, ok := loc.RemoveDropped(itemID); ok {
		if err := p.AddItem(dropped.Item); err != nil {
			loc.Dropped = append(loc.Dropped, dropped)
			d.sendError(p, "Your inventory is full.")
			return
		}
		d.sendSuccess(p, fmt.Sprintf("You pick up %s.", dropped.Item.Name))
		d.srv.Broadcast(loc.ID, fmt.Sprintf("%s picks up %s.", p.Username, dropped.Item.Name), protocol.MsgSystem, p.Username)
		d.advanceCollectQuests(p, dropped.Item.ID)
		d.srv.SavePlayer(p)
		return
	}

	d.sendError(p, "You see nothing like that here.")
}

// advanceCollectQuests reports progress on active collect quests whose
// target is the picked-up item.
func (d *Dispatcher) advanceCollectQuests(p *player.Player, itemID string) {
	for questID := range p.ActiveQuests {
		q, ok := d.world.Catalog().Quests.Get(questID)
		if !ok || q.Type != quest.TypeCollect || q.Target != itemID {
			continue
		}
		have := p.CountItems(itemID)
		if have > q.Count {
			have = q.Count
		}
		p.ActiveQuests[questID] = have
		d.srv.Send(p, fmt.Sprintf("Quest %s: %d/%d", q.Name, have, q.Count), protocol.MsgInfo)
	}
}

// executeDrop leaves an inventory item on the floor. The room's drop
// list is capped; the oldest drop crumbles when the cap is exceeded.
func (d *Dispatcher) executeDrop(p *player.Player, itemID string) {
	if itemID == "" {
		d.sendError(p, "Drop what?")
		return
	}
	loc, ok := d.world.GetLocation(p.Location)
	if !ok {
		d.sendError(p, "You are nowhere. This should not happen.")
		return
	}
	item, ok := p.RemoveItem(itemID)
	if !ok {
		d.sendError(p, "You are not carrying that.")
		return
	}

	d.dropOnGround(loc.ID, item)

	d.sendSuccess(p, fmt.Sprintf("You drop %s.", item.Name))
	d.srv.Broadcast(loc.ID, fmt.Sprintf("%s drops %s.", p.Username, item.Name), protocol.MsgSystem, p.Username)
	d.srv.SavePlayer(p)
}

// dropOnGround lands an item on a room's floor, evicting the oldest
// drop when the per-location cap is exceeded.
func (d *Dispatcher) dropOnGround(locationID string, item *items.Item) {
	loc, ok := d.world.GetLocation(locationID)
	if !ok {
		return
	}
	evicted := loc.AddDropped(item, nowMs(), d.cfg.Gameplay.MaxDroppedItemsPerLocation)
	if evicted != nil {
		d.srv.Broadcast(loc.ID, fmt.Sprintf("%s crumbles to dust.", evicted.Item.Name), protocol.MsgSystem, "")
	}
}

// executeGive hands an item or gold to a player in the same room.
// Forms: "give <itemId> <player>" and "give <N> gold <player>".
func (d *Dispatcher) executeGive(p *player.Player, args []string) {
	if len(args) == 3 && strings.EqualFold(args[1], "gold") {
		amount, err := strconv.Atoi(args[0])
		if err != nil || amount <= 0 {
			d.sendError(p, "Give how much gold?")
			return
		}
		target, ok := d.world.GetPlayer(args[2])
		if !ok || target.Location != p.Location {
			d.sendError(p, "They are not here.")
			return
		}
		if target.Username == p.Username {
			d.sendError(p, "You shuffle your own gold around.")
			return
		}
		if !p.SpendGold(amount) {
			d.sendError(p, "You do not have that much gold.")
			return
		}
		target.Gold += amount
		d.sendSuccess(p, fmt.Sprintf("You give %d gold to %s.", amount, target.Username))
		d.srv.Send(target, fmt.Sprintf("%s gives you %d gold.", p.Username, amount), protocol.MsgSuccess)
		d.srv.SavePlayer(p)
		d.srv.SavePlayer(target)
		return
	}

	if len(args) != 2 {
		d.sendError(p, "Usage: give <item> <player> or give <amount> gold <player>")
		return
	}
	itemID, targetName := args[0], args[1]
	target, ok := d.world.GetPlayer(targetName)
	if !ok || target.Location != p.Location {
		d.sendError(p, "They are not here.")
		return
	}
	if target.Username == p.Username {
		d.sendError(p, "You already have it.")
		return
	}
	item, ok := p.FindItem(itemID)
	if !ok {
		d.sendError(p, "You are not carrying that.")
		return
	}
	if !target.HasFreeSlots(1) {
		d.sendError(p, fmt.Sprintf("%s cannot carry any more.", target.Username))
		return
	}

	p.RemoveItem(itemID)
	target.Inventory = append(target.Inventory, item)
	d.sendSuccess(p, fmt.Sprintf("You give %s to %s.", item.Name, target.Username))
	d.srv.Send(target, fmt.Sprintf("%s gives you %s.", p.Username, item.Name), protocol.MsgSuccess)
	d.srv.SavePlayer(p)
	d.srv.SavePlayer(target)
}

// capitalize upper-cases the first byte of an ASCII message.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
