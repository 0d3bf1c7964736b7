package command

import (
	"fmt"
	"strings"

	"github.com/greyhaven/greyhavenmud/server/internal/player"
	"github.com/greyhaven/greyhavenmud/server/internal/shop"
)

// executeList shows the current room's shop stock with derived prices.
func (d *Dispatcher) executeList(p *player.Player) {
	loc, ok := d.world.GetLocation(p.Location)
	if !ok || loc.Shop == nil {
		d.sendError(p, "There is no shop here.")
		return
	}

	var sb strings.Builder
	sb.WriteString(loc.Shop.Name + ":\n")
	for _, itemID := range loc.Shop.Items {
		item, ok := d.world.Catalog().Items.Get(itemID)
		if !ok {
			continue
		}
		price := shop.BuyPrice(item.Value, d.cfg.Economy.ShopBuyMultiplier)
		line := fmt.Sprintf("  %s - %d gold", item.Name, price)
		var stats []string
		if item.Stats.Damage != 0 {
			stats = append(stats, fmt.Sprintf("dmg +%d", item.Stats.Damage))
		}
		if item.Stats.Defense != 0 {
			stats = append(stats, fmt.Sprintf("def +%d", item.Stats.Defense))
		}
		if item.Stats.Health != 0 {
			stats = append(stats, fmt.Sprintf("hp +%d", item.Stats.Health))
		}
		if item.Stats.Mana != 0 {
			stats = append(stats, fmt.Sprintf("mp +%d", item.Stats.Mana))
		}
		if item.IsHealing() {
			stats = append(stats, fmt.Sprintf("heals %d", item.HealAmount))
		}
		if item.IsManaRestore() {
			stats = append(stats, fmt.Sprintf("restores %d mana", item.ManaAmount))
		}
		if len(stats) > 0 {
			line += " (" + strings.Join(stats, ", ") + ")"
		}
		sb.WriteString(line + "\n")
	}
	d.sendInfo(p, strings.TrimRight(sb.String(), "\n"))
}

// executeBuy purchases one stocked item. Inventory space is checked
// before gold changes hands.
func (d *Dispatcher) executeBuy(p *player.Player, itemID string) {
	if itemID == "" {
		d.sendError(p, "Buy what?")
		return
	}
	loc, ok := d.world.GetLocation(p.Location)
	if !ok || loc.Shop == nil {
		d.sendError(p, "There is no shop here.")
		return
	}
	if !loc.Shop.Stocks(itemID) {
		d.sendError(p, "The shop does not sell that.")
		return
	}
	item, ok := d.world.Catalog().Items.Get(itemID)
	if !ok {
		d.sendError(p, "The shop does not sell that.")
		return
	}
	if !p.HasFreeSlots(1) {
		d.sendError(p, "Your inventory is full.")
		return
	}
	price := shop.BuyPrice(item.Value, d.cfg.Economy.ShopBuyMultiplier)
	if !p.SpendGold(price) {
		d.sendError(p, fmt.Sprintf("You need %d gold for %s.", price, item.Name))
		return
	}

	if err := p.AddItem(item.NewInstance()); err != nil {
		p.Gold += price
		d.sendError(p, "Your inventory is full.")
		return
	}
	d.sendSuccess(p, fmt.Sprintf("You buy %s for %d gold.", item.Name, price))
	d.srv.SendGameState(p)
	d.srv.SavePlayer(p)
}

// executeSell sells any carried item back to the room's shop.
func (d *Dispatcher) executeSell(p *player.Player, itemID string) {
	if itemID == "" {
		d.sendError(p, "Sell what?")
		return
	}
	loc, ok := d.world.GetLocation(p.Location)
	if !ok || loc.Shop == nil {
		d.sendError(p, "There is no shop here.")
		return
	}
	item, ok := p.RemoveItem(itemID)
	if !ok {
		d.sendError(p, "You are not carrying that.")
		return
	}

	price := shop.SellPrice(item.Value, d.cfg.Economy.ShopSellMultiplier)
	p.Gold += price
	d.sendSuccess(p, fmt.Sprintf("You sell %s for %d gold.", item.Name, price))
	d.srv.SendGameState(p)
	d.srv.SavePlayer(p)
}
