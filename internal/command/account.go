package command

import (
	"github.com/greyhaven/greyhavenmud/server/internal/items"
	"github.com/greyhaven/greyhavenmud/server/internal/player"
)

// executeQuit logs the player out gracefully.
func (d *Dispatcher) executeQuit(p *player.Player) {
	d.sendInfo(p, "Farewell!")
	d.srv.Logout(p)
}

// executeResetAccount wipes the character back to a fresh start while
// keeping the account itself.
func (d *Dispatcher) executeResetAccount(p *player.Player) {
	d.CancelTradeFor(p, "trade cancelled")
	d.world.RemoveFighterFromLocation(p.Location, p.Username)
	p.InPvPCombat = false

	cfg := d.cfg
	p.Level = 1
	p.XP = 0
	p.BaseHealth = cfg.Player.BaseHealth
	p.BaseMana = cfg.Player.BaseMana
	p.BaseDamage = cfg.Player.BaseDamage
	p.BaseDefense = cfg.Player.BaseDefense
	p.Gold = cfg.Player.StartingGold
	p.Inventory = nil
	p.Materials = make(map[string]int)
	p.Equipped = make(map[items.EquipmentSlot]*items.Item)
	p.KnownRecipes = make(map[string]bool)
	p.ActiveQuests = make(map[string]int)
	p.CompletedQuests = make(map[string]bool)
	p.OneTimeEnemiesDefeated = make(map[string]bool)
	p.OneTimeItemsPickedUp = make(map[string]bool)
	p.LastHarvest = make(map[string]int64)
	p.HomestoneLocation = ""
	p.PvPWins = 0
	p.PvPLosses = 0
	p.CurrentHealth = p.MaxHealth()
	p.CurrentMana = p.MaxMana()

	d.sendSuccess(p, "Your character has been reset.")
	d.movePlayer(p, cfg.Player.StartingLocation, "")
	d.srv.SavePlayer(p)
}

// executeDeleteAccount removes the account and disconnects.
func (d *Dispatcher) executeDeleteAccount(p *player.Player) {
	d.CancelTradeFor(p, "trade cancelled")
	d.world.RemoveFighterFromLocation(p.Location, p.Username)
	d.sendInfo(p, "Your account has been deleted. Farewell.")
	d.srv.DeleteAccount(p)
}
