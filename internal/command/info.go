package command

import (
	"fmt"
	"strings"

	"github.com/greyhaven/greyhavenmud/server/internal/leveling"
	"github.com/greyhaven/greyhavenmud/server/internal/player"
)

// executeStats shows the full character sheet.
func (d *Dispatcher) executeStats(p *player.Player) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s, level %d\n", p.Username, p.Level))

	next := leveling.TotalXPForLevel(d.cfg.Progression, p.Level+1)
	if p.Level < d.cfg.Progression.MaxLevel {
		sb.WriteString(fmt.Sprintf("Experience: %d/%d\n", p.XP, next))
	} else {
		sb.WriteString(fmt.Sprintf("Experience: %d (max level)\n", p.XP))
	}

	sb.WriteString(fmt.Sprintf("Health: %d/%d\n", p.CurrentHealth, p.MaxHealth()))
	sb.WriteString(fmt.Sprintf("Mana: %d/%d\n", p.CurrentMana, p.MaxMana()))
	sb.WriteString(fmt.Sprintf("Damage: %d (base %d)\n", p.TotalDamage(), p.BaseDamage))
	sb.WriteString(fmt.Sprintf("Defense: %d (base %d)\n", p.TotalDefense(), p.BaseDefense))
	sb.WriteString(fmt.Sprintf("Gold: %d\n", p.Gold))
	if p.PvPWins > 0 || p.PvPLosses > 0 {
		sb.WriteString(fmt.Sprintf("PvP: %d wins, %d losses\n", p.PvPWins, p.PvPLosses))
	}
	d.sendInfo(p, strings.TrimRight(sb.String(), "\n"))
}

// executeHelp lists the available commands.
func (d *Dispatcher) executeHelp(p *player.Player) {
	help := `Commands:
  Movement: north, south, east, west, up, down (and diagonals), look (l), map (m)
  Items: inventory (i), equipment (eq), examine (x), get, drop, use, equip, unequip, give
  Combat: attack (hit), flee (run)
  World: talk, harvest, homestone <bind|where|recall>
  Shops: list, buy, sell
  Crafting: recipes, craft, materials
  Quests: quest
  Trade: trade <start|accept|add|remove|ready|cancel|status>
  Social: say, whisper (w), reply (r), friend <list|add|remove>, who
  Account: stats, quit, reset-account, delete-account`
	if p.IsGM {
		help += "\n  GM: ban <name> <hours>, kick <name>, teleport <name> <location>"
	}
	d.sendInfo(p, help)
}
