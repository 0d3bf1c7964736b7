package command

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/greyhaven/greyhavenmud/server/internal/leveling"
	"github.com/greyhaven/greyhavenmud/server/internal/player"
	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
	"github.com/greyhaven/greyhavenmud/server/internal/quest"
	"github.com/greyhaven/greyhavenmud/server/internal/stats"
	"github.com/greyhaven/greyhavenmud/server/internal/world"
)

// executeAttack resolves a target as another player (PvP) or a room
// enemy and runs one damage round.
func (d *Dispatcher) executeAttack(p *player.Player, targetID string) {
	if targetID == "" {
		d.sendError(p, "Attack what?")
		return
	}
	if !p.IsAlive() {
		d.sendError(p, "You are in no state to fight.")
		return
	}

	if target, ok := d.world.GetPlayer(targetID); ok && target.Location == p.Location && target.Username != p.Username {
		d.executePvPAttack(p, target)
		return
	}

	e, ok := d.world.FindVisibleEnemy(p, targetID)
	if !ok {
		d.sendError(p, "There is nothing like that to attack here.")
		return
	}

	d.attackEnemy(p, e)
}

// attackEnemy applies one player hit to an enemy instance and schedules
// the counter-attack and the next round.
func (d *Dispatcher) attackEnemy(p *player.Player, e *world.EnemyInstance) {
	e.AddFighter(p.Username)
	e.LastAttackAt = nowMs()

	damage := stats.ApplyVariance(d.rng, p.TotalDamage(), d.cfg.Gameplay.DamageVariance)
	damage -= e.Template.Defense
	if damage < 1 {
		damage = 1
	}
	e.CurrentHealth -= damage
	if e.CurrentHealth < 0 {
		e.CurrentHealth = 0
	}

	d.srv.Broadcast(e.LocationID,
		fmt.Sprintf("%s hits %s for %d (%d/%d)", p.Username, e.Template.Name, damage, e.CurrentHealth, e.Template.MaxHealth),
		protocol.MsgCombat, "")

	if !e.IsAlive() {
		d.handleEnemyDeath(e)
		return
	}

	d.scheduleCounterAttack(e)
	d.scheduleNextRound(p, e)
}

// scheduleCounterAttack has the enemy strike back at a random present
// fighter after the configured delay. Preconditions are re-verified
// when the callback fires.
func (d *Dispatcher) scheduleCounterAttack(e *world.EnemyInstance) {
	d.srv.Schedule(time.Duration(d.cfg.Gameplay.EnemyCounterAttackDelayMs)*time.Millisecond, func() {
		if !e.IsAlive() {
			return
		}
		var present []*player.Player
		for _, name := range e.Fighters {
			f, ok := d.world.GetPlayer(name)
			if ok && f.Location == e.LocationID && f.IsAlive() {
				present = append(present, f)
			}
		}
		if len(present) == 0 {
			return
		}
		defender := present[d.rng.Intn(len(present))]

		damage := stats.ApplyVariance(d.rng, e.Template.Damage, d.cfg.Gameplay.DamageVariance)
		damage -= defender.TotalDefense()
		if damage < 1 {
			damage = 1
		}
		defender.CurrentHealth -= damage
		if defender.CurrentHealth < 0 {
			defender.CurrentHealth = 0
		}

		d.srv.Broadcast(e.LocationID,
			fmt.Sprintf("%s hits %s for %d (%d/%d)", e.Template.Name, defender.Username, damage, defender.CurrentHealth, defender.MaxHealth()),
			protocol.MsgCombat, "")
		d.srv.SendGameState(defender)

		if !defender.IsAlive() {
			d.handlePlayerDeath(defender)
		}
	})
}

// scheduleNextRound re-enters the attack after the round delay if the
// fight is still on: both alive, same room, attacker still a fighter.
func (d *Dispatcher) scheduleNextRound(p *player.Player, e *world.EnemyInstance) {
	d.srv.Schedule(time.Duration(d.cfg.Gameplay.CombatRoundDelayMs)*time.Millisecond, func() {
		attacker, ok := d.world.GetPlayer(p.Username)
		if !ok || attacker != p {
			return
		}
		if !p.IsAlive() || !e.IsAlive() {
			return
		}
		if p.Location != e.LocationID || !e.HasFighter(p.Username) {
			return
		}
		d.attackEnemy(p, e)
	})
}

// handleEnemyDeath splits rewards across the fighters, rolls drops
// independently per fighter, advances kill quests, and marks the
// instance defeated. The tick driver revives it later.
func (d *Dispatcher) handleEnemyDeath(e *world.EnemyInstance) {
	fighters := append([]string(nil), e.Fighters...)
	now := nowMs()
	e.MarkDefeated(now)

	d.srv.Broadcast(e.LocationID, fmt.Sprintf("%s dies!", e.Template.Name), protocol.MsgCombat, "")

	n := len(fighters)
	if n == 0 {
		return
	}
	gold := e.Template.Gold
	if gold > 0 {
		gold = stats.ApplyVariance(d.rng, gold, d.cfg.Gameplay.DamageVariance)
	}
	goldEach := gold / n
	xpEach := e.Template.XP / n

	for _, name := range fighters {
		f, ok := d.world.GetPlayer(name)
		if !ok {
			continue
		}

		f.Gold += goldEach
		if goldEach > 0 || xpEach > 0 {
			d.srv.Send(f, fmt.Sprintf("You gain %d gold and %d experience.", goldEach, xpEach), protocol.MsgLoot)
		}

		d.rollDrops(f, e)
		d.advanceKillQuests(f, e.Template.ID)

		if e.OneTime {
			f.OneTimeEnemiesDefeated[e.Key()] = true
		}

		gains := f.GainXP(xpEach, d.cfg)
		d.announceLevelUps(f, gains)
		d.srv.SendGameState(f)
		d.srv.SavePlayer(f)
	}
}

// rollDrops rolls every item and material drop independently for one
// fighter. Items that do not fit land on the ground.
func (d *Dispatcher) rollDrops(f *player.Player, e *world.EnemyInstance) {
	itemIDs := make([]string, 0, len(e.Template.ItemDrops))
	for id := range e.Template.ItemDrops {
		itemIDs = append(itemIDs, id)
	}
	sort.Strings(itemIDs)
	for _, itemID := range itemIDs {
		if !stats.RollChance(d.rng, e.Template.ItemDrops[itemID].Chance) {
			continue
		}
		template, ok := d.world.Catalog().Items.Get(itemID)
		if !ok {
			continue
		}
		instance := template.NewInstance()
		if err := f.AddItem(instance); err != nil {
			d.dropOnGround(e.LocationID, instance)
			d.srv.Send(f, fmt.Sprintf("%s falls to the ground; your hands are full.", instance.Name), protocol.MsgLoot)
		} else {
			d.srv.Send(f, fmt.Sprintf("You loot %s.", instance.Name), protocol.MsgLoot)
		}
	}

	matIDs := make([]string, 0, len(e.Template.MaterialDrops))
	for id := range e.Template.MaterialDrops {
		matIDs = append(matIDs, id)
	}
	sort.Strings(matIDs)
	for _, matID := range matIDs {
		drop := e.Template.MaterialDrops[matID]
		if !stats.RollChance(d.rng, drop.Chance) {
			continue
		}
		amount := stats.RollRange(d.rng, drop.Amount)
		if amount <= 0 {
			continue
		}
		f.AddMaterial(matID, amount)
		name := matID
		if mat, ok := d.world.Catalog().Materials.Get(matID); ok {
			name = mat.Name
		}
		d.srv.Send(f, fmt.Sprintf("You collect %d x %s.", amount, name), protocol.MsgLoot)
	}
}

// advanceKillQuests bumps progress on active kill quests targeting the
// defeated enemy.
func (d *Dispatcher) advanceKillQuests(f *player.Player, enemyID string) {
	for questID, progress := range f.ActiveQuests {
		q, ok := d.world.Catalog().Quests.Get(questID)
		if !ok || q.Type != quest.TypeKill || q.Target != enemyID {
			continue
		}
		if progress >= q.Count {
			continue
		}
		f.ActiveQuests[questID] = progress + 1
		d.srv.Send(f, fmt.Sprintf("Quest %s: %d/%d", q.Name, progress+1, q.Count), protocol.MsgInfo)
	}
}

// handlePlayerDeath runs the PvE death sequence: gold loss, full heal,
// respawn after one second at the homestone or fallback location.
func (d *Dispatcher) handlePlayerDeath(p *player.Player) {
	d.world.RemoveFighterFromLocation(p.Location, p.Username)
	p.InPvPCombat = false
	d.CancelTradeFor(p, "trade cancelled: your partner died")

	d.srv.Broadcast(p.Location, fmt.Sprintf("%s has died!", p.Username), protocol.MsgCombat, p.Username)
	d.srv.Send(p, "You have died!", protocol.MsgCombat)

	loss := int(math.Floor(d.cfg.Gameplay.DeathGoldLossPct * float64(p.Gold)))
	if loss > 0 {
		p.Gold -= loss
		d.srv.Send(p, fmt.Sprintf("You lose %d gold.", loss), protocol.MsgSystem)
	}
	p.CurrentHealth = p.MaxHealth()
	p.CurrentMana = p.MaxMana()

	dest := d.respawnLocation(p)
	d.srv.Schedule(time.Second, func() {
		current, ok := d.world.GetPlayer(p.Username)
		if !ok || current != p {
			return
		}
		d.movePlayer(p, dest, "")
		d.srv.Send(p, "You awaken, whole again.", protocol.MsgSystem)
		d.srv.SavePlayer(p)
	})
}

// pvpXPReward maps the power delta between loser and winner to an XP
// grant. Positive delta means the loser was stronger.
func pvpXPReward(winner, loser *player.Player) int {
	delta := loser.Power() - winner.Power()
	switch {
	case delta <= -50:
		return 1 // trivial
	case delta <= -20:
		return 5 // easy
	case delta < 20:
		return 15 // even
	case delta < 50:
		return 30 // hard
	default:
		return 50 // impossible
	}
}

// executePvPAttack runs one PvP damage round. Only allowed in rooms
// tagged for PvP.
func (d *Dispatcher) executePvPAttack(p, target *player.Player) {
	loc, ok := d.world.GetLocation(p.Location)
	if !ok || !loc.Tags.PvPAllowed {
		d.sendError(p, "You cannot fight other players here.")
		return
	}
	if !target.IsAlive() {
		d.sendError(p, fmt.Sprintf("%s is already down.", target.Username))
		return
	}

	now := nowMs()
	p.InPvPCombat = true
	p.LastPvPHitAt = now
	target.InPvPCombat = true
	target.LastPvPHitAt = now

	damage := stats.ApplyVariance(d.rng, p.TotalDamage(), d.cfg.Gameplay.DamageVariance)
	damage -= target.TotalDefense()
	if damage < 1 {
		damage = 1
	}
	target.CurrentHealth -= damage
	if target.CurrentHealth < 0 {
		target.CurrentHealth = 0
	}

	d.srv.Broadcast(p.Location,
		fmt.Sprintf("%s hits %s for %d (%d/%d)", p.Username, target.Username, damage, target.CurrentHealth, target.MaxHealth()),
		protocol.MsgCombat, "")
	d.srv.SendGameState(target)

	if target.IsAlive() {
		return
	}

	d.srv.Broadcast(p.Location, fmt.Sprintf("%s has defeated %s!", p.Username, target.Username), protocol.MsgCombat, "")

	loot := int(d.cfg.Gameplay.PvPGoldLootPercentage * float64(target.Gold))
	if loot > 0 {
		target.Gold -= loot
		p.Gold += loot
		d.srv.Send(p, fmt.Sprintf("You loot %d gold from %s.", loot, target.Username), protocol.MsgLoot)
	}

	p.PvPWins++
	target.PvPLosses++
	p.InPvPCombat = false
	target.InPvPCombat = false

	xp := pvpXPReward(p, target)
	gains := p.GainXP(xp, d.cfg)
	d.srv.Send(p, fmt.Sprintf("You gain %d experience.", xp), protocol.MsgLoot)
	d.announceLevelUps(p, gains)

	target.CurrentHealth = target.MaxHealth()
	target.CurrentMana = target.MaxMana()
	d.CancelTradeFor(target, "trade cancelled: your partner died")

	dest := target.HomestoneLocation
	if dest == "" {
		dest = d.cfg.Player.StartingLocation
	}
	if _, ok := d.world.GetLocation(dest); !ok {
		dest = d.cfg.Player.StartingLocation
	}
	loser := target
	d.srv.Schedule(time.Second, func() {
		current, ok := d.world.GetPlayer(loser.Username)
		if !ok || current != loser {
			return
		}
		d.movePlayer(loser, dest, "")
		d.srv.Send(loser, "You awaken, whole again.", protocol.MsgSystem)
		d.srv.SavePlayer(loser)
	})

	d.srv.SendGameState(p)
	d.srv.SavePlayer(p)
	d.srv.SavePlayer(target)
}

// executeFlee attempts to leave combat through a random exit.
func (d *Dispatcher) executeFlee(p *player.Player) {
	if !d.world.IsInCombat(p) {
		d.sendError(p, "You are not fighting anything.")
		return
	}

	if !stats.RollChance(d.rng, d.cfg.Gameplay.FleeSuccessChance) {
		d.srv.Send(p, "You fail to get away!", protocol.MsgCombat)
		if e, ok := d.world.EngagedEnemy(p); ok {
			damage := stats.ApplyVariance(d.rng, e.Template.Damage, d.cfg.Gameplay.DamageVariance)
			damage -= p.TotalDefense()
			if damage < 1 {
				damage = 1
			}
			p.CurrentHealth -= damage
			if p.CurrentHealth < 0 {
				p.CurrentHealth = 0
			}
			d.srv.Broadcast(e.LocationID,
				fmt.Sprintf("%s hits %s for %d (%d/%d)", e.Template.Name, p.Username, damage, p.CurrentHealth, p.MaxHealth()),
				protocol.MsgCombat, "")
			d.srv.SendGameState(p)
			if !p.IsAlive() {
				d.handlePlayerDeath(p)
			}
		}
		return
	}

	loc, ok := d.world.GetLocation(p.Location)
	if !ok || len(loc.Exits) == 0 {
		d.sendError(p, "There is nowhere to flee!")
		return
	}

	directions := make([]string, 0, len(loc.Exits))
	for dir := range loc.Exits {
		directions = append(directions, dir)
	}
	sort.Strings(directions)
	direction := directions[d.rng.Intn(len(directions))]

	d.world.RemoveFighterFromLocation(p.Location, p.Username)
	p.InPvPCombat = false
	d.CancelTradeFor(p, "trade cancelled: you left the room")

	d.srv.Send(p, "You flee!", protocol.MsgCombat)
	d.movePlayer(p, loc.Exits[direction], direction)
}

// announceLevelUps tells the player about each level gained.
func (d *Dispatcher) announceLevelUps(p *player.Player, gains []leveling.LevelUpInfo) {
	for _, gain := range gains {
		d.srv.Send(p, fmt.Sprintf("You are now level %d!", gain.NewLevel), protocol.MsgSuccess)
	}
}
