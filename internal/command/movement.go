package command

import (
	"fmt"

	"github.com/greyhaven/greyhavenmud/server/internal/player"
	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
	"github.com/greyhaven/greyhavenmud/server/internal/world"
)

// executeMove traverses an exit. Moving cancels any trade in progress
// on either side.
func (d *Dispatcher) executeMove(p *player.Player, direction string) {
	if !world.IsDirection(direction) {
		d.sendError(p, fmt.Sprintf("'%s' is not a direction.", direction))
		return
	}

	loc, ok := d.world.GetLocation(p.Location)
	if !ok {
		d.sendError(p, "You are nowhere. This should not happen.")
		return
	}
	destID, ok := loc.Exits[direction]
	if !ok {
		d.sendError(p, fmt.Sprintf("There is no exit %s.", direction))
		return
	}
	if _, ok := d.world.GetLocation(destID); !ok {
		d.sendError(p, "That way is blocked.")
		return
	}

	d.CancelTradeFor(p, "trade cancelled: you left the room")
	d.movePlayer(p, destID, direction)
}

// movePlayer performs the shared relocation sequence: departure
// broadcast, location update, arrival broadcast, auto-look. An empty
// direction renders as a generic departure (teleports, respawns).
func (d *Dispatcher) movePlayer(p *player.Player, destID, direction string) {
	if direction != "" {
		d.srv.Broadcast(p.Location, fmt.Sprintf("%s leaves %s.", p.Username, direction), protocol.MsgSystem, p.Username)
	} else {
		d.srv.Broadcast(p.Location, fmt.Sprintf("%s vanishes.", p.Username), protocol.MsgSystem, p.Username)
	}

	p.Location = destID
	d.srv.Broadcast(destID, fmt.Sprintf("%s arrives.", p.Username), protocol.MsgSystem, p.Username)
	d.executeLook(p)
	d.srv.SendGameState(p)
}

// executeHomestone handles bind, where and recall sub-verbs.
func (d *Dispatcher) executeHomestone(p *player.Player, sub string) {
	switch sub {
	case "bind":
		loc, ok := d.world.GetLocation(p.Location)
		if !ok || !loc.Tags.Homestone {
			d.sendError(p, "There is no homestone here.")
			return
		}
		p.HomestoneLocation = p.Location
		d.sendSuccess(p, fmt.Sprintf("You attune your homestone to %s.", loc.Name))
		d.srv.SavePlayer(p)
	case "where":
		if p.HomestoneLocation == "" {
			d.sendInfo(p, "Your homestone is not bound.")
			return
		}
		if loc, ok := d.world.GetLocation(p.HomestoneLocation); ok {
			d.sendInfo(p, fmt.Sprintf("Your homestone is bound to %s.", loc.Name))
		} else {
			d.sendInfo(p, "Your homestone is bound to a place that no longer exists.")
		}
	case "recall":
		if p.HomestoneLocation == "" {
			d.sendError(p, "Your homestone is not bound.")
			return
		}
		if d.world.IsInCombat(p) {
			d.sendError(p, "You cannot recall while fighting.")
			return
		}
		if _, ok := d.world.GetLocation(p.HomestoneLocation); !ok {
			d.sendError(p, "Your homestone leads nowhere.")
			return
		}
		d.CancelTradeFor(p, "trade cancelled: you left the room")
		d.sendInfo(p, "The world blurs as your homestone pulls you home.")
		d.movePlayer(p, p.HomestoneLocation, "")
		d.srv.SavePlayer(p)
	default:
		d.sendError(p, "Usage: homestone <bind|where|recall>")
	}
}

// respawnLocation picks where a dead player reappears.
func (d *Dispatcher) respawnLocation(p *player.Player) string {
	if p.HomestoneLocation != "" {
		if _, ok := d.world.GetLocation(p.HomestoneLocation); ok {
			return p.HomestoneLocation
		}
	}
	if _, ok := d.world.GetLocation(d.cfg.Gameplay.DeathRespawnLocation); ok {
		return d.cfg.Gameplay.DeathRespawnLocation
	}
	return d.cfg.Player.StartingLocation
}
