package command

import (
	"fmt"
	"strconv"
	"time"

	"github.com/greyhaven/greyhavenmud/server/internal/player"
	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
)

// requireGM gates the operator commands.
func (d *Dispatcher) requireGM(p *player.Player) bool {
	if !p.IsGM {
		d.sendError(p, "Unknown command. Type 'help' for a list of commands.")
		return false
	}
	return true
}

// executeBan bans an online player for a number of hours and
// disconnects them. Login refuses banned accounts until expiry.
func (d *Dispatcher) executeBan(p *player.Player, args []string) {
	if !d.requireGM(p) {
		return
	}
	if len(args) != 2 {
		d.sendError(p, "Usage: ban <name> <hours>")
		return
	}
	hours, err := strconv.Atoi(args[1])
	if err != nil || hours <= 0 {
		d.sendError(p, "Ban for how many hours?")
		return
	}
	target, ok := d.world.GetPlayer(args[0])
	if !ok {
		d.sendError(p, "They are not online.")
		return
	}
	if target.Username == p.Username {
		d.sendError(p, "You cannot ban yourself.")
		return
	}

	target.BannedUntil = time.Now().Add(time.Duration(hours) * time.Hour).UnixMilli()
	d.srv.Send(target, fmt.Sprintf("You have been banned for %d hours.", hours), protocol.MsgSystem)
	d.srv.SavePlayer(target)
	d.srv.DisconnectPlayer(target.Username, "banned")
	d.sendSuccess(p, fmt.Sprintf("%s banned for %d hours.", target.Username, hours))
}

// executeKick disconnects an online player.
func (d *Dispatcher) executeKick(p *player.Player, args []string) {
	if !d.requireGM(p) {
		return
	}
	if len(args) != 1 {
		d.sendError(p, "Usage: kick <name>")
		return
	}
	target, ok := d.world.GetPlayer(args[0])
	if !ok {
		d.sendError(p, "They are not online.")
		return
	}
	if target.Username == p.Username {
		d.sendError(p, "You cannot kick yourself.")
		return
	}

	d.srv.Send(target, "You have been kicked from the server.", protocol.MsgSystem)
	d.srv.DisconnectPlayer(target.Username, "kicked")
	d.sendSuccess(p, fmt.Sprintf("%s kicked.", target.Username))
}

// executeTeleport moves an online player to any location.
func (d *Dispatcher) executeTeleport(p *player.Player, args []string) {
	if !d.requireGM(p) {
		return
	}
	if len(args) != 2 {
		d.sendError(p, "Usage: teleport <name> <location>")
		return
	}
	target, ok := d.world.GetPlayer(args[0])
	if !ok {
		d.sendError(p, "They are not online.")
		return
	}
	if _, ok := d.world.GetLocation(args[1]); !ok {
		d.sendError(p, "No such location.")
		return
	}

	d.world.RemoveFighterFromLocation(target.Location, target.Username)
	target.InPvPCombat = false
	d.CancelTradeFor(target, "trade cancelled: your partner vanished")
	d.srv.Send(target, "A strange force whisks you away.", protocol.MsgSystem)
	d.movePlayer(target, args[1], "")
	d.srv.SavePlayer(target)
	d.sendSuccess(p, fmt.Sprintf("%s teleported to %s.", target.Username, args[1]))
}
