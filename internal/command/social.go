package command

import (
	"fmt"
	"strings"

	"github.com/greyhaven/greyhavenmud/server/internal/player"
	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
)

// executeSay speaks to the room. A spoken word matching a portal
// keyword of a present NPC triggers the portal instead.
func (d *Dispatcher) executeSay(p *player.Player, text string) {
	if text == "" {
		d.sendError(p, "Say what?")
		return
	}

	if d.tryPortal(p, text) {
		return
	}

	d.srv.Send(p, fmt.Sprintf("You say: %s", text), protocol.MsgSay)
	d.srv.Broadcast(p.Location, fmt.Sprintf("%s says: %s", p.Username, text), protocol.MsgSay, p.Username)
}

// tryPortal checks spoken text against the portal keywords of NPCs in
// the room; a match charges the fee and teleports.
func (d *Dispatcher) tryPortal(p *player.Player, text string) bool {
	loc, ok := d.world.GetLocation(p.Location)
	if !ok {
		return false
	}
	keyword := strings.TrimSpace(text)
	for _, n := range loc.NPCs {
		portal, ok := n.FindPortal(keyword)
		if !ok {
			continue
		}
		if _, ok := d.world.GetLocation(portal.LocationID); !ok {
			d.sendError(p, "The portal flickers and dies.")
			return true
		}
		if !p.SpendGold(portal.Cost) {
			d.srv.Send(p, fmt.Sprintf("%s says: Passage costs %d gold.", n.Name, portal.Cost), protocol.MsgNPC)
			return true
		}
		d.CancelTradeFor(p, "trade cancelled: you left the room")
		d.sendSuccess(p, fmt.Sprintf("%s opens a portal and you step through.", n.Name))
		d.movePlayer(p, portal.LocationID, "")
		d.srv.SavePlayer(p)
		return true
	}
	return false
}

// executeWhisper sends a private message to an online player.
func (d *Dispatcher) executeWhisper(p *player.Player, args []string) {
	if len(args) < 2 {
		d.sendError(p, "Usage: whisper <player> <message>")
		return
	}
	target, ok := d.world.GetPlayer(args[0])
	if !ok {
		d.sendError(p, "They are not online.")
		return
	}
	if target.Username == p.Username {
		d.sendError(p, "You mutter to yourself.")
		return
	}

	text := strings.Join(args[1:], " ")
	d.srv.Send(p, fmt.Sprintf("You whisper to %s: %s", target.Username, text), protocol.MsgWhisper)
	d.srv.Send(target, fmt.Sprintf("%s whispers: %s", p.Username, text), protocol.MsgWhisper)
	target.LastWhisperFrom = p.Username
}

// executeReply whispers back to the last person who whispered to you.
func (d *Dispatcher) executeReply(p *player.Player, text string) {
	if p.LastWhisperFrom == "" {
		d.sendError(p, "No one has whispered to you.")
		return
	}
	if text == "" {
		d.sendError(p, "Reply what?")
		return
	}
	d.executeWhisper(p, append([]string{p.LastWhisperFrom}, strings.Fields(text)...))
}

// executeFriend manages the friends list.
func (d *Dispatcher) executeFriend(p *player.Player, args []string) {
	sub := "list"
	if len(args) > 0 {
		sub = strings.ToLower(args[0])
	}

	switch sub {
	case "list":
		if len(p.Friends) == 0 {
			d.sendInfo(p, "Your friends list is empty.")
			return
		}
		var sb strings.Builder
		sb.WriteString("Friends:\n")
		for _, name := range p.Friends {
			status := "offline"
			if _, online := d.world.GetPlayer(name); online {
				status = "online"
			}
			sb.WriteString(fmt.Sprintf("  %s (%s)\n", name, status))
		}
		d.sendInfo(p, strings.TrimRight(sb.String(), "\n"))
	case "add":
		if len(args) < 2 {
			d.sendError(p, "Add whom?")
			return
		}
		name := args[1]
		if strings.EqualFold(name, p.Username) {
			d.sendError(p, "You are already your own best friend.")
			return
		}
		target, ok := d.world.GetPlayer(name)
		if ok {
			name = target.Username
		}
		if !p.AddFriend(name) {
			d.sendError(p, fmt.Sprintf("%s is already on your friends list.", name))
			return
		}
		d.sendSuccess(p, fmt.Sprintf("%s added to your friends list.", name))
		d.srv.SavePlayer(p)
	case "remove":
		if len(args) < 2 {
			d.sendError(p, "Remove whom?")
			return
		}
		if !p.RemoveFriend(args[1]) {
			d.sendError(p, "They are not on your friends list.")
			return
		}
		d.sendSuccess(p, fmt.Sprintf("%s removed from your friends list.", args[1]))
		d.srv.SavePlayer(p)
	default:
		d.sendError(p, "Usage: friend <list|add|remove>")
	}
}

// executeWho lists everyone online.
func (d *Dispatcher) executeWho(p *player.Player) {
	names := d.world.OnlineUsernames()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Online (%d):\n", len(names)))
	for _, name := range names {
		line := "  " + name
		if p.IsFriend(name) {
			line += " (friend)"
		}
		sb.WriteString(line + "\n")
	}
	d.sendInfo(p, strings.TrimRight(sb.String(), "\n"))
}
