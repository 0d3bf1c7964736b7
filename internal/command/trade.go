package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/greyhaven/greyhavenmud/server/internal/player"
	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
)

// executeTrade dispatches the trade sub-verbs.
func (d *Dispatcher) executeTrade(p *player.Player, args []string) {
	if len(args) == 0 {
		d.sendError(p, "Usage: trade <start|accept|add|remove|ready|cancel|status>")
		return
	}

	switch strings.ToLower(args[0]) {
	case "start":
		if len(args) < 2 {
			d.sendError(p, "Trade with whom?")
			return
		}
		d.tradeStart(p, args[1])
	case "accept":
		d.tradeAccept(p)
	case "add":
		if len(args) < 2 {
			d.sendError(p, "Add what?")
			return
		}
		d.tradeAdd(p, args[1:])
	case "remove":
		if len(args) < 2 {
			d.sendError(p, "Remove what?")
			return
		}
		d.tradeRemove(p, args[1:])
	case "ready":
		d.tradeReady(p)
	case "cancel":
		if p.ActiveTrade == nil {
			d.sendError(p, "You are not trading.")
			return
		}
		d.CancelTradeFor(p, "trade cancelled")
		d.sendInfo(p, "Trade cancelled.")
	case "status":
		d.tradeStatus(p)
	default:
		d.sendError(p, "Usage: trade <start|accept|add|remove|ready|cancel|status>")
	}
}

// tradePartner returns the other side of an active trade.
func (d *Dispatcher) tradePartner(p *player.Player) (*player.Player, bool) {
	if p.ActiveTrade == nil {
		return nil, false
	}
	partner, ok := d.world.GetPlayer(p.ActiveTrade.With)
	return partner, ok
}

// CancelTradeFor unwinds both sides of a trade involving p: each side's
// escrow returns to its owner and the partner is told why. Safe to call
// when no trade exists. The server also calls this during disconnect
// housekeeping.
func (d *Dispatcher) CancelTradeFor(p *player.Player, reason string) {
	if p.ActiveTrade == nil {
		return
	}
	partner, _ := d.tradePartner(p)
	p.CancelTrade()
	if partner != nil && partner.ActiveTrade != nil && partner.ActiveTrade.With == p.Username {
		partner.CancelTrade()
		d.srv.Send(partner, capitalize(reason)+".", protocol.MsgSystem)
	}
}

func (d *Dispatcher) tradeStart(p *player.Player, targetName string) {
	target, ok := d.world.GetPlayer(targetName)
	if !ok {
		d.sendError(p, "They are not online.")
		return
	}
	if target.Username == p.Username {
		d.sendError(p, "You cannot trade with yourself.")
		return
	}
	if target.Location != p.Location {
		d.sendError(p, "They are not here.")
		return
	}
	if p.ActiveTrade != nil {
		d.sendError(p, "You are already trading.")
		return
	}
	if target.ActiveTrade != nil {
		d.sendError(p, fmt.Sprintf("%s is already trading.", target.Username))
		return
	}

	player.StartTrade(p, target)
	d.sendInfo(p, fmt.Sprintf("You offer to trade with %s.", target.Username))
	d.srv.Send(target, fmt.Sprintf("%s wants to trade with you. Type 'trade accept' to begin.", p.Username), protocol.MsgInfo)
}

func (d *Dispatcher) tradeAccept(p *player.Player) {
	if p.ActiveTrade == nil || !p.ActiveTrade.Pending {
		d.sendError(p, "No one has offered you a trade.")
		return
	}
	initiator, ok := d.world.GetPlayer(p.ActiveTrade.InitiatedBy)
	if !ok || initiator.Location != p.Location {
		p.ActiveTrade = nil
		d.sendError(p, "They are no longer here.")
		return
	}
	if initiator.ActiveTrade != nil {
		p.ActiveTrade = nil
		d.sendError(p, "They have started trading with someone else.")
		return
	}

	player.AcceptTrade(initiator, p)
	d.sendSuccess(p, fmt.Sprintf("You begin trading with %s.", initiator.Username))
	d.srv.Send(initiator, fmt.Sprintf("%s accepts your trade.", p.Username), protocol.MsgSuccess)
}

// requireActiveTrade checks the player has an accepted trade whose
// partner is still attached.
func (d *Dispatcher) requireActiveTrade(p *player.Player) (*player.Player, bool) {
	if p.ActiveTrade == nil || p.ActiveTrade.Pending {
		d.sendError(p, "You are not trading.")
		return nil, false
	}
	partner, ok := d.tradePartner(p)
	if !ok {
		d.CancelTradeFor(p, "trade cancelled")
		d.sendError(p, "Your trade partner is gone.")
		return nil, false
	}
	return partner, true
}

// tradeAdd handles "trade add <item>" and "trade add <N> gold".
func (d *Dispatcher) tradeAdd(p *player.Player, args []string) {
	partner, ok := d.requireActiveTrade(p)
	if !ok {
		return
	}

	if len(args) == 2 && strings.EqualFold(args[1], "gold") {
		amount, err := strconv.Atoi(args[0])
		if err != nil {
			d.sendError(p, "Add how much gold?")
			return
		}
		if err := player.TradeAddGold(p, partner, amount); err != nil {
			d.sendError(p, capitalize(err.Error())+".")
			return
		}
		d.sendInfo(p, fmt.Sprintf("You offer %d gold (total %d).", amount, p.ActiveTrade.MyGold))
		d.srv.Send(partner, fmt.Sprintf("%s offers %d gold (total %d).", p.Username, amount, p.ActiveTrade.MyGold), protocol.MsgInfo)
		return
	}

	item, err := player.TradeAddItem(p, partner, args[0])
	if err != nil {
		d.sendError(p, capitalize(err.Error())+".")
		return
	}
	d.sendInfo(p, fmt.Sprintf("You offer %s.", item.Name))
	d.srv.Send(partner, fmt.Sprintf("%s offers %s.", p.Username, item.Name), protocol.MsgInfo)
}

// tradeRemove handles "trade remove <item>" and "trade remove <N> gold".
func (d *Dispatcher) tradeRemove(p *player.Player, args []string) {
	partner, ok := d.requireActiveTrade(p)
	if !ok {
		return
	}

	if len(args) == 2 && strings.EqualFold(args[1], "gold") {
		amount, err := strconv.Atoi(args[0])
		if err != nil {
			d.sendError(p, "Remove how much gold?")
			return
		}
		if err := player.TradeRemoveGold(p, partner, amount); err != nil {
			d.sendError(p, capitalize(err.Error())+".")
			return
		}
		d.sendInfo(p, fmt.Sprintf("You withdraw %d gold (offering %d).", amount, p.ActiveTrade.MyGold))
		d.srv.Send(partner, fmt.Sprintf("%s withdraws %d gold (offering %d).", p.Username, amount, p.ActiveTrade.MyGold), protocol.MsgInfo)
		return
	}

	item, err := player.TradeRemoveItem(p, partner, args[0])
	if err != nil {
		d.sendError(p, capitalize(err.Error())+".")
		return
	}
	d.sendInfo(p, fmt.Sprintf("You withdraw %s.", item.Name))
	d.srv.Send(partner, fmt.Sprintf("%s withdraws %s.", p.Username, item.Name), protocol.MsgInfo)
}

// tradeReady marks this side ready; when both sides are ready the trade
// executes, after the two-sided space pre-check.
func (d *Dispatcher) tradeReady(p *player.Player) {
	partner, ok := d.requireActiveTrade(p)
	if !ok {
		return
	}

	p.ActiveTrade.MyReady = true
	d.sendInfo(p, "You are ready to trade.")
	d.srv.Send(partner, fmt.Sprintf("%s is ready to trade.", p.Username), protocol.MsgInfo)

	if partner.ActiveTrade == nil || !partner.ActiveTrade.MyReady {
		return
	}

	if !player.CanExecuteTrade(p, partner) {
		d.srv.Send(p, "Trade cancelled: not enough inventory space.", protocol.MsgError)
		d.srv.Send(partner, "Trade cancelled: not enough inventory space.", protocol.MsgError)
		p.CancelTrade()
		partner.CancelTrade()
		return
	}

	summaryFor := func(side *player.Player) string {
		trade := side.ActiveTrade
		var parts []string
		for _, item := range trade.MyItems {
			parts = append(parts, item.Name)
		}
		if trade.MyGold > 0 {
			parts = append(parts, fmt.Sprintf("%d gold", trade.MyGold))
		}
		if len(parts) == 0 {
			return "nothing"
		}
		return strings.Join(parts, ", ")
	}
	gave, got := summaryFor(p), summaryFor(partner)

	player.ExecuteTrade(p, partner)
	d.srv.Send(p, fmt.Sprintf("Trade complete! You gave %s and received %s.", gave, got), protocol.MsgSuccess)
	d.srv.Send(partner, fmt.Sprintf("Trade complete! You gave %s and received %s.", got, gave), protocol.MsgSuccess)
	d.srv.SendGameState(p)
	d.srv.SendGameState(partner)
	d.srv.SavePlayer(p)
	d.srv.SavePlayer(partner)
}

// tradeStatus shows both offers and the ready flags.
func (d *Dispatcher) tradeStatus(p *player.Player) {
	if p.ActiveTrade == nil {
		d.sendInfo(p, "You are not trading.")
		return
	}
	if p.ActiveTrade.Pending {
		d.sendInfo(p, fmt.Sprintf("%s has offered to trade with you. Type 'trade accept'.", p.ActiveTrade.With))
		return
	}
	partner, ok := d.tradePartner(p)
	if !ok {
		d.sendInfo(p, "Your trade partner is gone.")
		return
	}

	var sb strings.Builder
	writeSide := func(label string, trade *player.TradeState) {
		sb.WriteString(label)
		if trade.MyReady {
			sb.WriteString(" [ready]")
		}
		sb.WriteString(":\n")
		for _, item := range trade.MyItems {
			sb.WriteString("  " + item.Name + "\n")
		}
		if trade.MyGold > 0 {
			sb.WriteString(fmt.Sprintf("  %d gold\n", trade.MyGold))
		}
		if len(trade.MyItems) == 0 && trade.MyGold == 0 {
			sb.WriteString("  (nothing)\n")
		}
	}
	writeSide("Your offer", p.ActiveTrade)
	writeSide(partner.Username+"'s offer", partner.ActiveTrade)
	d.sendInfo(p, strings.TrimRight(sb.String(), "\n"))
}
