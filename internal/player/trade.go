package player

import (
	"fmt"

	"github.com/greyhaven/greyhavenmud/server/internal/items"
)

// TradeState is one side of a two-party escrow. Items in MyItems have
// been removed from the owner's inventory; cancel puts them back,
// execute hands them to the partner. The partner holds the mirror
// state, so PartnerOf(a).With == a.With's owner at every moment.
type TradeState struct {
	With        string
	MyItems     []*items.Item
	MyGold      int
	MyReady     bool
	InitiatedBy string
	Pending     bool
}

// StartTrade marks the recipient side pending. The initiator gets an
// active state only once the recipient accepts.
func StartTrade(initiator, recipient *Player) {
	recipient.ActiveTrade = &TradeState{
		With:        initiator.Username,
		InitiatedBy: initiator.Username,
		Pending:     true,
	}
}

// AcceptTrade converts a pending offer into an active trade on both
// sides.
func AcceptTrade(initiator, recipient *Player) {
	recipient.ActiveTrade.Pending = false
	initiator.ActiveTrade = &TradeState{
		With:        recipient.Username,
		InitiatedBy: initiator.Username,
	}
}

// IsTradingWith reports whether the player has an active (accepted)
// trade with the named partner.
func (p *Player) IsTradingWith(username string) bool {
	return p.ActiveTrade != nil && !p.ActiveTrade.Pending && p.ActiveTrade.With == username
}

// TradeAddItem moves an inventory item into escrow and resets both
// ready flags.
func TradeAddItem(p, partner *Player, itemID string) (*items.Item, error) {
	item, ok := p.RemoveItem(itemID)
	if !ok {
		return nil, fmt.Errorf("you are not carrying that")
	}
	p.ActiveTrade.MyItems = append(p.ActiveTrade.MyItems, item)
	resetReady(p, partner)
	return item, nil
}

// TradeRemoveItem moves an escrowed item back to the inventory and
// resets both ready flags. The escrowed item always fits because escrow
// items came out of the same inventory.
func TradeRemoveItem(p, partner *Player, itemID string) (*items.Item, error) {
	for i, item := range p.ActiveTrade.MyItems {
		if item.ID == itemID {
			p.ActiveTrade.MyItems = append(p.ActiveTrade.MyItems[:i], p.ActiveTrade.MyItems[i+1:]...)
			p.Inventory = append(p.Inventory, item)
			resetReady(p, partner)
			return item, nil
		}
	}
	return nil, fmt.Errorf("that item is not in your offer")
}

// TradeAddGold moves gold into escrow and resets both ready flags.
func TradeAddGold(p, partner *Player, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("the amount must be positive")
	}
	if !p.SpendGold(amount) {
		return fmt.Errorf("you do not have that much gold")
	}
	p.ActiveTrade.MyGold += amount
	resetReady(p, partner)
	return nil
}

// TradeRemoveGold returns escrowed gold and resets both ready flags.
func TradeRemoveGold(p, partner *Player, amount int) error {
	if amount <= 0 || p.ActiveTrade.MyGold < amount {
		return fmt.Errorf("you have not offered that much gold")
	}
	p.ActiveTrade.MyGold -= amount
	p.Gold += amount
	resetReady(p, partner)
	return nil
}

func resetReady(p, partner *Player) {
	p.ActiveTrade.MyReady = false
	if partner != nil && partner.ActiveTrade != nil {
		partner.ActiveTrade.MyReady = false
	}
}

// CancelTrade restores this side's escrow to the owner's inventory and
// gold and clears the trade. The partner side is cancelled separately.
func (p *Player) CancelTrade() {
	trade := p.ActiveTrade
	if trade == nil {
		return
	}
	p.Inventory = append(p.Inventory, trade.MyItems...)
	p.Gold += trade.MyGold
	p.ActiveTrade = nil
}

// CanExecuteTrade checks the two-sided inventory-space precondition:
// each side must fit the partner's escrow after its own escrow has
// already left the inventory.
func CanExecuteTrade(a, b *Player) bool {
	if len(a.Inventory)+len(b.ActiveTrade.MyItems) > a.MaxInventorySlots() {
		return false
	}
	if len(b.Inventory)+len(a.ActiveTrade.MyItems) > b.MaxInventorySlots() {
		return false
	}
	return true
}

// ExecuteTrade swaps both escrows atomically. Callers must have
// verified CanExecuteTrade under the world lock.
func ExecuteTrade(a, b *Player) {
	aTrade, bTrade := a.ActiveTrade, b.ActiveTrade
	a.Inventory = append(a.Inventory, bTrade.MyItems...)
	a.Gold += bTrade.MyGold
	b.Inventory = append(b.Inventory, aTrade.MyItems...)
	b.Gold += aTrade.MyGold
	a.ActiveTrade = nil
	b.ActiveTrade = nil
}
