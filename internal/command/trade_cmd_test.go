package command

import (
	"testing"
)

func TestTradeFullExchange(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")
	bob := fx.addPlayer("bob", "town_square")
	alice.Inventory = append(alice.Inventory, fx.item(t, "iron_sword"))
	alice.Gold = 50
	bob.Inventory = append(bob.Inventory, fx.item(t, "health_potion"))

	fx.d.Execute(alice, "trade start bob")
	if !fx.srv.received("bob", "wants to trade with you") {
		t.Fatal("recipient not notified of the offer")
	}
	fx.d.Execute(bob, "trade accept")
	if !alice.IsTradingWith("bob") || !bob.IsTradingWith("alice") {
		t.Fatal("trade not active on both sides")
	}

	fx.d.Execute(alice, "trade add iron_sword")
	fx.d.Execute(alice, "trade add 10 gold")
	fx.d.Execute(bob, "trade add health_potion")
	if len(alice.Inventory) != 0 || alice.Gold != 40 {
		t.Fatal("escrow did not leave alice's side")
	}

	fx.d.Execute(alice, "trade ready")
	if alice.ActiveTrade == nil {
		t.Fatal("one ready flag must not execute the trade")
	}
	fx.d.Execute(bob, "trade ready")

	if alice.ActiveTrade != nil || bob.ActiveTrade != nil {
		t.Fatal("trade should have executed")
	}
	if _, ok := bob.FindItem("iron_sword"); !ok {
		t.Error("bob did not receive the sword")
	}
	if _, ok := alice.FindItem("health_potion"); !ok {
		t.Error("alice did not receive the potion")
	}
	if bob.Gold != fx.cfg.Player.StartingGold+10 {
		t.Errorf("bob gold = %d, want starting+10", bob.Gold)
	}
	if alice.Gold != 40 {
		t.Errorf("alice gold = %d, want 40", alice.Gold)
	}
	if !fx.srv.received("alice", "Trade complete!") || !fx.srv.received("bob", "Trade complete!") {
		t.Error("missing completion messages")
	}
}

func TestTradeReadyResetOnChange(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")
	bob := fx.addPlayer("bob", "town_square")
	alice.Inventory = append(alice.Inventory, fx.item(t, "iron_sword"))

	fx.d.Execute(alice, "trade start bob")
	fx.d.Execute(bob, "trade accept")
	fx.d.Execute(bob, "trade ready")
	if !bob.ActiveTrade.MyReady {
		t.Fatal("ready flag not set")
	}

	fx.d.Execute(alice, "trade add iron_sword")
	if bob.ActiveTrade.MyReady {
		t.Error("changing an offer must reset the partner's ready flag")
	}
}

func TestTradeCancelledBySpaceCheck(t *testing.T) {
	fx := newFixture(t)
	fx.cfg.Gameplay.MaxInventorySlots = 2
	alice := fx.addPlayer("alice", "town_square")
	bob := fx.addPlayer("bob", "town_square")

	bob.Inventory = append(bob.Inventory, fx.item(t, "iron_sword"), fx.item(t, "health_potion"))
	alice.Inventory = append(alice.Inventory, fx.item(t, "leather_armor"))

	fx.d.Execute(alice, "trade start bob")
	fx.d.Execute(bob, "trade accept")
	fx.d.Execute(bob, "trade add iron_sword")
	fx.d.Execute(bob, "trade add health_potion")
	fx.d.Execute(bob, "trade ready")
	fx.d.Execute(alice, "trade ready")

	if !fx.srv.received("alice", "not enough inventory space") {
		t.Fatal("space check should cancel the trade")
	}
	if alice.ActiveTrade != nil || bob.ActiveTrade != nil {
		t.Error("both sides should be cleared after the cancel")
	}
	if len(bob.Inventory) != 2 {
		t.Errorf("bob's escrow not restored: %d items", len(bob.Inventory))
	}
	if len(alice.Inventory) != 1 {
		t.Errorf("alice's inventory disturbed: %d items", len(alice.Inventory))
	}
}

func TestTradeCancelledByMovement(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")
	bob := fx.addPlayer("bob", "town_square")
	alice.Inventory = append(alice.Inventory, fx.item(t, "iron_sword"))

	fx.d.Execute(alice, "trade start bob")
	fx.d.Execute(bob, "trade accept")
	fx.d.Execute(alice, "trade add iron_sword")

	fx.d.Execute(alice, "north")

	if alice.ActiveTrade != nil || bob.ActiveTrade != nil {
		t.Fatal("moving should cancel the trade on both sides")
	}
	if _, ok := alice.FindItem("iron_sword"); !ok {
		t.Error("escrow not restored to the mover")
	}
	if !fx.srv.received("bob", "trade cancelled") && !fx.srv.received("bob", "Trade cancelled") {
		t.Error("partner not told about the cancel")
	}
}

func TestTradeStartRequiresSameRoom(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")
	fx.addPlayer("bob", "forest")

	fx.d.Execute(alice, "trade start bob")
	if !fx.srv.received("alice", "They are not here") {
		t.Error("trade with a player elsewhere should be rejected")
	}
	fx.d.Execute(alice, "trade start alice")
	if !fx.srv.received("alice", "cannot trade with yourself") {
		t.Error("self-trade should be rejected")
	}
}
