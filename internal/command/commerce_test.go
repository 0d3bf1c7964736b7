package command

import (
	"testing"
)

func TestBuyAndSell(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")
	alice.Gold = 30

	// Buy price: ceil(20 * 1.25) = 25.
	fx.d.Execute(alice, "buy iron_sword")
	if _, ok := alice.FindItem("iron_sword"); !ok {
		t.Fatal("purchased item missing from inventory")
	}
	if alice.Gold != 5 {
		t.Errorf("gold = %d, want 5 after the purchase", alice.Gold)
	}

	// Sell price: floor(20 * 0.5) = 10.
	fx.d.Execute(alice, "sell iron_sword")
	if _, ok := alice.FindItem("iron_sword"); ok {
		t.Fatal("sold item still in inventory")
	}
	if alice.Gold != 15 {
		t.Errorf("gold = %d, want 15 after the sale", alice.Gold)
	}
}

func TestBuyRejectedWhenBroke(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")
	alice.Gold = 10

	fx.d.Execute(alice, "buy iron_sword")
	if !fx.srv.received("alice", "You need 25 gold") {
		t.Error("expected a price rejection")
	}
	if alice.Gold != 10 || len(alice.Inventory) != 0 {
		t.Error("failed purchase must not change anything")
	}
}

func TestBuyRejectedWhenFull(t *testing.T) {
	fx := newFixture(t)
	fx.cfg.Gameplay.MaxInventorySlots = 2
	alice := fx.addPlayer("alice", "town_square")
	alice.Gold = 100
	alice.Inventory = append(alice.Inventory, fx.item(t, "health_potion"), fx.item(t, "health_potion"))

	fx.d.Execute(alice, "buy iron_sword")
	if !fx.srv.received("alice", "inventory is full") {
		t.Fatal("expected a space rejection")
	}
	if alice.Gold != 100 {
		t.Error("space check must run before gold changes hands")
	}
}

func TestBuyUnstockedItem(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")
	alice.Gold = 100

	fx.d.Execute(alice, "buy leather_armor")
	if !fx.srv.received("alice", "does not sell that") {
		t.Error("unstocked items must be rejected")
	}
}

func TestShopCommandsOutsideShop(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "forest")

	fx.d.Execute(alice, "list")
	fx.d.Execute(alice, "buy iron_sword")
	fx.d.Execute(alice, "sell iron_sword")
	count := 0
	for _, m := range fx.srv.messages {
		if m.to == "alice" && m.text == "There is no shop here." {
			count++
		}
	}
	if count != 3 {
		t.Errorf("got %d shop rejections, want 3", count)
	}
}
