package player

import (
	"testing"
)

// tradePair returns two players with an accepted trade between them.
func tradePair(t *testing.T) (*Player, *Player) {
	t.Helper()
	a := newTestPlayer(t, "alice")
	b := newTestPlayer(t, "bob")
	StartTrade(a, b)
	if b.ActiveTrade == nil || !b.ActiveTrade.Pending {
		t.Fatal("recipient should hold a pending offer")
	}
	AcceptTrade(a, b)
	if !a.IsTradingWith("bob") || !b.IsTradingWith("alice") {
		t.Fatal("trade not active on both sides after accept")
	}
	return a, b
}

func TestTradeAddItemMovesToEscrow(t *testing.T) {
	a, b := tradePair(t)
	s := sword()
	if err := a.AddItem(s); err != nil {
		t.Fatal(err)
	}
	a.ActiveTrade.MyReady = true
	b.ActiveTrade.MyReady = true

	if _, err := TradeAddItem(a, b, s.ID); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if len(a.Inventory) != 0 || len(a.ActiveTrade.MyItems) != 1 {
		t.Error("item did not move from inventory to escrow")
	}
	if a.ActiveTrade.MyReady || b.ActiveTrade.MyReady {
		t.Error("changing an offer must reset both ready flags")
	}
}

func TestTradeRemoveItemIsInverse(t *testing.T) {
	a, b := tradePair(t)
	s := sword()
	if err := a.AddItem(s); err != nil {
		t.Fatal(err)
	}
	if _, err := TradeAddItem(a, b, s.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := TradeRemoveItem(a, b, s.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(a.Inventory) != 1 || len(a.ActiveTrade.MyItems) != 0 {
		t.Error("item did not return to the inventory")
	}
	if _, err := TradeRemoveItem(a, b, s.ID); err == nil {
		t.Error("removing an unoffered item should fail")
	}
}

func TestTradeGoldEscrow(t *testing.T) {
	a, b := tradePair(t)
	a.Gold = 30

	if err := TradeAddGold(a, b, 40); err == nil {
		t.Error("offering more gold than held should fail")
	}
	if err := TradeAddGold(a, b, 25); err != nil {
		t.Fatalf("add gold failed: %v", err)
	}
	if a.Gold != 5 || a.ActiveTrade.MyGold != 25 {
		t.Errorf("gold split = %d held / %d escrowed", a.Gold, a.ActiveTrade.MyGold)
	}
	if err := TradeRemoveGold(a, b, 30); err == nil {
		t.Error("retracting more than escrowed should fail")
	}
	if err := TradeRemoveGold(a, b, 25); err != nil {
		t.Fatalf("remove gold failed: %v", err)
	}
	if a.Gold != 30 || a.ActiveTrade.MyGold != 0 {
		t.Errorf("gold not restored: %d held / %d escrowed", a.Gold, a.ActiveTrade.MyGold)
	}
}

func TestCancelTradeRestoresEscrow(t *testing.T) {
	a, b := tradePair(t)
	a.Gold = 20
	s := sword()
	if err := a.AddItem(s); err != nil {
		t.Fatal(err)
	}
	if _, err := TradeAddItem(a, b, s.ID); err != nil {
		t.Fatal(err)
	}
	if err := TradeAddGold(a, b, 10); err != nil {
		t.Fatal(err)
	}

	a.CancelTrade()
	if a.ActiveTrade != nil {
		t.Fatal("trade still active after cancel")
	}
	if a.Gold != 20 || len(a.Inventory) != 1 {
		t.Errorf("escrow not restored: gold=%d inventory=%d", a.Gold, len(a.Inventory))
	}
}

func TestCanExecuteTradeSpaceCheck(t *testing.T) {
	cfg := testConfig()
	cfg.Gameplay.MaxInventorySlots = 2
	a := NewPlayer("alice", "hash", cfg)
	b := NewPlayer("bob", "hash", cfg)
	StartTrade(a, b)
	AcceptTrade(a, b)

	// Bob offers two items; Alice already carries one, so only one slot
	// remains on her side.
	if err := b.AddItem(sword()); err != nil {
		t.Fatal(err)
	}
	if err := b.AddItem(potion()); err != nil {
		t.Fatal(err)
	}
	if err := a.AddItem(armor()); err != nil {
		t.Fatal(err)
	}
	if _, err := TradeAddItem(b, a, "iron_sword"); err != nil {
		t.Fatal(err)
	}
	if _, err := TradeAddItem(b, a, "health_potion"); err != nil {
		t.Fatal(err)
	}

	if CanExecuteTrade(a, b) {
		t.Fatal("execute should be blocked by the space check")
	}

	a.RemoveItem("leather_armor")
	if !CanExecuteTrade(a, b) {
		t.Fatal("execute should pass once space is available")
	}
}

func TestExecuteTradeSwapsBothSides(t *testing.T) {
	a, b := tradePair(t)
	a.Gold = 50
	b.Gold = 5
	s := sword()
	if err := a.AddItem(s); err != nil {
		t.Fatal(err)
	}
	if _, err := TradeAddItem(a, b, s.ID); err != nil {
		t.Fatal(err)
	}
	if err := TradeAddGold(a, b, 10); err != nil {
		t.Fatal(err)
	}
	if err := TradeAddGold(b, a, 5); err != nil {
		t.Fatal(err)
	}

	if !CanExecuteTrade(a, b) {
		t.Fatal("precondition should hold")
	}
	ExecuteTrade(a, b)

	if a.ActiveTrade != nil || b.ActiveTrade != nil {
		t.Fatal("trade state must clear after execute")
	}
	if a.Gold != 45 || b.Gold != 10 {
		t.Errorf("gold after swap: alice=%d bob=%d", a.Gold, b.Gold)
	}
	if _, ok := b.FindItem("iron_sword"); !ok {
		t.Error("bob did not receive the sword")
	}
	if len(a.Inventory) != 0 {
		t.Errorf("alice inventory length = %d, want 0", len(a.Inventory))
	}
}
