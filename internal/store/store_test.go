package store

import (
	"errors"
	"testing"

	"github.com/greyhaven/greyhavenmud/server/internal/config"
	"github.com/greyhaven/greyhavenmud/server/internal/items"
	"github.com/greyhaven/greyhavenmud/server/internal/player"
)

func testCollection() *items.Collection {
	c := items.NewCollection()
	c.Add(&items.Item{
		ID:    "iron_sword",
		Name:  "Iron Sword",
		Type:  items.TypeEquipment,
		Slot:  items.SlotWeapon,
		Value: 20,
		Stats: items.Stats{Damage: 5},
	})
	c.Add(&items.Item{
		ID:         "health_potion",
		Name:       "Health Potion",
		Type:       items.TypeConsumable,
		Value:      10,
		HealAmount: 20,
		UsableIn:   items.UseAnywhere,
	})
	return c
}

func openTestStore(t *testing.T) (*Store, *config.GameConfig) {
	t.Helper()
	cfg := config.DefaultConfig()
	s, err := Open(t.TempDir(), testCollection(), cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s, cfg
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, cfg := openTestStore(t)

	p := player.NewPlayer("Alice", "hash", cfg)
	p.Gold = 77
	p.XP = 140
	p.Level = 2
	p.AddMaterial("herb", 4)
	p.KnownRecipes["brew"] = true
	p.ActiveQuests["wolf_pelts"] = 2
	p.CompletedQuests["intro"] = true
	p.OneTimeItemsPickedUp["market_street.copper_ring"] = true
	p.LastHarvest["forest_edge_herb"] = 12345
	p.HomestoneLocation = "town_square"
	if err := p.AddItem(&items.Item{ID: "health_potion", Name: "Health Potion", Type: items.TypeConsumable}); err != nil {
		t.Fatal(err)
	}
	p.Equipped[items.SlotWeapon] = &items.Item{ID: "iron_sword", Name: "Iron Sword", Type: items.TypeEquipment, Slot: items.SlotWeapon}

	if err := s.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !s.Exists("alice") {
		t.Fatal("Exists should be case-insensitive on the username")
	}

	loaded, err := s.Load("ALICE")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Gold != 77 || loaded.XP != 140 || loaded.Level != 2 {
		t.Errorf("progression mismatch: gold=%d xp=%d level=%d", loaded.Gold, loaded.XP, loaded.Level)
	}
	if loaded.Materials["herb"] != 4 {
		t.Errorf("materials not restored: %v", loaded.Materials)
	}
	if !loaded.KnownRecipes["brew"] || loaded.ActiveQuests["wolf_pelts"] != 2 || !loaded.CompletedQuests["intro"] {
		t.Error("quest and recipe state not restored")
	}
	if !loaded.OneTimeItemsPickedUp["market_street.copper_ring"] {
		t.Error("one-time pickup keys not restored")
	}
	if loaded.LastHarvest["forest_edge_herb"] != 12345 {
		t.Error("harvest cooldowns not restored")
	}
	if _, ok := loaded.FindItem("health_potion"); !ok {
		t.Error("inventory item not rehydrated")
	}
	w := loaded.Equipped[items.SlotWeapon]
	if w == nil || w.ID != "iron_sword" {
		t.Error("equipped weapon not rehydrated")
	}
	if w != nil && w.Stats.Damage != 5 {
		t.Error("rehydration should rebuild instances from catalog templates")
	}
}

func TestSaveFoldsTradeEscrowBack(t *testing.T) {
	s, cfg := openTestStore(t)

	a := player.NewPlayer("alice", "hash", cfg)
	b := player.NewPlayer("bob", "hash", cfg)
	a.Gold = 40
	if err := a.AddItem(&items.Item{ID: "iron_sword", Type: items.TypeEquipment, Slot: items.SlotWeapon}); err != nil {
		t.Fatal(err)
	}
	player.StartTrade(a, b)
	player.AcceptTrade(a, b)
	if _, err := player.TradeAddItem(a, b, "iron_sword"); err != nil {
		t.Fatal(err)
	}
	if err := player.TradeAddGold(a, b, 15); err != nil {
		t.Fatal(err)
	}

	if err := s.Save(a); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := s.Load("alice")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Gold != 40 {
		t.Errorf("escrowed gold lost: %d, want 40", loaded.Gold)
	}
	if _, ok := loaded.FindItem("iron_sword"); !ok {
		t.Error("escrowed item lost on save")
	}
	if loaded.ActiveTrade != nil {
		t.Error("trades must not survive a reload")
	}
}

func TestLoadDropsUnknownItems(t *testing.T) {
	s, cfg := openTestStore(t)

	p := player.NewPlayer("carol", "hash", cfg)
	if err := p.AddItem(&items.Item{ID: "retired_relic", Type: items.TypeEquipment, Slot: items.SlotAccessory}); err != nil {
		t.Fatal(err)
	}
	if err := p.AddItem(&items.Item{ID: "health_potion", Type: items.TypeConsumable}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(p); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.Load("carol")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := loaded.FindItem("retired_relic"); ok {
		t.Error("unknown item survived the reload")
	}
	if _, ok := loaded.FindItem("health_potion"); !ok {
		t.Error("known item was dropped")
	}
}

func TestLoadMissing(t *testing.T) {
	s, _ := openTestStore(t)
	if _, err := s.Load("nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s, cfg := openTestStore(t)
	p := player.NewPlayer("dave", "hash", cfg)
	if err := s.Save(p); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("dave"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.Exists("dave") {
		t.Error("record still exists after delete")
	}
	if err := s.Delete("dave"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestSnapshotIsDetachedFromPlayer(t *testing.T) {
	s, cfg := openTestStore(t)

	p := player.NewPlayer("Erin", "hash", cfg)
	p.Gold = 33
	p.AddMaterial("herb", 2)
	rec := Snapshot(p)

	p.Gold = 99
	p.AddMaterial("herb", 5)
	p.AddFriend("mallory")

	if err := s.Write(rec); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	loaded, err := s.Load("erin")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Gold != 33 || loaded.Materials["herb"] != 2 {
		t.Errorf("later mutations leaked into the snapshot: gold=%d herb=%d",
			loaded.Gold, loaded.Materials["herb"])
	}
	if len(loaded.Friends) != 0 {
		t.Errorf("later friends leaked into the snapshot: %v", loaded.Friends)
	}
}
