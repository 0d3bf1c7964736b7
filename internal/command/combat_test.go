package command

import (
	"testing"

	"github.com/greyhaven/greyhavenmud/server/internal/enemy"
)

func TestAttackHitsAndCounterAttacks(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "forest")
	wolf := fx.wolf(t)

	fx.d.Execute(alice, "attack wolf")

	if wolf.CurrentHealth != 5 {
		t.Fatalf("wolf health = %d, want 5 after one hit", wolf.CurrentHealth)
	}
	if !wolf.HasFighter("alice") {
		t.Error("attacker not recorded as a fighter")
	}
	if !fx.srv.received("alice", "alice hits Grey Wolf for 5") {
		t.Error("missing hit broadcast")
	}

	// Fires the counter-attack and the next round: the wolf strikes back,
	// then alice's follow-up kills it.
	fx.srv.runPending()

	if alice.CurrentHealth != alice.MaxHealth()-3 {
		t.Errorf("alice health = %d, want max-3 after the counter", alice.CurrentHealth)
	}
	if wolf.IsAlive() {
		t.Error("wolf should be dead after the second round")
	}
	if !fx.srv.received("alice", "Grey Wolf dies!") {
		t.Error("missing death broadcast")
	}
	if alice.Gold != fx.cfg.Player.StartingGold+10 {
		t.Errorf("gold = %d, want starting+10", alice.Gold)
	}
	if alice.XP != 10 {
		t.Errorf("xp = %d, want 10", alice.XP)
	}
	if alice.Materials["wolf_pelt"] != 1 {
		t.Errorf("pelt drop missing: %v", alice.Materials)
	}
}

func TestKillRewardsSplitAcrossFighters(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "forest")
	bob := fx.addPlayer("bob", "forest")
	wolf := fx.wolf(t)

	fx.d.Execute(alice, "attack wolf")
	fx.d.Execute(bob, "attack wolf")

	if wolf.IsAlive() {
		t.Fatal("two hits should kill the wolf")
	}
	for _, p := range []*struct {
		name string
		gold int
		xp   int
	}{
		{"alice", alice.Gold, alice.XP},
		{"bob", bob.Gold, bob.XP},
	} {
		if p.gold != fx.cfg.Player.StartingGold+5 {
			t.Errorf("%s gold = %d, want starting+5", p.name, p.gold)
		}
		if p.xp != 5 {
			t.Errorf("%s xp = %d, want 5", p.name, p.xp)
		}
	}
	if alice.Materials["wolf_pelt"] != 1 || bob.Materials["wolf_pelt"] != 1 {
		t.Error("drops roll independently for every fighter")
	}
}

func TestLootOverflowFallsToGround(t *testing.T) {
	fx := newFixture(t)
	fx.cfg.Gameplay.MaxInventorySlots = 1
	alice := fx.addPlayer("alice", "forest")
	alice.Inventory = append(alice.Inventory, fx.item(t, "health_potion"))
	wolf := fx.wolf(t)
	wolf.Template.ItemDrops = map[string]enemy.ItemDrop{"iron_sword": {Chance: 1.0}}
	wolf.CurrentHealth = 5

	fx.d.Execute(alice, "attack wolf")

	if wolf.IsAlive() {
		t.Fatal("one hit should finish the weakened wolf")
	}
	if _, ok := alice.FindItem("iron_sword"); ok {
		t.Fatal("loot must not enter a full inventory")
	}
	loc, _ := fx.world.GetLocation("forest")
	if len(loc.Dropped) != 1 || loc.Dropped[0].Item.ID != "iron_sword" {
		t.Fatalf("overflow loot not on the floor: got %d drops", len(loc.Dropped))
	}
	if !fx.srv.received("alice", "Iron Sword falls to the ground") {
		t.Error("missing hands-full message")
	}
	if alice.Materials["wolf_pelt"] != 1 {
		t.Error("material drops should still be collected")
	}
}

func TestAttackUnknownTarget(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")

	fx.d.Execute(alice, "attack wolf")
	if !fx.srv.received("alice", "nothing like that to attack") {
		t.Error("expected a no-target error in a room without enemies")
	}
}

func TestPlayerDeathRespawnsAtTown(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "forest")
	alice.Gold = 50
	wolf := fx.wolf(t)
	wolf.Template.Damage = 500

	fx.d.Execute(alice, "attack wolf")
	fx.srv.runPending()

	if !fx.srv.received("alice", "You have died!") {
		t.Fatal("missing death message")
	}
	if alice.Gold != 45 {
		t.Errorf("gold = %d, want 45 after the 10%% death loss", alice.Gold)
	}
	if alice.CurrentHealth != alice.MaxHealth() {
		t.Error("death should fully restore vitals")
	}
	if wolf.HasFighter("alice") {
		t.Error("dead player still in the fighters set")
	}

	// The respawn relocation is deferred.
	if alice.Location != "forest" {
		t.Fatal("relocation should wait for the scheduled callback")
	}
	fx.srv.runPending()
	if alice.Location != "town_square" {
		t.Errorf("respawned at %q, want town_square", alice.Location)
	}
}

func TestFleeLeavesCombat(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "forest")
	wolf := fx.wolf(t)

	fx.d.Execute(alice, "attack wolf")
	fx.d.Execute(alice, "flee")

	if alice.Location != "town_square" {
		t.Errorf("fled to %q, want town_square", alice.Location)
	}
	if wolf.HasFighter("alice") {
		t.Error("fleeing should clear the fighters set")
	}
	if !fx.srv.received("alice", "You flee!") {
		t.Error("missing flee message")
	}
}

func TestFleeOutsideCombat(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "forest")

	fx.d.Execute(alice, "flee")
	if !fx.srv.received("alice", "not fighting") {
		t.Error("flee outside combat should be rejected")
	}
}

func TestPvPRequiresTaggedRoom(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")
	fx.addPlayer("bob", "town_square")

	fx.d.Execute(alice, "attack bob")
	if !fx.srv.received("alice", "cannot fight other players here") {
		t.Error("PvP outside a tagged room should be rejected")
	}
}

func TestPvPSwingMarksCombat(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "arena")
	bob := fx.addPlayer("bob", "arena")

	fx.d.Execute(alice, "attack bob")

	if !alice.InPvPCombat || !bob.InPvPCombat {
		t.Fatal("both duelists should be flagged in combat")
	}
	if alice.LastPvPHitAt == 0 || bob.LastPvPHitAt == 0 {
		t.Error("hit time not stamped for the timeout pass")
	}
}

func TestPvPVictory(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "arena")
	bob := fx.addPlayer("bob", "arena")
	alice.BaseDamage = 500
	bob.Gold = 50

	fx.d.Execute(alice, "attack bob")

	if alice.PvPWins != 1 || bob.PvPLosses != 1 {
		t.Errorf("record = %d wins / %d losses", alice.PvPWins, bob.PvPLosses)
	}
	if bob.Gold != 45 {
		t.Errorf("bob gold = %d, want 45 after the 10%% loot", bob.Gold)
	}
	if alice.Gold != fx.cfg.Player.StartingGold+5 {
		t.Errorf("alice gold = %d, want starting+5", alice.Gold)
	}
	// Bob vastly outmatched: the win is worth the minimum XP grant.
	if alice.XP != 1 {
		t.Errorf("alice xp = %d, want 1 for a trivial kill", alice.XP)
	}
	if bob.CurrentHealth != bob.MaxHealth() {
		t.Error("loser should respawn at full health")
	}
	if alice.InPvPCombat || bob.InPvPCombat {
		t.Error("PvP flags should clear when the duel ends")
	}

	fx.srv.runPending()
	if bob.Location != "town_square" {
		t.Errorf("loser respawned at %q, want town_square", bob.Location)
	}
}
