package command

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/greyhaven/greyhavenmud/server/internal/config"
	"github.com/greyhaven/greyhavenmud/server/internal/crafting"
	"github.com/greyhaven/greyhavenmud/server/internal/enemy"
	"github.com/greyhaven/greyhavenmud/server/internal/items"
	"github.com/greyhaven/greyhavenmud/server/internal/npc"
	"github.com/greyhaven/greyhavenmud/server/internal/player"
	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
	"github.com/greyhaven/greyhavenmud/server/internal/quest"
	"github.com/greyhaven/greyhavenmud/server/internal/shop"
	"github.com/greyhaven/greyhavenmud/server/internal/world"
)

// fakeServer records everything a handler sends and defers scheduled
// callbacks until the test fires them with runPending.
type fakeServer struct {
	w *world.World

	messages     []fakeMessage
	frames       []protocol.ServerFrame
	pending      []func()
	saved        map[string]int
	disconnected []string
	loggedOut    []string
	deleted      []string
}

type fakeMessage struct {
	to   string
	kind protocol.MessageType
	text string
}

func newFakeServer() *fakeServer {
	return &fakeServer{saved: make(map[string]int)}
}

func (f *fakeServer) Send(p *player.Player, text string, t protocol.MessageType) {
	f.messages = append(f.messages, fakeMessage{to: p.Username, kind: t, text: text})
}

func (f *fakeServer) Broadcast(locationID, text string, t protocol.MessageType, excludeUsername string) {
	for _, p := range f.w.PlayersIn(locationID) {
		if p.Username == excludeUsername {
			continue
		}
		f.messages = append(f.messages, fakeMessage{to: p.Username, kind: t, text: text})
	}
}

func (f *fakeServer) SendToAll(text string, t protocol.MessageType) {
	for _, p := range f.w.AttachedPlayers() {
		f.messages = append(f.messages, fakeMessage{to: p.Username, kind: t, text: text})
	}
}

func (f *fakeServer) SendFrame(p *player.Player, frame protocol.ServerFrame) {
	f.frames = append(f.frames, frame)
}
func (f *fakeServer) SendGameState(p *player.Player)                        {}

func (f *fakeServer) SavePlayer(p *player.Player) {
	f.saved[strings.ToLower(p.Username)]++
}

func (f *fakeServer) DeleteAccount(p *player.Player) {
	f.deleted = append(f.deleted, p.Username)
}

func (f *fakeServer) DisconnectPlayer(username, reason string) {
	f.disconnected = append(f.disconnected, username)
}

func (f *fakeServer) Logout(p *player.Player) {
	f.loggedOut = append(f.loggedOut, p.Username)
}

func (f *fakeServer) Schedule(d time.Duration, fn func()) {
	f.pending = append(f.pending, fn)
}

// runPending fires the currently queued callbacks. Callbacks scheduled
// while running are queued for the next call.
func (f *fakeServer) runPending() {
	batch := f.pending
	f.pending = nil
	for _, fn := range batch {
		fn()
	}
}

// received reports whether the named player got a message containing
// the substring.
func (f *fakeServer) received(username, substr string) bool {
	for _, m := range f.messages {
		if m.to == username && strings.Contains(m.text, substr) {
			return true
		}
	}
	return false
}

func (f *fakeServer) reset() {
	f.messages = nil
}

// fixture wires a dispatcher to an in-memory catalog with a town, a
// forest and an arena.
type fixture struct {
	world *world.World
	cfg   *config.GameConfig
	srv   *fakeServer
	d     *Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Gameplay.DamageVariance = 0
	cfg.Gameplay.FleeSuccessChance = 1.0
	cfg.Gameplay.ItemUseCooldownMs = 0

	collection := items.NewCollection()
	collection.Add(&items.Item{
		ID: "iron_sword", Name: "Iron Sword", Type: items.TypeEquipment,
		Slot: items.SlotWeapon, Value: 20, Stats: items.Stats{Damage: 5},
	})
	collection.Add(&items.Item{
		ID: "leather_armor", Name: "Leather Armor", Type: items.TypeEquipment,
		Slot: items.SlotArmor, Value: 15, Stats: items.Stats{Defense: 3, Health: 10},
	})
	collection.Add(&items.Item{
		ID: "health_potion", Name: "Health Potion", Type: items.TypeConsumable,
		Value: 10, HealAmount: 20, UsableIn: items.UseAnywhere,
	})

	enemies := enemy.NewRegistry()
	enemies.Add(&enemy.Enemy{
		ID: "wolf", Name: "Grey Wolf", MaxHealth: 10, Damage: 3, Defense: 0,
		Gold: 10, XP: 10, RespawnTimeMs: 60000,
		MaterialDrops: map[string]enemy.MaterialDrop{
			"wolf_pelt": {Chance: 1.0, Amount: "1-1"},
		},
	})

	materials := crafting.NewMaterialRegistry()
	materials.Add(&crafting.Material{ID: "herb", Name: "Bitter Herb"})
	materials.Add(&crafting.Material{ID: "wolf_pelt", Name: "Wolf Pelt"})

	recipes := crafting.NewRecipeRegistry()
	recipes.Add(&crafting.Recipe{
		ID: "brew", Name: "Healing Draught", ResultID: "health_potion",
		ResultType: crafting.ResultItem, Materials: map[string]int{"herb": 2},
		RequiredLevel: 1,
	})

	quests := quest.NewRegistry()
	quests.Add(&quest.Quest{
		ID: "wolf_pelts", Name: "A Tanner's Request", Type: quest.TypeCollect,
		Target: "wolf_pelt", Count: 2,
		Dialogue:           "Bring me two wolf pelts.",
		CompletionDialogue: "Fine pelts, these.",
		Reward:             quest.Reward{Gold: 30, XP: 10, ItemID: "leather_armor"},
		NPCID:              "tanner",
	})

	npcs := npc.NewRegistry()
	npcs.Add(&npc.NPC{
		ID: "tanner", Name: "Tanner Holt", QuestID: "wolf_pelts",
		Dialogue: "Busy day.", QuestDialogue: "Bring me two wolf pelts.",
	})
	npcs.Add(&npc.NPC{ID: "mira", Name: "Healer Mira", Healer: true, Dialogue: "Stay safe out there."})

	shops := shop.NewRegistry()
	shops.Add(&shop.Shop{ID: "general", Name: "General Goods", Items: []string{"iron_sword", "health_potion"}})
	generalShop, _ := shops.Get("general")

	tanner, _ := npcs.Get("tanner")
	mira, _ := npcs.Get("mira")
	wolfTemplate, _ := enemies.Get("wolf")

	town := &world.Location{
		ID: "town_square", Name: "Town Square", Description: "The heart of town.",
		Exits: map[string]string{"north": "forest", "east": "arena"},
		NPCs:  []*npc.NPC{tanner, mira},
		Shop:  generalShop,
		Tags:  world.LocationTags{Homestone: true},
	}
	forest := &world.Location{
		ID: "forest", Name: "Forest", Description: "Old trees crowd the path.",
		Exits: map[string]string{"south": "town_square"},
		Enemies: []*world.EnemyInstance{
			world.NewEnemyInstance(wolfTemplate, "forest", world.EnemyDeclaration{EnemyID: "wolf"}),
		},
		Resources: []world.ResourceNode{
			{MaterialID: "herb", Amount: "2-2", CooldownMs: 60000, Chance: 1.0},
		},
	}
	arena := &world.Location{
		ID: "arena", Name: "Arena", Description: "Sand and old blood.",
		Exits: map[string]string{"west": "town_square"},
		Tags:  world.LocationTags{PvPAllowed: true},
	}

	catalog := &world.Catalog{
		Items:     collection,
		Enemies:   enemies,
		NPCs:      npcs,
		Quests:    quests,
		Shops:     shops,
		Recipes:   recipes,
		Materials: materials,
		Locations: map[string]*world.Location{
			"town_square": town,
			"forest":      forest,
			"arena":       arena,
		},
	}

	w := world.NewWorld(catalog)
	srv := newFakeServer()
	srv.w = w
	d := NewDispatcher(w, cfg, srv, rand.New(rand.NewSource(1)))

	return &fixture{world: w, cfg: cfg, srv: srv, d: d}
}

// addPlayer attaches a fresh player in the given location.
func (fx *fixture) addPlayer(username, locationID string) *player.Player {
	p := player.NewPlayer(username, "hash", fx.cfg)
	p.Location = locationID
	fx.world.AttachPlayer(p)
	return p
}

// item returns a fresh instance of a catalog template.
func (fx *fixture) item(t *testing.T, id string) *items.Item {
	t.Helper()
	template, ok := fx.world.Catalog().Items.Get(id)
	if !ok {
		t.Fatalf("no item template %q", id)
	}
	return template.NewInstance()
}

// wolf returns the forest wolf instance.
func (fx *fixture) wolf(t *testing.T) *world.EnemyInstance {
	t.Helper()
	loc, _ := fx.world.GetLocation("forest")
	return loc.Enemies[0]
}
