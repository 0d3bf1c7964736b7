package world

import (
	"sort"
	"strings"
	"sync"

	"github.com/greyhaven/greyhavenmud/server/internal/player"
)

// World owns the mutable runtime state: the enriched location map and
// the attached players. A single mutex serializes every command
// handler and tick pass (the game-state lock of the concurrency
// model); all World mutation happens with it held.
type World struct {
	mu      sync.Mutex
	catalog *Catalog
	players map[string]*player.Player // lowercase username -> attached player
}

// NewWorld wraps a loaded catalog in runtime state.
func NewWorld(catalog *Catalog) *World {
	return &World{
		catalog: catalog,
		players: make(map[string]*player.Player),
	}
}

// Lock acquires the game-state lock.
func (w *World) Lock() { w.mu.Lock() }

// Unlock releases the game-state lock.
func (w *World) Unlock() { w.mu.Unlock() }

// Catalog returns the immutable template catalog.
func (w *World) Catalog() *Catalog { return w.catalog }

// GetLocation returns an enriched location by ID.
func (w *World) GetLocation(id string) (*Location, bool) {
	loc, ok := w.catalog.Locations[id]
	return loc, ok
}

// AttachPlayer binds a player record to the attached set.
func (w *World) AttachPlayer(p *player.Player) {
	w.players[strings.ToLower(p.Username)] = p
}

// DetachPlayer releases the username binding.
func (w *World) DetachPlayer(username string) {
	delete(w.players, strings.ToLower(username))
}

// GetPlayer returns an attached player by case-insensitive username.
func (w *World) GetPlayer(username string) (*player.Player, bool) {
	p, ok := w.players[strings.ToLower(username)]
	return p, ok
}

// AttachedPlayers returns every attached player.
func (w *World) AttachedPlayers() []*player.Player {
	players := make([]*player.Player, 0, len(w.players))
	for _, p := range w.players {
		players = append(players, p)
	}
	return players
}

// OnlineUsernames returns the attached usernames sorted for display.
func (w *World) OnlineUsernames() []string {
	names := make([]string, 0, len(w.players))
	for _, p := range w.players {
		names = append(names, p.Username)
	}
	sort.Strings(names)
	return names
}

// PlayersIn returns the attached players in a location.
func (w *World) PlayersIn(locationID string) []*player.Player {
	var result []*player.Player
	for _, p := range w.players {
		if p.Location == locationID {
			result = append(result, p)
		}
	}
	return result
}

// enemyVisible applies quest-prerequisite and one-time gating.
func enemyVisible(p *player.Player, e *EnemyInstance) bool {
	if e.OneTime && p.OneTimeEnemiesDefeated[e.Key()] {
		return false
	}
	for _, questID := range e.PrerequisiteActiveQuests {
		if _, active := p.ActiveQuests[questID]; !active {
			return false
		}
	}
	for _, questID := range e.PrerequisiteCompletedQuests {
		if !p.CompletedQuests[questID] {
			return false
		}
	}
	return true
}

// VisibleEnemies returns the living enemies the player can see in a
// location.
func (w *World) VisibleEnemies(p *player.Player, locationID string) []*EnemyInstance {
	loc, ok := w.GetLocation(locationID)
	if !ok {
		return nil
	}
	var result []*EnemyInstance
	for _, e := range loc.Enemies {
		if e.IsAlive() && enemyVisible(p, e) {
			result = append(result, e)
		}
	}
	return result
}

// FindVisibleEnemy returns the first visible living enemy with the
// given template ID in the player's location.
func (w *World) FindVisibleEnemy(p *player.Player, enemyID string) (*EnemyInstance, bool) {
	for _, e := range w.VisibleEnemies(p, p.Location) {
		if e.Template.ID == enemyID {
			return e, true
		}
	}
	return nil, false
}

// groundItemVisible applies respawn, one-time and prerequisite gating.
func groundItemVisible(p *player.Player, g *GroundItem, now int64) bool {
	if p.OneTimeItemsPickedUp[g.Key()] {
		return false
	}
	if g.IsRespawning(now) {
		return false
	}
	for _, questID := range g.PrerequisiteActiveQuests {
		if _, active := p.ActiveQuests[questID]; !active {
			return false
		}
	}
	for _, questID := range g.PrerequisiteCompletedQuests {
		if !p.CompletedQuests[questID] {
			return false
		}
	}
	return true
}

// VisibleGroundItems returns the preset items the player can see.
func (w *World) VisibleGroundItems(p *player.Player, locationID string, now int64) []*GroundItem {
	loc, ok := w.GetLocation(locationID)
	if !ok {
		return nil
	}
	var result []*GroundItem
	for _, g := range loc.Ground {
		if groundItemVisible(p, g, now) {
			result = append(result, g)
		}
	}
	return result
}

// IsInCombat reports whether the player is in any fighters set in
// their current location, or flagged for PvP.
func (w *World) IsInCombat(p *player.Player) bool {
	if p.InPvPCombat {
		return true
	}
	loc, ok := w.GetLocation(p.Location)
	if !ok {
		return false
	}
	for _, e := range loc.Enemies {
		if e.IsAlive() && e.HasFighter(p.Username) {
			return true
		}
	}
	return false
}

// EngagedEnemy returns the first living enemy whose fighters set
// contains the player.
func (w *World) EngagedEnemy(p *player.Player) (*EnemyInstance, bool) {
	loc, ok := w.GetLocation(p.Location)
	if !ok {
		return nil, false
	}
	for _, e := range loc.Enemies {
		if e.IsAlive() && e.HasFighter(p.Username) {
			return e, true
		}
	}
	return nil, false
}

// RemoveFighterFromLocation clears the player from every fighters set
// in a location (death, flee, disconnect, displacement).
func (w *World) RemoveFighterFromLocation(locationID, username string) {
	loc, ok := w.GetLocation(locationID)
	if !ok {
		return
	}
	for _, e := range loc.Enemies {
		e.RemoveFighter(username)
	}
}
