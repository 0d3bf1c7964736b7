package world

import (
	"fmt"

	"github.com/greyhaven/greyhavenmud/server/internal/enemy"
	"github.com/greyhaven/greyhavenmud/server/internal/items"
)

// EnemyInstance is the mutable per-room copy of an enemy template.
// One instance exists per room-scoped declaration; a defeated instance
// stays in place until the tick driver revives it.
type EnemyInstance struct {
	Template   *enemy.Enemy
	LocationID string

	CurrentHealth int
	Fighters      []string
	LastKilledAt  int64
	LastAttackAt  int64

	// Gating propagated from the room-scoped declaration (falling back
	// to the template's own gating).
	PrerequisiteActiveQuests    []string
	PrerequisiteCompletedQuests []string
	OneTime                     bool
}

// NewEnemyInstance builds a full-health instance from a room
// declaration.
func NewEnemyInstance(template *enemy.Enemy, locationID string, decl EnemyDeclaration) *EnemyInstance {
	inst := &EnemyInstance{
		Template:                    template,
		LocationID:                  locationID,
		CurrentHealth:               template.MaxHealth,
		PrerequisiteActiveQuests:    decl.PrerequisiteActiveQuests,
		PrerequisiteCompletedQuests: decl.PrerequisiteCompletedQuests,
		OneTime:                     decl.OneTime || template.OneTime,
	}
	if len(inst.PrerequisiteActiveQuests) == 0 {
		inst.PrerequisiteActiveQuests = template.PrerequisiteActiveQuests
	}
	if len(inst.PrerequisiteCompletedQuests) == 0 {
		inst.PrerequisiteCompletedQuests = template.PrerequisiteCompletedQuests
	}
	return inst
}

// Key identifies the instance for per-player one-time tracking.
func (e *EnemyInstance) Key() string {
	return fmt.Sprintf("%s.%s", e.LocationID, e.Template.ID)
}

// IsAlive reports whether the enemy can be fought.
func (e *EnemyInstance) IsAlive() bool {
	return e.CurrentHealth > 0
}

// AddFighter records a username in the ordered fighters set.
func (e *EnemyInstance) AddFighter(username string) {
	for _, f := range e.Fighters {
		if f == username {
			return
		}
	}
	e.Fighters = append(e.Fighters, username)
}

// RemoveFighter drops a username from the fighters set.
func (e *EnemyInstance) RemoveFighter(username string) {
	for i, f := range e.Fighters {
		if f == username {
			e.Fighters = append(e.Fighters[:i], e.Fighters[i+1:]...)
			return
		}
	}
}

// HasFighter reports whether a username is in the fighters set.
func (e *EnemyInstance) HasFighter(username string) bool {
	for _, f := range e.Fighters {
		if f == username {
			return true
		}
	}
	return false
}

// MarkDefeated records the kill time and clears the fighters set.
func (e *EnemyInstance) MarkDefeated(now int64) {
	e.CurrentHealth = 0
	e.LastKilledAt = now
	e.Fighters = nil
}

// Revive restores the instance to full health with an empty fighters
// set.
func (e *EnemyInstance) Revive() {
	e.CurrentHealth = e.Template.MaxHealth
	e.Fighters = nil
	e.LastKilledAt = 0
	e.LastAttackAt = 0
}

// RespawnTimeMs returns the template respawn delay.
func (e *EnemyInstance) RespawnTimeMs() int64 {
	return e.Template.RespawnTimeMs
}

// WoundDescriptor returns the coarse health readout shown in look.
func (e *EnemyInstance) WoundDescriptor() string {
	pct := float64(e.CurrentHealth) / float64(e.Template.MaxHealth)
	switch {
	case pct < 0.25:
		return "badly wounded"
	case pct < 0.5:
		return "wounded"
	case pct < 0.75:
		return "lightly wounded"
	default:
		return ""
	}
}

// GroundItem is a preset room item declared by the location.
// Respawnable presets track a global pickup time; non-respawnable and
// one-time presets become invisible per player via the player's pickup
// set.
type GroundItem struct {
	Item          *items.Item
	LocationID    string
	RespawnTimeMs int64
	OneTime       bool

	PrerequisiteActiveQuests    []string
	PrerequisiteCompletedQuests []string

	LastPickedUpAt int64
}

// Key identifies the ground item for per-player one-time tracking.
func (g *GroundItem) Key() string {
	return fmt.Sprintf("%s.%s", g.LocationID, g.Item.ID)
}

// IsRespawning reports whether the item is waiting on its respawn
// timer.
func (g *GroundItem) IsRespawning(now int64) bool {
	if g.RespawnTimeMs <= 0 || g.LastPickedUpAt == 0 {
		return false
	}
	return now-g.LastPickedUpAt < g.RespawnTimeMs
}

// DroppedItem is a runtime drop with a bounded lifetime.
type DroppedItem struct {
	Item      *items.Item
	DroppedAt int64
}
