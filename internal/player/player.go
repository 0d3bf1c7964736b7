package player

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/greyhaven/greyhavenmud/server/internal/config"
	"github.com/greyhaven/greyhavenmud/server/internal/items"
	"github.com/greyhaven/greyhavenmud/server/internal/leveling"
)

// Player is the authoritative session record for one character. All
// mutation happens under the world lock; the struct itself carries no
// locking.
type Player struct {
	ID           string
	Username     string
	PasswordHash string
	Location     string

	Level         int
	XP            int
	BaseHealth    int
	BaseMana      int
	BaseDamage    int
	BaseDefense   int
	CurrentHealth int
	CurrentMana   int
	Gold          int

	Inventory []*items.Item
	Materials map[string]int
	Equipped  map[items.EquipmentSlot]*items.Item

	KnownRecipes    map[string]bool
	ActiveQuests    map[string]int
	CompletedQuests map[string]bool

	OneTimeEnemiesDefeated map[string]bool
	OneTimeItemsPickedUp   map[string]bool
	LastHarvest            map[string]int64

	LastWhisperFrom   string
	Friends           []string
	PvPWins           int
	PvPLosses         int
	HomestoneLocation string
	LastItemUseAt     int64
	BannedUntil       int64
	InPvPCombat       bool
	LastPvPHitAt      int64
	ActiveTrade       *TradeState
	IsGM              bool

	maxInventorySlots int
}

// NewPlayer creates a fresh level-1 player from the configured defaults.
func NewPlayer(username, passwordHash string, cfg *config.GameConfig) *Player {
	p := &Player{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Location:     cfg.Player.StartingLocation,
		Level:        1,
		BaseHealth:   cfg.Player.BaseHealth,
		BaseMana:     cfg.Player.BaseMana,
		BaseDamage:   cfg.Player.BaseDamage,
		BaseDefense:  cfg.Player.BaseDefense,
		Gold:         cfg.Player.StartingGold,
	}
	p.initMaps()
	p.maxInventorySlots = cfg.Gameplay.MaxInventorySlots
	p.CurrentHealth = p.MaxHealth()
	p.CurrentMana = p.MaxMana()
	return p
}

// initMaps allocates every map field; used by NewPlayer and rehydration.
func (p *Player) initMaps() {
	if p.Materials == nil {
		p.Materials = make(map[string]int)
	}
	if p.Equipped == nil {
		p.Equipped = make(map[items.EquipmentSlot]*items.Item)
	}
	if p.KnownRecipes == nil {
		p.KnownRecipes = make(map[string]bool)
	}
	if p.ActiveQuests == nil {
		p.ActiveQuests = make(map[string]int)
	}
	if p.CompletedQuests == nil {
		p.CompletedQuests = make(map[string]bool)
	}
	if p.OneTimeEnemiesDefeated == nil {
		p.OneTimeEnemiesDefeated = make(map[string]bool)
	}
	if p.OneTimeItemsPickedUp == nil {
		p.OneTimeItemsPickedUp = make(map[string]bool)
	}
	if p.LastHarvest == nil {
		p.LastHarvest = make(map[string]int64)
	}
}

// Rehydrate restores derived state after loading from disk.
func (p *Player) Rehydrate(cfg *config.GameConfig) {
	p.initMaps()
	p.maxInventorySlots = cfg.Gameplay.MaxInventorySlots
	p.ClampVitals()
}

// MaxInventorySlots returns the inventory capacity.
func (p *Player) MaxInventorySlots() int {
	if p.maxInventorySlots <= 0 {
		return 16
	}
	return p.maxInventorySlots
}

// MaxHealth returns base plus equipped health bonuses.
func (p *Player) MaxHealth() int {
	total := p.BaseHealth
	for _, item := range p.Equipped {
		if item != nil {
			total += item.Stats.Health
		}
	}
	return total
}

// MaxMana returns base plus equipped mana bonuses.
func (p *Player) MaxMana() int {
	total := p.BaseMana
	for _, item := range p.Equipped {
		if item != nil {
			total += item.Stats.Mana
		}
	}
	return total
}

// TotalDamage returns base plus equipped damage bonuses.
func (p *Player) TotalDamage() int {
	total := p.BaseDamage
	for _, item := range p.Equipped {
		if item != nil {
			total += item.Stats.Damage
		}
	}
	return total
}

// TotalDefense returns base plus equipped defense bonuses.
func (p *Player) TotalDefense() int {
	total := p.BaseDefense
	for _, item := range p.Equipped {
		if item != nil {
			total += item.Stats.Defense
		}
	}
	return total
}

// Power is the PvP difficulty metric: effective health + damage + defense.
func (p *Player) Power() int {
	return p.MaxHealth() + p.TotalDamage() + p.TotalDefense()
}

// ClampVitals caps current health and mana at the derived maxima.
func (p *Player) ClampVitals() {
	if p.CurrentHealth > p.MaxHealth() {
		p.CurrentHealth = p.MaxHealth()
	}
	if p.CurrentMana > p.MaxMana() {
		p.CurrentMana = p.MaxMana()
	}
}

// IsAlive reports whether the player has health remaining.
func (p *Player) IsAlive() bool {
	return p.CurrentHealth > 0
}

// IsBanned reports whether a ban is still in effect.
func (p *Player) IsBanned(now time.Time) bool {
	return p.BannedUntil > 0 && now.UnixMilli() < p.BannedUntil
}

// HasFreeSlot reports whether at least n inventory slots are free.
func (p *Player) HasFreeSlots(n int) bool {
	return len(p.Inventory)+n <= p.MaxInventorySlots()
}

// AddItem appends an item instance to the inventory. Fails when full.
func (p *Player) AddItem(item *items.Item) error {
	if !p.HasFreeSlots(1) {
		return fmt.Errorf("inventory is full (%d/%d slots)", len(p.Inventory), p.MaxInventorySlots())
	}
	p.Inventory = append(p.Inventory, item)
	return nil
}

// FindItem returns the first inventory item with the given ID.
func (p *Player) FindItem(itemID string) (*items.Item, bool) {
	for _, item := range p.Inventory {
		if item.ID == itemID {
			return item, true
		}
	}
	return nil, false
}

// RemoveItem removes and returns the first inventory item with the
// given ID, preserving order of the rest.
func (p *Player) RemoveItem(itemID string) (*items.Item, bool) {
	for i, item := range p.Inventory {
		if item.ID == itemID {
			p.Inventory = append(p.Inventory[:i], p.Inventory[i+1:]...)
			return item, true
		}
	}
	return nil, false
}

// CountItems returns how many inventory items share the given ID.
func (p *Player) CountItems(itemID string) int {
	count := 0
	for _, item := range p.Inventory {
		if item.ID == itemID {
			count++
		}
	}
	return count
}

// RemoveItems removes up to n items with the given ID. Returns the
// removed instances.
func (p *Player) RemoveItems(itemID string, n int) []*items.Item {
	removed := make([]*items.Item, 0, n)
	kept := p.Inventory[:0]
	for _, item := range p.Inventory {
		if item.ID == itemID && len(removed) < n {
			removed = append(removed, item)
			continue
		}
		kept = append(kept, item)
	}
	p.Inventory = kept
	return removed
}

// Equip places an equipment item from the inventory into its slot,
// swapping out any previous occupant. Health and mana are clamped to
// the new maxima.
func (p *Player) Equip(itemID string) (*items.Item, *items.Item, error) {
	item, ok := p.FindItem(itemID)
	if !ok {
		return nil, nil, fmt.Errorf("you are not carrying that")
	}
	if !item.IsEquippable() {
		return nil, nil, fmt.Errorf("%s cannot be equipped", item.Name)
	}

	p.RemoveItem(itemID)
	previous := p.Equipped[item.Slot]
	p.Equipped[item.Slot] = item
	if previous != nil {
		// Swap never changes inventory length, so the cap holds.
		p.Inventory = append(p.Inventory, previous)
	}
	p.ClampVitals()
	return item, previous, nil
}

// Unequip moves the item in a slot back to the inventory. Requires a
// free slot.
func (p *Player) Unequip(slot items.EquipmentSlot) (*items.Item, error) {
	item := p.Equipped[slot]
	if item == nil {
		return nil, fmt.Errorf("nothing is equipped in your %s slot", slot)
	}
	if !p.HasFreeSlots(1) {
		return nil, fmt.Errorf("your inventory is full")
	}
	delete(p.Equipped, slot)
	p.Inventory = append(p.Inventory, item)
	p.ClampVitals()
	return item, nil
}

// AddMaterial adds to a material stack.
func (p *Player) AddMaterial(materialID string, amount int) {
	p.Materials[materialID] += amount
}

// RemoveMaterials consumes materials all-or-nothing. Returns false and
// leaves the map untouched when any count is short.
func (p *Player) RemoveMaterials(costs map[string]int) bool {
	for id, n := range costs {
		if p.Materials[id] < n {
			return false
		}
	}
	for id, n := range costs {
		p.Materials[id] -= n
		if p.Materials[id] == 0 {
			delete(p.Materials, id)
		}
	}
	return true
}

// Heal restores health up to the maximum and returns the amount healed.
func (p *Player) Heal(amount int) int {
	missing := p.MaxHealth() - p.CurrentHealth
	if amount > missing {
		amount = missing
	}
	p.CurrentHealth += amount
	return amount
}

// RestoreMana restores mana up to the maximum and returns the amount.
func (p *Player) RestoreMana(amount int) int {
	missing := p.MaxMana() - p.CurrentMana
	if amount > missing {
		amount = missing
	}
	p.CurrentMana += amount
	return amount
}

// SpendMana deducts mana if available.
func (p *Player) SpendMana(amount int) bool {
	if p.CurrentMana < amount {
		return false
	}
	p.CurrentMana -= amount
	return true
}

// SpendGold deducts gold if available.
func (p *Player) SpendGold(amount int) bool {
	if p.Gold < amount {
		return false
	}
	p.Gold -= amount
	return true
}

// GainXP credits experience and applies every level gained, returning
// the level-up events.
func (p *Player) GainXP(xp int, cfg *config.GameConfig) []leveling.LevelUpInfo {
	p.XP += xp
	gains := leveling.LevelsGained(cfg.Progression, p.Level, p.XP)
	for _, gain := range gains {
		p.Level = gain.NewLevel
		p.BaseHealth += gain.HealthGain
		p.BaseMana += gain.ManaGain
		p.BaseDamage += gain.DamageGain
		p.BaseDefense += gain.DefenseGain
	}
	if len(gains) > 0 && cfg.Progression.HealOnLevelUp {
		p.CurrentHealth = p.MaxHealth()
		p.CurrentMana = p.MaxMana()
	}
	return gains
}

// IsFriend reports whether a username is on the friends list.
func (p *Player) IsFriend(username string) bool {
	for _, f := range p.Friends {
		if strings.EqualFold(f, username) {
			return true
		}
	}
	return false
}

// AddFriend appends a username to the friends list.
func (p *Player) AddFriend(username string) bool {
	if p.IsFriend(username) {
		return false
	}
	p.Friends = append(p.Friends, username)
	return true
}

// RemoveFriend drops a username from the friends list.
func (p *Player) RemoveFriend(username string) bool {
	for i, f := range p.Friends {
		if strings.EqualFold(f, username) {
			p.Friends = append(p.Friends[:i], p.Friends[i+1:]...)
			return true
		}
	}
	return false
}
