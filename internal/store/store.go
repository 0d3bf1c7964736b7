package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/greyhaven/greyhavenmud/server/internal/config"
	"github.com/greyhaven/greyhavenmud/server/internal/items"
	"github.com/greyhaven/greyhavenmud/server/internal/logger"
	"github.com/greyhaven/greyhavenmud/server/internal/player"
)

// ErrNotFound is returned when no record exists for a username.
var ErrNotFound = errors.New("player not found")

// Record is the on-disk form of a player. Inventory and equipment hold
// item IDs only; instances are rebuilt against the catalog on load.
type Record struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	Location     string `json:"location"`

	Level         int `json:"level"`
	XP            int `json:"xp"`
	BaseHealth    int `json:"baseHealth"`
	BaseMana      int `json:"baseMana"`
	BaseDamage    int `json:"baseDamage"`
	BaseDefense   int `json:"baseDefense"`
	CurrentHealth int `json:"currentHealth"`
	CurrentMana   int `json:"currentMana"`
	Gold          int `json:"gold"`

	Inventory []string          `json:"inventory"`
	Materials map[string]int    `json:"materials,omitempty"`
	Equipped  map[string]string `json:"equipped,omitempty"`

	KnownRecipes    []string       `json:"knownRecipes,omitempty"`
	ActiveQuests    map[string]int `json:"activeQuests,omitempty"`
	CompletedQuests []string       `json:"completedQuests,omitempty"`

	OneTimeEnemiesDefeated []string         `json:"oneTimeEnemiesDefeated,omitempty"`
	OneTimeItemsPickedUp   []string         `json:"oneTimeItemsPickedUp,omitempty"`
	LastHarvest            map[string]int64 `json:"lastHarvest,omitempty"`

	Friends           []string `json:"friends,omitempty"`
	PvPWins           int      `json:"pvpWins,omitempty"`
	PvPLosses         int      `json:"pvpLosses,omitempty"`
	HomestoneLocation string   `json:"homestoneLocation,omitempty"`
	BannedUntil       int64    `json:"bannedUntil,omitempty"`
	IsGM              bool     `json:"isGm,omitempty"`
}

// Store persists one JSON file per username under a root directory.
// Records are snapshotted under the world lock and written without it;
// the store itself carries no synchronization beyond atomic file
// replacement, so concurrent writers must serialize per username.
type Store struct {
	root    string
	items   *items.Collection
	gameCfg *config.GameConfig
}

// Open creates the persist root if needed and returns a store bound to
// the item catalog used for rehydration.
func Open(root string, itemCollection *items.Collection, cfg *config.GameConfig) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create player store root: %w", err)
	}
	return &Store{root: root, items: itemCollection, gameCfg: cfg}, nil
}

func (s *Store) path(username string) string {
	return filepath.Join(s.root, strings.ToLower(username)+".json")
}

// Exists reports whether a record exists for the username.
func (s *Store) Exists(username string) bool {
	_, err := os.Stat(s.path(username))
	return err == nil
}

// Load reads and rehydrates a player record.
func (s *Store) Load(username string) (*player.Player, error) {
	data, err := os.ReadFile(s.path(username))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read player file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse player file for %q: %w", username, err)
	}

	return s.fromRecord(&rec), nil
}

// Save snapshots and writes a player record in one call. Callers that
// must not block on disk take a Snapshot and Write it later.
func (s *Store) Save(p *player.Player) error {
	return s.Write(Snapshot(p))
}

// Write persists a snapshotted record atomically (tmp + rename).
func (s *Store) Write(rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode player %q: %w", rec.Username, err)
	}

	path := s.path(rec.Username)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write player file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace player file: %w", err)
	}
	return nil
}

// Delete removes a player record.
func (s *Store) Delete(username string) error {
	err := os.Remove(s.path(username))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// Snapshot flattens a player to its ID-only on-disk form; call it
// under the world lock. The record shares nothing with the player, so
// it may be written after the lock is released. Escrowed trade items
// are folded back into the inventory so a crash mid-trade never
// destroys items.
func Snapshot(p *player.Player) *Record {
	rec := &Record{
		ID:            p.ID,
		Username:      p.Username,
		PasswordHash:  p.PasswordHash,
		Location:      p.Location,
		Level:         p.Level,
		XP:            p.XP,
		BaseHealth:    p.BaseHealth,
		BaseMana:      p.BaseMana,
		BaseDamage:    p.BaseDamage,
		BaseDefense:   p.BaseDefense,
		CurrentHealth: p.CurrentHealth,
		CurrentMana:   p.CurrentMana,
		Gold:          p.Gold,
		Materials:     maps.Clone(p.Materials),
		LastHarvest:   maps.Clone(p.LastHarvest),
		Friends:       slices.Clone(p.Friends),
		PvPWins:       p.PvPWins,
		PvPLosses:     p.PvPLosses,
		HomestoneLocation: p.HomestoneLocation,
		BannedUntil:   p.BannedUntil,
		IsGM:          p.IsGM,
	}

	for _, item := range p.Inventory {
		rec.Inventory = append(rec.Inventory, item.ID)
	}
	if p.ActiveTrade != nil {
		for _, item := range p.ActiveTrade.MyItems {
			rec.Inventory = append(rec.Inventory, item.ID)
		}
		rec.Gold += p.ActiveTrade.MyGold
	}

	rec.Equipped = make(map[string]string)
	for slot, item := range p.Equipped {
		if item != nil {
			rec.Equipped[string(slot)] = item.ID
		}
	}

	for id := range p.KnownRecipes {
		rec.KnownRecipes = append(rec.KnownRecipes, id)
	}
	rec.ActiveQuests = maps.Clone(p.ActiveQuests)
	for id := range p.CompletedQuests {
		rec.CompletedQuests = append(rec.CompletedQuests, id)
	}
	for key := range p.OneTimeEnemiesDefeated {
		rec.OneTimeEnemiesDefeated = append(rec.OneTimeEnemiesDefeated, key)
	}
	for key := range p.OneTimeItemsPickedUp {
		rec.OneTimeItemsPickedUp = append(rec.OneTimeItemsPickedUp, key)
	}

	return rec
}

// fromRecord rehydrates item instances from IDs. Unknown IDs (content
// removed since the save) are dropped with a warning.
func (s *Store) fromRecord(rec *Record) *player.Player {
	p := &player.Player{
		ID:            rec.ID,
		Username:      rec.Username,
		PasswordHash:  rec.PasswordHash,
		Location:      rec.Location,
		Level:         rec.Level,
		XP:            rec.XP,
		BaseHealth:    rec.BaseHealth,
		BaseMana:      rec.BaseMana,
		BaseDamage:    rec.BaseDamage,
		BaseDefense:   rec.BaseDefense,
		CurrentHealth: rec.CurrentHealth,
		CurrentMana:   rec.CurrentMana,
		Gold:          rec.Gold,
		Materials:     rec.Materials,
		LastHarvest:   rec.LastHarvest,
		Friends:       rec.Friends,
		PvPWins:       rec.PvPWins,
		PvPLosses:     rec.PvPLosses,
		HomestoneLocation: rec.HomestoneLocation,
		BannedUntil:   rec.BannedUntil,
		IsGM:          rec.IsGM,
	}
	p.Rehydrate(s.gameCfg)

	for _, itemID := range rec.Inventory {
		template, ok := s.items.Get(itemID)
		if !ok {
			logger.Warning("Dropping unknown inventory item from save", "player", rec.Username, "item", itemID)
			continue
		}
		p.Inventory = append(p.Inventory, template.NewInstance())
	}

	for slot, itemID := range rec.Equipped {
		template, ok := s.items.Get(itemID)
		if !ok {
			logger.Warning("Dropping unknown equipped item from save", "player", rec.Username, "item", itemID)
			continue
		}
		if items.IsValidSlot(slot) {
			p.Equipped[items.EquipmentSlot(slot)] = template.NewInstance()
		}
	}

	for _, id := range rec.KnownRecipes {
		p.KnownRecipes[id] = true
	}
	if rec.ActiveQuests != nil {
		p.ActiveQuests = rec.ActiveQuests
	}
	for _, id := range rec.CompletedQuests {
		p.CompletedQuests[id] = true
	}
	for _, key := range rec.OneTimeEnemiesDefeated {
		p.OneTimeEnemiesDefeated[key] = true
	}
	for _, key := range rec.OneTimeItemsPickedUp {
		p.OneTimeItemsPickedUp[key] = true
	}

	p.ClampVitals()
	return p
}
