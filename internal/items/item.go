package items

// ItemType represents the category of an item
type ItemType int

const (
	TypeEquipment ItemType = iota
	TypeConsumable
	TypeRecipe
	TypeQuest
	TypeMaterial
)

// String returns the string representation of an ItemType
func (t ItemType) String() string {
	switch t {
	case TypeEquipment:
		return "equipment"
	case TypeConsumable:
		return "consumable"
	case TypeRecipe:
		return "recipe"
	case TypeQuest:
		return "quest"
	case TypeMaterial:
		return "material"
	default:
		return "unknown"
	}
}

// EquipmentSlot represents where an item can be equipped
type EquipmentSlot string

const (
	SlotWeapon    EquipmentSlot = "weapon"
	SlotArmor     EquipmentSlot = "armor"
	SlotShield    EquipmentSlot = "shield"
	SlotAccessory EquipmentSlot = "accessory"
)

// Slots lists every equipment slot in display order.
var Slots = []EquipmentSlot{SlotWeapon, SlotArmor, SlotShield, SlotAccessory}

// IsValidSlot reports whether s names a real equipment slot.
func IsValidSlot(s string) bool {
	switch EquipmentSlot(s) {
	case SlotWeapon, SlotArmor, SlotShield, SlotAccessory:
		return true
	}
	return false
}

// UseContext restricts where a consumable may be used
type UseContext string

const (
	UseAnywhere UseContext = "any"
	UseCombat   UseContext = "combat"
	UsePeaceful UseContext = "peaceful"
)

// Stats holds the bonuses an equipped item contributes.
type Stats struct {
	Damage  int `json:"damage,omitempty"`
	Defense int `json:"defense,omitempty"`
	Health  int `json:"health,omitempty"`
	Mana    int `json:"mana,omitempty"`
}

// Item is an item template or a runtime instance of one. Instances are
// value copies of the template made with NewInstance, so mutating one
// never leaks into the catalog.
type Item struct {
	ID          string
	Name        string
	Description string
	Value       int
	Type        ItemType
	Slot        EquipmentSlot
	Stats       Stats

	// Consumable fields
	HealAmount int
	ManaAmount int
	ManaCost   int
	Damage     int
	TeleportTo string
	UsableIn   UseContext

	// Recipe-teaching consumables
	TeachesRecipe string
}

// NewInstance returns a fresh copy of the template for placement in an
// inventory, equipment slot, or on the ground.
func (i *Item) NewInstance() *Item {
	inst := *i
	return &inst
}

// IsEquippable reports whether the item can go in an equipment slot.
func (i *Item) IsEquippable() bool {
	return i.Type == TypeEquipment && IsValidSlot(string(i.Slot))
}

// IsConsumable reports whether the item is used up on use.
func (i *Item) IsConsumable() bool {
	return i.Type == TypeConsumable || i.Type == TypeRecipe
}

// IsHealing reports whether using the item restores health.
func (i *Item) IsHealing() bool {
	return i.HealAmount > 0
}

// IsManaRestore reports whether using the item restores mana.
func (i *Item) IsManaRestore() bool {
	return i.ManaAmount > 0 && i.Damage == 0
}

// IsDamageScroll reports whether the item deals direct damage when used.
func (i *Item) IsDamageScroll() bool {
	return i.Damage > 0
}

// IsTeleport reports whether using the item moves the player.
func (i *Item) IsTeleport() bool {
	return i.TeleportTo != ""
}

// TeachesARecipe reports whether using the item unlocks a recipe.
func (i *Item) TeachesARecipe() bool {
	return i.TeachesRecipe != ""
}
