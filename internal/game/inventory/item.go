// Package inventory defines equipment: slot-bound items with stat bonuses
// and rarity-based prices.
package inventory

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/warband/internal/game/stats"
)

// Slot is the equipment position an item occupies.
type Slot string

// Slot constants for ItemDef.Slot.
const (
	SlotWeapon    Slot = "weapon"
	SlotChest     Slot = "chest"
	SlotHead      Slot = "head"
	SlotHands     Slot = "hands"
	SlotFeet      Slot = "feet"
	SlotAccessory Slot = "accessory"
)

// Slots lists every slot in display order.
var Slots = []Slot{SlotWeapon, SlotChest, SlotHead, SlotHands, SlotFeet, SlotAccessory}

// slotCostMod scales the rarity base price per slot; slots absent here use 1.
var slotCostMod = map[Slot]float64{
	SlotChest:     1.5,
	SlotAccessory: 0.8,
	SlotHead:      1.2,
	SlotWeapon:    1.2,
}

// Rarity is an item's quality tier.
type Rarity string

// Rarity constants for ItemDef.Rarity.
const (
	RarityCommon     Rarity = "common"
	RarityWellMade   Rarity = "well-made"
	RarityExpert     Rarity = "expert"
	RarityMasterwork Rarity = "masterwork"
)

var rarityBaseCost = map[Rarity]int{
	RarityCommon:     10,
	RarityWellMade:   50,
	RarityExpert:     100,
	RarityMasterwork: 1000,
}

// ItemDef defines the static properties of a piece of equipment loaded from YAML.
type ItemDef struct {
	ID     string      `yaml:"id"`
	Name   string      `yaml:"name"`
	Slot   Slot        `yaml:"slot"`
	Rarity Rarity      `yaml:"rarity"`
	Bonus  stats.Block `yaml:"bonus"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if _, ok := slotIndex(d.Slot); !ok {
		errs = append(errs, fmt.Errorf("slot must be one of weapon, chest, head, hands, feet, accessory; got %q", d.Slot))
	}
	if _, ok := rarityBaseCost[d.Rarity]; !ok {
		errs = append(errs, fmt.Errorf("rarity must be one of common, well-made, expert, masterwork; got %q", d.Rarity))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Cost returns the gold price: the rarity base scaled by the slot modifier,
// truncated to an integer.
func (d *ItemDef) Cost() int {
	base, ok := rarityBaseCost[d.Rarity]
	if !ok {
		base = rarityBaseCost[RarityCommon]
	}
	mod, ok := slotCostMod[d.Slot]
	if !ok {
		mod = 1
	}
	return int(float64(base) * mod)
}

// String renders the one-line listing, e.g. "Ruby Ring (well-made): +4 Attack".
func (d *ItemDef) String() string {
	return fmt.Sprintf("%s (%s): %s", d.Name, d.Rarity, d.Bonus)
}

func slotIndex(s Slot) (int, bool) {
	for i, v := range Slots {
		if v == s {
			return i, true
		}
	}
	return 0, false
}

// Item is one owned copy of an ItemDef.
type Item struct {
	InstanceID string
	Def        *ItemDef
}

// NewItem returns a fresh instance of def with a unique InstanceID.
//
// Precondition: def must be non-nil.
func NewItem(def *ItemDef) *Item {
	return &Item{InstanceID: uuid.New().String(), Def: def}
}

// Name returns the definition's display name.
func (i *Item) Name() string { return i.Def.Name }

// Slot returns the slot the item equips into.
func (i *Item) Slot() Slot { return i.Def.Slot }

// Bonus returns the stat bonus granted while equipped.
func (i *Item) Bonus() stats.Block { return i.Def.Bonus }

// LoadItems reads every YAML document from the *.yaml and *.yml files in dir,
// validates each as an ItemDef, and returns them in file order.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadItems(dir string) ([]*ItemDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var items []*ItemDef
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		for {
			var d ItemDef
			if err := dec.Decode(&d); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
			}
			if err := d.Validate(); err != nil {
				return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
			}
			items = append(items, &d)
		}
	}
	return items, nil
}
