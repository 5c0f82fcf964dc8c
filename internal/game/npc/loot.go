package npc

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/inventory"
)

// ItemDrop defines a single catalog item in a loot table with a drop chance.
type ItemDrop struct {
	ItemID string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
	MinQty int     `yaml:"min_qty"`
	MaxQty int     `yaml:"max_qty"`
}

// RarityDrop drops one random catalog item of Rarity with probability Chance.
type RarityDrop struct {
	Rarity inventory.Rarity `yaml:"rarity"`
	Chance float64          `yaml:"chance"`
}

// LootTable defines what a defeated band carries beyond its base gold.
type LootTable struct {
	// Currency is a dice expression, e.g. "2d10+5", rolled once per band.
	Currency string       `yaml:"currency"`
	Items    []ItemDrop   `yaml:"items"`
	Rarities []RarityDrop `yaml:"rarities"`
}

// Validate checks that the loot table satisfies its invariants.
//
// Precondition: lt must not be nil.
// Postcondition: Returns nil iff all currency and item constraints hold;
// an empty loot table is valid.
func (lt *LootTable) Validate() error {
	var errs []error
	if lt.Currency != "" {
		if _, err := dice.Parse(lt.Currency); err != nil {
			errs = append(errs, fmt.Errorf("loot table: currency: %w", err))
		}
	}
	for i, item := range lt.Items {
		if item.ItemID == "" {
			errs = append(errs, fmt.Errorf("loot table: item[%d] must have a non-empty item id", i))
		}
		if item.Chance <= 0 || item.Chance > 1.0 {
			errs = append(errs, fmt.Errorf("loot table: item[%d] chance must be in (0, 1.0], got %f", i, item.Chance))
		}
		if item.MinQty < 1 {
			errs = append(errs, fmt.Errorf("loot table: item[%d] min_qty must be >= 1, got %d", i, item.MinQty))
		}
		if item.MinQty > item.MaxQty {
			errs = append(errs, fmt.Errorf("loot table: item[%d] min_qty (%d) must be <= max_qty (%d)", i, item.MinQty, item.MaxQty))
		}
	}
	for i, r := range lt.Rarities {
		if r.Chance <= 0 || r.Chance > 1.0 {
			errs = append(errs, fmt.Errorf("loot table: rarities[%d] chance must be in (0, 1.0], got %f", i, r.Chance))
		}
	}
	return errors.Join(errs...)
}

// LootResult holds the generated loot for one band.
type LootResult struct {
	Currency int
	Items    []*inventory.Item
}

// GenerateLoot rolls lt: the currency expression, then each item drop and
// rarity drop in order. Unknown item IDs and empty rarities drop nothing.
//
// Precondition: lt must have passed Validate(); roller and catalog must be non-nil.
// Postcondition: each dropped item's quantity is in [MinQty, MaxQty].
func GenerateLoot(lt LootTable, catalog *inventory.Catalog, roller *dice.Roller) LootResult {
	var result LootResult
	src := roller.Source()

	if lt.Currency != "" {
		if r, err := roller.RollExpr(lt.Currency); err == nil {
			result.Currency = max(0, r.Total())
		}
	}

	for _, item := range lt.Items {
		if src.Float64() >= item.Chance {
			continue
		}
		def, ok := catalog.Item(item.ItemID)
		if !ok {
			continue
		}
		qty := item.MinQty
		if spread := item.MaxQty - item.MinQty; spread > 0 {
			qty += src.Intn(spread + 1)
		}
		for i := 0; i < qty; i++ {
			result.Items = append(result.Items, inventory.NewItem(def))
		}
	}

	for _, r := range lt.Rarities {
		if src.Float64() >= r.Chance {
			continue
		}
		if it := catalog.Random(r.Rarity, src); it != nil {
			result.Items = append(result.Items, it)
		}
	}
	return result
}
