package inventory

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/warband/internal/game/dice"
)

// Catalog holds every loaded ItemDef indexed by ID.
type Catalog struct {
	items map[string]*ItemDef
}

// NewCatalog returns an empty Catalog.
//
// Postcondition: the internal map is initialised.
func NewCatalog() *Catalog {
	return &Catalog{items: make(map[string]*ItemDef)}
}

// LoadCatalog loads dir with LoadItems and registers every definition.
func LoadCatalog(dir string) (*Catalog, error) {
	defs, err := LoadItems(dir)
	if err != nil {
		return nil, err
	}
	c := NewCatalog()
	for _, d := range defs {
		if err := c.Register(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register adds d to the catalog.
//
// Precondition: d must not be nil.
// Postcondition: Item(d.ID) returns (d, true); returns error if d.ID already registered.
func (c *Catalog) Register(d *ItemDef) error {
	if _, exists := c.items[d.ID]; exists {
		return fmt.Errorf("inventory: Catalog.Register: item ID %q already registered", d.ID)
	}
	c.items[d.ID] = d
	return nil
}

// Item returns the ItemDef for the given id and whether it was found.
//
// Postcondition: ok is true iff the id is registered.
func (c *Catalog) Item(id string) (*ItemDef, bool) {
	d, ok := c.items[id]
	return d, ok
}

// Len returns the number of registered definitions.
func (c *Catalog) Len() int { return len(c.items) }

// All returns every definition sorted by ID.
func (c *Catalog) All() []*ItemDef {
	out := make([]*ItemDef, 0, len(c.items))
	for _, d := range c.items {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByRarity returns the definitions of rarity r sorted by ID.
func (c *Catalog) ByRarity(r Rarity) []*ItemDef {
	var out []*ItemDef
	for _, d := range c.All() {
		if d.Rarity == r {
			out = append(out, d)
		}
	}
	return out
}

// Random returns a new instance of a uniformly chosen definition of rarity r,
// or nil when the catalog holds none.
func (c *Catalog) Random(r Rarity, src dice.Source) *Item {
	defs := c.ByRarity(r)
	if len(defs) == 0 {
		return nil
	}
	return NewItem(defs[src.Intn(len(defs))])
}
