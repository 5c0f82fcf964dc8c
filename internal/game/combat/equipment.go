package combat

import (
	"github.com/cory-johannsen/warband/internal/game/inventory"
	"github.com/cory-johannsen/warband/internal/game/stats"
)

// Equip places item in its slot, unequipping whatever was there first, and
// applies its bonus.
//
// Precondition: item must be non-nil.
// Postcondition: Equipment[item.Slot()] == item; CurrentHP <= MaxHP.
// Returns the previously equipped item, or nil.
func (c *Combatant) Equip(item *inventory.Item) *inventory.Item {
	if c.Equipment == nil {
		c.Equipment = make(map[inventory.Slot]*inventory.Item)
	}
	prev := c.Unequip(item.Slot())
	c.Equipment[item.Slot()] = item
	c.adjust(item.Bonus())
	return prev
}

// Unequip removes the item in slot and its bonus. Removing an HP bonus never
// kills: a positive CurrentHP is floored at 1.
//
// Postcondition: Equipment has no entry for slot; returns the removed item or nil.
func (c *Combatant) Unequip(slot inventory.Slot) *inventory.Item {
	item, ok := c.Equipment[slot]
	if !ok || item == nil {
		return nil
	}
	delete(c.Equipment, slot)
	wasAlive := c.CurrentHP > 0
	c.adjust(item.Bonus().Negate())
	if wasAlive && c.CurrentHP <= 0 {
		c.CurrentHP = 1
	}
	return item
}

// adjust applies an equipment delta without the death transition that
// ApplyModifiers performs.
func (c *Combatant) adjust(b stats.Block) {
	c.Atk += b.Attack
	c.Armor += b.Armor
	c.Dodge += b.Dodge
	c.MaxHP += float64(b.HP)
	c.CurrentHP += float64(b.HP)
	if c.CurrentHP > c.MaxHP {
		c.CurrentHP = c.MaxHP
	}
}
