package skirmish

import (
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/inventory"
)

// AutoEquip hands each item in the party inventory to the first member whose
// slot is empty or holds a cheaper item, returning the items equipped.
// Replaced items go back into the inventory.
//
// Postcondition: every item is either equipped or in party.Inventory, never both.
func AutoEquip(party *combat.Roster) []*inventory.Item {
	var equipped []*inventory.Item
	var keep []*inventory.Item
	for _, item := range party.Inventory {
		taker := upgradeFor(party, item)
		if taker == nil {
			keep = append(keep, item)
			continue
		}
		if prev := taker.Equip(item); prev != nil {
			keep = append(keep, prev)
		}
		equipped = append(equipped, item)
	}
	party.Inventory = keep
	return equipped
}

func upgradeFor(party *combat.Roster, item *inventory.Item) *combat.Combatant {
	for _, m := range party.Members {
		cur, ok := m.Equipment[item.Slot()]
		if !ok || cur == nil || cur.Def.Cost() < item.Def.Cost() {
			return m
		}
	}
	return nil
}
