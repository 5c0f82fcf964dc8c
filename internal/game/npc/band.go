package npc

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/warband/internal/game/ability"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/inventory"
	"github.com/cory-johannsen/warband/internal/game/stats"
)

// ErrUnknownTemplate is returned for a template ID that was never loaded.
var ErrUnknownTemplate = errors.New("unknown npc template")

// Prefixes are prepended to the template name to name a band leader.
var Prefixes = []string{"Raging", "Vicious", "Bloodthirsty", "Alpha", "Great", "Giant"}

// MemberStats returns the stats of an ordinary member at level:
// attack, armor and dodge 5+level, HP 10+10*level.
func MemberStats(level int) stats.Block {
	return stats.Block{Attack: 5 + level, Armor: 5 + level, Dodge: 5 + level, HP: 10 + 10*level}
}

// LeaderStats returns MemberStats(level) plus the leader bonus
// of +4 attack, +2 armor, +1 dodge and +level HP.
func LeaderStats(level int) stats.Block {
	return MemberStats(level).Add(stats.Block{Attack: 4, Armor: 2, Dodge: 1, HP: level})
}

// BandGold returns the base gold of a band: 50+20*level for the leader plus
// 10+10*level for every other member.
func BandGold(level, size int) int {
	return 50 + 20*level + (size-1)*(10+10*level)
}

// Band is a generated hostile roster with the template and level it came from.
type Band struct {
	Roster   *combat.Roster
	Template *Template
	Level    int
}

// Generator builds monster bands from loaded templates.
type Generator struct {
	templates map[string]*Template
	abilities *ability.Registry
	catalog   *inventory.Catalog
	roller    *dice.Roller
}

// NewGenerator indexes templates and checks that every ability they grant
// exists in abilities.
//
// Precondition: abilities, catalog and roller must be non-nil.
func NewGenerator(templates []*Template, abilities *ability.Registry, catalog *inventory.Catalog, roller *dice.Roller) (*Generator, error) {
	g := &Generator{
		templates: make(map[string]*Template, len(templates)),
		abilities: abilities,
		catalog:   catalog,
		roller:    roller,
	}
	var errs []error
	for _, t := range templates {
		if _, dup := g.templates[t.ID]; dup {
			errs = append(errs, fmt.Errorf("npc template %q defined twice", t.ID))
			continue
		}
		for _, id := range t.Abilities {
			if _, ok := abilities.Get(id); !ok {
				errs = append(errs, fmt.Errorf("npc template %q: unknown ability %q", t.ID, id))
			}
		}
		g.templates[t.ID] = t
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return g, nil
}

// Templates returns every template sorted by ID.
func (g *Generator) Templates() []*Template {
	out := make([]*Template, 0, len(g.templates))
	for _, t := range g.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Band builds a hostile band of size members of templateID at level. The
// leader gets a random prefix, the leader stat bonus and the template's
// abilities; gold is BandGold plus the loot table's currency roll.
//
// Precondition: level >= 1 and size >= 1.
// Postcondition: Roster.Hostile is true and Roster.Members[0] is the leader.
func (g *Generator) Band(templateID string, level, size int) (*Band, error) {
	t, ok := g.templates[templateID]
	if !ok {
		return nil, fmt.Errorf("band of %q: %w", templateID, ErrUnknownTemplate)
	}
	if level < 1 || size < 1 {
		return nil, fmt.Errorf("band of %q: level and size must be >= 1, got %d and %d", templateID, level, size)
	}
	src := g.roller.Source()

	prefix := Prefixes[src.Intn(len(Prefixes))]
	leader := combat.NewCombatant(prefix+" "+t.Name, LeaderStats(level))
	leader.Level = level
	for _, id := range t.Abilities {
		def, _ := g.abilities.Get(id)
		leader.GrantAbility(def)
	}

	r := combat.NewBand(leader)
	r.Hostile = true
	for i := 1; i < size; i++ {
		m := combat.NewCombatant(t.Name, MemberStats(level))
		m.Level = level
		// Hostile bands are unbounded, so Add cannot fail.
		_ = r.Add(m)
	}
	r.Gold = BandGold(level, size)

	if t.Loot != nil {
		loot := GenerateLoot(*t.Loot, g.catalog, g.roller)
		r.Gold += loot.Currency
		r.Inventory = append(r.Inventory, loot.Items...)
	}
	return &Band{Roster: r, Template: t, Level: level}, nil
}

// RandomBand picks a random template and rolls level and size within its
// bounds, with level capped at maxLevel.
//
// Precondition: at least one template is loaded; maxLevel >= 1.
func (g *Generator) RandomBand(maxLevel int) (*Band, error) {
	templates := g.Templates()
	if len(templates) == 0 {
		return nil, fmt.Errorf("random band: %w", ErrUnknownTemplate)
	}
	src := g.roller.Source()
	t := templates[src.Intn(len(templates))]
	hi := min(t.MaxLevel, maxLevel)
	lo := min(t.MinLevel, hi)
	level := lo + src.Intn(hi-lo+1)
	size := t.MinSize + src.Intn(t.MaxSize-t.MinSize+1)
	return g.Band(t.ID, level, size)
}
