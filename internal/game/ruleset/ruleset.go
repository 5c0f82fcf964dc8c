// Package ruleset holds the character-creation tables: classes with their
// subclasses, races, and the ability granted at each level.
package ruleset

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/warband/internal/game/ability"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/stats"
)

// ErrUnknown is returned when a class, subclass or race ID does not resolve.
var ErrUnknown = errors.New("unknown ruleset entry")

// Profile is a resolved class/subclass/race triple.
type Profile struct {
	Class    *Class
	Subclass *Subclass
	Race     *Race
}

// BaseStats returns the starting stats: subclass base plus race modifiers.
func (p *Profile) BaseStats() stats.Block {
	return p.Subclass.Base.Add(p.Race.Modifiers)
}

// Growth returns the per-level bonus: subclass growth plus race growth.
func (p *Profile) Growth() stats.Block {
	return p.Subclass.Growth.Add(p.Race.Growth)
}

// AbilityAt returns the ability granted on reaching level, if any.
func (p *Profile) AbilityAt(level int) (*ability.Def, bool) {
	return p.Subclass.AbilityAt(level)
}

// String renders e.g. "Guardian (Warrior), Dwarf".
func (p *Profile) String() string {
	return fmt.Sprintf("%s (%s), %s", p.Subclass.Name, p.Class.Name, p.Race.Name)
}

// Ruleset indexes classes and races and resolves the abilities their
// subclasses grant.
type Ruleset struct {
	classes map[string]*Class
	races   map[string]*Race
}

// New validates classes and races and resolves every subclass ability ID
// against reg.
//
// Precondition: reg must be non-nil.
// Postcondition: on success every Subclass.AbilityAt lookup is populated.
func New(classes []*Class, races []*Race, reg *ability.Registry) (*Ruleset, error) {
	rs := &Ruleset{
		classes: make(map[string]*Class, len(classes)),
		races:   make(map[string]*Race, len(races)),
	}
	var errs []error
	for _, c := range classes {
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := rs.classes[c.ID]; dup {
			errs = append(errs, fmt.Errorf("class %q defined twice", c.ID))
			continue
		}
		for _, s := range c.Subclasses {
			s.granted = make(map[int]*ability.Def, len(s.Abilities))
			for lvl, id := range s.Abilities {
				def, ok := reg.Get(id)
				if !ok {
					errs = append(errs, fmt.Errorf("subclass %q level %d: ability %q: %w", s.ID, lvl, id, ErrUnknown))
					continue
				}
				s.granted[lvl] = def
			}
		}
		rs.classes[c.ID] = c
	}
	for _, r := range races {
		if _, dup := rs.races[r.ID]; dup {
			errs = append(errs, fmt.Errorf("race %q defined twice", r.ID))
			continue
		}
		rs.races[r.ID] = r
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("building ruleset: %w", errors.Join(errs...))
	}
	return rs, nil
}

// Load reads classes and races from their directories and builds a Ruleset.
func Load(classesDir, racesDir string, reg *ability.Registry) (*Ruleset, error) {
	classes, err := LoadClasses(classesDir)
	if err != nil {
		return nil, err
	}
	races, err := LoadRaces(racesDir)
	if err != nil {
		return nil, err
	}
	return New(classes, races, reg)
}

// Classes returns every class sorted by ID.
func (rs *Ruleset) Classes() []*Class {
	out := make([]*Class, 0, len(rs.classes))
	for _, c := range rs.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Races returns every race sorted by ID.
func (rs *Ruleset) Races() []*Race {
	out := make([]*Race, 0, len(rs.races))
	for _, r := range rs.races {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Profile resolves a class/subclass/race triple.
func (rs *Ruleset) Profile(classID, subclassID, raceID string) (*Profile, error) {
	c, ok := rs.classes[classID]
	if !ok {
		return nil, fmt.Errorf("class %q: %w", classID, ErrUnknown)
	}
	s, ok := c.Subclass(subclassID)
	if !ok {
		return nil, fmt.Errorf("subclass %q of class %q: %w", subclassID, classID, ErrUnknown)
	}
	r, ok := rs.races[raceID]
	if !ok {
		return nil, fmt.Errorf("race %q: %w", raceID, ErrUnknown)
	}
	return &Profile{Class: c, Subclass: s, Race: r}, nil
}

// RandomProfile picks a uniformly random class, subclass and race.
//
// Precondition: the ruleset holds at least one class and one race.
func (rs *Ruleset) RandomProfile(src dice.Source) *Profile {
	classes := rs.Classes()
	races := rs.Races()
	c := classes[src.Intn(len(classes))]
	s := c.Subclasses[src.Intn(len(c.Subclasses))]
	r := races[src.Intn(len(races))]
	return &Profile{Class: c, Subclass: s, Race: r}
}
