// Package character builds player-side combatants from ruleset profiles.
package character

import (
	"errors"

	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/ruleset"
)

// Build constructs a level 1 player-controlled combatant from name and profile.
// Stats are the subclass base plus race modifiers, with HP floored at 1, and
// the level 1 ability, if any, is granted.
//
// Precondition: name must be non-empty; profile must be non-nil.
// Postcondition: Returns a Combatant at full HP, or a non-nil error.
func Build(name string, profile *ruleset.Profile) (*combat.Combatant, error) {
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if profile == nil {
		return nil, errors.New("profile must not be nil")
	}
	base := profile.BaseStats()
	if base.HP < 1 {
		base.HP = 1
	}
	c := combat.NewCombatant(name, base)
	c.PlayerControlled = true
	c.Profile = profile
	if def, ok := profile.AbilityAt(1); ok {
		c.GrantAbility(def)
	}
	return c, nil
}

// Recruit builds a character with a random name from names and a random profile.
//
// Precondition: names must be non-empty; rs must hold at least one class and race.
func Recruit(rs *ruleset.Ruleset, names []string, src dice.Source) (*combat.Combatant, error) {
	if len(names) == 0 {
		return nil, errors.New("recruit name pool must not be empty")
	}
	name := names[src.Intn(len(names))]
	return Build(name, rs.RandomProfile(src))
}

// Recruits builds n random characters, as offered when picking a party.
//
// Postcondition: len(result) == n on success.
func Recruits(rs *ruleset.Ruleset, names []string, n int, src dice.Source) ([]*combat.Combatant, error) {
	out := make([]*combat.Combatant, 0, n)
	for i := 0; i < n; i++ {
		c, err := Recruit(rs, names, src)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
