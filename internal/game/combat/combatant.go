// Package combat implements party-versus-party turn-based combat: the
// combatant stat model, attack resolution, and the encounter state machine.
package combat

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/warband/internal/game/ability"
	"github.com/cory-johannsen/warband/internal/game/inventory"
	"github.com/cory-johannsen/warband/internal/game/ruleset"
	"github.com/cory-johannsen/warband/internal/game/stats"
)

// LevelCap is the highest level a combatant can reach.
const LevelCap = 5

// Combatant is one participant in an encounter: a recruited character or a monster.
//
// Invariant: CurrentHP <= MaxHP outside of a single mutation.
// Invariant: the death transition happens at most once.
type Combatant struct {
	ID   string
	Name string
	// Atk, Armor and Dodge are the current values including every applied
	// ability and equipment modifier.
	Atk       int
	Armor     int
	Dodge     int
	MaxHP     float64
	CurrentHP float64
	Level     int
	XP        int
	// PlayerControlled combatants gain experience and have their actions
	// chosen by the caller's Selector rather than the AI.
	PlayerControlled bool
	// Profile is nil for monsters.
	Profile   *ruleset.Profile
	Abilities []*ability.Ability
	Equipment map[inventory.Slot]*inventory.Item

	dead bool
	// nonLethal is set while an encounter reverses its abilities; losing an
	// HP modifier then floors CurrentHP at 1 instead of killing.
	nonLethal bool
}

// NewCombatant returns a level 1 combatant with base stats and full hit points.
//
// Postcondition: ID is a fresh UUID; CurrentHP == MaxHP == base.HP.
func NewCombatant(name string, base stats.Block) *Combatant {
	return &Combatant{
		ID:        uuid.New().String(),
		Name:      name,
		Atk:       base.Attack,
		Armor:     base.Armor,
		Dodge:     base.Dodge,
		MaxHP:     float64(base.HP),
		CurrentHP: float64(base.HP),
		Level:     1,
		Equipment: make(map[inventory.Slot]*inventory.Item),
	}
}

// Stats returns the current attributes as a Block, with MaxHP truncated.
func (c *Combatant) Stats() stats.Block {
	return stats.Block{Attack: c.Atk, Armor: c.Armor, Dodge: c.Dodge, HP: int(c.MaxHP)}
}

// IsDead reports whether the death transition has happened.
func (c *Combatant) IsDead() bool { return c.dead }

// DisplayName returns the name, suffixed with " (Dead)" once dead.
func (c *Combatant) DisplayName() string {
	if c.dead {
		return c.Name + " (Dead)"
	}
	return c.Name
}

// TakeDamage subtracts amount from CurrentHP. Reaching zero or below
// triggers the death transition, once.
//
// Postcondition: IsDead() is true iff CurrentHP has ever reached <= 0.
func (c *Combatant) TakeDamage(amount float64) {
	c.CurrentHP -= amount
	if c.CurrentHP <= 0 && !c.dead {
		c.dead = true
	}
}

// Heal adds up to amount hit points without exceeding MaxHP and returns the
// amount actually restored. Dead combatants and non-positive amounts heal nothing.
//
// Postcondition: CurrentHP <= MaxHP; return value >= 0.
func (c *Combatant) Heal(amount float64) float64 {
	if amount <= 0 || c.dead {
		return 0
	}
	missing := c.MaxHP - c.CurrentHP
	if missing <= 0 {
		return 0
	}
	if amount >= missing {
		c.CurrentHP = c.MaxHP
		return missing
	}
	c.CurrentHP += amount
	return amount
}

// ApplyModifiers adds m to the attributes. A positive HP component raises
// MaxHP and CurrentHP together; a negative one lowers MaxHP and deals the same
// amount as damage, which can kill except during ResetAll.
func (c *Combatant) ApplyModifiers(m stats.Block) {
	c.Atk += m.Attack
	c.Armor += m.Armor
	c.Dodge += m.Dodge
	if m.HP == 0 {
		return
	}
	c.MaxHP += float64(m.HP)
	switch {
	case m.HP > 0:
		c.CurrentHP += float64(m.HP)
	case c.nonLethal:
		c.CurrentHP = max(c.CurrentHP+float64(m.HP), 1)
	default:
		c.TakeDamage(float64(-m.HP))
	}
	if c.CurrentHP > c.MaxHP {
		c.CurrentHP = c.MaxHP
	}
}

// GrantAbility gives c a new instance of def. Passive abilities activate
// immediately and stay applied while owned.
//
// Postcondition: the returned ability is the last element of Abilities.
func (c *Combatant) GrantAbility(def *ability.Def) *ability.Ability {
	a := ability.New(def)
	c.Abilities = append(c.Abilities, a)
	if def.Kind == ability.KindPassive {
		// Passives are validated as self-targeted, so Activate cannot fail here.
		_ = a.Activate(c, nil)
	}
	return a
}

// LevelUp raises Level by one, applies the profile's per-level growth, and
// grants the ability defined for the new level, if any.
//
// Postcondition: Level is incremented; returns the granted ability or nil.
func (c *Combatant) LevelUp() *ability.Ability {
	c.Level++
	if c.Profile == nil {
		return nil
	}
	g := c.Profile.Growth()
	c.Atk += g.Attack
	c.Armor += g.Armor
	c.Dodge += g.Dodge
	c.MaxHP += float64(g.HP)
	c.CurrentHP += float64(g.HP)
	if def, ok := c.Profile.AbilityAt(c.Level); ok {
		return c.GrantAbility(def)
	}
	return nil
}

// AddXP awards experience to a living player-controlled combatant below
// LevelCap. Each time XP reaches Level*10 the threshold is subtracted and the
// combatant levels up, repeating while the remainder covers the next threshold.
//
// Postcondition: returns the number of levels gained.
func (c *Combatant) AddXP(amount int) int {
	if !c.PlayerControlled || c.dead || c.Level >= LevelCap || amount <= 0 {
		return 0
	}
	c.XP += amount
	gained := 0
	for c.Level < LevelCap && c.XP >= c.Level*10 {
		c.XP -= c.Level * 10
		c.LevelUp()
		gained++
	}
	return gained
}

// UsableAbilities returns the indices into Abilities that IsUsable.
func (c *Combatant) UsableAbilities() []int {
	var out []int
	for i, a := range c.Abilities {
		if a.IsUsable() {
			out = append(out, i)
		}
	}
	return out
}

// TickAbilities advances every owned ability by one turn and returns those
// that expired.
func (c *Combatant) TickAbilities() []*ability.Ability {
	var expired []*ability.Ability
	for _, a := range c.Abilities {
		if a.Tick() {
			expired = append(expired, a)
		}
	}
	return expired
}

// ResetAll ends every active buff and reaction of each combatant in cs and
// clears cooldowns. Reversed HP bonuses never kill a living combatant in cs:
// its CurrentHP is floored at 1, as with Unequip.
//
// Postcondition: every combatant alive before the call is alive after it.
func ResetAll(cs []*Combatant) {
	for _, c := range cs {
		c.nonLethal = !c.dead
	}
	for _, c := range cs {
		for _, a := range c.Abilities {
			a.Reset()
		}
	}
	for _, c := range cs {
		c.nonLethal = false
	}
}

// react fires every reaction that can fire against attacker and returns the
// names of those that did.
func (c *Combatant) react(attacker *Combatant) []string {
	var fired []string
	for _, a := range c.Abilities {
		if !a.CanReact() {
			continue
		}
		target := ability.Target(c)
		if a.Def.Target == ability.TargetEnemy {
			target = attacker
		}
		if err := a.Activate(c, []ability.Target{target}); err != nil {
			continue
		}
		fired = append(fired, a.Name())
	}
	return fired
}

// String renders the multi-line summary used in lineups and recruit lists.
func (c *Combatant) String() string {
	var b strings.Builder
	b.WriteString(c.DisplayName())
	b.WriteString("\n")
	if c.Profile != nil {
		fmt.Fprintf(&b, "     %s (%s)\n     Race: %s\n", c.Profile.Subclass.Name, c.Profile.Class.Name, c.Profile.Race.Name)
	}
	fmt.Fprintf(&b, "     Level: %d\n", c.Level)
	fmt.Fprintf(&b, "     ATK: %d\n", c.Atk)
	fmt.Fprintf(&b, "     DEF: %d (%d AC + %d DGE)\n", c.Stats().Defense(), c.Armor, c.Dodge)
	fmt.Fprintf(&b, "     HP: %d/%d", int(c.CurrentHP), int(c.MaxHP))
	return b.String()
}
