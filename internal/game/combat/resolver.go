package combat

import "github.com/cory-johannsen/warband/internal/game/stats"

// AttackResult holds the outcome of a single attack action.
type AttackResult struct {
	// AttackerID is the attacking combatant's ID.
	AttackerID string
	// TargetID is the defending combatant's ID.
	TargetID string
	// HitChance is the probability of hitting, in [0, 1].
	HitChance float64
	// Draw is the uniform value compared against HitChance.
	Draw float64
	// Multiplier is the damage scaling drawn from [0.8, 1.2).
	Multiplier float64
	// Damage is the computed damage, truncated to one decimal place. It is
	// only applied when Hit is true.
	Damage float64
	Hit    bool
	// Killed is true when this hit triggered the target's death.
	Killed bool
	// Reactions lists the names of the target's reactions that fired.
	Reactions []string
	// LevelsGained is the number of levels the attacker gained from the hit.
	LevelsGained int
}

// Source is the randomness used by attack resolution.
// Using a local interface keeps combat tests free of the dice package.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// HitChance returns clamp01((attack-dodge)/20 + 0.5).
func HitChance(attack, dodge int) float64 {
	return stats.Clamp01(float64(attack-dodge)/20 + 0.5)
}

// BaseDamage returns max(0, attack - armor/2) before the random multiplier.
func BaseDamage(attack, armor int) float64 {
	return max(0, float64(attack)-float64(armor)/2)
}

// Attack resolves one attack from c against target. The damage multiplier is
// drawn first, then the hit draw. On a hit target takes the damage, each of
// its ready reactions fires if it survived, and c gains one experience point.
// A hit that kills the target fires no reactions, since the dead take no
// further part in the encounter. A miss changes nothing.
//
// Precondition: c and target must be non-nil and alive; src must be non-nil.
// Postcondition: Returns a fully populated AttackResult.
func (c *Combatant) Attack(target *Combatant, src Source) AttackResult {
	r := AttackResult{
		AttackerID: c.ID,
		TargetID:   target.ID,
		HitChance:  HitChance(c.Atk, target.Dodge),
		Multiplier: 0.8 + 0.4*src.Float64(),
	}
	r.Damage = stats.TruncTenth(BaseDamage(c.Atk, target.Armor) * r.Multiplier)
	r.Draw = src.Float64()
	if r.Draw > r.HitChance {
		return r
	}
	r.Hit = true
	wasDead := target.IsDead()
	target.TakeDamage(r.Damage)
	r.Killed = !wasDead && target.IsDead()
	if !target.IsDead() {
		r.Reactions = target.react(c)
	}
	r.LevelsGained = c.AddXP(1)
	return r
}
