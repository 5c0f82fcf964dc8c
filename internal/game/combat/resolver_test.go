package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/warband/internal/game/ability"
	"github.com/cory-johannsen/warband/internal/game/combat"
)

func TestHitChance_Clamped(t *testing.T) {
	assert.Equal(t, 0.75, combat.HitChance(10, 5))
	assert.Equal(t, 1.0, combat.HitChance(40, 0))
	assert.Equal(t, 0.0, combat.HitChance(0, 40))
}

func TestBaseDamage_NeverNegative(t *testing.T) {
	assert.Equal(t, 8.0, combat.BaseDamage(10, 4))
	assert.Equal(t, 7.5, combat.BaseDamage(10, 5))
	assert.Equal(t, 0.0, combat.BaseDamage(2, 10))
}

func TestAttack_DeterministicHit(t *testing.T) {
	attacker := newFighter("Ayla", 10, 0, 0, 20)
	attacker.PlayerControlled = true
	defender := newFighter("Wolf", 5, 4, 5, 20)

	// Multiplier draw 0.75 gives 0.8+0.3 = 1.1; hit draw 0.3 <= 0.75.
	r := attacker.Attack(defender, &seqSrc{floats: []float64{0.75, 0.3}})
	assert.True(t, r.Hit)
	assert.Equal(t, 0.75, r.HitChance)
	assert.Equal(t, 8.8, r.Damage)
	assert.InDelta(t, 11.2, defender.CurrentHP, 1e-9)
	assert.Equal(t, 1, attacker.XP)
	assert.False(t, r.Killed)
}

func TestAttack_MissChangesNothing(t *testing.T) {
	attacker := newFighter("Ayla", 10, 0, 0, 20)
	attacker.PlayerControlled = true
	defender := newFighter("Wolf", 5, 4, 5, 20)
	defender.GrantAbility(riposteDef())

	r := attacker.Attack(defender, &seqSrc{floats: []float64{0.5, 0.9}})
	assert.False(t, r.Hit)
	assert.Equal(t, 20.0, defender.CurrentHP)
	assert.Equal(t, 20.0, attacker.CurrentHP)
	assert.Equal(t, 0, attacker.XP)
	assert.Empty(t, r.Reactions)
}

func TestAttack_EnemyReactionHitsAttacker(t *testing.T) {
	attacker := newFighter("Ayla", 10, 0, 0, 20)
	defender := newFighter("Duelist", 5, 4, 5, 20)
	rip := defender.GrantAbility(riposteDef())

	r := attacker.Attack(defender, alwaysHit())
	require.True(t, r.Hit)
	assert.Equal(t, []string{"Riposte"}, r.Reactions)
	assert.Equal(t, 15.0, attacker.CurrentHP)
	assert.True(t, rip.IsActive())
	assert.Equal(t, 1, rip.TurnsRemaining())

	// Still active, so the next hit triggers nothing.
	r = attacker.Attack(defender, alwaysHit())
	assert.Empty(t, r.Reactions)
	assert.Equal(t, 15.0, attacker.CurrentHP)

	// The owner's next tick expires it and starts the cooldown.
	assert.Equal(t, []*ability.Ability{rip}, defender.TickAbilities())
	assert.Equal(t, 1, rip.CooldownRemaining())
}

func TestAttack_SelfReactionBuffsDefender(t *testing.T) {
	attacker := newFighter("Ayla", 10, 0, 0, 20)
	defender := newFighter("Duelist", 5, 4, 5, 20)
	defender.GrantAbility(&ability.Def{ID: "defensive_stance", Name: "Defensive Stance", Kind: ability.KindReaction,
		Effects: ability.Effects{Armor: 2}, TargetCount: 1, Target: ability.TargetSelf, Duration: 1, Cooldown: 4})

	attacker.Attack(defender, alwaysHit())
	assert.Equal(t, 6, defender.Armor)
	assert.Equal(t, 10, attacker.Atk)
}

func TestAttack_KillSkipsReactions(t *testing.T) {
	attacker := newFighter("Ayla", 10, 0, 0, 20)
	defender := newFighter("Duelist", 5, 4, 5, 1)
	defender.GrantAbility(riposteDef())

	r := attacker.Attack(defender, alwaysHit())
	assert.True(t, r.Killed)
	assert.True(t, defender.IsDead())
	assert.Empty(t, r.Reactions)
	assert.Equal(t, 20.0, attacker.CurrentHP)
}

func TestPropertyAttack_DamageWithinMultiplierBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		atk := rapid.IntRange(0, 40).Draw(rt, "atk")
		armor := rapid.IntRange(0, 40).Draw(rt, "armor")
		mult := rapid.Float64Range(0, 0.999).Draw(rt, "mult")
		attacker := newFighter("A", atk, 0, 0, 10)
		defender := newFighter("D", 0, armor, 0, 1000)
		r := attacker.Attack(defender, &seqSrc{floats: []float64{mult, 0}})
		base := combat.BaseDamage(atk, armor)
		if r.Damage < 0 || r.Damage > base*1.2+1e-9 || r.Damage < base*0.8-0.1-1e-9 {
			rt.Fatalf("damage %v outside [%v, %v]", r.Damage, base*0.8, base*1.2)
		}
	})
}
