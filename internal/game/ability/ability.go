package ability

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/warband/internal/game/stats"
)

var (
	// ErrAlreadyActive is returned by Activate when the instance is still active.
	ErrAlreadyActive = errors.New("ability is already active")
	// ErrNoTargets is returned by Activate when a non-self ability has no targets.
	ErrNoTargets = errors.New("ability requires at least one target")
	// ErrTooManyTargets is returned by Activate when more targets are supplied than TargetCount.
	ErrTooManyTargets = errors.New("too many targets for ability")
)

// Target is anything an ability can modify. combat.Combatant implements it.
type Target interface {
	// DisplayName returns the name used in combat narration.
	DisplayName() string
	// ApplyModifiers adds m to the target's attributes.
	// HP adjusts both maximum and current hit points.
	ApplyModifiers(m stats.Block)
	// TakeDamage subtracts amount from current hit points.
	TakeDamage(amount float64)
	// Heal restores up to amount hit points and returns the amount restored.
	Heal(amount float64) float64
}

// Ability is one combatant's runtime instance of a Def.
// It is not safe for concurrent use.
//
// Invariant: turnsRemaining >= 0 and cooldownRemaining >= 0.
type Ability struct {
	Def *Def

	active            bool
	turnsRemaining    int
	cooldownRemaining int
	targets           []Target
}

// New creates an inactive instance of def with no cooldown.
//
// Precondition: def must not be nil.
func New(def *Def) *Ability {
	return &Ability{Def: def}
}

// Name returns the definition's display name.
func (a *Ability) Name() string { return a.Def.Name }

// Kind returns the definition's activation kind.
func (a *Ability) Kind() Kind { return a.Def.Kind }

// IsActive reports whether the ability's modifiers are currently applied.
func (a *Ability) IsActive() bool { return a.active }

// TurnsRemaining returns the owner turns left before a buff or reaction expires.
func (a *Ability) TurnsRemaining() int { return a.turnsRemaining }

// CooldownRemaining returns the owner turns left before the ability is usable again.
func (a *Ability) CooldownRemaining() int { return a.cooldownRemaining }

// Targets returns a copy of the targets the current activation applied to.
func (a *Ability) Targets() []Target {
	out := make([]Target, len(a.targets))
	copy(out, a.targets)
	return out
}

// IsUsable reports whether the owner may select this ability on their turn.
//
// Postcondition: true iff not active, cooldown is zero and kind is instant or buff.
func (a *Ability) IsUsable() bool {
	return !a.active && a.cooldownRemaining == 0 &&
		(a.Def.Kind == KindInstant || a.Def.Kind == KindBuff)
}

// CanReact reports whether a reaction ability is ready to fire.
func (a *Ability) CanReact() bool {
	return a.Def.Kind == KindReaction && !a.active && a.cooldownRemaining == 0
}

// Activate applies the ability's effects from user to targets.
// Self-targeted abilities always apply to user alone; targets is ignored.
// Instant abilities deactivate before Activate returns.
//
// Precondition: the caller has checked IsUsable, CanReact, or acquisition of a passive.
// Postcondition: on success every target received Effects.Modifiers, Damage and Heal;
// buffs and reactions have TurnsRemaining == Duration+1.
func (a *Ability) Activate(user Target, targets []Target) error {
	if a.active {
		return fmt.Errorf("activating %q: %w", a.Def.Name, ErrAlreadyActive)
	}
	if a.Def.Target == TargetSelf {
		targets = []Target{user}
	}
	if len(targets) == 0 {
		return fmt.Errorf("activating %q: %w", a.Def.Name, ErrNoTargets)
	}
	if len(targets) > a.Def.TargetCount {
		return fmt.Errorf("activating %q with %d targets (max %d): %w",
			a.Def.Name, len(targets), a.Def.TargetCount, ErrTooManyTargets)
	}

	a.active = true
	a.targets = append([]Target(nil), targets...)
	switch a.Def.Kind {
	case KindBuff, KindReaction:
		a.turnsRemaining = a.Def.Duration + 1
	default:
		a.turnsRemaining = 0
	}

	fx := a.Def.Effects
	mods := fx.Modifiers()
	for _, t := range a.targets {
		if !mods.IsZero() {
			t.ApplyModifiers(mods)
		}
		if fx.Damage > 0 {
			t.TakeDamage(float64(fx.Damage))
		}
		if fx.Heal > 0 {
			t.Heal(float64(fx.Heal))
		}
	}

	if a.Def.Kind == KindInstant {
		a.Deactivate()
	}
	return nil
}

// Deactivate reverses the modifiers on every recorded target and starts the cooldown.
// Calling it when the ability is not active is a no-op, so one activation is
// never reversed twice.
//
// Postcondition: IsActive() is false; returns true iff a reversal happened.
func (a *Ability) Deactivate() bool {
	if !a.active {
		return false
	}
	reverse := a.Def.Effects.Modifiers().Negate()
	if !reverse.IsZero() {
		for _, t := range a.targets {
			t.ApplyModifiers(reverse)
		}
	}
	a.active = false
	a.turnsRemaining = 0
	a.cooldownRemaining = a.Def.Cooldown
	a.targets = nil
	return true
}

// Tick advances the ability by one owner turn: the duration counts down and
// expires the ability at zero, then the cooldown counts down.
// Passive abilities never tick.
//
// Postcondition: returns true iff this tick deactivated the ability.
func (a *Ability) Tick() bool {
	if a.Def.Kind == KindPassive {
		return false
	}
	expired := false
	if a.turnsRemaining > 0 {
		a.turnsRemaining--
		if a.turnsRemaining == 0 {
			expired = a.Deactivate()
		}
	}
	if a.cooldownRemaining > 0 {
		a.cooldownRemaining--
	}
	return expired
}

// Reset ends any active buff or reaction and clears both counters, as at the
// end of an encounter. Passive abilities are left applied.
//
// Postcondition: for non-passive abilities IsActive() is false and both counters are zero.
func (a *Ability) Reset() {
	if a.Def.Kind == KindPassive {
		return
	}
	a.Deactivate()
	a.turnsRemaining = 0
	a.cooldownRemaining = 0
}
