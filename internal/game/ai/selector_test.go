package ai_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/warband/internal/game/ability"
	"github.com/cory-johannsen/warband/internal/game/ai"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/stats"
	"github.com/cory-johannsen/warband/internal/scripting"
)

// mockScriptCaller returns the given value for any hook call and records calls.
type mockScriptCaller struct {
	returnVal lua.LValue
	err       error
	hooks     []string
	args      [][]any
}

func (m *mockScriptCaller) CallHook(_, hook string, args ...any) (lua.LValue, error) {
	m.hooks = append(m.hooks, hook)
	m.args = append(m.args, args)
	if m.returnVal == nil {
		return lua.LNil, m.err
	}
	return m.returnVal, m.err
}

// fixedSelector always attacks candidate 0 and counts calls.
type fixedSelector struct{ calls int }

func (f *fixedSelector) ChooseAction(*combat.Combatant, []int, int) combat.Action {
	f.calls++
	return combat.Action{Type: combat.ActionAttack}
}

func (f *fixedSelector) ChooseTarget(*combat.Combatant, combat.TargetRequest) int {
	f.calls++
	return 0
}

func fighter(name string, hp int) *combat.Combatant {
	return combat.NewCombatant(name, stats.Block{Attack: 6, Armor: 4, Dodge: 3, HP: hp})
}

func withHowl(c *combat.Combatant) *combat.Combatant {
	c.GrantAbility(&ability.Def{ID: "howl", Name: "Howl", Kind: ability.KindBuff,
		Effects: ability.Effects{Attack: 2}, TargetCount: 1, Target: ability.TargetSelf, Duration: 2, Cooldown: 3})
	return c
}

func TestNewScriptSelector_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { ai.NewScriptSelector(nil, &fixedSelector{}, zap.NewNop()) })
	assert.Panics(t, func() { ai.NewScriptSelector(&mockScriptCaller{}, nil, zap.NewNop()) })
}

func TestScriptSelector_UnassignedUsesFallback(t *testing.T) {
	caller := &mockScriptCaller{returnVal: lua.LNumber(1)}
	fb := &fixedSelector{}
	sel := ai.NewScriptSelector(caller, fb, zap.NewNop())

	act := sel.ChooseAction(fighter("A", 10), nil, 0)
	assert.Equal(t, combat.ActionAttack, act.Type)
	assert.Equal(t, 1, fb.calls)
	assert.Empty(t, caller.hooks)
}

func TestScriptSelector_ChooseAction_AbilityIndexIsOneBased(t *testing.T) {
	caller := &mockScriptCaller{returnVal: lua.LNumber(1)}
	sel := ai.NewScriptSelector(caller, &fixedSelector{}, zap.NewNop())
	c := withHowl(fighter("A", 10))
	sel.Assign(c, "pack")

	act := sel.ChooseAction(c, []int{0}, 2)
	assert.Equal(t, combat.Action{Type: combat.ActionAbility, Ability: 0}, act)
	require.Equal(t, []string{ai.HookChooseAction}, caller.hooks)
	assert.Equal(t, []string{"Howl"}, caller.args[0][1])
	assert.Equal(t, 2, caller.args[0][2])
}

func TestScriptSelector_ChooseAction_AttackAnswers(t *testing.T) {
	for _, ret := range []lua.LValue{lua.LNumber(0), lua.LString("attack")} {
		sel := ai.NewScriptSelector(&mockScriptCaller{returnVal: ret}, &fixedSelector{}, zap.NewNop())
		c := withHowl(fighter("A", 10))
		sel.Assign(c, "pack")
		assert.Equal(t, combat.ActionAttack, sel.ChooseAction(c, []int{0}, 0).Type, ret.String())
	}
}

func TestScriptSelector_ChooseAction_BadAnswerUsesFallback(t *testing.T) {
	for _, ret := range []lua.LValue{lua.LNil, lua.LNumber(5), lua.LString("flee"), lua.LTrue} {
		fb := &fixedSelector{}
		sel := ai.NewScriptSelector(&mockScriptCaller{returnVal: ret}, fb, zap.NewNop())
		c := withHowl(fighter("A", 10))
		sel.Assign(c, "pack")
		sel.ChooseAction(c, []int{0}, 0)
		assert.Equal(t, 1, fb.calls, ret.String())
	}
}

func TestScriptSelector_CallerErrorUsesFallback(t *testing.T) {
	fb := &fixedSelector{}
	sel := ai.NewScriptSelector(&mockScriptCaller{err: errors.New("boom")}, fb, zap.NewNop())
	c := fighter("A", 10)
	sel.Assign(c, "pack")
	sel.ChooseAction(c, nil, 0)
	sel.ChooseTarget(c, combat.TargetRequest{Candidates: []*combat.Combatant{fighter("B", 5)}})
	assert.Equal(t, 2, fb.calls)
}

func TestScriptSelector_ChooseTarget_ConvertsToZeroBased(t *testing.T) {
	caller := &mockScriptCaller{returnVal: lua.LNumber(2)}
	sel := ai.NewScriptSelector(caller, &fixedSelector{}, zap.NewNop())
	c := fighter("A", 10)
	sel.Assign(c, "pack")
	got := sel.ChooseTarget(c, combat.TargetRequest{Candidates: []*combat.Combatant{fighter("B", 5), fighter("C", 5)}})
	assert.Equal(t, 1, got)
}

func TestScriptSelector_AssignRosterAndUnassign(t *testing.T) {
	sel := ai.NewScriptSelector(&mockScriptCaller{}, &fixedSelector{}, zap.NewNop())
	leader := fighter("A", 10)
	r := combat.NewBand(leader)
	require.NoError(t, r.Add(fighter("B", 10)))
	sel.AssignRoster(r, "pack")
	for _, m := range r.Members {
		script, ok := sel.ScriptFor(m)
		assert.True(t, ok)
		assert.Equal(t, "pack", script)
	}
	sel.Assign(leader, "")
	_, ok := sel.ScriptFor(leader)
	assert.False(t, ok)
}

func TestSnapshot(t *testing.T) {
	c := withHowl(fighter("A", 10))
	c.TakeDamage(4)
	info := ai.Snapshot(c)
	assert.Equal(t, scripting.CombatantInfo{
		ID: c.ID, Name: "A", HP: 6, MaxHP: 10, Attack: 6, Armor: 4, Dodge: 3, Level: 1,
		Abilities: []string{"Howl"},
	}, info)
}

func newShippedManager(t *testing.T) *scripting.Manager {
	t.Helper()
	mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewSeededSource(9), zap.NewNop()), zap.NewNop())
	t.Cleanup(mgr.Close)
	names, err := mgr.LoadDir("../../../content/scripts/ai", 0)
	require.NoError(t, err)
	require.Contains(t, names, "pack_hunter")
	require.Contains(t, names, "opportunist")
	return mgr
}

func TestPackHunter_TargetsWeakestUnchosen(t *testing.T) {
	sel := ai.NewScriptSelector(newShippedManager(t), &fixedSelector{}, zap.NewNop())
	wolf := fighter("Wolf", 30)
	sel.Assign(wolf, "pack_hunter")

	req := combat.TargetRequest{Candidates: []*combat.Combatant{fighter("A", 9), fighter("B", 3), fighter("C", 5)}}
	assert.Equal(t, 1, sel.ChooseTarget(wolf, req))
	req.Chosen = []int{1}
	assert.Equal(t, 2, sel.ChooseTarget(wolf, req))
}

func TestPackHunter_UsesAbilityWhenHurt(t *testing.T) {
	sel := ai.NewScriptSelector(newShippedManager(t), &fixedSelector{}, zap.NewNop())
	wolf := withHowl(fighter("Wolf", 30))
	sel.Assign(wolf, "pack_hunter")

	assert.Equal(t, combat.ActionAttack, sel.ChooseAction(wolf, []int{0}, 0).Type)
	wolf.TakeDamage(20)
	assert.Equal(t, combat.Action{Type: combat.ActionAbility, Ability: 0}, sel.ChooseAction(wolf, []int{0}, 0))
}

func TestOpportunist_TargetsSoftestDefence(t *testing.T) {
	sel := ai.NewScriptSelector(newShippedManager(t), &fixedSelector{}, zap.NewNop())
	bandit := fighter("Bandit", 30)
	sel.Assign(bandit, "opportunist")

	soft := combat.NewCombatant("Soft", stats.Block{Attack: 1, Armor: 1, Dodge: 1, HP: 9})
	req := combat.TargetRequest{Candidates: []*combat.Combatant{fighter("A", 9), soft}}
	assert.Equal(t, 1, sel.ChooseTarget(bandit, req))
}

func TestPropertyOpportunist_ActionAlwaysValid(t *testing.T) {
	mgr := newShippedManager(t)
	rapid.Check(t, func(rt *rapid.T) {
		sel := ai.NewScriptSelector(mgr, &fixedSelector{}, zap.NewNop())
		c := fighter("Bandit", 30)
		n := rapid.IntRange(0, 4).Draw(rt, "abilities")
		usable := make([]int, n)
		for i := range usable {
			withHowl(c)
			usable[i] = i
		}
		sel.Assign(c, "opportunist")
		act := sel.ChooseAction(c, usable, 0)
		switch act.Type {
		case combat.ActionAttack:
		case combat.ActionAbility:
			if act.Ability < 0 || act.Ability >= n {
				rt.Fatalf("ability index %d out of range [0, %d)", act.Ability, n)
			}
		default:
			rt.Fatalf("unexpected action %v", act.Type)
		}
	})
}

func TestScriptSelector_DrivesEncounter(t *testing.T) {
	mgr := newShippedManager(t)
	sel := ai.NewScriptSelector(mgr, combat.NewRandomSelector(dice.NewSeededSource(1)), zap.NewNop())

	wolves := combat.NewBand(fighter("Alpha Wolf", 40))
	require.NoError(t, wolves.Add(fighter("Wolf", 20)))
	wolves.Hostile = true
	sel.AssignRoster(wolves, "pack_hunter")

	party := combat.NewParty(fighter("Ada", 1))

	out, err := combat.ResolveEncounter(party, wolves, nil,
		combat.WithSource(dice.NewSeededSource(4)), combat.WithAI(sel), combat.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Same(t, wolves, out.Winner)
}
