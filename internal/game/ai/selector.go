// Package ai chooses actions and targets for combatants the player does not
// control, delegating to per-combatant Lua scripts.
//
// A script defines either or both of:
//
//	choose_action(self, usable, attempt)  -- 0 or "attack", or a 1-based index into usable
//	choose_target(self, request)          -- a 1-based index into request.candidates
//
// where request holds ability, target, candidates, chosen, attempt and
// last_error. Returning nil defers to the fallback selector.
package ai

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/scripting"
)

// Hook names called on AI scripts.
const (
	HookChooseAction = "choose_action"
	HookChooseTarget = "choose_target"
)

// ScriptCaller is the interface required by ScriptSelector to run Lua hooks.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given script's VM.
	// Returns (LNil, nil) if the script or function is not defined.
	CallHook(script, hook string, args ...any) (lua.LValue, error)
}

// ScriptSelector is a combat.Selector that asks the script assigned to each
// combatant and defers to a fallback when there is none or it has no answer.
//
// Invariant: caller and fallback are non-nil.
type ScriptSelector struct {
	caller   ScriptCaller
	fallback combat.Selector
	logger   *zap.Logger
	scripts  map[string]string
}

// NewScriptSelector constructs a ScriptSelector.
//
// Precondition: caller, fallback and logger must not be nil.
func NewScriptSelector(caller ScriptCaller, fallback combat.Selector, logger *zap.Logger) *ScriptSelector {
	if caller == nil {
		panic("ai.NewScriptSelector: caller must not be nil")
	}
	if fallback == nil {
		panic("ai.NewScriptSelector: fallback must not be nil")
	}
	return &ScriptSelector{
		caller:   caller,
		fallback: fallback,
		logger:   logger,
		scripts:  make(map[string]string),
	}
}

// Assign makes script decide for c. An empty script removes the assignment.
func (s *ScriptSelector) Assign(c *combat.Combatant, script string) {
	if script == "" {
		delete(s.scripts, c.ID)
		return
	}
	s.scripts[c.ID] = script
}

// AssignRoster assigns script to every member of r.
func (s *ScriptSelector) AssignRoster(r *combat.Roster, script string) {
	for _, m := range r.Members {
		s.Assign(m, script)
	}
}

// ScriptFor returns the script assigned to c, if any.
func (s *ScriptSelector) ScriptFor(c *combat.Combatant) (string, bool) {
	script, ok := s.scripts[c.ID]
	return script, ok
}

// ChooseAction calls choose_action on actor's script.
//
// Postcondition: a numeric answer n in [1, len(usable)] selects usable[n-1];
// 0 or "attack" is a basic attack; anything else defers to the fallback.
func (s *ScriptSelector) ChooseAction(actor *combat.Combatant, usable []int, attempt int) combat.Action {
	script, ok := s.scripts[actor.ID]
	if !ok {
		return s.fallback.ChooseAction(actor, usable, attempt)
	}
	names := make([]string, len(usable))
	for i, idx := range usable {
		names[i] = actor.Abilities[idx].Name()
	}
	ret, err := s.caller.CallHook(script, HookChooseAction, Snapshot(actor), names, attempt)
	if err != nil {
		s.logger.Warn("ai: choose_action failed", zap.String("script", script), zap.Error(err))
		return s.fallback.ChooseAction(actor, usable, attempt)
	}
	switch v := ret.(type) {
	case lua.LNumber:
		n := int(v)
		if n == 0 {
			return combat.Action{Type: combat.ActionAttack}
		}
		if n >= 1 && n <= len(usable) {
			return combat.Action{Type: combat.ActionAbility, Ability: usable[n-1]}
		}
	case lua.LString:
		if v == "attack" {
			return combat.Action{Type: combat.ActionAttack}
		}
	}
	return s.fallback.ChooseAction(actor, usable, attempt)
}

// ChooseTarget calls choose_target on actor's script.
//
// Postcondition: a numeric answer n selects candidate n-1; nil or a
// non-number defers to the fallback. The engine validates the result.
func (s *ScriptSelector) ChooseTarget(actor *combat.Combatant, req combat.TargetRequest) int {
	script, ok := s.scripts[actor.ID]
	if !ok {
		return s.fallback.ChooseTarget(actor, req)
	}
	ret, err := s.caller.CallHook(script, HookChooseTarget, Snapshot(actor), requestArg(req))
	if err != nil {
		s.logger.Warn("ai: choose_target failed", zap.String("script", script), zap.Error(err))
		return s.fallback.ChooseTarget(actor, req)
	}
	if n, ok := ret.(lua.LNumber); ok {
		return int(n) - 1
	}
	return s.fallback.ChooseTarget(actor, req)
}

// Snapshot copies the state of c that scripts may read.
func Snapshot(c *combat.Combatant) scripting.CombatantInfo {
	info := scripting.CombatantInfo{
		ID:     c.ID,
		Name:   c.Name,
		HP:     c.CurrentHP,
		MaxHP:  c.MaxHP,
		Attack: c.Atk,
		Armor:  c.Armor,
		Dodge:  c.Dodge,
		Level:  c.Level,
	}
	for _, a := range c.Abilities {
		info.Abilities = append(info.Abilities, a.Name())
	}
	return info
}

func requestArg(req combat.TargetRequest) map[string]any {
	candidates := make([]scripting.CombatantInfo, len(req.Candidates))
	for i, c := range req.Candidates {
		candidates[i] = Snapshot(c)
	}
	arg := map[string]any{
		"candidates": candidates,
		"chosen":     req.Chosen,
		"attempt":    req.Attempt,
	}
	if req.Ability != nil {
		arg["ability"] = req.Ability.Name
		arg["target"] = string(req.Ability.Target)
	} else {
		arg["target"] = "enemy"
	}
	if req.LastErr != nil {
		arg["last_error"] = req.LastErr.Error()
	}
	return arg
}
