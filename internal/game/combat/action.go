package combat

import "github.com/cory-johannsen/warband/internal/game/ability"

// ActionType identifies what a combatant does on its turn.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionType int

const (
	ActionUnknown ActionType = iota // zero value; intentionally invalid
	ActionAttack                    // basic attack against one enemy
	ActionAbility                   // activate a usable ability
)

// String returns the human-readable name of the ActionType.
// Postcondition: returns "attack", "ability", or "unknown".
func (a ActionType) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionAbility:
		return "ability"
	default:
		return "unknown"
	}
}

// Action is a combatant's choice for one turn.
type Action struct {
	Type ActionType
	// Ability indexes the actor's Abilities when Type is ActionAbility.
	Ability int
}

// TargetRequest describes one target choice the engine needs.
type TargetRequest struct {
	// Ability is nil for a basic attack.
	Ability *ability.Def
	// Candidates are the combatants that may be chosen, in turn order.
	Candidates []*Combatant
	// Chosen holds candidate indices already picked for this action.
	Chosen []int
	// Attempt counts rejected answers for this choice, starting at 0.
	Attempt int
	// LastErr is why the previous answer was rejected, or nil.
	LastErr error
}

// Selector makes turn decisions. The engine validates every answer and asks
// again when it is invalid.
type Selector interface {
	// ChooseAction picks the action for actor. usable lists the indices of
	// actor.Abilities that may be activated this turn.
	ChooseAction(actor *Combatant, usable []int, attempt int) Action
	// ChooseTarget returns an index into req.Candidates.
	ChooseTarget(actor *Combatant, req TargetRequest) int
}

// RandomSelector always attacks, choosing uniformly among the candidates not
// yet chosen.
type RandomSelector struct {
	src Source
}

// NewRandomSelector returns a RandomSelector drawing from src.
//
// Precondition: src must be non-nil.
func NewRandomSelector(src Source) *RandomSelector {
	return &RandomSelector{src: src}
}

// ChooseAction always returns a basic attack.
func (s *RandomSelector) ChooseAction(_ *Combatant, _ []int, _ int) Action {
	return Action{Type: ActionAttack}
}

// ChooseTarget returns a uniformly random unchosen candidate index, or -1
// when none remain.
func (s *RandomSelector) ChooseTarget(_ *Combatant, req TargetRequest) int {
	open := Unchosen(req)
	if len(open) == 0 {
		return -1
	}
	return open[s.src.Intn(len(open))]
}

// Unchosen returns the candidate indices of req not already in req.Chosen.
func Unchosen(req TargetRequest) []int {
	taken := make(map[int]bool, len(req.Chosen))
	for _, i := range req.Chosen {
		taken[i] = true
	}
	var open []int
	for i := range req.Candidates {
		if !taken[i] {
			open = append(open, i)
		}
	}
	return open
}
