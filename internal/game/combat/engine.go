package combat

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/ability"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/inventory"
)

var (
	// ErrInvalidTarget is passed back to a Selector whose target index is out
	// of range or already chosen.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrAbilityNotUsable is the reason an ability action is rejected.
	ErrAbilityNotUsable = errors.New("ability not usable")
	// ErrEmptyRoster is returned when an encounter is started with an empty side.
	ErrEmptyRoster = errors.New("roster has no members")
	// ErrWrongPhase is returned when a step is called out of order.
	ErrWrongPhase = errors.New("encounter is not in the required phase")
)

// DefaultMaxRounds bounds an encounter whose sides cannot damage each other.
const DefaultMaxRounds = 200

// maxPrompts is how many invalid answers a Selector may give for one choice
// before the AI decides instead.
const maxPrompts = 8

// Phase is the encounter's position in its state machine.
type Phase int

const (
	PhaseLineup Phase = iota
	PhaseRoundLoop
	PhaseResolution
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseLineup:
		return "lineup"
	case PhaseRoundLoop:
		return "round_loop"
	case PhaseResolution:
		return "resolution"
	default:
		return "unknown"
	}
}

// RosterRemover removes a defeated hostile roster from the world.
type RosterRemover interface {
	Remove(r *Roster) bool
}

// Outcome summarises a resolved encounter.
type Outcome struct {
	// Winner and Loser are nil on a draw or stalemate.
	Winner *Roster
	Loser  *Roster
	// Gold is the amount transferred from Loser to Winner.
	Gold int
	// Loot is the inventory taken from a hostile Loser.
	Loot []*inventory.Item
	// Survivors are the Winner's members after resolution.
	Survivors []*Combatant
	Rounds    int
	Events    []RoundEvent
	// Stalemate is true when the round limit ended the encounter.
	Stalemate bool
}

// Draw reports whether both sides were eliminated.
func (o Outcome) Draw() bool { return o.Winner == nil && !o.Stalemate }

// Option configures an Encounter.
type Option func(*Encounter)

// WithSource sets the randomness for attacks and the default AI.
func WithSource(src Source) Option { return func(e *Encounter) { e.src = src } }

// WithAI sets the selector used for combatants that are not player controlled,
// and as the fallback when the caller's selector keeps answering invalidly.
func WithAI(ai Selector) Option { return func(e *Encounter) { e.ai = ai } }

// WithWorld sets where defeated hostile rosters are removed from.
func WithWorld(w RosterRemover) Option { return func(e *Encounter) { e.world = w } }

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option { return func(e *Encounter) { e.logger = l } }

// WithMaxRounds sets the stalemate limit; values < 1 are ignored.
func WithMaxRounds(n int) Option {
	return func(e *Encounter) {
		if n >= 1 {
			e.maxRounds = n
		}
	}
}

// Encounter runs one battle between two rosters.
// It is not safe for concurrent use.
type Encounter struct {
	a, b         *Roster
	selector     Selector
	ai           Selector
	src          Source
	world        RosterRemover
	logger       *zap.Logger
	maxRounds    int
	phase        Phase
	round        int
	events       []RoundEvent
	participants []*Combatant
	announced    map[string]bool
	sideOf       map[string]string
}

// NewEncounter prepares an encounter between a and b. selector decides for
// player-controlled combatants; a nil selector leaves every decision to the AI.
//
// Precondition: both rosters are non-nil.
// Postcondition: returns ErrEmptyRoster if either roster has no members;
// otherwise Phase() == PhaseLineup.
func NewEncounter(a, b *Roster, selector Selector, opts ...Option) (*Encounter, error) {
	if a == nil || len(a.Members) == 0 {
		return nil, fmt.Errorf("side A: %w", ErrEmptyRoster)
	}
	if b == nil || len(b.Members) == 0 {
		return nil, fmt.Errorf("side B: %w", ErrEmptyRoster)
	}
	e := &Encounter{
		a:         a,
		b:         b,
		selector:  selector,
		maxRounds: DefaultMaxRounds,
		announced: make(map[string]bool),
		sideOf:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.src == nil {
		e.src = dice.NewCryptoSource()
	}
	if e.ai == nil {
		e.ai = NewRandomSelector(e.src)
	}
	if e.selector == nil {
		e.selector = e.ai
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	for _, r := range []*Roster{a, b} {
		for _, m := range r.Members {
			e.participants = append(e.participants, m)
			e.sideOf[m.ID] = r.Name
		}
	}
	return e, nil
}

// Phase returns the current phase.
func (e *Encounter) Phase() Phase { return e.phase }

// Round returns the number of rounds played.
func (e *Encounter) Round() int { return e.round }

// Events returns every event emitted so far.
func (e *Encounter) Events() []RoundEvent { return slices.Clone(e.events) }

// Over reports whether the round loop has ended: a side is empty or the
// round limit is reached.
func (e *Encounter) Over() bool {
	return len(e.a.Members) == 0 || len(e.b.Members) == 0 || e.round >= e.maxRounds
}

// Lineup announces both sides and starts the round loop.
//
// Precondition: Phase() == PhaseLineup.
// Postcondition: Phase() == PhaseRoundLoop; returns one event per member.
func (e *Encounter) Lineup() ([]RoundEvent, error) {
	if e.phase != PhaseLineup {
		return nil, fmt.Errorf("lineup in phase %s: %w", e.phase, ErrWrongPhase)
	}
	e.logger.Info("encounter started",
		zap.String("side_a", e.a.Name),
		zap.Int("side_a_size", len(e.a.Members)),
		zap.String("side_b", e.b.Name),
		zap.Int("side_b_size", len(e.b.Members)),
	)
	start := len(e.events)
	for _, r := range []*Roster{e.a, e.b} {
		for _, m := range r.Members {
			e.emit(RoundEvent{
				Kind:      EventLineup,
				Side:      r.Name,
				ActorID:   m.ID,
				ActorName: m.DisplayName(),
				Narrative: fmt.Sprintf("%s: %d/%d hp", m.DisplayName(), int(m.CurrentHP), int(m.MaxHP)),
			})
		}
	}
	e.phase = PhaseRoundLoop
	return slices.Clone(e.events[start:]), nil
}

// PlayRound plays one full round: side A acts, dead B members are removed,
// then if B still has members side B acts and dead A members are removed.
//
// Precondition: Phase() == PhaseRoundLoop and !Over().
// Postcondition: Round() is incremented; returns the round's events.
func (e *Encounter) PlayRound() ([]RoundEvent, error) {
	if e.phase != PhaseRoundLoop {
		return nil, fmt.Errorf("round in phase %s: %w", e.phase, ErrWrongPhase)
	}
	if e.Over() {
		return nil, fmt.Errorf("round after the loop ended: %w", ErrWrongPhase)
	}
	start := len(e.events)
	e.round++
	e.emit(RoundEvent{Kind: EventRoundStart, Narrative: fmt.Sprintf("Turn %d", e.round)})

	e.takeTurn(e.a, e.b)
	e.b.Prune()
	if len(e.b.Members) > 0 {
		e.takeTurn(e.b, e.a)
		e.a.Prune()
	}
	return slices.Clone(e.events[start:]), nil
}

// Resolve ends the encounter. The winner takes the loser's gold; a hostile
// loser is removed from the world and its inventory moves to the winner.
// Every participant's abilities are reset and the winner's survivors are
// restored to full hit points.
//
// Precondition: Phase() == PhaseRoundLoop and Over().
// Postcondition: Phase() == PhaseResolution.
func (e *Encounter) Resolve() (Outcome, error) {
	if e.phase != PhaseRoundLoop {
		return Outcome{}, fmt.Errorf("resolve in phase %s: %w", e.phase, ErrWrongPhase)
	}
	if !e.Over() {
		return Outcome{}, fmt.Errorf("resolve before the loop ended: %w", ErrWrongPhase)
	}
	e.a.Prune()
	e.b.Prune()

	// Resetting every participant, fallen ones included, reverses debuffs
	// whose caster died mid-fight. Survivors stay alive through the reversal.
	ResetAll(e.participants)

	out := Outcome{Rounds: e.round}
	switch {
	case len(e.a.Members) > 0 && len(e.b.Members) > 0:
		out.Stalemate = true
		e.emit(RoundEvent{Kind: EventOutcome, Narrative: fmt.Sprintf("Stalemate after %d turns", e.round)})
	case len(e.a.Members) == 0 && len(e.b.Members) == 0:
		e.emit(RoundEvent{Kind: EventOutcome, Narrative: "Both sides have fallen"})
	default:
		winner, loser := e.a, e.b
		if len(e.a.Members) == 0 {
			winner, loser = e.b, e.a
		}
		out.Winner, out.Loser = winner, loser
		out.Gold = loser.Gold
		winner.Gold += loser.Gold
		loser.Gold = 0
		if loser.Hostile {
			if e.world != nil {
				e.world.Remove(loser)
			}
			out.Loot = loser.Inventory
			winner.Inventory = append(winner.Inventory, loser.Inventory...)
			loser.Inventory = nil
		}
		for _, m := range winner.Members {
			m.CurrentHP = m.MaxHP
		}
		out.Survivors = slices.Clone(winner.Members)
		e.emit(RoundEvent{Kind: EventOutcome, Side: winner.Name,
			Narrative: fmt.Sprintf("Winners - %s (+%d gold)", winner.Name, out.Gold)})
	}
	e.phase = PhaseResolution
	out.Events = slices.Clone(e.events)

	fields := []zap.Field{zap.Int("rounds", out.Rounds), zap.Bool("stalemate", out.Stalemate), zap.Int("gold", out.Gold)}
	if out.Winner != nil {
		fields = append(fields, zap.String("winner", out.Winner.Name))
	}
	e.logger.Info("encounter resolved", fields...)
	return out, nil
}

// ResolveEncounter runs a complete encounter between a and b.
//
// Precondition: both rosters are non-nil.
// Postcondition: returns ErrEmptyRoster if either side starts empty.
func ResolveEncounter(a, b *Roster, selector Selector, opts ...Option) (Outcome, error) {
	e, err := NewEncounter(a, b, selector, opts...)
	if err != nil {
		return Outcome{}, err
	}
	if _, err := e.Lineup(); err != nil {
		return Outcome{}, err
	}
	for !e.Over() {
		if _, err := e.PlayRound(); err != nil {
			return Outcome{}, err
		}
	}
	return e.Resolve()
}

func (e *Encounter) emit(ev RoundEvent) {
	ev.Round = e.round
	e.events = append(e.events, ev)
	e.logger.Debug("combat event", zap.Object("event", ev))
}

// takeTurn lets every living member of side act once against foes. The turn
// ends early when no living foe remains.
func (e *Encounter) takeTurn(side, foes *Roster) {
	for _, actor := range slices.Clone(side.Members) {
		if len(foes.Living()) == 0 {
			return
		}
		if actor.IsDead() {
			continue
		}
		for _, a := range actor.TickAbilities() {
			e.emit(RoundEvent{Kind: EventExpired, Side: side.Name, ActorID: actor.ID, ActorName: actor.DisplayName(),
				Narrative: fmt.Sprintf("%s's %s wore off", actor.DisplayName(), a.Name())})
		}
		e.announceDeaths()
		if actor.IsDead() {
			continue
		}
		e.act(actor, side, foes)
		e.announceDeaths()
	}
}

func (e *Encounter) selectorFor(c *Combatant) Selector {
	if c.PlayerControlled {
		return e.selector
	}
	return e.ai
}

func (e *Encounter) act(actor *Combatant, side, foes *Roster) {
	usable := actor.UsableAbilities()
	action := e.chooseAction(actor, usable)
	if action.Type == ActionAbility {
		if e.useAbility(actor, actor.Abilities[action.Ability], side, foes) {
			return
		}
	}
	e.attack(actor, side, foes)
}

func validAction(a Action, usable []int) error {
	switch a.Type {
	case ActionAttack:
		return nil
	case ActionAbility:
		if slices.Contains(usable, a.Ability) {
			return nil
		}
		return fmt.Errorf("ability %d: %w", a.Ability, ErrAbilityNotUsable)
	default:
		return fmt.Errorf("action %s: %w", a.Type, ErrAbilityNotUsable)
	}
}

func (e *Encounter) chooseAction(actor *Combatant, usable []int) Action {
	sel := e.selectorFor(actor)
	var lastErr error
	for attempt := 0; attempt < maxPrompts; attempt++ {
		a := sel.ChooseAction(actor, slices.Clone(usable), attempt)
		if lastErr = validAction(a, usable); lastErr == nil {
			return a
		}
	}
	e.logger.Warn("selector gave no valid action; deferring to AI",
		zap.String("actor", actor.Name), zap.Error(lastErr))
	if a := e.ai.ChooseAction(actor, slices.Clone(usable), 0); validAction(a, usable) == nil {
		return a
	}
	return Action{Type: ActionAttack}
}

func validTarget(i int, req TargetRequest) error {
	if i < 0 || i >= len(req.Candidates) {
		return fmt.Errorf("index %d of %d candidates: %w", i, len(req.Candidates), ErrInvalidTarget)
	}
	if slices.Contains(req.Chosen, i) {
		return fmt.Errorf("index %d already chosen: %w", i, ErrInvalidTarget)
	}
	return nil
}

// chooseTargets asks for count distinct candidates.
//
// Precondition: 0 < count <= len(candidates).
func (e *Encounter) chooseTargets(actor *Combatant, def *ability.Def, candidates []*Combatant, count int) []*Combatant {
	sel := e.selectorFor(actor)
	var chosen []int
	for len(chosen) < count {
		req := TargetRequest{Ability: def, Candidates: candidates, Chosen: slices.Clone(chosen)}
		idx := -1
		for attempt := 0; attempt < maxPrompts; attempt++ {
			req.Attempt = attempt
			i := sel.ChooseTarget(actor, req)
			if req.LastErr = validTarget(i, req); req.LastErr == nil {
				idx = i
				break
			}
		}
		if idx < 0 {
			e.logger.Warn("selector gave no valid target; deferring to AI",
				zap.String("actor", actor.Name), zap.Error(req.LastErr))
			req.Attempt, req.LastErr = 0, nil
			if i := e.ai.ChooseTarget(actor, req); validTarget(i, req) == nil {
				idx = i
			} else {
				idx = Unchosen(req)[0]
			}
		}
		chosen = append(chosen, idx)
	}
	out := make([]*Combatant, len(chosen))
	for i, idx := range chosen {
		out[i] = candidates[idx]
	}
	return out
}

func (e *Encounter) attack(actor *Combatant, side, foes *Roster) {
	candidates := foes.Living()
	target := e.chooseTargets(actor, nil, candidates, 1)[0]
	r := actor.Attack(target, e.src)

	ev := RoundEvent{Kind: EventAttack, Side: side.Name, ActorID: actor.ID, ActorName: actor.Name,
		Targets: []string{target.Name}, Attack: &r}
	if r.Hit {
		ev.Narrative = fmt.Sprintf("%s hit their attack against %s for %.1f points", actor.Name, target.Name, r.Damage)
	} else {
		ev.Narrative = fmt.Sprintf("%s missed their attack against %s", actor.Name, target.Name)
	}
	e.emit(ev)
	for _, name := range r.Reactions {
		e.emit(RoundEvent{Kind: EventReaction, Side: foes.Name, ActorID: target.ID, ActorName: target.Name,
			Targets: []string{actor.Name}, Narrative: fmt.Sprintf("%s reacts with %s", target.Name, name)})
	}
	e.announceLevels(actor, side, r.LevelsGained)
}

// useAbility activates ab and reports whether the turn was spent.
func (e *Encounter) useAbility(actor *Combatant, ab *ability.Ability, side, foes *Roster) bool {
	def := ab.Def
	var targets []*Combatant
	switch def.Target {
	case ability.TargetSelf:
		targets = []*Combatant{actor}
	case ability.TargetTeam:
		candidates := side.Living()
		targets = e.chooseTargets(actor, def, candidates, min(def.TargetCount, len(candidates)))
	default:
		candidates := foes.Living()
		targets = e.chooseTargets(actor, def, candidates, min(def.TargetCount, len(candidates)))
	}
	abTargets := make([]ability.Target, len(targets))
	names := make([]string, len(targets))
	for i, t := range targets {
		abTargets[i] = t
		names[i] = t.Name
	}
	if err := ab.Activate(actor, abTargets); err != nil {
		e.logger.Warn("ability activation failed; attacking instead",
			zap.String("actor", actor.Name), zap.String("ability", def.Name), zap.Error(err))
		return false
	}
	e.emit(RoundEvent{Kind: EventAbility, Side: side.Name, ActorID: actor.ID, ActorName: actor.Name, Targets: names,
		Narrative: fmt.Sprintf("%s uses %s on %s", actor.Name, def.Name, strings.Join(names, ", "))})
	return true
}

func (e *Encounter) announceLevels(c *Combatant, side *Roster, gained int) {
	for i := gained - 1; i >= 0; i-- {
		e.emit(RoundEvent{Kind: EventLevelUp, Side: side.Name, ActorID: c.ID, ActorName: c.Name,
			Narrative: fmt.Sprintf("%s reached level %d", c.Name, c.Level-i)})
	}
}

func (e *Encounter) announceDeaths() {
	for _, p := range e.participants {
		if p.IsDead() && !e.announced[p.ID] {
			e.announced[p.ID] = true
			e.emit(RoundEvent{Kind: EventDeath, Side: e.sideOf[p.ID], ActorID: p.ID, ActorName: p.Name,
				Narrative: fmt.Sprintf("%s has died.", p.Name)})
		}
	}
}
