// Package skirmish wires content, the world and the encounter engine into a
// batch run: one recruited party fights every monster band in the world until
// it falls or none remain.
package skirmish

import (
	"fmt"
	"io"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/config"
	"github.com/cory-johannsen/warband/internal/game/ability"
	"github.com/cory-johannsen/warband/internal/game/ai"
	"github.com/cory-johannsen/warband/internal/game/character"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/inventory"
	"github.com/cory-johannsen/warband/internal/game/npc"
	"github.com/cory-johannsen/warband/internal/game/ruleset"
	"github.com/cory-johannsen/warband/internal/game/world"
	"github.com/cory-johannsen/warband/internal/scripting"
)

// Summary reports what a run did.
type Summary struct {
	Seed       int64
	Fought     int
	Won        int
	Stalemates int
	Gold       int
	Items      int
	Survivors  int
	// PartyDefeated is true when the party lost an encounter.
	PartyDefeated bool
	// Stopped is true when Stop interrupted the run.
	Stopped bool
}

// Runner owns every collaborator of a skirmish run.
// It implements server.Service.
type Runner struct {
	cfg     config.Config
	logger  *zap.Logger
	out     io.Writer
	seed    int64
	src     dice.Source
	scripts *scripting.Manager
	ai      *ai.ScriptSelector
	world   *world.World
	party   *combat.Roster
	bands   []*npc.Band
	stopped atomic.Bool
	summary Summary
}

// New loads all content named by cfg, recruits the party and populates the
// world. A zero cfg.Combat.Seed draws a fresh seed, which is logged.
//
// Precondition: cfg has passed Validate; logger and out are non-nil.
// Postcondition: Returns a ready Runner or the first loading error.
func New(cfg config.Config, logger *zap.Logger, out io.Writer) (*Runner, error) {
	seed := cfg.Combat.Seed
	if seed == 0 {
		seed = dice.NewSeed()
	}
	logger.Info("skirmish seed", zap.Int64("seed", seed))
	src := dice.NewSeededSource(seed)
	roller := dice.NewLoggedRoller(src, logger)

	abilities, err := ability.LoadDirectory(cfg.Content.AbilitiesDir)
	if err != nil {
		return nil, fmt.Errorf("loading abilities: %w", err)
	}
	rules, err := ruleset.Load(cfg.Content.ClassesDir, cfg.Content.RacesDir, abilities)
	if err != nil {
		return nil, fmt.Errorf("loading ruleset: %w", err)
	}
	catalog, err := inventory.LoadCatalog(cfg.Content.ItemsDir)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	templates, err := npc.LoadTemplates(cfg.Content.MonstersDir)
	if err != nil {
		return nil, fmt.Errorf("loading monsters: %w", err)
	}
	gen, err := npc.NewGenerator(templates, abilities, catalog, roller)
	if err != nil {
		return nil, fmt.Errorf("building band generator: %w", err)
	}
	logger.Info("content loaded",
		zap.Int("abilities", len(abilities.All())),
		zap.Int("classes", len(rules.Classes())),
		zap.Int("races", len(rules.Races())),
		zap.Int("items", catalog.Len()),
		zap.Int("monsters", len(templates)),
	)

	scripts := scripting.NewManager(roller, logger)
	if cfg.Scripting.AIScriptDir != "" {
		names, err := scripts.LoadDir(cfg.Scripting.AIScriptDir, cfg.Scripting.InstructionLimit)
		if err != nil {
			scripts.Close()
			return nil, fmt.Errorf("loading ai scripts: %w", err)
		}
		logger.Info("ai scripts loaded", zap.Strings("scripts", names))
	}

	recruits, err := character.Recruits(rules, character.DefaultNames, cfg.Skirmish.Recruits, src)
	if err != nil {
		scripts.Close()
		return nil, fmt.Errorf("recruiting party: %w", err)
	}
	party := combat.NewParty(recruits[0])
	party.Capacity = cfg.Combat.PartySize
	for _, c := range recruits[1:] {
		if err := party.Add(c); err != nil {
			scripts.Close()
			return nil, fmt.Errorf("recruiting party: %w", err)
		}
	}

	w, err := world.New(party)
	if err != nil {
		scripts.Close()
		return nil, err
	}
	bands, err := w.Populate(gen, cfg.Skirmish.Bands, cfg.Skirmish.MaxBandLevel)
	if err != nil {
		scripts.Close()
		return nil, err
	}

	sel := ai.NewScriptSelector(scripts, combat.NewRandomSelector(src), logger)
	for _, b := range bands {
		if b.Template.AIScript == "" {
			continue
		}
		if !scripts.Has(b.Template.AIScript) {
			logger.Warn("ai script not loaded; band fights at random",
				zap.String("band", b.Roster.Name),
				zap.String("script", b.Template.AIScript),
			)
			continue
		}
		sel.AssignRoster(b.Roster, b.Template.AIScript)
	}

	return &Runner{
		cfg:     cfg,
		logger:  logger,
		out:     out,
		seed:    seed,
		src:     src,
		scripts: scripts,
		ai:      sel,
		world:   w,
		party:   party,
		bands:   bands,
		summary: Summary{Seed: seed},
	}, nil
}

// Seed returns the seed the run draws from.
func (r *Runner) Seed() int64 { return r.seed }

// Party returns the player party.
func (r *Runner) Party() *combat.Roster { return r.party }

// World returns the world holding the party and the remaining bands.
func (r *Runner) World() *world.World { return r.world }

// Summary returns what the run has done so far.
func (r *Runner) Summary() Summary { return r.summary }

// Start runs the skirmish to completion and releases the script VMs.
func (r *Runner) Start() error {
	defer r.scripts.Close()
	_, err := r.Run()
	return err
}

// Stop makes a running Start return after the current round.
func (r *Runner) Stop() { r.stopped.Store(true) }

// Run fights every hostile roster in the world in order, printing the
// narrative to the output. Between encounters the party equips the loot it
// has won.
//
// Postcondition: the returned Summary is also available from Summary().
func (r *Runner) Run() (Summary, error) {
	r.printf("%s\n\n", r.party)
	for _, m := range r.party.Members {
		r.printf("%s\n", m)
	}
	for _, band := range r.world.Hostile() {
		if r.stopped.Load() {
			r.summary.Stopped = true
			break
		}
		out, finished, err := r.fight(band)
		if err != nil {
			return r.summary, err
		}
		if !finished {
			r.summary.Stopped = true
			break
		}
		r.summary.Fought++
		switch {
		case out.Stalemate:
			r.summary.Stalemates++
		case out.Winner == r.party:
			r.summary.Won++
			r.summary.Gold += out.Gold
			r.summary.Items += len(out.Loot)
			for _, item := range AutoEquip(r.party) {
				r.printf("Equipped %s\n", item.Def)
			}
		default:
			r.summary.PartyDefeated = true
		}
		if r.summary.PartyDefeated {
			break
		}
	}
	r.summary.Survivors = r.party.Len()
	r.printf("\n%s\n", r.party)
	r.logger.Info("skirmish finished",
		zap.Int("fought", r.summary.Fought),
		zap.Int("won", r.summary.Won),
		zap.Bool("party_defeated", r.summary.PartyDefeated),
		zap.Bool("stopped", r.summary.Stopped),
	)
	return r.summary, nil
}

// fight runs one encounter round by round so Stop can interrupt it.
// finished is false when it was interrupted.
func (r *Runner) fight(band *combat.Roster) (out combat.Outcome, finished bool, err error) {
	r.printf("\n%s\n", band)
	enc, err := combat.NewEncounter(r.party, band, nil,
		combat.WithSource(r.src),
		combat.WithAI(r.ai),
		combat.WithWorld(r.world),
		combat.WithLogger(r.logger),
		combat.WithMaxRounds(r.cfg.Combat.MaxRounds),
	)
	if err != nil {
		return out, false, fmt.Errorf("fighting %s: %w", band.Name, err)
	}
	events, err := enc.Lineup()
	if err != nil {
		return out, false, err
	}
	r.narrate(events)
	for !enc.Over() {
		if r.stopped.Load() {
			return out, false, nil
		}
		if events, err = enc.PlayRound(); err != nil {
			return out, false, err
		}
		r.narrate(events)
	}
	before := len(enc.Events())
	out, err = enc.Resolve()
	if err != nil {
		return out, false, err
	}
	r.narrate(out.Events[before:])
	return out, true, nil
}

func (r *Runner) narrate(events []combat.RoundEvent) {
	for _, ev := range events {
		r.printf("%s\n", ev.Narrative)
	}
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}
