// Package ability implements activatable effects and their lifecycle:
// activation, duration countdown, deactivation with stat reversal, and cooldown.
package ability

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/warband/internal/game/stats"
)

// Kind is how an ability is activated.
type Kind string

const (
	// KindInstant resolves and ends on the turn it is used.
	KindInstant Kind = "instant"
	// KindBuff persists for Duration turns of its owner.
	KindBuff Kind = "buff"
	// KindReaction fires automatically when its owner is hit.
	KindReaction Kind = "reaction"
	// KindPassive is permanent from acquisition.
	KindPassive Kind = "passive"
)

// TargetKind is who an ability affects.
type TargetKind string

const (
	TargetSelf  TargetKind = "self"
	TargetTeam  TargetKind = "team"
	TargetEnemy TargetKind = "enemy"
)

// Effects is the stat delta an ability applies to each target.
// Attack, Armor, Dodge and HP are modifiers reversed on deactivation;
// Damage and Heal are one-shot and never reversed.
type Effects struct {
	Attack int `yaml:"attack"`
	Armor  int `yaml:"armor"`
	Dodge  int `yaml:"dodge"`
	HP     int `yaml:"hp"`
	Damage int `yaml:"damage"`
	Heal   int `yaml:"heal"`
}

// Modifiers returns only the reversible part of e.
func (e Effects) Modifiers() stats.Block {
	return stats.Block{Attack: e.Attack, Armor: e.Armor, Dodge: e.Dodge, HP: e.HP}
}

// IsZero reports whether every component is zero.
func (e Effects) IsZero() bool { return e == Effects{} }

// String lists the non-zero components, e.g. "+2 Armor, +1 Dodge".
func (e Effects) String() string {
	return stats.Signed(
		stats.Labelled{Label: "Attack", Value: e.Attack},
		stats.Labelled{Label: "Armor", Value: e.Armor},
		stats.Labelled{Label: "Dodge", Value: e.Dodge},
		stats.Labelled{Label: "HP", Value: e.HP},
		stats.Labelled{Label: "Damage", Value: e.Damage},
		stats.Labelled{Label: "Heal", Value: e.Heal},
	)
}

// Def is the static definition of an ability, loaded from YAML.
type Def struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Kind        Kind       `yaml:"kind"`
	Effects     Effects    `yaml:"effects"`
	TargetCount int        `yaml:"target_count"`
	Target      TargetKind `yaml:"target"`
	Duration    int        `yaml:"duration"`
	Cooldown    int        `yaml:"cooldown"`
}

// Validate checks the definition's invariants.
//
// Postcondition: Returns nil iff the definition can be instantiated.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	switch d.Kind {
	case KindInstant, KindBuff, KindReaction, KindPassive:
	default:
		errs = append(errs, fmt.Errorf("kind must be one of instant, buff, reaction, passive; got %q", d.Kind))
	}
	switch d.Target {
	case TargetSelf, TargetTeam, TargetEnemy:
	default:
		errs = append(errs, fmt.Errorf("target must be one of self, team, enemy; got %q", d.Target))
	}
	if d.TargetCount < 1 {
		errs = append(errs, fmt.Errorf("target_count must be >= 1, got %d", d.TargetCount))
	}
	if d.Target == TargetSelf && d.TargetCount != 1 {
		errs = append(errs, errors.New("self-targeted abilities must have target_count 1"))
	}
	if d.Kind == KindPassive && d.Target != TargetSelf {
		errs = append(errs, errors.New("passive abilities must target self"))
	}
	if d.Duration < 0 {
		errs = append(errs, fmt.Errorf("duration must be >= 0, got %d", d.Duration))
	}
	if d.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("cooldown must be >= 0, got %d", d.Cooldown))
	}
	if len(errs) > 0 {
		return fmt.Errorf("ability %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// String describes the ability the way the party screen lists it:
//
//	"Smoke Bomb (Debuff) (up to 4 Enemy) -2 Attack, -2 Dodge, lasts 3 turn(s), cooldown of 8 turns"
func (d *Def) String() string {
	var b strings.Builder
	b.WriteString(d.Name)
	switch {
	case d.Kind == KindBuff && d.Target == TargetEnemy:
		b.WriteString(" (Debuff)")
	default:
		b.WriteString(" (" + capitalize(string(d.Kind)) + ")")
	}
	if d.Kind != KindPassive {
		b.WriteString(" (")
		if d.Target != TargetSelf {
			fmt.Fprintf(&b, "up to %d ", d.TargetCount)
		}
		b.WriteString(capitalize(string(d.Target)) + ")")
	}
	var tail []string
	if s := d.Effects.String(); s != "" {
		tail = append(tail, s)
	}
	if d.Kind == KindBuff {
		tail = append(tail, fmt.Sprintf("lasts %d turn(s)", d.Duration))
	}
	if d.Kind != KindPassive {
		tail = append(tail, fmt.Sprintf("cooldown of %d turns", d.Cooldown))
	}
	if len(tail) > 0 {
		b.WriteString(" " + strings.Join(tail, ", "))
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Registry holds all known ability definitions keyed by ID.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds def, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil.
func (r *Registry) Register(def *Def) {
	r.defs[def.ID] = def
}

// Get returns the definition for id.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns every definition sorted by ID.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir. A file may hold several
// definitions separated by "---". Unknown fields are rejected.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a populated Registry or the first parse/validation error.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading ability dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		for {
			var def Def
			if err := dec.Decode(&def); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, fmt.Errorf("parsing %q: %w", path, err)
			}
			if err := def.Validate(); err != nil {
				return nil, fmt.Errorf("loading %q: %w", path, err)
			}
			reg.Register(&def)
		}
	}
	return reg, nil
}
