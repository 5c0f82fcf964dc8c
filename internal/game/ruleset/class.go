package ruleset

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/warband/internal/game/ability"
	"github.com/cory-johannsen/warband/internal/game/stats"
)

// Subclass is the concrete specialisation a character is built from.
//
// Precondition: ID and Name must be non-empty after loading.
type Subclass struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Base        stats.Block `yaml:"base"`
	// Growth is added to the character's stats on every level up.
	Growth stats.Block `yaml:"growth"`
	// Abilities maps a character level to the ability ID granted on reaching it.
	Abilities map[int]string `yaml:"abilities"`

	granted map[int]*ability.Def
}

// AbilityAt returns the ability definition granted at level, if any.
// Only populated once the owning Ruleset has resolved the subclass.
func (s *Subclass) AbilityAt(level int) (*ability.Def, bool) {
	def, ok := s.granted[level]
	return def, ok
}

// Class groups three subclasses under a shared archetype.
//
// Precondition: ID, Name and at least one Subclass must be present after loading.
type Class struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Subclasses  []*Subclass `yaml:"subclasses"`
}

// Subclass returns the subclass with id.
func (c *Class) Subclass(id string) (*Subclass, bool) {
	for _, s := range c.Subclasses {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// Validate reports every structural problem in c.
func (c *Class) Validate() error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if len(c.Subclasses) == 0 {
		errs = append(errs, errors.New("at least one subclass is required"))
	}
	seen := make(map[string]bool, len(c.Subclasses))
	for i, s := range c.Subclasses {
		if s.ID == "" || s.Name == "" {
			errs = append(errs, fmt.Errorf("subclass %d: id and name must not be empty", i))
			continue
		}
		if seen[s.ID] {
			errs = append(errs, fmt.Errorf("subclass %q defined twice", s.ID))
		}
		seen[s.ID] = true
		if s.Base.HP <= 0 {
			errs = append(errs, fmt.Errorf("subclass %q: base hp must be > 0, got %d", s.ID, s.Base.HP))
		}
		for lvl := range s.Abilities {
			if lvl < 1 {
				errs = append(errs, fmt.Errorf("subclass %q: ability level must be >= 1, got %d", s.ID, lvl))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("class %q: %w", c.ID, errors.Join(errs...))
	}
	return nil
}

// LoadClasses reads every YAML document in dir as a Class.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed classes (may be empty) or a non-nil error.
func LoadClasses(dir string) ([]*Class, error) {
	classes, err := loadDir[Class](dir)
	if err != nil {
		return nil, fmt.Errorf("loading classes: %w", err)
	}
	return classes, nil
}
