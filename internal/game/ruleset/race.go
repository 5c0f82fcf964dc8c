package ruleset

import (
	"fmt"

	"github.com/cory-johannsen/warband/internal/game/stats"
)

// Race adds flat modifiers at creation and a per-level bonus on level up.
//
// Precondition: ID and Name must be non-empty after loading.
type Race struct {
	ID        string      `yaml:"id"`
	Name      string      `yaml:"name"`
	Article   string      `yaml:"article"`
	Modifiers stats.Block `yaml:"modifiers"`
	Growth    stats.Block `yaml:"growth"`
}

// DisplayName returns the race name with its grammatical article.
// If Article is empty, returns Name alone.
func (r *Race) DisplayName() string {
	if r.Article == "" {
		return r.Name
	}
	return r.Article + " " + r.Name
}

// LoadRaces reads every YAML document in dir as a Race.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed races (may be empty) or a non-nil error.
func LoadRaces(dir string) ([]*Race, error) {
	races, err := loadDir[Race](dir)
	if err != nil {
		return nil, fmt.Errorf("loading races: %w", err)
	}
	for _, r := range races {
		if r.ID == "" || r.Name == "" {
			return nil, fmt.Errorf("loading races: race %q: id and name must not be empty", r.ID)
		}
	}
	return races, nil
}
