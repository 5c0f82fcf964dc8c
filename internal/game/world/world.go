// Package world holds the rosters that exist outside of any single encounter.
package world

import (
	"fmt"
	"sync"

	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/npc"
)

// World provides thread-safe access to every roster in play, in insertion
// order, and satisfies combat.RosterRemover.
type World struct {
	mu      sync.RWMutex
	rosters []*combat.Roster
	byID    map[string]*combat.Roster
}

// New creates a World holding rosters.
//
// Postcondition: Returns a World with every roster indexed by ID, or an error
// on a duplicate roster ID.
func New(rosters ...*combat.Roster) (*World, error) {
	w := &World{byID: make(map[string]*combat.Roster, len(rosters))}
	for _, r := range rosters {
		if err := w.Add(r); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Add appends r.
//
// Precondition: r must be non-nil.
// Postcondition: Returns an error if a roster with the same ID is already present.
func (w *World) Add(r *combat.Roster) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.byID[r.ID]; exists {
		return fmt.Errorf("duplicate roster ID %q (%s)", r.ID, r.Name)
	}
	w.byID[r.ID] = r
	w.rosters = append(w.rosters, r)
	return nil
}

// Remove drops r and reports whether it was present.
func (w *World) Remove(r *combat.Roster) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.byID[r.ID]; !ok {
		return false
	}
	delete(w.byID, r.ID)
	for i, other := range w.rosters {
		if other.ID == r.ID {
			w.rosters = append(w.rosters[:i], w.rosters[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the roster with the given ID.
//
// Postcondition: Returns (roster, true) if found, or (nil, false) otherwise.
func (w *World) Get(id string) (*combat.Roster, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.byID[id]
	return r, ok
}

// Len returns the number of rosters.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.rosters)
}

// Rosters returns a snapshot of every roster in insertion order.
func (w *World) Rosters() []*combat.Roster {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*combat.Roster, len(w.rosters))
	copy(out, w.rosters)
	return out
}

// Hostile returns a snapshot of the hostile rosters in insertion order.
func (w *World) Hostile() []*combat.Roster {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []*combat.Roster
	for _, r := range w.rosters {
		if r.Hostile {
			out = append(out, r)
		}
	}
	return out
}

// Populate adds n random bands from gen, levels capped at maxLevel, and
// returns them.
//
// Precondition: n >= 0; maxLevel >= 1.
// Postcondition: on error, bands generated before the failure remain added.
func (w *World) Populate(gen *npc.Generator, n, maxLevel int) ([]*npc.Band, error) {
	bands := make([]*npc.Band, 0, n)
	for i := 0; i < n; i++ {
		b, err := gen.RandomBand(maxLevel)
		if err != nil {
			return bands, fmt.Errorf("populating world: %w", err)
		}
		if err := w.Add(b.Roster); err != nil {
			return bands, fmt.Errorf("populating world: %w", err)
		}
		bands = append(bands, b)
	}
	return bands, nil
}
