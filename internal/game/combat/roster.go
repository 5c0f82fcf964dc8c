package combat

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/warband/internal/game/inventory"
)

// PartyCapacity is the most members a player party may hold.
const PartyCapacity = 5

// PartyStartingGold is the gold a new player party starts with.
const PartyStartingGold = 100

// ErrRosterFull is returned by Add when the roster is at capacity.
var ErrRosterFull = errors.New("roster is full")

// Roster is an ordered group of combatants fighting on one side.
// Members[0] is the leader; member order is turn order.
type Roster struct {
	ID        string
	Name      string
	Members   []*Combatant
	Gold      int
	Inventory []*inventory.Item
	// Hostile rosters are monster bands, removed from the world when defeated.
	Hostile bool
	// Capacity bounds Add; zero means unbounded.
	Capacity int
}

// NewBand returns a roster led by leader, named after it.
//
// Precondition: leader must be non-nil.
func NewBand(leader *Combatant) *Roster {
	return &Roster{
		ID:      uuid.New().String(),
		Name:    leader.Name + "'s Band",
		Members: []*Combatant{leader},
	}
}

// NewParty returns a player party led by leader with starting gold and a
// capacity of PartyCapacity.
//
// Precondition: leader must be non-nil.
func NewParty(leader *Combatant) *Roster {
	return &Roster{
		ID:       uuid.New().String(),
		Name:     leader.Name + "'s Party",
		Members:  []*Combatant{leader},
		Gold:     PartyStartingGold,
		Capacity: PartyCapacity,
	}
}

// Leader returns the first member, or nil for an empty roster.
func (r *Roster) Leader() *Combatant {
	if len(r.Members) == 0 {
		return nil
	}
	return r.Members[0]
}

// Len returns the number of members.
func (r *Roster) Len() int { return len(r.Members) }

// Add appends c as the last member.
//
// Postcondition: returns ErrRosterFull when Capacity > 0 and already reached.
func (r *Roster) Add(c *Combatant) error {
	if r.Capacity > 0 && len(r.Members) >= r.Capacity {
		return fmt.Errorf("adding %s to %s: %w", c.Name, r.Name, ErrRosterFull)
	}
	r.Members = append(r.Members, c)
	return nil
}

// Living returns the members that are not dead, in turn order.
func (r *Roster) Living() []*Combatant {
	var out []*Combatant
	for _, m := range r.Members {
		if !m.IsDead() && m.CurrentHP > 0 {
			out = append(out, m)
		}
	}
	return out
}

// Prune removes members with CurrentHP <= 0 and returns them.
//
// Postcondition: every remaining member has CurrentHP > 0; relative order is kept.
func (r *Roster) Prune() []*Combatant {
	var removed []*Combatant
	kept := r.Members[:0]
	for _, m := range r.Members {
		if m.IsDead() || m.CurrentHP <= 0 {
			removed = append(removed, m)
			continue
		}
		kept = append(kept, m)
	}
	clear(r.Members[len(kept):])
	r.Members = kept
	return removed
}

// String renders the roster summary.
func (r *Roster) String() string {
	leader := "none"
	if l := r.Leader(); l != nil {
		leader = l.Name
	}
	return fmt.Sprintf("%s\n     Leader: %s\n     Hostile: %t\n     Member Count: %d\n     Gold: %d",
		r.Name, leader, r.Hostile, len(r.Members), r.Gold)
}
