package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/warband/internal/game/ability"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/inventory"
	"github.com/cory-johannsen/warband/internal/game/npc"
	"github.com/cory-johannsen/warband/internal/game/stats"
)

var _ combat.RosterRemover = (*World)(nil)

func testRoster(name string, hostile bool) *combat.Roster {
	r := combat.NewBand(combat.NewCombatant(name, stats.Block{Attack: 5, Armor: 5, Dodge: 5, HP: 10}))
	r.Hostile = hostile
	return r
}

func TestNew_DuplicateRoster(t *testing.T) {
	r := testRoster("Rat", true)
	_, err := New(r, r)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate roster ID")
}

func TestWorld_GetAndHostile(t *testing.T) {
	party := testRoster("Ada", false)
	rats := testRoster("Rat", true)
	bats := testRoster("Bat", true)
	w, err := New(party, rats, bats)
	require.NoError(t, err)

	got, ok := w.Get(rats.ID)
	require.True(t, ok)
	assert.Same(t, rats, got)
	_, ok = w.Get("nonexistent")
	assert.False(t, ok)

	assert.Equal(t, []*combat.Roster{rats, bats}, w.Hostile())
	assert.Equal(t, []*combat.Roster{party, rats, bats}, w.Rosters())
}

func TestWorld_Remove(t *testing.T) {
	a, b, c := testRoster("A", true), testRoster("B", true), testRoster("C", true)
	w, err := New(a, b, c)
	require.NoError(t, err)

	assert.True(t, w.Remove(b))
	assert.False(t, w.Remove(b))
	assert.Equal(t, []*combat.Roster{a, c}, w.Rosters())
	_, ok := w.Get(b.ID)
	assert.False(t, ok)
}

func TestWorld_RosterSnapshotIsCopy(t *testing.T) {
	a := testRoster("A", true)
	w, err := New(a)
	require.NoError(t, err)
	snap := w.Rosters()
	snap[0] = nil
	assert.Same(t, a, w.Rosters()[0])
}

func TestWorld_Populate(t *testing.T) {
	tmpl := &npc.Template{ID: "rat", Name: "Rat", MinLevel: 1, MaxLevel: 3, MinSize: 1, MaxSize: 3}
	gen, err := npc.NewGenerator([]*npc.Template{tmpl}, ability.NewRegistry(), inventory.NewCatalog(),
		dice.NewLoggedRoller(dice.NewSeededSource(5), zap.NewNop()))
	require.NoError(t, err)

	w, err := New()
	require.NoError(t, err)
	bands, err := w.Populate(gen, 4, 2)
	require.NoError(t, err)
	require.Len(t, bands, 4)
	assert.Equal(t, 4, w.Len())
	for _, b := range bands {
		assert.True(t, b.Roster.Hostile)
		assert.LessOrEqual(t, b.Level, 2)
	}
}

func TestPropertyWorld_AddRemoveKeepsIndexConsistent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(rt, "n")
		rosters := make([]*combat.Roster, n)
		for i := range rosters {
			rosters[i] = testRoster("R", true)
		}
		w, err := New(rosters...)
		if err != nil {
			rt.Fatal(err)
		}
		removed := 0
		for i, r := range rosters {
			if rapid.Bool().Draw(rt, "remove") {
				if !w.Remove(r) {
					rt.Fatalf("roster %d not removed", i)
				}
				removed++
			}
		}
		if w.Len() != n-removed {
			rt.Fatalf("Len = %d, want %d", w.Len(), n-removed)
		}
		for _, r := range w.Rosters() {
			if _, ok := w.Get(r.ID); !ok {
				rt.Fatalf("roster %s listed but not indexed", r.ID)
			}
		}
	})
}
