package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/warband/internal/game/stats"
)

func TestBlock_AddNegate(t *testing.T) {
	a := stats.Block{Attack: 2, Armor: -1, Dodge: 3, HP: 4}
	b := stats.Block{Attack: 1, Armor: 1, Dodge: 1, HP: 1}
	assert.Equal(t, stats.Block{Attack: 3, Armor: 0, Dodge: 4, HP: 5}, a.Add(b))
	assert.True(t, a.Add(a.Negate()).IsZero())
	assert.Equal(t, 2, a.Defense())
}

func TestBlock_String(t *testing.T) {
	assert.Equal(t, "+2 Armor, -2 Dodge", stats.Block{Armor: 2, Dodge: -2}.String())
	assert.Equal(t, "", stats.Block{}.String())
}

func TestTruncTenth(t *testing.T) {
	assert.Equal(t, 8.8, stats.TruncTenth(8.0*1.1))
	assert.Equal(t, 9.5, stats.TruncTenth(9.59))
	assert.Equal(t, 6.4, stats.TruncTenth(8*0.8))
	assert.Equal(t, -1.2, stats.TruncTenth(-1.29))
	assert.Equal(t, 0.0, stats.TruncTenth(0))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, stats.Clamp01(-0.5))
	assert.Equal(t, 1.0, stats.Clamp01(1.5))
	assert.Equal(t, 0.75, stats.Clamp01(0.75))
}

func TestPropertyTruncTenth_NeverIncreasesMagnitude(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Float64Range(-1000, 1000).Draw(rt, "x")
		got := stats.TruncTenth(x)
		if x >= 0 {
			assert.LessOrEqual(rt, got, x+1e-8)
			assert.Greater(rt, got, x-0.1-1e-8)
		} else {
			assert.GreaterOrEqual(rt, got, x-1e-8)
		}
	})
}
