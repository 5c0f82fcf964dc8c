// Package stats holds the numeric attribute model shared by combatants,
// equipment, races and class growth tables.
package stats

import (
	"fmt"
	"math"
	"strings"
)

// Block is a set of the four persistent combat attributes. It is used both
// for absolute values and for deltas (equipment bonuses, per-level growth,
// ability modifiers).
type Block struct {
	Attack int `yaml:"attack"`
	Armor  int `yaml:"armor"`
	Dodge  int `yaml:"dodge"`
	HP     int `yaml:"hp"`
}

// Add returns the component-wise sum of b and o.
func (b Block) Add(o Block) Block {
	return Block{
		Attack: b.Attack + o.Attack,
		Armor:  b.Armor + o.Armor,
		Dodge:  b.Dodge + o.Dodge,
		HP:     b.HP + o.HP,
	}
}

// Negate returns b with every component sign-inverted.
func (b Block) Negate() Block {
	return Block{Attack: -b.Attack, Armor: -b.Armor, Dodge: -b.Dodge, HP: -b.HP}
}

// IsZero reports whether every component is zero.
func (b Block) IsZero() bool { return b == Block{} }

// Defense is the displayed defense total, armor plus dodge.
func (b Block) Defense() int { return b.Armor + b.Dodge }

// String lists the non-zero components as signed deltas, e.g. "+2 Armor, -1 Dodge".
func (b Block) String() string {
	return Signed(
		Labelled{"Attack", b.Attack},
		Labelled{"Armor", b.Armor},
		Labelled{"Dodge", b.Dodge},
		Labelled{"HP", b.HP},
	)
}

// Labelled pairs a display label with a delta for Signed.
type Labelled struct {
	Label string
	Value int
}

// Signed formats the non-zero values as "+n Label" joined by ", ".
func Signed(values ...Labelled) string {
	var parts []string
	for _, v := range values {
		if v.Value != 0 {
			parts = append(parts, fmt.Sprintf("%+d %s", v.Value, v.Label))
		}
	}
	return strings.Join(parts, ", ")
}

// TruncTenth truncates x toward zero to one decimal place.
// A small epsilon absorbs binary representation error so that 8.0*1.1
// truncates to 8.8 rather than 8.7.
func TruncTenth(x float64) float64 {
	const eps = 1e-9
	if x < 0 {
		return -math.Floor(-x*10+eps) / 10
	}
	return math.Floor(x*10+eps) / 10
}

// Clamp01 limits x to [0, 1].
func Clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
