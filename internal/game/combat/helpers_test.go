package combat_test

import (
	"github.com/cory-johannsen/warband/internal/game/ability"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/stats"
)

// seqSrc replays floats in order, then repeats the last one. Intn always
// returns 0.
type seqSrc struct {
	floats []float64
	i      int
}

func (s *seqSrc) Intn(_ int) int { return 0 }

func (s *seqSrc) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[min(s.i, len(s.floats)-1)]
	s.i++
	return v
}

// alwaysHit draws multiplier 1.0 (0.5) and a hit draw of 0.
func alwaysHit() *seqSrc { return &seqSrc{floats: []float64{0.5, 0}} }

// cycleSrc repeats its float draws in order forever.
type cycleSrc struct {
	floats []float64
	i      int
}

func (s *cycleSrc) Intn(_ int) int { return 0 }

func (s *cycleSrc) Float64() float64 {
	v := s.floats[s.i%len(s.floats)]
	s.i++
	return v
}

func newFighter(name string, atk, armor, dodge, hp int) *combat.Combatant {
	return combat.NewCombatant(name, stats.Block{Attack: atk, Armor: armor, Dodge: dodge, HP: hp})
}

func riposteDef() *ability.Def {
	return &ability.Def{ID: "riposte", Name: "Riposte", Kind: ability.KindReaction,
		Effects: ability.Effects{Damage: 5}, TargetCount: 1, Target: ability.TargetEnemy, Cooldown: 2}
}

func smokeBombDef() *ability.Def {
	return &ability.Def{ID: "smoke_bomb", Name: "Smoke Bomb", Kind: ability.KindBuff,
		Effects: ability.Effects{Attack: -2, Dodge: -2}, TargetCount: 4, Target: ability.TargetEnemy, Duration: 3, Cooldown: 8}
}

// scriptedSelector answers from queues and records every request.
type scriptedSelector struct {
	actions  []combat.Action
	targets  []int
	requests []combat.TargetRequest
}

func (s *scriptedSelector) ChooseAction(_ *combat.Combatant, _ []int, _ int) combat.Action {
	if len(s.actions) == 0 {
		return combat.Action{Type: combat.ActionAttack}
	}
	a := s.actions[0]
	s.actions = s.actions[1:]
	return a
}

func (s *scriptedSelector) ChooseTarget(_ *combat.Combatant, req combat.TargetRequest) int {
	s.requests = append(s.requests, req)
	if len(s.targets) == 0 {
		return 0
	}
	t := s.targets[0]
	s.targets = s.targets[1:]
	return t
}
