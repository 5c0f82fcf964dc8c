package combat

import "go.uber.org/zap/zapcore"

// EventKind classifies a RoundEvent.
type EventKind int

const (
	EventLineup EventKind = iota
	EventRoundStart
	EventAttack
	EventAbility
	EventReaction
	EventExpired
	EventLevelUp
	EventDeath
	EventOutcome
)

var eventKindNames = [...]string{
	EventLineup:     "lineup",
	EventRoundStart: "round_start",
	EventAttack:     "attack",
	EventAbility:    "ability",
	EventReaction:   "reaction",
	EventExpired:    "expired",
	EventLevelUp:    "level_up",
	EventDeath:      "death",
	EventOutcome:    "outcome",
}

// String returns the snake_case event name.
func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return "unknown"
	}
	return eventKindNames[k]
}

// RoundEvent records one thing that happened during an encounter.
type RoundEvent struct {
	Kind  EventKind
	Round int
	// Side is the name of the actor's roster.
	Side      string
	ActorID   string
	ActorName string
	// Targets holds target display names for attacks and abilities.
	Targets []string
	// Attack is set for EventAttack only.
	Attack    *AttackResult
	Narrative string
}

// MarshalLogObject lets events be logged with zap.Object.
func (e RoundEvent) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("kind", e.Kind.String())
	enc.AddInt("round", e.Round)
	if e.Side != "" {
		enc.AddString("side", e.Side)
	}
	if e.ActorName != "" {
		enc.AddString("actor", e.ActorName)
	}
	if e.Attack != nil {
		enc.AddBool("hit", e.Attack.Hit)
		enc.AddFloat64("damage", e.Attack.Damage)
	}
	enc.AddString("narrative", e.Narrative)
	return nil
}
