package events

import (
	"time"
)

// Channel is the log category tag that prefixes every message, eg: LogSquad.
type Channel string

const (
	ChannelSquad      Channel = "LogSquad"
	ChannelSquadTrace Channel = "LogSquadTrace"
	ChannelGameState  Channel = "LogGameState"
	ChannelWorld      Channel = "LogWorld"
)

// NullEntity is what the server prints in place of a missing actor or role.
const NullEntity = "nullptr"

// MatchStatePostMatch is the match state marking the end of a session.
const MatchStatePostMatch = "WaitingPostMatch"

type EventType int

const (
	MapLoad EventType = iota
	MatchState
	Spawn
	Damage
	Wound
	Revive
	ChangeState
)

func (t EventType) String() string {
	switch t {
	case MapLoad:
		return "map_load"
	case MatchState:
		return "match_state"
	case Spawn:
		return "spawn"
	case Damage:
		return "damage"
	case Wound:
		return "wound"
	case Revive:
		return "revive"
	case ChangeState:
		return "change_state"
	default:
		return "unknown"
	}
}

// Line is a single classified log line.
type Line struct {
	Timestamp time.Time
	Frame     string
	Channel   Channel
	Message   string
	Raw       string
}

// Event is a typed event parsed out of a Line message. Data holds one of the *Event
// structs below depending on Type.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      any
}

type MapLoadEvent struct {
	MapName string
}

type MatchStateEvent struct {
	From string
	To   string
}

type SpawnEvent struct {
	Player string
	Role   string
}

type DamageEvent struct {
	Target  string
	Amount  float64
	Shooter string
	Weapon  string
}

type WoundEvent struct {
	Target  string
	Amount  float64
	Shooter string
	Weapon  string
}

type ReviveEvent struct {
	Reviver string
	Revivee string
}

type ChangeStateEvent struct {
	Player   string
	OldState string
	NewState string
}
