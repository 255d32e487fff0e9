// Package state folds parsed log events into an immutable snapshot of every game session seen
// so far. Every operation returns a new State, the receiver is never modified.
package state

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"time"
)

var (
	ErrUnknownPlayer   = errors.New("unknown player")
	ErrSessionNotFound = errors.New("current session not found")
)

// Epoch is the starting point for a state that has never processed a log.
var Epoch = time.Date(1985, 9, 21, 5, 0, 0, 0, time.UTC)

type PlayerState string

const (
	Playing  PlayerState = "Playing"
	Inactive PlayerState = "Inactive"
)

const (
	spawnHitPoints  = 100.0
	reviveHitPoints = 5.0
)

type Player struct {
	Name        string         `json:"name"`
	State       PlayerState    `json:"state"`
	HitPoints   float64        `json:"hitpoints"`
	LastDamaged *string        `json:"last_damaged"`
	LastSpawn   *time.Time     `json:"last_spawn_time"`
	LastDown    *time.Time     `json:"last_down_time"`
	KilledBy    map[string]int `json:"players_killed_by"`
	Killed      map[string]int `json:"players_killed"`
	Classes     []string       `json:"classes_played"`
	RevivedBy   map[string]int `json:"players_revived_by"`
	Revived     map[string]int `json:"players_revived"`
}

func newPlayer(name string) Player {
	return Player{
		Name:      name,
		State:     Inactive,
		HitPoints: spawnHitPoints,
		KilledBy:  map[string]int{},
		Killed:    map[string]int{},
		Classes:   []string{},
		RevivedBy: map[string]int{},
		Revived:   map[string]int{},
	}
}

func (p Player) KillCount() int {
	return sum(p.Killed)
}

func (p Player) DeathCount() int {
	return sum(p.KilledBy)
}

func (p Player) ReviveCount() int {
	return sum(p.Revived)
}

func (p Player) RevivedCount() int {
	return sum(p.RevivedBy)
}

// Game is a single session on one map.
type Game struct {
	Map       string            `json:"map"`
	Players   map[string]Player `json:"players"`
	StartTime time.Time         `json:"start_time"`
	EndTime   *time.Time        `json:"end_time,omitempty"`
}

func (g Game) PlayerCount() int {
	return len(g.Players)
}

// State is the accumulated result of processing logs. Games are ordered by StartTime.
type State struct {
	Games         []Game    `json:"games"`
	CurrentStart  time.Time `json:"current_game_start_time"`
	LastTimestamp time.Time `json:"last_timestamp"`
	Names         Names     `json:"player_names"`
	// handle is the index+1 of the current game, zero when it has not been located yet.
	handle int
}

// New returns the default empty state.
func New() State {
	return State{
		Games:         []Game{},
		CurrentStart:  Epoch,
		LastTimestamp: Epoch,
		Names:         Names{},
	}
}

// Restore locates the current session after the state has been decoded. It is not an error for
// the current session to be missing here, only using it is.
func (s State) Restore() State {
	if s.Games == nil {
		s.Games = []Game{}
	}

	if s.Names == nil {
		s.Names = Names{}
	}

	s.handle = 0
	if idx, found := s.search(); found {
		s.handle = idx + 1
	}

	return s
}

// Current returns the index of the current session within Games.
func (s State) Current() (int, error) {
	if s.handle > 0 && s.handle <= len(s.Games) && s.Games[s.handle-1].StartTime.Equal(s.CurrentStart) {
		return s.handle - 1, nil
	}

	idx, found := s.search()
	if !found {
		return 0, fmt.Errorf("%w: %s", ErrSessionNotFound, s.CurrentStart.Format(time.RFC3339))
	}

	return idx, nil
}

// CurrentGame returns a copy of the current session.
func (s State) CurrentGame() (Game, error) {
	idx, err := s.Current()
	if err != nil {
		return Game{}, err
	}

	return s.Games[idx], nil
}

// search does a binary search over the session start times. When several sessions share a start
// time the last one is the current one since sessions are only ever appended.
func (s State) search() (int, bool) {
	next := sort.Search(len(s.Games), func(i int) bool {
		return s.Games[i].StartTime.After(s.CurrentStart)
	})

	if next == 0 || !s.Games[next-1].StartTime.Equal(s.CurrentStart) {
		return 0, false
	}

	return next - 1, true
}

// withCurrentGame runs update against a copy of the current session and returns a new state
// containing the result. The prior state shares no mutable data with the copy handed to update.
func (s State) withCurrentGame(update func(game *Game) error) (State, error) {
	idx, errIdx := s.Current()
	if errIdx != nil {
		return s, errIdx
	}

	game := s.Games[idx]
	game.Players = maps.Clone(game.Players)
	if game.Players == nil {
		game.Players = map[string]Player{}
	}

	if err := update(&game); err != nil {
		return s, err
	}

	next := s
	next.Games = slices.Clone(s.Games)
	next.Games[idx] = game
	next.handle = idx + 1

	return next, nil
}

// incr returns a copy of counts with key incremented.
func incr(counts map[string]int, key string) map[string]int {
	out := maps.Clone(counts)
	if out == nil {
		out = map[string]int{}
	}

	out[key]++

	return out
}

// unionClasses returns the sorted union of the existing classes and role.
func unionClasses(classes []string, role string) []string {
	if slices.Contains(classes, role) {
		return classes
	}

	out := append(slices.Clone(classes), role)
	slices.Sort(out)

	return out
}
