package state

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/leighmacdonald/squad-stats/internal/squad/events"
)

// ApplyEvent folds a single parsed event into a new state.
func (s State) ApplyEvent(evt events.Event) (State, error) {
	switch data := evt.Data.(type) {
	case events.MapLoadEvent:
		return s.onMapLoad(evt.Timestamp, data), nil
	case events.MatchStateEvent:
		return s.onMatchState(evt.Timestamp, data)
	case events.SpawnEvent:
		return s.onSpawn(evt.Timestamp, data)
	case events.DamageEvent:
		return s.onDamage(data)
	case events.WoundEvent:
		return s.onWound(evt.Timestamp, data)
	case events.ReviveEvent:
		return s.onRevive(data)
	case events.ChangeStateEvent:
		return s.onChangeState(data), nil
	default:
		return s, nil
	}
}

// onMapLoad starts a new session which immediately becomes the current one.
func (s State) onMapLoad(timestamp time.Time, evt events.MapLoadEvent) State {
	next := s
	next.Games = append(slices.Clip(s.Games), Game{
		Map:       evt.MapName,
		Players:   map[string]Player{},
		StartTime: timestamp,
	})
	next.CurrentStart = timestamp
	next.handle = len(next.Games)

	slog.Debug("Game started", slog.String("map", evt.MapName), slog.Time("start", timestamp))

	return next
}

// onMatchState closes the current session when the match enters the post match state. The name
// registry only lives as long as a session.
func (s State) onMatchState(timestamp time.Time, evt events.MatchStateEvent) (State, error) {
	if evt.To != events.MatchStatePostMatch || len(s.Games) == 0 {
		return s, nil
	}

	next, err := s.withCurrentGame(func(game *Game) error {
		game.EndTime = &timestamp

		slog.Info("Game ended", slog.String("map", game.Map), slog.Time("start", game.StartTime),
			slog.Time("end", timestamp), slog.Int("players", game.PlayerCount()))

		return nil
	})
	if err != nil {
		return s, err
	}

	next.Names = Names{}

	return next, nil
}

func (s State) onSpawn(timestamp time.Time, evt events.SpawnEvent) (State, error) {
	return s.withCurrentGame(func(game *Game) error {
		player, found := game.Players[evt.Player]
		if !found {
			// First spawn leaves the player inactive, only a respawn marks them as playing.
			player = newPlayer(evt.Player)
		} else {
			player.State = Playing
			player.HitPoints = spawnHitPoints
			player.LastDamaged = nil
		}

		player.Classes = unionClasses(player.Classes, evt.Role)
		player.LastSpawn = &timestamp
		game.Players[evt.Player] = player

		return nil
	})
}

func (s State) onDamage(evt events.DamageEvent) (State, error) {
	target, names, errName := s.Names.Resolve(evt.Target)
	if errName != nil {
		return s, errName
	}

	next, err := s.withCurrentGame(func(game *Game) error {
		player, found := game.Players[target]
		if !found {
			return fmt.Errorf("%w: %q damaged before spawning", ErrUnknownPlayer, target)
		}

		// Damage from nothing (falls, suicide) keeps whoever hurt them last.
		if evt.Shooter != events.NullEntity {
			shooter := evt.Shooter
			player.LastDamaged = &shooter
		}

		player.HitPoints -= evt.Amount
		game.Players[target] = player

		return nil
	})
	if err != nil {
		return s, err
	}

	next.Names = names

	return next, nil
}

func (s State) onWound(timestamp time.Time, evt events.WoundEvent) (State, error) {
	target, names, errName := s.Names.Resolve(evt.Target)
	if errName != nil {
		return s, errName
	}

	next, err := s.withCurrentGame(func(game *Game) error {
		downed, found := game.Players[target]
		if !found {
			return fmt.Errorf("%w: %q downed before spawning", ErrUnknownPlayer, target)
		}

		downed.LastDown = &timestamp

		if downed.LastDamaged == nil {
			game.Players[target] = downed

			return nil
		}

		killer, resolved, errKiller := names.Resolve(*downed.LastDamaged)
		if errKiller != nil {
			return errKiller
		}

		names = resolved

		if _, killerFound := game.Players[killer]; !killerFound {
			return fmt.Errorf("%w: killer %q is not in the game", ErrUnknownPlayer, killer)
		}

		downed.LastDamaged = nil
		downed.KilledBy = incr(downed.KilledBy, killer)
		game.Players[target] = downed

		// Read the killer back after the write so a self kill updates a single record.
		killing := game.Players[killer]
		killing.Killed = incr(killing.Killed, target)
		game.Players[killer] = killing

		return nil
	})
	if err != nil {
		return s, err
	}

	next.Names = names

	return next, nil
}

// onRevive uses exact names, both come from the same channel in their short form. Unknown names
// are ignored.
func (s State) onRevive(evt events.ReviveEvent) (State, error) {
	return s.withCurrentGame(func(game *Game) error {
		if _, found := game.Players[evt.Reviver]; !found {
			return nil
		}

		if _, found := game.Players[evt.Revivee]; !found {
			return nil
		}

		reviver := game.Players[evt.Reviver]
		reviver.Revived = incr(reviver.Revived, evt.Revivee)
		game.Players[evt.Reviver] = reviver

		revivee := game.Players[evt.Revivee]
		revivee.RevivedBy = incr(revivee.RevivedBy, evt.Revivee)
		revivee.HitPoints = reviveHitPoints
		game.Players[evt.Revivee] = revivee

		return nil
	})
}

func (s State) onChangeState(evt events.ChangeStateEvent) State {
	next := s
	next.Names = s.Names.Observe(evt.Player)

	return next
}
