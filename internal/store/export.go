package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/leighmacdonald/squad-stats/internal/state"
)

var ErrExport = errors.New("failed to export state")

// Export replaces the contents of the database with the sessions in current and the lifetime records
// derived from them. Everything is written in a single transaction.
func Export(ctx context.Context, database *sql.DB, current state.State) error {
	transaction, errTx := database.BeginTx(ctx, nil)
	if errTx != nil {
		return errors.Join(errTx, ErrExport)
	}

	if err := export(ctx, transaction, current); err != nil {
		if errRollback := transaction.Rollback(); errRollback != nil {
			return errors.Join(err, errRollback, ErrExport)
		}

		return errors.Join(err, ErrExport)
	}

	if err := transaction.Commit(); err != nil {
		return errors.Join(err, ErrExport)
	}

	slog.Debug("Exported state", slog.Int("games", len(current.Games)))

	return nil
}

func export(ctx context.Context, transaction *sql.Tx, current state.State) error {
	for _, table := range []string{"player_kill", "player_lifetime", "game_player", "game"} {
		if _, err := transaction.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	for idx, game := range current.Games {
		gameID := idx + 1

		var endTime *string
		if game.EndTime != nil {
			formatted := game.EndTime.Format(time.RFC3339Nano)
			endTime = &formatted
		}

		if _, err := transaction.ExecContext(ctx,
			`INSERT INTO game (game_id, map, start_time, end_time) VALUES (?, ?, ?, ?)`,
			gameID, game.Map, game.StartTime.Format(time.RFC3339Nano), endTime); err != nil {
			return err
		}

		for _, player := range game.Players {
			if _, err := transaction.ExecContext(ctx,
				`INSERT INTO game_player (game_id, name, state, hitpoints, kills, deaths, revives, revived, classes)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				gameID, player.Name, string(player.State), player.HitPoints, player.KillCount(), player.DeathCount(),
				player.ReviveCount(), player.RevivedCount(), strings.Join(player.Classes, ",")); err != nil {
				return err
			}
		}
	}

	for _, record := range state.Lifetime(current) {
		if _, err := transaction.ExecContext(ctx,
			`INSERT INTO player_lifetime (name, kills, deaths, revives, revived, sessions, classes)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			record.Name, record.TotalKills(), record.TotalDeaths(), record.TotalRevives(), record.TotalRevived(),
			record.Sessions, strings.Join(record.Classes, ",")); err != nil {
			return err
		}

		for victim, count := range record.Kills {
			if _, err := transaction.ExecContext(ctx,
				`INSERT INTO player_kill (killer, victim, count) VALUES (?, ?, ?)`,
				record.Name, victim, count); err != nil {
				return err
			}
		}
	}

	return nil
}
