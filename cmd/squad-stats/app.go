package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/leighmacdonald/squad-stats/internal/config"
	"github.com/leighmacdonald/squad-stats/internal/console"
	"github.com/leighmacdonald/squad-stats/internal/report"
	"github.com/leighmacdonald/squad-stats/internal/squad/events"
	"github.com/leighmacdonald/squad-stats/internal/state"
	"github.com/leighmacdonald/squad-stats/internal/store"
	"github.com/leighmacdonald/squad-stats/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// run is the main entry point of squad-stats.
func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	statePath, logPath := args[0], args[1]

	userConfig, errConfig := config.NewLoader(cfgFile).Read()
	if errConfig != nil {
		return errors.Join(errConfig, errApp)
	}

	level, errLevel := config.ParseLevel(userConfig.LogLevel)
	if errLevel != nil {
		return errors.Join(errLevel, errApp)
	}

	logFile, errLogger := config.LoggerInit(userConfig.LogFile, level)
	if errLogger != nil {
		return errors.Join(errLogger, errApp)
	}

	defer func(closer io.Closer) {
		if err := closer.Close(); err != nil {
			slog.Error("Failed to close log file", slog.String("error", err.Error()))
		}
	}(logFile)

	slog.Debug("Starting squad-stats", slog.String("version", BuildVersion),
		slog.String("commit", BuildCommit), slog.String("date", BuildDate))

	initial, logSize, errLoad := load(ctx, statePath, logPath)
	if errLoad != nil {
		return errors.Join(errLoad, errApp)
	}

	current, errProcess := process(ctx, userConfig, initial, logPath, logSize)
	if errProcess != nil {
		return errors.Join(errProcess, errApp)
	}

	if err := report.Write(os.Stdout, userConfig.ReportFormat, current); err != nil {
		return errors.Join(err, errApp)
	}

	if err := store.SaveState(statePath, current); err != nil {
		return errors.Join(err, errApp)
	}

	if userConfig.DatabasePath != "" {
		if err := export(ctx, userConfig.DatabasePath, current); err != nil {
			return errors.Join(err, errApp)
		}
	}

	return nil
}

// load reads the prior state and sizes the log file concurrently.
func load(ctx context.Context, statePath string, logPath string) (state.State, int64, error) {
	var (
		initial state.State
		logSize int64
	)

	waitGroup, _ := errgroup.WithContext(ctx)

	waitGroup.Go(func() error {
		initial = store.LoadState(statePath)

		return nil
	})

	waitGroup.Go(func() error {
		info, err := os.Stat(logPath)
		if err != nil {
			return errors.Join(err, console.ErrOpen)
		}

		logSize = info.Size()

		return nil
	})

	if err := waitGroup.Wait(); err != nil {
		return state.State{}, 0, err
	}

	return initial, logSize, nil
}

func process(ctx context.Context, userConfig config.Config, initial state.State, logPath string, logSize int64) (state.State, error) {
	accumulator := state.NewAccumulator(initial, events.NewParser(), userConfig.Strict)

	var progress *ui.Progress
	if userConfig.Progress {
		progress = ui.NewProgress(os.Stderr, logSize)
		accumulator.OnLine = func(raw string) {
			// +1 for the newline the reader strips.
			progress.Add(len(raw) + 1)
		}
	}

	source := console.NewLocal(logPath)
	if err := source.Open(ctx); err != nil {
		return state.State{}, err
	}

	errStart := source.Start(ctx, accumulator)

	if errClose := source.Close(ctx); errClose != nil {
		slog.Error("Failed to close log", slog.String("error", errClose.Error()))
	}

	if progress != nil {
		progress.Done()
	}

	if errStart != nil {
		return state.State{}, errStart
	}

	lines, skipped := accumulator.Lines()
	slog.Info("Processed log", slog.String("path", logPath), slog.Int("lines", lines), slog.Int("skipped", skipped))

	return accumulator.State(), nil
}

func export(ctx context.Context, databasePath string, current state.State) error {
	database, errDB := store.Open(ctx, databasePath, true)
	if errDB != nil {
		return errDB
	}

	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Error closing database", slog.String("error", err.Error()))
		}
	}()

	return store.Export(ctx, database, current)
}
