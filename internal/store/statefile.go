package store

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leighmacdonald/squad-stats/internal/encoding"
	"github.com/leighmacdonald/squad-stats/internal/state"
)

var (
	ErrStateRead  = errors.New("failed to read state file")
	ErrStateWrite = errors.New("failed to write state file")
)

// LoadState reads a previously saved state. A missing or unreadable state file is not fatal, processing
// simply starts over from the default state.
func LoadState(statePath string) state.State {
	loaded, err := ReadState(statePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to load state, starting fresh", slog.String("path", statePath),
				slog.String("error", err.Error()))
		}

		return state.New()
	}

	return loaded
}

// ReadState reads and decodes the state file at statePath.
func ReadState(statePath string) (state.State, error) {
	file, errOpen := os.Open(statePath)
	if errOpen != nil {
		return state.State{}, errors.Join(errOpen, ErrStateRead)
	}

	defer func(closer io.Closer) {
		if err := closer.Close(); err != nil {
			slog.Error("Failed to close state file", slog.String("error", err.Error()))
		}
	}(file)

	decoded, errDecode := encoding.UnmarshalJSON[state.State](file)
	if errDecode != nil {
		return state.State{}, errors.Join(errDecode, ErrStateRead)
	}

	return decoded.Restore(), nil
}

// SaveState writes the state next to statePath and then renames it into place so a failed write never
// leaves a truncated state file behind.
func SaveState(statePath string, current state.State) error {
	tmpFile, errTmp := os.CreateTemp(filepath.Dir(statePath), filepath.Base(statePath)+".*.tmp")
	if errTmp != nil {
		return errors.Join(errTmp, ErrStateWrite)
	}

	tmpPath := tmpFile.Name()

	if err := encoding.MarshalJSON(tmpFile, current, false); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)

		return errors.Join(err, ErrStateWrite)
	}

	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)

		return errors.Join(err, ErrStateWrite)
	}

	if err := os.Rename(tmpPath, statePath); err != nil {
		_ = os.Remove(tmpPath)

		return errors.Join(err, ErrStateWrite)
	}

	return nil
}
