package state

import (
	"errors"
	"log/slog"

	"github.com/leighmacdonald/squad-stats/internal/squad/events"
)

// Apply folds a single raw log line into a new state. Lines that do not parse, and lines older than
// the last processed timestamp, are dropped entirely leaving the state untouched. Otherwise the
// watermark advances and every event found on the line is applied in order.
//
// The returned state is always usable. When an event fails, the remaining events on the line are
// still applied and the failures are returned joined together.
func (s State) Apply(parser *events.Parser, raw string) (State, error) {
	line, errLine := parser.ParseLine(raw)
	if errLine != nil {
		if errors.Is(errLine, events.ErrParseTimestamp) {
			slog.Debug("Dropping line with invalid timestamp", slog.String("error", errLine.Error()),
				slog.String("line", raw))
		}

		return s, nil
	}

	if line.Timestamp.Before(s.LastTimestamp) {
		return s, nil
	}

	next := s
	next.LastTimestamp = line.Timestamp

	var errs []error

	for _, evt := range parser.Events(line) {
		updated, errEvent := next.ApplyEvent(evt)
		if errEvent != nil {
			errs = append(errs, errEvent)

			continue
		}

		next = updated
	}

	return next, errors.Join(errs...)
}

// Accumulator owns the running state while a log is being processed. It implements
// console.Receiver so it can be fed directly by a log source.
type Accumulator struct {
	parser *events.Parser
	state  State
	// strict aborts on the first unresolvable player or session instead of skipping the line.
	strict bool
	// OnLine, when set, is called for every raw line received, eg: to update a progress bar.
	OnLine  func(raw string)
	lines   int
	skipped int
}

func NewAccumulator(initial State, parser *events.Parser, strict bool) *Accumulator {
	return &Accumulator{
		parser: parser,
		state:  initial.Restore(),
		strict: strict,
	}
}

// Send folds the next line. In strict mode a failed event is returned as an error and the state is left
// as it was before the line.
func (a *Accumulator) Send(raw string) error {
	a.lines++
	if a.OnLine != nil {
		a.OnLine(raw)
	}

	next, err := a.state.Apply(a.parser, raw)
	if err != nil {
		if a.strict {
			return err
		}

		a.skipped++
		slog.Warn("Skipping invalid event", slog.String("error", err.Error()), slog.String("line", raw))
	}

	a.state = next

	return nil
}

func (a *Accumulator) State() State {
	return a.state
}

// Lines returns how many lines were received and how many contained events that had to be skipped.
func (a *Accumulator) Lines() (int, int) {
	return a.lines, a.skipped
}
