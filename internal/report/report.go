// Package report renders the final state for the user, either as JSON for other tools to consume or as
// a set of tables for people.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/leighmacdonald/squad-stats/internal/config"
	"github.com/leighmacdonald/squad-stats/internal/encoding"
	"github.com/leighmacdonald/squad-stats/internal/state"
	"github.com/leighmacdonald/squad-stats/internal/ui/styles"
	"github.com/muesli/reflow/truncate"
)

var (
	ErrWrite  = errors.New("failed to write report")
	ErrFormat = errors.New("unknown report format")
)

const nameWidth = 24

// Document is the JSON report. State is included as-is so the output can double as a state file.
type Document struct {
	Lifetime []state.LifetimeRecord `json:"lifetime"`
	State    state.State            `json:"state"`
}

func Write(writer io.Writer, format config.ReportFormat, current state.State) error {
	switch format {
	case config.FormatJSON, "":
		if err := encoding.MarshalJSON(writer, Document{Lifetime: state.Lifetime(current), State: current}, true); err != nil {
			return errors.Join(err, ErrWrite)
		}

		return nil
	case config.FormatTable:
		output := strings.Join([]string{
			styles.Title.Render("Sessions"),
			SessionTable(current),
			styles.Title.Render("Lifetime"),
			LifetimeTable(state.Lifetime(current)),
		}, "\n")

		if _, err := fmt.Fprintln(writer, output); err != nil {
			return errors.Join(err, ErrWrite)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", ErrFormat, format)
	}
}

func newTable(headers ...string) *table.Table {
	numeric := map[int]bool{}
	for idx, header := range headers {
		switch header {
		case "Name", "Map", "Classes", "Started":
		default:
			numeric[idx] = true
		}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Gray)).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style

			switch {
			case row == table.HeaderRow:
				return styles.HeaderStyle
			case row%2 == 0:
				style = styles.EvenRowStyle
			default:
				style = styles.OddRowStyle
			}

			if numeric[col] {
				style = style.Align(lipgloss.Right)
			}

			return style
		}).
		Headers(headers...)
}

// LifetimeTable renders one row per player with their totals across all sessions.
func LifetimeTable(records []state.LifetimeRecord) string {
	tbl := newTable("Name", "Kills", "Deaths", "Revives", "Revived", "Sessions", "Classes")

	for _, record := range records {
		tbl.Row(
			truncate.StringWithTail(record.Name, nameWidth, "…"),
			strconv.Itoa(record.TotalKills()),
			strconv.Itoa(record.TotalDeaths()),
			strconv.Itoa(record.TotalRevives()),
			strconv.Itoa(record.TotalRevived()),
			strconv.Itoa(record.Sessions),
			strings.Join(record.Classes, ", "))
	}

	return tbl.String()
}

// SessionTable renders one row per game in the order they were played.
func SessionTable(current state.State) string {
	tbl := newTable("Map", "Started", "Duration", "Players", "Kills")

	for _, game := range current.Games {
		kills := 0
		for _, player := range game.Players {
			kills += player.KillCount()
		}

		tbl.Row(
			game.Map,
			game.StartTime.Format(time.DateTime),
			duration(game),
			strconv.Itoa(game.PlayerCount()),
			humanize.Comma(int64(kills)))
	}

	return tbl.String()
}

func duration(game state.Game) string {
	if game.EndTime == nil {
		return "in progress"
	}

	return strings.TrimSpace(humanize.RelTime(game.StartTime, *game.EndTime, "", ""))
}
