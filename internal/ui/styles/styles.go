package styles

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	Accent = lipgloss.Color("#f4722b")

	Black  = lipgloss.Color("#111111")
	Gray   = lipgloss.Color("#3e3e3e")
	White  = lipgloss.Color("#cccccc")
	Whiter = lipgloss.Color("#aaaaaa")

	Red = lipgloss.Color("#B8383B")
	Blu = lipgloss.Color("#5885A2")

	ColourGenuine = lipgloss.Color("#4d7455")
	ColourVintage = lipgloss.Color("#476291")

	Title = lipgloss.NewStyle().Bold(true).Foreground(Accent).PaddingTop(1)

	HeaderStyle = lipgloss.NewStyle().Foreground(Blu).Bold(true).Align(lipgloss.Left).PaddingLeft(1).PaddingRight(1)
	CellStyle   = lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)

	EvenRowStyle = CellStyle.Foreground(White)
	OddRowStyle  = CellStyle.Foreground(Whiter)
	NumberStyle  = CellStyle.Align(lipgloss.Right)

	ProgressLabel = lipgloss.NewStyle().Foreground(ColourVintage)
)
