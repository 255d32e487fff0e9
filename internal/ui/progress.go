package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
	"github.com/leighmacdonald/squad-stats/internal/ui/styles"
)

const progressWidth = 40

// Progress renders a single line progress bar tracking how many bytes of the log have been processed.
type Progress struct {
	bar      progress.Model
	out      io.Writer
	total    uint64
	read     uint64
	rendered int
}

func NewProgress(out io.Writer, total int64) *Progress {
	return &Progress{
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressWidth)),
		out:      out,
		total:    uint64(max(total, 0)),
		rendered: -1,
	}
}

// Add records n more bytes as processed. The bar is only redrawn when the whole percentage changes.
func (p *Progress) Add(n int) {
	p.read += uint64(max(n, 0))

	if percent := int(p.Percent() * 100); percent != p.rendered {
		p.rendered = percent
		p.render()
	}
}

func (p *Progress) Percent() float64 {
	if p.total == 0 {
		return 1
	}

	return min(1, float64(p.read)/float64(p.total))
}

// Done draws the final state of the bar and ends the line.
func (p *Progress) Done() {
	p.read = max(p.read, p.total)
	p.render()
	_, _ = fmt.Fprintln(p.out)
}

func (p *Progress) render() {
	_, _ = fmt.Fprintf(p.out, "\r%s %s", p.bar.ViewAs(p.Percent()),
		styles.ProgressLabel.Render(fmt.Sprintf("%s / %s", humanize.Bytes(p.read), humanize.Bytes(p.total))))
}
