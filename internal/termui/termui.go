// Package termui is the terminal rendering/status layer: colorized
// status lines, grid viewport rendering, and a debug dump built on
// go-spew.
package termui

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"

	"github.com/arjunmenon/termsheet/internal/cellref"
	"github.com/arjunmenon/termsheet/internal/status"
)

// Printer renders status lines and the grid viewport to w, honoring a
// no-color toggle.
type Printer struct {
	w       io.Writer
	noColor bool
}

// New builds a Printer writing to w.
func New(w io.Writer, noColor bool) *Printer {
	return &Printer{w: w, noColor: noColor}
}

func (p *Printer) colorize(c *color.Color, format string, args ...any) string {
	if p.noColor {
		return fmt.Sprintf(format, args...)
	}
	return c.Sprintf(format, args...)
}

// Status prints one command's outcome, colored by severity.
func (p *Printer) Status(cmd string, st status.Status) {
	switch st {
	case status.Ok:
		fmt.Fprintln(p.w, p.colorize(color.New(color.FgGreen), "ok: %s", cmd))
	case status.CircularRef:
		fmt.Fprintln(p.w, p.colorize(color.New(color.FgRed), "circular_ref: %s", cmd))
	default:
		fmt.Fprintln(p.w, p.colorize(color.New(color.FgRed), "%s: %s", st, cmd))
	}
}

// ConfigReloaded prints a yellow notice that the driver config file was
// hot-reloaded.
func (p *Printer) ConfigReloaded() {
	fmt.Fprintln(p.w, p.colorize(color.New(color.FgYellow), "config reloaded"))
}

// Cell is the minimal view of a grid cell the viewport needs to render
// it, decoupled from gridstore.Value so termui never imports the engine.
type Cell struct {
	Err bool
	N   int32
}

// RenderViewport prints a rows x cols window of the grid starting at
// (top, left): column headers, then one row per line.
func (p *Printer) RenderViewport(top, left, rows, cols int32, get func(row, col int32) Cell) {
	fmt.Fprint(p.w, "    ")
	for c := left; c < left+cols; c++ {
		fmt.Fprintf(p.w, "%8s", cellref.ColumnName(c))
	}
	fmt.Fprintln(p.w)

	for r := top; r < top+rows; r++ {
		fmt.Fprintf(p.w, "%4d", r+1)
		for c := left; c < left+cols; c++ {
			v := get(r, c)
			if v.Err {
				fmt.Fprint(p.w, p.colorize(color.New(color.FgRed, color.ReverseVideo), "%8s", "ERR"))
				continue
			}
			fmt.Fprintf(p.w, "%8d", v.N)
		}
		fmt.Fprintln(p.w)
	}
}

// Dump pretty-prints an arbitrary debug snapshot of sheet state via
// go-spew, for the driver's ":dump" command.
func (p *Printer) Dump(v any) {
	spew.Fdump(p.w, v)
}
