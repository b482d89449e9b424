// Command termsheet is the terminal driver over the dependency-tracked
// evaluation core: a read-eval-print loop that accepts "<cell>=<expr>"
// assignments plus a handful of thin driver-level meta-commands (view,
// dump, history, stats, quit) that the core itself knows nothing about.
package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"
	"github.com/kballard/go-shellquote"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arjunmenon/termsheet/internal/config"
	"github.com/arjunmenon/termsheet/internal/engine"
	"github.com/arjunmenon/termsheet/internal/formula"
	"github.com/arjunmenon/termsheet/internal/history"
	"github.com/arjunmenon/termsheet/internal/metrics"
	"github.com/arjunmenon/termsheet/internal/status"
	"github.com/arjunmenon/termsheet/internal/termui"
)

var args struct {
	Rows       int32  `arg:"positional,required" help:"number of rows, 1-32767"`
	Cols       int32  `arg:"positional,required" help:"number of columns, 1-32767"`
	ConfigPath string `arg:"--config" default:"termsheet.yaml" help:"driver config file (viewport/metrics/color settings, hot-reloaded)"`
}

// metricsSleeper wraps the real wall sleeper to feed the SLEEP-seconds
// counter, the only place the ambient metrics layer touches the core's
// SLEEP side effect.
type metricsSleeper struct{ formula.WallSleeper }

func (m metricsSleeper) Sleep(seconds int32) {
	if seconds > 0 {
		metrics.SleepSecondsTotal.Add(float64(seconds))
	}
	m.WallSleeper.Sleep(seconds)
}

func main() {
	arg.MustParse(&args)

	sheet, err := engine.New(args.Rows, args.Cols)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	sheet.SetSleeper(metricsSleeper{})
	metrics.GridCells.Set(float64(args.Rows) * float64(args.Cols))

	cfg, err := config.NewLoader(args.ConfigPath)
	if err != nil {
		// No config file is a startup nicety, not a fatal error; run
		// with the built-in defaults.
		cfg = nil
	}

	printer := termui.New(os.Stdout, cfgNoColor(cfg))

	hist, err := history.Open(cfgHistoryPath(cfg))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer hist.Close()

	if entries, err := hist.All(); err == nil {
		for _, e := range entries {
			sheet.Submit(e.Command) // replay; original outcomes already on disk
		}
	}

	if cfg != nil {
		if cfg.Config().Metrics.Enabled {
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.Handler())
				http.ListenAndServe(cfg.Config().Metrics.Addr, mux)
			}()
		}
		if stop, err := cfg.Watch(); err == nil {
			defer stop()
			cfg.OnChange(func(*config.Driver) { printer.ConfigReloaded() })
		}
	}

	runREPL(sheet, printer, hist, cfg)
}

func cfgNoColor(cfg *config.Loader) bool {
	if cfg == nil {
		return false
	}
	return cfg.Config().NoColor
}

func cfgHistoryPath(cfg *config.Loader) string {
	if cfg == nil {
		return "termsheet_history.db"
	}
	return cfg.Config().HistoryPath
}

// cfgViewportRows/cfgViewportCols report the configured viewport size,
// falling back to the same defaults internal/config applies when no
// config file was loaded at all.
func cfgViewportRows(cfg *config.Loader) int32 {
	if cfg == nil {
		return 20
	}
	return int32(cfg.Config().Viewport.Rows)
}

func cfgViewportCols(cfg *config.Loader) int32 {
	if cfg == nil {
		return 10
	}
	return int32(cfg.Config().Viewport.Cols)
}

// viewportSize clamps the configured viewport dimensions to what actually
// remains in the sheet from (top, left), so :view never asks the store for
// a cell past the grid's edge.
func viewportSize(cfg *config.Loader, sheet *engine.Sheet, top, left int32) (rows, cols int32) {
	rows = cfgViewportRows(cfg)
	cols = cfgViewportCols(cfg)
	if avail := sheet.Rows() - top; avail < rows {
		if avail < 0 {
			avail = 0
		}
		rows = avail
	}
	if avail := sheet.Cols() - left; avail < cols {
		if avail < 0 {
			avail = 0
		}
		cols = avail
	}
	return rows, cols
}

func runREPL(sheet *engine.Sheet, printer *termui.Printer, hist *history.Store, cfg *config.Loader) {
	scanner := bufio.NewScanner(os.Stdin)
	var seq int64
	var viewTop, viewLeft int32

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		if handled := runMetaCommand(line, sheet, printer, hist, cfg, &viewTop, &viewLeft); handled {
			continue
		}

		start := time.Now()
		st := sheet.Submit(line)
		metrics.PropagationDuration.Observe(float64(time.Since(start).Microseconds()) / 1000)
		metrics.CommandsProcessed.WithLabelValues(st.String()).Inc()
		if st == status.CircularRef {
			metrics.CyclesDetected.Inc()
		}

		seq++
		_ = hist.Append(seq, line, st.String())
		printer.Status(line, st)
	}
}

func runMetaCommand(line string, sheet *engine.Sheet, printer *termui.Printer, hist *history.Store, cfg *config.Loader, viewTop, viewLeft *int32) bool {
	if len(line) == 0 || line[0] != ':' {
		return false
	}
	fields, err := shellquote.Split(line[1:])
	if err != nil || len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "quit":
		hist.Close()
		os.Exit(0)
	case "dump":
		printer.Dump(sheet)
	case "view":
		if len(fields) == 3 {
			var row, col int32
			fmt.Sscanf(fields[1], "%d", &row)
			fmt.Sscanf(fields[2], "%d", &col)
			*viewTop, *viewLeft = row, col
		}
		rows, cols := viewportSize(cfg, sheet, *viewTop, *viewLeft)
		printer.RenderViewport(*viewTop, *viewLeft, rows, cols, func(r, c int32) termui.Cell {
			v := sheet.Value(r, c)
			return termui.Cell{Err: v.Err, N: v.N}
		})
	case "history":
		n := 10
		if len(fields) == 2 {
			fmt.Sscanf(fields[1], "%d", &n)
		}
		entries, err := hist.Recent(n)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return true
		}
		for _, e := range entries {
			fmt.Printf("%d: %s (%s)\n", e.Seq, e.Command, e.Status)
		}
	case "stats":
		cells := uint64(sheet.Rows()) * uint64(sheet.Cols())
		fmt.Printf("grid: %s cells (%s x %s)\n",
			humanize.Comma(int64(cells)), humanize.Comma(int64(sheet.Rows())), humanize.Comma(int64(sheet.Cols())))
	}
	return true
}
