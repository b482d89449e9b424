// Package metrics exposes Prometheus counters and histograms for the
// termsheet driver as package-level promauto vars.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommandsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "termsheet_commands_processed_total",
		Help: "Total number of commands submitted to the sheet, labelled by outcome status.",
	}, []string{"status"})

	CyclesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "termsheet_cycles_detected_total",
		Help: "Total number of commands rejected with CircularRef.",
	})

	PropagationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "termsheet_propagation_duration_ms",
		Help:    "Wall-clock time spent inside Submit, per command, in milliseconds.",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 500, 1000},
	})

	SleepSecondsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "termsheet_sleep_seconds_total",
		Help: "Total seconds spent blocked inside SLEEP formulas.",
	})

	GridCells = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "termsheet_grid_cells",
		Help: "Total number of cells in the live sheet (rows * cols).",
	})
)
