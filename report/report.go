// Package report turns collected measurements into summaries, pivot
// tables and charts.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/weiihann/perfcollect/harness"
)

// Generate writes a markdown summary of results. Speedup is the
// baseline program's mean at the same size divided by the row's mean;
// it is left blank when baseline is empty or was not measured.
func Generate(w io.Writer, title string, results []harness.Result, baseline string) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	base := baselineTimes(results, baseline)

	fmt.Fprintf(w, "## %s\n", title)
	fmt.Fprintln(w)

	if baseline != "" {
		fmt.Fprintf(w, "Speedup relative to **%s**.\n", baseline)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "| Size | Program | Threads | Mean | Std Dev "+
		"| Min | Max | Runs | Speedup |")
	fmt.Fprintln(w, "|------|---------|---------|------|---------"+
		"|-----|-----|------|---------|")

	for _, r := range results {
		m := r.Measurement

		speedup := "-"
		if b, ok := base[r.Record.Size]; ok && r.Record.Time > 0 {
			speedup = fmt.Sprintf("%.2fx", b/r.Record.Time)
		}

		runs := fmt.Sprintf("%d", m.Runs())
		if m.Failed > 0 {
			runs = fmt.Sprintf("%d (%d failed)", m.Runs(), m.Failed)
		}

		fmt.Fprintf(w, "| %d | %s | %d | %s | %s | %s | %s | %s | %s |\n",
			r.Record.Size,
			r.Record.Program,
			r.Record.Threads,
			formatNs(r.Record.Time),
			formatNs(m.StdDev),
			formatNs(m.Min),
			formatNs(m.Max),
			runs,
			speedup,
		)
	}

	return nil
}

// GenerateJSON writes results as JSON to w.
func GenerateJSON(w io.Writer, results []harness.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(results)
}

func baselineTimes(results []harness.Result, baseline string) map[int]float64 {
	base := make(map[int]float64)
	if baseline == "" {
		return base
	}

	for _, r := range results {
		if r.Record.Program != baseline {
			continue
		}

		if _, dup := base[r.Record.Size]; !dup {
			base[r.Record.Size] = r.Record.Time
		}
	}

	return base
}

// formatNs renders a nanosecond duration with a readable unit.
func formatNs(ns float64) string {
	switch {
	case ns < 1e3:
		return fmt.Sprintf("%.0fns", ns)
	case ns < 1e6:
		return fmt.Sprintf("%.2fµs", ns/1e3)
	case ns < 1e9:
		return fmt.Sprintf("%.2fms", ns/1e6)
	default:
		return fmt.Sprintf("%.2fs", ns/1e9)
	}
}
