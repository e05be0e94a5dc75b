// Package harness runs external benchmark executables and extracts the
// timing they report on stdout.
package harness

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Measurement holds the timings extracted from repeated runs of one
// benchmark invocation. Times are in the unit the binary reports
// (nanoseconds for every known benchmark).
type Measurement struct {
	Samples []float64 `json:"samples"`
	Mean    float64   `json:"mean"`
	StdDev  float64   `json:"stddev"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Failed  int       `json:"failed"`
}

// newMeasurement summarises samples. Samples must not be empty.
func newMeasurement(samples []float64, failed int) Measurement {
	m := Measurement{
		Samples: samples,
		Mean:    stat.Mean(samples, nil),
		Min:     floats.Min(samples),
		Max:     floats.Max(samples),
		Failed:  failed,
	}

	if len(samples) > 1 {
		m.StdDev = stat.StdDev(samples, nil)
	}

	return m
}

// Runs returns the number of runs that produced a sample.
func (m Measurement) Runs() int {
	return len(m.Samples)
}
