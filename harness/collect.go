package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/weiihann/perfcollect/results"
)

// Job is one benchmark invocation: a runner, its argument vector, and the
// row metadata recorded when it succeeds.
type Job struct {
	Runner *Runner
	Args   []string
	Record results.Record
}

// Result pairs the stored record with the measurement it came from.
type Result struct {
	Record      results.Record `json:"record"`
	Measurement Measurement    `json:"measurement"`
}

// Collect measures every job in order, one process at a time. A job
// without timing data is logged and skipped; any other failure stops
// the collection and returns what was gathered so far.
func Collect(
	ctx context.Context,
	logger *slog.Logger,
	jobs []Job,
	runs int,
) ([]Result, error) {
	out := make([]Result, 0, len(jobs))

	for _, job := range jobs {
		m, err := job.Runner.Measure(ctx, job.Args, runs)
		if errors.Is(err, ErrNoSamples) {
			logger.WarnContext(ctx, "skipping due to missing timing data",
				slog.String("program", job.Record.Program),
				slog.Int("size", job.Record.Size),
			)

			continue
		}

		if err != nil {
			return out, fmt.Errorf(
				"measure %s size %d: %w",
				job.Record.Program, job.Record.Size, err,
			)
		}

		rec := job.Record
		rec.Time = m.Mean

		logger.InfoContext(ctx, "collected",
			slog.Int("size", rec.Size),
			slog.String("program", rec.Program),
			slog.Int("threads", rec.Threads),
			slog.Float64("time_ns", rec.Time),
			slog.Int("runs", m.Runs()),
		)

		out = append(out, Result{Record: rec, Measurement: m})
	}

	return out, nil
}

// Records returns the stored records of rs in order.
func Records(rs []Result) []results.Record {
	out := make([]results.Record, len(rs))
	for i, r := range rs {
		out[i] = r.Record
	}

	return out
}
