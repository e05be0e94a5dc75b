package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// ErrNoSamples is returned by Measure when none of the runs produced a
// timing value.
var ErrNoSamples = errors.New("no timing data")

const waitDelay = time.Second

// Runner launches a single benchmark binary and extracts its timing.
type Runner struct {
	Name       string
	BinaryPath string
	Env        []string
	Extractor  Extractor
	// Timeout bounds each run. Zero means no limit.
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewRunner creates a Runner for the named program. Env is appended to
// the inherited environment.
func NewRunner(
	name, binaryPath string,
	env []string,
	extractor Extractor,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		Name:       name,
		BinaryPath: binaryPath,
		Env:        env,
		Extractor:  extractor,
		Logger:     logger.With(slog.String("program", name)),
	}
}

// Measure runs the binary runs times, one after another, and averages the
// extracted timings. Runs whose output lacks the timing are logged and
// dropped. ErrNoSamples is returned if every run was dropped.
func (r *Runner) Measure(
	ctx context.Context,
	args []string,
	runs int,
) (Measurement, error) {
	if runs <= 0 {
		return Measurement{}, fmt.Errorf("runs must be positive, got %d", runs)
	}

	samples := make([]float64, 0, runs)
	failed := 0

	for i := 0; i < runs; i++ {
		if err := ctx.Err(); err != nil {
			return Measurement{}, err
		}

		v, ok, err := r.runOnce(ctx, args)
		if err != nil {
			if ctx.Err() != nil {
				return Measurement{}, ctx.Err()
			}

			r.Logger.WarnContext(ctx, "run failed",
				slog.Int("run", i+1),
				slog.Any("args", args),
				slog.String("error", err.Error()),
			)

			failed++

			continue
		}

		if !ok {
			r.Logger.WarnContext(ctx, "timing not found in output",
				slog.String("binary", r.BinaryPath),
				slog.Any("args", args),
				slog.Int("run", i+1),
			)

			failed++

			continue
		}

		r.Logger.DebugContext(ctx, "run finished",
			slog.Int("run", i+1),
			slog.Float64("time", v),
		)

		samples = append(samples, v)
	}

	if len(samples) == 0 {
		return Measurement{Failed: failed}, fmt.Errorf(
			"%s %v: %w", r.Name, args, ErrNoSamples,
		)
	}

	return newMeasurement(samples, failed), nil
}

// runOnce executes the binary once. A non-zero exit status is not an
// error: the output is still searched for the timing.
func (r *Runner) runOnce(
	ctx context.Context,
	args []string,
) (float64, bool, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.BinaryPath, args...)
	killGroup(cmd)
	// Stop waiting on output pipes shortly after a kill, in case a child
	// escaped the group and still holds them.
	cmd.WaitDelay = waitDelay

	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		r.Logger.WarnContext(ctx, "benchmark exited with non-zero status",
			slog.Int("exit_code", exitErr.ExitCode()),
			slog.String("stderr", stderr.String()),
		)
	} else if err != nil {
		return 0, false, fmt.Errorf("run %s: %w", r.BinaryPath, err)
	}

	v, ok := r.Extractor.Extract(stdout.String())

	return v, ok, nil
}
