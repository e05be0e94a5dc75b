// Package main provides the CLI entry point for perfcollect, a harness
// that runs external benchmark binaries, averages their reported timings
// and charts the comparison.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("session", uuid.NewString()))

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)

	root := newRootCmd(logger, level)
	err := root.ExecuteContext(ctx)

	stop()

	if err != nil {
		logger.Error("perfcollect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "perfcollect",
		Short: "Benchmark data collection and charting harness",
		Long: `Perfcollect runs prebuilt benchmark executables repeatedly, extracts
the timing each run prints, averages the runs, appends the averages to a
CSV file, and renders comparison plots and pivot tables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setLevel(level, logLevel)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")

	root.AddCommand(
		newBFSCmd(logger),
		newMergeSortCmd(logger),
		newRunCmd(logger),
		newPlotCmd(logger),
		newTableCmd(logger),
	)

	return root
}

func setLevel(level *slog.LevelVar, name string) error {
	switch strings.ToLower(name) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info", "":
		level.Set(slog.LevelInfo)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level %q", name)
	}

	return nil
}
