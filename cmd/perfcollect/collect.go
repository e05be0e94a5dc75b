package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/weiihann/perfcollect/harness"
	"github.com/weiihann/perfcollect/report"
	"github.com/weiihann/perfcollect/results"
	"github.com/weiihann/perfcollect/suite"
)

// runFlags are the flags shared by every collecting subcommand.
type runFlags struct {
	dir        string
	runs       int
	threads    int
	csv        string
	plot       string
	pivotCSV   string
	pivotImage string
	title      string
	backend    string
	timeout    time.Duration
	skipBuild  bool
	outputJSON bool
}

func (f *runFlags) register(flags *pflag.FlagSet, s *suite.Suite) {
	flags.StringVar(&f.dir, "dir", s.Dir,
		"Directory relative executables are resolved and built in")
	flags.IntVar(&f.runs, "runs", s.Runs,
		"Number of runs for each configuration (to average)")
	flags.IntVar(&f.threads, "threads", s.Threads,
		"Number of threads for parallel versions")
	flags.StringVar(&f.csv, "output-csv", s.Output.CSV,
		"CSV file results are appended to")
	flags.StringVar(&f.plot, "output-image", s.Output.Plot,
		"File name for the graph image")
	flags.StringVar(&f.pivotCSV, "pivot-csv", s.Output.PivotCSV,
		"Pivot table output (tab separated); empty disables")
	flags.StringVar(&f.pivotImage, "pivot-image", s.Output.PivotImage,
		"Pivot table image output; empty disables")
	flags.StringVar(&f.title, "title", s.Title,
		"Title for the graph of results")
	flags.StringVar(&f.backend, "backend", report.BackendGonum,
		"Plot backend: gonum, gochart")
	flags.DurationVar(&f.timeout, "timeout", 0,
		"Per-run timeout (0 = no limit)")
	flags.BoolVar(&f.skipBuild, "skip-build", false,
		"Skip the suite's build command")
	flags.BoolVar(&f.outputJSON, "json", false,
		"Print the summary as JSON instead of a table")
}

// apply copies flags onto s. With onlyChanged, flags left at their
// defaults keep the suite's own values.
func (f *runFlags) apply(flags *pflag.FlagSet, s *suite.Suite, onlyChanged bool) {
	set := func(name string) bool {
		return !onlyChanged || flags.Changed(name)
	}

	if set("dir") {
		s.Dir = f.dir
	}

	if set("runs") {
		s.Runs = f.runs
	}

	if set("threads") {
		s.Threads = f.threads
	}

	if set("output-csv") {
		s.Output.CSV = f.csv
	}

	if set("output-image") {
		s.Output.Plot = f.plot
	}

	if set("pivot-csv") {
		s.Output.PivotCSV = f.pivotCSV
	}

	if set("pivot-image") {
		s.Output.PivotImage = f.pivotImage
	}

	if set("title") {
		s.Title = f.title
	}

	if flags.Changed("pivot-csv") {
		s.Chart.Pivot = f.pivotCSV != ""
	}
}

// collectAndReport runs a suite end to end: build, measure, append CSV,
// chart and summarise.
func collectAndReport(
	ctx context.Context,
	logger *slog.Logger,
	out io.Writer,
	s *suite.Suite,
	f *runFlags,
) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if s.Output.Plot != "" {
		if err := report.CheckPlotPath(s.Output.Plot, f.backend); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "starting collection",
		slog.String("suite", s.Name),
		slog.Any("sizes", s.Sizes),
		slog.Int("threads", s.Threads),
		slog.Int("runs", s.Runs),
		slog.Int("programs", len(s.Programs)),
	)

	if !f.skipBuild {
		if err := harness.Build(ctx, logger, s.Dir, s.Build); err != nil {
			return err
		}
	}

	jobs, err := s.Jobs(logger)
	if err != nil {
		return err
	}

	for _, p := range s.Programs {
		bin := harness.ResolveBinary(s.Dir, p.Executable)
		if err := harness.CheckBinary(bin); err != nil {
			logger.WarnContext(ctx, "benchmark binary unavailable",
				slog.String("program", p.Name),
				slog.String("error", err.Error()),
			)
		}
	}

	for _, j := range jobs {
		j.Runner.Timeout = f.timeout
	}

	collected, collectErr := harness.Collect(ctx, logger, jobs, s.Runs)
	if collectErr != nil && len(collected) == 0 {
		return collectErr
	}

	records := harness.Records(collected)

	if err := results.Append(s.Output.CSV, s.Schema(), records); err != nil {
		return fmt.Errorf("append results: %w", err)
	}

	// File names go to stdout too, unless stdout carries JSON.
	files := out
	if f.outputJSON {
		files = io.Discard
	}

	fmt.Fprintf(files, "Performance data appended to %s\n", s.Output.CSV)

	logger.InfoContext(ctx, "performance data appended",
		slog.String("path", s.Output.CSV),
		slog.Int("rows", len(records)),
	)

	if collectErr != nil {
		return collectErr
	}

	if len(records) == 0 {
		logger.WarnContext(ctx, "no data collected, skipping charts")

		return nil
	}

	if err := renderOutputs(ctx, logger, files, s, records, f.backend); err != nil {
		return err
	}

	if f.outputJSON {
		if err := report.GenerateJSON(out, collected); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	} else if err := report.Generate(out, s.Title, collected, s.Baseline); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	logger.InfoContext(ctx, "collection complete")

	return nil
}

// renderOutputs writes the plot and, when enabled, the pivot table and
// its image.
func renderOutputs(
	ctx context.Context,
	logger *slog.Logger,
	files io.Writer,
	s *suite.Suite,
	records []results.Record,
	backend string,
) error {
	if s.Output.Plot != "" {
		err := report.Plot(s.Output.Plot, records, report.PlotOptions{
			Title:       s.Title,
			XLabel:      s.Chart.XLabel,
			YLabel:      s.Chart.YLabel,
			TimeDivisor: s.Chart.TimeDivisor,
			LogScale:    s.Chart.LogScale,
			Backend:     backend,
		})
		if err != nil {
			return err
		}

		logger.InfoContext(ctx, "generated graph image",
			slog.String("path", s.Output.Plot))
		fmt.Fprintf(files, "Generated graph image: %s\n", s.Output.Plot)
	}

	if !s.Chart.Pivot || s.Output.PivotCSV == "" {
		return nil
	}

	pivot := report.NewPivot(s.SizeColumn, records)

	if err := report.SavePivot(s.Output.PivotCSV, pivot, s.Chart.TimeDivisor); err != nil {
		return fmt.Errorf("pivot table: %w", err)
	}

	logger.InfoContext(ctx, "generated pivot table",
		slog.String("path", s.Output.PivotCSV))
	fmt.Fprintf(files, "Generated pivot table: %s\n", s.Output.PivotCSV)

	if s.Output.PivotImage == "" {
		return nil
	}

	table, err := report.LoadTable(s.Output.PivotCSV)
	if err != nil {
		return fmt.Errorf("pivot image: %w", err)
	}

	if err := report.SaveTableImage(s.Output.PivotImage, table); err != nil {
		return fmt.Errorf("pivot image: %w", err)
	}

	logger.InfoContext(ctx, "generated pivot table image",
		slog.String("path", s.Output.PivotImage))
	fmt.Fprintf(files, "Generated pivot table image: %s\n", s.Output.PivotImage)

	return nil
}

func newBFSCmd(logger *slog.Logger) *cobra.Command {
	var (
		f     runFlags
		sizes []int
	)

	preset := suite.BFS()

	cmd := &cobra.Command{
		Use:   "bfs",
		Short: "Collect BFS serial vs parallel timings",
		Long: `Run serial_BFS, openmp_BFS, pthread_BFS and tholder_BFS over a sweep
of node counts and compare their traversal times.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := suite.BFS()
			s.Sizes = sizes
			f.apply(cmd.Flags(), s, false)

			return collectAndReport(cmd.Context(), logger, cmd.OutOrStdout(), s, &f)
		},
	}

	flags := cmd.Flags()
	f.register(flags, preset)
	flags.IntSliceVar(&sizes, "sizes", preset.Sizes,
		"Node counts to benchmark")

	return cmd
}

func newMergeSortCmd(logger *slog.Logger) *cobra.Command {
	var (
		f           runFlags
		minParallel int
		stackSize   int
	)

	preset := suite.MergeSort()

	cmd := &cobra.Command{
		Use:   "mergesort <array_size>...",
		Short: "Collect merge sort serial vs parallel timings",
		Long: `Run serialMergeSort, parallelMergeSort and openmpMergeSort for each
array size and compare the times reported on their PERFDATA lines.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sizes, err := parseSizes(args)
			if err != nil {
				return err
			}

			s := suite.MergeSort()
			s.Sizes = sizes
			f.apply(cmd.Flags(), s, false)

			if err := s.SetParam(suite.ParamMinParallelSize, minParallel); err != nil {
				return err
			}

			if err := s.SetParam(suite.ParamThreadStackSize, stackSize); err != nil {
				return err
			}

			return collectAndReport(cmd.Context(), logger, cmd.OutOrStdout(), s, &f)
		},
	}

	flags := cmd.Flags()
	f.register(flags, preset)
	flags.IntVar(&minParallel, "min-parallel-size", suite.DefaultMinParallelSize,
		"Minimum subarray size to use for parallel threads")
	flags.IntVar(&stackSize, "thread-stack-size", suite.DefaultThreadStackSize,
		"Thread stack size for each thread (in bytes)")

	// Accept underscore spellings too, e.g. --min_parallel_size.
	flags.SetNormalizeFunc(mergeSortFlagNames)

	return cmd
}

var mergeSortAliases = map[string]string{
	"output_csv":        "output-csv",
	"output_image_name": "output-image",
	"title_str":         "title",
}

func mergeSortFlagNames(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if alias, ok := mergeSortAliases[name]; ok {
		return pflag.NormalizedName(alias)
	}

	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		f         runFlags
		suitePath string
		sizes     []int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a benchmark suite described in a YAML file",
		Long: `Load a suite file, optionally layered on a preset with "base:", and
collect its matrix. Flags given on the command line override the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := suite.Load(suitePath)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("sizes") {
				s.Sizes = sizes
			}

			f.apply(cmd.Flags(), s, true)

			return collectAndReport(cmd.Context(), logger, cmd.OutOrStdout(), s, &f)
		},
	}

	flags := cmd.Flags()
	f.register(flags, &suite.Suite{Runs: suite.DefaultRuns, Threads: 1})
	flags.StringVar(&suitePath, "suite", "", "Path to the suite YAML file")
	flags.IntSliceVar(&sizes, "sizes", nil, "Override the suite's sizes")
	_ = cmd.MarkFlagRequired("suite")

	return cmd
}

func parseSizes(args []string) ([]int, error) {
	sizes := make([]int, 0, len(args))

	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid array size %q: %w", a, err)
		}

		if n <= 0 {
			return nil, errors.New("array sizes must be positive")
		}

		sizes = append(sizes, n)
	}

	return sizes, nil
}
