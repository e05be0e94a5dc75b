package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/weiihann/perfcollect/report"
	"github.com/weiihann/perfcollect/results"
	"github.com/weiihann/perfcollect/suite"
)

// chartPreset picks the preset whose CSV layout matches schema, so a
// stored file is re-charted with the labels it was collected with.
func chartPreset(schema results.Schema) *suite.Suite {
	for _, name := range suite.Presets() {
		s, err := suite.Preset(name)
		if err != nil {
			continue
		}

		if s.SizeColumn == schema.SizeColumn {
			return s
		}
	}

	return &suite.Suite{
		Title:      "Performance Comparison",
		SizeColumn: schema.SizeColumn,
		Chart: suite.Chart{
			XLabel:      schema.SizeColumn,
			YLabel:      "Time (nanoseconds)",
			TimeDivisor: 1,
		},
		Output: suite.Output{Plot: suite.DefaultPlot},
	}
}

func newPlotCmd(logger *slog.Logger) *cobra.Command {
	var (
		csvPath    string
		suitePath  string
		plotPath   string
		pivotCSV   string
		pivotImage string
		title      string
		xLabel     string
		yLabel     string
		divisor    float64
		logScale   bool
		backend    string
	)

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Re-render charts from a stored results CSV",
		Long: `Read a results CSV written by a previous collection and render the
comparison plot and, if requested, the pivot table and its image.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			schema, records, err := results.Read(csvPath)
			if err != nil {
				return err
			}

			if len(records) == 0 {
				return fmt.Errorf("%s holds no results", csvPath)
			}

			s := chartPreset(schema)
			if suitePath != "" {
				if s, err = suite.Load(suitePath); err != nil {
					return err
				}
			}

			s.SizeColumn = schema.SizeColumn
			s.Output.PivotCSV = pivotCSV
			s.Output.PivotImage = pivotImage
			s.Chart.Pivot = pivotCSV != ""

			flags := cmd.Flags()
			if flags.Changed("output-image") || s.Output.Plot == "" {
				s.Output.Plot = plotPath
			}

			if flags.Changed("title") {
				s.Title = title
			}

			if flags.Changed("x-label") {
				s.Chart.XLabel = xLabel
			}

			if flags.Changed("y-label") {
				s.Chart.YLabel = yLabel
			}

			if flags.Changed("time-divisor") {
				s.Chart.TimeDivisor = divisor
			}

			if flags.Changed("log") {
				s.Chart.LogScale = logScale
			}

			if s.Chart.TimeDivisor <= 0 {
				return fmt.Errorf("time divisor must be positive")
			}

			if err := report.CheckPlotPath(s.Output.Plot, backend); err != nil {
				return err
			}

			logger.InfoContext(ctx, "re-rendering charts",
				slog.String("csv", csvPath),
				slog.Int("rows", len(records)),
			)

			return renderOutputs(ctx, logger, cmd.OutOrStdout(), s, records, backend)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&csvPath, "csv", suite.DefaultCSV, "Results CSV to read")
	flags.StringVar(&suitePath, "suite", "", "Suite file to take chart settings from")
	flags.StringVar(&plotPath, "output-image", suite.DefaultPlot, "File name for the graph image")
	flags.StringVar(&pivotCSV, "pivot-csv", "", "Pivot table output (tab separated); empty disables")
	flags.StringVar(&pivotImage, "pivot-image", "", "Pivot table image output; empty disables")
	flags.StringVar(&title, "title", "", "Graph title")
	flags.StringVar(&xLabel, "x-label", "", "X axis label")
	flags.StringVar(&yLabel, "y-label", "", "Y axis label")
	flags.Float64Var(&divisor, "time-divisor", 1, "Divide stored nanoseconds by this for charting")
	flags.BoolVar(&logScale, "log", false, "Use log-log axes")
	flags.StringVar(&backend, "backend", report.BackendGonum, "Plot backend: gonum, gochart")

	return cmd
}

func newTableCmd(logger *slog.Logger) *cobra.Command {
	var (
		input  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Render a tab separated pivot table as an image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := report.LoadTable(input)
			if err != nil {
				return err
			}

			if err := report.SaveTableImage(output, table); err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "generated pivot table image",
				slog.String("path", output))
			fmt.Fprintf(cmd.OutOrStdout(), "Generated pivot table image: %s\n", output)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&input, "pivot-csv", suite.DefaultPivotCSV, "Pivot table to read")
	flags.StringVar(&output, "output", suite.DefaultPivotImage, "Image file to write")

	return cmd
}
