// Package suite describes a benchmark matrix: which executables to run,
// with which arguments, over which problem sizes, and how the results are
// stored and charted.
package suite

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/weiihann/perfcollect/harness"
	"github.com/weiihann/perfcollect/results"
)

// Placeholders recognised in program arguments. Parameters are referenced
// by their name, e.g. {min_parallel_size}.
const (
	PlaceholderSize    = "{size}"
	PlaceholderThreads = "{threads}"
)

// Program is one benchmark executable.
type Program struct {
	Name       string   `json:"name"`
	Executable string   `json:"executable"`
	Args       []string `json:"args,omitempty"`
	Env        []string `json:"env,omitempty"`
	// Serial programs record one thread and zero for every parameter.
	Serial bool `json:"serial,omitempty"`
}

// Chart controls how results are plotted and tabulated.
type Chart struct {
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`
	// TimeDivisor converts stored nanoseconds into the charted unit.
	TimeDivisor float64 `json:"time_divisor"`
	LogScale    bool    `json:"log_scale,omitempty"`
	Pivot       bool    `json:"pivot,omitempty"`
}

// Output names the files written after collection.
type Output struct {
	CSV        string `json:"csv"`
	Plot       string `json:"plot"`
	PivotCSV   string `json:"pivot_csv,omitempty"`
	PivotImage string `json:"pivot_image,omitempty"`
}

// Suite is a complete benchmark matrix.
type Suite struct {
	// Base names a preset the file is layered on.
	Base  string `json:"base,omitempty"`
	Name  string `json:"name"`
	Title string `json:"title"`
	// Dir is the directory relative executables and the build run in.
	Dir   string   `json:"dir,omitempty"`
	Build []string `json:"build,omitempty"`

	SizeColumn string          `json:"size_column"`
	Sizes      []int           `json:"sizes"`
	Threads    int             `json:"threads"`
	Params     []results.Param `json:"params,omitempty"`
	Runs       int             `json:"runs"`

	// Extractor names a built-in extractor. Pattern, when set, takes
	// precedence and Group selects its capture group.
	Extractor string `json:"extractor,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	Group     int    `json:"group,omitempty"`

	Programs []Program `json:"programs"`
	// Baseline is the program speedups are reported against.
	Baseline string `json:"baseline,omitempty"`

	Chart  Chart  `json:"chart"`
	Output Output `json:"output"`
}

// Schema returns the CSV layout results of s are stored with.
func (s *Suite) Schema() results.Schema {
	schema := results.Schema{SizeColumn: s.SizeColumn}
	for _, p := range s.Params {
		schema.ParamColumns = append(schema.ParamColumns, p.Name)
	}

	return schema
}

// NewExtractor builds the extractor configured for s.
func (s *Suite) NewExtractor() (harness.Extractor, error) {
	if s.Pattern != "" {
		group := s.Group
		if group == 0 {
			group = 1
		}

		return harness.NewPatternExtractor(s.Pattern, group)
	}

	return harness.ExtractorByName(s.Extractor)
}

// Validate reports the first problem that would prevent s from running.
func (s *Suite) Validate() error {
	switch {
	case s.Name == "":
		return fmt.Errorf("suite name is required")
	case s.SizeColumn == "":
		return fmt.Errorf("suite %s: size_column is required", s.Name)
	case len(s.Sizes) == 0:
		return fmt.Errorf("suite %s: at least one size is required", s.Name)
	case len(s.Programs) == 0:
		return fmt.Errorf("suite %s: at least one program is required", s.Name)
	case s.Runs <= 0:
		return fmt.Errorf("suite %s: runs must be positive", s.Name)
	case s.Threads <= 0:
		return fmt.Errorf("suite %s: threads must be positive", s.Name)
	case s.Chart.TimeDivisor <= 0:
		return fmt.Errorf("suite %s: chart.time_divisor must be positive", s.Name)
	case s.Output.CSV == "":
		return fmt.Errorf("suite %s: output.csv is required", s.Name)
	}

	for _, size := range s.Sizes {
		if size <= 0 {
			return fmt.Errorf("suite %s: invalid size %d", s.Name, size)
		}
	}

	if _, err := s.NewExtractor(); err != nil {
		return fmt.Errorf("suite %s: %w", s.Name, err)
	}

	seen := make(map[string]bool, len(s.Programs))
	for _, p := range s.Programs {
		if p.Name == "" || p.Executable == "" {
			return fmt.Errorf("suite %s: program needs name and executable", s.Name)
		}

		if seen[p.Name] {
			return fmt.Errorf("suite %s: duplicate program %q", s.Name, p.Name)
		}

		seen[p.Name] = true
	}

	if s.Baseline != "" && !seen[s.Baseline] {
		return fmt.Errorf("suite %s: baseline %q is not a program", s.Name, s.Baseline)
	}

	params := make(map[string]bool, len(s.Params))
	for _, p := range s.Params {
		switch p.Name {
		case "", "size", "threads", s.SizeColumn,
			results.ColumnProgram, results.ColumnThreads, results.ColumnTime:
			return fmt.Errorf("suite %s: invalid parameter name %q", s.Name, p.Name)
		}

		if params[p.Name] {
			return fmt.Errorf("suite %s: duplicate parameter %q", s.Name, p.Name)
		}

		params[p.Name] = true
	}

	return nil
}

// Args expands the argument template of p for one size. The size is
// appended when no argument references it.
func (s *Suite) Args(p Program, size int) []string {
	repl := []string{
		PlaceholderSize, strconv.Itoa(size),
		PlaceholderThreads, strconv.Itoa(s.Threads),
	}
	for _, param := range s.Params {
		repl = append(repl, "{"+param.Name+"}", strconv.Itoa(param.Value))
	}

	r := strings.NewReplacer(repl...)

	args := make([]string, 0, len(p.Args)+1)
	sized := false

	for _, a := range p.Args {
		if strings.Contains(a, PlaceholderSize) {
			sized = true
		}

		args = append(args, r.Replace(a))
	}

	if !sized {
		args = append(args, strconv.Itoa(size))
	}

	return args
}

// Record returns the row metadata stored for p at size.
func (s *Suite) Record(p Program, size int) results.Record {
	rec := results.Record{
		Size:    size,
		Program: p.Name,
		Threads: s.Threads,
	}

	if p.Serial {
		rec.Threads = 1
	}

	for _, param := range s.Params {
		v := param.Value
		if p.Serial {
			v = 0
		}

		rec.Params = append(rec.Params, results.Param{Name: param.Name, Value: v})
	}

	return rec
}

// Jobs expands s into the ordered invocation list: every program for the
// first size, then every program for the next size, and so on.
func (s *Suite) Jobs(logger *slog.Logger) ([]harness.Job, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	ext, err := s.NewExtractor()
	if err != nil {
		return nil, err
	}

	runners := make([]*harness.Runner, len(s.Programs))
	for i, p := range s.Programs {
		runners[i] = harness.NewRunner(
			p.Name,
			harness.ResolveBinary(s.Dir, p.Executable),
			p.Env,
			ext,
			logger,
		)
	}

	jobs := make([]harness.Job, 0, len(s.Sizes)*len(s.Programs))

	for _, size := range s.Sizes {
		for i, p := range s.Programs {
			jobs = append(jobs, harness.Job{
				Runner: runners[i],
				Args:   s.Args(p, size),
				Record: s.Record(p, size),
			})
		}
	}

	return jobs, nil
}
