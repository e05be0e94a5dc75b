package harness

import (
	"fmt"
	"regexp"
	"strconv"
)

// Extractor pulls a single duration out of a benchmark's stdout.
type Extractor interface {
	Extract(output string) (float64, bool)
}

// Names of the built-in extractors.
const (
	ExtractorTraversal = "traversal"
	ExtractorPerfData  = "perfdata"
)

var (
	// traversalPattern matches lines such as
	// "Parallel (OpenMP) BFS traversal time: 123456.000000 ns".
	traversalPattern = regexp.MustCompile(`traversal time:\s*([\d.]+) ns`)

	// perfDataPattern matches
	// "PERFDATA,<size>,<program>,<threads>,<min_parallel>,<stack_size>,<time>".
	perfDataPattern = regexp.MustCompile(
		`(?m)^PERFDATA,(\d+),([^,]+),(\d+),(\d+),(\d+),([\d.]+)`,
	)
)

// PatternExtractor returns capture group Group of the first match of Pattern.
type PatternExtractor struct {
	Pattern *regexp.Regexp
	Group   int
}

// NewPatternExtractor compiles expr and checks that group exists in it.
func NewPatternExtractor(expr string, group int) (*PatternExtractor, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", expr, err)
	}

	if group < 0 || group > re.NumSubexp() {
		return nil, fmt.Errorf(
			"pattern %q has %d groups, group %d requested",
			expr, re.NumSubexp(), group,
		)
	}

	return &PatternExtractor{Pattern: re, Group: group}, nil
}

// Extract implements Extractor.
func (e *PatternExtractor) Extract(output string) (float64, bool) {
	m := e.Pattern.FindStringSubmatch(output)
	if m == nil || e.Group >= len(m) {
		return 0, false
	}

	v, err := strconv.ParseFloat(m[e.Group], 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

// TraversalExtractor extracts the BFS "traversal time: N ns" value.
func TraversalExtractor() *PatternExtractor {
	return &PatternExtractor{Pattern: traversalPattern, Group: 1}
}

// PerfDataExtractor extracts the time field of the first PERFDATA line.
func PerfDataExtractor() *PatternExtractor {
	return &PatternExtractor{Pattern: perfDataPattern, Group: 6}
}

// KnownExtractors returns the names accepted by ExtractorByName.
func KnownExtractors() []string {
	return []string{ExtractorTraversal, ExtractorPerfData}
}

// ExtractorByName returns a built-in extractor.
func ExtractorByName(name string) (*PatternExtractor, error) {
	switch name {
	case ExtractorTraversal:
		return TraversalExtractor(), nil
	case ExtractorPerfData:
		return PerfDataExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown extractor %q", name)
	}
}

// PerfData is one decoded PERFDATA line.
type PerfData struct {
	Size            int
	Program         string
	Threads         int
	MinParallelSize int
	ThreadStackSize int
	Time            float64
}

// ParsePerfData decodes the first PERFDATA line in output.
func ParsePerfData(output string) (PerfData, bool) {
	m := perfDataPattern.FindStringSubmatch(output)
	if m == nil {
		return PerfData{}, false
	}

	var (
		pd  PerfData
		err error
	)

	pd.Program = m[2]

	ints := []struct {
		dst *int
		src string
	}{
		{&pd.Size, m[1]},
		{&pd.Threads, m[3]},
		{&pd.MinParallelSize, m[4]},
		{&pd.ThreadStackSize, m[5]},
	}

	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(f.src); err != nil {
			return PerfData{}, false
		}
	}

	if pd.Time, err = strconv.ParseFloat(m[6], 64); err != nil {
		return PerfData{}, false
	}

	return pd, true
}
