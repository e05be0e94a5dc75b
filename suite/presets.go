package suite

import (
	"fmt"
	"slices"
	"sort"

	"github.com/weiihann/perfcollect/harness"
	"github.com/weiihann/perfcollect/results"
)

// Preset names.
const (
	PresetBFS       = "bfs"
	PresetMergeSort = "mergesort"
)

// Defaults shared by the presets.
const (
	DefaultRuns            = 5
	DefaultCSV             = "performance_data.csv"
	DefaultPlot            = "performance_plot.png"
	DefaultPivotCSV        = "pivot_table.csv"
	DefaultPivotImage      = "pivot_table.png"
	DefaultMinParallelSize = 10
	DefaultThreadStackSize = 1 << 20
)

// Parameter column names used by the merge sort preset.
const (
	ParamMinParallelSize = "min_parallel_size"
	ParamThreadStackSize = "thread_stack_size"
)

// BFSSizes are the node counts the BFS preset sweeps.
var BFSSizes = []int{
	10, 100, 1000, 2000, 5000, 10000,
	50000, 100000, 500000, 1000000, 10000000,
}

var presets = map[string]func() *Suite{
	PresetBFS:       BFS,
	PresetMergeSort: MergeSort,
}

// Presets returns the known preset names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Preset returns a fresh copy of the named preset.
func Preset(name string) (*Suite, error) {
	fn, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (known: %v)", name, Presets())
	}

	return fn(), nil
}

// BFS is the breadth-first search comparison: a serial baseline and three
// parallel variants that take the node count followed by the thread count.
func BFS() *Suite {
	parallel := []string{PlaceholderSize, PlaceholderThreads}

	return &Suite{
		Name:       PresetBFS,
		Title:      "BFS Performance Comparison",
		SizeColumn: "node_count",
		Sizes:      slices.Clone(BFSSizes),
		Threads:    8,
		Runs:       DefaultRuns,
		Extractor:  harness.ExtractorTraversal,
		Programs: []Program{
			{Name: "serial_BFS", Executable: "./target/serial_BFS", Serial: true},
			{Name: "openmp_BFS", Executable: "./target/openmp_BFS", Args: slices.Clone(parallel)},
			{Name: "pthread_BFS", Executable: "./target/parallel_BFS", Args: slices.Clone(parallel)},
			{Name: "tholder_BFS", Executable: "./target/tholder_BFS", Args: slices.Clone(parallel)},
		},
		Baseline: "serial_BFS",
		Chart: Chart{
			XLabel:      "Node Count",
			YLabel:      "Time (seconds)",
			TimeDivisor: 1e9,
			Pivot:       true,
		},
		Output: Output{
			CSV:        DefaultCSV,
			Plot:       DefaultPlot,
			PivotCSV:   DefaultPivotCSV,
			PivotImage: DefaultPivotImage,
		},
	}
}

// MergeSort is the merge sort comparison. Parallel variants take the
// thread count, -m <min parallel size>, -s <stack size>, then the array
// size. It has no default sizes.
func MergeSort() *Suite {
	parallel := []string{
		PlaceholderThreads,
		"-m", "{" + ParamMinParallelSize + "}",
		"-s", "{" + ParamThreadStackSize + "}",
	}

	return &Suite{
		Name:       PresetMergeSort,
		Title:      "Performance Comparison",
		SizeColumn: "array_size",
		Threads:    4,
		Params: []results.Param{
			{Name: ParamMinParallelSize, Value: DefaultMinParallelSize},
			{Name: ParamThreadStackSize, Value: DefaultThreadStackSize},
		},
		Runs:      DefaultRuns,
		Extractor: harness.ExtractorPerfData,
		Programs: []Program{
			{Name: "serialMergeSort", Executable: "./serialMergeSort", Serial: true},
			{Name: "parallelMergeSort", Executable: "./parallelMergeSort", Args: slices.Clone(parallel)},
			{Name: "openmpMergeSort", Executable: "./openmpMergeSort", Args: slices.Clone(parallel)},
		},
		Baseline: "serialMergeSort",
		Chart: Chart{
			XLabel:      "Array Size",
			YLabel:      "Time (nanoseconds)",
			TimeDivisor: 1,
			LogScale:    true,
		},
		Output: Output{
			CSV:  DefaultCSV,
			Plot: DefaultPlot,
		},
	}
}

// SetParam overrides the value of an existing parameter.
func (s *Suite) SetParam(name string, value int) error {
	for i := range s.Params {
		if s.Params[i].Name == name {
			s.Params[i].Value = value

			return nil
		}
	}

	return fmt.Errorf("suite %s has no parameter %q", s.Name, name)
}
