package report

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/weiihann/perfcollect/results"
)

var sortRecords = []results.Record{
	{Size: 1000, Program: "serialMergeSort", Threads: 1, Time: 90000},
	{Size: 100, Program: "serialMergeSort", Threads: 1, Time: 8000},
	{Size: 100, Program: "parallelMergeSort", Threads: 4, Time: 12000},
	{Size: 1000, Program: "parallelMergeSort", Threads: 4, Time: 40000},
}

func TestBuildSeries(t *testing.T) {
	ss := buildSeries(sortRecords, 1000, false)
	require.Len(t, ss, 2)

	assert.Equal(t, "parallelMergeSort", ss[0].name)
	assert.Equal(t, []float64{100, 1000}, ss[0].xs)
	assert.Equal(t, []float64{12, 40}, ss[0].ys)

	assert.Equal(t, "serialMergeSort", ss[1].name)
	assert.Equal(t, []float64{8, 90}, ss[1].ys)
}

func TestBuildSeriesLogDropsNonPositive(t *testing.T) {
	recs := []results.Record{
		{Size: 10, Program: "a", Time: 0},
		{Size: 100, Program: "a", Time: 5},
		{Size: 10, Program: "b", Time: 0},
	}

	ss := buildSeries(recs, 0, true)
	require.Len(t, ss, 1)
	assert.Equal(t, []float64{100}, ss[0].xs)
}

func decodePNG(t *testing.T, path string) {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
}

var singleSize = []results.Record{
	{Size: 1000, Program: "serialMergeSort", Threads: 1, Time: 50},
	{Size: 1000, Program: "parallelMergeSort", Threads: 4, Time: 30},
}

var flatTimes = []results.Record{
	{Size: 100, Program: "serialMergeSort", Threads: 1, Time: 50},
	{Size: 1000, Program: "serialMergeSort", Threads: 1, Time: 50},
}

func TestPlotBackends(t *testing.T) {
	tests := []struct {
		name    string
		records []results.Record
		opts    PlotOptions
	}{
		{"gonum linear", sortRecords, PlotOptions{Title: "BFS Performance Comparison", XLabel: "Node Count", YLabel: "Time (seconds)", TimeDivisor: 1e9}},
		{"gonum log", sortRecords, PlotOptions{Title: "Performance Comparison", XLabel: "Array Size", YLabel: "Time (nanoseconds)", TimeDivisor: 1, LogScale: true}},
		{"gonum single size", singleSize, PlotOptions{TimeDivisor: 1}},
		{"gochart linear", sortRecords, PlotOptions{Title: "t", TimeDivisor: 1, Backend: BackendGoChart}},
		{"gochart log", sortRecords, PlotOptions{Title: "t", TimeDivisor: 1, LogScale: true, Backend: BackendGoChart}},
		{"gochart single size", singleSize, PlotOptions{TimeDivisor: 1, Backend: BackendGoChart}},
		{"gochart single size log", singleSize, PlotOptions{TimeDivisor: 1, LogScale: true, Backend: BackendGoChart}},
		{"gochart flat times", flatTimes, PlotOptions{TimeDivisor: 1, Backend: BackendGoChart}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "performance_plot.png")
			require.NoError(t, Plot(path, tt.records, tt.opts))
			decodePNG(t, path)
		})
	}
}

func TestFlatRange(t *testing.T) {
	assert.Nil(t, flatRange(nil))
	assert.Nil(t, flatRange([]float64{1, 2}))

	r, ok := flatRange([]float64{3, 3}).(*chart.ContinuousRange)
	require.True(t, ok)
	assert.Equal(t, 2.0, r.Min)
	assert.Equal(t, 4.0, r.Max)
}

func TestPlotSinglePointLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.png")
	recs := []results.Record{{Size: 100, Program: "serialMergeSort", Time: 50}}

	require.NoError(t, Plot(path, recs, PlotOptions{TimeDivisor: 1, LogScale: true}))
	decodePNG(t, path)
}

func TestPlotSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.svg")
	require.NoError(t, Plot(path, sortRecords, PlotOptions{TimeDivisor: 1}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestPlotErrors(t *testing.T) {
	dir := t.TempDir()

	err := Plot(filepath.Join(dir, "empty.png"), nil, PlotOptions{})
	assert.Error(t, err)

	err = Plot(filepath.Join(dir, "x.png"), sortRecords, PlotOptions{Backend: "matplotlib"})
	assert.Error(t, err)
}

func TestCheckPlotPath(t *testing.T) {
	assert.NoError(t, CheckPlotPath("plot.png", BackendGonum))
	assert.NoError(t, CheckPlotPath("plot.PDF", ""))
	assert.Error(t, CheckPlotPath("plot", BackendGonum))
	assert.Error(t, CheckPlotPath("plot.csv", BackendGonum))
	assert.NoError(t, CheckPlotPath("plot", BackendGoChart))
	assert.Error(t, CheckPlotPath("plot.png", "matplotlib"))
}
