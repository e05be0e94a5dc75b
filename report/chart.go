package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"
)

var goChartPalette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorOrange,
	chart.ColorGreen,
	chart.ColorRed,
	chart.ColorCyan,
	chart.ColorAlternateGray,
}

func seriesStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
}

// plotGoChart renders with go-chart. It writes SVG for a .svg path and
// PNG otherwise. go-chart has no log axis, so log scaling plots log10
// values and says so in the axis names.
func plotGoChart(path string, ss []series, opts PlotOptions) error {
	xName, yName := opts.XLabel, opts.YLabel
	if opts.LogScale {
		xName = "log10 " + xName
		yName = "log10 " + yName
	}

	list := make([]chart.Series, 0, len(ss))

	var allX, allY []float64

	for i, s := range ss {
		xs, ys := s.xs, s.ys
		if opts.LogScale {
			xs, ys = log10All(xs), log10All(ys)
		}

		allX = append(allX, xs...)
		allY = append(allY, ys...)

		list = append(list, chart.ContinuousSeries{
			Name:    s.name,
			XValues: xs,
			YValues: ys,
			Style:   seriesStyle(goChartPalette[i%len(goChartPalette)]),
		})
	}

	w, h := opts.size()

	ch := chart.Chart{
		Title:      opts.Title,
		Width:      int(w * 100),
		Height:     int(h * 100),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: xName, Range: flatRange(allX)},
		YAxis:      chart.YAxis{Name: yName, Range: flatRange(allY)},
		Series:     list,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	provider := chart.PNG
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		provider = chart.SVG
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := ch.Render(provider, f); err != nil {
		f.Close()

		return fmt.Errorf("render plot %s: %w", path, err)
	}

	return f.Close()
}

// flatRange returns an explicit range one unit either side of vs when
// all of vs are equal, and nil otherwise. go-chart rejects a zero-width
// range. On log10 data one unit is a decade.
func flatRange(vs []float64) chart.Range {
	if len(vs) == 0 {
		return nil
	}

	lo, hi := floats.Min(vs), floats.Max(vs)
	if lo != hi {
		return nil
	}

	return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}

func log10All(vs []float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = math.Log10(v)
	}

	return out
}
