package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/weiihann/perfcollect/results"
)

// Chart backends.
const (
	BackendGonum   = "gonum"
	BackendGoChart = "gochart"
)

// PlotOptions controls the comparison line plot.
type PlotOptions struct {
	Title  string
	XLabel string
	YLabel string
	// TimeDivisor converts record times to the plotted unit.
	TimeDivisor float64
	// LogScale switches both axes to base-10 logarithms.
	LogScale bool
	Backend  string
	// Width and Height are in inches. Zero selects 6.4 x 4.8.
	Width  float64
	Height float64
}

func (o PlotOptions) size() (float64, float64) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 6.4
	}

	if h <= 0 {
		h = 4.8
	}

	return w, h
}

// series is one program's line: points sorted by size.
type series struct {
	name string
	xs   []float64
	ys   []float64
}

// buildSeries groups records by program, in lexical program order.
// Points that cannot be drawn on a log scale are dropped.
func buildSeries(records []results.Record, divisor float64, logScale bool) []series {
	if divisor <= 0 {
		divisor = 1
	}

	byProg := make(map[string][]results.Record)
	for _, r := range records {
		byProg[r.Program] = append(byProg[r.Program], r)
	}

	names := make([]string, 0, len(byProg))
	for name := range byProg {
		names = append(names, name)
	}

	sort.Strings(names)

	out := make([]series, 0, len(names))

	for _, name := range names {
		recs := byProg[name]
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].Size < recs[j].Size })

		s := series{name: name}

		for _, r := range recs {
			x, y := float64(r.Size), r.Time/divisor
			if logScale && (x <= 0 || y <= 0) {
				continue
			}

			s.xs = append(s.xs, x)
			s.ys = append(s.ys, y)
		}

		if len(s.xs) > 0 {
			out = append(out, s)
		}
	}

	return out
}

// CheckPlotPath reports whether the backend can write an image to path.
// The gonum backend needs a known extension; go-chart writes PNG unless
// the path ends in .svg.
func CheckPlotPath(path, backend string) error {
	switch backend {
	case "", BackendGonum:
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if !gonumFormats[ext] {
			return fmt.Errorf("plot %s: unsupported image format %q", path, ext)
		}

		return nil
	case BackendGoChart:
		return nil
	default:
		return fmt.Errorf("unknown plot backend %q", backend)
	}
}

var gonumFormats = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "svg": true,
	"pdf": true, "eps": true, "tif": true, "tiff": true,
}

// Plot renders one line per program, time against size, and writes the
// image to path. The gonum backend picks the format from the file
// extension (png, svg, pdf, ...).
func Plot(path string, records []results.Record, opts PlotOptions) error {
	ss := buildSeries(records, opts.TimeDivisor, opts.LogScale)
	if len(ss) == 0 {
		return fmt.Errorf("plot %s: no data points", path)
	}

	switch opts.Backend {
	case "", BackendGonum:
		return plotGonum(path, ss, opts)
	case BackendGoChart:
		return plotGoChart(path, ss, opts)
	default:
		return fmt.Errorf("unknown plot backend %q", opts.Backend)
	}
}

func plotGonum(path string, ss []series, opts PlotOptions) error {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel

	p.Add(plotter.NewGrid())

	for i, s := range ss {
		pts := make(plotter.XYs, len(s.xs))
		for j := range s.xs {
			pts[j].X = s.xs[j]
			pts[j].Y = s.ys[j]
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("plot %s: series %s: %w", path, s.name, err)
		}

		c := plotutil.Color(i)
		line.Color = c
		line.Width = vg.Points(1.5)
		points.Shape = draw.CircleGlyph{}
		points.Color = c
		points.Radius = vg.Points(3)

		p.Add(line, points)
		p.Legend.Add(s.name, line, points)
	}

	p.Legend.Top = true
	p.Legend.Left = true

	if opts.LogScale {
		p.X.Scale = plot.LogScale{}
		p.Y.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

		widenLogRange(&p.X)
		widenLogRange(&p.Y)
	}

	w, h := opts.size()
	if err := p.Save(vg.Length(w)*vg.Inch, vg.Length(h)*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}

	return nil
}

// widenLogRange gives a degenerate axis a decade either side; the
// default widening can reach zero, which a log scale cannot draw.
func widenLogRange(ax *plot.Axis) {
	if ax.Min == ax.Max {
		ax.Min /= 10
		ax.Max *= 10
	}
}
