package charts

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Hex parses "#rrggbb". Invalid input yields black.
func Hex(s string) color.NRGBA {
	s = strings.TrimPrefix(s, "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return color.NRGBA{A: 0xff}
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// WithAlpha returns c with opacity a in [0,1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(math.Round(a * 255))
	return c
}

var (
	black   = color.NRGBA{A: 0xff}
	tabBlue = Hex("#1f77b4")
	tabOrg  = Hex("#ff7f0e")
	wheat   = WithAlpha(Hex("#f5deb3"), 0.5)
	goalRed = WithAlpha(Hex("#840000"), 0.65)
	red     = Hex("#d62728")
)

func textStyle(size vg.Length, c color.Color) text.Style {
	return text.Style{
		Color:   c,
		Font:    font.From(plot.DefaultFont, size),
		Handler: plot.DefaultTextHandler,
	}
}

func sprintf(format string, v float64) string { return fmt.Sprintf(format, v) }

// fmtAvg prints v with two decimals or NA when it is missing.
func fmtAvg(v float64, unit string) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return fmt.Sprintf("%.2f %s", v, unit)
}

// timeXYs pairs timestamps with values, skipping missing samples.
func timeXYs(idx []time.Time, vals []float64) plotter.XYs {
	out := make(plotter.XYs, 0, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, plotter.XY{X: unix(idx[i]), Y: v})
	}
	return out
}

func unix(t time.Time) float64 { return float64(t.Unix()) }

// newPanel returns a plot with the grid and the title typography shared by
// every figure.
func newPanel(title, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(13)
	p.Y.Label.Text = ylabel
	p.Legend.Top = true
	grid := plotter.NewGrid()
	grid.Vertical.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	grid.Horizontal.Dashes = grid.Vertical.Dashes
	p.Add(grid)
	return p
}

// timeAxis configures p for a clock axis over [start, end].
func timeAxis(p *plot.Plot, start, end time.Time) {
	p.X.Min, p.X.Max = unix(start), unix(end)
	p.X.Tick.Marker = HourTicks(start.Location())
	verticalLabels(p)
}

func verticalLabels(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

// addLine adds a line for the non-missing values. Empty series are skipped.
func addLine(p *plot.Plot, pts plotter.XYs, c color.Color, label string) (*plotter.Line, error) {
	if len(pts) == 0 {
		return nil, nil
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	l.Color = c
	l.Width = vg.Points(1.2)
	p.Add(l)
	if label != "" {
		p.Legend.Add(label, l)
	}
	return l, nil
}

func addMarkers(p *plot.Plot, pts plotter.XYs, c color.Color, shape draw.GlyphDrawer, radius vg.Length) error {
	if len(pts) == 0 {
		return nil
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Shape = shape
	s.GlyphStyle.Radius = radius
	p.Add(s)
	return nil
}

// yRange forces the Y axis to [0, top] and applies the ticker.
func yRange(p *plot.Plot, top float64, ticks plot.Ticker) {
	p.Y.Min = 0
	if top > 0 && !math.IsNaN(top) {
		p.Y.Max = top
	}
	if ticks != nil {
		p.Y.Tick.Marker = ticks
	}
}

func finiteOrZero(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[i] = v
		}
	}
	return out
}
