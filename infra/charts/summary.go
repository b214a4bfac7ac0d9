package charts

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/kilianp07/opsreport/core/history"
)

// Bar is the daily production of one location.
type Bar struct {
	Name     string
	Produced float64
	Pumped   float64
}

// Summary feeds the production summary figure.
type Summary struct {
	Upper   []Bar
	Lower   []Bar
	Weekly  history.Weekly
	Trucked []string
}

var (
	producedGreen = Hex("#2b5d34")
	pumpedGreen   = Hex("#96ae8d")
	weeklyTotal   = Hex("#1e488f")
	weeklyTypeA   = Hex("#b04e0f")
	weeklyTypeB   = Hex("#045c5a")
	summaryNote   = WithAlpha(Hex("#5b7c99"), 0.25)
	truckedNote   = WithAlpha(Hex("#c0c0c0"), 0.25)
)

// Totals sums produced and pumped volumes over bars.
func Totals(bars []Bar) (produced, pumped float64) {
	for _, b := range bars {
		produced += b.Produced
		pumped += b.Pumped
	}
	return produced, pumped
}

// ProductSummaryFigure draws the weekly production trend above the daily
// per location bars grouped by designation.
func ProductSummaryFigure(s Summary) (*Figure, error) {
	if len(s.Upper)+len(s.Lower) == 0 {
		return nil, fmt.Errorf("product summary: no locations")
	}
	weekly, err := weeklyPanel(s.Weekly)
	if err != nil {
		return nil, err
	}

	bars := append(append(append([]Bar(nil), s.Upper...), Bar{}), s.Lower...)
	names := make([]string, len(bars))
	produced := make([]float64, len(bars))
	pumped := make([]float64, len(bars))
	for i, b := range bars {
		names[i] = b.Name
		produced[i] = b.Produced
		pumped[i] = b.Pumped
	}
	produced, pumped = finiteOrZero(produced), finiteOrZero(pumped)

	daily := newPanel("Daily Product Summary", "gal")
	width := vg.Points(12)
	pb, err := plotter.NewBarChart(plotter.Values(produced), width)
	if err != nil {
		return nil, err
	}
	pb.Color = producedGreen
	pb.LineStyle.Width = 0
	pb.Offset = -width * 0.7
	sb, err := plotter.NewBarChart(plotter.Values(pumped), width)
	if err != nil {
		return nil, err
	}
	sb.Color = pumpedGreen
	sb.LineStyle.Width = 0
	sb.Offset = width * 0.7
	daily.Add(pb, sb)
	daily.Legend.Add("Total Produced", pb)
	daily.Legend.Add("Total Pumped to Sales", sb)
	daily.NominalX(names...)
	verticalLabels(daily)
	labels, err := barLabels(produced, "%.2f", -width*0.7)
	if err != nil {
		return nil, err
	}
	daily.Add(labels)

	top := math.Max(maxOf(produced), maxOf(pumped)) * 1.3
	if top == 0 {
		top = 1
	}
	yRange(daily, top, nil)

	groups := plotter.XYLabels{}
	if n := len(s.Upper); n > 0 {
		groups.XYs = append(groups.XYs, plotter.XY{X: float64(n-1) / 2, Y: top * 0.85})
		groups.Labels = append(groups.Labels, "upper")
	}
	if n := len(s.Lower); n > 0 {
		groups.XYs = append(groups.XYs, plotter.XY{X: float64(len(s.Upper)+1) + float64(n-1)/2, Y: top * 0.85})
		groups.Labels = append(groups.Labels, "lower")
	}
	gl, err := plotter.NewLabels(groups)
	if err != nil {
		return nil, err
	}
	for i := range gl.TextStyle {
		gl.TextStyle[i].Font.Size = vg.Points(15)
		gl.TextStyle[i].XAlign = draw.XCenter
	}
	daily.Add(gl)

	up, upPumped := Totals(s.Upper)
	lo, loPumped := Totals(s.Lower)
	text := strings.Join([]string{
		"Upper:",
		fmt.Sprintf("Produced=%.2f gal,  Pumped=%.2f gal", up, upPumped),
		"Lower:",
		fmt.Sprintf("Produced=%.2f gal,  Pumped=%.2f gal", lo, loPumped),
		"Total:",
		fmt.Sprintf("Produced=%.2f gal,  Pumped=%.2f gal", up+lo, upPumped+loPumped),
	}, "\n")
	notes := []Note{{Text: text, X: 0.08, Y: 0.9, XAlign: draw.XLeft, YAlign: draw.YTop, Fill: summaryNote}}
	if len(s.Trucked) > 0 {
		notes = append(notes, Note{
			Text: "Trucked Locations:\n--" + strings.Join(s.Trucked, "\n--"),
			X:    0.98, Y: 0.7, XAlign: draw.XRight, YAlign: draw.YTop, Fill: truckedNote,
		})
	}

	return &Figure{
		Name: "product summary",
		Panels: []Panel{
			{Plot: weekly, Weight: 1},
			{Plot: daily, Weight: 2, Notes: notes},
		},
	}, nil
}

func weeklyPanel(w history.Weekly) (*plot.Plot, error) {
	p := newPanel("Previous 7 Day Production", "gal")
	if len(w.Days) == 0 {
		return p, nil
	}
	if _, err := addLine(p, timeXYs(w.Days, w.Total), weeklyTotal, "Total Production"); err != nil {
		return nil, err
	}
	if _, err := addLine(p, timeXYs(w.Days, w.TypeA), weeklyTypeA, "Location Type A Production"); err != nil {
		return nil, err
	}
	if _, err := addLine(p, timeXYs(w.Days, w.TypeB), weeklyTypeB, "Location Type B Production"); err != nil {
		return nil, err
	}
	xys := timeXYs(w.Days, w.Total)
	strs := make([]string, len(xys))
	for i, xy := range xys {
		strs[i] = fmt.Sprintf("%.2f", xy.Y)
	}
	if len(xys) > 0 {
		l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: strs})
		if err != nil {
			return nil, err
		}
		for i := range l.TextStyle {
			l.TextStyle[i].XAlign = draw.XCenter
		}
		l.Offset = vg.Point{Y: vg.Points(4)}
		p.Add(l)
	}
	half := 12 * time.Hour
	p.X.Min, p.X.Max = unix(w.Days[0].Add(-half)), unix(w.Days[len(w.Days)-1].Add(half))
	p.X.Tick.Marker = DayTicks{Days: w.Days}
	top := math.Floor(maxOf(finiteOrZero(w.Total))*1.3/1000)*1000 + 1000
	yRange(p, top, StepTicks{Step: 1000, Top: top})
	return p, nil
}
