package charts

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Consumption figure kinds.
const (
	KindChemicalA = "chemical_a"
	KindFuel      = "fuel"
)

var consumptionColors = map[string][2]string{
	KindChemicalA: {"#fac205", "#bf9005"},
	KindFuel:      {"#b1d1fc", "#607c8e"},
}

// ConsumptionFigure draws the per shift usage of every location as paired
// bars with the usage goal as a dotted line.
func ConsumptionFigure(kind string, names []string, shift1, shift2 []float64, goal float64) (*Figure, error) {
	colors, ok := consumptionColors[kind]
	if !ok {
		return nil, fmt.Errorf("unknown consumption kind %q", kind)
	}
	if len(names) == 0 || len(shift1) != len(names) || len(shift2) != len(names) {
		return nil, fmt.Errorf("consumption figure %s: %d names, %d/%d values", kind, len(names), len(shift1), len(shift2))
	}
	s1, s2 := finiteOrZero(shift1), finiteOrZero(shift2)

	p := newPanel(fmt.Sprintf("Daily %s Usage Summary", strings.ToUpper(kind)), "gal/SCF")
	if kind == KindFuel {
		p.Y.Label.Text = "SCF"
	}
	width := vg.Points(14)
	b1, err := plotter.NewBarChart(plotter.Values(s1), width)
	if err != nil {
		return nil, err
	}
	b1.Color = Hex(colors[0])
	b1.LineStyle.Width = 0
	b1.Offset = -width / 2
	b2, err := plotter.NewBarChart(plotter.Values(s2), width)
	if err != nil {
		return nil, err
	}
	b2.Color = Hex(colors[1])
	b2.LineStyle.Width = 0
	b2.Offset = width / 2
	p.Add(b1, b2)
	p.Legend.Add("shift_1", b1)
	p.Legend.Add("shift_2", b2)
	p.NominalX(names...)
	verticalLabels(p)

	format := "%.2f"
	if kind == KindFuel {
		format = "%.1f"
	}
	labels, err := barLabels(s1, format, -width/2)
	if err != nil {
		return nil, err
	}
	p.Add(labels)

	goalLine := plotter.NewFunction(func(float64) float64 { return goal })
	goalLine.Color = goalRed
	goalLine.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	p.Add(goalLine)
	gl, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: float64(len(names)) - 0.5, Y: goal}},
		Labels: []string{"Usage Goal"},
	})
	if err != nil {
		return nil, err
	}
	gl.TextStyle[0].Color = goalRed
	gl.TextStyle[0].XAlign = draw.XRight
	p.Add(gl)

	m := math.Max(maxOf(s1), maxOf(s2))
	m = math.Max(m, goal)
	top := m * 1.1
	if kind == KindFuel {
		yRange(p, top, StepTicks{Step: 10, Minor: 5, Top: top})
	} else {
		yRange(p, top, StepTicks{Step: 0.05, Minor: 0.01, Top: top, Format: "%.2f"})
	}
	p.Legend.Top = true
	return &Figure{Name: kind + " consumption", Panels: []Panel{{Plot: p}}}, nil
}

// barLabels writes each value above its bar, rotated vertically.
func barLabels(vals []float64, format string, offset vg.Length) (*plotter.Labels, error) {
	xys := make([]plotter.XY, len(vals))
	strs := make([]string, len(vals))
	for i, v := range vals {
		xys[i] = plotter.XY{X: float64(i), Y: v}
		strs[i] = fmt.Sprintf(format, v)
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: strs})
	if err != nil {
		return nil, err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].Rotation = math.Pi / 2
		l.TextStyle[i].XAlign = draw.XLeft
		l.TextStyle[i].YAlign = draw.YCenter
		l.TextStyle[i].Font.Size = vg.Points(8)
	}
	l.Offset = vg.Point{X: offset, Y: vg.Points(2)}
	return l, nil
}

func maxOf(xs []float64) float64 {
	m := 0.0
	for _, v := range xs {
		if v > m {
			m = v
		}
	}
	return m
}
