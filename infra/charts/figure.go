// Package charts renders the report figures with gonum/plot.
package charts

import (
	"bytes"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Page size of every figure.
const (
	Width  = 15 * vg.Inch
	Height = 10 * vg.Inch
)

// Note is a text box anchored at a fraction of its panel. X and Y locate the
// XAlign/YAlign corner of the box.
type Note struct {
	Text   string
	X, Y   float64
	XAlign text.XAlignment
	YAlign text.YAlignment
	Size   vg.Length
	Color  color.Color
	// Fill paints a box behind the text when set.
	Fill color.Color
}

// Panel is one plot of a figure stacked vertically. Weight sets its share
// of the figure height, 1 when zero.
type Panel struct {
	Plot   *plot.Plot
	Weight float64
	Notes  []Note
}

// Figure is one page of the report.
type Figure struct {
	Name   string
	Title  string
	Panels []Panel
}

const pad = vg.Length(12)

// Draw renders the figure onto dc.
func (f *Figure) Draw(dc draw.Canvas) {
	area := inset(dc, pad, pad, pad, pad)
	if f.Title != "" {
		sty := textStyle(vg.Points(20), black)
		sty.XAlign = draw.XLeft
		sty.YAlign = draw.YTop
		w := area.Max.X - area.Min.X
		area.FillText(sty, vg.Point{X: area.Min.X + w/10, Y: area.Max.Y}, f.Title)
		area = inset(area, 0, 0, 0, sty.Height(f.Title)+pad)
	}
	total := 0.0
	for _, p := range f.Panels {
		total += weight(p)
	}
	if total == 0 {
		return
	}
	h := area.Max.Y - area.Min.Y
	top := area.Max.Y
	for _, p := range f.Panels {
		ph := vg.Length(float64(h) * weight(p) / total)
		c := draw.Canvas{Canvas: area.Canvas, Rectangle: vg.Rectangle{
			Min: vg.Point{X: area.Min.X, Y: top - ph},
			Max: vg.Point{X: area.Max.X, Y: top},
		}}
		p.Plot.Draw(c)
		for _, n := range p.Notes {
			drawNote(c, n)
		}
		top -= ph
	}
}

func weight(p Panel) float64 {
	if p.Weight <= 0 {
		return 1
	}
	return p.Weight
}

func inset(dc draw.Canvas, left, right, bottom, top vg.Length) draw.Canvas {
	return draw.Canvas{Canvas: dc.Canvas, Rectangle: vg.Rectangle{
		Min: vg.Point{X: dc.Min.X + left, Y: dc.Min.Y + bottom},
		Max: vg.Point{X: dc.Max.X - right, Y: dc.Max.Y - top},
	}}
}

func drawNote(c draw.Canvas, n Note) {
	size := n.Size
	if size == 0 {
		size = vg.Points(10)
	}
	clr := n.Color
	if clr == nil {
		clr = black
	}
	sty := textStyle(size, clr)
	sty.XAlign = n.XAlign
	sty.YAlign = n.YAlign
	pt := vg.Point{
		X: c.Min.X + vg.Length(n.X)*(c.Max.X-c.Min.X),
		Y: c.Min.Y + vg.Length(n.Y)*(c.Max.Y-c.Min.Y),
	}
	if n.Fill != nil {
		w, h := sty.Width(n.Text), sty.Height(n.Text)
		x0 := pt.X + vg.Length(n.XAlign)*w
		y0 := pt.Y + vg.Length(n.YAlign)*h
		const m = vg.Length(3)
		c.FillPolygon(n.Fill, []vg.Point{
			{X: x0 - m, Y: y0 - m}, {X: x0 + w + m, Y: y0 - m},
			{X: x0 + w + m, Y: y0 + h + m}, {X: x0 - m, Y: y0 + h + m},
		})
	}
	c.FillText(sty, pt, n.Text)
}

// PNG renders the figure as a PNG image at the given resolution.
func PNG(f *Figure, dpi int) ([]byte, error) {
	c := vgimg.NewWith(vgimg.UseWH(Width, Height), vgimg.UseDPI(dpi))
	f.Draw(draw.New(c))
	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
