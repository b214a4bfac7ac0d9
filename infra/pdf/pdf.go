// Package pdf assembles figures into a multi-page PDF document.
package pdf

import (
	"bytes"
	"errors"
	"io"

	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/kilianp07/opsreport/infra/charts"
)

// ErrEmpty is returned when there is nothing to render.
var ErrEmpty = errors.New("no figures to render")

// Render writes one page per figure to w.
func Render(w io.Writer, figs []*charts.Figure) error {
	if len(figs) == 0 {
		return ErrEmpty
	}
	c := vgpdf.New(charts.Width, charts.Height)
	for i, f := range figs {
		if i > 0 {
			c.NextPage()
		}
		f.Draw(draw.New(c))
	}
	_, err := c.WriteTo(w)
	return err
}

// Bytes renders figs into memory.
func Bytes(figs []*charts.Figure) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, figs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
