package charts

import (
	"fmt"
	"math"

	"gonum.org/v1/plot/vg/draw"

	"github.com/kilianp07/opsreport/core/calc"
	"github.com/kilianp07/opsreport/core/timeseries"
)

var (
	recoveryBlue = Hex("#5b7c99")
	accumGreen   = Hex("#789b73")
	productNote  = WithAlpha(Hex("#ada587"), 0.5)
)

// ProductFigure plots the recovery rate and the accumulated production of a
// type A location. f must hold product_per_M and cum_product.
func ProductFigure(name string, f *timeseries.Frame, inletAvg, productAvg, productVol float64) (*Figure, error) {
	if f == nil || f.Empty() {
		return nil, fmt.Errorf("product figure %s: no data", name)
	}
	idx := f.Index()
	start, end := idx[0], idx[len(idx)-1]

	rate := newPanel("Recovery Rate", "gal/SCF")
	timeAxis(rate, start, end)
	perM := f.MustCol(calc.ProductPerThousand)
	if _, err := addLine(rate, timeXYs(idx, perM), recoveryBlue, ""); err != nil {
		return nil, err
	}
	if m := calc.Max(perM); !math.IsNaN(m) {
		top := math.Floor(m*1.2/0.1)/10 + 0.1
		yRange(rate, top, StepTicks{Step: 0.2, Top: top, Format: "%.1f"})
	}

	gal := newPanel("Accumulation", "gal")
	timeAxis(gal, start, end)
	line, err := addLine(gal, timeXYs(idx, f.MustCol(calc.CumulativeProduct)), accumGreen, "")
	if err != nil {
		return nil, err
	}
	if line != nil {
		line.FillColor = accumGreen
	}
	vol := productVol
	if math.IsNaN(vol) {
		vol = 0
	}
	step := 100.0
	if vol*1.2 > 2000 {
		step = 200
	}
	top := math.Floor(vol*1.2/100)*100 + 100
	yRange(gal, top, StepTicks{Step: step, Top: top})

	note := fmt.Sprintf("Inlet Avg = %s\nProduct Avg = %s\nProduct Total = %s",
		fmtAvg(inletAvg, "SCFD"), fmtAvg(productAvg, "gal/M"), fmtAvg(productVol, "gal"))
	return &Figure{
		Name:  name + " production",
		Title: name + " Production Rates",
		Panels: []Panel{
			{Plot: rate},
			{Plot: gal, Notes: []Note{{Text: note, X: 0.08, Y: 0.85, XAlign: draw.XLeft, YAlign: draw.YTop, Fill: productNote}}},
		},
	}, nil
}
