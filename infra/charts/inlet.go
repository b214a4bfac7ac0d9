package charts

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/kilianp07/opsreport/core/calc"
	"github.com/kilianp07/opsreport/core/timeseries"
)

// InletStats are the averages printed on the inlet figure.
type InletStats struct {
	Inlet     float64
	Fuel      float64
	Discharge float64
	// Pressure holds one average per pressure column.
	Pressure []float64
}

var pressureColors = []string{"#047495", "#789b73", "#856798", "#a83c09", "#fec615"}

var fuelGreen = Hex("#0a481e")

// InletFigure plots the inlet, discharge, fuel gas and pipeline pressure of
// a location over one day. pressure may be nil or empty.
func InletFigure(name string, flow, pressure *timeseries.Frame, st InletStats) (*Figure, error) {
	if flow == nil || flow.Empty() {
		return nil, fmt.Errorf("inlet figure %s: no flow data", name)
	}
	idx := flow.Index()
	start, end := idx[0], idx[len(idx)-1]

	vol := newPanel("Volume", "SCFD (Inlet & Discharge)")
	timeAxis(vol, start, end)
	ref := calc.InletFlowrate
	if v, ok := flow.Col(calc.InletFlowrate); ok {
		if _, err := addLine(vol, timeXYs(idx, v), tabBlue, "Inlet"); err != nil {
			return nil, err
		}
	} else {
		ref = calc.DischargeFlowrate
	}
	if v, ok := flow.Col(calc.DischargeFlowrate); ok {
		if _, err := addLine(vol, timeXYs(idx, v), tabOrg, "Discharge"); err != nil {
			return nil, err
		}
	}
	refMax := calc.Max(flow.MustCol(ref))
	ticks, top := ScaledTicks(ScaleFlow, refMax)
	yRange(vol, top, ticks)
	flowText := strings.Join([]string{
		"Inlet Avg = " + fmtAvg(st.Inlet, "SCFD"),
		"Discharge Avg = " + fmtAvg(st.Discharge, "SCFD"),
		"Fuel Gas Avg = " + fmtAvg(st.Fuel, "SCFD"),
	}, "\n")

	fuel := newPanel("Fuel Gas", "SCFD (Fuel Gas)")
	timeAxis(fuel, start, end)
	fuel.Y.Label.TextStyle.Color = fuelGreen
	fuel.Y.Tick.Label.Color = fuelGreen
	if _, err := addLine(fuel, timeXYs(idx, flow.MustCol(calc.FuelFlowrate)), fuelGreen, "Fuel Gas"); err != nil {
		return nil, err
	}
	fticks, ftop := ScaledTicks(ScaleFuel, refMax)
	fticks.Format = "%.1f"
	yRange(fuel, ftop, fticks)

	psi := newPanel("Pressure", "PSI")
	timeAxis(psi, start, end)
	psiPanel := Panel{Plot: psi}
	if pressure == nil || pressure.Empty() || len(pressure.Columns()) == 0 {
		psiPanel.Notes = append(psiPanel.Notes, Note{
			Text: "No Data.", X: 0.5, Y: 0.5,
			XAlign: draw.XCenter, YAlign: draw.YCenter,
			Size: vg.Points(28), Color: red,
		})
	} else {
		var lines []string
		top := 0.0
		for i, col := range pressure.Columns() {
			vals := pressure.MustCol(col)
			if _, err := addLine(psi, timeXYs(pressure.Index(), vals), Hex(pressureColors[i%len(pressureColors)]), col); err != nil {
				return nil, err
			}
			avg := math.NaN()
			if i < len(st.Pressure) {
				avg = st.Pressure[i]
			}
			lines = append(lines, col+" Avg = "+fmtAvg(avg, "PSI"))
			if m := calc.Max(vals); m > top {
				top = m
			}
		}
		yRange(psi, top*1.4, StepTicks{Step: 10, Top: top * 1.4})
		psiPanel.Notes = append(psiPanel.Notes, Note{
			Text: strings.Join(lines, "\n"), X: 0.08, Y: 0.2,
			XAlign: draw.XLeft, YAlign: draw.YBottom, Fill: wheat,
		})
	}

	return &Figure{
		Name:  name + " inlet",
		Title: name + " Inlet Analysis",
		Panels: []Panel{
			{Plot: vol, Notes: []Note{{Text: flowText, X: 0.08, Y: 0.2, XAlign: draw.XLeft, YAlign: draw.YBottom, Fill: wheat}}},
			{Plot: fuel, Weight: 0.6},
			psiPanel,
		},
	}, nil
}
